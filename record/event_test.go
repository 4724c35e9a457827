package record

import (
	"reflect"
	"testing"
)

func TestParseEvent(t *testing.T) {
	cases := []struct {
		name  string
		index uint8
		raw   []byte
		want  Event
	}{
		{
			name:  "plain text, trimmed padding",
			index: 0,
			raw:   append([]byte{0x00, 0x2a, 0x00, 0x00, 0x00, 0x01}, []byte("start    \x00\x00")...),
			want: Event{
				Index:     0,
				Code:      42,
				Timestamp: tsFromSeconds(1),
				Text:      "start",
			},
		},
		{
			name:  "empty text",
			index: 3,
			raw:   []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02},
			want:  Event{Index: 3, Code: 1, Timestamp: tsFromSeconds(2), Text: ""},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseEvent(c.index, c.raw)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("got %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestParseEventTruncated(t *testing.T) {
	if _, err := ParseEvent(0, []byte{0, 1}); err == nil {
		t.Fatal("expected error for truncated event entry")
	}
}

func TestChunkIndicesSizeAndOrder(t *testing.T) {
	chunks := ChunkIndices(10)
	want := [][]uint8{{0, 1, 2, 3}, {4, 5, 6, 7}, {8, 9}}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("got %v, want %v", chunks, want)
	}
}

func TestChunkIndicesClampsToMaxEvents(t *testing.T) {
	chunks := ChunkIndices(1000)
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total != MaxEvents {
		t.Fatalf("total indices = %d, want %d", total, MaxEvents)
	}
}

func TestChunkIndicesZero(t *testing.T) {
	if chunks := ChunkIndices(0); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %v", chunks)
	}
}
