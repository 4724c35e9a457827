package frame

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestBuildRequestData(t *testing.T) {
	// S2: dst=0x01, src=0xFB, type=0x0C28, payload="\xC3\x53\x00\x01"
	got, err := Build(0x01, 0xFB, 0x0C28, []byte{0xC3, 0x53, 0x00, 0x01})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x01, 0xFB, 0x0C, 0x28, 0x04, 0xC3, 0x53, 0x00, 0x01}
	if !bytes.Equal(got[:len(want)], want) {
		t.Fatalf("Build() head = % X, want % X", got[:len(want)], want)
	}
	if got[len(got)-1] != EOT {
		t.Fatalf("Build() does not end in EOT: % X", got)
	}
}

func TestParseReplyWithEscape(t *testing.T) {
	// S3: 01 FB 01 0C 29 02 FF FF 41 <crc_hi> <crc_lo> 04 -> payload FF 41
	payload := []byte{0xFF, 0x41}
	built, err := Build(0xFB, 0x01, 0x0C29, payload)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0xFB, 0x01, 0x0C, 0x29, 0x02, 0xFF, 0xFF, 0x41}
	if !bytes.Equal(built[:len(want)], want) {
		t.Fatalf("Build() head = % X, want % X", built[:len(want)], want)
	}

	f, err := Parse(built)
	if err != nil {
		t.Fatal(err)
	}
	if f.Dst != 0xFB || f.Src != 0x01 || f.Type != 0x0C29 {
		t.Fatalf("Parse() = %+v", f)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("Parse().Payload = % X, want % X", f.Payload, payload)
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		{0xFF},
		{0xFF, 0xFF, 0xFF},
		bytes.Repeat([]byte{0xFF}, 255),
		[]byte("hello, turbine"),
	}
	for _, p := range payloads {
		built, err := Build(0x01, 0xFB, 0x0C28, p)
		if err != nil {
			t.Fatalf("Build(%x): %v", p, err)
		}
		got, err := Parse(built)
		if err != nil {
			t.Fatalf("Parse(Build(%x)): %v", p, err)
		}
		if !bytes.Equal(got.Payload, p) {
			t.Fatalf("round trip payload = % X, want % X", got.Payload, p)
		}
		if got.Dst != 0x01 || got.Src != 0xFB || got.Type != 0x0C28 {
			t.Fatalf("round trip header mismatch: %+v", got)
		}
	}
}

func TestBuildPayloadTooLarge(t *testing.T) {
	_, err := Build(0x01, 0xFB, 0x0C28, make([]byte, 256))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("Build(256 bytes) err = %v, want ErrFrameTooLarge", err)
	}
}

func TestParseBadCRC(t *testing.T) {
	built, err := Build(0x01, 0xFB, 0x0C28, []byte{0x01, 0x02})
	if err != nil {
		t.Fatal(err)
	}
	built[len(built)-2] ^= 0xFF // corrupt CRC low byte
	if _, err := Parse(built); !errors.Is(err, ErrBadCRC) {
		t.Fatalf("Parse(corrupted) err = %v, want ErrBadCRC", err)
	}
}

func TestParseBadFraming(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x00, 0x04},
		{0x01, 0x00},
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(% X) = nil error, want a framing error", c)
		}
	}
}

func TestParseBadLength(t *testing.T) {
	built, err := Build(0x01, 0xFB, 0x0C28, []byte{0x01, 0x02, 0x03})
	if err != nil {
		t.Fatal(err)
	}
	built[5] = 0x09 // LEN now disagrees with the actual payload
	if _, err := Parse(built); err == nil {
		t.Fatalf("Parse(bad LEN) = nil error, want an error")
	}
}

type fakeReader struct {
	chunks [][]byte
	i      int
}

func (f *fakeReader) Read(n int, deadline time.Time) ([]byte, error) {
	if time.Now().After(deadline) {
		return nil, ErrTimeout
	}
	if f.i >= len(f.chunks) {
		return nil, ErrTimeout
	}
	c := f.chunks[f.i]
	f.i++
	return c, nil
}

func TestReadOneSkipsLeadingGarbage(t *testing.T) {
	built, err := Build(0x01, 0xFB, 0x0C28, []byte{0xAA})
	if err != nil {
		t.Fatal(err)
	}
	noisy := append([]byte{0x00, 0x99, 0x10}, built...)
	r := byteChunks(noisy)
	got, err := ReadOne(r, time.Now().Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, built) {
		t.Fatalf("ReadOne() = % X, want % X", got, built)
	}
}

func TestReadOneTimeout(t *testing.T) {
	r := byteChunks([]byte{0x01, 0x02, 0x03})
	_, err := ReadOne(r, time.Now().Add(-time.Second))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("ReadOne() err = %v, want ErrTimeout", err)
	}
}

func byteChunks(b []byte) *fakeReader {
	chunks := make([][]byte, len(b))
	for i, c := range b {
		chunks[i] = []byte{c}
	}
	return &fakeReader{chunks: chunks}
}
