// Package record implements the event stack, alarm record, and remote
// display (LCD) models (spec §4.8, C8): typed records layered over the raw
// reply bytes the datapoint codec produces, plus the chunked-batch helpers
// the high-level client uses to assemble them.
package record

import (
	"encoding/binary"
	"fmt"

	"github.com/ic1000/mnet-go/datapoint"
)

// MaxEvents bounds the controller's event stack (spec §4.8).
const MaxEvents = 100

// EventChunk is the largest number of event entries fetched per controller
// request (spec §4.7 get_events_batch).
const EventChunk = 4

// Event is one entry of the controller's event stack. Index 0 is the most
// recent event.
type Event struct {
	Index     uint8
	Code      uint16
	Timestamp datapoint.Timestamp
	Text      string
}

// ParseEvent decodes one event-stack entry: code(2 BE) + timestamp(4 BE) +
// ASCII text (remainder, NUL/space trimmed). The entry carries no index
// byte; index is the stack position the caller requested.
func ParseEvent(index uint8, raw []byte) (Event, error) {
	if len(raw) < 6 {
		return Event{}, fmt.Errorf("record: event entry shorter than header (%d bytes)", len(raw))
	}
	return Event{
		Index:     index,
		Code:      binary.BigEndian.Uint16(raw[0:2]),
		Timestamp: datapoint.Timestamp{Seconds: binary.BigEndian.Uint32(raw[2:6])},
		Text:      trimTrailing(raw[6:]),
	}, nil
}

func trimTrailing(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ') {
		end--
	}
	return string(b[:end])
}

// ChunkIndices splits a [0, limit) run of event-stack indices into
// controller-sized requests of at most EventChunk indices each, preserving
// order (spec §4.7 "Chunked at ≤4 events per controller request").
func ChunkIndices(limit int) [][]uint8 {
	if limit > MaxEvents {
		limit = MaxEvents
	}
	var chunks [][]uint8
	for start := 0; start < limit; start += EventChunk {
		end := start + EventChunk
		if end > limit {
			end = limit
		}
		chunk := make([]uint8, 0, end-start)
		for i := start; i < end; i++ {
			chunk = append(chunk, uint8(i))
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
