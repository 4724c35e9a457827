package client

import (
	"fmt"

	"github.com/ic1000/mnet-go/datapoint"
	"github.com/ic1000/mnet-go/record"
)

// GetEvent reads one event-stack entry by index (spec §4.7). Index 0 is the
// most recent event.
func (c *Client) GetEvent(dst byte, index uint8) (record.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("get_event"); err != nil {
		return record.Event{}, err
	}
	return c.getEventLocked(dst, index)
}

func (c *Client) getEventLocked(dst byte, index uint8) (record.Event, error) {
	id := datapoint.ForSubID(datapoint.EventStackEntry, uint16(index))
	w := id.Wire()
	payload := w[:]
	reply, _, err := c.do(transaction{
		op:             "get_event",
		dst:            dst,
		reqType:        ReqData,
		payload:        payload,
		obfuscateReply: true,
	})
	if err != nil {
		return record.Event{}, err
	}

	v, err := datapoint.DecodeReply(datapoint.EventStackEntry, reply)
	if err != nil {
		return record.Event{}, newErr("get_event", KindProtocol, err)
	}
	if v.Kind != datapoint.KindBytes {
		return record.Event{}, newErr("get_event", KindProtocol, fmt.Errorf("unexpected value kind for event entry"))
	}
	ev, err := record.ParseEvent(index, v.Bytes)
	if err != nil {
		return record.Event{}, newErr("get_event", KindProtocol, err)
	}
	return ev, nil
}

// getEventsChunkLocked fetches one chunk of event-stack entries in a single
// wire request, the same ReqMultipleData shape RequestMultipleData uses for
// ordinary points, with one EventStackEntry sub-id per index in the chunk
// (spec §4.7/§4.8: "chunked at <=4 events per controller request").
func (c *Client) getEventsChunkLocked(dst byte, indices []uint8) ([]record.Event, error) {
	ids := make([]datapoint.DataID, len(indices))
	for i, idx := range indices {
		ids[i] = datapoint.ForSubID(datapoint.EventStackEntry, uint16(idx))
	}
	payload, err := datapoint.EncodeMultiRequestIDs(ids)
	if err != nil {
		return nil, newErr("get_events_batch", KindProtocol, err)
	}

	reply, _, err := c.do(transaction{
		op:             "get_events_batch",
		dst:            dst,
		reqType:        ReqMultipleData,
		payload:        payload,
		obfuscateReply: true,
	})
	if err != nil {
		return nil, err
	}

	points := make([]datapoint.PointID, len(indices))
	for i := range indices {
		points[i] = datapoint.EventStackEntry
	}
	vals, err := datapoint.DecodeMultiReply(points, reply)
	if err != nil {
		return nil, newErr("get_events_batch", KindProtocol, err)
	}

	out := make([]record.Event, len(vals))
	for i, v := range vals {
		if v.Kind != datapoint.KindBytes {
			return nil, newErr("get_events_batch", KindProtocol, fmt.Errorf("unexpected value kind for event entry"))
		}
		ev, err := record.ParseEvent(indices[i], v.Bytes)
		if err != nil {
			return nil, newErr("get_events_batch", KindProtocol, err)
		}
		out[i] = ev
	}
	return out, nil
}

// GetEventsBatch reads the first limit (<=record.MaxEvents) events from the
// stack, chunking at record.EventChunk entries per controller request (spec
// §4.7/§4.8). Results preserve stack order.
func (c *Client) GetEventsBatch(dst byte, limit int) ([]record.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("get_events_batch"); err != nil {
		return nil, err
	}

	out := make([]record.Event, 0, limit)
	for _, chunk := range record.ChunkIndices(limit) {
		events, err := c.getEventsChunkLocked(dst, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, events...)
	}
	return out, nil
}
