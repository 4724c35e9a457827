package datapoint

import (
	"encoding/binary"
	"fmt"
)

// MaxBatch is the largest number of points a single request_multiple_data
// call may request (spec §4.5 / §9 MAX_BATCH).
const MaxBatch = 17

// errCodec is a plain sentinel-free error type for malformed payloads; the
// client package wraps these with request context as needed.
type errCodec string

func (e errCodec) Error() string { return string(e) }

// Request describes one data point to read, bundled with its averaging
// selector. Requests with a raw sub-id instead go through ForSubID and
// EncodeMultiRequestIDs.
type Request struct {
	Point PointID
	Avg   Averaging
}

// id returns the wire DataID for this request.
func (r Request) id() DataID { return ForAveraging(r.Point, r.Avg) }

// EncodeSingleRequest builds the 4-byte payload for a Request data read of
// a single DataID (spec §6.3 "Single request: 4 bytes"). Write payloads are
// built by EncodeWrite.
func EncodeSingleRequest(r Request) []byte {
	w := r.id().Wire()
	return w[:]
}

// EncodeMultiRequest builds the payload for request_multiple_data: a count
// byte followed by count 4-byte DataIDs (spec §4.5). len(reqs) must be <=
// MaxBatch; callers are expected to chunk larger batches themselves (spec
// §4.7 request_multiple_data).
func EncodeMultiRequest(reqs []Request) ([]byte, error) {
	ids := make([]DataID, len(reqs))
	for i, r := range reqs {
		ids[i] = r.id()
	}
	return EncodeMultiRequestIDs(ids)
}

// EncodeMultiRequestIDs is EncodeMultiRequest generalized to raw DataIDs, for
// callers whose per-item sub-selector is not an Averaging code (e.g. the
// event-stack index ForSubID embeds).
func EncodeMultiRequestIDs(ids []DataID) ([]byte, error) {
	if len(ids) == 0 {
		return nil, errCodec("datapoint: empty multi-data request")
	}
	if len(ids) > MaxBatch {
		return nil, errCodec(fmt.Sprintf("datapoint: multi-data request of %d exceeds MAX_BATCH %d", len(ids), MaxBatch))
	}
	out := make([]byte, 1, 1+4*len(ids))
	out[0] = byte(len(ids))
	for _, id := range ids {
		w := id.Wire()
		out = append(out, w[:]...)
	}
	return out, nil
}

// WriteItem is one DataID/value pair for a Request write data payload.
type WriteItem struct {
	Point PointID
	Sub   uint16
	Value int32
}

// EncodeWrite builds the payload for a write-data request: each item is a
// 4-byte swapped DataID followed by a 4-byte swapped value (spec §6.3's
// set_controller_time worked example generalizes to the write family).
func EncodeWrite(items []WriteItem) []byte {
	out := make([]byte, 0, 8*len(items))
	for _, it := range items {
		id := ForSubID(it.Point, it.Sub)
		w := id.Wire()
		out = append(out, w[:]...)
		var vb [4]byte
		binary.LittleEndian.PutUint32(vb[:], uint32(it.Value))
		out = append(out, vb[:]...)
	}
	return out
}

// EncodeControllerTimeWrite builds the write-data payload for
// set_controller_time: the fixed ControllerTimeWire DataID followed by the
// swapped 4-byte epoch-seconds value (spec §6.3).
func EncodeControllerTimeWrite(t Timestamp) []byte {
	out := make([]byte, 0, 8)
	out = append(out, ControllerTimeWire[:]...)
	var vb [4]byte
	binary.LittleEndian.PutUint32(vb[:], t.Seconds)
	return append(out, vb[:]...)
}

// descriptor is the common 5-byte reply header preceding raw data (spec
// §4.5): raw kind, scaling opcode, scaling parameter, and data length.
type descriptor struct {
	raw    rawKind
	scale  Scaling
	scaleN int16
	length byte
}

func parseDescriptor(b []byte) (descriptor, []byte, error) {
	if len(b) < 5 {
		return descriptor{}, nil, errCodec("datapoint: reply shorter than descriptor header")
	}
	d := descriptor{
		raw:    rawKind(b[0]),
		scale:  Scaling(b[1]),
		scaleN: int16(binary.BigEndian.Uint16(b[2:4])),
		length: b[4],
	}
	rest := b[5:]
	if len(rest) < int(d.length) {
		return descriptor{}, nil, errCodec("datapoint: reply data shorter than declared length")
	}
	return d, rest[:d.length], nil
}

// decodeRaw interprets the raw bytes per d.raw, returning a signed 64-bit
// integer (enough to hold any of int8/int16/int32/uint32). rawNone yields
// zero; rawText is not handled here and returns an error, so DecodeReply
// handles text before calling it.
func decodeRaw(d descriptor, data []byte) (int64, error) {
	switch d.raw {
	case rawNone:
		return 0, nil
	case rawInt8, rawInt8Alt, rawInt8C:
		if len(data) < 1 {
			return 0, errCodec("datapoint: int8 reply truncated")
		}
		return int64(int8(data[0])), nil
	case rawInt16:
		if len(data) < 2 {
			return 0, errCodec("datapoint: int16 reply truncated")
		}
		return int64(int16(binary.BigEndian.Uint16(data))), nil
	case rawUint16:
		if len(data) < 2 {
			return 0, errCodec("datapoint: uint16 reply truncated")
		}
		return int64(binary.BigEndian.Uint16(data)), nil
	case rawInt32:
		if len(data) < 4 {
			return 0, errCodec("datapoint: int32 reply truncated")
		}
		return int64(int32(binary.BigEndian.Uint32(data))), nil
	case rawUint32, rawUint32B:
		if len(data) < 4 {
			return 0, errCodec("datapoint: uint32 reply truncated")
		}
		return int64(binary.BigEndian.Uint32(data)), nil
	default:
		return 0, errCodec(fmt.Sprintf("datapoint: unknown raw kind 0x%02x", byte(d.raw)))
	}
}

// DecodeReply parses the reply payload for a single-point request (spec
// §4.5/§6.3): a 5-byte descriptor followed by raw data. point identifies
// which DataID was requested, used to apply point-specific overrides such as
// PowerW scaling and the controller-time/status-code special forms.
func DecodeReply(point PointID, payload []byte) (Value, error) {
	switch point {
	case ControllerTime:
		return decodeTimestampReply(payload)
	case CurrentStatusCode, EventStackStatus:
		return decodeStatusCodesReply(payload)
	}

	d, data, err := parseDescriptor(payload)
	if err != nil {
		return Value{}, err
	}

	if d.raw == rawText {
		return Value{Kind: KindText, Text: trimNUL(data)}, nil
	}
	if d.raw == rawNone {
		return Value{Kind: KindBytes, Bytes: append([]byte(nil), data...)}, nil
	}

	raw, err := decodeRaw(d, data)
	if err != nil {
		return Value{}, err
	}

	scale := d.scale
	if point == GridPower {
		scale = ScalePowerW
	}
	if scale == ScaleNone {
		return Value{Kind: KindInt32, Int32: int32(raw)}, nil
	}
	return Value{Kind: KindFloat64, Float64: apply(scale, raw, int64(d.scaleN))}, nil
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func decodeTimestampReply(payload []byte) (Value, error) {
	d, data, err := parseDescriptor(payload)
	if err != nil {
		return Value{}, err
	}
	raw, err := decodeRaw(d, data)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindTimestamp, Timestamp: Timestamp{Seconds: uint32(raw)}}, nil
}

func decodeStatusCodesReply(payload []byte) (Value, error) {
	d, data, err := parseDescriptor(payload)
	if err != nil {
		return Value{}, err
	}
	if len(data) < 4 {
		return Value{}, errCodec("datapoint: status code reply truncated")
	}
	_ = d
	return Value{Kind: KindStatusCodes, StatusCodes: [2]uint16{
		binary.BigEndian.Uint16(data[0:2]),
		binary.BigEndian.Uint16(data[2:4]),
	}}, nil
}

// DecodeMultiReply parses a request_multiple_data reply (spec §4.5): a
// count byte followed by, per item, a 4-byte mainid+subid pair and then the
// same 5-byte-descriptor-plus-data layout DecodeReply consumes. wantPoints
// must list the PointIDs in the same order requested; the decoded DataID in
// each item is checked against them to catch reordering or a malformed
// controller reply (spec invariant: replies preserve request order).
func DecodeMultiReply(wantPoints []PointID, payload []byte) ([]Value, error) {
	if len(payload) < 1 {
		return nil, errCodec("datapoint: empty multi-data reply")
	}
	count := int(payload[0])
	if count != len(wantPoints) {
		return nil, errCodec(fmt.Sprintf("datapoint: multi-data reply count %d does not match request count %d", count, len(wantPoints)))
	}
	pos := 1
	out := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		if len(payload)-pos < 9 {
			return nil, errCodec("datapoint: multi-data reply truncated in item header")
		}
		mainID := binary.BigEndian.Uint16(payload[pos : pos+2])
		if PointID(mainID) != wantPoints[i] {
			return nil, errCodec(fmt.Sprintf("datapoint: multi-data reply item %d has DataID %04x, want %04x", i, mainID, wantPoints[i]))
		}
		itemStart := pos + 4
		length := int(payload[itemStart+4])
		end := itemStart + 5 + length
		if end > len(payload) {
			return nil, errCodec("datapoint: multi-data reply item overruns payload")
		}
		v, err := DecodeReply(wantPoints[i], payload[itemStart:end])
		if err != nil {
			return nil, fmt.Errorf("datapoint: item %d (%04x): %w", i, wantPoints[i], err)
		}
		out = append(out, v)
		pos = end
	}
	return out, nil
}
