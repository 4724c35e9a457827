// Package datapoint implements the M-net data-point codec (spec §4.5, C5):
// DataID wire encoding, averaging selectors, numeric scaling, and the typed
// Value union reply parsers dispatch into.
package datapoint

import "fmt"

// PointID is the 2-byte "main id" half of a DataID, the values the
// controller documentation and the host driver both name directly (e.g.
// wind speed, rotor RPM, grid power).
type PointID uint16

// Known data points (spec §4.5's "representative set"), values grounded in
// the WP3000/IC1000 host driver's data-id table.
const (
	WindSpeed          PointID = 0x9C43
	RotorRPM           PointID = 0x9C46
	GeneratorRPM       PointID = 0x9C47
	GridVoltageL1      PointID = 0x9CA5
	GridVoltageL2      PointID = 0x9CA6
	GridVoltageL3      PointID = 0x9CA7
	GridCurrentL1      PointID = 0x9CA9
	GridCurrentL2      PointID = 0x9CAA
	GridCurrentL3      PointID = 0x9CAB
	GridPower          PointID = 0x9CAC
	GridVAR            PointID = 0x9CAD
	GridVoltage        PointID = 0x9CA4
	GridCurrent        PointID = 0x9CA8
	SystemProduction   PointID = 0x80E9
	Generator1Prod     PointID = 0x80EA
	ControllerTime     PointID = 0xC353
	CurrentStatusCode  PointID = 0x000C
	EventStackStatus   PointID = 0x000B
	// EventStackEntry is not an original_source constant (it implements no
	// event-stack fetching at all): picked in the same low-value range as
	// the status-code points, distinct from EventStackStatus, to carry
	// individual event-stack records (index embedded as the DataID sub-id).
	EventStackEntry PointID = 0x0013
	RuntimeCounterBase PointID = 0x0010
	RemoteDisplay      PointID = 0x0020
	SerialNumberPoint  PointID = 0x0021
)

// Command data IDs (spec §6.3's "Request write data" family / §4.7
// send_command).
const (
	CommandEmpty PointID = 0x0000
	CommandStart PointID = 0x0001
	CommandStop  PointID = 0x0002
	CommandReset PointID = 0x0003
)

// Averaging selects the time window a data point is reported over (spec
// §4.5). Not every averaging is valid for every PointID; the controller
// rejects invalid combinations (surfaced by the client as
// UnsupportedAveraging).
type Averaging byte

const (
	Current Averaging = iota
	Ms20
	Ms100
	S1
	S30
	Min1
	Min10
	Min30
	Hr1
	Hr24
)

func (a Averaging) String() string {
	switch a {
	case Current:
		return "current"
	case Ms20:
		return "20ms"
	case Ms100:
		return "100ms"
	case S1:
		return "1s"
	case S30:
		return "30s"
	case Min1:
		return "1min"
	case Min10:
		return "10min"
	case Min30:
		return "30min"
	case Hr1:
		return "1hr"
	case Hr24:
		return "24hr"
	default:
		return fmt.Sprintf("averaging(%d)", byte(a))
	}
}

// DataID is the full 4-byte wire identifier: PointID in the high 16 bits,
// the averaging code (or another point-specific sub-selector) in the low 16
// bits (spec §4.5 "Single request: 4 bytes (swapped DataID + averaging
// embedded per convention)").
type DataID uint32

// ForAveraging composes the wire DataID for point requested under avg.
func ForAveraging(p PointID, avg Averaging) DataID {
	return DataID(p)<<16 | DataID(avg)
}

// ForSubID composes the wire DataID for point with an arbitrary 16-bit
// sub-selector that is not an averaging code (e.g. event stack index).
func ForSubID(p PointID, sub uint16) DataID {
	return DataID(p)<<16 | DataID(sub)
}

// Point returns the PointID half of id.
func (id DataID) Point() PointID { return PointID(id >> 16) }

// SubID returns the low 16 bits of id.
func (id DataID) SubID() uint16 { return uint16(id) }

// Wire returns the 4 on-wire bytes for id: the full 4-byte value is
// byte-swapped from its logical big-endian form (spec §3), i.e. little-endian
// encoding of the uint32.
func (id DataID) Wire() [4]byte {
	return [4]byte{byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24)}
}

// ParseDataIDWire reverses Wire.
func ParseDataIDWire(b [4]byte) DataID {
	return DataID(b[0]) | DataID(b[1])<<8 | DataID(b[2])<<16 | DataID(b[3])<<24
}

// ControllerTimeWire is the fixed wire encoding of the controller-time
// DataID used by get/set controller time (spec §6.3). Per spec §9's design
// note, the "00 01" sub-id half of this particular DataID has unconfirmed
// semantics and is treated as a fixed constant rather than derived through
// the general Wire() transform, which would not reproduce it.
var ControllerTimeWire = [4]byte{0xC3, 0x53, 0x00, 0x01}

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindInt32 ValueKind = iota
	KindFloat64
	KindText
	KindBytes
	KindTimestamp
	KindStatusCodes
)

// Value is the tagged union a reply decodes into (spec §3): a total,
// exhaustive replacement for the source's untyped duck-typed return values.
type Value struct {
	Kind        ValueKind
	Int32       int32
	Float64     float64
	Text        string
	Bytes       []byte
	Timestamp   Timestamp
	StatusCodes [2]uint16
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt32:
		return fmt.Sprintf("%d", v.Int32)
	case KindFloat64:
		return fmt.Sprintf("%g", v.Float64)
	case KindText:
		return v.Text
	case KindBytes:
		return fmt.Sprintf("% X", v.Bytes)
	case KindTimestamp:
		return v.Timestamp.String()
	case KindStatusCodes:
		return fmt.Sprintf("%04X/%04X", v.StatusCodes[0], v.StatusCodes[1])
	default:
		return "<invalid value>"
	}
}
