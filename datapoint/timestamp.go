package datapoint

import "time"

// Epoch is the controller clock's zero point (spec §4.6 get/set controller
// time): seconds are counted from 1980-01-01 UTC, not the Unix epoch.
var Epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// neverOccurredSeconds is the raw epoch-seconds encoding of the alarm
// "never occurred" sentinel, 2032-05-09 00:00:00 UTC (spec §4.8/§6.6) — not
// the all-bits-set 32-bit value, just a specific far-future timestamp the
// controller uses as a placeholder.
const neverOccurredSeconds uint32 = 0x6279AB00

// NeverOccurred is the sentinel alarm timestamp meaning "this alarm slot has
// never fired" (spec §4.8): 2032-05-09 UTC.
var NeverOccurred = Epoch.Add(time.Duration(neverOccurredSeconds) * time.Second)

// NeverOccurredTimestamp returns the alarm sentinel as a Timestamp.
func NeverOccurredTimestamp() Timestamp {
	return Timestamp{Seconds: neverOccurredSeconds}
}

// Timestamp is a controller-epoch-seconds value, kept distinct from
// time.Time at the wire boundary so decoders can flag NeverOccurred without
// relying on callers to compare against a magic time.Time value themselves.
type Timestamp struct {
	Seconds uint32
}

// Time converts to a standard UTC time.Time.
func (t Timestamp) Time() time.Time {
	return Epoch.Add(time.Duration(t.Seconds) * time.Second)
}

// NeverOccurred reports whether t is the alarm-record sentinel for "never
// fired".
func (t Timestamp) NeverOccurred() bool {
	return t.Seconds == neverOccurredSeconds
}

func (t Timestamp) String() string {
	if t.NeverOccurred() {
		return "never"
	}
	return t.Time().Format(time.RFC3339)
}

// FromTime converts a wall-clock time to controller epoch seconds. Times
// before Epoch or more than 2^32-1 seconds after it cannot be represented.
func FromTime(t time.Time) (Timestamp, error) {
	d := t.UTC().Sub(Epoch)
	if d < 0 {
		return Timestamp{}, errValueRange("time predates the controller epoch (1980-01-01 UTC)")
	}
	secs := d / time.Second
	if secs > time.Duration(^uint32(0)) {
		return Timestamp{}, errValueRange("time exceeds the controller's 32-bit second range")
	}
	return Timestamp{Seconds: uint32(secs)}, nil
}

type rangeError string

func (e rangeError) Error() string { return string(e) }

func errValueRange(msg string) error { return rangeError(msg) }
