package record

import (
	"testing"

	"github.com/ic1000/mnet-go/datapoint"
)

func TestParseAlarmDescription(t *testing.T) {
	raw := append([]byte{0x00, 0x07}, []byte("overspeed  ")...)
	subID, desc, err := ParseAlarmDescription(raw)
	if err != nil {
		t.Fatal(err)
	}
	if subID != 7 || desc != "overspeed" {
		t.Fatalf("got (%d, %q)", subID, desc)
	}
}

func TestParseAlarmOccurrence(t *testing.T) {
	raw := []byte{0x00, 0x07, 0x62, 0x79, 0xab, 0x00}
	subID, ts, err := ParseAlarmOccurrence(raw)
	if err != nil {
		t.Fatal(err)
	}
	if subID != 7 || !ts.NeverOccurred() {
		t.Fatalf("got subID=%d ts=%v", subID, ts)
	}
}

func TestDescriptionCacheResolve(t *testing.T) {
	c := NewDescriptionCache()
	c.Put(7, "overspeed")

	never := datapoint.NeverOccurredTimestamp()
	a := c.Resolve(7, never)
	if a.HasOccurred {
		t.Fatal("sentinel timestamp should report HasOccurred=false")
	}
	if a.Description != "overspeed" {
		t.Fatalf("description = %q", a.Description)
	}

	occurred := datapoint.Timestamp{Seconds: 123456}
	a2 := c.Resolve(7, occurred)
	if !a2.HasOccurred {
		t.Fatal("non-sentinel timestamp should report HasOccurred=true")
	}
}

func TestDescriptionCacheKnown(t *testing.T) {
	c := NewDescriptionCache()
	c.Put(1, "a")
	c.Put(2, "b")
	if !c.Known([]uint16{1, 2}) {
		t.Fatal("expected both ids known")
	}
	if c.Known([]uint16{1, 2, 3}) {
		t.Fatal("expected id 3 to be unknown")
	}
}

func TestSortAndFilterAlarms(t *testing.T) {
	alarms := []Alarm{
		{SubID: 5, HasOccurred: false},
		{SubID: 1, HasOccurred: true},
		{SubID: 3, HasOccurred: true},
	}
	SortBySubID(alarms)
	if alarms[0].SubID != 1 || alarms[1].SubID != 3 || alarms[2].SubID != 5 {
		t.Fatalf("not sorted: %+v", alarms)
	}
	occurred := FilterOccurred(alarms)
	if len(occurred) != 2 {
		t.Fatalf("got %d occurred, want 2", len(occurred))
	}
}
