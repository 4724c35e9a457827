package record

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/ic1000/mnet-go/datapoint"
)

// Alarm is one alarm slot on the controller (spec §4.8).
type Alarm struct {
	SubID       uint16
	LastOccured datapoint.Timestamp
	Description string
	HasOccurred bool
}

// ParseAlarmDescription decodes the description half of an alarm reply:
// sub_id(2 BE) + ASCII description (remainder, NUL/space trimmed). Used on
// the first fetch of each alarm slot (spec §4.8 "first fetch retrieves all
// descriptions").
func ParseAlarmDescription(raw []byte) (subID uint16, description string, err error) {
	if len(raw) < 2 {
		return 0, "", fmt.Errorf("record: alarm description entry shorter than header (%d bytes)", len(raw))
	}
	return binary.BigEndian.Uint16(raw[0:2]), trimTrailing(raw[2:]), nil
}

// ParseAlarmOccurrence decodes the lightweight poll reply used after the
// description is already cached: sub_id(2 BE) + last_occurred(4 BE).
func ParseAlarmOccurrence(raw []byte) (subID uint16, occurred datapoint.Timestamp, err error) {
	if len(raw) < 6 {
		return 0, datapoint.Timestamp{}, fmt.Errorf("record: alarm occurrence entry shorter than header (%d bytes)", len(raw))
	}
	return binary.BigEndian.Uint16(raw[0:2]), datapoint.Timestamp{Seconds: binary.BigEndian.Uint32(raw[2:6])}, nil
}

// DescriptionCache holds alarm descriptions fetched once per sub_id; later
// polls only need to re-fetch last_occurred, combining it with the cached
// description (spec §4.8). Safe for concurrent use so it can be shared
// between a polling loop and on-demand lookups guarded by the client mutex.
type DescriptionCache struct {
	mu    sync.RWMutex
	descs map[uint16]string
}

// NewDescriptionCache returns an empty cache.
func NewDescriptionCache() *DescriptionCache {
	return &DescriptionCache{descs: make(map[uint16]string)}
}

// Put records the description for subID, learned from a full fetch.
func (c *DescriptionCache) Put(subID uint16, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descs[subID] = description
}

// Get returns the cached description for subID, if any.
func (c *DescriptionCache) Get(subID uint16) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.descs[subID]
	return d, ok
}

// Known reports whether every subID in ids already has a cached description.
// The client checks one sub_id at a time with Get instead.
func (c *DescriptionCache) Known(ids []uint16) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range ids {
		if _, ok := c.descs[id]; !ok {
			return false
		}
	}
	return true
}

// Resolve builds an Alarm from a cached description plus a fresh occurrence
// timestamp, applying the "never occurred" sentinel rule.
func (c *DescriptionCache) Resolve(subID uint16, occurred datapoint.Timestamp) Alarm {
	desc, _ := c.Get(subID)
	return Alarm{
		SubID:       subID,
		LastOccured: occurred,
		Description: desc,
		HasOccurred: !occurred.NeverOccurred(),
	}
}

// SortBySubID orders alarms by sub_id ascending, the stable order
// get_alarm_history_batch reports results in.
func SortBySubID(alarms []Alarm) {
	sort.Slice(alarms, func(i, j int) bool { return alarms[i].SubID < alarms[j].SubID })
}

// FilterOccurred returns only alarms with HasOccurred set, preserving order.
func FilterOccurred(alarms []Alarm) []Alarm {
	out := make([]Alarm, 0, len(alarms))
	for _, a := range alarms {
		if a.HasOccurred {
			out = append(out, a)
		}
	}
	return out
}
