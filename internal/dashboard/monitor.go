package dashboard

import (
	"context"
	"log"
	"time"

	"github.com/ic1000/mnet-go/client"
	"github.com/ic1000/mnet-go/datapoint"
)

// PointSpec names one data point a Monitor polls and the label it is
// broadcast under.
type PointSpec struct {
	Label string
	Point datapoint.PointID
	Avg   datapoint.Averaging
}

// Snapshot is one poll cycle's decoded results, the payload of a
// MsgSnapshot broadcast.
type Snapshot struct {
	Time   time.Time                  `json:"time"`
	Values map[string]datapoint.Value `json:"values"`
	Errors map[string]string          `json:"errors,omitempty"`
}

// Monitor polls a *client.Client on an interval and broadcasts decoded
// snapshots, fresh events, and occurred alarms over a WSHub (spec §4.10).
// It does not own the client's session lifecycle; the caller is expected to
// have already driven it to StateAuthenticated.
type Monitor struct {
	c      *client.Client
	dst    byte
	hub    *WSHub
	points []PointSpec
	log    *log.Logger

	lastEventSeen bool
	lastEventCode uint16
	lastEventTime uint32
	knownAlarms   map[uint16]bool
}

// NewMonitor builds a Monitor that polls points on c addressed to dst and
// broadcasts over hub.
func NewMonitor(c *client.Client, dst byte, hub *WSHub, points []PointSpec) *Monitor {
	return &Monitor{
		c:           c,
		dst:         dst,
		hub:         hub,
		points:      points,
		log:         log.Default(),
		knownAlarms: make(map[uint16]bool),
	}
}

// SetLogger overrides the monitor's logger (default log.Default()).
func (m *Monitor) SetLogger(l *log.Logger) { m.log = l }

// Run polls every interval until ctx is canceled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pollOnce()
		}
	}
}

func (m *Monitor) pollOnce() {
	snap := Snapshot{
		Time:   time.Now(),
		Values: make(map[string]datapoint.Value, len(m.points)),
	}
	for _, spec := range m.points {
		v, err := m.c.RequestData(m.dst, spec.Point, spec.Avg)
		if err != nil {
			if snap.Errors == nil {
				snap.Errors = make(map[string]string)
			}
			snap.Errors[spec.Label] = err.Error()
			m.log.Printf("dashboard: poll %s: %v", spec.Label, err)
			continue
		}
		snap.Values[spec.Label] = v
	}
	m.hub.Broadcast(WSMessage{Type: MsgSnapshot, Data: snap})

	m.pollNewEvents()
	m.pollAlarms()
}

// pollNewEvents fetches the most recent event-stack entry (index 0, spec
// §4.7) and announces it only if its code/timestamp differ from the last
// one seen — index 0 always names the newest slot, so the slot's own
// content, not its index, is what changes between polls.
func (m *Monitor) pollNewEvents() {
	ev, err := m.c.GetEvent(m.dst, 0)
	if err != nil {
		m.log.Printf("dashboard: poll event head: %v", err)
		return
	}
	if m.lastEventSeen && ev.Code == m.lastEventCode && ev.Timestamp.Seconds == m.lastEventTime {
		return
	}
	m.lastEventSeen = true
	m.lastEventCode = ev.Code
	m.lastEventTime = ev.Timestamp.Seconds
	m.hub.Broadcast(WSMessage{Type: MsgEvent, Data: ev})
}

// pollAlarms sweeps occurred alarms and announces ones not seen before.
func (m *Monitor) pollAlarms() {
	alarms, err := m.c.GetAlarmHistoryBatch(m.dst, true)
	if err != nil {
		m.log.Printf("dashboard: poll alarms: %v", err)
		return
	}
	for _, a := range alarms {
		if m.knownAlarms[a.SubID] {
			continue
		}
		m.knownAlarms[a.SubID] = true
		m.hub.Broadcast(WSMessage{Type: MsgAlarm, Data: a})
	}
}

// BroadcastStatus is a convenience for pushing an ad-hoc status string (e.g.
// client state transitions) outside the regular poll cycle.
func (m *Monitor) BroadcastStatus(text string) {
	m.hub.Broadcast(WSMessage{Type: MsgStatus, Data: text})
}
