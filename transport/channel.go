// Package transport provides the byte-level channel driver (spec §4.4, C4):
// a thin frame pipe over either a serial line or a TCP serial-tunnel, plus
// port discovery. It owns no protocol knowledge beyond framing.
package transport

import (
	"time"

	"github.com/ic1000/mnet-go/frame"
)

// Channel is the ByteChannel collaborator the core depends on (spec §1):
// read up to n bytes blocking until the deadline, write bytes, and clear any
// buffered input. Implementations: SerialChannel, TCPChannel.
type Channel interface {
	Read(n int, deadline time.Time) ([]byte, error)
	Write(b []byte) error
	ClearInput() error
}

// Driver wraps a Channel with the frame-level send/receive/clear operations
// spec §4.4 names: it does not interpret packet types, strictly a frame pipe.
type Driver struct {
	ch Channel
}

// NewDriver wraps ch.
func NewDriver(ch Channel) *Driver {
	return &Driver{ch: ch}
}

// SendFrame writes raw on-wire frame bytes (as produced by frame.Build).
func (d *Driver) SendFrame(b []byte) error {
	return d.ch.Write(b)
}

// ReceiveFrame reads the next complete frame within deadline.
func (d *Driver) ReceiveFrame(deadline time.Time) ([]byte, error) {
	return frame.ReadOne(d.ch, deadline)
}

// Clear discards any buffered input, used before a fresh request to recover
// from garbage left by a previous timeout.
func (d *Driver) Clear() error {
	return d.ch.ClearInput()
}
