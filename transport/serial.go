package transport

import (
	"fmt"
	"time"

	goserial "github.com/tarm/serial"

	"github.com/ic1000/mnet-go/frame"
)

// SerialConfig describes how to open the RS-232/485 line to a controller.
// Defaults match spec §6.7: 38400 baud, 8 data bits, no parity, 1 stop bit.
type SerialConfig struct {
	Port     string
	BaudRate int
}

// DefaultBaudRate is the WP3000/IC1000 line rate (spec §6.7).
const DefaultBaudRate = 38400

// pollInterval is how often SerialChannel.Read polls the underlying port
// while waiting for more bytes to arrive, mirroring the com.go readUntil
// pattern of a short sleep between non-blocking reads.
const pollInterval = 5 * time.Millisecond

// SerialChannel implements Channel over a github.com/tarm/serial port.
type SerialChannel struct {
	port *goserial.Port
}

// OpenSerial opens the named serial port at cfg.BaudRate (DefaultBaudRate if
// zero), 8N1, with a short internal read timeout so Read can poll against an
// arbitrary caller-supplied deadline.
func OpenSerial(cfg SerialConfig) (*SerialChannel, error) {
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := goserial.OpenPort(&goserial.Config{
		Name:        cfg.Port,
		Baud:        baud,
		Parity:      goserial.ParityNone,
		Size:        8,
		StopBits:    goserial.Stop1,
		ReadTimeout: pollInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", cfg.Port, err)
	}
	return &SerialChannel{port: port}, nil
}

// Read blocks, polling the port, until n bytes have arrived or deadline
// passes; it returns whatever was collected so far (possibly fewer than n)
// together with a timeout error when the deadline elapses first.
func (s *SerialChannel) Read(n int, deadline time.Time) ([]byte, error) {
	buf := make([]byte, 0, n)
	tmp := make([]byte, n)
	for len(buf) < n {
		if time.Now().After(deadline) {
			return buf, fmt.Errorf("transport: read timeout (%d/%d bytes): %w", len(buf), n, frame.ErrTimeout)
		}
		read, err := s.port.Read(tmp[:n-len(buf)])
		if read > 0 {
			buf = append(buf, tmp[:read]...)
			continue
		}
		if err != nil {
			return buf, fmt.Errorf("transport: serial read: %w", err)
		}
		time.Sleep(pollInterval)
	}
	return buf, nil
}

// Write sends b on the line.
func (s *SerialChannel) Write(b []byte) error {
	if _, err := s.port.Write(b); err != nil {
		return fmt.Errorf("transport: serial write: %w", err)
	}
	return nil
}

// ClearInput discards any bytes currently buffered by the port driver.
func (s *SerialChannel) ClearInput() error {
	return s.port.Flush()
}

// Close releases the underlying port.
func (s *SerialChannel) Close() error {
	return s.port.Close()
}
