package client

import (
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/ic1000/mnet-go/datapoint"
	"github.com/ic1000/mnet-go/frame"
	"github.com/ic1000/mnet-go/obfuscate"
)

// scriptChannel is a transport.Channel test double: each Write triggers a
// handler that computes the next reply frame (or nil to simulate a dropped
// reply / timeout), which the following Read calls drain from.
type scriptChannel struct {
	handler func(sent []byte, call int) []byte
	outbox  []byte
	calls   int
	readErr error
}

func (s *scriptChannel) Write(b []byte) error {
	reply := s.handler(b, s.calls)
	s.calls++
	s.outbox = append([]byte(nil), reply...)
	return nil
}

func (s *scriptChannel) Read(n int, deadline time.Time) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if len(s.outbox) == 0 {
		return nil, frame.ErrTimeout
	}
	take := n
	if take > len(s.outbox) {
		take = len(s.outbox)
	}
	b := s.outbox[:take]
	s.outbox = s.outbox[take:]
	return b, nil
}

func (s *scriptChannel) ClearInput() error { return nil }

const testSerialAddr = byte(0x01)
const testHostAddr = byte(0xFB)

var testSerial = [4]byte{0x00, 0x01, 0x02, 0x03}

func buildDescriptorBytes(raw byte, scale byte, scaleN int16, data []byte) []byte {
	out := make([]byte, 5, 5+len(data))
	out[0] = raw
	out[1] = scale
	binary.BigEndian.PutUint16(out[2:4], uint16(scaleN))
	out[4] = byte(len(data))
	return append(out, data...)
}

func newTestConfig() Config {
	cfg := Config{HostAddr: testHostAddr, TurbineAddr: testSerialAddr, LoginCode: 131}
	cfg.applyDefaults()
	cfg.PacketSendDelayMS = 0
	return cfg
}

func authenticatedClient(t *testing.T) (*Client, *scriptChannel) {
	t.Helper()

	ch := &scriptChannel{handler: func(sent []byte, call int) []byte {
		f, err := frame.Parse(sent)
		if err != nil {
			t.Fatalf("bad request frame: %v", err)
		}
		switch f.Type {
		case ReqSerialNo:
			b, _ := frame.Build(testSerialAddr, testHostAddr, ReplySerialNo, testSerial[:])
			return b
		case RemoteLogin:
			b, _ := frame.Build(testSerialAddr, testHostAddr, RemoteLogin+1, nil)
			return b
		default:
			t.Fatalf("unexpected request type %#04x during auth setup", f.Type)
			return nil
		}
	}}

	c := New(ch, newTestConfig())
	if _, err := c.GetSerialNumber(testSerialAddr); err != nil {
		t.Fatalf("GetSerialNumber: %v", err)
	}
	if err := c.Login(testSerialAddr, 131); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return c, ch
}

func TestGetSerialNumberTransitionsToSerialKnown(t *testing.T) {
	ch := &scriptChannel{handler: func(sent []byte, call int) []byte {
		b, _ := frame.Build(testSerialAddr, testHostAddr, ReplySerialNo, testSerial[:])
		return b
	}}
	c := New(ch, newTestConfig())

	got, err := c.GetSerialNumber(testSerialAddr)
	if err != nil {
		t.Fatal(err)
	}
	if got != testSerial {
		t.Fatalf("serial = % x, want % x", got, testSerial)
	}
	if c.State() != StateSerialKnown {
		t.Fatalf("state = %v, want SerialKnown", c.State())
	}
}

func TestOperationsRejectedBeforeAuthentication(t *testing.T) {
	ch := &scriptChannel{handler: func(sent []byte, call int) []byte { return nil }}
	c := New(ch, newTestConfig())

	_, err := c.RequestData(testSerialAddr, datapoint.WindSpeed, datapoint.Current)
	if !IsKind(err, KindNotReady) {
		t.Fatalf("got %v, want NotReady", err)
	}
}

func TestLoginTransitionsToAuthenticated(t *testing.T) {
	c, _ := authenticatedClient(t)
	if c.State() != StateAuthenticated {
		t.Fatalf("state = %v, want Authenticated", c.State())
	}
}

func TestRequestDataDecodesScaledValue(t *testing.T) {
	c, ch := authenticatedClient(t)
	key := obfuscate.DeriveKey(testSerial)

	ch.handler = func(sent []byte, call int) []byte {
		f, err := frame.Parse(sent)
		if err != nil {
			t.Fatalf("bad request frame: %v", err)
		}
		descriptor := buildDescriptorBytes(0x03, 0x01, 1, []byte{0x00, 0x64}) // int16=100, div10^1 -> 10.0
		obf := obfuscate.Encode(descriptor, key)
		b, _ := frame.Build(testSerialAddr, testHostAddr, f.Type+1, obf)
		return b
	}

	v, err := c.RequestData(testSerialAddr, datapoint.WindSpeed, datapoint.Current)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != datapoint.KindFloat64 || v.Float64 != 10.0 {
		t.Fatalf("got %+v, want float64 10.0", v)
	}
}

func TestRequestDataRetriesOnTimeoutThenSucceeds(t *testing.T) {
	c, ch := authenticatedClient(t)
	key := obfuscate.DeriveKey(testSerial)

	ch.handler = func(sent []byte, call int) []byte {
		// calls 0 and 1 were the serial-number and login exchanges.
		if call < 4 {
			return nil // first two request_data attempts time out
		}
		f, _ := frame.Parse(sent)
		descriptor := buildDescriptorBytes(0x03, 0x00, 0, []byte{0x00, 0x2a})
		obf := obfuscate.Encode(descriptor, key)
		b, _ := frame.Build(testSerialAddr, testHostAddr, f.Type+1, obf)
		return b
	}

	v, err := c.RequestData(testSerialAddr, datapoint.RotorRPM, datapoint.Current)
	if err != nil {
		t.Fatalf("expected eventual success after retries, got %v", err)
	}
	if v.Int32 != 42 {
		t.Fatalf("got %+v, want int32 42", v)
	}
}

func TestRequestDataFailsAfterExhaustingRetries(t *testing.T) {
	c, ch := authenticatedClient(t)
	ch.handler = func(sent []byte, call int) []byte { return nil }

	_, err := c.RequestData(testSerialAddr, datapoint.RotorRPM, datapoint.Current)
	if !IsKind(err, KindTimeout) {
		t.Fatalf("got %v, want Timeout", err)
	}
}

func TestRequestMultipleDataPreservesOrder(t *testing.T) {
	c, ch := authenticatedClient(t)
	key := obfuscate.DeriveKey(testSerial)

	ch.handler = func(sent []byte, call int) []byte {
		f, _ := frame.Parse(sent)
		windSpeed, rotorRPM := datapoint.WindSpeed, datapoint.RotorRPM
		var reply []byte
		reply = append(reply, 2)
		reply = append(reply, byte(windSpeed>>8), byte(windSpeed), 0, 0)
		reply = append(reply, buildDescriptorBytes(0x03, 0x00, 0, []byte{0x00, 0x01})...)
		reply = append(reply, byte(rotorRPM>>8), byte(rotorRPM), 0, 0)
		reply = append(reply, buildDescriptorBytes(0x03, 0x00, 0, []byte{0x00, 0x02})...)
		obf := obfuscate.Encode(reply, key)
		b, _ := frame.Build(testSerialAddr, testHostAddr, f.Type+1, obf)
		return b
	}

	vals, err := c.RequestMultipleData(testSerialAddr, []datapoint.Request{
		{Point: datapoint.WindSpeed, Avg: datapoint.Current},
		{Point: datapoint.RotorRPM, Avg: datapoint.Current},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 || vals[0].Int32 != 1 || vals[1].Int32 != 2 {
		t.Fatalf("got %+v", vals)
	}
}

func TestNotLoggedInReplySurfacesAuthFailed(t *testing.T) {
	c, ch := authenticatedClient(t)
	ch.handler = func(sent []byte, call int) []byte {
		b, _ := frame.Build(testSerialAddr, testHostAddr, NotLoggedIn, nil)
		return b
	}

	_, err := c.RequestData(testSerialAddr, datapoint.WindSpeed, datapoint.Current)
	if !IsKind(err, KindAuthFailed) {
		t.Fatalf("got %v, want AuthFailed", err)
	}
}

func TestTransportErrorBreaksSessionAndResetRecovers(t *testing.T) {
	c, ch := authenticatedClient(t)
	ch.handler = func(sent []byte, call int) []byte { return nil }
	ch.readErr = fmt.Errorf("simulated link failure")

	_, err := c.RequestData(testSerialAddr, datapoint.WindSpeed, datapoint.Current)
	if !IsKind(err, KindTransport) {
		t.Fatalf("got %v, want Transport", err)
	}
	if c.State() != StateBroken {
		t.Fatalf("state = %v, want Broken", c.State())
	}

	c.Reset()
	if c.State() != StateFresh {
		t.Fatalf("state = %v, want Fresh after Reset", c.State())
	}
}

func TestSendCommandWritesAck(t *testing.T) {
	c, ch := authenticatedClient(t)
	ch.handler = func(sent []byte, call int) []byte {
		f, _ := frame.Parse(sent)
		b, _ := frame.Build(testSerialAddr, testHostAddr, f.Type+1, nil)
		return b
	}
	if err := c.SendCommand(testSerialAddr, CommandStart); err != nil {
		t.Fatal(err)
	}
}

func TestControllerTimeRoundTrip(t *testing.T) {
	c, ch := authenticatedClient(t)
	key := obfuscate.DeriveKey(testSerial)
	want := datapoint.Epoch.Add(1000 * time.Hour)

	ch.handler = func(sent []byte, call int) []byte {
		f, err := frame.Parse(sent)
		if err != nil {
			t.Fatal(err)
		}
		if f.Type == ReqWriteData {
			b, _ := frame.Build(testSerialAddr, testHostAddr, f.Type+1, nil)
			return b
		}
		ts, _ := datapoint.FromTime(want)
		var raw [4]byte
		binary.BigEndian.PutUint32(raw[:], ts.Seconds)
		descriptor := buildDescriptorBytes(0x06, 0x00, 0, raw[:])
		obf := obfuscate.Encode(descriptor, key)
		b, _ := frame.Build(testSerialAddr, testHostAddr, f.Type+1, obf)
		return b
	}

	got, err := c.GetControllerTime(testSerialAddr)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if err := c.SetControllerTime(testSerialAddr, want); err != nil {
		t.Fatal(err)
	}
}

func TestGetEventsBatchChunksAndOrders(t *testing.T) {
	c, ch := authenticatedClient(t)
	key := obfuscate.DeriveKey(testSerial)
	var chunkSizes []int

	ch.handler = func(sent []byte, call int) []byte {
		f, err := frame.Parse(sent)
		if err != nil {
			t.Fatal(err)
		}
		if f.Type != ReqMultipleData {
			t.Fatalf("request type = %#04x, want ReqMultipleData (events must batch per chunk)", f.Type)
		}
		// Requests are sent in the clear: only replies are obfuscated
		// (original_source/mnet.py obfuscates responses only).
		count := int(f.Payload[0])
		chunkSizes = append(chunkSizes, count)

		reply := []byte{byte(count)}
		for i := 0; i < count; i++ {
			var w [4]byte
			copy(w[:], f.Payload[1+4*i:5+4*i])
			idx := datapoint.ParseDataIDWire(w).SubID()

			text := fmt.Sprintf("evt%d", idx)
			data := make([]byte, 6+len(text))
			binary.BigEndian.PutUint16(data[0:2], 0x10)
			binary.BigEndian.PutUint32(data[2:6], 1000+uint32(idx))
			copy(data[6:], text)

			reply = append(reply, byte(datapoint.EventStackEntry>>8), byte(datapoint.EventStackEntry), 0, 0)
			reply = append(reply, buildDescriptorBytes(0x00, 0x00, 0, data)...)
		}
		obf := obfuscate.Encode(reply, key)
		b, _ := frame.Build(testSerialAddr, testHostAddr, f.Type+1, obf)
		return b
	}

	events, err := c.GetEventsBatch(testSerialAddr, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	for i, ev := range events {
		if ev.Text != fmt.Sprintf("evt%d", i) {
			t.Fatalf("event %d text = %q", i, ev.Text)
		}
	}
	if len(chunkSizes) != 2 || chunkSizes[0] != 4 || chunkSizes[1] != 1 {
		t.Fatalf("chunk sizes = %v, want [4 1] (EventChunk=4 over 5 events)", chunkSizes)
	}
}

func TestGetAlarmRecordCachesDescription(t *testing.T) {
	c, ch := authenticatedClient(t)
	key := obfuscate.DeriveKey(testSerial)
	descriptionFetches := 0

	ch.handler = func(sent []byte, call int) []byte {
		f, err := frame.Parse(sent)
		if err != nil {
			t.Fatal(err)
		}
		var reply []byte
		switch f.Type {
		case AlarmDataReq1:
			descriptionFetches++
			reply = append([]byte{0x00, 0x05}, []byte("overspeed")...)
		case RequestAlarmCode:
			reply = []byte{0x00, 0x05, 0x62, 0x79, 0xab, 0x00}
		default:
			t.Fatalf("unexpected type %#04x", f.Type)
		}
		obf := obfuscate.Encode(reply, key)
		b, _ := frame.Build(testSerialAddr, testHostAddr, f.Type+1, obf)
		return b
	}

	a1, err := c.GetAlarmRecord(testSerialAddr, 5)
	if err != nil {
		t.Fatal(err)
	}
	if a1.Description != "overspeed" || a1.HasOccurred {
		t.Fatalf("got %+v", a1)
	}

	a2, err := c.GetAlarmRecord(testSerialAddr, 5)
	if err != nil {
		t.Fatal(err)
	}
	if a2.Description != "overspeed" {
		t.Fatalf("second fetch lost description: %+v", a2)
	}
	if descriptionFetches != 1 {
		t.Fatalf("description fetched %d times, want 1 (cached)", descriptionFetches)
	}
}

func TestGetRemoteDisplayTextStripsPadding(t *testing.T) {
	c, ch := authenticatedClient(t)
	key := obfuscate.DeriveKey(testSerial)

	ch.handler = func(sent []byte, call int) []byte {
		f, _ := frame.Parse(sent)
		raw := make([]byte, 138)
		copy(raw, []byte("ROTOR  1200 RPM   "))
		descriptor := buildDescriptorBytes(0x00, 0x00, 0, raw)
		obf := obfuscate.Encode(descriptor, key)
		b, _ := frame.Build(testSerialAddr, testHostAddr, f.Type+1, obf)
		return b
	}

	lines, err := c.GetRemoteDisplayText(testSerialAddr)
	if err != nil {
		t.Fatal(err)
	}
	if lines[0] != "ROTOR  1200 RPM" {
		t.Fatalf("line 0 = %q", lines[0])
	}
}
