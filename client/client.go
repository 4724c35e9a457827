// Package client implements the M-net authenticated client state machine
// (spec §4.6, C6) and the high-level request/reply API (spec §4.7, C7) built
// on top of frame, obfuscate, transport, and datapoint.
package client

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ic1000/mnet-go/frame"
	"github.com/ic1000/mnet-go/obfuscate"
	"github.com/ic1000/mnet-go/record"
	"github.com/ic1000/mnet-go/transport"
)

// State is one of the client's session states (spec §4.6).
type State int

const (
	StateFresh State = iota
	StateSerialKnown
	StateAuthenticated
	StateBroken
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateSerialKnown:
		return "serial-known"
	case StateAuthenticated:
		return "authenticated"
	case StateBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Client is a single logical session over one byte channel. It is not safe
// for concurrent use by multiple callers except through its internal mutex,
// which serializes operations (spec §5) so a background poller and a
// command-injection handler can safely share one Client.
type Client struct {
	mu     sync.Mutex
	cfg    Config
	driver *transport.Driver
	log    *log.Logger

	state  State
	serial [4]byte
	key    obfuscate.Key

	descCache *record.DescriptionCache
}

// New creates a Client over ch. cfg's zero-valued policy fields receive
// defaults (spec §6.4).
func New(ch transport.Channel, cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{
		cfg:       cfg,
		driver:    transport.NewDriver(ch),
		state:     StateFresh,
		descCache: record.NewDescriptionCache(),
		log:       log.Default(),
	}
}

// SetLogger overrides the client's logger (default log.Default()).
func (c *Client) SetLogger(l *log.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = l
}

// State returns the client's current session state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset transitions a Broken client back to Fresh (spec §4.6).
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateFresh
	c.serial = [4]byte{}
	c.key = obfuscate.Key{}
}

func (c *Client) requireState(op string, states ...State) error {
	for _, s := range states {
		if c.state == s {
			return nil
		}
	}
	if c.state == StateBroken {
		return newErr(op, KindNotReady, fmt.Errorf("session is broken, call Reset"))
	}
	return newErr(op, KindNotReady, fmt.Errorf("not valid in state %s", c.state))
}

// transaction holds the policy parameters for one request/reply exchange
// (spec §4.6): how many times to retry, and whether the request and/or
// reply payload passes through the obfuscation codec. Per
// original_source/mnet.py's request_data/request_multiple_data, ordinary
// data reads send their DataID request bytes in the clear and only the
// reply is obfuscated; login is the one transaction that obfuscates its
// request too (its credential payload), per test_login.py.
type transaction struct {
	op               string
	dst              byte
	reqType          uint16
	payload          []byte
	obfuscateRequest bool
	obfuscateReply   bool
	maxRetries       int
	timeout          time.Duration
}

// do executes one request/reply transaction with the client's retry policy
// (spec §4.6): clear input, send, await the paired reply type within
// timeout, retrying up to maxRetries times with packet_send_delay between
// attempts.
func (c *Client) do(tx transaction) ([]byte, uint16, error) {
	if tx.maxRetries == 0 {
		tx.maxRetries = c.cfg.MaxRetries
	}
	if tx.timeout == 0 {
		tx.timeout = c.cfg.requestTimeout()
	}

	reqPayload := tx.payload
	if tx.obfuscateRequest {
		reqPayload = obfuscate.Encode(tx.payload, c.key)
	}

	frameBytes, err := frame.Build(tx.dst, c.cfg.HostAddr, tx.reqType, reqPayload)
	if err != nil {
		return nil, 0, newErr(tx.op, KindProtocol, err)
	}

	var lastErr error
	for attempt := 0; attempt <= tx.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.cfg.packetSendDelay())
		}
		if err := c.driver.Clear(); err != nil {
			c.state = StateBroken
			return nil, 0, newErr(tx.op, KindTransport, err)
		}
		if err := c.driver.SendFrame(frameBytes); err != nil {
			c.state = StateBroken
			return nil, 0, newErr(tx.op, KindTransport, err)
		}

		raw, err := c.driver.ReceiveFrame(time.Now().Add(tx.timeout))
		if err != nil {
			if err == frame.ErrTimeout {
				lastErr = newErr(tx.op, KindTimeout, err)
				c.log.Printf("client: %s: attempt %d/%d: %v", tx.op, attempt+1, tx.maxRetries+1, err)
				continue
			}
			c.state = StateBroken
			return nil, 0, newErr(tx.op, KindTransport, err)
		}

		f, err := frame.Parse(raw)
		if err != nil {
			lastErr = classifyFrameErr(tx.op, err)
			c.log.Printf("client: %s: attempt %d/%d: %v", tx.op, attempt+1, tx.maxRetries+1, err)
			continue
		}

		if f.Type == NotLoggedIn {
			return nil, f.Type, newErr(tx.op, KindAuthFailed, fmt.Errorf("controller reports not logged in"))
		}
		if f.Type != tx.reqType+1 {
			lastErr = newErr(tx.op, KindProtocol, fmt.Errorf("reply type %#04x, want %#04x", f.Type, tx.reqType+1))
			continue
		}

		payload := f.Payload
		if tx.obfuscateReply {
			payload = obfuscate.Decode(payload, c.key)
		}
		return payload, f.Type, nil
	}
	return nil, 0, lastErr
}

func classifyFrameErr(op string, err error) error {
	switch err {
	case frame.ErrBadCRC:
		return newErr(op, KindBadCRC, err)
	case frame.ErrBadLength, frame.ErrFrameTooLarge:
		return newErr(op, KindBadLength, err)
	default:
		return newErr(op, KindBadFraming, err)
	}
}

// GetSerialNumber retrieves and caches the 4-byte serial number and derives
// the obfuscation key (spec §4.7). Mandatory first call; the payload is not
// obfuscated. Transitions Fresh -> SerialKnown.
func (c *Client) GetSerialNumber(dst byte) ([4]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireState("get_serial_number", StateFresh, StateSerialKnown, StateAuthenticated); err != nil {
		return [4]byte{}, err
	}

	payload, _, err := c.do(transaction{op: "get_serial_number", dst: dst, reqType: ReqSerialNo})
	if err != nil {
		return [4]byte{}, err
	}
	if len(payload) != 4 {
		return [4]byte{}, newErr("get_serial_number", KindProtocol, fmt.Errorf("serial reply is %d bytes, want 4", len(payload)))
	}

	copy(c.serial[:], payload)
	c.key = obfuscate.DeriveKey(c.serial)
	if c.state == StateFresh {
		c.state = StateSerialKnown
	}
	return c.serial, nil
}

// Login authenticates the session using loginCode (spec §6.5). Transitions
// SerialKnown -> Authenticated.
func (c *Client) Login(dst byte, loginCode byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireState("login", StateSerialKnown, StateAuthenticated); err != nil {
		return err
	}

	payload, err := buildLoginPayload(loginCode)
	if err != nil {
		return err
	}

	_, _, err = c.do(transaction{
		op:               "login",
		dst:              dst,
		reqType:          RemoteLogin,
		payload:          payload,
		obfuscateRequest: true,
		obfuscateReply:   true,
	})
	if err != nil {
		return err
	}

	c.state = StateAuthenticated
	return nil
}

// ensureAuthenticated is the single entry point every data/command
// operation checks (spec §4.6: "Authenticated: all operations permitted").
func (c *Client) ensureAuthenticated(op string) error {
	return c.requireState(op, StateAuthenticated)
}
