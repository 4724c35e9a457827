package client

import (
	"time"

	"github.com/ic1000/mnet-go/datapoint"
)

// GetControllerTime reads the controller's clock (spec §4.7), decoding the
// big-endian u32 seconds-since-1980-01-01-UTC reply.
func (c *Client) GetControllerTime(dst byte) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("get_controller_time"); err != nil {
		return time.Time{}, err
	}

	payload := datapoint.ControllerTimeWire[:]
	reply, _, err := c.do(transaction{
		op:             "get_controller_time",
		dst:            dst,
		reqType:        ReqData,
		payload:        payload,
		obfuscateReply: true,
	})
	if err != nil {
		return time.Time{}, err
	}

	v, err := datapoint.DecodeReply(datapoint.ControllerTime, reply)
	if err != nil {
		return time.Time{}, newErr("get_controller_time", KindProtocol, err)
	}
	return v.Timestamp.Time(), nil
}

// SetControllerTime writes t into the controller's clock (spec §4.7/§6.3),
// using the fixed controller-time write DataID.
func (c *Client) SetControllerTime(dst byte, t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("set_controller_time"); err != nil {
		return err
	}

	ts, err := datapoint.FromTime(t)
	if err != nil {
		return newErr("set_controller_time", KindProtocol, err)
	}

	payload := datapoint.EncodeControllerTimeWrite(ts)
	_, _, err = c.do(transaction{
		op:      "set_controller_time",
		dst:     dst,
		reqType: ReqWriteData,
		payload: payload,
	})
	return err
}
