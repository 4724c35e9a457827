package client

import (
	"github.com/ic1000/mnet-go/datapoint"
	"github.com/ic1000/mnet-go/record"
)

// GetRemoteDisplay reads the raw 138-byte LCD buffer (spec §4.7/§4.8).
func (c *Client) GetRemoteDisplay(dst byte) (record.DisplayBuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("get_remote_display"); err != nil {
		return record.DisplayBuffer{}, err
	}

	payload := datapoint.EncodeSingleRequest(datapoint.Request{Point: datapoint.RemoteDisplay})
	reply, _, err := c.do(transaction{
		op:             "get_remote_display",
		dst:            dst,
		reqType:        ReqData,
		payload:        payload,
		obfuscateReply: true,
	})
	if err != nil {
		return record.DisplayBuffer{}, err
	}

	v, err := datapoint.DecodeReply(datapoint.RemoteDisplay, reply)
	if err != nil {
		return record.DisplayBuffer{}, newErr("get_remote_display", KindProtocol, err)
	}
	buf, err := record.ParseDisplayBuffer(v.Bytes)
	if err != nil {
		return record.DisplayBuffer{}, newErr("get_remote_display", KindProtocol, err)
	}
	return buf, nil
}

// GetRemoteDisplayText is GetRemoteDisplay rendered as trimmed 18-char lines
// (spec §4.7).
func (c *Client) GetRemoteDisplayText(dst byte) ([]string, error) {
	buf, err := c.GetRemoteDisplay(dst)
	if err != nil {
		return nil, err
	}
	return buf.Lines(), nil
}
