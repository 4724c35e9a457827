package client

import (
	"github.com/ic1000/mnet-go/datapoint"
)

// RequestData reads a single data point at the given averaging (spec §4.7).
func (c *Client) RequestData(dst byte, point datapoint.PointID, avg datapoint.Averaging) (datapoint.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("request_data"); err != nil {
		return datapoint.Value{}, err
	}

	payload := datapoint.EncodeSingleRequest(datapoint.Request{Point: point, Avg: avg})
	reply, _, err := c.do(transaction{
		op:             "request_data",
		dst:            dst,
		reqType:        ReqData,
		payload:        payload,
		obfuscateReply: true,
	})
	if err != nil {
		return datapoint.Value{}, err
	}

	v, err := datapoint.DecodeReply(point, reply)
	if err != nil {
		return datapoint.Value{}, newErr("request_data", KindProtocol, err)
	}
	return v, nil
}

// RequestMultipleData reads up to datapoint.MaxBatch data points in a single
// round trip, chunking transparently when reqs is larger (spec §4.7).
// Results preserve request order.
func (c *Client) RequestMultipleData(dst byte, reqs []datapoint.Request) ([]datapoint.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("request_multiple_data"); err != nil {
		return nil, err
	}

	out := make([]datapoint.Value, 0, len(reqs))
	for start := 0; start < len(reqs); start += datapoint.MaxBatch {
		end := start + datapoint.MaxBatch
		if end > len(reqs) {
			end = len(reqs)
		}
		chunk := reqs[start:end]

		payload, err := datapoint.EncodeMultiRequest(chunk)
		if err != nil {
			return nil, newErr("request_multiple_data", KindProtocol, err)
		}
		reply, _, err := c.do(transaction{
			op:             "request_multiple_data",
			dst:            dst,
			reqType:        ReqMultipleData,
			payload:        payload,
			obfuscateReply: true,
		})
		if err != nil {
			return nil, err
		}

		points := make([]datapoint.PointID, len(chunk))
		for i, r := range chunk {
			points[i] = r.Point
		}
		vals, err := datapoint.DecodeMultiReply(points, reply)
		if err != nil {
			return nil, newErr("request_multiple_data", KindProtocol, err)
		}
		out = append(out, vals...)
	}
	return out, nil
}

// Command identifies a write-command target (spec §4.7).
type Command int

const (
	CommandStart Command = iota
	CommandStop
	CommandReset
	CommandManualStart
)

func (cmd Command) point() datapoint.PointID {
	switch cmd {
	case CommandStart, CommandManualStart:
		return datapoint.CommandStart
	case CommandStop:
		return datapoint.CommandStop
	case CommandReset:
		return datapoint.CommandReset
	default:
		return datapoint.CommandEmpty
	}
}

// SendCommand writes cmd to the controller's command DataID (spec §4.7).
func (c *Client) SendCommand(dst byte, cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("send_command"); err != nil {
		return err
	}

	payload := datapoint.EncodeWrite([]datapoint.WriteItem{{Point: cmd.point(), Value: 1}})
	_, _, err := c.do(transaction{
		op:      "send_command",
		dst:     dst,
		reqType: ReqWriteData,
		payload: payload,
	})
	return err
}
