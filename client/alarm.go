package client

import (
	"fmt"

	"github.com/ic1000/mnet-go/record"
)

// alarmSlotCount is how many alarm sub_ids the controller exposes. Not
// given by spec.md or original_source (which implements no alarm fetching
// at all); picked as a practical upper bound for get_alarm_history_batch's
// full sweep.
const alarmSlotCount = 64

// GetAlarmRecord reads one alarm slot by sub_id (spec §4.7/§4.8). The first
// fetch for a given sub_id also caches its description; later calls reuse
// the cached description and only re-fetch the occurrence timestamp.
func (c *Client) GetAlarmRecord(dst byte, subID uint16) (record.Alarm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("get_alarm_record"); err != nil {
		return record.Alarm{}, err
	}
	return c.getAlarmRecordLocked(dst, subID)
}

func (c *Client) getAlarmRecordLocked(dst byte, subID uint16) (record.Alarm, error) {
	if _, known := c.descCache.Get(subID); !known {
		if err := c.fetchAlarmDescriptionLocked(dst, subID); err != nil {
			return record.Alarm{}, err
		}
	}

	payload := []byte{byte(subID >> 8), byte(subID)}
	reply, _, err := c.do(transaction{
		op:             "get_alarm_record",
		dst:            dst,
		reqType:        RequestAlarmCode,
		payload:        payload,
		obfuscateReply: true,
		maxRetries:     c.cfg.MaxAlarmRetries,
	})
	if err != nil {
		return record.Alarm{}, err
	}

	_, occurred, err := record.ParseAlarmOccurrence(reply)
	if err != nil {
		return record.Alarm{}, newErr("get_alarm_record", KindProtocol, err)
	}
	return c.descCache.Resolve(subID, occurred), nil
}

func (c *Client) fetchAlarmDescriptionLocked(dst byte, subID uint16) error {
	payload := []byte{byte(subID >> 8), byte(subID)}
	reply, _, err := c.do(transaction{
		op:             "get_alarm_record",
		dst:            dst,
		reqType:        AlarmDataReq1,
		payload:        payload,
		obfuscateReply: true,
		maxRetries:     c.cfg.MaxAlarmRetries,
	})
	if err != nil {
		return err
	}
	gotID, desc, err := record.ParseAlarmDescription(reply)
	if err != nil {
		return newErr("get_alarm_record", KindProtocol, err)
	}
	if gotID != subID {
		return newErr("get_alarm_record", KindProtocol, fmt.Errorf("alarm description reply sub_id %d, want %d", gotID, subID))
	}
	c.descCache.Put(subID, desc)
	return nil
}

// GetAlarmHistoryBatch reads every known alarm slot (spec §4.7), optionally
// filtering to only those that have occurred at least once.
func (c *Client) GetAlarmHistoryBatch(dst byte, onlyOccurred bool) ([]record.Alarm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAuthenticated("get_alarm_history_batch"); err != nil {
		return nil, err
	}

	out := make([]record.Alarm, 0, alarmSlotCount)
	for subID := uint16(0); subID < alarmSlotCount; subID++ {
		a, err := c.getAlarmRecordLocked(dst, subID)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	record.SortBySubID(out)
	if onlyOccurred {
		out = record.FilterOccurred(out)
	}
	return out, nil
}
