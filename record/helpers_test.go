package record

import "github.com/ic1000/mnet-go/datapoint"

func tsFromSeconds(s uint32) datapoint.Timestamp {
	return datapoint.Timestamp{Seconds: s}
}
