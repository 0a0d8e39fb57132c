package kerbmath

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// traceHeader are the columns written by WriteTrace.
var traceHeader = []string{"jd", "t", "altitude", "gravity", "drag", "airspeed", "energy"}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteTrace writes the trace of an entry as CSV. The entry is assumed to start at epoch, which sets the Julian
// date column; the t column is in seconds since entry.
func WriteTrace(w io.Writer, res EntryResult, epoch time.Time) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(traceHeader); err != nil {
		return err
	}
	for _, s := range res.Trace {
		dt := epoch.Add(time.Duration(s.T * float64(time.Second)))
		record := []string{
			strconv.FormatFloat(julian.TimeToJD(dt), 'f', 8, 64),
			formatFloat(s.T),
			formatFloat(s.Altitude),
			formatFloat(s.Gravity),
			formatFloat(s.Drag),
			formatFloat(s.AirSpeed),
			formatFloat(s.Energyξ),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
