package rangecal

import (
	"bytes"
	"math"
	"strconv"
)

// WriteRecordsCSV writes monitor records as
// datetime,us_raw,time_of_flight,temp,hum,pres. Missing values are left empty.
func WriteRecordsCSV(buf *bytes.Buffer, records []MonitorRecord) {
	buf.WriteString("datetime")
	buf.WriteString(",us_raw")
	buf.WriteString(",time_of_flight")
	buf.WriteString(",temp")
	buf.WriteString(",hum")
	buf.WriteString(",pres")
	buf.WriteString("\n")

	for _, rec := range records {
		buf.WriteString(rec.Time.Format("2006-01-02 15:04:05.000"))
		writeFloat(buf, rec.RawDistance)
		writeFloat(buf, rec.TimeOfFlight)
		writeFloat(buf, rec.Temperature)
		writeFloat(buf, rec.Humidity)
		writeFloat(buf, rec.Pressure)
		buf.WriteString("\n")
	}
}

// ToCSV writes the per-sample detail of an evaluation:
// real,predicted,residual,relative_error.
func (r Report) ToCSV(buf *bytes.Buffer, samples []Sample) {
	buf.WriteString("real_distance(mm)")
	buf.WriteString(",predicted(mm)")
	buf.WriteString(",residual(mm)")
	buf.WriteString(",relative_error(%)")
	buf.WriteString("\n")

	for i := 0; i < len(r.Predicted) && i < len(samples); i++ {
		buf.WriteString(strconv.FormatFloat(samples[i].RealDistance, 'f', -1, 64))
		writeFloat(buf, r.Predicted[i])
		writeFloat(buf, r.Residuals[i])
		rel := math.NaN()
		if samples[i].RealDistance != 0 {
			rel = math.Abs(r.Residuals[i]/samples[i].RealDistance) * 100
		}
		writeFloat(buf, rel)
		buf.WriteString("\n")
	}
}

func writeFloat(buf *bytes.Buffer, v float64) {
	buf.WriteString(",")
	if math.IsNaN(v) {
		return
	}
	buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
}
