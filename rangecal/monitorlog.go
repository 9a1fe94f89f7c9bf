package rangecal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hhkbp2/go-logging"
)

//--------------------------------------
// Device monitor serial logs
//--------------------------------------

// MonitorRecord is one block of a device monitor log. Values that did not
// appear in the block are NaN.
type MonitorRecord struct {
	Time         time.Time
	RawDistance  float64 // [mm]
	TimeOfFlight float64 // [ns]
	Temperature  float64 // [℃]
	Humidity     float64 // [%]
	Pressure     float64 // [kPa]
}

var (
	reTimestamp    = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{3}) >`)
	reRawDistance  = regexp.MustCompile(`US Raw:\s+(-?[\d.]+)\s+mm`)
	reTimeOfFlight = regexp.MustCompile(`Time of Flight:\s+(-?[\d.]+)\s+ns`)
	reTemperature  = regexp.MustCompile(`Temp:\s+(-?[\d.]+)\s+°C`)
	reHumidity     = regexp.MustCompile(`Hum:\s+(-?[\d.]+)\s+%`)
	rePressure     = regexp.MustCompile(`Pres:\s+(-?[\d.]+)\s+kPa`)

	reMonitorFile = regexp.MustCompile(`(\d{6})-(\d{6})\.log$`)

	// Lines from channels that carry no ranging data.
	skipMarkers = []string{"Alt", "Xg", "Yg", "Zg", "Mic", "EMF", "Light", "AIN"}
)

const monitorSeparator = "-----------------------------------------------------------"

// MonitorDay extracts the recording date from a log file named
// device-monitor-YYMMDD-HHMMSS.log.
func MonitorDay(filename string) (time.Time, error) {
	m := reMonitorFile.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return time.Time{}, fmt.Errorf("monitor log: no YYMMDD-HHMMSS in file name %q", filename)
	}
	day, err := time.Parse("060102", m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("monitor log: file name %q: %w", filename, err)
	}
	return day, nil
}

// ParseMonitorLog extracts ranging records from a device monitor log.
// A record starts at the first "HH:MM:SS.sss >" timestamp after a separator
// line, and ends at the next separator or when a value it already holds
// appears again. Records are dated on day.
func ParseMonitorLog(r io.Reader, day time.Time) ([]MonitorRecord, error) {
	var records []MonitorRecord
	open := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, monitorSeparator) {
			open = false
			continue
		}
		if line == "" || skipLine(line) {
			continue
		}

		var at time.Time
		stamped := false
		if m := reTimestamp.FindStringSubmatch(line); m != nil {
			clock, err := time.Parse("15:04:05.000", m[1])
			if err != nil {
				return nil, fmt.Errorf("monitor log: timestamp %q: %w", m[1], err)
			}
			at = time.Date(day.Year(), day.Month(), day.Day(),
				clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), day.Location())
			stamped = true
		} else if open {
			at = records[len(records)-1].Time
		}

		switch {
		case !open && stamped:
			records = append(records, newMonitorRecord(at))
			open = true
		case open && repeats(&records[len(records)-1], line):
			records = append(records, newMonitorRecord(at))
		}
		if !open {
			continue
		}

		for _, f := range recordFields(&records[len(records)-1]) {
			matchFloat(f.re, line, f.dst)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("monitor log: %w", err)
	}

	logging.GetLogger(LoggerName).Infof("monitor log: extracted %d records", len(records))
	return records, nil
}

func newMonitorRecord(at time.Time) MonitorRecord {
	nan := math.NaN()
	return MonitorRecord{
		Time:         at,
		RawDistance:  nan,
		TimeOfFlight: nan,
		Temperature:  nan,
		Humidity:     nan,
		Pressure:     nan,
	}
}

type monitorField struct {
	re  *regexp.Regexp
	dst *float64
}

func recordFields(rec *MonitorRecord) []monitorField {
	return []monitorField{
		{reRawDistance, &rec.RawDistance},
		{reTimeOfFlight, &rec.TimeOfFlight},
		{reTemperature, &rec.Temperature},
		{reHumidity, &rec.Humidity},
		{rePressure, &rec.Pressure},
	}
}

// repeats reports whether line carries a value rec already holds, which
// means the line belongs to the next reading.
func repeats(rec *MonitorRecord, line string) bool {
	for _, f := range recordFields(rec) {
		if !math.IsNaN(*f.dst) && f.re.MatchString(line) {
			return true
		}
	}
	return false
}

func skipLine(line string) bool {
	for _, marker := range skipMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func matchFloat(re *regexp.Regexp, line string, dst *float64) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return
	}
	if v, err := strconv.ParseFloat(m[1], 64); err == nil {
		*dst = v
	}
}

// Complete reports whether the record has a range and all three
// environmental values.
func (rec MonitorRecord) Complete() bool {
	for _, v := range []float64{rec.Temperature, rec.Humidity, rec.Pressure} {
		if math.IsNaN(v) {
			return false
		}
	}
	return !math.IsNaN(rec.RawDistance) || !math.IsNaN(rec.TimeOfFlight)
}

// Raw returns the raw distance [mm], derived from the time of flight when
// the log only carried the latter.
func (rec MonitorRecord) Raw() float64 {
	if !math.IsNaN(rec.RawDistance) {
		return rec.RawDistance
	}
	if !math.IsNaN(rec.TimeOfFlight) {
		return float64(RawDistance(float32(rec.TimeOfFlight)))
	}
	return math.NaN()
}

// Reading returns the environmental part of the record.
func (rec MonitorRecord) Reading() Reading {
	return Reading{
		Temperature: float32(rec.Temperature),
		Humidity:    float32(rec.Humidity),
		Pressure:    float32(rec.Pressure),
	}
}

// Compensate returns the compensated distance [mm], or NaN for an
// incomplete record.
func (rec MonitorRecord) Compensate(c Coefficients) float64 {
	if !rec.Complete() {
		return math.NaN()
	}
	r := rec.Reading()
	if math.IsNaN(rec.RawDistance) {
		return float64(CompensateTimeOfFlight(c, float32(rec.TimeOfFlight), r.Temperature, r.Humidity, r.Pressure))
	}
	return float64(r.Compensate(c, float32(rec.RawDistance)))
}
