package rangecal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hhkbp2/go-logging"
)

// ErrMissingColumn is returned when a sample CSV lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Accepted header names per sample field.
var (
	colRealDistance = []string{"real_distance(mm)", "real_distance"}
	colRawDistance  = []string{"us_raw", "raw_distance(mm)", "raw_distance"}
	colTimeOfFlight = []string{"time_of_flight(ns)", "time_of_flight"}
	colTemperature  = []string{"temperature(c)", "temperature", "temp"}
	colHumidity     = []string{"humidity(%)", "humidity", "hum"}
	colPressure     = []string{"pressure(kpa)", "pressure", "pres"}
)

// ReadSamplesCSV reads reference samples from a headed CSV.
//
// Required columns are the real distance, temperature [℃], humidity [%] and
// pressure [kPa], plus either the raw distance [mm] or the time of flight
// [ns]. A time of flight column is kept on the sample and compensated as
// measured. When it is the only range column, RawDistance is derived from it
// with ReferenceSpeedOfSound for display.
func ReadSamplesCSV(r io.Reader) ([]Sample, error) {
	csvReader := csv.NewReader(r)
	csvReader.ReuseRecord = true
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, ErrNoSamples
	}
	if err != nil {
		return nil, fmt.Errorf("samples: read header: %w", err)
	}
	header = append([]string(nil), header...) // ReuseRecord overwrites the slice
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	realCol, err := column(index, colRealDistance)
	if err != nil {
		return nil, err
	}
	temp, err := column(index, colTemperature)
	if err != nil {
		return nil, err
	}
	hum, err := column(index, colHumidity)
	if err != nil {
		return nil, err
	}
	pres, err := column(index, colPressure)
	if err != nil {
		return nil, err
	}
	raw, rawErr := column(index, colRawDistance)
	tof, tofErr := column(index, colTimeOfFlight)
	if rawErr != nil && tofErr != nil {
		return nil, fmt.Errorf("%w: one of %s or %s", ErrMissingColumn, colRawDistance[0], colTimeOfFlight[0])
	}

	var samples []Sample
	for line := 2; ; line++ {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("samples: line %d: %w", line, err)
		}

		field := func(i int) (float64, error) {
			if i >= len(row) {
				return 0, fmt.Errorf("samples: line %d: column %q missing", line, header[i])
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				return 0, fmt.Errorf("samples: line %d: column %q: %w", line, header[i], err)
			}
			return v, nil
		}

		var s Sample
		var v float64
		if s.RealDistance, err = field(realCol); err != nil {
			return nil, err
		}
		if v, err = field(temp); err != nil {
			return nil, err
		}
		s.Temperature = float32(v)
		if v, err = field(hum); err != nil {
			return nil, err
		}
		s.Humidity = float32(v)
		if v, err = field(pres); err != nil {
			return nil, err
		}
		s.Pressure = float32(v)
		// a blank time of flight cell is allowed when the raw distance is there
		if tofErr == nil && (rawErr != nil || (tof < len(row) && strings.TrimSpace(row[tof]) != "")) {
			if s.TimeOfFlight, err = field(tof); err != nil {
				return nil, err
			}
		}
		if rawErr == nil {
			if s.RawDistance, err = field(raw); err != nil {
				return nil, err
			}
		} else {
			s.RawDistance = float64(RawDistance(float32(s.TimeOfFlight)))
		}
		samples = append(samples, s)
	}

	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	logging.GetLogger(LoggerName).Debugf("read %d samples", len(samples))
	return samples, nil
}

func column(index map[string]int, names []string) (int, error) {
	for _, n := range names {
		if i, ok := index[n]; ok {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingColumn, names[0])
}
