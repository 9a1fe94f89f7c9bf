package rangecal

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hhkbp2/go-logging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoSamples is returned when there is nothing to evaluate.
var ErrNoSamples = errors.New("no samples")

//--------------------------------------
// Model evaluation against reference distances
//--------------------------------------

// Sample is one range reading with its measured ground-truth distance.
type Sample struct {
	RealDistance float64 // [mm]
	RawDistance  float64 // [mm], as reported by the sensor
	// TimeOfFlight is the measured round-trip time [ns], or 0 when only the
	// raw distance is known. When set it is compensated directly.
	TimeOfFlight float64
	Reading
}

// compensate predicts the distance [mm] of s with c.
func (s Sample) compensate(c Coefficients) float64 {
	if s.TimeOfFlight != 0 {
		return float64(CompensateTimeOfFlight(c, float32(s.TimeOfFlight), s.Temperature, s.Humidity, s.Pressure))
	}
	return float64(s.Compensate(c, float32(s.RawDistance)))
}

// Report summarises how well a table reproduces the reference distances.
type Report struct {
	Model Model
	N     int

	// RSquared is NaN when the real distances have no spread, which includes
	// a single sample.
	RSquared float64
	MSE      float64 // [mm²]
	RMSE     float64 // [mm]
	MAE      float64 // [mm]

	MeanRelativeError float64 // [%]
	MaxRelativeError  float64 // [%]

	Predicted []float64 // [mm]
	Residuals []float64 // real - predicted [mm]
}

// Evaluate compensates every sample with c and compares the result with the
// sample's real distance.
func Evaluate(c Coefficients, samples []Sample) (Report, error) {
	if len(samples) == 0 {
		return Report{}, ErrNoSamples
	}

	n := len(samples)
	actual := make([]float64, n)
	predicted := make([]float64, n)
	residuals := make([]float64, n)
	squared := make([]float64, n)
	absolute := make([]float64, n)
	relative := make([]float64, 0, n)

	for i, s := range samples {
		actual[i] = s.RealDistance
		predicted[i] = s.compensate(c)
		residuals[i] = actual[i] - predicted[i]
		squared[i] = residuals[i] * residuals[i]
		absolute[i] = math.Abs(residuals[i])
		if s.RealDistance != 0 {
			relative = append(relative, absolute[i]/math.Abs(s.RealDistance)*100)
		}
	}

	r := Report{
		Model:     c.Model,
		N:         n,
		RSquared:  math.NaN(),
		MSE:       stat.Mean(squared, nil),
		MAE:       stat.Mean(absolute, nil),
		Predicted: predicted,
		Residuals: residuals,
	}
	r.RMSE = math.Sqrt(r.MSE)
	if floats.Max(actual) > floats.Min(actual) {
		r.RSquared = stat.RSquaredFrom(predicted, actual, nil)
	}
	if len(relative) > 0 {
		r.MeanRelativeError = stat.Mean(relative, nil)
		r.MaxRelativeError = floats.Max(relative)
	}

	logging.GetLogger(LoggerName).Debugf("evaluated %s on %d samples: rmse=%.4f mm r2=%.6f", c.Model, n, r.RMSE, r.RSquared)
	return r, nil
}

// Compare evaluates the built-in tables of models against the same samples.
// Reports are ordered by RMSE, best first. A NaN RMSE sorts last.
func Compare(samples []Sample, models ...Model) ([]Report, error) {
	if len(models) == 0 {
		models = Models()
	}
	reports := make([]Report, 0, len(models))
	for _, m := range models {
		c, err := Table(m)
		if err != nil {
			return nil, err
		}
		r, err := Evaluate(c, samples)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", m, err)
		}
		reports = append(reports, r)
	}
	sortReports(reports)
	logging.GetLogger(LoggerName).Infof("compared %d models on %d samples, best: %s", len(reports), len(samples), reports[0].Model)
	return reports, nil
}

func sortReports(reports []Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i].RMSE, reports[j].RMSE
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a < b
	})
}
