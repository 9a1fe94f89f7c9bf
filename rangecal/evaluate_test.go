package rangecal

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samplesFrom synthesises samples whose real distance is exactly what c predicts.
func samplesFrom(c Coefficients) []Sample {
	var samples []Sample
	for _, raw := range []float64{150, 400, 900, 1600} {
		for _, r := range []Reading{
			{Temperature: 12, Humidity: 30, Pressure: 99.2},
			{Temperature: 25, Humidity: 55, Pressure: 100.4},
			{Temperature: 34, Humidity: 80, Pressure: 101.1},
		} {
			samples = append(samples, Sample{
				RealDistance: float64(r.Compensate(c, float32(raw))),
				RawDistance:  raw,
				Reading:      r,
			})
		}
	}
	return samples
}

func Test_Evaluate_ExactFit(t *testing.T) {
	c := MustTable(ModelRegressionV4)
	r, err := Evaluate(c, samplesFrom(c))
	require.NoError(t, err)

	assert.Equal(t, ModelRegressionV4, r.Model)
	assert.Equal(t, 12, r.N)
	assert.InDelta(t, 0, r.RMSE, 1e-3)
	assert.InDelta(t, 1, r.RSquared, 1e-6)
	assert.Len(t, r.Residuals, 12)
}

func Test_Evaluate_Metrics(t *testing.T) {
	c := MustTable(ModelDirectSpeed)
	ref := Reading{Temperature: 20, Humidity: 0, Pressure: 100}

	// at the reference condition the direct-speed model returns the raw distance,
	// so the residuals are 1, -1, 3 and 0 mm
	samples := []Sample{
		{RealDistance: 101, RawDistance: 100, Reading: ref},
		{RealDistance: 199, RawDistance: 200, Reading: ref},
		{RealDistance: 303, RawDistance: 300, Reading: ref},
		{RealDistance: 400, RawDistance: 400, Reading: ref},
	}
	r, err := Evaluate(c, samples)
	require.NoError(t, err)

	assert.InDelta(t, 2.75, r.MSE, 1e-3)
	assert.InDelta(t, 1.6583, r.RMSE, 1e-3)
	assert.InDelta(t, 1.25, r.MAE, 1e-3)
	assert.InDelta(t, 3.0/303*100, r.MaxRelativeError, 1e-3)
	assert.InDelta(t, (1.0/101+1.0/199+3.0/303)*100/4, r.MeanRelativeError, 1e-3)
	// SS_res = 11, SS_tot = 50108.75
	assert.InDelta(t, 1-11/50108.75, r.RSquared, 1e-5)
	assert.InDelta(t, 3.0, r.Residuals[2], 1e-3)
}

func Test_Evaluate_NoSamples(t *testing.T) {
	_, err := Evaluate(MustTable(ModelDirectSpeed), nil)
	assert.ErrorIs(t, err, ErrNoSamples)
}

func Test_Evaluate_SingleSample(t *testing.T) {
	c := MustTable(ModelDirectSpeed)
	ref := Reading{Temperature: 20, Humidity: 0, Pressure: 100}

	r, err := Evaluate(c, []Sample{{RealDistance: 102, RawDistance: 100, Reading: ref}})
	require.NoError(t, err)
	assert.Equal(t, 1, r.N)
	assert.InDelta(t, 2.0, r.RMSE, 1e-3)
	assert.InDelta(t, 2.0, r.MAE, 1e-3)
	assert.True(t, math.IsNaN(r.RSquared))

	// constant real distances give no spread to explain either
	r, err = Evaluate(c, []Sample{
		{RealDistance: 100, RawDistance: 99, Reading: ref},
		{RealDistance: 100, RawDistance: 101, Reading: ref},
	})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(r.RSquared))
	assert.InDelta(t, 1.0, r.RMSE, 1e-3)
}

func Test_Evaluate_TimeOfFlight(t *testing.T) {
	c := MustTable(ModelRegressionV3)
	ref := Reading{Temperature: 27, Humidity: 60, Pressure: 100.9}
	samples := []Sample{
		{RealDistance: 500, RawDistance: 500, TimeOfFlight: 2911208, Reading: ref},
		{RealDistance: 1000, RawDistance: 1000, TimeOfFlight: 5822416, Reading: ref},
	}
	r, err := Evaluate(c, samples)
	require.NoError(t, err)
	assert.InDelta(t, float64(CompensateTimeOfFlight(c, 2911208, 27, 60, 100.9)), r.Predicted[0], 1e-6)
	assert.InDelta(t, float64(CompensateTimeOfFlight(c, 5822416, 27, 60, 100.9)), r.Predicted[1], 1e-6)
}

func Test_sortReports_NaNLast(t *testing.T) {
	reports := []Report{
		{Model: ModelRegressionV1, RMSE: math.NaN()},
		{Model: ModelRegressionV3, RMSE: 2},
		{Model: ModelDirectSpeed, RMSE: math.NaN()},
		{Model: ModelRegressionV4, RMSE: 1},
	}
	sortReports(reports)
	assert.Equal(t, ModelRegressionV4, reports[0].Model)
	assert.Equal(t, ModelRegressionV3, reports[1].Model)
	assert.Equal(t, ModelRegressionV1, reports[2].Model)
	assert.Equal(t, ModelDirectSpeed, reports[3].Model)
}

func Test_Compare(t *testing.T) {
	samples := samplesFrom(MustTable(ModelRegressionV3))

	reports, err := Compare(samples)
	require.NoError(t, err)
	require.Len(t, reports, len(Models()))
	assert.Equal(t, ModelRegressionV3, reports[0].Model)
	for i := 1; i < len(reports); i++ {
		assert.LessOrEqual(t, reports[i-1].RMSE, reports[i].RMSE)
	}

	reports, err = Compare(samples, ModelDirectSpeed, ModelRegressionV1)
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	_, err = Compare(samples, "regression-v2")
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, err = Compare(nil, ModelDirectSpeed)
	assert.ErrorIs(t, err, ErrNoSamples)
}

func Test_Report_ToCSV(t *testing.T) {
	c := MustTable(ModelDirectSpeed)
	ref := Reading{Temperature: 20, Humidity: 0, Pressure: 100}
	samples := []Sample{
		{RealDistance: 101, RawDistance: 100, Reading: ref},
		{RealDistance: 0, RawDistance: 5, Reading: ref},
	}
	r, err := Evaluate(c, samples)
	require.NoError(t, err)

	var buf bytes.Buffer
	r.ToCSV(&buf, samples)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "real_distance(mm),predicted(mm),residual(mm),relative_error(%)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "101,"))
	// relative error is undefined for a zero real distance
	assert.True(t, strings.HasSuffix(lines[2], ","))
}
