// Package rangecal converts raw ultrasonic range readings into distances
// compensated for air temperature, relative humidity and barometric pressure.
//
// The raw reading is assumed to have been produced with a fixed reference
// speed of sound of 343.5 m/s. It is turned back into a round-trip time of
// flight and re-evaluated with one of two model families:
//
//   - direct-speed: recompute the speed of sound from T/RH/P and apply it
//     to the time of flight
//   - regression: a linear fit of distance against time of flight and the
//     environmental deltas
//
// Which family and which coefficient table is active is a configuration
// choice (see Model, Table and LoadConfig), never a per-call parameter.
package rangecal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownModel is returned when a model name does not match any built-in table.
var ErrUnknownModel = errors.New("unknown model")

// Model names one compiled-in coefficient table.
type Model string

const (
	ModelDirectSpeed  Model = "direct-speed"
	ModelRegressionV1 Model = "regression-v1"
	ModelRegressionV3 Model = "regression-v3"
	ModelRegressionV4 Model = "regression-v4"
)

// Models returns every built-in model in declaration order.
func Models() []Model {
	return []Model{ModelDirectSpeed, ModelRegressionV1, ModelRegressionV3, ModelRegressionV4}
}

// ParseModel resolves a model name. Surrounding whitespace and case are ignored.
func ParseModel(name string) (Model, error) {
	m := Model(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Models() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

func (m Model) String() string {
	return string(m)
}

// Family is the formula family a coefficient table is fitted for.
type Family int

const (
	// FamilyDirectSpeed recomputes the speed of sound and reapplies it to the time of flight.
	FamilyDirectSpeed Family = iota + 1
	// FamilyRegression fits the distance directly against time of flight and environmental deltas.
	FamilyRegression
)

func (f Family) String() string {
	switch f {
	case FamilyDirectSpeed:
		return "direct-speed"
	case FamilyRegression:
		return "regression"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// parseFamily is the inverse of Family.String.
func parseFamily(s string) (Family, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct-speed":
		return FamilyDirectSpeed, true
	case "regression":
		return FamilyRegression, true
	}
	return 0, false
}

// HumidityScale is the unit convention the humidity coefficient a_rh was fitted under.
type HumidityScale int

const (
	// HumidityFraction divides the humidity delta by 100 before applying a_rh.
	HumidityFraction HumidityScale = iota + 1
	// HumidityPercent applies a_rh to the raw percentage delta.
	HumidityPercent
)

func (s HumidityScale) String() string {
	switch s {
	case HumidityFraction:
		return "fraction"
	case HumidityPercent:
		return "percent"
	}
	return fmt.Sprintf("HumidityScale(%d)", int(s))
}

// divisor returns the value the humidity delta is divided by.
func (s HumidityScale) divisor() float32 {
	if s == HumidityPercent {
		return 1
	}
	return 100
}

func parseHumidityScale(s string) (HumidityScale, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fraction":
		return HumidityFraction, true
	case "percent":
		return HumidityPercent, true
	}
	return 0, false
}
