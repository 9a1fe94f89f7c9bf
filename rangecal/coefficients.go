package rangecal

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTable is returned for coefficient tables that cannot be evaluated.
var ErrInvalidTable = errors.New("invalid coefficient table")

//--------------------------------------
// Coefficient tables
//--------------------------------------

// Coefficients is one complete, versioned calibration table.
//
// Baselines and correction coefficients belong together: a table is only
// meaningful as a whole and is never assembled from parts of other tables.
type Coefficients struct {
	Model         Model
	Family        Family
	HumidityScale HumidityScale

	// Reference condition at which every correction term vanishes.
	SpeedOfSoundDefault float32 // [m/s]
	TemperatureDefault  float32 // [℃]
	HumidityDefault     float32 // [%]
	PressureDefault     float32 // [kPa]

	// Linear speed of sound correction.
	AT  float32 // [m/s/℃]
	ARH float32 // [m/s] per humidity unit (see HumidityScale)
	AP  float32 // [m/s/kPa]

	// Direct distance regression, FamilyRegression only.
	A0    float32 // [mm]
	A1    float32 // [mm/ns]
	B0    float32 // [mm/(ns·℃)]
	B1    float32 // [mm/ns]
	B2    float32 // [mm/(ns·kPa)]
	B3    float32 // [mm/℃]
	HasB3 bool
}

// Reference fits of the humidity/temperature speed correction.
// delta_t = t - 20, delta_rh = rh/100 - 0, delta_p = p - 100
const (
	fittedSpeedOfSound = 343.5
	fittedAT           = 1.779762
	fittedARH          = -20.035801
	fittedAP           = 0.0
)

var builtinTables = map[Model]Coefficients{
	ModelDirectSpeed: {
		Model:               ModelDirectSpeed,
		Family:              FamilyDirectSpeed,
		HumidityScale:       HumidityFraction,
		SpeedOfSoundDefault: fittedSpeedOfSound,
		TemperatureDefault:  20.0,
		HumidityDefault:     0.0,
		PressureDefault:     100.0,
		AT:                  fittedAT,
		ARH:                 fittedARH,
		AP:                  fittedAP,
	},

	// First refit. Carries the textbook speed of sound (v = 331.45 + 0.606 T)
	// and the standard atmosphere as pressure baseline, as the firmware header
	// does. The textbook formula is referenced to 0 ℃ but the header pairs it
	// with a 20 ℃ baseline, which the regression terms were fitted against,
	// so SpeedOfSound at 20 ℃ reads 331.45 m/s, about 12 m/s low.
	ModelRegressionV1: {
		Model:               ModelRegressionV1,
		Family:              FamilyRegression,
		HumidityScale:       HumidityPercent,
		SpeedOfSoundDefault: 331.45,
		TemperatureDefault:  20.0,
		HumidityDefault:     0.0,
		PressureDefault:     101.325,
		AT:                  0.606,
		ARH:                 0.0124,
		AP:                  0.0,
		A0:                  2.814600,
		A1:                  1.71526e-4,
		B0:                  3.04911e-7,
		B1:                  4.18277e-7,
		B2:                  -1.11974e-7,
	},

	ModelRegressionV3: {
		Model:               ModelRegressionV3,
		Family:              FamilyRegression,
		HumidityScale:       HumidityFraction,
		SpeedOfSoundDefault: fittedSpeedOfSound,
		TemperatureDefault:  20.0,
		HumidityDefault:     0.0,
		PressureDefault:     100.0,
		AT:                  fittedAT,
		ARH:                 fittedARH,
		AP:                  fittedAP,
		A0:                  -1.593402,
		A1:                  1.72083e-4,
		B0:                  8.71548e-7,
		B1:                  -9.36502e-6,
		B2:                  2.02410e-8,
	},

	// Adds a plain temperature offset term on top of v3.
	ModelRegressionV4: {
		Model:               ModelRegressionV4,
		Family:              FamilyRegression,
		HumidityScale:       HumidityFraction,
		SpeedOfSoundDefault: fittedSpeedOfSound,
		TemperatureDefault:  20.0,
		HumidityDefault:     0.0,
		PressureDefault:     100.0,
		AT:                  fittedAT,
		ARH:                 fittedARH,
		AP:                  fittedAP,
		A0:                  -1.207833,
		A1:                  1.71964e-4,
		B0:                  8.80217e-7,
		B1:                  -9.91480e-6,
		B2:                  1.38760e-8,
		B3:                  -0.041562,
		HasB3:               true,
	},
}

// Table returns the compiled-in coefficient table for m.
func Table(m Model) (Coefficients, error) {
	c, ok := builtinTables[m]
	if !ok {
		return Coefficients{}, fmt.Errorf("%w: %q", ErrUnknownModel, string(m))
	}
	return c, nil
}

// MustTable is like Table but panics on an unknown model.
// Intended for package-level initialisation with a literal model name.
func MustTable(m Model) Coefficients {
	c, err := Table(m)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate reports tables that cannot be evaluated meaningfully.
// Physically implausible but finite values are accepted.
func (c Coefficients) Validate() error {
	switch c.Family {
	case FamilyDirectSpeed, FamilyRegression:
	default:
		return fmt.Errorf("%w: unknown family %v", ErrInvalidTable, c.Family)
	}
	switch c.HumidityScale {
	case HumidityFraction, HumidityPercent:
	default:
		return fmt.Errorf("%w: unknown humidity scale %v", ErrInvalidTable, c.HumidityScale)
	}
	if c.SpeedOfSoundDefault == 0 {
		return fmt.Errorf("%w: speed_of_sound_default must be non-zero", ErrInvalidTable)
	}
	if c.Family == FamilyDirectSpeed && (c.A0 != 0 || c.A1 != 0 || c.B0 != 0 || c.B1 != 0 || c.B2 != 0 || c.HasB3) {
		return fmt.Errorf("%w: direct-speed table carries regression coefficients", ErrInvalidTable)
	}
	for name, v := range c.values() {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidTable, name)
		}
	}
	return nil
}

func (c Coefficients) values() map[string]float32 {
	return map[string]float32{
		"speed_of_sound_default": c.SpeedOfSoundDefault,
		"temperature_default":    c.TemperatureDefault,
		"humidity_default":       c.HumidityDefault,
		"pressure_default":       c.PressureDefault,
		"a_t":                    c.AT,
		"a_rh":                   c.ARH,
		"a_p":                    c.AP,
		"a0":                     c.A0,
		"a1":                     c.A1,
		"b0":                     c.B0,
		"b1":                     c.B1,
		"b2":                     c.B2,
		"b3":                     c.B3,
	}
}
