package rangecal

import "math"

// ReferenceSpeedOfSound is the speed [mm/s] the sensor assumes when it
// reports a raw distance.
const ReferenceSpeedOfSound = 343500.0

//--------------------------------------
// Distance compensation
//--------------------------------------

// Reading is one environmental sample taken alongside a range reading.
type Reading struct {
	Temperature float32 // [℃]
	Humidity    float32 // [%]
	Pressure    float32 // [kPa]
}

// SpeedOfSound evaluates SpeedOfSound for r.
func (r Reading) SpeedOfSound(c Coefficients) float32 {
	return SpeedOfSound(c, r.Temperature, r.Humidity, r.Pressure)
}

// Compensate evaluates CompensateDistance for r.
func (r Reading) Compensate(c Coefficients, rawDistance float32) float32 {
	return CompensateDistance(c, rawDistance, r.Temperature, r.Humidity, r.Pressure)
}

// TimeOfFlight recovers the round-trip time [ns] from a raw distance [mm]
// that was computed with ReferenceSpeedOfSound.
func TimeOfFlight(rawDistance float32) float32 {
	return (rawDistance * 2.0) / ReferenceSpeedOfSound * 1e9
}

// RawDistance is the inverse of TimeOfFlight.
func RawDistance(timeOfFlight float32) float32 {
	return timeOfFlight * 1e-9 * ReferenceSpeedOfSound / 2.0
}

// CompensateDistance converts a raw distance [mm] into a compensated
// one-way distance [mm] using the formula family of c.
func CompensateDistance(c Coefficients, rawDistance, temperature, humidity, pressure float32) float32 {
	return CompensateTimeOfFlight(c, TimeOfFlight(rawDistance), temperature, humidity, pressure)
}

// CompensateTimeOfFlight is CompensateDistance for a measured round-trip
// time [ns], skipping the raw distance round trip.
func CompensateTimeOfFlight(c Coefficients, tof, temperature, humidity, pressure float32) float32 {
	switch c.Family {
	case FamilyDirectSpeed:
		return DirectSpeedDistance(c, tof, temperature, humidity, pressure)
	case FamilyRegression:
		return RegressionDistance(c, tof, temperature, humidity, pressure)
	}
	return float32(math.NaN())
}

// DirectSpeedDistance applies the corrected speed of sound to a round-trip
// time of flight [ns].
func DirectSpeedDistance(c Coefficients, timeOfFlight, temperature, humidity, pressure float32) float32 {
	actualSpeed := SpeedOfSound(c, temperature, humidity, pressure)
	return (timeOfFlight * 1e-9) * actualSpeed / 2.0
}

// RegressionDistance evaluates the direct distance regression for a
// round-trip time of flight [ns].
//
//	d = a0 + a1*tof + b0*dt*tof + b1*drh*tof/100 + b2*dp*tof [+ b3*dt]
func RegressionDistance(c Coefficients, timeOfFlight, temperature, humidity, pressure float32) float32 {
	deltaT := temperature - c.TemperatureDefault
	deltaRH := humidity - c.HumidityDefault
	deltaP := pressure - c.PressureDefault

	d := c.A0 + c.A1*timeOfFlight
	d += c.B0 * deltaT * timeOfFlight
	d += c.B1 * deltaRH * timeOfFlight / 100
	d += c.B2 * deltaP * timeOfFlight
	if c.HasB3 {
		d += c.B3 * deltaT
	}
	return d
}
