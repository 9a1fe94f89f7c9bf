package rangecal

//--------------------------------------
// Speed of sound
//--------------------------------------

// SpeedOfSound returns the speed of sound [mm/s] at temperature [℃],
// relative humidity [%] and pressure [kPa], as a first-order correction of
// the table's reference speed.
//
//	v = v0 + a_t*(t - t0) + a_rh*(rh - rh0)/k + a_p*(p - p0)
//
// k is 100 for tables fitted on fractional humidity and 1 for tables fitted
// on raw percent.
func SpeedOfSound(c Coefficients, temperature, humidity, pressure float32) float32 {
	speed := c.SpeedOfSoundDefault
	speed += c.AT * (temperature - c.TemperatureDefault)
	speed += c.ARH * (humidity - c.HumidityDefault) / c.HumidityScale.divisor()
	speed += c.AP * (pressure - c.PressureDefault)
	return speed * 1000 // m/s -> mm/s
}
