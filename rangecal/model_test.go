package rangecal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseModel(t *testing.T) {
	for _, m := range Models() {
		got, err := ParseModel(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseModel("  Regression-V3 ")
	require.NoError(t, err)
	assert.Equal(t, ModelRegressionV3, got)

	_, err = ParseModel("regression-v2")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func Test_Table_Builtin(t *testing.T) {
	for _, m := range Models() {
		c, err := Table(m)
		require.NoError(t, err)
		assert.NoError(t, c.Validate(), m.String())
		assert.Equal(t, m, c.Model)
	}

	assert.Equal(t, FamilyDirectSpeed, MustTable(ModelDirectSpeed).Family)
	assert.Equal(t, FamilyRegression, MustTable(ModelRegressionV1).Family)
	assert.Equal(t, FamilyRegression, MustTable(ModelRegressionV3).Family)
	assert.Equal(t, FamilyRegression, MustTable(ModelRegressionV4).Family)

	// only the latest refit carries the temperature offset
	assert.False(t, MustTable(ModelRegressionV1).HasB3)
	assert.False(t, MustTable(ModelRegressionV3).HasB3)
	assert.True(t, MustTable(ModelRegressionV4).HasB3)

	// historical pressure baseline and humidity convention
	v1 := MustTable(ModelRegressionV1)
	assert.Equal(t, float32(101.325), v1.PressureDefault)
	assert.Equal(t, HumidityPercent, v1.HumidityScale)

	// the 0 ℃ textbook speed sits on a 20 ℃ baseline, as the firmware header has it
	assert.Equal(t, float32(20), v1.TemperatureDefault)
	assert.InDelta(t, 331450.0, float64(SpeedOfSound(v1, 20, 0, 101.325)), 0.1)
}

func Test_Table_Unknown(t *testing.T) {
	_, err := Table("regression-v9")
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.Panics(t, func() { MustTable("regression-v9") })
}

// Tables are values: modifying a copy does not change the built-in table
func Test_Table_Immutable(t *testing.T) {
	c := MustTable(ModelDirectSpeed)
	c.AT = 99
	assert.Equal(t, float32(1.779762), MustTable(ModelDirectSpeed).AT)
}

func Test_Coefficients_Validate(t *testing.T) {
	valid := MustTable(ModelRegressionV3)

	tests := []struct {
		name   string
		modify func(c *Coefficients)
	}{
		{"unknown family", func(c *Coefficients) { c.Family = 0 }},
		{"unknown humidity scale", func(c *Coefficients) { c.HumidityScale = 7 }},
		{"zero speed of sound", func(c *Coefficients) { c.SpeedOfSoundDefault = 0 }},
		{"nan coefficient", func(c *Coefficients) { c.B1 = float32(math.NaN()) }},
		{"infinite baseline", func(c *Coefficients) { c.PressureDefault = float32(math.Inf(1)) }},
		{"direct-speed with regression terms", func(c *Coefficients) { c.Family = FamilyDirectSpeed }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.modify(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidTable)
		})
	}

	// implausible but finite values are accepted
	c := valid
	c.TemperatureDefault = -300
	assert.NoError(t, c.Validate())
}

func Test_Enum_String(t *testing.T) {
	assert.Equal(t, "direct-speed", FamilyDirectSpeed.String())
	assert.Equal(t, "regression", FamilyRegression.String())
	assert.Equal(t, "Family(0)", Family(0).String())
	assert.Equal(t, "fraction", HumidityFraction.String())
	assert.Equal(t, "percent", HumidityPercent.String())
	assert.Equal(t, "HumidityScale(9)", HumidityScale(9).String())
}
