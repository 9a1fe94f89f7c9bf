package rangecal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hhkbp2/go-logging"
	"gopkg.in/yaml.v3"
)

//--------------------------------------
// Calibration configuration
//--------------------------------------

// Config selects the active compensation model and optionally replaces its
// built-in table with a per-sensor calibration.
type Config struct {
	ActiveModel Model
	// Override is the per-sensor table, or nil when the built-in table is used.
	Override *Coefficients
}

// configFile is the YAML layout of a calibration config.
type configFile struct {
	ActiveModel string     `yaml:"active_model"`
	Table       *tableFile `yaml:"table"`
}

// tableFile uses pointers so that absent keys can be told apart from zeros.
type tableFile struct {
	Family        string `yaml:"family"`
	HumidityScale string `yaml:"humidity_scale"`

	SpeedOfSoundDefault *float32 `yaml:"speed_of_sound_default"`
	TemperatureDefault  *float32 `yaml:"temperature_default"`
	HumidityDefault     *float32 `yaml:"humidity_default"`
	PressureDefault     *float32 `yaml:"pressure_default"`

	AT  *float32 `yaml:"a_t"`
	ARH *float32 `yaml:"a_rh"`
	AP  *float32 `yaml:"a_p"`

	A0 *float32 `yaml:"a0"`
	A1 *float32 `yaml:"a1"`
	B0 *float32 `yaml:"b0"`
	B1 *float32 `yaml:"b1"`
	B2 *float32 `yaml:"b2"`
	B3 *float32 `yaml:"b3"`
}

// LoadConfig reads and validates the YAML calibration config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	logging.GetLogger(LoggerName).Infof("calibration config loaded: %s (model=%s, override=%t)", path, cfg.ActiveModel, cfg.Override != nil)
	return cfg, nil
}

// ParseConfig parses a YAML calibration config. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var raw configFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if raw.ActiveModel == "" {
		return nil, fmt.Errorf("config: active_model is required")
	}
	model, err := ParseModel(raw.ActiveModel)
	if err != nil {
		return nil, fmt.Errorf("config: active_model: %w", err)
	}

	cfg := &Config{ActiveModel: model}
	if raw.Table == nil {
		return cfg, nil
	}

	builtin := MustTable(model)
	table, err := raw.Table.coefficients(model, builtin.Family)
	if err != nil {
		return nil, fmt.Errorf("config: table: %w", err)
	}
	cfg.Override = &table
	return cfg, nil
}

// Coefficients resolves the active table: the override when present,
// otherwise the built-in table of ActiveModel.
func (cfg *Config) Coefficients() (Coefficients, error) {
	if cfg.Override != nil {
		return *cfg.Override, nil
	}
	return Table(cfg.ActiveModel)
}

// coefficients builds a complete table. The humidity scale and every
// baseline and speed field are required so that nothing is silently
// inherited from the built-in table.
func (t *tableFile) coefficients(model Model, want Family) (Coefficients, error) {
	c := Coefficients{Model: model, Family: want}

	if t.Family != "" {
		f, ok := parseFamily(t.Family)
		if !ok {
			return Coefficients{}, fmt.Errorf("%w: unknown family %q", ErrInvalidTable, t.Family)
		}
		if f != want {
			return Coefficients{}, fmt.Errorf("%w: family %s does not match model %s", ErrInvalidTable, f, model)
		}
	}
	// a_rh is meaningless without its humidity convention
	if t.HumidityScale == "" {
		return Coefficients{}, fmt.Errorf("%w: humidity_scale is required", ErrInvalidTable)
	}
	s, ok := parseHumidityScale(t.HumidityScale)
	if !ok {
		return Coefficients{}, fmt.Errorf("%w: unknown humidity_scale %q", ErrInvalidTable, t.HumidityScale)
	}
	c.HumidityScale = s

	required := []struct {
		name string
		src  *float32
		dst  *float32
	}{
		{"speed_of_sound_default", t.SpeedOfSoundDefault, &c.SpeedOfSoundDefault},
		{"temperature_default", t.TemperatureDefault, &c.TemperatureDefault},
		{"humidity_default", t.HumidityDefault, &c.HumidityDefault},
		{"pressure_default", t.PressureDefault, &c.PressureDefault},
		{"a_t", t.AT, &c.AT},
		{"a_rh", t.ARH, &c.ARH},
		{"a_p", t.AP, &c.AP},
	}
	regression := []struct {
		name string
		src  *float32
		dst  *float32
	}{
		{"a0", t.A0, &c.A0},
		{"a1", t.A1, &c.A1},
		{"b0", t.B0, &c.B0},
		{"b1", t.B1, &c.B1},
		{"b2", t.B2, &c.B2},
	}

	for _, f := range required {
		if f.src == nil {
			return Coefficients{}, fmt.Errorf("%w: %s is required", ErrInvalidTable, f.name)
		}
		*f.dst = *f.src
	}

	switch want {
	case FamilyRegression:
		for _, f := range regression {
			if f.src == nil {
				return Coefficients{}, fmt.Errorf("%w: %s is required for regression tables", ErrInvalidTable, f.name)
			}
			*f.dst = *f.src
		}
		if t.B3 != nil {
			c.B3 = *t.B3
			c.HasB3 = true
		}
	case FamilyDirectSpeed:
		for _, f := range regression {
			if f.src != nil {
				return Coefficients{}, fmt.Errorf("%w: %s is not used by direct-speed tables", ErrInvalidTable, f.name)
			}
		}
		if t.B3 != nil {
			return Coefficients{}, fmt.Errorf("%w: b3 is not used by direct-speed tables", ErrInvalidTable)
		}
	}

	if err := c.Validate(); err != nil {
		return Coefficients{}, err
	}
	return c, nil
}
