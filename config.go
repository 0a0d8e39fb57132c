package kerbmath

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigEnv names the environment variable holding the directory of conf.toml.
const ConfigEnv = "KERBMATH_CONFIG"

// Config is the kerbmath configuration: entry simulation defaults and the known bodies.
type Config struct {
	Entry  EntryConfig
	Bodies map[string]*Body // keyed by lower case name
}

// Body returns the configured body by name (case insensitive).
func (c Config) Body(name string) (*Body, error) {
	if b, ok := c.Bodies[strings.ToLower(name)]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: unknown body '%s' (known: %s)", ErrInvalidParameterCombination, name, strings.Join(BodyNames(c.Bodies), ", "))
}

type entryConf struct {
	Drag       float64       `mapstructure:"drag"`
	Step       time.Duration `mapstructure:"step"`
	Integrator string        `mapstructure:"integrator"`
	MaxSteps   uint64        `mapstructure:"max_steps"`
	TraceEvery uint64        `mapstructure:"trace_every"`
	StopOnExit bool          `mapstructure:"stop_on_exit"`
}

type atmosphereConf struct {
	Cutoff          float64 `mapstructure:"cutoff"`
	ScaleHeight     float64 `mapstructure:"scale_height"`
	SurfacePressure float64 `mapstructure:"surface_pressure"`
	SurfaceDensity  float64 `mapstructure:"surface_density"`
}

type bodyConf struct {
	Name           string          `mapstructure:"name"`
	Mass           float64         `mapstructure:"mass"`
	Radius         float64         `mapstructure:"radius"`
	MaxElevation   float64         `mapstructure:"max_elevation"`
	RotationPeriod float64         `mapstructure:"rotation_period"`
	Atmosphere     *atmosphereConf `mapstructure:"atmosphere"`
}

type fileConf struct {
	Entry  entryConf           `mapstructure:"entry"`
	Bodies map[string]bodyConf `mapstructure:"bodies"`
}

// SetConfigDefaults sets the default entry settings on v.
func SetConfigDefaults(v *viper.Viper) {
	v.SetDefault("entry.drag", DefaultDrag)
	v.SetDefault("entry.step", DefaultEntryStep)
	v.SetDefault("entry.integrator", RK4.String())
	v.SetDefault("entry.max_steps", DefaultMaxSteps)
	v.SetDefault("entry.trace_every", 0)
	v.SetDefault("entry.stop_on_exit", false)
}

// ReadConfig reads conf.toml from dir into v. If dir is empty, $KERBMATH_CONFIG is used instead, and if that is
// empty as well, no file is read.
func ReadConfig(v *viper.Viper, dir string) error {
	if dir == "" {
		dir = os.Getenv(ConfigEnv)
	}
	if dir == "" {
		return nil
	}
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("%s/conf.toml not found", dir)
		}
		return fmt.Errorf("reading %s/conf.toml: %w", dir, err)
	}
	return nil
}

// ConfigFromViper builds the configuration from the settings of v. Configured bodies are added to the Kerbol
// system, replacing a built-in body of the same name.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	var fc fileConf
	if err := v.Unmarshal(&fc); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	method, err := MethodFromString(fc.Entry.Integrator)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrOutOfDomainValue, err)
	}
	conf := Config{
		Entry: EntryConfig{
			Drag:       fc.Entry.Drag,
			Step:       fc.Entry.Step,
			Method:     method,
			MaxSteps:   fc.Entry.MaxSteps,
			TraceEvery: fc.Entry.TraceEvery,
			StopOnExit: fc.Entry.StopOnExit,
		},
		Bodies: make(map[string]*Body, len(KerbolSystem)+len(fc.Bodies)),
	}
	for key, b := range KerbolSystem {
		conf.Bodies[key] = b
	}
	for key, bc := range fc.Bodies {
		name := bc.Name
		if name == "" {
			name = strings.ToUpper(key[:1]) + key[1:]
		}
		atm := Vacuum()
		if bc.Atmosphere != nil {
			if atm, err = NewAtmosphere(bc.Atmosphere.Cutoff, bc.Atmosphere.ScaleHeight, bc.Atmosphere.SurfacePressure, bc.Atmosphere.SurfaceDensity); err != nil {
				return Config{}, fmt.Errorf("body %s: %w", key, err)
			}
		}
		body, err := NewBody(name, bc.Mass, bc.Radius, bc.MaxElevation, bc.RotationPeriod, atm)
		if err != nil {
			return Config{}, fmt.Errorf("body %s: %w", key, err)
		}
		conf.Bodies[strings.ToLower(name)] = body
	}
	return conf, nil
}

// LoadConfig returns the configuration from conf.toml in dir ($KERBMATH_CONFIG if empty), or the defaults if
// neither is set.
func LoadConfig(dir string) (Config, error) {
	v := viper.New()
	SetConfigDefaults(v)
	if err := ReadConfig(v, dir); err != nil {
		return Config{}, err
	}
	return ConfigFromViper(v)
}
