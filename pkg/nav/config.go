package nav

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/robotalks/rover.go/pkg/drive"
	"github.com/robotalks/rover.go/pkg/heading"
)

// Defaults
const (
	DefaultTolerance      = 1.0
	DefaultGain           = 0.01
	DefaultBaseSpeed      = 0.5
	DefaultTickInterval   = 200 * time.Millisecond
	DefaultSettleInterval = time.Second
)

// ErrInvalidConfig indicates a tunable is out of range.
var ErrInvalidConfig = errors.New("invalid navigation config")

// Config holds the tunables of the steering controller.
// The defaults are hand-tuned and expected to be calibrated per vehicle.
type Config struct {
	// Tolerance is the distance (m) below which a waypoint is reached.
	Tolerance float64 `mapstructure:"tolerance"`
	// Gain is the proportional gain from bearing error (degrees) to turn.
	Gain float64 `mapstructure:"gain"`
	// BaseSpeed is the normalized speed when heading straight.
	BaseSpeed      float64       `mapstructure:"base_speed"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	SettleInterval time.Duration `mapstructure:"settle_interval"`
}

var defaultConfig = Config{
	Tolerance:      DefaultTolerance,
	Gain:           DefaultGain,
	BaseSpeed:      DefaultBaseSpeed,
	TickInterval:   DefaultTickInterval,
	SettleInterval: DefaultSettleInterval,
}

// Flag names, also used to decide which file settings are overridden.
const (
	flagTolerance = "nav-tolerance"
	flagGain      = "nav-gain"
	flagBaseSpeed = "nav-speed"
	flagTick      = "nav-tick"
	flagSettle    = "nav-settle"
)

func init() {
	if val := os.Getenv("ROVER_NAV_TOLERANCE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			defaultConfig.Tolerance = v
		}
	}
	if val := os.Getenv("ROVER_NAV_GAIN"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			defaultConfig.Gain = v
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.Tolerance, flagTolerance, defaultConfig.Tolerance, "Distance (m) at which a waypoint is reached.")
	flag.Float64Var(&defaultConfig.Gain, flagGain, defaultConfig.Gain, "Proportional steering gain per degree of bearing error.")
	flag.Float64Var(&defaultConfig.BaseSpeed, flagBaseSpeed, defaultConfig.BaseSpeed, "Base speed in [0, 1].")
	flag.DurationVar(&defaultConfig.TickInterval, flagTick, defaultConfig.TickInterval, "Control tick interval.")
	flag.DurationVar(&defaultConfig.SettleInterval, flagSettle, defaultConfig.SettleInterval, "Pause after reaching a waypoint.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks all tunables.
func (c *Config) Validate() error {
	switch {
	case c.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance %v must be positive", ErrInvalidConfig, c.Tolerance)
	case c.Gain < 0:
		return fmt.Errorf("%w: gain %v must not be negative", ErrInvalidConfig, c.Gain)
	case c.BaseSpeed < 0 || c.BaseSpeed > 1:
		return fmt.Errorf("%w: base speed %v out of [0, 1]", ErrInvalidConfig, c.BaseSpeed)
	case c.TickInterval < 0:
		return fmt.Errorf("%w: tick interval %v must not be negative", ErrInvalidConfig, c.TickInterval)
	case c.SettleInterval < 0:
		return fmt.Errorf("%w: settle interval %v must not be negative", ErrInvalidConfig, c.SettleInterval)
	}
	return nil
}

// NewController creates a Controller. hdg defaults to a constant
// north heading when nil.
func (c *Config) NewController(pos PositionSource, hdg heading.Source, act drive.Actuator) (*Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, errors.New("position source required")
	}
	if act == nil {
		return nil, errors.New("actuator required")
	}
	if hdg == nil {
		hdg = heading.Constant(0)
	}
	return &Controller{
		Config:   *c,
		Position: pos,
		Heading:  hdg,
		Actuator: act,
	}, nil
}

// LoadFrom merges settings from v. Settings whose flag name is in
// explicit keep the current value.
func (c *Config) LoadFrom(v *viper.Viper, explicit map[string]bool) error {
	loaded := *c
	if err := v.Unmarshal(&loaded); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !explicit[flagTolerance] {
		c.Tolerance = loaded.Tolerance
	}
	if !explicit[flagGain] {
		c.Gain = loaded.Gain
	}
	if !explicit[flagBaseSpeed] {
		c.BaseSpeed = loaded.BaseSpeed
	}
	if !explicit[flagTick] {
		c.TickInterval = loaded.TickInterval
	}
	if !explicit[flagSettle] {
		c.SettleInterval = loaded.SettleInterval
	}
	return c.Validate()
}

// LoadConfigFile loads the default config from a file (yaml, json, toml).
// It must be called after flag.Parse, flags given on the command line win.
func LoadConfigFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	return defaultConfig.LoadFrom(v, explicit)
}
