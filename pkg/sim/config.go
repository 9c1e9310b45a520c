package sim

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/robotalks/rover.go/pkg/geo"
)

// Defaults of the simulated vehicle.
const (
	DefaultMaxSpeed   = 1.0
	DefaultTrackWidth = 0.3
	DefaultStep       = 200 * time.Millisecond
)

// Config defines the simulated vehicle.
type Config struct {
	// Origin is the start position in "lat,lon".
	Origin     string
	Heading    float64
	MaxSpeed   float64
	TrackWidth float64
	Step       time.Duration
	Crossed    bool
}

var defaultConfig = Config{
	Origin:     "0,0",
	MaxSpeed:   DefaultMaxSpeed,
	TrackWidth: DefaultTrackWidth,
	Step:       DefaultStep,
	Crossed:    true,
}

func init() {
	if val := os.Getenv("ROVER_SIM_ORIGIN"); val != "" {
		defaultConfig.Origin = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Origin, "sim-origin", defaultConfig.Origin, "Start position lat,lon of the simulated rover.")
	flag.Float64Var(&defaultConfig.Heading, "sim-heading", defaultConfig.Heading, "Start heading (degrees) of the simulated rover.")
	flag.Float64Var(&defaultConfig.MaxSpeed, "sim-speed", defaultConfig.MaxSpeed, "Wheel speed (m/s) at full command.")
	flag.Float64Var(&defaultConfig.TrackWidth, "sim-track", defaultConfig.TrackWidth, "Distance (m) between wheels.")
	flag.DurationVar(&defaultConfig.Step, "sim-step", defaultConfig.Step, "Interval between simulated fixes.")
	flag.BoolVar(&defaultConfig.Crossed, "sim-crossed", defaultConfig.Crossed, "Left command drives the right wheel.")
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

// NewVehicle creates a Vehicle running in real time.
func (c *Config) NewVehicle() (*Vehicle, error) {
	origin, err := geo.ParsePoint(c.Origin)
	if err != nil {
		return nil, fmt.Errorf("sim origin: %w", err)
	}
	if c.MaxSpeed <= 0 || c.TrackWidth <= 0 || c.Step <= 0 {
		return nil, fmt.Errorf("sim speed, track width and step must be positive")
	}
	v := NewVehicle(origin, c.Heading)
	v.MaxSpeed = c.MaxSpeed
	v.TrackWidth = c.TrackWidth
	v.Step = c.Step
	v.Crossed = c.Crossed
	v.Realtime = true
	return v, nil
}
