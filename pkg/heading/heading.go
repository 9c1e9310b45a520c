// Package heading provides compass heading sources.
package heading

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Source reports the current compass heading in degrees, 0 is north,
// clockwise.
type Source interface {
	Heading(context.Context) (float64, error)
}

// Constant always reports the same heading.
type Constant float64

// Heading implements Source.
func (c Constant) Heading(context.Context) (float64, error) {
	return float64(c), nil
}

// Func is the func form of Source.
type Func func(context.Context) (float64, error)

// Heading implements Source.
func (f Func) Heading(ctx context.Context) (float64, error) {
	return f(ctx)
}

// Kinds of heading sources.
const (
	KindConstant = "constant"
	KindTrack    = "track"
)

// Config selects the heading source.
type Config struct {
	Kind string
	// Value is the heading of a constant source.
	Value float64
	// MinDistance is the movement in meters required by track source
	// before a new course is calculated.
	MinDistance float64
}

var defaultConfig = Config{
	Kind:        KindConstant,
	MinDistance: DefaultMinDistance,
}

func init() {
	if val := os.Getenv("ROVER_HEADING"); val != "" {
		defaultConfig.Kind = val
	}
	if val := os.Getenv("ROVER_HEADING_VALUE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			defaultConfig.Value = v
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Kind, "heading", defaultConfig.Kind, "Heading source: constant or track.")
	flag.Float64Var(&defaultConfig.Value, "heading-value", defaultConfig.Value, "Heading (degrees) of constant source.")
	flag.Float64Var(&defaultConfig.MinDistance, "heading-min-dist", defaultConfig.MinDistance, "Movement (m) before track source updates course.")
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

// Validate checks the config.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindConstant, KindTrack:
	default:
		return fmt.Errorf("unknown heading source %q", c.Kind)
	}
	if c.MinDistance < 0 {
		return fmt.Errorf("heading min distance must not be negative")
	}
	return nil
}

// NewSource creates the heading source on top of fixes. The returned
// FixSource must be used as the position source, a Track only learns
// the course from fixes read through it.
func (c *Config) NewSource(fixes FixSource) (Source, FixSource, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	if c.Kind == KindTrack {
		t := NewTrack(fixes)
		t.MinDistance = c.MinDistance
		t.Initial = c.Value
		return t, t, nil
	}
	return Constant(c.Value), fixes, nil
}
