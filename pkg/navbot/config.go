package navbot

import (
	"flag"
	"fmt"
	"os"

	"github.com/robotalks/rover.go/pkg/drive"
	"github.com/robotalks/rover.go/pkg/geo"
	env "github.com/robotalks/rover.go/pkg/l1/env/controller"
	"github.com/robotalks/rover.go/pkg/nav"
	"github.com/robotalks/rover.go/pkg/route"
)

// Config defines the navigation service.
type Config struct {
	// HTTPAddr is the listen address of HTTP API, empty to disable.
	HTTPAddr    string
	ManualSpeed float64
	// Waypoints is navigated at startup if specified.
	Waypoints string
}

var defaultConfig = Config{
	HTTPAddr:    ":8080",
	ManualSpeed: drive.DefaultManualSpeed,
}

func init() {
	if val := os.Getenv("ROVER_HTTP_ADDR"); val != "" {
		defaultConfig.HTTPAddr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.HTTPAddr, "http", defaultConfig.HTTPAddr, "HTTP listen address, empty to disable.")
	flag.Float64Var(&defaultConfig.ManualSpeed, "manual-speed", defaultConfig.ManualSpeed, "Default speed of manual motions.")
	flag.StringVar(&defaultConfig.Waypoints, "waypoints", defaultConfig.Waypoints, "Navigate lat,lon;lat,lon at startup.")
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

// NewController creates the Controller.
func (c *Config) NewController(e *env.Env, navCtl *nav.Controller, fixes FixReader, routes route.Provider) (*Controller, error) {
	if c.ManualSpeed <= 0 || c.ManualSpeed > 1 {
		return nil, fmt.Errorf("manual speed %v out of range (0, 1]", c.ManualSpeed)
	}
	var startup geo.Route
	if c.Waypoints != "" {
		var err error
		if startup, err = geo.ParseRoute(c.Waypoints); err != nil {
			return nil, fmt.Errorf("waypoints: %w", err)
		}
	}
	ctl := NewController(e, navCtl)
	ctl.Fixes = fixes
	ctl.Routes = routes
	ctl.ManualSpeed = c.ManualSpeed
	ctl.Startup = startup
	return ctl, nil
}
