package route

import (
	"flag"
	"os"
	"time"

	"github.com/robotalks/rover.go/pkg/geo"
)

// Config defines the route provider.
type Config struct {
	OSRMURL     string
	OSRMProfile string
	Timeout     time.Duration
	// Waypoints, if specified, replaces the routing service with a fixed
	// route in the form of "lat,lon;lat,lon".
	Waypoints string
}

var defaultConfig = Config{
	OSRMURL:     DefaultOSRMURL,
	OSRMProfile: DefaultOSRMProfile,
	Timeout:     DefaultOSRMTimeout,
}

func init() {
	if val := os.Getenv("ROVER_OSRM_URL"); val != "" {
		defaultConfig.OSRMURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.OSRMURL, "osrm", defaultConfig.OSRMURL, "OSRM routing service URL.")
	flag.StringVar(&defaultConfig.OSRMProfile, "osrm-profile", defaultConfig.OSRMProfile, "OSRM routing profile.")
	flag.DurationVar(&defaultConfig.Timeout, "osrm-timeout", defaultConfig.Timeout, "Timeout of a route request.")
	flag.StringVar(&defaultConfig.Waypoints, "static-route", defaultConfig.Waypoints, "Fixed route lat,lon;lat,lon returned instead of querying OSRM.")
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

// NewProvider creates the Provider.
func (c *Config) NewProvider() (Provider, error) {
	if c.Waypoints != "" {
		waypoints, err := geo.ParseRoute(c.Waypoints)
		if err != nil {
			return nil, err
		}
		return &Static{Waypoints: waypoints}, nil
	}
	o := NewOSRM(c.OSRMURL)
	o.Profile = c.OSRMProfile
	o.Timeout = c.Timeout
	return o, nil
}
