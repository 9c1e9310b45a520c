// Package connector configures how clients (navcli) reach rovers.
package connector

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/rover.go/pkg/l1/comm/websocket"
)

// DefaultRegistryURL is the broker rovers register with by default.
const DefaultRegistryURL = "mqtt://localhost:1883/rover/"

// Config selects the registry and optionally the rover to connect.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL is an MQTT broker (mqtt://host:port/topic-prefix) or
	// a single rover's HTTP server (ws://host:port).
	RegistryURL string
}

var defaultConfig = Config{
	Ref:         l1.ControllerRef{Type: "rover"},
	RegistryURL: DefaultRegistryURL,
}

func init() {
	if val := os.Getenv("ROVER_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("ROVER_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("ROVER_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "rover-type", defaultConfig.Ref.Type, "Controller type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "rover-id", defaultConfig.Ref.ID, "Controller ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "rover-reg", defaultConfig.RegistryURL, "Controller registry URL (mqtt:// or ws://).")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates the Connector matching the registry URL scheme.
func (c *Config) NewConnector() (l1.Connector, error) {
	u, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}
	switch u.Scheme {
	case "mqtt", "mqtts":
		return mqtt.NewConnector(c.RegistryURL)
	case "ws", "wss":
		return websocket.NewConnector(c.RegistryURL)
	}
	return nil, fmt.Errorf("unknown registry URL scheme: %q", u.Scheme)
}

// Connect connects to the rover named by Ref.
func (c *Config) Connect(ctx context.Context) (l1.ControllerConn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}
