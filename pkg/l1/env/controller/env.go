// Package controller sets up how a rover publishes itself: MQTT
// registration, the websocket hub and the announced metadata.
package controller

import (
	"flag"
	"fmt"
	"os"
	"strings"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm"
	"github.com/robotalks/rover.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/rover.go/pkg/l1/comm/websocket"
	"github.com/robotalks/rover.go/pkg/l1/env"
)

// Config provides common options to setup an env for L1 controllers.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// WebSocket accepts L1 connections over websocket on the HTTP
	// server of the controller.
	WebSocket bool
	// Labels are announced in the metadata, "key=value,key=value".
	Labels string
}

// DefaultMQTTBrokerURL is the default broker.
const DefaultMQTTBrokerURL = "mqtt://localhost:1883/rover/"

var defaultConfig = Config{
	MQTTBrokerURL: DefaultMQTTBrokerURL,
	WebSocket:     true,
}

func init() {
	if val := os.Getenv("ROVER_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ROVER_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	} else {
		defaultConfig.Info.Ref.ID = env.MachineID()
	}
	defaultConfig.Labels = os.Getenv("ROVER_LABELS")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Controller type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Controller ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.BoolVar(&defaultConfig.WebSocket, "l1-websocket", defaultConfig.WebSocket, "Accept L1 connections over websocket")
	flag.StringVar(&defaultConfig.Labels, "labels", defaultConfig.Labels, "Labels announced to clients, key=value,...")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerType should be called in init with basic info about the controller.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env is the env for L1 controllers.
type Env struct {
	Config    *Config
	Registrar *comm.RegistrarMux
	// Hub is set when websocket is enabled, its Handler must be served.
	Hub *websocket.Hub
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// ParseLabels parses "key=value,key=value". Empty items are skipped.
func ParseLabels(s string) (map[string]string, error) {
	labels := make(map[string]string)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		key, val, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid label %q, key=value expected", item)
		}
		labels[key] = val
	}
	if len(labels) == 0 {
		return nil, nil
	}
	return labels, nil
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	info := c.Info
	labels, err := ParseLabels(c.Labels)
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		merged := make(map[string]string, len(info.Meta.Labels)+len(labels))
		for k, v := range info.Meta.Labels {
			merged[k] = v
		}
		for k, v := range labels {
			merged[k] = v
		}
		info.Meta.Labels = merged
	}
	env := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, info)
		if err != nil {
			return nil, fmt.Errorf("MQTT registrar: %w", err)
		}
		env.Registrar.Add(reg)
	}
	if c.WebSocket {
		env.Hub = websocket.NewHub(info)
		env.Registrar.Add(env.Hub)
	}
	if env.Registrar.Len() == 0 {
		return nil, fmt.Errorf("MQTT or websocket must be enabled")
	}
	return env, nil
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
}
