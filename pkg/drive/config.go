package drive

import (
	"flag"
	"fmt"
	"os"

	"go.bug.st/serial"
)

// Actuator kinds.
const (
	KindBoard = "board"
	KindLog   = "log"
)

// Config defines the actuator.
type Config struct {
	Kind     string
	Port     string
	BaudRate int
}

var defaultConfig = Config{
	Kind:     KindBoard,
	Port:     "/dev/ttyACM0",
	BaudRate: 115200,
}

func init() {
	if val := os.Getenv("ROVER_MOTOR_PORT"); val != "" {
		defaultConfig.Port = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Kind, "motor", defaultConfig.Kind, "Actuator: board or log (dry run).")
	flag.StringVar(&defaultConfig.Port, "motor-port", defaultConfig.Port, "Serial port of the motor board.")
	flag.IntVar(&defaultConfig.BaudRate, "motor-baud", defaultConfig.BaudRate, "Baud rate of the motor board.")
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

// NewActuator creates the Actuator. The returned Actuator may implement
// io.Closer which should be closed on exit.
func (c *Config) NewActuator() (Actuator, error) {
	switch c.Kind {
	case KindLog:
		return Logger{}, nil
	case KindBoard:
		return OpenBoard(c.Port, c.BaudRate)
	}
	return nil, fmt.Errorf("unknown actuator %q", c.Kind)
}

// OpenBoard opens the motor board on a serial port.
func OpenBoard(port string, baudRate int) (*Board, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open motor board %s: %w", port, err)
	}
	return NewBoard(p), nil
}
