package gps

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.bug.st/serial"
)

// Config defines the positioning receiver connection.
type Config struct {
	// Port is the serial device, e.g. /dev/ttyUSB0.
	Port           string
	BaudRate       int
	Sentence       string
	VerifyChecksum bool
}

var defaultConfig = Config{
	Port:     "/dev/ttyUSB0",
	BaudRate: 9600,
	Sentence: SentenceGPRMC,
}

func init() {
	if val := os.Getenv("ROVER_GPS_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("ROVER_GPS_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.BaudRate = baud
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "gps-port", defaultConfig.Port, "Serial port of the GPS receiver.")
	flag.IntVar(&defaultConfig.BaudRate, "gps-baud", defaultConfig.BaudRate, "Baud rate of the GPS receiver.")
	flag.StringVar(&defaultConfig.Sentence, "gps-sentence", defaultConfig.Sentence, "NMEA sentence carrying the position, e.g. $GPRMC or $GNRMC.")
	flag.BoolVar(&defaultConfig.VerifyChecksum, "gps-checksum", defaultConfig.VerifyChecksum, "Drop sentences with bad checksum.")
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

// OpenSerial opens the serial port in 8N1 mode.
func OpenSerial(port string, baudRate int) (serial.Port, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", port, err)
	}
	return p, nil
}

// NewReceiver opens the serial port and creates a Receiver on it.
func (c *Config) NewReceiver() (*Receiver, error) {
	port, err := OpenSerial(c.Port, c.BaudRate)
	if err != nil {
		return nil, err
	}
	r := NewReceiver(port)
	r.Sentence = c.Sentence
	r.VerifyChecksum = c.VerifyChecksum
	return r, nil
}
