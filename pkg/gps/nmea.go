package gps

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/robotalks/rover.go/pkg/geo"
)

// Sentence markers
const (
	SentenceGPRMC = "$GPRMC"
	SentenceGNRMC = "$GNRMC"
)

// StatusActive is the RMC validity flag of a usable fix.
const StatusActive = "A"

var (
	// ErrNotPositional indicates the sentence is of another type.
	ErrNotPositional = errors.New("not a positional sentence")
	// ErrNoFix indicates the receiver reports the fix is void.
	ErrNoFix = errors.New("no valid fix")
	// ErrMalformed indicates the sentence can't be decoded.
	ErrMalformed = errors.New("malformed sentence")
	// ErrChecksum indicates the sentence checksum mismatches.
	ErrChecksum = errors.New("checksum mismatch")
)

// ParseRMC decodes a $GPRMC sentence into a position.
func ParseRMC(line string) (geo.Point, error) {
	return ParseSentence(line, SentenceGPRMC)
}

// ParseSentence decodes a recommended-minimum sentence identified by marker.
func ParseSentence(line, marker string) (geo.Point, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if fields[0] != marker {
		return geo.Point{}, ErrNotPositional
	}
	if len(fields) < 7 {
		return geo.Point{}, fmt.Errorf("%w: %d fields", ErrMalformed, len(fields))
	}
	if fields[2] != StatusActive {
		return geo.Point{}, ErrNoFix
	}
	lat, err := parseCoordinate(fields[3], fields[4], 2, "N", "S")
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: latitude: %v", ErrMalformed, err)
	}
	lon, err := parseCoordinate(fields[5], fields[6], 3, "E", "W")
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: longitude: %v", ErrMalformed, err)
	}
	p := geo.Point{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return geo.Point{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}

// parseCoordinate decodes (d)ddmm.mmmm with the hemisphere letter.
func parseCoordinate(value, hemisphere string, degDigits int, pos, neg string) (float64, error) {
	if len(value) <= degDigits {
		return 0, fmt.Errorf("invalid value %q", value)
	}
	deg, err := strconv.ParseFloat(value[:degDigits], 64)
	if err != nil {
		return 0, err
	}
	min, err := strconv.ParseFloat(value[degDigits:], 64)
	if err != nil {
		return 0, err
	}
	v := deg + min/60
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid value %q", value)
	}
	switch hemisphere {
	case pos:
	case neg:
		v = -v
	default:
		return 0, fmt.Errorf("invalid hemisphere %q", hemisphere)
	}
	return v, nil
}

// VerifyChecksum validates the "*HH" suffix of a sentence.
// Sentences without a checksum fail the check.
func VerifyChecksum(line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return ErrMalformed
	}
	star := strings.LastIndexByte(line, '*')
	if star < 0 || star+3 != len(line) {
		return fmt.Errorf("%w: missing checksum", ErrChecksum)
	}
	expected, err := strconv.ParseUint(line[star+1:], 16, 8)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChecksum, err)
	}
	if sum := Checksum(line[1:star]); sum != byte(expected) {
		return fmt.Errorf("%w: %02X != %02X", ErrChecksum, sum, expected)
	}
	return nil
}

// Checksum calculates the XOR checksum of the sentence body
// (between "$" and "*").
func Checksum(body string) byte {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return sum
}
