package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Point is a geographic position in decimal degrees (WGS-84).
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Route is an ordered list of waypoints, traversal order is index order.
type Route []Point

var (
	// ErrOutOfRange indicates latitude or longitude is out of range.
	ErrOutOfRange = errors.New("coordinate out of range")
)

// P creates a Point.
func P(lat, lon float64) Point {
	return Point{Lat: lat, Lon: lon}
}

// Validate checks latitude is in [-90, 90] and longitude in [-180, 180].
// NaN is never in range.
func (p Point) Validate() error {
	if !(p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180) {
		return fmt.Errorf("%w: %s", ErrOutOfRange, p)
	}
	return nil
}

// String formats the point as "lat,lon".
func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// ParsePoint parses "lat,lon".
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("invalid coordinate %q, expect lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid latitude %q: %v", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid longitude %q: %v", parts[1], err)
	}
	p := Point{Lat: lat, Lon: lon}
	return p, p.Validate()
}

// ParseRoute parses waypoints separated by semicolons, e.g. "lat,lon;lat,lon".
// An empty string is an empty route.
func ParseRoute(s string) (Route, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Route{}, nil
	}
	items := strings.Split(s, ";")
	route := make(Route, 0, len(items))
	for _, item := range items {
		p, err := ParsePoint(item)
		if err != nil {
			return nil, err
		}
		route = append(route, p)
	}
	return route, nil
}

// String formats the route in the form accepted by ParseRoute.
func (r Route) String() string {
	items := make([]string, len(r))
	for n, p := range r {
		items[n] = p.String()
	}
	return strings.Join(items, ";")
}

// Clone makes a copy of the route.
func (r Route) Clone() Route {
	c := make(Route, len(r))
	copy(c, r)
	return c
}
