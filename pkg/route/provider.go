// Package route provides waypoint sequences between two points.
package route

import (
	"context"
	"errors"

	"github.com/robotalks/rover.go/pkg/geo"
)

// Provider produces a drivable route between two points.
// Failures are never reported, an empty route is returned instead.
type Provider interface {
	Route(ctx context.Context, start, end geo.Point) geo.Route
}

// ProviderFunc is the func form of Provider.
type ProviderFunc func(ctx context.Context, start, end geo.Point) geo.Route

// Route implements Provider.
func (f ProviderFunc) Route(ctx context.Context, start, end geo.Point) geo.Route {
	return f(ctx, start, end)
}

var (
	// ErrNoRoute indicates the routing service found nothing.
	ErrNoRoute = errors.New("no route")
	// ErrBadResponse indicates the response can't be understood.
	ErrBadResponse = errors.New("bad response")
)

// Static always returns the configured waypoints.
type Static struct {
	Waypoints geo.Route
}

// Route implements Provider.
func (s *Static) Route(context.Context, geo.Point, geo.Point) geo.Route {
	return s.Waypoints.Clone()
}
