package route

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/geo"
)

// Defaults of OSRM.
const (
	DefaultOSRMURL     = "http://router.project-osrm.org"
	DefaultOSRMProfile = "driving"
	DefaultOSRMTimeout = 10 * time.Second
)

// OSRM requests routes from an OSRM routing service.
type OSRM struct {
	BaseURL string
	Profile string
	Timeout time.Duration
	Client  *http.Client
}

// NewOSRM creates an OSRM provider using defaults.
func NewOSRM(baseURL string) *OSRM {
	return &OSRM{
		BaseURL: baseURL,
		Profile: DefaultOSRMProfile,
		Timeout: DefaultOSRMTimeout,
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// URL builds the request URL. The service takes longitude first.
func (o *OSRM) URL(start, end geo.Point) string {
	base := o.BaseURL
	if base == "" {
		base = DefaultOSRMURL
	}
	profile := o.Profile
	if profile == "" {
		profile = DefaultOSRMProfile
	}
	return fmt.Sprintf("%s/route/v1/%s/%s;%s?overview=full&geometries=geojson",
		strings.TrimSuffix(base, "/"), profile, lonLat(start), lonLat(end))
}

func lonLat(p geo.Point) string {
	return strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

// Route implements Provider.
func (o *OSRM) Route(ctx context.Context, start, end geo.Point) geo.Route {
	r, err := o.Fetch(ctx, start, end)
	if err != nil {
		glog.Warningf("route %s -> %s: %v", start, end, err)
		return geo.Route{}
	}
	return r
}

// Fetch requests the route and reports failures.
func (o *OSRM) Fetch(ctx context.Context, start, end geo.Point) (geo.Route, error) {
	if o.Timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.URL(start, end), nil)
	if err != nil {
		return nil, err
	}
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	glog.V(2).Infof("GET %s", req.URL)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: HTTP %s", ErrBadResponse, resp.Status)
	}
	var res osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return res.route()
}

func (r *osrmResponse) route() (geo.Route, error) {
	if r.Code != "" && r.Code != "Ok" {
		return nil, fmt.Errorf("%w: code %s", ErrNoRoute, r.Code)
	}
	if len(r.Routes) == 0 {
		return nil, ErrNoRoute
	}
	coords := r.Routes[0].Geometry.Coordinates
	if len(coords) == 0 {
		return nil, ErrNoRoute
	}
	route := make(geo.Route, 0, len(coords))
	for n, c := range coords {
		if len(c) < 2 {
			return nil, fmt.Errorf("%w: coordinate %d has %d values", ErrBadResponse, n, len(c))
		}
		p := geo.Point{Lat: c[1], Lon: c[0]}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: coordinate %d: %v", ErrBadResponse, n, err)
		}
		route = append(route, p)
	}
	return route, nil
}
