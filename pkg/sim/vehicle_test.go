package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/drive"
	"github.com/robotalks/rover.go/pkg/geo"
	"github.com/robotalks/rover.go/pkg/nav"
)

func TestAngle(t *testing.T) {
	testCases := []struct {
		name    string
		degrees float64
		expect  float64
	}{
		{name: "north", degrees: 0, expect: 0},
		{name: "east", degrees: 90, expect: 90},
		{name: "south", degrees: 180, expect: 180},
		{name: "west", degrees: -90, expect: 270},
		{name: "wrap", degrees: 450, expect: 90},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.expect, AngleFromDegrees(tc.degrees).Degrees(), 1e-9)
		})
	}
	east, north := AngleFromDegrees(90).Project(2)
	require.InDelta(t, 2, east, 1e-9)
	require.InDelta(t, 0, north, 1e-9)
}

func TestVehicleMotion(t *testing.T) {
	forward := drive.Command{Left: 1, Right: 1, LeftForward: true, RightForward: true}
	testCases := []struct {
		name    string
		heading float64
		crossed bool
		cmd     drive.Command
		dt      time.Duration
		east    float64
		north   float64
		expect  float64
	}{
		{name: "straight north", cmd: forward, dt: time.Second, north: 1, expect: 0},
		{name: "straight east", heading: 90, cmd: forward, dt: 2 * time.Second, east: 2, expect: 90},
		{name: "reverse", cmd: drive.Command{Left: 0.5, Right: 0.5}, dt: time.Second, north: -0.5, expect: 0},
		{
			name:   "pivot clockwise",
			cmd:    drive.Command{Left: 0.15, Right: 0.15, LeftForward: true},
			dt:     time.Second,
			expect: 180 / math.Pi,
		},
		{
			name:    "crossed pivot",
			crossed: true,
			cmd:     drive.Command{Left: 0.15, Right: 0.15, RightForward: true},
			dt:      time.Second,
			expect:  180 / math.Pi,
		},
		{name: "stopped", cmd: drive.Command{}, dt: time.Second, expect: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVehicle(geo.P(0, 0), tc.heading)
			v.Crossed = tc.crossed
			require.NoError(t, v.Drive(tc.cmd))
			v.Advance(tc.dt)
			pose := v.Pose()
			require.InDelta(t, tc.east, pose.East, 1e-6)
			require.InDelta(t, tc.north, pose.North, 1e-6)
			hdg, err := v.Heading(context.Background())
			require.NoError(t, err)
			require.InDelta(t, tc.expect, hdg, 1e-6)
			require.Equal(t, tc.dt, v.Elapsed())
		})
	}
}

func TestVehicleArc(t *testing.T) {
	v := NewVehicle(geo.P(0, 0), 0)
	v.Crossed = false
	// left twice as fast turns clockwise around a circle of radius 0.45m.
	require.NoError(t, v.Drive(drive.Command{Left: 1, Right: 0.5, LeftForward: true, RightForward: true}))
	quarterSecs := math.Pi / 2 / (0.5 / DefaultTrackWidth)
	quarter := time.Duration(quarterSecs * float64(time.Second))
	v.Advance(quarter)
	pose := v.Pose()
	r := 0.75 / (0.5 / DefaultTrackWidth)
	require.InDelta(t, r, pose.East, 1e-6)
	require.InDelta(t, r, pose.North, 1e-6)
	require.InDelta(t, 90, pose.Heading.Degrees(), 1e-6)
}

func TestVehiclePosition(t *testing.T) {
	origin := geo.P(12.97, 77.61)
	v := NewVehicle(origin, 45)
	require.NoError(t, v.Drive(drive.Command{Left: 1, Right: 1, LeftForward: true, RightForward: true}))
	v.Advance(10 * time.Second)
	p := v.Position()
	require.InDelta(t, 10, geo.Distance(origin, p), 0.01)
	require.InDelta(t, 45, geo.Bearing(origin, p), 0.1)

	require.NoError(t, v.Stop())
	fix, err := v.NextFix(context.Background())
	require.NoError(t, err)
	require.Equal(t, p, fix)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = v.NextFix(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNavigateSimulatedVehicle(t *testing.T) {
	origin := geo.P(12.97, 77.61)
	v := NewVehicle(origin, 0)
	east := geo.P(origin.Lat, origin.Lon+geo.Degrees(20/(geo.EarthRadius*math.Cos(geo.Radians(origin.Lat)))))
	route := geo.Route{east, origin}

	conf := nav.NewConfig()
	conf.TickInterval = 0
	conf.SettleInterval = 0
	ctl, err := conf.NewController(v, v, v)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, ctl.Run(ctx, route))
	require.Equal(t, nav.PhaseDone, ctl.Snapshot().State.Phase)
	require.Less(t, geo.Distance(v.Position(), origin), conf.Tolerance)
	require.Less(t, v.Elapsed(), 5*time.Minute)
}
