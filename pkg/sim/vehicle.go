// Package sim simulates a differential-drive rover for dry runs.
//
// A Vehicle is driven like the motor board and reports its position
// like the GPS receiver. Poses live on a local plane (meters east and
// north of Origin) and are projected to coordinates on demand.
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/drive"
	"github.com/robotalks/rover.go/pkg/geo"
)

// Pose is the position on the local plane and the compass heading.
type Pose struct {
	East    float64
	North   float64
	Heading Angle
}

// Vehicle is a kinematic differential-drive model. Simulated time
// advances by Step on every fix read. Commands apply from the current
// simulated time.
type Vehicle struct {
	Origin geo.Point
	// MaxSpeed is the wheel speed (m/s) at command 1.0.
	MaxSpeed float64
	// TrackWidth is the distance (m) between wheels.
	TrackWidth float64
	Step       time.Duration
	// Realtime makes NextFix wait Step in wall time.
	Realtime bool
	// Crossed feeds the left command to the right wheel and vice versa.
	Crossed bool

	lock sync.Mutex
	pose Pose
	cmd  drive.Command
	// elapsed is the simulated time.
	elapsed time.Duration
}

// NewVehicle creates a Vehicle at origin facing heading (degrees).
func NewVehicle(origin geo.Point, heading float64) *Vehicle {
	return &Vehicle{
		Origin:     origin,
		MaxSpeed:   DefaultMaxSpeed,
		TrackWidth: DefaultTrackWidth,
		Step:       DefaultStep,
		Crossed:    true,
		pose:       Pose{Heading: AngleFromDegrees(heading)},
	}
}

// Drive implements drive.Actuator.
func (v *Vehicle) Drive(cmd drive.Command) error {
	v.lock.Lock()
	v.cmd = cmd.Clamped()
	v.lock.Unlock()
	glog.V(3).Infof("sim drive %s", cmd)
	return nil
}

// Stop implements drive.Actuator.
func (v *Vehicle) Stop() error {
	v.lock.Lock()
	v.cmd = drive.Command{}
	v.lock.Unlock()
	return nil
}

// Heading implements heading.Source with the true heading.
func (v *Vehicle) Heading(context.Context) (float64, error) {
	return v.Pose().Heading.Degrees(), nil
}

// NextFix advances the simulation by Step and reports the position.
func (v *Vehicle) NextFix(ctx context.Context) (geo.Point, error) {
	if v.Realtime && v.Step > 0 {
		timer := time.NewTimer(v.Step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return geo.Point{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return geo.Point{}, err
	}
	v.Advance(v.Step)
	return v.Position(), nil
}

// Advance moves the vehicle by dt with the current command.
func (v *Vehicle) Advance(dt time.Duration) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.elapsed += dt
	left, right := v.cmd.Signed()
	if v.Crossed {
		left, right = right, left
	}
	v.pose = move(v.pose, left*v.MaxSpeed, right*v.MaxSpeed, v.TrackWidth, dt.Seconds())
}

// Pose gets the current pose.
func (v *Vehicle) Pose() Pose {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.pose
}

// Elapsed gets the simulated time.
func (v *Vehicle) Elapsed() time.Duration {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.elapsed
}

// Position projects the pose to coordinates.
func (v *Vehicle) Position() geo.Point {
	pose := v.Pose()
	lat := v.Origin.Lat + geo.Degrees(pose.North/geo.EarthRadius)
	lon := v.Origin.Lon + geo.Degrees(pose.East/(geo.EarthRadius*math.Cos(geo.Radians(v.Origin.Lat))))
	return geo.P(lat, lon)
}

// move integrates wheel speeds (m/s) over secs. Turning is clockwise
// when the left wheel is faster.
func move(p Pose, left, right, track, secs float64) Pose {
	speed := (left + right) / 2
	omega := 0.0
	if track > 0 {
		omega = (left - right) / track
	}
	if math.Abs(omega) < 1e-9 {
		east, north := p.Heading.Project(speed * secs)
		p.East += east
		p.North += north
		return p
	}
	from := p.Heading.Radians()
	to := from + omega*secs
	r := speed / omega
	p.East += r * (math.Cos(from) - math.Cos(to))
	p.North += r * (math.Sin(to) - math.Sin(from))
	p.Heading = Angle(normalizeRadians(to))
	return p
}
