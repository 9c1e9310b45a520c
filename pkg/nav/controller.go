// Package nav implements the waypoint steering controller.
//
// A run walks the route in order. For each waypoint the controller is
// SEEKING until a fix within Tolerance is read, then REACHED: motors
// are stopped for SettleInterval before seeking the next one. After the
// last waypoint the run is DONE and motors are stopped. Each tick is
// strictly sequential: one fix read, one drive command, one wait.
package nav

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/drive"
	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/geo"
	"github.com/robotalks/rover.go/pkg/heading"
)

// PositionSource produces the current position. NextFix blocks until
// a valid fix is available, it only fails when ctx is done or the
// underlying transport is lost.
type PositionSource interface {
	NextFix(context.Context) (geo.Point, error)
}

// ErrAlreadyRunning indicates Run is called during another run.
var ErrAlreadyRunning = errors.New("navigation already running")

// Controller steers the vehicle through waypoints.
type Controller struct {
	Config   Config
	Position PositionSource
	Heading  heading.Source
	Actuator drive.Actuator
	Metrics  *Metrics
	// OnTransition, if set, is called on every state change from the
	// running goroutine. It must not block.
	OnTransition func(Snapshot)

	running atomic.Bool
	lock    sync.RWMutex
	snap    Snapshot
}

// Snapshot gets a copy of current navigation state.
func (c *Controller) Snapshot() Snapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.snap
}

// Running indicates a run is in progress.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// Run navigates through the route and returns when all waypoints are
// reached, ctx is done or a fatal error happens. Motors are always
// stopped before Run returns.
func (c *Controller) Run(ctx context.Context, route geo.Route) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	route = route.Clone()
	c.update(func(s *Snapshot) {
		*s = Snapshot{Waypoints: len(route), Position: s.Position, HasFix: s.HasFix}
	})
	c.Metrics.started(len(route))
	glog.Infof("navigation started: %d waypoints", len(route))

	for i, wp := range route {
		c.transition(State{Phase: PhaseSeeking, Index: i}, func(s *Snapshot) { s.Target = wp })
		c.Metrics.seeking(i)
		glog.Infof("heading to waypoint %d/%d: %s", i+1, len(route), wp)
		if err := c.seek(ctx, wp); err != nil {
			return c.abort(err)
		}
		c.transition(State{Phase: PhaseReached, Index: i}, nil)
		c.Metrics.reached()
		glog.Infof("reached waypoint %d/%d", i+1, len(route))
		if err := c.Actuator.Stop(); err != nil {
			return c.abort(fmt.Errorf("stop: %w", err))
		}
		if err := sleep(ctx, c.Config.SettleInterval); err != nil {
			return c.abort(err)
		}
	}

	c.transition(State{Phase: PhaseDone, Index: len(route)}, func(s *Snapshot) { s.Command = drive.Command{} })
	glog.Info("all waypoints complete")
	if err := c.Actuator.Stop(); err != nil {
		c.Metrics.finished("failed")
		return fmt.Errorf("stop: %w", err)
	}
	c.Metrics.finished("done")
	return nil
}

func (c *Controller) seek(ctx context.Context, wp geo.Point) error {
	for {
		pos, err := c.Position.NextFix(ctx)
		if err != nil {
			return err
		}
		dist := geo.Distance(pos, wp)
		if dist < c.Config.Tolerance {
			c.observe(pos, dist, 0, nil)
			return nil
		}
		hdg, err := c.Heading.Heading(ctx)
		if err != nil {
			return fmt.Errorf("heading: %w", err)
		}
		bearingErr := geo.Normalize180(geo.Bearing(pos, wp) - hdg)
		cmd := c.Config.Steer(bearingErr)
		s := c.observe(pos, dist, bearingErr, &cmd)
		glog.V(2).Infof("dist=%.1fm err=%.1f° %s", dist, bearingErr, cmd)
		if err := c.Actuator.Drive(cmd); err != nil {
			return fmt.Errorf("drive: %w", err)
		}
		c.Metrics.ticked(&s)
		if err := sleep(ctx, c.Config.TickInterval); err != nil {
			return err
		}
	}
}

// abort stops the motors and reports the failure.
func (c *Controller) abort(err error) error {
	result := "failed"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result = "canceled"
		glog.Infof("navigation canceled: %v", err)
	} else {
		glog.Errorf("navigation failed: %v", err)
	}
	var errs fx.AggregatedError
	errs.Add(err)
	if serr := c.Actuator.Stop(); serr != nil {
		errs.Add(fmt.Errorf("stop: %w", serr))
	}
	c.transition(State{Phase: PhaseAborted, Index: c.Snapshot().State.Index}, func(s *Snapshot) {
		s.Command = drive.Command{}
		s.Err = err.Error()
	})
	c.Metrics.finished(result)
	if len(errs.Errors) == 1 {
		return err
	}
	return errs.Aggregate()
}

func (c *Controller) observe(pos geo.Point, dist, bearingErr float64, cmd *drive.Command) Snapshot {
	return c.update(func(s *Snapshot) {
		s.Position, s.HasFix = pos, true
		s.Distance, s.BearingError = dist, bearingErr
		if cmd != nil {
			s.Command = *cmd
		}
		c.Metrics.observed(s)
	})
}

func (c *Controller) transition(state State, fn func(*Snapshot)) {
	s := c.update(func(s *Snapshot) {
		s.State = state
		if fn != nil {
			fn(s)
		}
	})
	glog.V(1).Infof("state %s", state)
	if h := c.OnTransition; h != nil {
		h(s)
	}
}

func (c *Controller) update(fn func(*Snapshot)) Snapshot {
	c.lock.Lock()
	defer c.lock.Unlock()
	fn(&c.snap)
	c.snap.UpdatedAt = time.Now()
	return c.snap
}

// sleep waits for d unless ctx is done first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
