// Package navbot is the vehicle service. It hosts the steering
// controller as an L1 controller: navigation commands arrive through
// the registrars, status changes are published as events.
package navbot

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
	"github.com/robotalks/rover.go/pkg/l1"
	env "github.com/robotalks/rover.go/pkg/l1/env/controller"
	l1msgs "github.com/robotalks/rover.go/pkg/l1/msgs"
	"github.com/robotalks/rover.go/pkg/nav"
	"github.com/robotalks/rover.go/pkg/navbot/msgs"
	"github.com/robotalks/rover.go/pkg/route"
)

var (
	// ErrBusy rejects manual control during navigation.
	ErrBusy = errors.New("navigation in progress")
	// ErrNoFix indicates no position is known yet.
	ErrNoFix = errors.New("no position fix")
)

// FixReader provides the latest known position.
type FixReader interface {
	Latest() (geo.Point, bool)
}

// Controller is an L1 controller driving the steering controller.
type Controller struct {
	Env         *env.Env
	Nav         *nav.Controller
	Fixes       FixReader
	Routes      route.Provider
	ManualSpeed float64
	// Startup is navigated on the first iteration.
	Startup geo.Route
	Metrics *Metrics

	loop          *fx.Loop
	lock          sync.Mutex
	run           *navRun
	busy          atomic.Bool
	started       bool
	manualSeq     uint64
	statusChanged bool
}

type navRun struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewController creates a Controller.
func NewController(e *env.Env, navCtl *nav.Controller) *Controller {
	return &Controller{
		Env:           e,
		Nav:           navCtl,
		ManualSpeed:   drive.DefaultManualSpeed,
		statusChanged: true,
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	c.loop = loop
	loop.AddRunnable(c)
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.notifyStatusChange))
}

// Name implements Named.
func (c *Controller) Name() string {
	return "navbot"
}

// Run implements Runnable. On exit the active run is canceled and the
// motors are stopped.
func (c *Controller) Run(ctx context.Context) error {
	<-ctx.Done()
	c.lock.Lock()
	r := c.run
	c.lock.Unlock()
	if r != nil {
		r.cancel()
		<-r.done
	}
	if err := c.Nav.Actuator.Stop(); err != nil {
		glog.Errorf("stop on exit: %v", err)
	}
	return ctx.Err()
}

// Running indicates a goto/follow is in progress.
func (c *Controller) Running() bool {
	return c.busy.Load()
}

// Status gets the current status.
func (c *Controller) Status() Status {
	return Status{Snapshot: c.Nav.Snapshot(), Running: c.Running()}
}

// Submit posts a command to the loop. It's safe to call from any
// goroutine once the Controller is added to a loop.
func (c *Controller) Submit(cmd l1.Command) {
	c.loop.Deliver(&l1.CommandMsg{Command: cmd})
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	if !c.started {
		c.started = true
		if len(c.Startup) > 0 {
			glog.Infof("navigating startup route: %s", c.Startup)
			c.startRun(cc, staticRoute(c.Startup))
		}
	}
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *l1.CommandMsg:
			name, reply := c.handleCommand(cc, msg.Command.Msg())
			if reply == nil {
				return
			}
			mctx.MessageTaken()
			var err error
			if cmdErr, ok := reply.(*l1msgs.CommandErr); ok {
				err = cmdErr
				glog.Warningf("%s rejected: %v", name, err)
			}
			c.Metrics.command(name, err)
			if err := msg.Command.Done(reply); err != nil {
				glog.Errorf("reply %s: %v", name, err)
			}
		case *transitionMsg:
			mctx.MessageTaken()
			c.statusChanged = true
		case *runDoneMsg:
			mctx.MessageTaken()
			c.runDone(msg.run)
		case *manualStopMsg:
			mctx.MessageTaken()
			if msg.seq == c.manualSeq && c.run == nil {
				if err := c.Nav.Actuator.Stop(); err != nil {
					glog.Errorf("manual stop: %v", err)
				}
			}
		}
	}))
	return nil
}

func (c *Controller) handleCommand(cc fx.ControlContext, msg fx.Message) (string, fx.Message) {
	switch m := msg.(type) {
	case *msgs.NavGoto:
		return "goto", replyOf(c.navGoto(cc, m.Destination()))
	case *msgs.NavFollow:
		route := m.Route()
		if err := validate(route); err != nil {
			return "follow", replyOf(err)
		}
		c.startRun(cc, staticRoute(route))
		return "follow", replyOf(nil)
	case *msgs.NavStop:
		return "stop", replyOf(c.stop())
	case *msgs.NavManual:
		return "manual", replyOf(c.manual(cc, m))
	case *msgs.NavStatusQuery:
		return "status", &msgs.NavStatusReply{Status: NewNavStatus(c.Status())}
	}
	return "", nil
}

func (c *Controller) navGoto(cc fx.ControlContext, dest geo.Point) error {
	if err := dest.Validate(); err != nil {
		return err
	}
	start, ok := c.Fixes.Latest()
	if !ok {
		return ErrNoFix
	}
	routes := c.Routes
	c.startRun(cc, func(ctx context.Context) geo.Route {
		wps := routes.Route(ctx, start, dest)
		if len(wps) == 0 {
			glog.Warningf("no route from %s to %s", start, dest)
		}
		return wps
	})
	return nil
}

// startRun cancels the active run and starts a new one. The route is
// resolved in the run goroutine so the loop is never blocked by it.
func (c *Controller) startRun(cc fx.ControlContext, resolve func(context.Context) geo.Route) {
	c.cancelRun()
	c.manualSeq++

	ctx, cancel := context.WithCancel(cc.Context())
	r := &navRun{cancel: cancel, done: make(chan struct{})}
	c.Nav.OnTransition = func(nav.Snapshot) { cc.Deliver(&transitionMsg{}) }
	c.lock.Lock()
	c.run = r
	c.lock.Unlock()
	c.busy.Store(true)
	c.statusChanged = true
	go func() {
		defer close(r.done)
		defer cancel()
		r.err = c.Nav.Run(ctx, resolve(ctx))
		cc.Deliver(&runDoneMsg{run: r})
	}()
}

// cancelRun cancels the active run and waits until the motors are stopped.
func (c *Controller) cancelRun() bool {
	r := c.run
	if r == nil {
		return false
	}
	r.cancel()
	<-r.done
	c.runDone(r)
	return true
}

func (c *Controller) runDone(r *navRun) {
	if r != c.run {
		return
	}
	c.lock.Lock()
	c.run = nil
	c.lock.Unlock()
	c.busy.Store(false)
	c.statusChanged = true
	if r.err != nil {
		glog.Infof("navigation ended: %v", r.err)
	} else {
		glog.Info("navigation done")
	}
}

func (c *Controller) stop() error {
	c.manualSeq++
	if c.cancelRun() {
		return nil
	}
	return c.Nav.Actuator.Stop()
}

func (c *Controller) manual(loopCtl fx.LoopControl, m *msgs.NavManual) error {
	if c.run != nil {
		return ErrBusy
	}
	motion, err := drive.ParseMotion(m.Motion)
	if err != nil {
		return err
	}
	speed := float64(m.Speed)
	if speed == 0 {
		speed = c.ManualSpeed
	}
	if speed < 0 || speed > 1 {
		return fmt.Errorf("speed %v out of range [0, 1]", speed)
	}
	dur := time.Duration(m.DurationMs) * time.Millisecond
	if dur == 0 {
		dur = motion.DefaultDuration()
	}
	c.manualSeq++
	if err := motion.Apply(c.Nav.Actuator, speed); err != nil {
		return err
	}
	if motion != drive.Halt {
		seq := c.manualSeq
		time.AfterFunc(dur, func() { loopCtl.Deliver(&manualStopMsg{seq: seq}) })
	}
	return nil
}

func (c *Controller) notifyStatusChange(cc fx.ControlContext) error {
	changed := c.statusChanged
	c.statusChanged = false
	if changed && c.Env != nil {
		return c.Env.Registrar.SendEvent(cc.Context(), NewNavStatus(c.Status()))
	}
	return nil
}

func staticRoute(wps geo.Route) func(context.Context) geo.Route {
	return func(context.Context) geo.Route { return wps }
}

func validate(wps geo.Route) error {
	for n, p := range wps {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("waypoint %d: %w", n, err)
		}
	}
	return nil
}

func replyOf(err error) fx.Message {
	if err != nil {
		return l1msgs.NewCommandErr(err)
	}
	return l1msgs.NewCommandOK()
}

type transitionMsg struct{}

func (m *transitionMsg) NewMessage() fx.Message { return &transitionMsg{} }

type runDoneMsg struct {
	run *navRun
}

func (m *runDoneMsg) NewMessage() fx.Message { return &runDoneMsg{} }

type manualStopMsg struct {
	seq uint64
}

func (m *manualStopMsg) NewMessage() fx.Message { return &manualStopMsg{} }
