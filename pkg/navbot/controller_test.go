package navbot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/drive"
	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/geo"
	"github.com/robotalks/rover.go/pkg/l1/comm"
	env "github.com/robotalks/rover.go/pkg/l1/env/controller"
	l1msgs "github.com/robotalks/rover.go/pkg/l1/msgs"
	"github.com/robotalks/rover.go/pkg/nav"
	"github.com/robotalks/rover.go/pkg/navbot/msgs"
	"github.com/robotalks/rover.go/pkg/route"
)

// fixFeed hands out fixes pushed to it and remembers the latest.
type fixFeed struct {
	ch     chan geo.Point
	lock   sync.Mutex
	latest *geo.Point
}

func newFixFeed(fixes ...geo.Point) *fixFeed {
	f := &fixFeed{ch: make(chan geo.Point, 16)}
	for _, p := range fixes {
		f.ch <- p
	}
	return f
}

func (f *fixFeed) NextFix(ctx context.Context) (geo.Point, error) {
	select {
	case <-ctx.Done():
		return geo.Point{}, ctx.Err()
	case p := <-f.ch:
		f.setLatest(p)
		return p, nil
	}
}

func (f *fixFeed) setLatest(p geo.Point) {
	f.lock.Lock()
	f.latest = &p
	f.lock.Unlock()
}

func (f *fixFeed) Latest() (geo.Point, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.latest == nil {
		return geo.Point{}, false
	}
	return *f.latest, true
}

type eventRecorder struct {
	lock   sync.Mutex
	events []*msgs.NavStatus
}

func (r *eventRecorder) SendEvent(ctx context.Context, msg fx.Message) error {
	if st, ok := msg.(*msgs.NavStatus); ok {
		r.lock.Lock()
		r.events = append(r.events, st)
		r.lock.Unlock()
	}
	return nil
}

func (r *eventRecorder) last() *msgs.NavStatus {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

type testRover struct {
	ctl    *Controller
	rec    *drive.Recorder
	fixes  *fixFeed
	events *eventRecorder
}

func startRover(t *testing.T, fixes *fixFeed, routes route.Provider, setup ...func(*Controller)) *testRover {
	conf := nav.NewConfig()
	conf.TickInterval = 0
	conf.SettleInterval = 0
	rec := &drive.Recorder{}
	navCtl, err := conf.NewController(fixes, nil, rec)
	require.NoError(t, err)

	events := &eventRecorder{}
	e := &env.Env{Registrar: &comm.RegistrarMux{}}
	e.Registrar.Add(events)
	ctl := NewController(e, navCtl)
	ctl.Fixes = fixes
	ctl.Routes = routes
	for _, fn := range setup {
		fn(ctl)
	}

	loop := fx.NewLoop()
	loop.Interval = 10 * time.Millisecond
	loop.Add(ctl)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errCh
	})
	return &testRover{ctl: ctl, rec: rec, fixes: fixes, events: events}
}

func (r *testRover) do(t *testing.T, msg fx.Message) fx.Message {
	cmd := &httpCommand{msg: msg, reply: make(chan fx.Message, 1)}
	r.ctl.Submit(cmd)
	select {
	case reply := <-cmd.reply:
		return reply
	case <-time.After(2 * time.Second):
		t.Fatalf("no reply to %T", msg)
	}
	return nil
}

func requireOK(t *testing.T, reply fx.Message) {
	_, ok := reply.(*l1msgs.CommandOK)
	require.True(t, ok, "unexpected reply %v", reply)
}

func requireErr(t *testing.T, reply fx.Message, msg string) {
	cmdErr, ok := reply.(*l1msgs.CommandErr)
	require.True(t, ok, "unexpected reply %v", reply)
	require.Equal(t, msg, cmdErr.Message)
}

func TestFollowCompletesRoute(t *testing.T) {
	wps := geo.Route{geo.P(12.97, 77.61), geo.P(12.971, 77.611)}
	r := startRover(t, newFixFeed(wps...), nil)

	requireOK(t, r.do(t, msgs.NewNavFollow(wps)))
	require.Eventually(t, func() bool {
		st := r.events.last()
		return st != nil && st.Phase == "DONE" && !st.Running
	}, 2*time.Second, 10*time.Millisecond)

	status := r.ctl.Status()
	require.Equal(t, nav.PhaseDone, status.State.Phase)
	require.Equal(t, 2, status.Waypoints)
	require.False(t, status.Running)
	require.Equal(t, 3, r.rec.Stops())
}

func TestStopCancelsRun(t *testing.T) {
	r := startRover(t, newFixFeed(), nil)

	requireOK(t, r.do(t, msgs.NewNavFollow(geo.Route{geo.P(1, 1)})))
	require.True(t, r.ctl.Running())
	requireErr(t, r.do(t, &msgs.NavManual{Motion: "forward"}), ErrBusy.Error())

	requireOK(t, r.do(t, &msgs.NavStop{}))
	require.False(t, r.ctl.Running())
	require.Equal(t, nav.PhaseAborted, r.ctl.Status().State.Phase)
	require.Equal(t, 1, r.rec.Stops())
	require.Empty(t, r.rec.Drives())

	reply, ok := r.do(t, &msgs.NavStatusQuery{}).(*msgs.NavStatusReply)
	require.True(t, ok)
	require.Equal(t, "ABORTED", reply.Status.Phase)
	require.Equal(t, "context canceled", reply.Status.Error)
}

func TestNewRunReplacesActiveRun(t *testing.T) {
	fixes := newFixFeed()
	r := startRover(t, fixes, nil)

	requireOK(t, r.do(t, msgs.NewNavFollow(geo.Route{geo.P(1, 1)})))
	requireOK(t, r.do(t, msgs.NewNavFollow(geo.Route{geo.P(2, 2)})))
	require.Equal(t, 1, r.rec.Stops())

	fixes.ch <- geo.P(2, 2)
	require.Eventually(t, func() bool { return !r.ctl.Running() }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, nav.PhaseDone, r.ctl.Status().State.Phase)
}

func TestGoto(t *testing.T) {
	testCases := []struct {
		name  string
		fix   *geo.Point
		dest  geo.Point
		err   string
		route geo.Route
	}{
		{name: "no fix", dest: geo.P(1, 1), err: ErrNoFix.Error()},
		{name: "invalid destination", fix: &geo.Point{}, dest: geo.P(91, 0), err: "coordinate out of range: 91,0"},
		{name: "routed", fix: &geo.Point{Lat: 1, Lon: 1}, dest: geo.P(1.001, 1.001), route: geo.Route{geo.P(1.0005, 1.0005)}},
		{name: "empty route", fix: &geo.Point{Lat: 1, Lon: 1}, dest: geo.P(1.001, 1.001)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var lock sync.Mutex
			var requested []geo.Point
			routes := route.ProviderFunc(func(ctx context.Context, start, end geo.Point) geo.Route {
				lock.Lock()
				requested = []geo.Point{start, end}
				lock.Unlock()
				return tc.route
			})
			fixes := newFixFeed()
			if tc.fix != nil {
				fixes.setLatest(*tc.fix)
			}
			r := startRover(t, fixes, routes)
			reply := r.do(t, &msgs.NavGoto{Lat: tc.dest.Lat, Lon: tc.dest.Lon})
			if tc.err != "" {
				cmdErr, ok := reply.(*l1msgs.CommandErr)
				require.True(t, ok)
				require.Contains(t, cmdErr.Message, tc.err)
				return
			}
			requireOK(t, reply)
			for _, p := range tc.route {
				fixes.ch <- p
			}
			require.Eventually(t, func() bool { return !r.ctl.Running() }, 2*time.Second, 10*time.Millisecond)
			require.Equal(t, nav.PhaseDone, r.ctl.Status().State.Phase)
			require.Equal(t, len(tc.route), r.ctl.Status().Waypoints)
			lock.Lock()
			require.Equal(t, []geo.Point{*tc.fix, tc.dest}, requested)
			lock.Unlock()
		})
	}
}

func TestManual(t *testing.T) {
	r := startRover(t, newFixFeed(), nil, func(ctl *Controller) {
		ctl.Metrics = NewMetrics(prometheus.NewRegistry())
	})

	requireOK(t, r.do(t, &msgs.NavManual{Motion: "left", Speed: 0.5, DurationMs: 20}))
	require.Equal(t, []drive.Command{{Left: 0.5, Right: 0.5, RightForward: true}}, r.rec.Drives())
	require.Eventually(t, func() bool { return r.rec.Stops() == 1 }, time.Second, 5*time.Millisecond)

	requireErr(t, r.do(t, &msgs.NavManual{Motion: "jump"}), `unknown motion "jump"`)
	requireErr(t, r.do(t, &msgs.NavManual{Motion: "forward", Speed: 2}), "speed 2 out of range [0, 1]")

	require.Equal(t, 1.0, testutil.ToFloat64(r.ctl.Metrics.Commands.WithLabelValues("manual", "ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(r.ctl.Metrics.Commands.WithLabelValues("manual", "error")))
}

func TestManualDefaults(t *testing.T) {
	r := startRover(t, newFixFeed(), nil)
	requireOK(t, r.do(t, &msgs.NavManual{Motion: "forward"}))
	require.Equal(t, []drive.Command{{
		Left: drive.DefaultManualSpeed, Right: drive.DefaultManualSpeed,
		LeftForward: true, RightForward: true,
	}}, r.rec.Drives())
	require.Eventually(t, func() bool { return r.rec.Stops() == 1 }, time.Second, 10*time.Millisecond)
}

func TestStartupRoute(t *testing.T) {
	wps := geo.Route{geo.P(3, 3)}
	r := startRover(t, newFixFeed(wps...), nil, func(ctl *Controller) {
		ctl.Startup = wps
	})
	require.Eventually(t, func() bool {
		st := r.events.last()
		return st != nil && st.Phase == "DONE" && !st.Running
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 1, r.ctl.Status().Waypoints)
}

func TestConfigNewController(t *testing.T) {
	testCases := []struct {
		name      string
		speed     float64
		waypoints string
		err       string
		startup   geo.Route
	}{
		{name: "defaults", speed: drive.DefaultManualSpeed},
		{name: "startup", speed: 1, waypoints: "1,2;3,4", startup: geo.Route{geo.P(1, 2), geo.P(3, 4)}},
		{name: "zero speed", speed: 0, err: "manual speed 0 out of range (0, 1]"},
		{name: "bad waypoints", speed: 0.5, waypoints: "1,2;x", err: "waypoints: "},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			conf.ManualSpeed = tc.speed
			conf.Waypoints = tc.waypoints
			ctl, err := conf.NewController(nil, &nav.Controller{}, nil, nil)
			if tc.err != "" {
				require.ErrorContains(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.speed, ctl.ManualSpeed)
			require.Equal(t, tc.startup, ctl.Startup)
		})
	}
}
