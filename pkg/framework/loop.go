package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultLoopInterval is the iteration interval when nothing triggers
// the loop earlier.
const DefaultLoopInterval = 100 * time.Millisecond

// Loop calls controllers by priority level, either on every tick or
// when a message is delivered. Runnables registered with the loop
// run for as long as the loop does.
type Loop struct {
	Interval time.Duration

	controllers [PriorityLevels][]Controller
	runners     []Runnable

	lock    sync.Mutex
	pending []Message
	wakeUp  chan struct{}
}

// LoopAdder is implemented by components which register themselves.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// loopCtl hides everything but LoopControl.
type loopCtl struct {
	*Loop
}

type loopCtxKey struct{}

// LoopCtlFrom gets the LoopControl from the context passed to the
// Runnables of a Loop.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey{}).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultLoopInterval, wakeUp: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at priorityLevel. A controller
// which is also a Runnable is run with the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnables.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Name implements Named.
func (l *Loop) Name() string {
	return "loop"
}

// Run implements Runnable. It returns after all runnables stopped.
func (l *Loop) Run(ctx context.Context) error {
	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey{}, loopCtl{l}))
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultLoopInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-l.wakeUp:
		}
		start := time.Now()
		l.iterate(ctx)
		if elapsed := time.Since(start); elapsed > interval {
			glog.V(2).Infof("loop iteration took %s", elapsed)
		}
	}
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.pending = append(l.pending, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUp <- struct{}{}:
	default:
	}
}

// Deliver implements LoopControl.
func (l *Loop) Deliver(msg Message) {
	l.PostMessage(msg)
	l.TriggerNext()
}

func (l *Loop) iterate(ctx context.Context) {
	l.lock.Lock()
	iter := &iteration{loopCtl: loopCtl{l}, messages: l.pending}
	l.pending = nil
	l.lock.Unlock()
	iter.ctx = context.WithValue(ctx, loopCtxKey{}, iter)
	for level, ctls := range l.controllers {
		for _, ctl := range ctls {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller %s at priority %d: %v", nameOf(ctl, "?"), level, err)
			}
		}
	}
	if n := len(iter.messages); n > 0 {
		glog.V(4).Infof("%d messages dropped", n)
	}
}

type iteration struct {
	loopCtl
	ctx      context.Context
	messages []Message
}

func (t *iteration) Context() context.Context { return t.ctx }
func (t *iteration) Messages() MessageStore   { return t }

// ProcessMessages implements MessageStore.
func (t *iteration) ProcessMessages(proc MessageProcessor) {
	remains := t.messages[:0]
	for _, msg := range t.messages {
		mc := &messageContext{msg: msg}
		proc.ProcessMessage(mc)
		if !mc.taken {
			remains = append(remains, msg)
		}
	}
	for i := len(remains); i < len(t.messages); i++ {
		t.messages[i] = nil
	}
	t.messages = remains
}

type messageContext struct {
	msg   Message
	taken bool
}

func (c *messageContext) CurrentMessage() Message { return c.msg }
func (c *messageContext) MessageTaken()           { c.taken = true }
