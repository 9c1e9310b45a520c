package gps

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/geo"
)

// FixSource produces fixes on demand.
type FixSource interface {
	NextFix(context.Context) (geo.Point, error)
}

// Tracker keeps reading fixes from Source in the background and holds
// only the most recent one. Consumers never block on stale data.
type Tracker struct {
	Source FixSource

	lock   sync.Mutex
	fix    geo.Point
	seq    uint64
	taken  uint64
	err    error
	notify chan struct{}
}

// NewTracker creates a Tracker.
func NewTracker(src FixSource) *Tracker {
	return &Tracker{Source: src, notify: make(chan struct{}, 1)}
}

// Name implements Named.
func (t *Tracker) Name() string {
	return "gps-tracker"
}

// Run implements Runnable.
func (t *Tracker) Run(ctx context.Context) error {
	for {
		p, err := t.Source.NextFix(ctx)
		if err != nil {
			if ctx.Err() == nil {
				glog.Errorf("gps tracker stopped: %v", err)
			}
			t.update(func() { t.err = err })
			return err
		}
		t.update(func() {
			t.fix = p
			t.seq++
		})
	}
}

// Latest gets the most recent fix without consuming it.
func (t *Tracker) Latest() (geo.Point, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.fix, t.seq > 0
}

// NextFix returns the most recent fix not yet returned, waiting for one
// if necessary. Once the source fails, its error is returned.
func (t *Tracker) NextFix(ctx context.Context) (geo.Point, error) {
	for {
		t.lock.Lock()
		if t.seq > t.taken {
			t.taken = t.seq
			p := t.fix
			t.lock.Unlock()
			return p, nil
		}
		err := t.err
		t.lock.Unlock()
		if err != nil {
			return geo.Point{}, err
		}
		select {
		case <-ctx.Done():
			return geo.Point{}, ctx.Err()
		case <-t.notify:
		}
	}
}

func (t *Tracker) update(fn func()) {
	t.lock.Lock()
	fn()
	t.lock.Unlock()
	select {
	case t.notify <- struct{}{}:
	default:
	}
}
