package heading

import (
	"context"
	"sync"

	"github.com/robotalks/rover.go/pkg/geo"
)

// DefaultMinDistance is the default movement before Track updates.
const DefaultMinDistance = 2.0

// FixSource produces fixes.
type FixSource interface {
	NextFix(context.Context) (geo.Point, error)
}

// Track derives the heading from the course over ground. It wraps
// a FixSource and observes every fix passing through it, so the
// same Track is used both as position source and heading source.
type Track struct {
	Fixes       FixSource
	MinDistance float64
	// Initial is reported until the vehicle moved far enough.
	Initial float64

	lock     sync.Mutex
	anchor   geo.Point
	anchored bool
	heading  float64
	valid    bool
}

// NewTrack creates a Track.
func NewTrack(fixes FixSource) *Track {
	return &Track{Fixes: fixes, MinDistance: DefaultMinDistance}
}

// NextFix reads next fix from Fixes and updates the course.
func (t *Track) NextFix(ctx context.Context) (geo.Point, error) {
	p, err := t.Fixes.NextFix(ctx)
	if err == nil {
		t.Observe(p)
	}
	return p, err
}

// Observe feeds a fix.
func (t *Track) Observe(p geo.Point) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.anchored {
		t.anchor, t.anchored = p, true
		return
	}
	if geo.Distance(t.anchor, p) < t.MinDistance {
		return
	}
	t.heading, t.valid = geo.Bearing(t.anchor, p), true
	t.anchor = p
}

// Heading implements Source.
func (t *Track) Heading(context.Context) (float64, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.valid {
		return t.Initial, nil
	}
	return t.heading, nil
}
