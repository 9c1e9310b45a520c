package gps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/geo"
)

type chanSource struct {
	fixes chan geo.Point
	err   error
}

func (s *chanSource) NextFix(ctx context.Context) (geo.Point, error) {
	select {
	case <-ctx.Done():
		return geo.Point{}, ctx.Err()
	case p, ok := <-s.fixes:
		if !ok {
			return geo.Point{}, s.err
		}
		return p, nil
	}
}

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTrackerKeepsLatest(t *testing.T) {
	src := &chanSource{fixes: make(chan geo.Point)}
	tr := NewTracker(src)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	_, ok := tr.Latest()
	require.False(t, ok)

	for i := 1; i <= 3; i++ {
		src.fixes <- geo.P(float64(i), 0)
	}
	waitFor(t, func() bool {
		p, _ := tr.Latest()
		return p.Lat == 3
	})
	p, err := tr.NextFix(ctx)
	require.NoError(t, err)
	require.Equal(t, geo.P(3, 0), p)

	// no newer fix, must wait.
	shortCtx, shortCancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer shortCancel()
	_, err = tr.NextFix(shortCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	resCh := make(chan geo.Point, 1)
	go func() {
		p, err := tr.NextFix(ctx)
		if err == nil {
			resCh <- p
		}
	}()
	src.fixes <- geo.P(4, 0)
	select {
	case p := <-resCh:
		require.Equal(t, geo.P(4, 0), p)
	case <-time.After(time.Second):
		t.Fatal("NextFix not woken up")
	}

	p, ok = tr.Latest()
	require.True(t, ok)
	require.Equal(t, geo.P(4, 0), p)
}

func TestTrackerSourceFailure(t *testing.T) {
	lost := errors.New("unplugged")
	src := &chanSource{fixes: make(chan geo.Point), err: lost}
	tr := NewTracker(src)
	errCh := make(chan error, 1)
	go func() { errCh <- tr.Run(context.Background()) }()

	src.fixes <- geo.P(1, 1)
	close(src.fixes)
	require.ErrorIs(t, <-errCh, lost)

	p, err := tr.NextFix(context.Background())
	require.NoError(t, err)
	require.Equal(t, geo.P(1, 1), p)
	_, err = tr.NextFix(context.Background())
	require.ErrorIs(t, err, lost)
}
