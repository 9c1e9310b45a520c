package framework

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type textMsg string

func (m textMsg) NewMessage() Message { return textMsg("") }

func TestLoopDeliversMessagesByPriority(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour

	var lock sync.Mutex
	var seen []string
	record := func(s string) {
		lock.Lock()
		seen = append(seen, s)
		lock.Unlock()
	}
	done := make(chan struct{})
	loop.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			if msg, ok := mctx.CurrentMessage().(textMsg); ok && msg == "hello" {
				mctx.MessageTaken()
				record("control:" + string(msg))
			}
		}))
		return nil
	}))
	loop.AddController(PrLvPostProc, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			mctx.MessageTaken()
			record("post:" + string(mctx.CurrentMessage().(textMsg)))
			if mctx.CurrentMessage().(textMsg) == "other" {
				close(done)
			}
		}))
		return nil
	}))
	loop.AddRunnable(runFunc(func(ctx context.Context) error {
		loopCtl := LoopCtlFrom(ctx)
		loopCtl.PostMessage(textMsg("hello"))
		loopCtl.Deliver(textMsg("other"))
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("messages not delivered")
	}
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
	require.Equal(t, []string{"control:hello", "post:other"}, seen)
}

func TestLoopDropsUntakenMessages(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Millisecond
	var iterations, seenAtControl, seenAtIdle int
	done := make(chan struct{})
	count := func(n *int) Controller {
		return ControlFunc(func(cc ControlContext) error {
			cc.Messages().ProcessMessages(ProcessMessageFunc(func(MessageProcessingContext) {
				*n++
			}))
			return nil
		})
	}
	loop.AddController(PrLvControl, count(&seenAtControl), ControlFunc(func(ControlContext) error {
		return errors.New("ignored")
	}))
	loop.AddController(PrLvIdle, count(&seenAtIdle), ControlFunc(func(cc ControlContext) error {
		iterations++
		switch iterations {
		case 1:
			cc.PostMessage(textMsg("once"))
		case 5:
			close(done)
		}
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)
	<-done
	require.Equal(t, 1, seenAtControl)
	require.Equal(t, 1, seenAtIdle)
}
