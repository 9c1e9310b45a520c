package l1

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/rover.go/pkg/framework"
)

func TestParseControllerRef(t *testing.T) {
	ref, err := ParseControllerRef("rover/abc123")
	require.NoError(t, err)
	require.Equal(t, ControllerRef{Type: "rover", ID: "abc123"}, ref)
	require.Equal(t, "rover/abc123", ref.Name())

	for _, s := range []string{"", "rover", "rover/", "/abc", "rover/a/b"} {
		_, err := ParseControllerRef(s)
		require.Error(t, err, s)
	}
}

type readyFuture chan Result

func (f readyFuture) ResultChan() <-chan Result { return f }

type okMsg struct{}

func (okMsg) NewMessage() fx.Message { return okMsg{} }

func TestAwait(t *testing.T) {
	f := make(readyFuture, 1)
	f <- Result{Msg: okMsg{}}
	msg, err := Await(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, okMsg{}, msg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Await(ctx, make(readyFuture))
	require.ErrorIs(t, err, context.Canceled)
}
