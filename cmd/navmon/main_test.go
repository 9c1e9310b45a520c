package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	l1msgs "github.com/robotalks/rover.go/pkg/l1/msgs"
	"github.com/robotalks/rover.go/pkg/navbot/msgs"
)

func encode(t *testing.T, msg interface{}, seq uint32) []byte {
	typed, err := l1msgs.TypedFrom(msg.(l1msgs.SerializableMessage))
	require.NoError(t, err)
	typed.Sequence = seq
	data, err := typed.Encode()
	require.NoError(t, err)
	return data
}

func TestDescribe(t *testing.T) {
	testCases := []struct {
		name    string
		topic   string
		payload []byte
		prefix  string
		has     string
	}{
		{name: "meta", topic: "rover/r1/meta", payload: []byte(`{"ref":{}}`), prefix: `rover/r1 announced: {"ref":{}}`},
		{name: "gone", topic: "rover/r1/meta", prefix: "rover/r1 gone"},
		{
			name:    "event",
			topic:   "rover/r1/msg",
			payload: encode(t, &msgs.NavStatus{Phase: "DONE"}, 0),
			prefix:  "rover/r1/msg: evt#0 [NavStatus]",
			has:     "DONE",
		},
		{
			name:    "command",
			topic:   "rover/r1/cmd",
			payload: encode(t, &msgs.NavStop{}, 7),
			prefix:  "rover/r1/cmd: cmd#7 [NavStop]",
		},
		{
			name:    "reply",
			topic:   "rover/r1/msg",
			payload: encode(t, l1msgs.NewCommandErrFromMsg("busy"), 7),
			prefix:  "rover/r1/msg: rpl#7 [CommandErr]",
			has:     "busy",
		},
		{name: "garbage", topic: "x", payload: []byte{0xff, 0xff}, prefix: "x: bad message"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line, ok := describe(tc.topic, tc.payload)
			require.True(t, ok)
			require.Contains(t, line, tc.prefix)
			require.Contains(t, line, tc.has)
		})
	}
}
