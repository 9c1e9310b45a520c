package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/geo"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

func TestTypedEnvelope(t *testing.T) {
	route := geo.Route{geo.P(12.97, 77.61), geo.P(-33.5, -70.25)}
	typed, err := msgs.TypedFrom(NewNavFollow(route))
	require.NoError(t, err)
	require.True(t, typed.IsCommand())
	require.False(t, typed.IsReply())
	typed.Sequence = 7

	data, err := typed.Encode()
	require.NoError(t, err)
	decoded, err := msgs.DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, uint32(7), decoded.Sequence)
	msg, err := decoded.Decode()
	require.NoError(t, err)
	follow, ok := msg.(*NavFollow)
	require.True(t, ok)
	require.Equal(t, route, follow.Route())
}

func TestMessageKinds(t *testing.T) {
	testCases := []struct {
		name    string
		msg     msgs.SerializableMessage
		event   bool
		reply   bool
		command bool
	}{
		{"status", &NavStatus{}, true, false, false},
		{"status query", &NavStatusQuery{}, false, false, true},
		{"status reply", &NavStatusReply{}, false, true, true},
		{"goto", &NavGoto{}, false, false, true},
		{"stop", &NavStop{}, false, false, true},
		{"manual", &NavManual{}, false, false, true},
		{"command error", &msgs.CommandErr{}, false, true, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			typed := &msgs.Typed{TypeId: tc.msg.TypeID()}
			require.Equal(t, tc.event, typed.IsEvent())
			require.Equal(t, tc.reply, typed.IsReply())
			require.Equal(t, tc.command, typed.IsCommand())
			require.Contains(t, msgs.MessageTypes, tc.msg.TypeID())
		})
	}
}

func TestStatusReply(t *testing.T) {
	reply := &NavStatusReply{Status: &NavStatus{
		Phase:    "SEEKING",
		Index:    1,
		Position: NewWaypoint(geo.P(1.5, 2.5)),
		Left:     0.25,
		Running:  true,
	}}
	typed, err := msgs.TypedFrom(reply)
	require.NoError(t, err)
	msg, err := typed.Decode()
	require.NoError(t, err)
	decoded := msg.(*NavStatusReply)
	require.Equal(t, "SEEKING", decoded.Status.Phase)
	require.Equal(t, geo.P(1.5, 2.5), decoded.Status.Position.Point())
	require.Equal(t, float32(0.25), decoded.Status.Left)
	require.True(t, decoded.Status.Running)
	require.Nil(t, decoded.Status.Target)
	require.Equal(t, geo.Point{}, decoded.Status.Target.Point())
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := (&msgs.Typed{TypeId: GroupNav | 0x7fff}).Decode()
	var unknown *msgs.ErrUnknownType
	require.ErrorAs(t, err, &unknown)
}
