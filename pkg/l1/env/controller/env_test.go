package controller

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/l1"
)

func TestNewEnv(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref = l1.ControllerRef{Type: "rover", ID: "r1"}
	conf.MQTTBrokerURL = ""
	conf.WebSocket = true
	e, err := conf.NewEnv()
	require.NoError(t, err)
	require.NotNil(t, e.Hub)
	require.Equal(t, 1, e.Registrar.Len())
	require.Nil(t, e.Hub.Info.Meta.Labels)

	conf.MQTTBrokerURL = "mqtt://localhost:1883/rover/"
	conf.Labels = "site=yard, model=tank"
	e, err = conf.NewEnv()
	require.NoError(t, err)
	require.Equal(t, 2, e.Registrar.Len())
	require.Equal(t, map[string]string{"site": "yard", "model": "tank"}, e.Hub.Info.Meta.Labels)
}

func TestParseLabels(t *testing.T) {
	testCases := []struct {
		name   string
		in     string
		labels map[string]string
		err    bool
	}{
		{name: "empty", in: ""},
		{name: "blank items", in: " , ,"},
		{name: "pairs", in: "a=1,b=", labels: map[string]string{"a": "1", "b": ""}},
		{name: "no value", in: "a", err: true},
		{name: "no key", in: "=1", err: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			labels, err := ParseLabels(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.labels, labels)
		})
	}
}

func TestNewEnvErrors(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref = l1.ControllerRef{Type: "rover"}
	_, err := conf.NewEnv()
	require.Error(t, err)

	conf.Info.Ref.ID = "r1"
	conf.MQTTBrokerURL = ""
	conf.WebSocket = false
	_, err = conf.NewEnv()
	require.EqualError(t, err, "MQTT or websocket must be enabled")

	conf.WebSocket = true
	conf.Labels = "broken"
	_, err = conf.NewEnv()
	require.Error(t, err)
}
