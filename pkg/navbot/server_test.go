package navbot

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/drive"
	"github.com/robotalks/rover.go/pkg/geo"
	"github.com/robotalks/rover.go/pkg/navbot/msgs"
)

func TestCommandRequestMessage(t *testing.T) {
	testCases := []struct {
		name string
		req  CommandRequest
		msg  interface{}
		err  string
	}{
		{name: "stop", req: CommandRequest{Command: "stop"}, msg: &msgs.NavStop{}},
		{name: "goto", req: CommandRequest{Command: "goto", Lat: 1, Lon: 2}, msg: &msgs.NavGoto{Lat: 1, Lon: 2}},
		{
			name: "manual",
			req:  CommandRequest{Command: "right", Speed: 0.25, DurationMs: 50},
			msg:  &msgs.NavManual{Motion: "right", Speed: 0.25, DurationMs: 50},
		},
		{name: "unknown", req: CommandRequest{Command: "fly"}, err: `unknown command "fly"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := tc.req.Message()
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.msg, msg)
		})
	}
}

func TestHTTPAPI(t *testing.T) {
	reg := prometheus.NewRegistry()
	wps := geo.Route{geo.P(5, 5)}
	r := startRover(t, newFixFeed(), nil, func(ctl *Controller) {
		ctl.Metrics = NewMetrics(reg)
	})
	srv := httptest.NewServer(r.ctl.NewRouter(reg))
	defer srv.Close()

	post := func(body string) (int, CommandResponse) {
		resp, err := http.Post(srv.URL+"/command", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var out CommandResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	code, out := post(`{"command":"fly"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, `unknown command "fly"`, out.Error)

	code, _ = post(`not json`)
	require.Equal(t, http.StatusBadRequest, code)

	code, out = post(`{"command":"forward","speed":0.5,"duration_ms":10}`)
	require.Equal(t, http.StatusOK, code)
	require.True(t, out.OK)
	require.Equal(t, []drive.Command{{Left: 0.5, Right: 0.5, LeftForward: true, RightForward: true}}, r.rec.Drives())

	requireOK(t, r.do(t, msgs.NewNavFollow(wps)))
	code, out = post(`{"command":"backward"}`)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, ErrBusy.Error(), out.Error)

	var status map[string]interface{}
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/status")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		status = nil
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return false
		}
		state, _ := status["state"].(map[string]interface{})
		return state["phase"] == "SEEKING"
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, true, status["running"])
	require.Equal(t, 1.0, status["waypoints"])

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(data), `rover_navbot_commands_total{command="manual",result="error"} 1`)

	resp, err = http.Get(srv.URL + "/l1")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
