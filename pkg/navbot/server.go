package navbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1/comm/websocket"
	l1msgs "github.com/robotalks/rover.go/pkg/l1/msgs"
	"github.com/robotalks/rover.go/pkg/navbot/msgs"
)

// CommandTimeout limits how long an HTTP command waits for the loop.
const CommandTimeout = 5 * time.Second

// CommandRequest is the body of POST /command.
type CommandRequest struct {
	// Command is a motion name, "goto" or "stop".
	Command    string  `json:"command"`
	Speed      float32 `json:"speed,omitempty"`
	DurationMs uint32  `json:"duration_ms,omitempty"`
	Lat        float64 `json:"lat,omitempty"`
	Lon        float64 `json:"lon,omitempty"`
}

// CommandResponse is the reply of POST /command.
type CommandResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Message converts the request to a command message.
func (r *CommandRequest) Message() (fx.Message, error) {
	switch r.Command {
	case "stop":
		return &msgs.NavStop{}, nil
	case "goto":
		return &msgs.NavGoto{Lat: r.Lat, Lon: r.Lon}, nil
	case "forward", "backward", "left", "right":
		return &msgs.NavManual{Motion: r.Command, Speed: r.Speed, DurationMs: r.DurationMs}, nil
	}
	return nil, fmt.Errorf("unknown command %q", r.Command)
}

// NewRouter creates the HTTP API of the controller. When the
// controller env carries a websocket hub, L1 endpoints are served too.
func (c *Controller) NewRouter(gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", c.serveStatus).Methods(http.MethodGet)
	r.HandleFunc("/command", c.serveCommand).Methods(http.MethodPost)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	if c.Env != nil && c.Env.Hub != nil {
		r.Handle(websocket.PathL1, c.Env.Hub.Handler())
		r.HandleFunc(websocket.PathInfo, c.Env.Hub.ServeInfo).Methods(http.MethodGet)
	}
	return r
}

func (c *Controller) serveStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Status())
}

func (c *Controller) serveCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &CommandResponse{Error: err.Error()})
		return
	}
	msg, err := req.Message()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &CommandResponse{Error: err.Error()})
		return
	}
	cmd := &httpCommand{msg: msg, reply: make(chan fx.Message, 1)}
	c.Submit(cmd)

	ctx, cancel := context.WithTimeout(r.Context(), CommandTimeout)
	defer cancel()
	select {
	case reply := <-cmd.reply:
		if cmdErr, ok := reply.(*l1msgs.CommandErr); ok {
			writeJSON(w, http.StatusConflict, &CommandResponse{Error: cmdErr.Message})
			return
		}
		writeJSON(w, http.StatusOK, &CommandResponse{OK: true})
	case <-ctx.Done():
		writeJSON(w, http.StatusGatewayTimeout, &CommandResponse{Error: ctx.Err().Error()})
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.V(2).Infof("write response: %v", err)
	}
}

type httpCommand struct {
	msg   fx.Message
	reply chan fx.Message
}

func (c *httpCommand) Msg() fx.Message {
	return c.msg
}

func (c *httpCommand) Done(msg fx.Message) error {
	select {
	case c.reply <- msg:
	default:
	}
	return nil
}

// Server serves HTTP until the context is done.
type Server struct {
	Addr    string
	Handler http.Handler
}

// Name implements Named.
func (s *Server) Name() string {
	return "http"
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	glog.Infof("HTTP listening on %s", ln.Addr())
	srv := &http.Server{
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	err = fx.RunWithContextCloser(ctx, srv, func() error {
		return srv.Serve(ln)
	})
	if errors.Is(err, http.ErrServerClosed) {
		return ctx.Err()
	}
	return err
}
