package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm"
)

// Hub implements l1.Registrar over accepted websocket connections.
// Each connection is a separate L1 pipe. Commands are delivered to the
// loop the Hub is added to and events are broadcast to all connections.
type Hub struct {
	Info l1.ControllerInfo

	conns comm.RegistrarMux
	lock  sync.Mutex
	ctx   context.Context
	ready chan struct{}
}

// NewHub creates a Hub.
func NewHub(info l1.ControllerInfo) *Hub {
	return &Hub{Info: info, ready: make(chan struct{})}
}

// Name implements Named.
func (h *Hub) Name() string {
	return "websocket-hub"
}

// SendEvent implements Registrar.
func (h *Hub) SendEvent(ctx context.Context, msg fx.Message) error {
	return h.conns.SendEvent(ctx, msg)
}

// Connections gets the number of connected peers.
func (h *Hub) Connections() int {
	return h.conns.Len()
}

// AddToLoop implements LoopAdder.
func (h *Hub) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(h)
}

// Run implements Runnable. Connections are only served while the
// Hub is running.
func (h *Hub) Run(ctx context.Context) error {
	h.lock.Lock()
	h.ctx = ctx
	close(h.ready)
	h.lock.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

// Handler creates the websocket handler for L1 connections.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

// ServeInfo serves ControllerInfo in JSON for discovery.
func (h *Hub) ServeInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&h.Info)
}

func (h *Hub) serve(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	var ctx context.Context
	select {
	case <-h.ready:
		h.lock.Lock()
		ctx = h.ctx
		h.lock.Unlock()
	case <-conn.Request().Context().Done():
		conn.Close()
		return
	}
	reg := &comm.Registrar{}
	reg.Init(New(conn))
	h.conns.Add(reg)
	defer h.conns.Remove(reg)
	remote := conn.Request().RemoteAddr
	glog.Infof("L1 websocket connected: %s", remote)
	err := reg.Run(ctx)
	glog.Infof("L1 websocket disconnected: %s: %v", remote, err)
}
