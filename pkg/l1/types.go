// Package l1 defines how a vehicle controller (L1) talks to its
// clients (L2): the controller registers and publishes events, clients
// discover controllers, connect and send commands.
package l1

import (
	"context"
	"fmt"
	"strings"

	fx "github.com/robotalks/rover.go/pkg/framework"
)

// Registrar publishes a controller. Received commands are delivered
// into the loop as CommandMsg.
type Registrar interface {
	// SendEvent broadcasts an event to connected clients.
	SendEvent(context.Context, fx.Message) error
}

// Command is a received command. Done sends the reply and must be
// called exactly once.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandMsg carries a Command through the loop.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef is a reference to an L1 controller.
type ControllerRef struct {
	// Type is the vehicle type, e.g. "rover".
	Type string `json:"type"`
	// ID identifies the vehicle, usually derived from the machine ID.
	ID string `json:"id"`
}

// ParseControllerRef parses TYPE/ID.
func ParseControllerRef(s string) (ControllerRef, error) {
	var ref ControllerRef
	if n := strings.Index(s, "/"); n > 0 {
		ref.Type, ref.ID = s[:n], s[n+1:]
	}
	if !ref.IsValid() || strings.Contains(ref.ID, "/") {
		return ControllerRef{}, fmt.Errorf("invalid controller ref %q, TYPE/ID expected", s)
	}
	return ref, nil
}

// Name retrieves the name from ref.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates ControllerRef is valid.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta provides metadata for L1 controller.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo provides information of an L1 controller.
type ControllerInfo struct {
	Ref  ControllerRef  `json:"ref"`
	Meta ControllerMeta `json:"meta"`
}

// Connector is used by L2 components to connect to an L1 controller.
type Connector interface {
	// Discover enumerates registered controllers.
	Discover(context.Context) ([]ControllerInfo, error)
	// Connect connects to the specified controller.
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a controller.
type ControllerConn interface {
	// DoCommand executes a command.
	DoCommand(fx.Message) CommandFuture
}

// Result is the reply to a command. Err is set for error replies and
// transport failures.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture yields exactly one Result.
type CommandFuture interface {
	ResultChan() <-chan Result
}

// Await waits for the reply of f, or for ctx.
func Await(ctx context.Context, f CommandFuture) (fx.Message, error) {
	select {
	case res := <-f.ResultChan():
		return res.Msg, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
