package comm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

// Pipe exchanges L1 messages over a PacketReadWriter. Sends are
// serialized and received messages go to Handler.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	sendLock sync.Mutex
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

var (
	// ErrNotCommand indicates an event is sent as a command or reply.
	ErrNotCommand = errors.New("message is not a command")
	// ErrNotEvent indicates a command is sent as an event.
	ErrNotEvent = errors.New("message is not an event")
)

// SendCommandMsg sends a message which must be a command or a reply.
func (p *Pipe) SendCommandMsg(msg fx.Message, seq uint32) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return fmt.Errorf("%T: %w", msg, err)
	}
	if !typed.IsCommand() {
		return fmt.Errorf("%T: %w", msg, ErrNotCommand)
	}
	typed.Sequence = seq
	return p.SendTyped(typed)
}

// SendEventMsg sends a message which must be an event.
func (p *Pipe) SendEventMsg(msg fx.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return fmt.Errorf("%T: %w", msg, err)
	}
	if !typed.IsEvent() {
		return fmt.Errorf("%T: %w", msg, ErrNotEvent)
	}
	return p.SendTyped(typed)
}

// SendTyped send a Typed message.
func (p *Pipe) SendTyped(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run receives messages until the transport fails or ctx is done.
// The transport is closed on return.
func (p *Pipe) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, p.ReadWriter, func() error {
		for {
			if err := p.receive(ctx); err != nil {
				return err
			}
		}
	})
}

func (p *Pipe) receive(ctx context.Context) error {
	pkt, err := p.ReadWriter.ReadPacket()
	if err != nil {
		return err
	}
	typed, err := msgs.DecodeTyped(pkt)
	if err != nil {
		return fmt.Errorf("bad packet: %w", err)
	}
	msg, err := typed.Decode()
	if err != nil {
		glog.V(2).Infof("drop message %x: %v", typed.TypeId, err)
		// Commands still get a reply so the sender doesn't wait.
		if typed.IsCommand() {
			return p.SendCommandMsg(msgs.NewCommandErr(err), typed.Sequence)
		}
		return nil
	}
	if h := p.Handler; h != nil {
		return h.HandleTypedMsg(ctx, msg, typed)
	}
	return nil
}

// Close closes the transport.
func (p *Pipe) Close() error {
	return p.ReadWriter.Close()
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	if adder, ok := p.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := p.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(p)
}
