package comm

import (
	"context"
	"sync"
	"time"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

// DefaultCommandExpiration is how long a command waits for its reply.
const DefaultCommandExpiration = 2 * time.Second

// ControllerConn is the client side of a Pipe. Replies are matched to
// commands by sequence number. Events are delivered into the loop.
type ControllerConn struct {
	Expiration time.Duration

	pipe    Pipe
	lock    sync.Mutex
	seq     uint32
	pending map[uint32]*commandFuture
}

// Init sets up the connection on rw.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.pending = make(map[uint32]*commandFuture)
}

// DoCommand implements l1.ControllerConn. The future fails with
// context.DeadlineExceeded if no reply arrives within Expiration.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	f := &commandFuture{result: make(chan l1.Result, 1)}
	c.lock.Lock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	seq := c.seq
	f.timer = time.AfterFunc(c.Expiration, func() {
		c.resolve(seq, l1.Result{Err: context.DeadlineExceeded})
	})
	c.pending[seq] = f
	c.lock.Unlock()

	if err := c.pipe.SendCommandMsg(msg, seq); err != nil {
		c.resolve(seq, l1.Result{Err: err})
	}
	return f
}

// Close closes the transport.
func (c *ControllerConn) Close() error {
	return c.pipe.Close()
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		fx.LoopCtlFrom(ctx).Deliver(msg)
		return nil
	}
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	c.resolve(typed.Sequence, result)
	return nil
}

// resolve completes the command once. Late replies are dropped.
func (c *ControllerConn) resolve(seq uint32, result l1.Result) {
	c.lock.Lock()
	f := c.pending[seq]
	delete(c.pending, seq)
	c.lock.Unlock()
	if f == nil {
		return
	}
	f.timer.Stop()
	f.result <- result
	close(f.result)
}

type commandFuture struct {
	timer  *time.Timer
	result chan l1.Result
}

func (f *commandFuture) ResultChan() <-chan l1.Result {
	return f.result
}
