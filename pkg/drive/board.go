package drive

import (
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"
)

// ErrBoardClosed indicates the board is closed.
var ErrBoardClosed = errors.New("motor board closed")

// Board drives a motor controller board over a byte stream, usually
// a serial port.
type Board struct {
	w      io.Writer
	seq    PacketSeq
	closed bool
	lock   sync.Mutex
}

// NewBoard creates a Board writing packets to w.
func NewBoard(w io.Writer) *Board {
	return &Board{w: w, seq: NewPacketSeq()}
}

// Drive implements Actuator.
func (b *Board) Drive(cmd Command) error {
	return b.send(DrivePacket(cmd))
}

// Stop implements Actuator.
func (b *Board) Stop() error {
	return b.send(&Packet{Code: CodeStop})
}

// Close stops the motors and closes the stream if it's closable.
func (b *Board) Close() error {
	err := b.Stop()
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if closer, ok := b.w.(io.Closer); ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (b *Board) send(pkt *Packet) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		return ErrBoardClosed
	}
	pkt.Seq = b.seq
	if _, err := pkt.WriteTo(b.w); err != nil {
		return err
	}
	glog.V(4).Infof("board seq=%d code=%d data=%v", pkt.Seq, pkt.Code, pkt.Data)
	b.seq = b.seq.Next()
	return nil
}
