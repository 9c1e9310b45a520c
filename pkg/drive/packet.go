package drive

import (
	"io"
	"time"
)

// Board packet codes.
const (
	CodeDrive byte = 0x01
	CodeStop  byte = 0x02
)

// Flags of CodeDrive.
const (
	FlagLeftForward  byte = 0x01
	FlagRightForward byte = 0x02
)

// PacketSeq is the sequence number of a board packet, valid in [1, 0xef].
type PacketSeq byte

// NewPacketSeq creates a random sequence number.
func NewPacketSeq() PacketSeq {
	return PacketSeq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s PacketSeq) Next() PacketSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return PacketSeq(n)
}

// Packet is a frame sent to the motor board:
//
//	byte 0: sequence
//	byte 1: code in low nibble, data length in bits 4-6
//	rest:   data
type Packet struct {
	Seq  PacketSeq
	Code byte
	Data []byte
}

// maxDataLen is limited by the 3-bit length field.
const maxDataLen = 7

// Bytes encodes the packet.
func (p *Packet) Bytes() []byte {
	data := p.Data
	if len(data) > maxDataLen {
		data = data[:maxDataLen]
	}
	b := make([]byte, 2, 2+len(data))
	b[0] = byte(p.Seq)
	b[1] = (p.Code & 0x0f) | byte(len(data))<<4
	return append(b, data...)
}

// WriteTo writes encoded bytes in a single write.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// DrivePacket encodes a drive command, speeds are scaled to 0-255.
func DrivePacket(cmd Command) *Packet {
	cmd = cmd.Clamped()
	var flags byte
	if cmd.LeftForward {
		flags |= FlagLeftForward
	}
	if cmd.RightForward {
		flags |= FlagRightForward
	}
	return &Packet{
		Code: CodeDrive,
		Data: []byte{duty(cmd.Left), duty(cmd.Right), flags},
	}
}

func duty(v float64) byte {
	return byte(v*255 + 0.5)
}
