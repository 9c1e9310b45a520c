// Package comm carries L1 messages between the rover and its clients
// over packet transports (MQTT, websocket and length-prefixed streams).
package comm

import "io"

// PacketReader reads one encoded message per call.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes one encoded message per call. It must be safe
// for concurrent use.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter is a closable packet transport. Closing it unblocks
// a pending ReadPacket.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
	io.Closer
}
