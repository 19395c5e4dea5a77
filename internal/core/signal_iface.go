package core

import "github.com/google/uuid"

// Frame is one encoded text message.
type Frame []byte

// ConnID identifies one physical connection for its whole lifetime.
type ConnID string

func NewConnID() ConnID { return ConnID(uuid.NewString()) }

// Connection is one client's outbound side as seen by the core. The
// transport adapter that created it is the one that closes it.
type Connection interface {
	ID() ConnID
	// TrySend enqueues f without blocking. It fails with ErrBackpressure
	// when the queue is full and ErrConnectionClosed after Close.
	TrySend(f Frame) error
	Close()
}
