package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownType      = errors.New("unknown message type")
	ErrMissingType      = errors.New("message has no type")
	ErrMissingField     = errors.New("missing required field")
	ErrNotJoined        = errors.New("not joined to a room")
	ErrRoomMismatch     = errors.New("utterance room does not match joined room")
	ErrEmptyText        = errors.New("empty text")
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrConnectAborted   = errors.New("connect aborted by disconnect")
)

// ProtocolError is a malformed or unacceptable inbound message. It is
// reported to the sender only and never closes the connection.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string { return "protocol error: " + e.Err.Error() }
func (e *ProtocolError) Unwrap() error { return e.Err }

func NewProtocolError(format string, args ...any) *ProtocolError {
	return &ProtocolError{Err: fmt.Errorf(format, args...)}
}

// TranslationFailure is a failed adapter call for one recipient.
type TranslationFailure struct {
	From, To string
	Err      error
}

func (e *TranslationFailure) Error() string {
	return fmt.Sprintf("translation %s->%s failed: %v", e.From, e.To, e.Err)
}
func (e *TranslationFailure) Unwrap() error { return e.Err }

// TransportError is a connection level failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// UsageError is an operation invoked in the wrong state. It never reaches the wire.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }
