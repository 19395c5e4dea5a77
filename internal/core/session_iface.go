package core

import "github.com/AntDavi/translation-server/internal/domain"

// Member binds a live connection and the session it joined with.
// This is what a routing pass fans out to.
type Member struct {
	Conn Connection
	Meta domain.SessionMetadata
}

// RoomDirectory is the read side of the session registry.
type RoomDirectory interface {
	Lookup(id ConnID) (domain.SessionMetadata, bool)
	// MembersOf returns a snapshot; later registry changes do not affect it.
	MembersOf(room domain.RoomID) []Member
}
