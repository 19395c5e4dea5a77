package app

import (
	"sort"
	"sync"

	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/domain"
	"github.com/rs/zerolog/log"
)

// sessionEntry is stored by value so readers never see a half-written session.
type sessionEntry struct {
	Conn core.Connection
	Meta domain.SessionMetadata
}

// Registry is the only owner of the connection -> session mapping.
// Rooms are never stored; they are derived from the entries on each call.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.ConnID]sessionEntry
}

var _ core.RoomDirectory = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.ConnID]sessionEntry),
	}
}

// Upsert registers or replaces the session of conn. A re-join overwrites.
func (r *Registry) Upsert(conn core.Connection, meta domain.SessionMetadata) (prev domain.SessionMetadata, replaced bool) {
	id := conn.ID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		prev, replaced = e.Meta, true
	}
	r.sessions[id] = sessionEntry{Conn: conn, Meta: meta}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).
		Str("participant", string(meta.ParticipantID)).Str("room", string(meta.RoomID)).
		Str("language", string(meta.Language)).Bool("replaced", replaced).Msg("upsert session")
	return prev, replaced
}

func (r *Registry) Lookup(id core.ConnID) (domain.SessionMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	return e.Meta, ok
}

func (r *Registry) MembersOf(room domain.RoomID) []core.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Member, 0, 8)
	for _, e := range r.sessions {
		if e.Meta.RoomID == room {
			out = append(out, core.Member{Conn: e.Conn, Meta: e.Meta})
		}
	}
	return out
}

// Remove is idempotent. It reports whether a session was present.
func (r *Registry) Remove(id core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).
		Str("room", string(e.Meta.RoomID)).Msg("remove session")
	return true
}

// Rooms lists every room that currently has members, sorted by id.
func (r *Registry) Rooms() []domain.RoomInfo {
	r.mu.RLock()
	counts := make(map[domain.RoomID]int)
	for _, e := range r.sessions {
		counts[e.Meta.RoomID]++
	}
	r.mu.RUnlock()

	out := make([]domain.RoomInfo, 0, len(counts))
	for id, n := range counts {
		out = append(out, domain.RoomInfo{ID: id, MemberCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Clear drops every session. Connections stay open; their handlers own them.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.sessions)
	r.sessions = make(map[core.ConnID]sessionEntry)
	log.Info().Str("module", "app.registry").Int("sessions", n).Msg("registry cleared")
}
