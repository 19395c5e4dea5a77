package orch

import (
	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/domain"
	"github.com/AntDavi/translation-server/internal/protocol"
)

// Join registers conn in the requested room, replacing any earlier join.
// The joined ack is queued before the session becomes visible to routing,
// so it always reaches the client ahead of the first transcription.
func (o *Orchestrator) Join(conn core.Connection, msg *protocol.Join) (domain.SessionMetadata, error) {
	sess, err := domain.NewSessionMetadata(msg.ClientID, msg.RoomID, msg.Language)
	if err != nil {
		return domain.SessionMetadata{}, &core.ProtocolError{Err: err}
	}
	ack, err := protocol.Encode(&protocol.Joined{ClientID: string(sess.ParticipantID), RoomID: string(sess.RoomID)})
	if err != nil {
		return domain.SessionMetadata{}, err
	}
	if err := conn.TrySend(ack); err != nil {
		return domain.SessionMetadata{}, &core.TransportError{Op: "send joined", Err: err}
	}
	prev, replaced := o.Registry.Upsert(conn, sess)
	l := logger(conn.ID())
	if replaced {
		l.Info().Str("from_room", string(prev.RoomID)).Str("room", string(sess.RoomID)).
			Str("language", string(sess.Language)).Msg("rejoined")
	} else {
		l.Info().Str("participant", string(sess.ParticipantID)).Str("room", string(sess.RoomID)).
			Str("language", string(sess.Language)).Msg("joined")
	}
	return sess, nil
}

// OnDisconnect purges the session of a closed connection. Safe to call
// for connections that never joined.
func (o *Orchestrator) OnDisconnect(id core.ConnID) {
	if o.Registry.Remove(id) {
		l := logger(id)
		l.Info().Msg("session purged on disconnect")
	}
}

// Kick closes conn. Its handler observes the closure and purges the session.
func (o *Orchestrator) Kick(conn core.Connection) {
	l := logger(conn.ID())
	l.Warn().Msg("kicking slow connection")
	o.Registry.Remove(conn.ID())
	conn.Close()
}
