package orch

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AntDavi/translation-server/internal/app"
	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/domain"
	"github.com/AntDavi/translation-server/internal/protocol"
)

type Orchestrator struct {
	Registry *app.Registry
	Router   *app.Router
	Policy   app.Policy
}

func New(reg *app.Registry, translator core.Translator, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Router:   app.NewRouter(reg, translator),
		Policy:   policy,
	}
}

// OnUtterance routes msg from conn to its room. It blocks until every
// recipient is served, so one connection's utterances stay ordered.
func (o *Orchestrator) OnUtterance(ctx context.Context, conn core.Connection, msg *protocol.Utterance) (app.RouteResult, error) {
	sess, ok := o.Registry.Lookup(conn.ID())
	if !ok {
		return app.RouteResult{}, &core.ProtocolError{Err: core.ErrNotJoined}
	}
	u, err := resolveUtterance(sess, msg)
	if err != nil {
		return app.RouteResult{}, err
	}

	// Routing outlives the sender's connection; translations time out on their own.
	res := o.Router.Route(context.WithoutCancel(ctx), u)
	o.applyPolicy(res)
	return res, nil
}

func (o *Orchestrator) applyPolicy(res app.RouteResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped() {
		switch o.Policy.OnBackPressure(slow) {
		case app.KickMember:
			o.Kick(slow.Conn)
		case app.DropFrame, app.NoAction:
		}
	}
}

// resolveUtterance fills omitted fields from the sender's session.
func resolveUtterance(sess domain.SessionMetadata, msg *protocol.Utterance) (domain.Utterance, error) {
	u := domain.Utterance{
		ID:             msg.UtteranceID,
		SpeakerID:      sess.ParticipantID,
		RoomID:         sess.RoomID,
		SourceLanguage: sess.Language,
		Text:           msg.Text,
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if msg.SpeakerID != "" {
		pid, err := domain.ParseParticipantID(msg.SpeakerID)
		if err != nil {
			return domain.Utterance{}, &core.ProtocolError{Err: err}
		}
		u.SpeakerID = pid
	}
	if msg.RoomID != "" && domain.RoomID(msg.RoomID) != sess.RoomID {
		return domain.Utterance{}, core.NewProtocolError("%w: %q", core.ErrRoomMismatch, msg.RoomID)
	}
	if msg.Language != "" {
		lang, err := domain.ParseLanguage(msg.Language)
		if err != nil {
			return domain.Utterance{}, &core.ProtocolError{Err: err}
		}
		u.SourceLanguage = lang
	}
	if u.Text == "" {
		return domain.Utterance{}, &core.ProtocolError{Err: core.ErrEmptyText}
	}
	return u, nil
}

// IsProtocolError reports whether err should be answered with an error frame.
func IsProtocolError(err error) bool {
	var pe *core.ProtocolError
	return errors.As(err, &pe)
}

func logger(id core.ConnID) zerolog.Logger {
	return log.With().Str("module", "app.orch").Str("conn", string(id)).Logger()
}
