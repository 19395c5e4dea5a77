package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/domain"
	"github.com/AntDavi/translation-server/internal/protocol"
)

type DeliveryStatus int

const (
	Delivered DeliveryStatus = iota
	// TranslationFailed means the recipient got an error message instead.
	TranslationFailed
	// Dropped means the recipient's send queue was full.
	Dropped
	// Gone means the recipient's connection closed during the pass.
	Gone
	// Failed means the transcription could not be built, or delivery
	// panicked. The recipient got an error message instead.
	Failed
)

func (s DeliveryStatus) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case TranslationFailed:
		return "translation_failed"
	case Dropped:
		return "dropped"
	case Gone:
		return "gone"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("DeliveryStatus(%d)", int(s))
}

type Delivery struct {
	Member core.Member
	Status DeliveryStatus
	Err    error
}

// RouteResult reports one routing pass, one Delivery per room member.
type RouteResult struct {
	Deliveries []Delivery
}

func (r RouteResult) Count(s DeliveryStatus) int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Status == s {
			n++
		}
	}
	return n
}

func (r RouteResult) Dropped() []core.Member {
	var out []core.Member
	for _, d := range r.Deliveries {
		if d.Status == Dropped {
			out = append(out, d.Member)
		}
	}
	return out
}

// Router fans one utterance out to every member of its room, sender
// included, translating independently per recipient.
type Router struct {
	Rooms      core.RoomDirectory
	Translator core.Translator

	encode func(protocol.Message) (core.Frame, error)
}

func NewRouter(rooms core.RoomDirectory, translator core.Translator) *Router {
	return &Router{Rooms: rooms, Translator: translator, encode: protocol.Encode}
}

// Route returns once every recipient has been delivered to or has failed.
// Membership is the snapshot taken on entry. Callers must not run two
// passes for the same sender concurrently; that is what keeps each
// sender's utterances in order at every recipient.
func (r *Router) Route(ctx context.Context, u domain.Utterance) RouteResult {
	members := r.Rooms.MembersOf(u.RoomID)
	res := RouteResult{Deliveries: make([]Delivery, len(members))}

	var wg conc.WaitGroup
	for i, m := range members {
		wg.Go(func() {
			res.Deliveries[i] = r.deliver(ctx, u, m)
		})
	}
	wg.Wait()

	log.Debug().Str("module", "app.router").Str("room", string(u.RoomID)).
		Str("utterance", u.ID).Int("recipients", len(members)).
		Int("delivered", res.Count(Delivered)).Int("untranslated", res.Count(TranslationFailed)).
		Int("failed", res.Count(Failed)).Int("dropped", res.Count(Dropped)).Msg("route result")
	return res
}

func (r *Router) deliver(ctx context.Context, u domain.Utterance, m core.Member) (d Delivery) {
	if rec := panics.Try(func() { d = r.deliverOne(ctx, u, m) }); rec != nil {
		log.Error().Str("module", "app.router").Str("conn", string(m.Conn.ID())).
			Str("utterance", u.ID).Str("panic", rec.String()).Msg("recipient delivery panicked")
		return r.fail(u, m, Failed, rec.AsError())
	}
	return d
}

func (r *Router) deliverOne(ctx context.Context, u domain.Utterance, m core.Member) Delivery {
	target := m.Meta.Language
	text := u.Text
	if target != u.SourceLanguage {
		out, err := r.Translator.Translate(ctx, u.Text, u.SourceLanguage, target)
		if err != nil {
			return r.fail(u, m, TranslationFailed, &core.TranslationFailure{
				From: string(u.SourceLanguage),
				To:   string(target),
				Err:  err,
			})
		}
		text = out
	}

	frame, err := r.encode(protocol.NewTranscription(u.For(target, text)))
	if err != nil {
		return r.fail(u, m, Failed, fmt.Errorf("encode transcription: %w", err))
	}
	return r.send(m, frame, Delivery{Member: m, Status: Delivered})
}

// fail reports err to the one affected recipient.
func (r *Router) fail(u domain.Utterance, m core.Member, status DeliveryStatus, err error) Delivery {
	log.Warn().Err(err).Str("module", "app.router").Str("conn", string(m.Conn.ID())).
		Str("utterance", u.ID).Str("target", string(m.Meta.Language)).Msg("recipient delivery failed")
	msg := fmt.Sprintf("utterance %s from %s: %v", u.ID, u.SpeakerID, err)
	return r.send(m, protocol.ErrorFrame(msg), Delivery{Member: m, Status: status, Err: err})
}

func (r *Router) send(m core.Member, frame core.Frame, ok Delivery) Delivery {
	err := m.Conn.TrySend(frame)
	switch {
	case err == nil:
		return ok
	case errors.Is(err, core.ErrBackpressure):
		return Delivery{Member: m, Status: Dropped, Err: err}
	default:
		return Delivery{Member: m, Status: Gone, Err: err}
	}
}
