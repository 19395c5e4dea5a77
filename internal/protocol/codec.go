package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/AntDavi/translation-server/internal/core"
	"github.com/AntDavi/translation-server/internal/domain"
)

type validator interface {
	Validate() error
}

// Encode stamps the type tag and marshals m.
func Encode(m Message) (core.Frame, error) {
	m.stamp(m.MessageType())
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	return b, nil
}

// Decode parses one frame into its typed message. Every failure is a
// *core.ProtocolError.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, core.NewProtocolError("invalid message format: %v", err)
	}

	var m Message
	switch env.Type {
	case "":
		return nil, &core.ProtocolError{Err: core.ErrMissingType}
	case TypeJoin:
		m = &Join{}
	case TypeJoined:
		m = &Joined{}
	case TypeUtterance:
		m = &Utterance{}
	case TypeTranscription:
		m = &Transcription{}
	case TypeError:
		m = &Error{}
	default:
		return nil, core.NewProtocolError("%w: %q", core.ErrUnknownType, env.Type)
	}

	if err := json.Unmarshal(data, m); err != nil {
		return nil, core.NewProtocolError("invalid %s payload: %v", env.Type, err)
	}
	if v, ok := m.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func NewTranscription(t domain.Transcription) *Transcription {
	return &Transcription{
		UtteranceID:      t.UtteranceID,
		SpeakerID:        string(t.SpeakerID),
		RoomID:           string(t.RoomID),
		OriginalLanguage: string(t.OriginalLanguage),
		TargetLanguage:   string(t.TargetLanguage),
		Text:             t.Text,
	}
}

func (m *Transcription) Domain() domain.Transcription {
	return domain.Transcription{
		UtteranceID:      m.UtteranceID,
		SpeakerID:        domain.ParticipantID(m.SpeakerID),
		RoomID:           domain.RoomID(m.RoomID),
		OriginalLanguage: domain.Language(m.OriginalLanguage),
		TargetLanguage:   domain.Language(m.TargetLanguage),
		Text:             m.Text,
	}
}

// ErrorFrame encodes an error message. It cannot fail.
func ErrorFrame(msg string) core.Frame {
	b, _ := Encode(&Error{Message: msg})
	return b
}
