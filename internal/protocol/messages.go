package protocol

import (
	"strings"

	"github.com/AntDavi/translation-server/internal/core"
)

const (
	TypeJoin          = "join"
	TypeJoined        = "joined"
	TypeUtterance     = "utterance"
	TypeTranscription = "transcription"
	TypeError         = "error"
)

// Envelope carries the type tag. It is embedded in every message.
type Envelope struct {
	Type string `json:"type"`
}

func (e *Envelope) stamp(t string) { e.Type = t }

// Message is implemented by the pointer types in this package.
type Message interface {
	MessageType() string
	stamp(string)
}

type Join struct {
	Envelope
	ClientID string `json:"clientId"`
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

func (Join) MessageType() string { return TypeJoin }

func (m *Join) Validate() error {
	switch {
	case strings.TrimSpace(m.ClientID) == "":
		return core.NewProtocolError("%w: clientId", core.ErrMissingField)
	case strings.TrimSpace(m.RoomID) == "":
		return core.NewProtocolError("%w: roomId", core.ErrMissingField)
	case strings.TrimSpace(m.Language) == "":
		return core.NewProtocolError("%w: language", core.ErrMissingField)
	}
	return nil
}

type Joined struct {
	Envelope
	ClientID string `json:"clientId"`
	RoomID   string `json:"roomId"`
}

func (Joined) MessageType() string { return TypeJoined }

// Utterance fields other than Text may be omitted; the server fills them
// from the sender's session.
type Utterance struct {
	Envelope
	UtteranceID string `json:"utteranceId,omitempty"`
	SpeakerID   string `json:"speakerId,omitempty"`
	RoomID      string `json:"roomId,omitempty"`
	Language    string `json:"language,omitempty"`
	Text        string `json:"text"`
}

func (Utterance) MessageType() string { return TypeUtterance }

func (m *Utterance) Validate() error {
	if strings.TrimSpace(m.Text) == "" {
		return core.NewProtocolError("%w: text", core.ErrEmptyText)
	}
	return nil
}

type Transcription struct {
	Envelope
	UtteranceID      string `json:"utteranceId"`
	SpeakerID        string `json:"speakerId"`
	RoomID           string `json:"roomId"`
	OriginalLanguage string `json:"originalLanguage"`
	TargetLanguage   string `json:"targetLanguage"`
	Text             string `json:"text"`
}

func (Transcription) MessageType() string { return TypeTranscription }

type Error struct {
	Envelope
	Message string `json:"message"`
}

func (Error) MessageType() string { return TypeError }
