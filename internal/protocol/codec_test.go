package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/AntDavi/translation-server/internal/core"
)

func TestDecode_Join(t *testing.T) {
	m, err := Decode([]byte(`{"type":"join","clientId":"c1","roomId":"room-1","language":"pt","extra":true}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	join, ok := m.(*Join)
	if !ok {
		t.Fatalf("expected *Join, got %T", m)
	}
	if join.ClientID != "c1" || join.RoomID != "room-1" || join.Language != "pt" {
		t.Errorf("unexpected join %+v", join)
	}
}

func TestDecode_Utterance(t *testing.T) {
	m, err := Decode([]byte(`{"type":"utterance","speakerId":"c1","text":"Olá"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	u, ok := m.(*Utterance)
	if !ok {
		t.Fatalf("expected *Utterance, got %T", m)
	}
	if u.UtteranceID != "" || u.Text != "Olá" {
		t.Errorf("unexpected utterance %+v", u)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		wantErr error
	}{
		{name: "no type", frame: `{"foo":1}`, wantErr: core.ErrMissingType},
		{name: "unknown type", frame: `{"type":"invalid_type","data":"test"}`, wantErr: core.ErrUnknownType},
		{name: "join missing room", frame: `{"type":"join","clientId":"c1","language":"en"}`, wantErr: core.ErrMissingField},
		{name: "join missing language", frame: `{"type":"join","clientId":"c1","roomId":"r"}`, wantErr: core.ErrMissingField},
		{name: "empty text", frame: `{"type":"utterance","text":"   "}`, wantErr: core.ErrEmptyText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.frame))
			var pe *core.ProtocolError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProtocolError, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecode_Unparseable(t *testing.T) {
	for _, frame := range []string{`not json`, `[1,2]`, `{"type":"utterance","text":5}`, ``} {
		_, err := Decode([]byte(frame))
		var pe *core.ProtocolError
		if !errors.As(err, &pe) {
			t.Errorf("frame %q: expected ProtocolError, got %v", frame, err)
		}
	}
}

func TestEncode_StampsType(t *testing.T) {
	frame, err := Encode(&Transcription{UtteranceID: "u1", SpeakerID: "c1", RoomID: "r", OriginalLanguage: "pt", TargetLanguage: "en", Text: "Hello"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(frame, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["type"] != TypeTranscription {
		t.Errorf("expected type %q, got %v", TypeTranscription, got["type"])
	}
	if got["originalLanguage"] != "pt" || got["targetLanguage"] != "en" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestErrorFrame(t *testing.T) {
	m, err := Decode(ErrorFrame("boom"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	e, ok := m.(*Error)
	if !ok || e.Message != "boom" {
		t.Errorf("unexpected message %#v", m)
	}
}
