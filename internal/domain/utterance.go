package domain

// Utterance lives only for one routing pass.
type Utterance struct {
	ID             string
	SpeakerID      ParticipantID
	RoomID         RoomID
	SourceLanguage Language
	Text           string
}

// Transcription is the rendering of one Utterance for one recipient.
type Transcription struct {
	UtteranceID      string
	SpeakerID        ParticipantID
	RoomID           RoomID
	OriginalLanguage Language
	TargetLanguage   Language
	Text             string
}

func (u Utterance) For(target Language, text string) Transcription {
	return Transcription{
		UtteranceID:      u.ID,
		SpeakerID:        u.SpeakerID,
		RoomID:           u.RoomID,
		OriginalLanguage: u.SourceLanguage,
		TargetLanguage:   target,
		Text:             text,
	}
}
