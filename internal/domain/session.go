package domain

// SessionMetadata is what a joined connection is known by.
type SessionMetadata struct {
	ParticipantID ParticipantID `json:"participantId"`
	RoomID        RoomID        `json:"roomId"`
	Language      Language      `json:"language"`
}

// NewSessionMetadata validates and canonicalizes the fields of a join.
func NewSessionMetadata(participant, room, lang string) (SessionMetadata, error) {
	pid, err := ParseParticipantID(participant)
	if err != nil {
		return SessionMetadata{}, err
	}
	rid, err := ParseRoomID(room)
	if err != nil {
		return SessionMetadata{}, err
	}
	l, err := ParseLanguage(lang)
	if err != nil {
		return SessionMetadata{}, err
	}
	return SessionMetadata{ParticipantID: pid, RoomID: rid, Language: l}, nil
}
