// Package domain holds the relay's value types and their parsing rules.
package domain

import (
	"errors"
	"strings"
)

const (
	MaxParticipantIDLen = 128
	MaxRoomIDLen        = 128
)

var (
	ErrParticipantEmpty   = errors.New("participant id empty")
	ErrParticipantTooLong = errors.New("participant id too long")
	ErrRoomEmpty          = errors.New("room id empty")
	ErrRoomTooLong        = errors.New("room id too long")
)

// ParticipantID is supplied by the client and never authenticated.
// Several connections may share one.
type ParticipantID string

func ParseParticipantID(raw string) (ParticipantID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrParticipantEmpty
	}
	if len(s) > MaxParticipantIDLen {
		return "", ErrParticipantTooLong
	}
	return ParticipantID(s), nil
}
