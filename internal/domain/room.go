package domain

import "strings"

type RoomID string

func ParseRoomID(raw string) (RoomID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrRoomEmpty
	}
	if len(s) > MaxRoomIDLen {
		return "", ErrRoomTooLong
	}
	return RoomID(s), nil
}

// RoomInfo is a derived view; rooms exist only while they have members.
type RoomInfo struct {
	ID          RoomID `json:"roomId"`
	MemberCount int    `json:"memberCount"`
}
