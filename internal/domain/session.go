// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"unicode/utf8"
)

const (
	MaxNicknameLen = 36
	MaxRoomLen     = 64
)

var (
	ErrSessionMissing  = errors.New("session missing")
	ErrNicknameInvalid = errors.New("nickname invalid")
	ErrRoomInvalid     = errors.New("room invalid")
)

// RawSession is what the session extractor hands over before validation.
// A nil field means the value was absent.
type RawSession struct {
	Nickname any
	Room     any
}

// Session is a validated (nickname, room) pair.
type Session struct {
	Nickname string `json:"nick"`
	Room     RoomID `json:"room"`
}

// ParseSession validates raw session values. Both fields must be non-empty
// strings of valid UTF-8 within length limits.
func ParseSession(raw RawSession) (Session, error) {
	if raw.Nickname == nil && raw.Room == nil {
		return Session{}, ErrSessionMissing
	}
	nick, ok := raw.Nickname.(string)
	if !ok || !validString(nick, MaxNicknameLen) {
		return Session{}, ErrNicknameInvalid
	}
	room, ok := raw.Room.(string)
	if !ok || !validString(room, MaxRoomLen) {
		return Session{}, ErrRoomInvalid
	}
	return Session{Nickname: nick, Room: RoomID(room)}, nil
}

func validString(s string, limit int) bool {
	return s != "" && len(s) <= limit && utf8.ValidString(s)
}
