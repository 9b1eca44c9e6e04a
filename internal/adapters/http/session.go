package http

import (
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "relay_session"

	sessionKeyNick = "nick"
	sessionKeyRoom = "room"
)

// SessionFromContext extracts the raw (nickname, room) pair from the signed
// session cookie. Absent values stay nil; types are checked by domain.ParseSession.
func SessionFromContext(c *gin.Context) domain.RawSession {
	s := sessions.Default(c)
	return domain.RawSession{
		Nickname: s.Get(sessionKeyNick),
		Room:     s.Get(sessionKeyRoom),
	}
}

func saveSession(c *gin.Context, sess domain.Session) error {
	s := sessions.Default(c)
	s.Set(sessionKeyNick, sess.Nickname)
	s.Set(sessionKeyRoom, string(sess.Room))
	return s.Save()
}
