package http

import (
	"net/http"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// handleJoin stores the submitted nickname and room in the session cookie
// and renders the room page.
func handleJoin(c *gin.Context) {
	raw := domain.RawSession{}
	if nick, ok := c.GetPostForm("nick"); ok {
		raw.Nickname = nick
	}
	if room, ok := c.GetPostForm("room"); ok {
		raw.Room = room
	}
	sess, err := domain.ParseSession(raw)
	if err != nil {
		log.Debug().Err(err).Str("module", "adapters.http").Msg("bad join form")
		c.String(http.StatusBadRequest, "Bad request")
		return
	}
	if err := saveSession(c, sess); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.String(http.StatusInternalServerError, "Internal error")
		return
	}
	c.HTML(http.StatusOK, "room.html", gin.H{
		"Room": string(sess.Room),
		"Nick": sess.Nickname,
	})
}

func handleMembers(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := domain.RoomID(c.Param("name"))
		room, ok := o.Rooms.Get(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"room":     id,
			"presence": room.Nicknames(),
		})
	}
}
