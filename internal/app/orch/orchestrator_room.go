package orch

import (
	"context"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) join(ctx context.Context, conn *core.Connection, sess domain.Session) error {
	if err := conn.Bind(sess); err != nil {
		return err
	}
	if err := o.Rooms.Join(sess.Room, conn); err != nil {
		return err
	}
	if err := conn.Activate(); err != nil {
		// Closed before activation; undo the join.
		_ = o.Rooms.Leave(sess.Room, conn)
		return err
	}
	log.Info().Str("module", "orch").Str("conn", string(conn.ID())).Str("room", string(sess.Room)).Str("nick", sess.Nickname).Msg("joined")
	o.Presence.Notify(ctx, sess.Room)
	return nil
}

// leave closes the connection and, if it ever joined, removes it from its
// room and re-notifies presence. Presence delivery outlives ctx.
func (o *Orchestrator) leave(ctx context.Context, conn *core.Connection) {
	conn.Close()
	if !conn.Joined() {
		return
	}
	room := conn.Room()
	if err := o.Rooms.Leave(room, conn); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("conn", string(conn.ID())).Str("room", string(room)).Msg("leave failed")
		return
	}
	log.Info().Str("module", "orch").Str("conn", string(conn.ID())).Str("room", string(room)).Str("nick", conn.Nickname()).Msg("left")
	o.Presence.Notify(context.WithoutCancel(ctx), room)
}
