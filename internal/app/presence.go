package app

import (
	"context"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence broadcasts a room's full nickname list in join order.
type Presence struct {
	Rooms       core.RoomManager
	Broadcaster *Broadcaster
}

// Notify sends the current presence list to every member of the room.
// Notifications for one room are serialized and each one snapshots membership
// inside the critical section, so the last list a member receives is current.
// An empty or unknown room is a no-op.
func (p *Presence) Notify(ctx context.Context, id domain.RoomID) core.PublishResult {
	room, ok := p.Rooms.Get(id)
	if !ok {
		return core.PublishResult{}
	}
	var res core.PublishResult
	room.Serialize(func() {
		members := room.Members()
		nicks := make([]string, 0, len(members))
		for _, m := range members {
			nicks = append(nicks, m.Nickname())
		}
		frame, err := core.Encode(core.NewPresenceMessage(nicks))
		if err != nil {
			log.Error().Err(err).Str("module", "app.presence").Str("room", string(id)).Msg("encode presence")
			return
		}
		res = p.Broadcaster.deliver(ctx, id, members, frame)
	})
	log.Debug().Str("module", "app.presence").Str("room", string(id)).Int("sent_to", res.SentTo).Msg("presence sent")
	return res
}
