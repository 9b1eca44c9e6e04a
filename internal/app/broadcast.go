package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const DefaultSendTimeout = 2 * time.Second

// Broadcaster fans one payload out to every member of a room.
// A failed delivery is recorded and logged, never returned to the caller.
type Broadcaster struct {
	Rooms       core.RoomManager
	Policy      Policy
	SendTimeout time.Duration
	// MaxWorkers bounds concurrent sends per fan-out; zero means one goroutine per member.
	MaxWorkers int
}

// Broadcast encodes payload and delivers it to a snapshot of the room's members.
// It returns once every delivery has settled.
func (b *Broadcaster) Broadcast(ctx context.Context, id domain.RoomID, payload any) core.PublishResult {
	frame, err := core.Encode(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("room", string(id)).Msg("encode payload")
		return core.PublishResult{}
	}
	return b.deliver(ctx, id, b.Rooms.Snapshot(id), frame)
}

func (b *Broadcaster) deliver(ctx context.Context, id domain.RoomID, members []*core.Connection, frame core.Frame) core.PublishResult {
	// A sender disconnecting mid fan-out must not cut delivery to the others.
	ctx = context.WithoutCancel(ctx)

	p := pool.New()
	if b.MaxWorkers > 0 {
		p = p.WithMaxGoroutines(b.MaxWorkers)
	}

	var (
		mu  sync.Mutex
		res core.PublishResult
	)
	type failure struct {
		conn *core.Connection
		err  error
	}
	var failures []failure

	for _, m := range members {
		p.Go(func() {
			err := b.send(ctx, m, frame)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, failure{conn: m, err: err})
				res.Dropped = append(res.Dropped, m)
				return
			}
			res.SentTo++
		})
	}
	p.Wait()

	for _, f := range failures {
		log.Warn().
			Err(f.err).
			Str("module", "app.broadcast").
			Str("room", string(id)).
			Str("conn", string(f.conn.ID())).
			Msg("delivery failed")
		if b.Policy != nil && b.Policy.OnDeliveryFailure(id, f.conn, f.err) == CloseRecipient {
			f.conn.Sink().Close()
		}
	}
	log.Debug().Str("module", "app.broadcast").Str("room", string(id)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (b *Broadcaster) send(ctx context.Context, c *core.Connection, frame core.Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send panicked: %v", r)
		}
	}()
	timeout := b.SendTimeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Sink().Send(ctx, frame)
}
