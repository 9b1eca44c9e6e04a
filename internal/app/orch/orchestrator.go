package orch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrRejected = errors.New("session rejected")

// Transport is the core-facing boundary of one streaming connection.
type Transport interface {
	core.Sink
	// Receive blocks for the next inbound text frame. Any error means the peer is gone.
	Receive(ctx context.Context) (core.Frame, error)
	// Reject closes the transport with a policy-violation status.
	Reject(reason string)
}

// Orchestrator drives each connection through Connecting -> Active -> Closed.
type Orchestrator struct {
	Rooms       core.RoomManager
	Conns       *app.ConnRegistry
	Broadcaster *app.Broadcaster
	Presence    *app.Presence
	// NewID defaults to random UUIDs.
	NewID func() core.ConnID
}

type Option func(*Orchestrator)

func WithSendTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.Broadcaster.SendTimeout = d }
}

func WithMaxWorkers(n int) Option {
	return func(o *Orchestrator) { o.Broadcaster.MaxWorkers = n }
}

func WithIDGenerator(fn func() core.ConnID) Option {
	return func(o *Orchestrator) { o.NewID = fn }
}

// New wires an orchestrator around one room registry.
func New(rooms core.RoomManager, policy app.Policy, opts ...Option) *Orchestrator {
	b := &app.Broadcaster{Rooms: rooms, Policy: policy}
	o := &Orchestrator{
		Rooms:       rooms,
		Conns:       app.NewConnRegistry(),
		Broadcaster: b,
		Presence:    &app.Presence{Rooms: rooms, Broadcaster: b},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) newID() core.ConnID {
	if o.NewID != nil {
		return o.NewID()
	}
	return core.ConnID(uuid.NewString())
}

// Serve runs one connection's lifecycle and blocks until it is Closed.
// It returns ErrRejected when the session is invalid and nil on disconnect.
func (o *Orchestrator) Serve(ctx context.Context, raw domain.RawSession, t Transport) error {
	conn := core.NewConnection(o.newID(), t)
	logger := log.With().Str("module", "orch").Str("conn", string(conn.ID())).Logger()

	sess, err := domain.ParseSession(raw)
	if err != nil {
		conn.Close()
		t.Reject(err.Error())
		logger.Info().Err(err).Msg("session rejected")
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.Conns.Bind(conn, cancel)
	defer o.Conns.Unbind(conn.ID())

	if err := o.join(ctx, conn, sess); err != nil {
		conn.Close()
		t.Reject(err.Error())
		logger.Error().Err(err).Msg("join failed")
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	defer o.leave(ctx, conn)

	for {
		frame, err := t.Receive(ctx)
		if err != nil {
			logger.Info().Err(err).Str("room", string(conn.Room())).Msg("disconnected")
			return nil
		}
		o.OnFrame(ctx, conn, frame)
	}
}

// OnFrame handles one inbound frame of an Active connection.
// Frames that fail to decode or validate are dropped.
func (o *Orchestrator) OnFrame(ctx context.Context, conn *core.Connection, frame core.Frame) {
	if conn.State() != core.StateActive {
		return
	}
	cmd, err := core.DecodeCommand(frame)
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(conn.ID())).Msg("frame dropped")
		return
	}
	switch cmd.Action {
	case core.ActionSend:
		o.Broadcaster.Broadcast(ctx, conn.Room(), core.NewChatMessage(conn.Nickname(), cmd.Message))
	default:
		log.Debug().Str("module", "orch").Str("conn", string(conn.ID())).Str("action", cmd.Action).Msg("unknown action")
	}
}
