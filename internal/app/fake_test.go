package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

var errSinkClosed = errors.New("sink closed")

type fakeSink struct {
	mu      sync.Mutex
	frames  []core.Frame
	sendErr error
	block   bool
	closed  bool
}

func (s *fakeSink) Send(ctx context.Context, f core.Frame) error {
	s.mu.Lock()
	block, err, closed := s.block, s.sendErr, s.closed
	s.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if closed {
		return errSinkClosed
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
	return nil
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSink) received() []core.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

func (s *fakeSink) presences(t *testing.T) [][]string {
	t.Helper()
	var out [][]string
	for _, f := range s.received() {
		var msg core.PresenceMessage
		require.NoError(t, json.Unmarshal(f, &msg))
		if msg.Action == core.ActionPresence {
			out = append(out, msg.Presence)
		}
	}
	return out
}

func joinConn(t *testing.T, rooms *RoomRegistry, id, nick string, room domain.RoomID) (*core.Connection, *fakeSink) {
	t.Helper()
	sink := &fakeSink{}
	c := core.NewConnection(core.ConnID(id), sink)
	require.NoError(t, c.Bind(domain.Session{Nickname: nick, Room: room}))
	require.NoError(t, c.Activate())
	require.NoError(t, rooms.Join(room, c))
	return c, sink
}
