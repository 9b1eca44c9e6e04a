package app

import (
	"context"
	"sync"
	"testing"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPresence(rooms *RoomRegistry) *Presence {
	return &Presence{Rooms: rooms, Broadcaster: &Broadcaster{Rooms: rooms, Policy: DropPolicy{}}}
}

func TestPresence_ListsNicknamesInJoinOrder(t *testing.T) {
	rooms := NewRoomRegistry()
	p := newPresence(rooms)
	ctx := context.Background()

	a, sa := joinConn(t, rooms, "a", "alice", "lobby")
	p.Notify(ctx, "lobby")
	_, sb := joinConn(t, rooms, "b", "bob", "lobby")
	p.Notify(ctx, "lobby")
	_, sc := joinConn(t, rooms, "c", "alice", "lobby")
	p.Notify(ctx, "lobby")

	require.NoError(t, rooms.Leave("lobby", a))
	p.Notify(ctx, "lobby")

	assert.Equal(t, [][]string{
		{"alice"},
		{"alice", "bob"},
		{"alice", "bob", "alice"},
	}, sa.presences(t))
	assert.Equal(t, [][]string{
		{"alice", "bob"},
		{"alice", "bob", "alice"},
		{"bob", "alice"},
	}, sb.presences(t))
	assert.Equal(t, [][]string{
		{"alice", "bob", "alice"},
		{"bob", "alice"},
	}, sc.presences(t))
}

func TestPresence_EmptyAndUnknownRooms(t *testing.T) {
	rooms := NewRoomRegistry()
	p := newPresence(rooms)

	a, _ := joinConn(t, rooms, "a", "alice", "lobby")
	require.NoError(t, rooms.Leave("lobby", a))

	assert.Zero(t, p.Notify(context.Background(), "lobby").SentTo)
	assert.Zero(t, p.Notify(context.Background(), "nowhere").SentTo)
}

func TestPresence_ConcurrentJoinsConverge(t *testing.T) {
	rooms := NewRoomRegistry()
	p := newPresence(rooms)
	ctx := context.Background()

	const n = 20
	sinks := make([]*fakeSink, n)
	var wg sync.WaitGroup
	for i := range n {
		sink := &fakeSink{}
		sinks[i] = sink
		c := core.NewConnection(core.ConnID(string(rune('a' + i))), sink)
		require.NoError(t, c.Bind(domain.Session{Nickname: string(rune('a' + i)), Room: "lobby"}))
		require.NoError(t, c.Activate())
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rooms.Join("lobby", c))
			p.Notify(ctx, "lobby")
		}()
	}
	wg.Wait()

	room, ok := rooms.Get("lobby")
	require.True(t, ok)
	final := room.Nicknames()
	require.Len(t, final, n)
	for _, s := range sinks {
		got := s.presences(t)
		require.NotEmpty(t, got)
		assert.Equal(t, final, got[len(got)-1])
	}
}
