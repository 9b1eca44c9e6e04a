package app

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomRegistry maps room ids to rooms. Rooms are created on first join.
// Membership changes are serialized by the registry lock so a room is never
// evicted while a join into it is in progress.
type RoomRegistry struct {
	mu         sync.RWMutex
	rooms      map[domain.RoomID]core.RoomService
	evictEmpty bool
}

type RoomRegistryOption func(*RoomRegistry)

// WithEmptyRoomEviction drops a room from the registry once its last member leaves.
func WithEmptyRoomEviction() RoomRegistryOption {
	return func(r *RoomRegistry) { r.evictEmpty = true }
}

func NewRoomRegistry(opts ...RoomRegistryOption) *RoomRegistry {
	r := &RoomRegistry{rooms: make(map[domain.RoomID]core.RoomService)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RoomRegistry) Get(id domain.RoomID) (core.RoomService, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

func (r *RoomRegistry) Join(id domain.RoomID, c *core.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		room = core.NewRoomService(id)
		r.rooms[id] = room
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	}
	return room.AddMember(c)
}

func (r *RoomRegistry) Leave(id domain.RoomID, c *core.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return core.ErrNotMember
	}
	if err := room.RemoveMember(c); err != nil {
		return err
	}
	if r.evictEmpty && room.MemberCount() == 0 {
		delete(r.rooms, id)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("empty room evicted")
	}
	return nil
}

// Snapshot returns a copy of the room's member sequence; nil for unknown rooms.
func (r *RoomRegistry) Snapshot(id domain.RoomID) []*core.Connection {
	room, ok := r.Get(id)
	if !ok {
		return nil
	}
	return room.Members()
}

func (r *RoomRegistry) List() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for id, room := range r.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: room.MemberCount()})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
