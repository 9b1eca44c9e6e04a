package core

import (
	"slices"
	"sync"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room keeping members in join order.
// It never closes adapter-owned resources.
type roomImpl struct {
	id      domain.RoomID
	mu      sync.RWMutex
	members []*Connection

	notifyMu sync.Mutex
}

func NewRoomService(id domain.RoomID) RoomService {
	return &roomImpl{id: id}
}

func (r *roomImpl) ID() domain.RoomID { return r.id }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) AddMember(c *Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.members, c) {
		return ErrAlreadyMember
	}
	r.members = append(r.members, c)
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(c.ID())).Int("members", len(r.members)).Msg("member added")
	return nil
}

func (r *roomImpl) RemoveMember(c *Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.members, c)
	if i < 0 {
		return ErrNotMember
	}
	r.members = slices.Delete(r.members, i, i+1)
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(c.ID())).Int("members", len(r.members)).Msg("member removed")
	return nil
}

func (r *roomImpl) Members() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.members)
}

func (r *roomImpl) Nicknames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.members))
	for _, c := range r.members {
		out = append(out, c.Nickname())
	}
	return out
}

func (r *roomImpl) Serialize(fn func()) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	fn()
}
