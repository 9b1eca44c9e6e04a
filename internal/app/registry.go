package app

import (
	"context"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Conn   *core.Connection
	Cancel context.CancelFunc
}

// ConnRegistry tracks live connections with their cancel funcs so the
// process can end every lifecycle on shutdown.
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{conns: make(map[core.ConnID]*connEntry)}
}

func (r *ConnRegistry) Bind(c *core.Connection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID()] = &connEntry{Conn: c, Cancel: cancel}
	log.Debug().Str("module", "app.registry").Str("conn", string(c.ID())).Msg("bound connection")
}

func (r *ConnRegistry) Unbind(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind connection")
}

func (r *ConnRegistry) Get(id core.ConnID) (*core.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (r *ConnRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *ConnRegistry) Cancel(id core.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}

// CancelAll cancels every bound connection and returns how many were canceled.
func (r *ConnRegistry) CancelAll() int {
	r.mu.RLock()
	entries := make([]*connEntry, 0, len(r.conns))
	for _, e := range r.conns {
		entries = append(entries, e)
	}
	r.mu.RUnlock()
	for _, e := range entries {
		if e.Cancel != nil {
			e.Cancel()
		}
	}
	log.Info().Str("module", "app.registry").Int("count", len(entries)).Msg("canceled all connections")
	return len(entries)
}
