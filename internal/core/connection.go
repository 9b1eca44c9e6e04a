package core

import (
	"fmt"
	"sync/atomic"

	"github.com/dkeye/Relay/internal/domain"
)

type ConnState int32

const (
	StateConnecting ConnState = iota
	StateActive
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Connection is one client bound to a transport sink.
// Nickname and room are set once on activation and never change.
type Connection struct {
	id       ConnID
	sink     Sink
	nickname string
	room     domain.RoomID

	state  atomic.Int32 // Zero by default (StateConnecting)
	joined atomic.Bool
}

func NewConnection(id ConnID, sink Sink) *Connection {
	return &Connection{id: id, sink: sink}
}

func (c *Connection) ID() ConnID          { return c.id }
func (c *Connection) Sink() Sink          { return c.sink }
func (c *Connection) Nickname() string    { return c.nickname }
func (c *Connection) Room() domain.RoomID { return c.room }
func (c *Connection) State() ConnState    { return ConnState(c.state.Load()) }

// Joined reports whether the connection ever reached the Active state.
func (c *Connection) Joined() bool { return c.joined.Load() }

// Bind attaches the validated session. Only allowed while Connecting.
func (c *Connection) Bind(sess domain.Session) error {
	if c.State() != StateConnecting {
		return fmt.Errorf("bind in %s: %w", c.State(), ErrInvalidTransition)
	}
	c.nickname = sess.Nickname
	c.room = sess.Room
	return nil
}

// Activate moves Connecting -> Active.
func (c *Connection) Activate() error {
	if !c.state.CompareAndSwap(int32(StateConnecting), int32(StateActive)) {
		return fmt.Errorf("activate in %s: %w", c.State(), ErrInvalidTransition)
	}
	c.joined.Store(true)
	return nil
}

// Close moves the connection to Closed from any state and reports the
// state it left. Closing twice returns StateClosed.
func (c *Connection) Close() ConnState {
	return ConnState(c.state.Swap(int32(StateClosed)))
}
