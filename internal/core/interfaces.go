package core

import (
	"context"

	"github.com/dkeye/Relay/internal/domain"
)

// Frame is one encoded text payload.
type Frame []byte

type ConnID string

// Sink abstracts the outbound half of a transport.
// Owned by the adapter; the adapter must Close() it.
type Sink interface {
	// Send blocks until the frame is accepted, ctx is done or the sink is closed.
	Send(ctx context.Context, f Frame) error
	Close()
}

// PublishResult reports delivery stats for one fan-out.
type PublishResult struct {
	SentTo  int
	Dropped []*Connection
}

// RoomService is the core-facing API of a room.
// It owns the membership sequence but never touches transport resources.
type RoomService interface {
	ID() domain.RoomID
	MemberCount() int
	// Members returns a copy of the member sequence in join order.
	Members() []*Connection
	Nicknames() []string

	AddMember(c *Connection) error
	RemoveMember(c *Connection) error

	// Serialize runs fn while holding the room's notification lock.
	Serialize(fn func())
}

type RoomInfo struct {
	ID          domain.RoomID `json:"name"`
	MemberCount int           `json:"client_count"`
}

type RoomManager interface {
	Get(id domain.RoomID) (RoomService, bool)
	Join(id domain.RoomID, c *Connection) error
	Leave(id domain.RoomID, c *Connection) error
	Snapshot(id domain.RoomID) []*Connection
	List() []RoomInfo
}
