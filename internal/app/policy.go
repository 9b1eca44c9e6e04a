package app

import (
	"fmt"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type DeliveryAction int

const (
	DropFrame DeliveryAction = iota
	CloseRecipient
)

// Policy decides what happens to a recipient whose delivery failed.
// It never affects other recipients.
type Policy interface {
	OnDeliveryFailure(room domain.RoomID, member *core.Connection, err error) DeliveryAction
}

type DropPolicy struct{}

func (DropPolicy) OnDeliveryFailure(domain.RoomID, *core.Connection, error) DeliveryAction {
	return DropFrame
}

// ClosePolicy closes the failing recipient so its lifecycle ends and it leaves the room.
type ClosePolicy struct{}

func (ClosePolicy) OnDeliveryFailure(domain.RoomID, *core.Connection, error) DeliveryAction {
	return CloseRecipient
}

func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "close":
		return ClosePolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown delivery failure policy %q", name)
	}
}
