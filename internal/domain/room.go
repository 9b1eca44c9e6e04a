package domain

// RoomID is an opaque room identifier chosen by clients.
type RoomID string

func (id RoomID) String() string { return string(id) }
