package core

import "errors"

var (
	ErrMalformedFrame    = errors.New("malformed frame")
	ErrInvalidField      = errors.New("invalid field")
	ErrNotMember         = errors.New("connection is not a member")
	ErrAlreadyMember     = errors.New("connection is already a member")
	ErrInvalidTransition = errors.New("invalid state transition")
)
