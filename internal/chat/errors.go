package chat

import "errors"

// Sentinel errors returned by store operations. Callers discriminate with
// errors.Is; the boundary layer maps them to HTTP statuses.
var (
	// ErrValidation reports malformed or empty input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound reports an unknown room, message, or identity. For message
	// edit and delete it also covers "not the author": a caller cannot tell a
	// missing id from someone else's message.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateRoom reports a room whose derived slug already exists.
	ErrDuplicateRoom = errors.New("room already exists")

	// ErrConflict reports an identity key collision during rebinding.
	ErrConflict = errors.New("conflict")
)
