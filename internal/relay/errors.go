package relay

import "errors"

var (
	// ErrDuplicateConn means Register was called with an id that is
	// already present. Ids are freshly generated per connection, so this
	// indicates a programming error rather than a runtime condition.
	ErrDuplicateConn = errors.New("connection already registered")

	// ErrConnNotFound means the target connection is not registered.
	// Broadcast callers log it and continue.
	ErrConnNotFound = errors.New("connection not found")

	// ErrRoomNotFound means the room does not exist in the store.
	ErrRoomNotFound = errors.New("room not found")
)
