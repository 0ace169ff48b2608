package plugin

import "errors"

// Plugin system errors.
var (
	// ErrUnknownFormat is returned when no engine accepts a module file.
	ErrUnknownFormat = errors.New("unrecognized module format")

	// ErrHandleClosed is returned when invoking a closed handle.
	ErrHandleClosed = errors.New("module handle is closed")

	// ErrHandleNotFound is returned when an arena has no handle for an id.
	ErrHandleNotFound = errors.New("module handle not found")

	// ErrNilHandle is returned when a nil handle is inserted into an arena.
	ErrNilHandle = errors.New("module handle is nil")
)
