package coordinator

import "errors"

var (
	// ErrBusy is returned when a run is in progress.
	ErrBusy = errors.New("a module invocation is in progress")

	// ErrNotLoaded is returned before any module has loaded.
	ErrNotLoaded = errors.New("no module loaded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("coordinator is closed")
)
