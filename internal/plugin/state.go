package plugin

// State represents the lifecycle state of a handle.
type State int

// Handle states.
const (
	// StateReady - Module is instantiated and idle.
	StateReady State = iota

	// StateInvoking - An invocation holds the handle.
	StateInvoking

	// StateFailed - The last invocation failed; the handle is still usable.
	StateFailed

	// StateClosed - The handle was closed and cannot be invoked.
	StateClosed
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateInvoking:
		return "invoking"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// IsUsable returns true if the handle can be invoked.
func (s State) IsUsable() bool {
	return s != StateClosed
}
