package coordinator

// Status is the coarse invocation state shown to the user.
type Status int

const (
	// StatusIdle - Nothing is running. The last run, if any, succeeded or
	// nothing has run yet.
	StatusIdle Status = iota

	// StatusRunning - A worker is inside the module.
	StatusRunning

	// StatusError - The last load, reload or run failed. Not terminal.
	StatusError
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a status plus the error message when Status is StatusError.
type State struct {
	Status  Status
	Message string
}

// String returns "idle", "running" or "error: <message>".
func (s State) String() string {
	if s.Status == StatusError {
		return "error: " + s.Message
	}
	return s.Status.String()
}
