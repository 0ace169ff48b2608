package timeline

import "sync"

// Recorder is an ordered, append-only log of actions for one invocation.
// Order is significant: a later tile action on the same cell supersedes an
// earlier one.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append adds an action at the end of the log.
func (r *Recorder) Append(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

// Len returns the number of recorded actions.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

// Drain returns every recorded action in call order and leaves the recorder
// empty for the next invocation.
func (r *Recorder) Drain() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.actions
	r.actions = nil
	if out == nil {
		return []Action{}
	}
	return out
}

// Reset discards all recorded actions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}

// Actions returns a copy of the log without draining it.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}
