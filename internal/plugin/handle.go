package plugin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/logging"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
	"github.com/Lacosst0/pathfinding-playground/internal/timeline"
)

// Result is the outcome of a successful invocation.
type Result struct {
	// Actions are the drained recorder contents in call order.
	Actions []timeline.Action

	// Size is the snapshot size the actions refer to.
	Size grid.Size

	Elapsed time.Duration
}

// Handle is a loaded module with its private bridge and recorder. It is
// replaced wholesale on reload and never shares state with another handle.
type Handle struct {
	// mu serializes invocations and guards everything below.
	mu sync.Mutex

	path     string
	engine   string
	instance contract.Instance
	recorder *timeline.Recorder
	bridge   *timeline.Bridge
	timeout  time.Duration
	logger   *logging.Logger
	observer Observer

	state   State
	lastErr error
}

// Path returns the module file path.
func (h *Handle) Path() string {
	return h.path
}

// Engine returns the name of the engine that loaded the module.
func (h *Handle) Engine() string {
	return h.engine
}

// State returns the current handle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Err returns the error of the last failed invocation, or nil.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

// Pending returns a copy of the recorder contents left by a failed
// invocation. It is empty after a successful one.
func (h *Handle) Pending() []timeline.Action {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recorder.Actions()
}

// Invoke runs the module once. snapshot is in array order; start and goal are
// host positions and are converted to array coordinates for the module.
//
// Invalid input is rejected with a *contract.ContractViolation before the
// module is touched. Module failures are *contract.RuntimeError values and
// leave the partial recording in Pending until the next Invoke.
func (h *Handle) Invoke(ctx context.Context, snapshot grid.Snapshot, start, goal grid.Position) (Result, error) {
	if err := snapshot.Validate(); err != nil {
		return Result{}, contract.Violation("invalid snapshot", err)
	}
	size := snapshot.Size()
	if !size.Contains(start) {
		return Result{}, contract.Violation(fmt.Sprintf("start %v outside %dx%d grid", start, size.Width, size.Height), grid.ErrOutOfBounds)
	}
	if !size.Contains(goal) {
		return Result{}, contract.Violation(fmt.Sprintf("goal %v outside %dx%d grid", goal, size.Width, size.Height), grid.ErrOutOfBounds)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateClosed {
		return Result{}, ErrHandleClosed
	}

	h.recorder.Reset()
	h.state = StateInvoking

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	begin := time.Now()
	err := h.run(ctx, snapshot, contract.ToPoint(size, start), contract.ToPoint(size, goal))
	elapsed := time.Since(begin)

	if err != nil {
		h.state = StateFailed
		h.lastErr = err
		h.observer.ObserveInvoke(h.engine, elapsed, h.recorder.Len(), err)
		h.logger.Warn("invocation failed after %v: %v", elapsed.Round(time.Microsecond), err)
		return Result{}, err
	}

	actions := h.recorder.Drain()
	h.state = StateReady
	h.lastErr = nil
	h.observer.ObserveInvoke(h.engine, elapsed, len(actions), nil)
	h.logger.Debug("invocation recorded %d actions in %v", len(actions), elapsed.Round(time.Microsecond))

	return Result{Actions: actions, Size: size, Elapsed: elapsed}, nil
}

// run calls the instance, converting panics raised by host code into traps.
func (h *Handle) run(ctx context.Context, snapshot grid.Snapshot, start, goal contract.Point) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = contract.Trap(fmt.Errorf("host panic: %v", r))
		}
	}()
	return h.instance.Run(ctx, snapshot, start, goal)
}

// Close releases the module. It waits for a running invocation and is safe
// to call more than once.
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateClosed {
		return nil
	}
	h.state = StateClosed
	h.recorder.Reset()
	return h.instance.Close(ctx)
}
