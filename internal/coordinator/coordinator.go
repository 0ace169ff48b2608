// Package coordinator sequences loads, runs and hot reloads of one module.
//
// The coordinator is a small state machine:
//
//	Idle ──Run──▶ Running ──ok──▶ Idle
//	                 │
//	                 └──fail──▶ Error(msg) ──Run/Reload──▶ ...
//
// Run hands the invocation to a worker goroutine and returns at once. The
// host loop picks the outcome up with Poll (non-blocking) or Wait. Loads run
// without the coordinator lock held, so State stays responsive while a module's
// load-time code executes. Runs and reloads are refused while a run or a load
// is in progress, and a reload never replaces the loaded module unless the new
// one loaded successfully.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/logging"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
	"github.com/Lacosst0/pathfinding-playground/internal/watcher"
)

// Request is the input of one run. Start and Goal are host positions.
type Request struct {
	Snapshot grid.Snapshot
	Start    grid.Position
	Goal     grid.Position
}

// Validate rejects requests the module must never see.
func (r Request) Validate() error {
	if err := r.Snapshot.Validate(); err != nil {
		return contract.Violation("invalid snapshot", err)
	}
	size := r.Snapshot.Size()
	if !size.Contains(r.Start) || !size.Contains(r.Goal) {
		return contract.Violation(fmt.Sprintf("start %v or goal %v outside %dx%d grid", r.Start, r.Goal, size.Width, size.Height), grid.ErrOutOfBounds)
	}
	return nil
}

// Completion is the outcome of one run.
type Completion struct {
	Request Request
	Result  plugin.Result
	Err     error
}

// ReloadObserver is told about every reload attempt.
type ReloadObserver interface {
	ObserveReload(err error)
}

// Coordinator owns the loaded module and serializes everything done to it.
type Coordinator struct {
	mu sync.Mutex

	loader *plugin.Loader
	arena  *plugin.Arena
	id     plugin.HandleID
	loaded bool
	path   string

	state       State
	loading     bool
	hotReload   bool
	last        *Request
	lastSuccess *Completion
	closed      bool

	done chan Completion
	wg   sync.WaitGroup

	watcher  *watcher.Watcher
	onClear  func()
	observer ReloadObserver
	logger   *logging.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClearHook registers fn to run when a run starts, so the host can clear
// the previous visualization. fn runs with the coordinator locked and must
// not call back into it.
func WithClearHook(fn func()) Option {
	return func(c *Coordinator) {
		c.onClear = fn
	}
}

// WithReloadObserver reports reload outcomes to o.
func WithReloadObserver(o ReloadObserver) Option {
	return func(c *Coordinator) {
		c.observer = o
	}
}

// WithWatcher makes the coordinator keep w pointed at the loaded module and
// react to its change events.
func WithWatcher(w *watcher.Watcher) Option {
	return func(c *Coordinator) {
		c.watcher = w
	}
}

// WithHotReload sets whether file changes trigger reloads. Default true.
func WithHotReload(enabled bool) Option {
	return func(c *Coordinator) {
		c.hotReload = enabled
	}
}

// New creates a coordinator that loads modules with loader.
func New(loader *plugin.Loader, opts ...Option) *Coordinator {
	c := &Coordinator{
		loader:    loader,
		arena:     plugin.NewArena(),
		hotReload: true,
		done:      make(chan Completion, 1),
		logger:    logging.Null(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.watcher != nil {
		c.watcher.OnChange(c.onFileEvent)
	}
	return c
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Path returns the loaded module path, or "" before the first load.
func (c *Coordinator) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// HotReload reports whether file changes trigger reloads.
func (c *Coordinator) HotReload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hotReload
}

// SetHotReload enables or disables reacting to file changes.
func (c *Coordinator) SetHotReload(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hotReload = enabled
}

// LastRequest returns the most recent accepted request.
func (c *Coordinator) LastRequest() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Request{}, false
	}
	return *c.last, true
}

// LastSuccess returns the most recent successful completion.
func (c *Coordinator) LastSuccess() (Completion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastSuccess == nil {
		return Completion{}, false
	}
	return *c.lastSuccess, true
}

// Load loads the module at path, replacing the current one on success. It
// is used for the first load and for switching to a different file.
func (c *Coordinator) Load(ctx context.Context, path string) error {
	c.mu.Lock()
	if err := c.beginLoadLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()
	defer c.wg.Done()

	h, err := c.loader.Load(ctx, path)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.failLocked(err)
		return err
	}

	if c.loaded {
		old, err := c.arena.Swap(c.id, h)
		if err != nil {
			_ = h.Close(ctx)
			c.failLocked(err)
			return err
		}
		_ = old.Close(ctx)
	} else {
		id, err := c.arena.Insert(h)
		if err != nil {
			_ = h.Close(ctx)
			c.failLocked(err)
			return err
		}
		c.id = id
		c.loaded = true
	}

	c.retargetWatcherLocked(path)
	c.path = path
	c.state = State{Status: StatusIdle}
	c.logger.Info("module %s ready", filepath.Base(path))
	return nil
}

// Reload loads the current module file again. While a run or another load is
// in progress it is skipped with ErrBusy. A failed reload keeps the previous
// module and moves to StatusError.
func (c *Coordinator) Reload(ctx context.Context) error {
	c.mu.Lock()
	if err := c.beginReloadLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	id, path := c.id, c.path
	c.mu.Unlock()

	return c.reload(ctx, id, path)
}

func (c *Coordinator) beginReloadLocked() error {
	if err := c.checkIdleLocked(); err != nil {
		return err
	}
	if !c.loaded {
		return ErrNotLoaded
	}
	return c.beginLoadLocked()
}

// beginLoadLocked marks a load in progress. The caller finishes it with mu
// released, clears loading under mu and calls wg.Done.
func (c *Coordinator) beginLoadLocked() error {
	if err := c.checkIdleLocked(); err != nil {
		return err
	}
	c.loading = true
	c.wg.Add(1)
	return nil
}

// reload replaces the module bound to id after beginReloadLocked.
func (c *Coordinator) reload(ctx context.Context, id plugin.HandleID, path string) error {
	defer c.wg.Done()

	_, err := c.arena.Reload(ctx, c.loader, id)
	if c.observer != nil {
		c.observer.ObserveReload(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.logger.Warn("reload of %s failed, keeping previous module: %v", filepath.Base(path), err)
		c.failLocked(err)
		return err
	}

	c.logger.Info("reloaded %s", filepath.Base(path))
	c.state = State{Status: StatusIdle}
	return nil
}

// Run starts an invocation on a worker goroutine. It returns ErrBusy while
// another run or a load is in progress. An invalid request is rejected with a
// *contract.ContractViolation and moves the coordinator to StatusError;
// otherwise the outcome arrives through Poll or Wait.
func (c *Coordinator) Run(req Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runLocked(req)
}

func (c *Coordinator) runLocked(req Request) error {
	if err := c.checkIdleLocked(); err != nil {
		return err
	}
	if !c.loaded {
		return ErrNotLoaded
	}
	h, ok := c.arena.Get(c.id)
	if !ok {
		return ErrNotLoaded
	}
	if err := req.Validate(); err != nil {
		c.failLocked(err)
		return err
	}

	req.Snapshot = req.Snapshot.Clone()
	c.last = &req

	// Drop a completion nobody collected.
	select {
	case <-c.done:
	default:
	}

	if c.onClear != nil {
		c.onClear()
	}
	c.state = State{Status: StatusRunning}

	c.wg.Add(1)
	go c.work(h, req)
	return nil
}

func (c *Coordinator) work(h *plugin.Handle, req Request) {
	defer c.wg.Done()

	res, err := h.Invoke(context.Background(), req.Snapshot, req.Start, req.Goal)
	done := Completion{Request: req, Result: res, Err: err}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = State{Status: StatusError, Message: err.Error()}
	} else {
		c.state = State{Status: StatusIdle}
		c.lastSuccess = &done
	}
	c.publishLocked(done)
}

// publishLocked replaces any uncollected completion with done. Senders hold
// mu, so the send never blocks.
func (c *Coordinator) publishLocked(done Completion) {
	select {
	case <-c.done:
	default:
	}
	c.done <- done
}

// Poll returns the completion of the last run if it has finished and was
// not collected yet.
func (c *Coordinator) Poll() (Completion, bool) {
	select {
	case done := <-c.done:
		return done, true
	default:
		return Completion{}, false
	}
}

// Wait blocks until the running invocation completes or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) (Completion, error) {
	select {
	case done := <-c.done:
		return done, nil
	case <-ctx.Done():
		return Completion{}, ctx.Err()
	}
}

// HandleFileChange reloads the module and runs the last request again. It is
// inert until a module has loaded and while hot reload is disabled.
func (c *Coordinator) HandleFileChange(ctx context.Context) error {
	c.mu.Lock()
	if !c.loaded || !c.hotReload || c.closed {
		c.mu.Unlock()
		return nil
	}
	if err := c.beginReloadLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	id, path := c.id, c.path
	c.mu.Unlock()

	if err := c.reload(ctx, id, path); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	return c.runLocked(*c.last)
}

func (c *Coordinator) onFileEvent(ev watcher.Event) {
	if ev.Op == watcher.OpRemove {
		return
	}
	err := c.HandleFileChange(context.Background())
	switch {
	case errors.Is(err, ErrBusy):
		c.logger.Info("change to %s ignored while a run is in progress", filepath.Base(ev.Path))
	case err != nil:
		c.logger.Debug("hot reload: %v", err)
	}
}

// Close waits for a running invocation or load and releases the module.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	if c.watcher != nil {
		c.watcher.Stop()
	}
	return c.arena.Close(ctx)
}

func (c *Coordinator) checkIdleLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.loading || c.state.Status == StatusRunning {
		return ErrBusy
	}
	return nil
}

func (c *Coordinator) failLocked(err error) {
	c.state = State{Status: StatusError, Message: err.Error()}
}

func (c *Coordinator) retargetWatcherLocked(path string) {
	if c.watcher == nil {
		return
	}
	if c.path != "" && c.path != path {
		_ = c.watcher.Unwatch(c.path)
	}
	if err := c.watcher.Watch(path); err != nil {
		c.logger.Warn("cannot watch %s: %v", path, err)
	}
}
