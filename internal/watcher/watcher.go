// Package watcher polls module files for modification and reports recent
// changes so the host can hot-reload them.
//
// A change is reported when a file's modification time differs from the last
// observation and is younger than the recency window. Changes that show up
// with an old timestamp (a file restored from a backup, a clock skew) are
// recorded but not reported. An optional fsnotify subscription triggers an
// immediate check instead of waiting for the next tick.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Lacosst0/pathfinding-playground/internal/logging"
)

// Defaults.
const (
	DefaultInterval = time.Second
	DefaultRecency  = time.Second
)

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// ModTime is the new modification time.
	ModTime time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a file appeared where none was.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.RWMutex

	// Watched files and their last modification times
	files map[string]time.Time

	handlers []Handler

	interval time.Duration
	recency  time.Duration
	notify   bool
	now      func() time.Time
	logger   *logging.Logger

	// checkMu serializes checks from the ticker and the fsnotify nudge.
	checkMu sync.Mutex

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithRecency sets how young a modification must be to be reported. Zero
// reports every change.
func WithRecency(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.recency = d
		}
	}
}

// WithNotify enables the fsnotify nudge.
func WithNotify(enabled bool) Option {
	return func(w *Watcher) {
		w.notify = enabled
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		if now != nil {
			w.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a new file watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		files:    make(map[string]time.Time),
		interval: DefaultInterval,
		recency:  DefaultRecency,
		now:      time.Now,
		logger:   logging.Null(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Watch adds a file to the watch list, recording its current modification
// time so only later changes are reported.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			w.files[absPath] = time.Time{}
			return nil
		}
		return err
	}

	w.files[absPath] = info.ModTime()
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.files, absPath)
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// Start begins polling. It returns an error only when the fsnotify nudge was
// requested and could not be set up; polling runs regardless.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.running = true
	dirs := w.dirsLocked()
	w.mu.Unlock()

	w.wg.Add(1)
	go w.pollLoop(ctx)

	if !w.notify {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("fsnotify unavailable, polling only: %v", err)
		return err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("fsnotify cannot watch %s: %v", dir, err)
		}
	}

	w.wg.Add(1)
	go w.notifyLoop(ctx, fsw)
	return nil
}

// Stop stops watching files.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.cancel()
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// dirsLocked returns the distinct parent directories of the watched files.
func (w *Watcher) dirsLocked() []string {
	seen := make(map[string]bool)
	var dirs []string
	for path := range w.files {
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// pollLoop checks files for changes at regular intervals.
func (w *Watcher) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// notifyLoop turns fsnotify events on watched files into immediate checks.
func (w *Watcher) notifyLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				if w.isWatched(ev.Name) {
					w.Check()
				}
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fsnotify: %v", err)
		}
	}
}

func (w *Watcher) isWatched(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[absPath]
	return ok
}

// Check examines every watched file once and emits the events found. It is
// what the poll loop runs on each tick.
func (w *Watcher) Check() {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	w.mu.RLock()
	files := make(map[string]time.Time, len(w.files))
	for path, modTime := range w.files {
		files[path] = modTime
	}
	w.mu.RUnlock()

	for path, lastMod := range files {
		if event := w.checkFile(path, lastMod); event != nil {
			w.emitEvent(*event)
		}
	}
}

// checkFile checks a single file for changes.
func (w *Watcher) checkFile(path string, lastMod time.Time) *Event {
	info, err := os.Stat(path)

	if os.IsNotExist(err) {
		if lastMod.IsZero() {
			return nil
		}
		w.record(path, time.Time{})
		return &Event{Path: path, Op: OpRemove}
	}
	if err != nil {
		return nil
	}

	currentMod := info.ModTime()
	if currentMod.Equal(lastMod) {
		return nil
	}
	w.record(path, currentMod)

	if w.recency > 0 && w.now().Sub(currentMod) >= w.recency {
		w.logger.Debug("ignoring stale modification of %s (%v)", filepath.Base(path), currentMod)
		return nil
	}

	op := OpWrite
	if lastMod.IsZero() {
		op = OpCreate
	}
	return &Event{Path: path, Op: op, ModTime: currentMod}
}

func (w *Watcher) record(path string, modTime time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; ok {
		w.files[path] = modTime
	}
}

// emitEvent calls all handlers with the event.
func (w *Watcher) emitEvent(event Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	w.logger.Debug("%s %s", event.Op, filepath.Base(event.Path))
	for _, handler := range handlers {
		w.safeCallHandler(handler, event)
	}
}

// safeCallHandler calls a handler with panic recovery.
func (w *Watcher) safeCallHandler(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("watch handler panicked: %v", r)
		}
	}()
	handler(event)
}
