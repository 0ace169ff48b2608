package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(modTime.String()), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}
}

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) ops() []Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	ops := make([]Operation, len(c.events))
	for i, e := range c.events {
		ops[i] = e.Op
	}
	return ops
}

func TestNew(t *testing.T) {
	w := New()
	if w.interval != DefaultInterval {
		t.Errorf("default interval = %v, want %v", w.interval, DefaultInterval)
	}
	if w.recency != DefaultRecency {
		t.Errorf("default recency = %v, want %v", w.recency, DefaultRecency)
	}

	w = New(WithInterval(200*time.Millisecond), WithRecency(0), WithInterval(-1))
	if w.interval != 200*time.Millisecond {
		t.Errorf("interval = %v, want 200ms", w.interval)
	}
	if w.recency != 0 {
		t.Errorf("recency = %v, want 0", w.recency)
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestCheck_RecentModification(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base
	path := filepath.Join(t.TempDir(), "algo.wasm")
	writeFile(t, path, base)

	w := New(WithClock(func() time.Time { return now }))
	c := &collector{}
	w.OnChange(c.handle)
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Unchanged.
	w.Check()
	if len(c.ops()) != 0 {
		t.Fatalf("events for unchanged file = %v", c.ops())
	}

	// Modified half a second ago.
	writeFile(t, path, base.Add(10*time.Second))
	now = base.Add(10*time.Second + 500*time.Millisecond)
	w.Check()
	if got := c.ops(); len(got) != 1 || got[0] != OpWrite {
		t.Fatalf("events = %v, want [write]", got)
	}

	// Same mtime again: nothing new.
	w.Check()
	if got := c.ops(); len(got) != 1 {
		t.Errorf("events after second check = %v, want one", got)
	}
}

func TestCheck_StaleModificationIgnored(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base.Add(time.Hour)
	path := filepath.Join(t.TempDir(), "algo.wasm")
	writeFile(t, path, base)

	w := New(WithClock(func() time.Time { return now }))
	c := &collector{}
	w.OnChange(c.handle)
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Changed, but the new timestamp is older than the recency window.
	writeFile(t, path, base.Add(time.Minute))
	w.Check()
	if got := c.ops(); len(got) != 0 {
		t.Errorf("events = %v, want none for a stale timestamp", got)
	}

	// The stale timestamp was still recorded, so a recent write fires once.
	writeFile(t, path, now.Add(-100*time.Millisecond))
	w.Check()
	if got := c.ops(); len(got) != 1 {
		t.Errorf("events = %v, want one", got)
	}
}

func TestCheck_CreateAndRemove(t *testing.T) {
	now := time.Now()
	path := filepath.Join(t.TempDir(), "algo.lua")

	w := New(WithRecency(0), WithClock(func() time.Time { return now }))
	c := &collector{}
	w.OnChange(c.handle)
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() of missing file error = %v", err)
	}

	writeFile(t, path, now)
	w.Check()
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	w.Check()

	got := c.ops()
	if len(got) != 2 || got[0] != OpCreate || got[1] != OpRemove {
		t.Errorf("events = %v, want [create remove]", got)
	}
}

func TestUnwatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "algo.wasm")
	writeFile(t, path, time.Now())

	w := New()
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if len(w.WatchedFiles()) != 1 {
		t.Fatalf("WatchedFiles() = %v, want one file", w.WatchedFiles())
	}
	if err := w.Unwatch(path); err != nil {
		t.Fatalf("Unwatch() error = %v", err)
	}
	if len(w.WatchedFiles()) != 0 {
		t.Errorf("WatchedFiles() = %v, want none", w.WatchedFiles())
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	now := time.Now()
	path := filepath.Join(t.TempDir(), "algo.wasm")
	writeFile(t, path, now.Add(-time.Hour))

	w := New(WithRecency(0))
	var calls atomic.Int32
	w.OnChange(func(Event) { panic("boom") })
	w.OnChange(func(Event) { calls.Add(1) })
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, now)
	w.Check()
	if calls.Load() != 1 {
		t.Errorf("second handler calls = %d, want 1", calls.Load())
	}
}

func TestStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "algo.wasm")
	writeFile(t, path, time.Now().Add(-time.Hour))

	w := New(WithInterval(10 * time.Millisecond))
	fired := make(chan Event, 4)
	w.OnChange(func(e Event) { fired <- e })
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !w.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	defer w.Stop()

	writeFile(t, path, time.Now())

	select {
	case e := <-fired:
		if e.Op != OpWrite {
			t.Errorf("Op = %v, want write", e.Op)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}

	w.Stop()
	if w.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestNotifyNudge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "algo.wasm")
	writeFile(t, path, time.Now().Add(-time.Hour))

	// The poll interval is long, so only the fsnotify nudge can deliver the
	// event in time.
	w := New(WithInterval(time.Hour), WithNotify(true))
	fired := make(chan Event, 4)
	w.OnChange(func(e Event) { fired <- e })
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("no event within 3s")
	}
}
