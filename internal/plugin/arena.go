package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// HandleID identifies a slot in an Arena. It stays stable across reloads.
type HandleID uuid.UUID

// String returns the canonical uuid form.
func (id HandleID) String() string {
	return uuid.UUID(id).String()
}

// Arena owns handles under stable ids. The host keeps ids, never handles, so
// a reload can replace the handle behind an id atomically.
type Arena struct {
	mu      sync.RWMutex
	handles map[HandleID]*Handle
	order   []HandleID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{handles: make(map[HandleID]*Handle)}
}

// Insert adds h under a new id.
func (a *Arena) Insert(h *Handle) (HandleID, error) {
	if h == nil {
		return HandleID{}, ErrNilHandle
	}

	id := HandleID(uuid.New())

	a.mu.Lock()
	defer a.mu.Unlock()
	a.handles[id] = h
	a.order = append(a.order, id)
	return id, nil
}

// Get returns the handle bound to id.
func (a *Arena) Get(id HandleID) (*Handle, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	h, ok := a.handles[id]
	return h, ok
}

// Swap binds h to id and returns the previous handle, which the caller
// should close.
func (a *Arena) Swap(id HandleID, h *Handle) (*Handle, error) {
	if h == nil {
		return nil, ErrNilHandle
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	old, ok := a.handles[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrHandleNotFound)
	}
	a.handles[id] = h
	return old, nil
}

// Reload loads the module behind id again and swaps it in. On failure the
// existing handle stays bound and usable. On success the old handle is
// closed after the swap.
func (a *Arena) Reload(ctx context.Context, l *Loader, id HandleID) (*Handle, error) {
	current, ok := a.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrHandleNotFound)
	}

	fresh, err := l.Load(ctx, current.Path())
	if err != nil {
		return nil, err
	}

	old, err := a.Swap(id, fresh)
	if err != nil {
		_ = fresh.Close(ctx)
		return nil, err
	}
	if err := old.Close(ctx); err != nil {
		l.logger.Warn("closing replaced handle %s: %v", id, err)
	}
	return fresh, nil
}

// Remove unbinds id and closes its handle.
func (a *Arena) Remove(ctx context.Context, id HandleID) error {
	a.mu.Lock()
	h, ok := a.handles[id]
	if ok {
		delete(a.handles, id)
		for i, v := range a.order {
			if v == id {
				a.order = append(a.order[:i], a.order[i+1:]...)
				break
			}
		}
	}
	a.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", id, ErrHandleNotFound)
	}
	return h.Close(ctx)
}

// IDs returns the bound ids in insertion order.
func (a *Arena) IDs() []HandleID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := make([]HandleID, len(a.order))
	copy(ids, a.order)
	return ids
}

// Len returns the number of bound handles.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.handles)
}

// Close closes every handle in insertion order and empties the arena. The
// first error is returned.
func (a *Arena) Close(ctx context.Context) error {
	a.mu.Lock()
	handles, order := a.handles, a.order
	a.handles = make(map[HandleID]*Handle)
	a.order = nil
	a.mu.Unlock()

	var firstErr error
	for _, id := range order {
		if err := handles[id].Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
