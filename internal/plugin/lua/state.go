package lua

import (
	"context"
	"fmt"
	"io"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Default limits for a Lua state.
const (
	DefaultCallStackSize   = 256
	DefaultRegistryMaxSize = 256 * 1024
)

// State wraps a gopher-lua state opened with the safe libraries only.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes Go-side
// access; the sandbox additionally runs one invocation at a time.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	closed bool

	callStackSize   int
	registryMaxSize int
	output          io.Writer
}

// StateOption configures a State.
type StateOption func(*State)

// WithCallStackSize bounds the Lua call depth.
func WithCallStackSize(n int) StateOption {
	return func(s *State) {
		if n > 0 {
			s.callStackSize = n
		}
	}
}

// WithRegistryMaxSize bounds the Lua value stack.
func WithRegistryMaxSize(n int) StateOption {
	return func(s *State) {
		if n > 0 {
			s.registryMaxSize = n
		}
	}
}

// WithOutput sets where print writes.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.output = w
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		callStackSize:   DefaultCallStackSize,
		registryMaxSize: DefaultRegistryMaxSize,
		output:          io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		CallStackSize:   s.callStackSize,
		RegistrySize:    min(1024*20, s.registryMaxSize),
		RegistryMaxSize: s.registryMaxSize,
	})

	openSafeLibraries(s.L)
	installSandbox(s.L, s.output)
	return s
}

// openSafeLibraries opens only the libraries a pathfinding script needs.
// io, os, debug, channel, coroutine and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// Exec runs a compiled chunk, usually defining the module globals.
func (s *State) Exec(ctx context.Context, proto *lua.FunctionProto) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	top := s.L.GetTop()
	defer s.L.SetTop(top)

	fn := s.L.NewFunctionFromProto(proto)
	return s.protected(ctx, func() error {
		s.L.Push(fn)
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

// Global returns a global value.
func (s *State) Global(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global value.
func (s *State) SetGlobal(name string, v lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.L.SetGlobal(name, v)
	}
}

// Call calls a global function with args, discarding results.
func (s *State) Call(ctx context.Context, name string, args ...lua.LValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	fn := s.L.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return fmt.Errorf("%q: %w (got %s)", name, ErrNotFunction, fn.Type())
	}

	top := s.L.GetTop()
	defer s.L.SetTop(top)

	return s.protected(ctx, func() error {
		s.L.Push(fn)
		for _, arg := range args {
			s.L.Push(arg)
		}
		return s.L.PCall(len(args), 0, nil)
	})
}

// protected binds ctx to the state for the duration of fn and converts Go
// panics into errors.
func (s *State) protected(ctx context.Context, fn func() error) (err error) {
	if ctx != nil {
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Close releases the state. It is safe to call more than once.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}

// IsClosed reports whether Close was called.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
