package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Lacosst0/pathfinding-playground/internal/logging"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/lua"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/wasm"
	"github.com/Lacosst0/pathfinding-playground/internal/timeline"
)

// DefaultTimeout bounds a single invocation and the module's load-time code.
const DefaultTimeout = 5 * time.Second

// Loader reads module files and instantiates them with the engine that
// accepts them.
type Loader struct {
	engines  []contract.Engine
	timeout  time.Duration
	logger   *logging.Logger
	observer Observer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithEngines replaces the engines, tried in order.
func WithEngines(engines ...contract.Engine) LoaderOption {
	return func(l *Loader) {
		l.engines = engines
	}
}

// WithTimeout sets the invocation timeout of handles created by the loader
// and the limit on code a module runs while loading. Zero disables both.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithObserver reports loads and invocations to o.
func WithObserver(o Observer) LoaderOption {
	return func(l *Loader) {
		if o != nil {
			l.observer = o
		}
	}
}

// NewLoader creates a loader. Without WithEngines it understands WebAssembly
// and Lua with default limits.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		timeout:  DefaultTimeout,
		logger:   logging.Null(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(l)
	}

	if len(l.engines) == 0 {
		l.engines = DefaultEngines(l.logger)
	}
	return l
}

// DefaultEngines returns the WebAssembly and Lua engines with default limits.
func DefaultEngines(logger *logging.Logger) []contract.Engine {
	return []contract.Engine{
		wasm.NewEngine(wasm.WithLogger(logger.WithComponent("wasm"))),
		lua.NewEngine(lua.WithLogger(logger.WithComponent("lua"))),
	}
}

// Engines returns the configured engines.
func (l *Loader) Engines() []contract.Engine {
	return l.engines
}

// Timeout returns the invocation timeout given to new handles.
func (l *Loader) Timeout() time.Duration {
	return l.timeout
}

// Load reads path, compiles and links it, and returns a handle with an empty
// recorder. Errors are *contract.LoadError values. A module whose top level or
// start function outlives the timeout fails with kind LoadTimeout. A failed
// load has no side effects.
func (l *Loader) Load(ctx context.Context, path string) (*Handle, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		l.observer.ObserveLoad("", err)
		return nil, contract.NewLoadError(contract.LoadIo, path, err)
	}

	engine := l.engineFor(path, src)
	if engine == nil {
		err := contract.NewLoadError(contract.LoadCompile, path, ErrUnknownFormat)
		l.observer.ObserveLoad("", err)
		return nil, err
	}

	rec := timeline.NewRecorder()
	bridge := timeline.NewBridge(rec)

	loadCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	inst, err := engine.Instantiate(loadCtx, path, src, bridge)
	if err != nil && errors.Is(loadCtx.Err(), context.DeadlineExceeded) {
		l.logger.Debug("load %s stopped: %v", filepath.Base(path), err)
		err = contract.NewLoadError(contract.LoadTimeout, path, loadCtx.Err())
	}
	l.observer.ObserveLoad(engine.Name(), err)
	if err != nil {
		l.logger.Warn("load %s failed: %v", filepath.Base(path), err)
		return nil, err
	}

	l.logger.Info("loaded %s with %s engine in %v", filepath.Base(path), engine.Name(), time.Since(start).Round(time.Microsecond))

	return &Handle{
		path:     path,
		engine:   engine.Name(),
		instance: inst,
		recorder: rec,
		bridge:   bridge,
		timeout:  l.timeout,
		logger:   l.logger.WithField("module", filepath.Base(path)),
		observer: l.observer,
		state:    StateReady,
	}, nil
}

// engineFor returns the first engine accepting the file, or nil.
func (l *Loader) engineFor(path string, src []byte) contract.Engine {
	for _, e := range l.engines {
		if e.Accepts(path, src) {
			return e
		}
	}
	return nil
}

// String describes the loader's engines.
func (l *Loader) String() string {
	names := make([]string, len(l.engines))
	for i, e := range l.engines {
		names[i] = e.Name()
	}
	return fmt.Sprintf("Loader%v", names)
}
