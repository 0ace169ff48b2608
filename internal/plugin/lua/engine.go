package lua

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/logging"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
)

// Extension is the file extension of Lua modules.
const Extension = ".lua"

// Engine compiles and instantiates Lua modules.
type Engine struct {
	logger          *logging.Logger
	callStackSize   int
	registryMaxSize int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Script print output goes to it at debug level.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLimits bounds the call stack depth and the value registry of every
// state the engine creates. Zero keeps the default.
func WithLimits(callStackSize, registryMaxSize int) Option {
	return func(e *Engine) {
		if callStackSize > 0 {
			e.callStackSize = callStackSize
		}
		if registryMaxSize > 0 {
			e.registryMaxSize = registryMaxSize
		}
	}
}

// NewEngine creates a Lua engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:          logging.Null(),
		callStackSize:   DefaultCallStackSize,
		registryMaxSize: DefaultRegistryMaxSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns "lua".
func (e *Engine) Name() string {
	return "lua"
}

// Accepts reports whether path has the .lua extension.
func (e *Engine) Accepts(path string, _ []byte) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// Compile parses src into a function prototype.
func Compile(name string, src []byte) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, err
	}
	return lua.Compile(chunk, name)
}

// Instantiate compiles src, runs its top level with host installed and checks
// that it defines run(grid, start, goal).
func (e *Engine) Instantiate(ctx context.Context, path string, src []byte, host contract.Host) (contract.Instance, error) {
	proto, err := Compile(filepath.Base(path), src)
	if err != nil {
		return nil, contract.NewLoadError(contract.LoadCompile, path, err)
	}

	inst := &instance{
		engine: e,
		path:   path,
		proto:  proto,
		host:   host,
		logger: e.logger.WithField("module", filepath.Base(path)),
	}
	if err := inst.start(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

// instance is a loaded script bound to one host.
type instance struct {
	engine *Engine
	path   string
	proto  *lua.FunctionProto
	host   contract.Host
	logger *logging.Logger

	// state is nil after a timeout until the next Run rebuilds it.
	state *State
}

// start creates a fresh state and runs the chunk's top level.
func (i *instance) start(ctx context.Context) error {
	state := NewState(
		WithCallStackSize(i.engine.callStackSize),
		WithRegistryMaxSize(i.engine.registryMaxSize),
		WithOutput(i.logger.Writer(logging.LevelDebug)),
	)
	installHost(state.L, i.host)

	if err := state.Exec(ctx, i.proto); err != nil {
		state.Close()
		return contract.NewLoadError(contract.LoadLink, i.path, err)
	}
	if err := checkEntryPoint(state.Global(contract.EntryPoint)); err != nil {
		state.Close()
		return contract.NewLoadError(contract.LoadMissingExport, i.path, err)
	}

	i.state = state
	return nil
}

// checkEntryPoint accepts a script function taking three parameters or
// varargs.
func checkEntryPoint(v lua.LValue) error {
	fn, ok := v.(*lua.LFunction)
	if !ok {
		if v == lua.LNil {
			return fmt.Errorf("%q is not defined", contract.EntryPoint)
		}
		return fmt.Errorf("%q: %w (got %s)", contract.EntryPoint, ErrNotFunction, v.Type())
	}
	if fn.IsG || fn.Proto == nil {
		return fmt.Errorf("%q must be a script function", contract.EntryPoint)
	}
	if fn.Proto.IsVarArg == 0 && fn.Proto.NumParameters != 3 {
		return fmt.Errorf("%q takes %d parameters, want 3", contract.EntryPoint, fn.Proto.NumParameters)
	}
	return nil
}

// Run calls run(grid, start, goal).
func (i *instance) Run(ctx context.Context, snapshot grid.Snapshot, start, goal contract.Point) error {
	if i.state == nil {
		if err := i.start(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return contract.TimedOut(ctxErr)
			}
			return contract.Trap(fmt.Errorf("re-instantiate: %w", err))
		}
	}

	L := i.state.L
	err := i.state.Call(ctx, contract.EntryPoint,
		snapshotTable(L, snapshot),
		pointTable(L, start),
		pointTable(L, goal),
	)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		i.logger.Warn("discarding lua state after %v", ctxErr)
		i.state.Close()
		i.state = nil
		return contract.TimedOut(ctxErr)
	}

	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return contract.Trap(errors.New(apiErr.Object.String()))
	}
	return contract.Trap(err)
}

// Close releases the state.
func (i *instance) Close(context.Context) error {
	if i.state != nil {
		i.state.Close()
		i.state = nil
	}
	return nil
}
