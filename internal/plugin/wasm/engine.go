package wasm

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/logging"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
)

// Extension is the file extension of WebAssembly modules.
const Extension = ".wasm"

// Magic is the header every binary module starts with.
var Magic = []byte{0x00, 0x61, 0x73, 0x6d}

// DefaultMemoryLimitPages caps linear memory at 16 MiB.
const DefaultMemoryLimitPages = 256

// Engine compiles and instantiates WebAssembly modules.
type Engine struct {
	logger     *logging.Logger
	limitPages uint32
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. WASI stdout and stderr go to it at debug level.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMemoryLimitPages caps the linear memory of every module, in 64 KiB
// pages. Zero keeps the default.
func WithMemoryLimitPages(pages uint32) Option {
	return func(e *Engine) {
		if pages > 0 {
			e.limitPages = pages
		}
	}
}

// NewEngine creates a WebAssembly engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:     logging.Null(),
		limitPages: DefaultMemoryLimitPages,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns "wasm".
func (e *Engine) Name() string {
	return "wasm"
}

// Accepts reports whether src starts with the wasm magic or path has the
// .wasm extension.
func (e *Engine) Accepts(path string, src []byte) bool {
	return bytes.HasPrefix(src, Magic) || strings.EqualFold(filepath.Ext(path), Extension)
}

// Instantiate compiles src in a fresh runtime, checks its imports and
// exports, links the host and WASI, and instantiates it.
func (e *Engine) Instantiate(ctx context.Context, path string, src []byte, host contract.Host) (contract.Instance, error) {
	if !bytes.HasPrefix(src, Magic) {
		return nil, contract.NewLoadError(contract.LoadCompile, path, ErrNotWasm)
	}

	cfg := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true).
		WithMemoryLimitPages(e.limitPages)
	r := wazero.NewRuntimeWithConfig(ctx, cfg)

	inst, err := e.instantiate(ctx, r, path, src, host)
	if err != nil {
		_ = r.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return inst, nil
}

func (e *Engine) instantiate(ctx context.Context, r wazero.Runtime, path string, src []byte, host contract.Host) (*instance, error) {
	compiled, err := r.CompileModule(ctx, src)
	if err != nil {
		return nil, contract.NewLoadError(contract.LoadCompile, path, err)
	}
	if err := checkImports(compiled); err != nil {
		return nil, contract.NewLoadError(contract.LoadLink, path, err)
	}
	if err := checkExports(compiled); err != nil {
		return nil, contract.NewLoadError(contract.LoadMissingExport, path, err)
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		return nil, contract.NewLoadError(contract.LoadLink, path, err)
	}
	if err := instantiateHost(ctx, r, host); err != nil {
		return nil, contract.NewLoadError(contract.LoadLink, path, err)
	}

	logger := e.logger.WithField("module", filepath.Base(path))
	out := logger.Writer(logging.LevelDebug)
	inst := &instance{
		runtime:  r,
		compiled: compiled,
		logger:   logger,
		config: wazero.NewModuleConfig().
			WithName("").
			WithStdout(out).
			WithStderr(out).
			WithStartFunctions("_initialize"),
	}
	if err := inst.start(ctx); err != nil {
		return nil, contract.NewLoadError(contract.LoadLink, path, err)
	}
	return inst, nil
}

// instance is a compiled module bound to one host, in its own runtime.
type instance struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	config   wazero.ModuleConfig
	logger   *logging.Logger

	// module is nil after a timeout until the next Run rebuilds it.
	module api.Module
}

func (i *instance) start(ctx context.Context) error {
	mod, err := i.runtime.InstantiateModule(ctx, i.compiled, i.config)
	if err != nil {
		return err
	}
	i.module = mod
	return nil
}

// Run copies the grid into module memory and calls run.
func (i *instance) Run(ctx context.Context, snapshot grid.Snapshot, start, goal contract.Point) error {
	if i.module == nil || i.module.IsClosed() {
		if err := i.start(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return contract.TimedOut(ctxErr)
			}
			return contract.Trap(fmt.Errorf("re-instantiate: %w", err))
		}
	}

	err := i.call(ctx, snapshot, start, goal)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		i.logger.Warn("discarding wasm instance after %v", ctxErr)
		_ = i.module.Close(context.Background())
		i.module = nil
		return contract.TimedOut(ctxErr)
	}
	return contract.Trap(err)
}

func (i *instance) call(ctx context.Context, snapshot grid.Snapshot, start, goal contract.Point) error {
	cells := snapshot.Bytes()
	size := snapshot.Size()

	res, err := i.module.ExportedFunction(ExportAlloc).Call(ctx, api.EncodeU32(uint32(len(cells))))
	if err != nil {
		return fmt.Errorf("alloc: %w", err)
	}
	ptr := api.DecodeU32(res[0])
	if !i.module.Memory().Write(ptr, cells) {
		return fmt.Errorf("alloc(%d) = %d: %w", len(cells), ptr, ErrAlloc)
	}

	_, err = i.module.ExportedFunction(contract.EntryPoint).Call(ctx,
		api.EncodeU32(ptr),
		api.EncodeU32(uint32(size.Width)),
		api.EncodeU32(uint32(size.Height)),
		api.EncodeU32(start.X),
		api.EncodeU32(start.Y),
		api.EncodeU32(goal.X),
		api.EncodeU32(goal.Y),
	)
	return err
}

// Close releases the runtime and everything instantiated in it.
func (i *instance) Close(ctx context.Context) error {
	i.module = nil
	return i.runtime.Close(ctx)
}
