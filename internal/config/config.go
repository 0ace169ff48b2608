package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/logging"
)

// Duration is a time.Duration written as a Go duration string ("1.5s").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete playground configuration.
type Config struct {
	Grid    GridConfig    `toml:"grid"`
	Sandbox SandboxConfig `toml:"sandbox"`
	Watch   WatchConfig   `toml:"watch"`
	Log     LogConfig     `toml:"log"`
}

// GridConfig sizes the grid created when no grid file is given.
type GridConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// SandboxConfig bounds module execution.
type SandboxConfig struct {
	// Timeout bounds one invocation. Zero disables it.
	Timeout Duration `toml:"timeout"`

	// MemoryLimitPages caps WebAssembly linear memory, in 64 KiB pages.
	MemoryLimitPages uint32 `toml:"memory_limit_pages"`

	// LuaCallStackSize bounds Lua call depth.
	LuaCallStackSize int `toml:"lua_call_stack_size"`

	// LuaRegistryMaxSize bounds the Lua value stack.
	LuaRegistryMaxSize int `toml:"lua_registry_max_size"`
}

// WatchConfig drives hot reload.
type WatchConfig struct {
	Enabled       bool     `toml:"enabled"`
	PollInterval  Duration `toml:"poll_interval"`
	RecencyWindow Duration `toml:"recency_window"`
	Notify        bool     `toml:"notify"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Grid: GridConfig{Width: 15, Height: 10},
		Sandbox: SandboxConfig{
			Timeout:            Duration{5 * time.Second},
			MemoryLimitPages:   256,
			LuaCallStackSize:   256,
			LuaRegistryMaxSize: 256 * 1024,
		},
		Watch: WatchConfig{
			Enabled:       true,
			PollInterval:  Duration{time.Second},
			RecencyWindow: Duration{time.Second},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load returns the defaults overlaid with the TOML file at path (if path is
// not empty) and the environment, validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("%s: %w", path, ErrFileNotFound)
			}
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := Decode(&cfg, path, data); err != nil {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays TOML data onto cfg. Keys absent from data keep their
// current values; unknown keys are an error.
func Decode(cfg *Config, source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Source: source, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			perr.Message = serr.String()
		}
		return perr
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate checks every setting and reports all problems at once.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Grid.Width < grid.MinDimension || c.Grid.Height < grid.MinDimension ||
		c.Grid.Width > grid.MaxDimension || c.Grid.Height > grid.MaxDimension {
		add("grid size %dx%d, want %d..%d in each dimension", c.Grid.Width, c.Grid.Height, grid.MinDimension, grid.MaxDimension)
	}
	if c.Sandbox.Timeout.Duration < 0 {
		add("sandbox.timeout %v is negative", c.Sandbox.Timeout.Duration)
	}
	if c.Sandbox.MemoryLimitPages == 0 || c.Sandbox.MemoryLimitPages > 65536 {
		add("sandbox.memory_limit_pages %d, want 1..65536", c.Sandbox.MemoryLimitPages)
	}
	if c.Sandbox.LuaCallStackSize <= 0 {
		add("sandbox.lua_call_stack_size %d, want > 0", c.Sandbox.LuaCallStackSize)
	}
	if c.Sandbox.LuaRegistryMaxSize <= 0 {
		add("sandbox.lua_registry_max_size %d, want > 0", c.Sandbox.LuaRegistryMaxSize)
	}
	if c.Watch.PollInterval.Duration <= 0 {
		add("watch.poll_interval %v, want > 0", c.Watch.PollInterval.Duration)
	}
	if c.Watch.RecencyWindow.Duration < 0 {
		add("watch.recency_window %v is negative", c.Watch.RecencyWindow.Duration)
	}
	if !logging.ValidLevel(c.Log.Level) {
		add("log.level %q, want debug, info, warn or error", c.Log.Level)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
