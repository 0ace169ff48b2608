package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Lacosst0/pathfinding-playground/internal/config"
	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/gridio"
	"github.com/Lacosst0/pathfinding-playground/internal/logging"
	"github.com/Lacosst0/pathfinding-playground/internal/metrics"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/lua"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/wasm"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	gridPath   string
	timeout    time.Duration
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "playground",
		Short: "Run pathfinding algorithm modules against a grid",
		Long: `Playground loads pathfinding algorithms compiled to WebAssembly or written
in Lua, runs them against a grid in a sandbox and replays what they drew.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	flags.StringVarP(&opts.gridPath, "grid", "g", "", "Path to a grid JSON file")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Invocation timeout (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")

	root.AddCommand(
		newRunCmd(opts),
		newWatchCmd(opts),
		newReplayCmd(opts),
		newVersionCmd(),
	)
	return root
}

// session is what every command builds from the global options.
type session struct {
	cfg     config.Config
	logger  *logging.Logger
	metrics *metrics.Metrics
	closers []io.Closer
}

// newSession loads the configuration, applies flag overrides and opens the
// log. defaultLog is used when no --log-file is given; nil discards logs.
func newSession(cmd *cobra.Command, opts *globalOptions, defaultLog io.Writer) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Sandbox.Timeout = config.Duration{Duration: opts.timeout}
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, metrics: metrics.New()}

	out := defaultLog
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.closers = append(s.closers, f)
		out = f
	}

	if out == nil {
		s.logger = logging.Null()
		return s, nil
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Log.Level)
	logCfg.Output = out
	s.logger = logging.New(logCfg)
	return s, nil
}

// loader builds a plugin loader honouring the sandbox limits.
func (s *session) loader() *plugin.Loader {
	sb := s.cfg.Sandbox
	return plugin.NewLoader(
		plugin.WithTimeout(sb.Timeout.Duration),
		plugin.WithLogger(s.logger.WithComponent("loader")),
		plugin.WithObserver(s.metrics),
		plugin.WithEngines(
			wasm.NewEngine(
				wasm.WithLogger(s.logger.WithComponent("wasm")),
				wasm.WithMemoryLimitPages(sb.MemoryLimitPages),
			),
			lua.NewEngine(
				lua.WithLogger(s.logger.WithComponent("lua")),
				lua.WithLimits(sb.LuaCallStackSize, sb.LuaRegistryMaxSize),
			),
		),
	)
}

// grid returns the grid from --grid, or an empty grid of the configured size.
func (s *session) grid(opts *globalOptions) (*grid.Grid, grid.Goals, error) {
	if opts.gridPath != "" {
		return gridio.LoadGrid(opts.gridPath)
	}
	g := grid.New(s.cfg.Grid.Width, s.cfg.Grid.Height)
	goals := grid.DefaultGoals(g.Size())
	goals.Normalize(g)
	return g, goals, nil
}

func (s *session) Close() error {
	for _, c := range s.closers {
		_ = c.Close()
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
