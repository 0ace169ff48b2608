package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lacosst0/pathfinding-playground/internal/coordinator"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/backend"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/view"
	"github.com/Lacosst0/pathfinding-playground/internal/replay"
	"github.com/Lacosst0/pathfinding-playground/internal/watcher"
)

type watchOptions struct {
	metricsAddr string
	noRun       bool
}

func newWatchCmd(global *globalOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <module>",
		Short: "Open the grid viewer and re-run the module whenever it changes",
		Long: `Watch opens an interactive grid in the terminal, runs the module and replays
what it drew. Saving the module file reloads it and runs the last request again.

` + view.HelpText,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return errNotTerminal
			}
			term, err := backend.NewTerminal()
			if err != nil {
				return err
			}
			return watchModule(cmd.Context(), cmd, global, opts, args[0], term)
		},
	}

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().BoolVar(&opts.noRun, "no-run", false, "Do not run the module on start")
	return cmd
}

// watchModule wires the viewer, the coordinator and the file watcher
// together and blocks until the viewer quits. Logs go to --log-file only;
// the terminal belongs to the viewer.
func watchModule(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts *watchOptions, path string, b backend.Backend) error {
	s, err := newSession(cmd, global, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	g, goals, err := s.grid(global)
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: s.metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("metrics server: %v", err)
			}
		}()
		defer srv.Close()
	}

	w := watcher.New(
		watcher.WithInterval(s.cfg.Watch.PollInterval.Duration),
		watcher.WithRecency(s.cfg.Watch.RecencyWindow.Duration),
		watcher.WithNotify(s.cfg.Watch.Notify),
		watcher.WithLogger(s.logger.WithComponent("watcher")),
	)

	var app *view.App
	appOpts := []view.AppOption{
		view.WithLogger(s.logger.WithComponent("view")),
		view.WithReplayer(replay.New(replay.WithLogger(s.logger.WithComponent("replay")))),
		view.WithResultHook(func(done coordinator.Completion) {
			if done.Err == nil {
				s.logger.Info("run finished: %d actions in %s", len(done.Result.Actions), done.Result.Elapsed)
				s.metrics.ObserveDropped(app.Scene().Dropped)
			}
		}),
	}
	if !opts.noRun {
		appOpts = append(appOpts, view.WithInitialRun())
	}
	app = view.NewApp(b, g, goals, appOpts...)

	coord := coordinator.New(s.loader(),
		coordinator.WithLogger(s.logger.WithComponent("coordinator")),
		coordinator.WithWatcher(w),
		coordinator.WithHotReload(s.cfg.Watch.Enabled),
		coordinator.WithReloadObserver(s.metrics),
		coordinator.WithClearHook(app.ClearHook),
	)
	defer coord.Close(context.Background())

	if err := coord.Load(ctx, path); err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	return app.Run(ctx, coord)
}
