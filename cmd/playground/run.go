package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/gridio"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/backend"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/view"
	"github.com/Lacosst0/pathfinding-playground/internal/replay"
)

type runOptions struct {
	out    string
	render bool
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <module>",
		Short: "Run a module once and print its timeline as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the timeline to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.render, "render", false, "Also draw the replayed grid as text")
	return cmd
}

func runOnce(cmd *cobra.Command, global *globalOptions, opts *runOptions, path string) error {
	s, err := newSession(cmd, global, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	g, goals, err := s.grid(global)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	h, err := s.loader().Load(ctx, path)
	if err != nil {
		return err
	}
	defer h.Close(ctx)

	res, err := h.Invoke(ctx, g.Snapshot(), goals.Start, goals.Goal)
	if err != nil {
		if n := len(h.Pending()); n > 0 {
			s.logger.Info("%d actions were recorded before the failure", n)
		}
		return err
	}

	data, err := gridio.EncodeTimeline(gridio.Timeline{
		Module:  path,
		Size:    res.Size,
		Elapsed: res.Elapsed,
		Actions: res.Actions,
	})
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	if opts.out != "" {
		if err := os.WriteFile(opts.out, data, 0o644); err != nil {
			return fmt.Errorf("write timeline: %w", err)
		}
	} else {
		fmt.Fprintf(stdout, "%s\n", data)
	}

	if opts.render {
		scene := replay.New(replay.WithLogger(s.logger.WithComponent("replay"))).Apply(g, res.Size, res.Actions)
		s.metrics.ObserveDropped(scene.Dropped)
		render(stdout, g, goals, scene, fmt.Sprintf("%d actions in %s", len(res.Actions), res.Elapsed))
	} else if isTerminal(stdout) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d actions in %s\n", len(res.Actions), res.Elapsed)
	}
	return nil
}

// render draws one frame into an in-memory backend and prints it as text.
func render(w io.Writer, g *grid.Grid, goals grid.Goals, scene replay.Scene, status string) {
	size := g.Size()
	width := max(size.Width*view.CellWidth, len(status))
	b := backend.NewNullBackend(width, size.Height+1)
	if err := b.Init(); err != nil {
		return
	}

	view.New(b).Draw(view.Frame{Grid: g, Goals: goals, Scene: scene, Status: status})

	for y := 0; y <= size.Height; y++ {
		fmt.Fprintln(w, b.Text(y))
	}
}

// errNotTerminal is returned by commands that need an interactive terminal.
var errNotTerminal = errors.New("this command needs an interactive terminal")
