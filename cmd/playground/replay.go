package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/gridio"
	"github.com/Lacosst0/pathfinding-playground/internal/replay"
)

func newReplayCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <timeline.json>",
		Short: "Draw a timeline saved by run as text",
		Long: `Replay draws a timeline saved by "run --out" over the grid given with --grid,
or over an empty grid of the size the timeline was recorded on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, global, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tl, err := gridio.DecodeTimeline(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			var (
				g     *grid.Grid
				goals grid.Goals
			)
			if global.gridPath != "" {
				if g, goals, err = gridio.LoadGrid(global.gridPath); err != nil {
					return err
				}
			} else {
				if tl.Size.Width < gridio.MinSize || tl.Size.Height < gridio.MinSize {
					return fmt.Errorf("%s: timeline has no usable grid size, pass --grid", args[0])
				}
				g = grid.New(tl.Size.Width, tl.Size.Height)
				goals = grid.DefaultGoals(g.Size())
				goals.Normalize(g)
			}

			scene := replay.New(replay.WithLogger(s.logger.WithComponent("replay"))).Apply(g, tl.Size, tl.Actions)
			status := fmt.Sprintf("%s: %d actions", tl.Module, len(tl.Actions))
			if scene.Dropped > 0 {
				status += fmt.Sprintf(", %d dropped", scene.Dropped)
			}
			render(cmd.OutOrStdout(), g, goals, scene, status)
			return nil
		},
	}
}
