// Package view draws the playground grid and the replayed timeline on a
// backend, and runs the interactive viewer loop.
//
// Layout:
//
//	┌──────────────────────────────┐
//	│  grid, two columns per cell  │  row 0 is the top row of the grid (y = h-1)
//	│  tiles │ overlays │ markers  │
//	├──────────────────────────────┤
//	│  status line                 │
//	└──────────────────────────────┘
//
// Tiles are painted as backgrounds, lines and arrows are rasterized over
// them cell by cell, and the start and goal markers are drawn last.
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	app := view.NewApp(term, g, goals)
//	coord := coordinator.New(loader, coordinator.WithClearHook(app.ClearHook))
//	_ = coord.Load(ctx, "algo.wasm")
//	err := app.Run(ctx, coord)
package view
