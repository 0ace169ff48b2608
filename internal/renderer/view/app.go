package view

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Lacosst0/pathfinding-playground/internal/coordinator"
	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/logging"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/backend"
	"github.com/Lacosst0/pathfinding-playground/internal/replay"
)

// HelpText lists the viewer key bindings.
const HelpText = "[r]un [c]lear [l]oad [h]ot reload [s]tart [g]oal [space] wall [+/-] size [q]uit"

// Grid size limits of the resize keys.
const (
	MinGridSize = grid.MinDimension
	MaxGridSize = grid.MaxDimension
)

// interrupt payloads
type (
	clearRequest struct{}
	quitRequest  struct{}
	reloadResult struct{ err error }
)

// App is the interactive viewer. All grid state is owned by the goroutine
// running Run; other goroutines talk to it through posted events.
type App struct {
	backend  backend.Backend
	view     *View
	replayer *replay.Replayer
	logger   *logging.Logger

	grid   *grid.Grid
	goals  grid.Goals
	scene  replay.Scene
	cursor grid.Position
	status string

	coord      *coordinator.Coordinator
	initialRun bool
	onResult   func(coordinator.Completion)
}

// AppOption configures an App.
type AppOption func(*App)

// WithReplayer sets the replayer used for results.
func WithReplayer(r *replay.Replayer) AppOption {
	return func(a *App) {
		if r != nil {
			a.replayer = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithInitialRun starts a run as soon as the viewer is up.
func WithInitialRun() AppOption {
	return func(a *App) {
		a.initialRun = true
	}
}

// WithResultHook registers fn to be called on the viewer goroutine after
// each completion has been applied to the grid.
func WithResultHook(fn func(coordinator.Completion)) AppOption {
	return func(a *App) {
		a.onResult = fn
	}
}

// NewApp creates a viewer for g. The goals are normalized against g.
func NewApp(b backend.Backend, g *grid.Grid, goals grid.Goals, opts ...AppOption) *App {
	a := &App{
		backend:  b,
		view:     New(b),
		replayer: replay.New(),
		logger:   logging.Null(),
		grid:     g,
		goals:    goals,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.goals.Normalize(a.grid)
	a.cursor = a.goals.Start
	return a
}

// ClearHook clears the overlays when a run starts. It is meant for
// coordinator.WithClearHook and only posts an event.
func (a *App) ClearHook() {
	a.backend.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: clearRequest{}})
}

// Grid returns the grid being edited. Only safe once Run has returned.
func (a *App) Grid() *grid.Grid {
	return a.grid
}

// Goals returns the markers. Only safe once Run has returned.
func (a *App) Goals() grid.Goals {
	return a.goals
}

// Scene returns the last replayed scene. Only safe once Run has returned.
func (a *App) Scene() replay.Scene {
	return a.scene
}

// Run initializes the backend and processes events until the user quits or
// ctx is cancelled.
func (a *App) Run(ctx context.Context, c *coordinator.Coordinator) error {
	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer a.backend.Shutdown()

	a.coord = c
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.forward(ctx)

	a.status = HelpText
	if a.initialRun {
		a.run()
	}
	a.draw()

	for {
		ev := a.backend.PollEvent()
		if quit := a.handle(ctx, ev); quit {
			return nil
		}
		a.draw()
	}
}

// forward posts every completion, and the cancellation of ctx, to the
// viewer goroutine.
func (a *App) forward(ctx context.Context) {
	for {
		done, err := a.coord.Wait(ctx)
		if err != nil {
			a.backend.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: quitRequest{}})
			return
		}
		a.backend.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: done})
	}
}

func (a *App) handle(ctx context.Context, ev backend.Event) bool {
	switch ev.Type {
	case backend.EventNone:
		// Backend shut down underneath us.
		return true

	case backend.EventInterrupt:
		switch data := ev.Data.(type) {
		case quitRequest:
			return true
		case clearRequest:
			a.replayer.Clear(a.grid)
			a.scene = replay.Scene{}
		case coordinator.Completion:
			a.complete(data)
		case reloadResult:
			if data.err != nil {
				a.status = "reload: " + data.err.Error()
			} else {
				a.status = "reloaded " + filepath.Base(a.coord.Path())
			}
		}

	case backend.EventKey:
		return a.key(ctx, ev)

	case backend.EventMouse:
		p, ok := HitTest(a.grid.Size(), ev.MouseX, ev.MouseY)
		if !ok {
			return false
		}
		switch ev.MouseButton {
		case backend.MouseLeft:
			a.grid.Paint(p, grid.Wall)
		case backend.MouseRight:
			a.grid.Paint(p, grid.Floor)
		case backend.MouseMiddle:
			a.cursor = p
		}
		a.goals.Normalize(a.grid)
	}
	return false
}

func (a *App) key(ctx context.Context, ev backend.Event) bool {
	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		return true
	case backend.KeyEnter:
		a.run()
	case backend.KeyUp:
		a.moveCursor(0, 1)
	case backend.KeyDown:
		a.moveCursor(0, -1)
	case backend.KeyLeft:
		a.moveCursor(-1, 0)
	case backend.KeyRight:
		a.moveCursor(1, 0)
	case backend.KeyRune:
		switch ev.Rune {
		case 'q':
			return true
		case 'r':
			a.run()
		case 'c':
			a.replayer.Clear(a.grid)
			a.scene = replay.Scene{}
			a.status = "cleared"
		case 'l':
			a.status = "reloading " + filepath.Base(a.coord.Path())
			go a.reload(ctx)
		case 'h':
			a.coord.SetHotReload(!a.coord.HotReload())
		case 's':
			a.goals.Start = a.cursor
			a.goals.Normalize(a.grid)
		case 'g':
			a.goals.Goal = a.cursor
			a.goals.Normalize(a.grid)
		case '+':
			a.resize(1)
		case '-':
			a.resize(-1)
		case ' ':
			if a.grid.Passable(a.cursor) {
				a.grid.Paint(a.cursor, grid.Wall)
			} else {
				a.grid.Paint(a.cursor, grid.Floor)
			}
			a.goals.Normalize(a.grid)
		}
	}
	return false
}

// resize grows or shrinks the grid by delta in both dimensions. Overlays
// refer to the old layout and are dropped.
func (a *App) resize(delta int) {
	size := a.grid.Size()
	w := min(max(size.Width+delta, MinGridSize), MaxGridSize)
	h := min(max(size.Height+delta, MinGridSize), MaxGridSize)
	if w == size.Width && h == size.Height {
		return
	}
	a.grid.Resize(w, h)
	a.replayer.Clear(a.grid)
	a.scene = replay.Scene{}
	a.goals.Normalize(a.grid)
	a.cursor = a.grid.Size().Clamp(a.cursor)
	a.status = fmt.Sprintf("grid %dx%d", w, h)
}

// reload runs off the viewer goroutine, since a module's load-time code may
// run until the loader timeout, and posts the outcome back.
func (a *App) reload(ctx context.Context) {
	err := a.coord.Reload(ctx)
	a.backend.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: reloadResult{err: err}})
}

func (a *App) moveCursor(dx, dy int) {
	a.cursor = a.grid.Size().Clamp(grid.Pos(a.cursor.X+dx, a.cursor.Y+dy))
}

func (a *App) run() {
	a.goals.Normalize(a.grid)
	err := a.coord.Run(coordinator.Request{
		Snapshot: a.grid.Snapshot(),
		Start:    a.goals.Start,
		Goal:     a.goals.Goal,
	})
	switch {
	case err == nil:
		a.status = "running " + filepath.Base(a.coord.Path())
	case errors.Is(err, coordinator.ErrBusy):
		a.status = "busy: a run is already in progress"
	default:
		a.status = "run: " + err.Error()
	}
}

func (a *App) complete(done coordinator.Completion) {
	if done.Err != nil {
		a.logger.Warn("run failed: %v", done.Err)
		a.status = "error: " + done.Err.Error()
	} else {
		a.scene = a.replayer.Apply(a.grid, done.Result.Size, done.Result.Actions)
		a.status = fmt.Sprintf("%d actions in %s", len(done.Result.Actions), done.Result.Elapsed.Round(10*time.Microsecond))
		if a.scene.Dropped > 0 {
			a.status += fmt.Sprintf(" (%d dropped)", a.scene.Dropped)
		}
	}
	if a.onResult != nil {
		a.onResult(done)
	}
}

func (a *App) draw() {
	cursor := a.cursor
	hot := "off"
	if a.coord.HotReload() {
		hot = "on"
	}
	a.view.Draw(Frame{
		Grid:   a.grid,
		Goals:  a.goals,
		Scene:  a.scene,
		Cursor: &cursor,
		Status: fmt.Sprintf("%s | %s | hot reload %s | %s", filepath.Base(a.coord.Path()), a.coord.State(), hot, a.status),
	})
}
