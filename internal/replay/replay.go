// Package replay applies a recorded timeline to the host grid.
//
// Tile actions recolour cells in place. Line and arrow actions become
// overlays positioned at cell centres in display space (y up, origin at the
// bottom-left corner of the grid). Actions that point outside the grid are
// dropped and counted.
package replay

import (
	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/logging"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
	"github.com/Lacosst0/pathfinding-playground/internal/timeline"
)

// Defaults.
const (
	DefaultCellSize = 32.0
	DefaultTint     = 0.01
)

// OverlayKind distinguishes overlay shapes.
type OverlayKind int

const (
	OverlayLine OverlayKind = iota
	OverlayArrow
)

// String returns the kind name.
func (k OverlayKind) String() string {
	switch k {
	case OverlayLine:
		return "line"
	case OverlayArrow:
		return "arrow"
	default:
		return "unknown"
	}
}

// Vec is a point in display space.
type Vec struct {
	X, Y float64
}

// Overlay is a line or arrow drawn over the grid.
type Overlay struct {
	Kind OverlayKind

	// From and To are the grid cells the shape connects.
	From, To grid.Position

	// Start and End are the cell centres in display space.
	Start, End Vec

	Color grid.Color
}

// Scene is the result of replaying one timeline.
type Scene struct {
	Overlays []Overlay
	Tiles    int
	Dropped  int
}

// Replayer applies timelines to a grid.
type Replayer struct {
	cellSize float64
	tint     float64
	logger   *logging.Logger
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithCellSize sets the display size of one cell.
func WithCellSize(size float64) Option {
	return func(r *Replayer) {
		if size > 0 {
			r.cellSize = size
		}
	}
}

// WithTint sets how much tile colours are lightened, 0..1.
func WithTint(amount float64) Option {
	return func(r *Replayer) {
		if amount >= 0 {
			r.tint = amount
		}
	}
}

// WithLogger sets the logger used to report dropped actions.
func WithLogger(l *logging.Logger) Option {
	return func(r *Replayer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a replayer.
func New(opts ...Option) *Replayer {
	r := &Replayer{
		cellSize: DefaultCellSize,
		tint:     DefaultTint,
		logger:   logging.Null(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CellSize returns the display size of one cell.
func (r *Replayer) CellSize() float64 {
	return r.cellSize
}

// Centre returns the display position of the centre of cell p.
func (r *Replayer) Centre(p grid.Position) Vec {
	return Vec{
		X: float64(p.X)*r.cellSize + r.cellSize/2,
		Y: float64(p.Y)*r.cellSize + r.cellSize/2,
	}
}

// Clear resets every tile colour. Overlays belong to the previous Scene and
// are discarded with it.
func (r *Replayer) Clear(g *grid.Grid) {
	g.ResetColors()
}

// Apply clears g and replays actions onto it in order. recorded is the size
// of the snapshot the module saw; module points are flipped against it and
// then checked against g, which may have been resized since. A zero recorded
// size means g's own.
func (r *Replayer) Apply(g *grid.Grid, recorded grid.Size, actions []timeline.Action) Scene {
	r.Clear(g)

	if recorded.Width <= 0 || recorded.Height <= 0 {
		recorded = g.Size()
	}
	scene := Scene{}
	for _, a := range actions {
		if !r.apply(g, recorded, a, &scene) {
			scene.Dropped++
			r.logger.Debug("dropped %s outside %dx%d grid", a, g.Width(), g.Height())
		}
	}

	if scene.Dropped > 0 {
		r.logger.Warn("dropped %d of %d actions outside the grid", scene.Dropped, len(actions))
	}
	return scene
}

func (r *Replayer) apply(g *grid.Grid, recorded grid.Size, a timeline.Action, scene *Scene) bool {
	from, ok := r.position(g, recorded, a.Start)
	if !ok {
		return false
	}

	switch a.Kind {
	case timeline.KindTile:
		if err := g.SetColor(from, a.Color.Lighter(r.tint)); err != nil {
			return false
		}
		scene.Tiles++
		return true

	case timeline.KindLine, timeline.KindArrow:
		to, ok := r.position(g, recorded, a.End)
		if !ok {
			return false
		}
		kind := OverlayLine
		if a.Kind == timeline.KindArrow {
			kind = OverlayArrow
		}
		scene.Overlays = append(scene.Overlays, Overlay{
			Kind:  kind,
			From:  from,
			To:    to,
			Start: r.Centre(from),
			End:   r.Centre(to),
			Color: a.Color,
		})
		return true

	default:
		return false
	}
}

// position maps p through the recorded layout onto g.
func (r *Replayer) position(g *grid.Grid, recorded grid.Size, p contract.Point) (grid.Position, bool) {
	pos, ok := contract.ToPosition(recorded, p)
	if !ok || !g.Size().Contains(pos) {
		return grid.Position{}, false
	}
	return pos, true
}
