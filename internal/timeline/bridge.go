package timeline

import (
	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
)

// Bridge implements contract.Host by appending every call to a Recorder.
type Bridge struct {
	rec *Recorder
}

// NewBridge creates a bridge writing into rec.
func NewBridge(rec *Recorder) *Bridge {
	return &Bridge{rec: rec}
}

// Recorder returns the recorder the bridge writes into.
func (b *Bridge) Recorder() *Recorder {
	return b.rec
}

// Tile records a tile action.
func (b *Bridge) Tile(pos contract.Point, c grid.Color) {
	b.rec.Append(TileAction(pos, c))
}

// Line records a line action.
func (b *Bridge) Line(start, end contract.Point, c grid.Color) {
	b.rec.Append(LineAction(start, end, c))
}

// Arrow records an arrow action.
func (b *Bridge) Arrow(start, end contract.Point, c grid.Color) {
	b.rec.Append(ArrowAction(start, end, c))
}

// Output records one line in contract.OutputColor per consecutive pair of
// path points. It always accepts the path.
func (b *Bridge) Output(path []contract.Point) bool {
	for i := 1; i < len(path); i++ {
		b.Line(path[i-1], path[i], contract.OutputColor)
	}
	return true
}

var _ contract.Host = (*Bridge)(nil)
