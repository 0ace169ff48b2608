// Package timeline records the drawing calls a module makes during one
// invocation so the host can replay them after the call returns.
package timeline

import (
	"fmt"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
)

// Kind identifies the variant of an Action.
type Kind int

const (
	// KindTile tints one cell.
	KindTile Kind = iota
	// KindLine draws a segment between two cells.
	KindLine
	// KindArrow draws a directed segment between two cells.
	KindArrow
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTile:
		return "tile"
	case KindLine:
		return "line"
	case KindArrow:
		return "arrow"
	default:
		return "unknown"
	}
}

// Action is one recorded drawing call, in module coordinates. For KindTile
// only Start is meaningful.
type Action struct {
	Kind  Kind
	Start contract.Point
	End   contract.Point
	Color grid.Color
}

// TileAction creates a tile action.
func TileAction(pos contract.Point, c grid.Color) Action {
	return Action{Kind: KindTile, Start: pos, Color: c}
}

// LineAction creates a line action.
func LineAction(start, end contract.Point, c grid.Color) Action {
	return Action{Kind: KindLine, Start: start, End: end, Color: c}
}

// ArrowAction creates an arrow action.
func ArrowAction(start, end contract.Point, c grid.Color) Action {
	return Action{Kind: KindArrow, Start: start, End: end, Color: c}
}

// String returns a compact description.
func (a Action) String() string {
	if a.Kind == KindTile {
		return fmt.Sprintf("tile %s %s", a.Start, a.Color.Hex())
	}
	return fmt.Sprintf("%s %s->%s %s", a.Kind, a.Start, a.End, a.Color.Hex())
}
