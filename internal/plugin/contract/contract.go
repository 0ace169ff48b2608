// Package contract defines the fixed interface between the host and a
// pathfinding module, independent of how the module was compiled.
//
// A module exports a single entry point:
//
//	run(grid, start, goal)
//
// where grid is the passability snapshot in array coordinates (row 0 = top)
// and start/goal are array coordinates. The call has no result; a module
// reports everything through the Host capability it is given.
package contract

import (
	"context"
	"fmt"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
)

// Entry point and ABI names shared by every engine.
const (
	// EntryPoint is the function every module must export.
	EntryPoint = "run"

	// HostModule is the import namespace of the host callbacks.
	HostModule = "host"

	FuncTile   = "tile"
	FuncLine   = "line"
	FuncArrow  = "arrow"
	FuncOutput = "output"
)

// OutputColor is the colour of the lines recorded by Host.Output.
var OutputColor = grid.RGB(0, 200, 0)

// Point is a position in module (array) coordinates.
type Point struct {
	X uint32
	Y uint32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y uint32) Point {
	return Point{X: x, Y: y}
}

// String returns "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// ToPoint converts a host position into module coordinates for a grid of the
// given size. The position must already be in bounds.
func ToPoint(s grid.Size, p grid.Position) Point {
	row, col := s.ToArray(p)
	return Point{X: uint32(col), Y: uint32(row)}
}

// ToPosition converts a module point back into host coordinates. The boolean
// is false when the point lies outside the grid.
func ToPosition(s grid.Size, p Point) (grid.Position, bool) {
	if int64(p.X) >= int64(s.Width) || int64(p.Y) >= int64(s.Height) {
		return grid.Position{}, false
	}
	return s.FromArray(int(p.Y), int(p.X)), true
}

// Host is the capability object handed to a module for one invocation. Its
// methods may be called any number of times, in any order, while the entry
// point runs.
type Host interface {
	// Tile records a per-tile colour overlay.
	Tile(pos Point, color grid.Color)

	// Line records a line segment overlay.
	Line(start, end Point, color grid.Color)

	// Arrow records a directed arrow overlay.
	Arrow(start, end Point, color grid.Color)

	// Output records a line between every consecutive pair of path points
	// and reports whether the host accepted the path.
	Output(path []Point) bool
}

// Engine compiles module bytes for one execution substrate.
type Engine interface {
	// Name identifies the substrate in logs and errors.
	Name() string

	// Accepts reports whether the engine understands the file.
	Accepts(path string, src []byte) bool

	// Instantiate compiles src, links it against host and returns a ready
	// instance. Failures are *LoadError values.
	Instantiate(ctx context.Context, path string, src []byte, host Host) (Instance, error)
}

// Instance is a compiled, linked module bound to one Host.
//
// Implementations are not required to be safe for concurrent use; the
// sandbox serializes calls.
type Instance interface {
	// Run calls the entry point once. snapshot is already validated and in
	// array order; start and goal are in bounds. A trap is returned as a
	// *RuntimeError.
	Run(ctx context.Context, snapshot grid.Snapshot, start, goal Point) error

	// Close releases the instance.
	Close(ctx context.Context) error
}
