package grid

import "fmt"

// Position is a cell position in host coordinates (bottom-left origin, y up).
type Position struct {
	X int
	Y int
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// String returns "(x, y)".
func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Size holds grid dimensions.
type Size struct {
	Width  int
	Height int
}

// Contains reports whether p lies inside the grid.
func (s Size) Contains(p Position) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// Clamp moves p onto the nearest valid cell. Coordinates are clamped per axis,
// never wrapped. Clamping an empty size yields the origin.
func (s Size) Clamp(p Position) Position {
	return Position{
		X: clampInt(p.X, 0, s.Width-1),
		Y: clampInt(p.Y, 0, s.Height-1),
	}
}

// ToArray converts a host position to array coordinates (row 0 = top).
func (s Size) ToArray(p Position) (row, col int) {
	return s.Height - 1 - p.Y, p.X
}

// FromArray converts array coordinates back to a host position.
func (s Size) FromArray(row, col int) Position {
	return Position{X: col, Y: s.Height - 1 - row}
}

// TileIndex returns the flat, row-major array index of p. Out of range
// positions are clamped first, matching interactive placement.
func (s Size) TileIndex(p Position) int {
	p = s.Clamp(p)
	row, col := s.ToArray(p)
	return row*s.Width + col
}

// FromIndex reconstructs the host position of a flat array index.
func (s Size) FromIndex(i int) Position {
	if s.Width <= 0 {
		return Position{}
	}
	return s.FromArray(i/s.Width, i%s.Width)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
