package grid

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Dimension limits of a usable grid.
const (
	MinDimension = 2
	MaxDimension = 512
)

// TileType classifies a cell as walkable or not.
type TileType int

const (
	// Floor cells are passable.
	Floor TileType = iota
	// Wall cells block movement.
	Wall
)

// String returns the tile type name.
func (t TileType) String() string {
	switch t {
	case Floor:
		return "floor"
	case Wall:
		return "wall"
	default:
		return "unknown"
	}
}

// Color is an RGB colour without alpha. It is passed by value across the
// module boundary.
type Color struct {
	R, G, B uint8
}

// RGB creates a colour from its channels.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// DefaultColor is the neutral tint of an untouched tile.
var DefaultColor = Color{R: 255, G: 255, B: 255}

// ParseColor parses "#rrggbb".
func ParseColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex returns the colour as "#rrggbb".
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// Lighter returns the colour with its HSL lightness raised by amount (0..1).
func (c Color) Lighter(amount float64) Color {
	h, s, l := c.colorful().Hsl()
	l += amount
	if l > 1 {
		l = 1
	}
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Tile is a single grid cell.
type Tile struct {
	Type  TileType
	Color Color
}

// DefaultTile returns a floor tile with the neutral colour.
func DefaultTile() Tile {
	return Tile{Type: Floor, Color: DefaultColor}
}

// Grid is the host-owned tile map. Rows are indexed by y in host coordinates,
// so rows[0] is the bottom row. Grid is not safe for concurrent use; the host
// loop owns it and only snapshots cross into modules.
type Grid struct {
	size Size
	rows [][]Tile
}

// New creates a width x height grid of default tiles. Negative dimensions are
// treated as zero.
func New(width, height int) *Grid {
	g := &Grid{size: Size{Width: max(width, 0), Height: max(height, 0)}}
	g.rows = makeRows(g.size)
	return g
}

func makeRows(s Size) [][]Tile {
	rows := make([][]Tile, s.Height)
	for y := range rows {
		rows[y] = make([]Tile, s.Width)
		for x := range rows[y] {
			rows[y][x] = DefaultTile()
		}
	}
	return rows
}

// Size returns the grid dimensions.
func (g *Grid) Size() Size {
	return g.size
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.size.Width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.size.Height
}

// Tile returns the tile at p.
func (g *Grid) Tile(p Position) (Tile, bool) {
	if !g.size.Contains(p) {
		return Tile{}, false
	}
	return g.rows[p.Y][p.X], true
}

// Set replaces the tile at p.
func (g *Grid) Set(p Position, t Tile) error {
	if !g.size.Contains(p) {
		return fmt.Errorf("set tile %s: %w", p, ErrOutOfBounds)
	}
	g.rows[p.Y][p.X] = t
	return nil
}

// SetType changes the type of the tile at p, keeping its colour.
func (g *Grid) SetType(p Position, typ TileType) error {
	if !g.size.Contains(p) {
		return fmt.Errorf("set type %s: %w", p, ErrOutOfBounds)
	}
	g.rows[p.Y][p.X].Type = typ
	return nil
}

// SetColor changes the colour of the tile at p, keeping its type.
func (g *Grid) SetColor(p Position, c Color) error {
	if !g.size.Contains(p) {
		return fmt.Errorf("set color %s: %w", p, ErrOutOfBounds)
	}
	g.rows[p.Y][p.X].Color = c
	return nil
}

// Paint sets the type of the tile nearest to p. Interactive placement uses it,
// so out of range positions are clamped instead of rejected.
func (g *Grid) Paint(p Position, typ TileType) {
	if g.size.Width == 0 || g.size.Height == 0 {
		return
	}
	p = g.size.Clamp(p)
	g.rows[p.Y][p.X].Type = typ
}

// Passable reports whether p is inside the grid and not a wall.
func (g *Grid) Passable(p Position) bool {
	t, ok := g.Tile(p)
	return ok && t.Type == Floor
}

// ResetColors restores the neutral colour on every tile.
func (g *Grid) ResetColors() {
	for y := range g.rows {
		for x := range g.rows[y] {
			g.rows[y][x].Color = DefaultColor
		}
	}
}

// Resize changes the grid dimensions. Cells with x < min(old, new) width and
// y < min(old, new) height are kept; new cells take the default tile; the rest
// are discarded.
func (g *Grid) Resize(width, height int) {
	next := Size{Width: max(width, 0), Height: max(height, 0)}
	if next == g.size {
		return
	}

	rows := makeRows(next)
	for y := 0; y < min(g.size.Height, next.Height); y++ {
		copy(rows[y][:min(g.size.Width, next.Width)], g.rows[y])
	}

	g.size = next
	g.rows = rows
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{size: g.size, rows: make([][]Tile, len(g.rows))}
	for y := range g.rows {
		c.rows[y] = append([]Tile(nil), g.rows[y]...)
	}
	return c
}

// Snapshot projects the grid into the boolean, array-ordered form handed to
// modules: Floor becomes true, anything else false, and the top row comes first.
func (g *Grid) Snapshot() Snapshot {
	snap := make(Snapshot, g.size.Height)
	for row := range snap {
		cells := make([]bool, g.size.Width)
		src := g.rows[g.size.Height-1-row]
		for col := range cells {
			cells[col] = src[col].Type == Floor
		}
		snap[row] = cells
	}
	return snap
}
