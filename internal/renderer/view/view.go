package view

import (
	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/backend"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/core"
	"github.com/Lacosst0/pathfinding-playground/internal/replay"
)

// CellWidth is the number of screen columns per grid cell. Terminal cells
// are roughly twice as tall as wide.
const CellWidth = 2

// Glyphs used on the grid.
const (
	GlyphStart = 'S'
	GlyphGoal  = 'G'
	GlyphPath  = '•'
	GlyphPoint = '◆'
)

// Frame is everything one redraw needs.
type Frame struct {
	Grid   *grid.Grid
	Goals  grid.Goals
	Scene  replay.Scene
	Cursor *grid.Position
	Status string
}

// View renders frames on a backend.
type View struct {
	backend backend.Backend
}

// New creates a view drawing on b.
func New(b backend.Backend) *View {
	return &View{backend: b}
}

// GridRect returns the screen area covered by a grid of size s.
func GridRect(s grid.Size) core.ScreenRect {
	return core.RectFromSize(0, 0, s.Height, s.Width*CellWidth)
}

// ScreenPos returns the screen position of the left column of cell p.
func ScreenPos(s grid.Size, p grid.Position) (x, y int) {
	return p.X * CellWidth, s.Height - 1 - p.Y
}

// HitTest maps a screen position to the grid cell under it.
func HitTest(s grid.Size, x, y int) (grid.Position, bool) {
	if !GridRect(s).Contains(x, y) {
		return grid.Position{}, false
	}
	return grid.Pos(x/CellWidth, s.Height-1-y), true
}

// Draw renders f and flushes it to the display.
func (v *View) Draw(f Frame) {
	v.backend.Clear()

	size := f.Grid.Size()
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			p := grid.Pos(x, y)
			v.fillCell(size, p, core.NewStyledCell(' ', tileStyle(f.Grid, p)))
		}
	}

	for _, o := range f.Scene.Overlays {
		v.drawOverlay(f.Grid, o)
	}

	v.drawMarker(f.Grid, f.Goals.Start, GlyphStart, core.ColorStart)
	v.drawMarker(f.Grid, f.Goals.Goal, GlyphGoal, core.ColorGoal)

	if f.Cursor != nil && size.Contains(*f.Cursor) {
		x, y := ScreenPos(size, *f.Cursor)
		cell := v.backend.GetCell(x+1, y)
		cell.Rune = '▏'
		cell.Style = cell.Style.WithForeground(cell.Style.Background.Contrast())
		v.backend.SetCell(x+1, y, cell)
	}

	v.drawStatus(size.Height, f.Status)
	v.backend.Show()
}

func (v *View) fillCell(s grid.Size, p grid.Position, cell core.Cell) {
	x, y := ScreenPos(s, p)
	v.backend.Fill(core.RectFromSize(y, x, 1, CellWidth), cell)
}

// drawGlyph writes r into the left column of p, keeping the tile background.
func (v *View) drawGlyph(g *grid.Grid, p grid.Position, r rune, fg core.Color, bold bool) {
	style := tileStyle(g, p).WithForeground(fg)
	if bold {
		style = style.Bold()
	}
	x, y := ScreenPos(g.Size(), p)
	v.backend.SetCell(x, y, core.NewStyledCell(r, style))
}

func (v *View) drawOverlay(g *grid.Grid, o replay.Overlay) {
	fg := core.ColorFromGrid(o.Color)
	cells := Line(o.From, o.To)
	for _, p := range cells {
		v.drawGlyph(g, p, GlyphPath, fg, false)
	}
	if o.Kind == replay.OverlayArrow {
		v.drawGlyph(g, o.To, ArrowHead(o.From, o.To), fg, true)
	}
}

func (v *View) drawMarker(g *grid.Grid, p grid.Position, r rune, fg core.Color) {
	if !g.Size().Contains(p) {
		return
	}
	v.drawGlyph(g, p, r, fg, true)
}

func (v *View) drawStatus(row int, text string) {
	width, _ := v.backend.Size()
	style := core.DefaultStyle().WithForeground(core.ColorWhite).WithBackground(core.ColorWall)
	v.backend.Fill(core.RectFromSize(row, 0, 1, width), core.NewStyledCell(' ', style))

	x := 0
	for _, r := range text {
		if x >= width {
			break
		}
		v.backend.SetCell(x, row, core.NewStyledCell(r, style))
		x++
	}
}

func tileStyle(g *grid.Grid, p grid.Position) core.Style {
	tile, ok := g.Tile(p)
	if !ok {
		return core.DefaultStyle()
	}
	bg := core.ColorFromGrid(tile.Color)
	if tile.Type == grid.Wall {
		bg = core.ColorWall
	}
	return core.DefaultStyle().WithBackground(bg).WithForeground(bg.Contrast())
}

// Line returns the cells of the segment from a to b, both included, using
// Bresenham's algorithm.
func Line(a, b grid.Position) []grid.Position {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	e := dx + dy

	cells := make([]grid.Position, 0, max(dx, -dy)+1)
	p := a
	for {
		cells = append(cells, p)
		if p == b {
			return cells
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			p.X += sx
		}
		if e2 <= dx {
			e += dx
			p.Y += sy
		}
	}
}

// ArrowHead returns the glyph pointing from a towards b. Positions are host
// coordinates, so positive y points up the screen.
func ArrowHead(a, b grid.Position) rune {
	heads := [3][3]rune{
		// dy = -1, 0, +1 for each dx = -1, 0, +1
		{'↙', '←', '↖'},
		{'↓', GlyphPoint, '↑'},
		{'↘', '→', '↗'},
	}
	return heads[sign(b.X-a.X)+1][sign(b.Y-a.Y)+1]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
