package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/backend"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/core"
	"github.com/Lacosst0/pathfinding-playground/internal/replay"
)

func TestLine(t *testing.T) {
	tests := []struct {
		name string
		a, b grid.Position
		want []grid.Position
	}{
		{"point", grid.Pos(1, 1), grid.Pos(1, 1), []grid.Position{grid.Pos(1, 1)}},
		{"horizontal", grid.Pos(0, 0), grid.Pos(3, 0), []grid.Position{grid.Pos(0, 0), grid.Pos(1, 0), grid.Pos(2, 0), grid.Pos(3, 0)}},
		{"vertical down", grid.Pos(0, 2), grid.Pos(0, 0), []grid.Position{grid.Pos(0, 2), grid.Pos(0, 1), grid.Pos(0, 0)}},
		{"diagonal", grid.Pos(2, 2), grid.Pos(0, 0), []grid.Position{grid.Pos(2, 2), grid.Pos(1, 1), grid.Pos(0, 0)}},
		{"shallow", grid.Pos(0, 0), grid.Pos(2, 1), []grid.Position{grid.Pos(0, 0), grid.Pos(1, 1), grid.Pos(2, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Line(tt.a, tt.b)); diff != "" {
				t.Errorf("Line() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArrowHead(t *testing.T) {
	tests := []struct {
		to   grid.Position
		want rune
	}{
		{grid.Pos(2, 1), '→'},
		{grid.Pos(0, 1), '←'},
		{grid.Pos(1, 2), '↑'},
		{grid.Pos(1, 0), '↓'},
		{grid.Pos(3, 3), '↗'},
		{grid.Pos(0, 0), '↙'},
		{grid.Pos(1, 1), GlyphPoint},
	}

	for _, tt := range tests {
		if got := ArrowHead(grid.Pos(1, 1), tt.to); got != tt.want {
			t.Errorf("ArrowHead((1, 1), %v) = %q, want %q", tt.to, got, tt.want)
		}
	}
}

func TestHitTest(t *testing.T) {
	size := grid.Size{Width: 3, Height: 3}

	if x, y := ScreenPos(size, grid.Pos(0, 0)); x != 0 || y != 2 {
		t.Errorf("ScreenPos((0, 0)) = (%d, %d), want (0, 2)", x, y)
	}

	tests := []struct {
		x, y int
		want grid.Position
		ok   bool
	}{
		{0, 2, grid.Pos(0, 0), true},
		{1, 2, grid.Pos(0, 0), true},
		{5, 0, grid.Pos(2, 2), true},
		{6, 0, grid.Position{}, false},
		{0, 3, grid.Position{}, false},
	}
	for _, tt := range tests {
		got, ok := HitTest(size, tt.x, tt.y)
		if got != tt.want || ok != tt.ok {
			t.Errorf("HitTest(%d, %d) = %v, %v, want %v, %v", tt.x, tt.y, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDraw(t *testing.T) {
	b := backend.NewNullBackend(10, 4)
	b.Init()

	g := grid.New(3, 3)
	_ = g.SetType(grid.Pos(1, 1), grid.Wall)
	red := grid.RGB(255, 0, 0)

	New(b).Draw(Frame{
		Grid:  g,
		Goals: grid.DefaultGoals(g.Size()),
		Scene: replay.Scene{Overlays: []replay.Overlay{
			{Kind: replay.OverlayLine, From: grid.Pos(0, 1), To: grid.Pos(2, 1), Color: red},
			{Kind: replay.OverlayArrow, From: grid.Pos(1, 0), To: grid.Pos(2, 0), Color: red},
		}},
		Status: "hello",
	})

	want := []string{
		"    G     ",
		"• • •     ",
		"S • →     ",
		"hello     ",
	}
	for y, line := range want {
		if got := b.Text(y); got != line {
			t.Errorf("row %d = %q, want %q", y, got, line)
		}
	}

	if got := b.GetCell(3, 1).Style.Background; got != core.ColorWall {
		t.Errorf("wall background = %v, want %v", got, core.ColorWall)
	}
	if got := b.GetCell(2, 1).Style.Foreground; got != core.ColorFromGrid(red) {
		t.Errorf("overlay foreground = %v, want %v", got, core.ColorFromGrid(red))
	}
	if got := b.GetCell(0, 0).Style.Background; got != core.ColorFromGrid(grid.DefaultColor) {
		t.Errorf("floor background = %v, want white", got)
	}
	if b.Shows() != 1 {
		t.Errorf("Shows() = %d, want 1", b.Shows())
	}
}

func TestDrawCursorAndTint(t *testing.T) {
	b := backend.NewNullBackend(6, 3)
	b.Init()

	g := grid.New(3, 2)
	blue := grid.RGB(0, 0, 255)
	_ = g.SetColor(grid.Pos(1, 1), blue)
	cursor := grid.Pos(1, 1)

	New(b).Draw(Frame{Grid: g, Goals: grid.DefaultGoals(g.Size()), Cursor: &cursor})

	if got := b.GetCell(2, 0).Style.Background; got != core.ColorFromGrid(blue) {
		t.Errorf("tinted background = %v, want %v", got, core.ColorFromGrid(blue))
	}
	cell := b.GetCell(3, 0)
	if cell.Rune != '▏' {
		t.Errorf("cursor rune = %q, want '▏'", cell.Rune)
	}
	if cell.Style.Foreground != core.ColorWhite {
		t.Errorf("cursor foreground = %v, want white on blue", cell.Style.Foreground)
	}
}
