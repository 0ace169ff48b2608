package replay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/logging"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
	"github.com/Lacosst0/pathfinding-playground/internal/timeline"
)

func TestApplyDiagonal(t *testing.T) {
	g := grid.New(3, 3)
	r := New(WithCellSize(10))

	scene := r.Apply(g, g.Size(), []timeline.Action{
		timeline.LineAction(contract.Pt(0, 2), contract.Pt(1, 1), contract.OutputColor),
		timeline.ArrowAction(contract.Pt(1, 1), contract.Pt(2, 0), grid.RGB(1, 2, 3)),
	})

	want := []Overlay{
		{
			Kind:  OverlayLine,
			From:  grid.Pos(0, 0),
			To:    grid.Pos(1, 1),
			Start: Vec{5, 5},
			End:   Vec{15, 15},
			Color: contract.OutputColor,
		},
		{
			Kind:  OverlayArrow,
			From:  grid.Pos(1, 1),
			To:    grid.Pos(2, 2),
			Start: Vec{15, 15},
			End:   Vec{25, 25},
			Color: grid.RGB(1, 2, 3),
		},
	}
	if diff := cmp.Diff(want, scene.Overlays); diff != "" {
		t.Errorf("overlays mismatch (-want +got):\n%s", diff)
	}
	if scene.Dropped != 0 || scene.Tiles != 0 {
		t.Errorf("Dropped, Tiles = %d, %d, want 0, 0", scene.Dropped, scene.Tiles)
	}
}

func TestApplyTileTint(t *testing.T) {
	g := grid.New(2, 2)
	r := New(WithTint(0))

	// Module row 0 is the top row, host y = 1.
	scene := r.Apply(g, g.Size(), []timeline.Action{
		timeline.TileAction(contract.Pt(1, 0), grid.RGB(200, 0, 0)),
	})
	if scene.Tiles != 1 {
		t.Fatalf("Tiles = %d, want 1", scene.Tiles)
	}

	tile, _ := g.Tile(grid.Pos(1, 1))
	if tile.Color != grid.RGB(200, 0, 0) {
		t.Errorf("tile colour = %v, want %v", tile.Color, grid.RGB(200, 0, 0))
	}
	other, _ := g.Tile(grid.Pos(1, 0))
	if other.Color != grid.DefaultColor {
		t.Errorf("untouched tile colour = %v, want default", other.Color)
	}

	lightened := New()
	lightened.Apply(g, g.Size(), []timeline.Action{
		timeline.TileAction(contract.Pt(0, 0), grid.RGB(100, 0, 0)),
	})
	tile, _ = g.Tile(grid.Pos(0, 1))
	if tile.Color == grid.RGB(100, 0, 0) || tile.Color.R < 100 {
		t.Errorf("tinted colour = %v, want slightly lighter than #640000", tile.Color)
	}
}

func TestApplyClearsPreviousTimeline(t *testing.T) {
	g := grid.New(2, 2)
	r := New()

	r.Apply(g, g.Size(), []timeline.Action{timeline.TileAction(contract.Pt(0, 0), grid.RGB(0, 0, 0))})
	r.Apply(g, grid.Size{}, nil)

	tile, _ := g.Tile(grid.Pos(0, 1))
	if tile.Color != grid.DefaultColor {
		t.Errorf("tile colour after empty replay = %v, want default", tile.Color)
	}
}

func TestApplyDropsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	g := grid.New(2, 2)
	r := New(WithLogger(logging.New(logging.Config{Level: logging.LevelWarn, Output: &buf})))

	scene := r.Apply(g, g.Size(), []timeline.Action{
		timeline.TileAction(contract.Pt(2, 0), grid.RGB(1, 1, 1)),
		timeline.LineAction(contract.Pt(0, 0), contract.Pt(0, 5), grid.RGB(1, 1, 1)),
		timeline.ArrowAction(contract.Pt(9, 9), contract.Pt(0, 0), grid.RGB(1, 1, 1)),
		timeline.TileAction(contract.Pt(1, 1), grid.RGB(1, 1, 1)),
	})

	if scene.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", scene.Dropped)
	}
	if scene.Tiles != 1 || len(scene.Overlays) != 0 {
		t.Errorf("Tiles, Overlays = %d, %d, want 1, 0", scene.Tiles, len(scene.Overlays))
	}
	if !strings.Contains(buf.String(), "dropped 3 of 4") {
		t.Errorf("log = %q, want a dropped summary", buf.String())
	}
}

// Points are flipped against the snapshot the module saw even when the grid
// was resized while it ran.
func TestApplyAfterResize(t *testing.T) {
	g := grid.New(3, 3)
	recorded := g.Size()
	g.Resize(4, 4)
	r := New(WithTint(0))

	scene := r.Apply(g, recorded, []timeline.Action{
		timeline.TileAction(contract.Pt(0, 0), grid.RGB(255, 5, 5)),
		timeline.LineAction(contract.Pt(0, 2), contract.Pt(2, 0), grid.RGB(1, 1, 1)),
	})
	if scene.Dropped != 0 {
		t.Fatalf("Dropped = %d, want 0", scene.Dropped)
	}

	tile, _ := g.Tile(grid.Pos(0, 2))
	if tile.Color != grid.RGB(255, 5, 5) {
		t.Errorf("tile (0, 2) colour = %v, want #ff0505", tile.Color)
	}
	above, _ := g.Tile(grid.Pos(0, 3))
	if above.Color != grid.DefaultColor {
		t.Errorf("tile (0, 3) colour = %v, want default", above.Color)
	}
	if o := scene.Overlays[0]; o.From != grid.Pos(0, 0) || o.To != grid.Pos(2, 2) {
		t.Errorf("overlay = %v -> %v, want (0, 0) -> (2, 2)", o.From, o.To)
	}

	shrunk := grid.New(2, 2)
	scene = r.Apply(shrunk, recorded, []timeline.Action{
		timeline.TileAction(contract.Pt(0, 0), grid.RGB(1, 1, 1)),
		timeline.TileAction(contract.Pt(0, 2), grid.RGB(1, 1, 1)),
	})
	if scene.Dropped != 1 || scene.Tiles != 1 {
		t.Errorf("Dropped, Tiles = %d, %d, want 1, 1", scene.Dropped, scene.Tiles)
	}
}

func TestCentre(t *testing.T) {
	r := New()
	got := r.Centre(grid.Pos(2, 1))
	want := Vec{X: 2*DefaultCellSize + DefaultCellSize/2, Y: DefaultCellSize + DefaultCellSize/2}
	if got != want {
		t.Errorf("Centre() = %v, want %v", got, want)
	}
}
