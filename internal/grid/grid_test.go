package grid

import (
	"errors"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	g := New(4, 3)

	if g.Width() != 4 || g.Height() != 3 {
		t.Fatalf("Size() = %v, want 4x3", g.Size())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			tile, ok := g.Tile(Pos(x, y))
			if !ok {
				t.Fatalf("Tile(%d, %d) not found", x, y)
			}
			if tile != DefaultTile() {
				t.Errorf("Tile(%d, %d) = %+v, want default", x, y, tile)
			}
		}
	}
}

func TestSetOutOfBounds(t *testing.T) {
	g := New(2, 2)

	if err := g.SetType(Pos(2, 0), Wall); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetType() error = %v, want ErrOutOfBounds", err)
	}
	if err := g.SetColor(Pos(0, -1), DefaultColor); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetColor() error = %v, want ErrOutOfBounds", err)
	}
	if _, ok := g.Tile(Pos(-1, 0)); ok {
		t.Error("Tile(-1, 0) should not be found")
	}
}

func TestPaintClamps(t *testing.T) {
	g := New(3, 3)

	g.Paint(Pos(10, -4), Wall)

	if g.Passable(Pos(2, 0)) {
		t.Error("Paint() should clamp (10, -4) onto (2, 0)")
	}
}

func TestSnapshotFlipsRows(t *testing.T) {
	g := New(3, 2)
	_ = g.SetType(Pos(0, 0), Wall) // bottom-left
	_ = g.SetType(Pos(2, 1), Wall) // top-right

	snap := g.Snapshot()

	want := Snapshot{
		{true, true, false},
		{false, true, true},
	}
	for row := range want {
		for col := range want[row] {
			if snap[row][col] != want[row][col] {
				t.Errorf("snapshot[%d][%d] = %v, want %v", row, col, snap[row][col], want[row][col])
			}
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	sizes := []Size{{2, 2}, {3, 5}, {7, 4}, {15, 10}}

	for _, size := range sizes {
		g := New(size.Width, size.Height)
		// Deterministic wall pattern.
		for y := 0; y < size.Height; y++ {
			for x := 0; x < size.Width; x++ {
				if (x*7+y*3)%4 == 0 {
					_ = g.SetType(Pos(x, y), Wall)
				}
			}
		}

		snap := g.Snapshot()
		if err := snap.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}

		back, err := FromSnapshot(snap)
		if err != nil {
			t.Fatalf("FromSnapshot() error = %v", err)
		}

		for y := 0; y < size.Height; y++ {
			for x := 0; x < size.Width; x++ {
				p := Pos(x, y)
				if snap.Passable(p) != g.Passable(p) {
					t.Errorf("%v: snapshot.Passable(%v) = %v, want %v", size, p, snap.Passable(p), g.Passable(p))
				}
				if back.Passable(p) != g.Passable(p) {
					t.Errorf("%v: rebuilt.Passable(%v) = %v, want %v", size, p, back.Passable(p), g.Passable(p))
				}
				row, col := size.ToArray(p)
				if got := size.FromArray(row, col); got != p {
					t.Errorf("FromArray(ToArray(%v)) = %v", p, got)
				}
				if got := size.FromIndex(size.TileIndex(p)); got != p {
					t.Errorf("FromIndex(TileIndex(%v)) = %v", p, got)
				}
			}
		}
	}
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want error
	}{
		{"nil", nil, ErrEmptySnapshot},
		{"empty row", Snapshot{{}}, ErrEmptySnapshot},
		{"ragged", Snapshot{{true, true}, {true}}, ErrRaggedSnapshot},
		{"ok", Snapshot{{true, false}, {false, true}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSnapshotBytes(t *testing.T) {
	snap := Snapshot{
		{true, false, true},
		{false, false, true},
	}

	got := snap.Bytes()
	want := []byte{1, 0, 1, 0, 0, 1}
	if string(got) != string(want) {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
}

func TestTileIndex(t *testing.T) {
	size := Size{Width: 4, Height: 3}

	tests := []struct {
		pos  Position
		want int
	}{
		{Pos(0, 2), 0},
		{Pos(3, 2), 3},
		{Pos(0, 0), 8},
		{Pos(3, 0), 11},
		{Pos(9, 9), 3},
		{Pos(-1, -1), 8},
	}

	for _, tt := range tests {
		if got := size.TileIndex(tt.pos); got != tt.want {
			t.Errorf("TileIndex(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	sizes := []Size{{2, 2}, {3, 3}, {5, 2}, {2, 6}, {8, 8}}

	for _, from := range sizes {
		for _, to := range sizes {
			g := New(from.Width, from.Height)
			for y := 0; y < from.Height; y++ {
				for x := 0; x < from.Width; x++ {
					_ = g.Set(Pos(x, y), Tile{Type: Wall, Color: RGB(uint8(x), uint8(y), 7)})
				}
			}

			g.Resize(to.Width, to.Height)
			g.Resize(from.Width, from.Height)

			for y := 0; y < from.Height; y++ {
				for x := 0; x < from.Width; x++ {
					tile, _ := g.Tile(Pos(x, y))
					kept := x < min(from.Width, to.Width) && y < min(from.Height, to.Height)
					want := DefaultTile()
					if kept {
						want = Tile{Type: Wall, Color: RGB(uint8(x), uint8(y), 7)}
					}
					if tile != want {
						t.Errorf("%v -> %v -> %v: Tile(%d, %d) = %+v, want %+v", from, to, from, x, y, tile, want)
					}
				}
			}
		}
	}
}

func TestClampIdempotent(t *testing.T) {
	sizes := []Size{{2, 2}, {3, 7}, {15, 10}}
	positions := []Position{
		Pos(0, 0), Pos(-5, 3), Pos(100, -100), Pos(1, 1), Pos(14, 9), Pos(15, 10),
	}

	for _, size := range sizes {
		for _, p := range positions {
			once := size.Clamp(p)
			twice := size.Clamp(once)
			if once != twice {
				t.Errorf("%v: Clamp(Clamp(%v)) = %v, want %v", size, p, twice, once)
			}
			if !size.Contains(once) {
				t.Errorf("%v: Clamp(%v) = %v is out of bounds", size, p, once)
			}
		}
	}
}

func TestResetColors(t *testing.T) {
	g := New(2, 2)
	_ = g.SetColor(Pos(1, 1), RGB(1, 2, 3))

	g.ResetColors()

	tile, _ := g.Tile(Pos(1, 1))
	if tile.Color != DefaultColor {
		t.Errorf("Color = %v, want %v", tile.Color, DefaultColor)
	}
}

func TestColorHelpers(t *testing.T) {
	c, err := ParseColor("#00c800")
	if err != nil {
		t.Fatalf("ParseColor() error = %v", err)
	}
	if c != RGB(0, 200, 0) {
		t.Errorf("ParseColor() = %v, want (0, 200, 0)", c)
	}
	if c.Hex() != "#00c800" {
		t.Errorf("Hex() = %q, want #00c800", c.Hex())
	}

	if _, err := ParseColor("green"); err == nil {
		t.Error("ParseColor(green) should fail")
	}

	light := RGB(100, 0, 0).Lighter(0.2)
	if light.R <= 100 {
		t.Errorf("Lighter() = %v, want a lighter red", light)
	}
	if white := DefaultColor.Lighter(0.5); white != DefaultColor {
		t.Errorf("white.Lighter() = %v, want white", white)
	}
}
