package gridio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
	"github.com/Lacosst0/pathfinding-playground/internal/timeline"
)

func TestReadGrid(t *testing.T) {
	g, goals, err := ReadGrid([]byte(`{
		"width": 4, "height": 3,
		"walls": [[1, 0], [1, 1], [0, 0]],
		"goal": [3, 0]
	}`))
	if err != nil {
		t.Fatalf("ReadGrid() error = %v", err)
	}

	if g.Size() != (grid.Size{Width: 4, Height: 3}) {
		t.Errorf("Size() = %v, want 4x3", g.Size())
	}
	want := grid.Goals{Start: grid.Pos(0, 0), Goal: grid.Pos(3, 0)}
	if goals != want {
		t.Errorf("goals = %+v, want %+v", goals, want)
	}

	for _, tc := range []struct {
		p        grid.Position
		passable bool
	}{
		{grid.Pos(1, 0), false},
		{grid.Pos(1, 1), false},
		{grid.Pos(1, 2), true},
		// Walls under a marker are cleared.
		{grid.Pos(0, 0), true},
	} {
		if got := g.Passable(tc.p); got != tc.passable {
			t.Errorf("Passable(%v) = %v, want %v", tc.p, got, tc.passable)
		}
	}
}

func TestReadGridDefaultsGoals(t *testing.T) {
	_, goals, err := ReadGrid([]byte(`{"width": 5, "height": 2}`))
	if err != nil {
		t.Fatalf("ReadGrid() error = %v", err)
	}
	if want := grid.DefaultGoals(grid.Size{Width: 5, Height: 2}); goals != want {
		t.Errorf("goals = %+v, want %+v", goals, want)
	}
}

func TestReadGridErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"malformed", `{"width": 4,`, ErrInvalidJSON},
		{"missing size", `{"walls": []}`, ErrInvalidGrid},
		{"string size", `{"width": "4", "height": 3}`, ErrInvalidGrid},
		{"too small", `{"width": 1, "height": 3}`, ErrInvalidGrid},
		{"too large", `{"width": 1e9, "height": 1e9}`, ErrInvalidGrid},
		{"too tall", `{"width": 4, "height": 513}`, ErrInvalidGrid},
		{"wall outside", `{"width": 2, "height": 2, "walls": [[2, 0]]}`, grid.ErrOutOfBounds},
		{"wall not a pair", `{"width": 2, "height": 2, "walls": [[1]]}`, ErrInvalidGrid},
		{"bad start", `{"width": 2, "height": 2, "start": "a1"}`, ErrInvalidGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadGrid([]byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadGrid() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteGridReadsBack(t *testing.T) {
	g := grid.New(3, 3)
	_ = g.SetType(grid.Pos(1, 1), grid.Wall)
	_ = g.SetType(grid.Pos(2, 0), grid.Wall)
	goals := grid.Goals{Start: grid.Pos(0, 0), Goal: grid.Pos(2, 2)}

	data, err := WriteGrid(g, goals)
	if err != nil {
		t.Fatalf("WriteGrid() error = %v", err)
	}

	if got := gjson.GetBytes(data, "walls.#").Int(); got != 2 {
		t.Errorf("walls.# = %d, want 2", got)
	}

	back, backGoals, err := ReadGrid(data)
	if err != nil {
		t.Fatalf("ReadGrid() error = %v", err)
	}
	if diff := cmp.Diff(g.Snapshot(), back.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if backGoals != goals {
		t.Errorf("goals = %+v, want %+v", backGoals, goals)
	}
}

func TestLoadGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.json")
	if err := os.WriteFile(path, []byte(`{"width": 2, "height": 2, "walls": [[1, 0]]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	g, _, err := LoadGrid(path)
	if err != nil {
		t.Fatalf("LoadGrid() error = %v", err)
	}
	if g.Passable(grid.Pos(1, 0)) {
		t.Error("(1, 0) should be a wall")
	}

	if _, _, err := LoadGrid(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadGrid(missing) error = %v, want ErrNotExist", err)
	}
}

func TestTimelineRoundTrip(t *testing.T) {
	red := grid.RGB(255, 0, 0)
	tl := Timeline{
		Module:  "diagonal.wasm",
		Size:    grid.Size{Width: 3, Height: 3},
		Elapsed: 1500 * time.Microsecond,
		Actions: []timeline.Action{
			timeline.TileAction(contract.Pt(1, 1), red),
			timeline.LineAction(contract.Pt(0, 2), contract.Pt(1, 1), contract.OutputColor),
			timeline.ArrowAction(contract.Pt(2, 0), contract.Pt(0, 0), grid.RGB(0, 0, 255)),
		},
	}

	data, err := EncodeTimeline(tl)
	if err != nil {
		t.Fatalf("EncodeTimeline() error = %v", err)
	}

	if got := gjson.GetBytes(data, "actions.1.color").String(); got != contract.OutputColor.Hex() {
		t.Errorf("actions.1.color = %q, want %q", got, contract.OutputColor.Hex())
	}
	if gjson.GetBytes(data, "actions.0.end").Exists() {
		t.Error("tile actions should not carry an end point")
	}

	back, err := DecodeTimeline(data)
	if err != nil {
		t.Fatalf("DecodeTimeline() error = %v", err)
	}
	if diff := cmp.Diff(tl, back); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTimelineErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"actions": [`},
		{"unknown kind", `{"actions": [{"kind": "circle", "start": [0, 0], "color": "#ffffff"}]}`},
		{"bad colour", `{"actions": [{"kind": "tile", "start": [0, 0], "color": "white"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTimeline([]byte(tt.doc)); err == nil {
				t.Error("DecodeTimeline() should fail")
			}
		})
	}
}
