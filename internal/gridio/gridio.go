// Package gridio reads and writes the JSON files of headless runs: grids
// going in, timelines coming out.
//
// Grid file:
//
//	{
//	  "width": 15, "height": 10,
//	  "walls": [[3, 0], [3, 1]],
//	  "start": [0, 0], "goal": [14, 9]
//	}
//
// Positions are host coordinates (origin bottom-left). start and goal are
// optional and default to opposite corners.
package gridio

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
)

var (
	// ErrInvalidJSON is returned for malformed documents.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrInvalidGrid is returned for well-formed documents describing an
	// unusable grid.
	ErrInvalidGrid = errors.New("invalid grid")
)

// Accepted grid dimensions.
const (
	MinSize = grid.MinDimension
	MaxSize = grid.MaxDimension
)

// ReadGrid parses a grid document. Walls outside the grid are an error;
// start and goal are clamped and separated like interactive placement.
func ReadGrid(data []byte) (*grid.Grid, grid.Goals, error) {
	if !gjson.ValidBytes(data) {
		return nil, grid.Goals{}, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)

	width, height := doc.Get("width"), doc.Get("height")
	if width.Type != gjson.Number || height.Type != gjson.Number {
		return nil, grid.Goals{}, fmt.Errorf("width and height must be numbers: %w", ErrInvalidGrid)
	}
	w, h := width.Int(), height.Int()
	if w < MinSize || h < MinSize {
		return nil, grid.Goals{}, fmt.Errorf("size %dx%d below %dx%d: %w", w, h, MinSize, MinSize, ErrInvalidGrid)
	}
	if w > MaxSize || h > MaxSize {
		return nil, grid.Goals{}, fmt.Errorf("size %dx%d above %dx%d: %w", w, h, MaxSize, MaxSize, ErrInvalidGrid)
	}

	g := grid.New(int(w), int(h))
	size := g.Size()

	var walls error
	doc.Get("walls").ForEach(func(_, v gjson.Result) bool {
		p, err := position(v)
		if err == nil && !size.Contains(p) {
			err = fmt.Errorf("wall %v: %w", p, grid.ErrOutOfBounds)
		}
		if err != nil {
			walls = err
			return false
		}
		_ = g.SetType(p, grid.Wall)
		return true
	})
	if walls != nil {
		return nil, grid.Goals{}, fmt.Errorf("%w: %w", ErrInvalidGrid, walls)
	}

	goals := grid.DefaultGoals(size)
	markers := []struct {
		key string
		dst *grid.Position
	}{
		{"start", &goals.Start},
		{"goal", &goals.Goal},
	}
	for _, m := range markers {
		v := doc.Get(m.key)
		if !v.Exists() {
			continue
		}
		p, err := position(v)
		if err != nil {
			return nil, grid.Goals{}, fmt.Errorf("%s: %w: %w", m.key, ErrInvalidGrid, err)
		}
		*m.dst = p
	}
	goals.Normalize(g)

	return g, goals, nil
}

// LoadGrid reads a grid file.
func LoadGrid(path string) (*grid.Grid, grid.Goals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, grid.Goals{}, err
	}
	g, goals, err := ReadGrid(data)
	if err != nil {
		return nil, grid.Goals{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, goals, nil
}

// WriteGrid encodes g and goals as a grid document.
func WriteGrid(g *grid.Grid, goals grid.Goals) ([]byte, error) {
	doc := []byte(`{}`)
	var err error

	set := func(path string, v any) {
		if err == nil {
			doc, err = sjson.SetBytes(doc, path, v)
		}
	}

	set("width", g.Width())
	set("height", g.Height())
	set("walls", []any{})
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if !g.Passable(grid.Pos(x, y)) {
				set("walls.-1", []int{x, y})
			}
		}
	}
	set("start", []int{goals.Start.X, goals.Start.Y})
	set("goal", []int{goals.Goal.X, goals.Goal.Y})

	if err != nil {
		return nil, err
	}
	return doc, nil
}

// position reads [x, y].
func position(v gjson.Result) (grid.Position, error) {
	if !v.IsArray() {
		return grid.Position{}, fmt.Errorf("position %s is not an [x, y] array", v.Raw)
	}
	parts := v.Array()
	if len(parts) != 2 || parts[0].Type != gjson.Number || parts[1].Type != gjson.Number {
		return grid.Position{}, fmt.Errorf("position %s is not an [x, y] pair", v.Raw)
	}
	return grid.Pos(int(parts[0].Int()), int(parts[1].Int())), nil
}
