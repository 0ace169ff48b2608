package gridio

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
	"github.com/Lacosst0/pathfinding-playground/internal/timeline"
)

// Timeline is an exported run: the module, the grid size it ran on and the
// actions it recorded, in module coordinates.
type Timeline struct {
	Module  string
	Size    grid.Size
	Elapsed time.Duration
	Actions []timeline.Action
}

// EncodeTimeline writes tl as JSON:
//
//	{"module": "a.wasm", "width": 3, "height": 3, "elapsed_ms": 0.42,
//	 "actions": [{"kind": "line", "start": [0, 2], "end": [1, 1], "color": "#00c800"}]}
func EncodeTimeline(tl Timeline) ([]byte, error) {
	doc := []byte(`{}`)
	var err error

	set := func(path string, v any) {
		if err == nil {
			doc, err = sjson.SetBytes(doc, path, v)
		}
	}

	set("module", tl.Module)
	set("width", tl.Size.Width)
	set("height", tl.Size.Height)
	set("elapsed_ms", float64(tl.Elapsed.Microseconds())/1000)
	set("actions", []any{})
	for _, a := range tl.Actions {
		set("actions.-1", encodeAction(a))
	}

	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeTimeline parses a document written by EncodeTimeline.
func DecodeTimeline(data []byte) (Timeline, error) {
	if !gjson.ValidBytes(data) {
		return Timeline{}, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)

	tl := Timeline{
		Module:  doc.Get("module").String(),
		Size:    grid.Size{Width: int(doc.Get("width").Int()), Height: int(doc.Get("height").Int())},
		Elapsed: time.Duration(doc.Get("elapsed_ms").Float() * float64(time.Millisecond)),
	}

	var decodeErr error
	doc.Get("actions").ForEach(func(_, v gjson.Result) bool {
		a, err := decodeAction(v)
		if err != nil {
			decodeErr = err
			return false
		}
		tl.Actions = append(tl.Actions, a)
		return true
	})
	if decodeErr != nil {
		return Timeline{}, decodeErr
	}
	return tl, nil
}

type actionJSON struct {
	Kind  string   `json:"kind"`
	Start []uint32 `json:"start"`
	End   []uint32 `json:"end,omitempty"`
	Color string   `json:"color"`
}

func encodeAction(a timeline.Action) actionJSON {
	out := actionJSON{
		Kind:  a.Kind.String(),
		Start: []uint32{a.Start.X, a.Start.Y},
		Color: a.Color.Hex(),
	}
	if a.Kind != timeline.KindTile {
		out.End = []uint32{a.End.X, a.End.Y}
	}
	return out
}

func decodeAction(v gjson.Result) (timeline.Action, error) {
	c, err := grid.ParseColor(v.Get("color").String())
	if err != nil {
		return timeline.Action{}, err
	}
	start := point(v.Get("start"))

	switch kind := v.Get("kind").String(); kind {
	case "tile":
		return timeline.TileAction(start, c), nil
	case "line":
		return timeline.LineAction(start, point(v.Get("end")), c), nil
	case "arrow":
		return timeline.ArrowAction(start, point(v.Get("end")), c), nil
	default:
		return timeline.Action{}, fmt.Errorf("unknown action kind %q", kind)
	}
}

func point(v gjson.Result) contract.Point {
	return contract.Pt(uint32(v.Get("0").Uint()), uint32(v.Get("1").Uint()))
}
