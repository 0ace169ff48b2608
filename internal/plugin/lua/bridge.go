package lua

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
)

// HostTable is the global through which scripts reach the host.
const HostTable = "host"

// installHost binds the host callbacks into a global table.
func installHost(L *lua.LState, host contract.Host) {
	tbl := L.NewTable()

	L.SetField(tbl, contract.FuncTile, L.NewFunction(func(L *lua.LState) int {
		host.Tile(checkPoint(L, 1), checkColor(L, 2))
		return 0
	}))
	L.SetField(tbl, contract.FuncLine, L.NewFunction(func(L *lua.LState) int {
		host.Line(checkPoint(L, 1), checkPoint(L, 2), checkColor(L, 3))
		return 0
	}))
	L.SetField(tbl, contract.FuncArrow, L.NewFunction(func(L *lua.LState) int {
		host.Arrow(checkPoint(L, 1), checkPoint(L, 2), checkColor(L, 3))
		return 0
	}))
	L.SetField(tbl, contract.FuncOutput, L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(host.Output(checkPath(L, 1))))
		return 1
	}))

	L.SetGlobal(HostTable, tbl)
}

// snapshotTable converts a snapshot into rows of booleans, row 1 = top.
func snapshotTable(L *lua.LState, snap grid.Snapshot) *lua.LTable {
	rows := L.CreateTable(len(snap), 0)
	for _, row := range snap {
		cells := L.CreateTable(len(row), 0)
		for _, passable := range row {
			cells.Append(lua.LBool(passable))
		}
		rows.Append(cells)
	}
	return rows
}

// pointTable converts a point into {x=, y=}.
func pointTable(L *lua.LState, p contract.Point) *lua.LTable {
	tbl := L.CreateTable(0, 2)
	tbl.RawSetString("x", lua.LNumber(p.X))
	tbl.RawSetString("y", lua.LNumber(p.Y))
	return tbl
}

// checkPoint reads {x=, y=} or {x, y} from argument n.
func checkPoint(L *lua.LState, n int) contract.Point {
	tbl := L.CheckTable(n)
	p, err := toPoint(tbl)
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return p
}

func toPoint(tbl *lua.LTable) (contract.Point, error) {
	xv, yv := tbl.RawGetString("x"), tbl.RawGetString("y")
	if xv == lua.LNil && yv == lua.LNil {
		xv, yv = tbl.RawGetInt(1), tbl.RawGetInt(2)
	}
	x, err := toCoord(xv)
	if err != nil {
		return contract.Point{}, fmt.Errorf("x: %w", err)
	}
	y, err := toCoord(yv)
	if err != nil {
		return contract.Point{}, fmt.Errorf("y: %w", err)
	}
	return contract.Pt(x, y), nil
}

func toCoord(v lua.LValue) (uint32, error) {
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("number expected, got %s", v.Type())
	}
	f := float64(n)
	if f != math.Trunc(f) || f < 0 || f > math.MaxUint32 {
		return 0, fmt.Errorf("%v is not a valid coordinate", f)
	}
	return uint32(f), nil
}

// checkColor reads {r=, g=, b=}, {r, g, b} or "#rrggbb" from argument n.
func checkColor(L *lua.LState, n int) grid.Color {
	switch v := L.Get(n).(type) {
	case lua.LString:
		c, err := grid.ParseColor(string(v))
		if err != nil {
			L.ArgError(n, err.Error())
		}
		return c
	case *lua.LTable:
		c, err := toColor(v)
		if err != nil {
			L.ArgError(n, err.Error())
		}
		return c
	default:
		L.ArgError(n, "colour table or hex string expected, got "+v.Type().String())
		return grid.Color{}
	}
}

func toColor(tbl *lua.LTable) (grid.Color, error) {
	keys := [3]string{"r", "g", "b"}
	var ch [3]uint8
	for i, key := range keys {
		v := tbl.RawGetString(key)
		if v == lua.LNil {
			v = tbl.RawGetInt(i + 1)
		}
		n, ok := v.(lua.LNumber)
		if !ok {
			return grid.Color{}, fmt.Errorf("%s: number expected, got %s", key, v.Type())
		}
		if n < 0 || n > 255 {
			return grid.Color{}, fmt.Errorf("%s: %v out of range", key, float64(n))
		}
		ch[i] = uint8(n)
	}
	return grid.RGB(ch[0], ch[1], ch[2]), nil
}

// checkPath reads an array of points from argument n.
func checkPath(L *lua.LState, n int) []contract.Point {
	tbl := L.CheckTable(n)
	count := tbl.Len()
	path := make([]contract.Point, 0, count)
	for i := 1; i <= count; i++ {
		pt, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.ArgError(n, fmt.Sprintf("path[%d]: point expected", i))
		}
		p, err := toPoint(pt)
		if err != nil {
			L.ArgError(n, fmt.Sprintf("path[%d]: %v", i, err))
		}
		path = append(path, p)
	}
	return path
}
