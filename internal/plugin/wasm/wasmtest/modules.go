package wasmtest

// Function indices of the host imports in modules built by Algorithm.
const (
	Tile uint32 = iota
	Line
	Arrow
	Output
)

// Parameter indices of run.
const (
	GridPtr uint32 = iota
	Width
	Height
	StartX
	StartY
	GoalX
	GoalY
)

// GridAddr is where alloc places the grid.
const GridAddr = 1024

// PathAddr is where path data segments are placed.
const PathAddr = 64

// HostImports returns the four host callbacks in index order.
func HostImports() []Import {
	return []Import{
		{Module: "host", Name: "tile", Type: I32s(5, 0)},
		{Module: "host", Name: "line", Type: I32s(7, 0)},
		{Module: "host", Name: "arrow", Type: I32s(7, 0)},
		{Module: "host", Name: "output", Type: I32s(2, 1)},
	}
}

// AllocFunc returns alloc(size) -> GridAddr.
func AllocFunc() Func {
	return Func{Export: "alloc", Type: I32s(1, 1), Body: I32Const(GridAddr)}
}

// RunFunc returns run(grid_ptr, width, height, sx, sy, gx, gy) executing body.
func RunFunc(body []byte) Func {
	return Func{Export: "run", Type: I32s(7, 0), Body: body}
}

// Algorithm builds a module with the host imports, one page of exported
// memory, alloc, and run executing body.
func Algorithm(body []byte, data ...Data) []byte {
	m := Module{
		Imports:      HostImports(),
		Funcs:        []Func{AllocFunc(), RunFunc(body)},
		MemoryPages:  1,
		ExportMemory: true,
		Data:         data,
	}
	return m.Bytes()
}

// OutputPath builds a module whose run reports points through output.
func OutputPath(points ...[2]uint32) []byte {
	body := Seq(
		I32Const(PathAddr),
		I32Const(int32(len(points))),
		Call(Output),
		Drop(),
	)
	return Algorithm(body, Data{Offset: PathAddr, Bytes: PathBytes(points...)})
}

// Echo builds a module whose run records:
//
//	tile(sx, sy, grid[0], grid[1], width)
//	arrow(sx, sy, gx, gy, 0, 0, height)
//
// so tests can observe the grid bytes, dimensions and coordinates it received.
func Echo() []byte {
	body := Seq(
		LocalGet(StartX), LocalGet(StartY),
		LocalGet(GridPtr), I32Load8U(0),
		LocalGet(GridPtr), I32Load8U(1),
		LocalGet(Width),
		Call(Tile),
		LocalGet(StartX), LocalGet(StartY),
		LocalGet(GoalX), LocalGet(GoalY),
		I32Const(0), I32Const(0), LocalGet(Height),
		Call(Arrow),
	)
	return Algorithm(body)
}

// Shapes builds a module whose run records one tile, line and arrow.
func Shapes() []byte {
	body := Seq(
		I32Const(1), I32Const(2), I32Const(10), I32Const(20), I32Const(30),
		Call(Tile),
		I32Const(0), I32Const(0), I32Const(2), I32Const(1), I32Const(255), I32Const(0), I32Const(0),
		Call(Line),
		I32Const(2), I32Const(1), I32Const(0), I32Const(0), I32Const(0), I32Const(0), I32Const(255),
		Call(Arrow),
	)
	return Algorithm(body)
}

// Trap builds a module whose run records a tile and then traps.
func Trap() []byte {
	body := Seq(
		I32Const(0), I32Const(0), I32Const(1), I32Const(2), I32Const(3),
		Call(Tile),
		Unreachable(),
	)
	return Algorithm(body)
}

// Spin builds a module whose run never returns.
func Spin() []byte {
	return Algorithm(Forever())
}

// SpinInit builds a valid module whose _initialize start function never
// returns.
func SpinInit() []byte {
	m := Module{
		Imports: HostImports(),
		Funcs: []Func{
			AllocFunc(),
			RunFunc(nil),
			{Export: "_initialize", Type: I32s(0, 0), Body: Forever()},
		},
		MemoryPages:  1,
		ExportMemory: true,
	}
	return m.Bytes()
}

// BadOutput builds a module that passes output a path outside its memory.
func BadOutput() []byte {
	body := Seq(I32Const(0x7fff0000), I32Const(4), Call(Output), Drop())
	return Algorithm(body)
}

// MissingRun builds a module without a run export.
func MissingRun() []byte {
	m := Module{
		Imports:      HostImports(),
		Funcs:        []Func{AllocFunc()},
		MemoryPages:  1,
		ExportMemory: true,
	}
	return m.Bytes()
}

// WrongSignature builds a module whose run takes two parameters.
func WrongSignature() []byte {
	m := Module{
		Funcs: []Func{
			AllocFunc(),
			{Export: "run", Type: I32s(2, 0)},
		},
		MemoryPages:  1,
		ExportMemory: true,
	}
	return m.Bytes()
}

// NoMemory builds a module that does not export its memory.
func NoMemory() []byte {
	m := Module{
		Funcs:       []Func{AllocFunc(), RunFunc(nil)},
		MemoryPages: 1,
	}
	return m.Bytes()
}

// UnknownImport builds a module importing a function the host does not provide.
func UnknownImport() []byte {
	m := Module{
		Imports:      []Import{{Module: "env", Name: "abort", Type: I32s(0, 0)}},
		Funcs:        []Func{AllocFunc(), RunFunc(nil)},
		MemoryPages:  1,
		ExportMemory: true,
	}
	return m.Bytes()
}

// MismatchedImport builds a module importing host.tile with the wrong signature.
func MismatchedImport() []byte {
	m := Module{
		Imports:      []Import{{Module: "host", Name: "tile", Type: I32s(2, 0)}},
		Funcs:        []Func{AllocFunc(), RunFunc(nil)},
		MemoryPages:  1,
		ExportMemory: true,
	}
	return m.Bytes()
}

// Malformed returns bytes with a valid header and a broken section.
func Malformed() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x01, 0xff}
}
