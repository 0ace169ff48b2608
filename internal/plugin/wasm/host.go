package wasm

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/Lacosst0/pathfinding-playground/internal/grid"
	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
)

// pointSize is the byte size of one (x, y) pair read by output.
const pointSize = 8

// instantiateHost registers the "host" module in r, forwarding to host.
func instantiateHost(ctx context.Context, r wazero.Runtime, host contract.Host) error {
	_, err := r.NewHostModuleBuilder(contract.HostModule).
		NewFunctionBuilder().
		WithFunc(func(x, y, r, g, b uint32) {
			host.Tile(contract.Pt(x, y), color(r, g, b))
		}).
		WithParameterNames("x", "y", "r", "g", "b").
		Export(contract.FuncTile).
		NewFunctionBuilder().
		WithFunc(func(x0, y0, x1, y1, r, g, b uint32) {
			host.Line(contract.Pt(x0, y0), contract.Pt(x1, y1), color(r, g, b))
		}).
		WithParameterNames("x0", "y0", "x1", "y1", "r", "g", "b").
		Export(contract.FuncLine).
		NewFunctionBuilder().
		WithFunc(func(x0, y0, x1, y1, r, g, b uint32) {
			host.Arrow(contract.Pt(x0, y0), contract.Pt(x1, y1), color(r, g, b))
		}).
		WithParameterNames("x0", "y0", "x1", "y1", "r", "g", "b").
		Export(contract.FuncArrow).
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, ptr, n uint32) uint32 {
			path := readPath(m.Memory(), ptr, n)
			if host.Output(path) {
				return 1
			}
			return 0
		}).
		WithParameterNames("path_ptr", "path_len").
		Export(contract.FuncOutput).
		Instantiate(ctx)
	return err
}

// color truncates each channel to its low byte.
func color(r, g, b uint32) grid.Color {
	return grid.RGB(uint8(r), uint8(g), uint8(b))
}

// readPath decodes n little-endian (x, y) u32 pairs at ptr. An out of range
// read panics; wazero reports the panic as a trap of the calling module.
func readPath(mem api.Memory, ptr, n uint32) []contract.Point {
	if mem == nil || uint64(ptr)+uint64(n)*pointSize > uint64(mem.Size()) {
		panic(fmt.Errorf("output(%d, %d): %w", ptr, n, ErrMemoryAccess))
	}
	path := make([]contract.Point, 0, n)
	for i := uint32(0); i < n; i++ {
		off := ptr + i*pointSize
		x, okX := mem.ReadUint32Le(off)
		y, okY := mem.ReadUint32Le(off + 4)
		if !okX || !okY {
			panic(fmt.Errorf("output(%d, %d): %w", ptr, n, ErrMemoryAccess))
		}
		path = append(path, contract.Pt(x, y))
	}
	return path
}
