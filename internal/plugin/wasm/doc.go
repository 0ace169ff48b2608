// Package wasm runs pathfinding modules compiled to WebAssembly core modules
// on wazero.
//
// A module exports its linear memory as "memory", an allocator
//
//	alloc(size i32) -> i32
//
// and the entry point
//
//	run(grid_ptr, width, height, start_x, start_y, goal_x, goal_y i32)
//
// The host writes the grid at the pointer alloc returned, one byte per cell
// (1 = passable) in array order. Modules may import from "host":
//
//	tile(x, y, r, g, b i32)
//	line(x0, y0, x1, y1, r, g, b i32)
//	arrow(x0, y0, x1, y1, r, g, b i32)
//	output(path_ptr, path_len i32) -> i32
//
// and from wasi_snapshot_preview1, whose stdout and stderr go to the host log.
// Every handle owns its own runtime, so modules never share state.
package wasm
