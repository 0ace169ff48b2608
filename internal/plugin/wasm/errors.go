package wasm

import "errors"

var (
	// ErrNotWasm is returned when the bytes do not carry the wasm magic.
	ErrNotWasm = errors.New("not a WebAssembly module")

	// ErrMemoryAccess is raised inside a host callback when the module passes
	// a range outside its memory.
	ErrMemoryAccess = errors.New("out of bounds memory access")

	// ErrAlloc is returned when alloc yields a region the grid does not fit.
	ErrAlloc = errors.New("alloc returned an unusable region")
)
