// Package plugin loads pathfinding modules and runs them in a sandbox.
//
// A Loader reads a module file, picks the engine that understands it
// (WebAssembly or Lua), and returns a Handle bound to a fresh timeline
// recorder:
//
//	loader := plugin.NewLoader(plugin.WithLogger(log))
//	h, err := loader.Load(ctx, "dijkstra.wasm")
//	if err != nil {
//	    // *contract.LoadError: io, compile, link or missing export
//	}
//	defer h.Close(ctx)
//
//	res, err := h.Invoke(ctx, g.Snapshot(), goals.Start, goals.Goal)
//	for _, a := range res.Actions {
//	    // replay
//	}
//
// Invoke is single-flight per handle: the handle lock covers the module call
// and the drain of its recorder, so actions from two invocations never mix.
//
// An Arena keeps handles under stable ids and swaps in a freshly loaded
// handle on reload only when the load succeeded.
package plugin
