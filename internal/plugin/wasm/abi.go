package wasm

import (
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
)

// Exported names besides the entry point.
const (
	ExportMemory = "memory"
	ExportAlloc  = "alloc"
)

// signature is a function type over i32 values only.
type signature struct {
	params  int
	results int
}

func (s signature) String() string {
	return fmt.Sprintf("(%d x i32) -> (%d x i32)", s.params, s.results)
}

func (s signature) matches(def api.FunctionDefinition) bool {
	return allI32(def.ParamTypes(), s.params) && allI32(def.ResultTypes(), s.results)
}

func allI32(types []api.ValueType, n int) bool {
	if len(types) != n {
		return false
	}
	return !slices.ContainsFunc(types, func(t api.ValueType) bool {
		return t != api.ValueTypeI32
	})
}

// hostSignatures lists the callbacks a module may import from "host".
var hostSignatures = map[string]signature{
	contract.FuncTile:   {params: 5},
	contract.FuncLine:   {params: 7},
	contract.FuncArrow:  {params: 7},
	contract.FuncOutput: {params: 2, results: 1},
}

// exportSignatures lists the functions a module must export.
var exportSignatures = map[string]signature{
	ExportAlloc:         {params: 1, results: 1},
	contract.EntryPoint: {params: 7},
}

// checkImports verifies that every import can be satisfied by the host
// module or WASI.
func checkImports(compiled wazero.CompiledModule) error {
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		switch module {
		case contract.HostModule:
			sig, ok := hostSignatures[name]
			if !ok {
				return fmt.Errorf("%s.%s is not provided", module, name)
			}
			if !sig.matches(def) {
				return fmt.Errorf("%s.%s must have signature %s", module, name, sig)
			}
		case wasi_snapshot_preview1.ModuleName:
		default:
			return fmt.Errorf("%s.%s is not provided", module, name)
		}
	}
	if mems := compiled.ImportedMemories(); len(mems) > 0 {
		module, name, _ := mems[0].Import()
		return fmt.Errorf("memory import %s.%s is not provided", module, name)
	}
	return nil
}

// checkExports verifies memory, alloc and run.
func checkExports(compiled wazero.CompiledModule) error {
	if _, ok := compiled.ExportedMemories()[ExportMemory]; !ok {
		return fmt.Errorf("%q is not exported", ExportMemory)
	}

	funcs := compiled.ExportedFunctions()
	for _, name := range []string{ExportAlloc, contract.EntryPoint} {
		sig := exportSignatures[name]
		def, ok := funcs[name]
		if !ok {
			return fmt.Errorf("%q is not exported", name)
		}
		if !sig.matches(def) {
			return fmt.Errorf("%q must have signature %s", name, sig)
		}
	}
	return nil
}
