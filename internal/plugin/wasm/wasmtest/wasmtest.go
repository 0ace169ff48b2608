// Package wasmtest assembles small WebAssembly modules for tests, so the
// engine can be exercised without an external toolchain.
package wasmtest

import (
	"bytes"
	"encoding/binary"
)

// ValType is a WebAssembly value type.
type ValType byte

// I32 is the only value type the host ABI uses.
const I32 ValType = 0x7f

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// I32s returns a signature of n i32 params and r i32 results.
func I32s(n, r int) FuncType {
	ft := FuncType{}
	for i := 0; i < n; i++ {
		ft.Params = append(ft.Params, I32)
	}
	for i := 0; i < r; i++ {
		ft.Results = append(ft.Results, I32)
	}
	return ft
}

// Import is an imported function.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Func is a defined function. Body is the instruction sequence without the
// trailing end.
type Func struct {
	Export string
	Type   FuncType
	Body   []byte
}

// Data is an active data segment in memory 0.
type Data struct {
	Offset int32
	Bytes  []byte
}

// Module describes a module to assemble. Function indices number the imports
// first, then Funcs.
type Module struct {
	Imports      []Import
	Funcs        []Func
	MemoryPages  uint32
	ExportMemory bool
	Data         []Data
}

// Bytes encodes the module in the binary format.
func (m *Module) Bytes() []byte {
	var types []FuncType
	typeIndex := func(ft FuncType) uint32 {
		for i, t := range types {
			if bytes.Equal(valTypes(t.Params), valTypes(ft.Params)) &&
				bytes.Equal(valTypes(t.Results), valTypes(ft.Results)) {
				return uint32(i)
			}
		}
		types = append(types, ft)
		return uint32(len(types) - 1)
	}

	var imports, funcs, exports, code, data [][]byte
	for _, imp := range m.Imports {
		e := append(name(imp.Module), name(imp.Name)...)
		e = append(e, 0x00)
		e = append(e, uleb(uint64(typeIndex(imp.Type)))...)
		imports = append(imports, e)
	}

	for i, fn := range m.Funcs {
		funcs = append(funcs, uleb(uint64(typeIndex(fn.Type))))
		if fn.Export != "" {
			e := append(name(fn.Export), 0x00)
			e = append(e, uleb(uint64(len(m.Imports)+i))...)
			exports = append(exports, e)
		}
		body := append([]byte{0x00}, fn.Body...) // no locals
		body = append(body, 0x0b)
		code = append(code, append(uleb(uint64(len(body))), body...))
	}

	if m.ExportMemory {
		exports = append(exports, append(name("memory"), 0x02, 0x00))
	}

	for _, d := range m.Data {
		e := []byte{0x00}
		e = append(e, I32Const(d.Offset)...)
		e = append(e, 0x0b)
		e = append(e, uleb(uint64(len(d.Bytes)))...)
		data = append(data, append(e, d.Bytes...))
	}

	var typeEntries [][]byte
	for _, ft := range types {
		e := []byte{0x60}
		e = append(e, vec(valTypes(ft.Params))...)
		e = append(e, vec(valTypes(ft.Results))...)
		typeEntries = append(typeEntries, e)
	}

	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})
	section(&buf, 1, typeEntries)
	section(&buf, 2, imports)
	section(&buf, 3, funcs)
	if m.MemoryPages > 0 {
		section(&buf, 5, [][]byte{append([]byte{0x00}, uleb(uint64(m.MemoryPages))...)})
	}
	section(&buf, 7, exports)
	section(&buf, 10, code)
	section(&buf, 11, data)
	return buf.Bytes()
}

func section(buf *bytes.Buffer, id byte, entries [][]byte) {
	if len(entries) == 0 {
		return
	}
	content := uleb(uint64(len(entries)))
	for _, e := range entries {
		content = append(content, e...)
	}
	buf.WriteByte(id)
	buf.Write(uleb(uint64(len(content))))
	buf.Write(content)
}

func valTypes(ts []ValType) []byte {
	out := make([]byte, len(ts))
	for i, t := range ts {
		out[i] = byte(t)
	}
	return out
}

func vec(b []byte) []byte {
	return append(uleb(uint64(len(b))), b...)
}

func name(s string) []byte {
	return vec([]byte(s))
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}

// Instructions.

// I32Const pushes v.
func I32Const(v int32) []byte {
	return append([]byte{0x41}, sleb(int64(v))...)
}

// Call calls function idx.
func Call(idx uint32) []byte {
	return append([]byte{0x10}, uleb(uint64(idx))...)
}

// LocalGet pushes local (or parameter) idx.
func LocalGet(idx uint32) []byte {
	return append([]byte{0x20}, uleb(uint64(idx))...)
}

// I32Load8U replaces the address on the stack with the byte at
// address+offset.
func I32Load8U(offset uint32) []byte {
	return append([]byte{0x2d, 0x00}, uleb(uint64(offset))...)
}

// Drop discards the top of the stack.
func Drop() []byte { return []byte{0x1a} }

// Unreachable traps.
func Unreachable() []byte { return []byte{0x00} }

// Forever loops until the runtime stops it.
func Forever() []byte { return []byte{0x03, 0x40, 0x0c, 0x00, 0x0b} }

// Seq concatenates instructions.
func Seq(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// PathBytes encodes points as little-endian u32 pairs, the layout output
// reads.
func PathBytes(points ...[2]uint32) []byte {
	out := make([]byte, 0, len(points)*8)
	for _, p := range points {
		out = binary.LittleEndian.AppendUint32(out, p[0])
		out = binary.LittleEndian.AppendUint32(out, p[1])
	}
	return out
}
