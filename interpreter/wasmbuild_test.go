package interpreter

import (
	"bytes"

	"github.com/wasmkit/wasmkit/wasm"
	"github.com/wasmkit/wasmkit/wasm/leb128"
)

// The scenario tests in interpreter_test.go hand-assemble modules byte by
// byte rather than depending on a text-format assembler or an external
// corpus. These helpers keep that assembly declarative: a func signature,
// a slice of raw instruction bytes per body, and a list of exports.

func u32(v uint32) []byte {
	var b bytes.Buffer
	leb128.WriteVarUint32(&b, v)
	return b.Bytes()
}

func s32(v int32) []byte {
	var b bytes.Buffer
	leb128.WriteVarint32(&b, v)
	return b.Bytes()
}

func name(s string) []byte {
	return append(u32(uint32(len(s))), []byte(s)...)
}

func section(id wasm.SectionID, payload []byte) []byte {
	return append(append([]byte{byte(id)}, u32(uint32(len(payload)))...), payload...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

type sig struct {
	params  []wasm.ValueType
	results []wasm.ValueType
}

func valueTypes(ts []wasm.ValueType) []byte {
	out := u32(uint32(len(ts)))
	for _, t := range ts {
		out = append(out, byte(t))
	}
	return out
}

func typeSection(sigs ...sig) []byte {
	payload := u32(uint32(len(sigs)))
	for _, s := range sigs {
		payload = append(payload, 0x60)
		payload = append(payload, valueTypes(s.params)...)
		payload = append(payload, valueTypes(s.results)...)
	}
	return section(wasm.SectionType, payload)
}

type funcImport struct {
	module, field string
	typeIdx       uint32
}

func importFuncSection(entries ...funcImport) []byte {
	payload := u32(uint32(len(entries)))
	for _, e := range entries {
		payload = append(payload, name(e.module)...)
		payload = append(payload, name(e.field)...)
		payload = append(payload, byte(wasm.ExternalFunction))
		payload = append(payload, u32(e.typeIdx)...)
	}
	return section(wasm.SectionImport, payload)
}

func functionSection(typeIdxs ...uint32) []byte {
	payload := u32(uint32(len(typeIdxs)))
	for _, idx := range typeIdxs {
		payload = append(payload, u32(idx)...)
	}
	return section(wasm.SectionFunction, payload)
}

type exportEntry struct {
	fieldName string
	kind      wasm.ExternalKind
	index     uint32
}

func exportSection(entries ...exportEntry) []byte {
	payload := u32(uint32(len(entries)))
	for _, e := range entries {
		payload = append(payload, name(e.fieldName)...)
		payload = append(payload, byte(e.kind))
		payload = append(payload, u32(e.index)...)
	}
	return section(wasm.SectionExport, payload)
}

// funcBody wraps instruction bytes (which must end with wasm.OpEnd) as a
// code-section entry with zero local declarations.
func funcBody(instructions []byte) []byte {
	return append(u32(0), instructions...)
}

func codeSection(bodies ...[]byte) []byte {
	payload := u32(uint32(len(bodies)))
	for _, body := range bodies {
		payload = append(payload, u32(uint32(len(body)))...)
		payload = append(payload, body...)
	}
	return section(wasm.SectionCode, payload)
}

func module(sections ...[]byte) []byte {
	header := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	return append(header, concat(sections...)...)
}

func op(o wasm.Opcode) []byte { return []byte{byte(o)} }
