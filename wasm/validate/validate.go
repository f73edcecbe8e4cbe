package validate

import (
	"github.com/wasmkit/wasmkit/wasm"
)

// unknownType is a pseudo value type used for operands synthesized after
// an `unreachable` instruction, where the validator must accept any type.
const unknownType = wasm.ValueType(0)

// Validate type-checks every function body in m, and checks the
// module-level invariants (export uniqueness, start function type,
// constant-expression restrictions, memory/table limits, and the
// ref.func declaration rule) described by the specification.
func Validate(m *wasm.Module) error {
	if err := validateLimits(m); err != nil {
		return err
	}
	if err := validateStart(m); err != nil {
		return err
	}
	if err := validateExports(m); err != nil {
		return err
	}
	if err := validateGlobalInits(m); err != nil {
		return err
	}
	if err := validateElementOffsets(m); err != nil {
		return err
	}
	if err := validateDataOffsets(m); err != nil {
		return err
	}
	if err := validateElementInits(m); err != nil {
		return err
	}

	firstDefined := m.NumFuncImports()
	for i := firstDefined; i < len(m.Funcs); i++ {
		f := &m.Funcs[i]
		v := &funcValidator{m: m, funcIdx: i, sig: &f.Type}
		if err := v.run(f.Code.Body, f.Code.Locals); err != nil {
			return err
		}
	}
	return nil
}

func validateLimits(m *wasm.Module) error {
	if len(m.Memories) > 1 {
		return newErr(MultipleMemories, "")
	}
	for _, mt := range m.Memories {
		if mt.Limits.HasMax && mt.Limits.Max > wasm.MaxMemoryPages {
			return newErr(MemoryMaxPagesExceeded, "")
		}
		if mt.Limits.Min > wasm.MaxMemoryPages {
			return newErr(MemoryMaxPagesExceeded, "")
		}
		if mt.Limits.HasMax && mt.Limits.Min > mt.Limits.Max {
			return newErr(MemorySizeMinExceedsMax, "")
		}
	}
	for _, tt := range m.Tables {
		if tt.Limits.HasMax && tt.Limits.Min > tt.Limits.Max {
			return newErr(MemorySizeMinExceedsMax, "")
		}
	}
	return nil
}

func validateStart(m *wasm.Module) error {
	if !m.HasStart {
		return nil
	}
	if int(m.Start) >= len(m.Funcs) {
		return newErr(UnknownFunction, "start")
	}
	sig := m.Funcs[m.Start].Type
	if len(sig.Params) != 0 || len(sig.Results) != 0 {
		return newErr(StartFunctionType, "")
	}
	return nil
}

func validateExports(m *wasm.Module) error {
	seen := map[string]bool{}
	for _, e := range m.Exports {
		if seen[e.Name] {
			return newErr(DuplicateExportName, e.Name)
		}
		seen[e.Name] = true
		switch e.Kind {
		case wasm.ExternalFunction:
			if int(e.Index) >= len(m.Funcs) {
				return newErr(UnknownFunction, e.Name)
			}
		case wasm.ExternalTable:
			if int(e.Index) >= len(m.Tables) {
				return newErr(UnknownTable, e.Name)
			}
		case wasm.ExternalMemory:
			if int(e.Index) >= len(m.Memories) {
				return newErr(UnknownMemory, e.Name)
			}
		case wasm.ExternalGlobal:
			if int(e.Index) >= len(m.Globals) {
				return newErr(UnknownGlobal, e.Name)
			}
		}
	}
	return nil
}

// validateConstExpr checks that expr is a legal constant expression
// (typed constants, ref.null, ref.func, or global.get of an immutable
// imported global) and that it produces exactly want.
func validateConstExpr(m *wasm.Module, expr wasm.ConstExpr, want wasm.ValueType) error {
	v := &funcValidator{m: m, sig: &wasm.FuncType{}, constExpr: true}
	v.pushCtrl(wasm.OpBlock, nil, []wasm.ValueType{want})
	return v.run(expr.Code, nil)
}

func validateGlobalInits(m *wasm.Module) error {
	for i := m.GlobalImportCount; i < len(m.Globals); i++ {
		g := m.Globals[i]
		if err := validateConstExpr(m, g.Init, g.Type.Type); err != nil {
			return err
		}
	}
	return nil
}

func validateElementOffsets(m *wasm.Module) error {
	for _, seg := range m.Elements {
		if seg.Mode != wasm.ElementModeActive {
			continue
		}
		if int(seg.TableIndex) >= len(m.Tables) {
			return newErr(UnknownTable, "")
		}
		if err := validateConstExpr(m, seg.Offset, wasm.ValueTypeI32); err != nil {
			return err
		}
	}
	return nil
}

func validateDataOffsets(m *wasm.Module) error {
	for _, seg := range m.Data {
		if seg.Mode != wasm.DataModeActive {
			continue
		}
		if int(seg.MemoryIndex) >= len(m.Memories) {
			return newErr(UnknownMemory, "")
		}
		if err := validateConstExpr(m, seg.Offset, wasm.ValueTypeI32); err != nil {
			return err
		}
	}
	return nil
}

func validateElementInits(m *wasm.Module) error {
	for _, seg := range m.Elements {
		for _, init := range seg.Init {
			if err := validateConstExpr(m, init, seg.Type); err != nil {
				return err
			}
		}
	}
	return nil
}
