package validate

import (
	"github.com/wasmkit/wasmkit/wasm"
)

// ctrlFrame mirrors one entry of the validation algorithm's control-frame
// stack: the instruction that opened it, its parameter and result types,
// the operand-stack height at which it was entered, and whether the
// frame has gone unreachable (after `unreachable`, `br`, `br_table`, or
// `return`), in which case further operand type errors are suppressed.
type ctrlFrame struct {
	opcode      wasm.Opcode
	startTypes  []wasm.ValueType
	endTypes    []wasm.ValueType
	height      int
	unreachable bool
}

// funcValidator type-checks a single function body (or, with constExpr
// set, a constant expression) against an abstract operand-type stack.
type funcValidator struct {
	m       *wasm.Module
	funcIdx int
	sig     *wasm.FuncType

	constExpr bool

	locals []wasm.ValueType

	stack []wasm.ValueType
	ctrl  []ctrlFrame
}

func (v *funcValidator) fail(kind Kind, detail string) error {
	if v.constExpr {
		return newErr(kind, detail)
	}
	return newFuncErr(kind, v.funcIdx, detail)
}

func (v *funcValidator) pushVal(t wasm.ValueType) {
	v.stack = append(v.stack, t)
}

func (v *funcValidator) pushVals(ts []wasm.ValueType) {
	for _, t := range ts {
		v.pushVal(t)
	}
}

func (v *funcValidator) popVal() (wasm.ValueType, error) {
	top := &v.ctrl[len(v.ctrl)-1]
	if len(v.stack) == top.height {
		if top.unreachable {
			return unknownType, nil
		}
		return unknownType, v.fail(TypeMismatch, "value stack underflow")
	}
	t := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return t, nil
}

func (v *funcValidator) popExpect(want wasm.ValueType) error {
	got, err := v.popVal()
	if err != nil {
		return err
	}
	if got != unknownType && want != unknownType && got != want {
		return v.fail(TypeMismatch, want.String()+" expected, got "+got.String())
	}
	return nil
}

func (v *funcValidator) popVals(ts []wasm.ValueType) error {
	for i := len(ts) - 1; i >= 0; i-- {
		if err := v.popExpect(ts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (v *funcValidator) popAnyNumeric() (wasm.ValueType, error) {
	t, err := v.popVal()
	if err != nil {
		return t, err
	}
	if t != unknownType && !t.IsNumericType() {
		return t, v.fail(TypeMustBeNumeric, "")
	}
	return t, nil
}

func (v *funcValidator) pushCtrl(opcode wasm.Opcode, in, out []wasm.ValueType) {
	v.pushVals(in)
	v.ctrl = append(v.ctrl, ctrlFrame{
		opcode:     opcode,
		startTypes: in,
		endTypes:   out,
		height:     len(v.stack),
	})
}

func (v *funcValidator) popCtrl() (ctrlFrame, error) {
	top := &v.ctrl[len(v.ctrl)-1]
	if err := v.popVals(top.endTypes); err != nil {
		return ctrlFrame{}, err
	}
	if len(v.stack) != top.height {
		return ctrlFrame{}, v.fail(TypeMismatch, "unused values remain on the stack at end of block")
	}
	frame := *top
	v.ctrl = v.ctrl[:len(v.ctrl)-1]
	return frame, nil
}

func (v *funcValidator) setUnreachable() {
	top := &v.ctrl[len(v.ctrl)-1]
	v.stack = v.stack[:top.height]
	top.unreachable = true
}

// label looks up the control frame `depth` levels up from the top
// (depth 0 is the innermost), returning its branch arity (the loop's
// parameter types, or every other construct's result types) and
// reporting whether depth was in range.
func (v *funcValidator) label(depth uint32) ([]wasm.ValueType, bool) {
	if int(depth) >= len(v.ctrl) {
		return nil, false
	}
	frame := v.ctrl[len(v.ctrl)-1-int(depth)]
	if frame.opcode == wasm.OpLoop {
		return frame.startTypes, true
	}
	return frame.endTypes, true
}

func (v *funcValidator) blockType(bt wasm.BlockType) (in, out []wasm.ValueType, err error) {
	if bt.IsEmpty() {
		return nil, nil, nil
	}
	if bt.IsValueType() {
		return nil, []wasm.ValueType{bt.ValueType()}, nil
	}
	idx := bt.TypeIndex()
	if int(idx) >= len(v.m.Types) {
		return nil, nil, v.fail(UnknownType, "")
	}
	ft := v.m.Types[idx]
	return ft.Params, ft.Results, nil
}

// run type-checks body (the function's instruction stream, or a constant
// expression's instruction stream) starting from an operand stack seeded
// by the function's own parameters/results as the outermost control
// frame. For a constant expression, the caller has already pushed the
// single frame describing the expected result type via pushCtrl.
func (v *funcValidator) run(body []byte, localDecls []wasm.Local) error {
	if !v.constExpr {
		v.locals = append([]wasm.ValueType(nil), v.sig.Params...)
		for _, l := range localDecls {
			for i := uint32(0); i < l.Count; i++ {
				v.locals = append(v.locals, l.Type)
			}
		}
		v.pushCtrl(wasm.OpBlock, nil, v.sig.Results)
	}

	c := wasm.NewCursor(body)
	for !c.AtEnd() {
		opByte, err := c.ReadByte()
		if err != nil {
			return err
		}
		op := wasm.Opcode(opByte)
		if v.constExpr {
			if err := v.checkConstExprOpcode(op); err != nil {
				return err
			}
		}
		if err := v.step(c, op); err != nil {
			return err
		}
		if op == wasm.OpEnd && len(v.ctrl) == 0 {
			if !c.AtEnd() {
				return v.fail(TypeMismatch, "trailing bytes after end")
			}
			return nil
		}
	}
	return v.fail(TypeMismatch, "missing end")
}

func (v *funcValidator) checkConstExprOpcode(op wasm.Opcode) error {
	switch op {
	case wasm.OpI32Const, wasm.OpI64Const, wasm.OpF32Const, wasm.OpF64Const,
		wasm.OpRefNull, wasm.OpRefFunc, wasm.OpGlobalGet, wasm.OpEnd:
		return nil
	default:
		return v.fail(BadConstantExpression, "")
	}
}
