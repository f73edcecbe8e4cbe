package validate

import (
	"github.com/wasmkit/wasmkit/wasm"
)

const (
	i32 = wasm.ValueTypeI32
	i64 = wasm.ValueTypeI64
	f32 = wasm.ValueTypeF32
	f64 = wasm.ValueTypeF64
)

type opSig struct {
	pop  []wasm.ValueType
	push []wasm.ValueType
}

func sig1(pop, push wasm.ValueType) opSig  { return opSig{[]wasm.ValueType{pop}, []wasm.ValueType{push}} }
func sig2(a, b, push wasm.ValueType) opSig { return opSig{[]wasm.ValueType{a, b}, []wasm.ValueType{push}} }

// simpleOps covers every numeric instruction whose operand and result
// types are fixed and context-independent: comparisons, arithmetic,
// bitwise/shift/rotate, conversions, and reinterpretations.
var simpleOps = map[wasm.Opcode]opSig{
	wasm.OpI32Eqz: sig1(i32, i32),
	wasm.OpI32Eq:  sig2(i32, i32, i32), wasm.OpI32Ne: sig2(i32, i32, i32),
	wasm.OpI32LtS: sig2(i32, i32, i32), wasm.OpI32LtU: sig2(i32, i32, i32),
	wasm.OpI32GtS: sig2(i32, i32, i32), wasm.OpI32GtU: sig2(i32, i32, i32),
	wasm.OpI32LeS: sig2(i32, i32, i32), wasm.OpI32LeU: sig2(i32, i32, i32),
	wasm.OpI32GeS: sig2(i32, i32, i32), wasm.OpI32GeU: sig2(i32, i32, i32),

	wasm.OpI64Eqz: sig1(i64, i32),
	wasm.OpI64Eq:  sig2(i64, i64, i32), wasm.OpI64Ne: sig2(i64, i64, i32),
	wasm.OpI64LtS: sig2(i64, i64, i32), wasm.OpI64LtU: sig2(i64, i64, i32),
	wasm.OpI64GtS: sig2(i64, i64, i32), wasm.OpI64GtU: sig2(i64, i64, i32),
	wasm.OpI64LeS: sig2(i64, i64, i32), wasm.OpI64LeU: sig2(i64, i64, i32),
	wasm.OpI64GeS: sig2(i64, i64, i32), wasm.OpI64GeU: sig2(i64, i64, i32),

	wasm.OpF32Eq: sig2(f32, f32, i32), wasm.OpF32Ne: sig2(f32, f32, i32),
	wasm.OpF32Lt: sig2(f32, f32, i32), wasm.OpF32Gt: sig2(f32, f32, i32),
	wasm.OpF32Le: sig2(f32, f32, i32), wasm.OpF32Ge: sig2(f32, f32, i32),

	wasm.OpF64Eq: sig2(f64, f64, i32), wasm.OpF64Ne: sig2(f64, f64, i32),
	wasm.OpF64Lt: sig2(f64, f64, i32), wasm.OpF64Gt: sig2(f64, f64, i32),
	wasm.OpF64Le: sig2(f64, f64, i32), wasm.OpF64Ge: sig2(f64, f64, i32),

	wasm.OpI32Clz: sig1(i32, i32), wasm.OpI32Ctz: sig1(i32, i32), wasm.OpI32Popcnt: sig1(i32, i32),
	wasm.OpI32Add: sig2(i32, i32, i32), wasm.OpI32Sub: sig2(i32, i32, i32), wasm.OpI32Mul: sig2(i32, i32, i32),
	wasm.OpI32DivS: sig2(i32, i32, i32), wasm.OpI32DivU: sig2(i32, i32, i32),
	wasm.OpI32RemS: sig2(i32, i32, i32), wasm.OpI32RemU: sig2(i32, i32, i32),
	wasm.OpI32And: sig2(i32, i32, i32), wasm.OpI32Or: sig2(i32, i32, i32), wasm.OpI32Xor: sig2(i32, i32, i32),
	wasm.OpI32Shl: sig2(i32, i32, i32), wasm.OpI32ShrS: sig2(i32, i32, i32), wasm.OpI32ShrU: sig2(i32, i32, i32),
	wasm.OpI32Rotl: sig2(i32, i32, i32), wasm.OpI32Rotr: sig2(i32, i32, i32),

	wasm.OpI64Clz: sig1(i64, i64), wasm.OpI64Ctz: sig1(i64, i64), wasm.OpI64Popcnt: sig1(i64, i64),
	wasm.OpI64Add: sig2(i64, i64, i64), wasm.OpI64Sub: sig2(i64, i64, i64), wasm.OpI64Mul: sig2(i64, i64, i64),
	wasm.OpI64DivS: sig2(i64, i64, i64), wasm.OpI64DivU: sig2(i64, i64, i64),
	wasm.OpI64RemS: sig2(i64, i64, i64), wasm.OpI64RemU: sig2(i64, i64, i64),
	wasm.OpI64And: sig2(i64, i64, i64), wasm.OpI64Or: sig2(i64, i64, i64), wasm.OpI64Xor: sig2(i64, i64, i64),
	wasm.OpI64Shl: sig2(i64, i64, i64), wasm.OpI64ShrS: sig2(i64, i64, i64), wasm.OpI64ShrU: sig2(i64, i64, i64),
	wasm.OpI64Rotl: sig2(i64, i64, i64), wasm.OpI64Rotr: sig2(i64, i64, i64),

	wasm.OpF32Abs: sig1(f32, f32), wasm.OpF32Neg: sig1(f32, f32), wasm.OpF32Ceil: sig1(f32, f32),
	wasm.OpF32Floor: sig1(f32, f32), wasm.OpF32Trunc: sig1(f32, f32), wasm.OpF32Nearest: sig1(f32, f32),
	wasm.OpF32Sqrt: sig1(f32, f32),
	wasm.OpF32Add: sig2(f32, f32, f32), wasm.OpF32Sub: sig2(f32, f32, f32), wasm.OpF32Mul: sig2(f32, f32, f32),
	wasm.OpF32Div: sig2(f32, f32, f32), wasm.OpF32Min: sig2(f32, f32, f32), wasm.OpF32Max: sig2(f32, f32, f32),
	wasm.OpF32Copysign: sig2(f32, f32, f32),

	wasm.OpF64Abs: sig1(f64, f64), wasm.OpF64Neg: sig1(f64, f64), wasm.OpF64Ceil: sig1(f64, f64),
	wasm.OpF64Floor: sig1(f64, f64), wasm.OpF64Trunc: sig1(f64, f64), wasm.OpF64Nearest: sig1(f64, f64),
	wasm.OpF64Sqrt: sig1(f64, f64),
	wasm.OpF64Add: sig2(f64, f64, f64), wasm.OpF64Sub: sig2(f64, f64, f64), wasm.OpF64Mul: sig2(f64, f64, f64),
	wasm.OpF64Div: sig2(f64, f64, f64), wasm.OpF64Min: sig2(f64, f64, f64), wasm.OpF64Max: sig2(f64, f64, f64),
	wasm.OpF64Copysign: sig2(f64, f64, f64),

	wasm.OpI32WrapI64: sig1(i64, i32),
	wasm.OpI32TruncF32S: sig1(f32, i32), wasm.OpI32TruncF32U: sig1(f32, i32),
	wasm.OpI32TruncF64S: sig1(f64, i32), wasm.OpI32TruncF64U: sig1(f64, i32),
	wasm.OpI64ExtendI32S: sig1(i32, i64), wasm.OpI64ExtendI32U: sig1(i32, i64),
	wasm.OpI64TruncF32S: sig1(f32, i64), wasm.OpI64TruncF32U: sig1(f32, i64),
	wasm.OpI64TruncF64S: sig1(f64, i64), wasm.OpI64TruncF64U: sig1(f64, i64),
	wasm.OpF32ConvertI32S: sig1(i32, f32), wasm.OpF32ConvertI32U: sig1(i32, f32),
	wasm.OpF32ConvertI64S: sig1(i64, f32), wasm.OpF32ConvertI64U: sig1(i64, f32),
	wasm.OpF32DemoteF64: sig1(f64, f32),
	wasm.OpF64ConvertI32S: sig1(i32, f64), wasm.OpF64ConvertI32U: sig1(i32, f64),
	wasm.OpF64ConvertI64S: sig1(i64, f64), wasm.OpF64ConvertI64U: sig1(i64, f64),
	wasm.OpF64PromoteF32: sig1(f32, f64),
	wasm.OpI32ReinterpretF32: sig1(f32, i32), wasm.OpI64ReinterpretF64: sig1(f64, i64),
	wasm.OpF32ReinterpretI32: sig1(i32, f32), wasm.OpF64ReinterpretI64: sig1(i64, f64),

	wasm.OpI32Extend8S: sig1(i32, i32), wasm.OpI32Extend16S: sig1(i32, i32),
	wasm.OpI64Extend8S: sig1(i64, i64), wasm.OpI64Extend16S: sig1(i64, i64), wasm.OpI64Extend32S: sig1(i64, i64),
}

var satTruncOps = map[wasm.PrefixOp]opSig{
	wasm.OpI32TruncSatF32S: sig1(f32, i32), wasm.OpI32TruncSatF32U: sig1(f32, i32),
	wasm.OpI32TruncSatF64S: sig1(f64, i32), wasm.OpI32TruncSatF64U: sig1(f64, i32),
	wasm.OpI64TruncSatF32S: sig1(f32, i64), wasm.OpI64TruncSatF32U: sig1(f32, i64),
	wasm.OpI64TruncSatF64S: sig1(f64, i64), wasm.OpI64TruncSatF64U: sig1(f64, i64),
}

// naturalAlign gives the natural alignment, in bytes, of every
// memory access instruction, keyed by opcode.
var naturalAlign = map[wasm.Opcode]uint32{
	wasm.OpI32Load: 4, wasm.OpI64Load: 8, wasm.OpF32Load: 4, wasm.OpF64Load: 8,
	wasm.OpI32Load8S: 1, wasm.OpI32Load8U: 1, wasm.OpI32Load16S: 2, wasm.OpI32Load16U: 2,
	wasm.OpI64Load8S: 1, wasm.OpI64Load8U: 1, wasm.OpI64Load16S: 2, wasm.OpI64Load16U: 2,
	wasm.OpI64Load32S: 4, wasm.OpI64Load32U: 4,
	wasm.OpI32Store: 4, wasm.OpI64Store: 8, wasm.OpF32Store: 4, wasm.OpF64Store: 8,
	wasm.OpI32Store8: 1, wasm.OpI32Store16: 2, wasm.OpI64Store8: 1, wasm.OpI64Store16: 2, wasm.OpI64Store32: 4,
}

var loadResultType = map[wasm.Opcode]wasm.ValueType{
	wasm.OpI32Load: i32, wasm.OpI32Load8S: i32, wasm.OpI32Load8U: i32, wasm.OpI32Load16S: i32, wasm.OpI32Load16U: i32,
	wasm.OpI64Load: i64, wasm.OpI64Load8S: i64, wasm.OpI64Load8U: i64, wasm.OpI64Load16S: i64, wasm.OpI64Load16U: i64,
	wasm.OpI64Load32S: i64, wasm.OpI64Load32U: i64,
	wasm.OpF32Load: f32, wasm.OpF64Load: f64,
}

var storeOperandType = map[wasm.Opcode]wasm.ValueType{
	wasm.OpI32Store: i32, wasm.OpI32Store8: i32, wasm.OpI32Store16: i32,
	wasm.OpI64Store: i64, wasm.OpI64Store8: i64, wasm.OpI64Store16: i64, wasm.OpI64Store32: i64,
	wasm.OpF32Store: f32, wasm.OpF64Store: f64,
}

func (v *funcValidator) checkAlign(c *wasm.Cursor, op wasm.Opcode) (uint32, uint32, error) {
	align, err := c.ReadVarUint32()
	if err != nil {
		return 0, 0, err
	}
	offset, err := c.ReadVarUint32()
	if err != nil {
		return 0, 0, err
	}
	if (uint32(1) << align) > naturalAlign[op] {
		return 0, 0, v.fail(BadAlignment, "")
	}
	return align, offset, nil
}

func (v *funcValidator) requireMemory() error {
	if len(v.m.Memories) == 0 {
		return v.fail(UnknownMemory, "")
	}
	return nil
}

func (v *funcValidator) step(c *wasm.Cursor, op wasm.Opcode) error {
	if s, ok := simpleOps[op]; ok {
		if err := v.popVals(s.pop); err != nil {
			return err
		}
		v.pushVals(s.push)
		return nil
	}

	switch op {
	case wasm.OpUnreachable:
		v.setUnreachable()
	case wasm.OpNop:
	case wasm.OpBlock, wasm.OpLoop, wasm.OpIf:
		bt, err := c.ReadBlockType()
		if err != nil {
			return err
		}
		in, out, err := v.blockType(bt)
		if err != nil {
			return err
		}
		if op == wasm.OpIf {
			if err := v.popExpect(i32); err != nil {
				return err
			}
		}
		if err := v.popVals(in); err != nil {
			return err
		}
		v.pushCtrl(op, in, out)
	case wasm.OpElse:
		frame, err := v.popCtrl()
		if err != nil {
			return err
		}
		if frame.opcode != wasm.OpIf {
			return v.fail(TypeMismatch, "else without matching if")
		}
		v.pushCtrl(wasm.OpElse, frame.startTypes, frame.endTypes)
	case wasm.OpEnd:
		frame, err := v.popCtrl()
		if err != nil {
			return err
		}
		// An `if` that reaches `end` without an `else` never ran its
		// start types through anything, so the implicit else is just
		// the identity: the block must not have changed arity or type.
		if frame.opcode == wasm.OpIf {
			if len(frame.startTypes) != len(frame.endTypes) {
				return v.fail(IfElseMismatch, "if without else cannot change arity")
			}
			for i, t := range frame.startTypes {
				if t != frame.endTypes[i] {
					return v.fail(IfElseMismatch, "if without else cannot change operand types")
				}
			}
		}
		v.pushVals(frame.endTypes)
	case wasm.OpBr:
		depth, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		types, ok := v.label(depth)
		if !ok {
			return v.fail(UnknownLabel, "")
		}
		if err := v.popVals(types); err != nil {
			return err
		}
		v.setUnreachable()
	case wasm.OpBrIf:
		depth, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		types, ok := v.label(depth)
		if !ok {
			return v.fail(UnknownLabel, "")
		}
		if err := v.popExpect(i32); err != nil {
			return err
		}
		if err := v.popVals(types); err != nil {
			return err
		}
		v.pushVals(types)
	case wasm.OpBrTable:
		n, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		targets := make([]uint32, n)
		for i := range targets {
			d, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			targets[i] = d
		}
		def, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		defTypes, ok := v.label(def)
		if !ok {
			return v.fail(UnknownLabel, "")
		}
		if err := v.popExpect(i32); err != nil {
			return err
		}
		for _, d := range targets {
			types, ok := v.label(d)
			if !ok {
				return v.fail(UnknownLabel, "")
			}
			if len(types) != len(defTypes) {
				return v.fail(TypeMismatch, "br_table arity mismatch")
			}
		}
		if err := v.popVals(defTypes); err != nil {
			return err
		}
		v.setUnreachable()
	case wasm.OpReturn:
		if err := v.popVals(v.sig.Results); err != nil {
			return err
		}
		v.setUnreachable()
	case wasm.OpCall:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.m.Funcs) {
			return v.fail(UnknownFunction, "")
		}
		sig := v.m.Funcs[idx].Type
		if err := v.popVals(sig.Params); err != nil {
			return err
		}
		v.pushVals(sig.Results)
	case wasm.OpCallIndirect:
		typeIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		tableIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(tableIdx) >= len(v.m.Tables) {
			return v.fail(UnknownTable, "")
		}
		if v.m.Tables[tableIdx].ElemType != wasm.ValueTypeFuncRef {
			return v.fail(TypeMismatch, "call_indirect requires a funcref table")
		}
		if int(typeIdx) >= len(v.m.Types) {
			return v.fail(UnknownType, "")
		}
		sig := v.m.Types[typeIdx]
		if err := v.popExpect(i32); err != nil {
			return err
		}
		if err := v.popVals(sig.Params); err != nil {
			return err
		}
		v.pushVals(sig.Results)

	case wasm.OpDrop:
		if _, err := v.popVal(); err != nil {
			return err
		}
	case wasm.OpSelect:
		if err := v.popExpect(i32); err != nil {
			return err
		}
		t2, err := v.popAnyNumeric()
		if err != nil {
			return err
		}
		t1, err := v.popAnyNumeric()
		if err != nil {
			return err
		}
		if t1 != unknownType && t2 != unknownType && t1 != t2 {
			return v.fail(TypeMismatch, "select operands must match")
		}
		if t1 == unknownType {
			t1 = t2
		}
		v.pushVal(t1)
	case wasm.OpSelectTyped:
		n, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		types := make([]wasm.ValueType, n)
		for i := range types {
			t, err := c.ReadValueType()
			if err != nil {
				return err
			}
			types[i] = t
		}
		if len(types) != 1 {
			return v.fail(TypeMismatch, "select type immediate must name exactly one type")
		}
		if err := v.popExpect(i32); err != nil {
			return err
		}
		if err := v.popExpect(types[0]); err != nil {
			return err
		}
		if err := v.popExpect(types[0]); err != nil {
			return err
		}
		v.pushVal(types[0])

	case wasm.OpLocalGet:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.locals) {
			return v.fail(UnknownLocal, "")
		}
		v.pushVal(v.locals[idx])
	case wasm.OpLocalSet:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.locals) {
			return v.fail(UnknownLocal, "")
		}
		if err := v.popExpect(v.locals[idx]); err != nil {
			return err
		}
	case wasm.OpLocalTee:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.locals) {
			return v.fail(UnknownLocal, "")
		}
		if err := v.popExpect(v.locals[idx]); err != nil {
			return err
		}
		v.pushVal(v.locals[idx])
	case wasm.OpGlobalGet:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.m.Globals) {
			return v.fail(UnknownGlobal, "")
		}
		if v.constExpr {
			if int(idx) >= v.m.GlobalImportCount {
				return v.fail(ConstantExpressionGlobalMustBeImport, "")
			}
			if v.m.Globals[idx].Type.Mutable {
				return v.fail(ConstantExpressionGlobalMustBeImmutable, "")
			}
		}
		v.pushVal(v.m.Globals[idx].Type.Type)
	case wasm.OpGlobalSet:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.m.Globals) {
			return v.fail(UnknownGlobal, "")
		}
		g := v.m.Globals[idx]
		if !g.Type.Mutable {
			return v.fail(ImmutableGlobal, "")
		}
		if err := v.popExpect(g.Type.Type); err != nil {
			return err
		}

	case wasm.OpTableGet:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.m.Tables) {
			return v.fail(UnknownTable, "")
		}
		if err := v.popExpect(i32); err != nil {
			return err
		}
		v.pushVal(v.m.Tables[idx].ElemType)
	case wasm.OpTableSet:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.m.Tables) {
			return v.fail(UnknownTable, "")
		}
		if err := v.popExpect(v.m.Tables[idx].ElemType); err != nil {
			return err
		}
		if err := v.popExpect(i32); err != nil {
			return err
		}

	case wasm.OpRefNull:
		t, err := c.ReadReferenceType()
		if err != nil {
			return err
		}
		v.pushVal(t)
	case wasm.OpRefIsNull:
		t, err := v.popVal()
		if err != nil {
			return err
		}
		if t != unknownType && !t.IsReferenceType() {
			return v.fail(TypeMismatch, "ref.is_null requires a reference type")
		}
		v.pushVal(i32)
	case wasm.OpRefFunc:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.m.Funcs) {
			return v.fail(UnknownFunction, "")
		}
		if !v.m.DeclaredFuncRefs[idx] {
			return v.fail(FuncRefUndeclared, "")
		}
		v.pushVal(wasm.ValueTypeFuncRef)

	case wasm.OpMemorySize:
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		if err := v.requireMemory(); err != nil {
			return err
		}
		v.pushVal(i32)
	case wasm.OpMemoryGrow:
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		if err := v.requireMemory(); err != nil {
			return err
		}
		if err := v.popExpect(i32); err != nil {
			return err
		}
		v.pushVal(i32)

	case wasm.OpI32Const:
		if _, err := c.ReadVarint32(); err != nil {
			return err
		}
		v.pushVal(i32)
	case wasm.OpI64Const:
		if _, err := c.ReadVarint64(); err != nil {
			return err
		}
		v.pushVal(i64)
	case wasm.OpF32Const:
		if _, err := c.ReadBytes(4); err != nil {
			return err
		}
		v.pushVal(f32)
	case wasm.OpF64Const:
		if _, err := c.ReadBytes(8); err != nil {
			return err
		}
		v.pushVal(f64)

	case wasm.OpPrefixFC:
		sub, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		return v.stepPrefix(c, wasm.PrefixOp(sub))

	default:
		if naturalAlign[op] != 0 || loadResultType[op] != 0 || storeOperandType[op] != 0 {
			return v.stepMemAccess(c, op)
		}
		return v.fail(TypeMismatch, "unrecognized opcode")
	}
	return nil
}

func (v *funcValidator) stepMemAccess(c *wasm.Cursor, op wasm.Opcode) error {
	if _, _, err := v.checkAlign(c, op); err != nil {
		return err
	}
	if err := v.requireMemory(); err != nil {
		return err
	}
	if t, ok := storeOperandType[op]; ok {
		if err := v.popExpect(t); err != nil {
			return err
		}
		return v.popExpect(i32)
	}
	if err := v.popExpect(i32); err != nil {
		return err
	}
	v.pushVal(loadResultType[op])
	return nil
}

func (v *funcValidator) stepPrefix(c *wasm.Cursor, op wasm.PrefixOp) error {
	if s, ok := satTruncOps[op]; ok {
		if err := v.popVals(s.pop); err != nil {
			return err
		}
		v.pushVals(s.push)
		return nil
	}
	switch op {
	case wasm.OpMemoryInit:
		dataIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		if !v.m.HasDataCount {
			return wasm.NewMalformedError(wasm.MalformedMissingDataCountSection, "")
		}
		if int(dataIdx) >= int(v.m.DataCount) {
			return v.fail(UnknownData, "")
		}
		if err := v.requireMemory(); err != nil {
			return err
		}
		return v.popVals([]wasm.ValueType{i32, i32, i32})
	case wasm.OpDataDrop:
		dataIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if !v.m.HasDataCount {
			return wasm.NewMalformedError(wasm.MalformedMissingDataCountSection, "")
		}
		if int(dataIdx) >= int(v.m.DataCount) {
			return v.fail(UnknownData, "")
		}
		return nil
	case wasm.OpMemoryCopy:
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		if err := v.requireMemory(); err != nil {
			return err
		}
		return v.popVals([]wasm.ValueType{i32, i32, i32})
	case wasm.OpMemoryFill:
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		if err := v.requireMemory(); err != nil {
			return err
		}
		return v.popVals([]wasm.ValueType{i32, i32, i32})
	case wasm.OpTableInit:
		elemIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		tableIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(tableIdx) >= len(v.m.Tables) {
			return v.fail(UnknownTable, "")
		}
		if int(elemIdx) >= len(v.m.Elements) {
			return v.fail(UnknownElement, "")
		}
		return v.popVals([]wasm.ValueType{i32, i32, i32})
	case wasm.OpElemDrop:
		elemIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(elemIdx) >= len(v.m.Elements) {
			return v.fail(UnknownElement, "")
		}
		return nil
	case wasm.OpTableCopy:
		dst, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		src, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(dst) >= len(v.m.Tables) || int(src) >= len(v.m.Tables) {
			return v.fail(UnknownTable, "")
		}
		return v.popVals([]wasm.ValueType{i32, i32, i32})
	case wasm.OpTableGrow:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.m.Tables) {
			return v.fail(UnknownTable, "")
		}
		if err := v.popExpect(i32); err != nil {
			return err
		}
		if err := v.popExpect(v.m.Tables[idx].ElemType); err != nil {
			return err
		}
		v.pushVal(i32)
		return nil
	case wasm.OpTableSize:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.m.Tables) {
			return v.fail(UnknownTable, "")
		}
		v.pushVal(i32)
		return nil
	case wasm.OpTableFill:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if int(idx) >= len(v.m.Tables) {
			return v.fail(UnknownTable, "")
		}
		if err := v.popExpect(i32); err != nil {
			return err
		}
		if err := v.popExpect(v.m.Tables[idx].ElemType); err != nil {
			return err
		}
		return v.popExpect(i32)
	default:
		return v.fail(TypeMismatch, "unrecognized prefixed opcode")
	}
}
