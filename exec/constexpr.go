package exec

import (
	"fmt"

	"github.com/wasmkit/wasmkit/wasm"
)

// EvalConstExpr runs a decoded constant expression to produce its
// value. importedGlobals supplies the values global.get may read: the
// validator has already checked that a constant expression only
// reads an immutable imported global, so indexing directly into the
// instance's already-resolved imported globals is safe.
func EvalConstExpr(expr wasm.ConstExpr, importedGlobals []*GlobalInstance, funcRef func(idx uint32) Function) (Value, error) {
	c := wasm.NewCursor(expr.Code)
	var result Value
	for {
		opByte, err := c.ReadByte()
		if err != nil {
			return Value{}, err
		}
		op := wasm.Opcode(opByte)
		switch op {
		case wasm.OpI32Const:
			v, err := c.ReadVarint32()
			if err != nil {
				return Value{}, err
			}
			result = NewI32(v)
		case wasm.OpI64Const:
			v, err := c.ReadVarint64()
			if err != nil {
				return Value{}, err
			}
			result = NewI64(v)
		case wasm.OpF32Const:
			b, err := c.ReadBytes(4)
			if err != nil {
				return Value{}, err
			}
			result = Value{Type: wasm.ValueTypeF32, Num: uint64(leU32(b))}
		case wasm.OpF64Const:
			b, err := c.ReadBytes(8)
			if err != nil {
				return Value{}, err
			}
			result = Value{Type: wasm.ValueTypeF64, Num: leU64(b)}
		case wasm.OpRefNull:
			t, err := c.ReadReferenceType()
			if err != nil {
				return Value{}, err
			}
			result = NullRef(t)
		case wasm.OpRefFunc:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return Value{}, err
			}
			result = NewFuncRef(funcRef(idx))
		case wasm.OpGlobalGet:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return Value{}, err
			}
			if int(idx) >= len(importedGlobals) {
				return Value{}, fmt.Errorf("exec: constant expression references unknown global %d", idx)
			}
			result = importedGlobals[idx].Get()
		case wasm.OpEnd:
			return result, nil
		default:
			return Value{}, fmt.Errorf("exec: illegal opcode %#x in constant expression", opByte)
		}
	}
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
