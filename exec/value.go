// Package exec defines the instance collaborators the linker wires
// together at instantiation time: memory, table, and global instances,
// host- and module-provided functions, and the tagged runtime value
// they exchange. It also resolves a module definition's declared
// imports against an ordered list of supplied import sets.
package exec

import (
	"math"

	"github.com/wasmkit/wasmkit/wasm"
)

// Value is a tagged runtime value: one of the four numeric types, held
// as a machine-word bit pattern, or a reference type, held as Ref. Ref
// is nil for a null reference; for a function reference it holds a
// Function; for an extern reference it holds the opaque handle the
// host supplied.
type Value struct {
	Type wasm.ValueType
	Num  uint64
	Ref  interface{}
}

func NewI32(v int32) Value { return Value{Type: wasm.ValueTypeI32, Num: uint64(uint32(v))} }
func NewI64(v int64) Value { return Value{Type: wasm.ValueTypeI64, Num: uint64(v)} }
func NewF32(v float32) Value {
	return Value{Type: wasm.ValueTypeF32, Num: uint64(math.Float32bits(v))}
}
func NewF64(v float64) Value { return Value{Type: wasm.ValueTypeF64, Num: math.Float64bits(v)} }

// NewFuncRef wraps a function (or nil, for a null reference) as a
// funcref value.
func NewFuncRef(fn Function) Value {
	if fn == nil {
		return Value{Type: wasm.ValueTypeFuncRef}
	}
	return Value{Type: wasm.ValueTypeFuncRef, Ref: fn}
}

// NullRef returns the null reference value of the given reference type.
func NullRef(t wasm.ValueType) Value { return Value{Type: t} }

// NewExternRef wraps an opaque host handle as an externref value.
func NewExternRef(handle uint64) Value {
	return Value{Type: wasm.ValueTypeExternRef, Ref: externHandle(handle)}
}

type externHandle uint64

func (v Value) I32() int32     { return int32(uint32(v.Num)) }
func (v Value) I64() int64     { return int64(v.Num) }
func (v Value) F32() float32   { return math.Float32frombits(uint32(v.Num)) }
func (v Value) F64() float64   { return math.Float64frombits(v.Num) }
func (v Value) IsNullRef() bool { return v.Type.IsReferenceType() && v.Ref == nil }

// Func returns the function held by a funcref value, or nil if it is
// null. Panics if v is not a funcref.
func (v Value) Func() Function {
	if v.Type != wasm.ValueTypeFuncRef {
		panic("exec: Func called on a non-funcref value")
	}
	fn, _ := v.Ref.(Function)
	return fn
}

// ExternHandle returns the opaque handle held by an externref value
// and whether the reference is non-null. Panics if v is not an
// externref.
func (v Value) ExternHandle() (uint64, bool) {
	if v.Type != wasm.ValueTypeExternRef {
		panic("exec: ExternHandle called on a non-externref value")
	}
	h, ok := v.Ref.(externHandle)
	return uint64(h), ok
}

// zero returns the zero value for t: the null reference for a reference
// type, and an all-zero value otherwise.
func zero(t wasm.ValueType) Value {
	if t.IsReferenceType() {
		return NullRef(t)
	}
	return Value{Type: t}
}
