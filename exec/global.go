package exec

import "github.com/wasmkit/wasmkit/wasm"

// GlobalInstance is a value plus a mutability flag.
type GlobalInstance struct {
	typ   wasm.GlobalType
	value Value
}

// NewGlobalInstance wraps v as a global instance of the given type. v
// must already have the type t.Type.
func NewGlobalInstance(t wasm.GlobalType, v Value) *GlobalInstance {
	return &GlobalInstance{typ: t, value: v}
}

func (g *GlobalInstance) Type() wasm.GlobalType { return g.typ }
func (g *GlobalInstance) Get() Value            { return g.value }

// Set replaces the global's value. It panics if the global is
// immutable; the validator is expected to have already rejected any
// global.set to an immutable global, so this is an internal-invariant
// check, not a user-facing error path.
func (g *GlobalInstance) Set(v Value) {
	if !g.typ.Mutable {
		panic("exec: Set called on an immutable global")
	}
	g.value = v
}
