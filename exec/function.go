package exec

import (
	"fmt"

	"github.com/wasmkit/wasmkit/wasm"
)

// Function is anything invocable from a module instance: a function
// defined by some module instance, executed by the interpreter, or a
// host-provided callback. Calling a host function does not push an
// interpreter frame.
type Function interface {
	// Type returns the function's signature.
	Type() *wasm.FuncType
	// Call invokes the function with the given arguments, which must
	// match Type().Params in count and type, and returns values
	// matching Type().Results in count and type. A Trap is returned as
	// an ordinary error.
	Call(args []Value) ([]Value, error)
}

// HostFunc is the callback signature a host module implements.
type HostFunc func(args []Value) ([]Value, error)

// HostFunction adapts a plain Go callback to the Function interface.
type HostFunction struct {
	sig wasm.FuncType
	fn  HostFunc
}

// NewHostFunction wraps fn as a Function with the given signature.
func NewHostFunction(sig wasm.FuncType, fn HostFunc) *HostFunction {
	return &HostFunction{sig: sig, fn: fn}
}

func (f *HostFunction) Type() *wasm.FuncType { return &f.sig }

func (f *HostFunction) Call(args []Value) ([]Value, error) {
	if len(args) != len(f.sig.Params) {
		return nil, &InvocationError{Kind: InvocationArityMismatch, Detail: fmt.Sprintf("host function expects %d arguments, got %d", len(f.sig.Params), len(args))}
	}
	for i, a := range args {
		if a.Type != f.sig.Params[i] {
			return nil, &InvocationError{Kind: InvocationTypeMismatch, Detail: fmt.Sprintf("argument %d: expected %v, got %v", i, f.sig.Params[i], a.Type)}
		}
	}
	return f.fn(args)
}
