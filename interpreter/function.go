package interpreter

import (
	"fmt"

	"github.com/wasmkit/wasmkit/exec"
	"github.com/wasmkit/wasmkit/wasm"
)

// wasmFunction is a function defined (not imported) by some module
// instance. It implements exec.Function so it can be placed in tables,
// exported, and passed across the linker like any other function
// value; calling it from Go code (the top-level Invoke, or a call
// crossing from a host function back into Wasm) starts a fresh
// Machine, while a `call`/`call_indirect` reached from within another
// wasmFunction's body pushes a frame onto the caller's own Machine
// instead.
type wasmFunction struct {
	inst *Instance
	idx  uint32
	typ  *wasm.FuncType
	code *wasm.Code
	cont wasm.ContinuationTable
}

func (f *wasmFunction) Type() *wasm.FuncType { return f.typ }

func (f *wasmFunction) Call(args []exec.Value) ([]exec.Value, error) {
	if len(args) != len(f.typ.Params) {
		return nil, &exec.InvocationError{
			Kind:   exec.InvocationArityMismatch,
			Detail: fmt.Sprintf("%s expects %d arguments, got %d", f.inst.def, len(f.typ.Params), len(args)),
		}
	}
	for i, a := range args {
		if a.Type != f.typ.Params[i] {
			return nil, &exec.InvocationError{
				Kind:   exec.InvocationTypeMismatch,
				Detail: fmt.Sprintf("argument %d: expected %v, got %v", i, f.typ.Params[i], a.Type),
			}
		}
	}

	m := newMachine()
	if !m.pushFrame(f, args) {
		return nil, exec.TrapStackExhausted
	}
	if err := run(m); err != nil {
		return nil, err
	}

	results := make([]exec.Value, len(f.typ.Results))
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = m.popValue()
	}
	return results, nil
}
