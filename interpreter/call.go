package interpreter

import (
	"github.com/wasmkit/wasmkit/exec"
)

// call invokes the function at idx in the current instance's function
// index space. A call to another wasmFunction pushes a frame onto this
// same Machine; a call to a host-provided Function makes an ordinary Go
// call instead, since a host function has no continuation table to
// resume into.
func (m *Machine) call(idx uint32) error {
	fn := m.inst.funcs[idx]
	return m.invoke(fn)
}

// callIndirect calls through a table: the table slot named by the
// popped index must hold a function reference whose signature matches
// typeIdx exactly.
func (m *Machine) callIndirect(typeIdx, tableIdx uint32) error {
	i := uint32(m.popValue().I32())
	tbl := m.inst.tables[tableIdx]
	slot, ok := tbl.Get(i)
	if !ok {
		return exec.TrapUndefinedElement
	}
	if slot.IsNullRef() {
		return exec.TrapUninitializedElement
	}
	fn := slot.Func()
	want := &m.inst.def.mod.Types[typeIdx]
	if !fn.Type().Equal(want) {
		return exec.TrapIndirectCallTypeMismatch
	}
	return m.invoke(fn)
}

func (m *Machine) invoke(fn exec.Function) error {
	if wf, ok := fn.(*wasmFunction); ok {
		args := make([]exec.Value, len(wf.typ.Params))
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = m.popValue()
		}
		if !m.pushFrame(wf, args) {
			return exec.TrapStackExhausted
		}
		return nil
	}

	typ := fn.Type()
	args := make([]exec.Value, len(typ.Params))
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = m.popValue()
	}
	results, err := fn.Call(args)
	if err != nil {
		return err
	}
	for _, v := range results {
		m.pushValue(v)
	}
	return nil
}
