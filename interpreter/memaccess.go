package interpreter

import (
	"errors"

	"github.com/wasmkit/wasmkit/exec"
	"github.com/wasmkit/wasmkit/wasm"
)

// errNotMemAccess signals that the opcode passed to stepMemAccess is
// not a load/store instruction, so the caller should fall through to
// the plain numeric-op tables instead.
var errNotMemAccess = errors.New("interpreter: not a memory access opcode")

// stepMemAccess decodes and executes a load or store instruction. The
// alignment immediate is validated at decode time and has no effect on
// correctness, so it is read and discarded.
func (m *Machine) stepMemAccess(c *wasm.Cursor, op wasm.Opcode) error {
	switch op {
	case wasm.OpI32Load, wasm.OpI64Load, wasm.OpF32Load, wasm.OpF64Load,
		wasm.OpI32Load8S, wasm.OpI32Load8U, wasm.OpI32Load16S, wasm.OpI32Load16U,
		wasm.OpI64Load8S, wasm.OpI64Load8U, wasm.OpI64Load16S, wasm.OpI64Load16U,
		wasm.OpI64Load32S, wasm.OpI64Load32U:
		return m.execLoad(c, op)
	case wasm.OpI32Store, wasm.OpI64Store, wasm.OpF32Store, wasm.OpF64Store,
		wasm.OpI32Store8, wasm.OpI32Store16, wasm.OpI64Store8, wasm.OpI64Store16, wasm.OpI64Store32:
		return m.execStore(c, op)
	default:
		return errNotMemAccess
	}
}

// memImmediate reads a load/store's align (discarded) and offset
// immediates without touching the value stack.
func (m *Machine) memImmediate(c *wasm.Cursor) (offset uint32, err error) {
	if _, err := c.ReadVarUint32(); err != nil { // align
		return 0, err
	}
	return c.ReadVarUint32()
}

func (m *Machine) execLoad(c *wasm.Cursor, op wasm.Opcode) error {
	offset, err := m.memImmediate(c)
	if err != nil {
		return err
	}
	base := uint32(m.popValue().I32())
	addr := uint64(base) + uint64(offset)
	mem := m.inst.memories[0]
	switch op {
	case wasm.OpI32Load:
		v, ok := mem.Uint32(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i32v(int32(v)))
	case wasm.OpI64Load:
		v, ok := mem.Uint64(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i64v(int64(v)))
	case wasm.OpF32Load:
		v, ok := mem.Float32(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(f32v(v))
	case wasm.OpF64Load:
		v, ok := mem.Float64(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(f64v(v))
	case wasm.OpI32Load8S:
		v, ok := mem.Byte(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i32v(int32(int8(v))))
	case wasm.OpI32Load8U:
		v, ok := mem.Byte(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i32v(int32(v)))
	case wasm.OpI32Load16S:
		v, ok := mem.Uint16(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i32v(int32(int16(v))))
	case wasm.OpI32Load16U:
		v, ok := mem.Uint16(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i32v(int32(v)))
	case wasm.OpI64Load8S:
		v, ok := mem.Byte(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i64v(int64(int8(v))))
	case wasm.OpI64Load8U:
		v, ok := mem.Byte(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i64v(int64(v)))
	case wasm.OpI64Load16S:
		v, ok := mem.Uint16(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i64v(int64(int16(v))))
	case wasm.OpI64Load16U:
		v, ok := mem.Uint16(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i64v(int64(v)))
	case wasm.OpI64Load32S:
		v, ok := mem.Uint32(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i64v(int64(int32(v))))
	case wasm.OpI64Load32U:
		v, ok := mem.Uint32(addr)
		if !ok {
			return exec.TrapOutOfBoundsMemoryAccess
		}
		m.pushValue(i64v(int64(v)))
	}
	m.pc = c.Pos
	return nil
}

func (m *Machine) execStore(c *wasm.Cursor, op wasm.Opcode) error {
	offset, err := m.memImmediate(c)
	if err != nil {
		return err
	}
	v := m.popValue()
	base := uint32(m.popValue().I32())
	addr := uint64(base) + uint64(offset)
	mem := m.inst.memories[0]
	var ok bool
	switch op {
	case wasm.OpI32Store:
		ok = mem.PutUint32(addr, uint32(v.I32()))
	case wasm.OpI64Store:
		ok = mem.PutUint64(addr, uint64(v.I64()))
	case wasm.OpF32Store:
		ok = mem.PutFloat32(addr, v.F32())
	case wasm.OpF64Store:
		ok = mem.PutFloat64(addr, v.F64())
	case wasm.OpI32Store8:
		ok = mem.PutByte(addr, byte(v.I32()))
	case wasm.OpI32Store16:
		ok = mem.PutUint16(addr, uint16(v.I32()))
	case wasm.OpI64Store8:
		ok = mem.PutByte(addr, byte(v.I64()))
	case wasm.OpI64Store16:
		ok = mem.PutUint16(addr, uint16(v.I64()))
	case wasm.OpI64Store32:
		ok = mem.PutUint32(addr, uint32(v.I64()))
	}
	if !ok {
		return exec.TrapOutOfBoundsMemoryAccess
	}
	m.pc = c.Pos
	return nil
}
