package interpreter

import (
	"github.com/wasmkit/wasmkit/exec"
	"github.com/wasmkit/wasmkit/wasm"
)

// stepPrefix executes a 0xfc-prefixed instruction: a saturating
// conversion, or one of the bulk-memory/reference-types segment
// operations.
func (m *Machine) stepPrefix(c *wasm.Cursor) error {
	sub, err := c.ReadVarUint32()
	if err != nil {
		return err
	}
	op := wasm.PrefixOp(sub)

	if f, ok := saturatingOps[op]; ok {
		m.pushValue(f(m.popValue()))
		m.pc = c.Pos
		return nil
	}

	switch op {
	case wasm.OpMemoryInit:
		dataIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if _, err := c.ReadByte(); err != nil { // reserved memory index
			return err
		}
		n := uint32(m.popValue().I32())
		s := uint32(m.popValue().I32())
		d := uint32(m.popValue().I32())
		if m.inst.dataDropped[dataIdx] {
			if n != 0 {
				return exec.TrapOutOfBoundsMemoryAccess
			}
		} else if !m.inst.memories[0].Init(uint64(d), m.inst.def.mod.Data[dataIdx].Init, uint64(s), uint64(n)) {
			return exec.TrapOutOfBoundsMemoryAccess
		}

	case wasm.OpDataDrop:
		dataIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		m.inst.dataDropped[dataIdx] = true

	case wasm.OpMemoryCopy:
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		n := uint32(m.popValue().I32())
		s := uint32(m.popValue().I32())
		d := uint32(m.popValue().I32())
		if !m.inst.memories[0].Copy(uint64(d), uint64(s), uint64(n)) {
			return exec.TrapOutOfBoundsMemoryAccess
		}

	case wasm.OpMemoryFill:
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		n := uint32(m.popValue().I32())
		v := byte(m.popValue().I32())
		d := uint32(m.popValue().I32())
		if !m.inst.memories[0].Fill(uint64(d), v, uint64(n)) {
			return exec.TrapOutOfBoundsMemoryAccess
		}

	case wasm.OpTableInit:
		elemIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		tableIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		n := uint32(m.popValue().I32())
		s := uint32(m.popValue().I32())
		d := uint32(m.popValue().I32())
		if m.inst.elemDropped[elemIdx] {
			if n != 0 {
				return exec.TrapOutOfBoundsTableAccess
			}
		} else if !m.inst.tables[tableIdx].Init(d, m.inst.elemValues[elemIdx], s, n) {
			return exec.TrapOutOfBoundsTableAccess
		}

	case wasm.OpElemDrop:
		elemIdx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		m.inst.elemDropped[elemIdx] = true

	case wasm.OpTableCopy:
		dst, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		src, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		n := uint32(m.popValue().I32())
		s := uint32(m.popValue().I32())
		d := uint32(m.popValue().I32())
		if dst == src {
			if !m.inst.tables[dst].Copy(d, s, n) {
				return exec.TrapOutOfBoundsTableAccess
			}
		} else {
			vals := make([]exec.Value, n)
			for i := uint32(0); i < n; i++ {
				v, ok := m.inst.tables[src].Get(s + i)
				if !ok {
					return exec.TrapOutOfBoundsTableAccess
				}
				vals[i] = v
			}
			if !m.inst.tables[dst].Init(d, vals, 0, n) {
				return exec.TrapOutOfBoundsTableAccess
			}
		}

	case wasm.OpTableGrow:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		delta := uint32(m.popValue().I32())
		init := m.popValue()
		prev, ok := m.inst.tables[idx].Grow(delta, init)
		if !ok {
			m.pushValue(i32v(-1))
		} else {
			m.pushValue(i32v(int32(prev)))
		}

	case wasm.OpTableSize:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		m.pushValue(i32v(int32(m.inst.tables[idx].Size())))

	case wasm.OpTableFill:
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		n := uint32(m.popValue().I32())
		v := m.popValue()
		i := uint32(m.popValue().I32())
		if !m.inst.tables[idx].Fill(i, v, n) {
			return exec.TrapOutOfBoundsTableAccess
		}
	}

	m.pc = c.Pos
	return nil
}
