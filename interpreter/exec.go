package interpreter

import (
	"github.com/wasmkit/wasmkit/exec"
	"github.com/wasmkit/wasmkit/wasm"
)

// run drives m's dispatch loop until its root frame returns. It never
// recurses into itself for a `call`/`call_indirect` to a Wasm-defined
// function: those push a frame onto m and the loop simply keeps going
// with m.fn/m.cont/m.pc repointed at the callee. Only a call that
// crosses into a host function, or that host function calling back
// into Wasm, involves a nested Go call.
func run(m *Machine) error {
	for {
		offset := m.pc
		c := wasm.NewCursor(m.fn.code.Body)
		c.Pos = offset
		opByte, err := c.ReadByte()
		if err != nil {
			return err
		}
		op := wasm.Opcode(opByte)

		switch op {
		case wasm.OpUnreachable:
			return exec.TrapUnreachable

		case wasm.OpNop:
			m.pc = c.Pos

		case wasm.OpBlock, wasm.OpLoop, wasm.OpIf:
			bt, err := c.ReadBlockType()
			if err != nil {
				return err
			}
			nIn, nOut := blockArity(m.inst.module(), bt)
			cont := m.cont.LabelEnd[offset]
			switch op {
			case wasm.OpLoop:
				m.pushLabel(nIn, cont, true)
				m.pc = c.Pos
			case wasm.OpBlock:
				m.pushLabel(nOut, cont, false)
				m.pc = c.Pos
			default: // OpIf
				cond := m.popValue()
				m.pushLabel(nOut, cont, false)
				if cond.I32() != 0 {
					m.pc = c.Pos
				} else if elseOff, ok := m.cont.IfElse[offset]; ok {
					m.pc = elseOff + 1
				} else {
					m.pc = cont
				}
			}

		case wasm.OpElse:
			// Reached by falling off the end of a taken `then` branch.
			// The current label is the `if`'s own, whose continuation
			// is that `if`'s `end` offset.
			m.pc = m.stack[m.curLabel].continuation

		case wasm.OpEnd:
			if offset == m.cont.FunctionEnd {
				if m.popFrame() {
					return nil
				}
			} else {
				m.popLabel()
				m.pc = c.Pos
			}

		case wasm.OpBr:
			depth, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			if !m.branch(int(depth)) {
				return exec.TrapLabelMismatch
			}

		case wasm.OpBrIf:
			depth, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			cond := m.popValue()
			if cond.I32() != 0 {
				if !m.branch(int(depth)) {
					return exec.TrapLabelMismatch
				}
			} else {
				m.pc = c.Pos
			}

		case wasm.OpBrTable:
			n, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			targets := make([]uint32, n)
			for i := range targets {
				targets[i], err = c.ReadVarUint32()
				if err != nil {
					return err
				}
			}
			def, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			idx := uint32(m.popValue().I32())
			depth := def
			if idx < n {
				depth = targets[idx]
			}
			if !m.branch(int(depth)) {
				return exec.TrapLabelMismatch
			}

		case wasm.OpReturn:
			if err := m.doReturn(); err != nil {
				return err
			}

		case wasm.OpCall:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			m.pc = c.Pos
			if err := m.call(idx); err != nil {
				return err
			}

		case wasm.OpCallIndirect:
			typeIdx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			tableIdx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			m.pc = c.Pos
			if err := m.callIndirect(typeIdx, tableIdx); err != nil {
				return err
			}

		case wasm.OpDrop:
			m.popValue()
			m.pc = c.Pos

		case wasm.OpSelect:
			cond := m.popValue()
			b := m.popValue()
			a := m.popValue()
			if cond.I32() != 0 {
				m.pushValue(a)
			} else {
				m.pushValue(b)
			}
			m.pc = c.Pos

		case wasm.OpSelectTyped:
			n, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			for i := uint32(0); i < n; i++ {
				if _, err := c.ReadValueType(); err != nil {
					return err
				}
			}
			cond := m.popValue()
			b := m.popValue()
			a := m.popValue()
			if cond.I32() != 0 {
				m.pushValue(a)
			} else {
				m.pushValue(b)
			}
			m.pc = c.Pos

		case wasm.OpLocalGet:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			m.pushValue(m.locals()[idx])
			m.pc = c.Pos

		case wasm.OpLocalSet:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			m.locals()[idx] = m.popValue()
			m.pc = c.Pos

		case wasm.OpLocalTee:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			v := m.popValue()
			m.locals()[idx] = v
			m.pushValue(v)
			m.pc = c.Pos

		case wasm.OpGlobalGet:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			m.pushValue(m.inst.globals[idx].Get())
			m.pc = c.Pos

		case wasm.OpGlobalSet:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			m.inst.globals[idx].Set(m.popValue())
			m.pc = c.Pos

		case wasm.OpTableGet:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			i := uint32(m.popValue().I32())
			v, ok := m.inst.tables[idx].Get(i)
			if !ok {
				return exec.TrapOutOfBoundsTableAccess
			}
			m.pushValue(v)
			m.pc = c.Pos

		case wasm.OpTableSet:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			v := m.popValue()
			i := uint32(m.popValue().I32())
			if !m.inst.tables[idx].Set(i, v) {
				return exec.TrapOutOfBoundsTableAccess
			}
			m.pc = c.Pos

		case wasm.OpRefNull:
			t, err := c.ReadReferenceType()
			if err != nil {
				return err
			}
			m.pushValue(exec.NullRef(t))
			m.pc = c.Pos

		case wasm.OpRefIsNull:
			v := m.popValue()
			m.pushValue(boolv(v.IsNullRef()))
			m.pc = c.Pos

		case wasm.OpRefFunc:
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			m.pushValue(exec.NewFuncRef(m.inst.funcs[idx]))
			m.pc = c.Pos

		case wasm.OpMemorySize:
			if _, err := c.ReadByte(); err != nil { // reserved
				return err
			}
			m.pushValue(i32v(int32(m.inst.memories[0].Size())))
			m.pc = c.Pos

		case wasm.OpMemoryGrow:
			if _, err := c.ReadByte(); err != nil { // reserved
				return err
			}
			delta := uint32(m.popValue().I32())
			prev, ok := m.inst.memories[0].Grow(delta)
			if !ok {
				m.pushValue(i32v(-1))
			} else {
				m.pushValue(i32v(int32(prev)))
			}
			m.pc = c.Pos

		case wasm.OpI32Const:
			v, err := c.ReadVarint32()
			if err != nil {
				return err
			}
			m.pushValue(i32v(v))
			m.pc = c.Pos

		case wasm.OpI64Const:
			v, err := c.ReadVarint64()
			if err != nil {
				return err
			}
			m.pushValue(i64v(v))
			m.pc = c.Pos

		case wasm.OpF32Const:
			b, err := c.ReadBytes(4)
			if err != nil {
				return err
			}
			m.pushValue(exec.Value{Type: wasm.ValueTypeF32, Num: uint64(leU32(b))})
			m.pc = c.Pos

		case wasm.OpF64Const:
			b, err := c.ReadBytes(8)
			if err != nil {
				return err
			}
			m.pushValue(exec.Value{Type: wasm.ValueTypeF64, Num: leU64(b)})
			m.pc = c.Pos

		case wasm.OpPrefixFC:
			if err := m.stepPrefix(c); err != nil {
				return err
			}

		default:
			if err := m.stepMemAccess(c, op); err == errNotMemAccess {
				if err := m.stepNumeric(op); err != nil {
					return err
				}
				m.pc = c.Pos
			} else if err != nil {
				return err
			} else {
				m.pc = c.Pos
			}
		}
	}
}

func blockArity(mod *wasm.Module, bt wasm.BlockType) (nIn, nOut int) {
	if bt.IsEmpty() {
		return 0, 0
	}
	if bt.IsValueType() {
		return 0, 1
	}
	ft := mod.Types[bt.TypeIndex()]
	return len(ft.Params), len(ft.Results)
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

// stepNumeric dispatches the fixed-arity numeric instructions that
// carry no immediate, via the lookup tables numeric.go builds.
func (m *Machine) stepNumeric(op wasm.Opcode) error {
	if f, ok := binaryOps[op]; ok {
		b := m.popValue()
		a := m.popValue()
		m.pushValue(f(a, b))
		return nil
	}
	if f, ok := trappingBinaryOps[op]; ok {
		b := m.popValue()
		a := m.popValue()
		v, err := f(a, b)
		if err != nil {
			return err
		}
		m.pushValue(v)
		return nil
	}
	if f, ok := unaryOps[op]; ok {
		m.pushValue(f(m.popValue()))
		return nil
	}
	if f, ok := truncatingOps[op]; ok {
		v, err := f(m.popValue())
		if err != nil {
			return err
		}
		m.pushValue(v)
		return nil
	}
	panic("interpreter: unhandled opcode")
}
