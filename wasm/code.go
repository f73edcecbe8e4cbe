package wasm

// decodeCodeSection decodes the code section's function bodies and
// computes each one's continuation table in the same structured pass, as
// described by the control-flow pre-computation in the decoder design.
func (d *decoder) decodeCodeSection(c *Cursor) ([]Code, error) {
	n, err := c.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	bodies := make([]Code, n)
	conts := make([]ContinuationTable, n)
	for i := range bodies {
		size, err := c.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		bodyStart := c.Pos
		body, err := c.ReadBytes(int(size))
		if err != nil {
			return nil, NewMalformedError(MalformedSectionSizeMismatch, "")
		}
		if c.Pos != bodyStart+int(size) {
			return nil, NewMalformedError(MalformedSectionSizeMismatch, "")
		}

		locals, codeBytes, err := decodeFunctionBody(body)
		if err != nil {
			return nil, err
		}

		var total uint64
		for _, l := range locals {
			total += uint64(l.Count)
		}
		if total > 0xffffffff {
			return nil, NewMalformedError(MalformedTooManyLocals, "")
		}

		cont, err := computeContinuations(codeBytes)
		if err != nil {
			return nil, err
		}

		bodies[i] = Code{Locals: locals, Body: codeBytes, NumLocals: uint32(total)}
		conts[i] = cont
	}
	d.mod.Continuations = append(d.mod.Continuations, conts...)
	return bodies, nil
}

func decodeFunctionBody(body []byte) ([]Local, []byte, error) {
	c := NewCursor(body)
	n, err := c.ReadVarUint32()
	if err != nil {
		return nil, nil, err
	}
	locals := make([]Local, n)
	for i := range locals {
		count, err := c.ReadVarUint32()
		if err != nil {
			return nil, nil, err
		}
		typ, err := c.ReadValueType()
		if err != nil {
			return nil, nil, err
		}
		locals[i] = Local{Count: count, Type: typ}
	}
	return locals, body[c.Pos:], nil
}

// computeContinuations runs a single structured pass over a function
// body's instruction stream, tracking open block/loop/if constructs on an
// auxiliary stack and recording, for every structured opcode, the
// byte-offset branches to it should continue at.
func computeContinuations(code []byte) (ContinuationTable, error) {
	type open struct {
		opcode Opcode
		offset int
	}
	var stack []open
	table := ContinuationTable{LabelEnd: map[int]int{}, IfElse: map[int]int{}}

	c := NewCursor(code)
	for !c.AtEnd() {
		offset := c.Pos
		opByte, err := c.ReadByte()
		if err != nil {
			return table, err
		}
		op := Opcode(opByte)

		switch op {
		case OpBlock, OpLoop, OpIf:
			if _, err := c.ReadBlockType(); err != nil {
				return table, err
			}
			stack = append(stack, open{opcode: op, offset: offset})
			continue
		case OpElse:
			if len(stack) == 0 || stack[len(stack)-1].opcode != OpIf {
				return table, NewMalformedError(MalformedIllegalOpcode, "else without matching if")
			}
			table.IfElse[stack[len(stack)-1].offset] = offset
			// Replace the open construct's opcode so `end` can tell this
			// if had an else.
			stack[len(stack)-1].opcode = OpElse
			continue
		case OpEnd:
			if len(stack) == 0 {
				table.FunctionEnd = offset
				if !c.AtEnd() {
					return table, NewMalformedError(MalformedUnexpectedEnd, "trailing bytes after function body end")
				}
				return table, nil
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			switch top.opcode {
			case OpLoop:
				table.LabelEnd[top.offset] = top.offset
			case OpElse:
				ifOffset := top.offset
				elseOffset := table.IfElse[ifOffset]
				table.LabelEnd[ifOffset] = offset
				table.LabelEnd[elseOffset] = offset
			default: // OpBlock, OpIf (no else)
				table.LabelEnd[top.offset] = offset
			}
			continue
		}

		if err := skipImmediate(c, op); err != nil {
			return table, err
		}
	}
	return table, NewMalformedError(MalformedUnexpectedEnd, "function body missing end")
}

// WalkInstructions calls visit once for every instruction in a decoded
// function body's byte range, in order, passing its offset and opcode.
// Immediates are skipped using the decoder's own immediate-layout
// knowledge, so visit never needs to decode them itself; tooling that
// wants an immediate's value can re-read it from body[offset:] using
// the same Cursor conventions the decoder uses.
func WalkInstructions(body []byte, visit func(offset int, op Opcode) error) error {
	c := NewCursor(body)
	for !c.AtEnd() {
		offset := c.Pos
		opByte, err := c.ReadByte()
		if err != nil {
			return err
		}
		op := Opcode(opByte)
		if err := visit(offset, op); err != nil {
			return err
		}
		if err := skipImmediate(c, op); err != nil {
			return err
		}
	}
	return nil
}

// skipImmediate advances c past the immediate operand(s) of op without
// interpreting their values. It is shared by the control-flow scan (which
// only cares about block/loop/if/else/end) and by constant-expression
// capture.
func skipImmediate(c *Cursor, op Opcode) error {
	switch op {
	case OpBlock, OpLoop, OpIf:
		_, err := c.ReadBlockType()
		return err
	case OpElse, OpEnd, OpUnreachable, OpNop, OpReturn, OpDrop, OpSelect,
		OpI32Eqz, OpI32Eq, OpI32Ne, OpI32LtS, OpI32LtU, OpI32GtS, OpI32GtU, OpI32LeS, OpI32LeU, OpI32GeS, OpI32GeU,
		OpI64Eqz, OpI64Eq, OpI64Ne, OpI64LtS, OpI64LtU, OpI64GtS, OpI64GtU, OpI64LeS, OpI64LeU, OpI64GeS, OpI64GeU,
		OpF32Eq, OpF32Ne, OpF32Lt, OpF32Gt, OpF32Le, OpF32Ge,
		OpF64Eq, OpF64Ne, OpF64Lt, OpF64Gt, OpF64Le, OpF64Ge,
		OpI32Clz, OpI32Ctz, OpI32Popcnt, OpI32Add, OpI32Sub, OpI32Mul, OpI32DivS, OpI32DivU, OpI32RemS, OpI32RemU,
		OpI32And, OpI32Or, OpI32Xor, OpI32Shl, OpI32ShrS, OpI32ShrU, OpI32Rotl, OpI32Rotr,
		OpI64Clz, OpI64Ctz, OpI64Popcnt, OpI64Add, OpI64Sub, OpI64Mul, OpI64DivS, OpI64DivU, OpI64RemS, OpI64RemU,
		OpI64And, OpI64Or, OpI64Xor, OpI64Shl, OpI64ShrS, OpI64ShrU, OpI64Rotl, OpI64Rotr,
		OpF32Abs, OpF32Neg, OpF32Ceil, OpF32Floor, OpF32Trunc, OpF32Nearest, OpF32Sqrt,
		OpF32Add, OpF32Sub, OpF32Mul, OpF32Div, OpF32Min, OpF32Max, OpF32Copysign,
		OpF64Abs, OpF64Neg, OpF64Ceil, OpF64Floor, OpF64Trunc, OpF64Nearest, OpF64Sqrt,
		OpF64Add, OpF64Sub, OpF64Mul, OpF64Div, OpF64Min, OpF64Max, OpF64Copysign,
		OpI32WrapI64, OpI32TruncF32S, OpI32TruncF32U, OpI32TruncF64S, OpI32TruncF64U,
		OpI64ExtendI32S, OpI64ExtendI32U, OpI64TruncF32S, OpI64TruncF32U, OpI64TruncF64S, OpI64TruncF64U,
		OpF32ConvertI32S, OpF32ConvertI32U, OpF32ConvertI64S, OpF32ConvertI64U, OpF32DemoteF64,
		OpF64ConvertI32S, OpF64ConvertI32U, OpF64ConvertI64S, OpF64ConvertI64U, OpF64PromoteF32,
		OpI32ReinterpretF32, OpI64ReinterpretF64, OpF32ReinterpretI32, OpF64ReinterpretI64,
		OpI32Extend8S, OpI32Extend16S, OpI64Extend8S, OpI64Extend16S, OpI64Extend32S,
		OpRefIsNull, OpMemorySize, OpMemoryGrow:
		if op == OpMemorySize || op == OpMemoryGrow {
			_, err := c.ReadByte() // reserved zero byte
			return err
		}
		return nil
	case OpBr, OpBrIf, OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet,
		OpTableGet, OpTableSet, OpCall, OpRefFunc:
		_, err := c.ReadVarUint32()
		return err
	case OpSelectTyped:
		n, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			if _, err := c.ReadValueType(); err != nil {
				return err
			}
		}
		return nil
	case OpRefNull:
		_, err := c.ReadReferenceType()
		return err
	case OpCallIndirect:
		if _, err := c.ReadVarUint32(); err != nil {
			return err
		}
		_, err := c.ReadVarUint32()
		return err
	case OpBrTable:
		n, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		for i := uint32(0); i <= n; i++ {
			if _, err := c.ReadVarUint32(); err != nil {
				return err
			}
		}
		return nil
	case OpI32Const:
		_, err := c.ReadVarint32()
		return err
	case OpI64Const:
		_, err := c.ReadVarint64()
		return err
	case OpF32Const:
		_, err := c.ReadBytes(4)
		return err
	case OpF64Const:
		_, err := c.ReadBytes(8)
		return err
	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store,
		OpI32Store8, OpI32Store16, OpI64Store8, OpI64Store16, OpI64Store32:
		if _, err := c.ReadVarUint32(); err != nil { // align
			return err
		}
		_, err := c.ReadVarUint32() // offset
		return err
	case OpPrefixFC:
		sub, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		return skipPrefixImmediate(c, PrefixOp(sub))
	default:
		return NewMalformedError(MalformedIllegalOpcode, "")
	}
}

func skipPrefixImmediate(c *Cursor, op PrefixOp) error {
	switch op {
	case OpI32TruncSatF32S, OpI32TruncSatF32U, OpI32TruncSatF64S, OpI32TruncSatF64U,
		OpI64TruncSatF32S, OpI64TruncSatF32U, OpI64TruncSatF64S, OpI64TruncSatF64U:
		return nil
	case OpMemoryInit:
		if _, err := c.ReadVarUint32(); err != nil {
			return err
		}
		_, err := c.ReadByte()
		return err
	case OpDataDrop:
		_, err := c.ReadVarUint32()
		return err
	case OpMemoryCopy:
		if _, err := c.ReadByte(); err != nil {
			return err
		}
		_, err := c.ReadByte()
		return err
	case OpMemoryFill:
		_, err := c.ReadByte()
		return err
	case OpTableInit:
		if _, err := c.ReadVarUint32(); err != nil {
			return err
		}
		_, err := c.ReadVarUint32()
		return err
	case OpElemDrop:
		_, err := c.ReadVarUint32()
		return err
	case OpTableCopy:
		if _, err := c.ReadVarUint32(); err != nil {
			return err
		}
		_, err := c.ReadVarUint32()
		return err
	case OpTableGrow, OpTableFill:
		_, err := c.ReadVarUint32()
		return err
	case OpTableSize:
		_, err := c.ReadVarUint32()
		return err
	default:
		return NewMalformedError(MalformedIllegalOpcode, "")
	}
}
