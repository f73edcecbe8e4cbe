package wasm

import "fmt"

// SectionID identifies a section of the binary format.
type SectionID byte

const (
	SectionCustom    SectionID = 0
	SectionType      SectionID = 1
	SectionImport    SectionID = 2
	SectionFunction  SectionID = 3
	SectionTable     SectionID = 4
	SectionMemory    SectionID = 5
	SectionGlobal    SectionID = 6
	SectionExport    SectionID = 7
	SectionStart     SectionID = 8
	SectionElement   SectionID = 9
	SectionCode      SectionID = 10
	SectionData      SectionID = 11
	SectionDataCount SectionID = 12
)

// Decode parses a binary-format module. It returns a *MalformedError if
// the byte stream does not conform to the binary format, or a
// *DuplicateExportError if two exports share a name. It does not
// type-check the module; validate.Validate does that as a second pass.
func Decode(data []byte) (*Module, error) {
	c := NewCursor(data)

	magic, err := c.ReadU32LE()
	if err != nil {
		return nil, NewMalformedError(MalformedMagicSignature, "")
	}
	if magic != Magic {
		return nil, NewMalformedError(MalformedMagicSignature, "")
	}
	version, err := c.ReadU32LE()
	if err != nil || version != Version {
		return nil, NewMalformedError(MalformedUnsupportedWasmVersion, "")
	}

	d := &decoder{mod: &Module{DeclaredFuncRefs: map[uint32]bool{}}}
	if err := d.decodeSections(c); err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return d.mod, nil
}

type decoder struct {
	mod *Module

	sawDataCount bool
	dataCountVal uint32

	lastOrder SectionID
}

// canonical order of non-custom sections; a section whose ID sorts at or
// before the previously seen non-custom section is out of order, except
// that the data-count section is explicitly slotted between element and
// code per the bulk-memory proposal.
var sectionOrder = map[SectionID]int{
	SectionType: 0, SectionImport: 1, SectionFunction: 2, SectionTable: 3,
	SectionMemory: 4, SectionGlobal: 5, SectionExport: 6, SectionStart: 7,
	SectionElement: 8, SectionDataCount: 9, SectionCode: 10, SectionData: 11,
}

func (d *decoder) decodeSections(c *Cursor) error {
	lastRank := -1
	var funcTypeIndices []uint32
	var codeBodies []Code

	for !c.AtEnd() {
		id, err := c.ReadByte()
		if err != nil {
			return err
		}
		size, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		payload, err := c.ReadBytes(int(size))
		if err != nil {
			return NewMalformedError(MalformedUnexpectedEnd, "")
		}

		sid := SectionID(id)
		if sid != SectionCustom {
			rank, ok := sectionOrder[sid]
			if !ok {
				return NewMalformedError(MalformedSectionId, "")
			}
			if rank <= lastRank {
				return NewMalformedError(MalformedSectionOrder, "")
			}
			lastRank = rank
		}

		pc := NewCursor(payload)
		switch sid {
		case SectionCustom:
			name, err := pc.ReadName()
			if err != nil {
				return err
			}
			d.mod.Customs = append(d.mod.Customs, CustomSection{Name: name, Data: payload[pc.Pos:]})
		case SectionType:
			if err := d.decodeTypeSection(pc); err != nil {
				return err
			}
		case SectionImport:
			if err := d.decodeImportSection(pc); err != nil {
				return err
			}
		case SectionFunction:
			n, err := pc.ReadVarUint32()
			if err != nil {
				return err
			}
			funcTypeIndices = make([]uint32, n)
			for i := range funcTypeIndices {
				idx, err := pc.ReadVarUint32()
				if err != nil {
					return err
				}
				funcTypeIndices[i] = idx
			}
		case SectionTable:
			if err := d.decodeTableSection(pc); err != nil {
				return err
			}
		case SectionMemory:
			if err := d.decodeMemorySection(pc); err != nil {
				return err
			}
		case SectionGlobal:
			if err := d.decodeGlobalSection(pc); err != nil {
				return err
			}
		case SectionExport:
			if err := d.decodeExportSection(pc); err != nil {
				return err
			}
		case SectionStart:
			if d.mod.HasStart {
				return NewMalformedError(MalformedMultipleStartSections, "")
			}
			idx, err := pc.ReadVarUint32()
			if err != nil {
				return err
			}
			d.mod.HasStart, d.mod.Start = true, idx
		case SectionElement:
			if err := d.decodeElementSection(pc); err != nil {
				return err
			}
		case SectionDataCount:
			n, err := pc.ReadVarUint32()
			if err != nil {
				return err
			}
			d.sawDataCount, d.dataCountVal = true, n
			d.mod.HasDataCount, d.mod.DataCount = true, n
		case SectionCode:
			bodies, err := d.decodeCodeSection(pc)
			if err != nil {
				return err
			}
			codeBodies = bodies
		case SectionData:
			if err := d.decodeDataSection(pc); err != nil {
				return err
			}
		}
	}

	if len(funcTypeIndices) != len(codeBodies) {
		return NewMalformedError(MalformedFunctionCodeSectionMismatch, "")
	}
	if d.sawDataCount && int(d.dataCountVal) != len(d.mod.Data) {
		return NewMalformedError(MalformedDataCountMismatch, "")
	}

	for i, typeIdx := range funcTypeIndices {
		if int(typeIdx) >= len(d.mod.Types) {
			return NewMalformedError(MalformedUnexpectedEnd, fmt.Sprintf("type index %d out of range", typeIdx))
		}
		d.mod.Funcs = append(d.mod.Funcs, Func{
			Type:      d.mod.Types[typeIdx],
			TypeIndex: typeIdx,
			Code:      codeBodies[i],
		})
	}

	return nil
}

func (d *decoder) decodeTypeSection(c *Cursor) error {
	n, err := c.ReadVarUint32()
	if err != nil {
		return err
	}
	d.mod.Types = make([]FuncType, n)
	for i := range d.mod.Types {
		sentinel, err := c.ReadByte()
		if err != nil {
			return err
		}
		if sentinel != 0x60 {
			return NewMalformedError(MalformedTypeSentinel, "")
		}
		np, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		params := make([]ValueType, np)
		for j := range params {
			vt, err := c.ReadValueType()
			if err != nil {
				return err
			}
			params[j] = vt
		}
		nr, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		results := make([]ValueType, nr)
		for j := range results {
			vt, err := c.ReadValueType()
			if err != nil {
				return err
			}
			results[j] = vt
		}
		d.mod.Types[i] = FuncType{Params: params, Results: results}
	}
	return nil
}

func (d *decoder) decodeImportSection(c *Cursor) error {
	n, err := c.ReadVarUint32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		mod, err := c.ReadName()
		if err != nil {
			return err
		}
		name, err := c.ReadName()
		if err != nil {
			return err
		}
		kindByte, err := c.ReadByte()
		if err != nil {
			return err
		}
		imp := Import{Module: mod, Name: name}
		switch ExternalKind(kindByte) {
		case ExternalFunction:
			imp.Kind = ExternalFunction
			idx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			imp.FuncTypeIndex = idx
			d.mod.Funcs = append(d.mod.Funcs, Func{TypeIndex: idx, IsImport: true, Import: imp})
			d.mod.DeclaredFuncRefs[uint32(len(d.mod.Funcs)-1)] = true
		case ExternalTable:
			imp.Kind = ExternalTable
			tt, err := decodeTableType(c)
			if err != nil {
				return err
			}
			imp.Table = tt
			d.mod.Tables = append(d.mod.Tables, tt)
			d.mod.TableImportCount++
		case ExternalMemory:
			imp.Kind = ExternalMemory
			mt, err := decodeMemoryType(c)
			if err != nil {
				return err
			}
			imp.Memory = mt
			d.mod.Memories = append(d.mod.Memories, mt)
			d.mod.MemoryImportCount++
		case ExternalGlobal:
			imp.Kind = ExternalGlobal
			gt, err := decodeGlobalType(c)
			if err != nil {
				return err
			}
			imp.Global = gt
			d.mod.Globals = append(d.mod.Globals, GlobalDef{Type: gt})
			d.mod.GlobalImportCount++
		default:
			return NewMalformedError(MalformedInvalidImport, "")
		}
		d.mod.Imports = append(d.mod.Imports, imp)
	}
	// Fix up type references now that the function index space is final.
	for i := range d.mod.Funcs {
		f := &d.mod.Funcs[i]
		if f.IsImport && int(f.TypeIndex) < len(d.mod.Types) {
			f.Type = d.mod.Types[f.TypeIndex]
		}
	}
	return nil
}

func decodeTableType(c *Cursor) (TableType, error) {
	elemType, err := c.ReadReferenceType()
	if err != nil {
		return TableType{}, err
	}
	limits, err := c.ReadLimits()
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemType: elemType, Limits: limits}, nil
}

func decodeMemoryType(c *Cursor) (MemoryType, error) {
	limits, err := c.ReadLimits()
	if err != nil {
		return MemoryType{}, err
	}
	return MemoryType{Limits: limits}, nil
}

func decodeGlobalType(c *Cursor) (GlobalType, error) {
	vt, err := c.ReadValueType()
	if err != nil {
		return GlobalType{}, err
	}
	mb, err := c.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	if mb > 1 {
		return GlobalType{}, NewMalformedError(MalformedMutability, "")
	}
	return GlobalType{Type: vt, Mutable: mb == 1}, nil
}

func (d *decoder) decodeTableSection(c *Cursor) error {
	n, err := c.ReadVarUint32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		tt, err := decodeTableType(c)
		if err != nil {
			return err
		}
		d.mod.Tables = append(d.mod.Tables, tt)
	}
	return nil
}

func (d *decoder) decodeMemorySection(c *Cursor) error {
	n, err := c.ReadVarUint32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		mt, err := decodeMemoryType(c)
		if err != nil {
			return err
		}
		d.mod.Memories = append(d.mod.Memories, mt)
	}
	return nil
}

func (d *decoder) decodeGlobalSection(c *Cursor) error {
	n, err := c.ReadVarUint32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		gt, err := decodeGlobalType(c)
		if err != nil {
			return err
		}
		init, err := decodeConstExpr(c)
		if err != nil {
			return err
		}
		d.mod.Globals = append(d.mod.Globals, GlobalDef{Type: gt, Init: init})
	}
	return nil
}

func (d *decoder) decodeExportSection(c *Cursor) error {
	n, err := c.ReadVarUint32()
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for i := uint32(0); i < n; i++ {
		name, err := c.ReadName()
		if err != nil {
			return err
		}
		kindByte, err := c.ReadByte()
		if err != nil {
			return err
		}
		idx, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		if seen[name] {
			return &DuplicateExportError{Name: name}
		}
		seen[name] = true
		kind := ExternalKind(kindByte)
		d.mod.Exports = append(d.mod.Exports, Export{Name: name, Kind: kind, Index: idx})
		if kind == ExternalFunction {
			d.mod.DeclaredFuncRefs[idx] = true
		}
	}
	return nil
}

// DuplicateExportError is surfaced during decoding but is semantically a
// validation failure (ValidationDuplicateExportName); callers that need
// the validate-subpackage discriminant should treat it as such.
type DuplicateExportError struct{ Name string }

func (e *DuplicateExportError) Error() string { return "duplicate export name" }

func (d *decoder) decodeElementSection(c *Cursor) error {
	n, err := c.ReadVarUint32()
	if err != nil {
		return err
	}
	d.mod.Elements = make([]ElementSegment, n)
	for i := range d.mod.Elements {
		flags, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		seg := ElementSegment{Type: ValueTypeFuncRef}
		switch flags {
		case 0:
			seg.Mode = ElementModeActive
			off, err := decodeConstExpr(c)
			if err != nil {
				return err
			}
			seg.Offset = off
			idxs, err := decodeFuncIndexVector(c)
			if err != nil {
				return err
			}
			seg.Init = make([]ConstExpr, len(idxs))
			for j, idx := range idxs {
				seg.Init[j] = funcRefConstExpr(idx)
				d.mod.DeclaredFuncRefs[idx] = true
			}
		case 1:
			seg.Mode = ElementModePassive
			if _, err := c.ReadByte(); err != nil { // elemkind, must be 0
				return err
			}
			idxs, err := decodeFuncIndexVector(c)
			if err != nil {
				return err
			}
			seg.Init = make([]ConstExpr, len(idxs))
			for j, idx := range idxs {
				seg.Init[j] = funcRefConstExpr(idx)
			}
		case 2:
			seg.Mode = ElementModeActive
			tidx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			seg.TableIndex = tidx
			off, err := decodeConstExpr(c)
			if err != nil {
				return err
			}
			seg.Offset = off
			if _, err := c.ReadByte(); err != nil {
				return err
			}
			idxs, err := decodeFuncIndexVector(c)
			if err != nil {
				return err
			}
			seg.Init = make([]ConstExpr, len(idxs))
			for j, idx := range idxs {
				seg.Init[j] = funcRefConstExpr(idx)
				d.mod.DeclaredFuncRefs[idx] = true
			}
		case 3:
			seg.Mode = ElementModeDeclarative
			if _, err := c.ReadByte(); err != nil {
				return err
			}
			idxs, err := decodeFuncIndexVector(c)
			if err != nil {
				return err
			}
			seg.Init = make([]ConstExpr, len(idxs))
			for j, idx := range idxs {
				seg.Init[j] = funcRefConstExpr(idx)
				d.mod.DeclaredFuncRefs[idx] = true
			}
		case 4:
			seg.Mode = ElementModeActive
			off, err := decodeConstExpr(c)
			if err != nil {
				return err
			}
			seg.Offset = off
			seg.Init, err = decodeExprVector(c)
			if err != nil {
				return err
			}
		case 5:
			seg.Mode = ElementModePassive
			rt, err := c.ReadReferenceType()
			if err != nil {
				return err
			}
			seg.Type = rt
			seg.Init, err = decodeExprVector(c)
			if err != nil {
				return err
			}
		case 6:
			seg.Mode = ElementModeActive
			tidx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			seg.TableIndex = tidx
			off, err := decodeConstExpr(c)
			if err != nil {
				return err
			}
			seg.Offset = off
			rt, err := c.ReadReferenceType()
			if err != nil {
				return err
			}
			seg.Type = rt
			seg.Init, err = decodeExprVector(c)
			if err != nil {
				return err
			}
		case 7:
			seg.Mode = ElementModeDeclarative
			rt, err := c.ReadReferenceType()
			if err != nil {
				return err
			}
			seg.Type = rt
			seg.Init, err = decodeExprVector(c)
			if err != nil {
				return err
			}
		default:
			return NewMalformedError(MalformedElementType, "")
		}
		if seg.Mode != ElementModePassive {
			for _, e := range seg.Init {
				if len(e.Code) > 0 && Opcode(e.Code[0]) == OpRefFunc {
					if idx, err := NewCursor(e.Code[1:]).ReadVarUint32(); err == nil {
						d.mod.DeclaredFuncRefs[idx] = true
					}
				}
			}
		}
		d.mod.Elements[i] = seg
	}
	return nil
}

func decodeFuncIndexVector(c *Cursor) ([]uint32, error) {
	n, err := c.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	idxs := make([]uint32, n)
	for i := range idxs {
		idx, err := c.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}
	return idxs, nil
}

func decodeExprVector(c *Cursor) ([]ConstExpr, error) {
	n, err := c.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	exprs := make([]ConstExpr, n)
	for i := range exprs {
		e, err := decodeConstExpr(c)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return exprs, nil
}

func funcRefConstExpr(idx uint32) ConstExpr {
	c := []byte{byte(OpRefFunc)}
	var buf [5]byte
	n := 0
	v := idx
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if v == 0 {
			break
		}
	}
	c = append(c, buf[:n]...)
	c = append(c, byte(OpEnd))
	return ConstExpr{Code: c}
}

func (d *decoder) decodeDataSection(c *Cursor) error {
	n, err := c.ReadVarUint32()
	if err != nil {
		return err
	}
	d.mod.Data = make([]DataSegment, n)
	for i := range d.mod.Data {
		flags, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		seg := DataSegment{}
		switch flags {
		case 0:
			seg.Mode = DataModeActive
			off, err := decodeConstExpr(c)
			if err != nil {
				return err
			}
			seg.Offset = off
		case 1:
			seg.Mode = DataModePassive
		case 2:
			seg.Mode = DataModeActive
			midx, err := c.ReadVarUint32()
			if err != nil {
				return err
			}
			seg.MemoryIndex = midx
			off, err := decodeConstExpr(c)
			if err != nil {
				return err
			}
			seg.Offset = off
		default:
			return NewMalformedError(MalformedDataType, "")
		}
		sz, err := c.ReadVarUint32()
		if err != nil {
			return err
		}
		b, err := c.ReadBytes(int(sz))
		if err != nil {
			return err
		}
		seg.Init = append([]byte(nil), b...)
		d.mod.Data[i] = seg
	}
	return nil
}

// decodeConstExpr captures the raw bytes of a constant expression,
// relying on the same structured scan used for function bodies to find
// the terminating end. It does not evaluate or validate the expression.
func decodeConstExpr(c *Cursor) (ConstExpr, error) {
	start := c.Pos
	depth := 0
	for {
		op, err := c.ReadByte()
		if err != nil {
			return ConstExpr{}, err
		}
		if err := skipImmediate(c, Opcode(op)); err != nil {
			return ConstExpr{}, err
		}
		switch Opcode(op) {
		case OpBlock, OpLoop, OpIf:
			depth++
		case OpEnd:
			if depth == 0 {
				return ConstExpr{Code: append([]byte(nil), c.Data[start:c.Pos]...)}, nil
			}
			depth--
		}
	}
}

func (d *decoder) finish() error {
	if d.mod.Memories != nil && len(d.mod.Memories) > 1 {
		// Multiple memories is a validation error, not malformed; leave it
		// for the validator to report precisely.
	}
	return nil
}
