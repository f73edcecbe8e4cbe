package wasm

import "fmt"

// ValueType is one of the value types recognized by the binary format.
type ValueType byte

const (
	ValueTypeI32       ValueType = 0x7f
	ValueTypeI64       ValueType = 0x7e
	ValueTypeF32       ValueType = 0x7d
	ValueTypeF64       ValueType = 0x7c
	ValueTypeFuncRef   ValueType = 0x70
	ValueTypeExternRef ValueType = 0x6f
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeFuncRef:
		return "funcref"
	case ValueTypeExternRef:
		return "externref"
	default:
		return fmt.Sprintf("unknown(%#x)", byte(t))
	}
}

// IsReferenceType reports whether t is funcref or externref.
func (t ValueType) IsReferenceType() bool {
	return t == ValueTypeFuncRef || t == ValueTypeExternRef
}

// IsNumericType reports whether t is one of the four numeric value types.
func (t ValueType) IsNumericType() bool {
	switch t {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64:
		return true
	default:
		return false
	}
}

// FuncType is an ordered sequence of parameter types and an ordered
// sequence of result types.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// Equal reports whether ft and other declare identical parameter and
// result sequences.
func (ft *FuncType) Equal(other *FuncType) bool {
	if other == nil {
		return false
	}
	if len(ft.Params) != len(other.Params) || len(ft.Results) != len(other.Results) {
		return false
	}
	for i, p := range ft.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, r := range ft.Results {
		if r != other.Results[i] {
			return false
		}
	}
	return true
}

func (ft *FuncType) String() string {
	return fmt.Sprintf("%v -> %v", ft.Params, ft.Results)
}

// Limits bounds the size of a table or memory: a minimum count and an
// optional maximum.
type Limits struct {
	Min    uint32
	Max    uint32
	HasMax bool
}

// ExternalKind identifies the kind of entity an import or export refers to.
type ExternalKind byte

const (
	ExternalFunction ExternalKind = 0x00
	ExternalTable    ExternalKind = 0x01
	ExternalMemory   ExternalKind = 0x02
	ExternalGlobal   ExternalKind = 0x03
)

func (k ExternalKind) String() string {
	switch k {
	case ExternalFunction:
		return "func"
	case ExternalTable:
		return "table"
	case ExternalMemory:
		return "memory"
	case ExternalGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// GlobalType describes the value type and mutability of a global.
type GlobalType struct {
	Type    ValueType
	Mutable bool
}

// TableType describes the element type and size limits of a table.
type TableType struct {
	ElemType ValueType
	Limits   Limits
}

// MemoryType describes the size limits of a memory, measured in 64KiB pages.
type MemoryType struct {
	Limits Limits
}

// Import describes a single entry of the import section.
type Import struct {
	Module string
	Name   string
	Kind   ExternalKind

	FuncTypeIndex uint32
	Table         TableType
	Memory        MemoryType
	Global        GlobalType
}

// Export describes a single entry of the export section.
type Export struct {
	Name  string
	Kind  ExternalKind
	Index uint32
}

// ConstExpr is a decoded constant expression: a short sequence of
// constant-producing instructions followed by end, stored as raw bytecode
// so that it can be evaluated with the ordinary instruction decoder.
type ConstExpr struct {
	Code []byte
}

// GlobalDef describes a module-defined (non-imported) global.
type GlobalDef struct {
	Type GlobalType
	Init ConstExpr
}

// ElementMode identifies how an element segment is applied.
type ElementMode byte

const (
	ElementModeActive ElementMode = iota
	ElementModePassive
	ElementModeDeclarative
)

// ElementSegment is a decoded element segment.
type ElementSegment struct {
	Type       ValueType
	Mode       ElementMode
	TableIndex uint32
	Offset     ConstExpr
	Init       []ConstExpr
}

// DataMode identifies how a data segment is applied.
type DataMode byte

const (
	DataModeActive DataMode = iota
	DataModePassive
)

// DataSegment is a decoded data segment.
type DataSegment struct {
	Mode        DataMode
	MemoryIndex uint32
	Offset      ConstExpr
	Init        []byte
}

// Local describes one run of same-typed local declarations in a function
// body, as encoded (count, type) pairs.
type Local struct {
	Count uint32
	Type  ValueType
}

// Code is a decoded function body: its local declarations and the byte
// range of its instruction stream within the module's code blob.
type Code struct {
	Locals []Local
	Body   []byte

	// NumLocals is the total number of locals declared by Locals, i.e. the
	// sum of each run's Count, not counting parameters.
	NumLocals uint32
}
