// Package wasm decodes the WebAssembly 1.0 binary format (with the
// mutable-globals, sign-extension, multi-value, non-trapping
// float-to-int, bulk-memory, and reference-types proposals) into an
// in-memory Module, and pre-computes the branch-continuation metadata the
// interpreter needs to execute it.
package wasm

const (
	Magic   uint32 = 0x6d736100
	Version uint32 = 0x1

	PageSize      = 65536
	MaxMemoryPages = 65536
)

// Func is an entry of the function index space: either an import
// referencing a host- or module-provided definition, or a function with a
// body decoded from the code section.
type Func struct {
	Type      FuncType
	TypeIndex uint32

	// IsImport is true when this function has no Code: its identity is an
	// (Import.Module, Import.Name) pair resolved at instantiation.
	IsImport bool
	Import   Import

	Code Code
}

// ContinuationTable is the control-flow metadata the decoder precomputes
// for a single function body, keyed by the byte offset (relative to the
// start of Code.Body) of a structured instruction.
type ContinuationTable struct {
	// FunctionEnd is the offset of the function body's outer `end`.
	FunctionEnd int

	// LabelEnd maps the offset of a block/loop/if to the offset its
	// branches continue at: the matching `end` for block/if, or the
	// instruction's own offset for loop (branches restart the loop).
	LabelEnd map[int]int

	// IfElse maps the offset of an `if` that has a matching `else` to the
	// offset of that `else`.
	IfElse map[int]int
}

// Module is the decoded, immutable representation of a WebAssembly
// module: the result of a successful Decode.
type Module struct {
	Types   []FuncType
	Imports []Import
	Funcs   []Func // imported functions first, then defined functions, in index order

	Tables  []TableType
	TableImportCount int

	Memories []MemoryType
	MemoryImportCount int

	Globals []GlobalDef
	GlobalImportCount int

	Exports []Export

	HasStart bool
	Start    uint32

	Elements []ElementSegment
	Data     []DataSegment

	HasDataCount bool
	DataCount    uint32

	// Continuations holds one ContinuationTable per defined (non-import)
	// function, in the same order as the code section.
	Continuations []ContinuationTable

	// DeclaredFuncRefs is the set of function indices that validation
	// permits to appear as the operand of ref.func: every imported
	// function, every exported function, and every function named by an
	// active or declarative element segment.
	DeclaredFuncRefs map[uint32]bool

	Customs []CustomSection
}

// CustomSection is a section whose payload the decoder does not
// interpret, preserved for tooling.
type CustomSection struct {
	Name string
	Data []byte
}

// NumFuncImports returns the number of imported functions, i.e. the index
// of the first defined function in Funcs.
func (m *Module) NumFuncImports() int {
	n := 0
	for _, f := range m.Funcs {
		if f.IsImport {
			n++
		}
	}
	return n
}

// FuncType returns the signature of the function at the given index.
func (m *Module) FuncType(index uint32) *FuncType {
	return &m.Funcs[index].Type
}
