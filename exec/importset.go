package exec

import "github.com/wasmkit/wasmkit/wasm"

// ImportSet is a named collection of host- or instance-provided
// functions, tables, memories, and globals, keyed by field name. An
// ordered list of import sets is supplied to a module instance at
// instantiation; interpreter.Instance.Exports wraps an instantiated module's
// own exports as an ImportSet so it can satisfy another module's
// imports, mirroring the spec test suite's `register` command.
type ImportSet struct {
	ModuleName string

	Functions map[string]Function
	Tables    map[string]*TableInstance
	Memories  map[string]*MemoryInstance
	Globals   map[string]*GlobalInstance
}

// NewImportSet creates an empty import set for the given module name.
func NewImportSet(moduleName string) *ImportSet {
	return &ImportSet{
		ModuleName: moduleName,
		Functions:  map[string]Function{},
		Tables:     map[string]*TableInstance{},
		Memories:   map[string]*MemoryInstance{},
		Globals:    map[string]*GlobalInstance{},
	}
}

func (s *ImportSet) AddFunction(fieldName string, fn Function) *ImportSet {
	s.Functions[fieldName] = fn
	return s
}

// AddHostFunction wraps fn as a Function and adds it under fieldName.
func (s *ImportSet) AddHostFunction(fieldName string, sig wasm.FuncType, fn HostFunc) *ImportSet {
	return s.AddFunction(fieldName, NewHostFunction(sig, fn))
}

func (s *ImportSet) AddTable(fieldName string, t *TableInstance) *ImportSet {
	s.Tables[fieldName] = t
	return s
}

func (s *ImportSet) AddMemory(fieldName string, m *MemoryInstance) *ImportSet {
	s.Memories[fieldName] = m
	return s
}

func (s *ImportSet) AddGlobal(fieldName string, g *GlobalInstance) *ImportSet {
	s.Globals[fieldName] = g
	return s
}
