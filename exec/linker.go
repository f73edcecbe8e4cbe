package exec

import "github.com/wasmkit/wasmkit/wasm"

// ResolvedImports holds the instance collaborators resolved for a
// module definition's declared imports, in import-section order (which
// is also the prefix of each kind's index space).
type ResolvedImports struct {
	Functions []Function
	Tables    []*TableInstance
	Memories  []*MemoryInstance
	Globals   []*GlobalInstance
}

// ResolveImports searches sets, in order, for a provider of each of m's
// declared imports, type-checks the match, and returns the resolved
// collaborators. Later entries of sets override earlier ones when more
// than one provides the same (module, field, kind).
func ResolveImports(m *wasm.Module, sets []*ImportSet) (*ResolvedImports, error) {
	r := &ResolvedImports{}
	for _, imp := range m.Imports {
		switch imp.Kind {
		case wasm.ExternalFunction:
			want := m.Types[imp.FuncTypeIndex]
			fn, err := findFunction(sets, imp.Module, imp.Name)
			if err != nil {
				return nil, err
			}
			if !fn.Type().Equal(&want) {
				return nil, &UnlinkableError{UnlinkableIncompatibleImportType, imp.Module, imp.Name}
			}
			r.Functions = append(r.Functions, fn)
		case wasm.ExternalTable:
			t, err := findTable(sets, imp.Module, imp.Name)
			if err != nil {
				return nil, err
			}
			if !tableCompatible(imp.Table, t) {
				return nil, &UnlinkableError{UnlinkableIncompatibleImportType, imp.Module, imp.Name}
			}
			r.Tables = append(r.Tables, t)
		case wasm.ExternalMemory:
			mem, err := findMemory(sets, imp.Module, imp.Name)
			if err != nil {
				return nil, err
			}
			if !memoryCompatible(imp.Memory, mem) {
				return nil, &UnlinkableError{UnlinkableIncompatibleImportType, imp.Module, imp.Name}
			}
			r.Memories = append(r.Memories, mem)
		case wasm.ExternalGlobal:
			g, err := findGlobal(sets, imp.Module, imp.Name)
			if err != nil {
				return nil, err
			}
			if g.Type() != imp.Global {
				return nil, &UnlinkableError{UnlinkableIncompatibleImportType, imp.Module, imp.Name}
			}
			r.Globals = append(r.Globals, g)
		}
	}
	return r, nil
}

func findFunction(sets []*ImportSet, module, name string) (Function, error) {
	var found Function
	for _, s := range sets {
		if s.ModuleName != module {
			continue
		}
		if fn, ok := s.Functions[name]; ok {
			found = fn
		}
	}
	if found == nil {
		return nil, &UnlinkableError{UnlinkableUnknownImport, module, name}
	}
	return found, nil
}

func findTable(sets []*ImportSet, module, name string) (*TableInstance, error) {
	var found *TableInstance
	for _, s := range sets {
		if s.ModuleName != module {
			continue
		}
		if t, ok := s.Tables[name]; ok {
			found = t
		}
	}
	if found == nil {
		return nil, &UnlinkableError{UnlinkableUnknownImport, module, name}
	}
	return found, nil
}

func findMemory(sets []*ImportSet, module, name string) (*MemoryInstance, error) {
	var found *MemoryInstance
	for _, s := range sets {
		if s.ModuleName != module {
			continue
		}
		if m, ok := s.Memories[name]; ok {
			found = m
		}
	}
	if found == nil {
		return nil, &UnlinkableError{UnlinkableUnknownImport, module, name}
	}
	return found, nil
}

func findGlobal(sets []*ImportSet, module, name string) (*GlobalInstance, error) {
	var found *GlobalInstance
	for _, s := range sets {
		if s.ModuleName != module {
			continue
		}
		if g, ok := s.Globals[name]; ok {
			found = g
		}
	}
	if found == nil {
		return nil, &UnlinkableError{UnlinkableUnknownImport, module, name}
	}
	return found, nil
}

func tableCompatible(declared wasm.TableType, provided *TableInstance) bool {
	if provided.ElemType() != declared.ElemType {
		return false
	}
	min, max := provided.Limits()
	if min < declared.Limits.Min {
		return false
	}
	if declared.Limits.HasMax && (max > declared.Limits.Max) {
		return false
	}
	return true
}

func memoryCompatible(declared wasm.MemoryType, provided *MemoryInstance) bool {
	min, max := provided.Limits()
	if min < declared.Limits.Min {
		return false
	}
	if declared.Limits.HasMax && (max > declared.Limits.Max) {
		return false
	}
	return true
}
