package interpreter

import (
	"fmt"

	"github.com/wasmkit/wasmkit/exec"
	"github.com/wasmkit/wasmkit/wasm"
	"github.com/wasmkit/wasmkit/wasm/validate"
)

// Definition is a decoded and validated module, ready to be
// instantiated any number of times against different import sets.
type Definition struct {
	mod *wasm.Module
}

// Decode parses and validates a binary-format module. The returned
// Definition shares no mutable state across instantiations: each
// Instantiate call allocates its own tables, memories, and globals.
func Decode(data []byte) (*Definition, error) {
	mod, err := wasm.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := validate.Validate(mod); err != nil {
		return nil, err
	}
	return &Definition{mod: mod}, nil
}

// Module exposes the decoded module, mainly for tooling that inspects
// its structure (see cmd/wasmkit's stats dump) rather than running it.
func (d *Definition) Module() *wasm.Module { return d.mod }

func (d *Definition) String() string { return "module" }

// Instance is one instantiation of a Definition: its own tables,
// memories, globals, and resolved functions, linked against a
// particular set of imports.
type Instance struct {
	def *Definition

	funcs     []exec.Function
	tables    []*exec.TableInstance
	memories  []*exec.MemoryInstance
	globals   []*exec.GlobalInstance

	elemValues  [][]exec.Value
	elemDropped []bool
	dataDropped []bool

	exports map[string]interface{}
}

func (inst *Instance) module() *wasm.Module { return inst.def.mod }

func (inst *Instance) funcRef(idx uint32) exec.Function {
	if int(idx) >= len(inst.funcs) {
		return nil
	}
	return inst.funcs[idx]
}

// Instantiate links def against the given import sets (searched in
// order, later sets overriding earlier ones for the same name) and
// runs it through the steps the binary format specifies: allocating
// its own tables/memories/globals, applying active element and data
// segments, and invoking the start function if one is declared.
//
// On failure, the half-built Instance is discarded by the caller; Go's
// allocator reclaims whatever was allocated, so there is no explicit
// resource-release step.
func Instantiate(def *Definition, sets ...*exec.ImportSet) (*Instance, error) {
	m := def.mod
	resolved, err := exec.ResolveImports(m, sets)
	if err != nil {
		return nil, err
	}

	inst := &Instance{def: def}

	inst.funcs = append(inst.funcs, resolved.Functions...)
	firstDefined := m.NumFuncImports()
	for i := firstDefined; i < len(m.Funcs); i++ {
		f := &m.Funcs[i]
		inst.funcs = append(inst.funcs, &wasmFunction{
			inst: inst,
			idx:  uint32(i),
			typ:  &f.Type,
			code: &f.Code,
			cont: m.Continuations[i-firstDefined],
		})
	}

	inst.tables = append(inst.tables, resolved.Tables...)
	for i := m.TableImportCount; i < len(m.Tables); i++ {
		inst.tables = append(inst.tables, exec.NewTableInstance(m.Tables[i]))
	}

	inst.memories = append(inst.memories, resolved.Memories...)
	for i := m.MemoryImportCount; i < len(m.Memories); i++ {
		inst.memories = append(inst.memories, exec.NewMemoryInstance(m.Memories[i]))
	}

	inst.globals = append(inst.globals, resolved.Globals...)
	for i := m.GlobalImportCount; i < len(m.Globals); i++ {
		g := m.Globals[i]
		v, err := exec.EvalConstExpr(g.Init, inst.globals, inst.funcRef)
		if err != nil {
			return nil, err
		}
		inst.globals = append(inst.globals, exec.NewGlobalInstance(g.Type, v))
	}

	inst.elemValues = make([][]exec.Value, len(m.Elements))
	inst.elemDropped = make([]bool, len(m.Elements))
	for i, seg := range m.Elements {
		vals := make([]exec.Value, len(seg.Init))
		for j, init := range seg.Init {
			v, err := exec.EvalConstExpr(init, inst.globals, inst.funcRef)
			if err != nil {
				return nil, err
			}
			vals[j] = v
		}
		inst.elemValues[i] = vals
	}
	inst.dataDropped = make([]bool, len(m.Data))

	for i, seg := range m.Elements {
		if seg.Mode != wasm.ElementModeActive {
			continue
		}
		offVal, err := exec.EvalConstExpr(seg.Offset, inst.globals, inst.funcRef)
		if err != nil {
			return nil, err
		}
		off := uint32(offVal.I32())
		vals := inst.elemValues[i]
		if !inst.tables[seg.TableIndex].Init(off, vals, 0, uint32(len(vals))) {
			return nil, &exec.UninstantiableError{Kind: exec.UninstantiableOutOfBoundsTableAccess}
		}
	}

	for _, seg := range m.Data {
		if seg.Mode != wasm.DataModeActive {
			continue
		}
		offVal, err := exec.EvalConstExpr(seg.Offset, inst.globals, inst.funcRef)
		if err != nil {
			return nil, err
		}
		off := uint64(uint32(offVal.I32()))
		if !inst.memories[seg.MemoryIndex].Init(off, seg.Init, 0, uint64(len(seg.Init))) {
			return nil, &exec.UninstantiableError{Kind: exec.UninstantiableOutOfBoundsMemoryAccess}
		}
	}

	inst.exports = make(map[string]interface{}, len(m.Exports))
	for _, e := range m.Exports {
		switch e.Kind {
		case wasm.ExternalFunction:
			inst.exports[e.Name] = inst.funcs[e.Index]
		case wasm.ExternalTable:
			inst.exports[e.Name] = inst.tables[e.Index]
		case wasm.ExternalMemory:
			inst.exports[e.Name] = inst.memories[e.Index]
		case wasm.ExternalGlobal:
			inst.exports[e.Name] = inst.globals[e.Index]
		}
	}

	if m.HasStart {
		if _, err := inst.funcs[m.Start].Call(nil); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

// Invoke calls the exported function named name with args, returning a
// *ExportNotFoundError if no such export exists or it is not a
// function.
func (inst *Instance) Invoke(name string, args []exec.Value) ([]exec.Value, error) {
	fn, ok := inst.exports[name].(exec.Function)
	if !ok {
		return nil, &ExportNotFoundError{Name: name, Kind: wasm.ExternalFunction}
	}
	return fn.Call(args)
}

// GetGlobal reads the current value of the exported global named name.
func (inst *Instance) GetGlobal(name string) (exec.Value, error) {
	g, ok := inst.exports[name].(*exec.GlobalInstance)
	if !ok {
		return exec.Value{}, &ExportNotFoundError{Name: name, Kind: wasm.ExternalGlobal}
	}
	return g.Get(), nil
}

// GetMemory returns the exported memory named name, for hosts that
// need to read or write it directly.
func (inst *Instance) GetMemory(name string) (*exec.MemoryInstance, error) {
	mem, ok := inst.exports[name].(*exec.MemoryInstance)
	if !ok {
		return nil, &ExportNotFoundError{Name: name, Kind: wasm.ExternalMemory}
	}
	return mem, nil
}

// Exports wraps inst's exports as an ImportSet under moduleName, so
// this instance can satisfy another module's imports.
func (inst *Instance) Exports(moduleName string) *exec.ImportSet {
	set := exec.NewImportSet(moduleName)
	for _, e := range inst.def.mod.Exports {
		switch e.Kind {
		case wasm.ExternalFunction:
			set.AddFunction(e.Name, inst.funcs[e.Index])
		case wasm.ExternalTable:
			set.AddTable(e.Name, inst.tables[e.Index])
		case wasm.ExternalMemory:
			set.AddMemory(e.Name, inst.memories[e.Index])
		case wasm.ExternalGlobal:
			set.AddGlobal(e.Name, inst.globals[e.Index])
		}
	}
	return set
}

// ExportNotFoundError reports a lookup for an export that the module
// does not declare, or declares as a different kind.
type ExportNotFoundError struct {
	Name string
	Kind wasm.ExternalKind
}

func (e *ExportNotFoundError) Error() string {
	return fmt.Sprintf("interpreter: no %s export named %q", e.Kind, e.Name)
}
