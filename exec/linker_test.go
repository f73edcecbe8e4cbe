package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmkit/wasmkit/wasm"
)

func TestResolveImportsFunction(t *testing.T) {
	sig := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	m := &wasm.Module{
		Types: []wasm.FuncType{sig},
		Imports: []wasm.Import{
			{Module: "env", Name: "double", Kind: wasm.ExternalFunction, FuncTypeIndex: 0},
		},
	}

	set := NewImportSet("env")
	set.AddHostFunction("double", sig, func(args []Value) ([]Value, error) {
		return []Value{NewI32(args[0].I32() * 2)}, nil
	})

	resolved, err := ResolveImports(m, []*ImportSet{set})
	require.NoError(t, err)
	require.Len(t, resolved.Functions, 1)

	results, err := resolved.Functions[0].Call([]Value{NewI32(21)})
	require.NoError(t, err)
	assert.Equal(t, []Value{NewI32(42)}, results)
}

func TestResolveImportsUnknownImport(t *testing.T) {
	m := &wasm.Module{
		Types:   []wasm.FuncType{{}},
		Imports: []wasm.Import{{Module: "env", Name: "missing", Kind: wasm.ExternalFunction}},
	}

	_, err := ResolveImports(m, nil)
	require.Error(t, err)
	var unlinkable *UnlinkableError
	require.ErrorAs(t, err, &unlinkable)
	assert.Equal(t, UnlinkableUnknownImport, unlinkable.Kind)
}

func TestResolveImportsIncompatibleSignature(t *testing.T) {
	want := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32}}
	m := &wasm.Module{
		Types:   []wasm.FuncType{want},
		Imports: []wasm.Import{{Module: "env", Name: "f", Kind: wasm.ExternalFunction, FuncTypeIndex: 0}},
	}

	set := NewImportSet("env")
	set.AddHostFunction("f", wasm.FuncType{}, func(args []Value) ([]Value, error) { return nil, nil })

	_, err := ResolveImports(m, []*ImportSet{set})
	require.Error(t, err)
	var unlinkable *UnlinkableError
	require.ErrorAs(t, err, &unlinkable)
	assert.Equal(t, UnlinkableIncompatibleImportType, unlinkable.Kind)
}

func TestResolveImportsLaterSetOverridesEarlier(t *testing.T) {
	sig := wasm.FuncType{}
	m := &wasm.Module{
		Types:   []wasm.FuncType{sig},
		Imports: []wasm.Import{{Module: "env", Name: "f", Kind: wasm.ExternalFunction, FuncTypeIndex: 0}},
	}

	first := NewImportSet("env")
	first.AddHostFunction("f", sig, func(args []Value) ([]Value, error) { return []Value{NewI32(1)}, nil })
	second := NewImportSet("env")
	second.AddHostFunction("f", sig, func(args []Value) ([]Value, error) { return []Value{NewI32(2)}, nil })

	resolved, err := ResolveImports(m, []*ImportSet{first, second})
	require.NoError(t, err)
	results, err := resolved.Functions[0].Call(nil)
	require.NoError(t, err)
	assert.Equal(t, []Value{NewI32(2)}, results)
}

func TestResolveImportsTableCompatibility(t *testing.T) {
	m := &wasm.Module{
		Imports: []wasm.Import{{
			Module: "env", Name: "t", Kind: wasm.ExternalTable,
			Table: wasm.TableType{ElemType: wasm.ValueTypeFuncRef, Limits: wasm.Limits{Min: 2, Max: 10, HasMax: true}},
		}},
	}

	tooSmall := NewImportSet("env")
	tooSmall.AddTable("t", NewTableInstance(wasm.TableType{ElemType: wasm.ValueTypeFuncRef, Limits: wasm.Limits{Min: 1}}))
	_, err := ResolveImports(m, []*ImportSet{tooSmall})
	require.Error(t, err)

	fine := NewImportSet("env")
	fine.AddTable("t", NewTableInstance(wasm.TableType{ElemType: wasm.ValueTypeFuncRef, Limits: wasm.Limits{Min: 3, Max: 5, HasMax: true}}))
	_, err = ResolveImports(m, []*ImportSet{fine})
	require.NoError(t, err)
}
