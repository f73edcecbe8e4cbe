package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmkit/wasmkit/wasm"
)

func TestTableInstanceGetSetBounds(t *testing.T) {
	tbl := NewTableInstance(wasm.TableType{ElemType: wasm.ValueTypeFuncRef, Limits: wasm.Limits{Min: 2}})
	require.Equal(t, uint32(2), tbl.Size())

	v, ok := tbl.Get(0)
	require.True(t, ok)
	assert.True(t, v.IsNullRef())

	_, ok = tbl.Get(2)
	assert.False(t, ok)

	ref := NewFuncRef(nil)
	assert.True(t, tbl.Set(1, ref))
	assert.False(t, tbl.Set(2, ref))
}

func TestTableInstanceGrowRespectsMax(t *testing.T) {
	tbl := NewTableInstance(wasm.TableType{
		ElemType: wasm.ValueTypeFuncRef,
		Limits:   wasm.Limits{Min: 1, Max: 3, HasMax: true},
	})

	prev, ok := tbl.Grow(2, NullRef(wasm.ValueTypeFuncRef))
	require.True(t, ok)
	assert.Equal(t, uint32(1), prev)
	assert.Equal(t, uint32(3), tbl.Size())

	_, ok = tbl.Grow(1, NullRef(wasm.ValueTypeFuncRef))
	assert.False(t, ok)
}

func TestTableInstanceInitBounds(t *testing.T) {
	tbl := NewTableInstance(wasm.TableType{ElemType: wasm.ValueTypeFuncRef, Limits: wasm.Limits{Min: 4}})
	vals := []Value{NewFuncRef(nil), NewFuncRef(nil)}

	assert.True(t, tbl.Init(1, vals, 0, 2))
	assert.False(t, tbl.Init(3, vals, 0, 2)) // would overrun the table
	assert.False(t, tbl.Init(0, vals, 1, 5)) // would overrun the source
}
