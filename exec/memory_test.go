package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmkit/wasmkit/wasm"
)

func TestMemoryInstanceReadWrite(t *testing.T) {
	mem := NewMemoryInstance(wasm.MemoryType{Limits: wasm.Limits{Min: 1}})
	require.Equal(t, uint32(1), mem.Size())

	require.True(t, mem.PutUint32(100, 0xdeadbeef))
	v, ok := mem.Uint32(100)
	require.True(t, ok)
	assert.Equal(t, uint32(0xdeadbeef), v)

	_, ok = mem.Uint32(wasm.PageSize - 2)
	assert.False(t, ok, "a 4-byte read straddling the page boundary must fail")
}

func TestMemoryInstanceGrowRespectsMax(t *testing.T) {
	mem := NewMemoryInstance(wasm.MemoryType{Limits: wasm.Limits{Min: 1, Max: 2, HasMax: true}})

	prev, ok := mem.Grow(1)
	require.True(t, ok)
	assert.Equal(t, uint32(1), prev)
	assert.Equal(t, uint32(2), mem.Size())

	_, ok = mem.Grow(1)
	assert.False(t, ok)
}

func TestMemoryInstanceCopyAndFill(t *testing.T) {
	mem := NewMemoryInstance(wasm.MemoryType{Limits: wasm.Limits{Min: 1}})
	require.True(t, mem.Fill(0, 0xff, 8))
	require.True(t, mem.Copy(100, 0, 8))
	for i := uint64(100); i < 108; i++ {
		b, ok := mem.Byte(i)
		require.True(t, ok)
		assert.Equal(t, byte(0xff), b)
	}

	assert.False(t, mem.Copy(wasm.PageSize-4, 0, 8))
}

func TestMemoryInstanceInitBounds(t *testing.T) {
	mem := NewMemoryInstance(wasm.MemoryType{Limits: wasm.Limits{Min: 1}})
	data := []byte{1, 2, 3, 4}

	assert.True(t, mem.Init(10, data, 0, 4))
	assert.False(t, mem.Init(0, data, 2, 4)) // source range overruns data
}
