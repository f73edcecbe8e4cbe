package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmkit/wasmkit/wasm"
)

func TestGlobalInstanceGetSet(t *testing.T) {
	g := NewGlobalInstance(wasm.GlobalType{Type: wasm.ValueTypeI32, Mutable: true}, NewI32(1))
	require.Equal(t, NewI32(1), g.Get())

	g.Set(NewI32(2))
	assert.Equal(t, NewI32(2), g.Get())
}

func TestGlobalInstanceSetPanicsOnImmutable(t *testing.T) {
	g := NewGlobalInstance(wasm.GlobalType{Type: wasm.ValueTypeI32, Mutable: false}, NewI32(1))
	assert.Panics(t, func() { g.Set(NewI32(2)) })
}
