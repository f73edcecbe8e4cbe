package exec

import (
	"encoding/binary"
	"math"

	"github.com/wasmkit/wasmkit/wasm"
)

// MemoryInstance is a resizable linear memory governed by page limits.
type MemoryInstance struct {
	min, max uint32
	bytes    []byte
}

// NewMemoryInstance allocates a memory instance with the given limits,
// measured in 64KiB pages.
func NewMemoryInstance(t wasm.MemoryType) *MemoryInstance {
	max := t.Limits.Max
	if !t.Limits.HasMax {
		max = wasm.MaxMemoryPages
	}
	return &MemoryInstance{
		min:   t.Limits.Min,
		max:   max,
		bytes: make([]byte, uint64(t.Limits.Min)*wasm.PageSize),
	}
}

// Size returns the current size of the memory in pages.
func (m *MemoryInstance) Size() uint32 { return uint32(len(m.bytes) / wasm.PageSize) }

// Limits returns the memory's minimum and maximum size, in pages.
func (m *MemoryInstance) Limits() (min, max uint32) { return m.min, m.max }

// Grow grows the memory by delta pages, returning the size (in pages)
// before growing. It reports false if growing by delta would exceed
// the memory's maximum or the format-wide hard limit.
func (m *MemoryInstance) Grow(delta uint32) (uint32, bool) {
	prev := m.Size()
	next := prev + delta
	if next < prev || next > m.max || next > wasm.MaxMemoryPages {
		return 0, false
	}
	grown := make([]byte, uint64(next)*wasm.PageSize)
	copy(grown, m.bytes)
	m.bytes = grown
	return prev, true
}

// Bytes returns the memory's backing byte slice directly; callers must
// bounds-check before indexing into it.
func (m *MemoryInstance) Bytes() []byte { return m.bytes }

func (m *MemoryInstance) bounds(offset, n uint64) ([]byte, bool) {
	if offset+n > uint64(len(m.bytes)) {
		return nil, false
	}
	return m.bytes[offset : offset+n], true
}

func (m *MemoryInstance) Byte(addr uint64) (byte, bool) {
	b, ok := m.bounds(addr, 1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (m *MemoryInstance) PutByte(addr uint64, v byte) bool {
	b, ok := m.bounds(addr, 1)
	if !ok {
		return false
	}
	b[0] = v
	return true
}

func (m *MemoryInstance) Uint16(addr uint64) (uint16, bool) {
	b, ok := m.bounds(addr, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

func (m *MemoryInstance) PutUint16(addr uint64, v uint16) bool {
	b, ok := m.bounds(addr, 2)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint16(b, v)
	return true
}

func (m *MemoryInstance) Uint32(addr uint64) (uint32, bool) {
	b, ok := m.bounds(addr, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (m *MemoryInstance) PutUint32(addr uint64, v uint32) bool {
	b, ok := m.bounds(addr, 4)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint32(b, v)
	return true
}

func (m *MemoryInstance) Uint64(addr uint64) (uint64, bool) {
	b, ok := m.bounds(addr, 8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func (m *MemoryInstance) PutUint64(addr uint64, v uint64) bool {
	b, ok := m.bounds(addr, 8)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint64(b, v)
	return true
}

func (m *MemoryInstance) Float32(addr uint64) (float32, bool) {
	v, ok := m.Uint32(addr)
	return math.Float32frombits(v), ok
}

func (m *MemoryInstance) PutFloat32(addr uint64, v float32) bool {
	return m.PutUint32(addr, math.Float32bits(v))
}

func (m *MemoryInstance) Float64(addr uint64) (float64, bool) {
	v, ok := m.Uint64(addr)
	return math.Float64frombits(v), ok
}

func (m *MemoryInstance) PutFloat64(addr uint64, v float64) bool {
	return m.PutUint64(addr, math.Float64bits(v))
}

// Fill writes n copies of v starting at addr, reporting false if the
// range is out of bounds.
func (m *MemoryInstance) Fill(addr uint64, v byte, n uint64) bool {
	b, ok := m.bounds(addr, n)
	if !ok {
		return false
	}
	for i := range b {
		b[i] = v
	}
	return true
}

// Copy copies n bytes from src to dst within the same memory,
// correctly handling overlap, reporting false if either range is out
// of bounds.
func (m *MemoryInstance) Copy(dst, src, n uint64) bool {
	if _, ok := m.bounds(dst, n); !ok {
		return false
	}
	if _, ok := m.bounds(src, n); !ok {
		return false
	}
	copy(m.bytes[dst:dst+n], m.bytes[src:src+n])
	return true
}

// Init copies data[srcOffset:srcOffset+n] into the memory at dst,
// reporting false if either range is out of bounds.
func (m *MemoryInstance) Init(dst uint64, data []byte, srcOffset, n uint64) bool {
	if srcOffset+n > uint64(len(data)) {
		return false
	}
	b, ok := m.bounds(dst, n)
	if !ok {
		return false
	}
	copy(b, data[srcOffset:srcOffset+n])
	return true
}
