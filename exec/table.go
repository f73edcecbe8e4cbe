package exec

import "github.com/wasmkit/wasmkit/wasm"

// TableInstance is a typed, resizable array of reference values
// governed by limits.
type TableInstance struct {
	elemType wasm.ValueType
	min, max uint32
	entries  []Value
}

// NewTableInstance allocates a table instance with the given element
// type and limits, every slot initialized to the null reference.
func NewTableInstance(t wasm.TableType) *TableInstance {
	max := t.Limits.Max
	if !t.Limits.HasMax {
		max = ^uint32(0)
	}
	tbl := &TableInstance{
		elemType: t.ElemType,
		min:      t.Limits.Min,
		max:      max,
		entries:  make([]Value, t.Limits.Min),
	}
	for i := range tbl.entries {
		tbl.entries[i] = NullRef(t.ElemType)
	}
	return tbl
}

func (t *TableInstance) ElemType() wasm.ValueType   { return t.elemType }
func (t *TableInstance) Size() uint32               { return uint32(len(t.entries)) }
func (t *TableInstance) Limits() (min, max uint32) { return t.min, t.max }

// Grow grows the table by delta elements, filling new slots with
// init. It returns the size before growing and reports false if
// growing by delta would exceed the table's maximum.
func (t *TableInstance) Grow(delta uint32, init Value) (uint32, bool) {
	prev := t.Size()
	next := prev + delta
	if next < prev || next > t.max {
		return 0, false
	}
	grown := make([]Value, next)
	copy(grown, t.entries)
	for i := prev; i < next; i++ {
		grown[i] = init
	}
	t.entries = grown
	return prev, true
}

func (t *TableInstance) Get(i uint32) (Value, bool) {
	if i >= uint32(len(t.entries)) {
		return Value{}, false
	}
	return t.entries[i], true
}

func (t *TableInstance) Set(i uint32, v Value) bool {
	if i >= uint32(len(t.entries)) {
		return false
	}
	t.entries[i] = v
	return true
}

// Fill writes n copies of v starting at index i.
func (t *TableInstance) Fill(i uint32, v Value, n uint32) bool {
	if uint64(i)+uint64(n) > uint64(len(t.entries)) {
		return false
	}
	for j := uint32(0); j < n; j++ {
		t.entries[i+j] = v
	}
	return true
}

// Copy copies n elements from src to dst, correctly handling overlap
// within the same table.
func (t *TableInstance) Copy(dst, src, n uint32) bool {
	if uint64(dst)+uint64(n) > uint64(len(t.entries)) {
		return false
	}
	if uint64(src)+uint64(n) > uint64(len(t.entries)) {
		return false
	}
	copy(t.entries[dst:dst+n], t.entries[src:src+n])
	return true
}

// Init copies init[srcOffset:srcOffset+n] into the table at dst.
func (t *TableInstance) Init(dst uint32, init []Value, srcOffset, n uint32) bool {
	if uint64(srcOffset)+uint64(n) > uint64(len(init)) {
		return false
	}
	if uint64(dst)+uint64(n) > uint64(len(t.entries)) {
		return false
	}
	copy(t.entries[dst:dst+n], init[srcOffset:srcOffset+n])
	return true
}
