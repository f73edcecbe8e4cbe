// Package interpreter executes a decoded, validated module's exported
// functions: a stack machine operating on the module definition's
// pre-computed continuation tables, mixing value, label, and frame
// items on a single runtime stack.
package interpreter

import (
	"github.com/wasmkit/wasmkit/exec"
	"github.com/wasmkit/wasmkit/wasm"
)

type itemKind uint8

const (
	kindValue itemKind = iota
	kindLabel
	kindFrame
)

// item is a tagged entry of the runtime stack. Only the fields
// relevant to its kind are populated; the three variants share one
// slice so that branch-unwinding sees values and labels in the order
// they were pushed, as spec'd.
type item struct {
	kind itemKind

	val exec.Value

	arity        int
	continuation int
	prevLabel    int
	isLoop       bool

	inst             *Instance
	fn               *wasmFunction
	locals           []exec.Value
	prevLabelOnEntry int
	prevFrame        int
	returnPC         int
}

// maxCallDepth bounds the number of live frames so that runaway
// recursion traps instead of growing the stack slice without limit.
const maxCallDepth = 16384

// Machine is one interpreter invocation's stack and dispatch state. A
// fresh Machine is created at each entry from Go code into Wasm
// execution (Instance.Invoke, or a table/import call crossing
// into a host function that calls back in); nested `call`/`call_indirect`
// to Wasm-defined functions push frames onto the same Machine rather
// than recursing, so branch and return unwinding never needs to cross
// a Go stack frame.
type Machine struct {
	stack []item
	curLabel int
	curFrame int
	depth    int

	inst *Instance
	fn   *wasmFunction
	cont *wasm.ContinuationTable
	pc   int
}

func newMachine() *Machine {
	return &Machine{curLabel: -1, curFrame: -1}
}

func (m *Machine) pushValue(v exec.Value) {
	m.stack = append(m.stack, item{kind: kindValue, val: v})
}

func (m *Machine) popValue() exec.Value {
	top := len(m.stack) - 1
	v := m.stack[top].val
	m.stack = m.stack[:top]
	return v
}

// pushLabel pushes a label whose branch arity is arity (a loop's
// parameter count, or every other construct's result count) and whose
// branch continuation is the given byte offset. isLoop marks a loop's
// label so branch() knows to discard it rather than leave it for a
// literal `end` to close: a branch to a loop resumes at the `loop`
// opcode itself, which pushes a fresh label of its own.
func (m *Machine) pushLabel(arity, continuation int, isLoop bool) {
	m.stack = append(m.stack, item{kind: kindLabel, arity: arity, continuation: continuation, prevLabel: m.curLabel, isLoop: isLoop})
	m.curLabel = len(m.stack) - 1
}

// popLabel removes the top label (reached via a structured `end`,
// where validation guarantees nothing but that label's own result
// values remain above it) without disturbing those result values.
func (m *Machine) popLabel() {
	idx := m.curLabel
	m.curLabel = m.stack[idx].prevLabel
	copy(m.stack[idx:], m.stack[idx+1:])
	m.stack = m.stack[:len(m.stack)-1]
}

// branch implements the unwinding algorithm for br/br_if/br_table/return:
// find the label `depth` frames up the label chain, save its arity
// worth of values, discard everything from that label upward, and
// restore the saved values before resuming at the label's
// continuation. A loop's own label is discarded along with the rest
// (re-entering the loop opcode pushes a fresh one); a block/if/frame
// label is left in place, still reachable as curLabel, for the literal
// `end`/function-end byte at its continuation to close normally.
func (m *Machine) branch(depth int) bool {
	idx := m.curLabel
	for ; depth > 0; depth-- {
		if idx < 0 {
			return false
		}
		idx = m.stack[idx].prevLabel
	}
	if idx < 0 {
		return false
	}
	lbl := m.stack[idx]
	scratch := make([]exec.Value, lbl.arity)
	for i := lbl.arity - 1; i >= 0; i-- {
		scratch[i] = m.popValue()
	}
	if lbl.isLoop {
		m.stack = m.stack[:idx]
		m.curLabel = lbl.prevLabel
	} else {
		m.stack = m.stack[:idx+1]
		m.curLabel = idx
	}
	for _, v := range scratch {
		m.pushValue(v)
	}
	m.pc = lbl.continuation
	return true
}

// pushFrame enters a Wasm-defined function: its parameters (passed in
// args, in order) become the first locals, its declared
// locals are zeroed, and the label chain is broken so that labels
// never cross a call boundary.
func (m *Machine) pushFrame(fn *wasmFunction, args []exec.Value) bool {
	m.depth++
	if m.depth > maxCallDepth {
		m.depth--
		return false
	}

	locals := make([]exec.Value, len(fn.typ.Params)+int(fn.code.NumLocals))
	copy(locals, args)
	n := len(fn.typ.Params)
	for _, l := range fn.code.Locals {
		for i := uint32(0); i < l.Count; i++ {
			locals[n] = zeroValue(l.Type)
			n++
		}
	}

	m.stack = append(m.stack, item{
		kind:             kindFrame,
		inst:             fn.inst,
		fn:               fn,
		locals:           locals,
		prevLabelOnEntry: m.curLabel,
		prevFrame:        m.curFrame,
		returnPC:         m.pc,
	})
	frameIdx := len(m.stack) - 1
	m.curFrame = frameIdx
	m.curLabel = -1

	m.inst, m.fn, m.cont, m.pc = fn.inst, fn, &fn.cont, 0
	m.pushLabel(len(fn.typ.Results), fn.cont.FunctionEnd, false)
	return true
}

// popFrame unwinds the current frame: its result values (already the
// top of the stack, per validation) are preserved, the frame item and
// its outermost label are discarded, and dispatch resumes in the
// caller at its recorded return program counter.
func (m *Machine) popFrame() (done bool) {
	frameIdx := m.curFrame
	frame := m.stack[frameIdx]

	results := make([]exec.Value, len(frame.fn.typ.Results))
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = m.popValue()
	}

	m.stack = m.stack[:frameIdx]
	m.curLabel = frame.prevLabelOnEntry
	m.curFrame = frame.prevFrame
	m.depth--

	for _, v := range results {
		m.pushValue(v)
	}

	if frame.prevFrame < 0 {
		return true
	}
	caller := m.stack[frame.prevFrame]
	m.inst, m.fn, m.cont, m.pc = caller.inst, caller.fn, &caller.fn.cont, frame.returnPC
	return false
}

// doReturn unwinds straight to the current frame's outermost label,
// exactly as if a br targeted it, discarding any still-open inner
// labels along the way.
func (m *Machine) doReturn() error {
	// pushFrame resets curLabel to -1 before pushing the frame's
	// outermost label, so that label's prevLabel is always -1 regardless
	// of what label was open in the caller. Walk until we reach it.
	depth := 0
	for idx := m.curLabel; m.stack[idx].prevLabel != -1; idx = m.stack[idx].prevLabel {
		depth++
	}
	if !m.branch(depth) {
		return exec.TrapLabelMismatch
	}
	return nil
}

func (m *Machine) locals() []exec.Value {
	return m.stack[m.curFrame].locals
}

func zeroValue(t wasm.ValueType) exec.Value {
	if t.IsReferenceType() {
		return exec.NullRef(t)
	}
	return exec.Value{Type: t}
}
