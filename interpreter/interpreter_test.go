package interpreter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmkit/wasmkit/exec"
	"github.com/wasmkit/wasmkit/wasm"
)

func decodeAndInstantiate(t *testing.T, data []byte, sets ...*exec.ImportSet) *Instance {
	t.Helper()
	def, err := Decode(data)
	require.NoError(t, err)
	inst, err := Instantiate(def, sets...)
	require.NoError(t, err)
	return inst
}

func TestAddOne(t *testing.T) {
	m := module(
		typeSection(sig{params: []wasm.ValueType{wasm.ValueTypeI32}, results: []wasm.ValueType{wasm.ValueTypeI32}}),
		functionSection(0),
		exportSection(exportEntry{fieldName: "add_one", kind: wasm.ExternalFunction, index: 0}),
		codeSection(funcBody(concat(
			op(wasm.OpLocalGet), u32(0),
			op(wasm.OpI32Const), s32(1),
			op(wasm.OpI32Add),
			op(wasm.OpEnd),
		))),
	)

	inst := decodeAndInstantiate(t, m)
	results, err := inst.Invoke("add_one", []exec.Value{exec.NewI32(5)})
	require.NoError(t, err)
	require.Equal(t, []exec.Value{exec.NewI32(6)}, results)
}

func TestFactorialRecursive(t *testing.T) {
	// fac(n) = n == 0 ? 1 : n * fac(n - 1)
	body := concat(
		op(wasm.OpLocalGet), u32(0),
		op(wasm.OpI32Eqz),
		op(wasm.OpIf), []byte{byte(wasm.ValueTypeI32)},
		op(wasm.OpI32Const), s32(1),
		op(wasm.OpElse),
		op(wasm.OpLocalGet), u32(0),
		op(wasm.OpLocalGet), u32(0),
		op(wasm.OpI32Const), s32(1),
		op(wasm.OpI32Sub),
		op(wasm.OpCall), u32(0),
		op(wasm.OpI32Mul),
		op(wasm.OpEnd), // end if
		op(wasm.OpEnd), // end function
	)

	m := module(
		typeSection(sig{params: []wasm.ValueType{wasm.ValueTypeI32}, results: []wasm.ValueType{wasm.ValueTypeI32}}),
		functionSection(0),
		exportSection(exportEntry{fieldName: "fac", kind: wasm.ExternalFunction, index: 0}),
		codeSection(funcBody(body)),
	)

	inst := decodeAndInstantiate(t, m)
	results, err := inst.Invoke("fac", []exec.Value{exec.NewI32(5)})
	require.NoError(t, err)
	require.Equal(t, []exec.Value{exec.NewI32(120)}, results)
}

// TestBrTableFallback builds a function whose br_table has two explicit
// targets and a default equal to the first target, so an out-of-range
// selector produces the same result as selector 0.
func TestBrTableFallback(t *testing.T) {
	body := concat(
		op(wasm.OpBlock), []byte{0x40}, // outer block, void
		op(wasm.OpBlock), []byte{0x40}, // inner block, void
		op(wasm.OpLocalGet), u32(0),
		op(wasm.OpBrTable), u32(2), u32(0), u32(1), u32(0), // targets [0, 1], default 0
		op(wasm.OpEnd), // end inner: label depth 0 landing
		op(wasm.OpI32Const), s32(0x1337),
		op(wasm.OpReturn),
		op(wasm.OpEnd), // end outer: label depth 1 landing
		op(wasm.OpI32Const), s32(0xBEEF),
		op(wasm.OpEnd), // end function
	)

	m := module(
		typeSection(sig{params: []wasm.ValueType{wasm.ValueTypeI32}, results: []wasm.ValueType{wasm.ValueTypeI32}}),
		functionSection(0),
		exportSection(exportEntry{fieldName: "pick", kind: wasm.ExternalFunction, index: 0}),
		codeSection(funcBody(body)),
	)

	inst := decodeAndInstantiate(t, m)

	results, err := inst.Invoke("pick", []exec.Value{exec.NewI32(0)})
	require.NoError(t, err)
	require.Equal(t, []exec.Value{exec.NewI32(0x1337)}, results)

	results, err = inst.Invoke("pick", []exec.Value{exec.NewI32(1)})
	require.NoError(t, err)
	require.Equal(t, []exec.Value{exec.NewI32(0xBEEF)}, results)

	// Out of range: falls back to target 0.
	results, err = inst.Invoke("pick", []exec.Value{exec.NewI32(99)})
	require.NoError(t, err)
	require.Equal(t, []exec.Value{exec.NewI32(0x1337)}, results)
}

func TestIfElse(t *testing.T) {
	body := concat(
		op(wasm.OpLocalGet), u32(0), // cond
		op(wasm.OpIf), []byte{byte(wasm.ValueTypeI32)},
		op(wasm.OpLocalGet), u32(1),
		op(wasm.OpI32Const), s32(2),
		op(wasm.OpI32Mul),
		op(wasm.OpElse),
		op(wasm.OpLocalGet), u32(1),
		op(wasm.OpI32Const), s32(2),
		op(wasm.OpI32Add),
		op(wasm.OpEnd),
		op(wasm.OpEnd),
	)

	m := module(
		typeSection(sig{params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, results: []wasm.ValueType{wasm.ValueTypeI32}}),
		functionSection(0),
		exportSection(exportEntry{fieldName: "f", kind: wasm.ExternalFunction, index: 0}),
		codeSection(funcBody(body)),
	)

	inst := decodeAndInstantiate(t, m)

	results, err := inst.Invoke("f", []exec.Value{exec.NewI32(1), exec.NewI32(0x1337)})
	require.NoError(t, err)
	require.Equal(t, []exec.Value{exec.NewI32(0x266e)}, results)

	results, err = inst.Invoke("f", []exec.Value{exec.NewI32(0), exec.NewI32(0x1337)})
	require.NoError(t, err)
	require.Equal(t, []exec.Value{exec.NewI32(0x1339)}, results)
}

func TestDivideByZeroTraps(t *testing.T) {
	body := concat(
		op(wasm.OpLocalGet), u32(0),
		op(wasm.OpLocalGet), u32(1),
		op(wasm.OpI32DivU),
		op(wasm.OpEnd),
	)

	m := module(
		typeSection(sig{params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, results: []wasm.ValueType{wasm.ValueTypeI32}}),
		functionSection(0),
		exportSection(exportEntry{fieldName: "div", kind: wasm.ExternalFunction, index: 0}),
		codeSection(funcBody(body)),
	)

	inst := decodeAndInstantiate(t, m)
	_, err := inst.Invoke("div", []exec.Value{exec.NewI32(1), exec.NewI32(0)})
	require.ErrorIs(t, err, exec.TrapIntegerDivisionByZero)
}

func TestUnlinkableMissingImport(t *testing.T) {
	m := module(
		typeSection(sig{}),
		importFuncSection(funcImport{module: "env", field: "f", typeIdx: 0}),
	)

	def, err := Decode(m)
	require.NoError(t, err)

	_, err = Instantiate(def)
	require.Error(t, err)
	var unlinkable *exec.UnlinkableError
	require.ErrorAs(t, err, &unlinkable)
	require.Equal(t, exec.UnlinkableUnknownImport, unlinkable.Kind)
}

func TestUnlinkableIncompatibleImport(t *testing.T) {
	m := module(
		typeSection(sig{}),
		importFuncSection(funcImport{module: "env", field: "f", typeIdx: 0}),
	)

	def, err := Decode(m)
	require.NoError(t, err)

	badSig := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32}}
	imports := exec.NewImportSet("env")
	imports.AddHostFunction("f", badSig, func(args []exec.Value) ([]exec.Value, error) {
		return nil, nil
	})

	_, err = Instantiate(def, imports)
	require.Error(t, err)
	var unlinkable *exec.UnlinkableError
	require.ErrorAs(t, err, &unlinkable)
	require.Equal(t, exec.UnlinkableIncompatibleImportType, unlinkable.Kind)
}
