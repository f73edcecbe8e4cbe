package validate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmkit/wasmkit/wasm"
	"github.com/wasmkit/wasmkit/wasm/leb128"
)

func vU32(v uint32) []byte {
	var b bytes.Buffer
	leb128.WriteVarUint32(&b, v)
	return b.Bytes()
}

func vS32(v int32) []byte {
	var b bytes.Buffer
	leb128.WriteVarint32(&b, v)
	return b.Bytes()
}

func vName(s string) []byte {
	return append(vU32(uint32(len(s))), []byte(s)...)
}

func vSection(id wasm.SectionID, payload []byte) []byte {
	return append(append([]byte{byte(id)}, vU32(uint32(len(payload)))...), payload...)
}

func vConcat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func vModule(sections ...[]byte) []byte {
	header := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	return append(header, vConcat(sections...)...)
}

// singleFuncModule builds a module with one type (params -> results), one
// defined function of that type using body as its instructions (which
// must include the trailing wasm.OpEnd), and no exports.
func singleFuncModule(params, results []wasm.ValueType, body []byte) []byte {
	sigPayload := vConcat(
		vU32(1), []byte{0x60},
		vU32(uint32(len(params))), typesBytes(params),
		vU32(uint32(len(results))), typesBytes(results),
	)
	funcBody := vConcat(vU32(0), body)
	codePayload := vConcat(vU32(1), vU32(uint32(len(funcBody))), funcBody)
	return vModule(
		vSection(wasm.SectionType, sigPayload),
		vSection(wasm.SectionFunction, vConcat(vU32(1), vU32(0))),
		vSection(wasm.SectionCode, codePayload),
	)
}

func typesBytes(ts []wasm.ValueType) []byte {
	var out []byte
	for _, t := range ts {
		out = append(out, byte(t))
	}
	return out
}

func decodeAndValidate(t *testing.T, data []byte) error {
	t.Helper()
	m, err := wasm.Decode(data)
	require.NoError(t, err)
	return Validate(m)
}

func TestValidateAcceptsWellTypedFunction(t *testing.T) {
	body := vConcat(
		[]byte{byte(wasm.OpLocalGet)}, vU32(0),
		[]byte{byte(wasm.OpI32Const)}, vS32(1),
		[]byte{byte(wasm.OpI32Add)},
		[]byte{byte(wasm.OpEnd)},
	)
	data := singleFuncModule([]wasm.ValueType{wasm.ValueTypeI32}, []wasm.ValueType{wasm.ValueTypeI32}, body)
	err := decodeAndValidate(t, data)
	assert.NoError(t, err)
}

func TestValidateRejectsMissingReturnValue(t *testing.T) {
	body := []byte{byte(wasm.OpEnd)}
	data := singleFuncModule(nil, []wasm.ValueType{wasm.ValueTypeI32}, body)
	err := decodeAndValidate(t, data)
	require.True(t, Is(err, TypeMismatch))
}

func TestValidateRejectsUnknownLocal(t *testing.T) {
	body := vConcat(
		[]byte{byte(wasm.OpLocalGet)}, vU32(5),
		[]byte{byte(wasm.OpEnd)},
	)
	data := singleFuncModule(nil, nil, body)
	err := decodeAndValidate(t, data)
	require.True(t, Is(err, UnknownLocal))
}

func TestValidateRejectsUnknownFunctionCall(t *testing.T) {
	body := vConcat(
		[]byte{byte(wasm.OpCall)}, vU32(7),
		[]byte{byte(wasm.OpEnd)},
	)
	data := singleFuncModule(nil, nil, body)
	err := decodeAndValidate(t, data)
	require.True(t, Is(err, UnknownFunction))
}

func TestValidateRejectsSetOnImmutableGlobal(t *testing.T) {
	sigPayload := vConcat(vU32(1), []byte{0x60}, vU32(0), vU32(0))
	// i32 immutable global initialized to 0.
	globalInit := vConcat([]byte{byte(wasm.OpI32Const)}, vS32(0), []byte{byte(wasm.OpEnd)})
	globalPayload := vConcat(vU32(1), []byte{byte(wasm.ValueTypeI32), 0x00}, globalInit)
	body := vConcat(
		[]byte{byte(wasm.OpI32Const)}, vS32(1),
		[]byte{byte(wasm.OpGlobalSet)}, vU32(0),
		[]byte{byte(wasm.OpEnd)},
	)
	funcBody := vConcat(vU32(0), body)
	codePayload := vConcat(vU32(1), vU32(uint32(len(funcBody))), funcBody)
	data := vModule(
		vSection(wasm.SectionType, sigPayload),
		vSection(wasm.SectionFunction, vConcat(vU32(1), vU32(0))),
		vSection(wasm.SectionGlobal, globalPayload),
		vSection(wasm.SectionCode, codePayload),
	)
	err := decodeAndValidate(t, data)
	require.True(t, Is(err, ImmutableGlobal))
}

func TestValidateRejectsOveralignedMemoryAccess(t *testing.T) {
	// i32.load with align=3 (1<<3=8 bytes), exceeding the natural
	// alignment of 4 bytes for a 32-bit load.
	body := vConcat(
		[]byte{byte(wasm.OpI32Const)}, vS32(0),
		[]byte{byte(wasm.OpI32Load)}, vU32(3), vU32(0),
		[]byte{byte(wasm.OpEnd)},
	)
	data := singleFuncModule(nil, []wasm.ValueType{wasm.ValueTypeI32}, body)
	err := decodeAndValidate(t, data)
	require.True(t, Is(err, BadAlignment))
}

func TestValidateRejectsDuplicateExportName(t *testing.T) {
	sigPayload := vConcat(vU32(1), []byte{0x60}, vU32(0), vU32(0))
	funcBody := vConcat(vU32(0), []byte{byte(wasm.OpEnd)})
	codePayload := vConcat(vU32(1), vU32(uint32(len(funcBody))), funcBody)
	data := vModule(
		vSection(wasm.SectionType, sigPayload),
		vSection(wasm.SectionFunction, vConcat(vU32(1), vU32(0))),
		vSection(wasm.SectionCode, codePayload),
	)

	// Decode itself rejects duplicate export names before Validate ever
	// runs, so the duplicate pair is attached to the decoded module
	// directly.
	m, err := wasm.Decode(data)
	require.NoError(t, err)
	m.Exports = []wasm.Export{
		{Name: "f", Kind: wasm.ExternalFunction, Index: 0},
		{Name: "f", Kind: wasm.ExternalFunction, Index: 0},
	}
	require.True(t, Is(Validate(m), DuplicateExportName))
}

func TestValidateRejectsIfWithoutElseChangingArity(t *testing.T) {
	body := vConcat(
		[]byte{byte(wasm.OpI32Const)}, vS32(1),
		[]byte{byte(wasm.OpIf), byte(wasm.ValueTypeI32)},
		[]byte{byte(wasm.OpI32Const)}, vS32(1),
		[]byte{byte(wasm.OpEnd)}, // end if, no else: pushes i32 but started with none
		[]byte{byte(wasm.OpEnd)}, // end function
	)
	data := singleFuncModule(nil, []wasm.ValueType{wasm.ValueTypeI32}, body)
	err := decodeAndValidate(t, data)
	require.True(t, Is(err, IfElseMismatch))
}
