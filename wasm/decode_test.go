package wasm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmkit/wasmkit/wasm/leb128"
)

func testU32(v uint32) []byte {
	var b bytes.Buffer
	leb128.WriteVarUint32(&b, v)
	return b.Bytes()
}

func testName(s string) []byte {
	return append(testU32(uint32(len(s))), []byte(s)...)
}

func testSection(id SectionID, payload []byte) []byte {
	return append(append([]byte{byte(id)}, testU32(uint32(len(payload)))...), payload...)
}

func testConcat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func testModule(sections ...[]byte) []byte {
	header := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	return append(header, testConcat(sections...)...)
}

func emptyTypeSection() []byte {
	return testSection(SectionType, testU32(0))
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00})
	require.True(t, IsMalformed(err, MalformedMagicSignature))
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00})
	require.True(t, IsMalformed(err, MalformedUnsupportedWasmVersion))
}

func TestDecodeEmptyModule(t *testing.T) {
	m, err := Decode(testModule())
	require.NoError(t, err)
	assert.Empty(t, m.Types)
	assert.Empty(t, m.Funcs)
}

func TestDecodeRejectsOutOfOrderSections(t *testing.T) {
	// Function section (rank 2) before type section (rank 0).
	data := testModule(
		testSection(SectionFunction, testU32(0)),
		emptyTypeSection(),
	)
	_, err := Decode(data)
	require.True(t, IsMalformed(err, MalformedSectionOrder))
}

func TestDecodeRejectsFunctionCodeSectionMismatch(t *testing.T) {
	sigPayload := testConcat(testU32(1), []byte{0x60}, testU32(0), testU32(0))
	data := testModule(
		testSection(SectionType, sigPayload),
		testSection(SectionFunction, testConcat(testU32(1), testU32(0))),
		// no code section at all: one declared function, zero bodies.
	)
	_, err := Decode(data)
	require.True(t, IsMalformed(err, MalformedFunctionCodeSectionMismatch))
}

func TestDecodeRejectsDataCountMismatch(t *testing.T) {
	data := testModule(
		testSection(SectionDataCount, testU32(1)),
		testSection(SectionData, testU32(0)), // zero data segments, declared 1
	)
	_, err := Decode(data)
	require.True(t, IsMalformed(err, MalformedDataCountMismatch))
}

func TestDecodeRejectsDuplicateExportNames(t *testing.T) {
	sigPayload := testConcat(testU32(1), []byte{0x60}, testU32(0), testU32(0))
	funcBody := testConcat(testU32(0), []byte{byte(OpEnd)})
	codePayload := testConcat(testU32(1), testU32(uint32(len(funcBody))), funcBody)
	exportPayload := testConcat(
		testU32(2),
		testName("f"), []byte{byte(ExternalFunction)}, testU32(0),
		testName("f"), []byte{byte(ExternalFunction)}, testU32(0),
	)
	data := testModule(
		testSection(SectionType, sigPayload),
		testSection(SectionFunction, testConcat(testU32(1), testU32(0))),
		testSection(SectionExport, exportPayload),
		testSection(SectionCode, codePayload),
	)
	_, err := Decode(data)
	require.Error(t, err)
	var dup *DuplicateExportError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "f", dup.Name)
}

func TestDecodeImportFunctionType(t *testing.T) {
	sigPayload := testConcat(testU32(1), []byte{0x60}, testU32(0), testU32(0))
	importPayload := testConcat(
		testU32(1),
		testName("env"), testName("f"), []byte{byte(ExternalFunction)}, testU32(0),
	)
	data := testModule(
		testSection(SectionType, sigPayload),
		testSection(SectionImport, importPayload),
	)
	m, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, m.Funcs, 1)
	assert.True(t, m.Funcs[0].IsImport)
	assert.Equal(t, 1, m.NumFuncImports())
}
