package leb128

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripVarUint32(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 255, 300, 1 << 20, 0xffffffff}
	for _, v := range values {
		var buf bytes.Buffer
		_, err := WriteVarUint32(&buf, v)
		require.NoError(t, err)

		got, err := ReadVarUint32(&buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestRoundTripVarint64(t *testing.T) {
	values := []int64{0, -1, 1, 127, -127, 1 << 40, -(1 << 40)}
	for _, v := range values {
		var buf bytes.Buffer
		_, err := WriteVarint64(&buf, v)
		require.NoError(t, err)

		got, err := ReadVarint64(&buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestReadVarUint32RejectsOverlongEncoding(t *testing.T) {
	// Five continuation bytes encoding zero, followed by a sixth byte: too long.
	buf := bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00})
	_, err := ReadVarUint32(buf)
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestReadVarUint32RejectsOverflow(t *testing.T) {
	// Fifth byte carries bits beyond the 32nd.
	buf := bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x1f})
	_, err := ReadVarUint32(buf)
	assert.ErrorIs(t, err, ErrOverflow)
}
