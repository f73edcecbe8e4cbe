package leb128

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteVarUint32(t *testing.T) {
	cases := []struct {
		v uint32
		b []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{0xffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, c := range cases {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			buf := new(bytes.Buffer)
			_, err := WriteVarUint32(buf, c.v)
			require.NoError(t, err)
			assert.Equal(t, c.b, buf.Bytes())
		})
	}
}

func TestWriteVarint64(t *testing.T) {
	cases := []struct {
		v int64
		b []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{-1, []byte{0x7f}},
		{63, []byte{0x3f}},
		{-64, []byte{0x40}},
		{64, []byte{0xc0, 0x00}},
		{-129, []byte{0xff, 0x7e}},
	}
	for _, c := range cases {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			buf := new(bytes.Buffer)
			_, err := WriteVarint64(buf, c.v)
			require.NoError(t, err)
			assert.Equal(t, c.b, buf.Bytes())
		})
	}
}

func TestWriteReadInt64(t *testing.T) {
	r := rand.New(rand.NewSource(time.Now().Unix()))

	var buf bytes.Buffer
	for i := 0; i < 5000; i++ {
		n := r.Int63()

		buf.Reset()
		_, err := WriteVarint64(&buf, n)
		require.NoError(t, err)

		v, err := ReadVarint64(&buf)
		require.NoError(t, err)
		assert.Equal(t, n, v)
	}
}

func TestWriteReadInt32(t *testing.T) {
	r := rand.New(rand.NewSource(time.Now().Unix()))

	var buf bytes.Buffer
	for i := 0; i < 5000; i++ {
		n := r.Int31()

		buf.Reset()
		_, err := WriteVarint64(&buf, int64(n))
		require.NoError(t, err)

		v, err := ReadVarint32(&buf)
		require.NoError(t, err)
		assert.Equal(t, n, v)
	}
}

func TestWriteReadUint32(t *testing.T) {
	r := rand.New(rand.NewSource(time.Now().Unix()))

	var buf bytes.Buffer
	for i := 0; i < 5000; i++ {
		n := r.Uint32()

		buf.Reset()
		_, err := WriteVarUint32(&buf, n)
		require.NoError(t, err)

		v, err := ReadVarUint32(&buf)
		require.NoError(t, err)
		assert.Equal(t, n, v)
	}
}
