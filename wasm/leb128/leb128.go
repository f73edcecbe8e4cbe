// Package leb128 implements LEB128 variable-length integer encoding as used
// by the WebAssembly binary format.
package leb128

import (
	"errors"
	"io"
)

// ErrOverflow is returned when a LEB128 encoding exceeds the bit width of
// its target type.
var ErrOverflow = errors.New("leb128: integer overflow")

// ErrTooLong is returned when a LEB128 encoding continues past the
// maximum byte count of its target width (5 bytes for 32 bits, 10 for 64).
var ErrTooLong = errors.New("leb128: unexpected end of encoding")

func readByte(r io.ByteReader) (byte, error) {
	return r.ReadByte()
}

// ReadVarUint32 reads an unsigned LEB128-encoded value into a uint32. It
// rejects encodings that use more than the five bytes needed to cover 32
// bits, and rejects encodings whose high bits overflow the target width.
func ReadVarUint32(r io.ByteReader) (uint32, error) {
	var result uint32
	var shift uint
	for i := 0; ; i++ {
		if i >= 5 {
			return 0, ErrTooLong
		}
		b, err := readByte(r)
		if err != nil {
			return 0, err
		}
		if i == 4 && (b&0x80) != 0 {
			return 0, ErrTooLong
		}
		chunk := uint32(b & 0x7f)
		if i == 4 && chunk&^0x0f != 0 {
			// Only the low 4 bits of the fifth byte fit within 32 bits.
			return 0, ErrOverflow
		}
		if shift < 32 {
			result |= chunk << shift
		}
		shift += 7
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

// ReadVarUint64 reads an unsigned LEB128-encoded value into a uint64,
// rejecting encodings longer than ten bytes.
func ReadVarUint64(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= 10 {
			return 0, ErrTooLong
		}
		b, err := readByte(r)
		if err != nil {
			return 0, err
		}
		if i == 9 && (b&0x80) != 0 {
			return 0, ErrTooLong
		}
		chunk := uint64(b & 0x7f)
		if i == 9 && chunk&^0x01 != 0 {
			return 0, ErrOverflow
		}
		if shift < 64 {
			result |= chunk << shift
		}
		shift += 7
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

// ReadVarint32 reads a signed LEB128-encoded value into an int32, sign
// extending through the final continuation bit.
func ReadVarint32(r io.ByteReader) (int32, error) {
	var result int32
	var shift uint
	var b byte
	var err error
	for i := 0; ; i++ {
		if i >= 5 {
			return 0, ErrTooLong
		}
		b, err = readByte(r)
		if err != nil {
			return 0, err
		}
		if i == 4 {
			if b&0x80 != 0 {
				return 0, ErrTooLong
			}
			// Bits 4-6 of the fifth byte lie beyond 32 bits and must
			// repeat the sign bit (bit 3).
			if hi := b & 0x78; hi != 0 && hi != 0x78 {
				return 0, ErrOverflow
			}
		}
		chunk := int32(b & 0x7f)
		if shift < 32 {
			result |= chunk << shift
		}
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 32 && b&0x40 != 0 {
		result |= ^int32(0) << shift
	}
	return result, nil
}

// ReadVarint64 reads a signed LEB128-encoded value into an int64, sign
// extending through the final continuation bit.
func ReadVarint64(r io.ByteReader) (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for i := 0; ; i++ {
		if i >= 10 {
			return 0, ErrTooLong
		}
		b, err = readByte(r)
		if err != nil {
			return 0, err
		}
		if i == 9 {
			if b&0x80 != 0 {
				return 0, ErrTooLong
			}
			// Only bit 0 of the tenth byte is within 64 bits; the rest
			// must repeat it.
			if b != 0x00 && b != 0x7f {
				return 0, ErrOverflow
			}
		}
		chunk := int64(b & 0x7f)
		if shift < 64 {
			result |= chunk << shift
		}
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= ^int64(0) << shift
	}
	return result, nil
}

// WriteVarUint32 writes v in unsigned LEB128 form, returning the number of
// bytes written. It exists mainly to support round-trip tests.
func WriteVarUint32(w io.Writer, v uint32) (int, error) {
	return WriteVarUint64(w, uint64(v))
}

// WriteVarUint64 writes v in unsigned LEB128 form.
func WriteVarUint64(w io.Writer, v uint64) (int, error) {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return n, err
		}
		n++
		if v == 0 {
			return n, nil
		}
	}
}

// WriteVarint32 writes v in signed LEB128 form.
func WriteVarint32(w io.Writer, v int32) (int, error) {
	return WriteVarint64(w, int64(v))
}

// WriteVarint64 writes v in signed LEB128 form.
func WriteVarint64(w io.Writer, v int64) (int, error) {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			if _, err := w.Write([]byte{b}); err != nil {
				return n, err
			}
			return n + 1, nil
		}
		b |= 0x80
		if _, err := w.Write([]byte{b}); err != nil {
			return n, err
		}
		n++
	}
}
