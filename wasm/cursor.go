package wasm

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/wasmkit/wasmkit/wasm/leb128"
)

// Cursor is a bounded, position-tracking byte reader. The decoder uses one
// Cursor per section payload and per function body; the interpreter uses
// one to decode the immediates of the instruction at the current program
// counter, discarding it once the opcode has been handled.
type Cursor struct {
	Data []byte
	Pos  int
}

// NewCursor wraps data for sequential decoding starting at offset 0.
func NewCursor(data []byte) *Cursor {
	return &Cursor{Data: data}
}

// ReadByte implements io.ByteReader so the leb128 decoders can read
// directly from a Cursor.
func (c *Cursor) ReadByte() (byte, error) {
	if c.Pos >= len(c.Data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := c.Data[c.Pos]
	c.Pos++
	return b, nil
}

// PeekByte returns the next byte without advancing the cursor.
func (c *Cursor) PeekByte() (byte, error) {
	if c.Pos >= len(c.Data) {
		return 0, io.ErrUnexpectedEOF
	}
	return c.Data[c.Pos], nil
}

// Remaining reports how many bytes are left unread.
func (c *Cursor) Remaining() int {
	return len(c.Data) - c.Pos
}

// AtEnd reports whether the cursor has consumed all of its data.
func (c *Cursor) AtEnd() bool {
	return c.Pos >= len(c.Data)
}

// ReadBytes reads and returns the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.Pos+n > len(c.Data) {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.Data[c.Pos : c.Pos+n]
	c.Pos += n
	return b, nil
}

// ReadU32LE reads a little-endian 32-bit integer (used only for the module
// header's magic number and version).
func (c *Cursor) ReadU32LE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadVarUint32 reads an unsigned LEB128 value, rejecting encodings wider
// than 32 bits.
func (c *Cursor) ReadVarUint32() (uint32, error) {
	start := c.Pos
	v, err := leb128.ReadVarUint32(c)
	if err != nil {
		return 0, translateLEB128Error(err, start, c.Pos)
	}
	return v, nil
}

// ReadVarUint64 reads an unsigned LEB128 value, rejecting encodings wider
// than 64 bits.
func (c *Cursor) ReadVarUint64() (uint64, error) {
	start := c.Pos
	v, err := leb128.ReadVarUint64(c)
	if err != nil {
		return 0, translateLEB128Error(err, start, c.Pos)
	}
	return v, nil
}

// ReadVarint32 reads a signed LEB128 value, rejecting encodings wider than
// 32 bits.
func (c *Cursor) ReadVarint32() (int32, error) {
	start := c.Pos
	v, err := leb128.ReadVarint32(c)
	if err != nil {
		return 0, translateLEB128Error(err, start, c.Pos)
	}
	return v, nil
}

// ReadVarint64 reads a signed LEB128 value, rejecting encodings wider than
// 64 bits.
func (c *Cursor) ReadVarint64() (int64, error) {
	start := c.Pos
	v, err := leb128.ReadVarint64(c)
	if err != nil {
		return 0, translateLEB128Error(err, start, c.Pos)
	}
	return v, nil
}

// ReadBlockType reads a blocktype immediate (the s33 encoding shared by
// block, loop, and if).
func (c *Cursor) ReadBlockType() (BlockType, error) {
	v, err := c.ReadVarint64()
	if err != nil {
		return 0, err
	}
	return BlockType(v), nil
}

func translateLEB128Error(err error, start, end int) error {
	switch err {
	case leb128.ErrTooLong:
		return NewMalformedError(MalformedLEB128, "")
	case leb128.ErrOverflow:
		return NewMalformedError(MalformedIntegerTooLarge, "")
	default:
		return err
	}
}

// ReadName reads a length-prefixed, UTF-8-validated name string.
func (c *Cursor) ReadName() (string, error) {
	n, err := c.ReadVarUint32()
	if err != nil {
		return "", err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", NewMalformedError(MalformedUTF8Encoding, "")
	}
	return string(b), nil
}

// ReadValueType reads a single value-type byte.
func (c *Cursor) ReadValueType() (ValueType, error) {
	b, err := c.ReadByte()
	if err != nil {
		return 0, err
	}
	switch ValueType(b) {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64:
		return ValueType(b), nil
	case ValueTypeFuncRef, ValueTypeExternRef:
		return ValueType(b), nil
	default:
		return 0, NewMalformedError(MalformedType, "")
	}
}

// ReadReferenceType reads a single value-type byte, rejecting anything but
// funcref/externref.
func (c *Cursor) ReadReferenceType() (ValueType, error) {
	b, err := c.ReadByte()
	if err != nil {
		return 0, err
	}
	switch ValueType(b) {
	case ValueTypeFuncRef, ValueTypeExternRef:
		return ValueType(b), nil
	default:
		return 0, NewMalformedError(MalformedReferenceType, "")
	}
}

// ReadLimits reads a limits record: a flag byte followed by a minimum and
// (if the flag indicates one) a maximum.
func (c *Cursor) ReadLimits() (Limits, error) {
	flags, err := c.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	if flags > 1 {
		return Limits{}, NewMalformedError(MalformedLimits, "")
	}
	min, err := c.ReadVarUint32()
	if err != nil {
		return Limits{}, err
	}
	l := Limits{Min: min}
	if flags == 1 {
		max, err := c.ReadVarUint32()
		if err != nil {
			return Limits{}, err
		}
		l.Max = max
		l.HasMax = true
	}
	return l, nil
}
