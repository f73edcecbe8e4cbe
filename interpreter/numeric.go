package interpreter

import (
	"math"
	"math/bits"

	"github.com/wasmkit/wasmkit/exec"
	"github.com/wasmkit/wasmkit/wasm"
)

func i32v(v int32) exec.Value   { return exec.NewI32(v) }
func i64v(v int64) exec.Value   { return exec.NewI64(v) }
func f32v(v float32) exec.Value { return exec.NewF32(v) }
func f64v(v float64) exec.Value { return exec.NewF64(v) }
func boolv(b bool) exec.Value {
	if b {
		return i32v(1)
	}
	return i32v(0)
}

// binaryOps covers every numeric instruction that pops two operands
// and pushes one result without the possibility of trapping: arithmetic,
// comparisons, bitwise, shift, and rotate.
var binaryOps = map[wasm.Opcode]func(a, b exec.Value) exec.Value{
	wasm.OpI32Eq: func(a, b exec.Value) exec.Value { return boolv(a.I32() == b.I32()) },
	wasm.OpI32Ne: func(a, b exec.Value) exec.Value { return boolv(a.I32() != b.I32()) },
	wasm.OpI32LtS: func(a, b exec.Value) exec.Value { return boolv(a.I32() < b.I32()) },
	wasm.OpI32LtU: func(a, b exec.Value) exec.Value { return boolv(uint32(a.I32()) < uint32(b.I32())) },
	wasm.OpI32GtS: func(a, b exec.Value) exec.Value { return boolv(a.I32() > b.I32()) },
	wasm.OpI32GtU: func(a, b exec.Value) exec.Value { return boolv(uint32(a.I32()) > uint32(b.I32())) },
	wasm.OpI32LeS: func(a, b exec.Value) exec.Value { return boolv(a.I32() <= b.I32()) },
	wasm.OpI32LeU: func(a, b exec.Value) exec.Value { return boolv(uint32(a.I32()) <= uint32(b.I32())) },
	wasm.OpI32GeS: func(a, b exec.Value) exec.Value { return boolv(a.I32() >= b.I32()) },
	wasm.OpI32GeU: func(a, b exec.Value) exec.Value { return boolv(uint32(a.I32()) >= uint32(b.I32())) },

	wasm.OpI64Eq: func(a, b exec.Value) exec.Value { return boolv(a.I64() == b.I64()) },
	wasm.OpI64Ne: func(a, b exec.Value) exec.Value { return boolv(a.I64() != b.I64()) },
	wasm.OpI64LtS: func(a, b exec.Value) exec.Value { return boolv(a.I64() < b.I64()) },
	wasm.OpI64LtU: func(a, b exec.Value) exec.Value { return boolv(uint64(a.I64()) < uint64(b.I64())) },
	wasm.OpI64GtS: func(a, b exec.Value) exec.Value { return boolv(a.I64() > b.I64()) },
	wasm.OpI64GtU: func(a, b exec.Value) exec.Value { return boolv(uint64(a.I64()) > uint64(b.I64())) },
	wasm.OpI64LeS: func(a, b exec.Value) exec.Value { return boolv(a.I64() <= b.I64()) },
	wasm.OpI64LeU: func(a, b exec.Value) exec.Value { return boolv(uint64(a.I64()) <= uint64(b.I64())) },
	wasm.OpI64GeS: func(a, b exec.Value) exec.Value { return boolv(a.I64() >= b.I64()) },
	wasm.OpI64GeU: func(a, b exec.Value) exec.Value { return boolv(uint64(a.I64()) >= uint64(b.I64())) },

	wasm.OpF32Eq: func(a, b exec.Value) exec.Value { return boolv(a.F32() == b.F32()) },
	wasm.OpF32Ne: func(a, b exec.Value) exec.Value { return boolv(a.F32() != b.F32()) },
	wasm.OpF32Lt: func(a, b exec.Value) exec.Value { return boolv(a.F32() < b.F32()) },
	wasm.OpF32Gt: func(a, b exec.Value) exec.Value { return boolv(a.F32() > b.F32()) },
	wasm.OpF32Le: func(a, b exec.Value) exec.Value { return boolv(a.F32() <= b.F32()) },
	wasm.OpF32Ge: func(a, b exec.Value) exec.Value { return boolv(a.F32() >= b.F32()) },

	wasm.OpF64Eq: func(a, b exec.Value) exec.Value { return boolv(a.F64() == b.F64()) },
	wasm.OpF64Ne: func(a, b exec.Value) exec.Value { return boolv(a.F64() != b.F64()) },
	wasm.OpF64Lt: func(a, b exec.Value) exec.Value { return boolv(a.F64() < b.F64()) },
	wasm.OpF64Gt: func(a, b exec.Value) exec.Value { return boolv(a.F64() > b.F64()) },
	wasm.OpF64Le: func(a, b exec.Value) exec.Value { return boolv(a.F64() <= b.F64()) },
	wasm.OpF64Ge: func(a, b exec.Value) exec.Value { return boolv(a.F64() >= b.F64()) },

	wasm.OpI32Add: func(a, b exec.Value) exec.Value { return i32v(a.I32() + b.I32()) },
	wasm.OpI32Sub: func(a, b exec.Value) exec.Value { return i32v(a.I32() - b.I32()) },
	wasm.OpI32Mul: func(a, b exec.Value) exec.Value { return i32v(a.I32() * b.I32()) },
	wasm.OpI32And: func(a, b exec.Value) exec.Value { return i32v(a.I32() & b.I32()) },
	wasm.OpI32Or:  func(a, b exec.Value) exec.Value { return i32v(a.I32() | b.I32()) },
	wasm.OpI32Xor: func(a, b exec.Value) exec.Value { return i32v(a.I32() ^ b.I32()) },
	wasm.OpI32Shl: func(a, b exec.Value) exec.Value { return i32v(a.I32() << (uint32(b.I32()) & 31)) },
	wasm.OpI32ShrS: func(a, b exec.Value) exec.Value { return i32v(a.I32() >> (uint32(b.I32()) & 31)) },
	wasm.OpI32ShrU: func(a, b exec.Value) exec.Value { return i32v(int32(uint32(a.I32()) >> (uint32(b.I32()) & 31))) },
	wasm.OpI32Rotl: func(a, b exec.Value) exec.Value { return i32v(int32(bits.RotateLeft32(uint32(a.I32()), int(b.I32())))) },
	wasm.OpI32Rotr: func(a, b exec.Value) exec.Value { return i32v(int32(bits.RotateLeft32(uint32(a.I32()), -int(b.I32())))) },

	wasm.OpI64Add: func(a, b exec.Value) exec.Value { return i64v(a.I64() + b.I64()) },
	wasm.OpI64Sub: func(a, b exec.Value) exec.Value { return i64v(a.I64() - b.I64()) },
	wasm.OpI64Mul: func(a, b exec.Value) exec.Value { return i64v(a.I64() * b.I64()) },
	wasm.OpI64And: func(a, b exec.Value) exec.Value { return i64v(a.I64() & b.I64()) },
	wasm.OpI64Or:  func(a, b exec.Value) exec.Value { return i64v(a.I64() | b.I64()) },
	wasm.OpI64Xor: func(a, b exec.Value) exec.Value { return i64v(a.I64() ^ b.I64()) },
	wasm.OpI64Shl: func(a, b exec.Value) exec.Value { return i64v(a.I64() << (uint64(b.I64()) & 63)) },
	wasm.OpI64ShrS: func(a, b exec.Value) exec.Value { return i64v(a.I64() >> (uint64(b.I64()) & 63)) },
	wasm.OpI64ShrU: func(a, b exec.Value) exec.Value { return i64v(int64(uint64(a.I64()) >> (uint64(b.I64()) & 63))) },
	wasm.OpI64Rotl: func(a, b exec.Value) exec.Value { return i64v(int64(bits.RotateLeft64(uint64(a.I64()), int(b.I64())))) },
	wasm.OpI64Rotr: func(a, b exec.Value) exec.Value { return i64v(int64(bits.RotateLeft64(uint64(a.I64()), -int(b.I64())))) },

	wasm.OpF32Add: func(a, b exec.Value) exec.Value { return f32v(a.F32() + b.F32()) },
	wasm.OpF32Sub: func(a, b exec.Value) exec.Value { return f32v(a.F32() - b.F32()) },
	wasm.OpF32Mul: func(a, b exec.Value) exec.Value { return f32v(a.F32() * b.F32()) },
	wasm.OpF32Div: func(a, b exec.Value) exec.Value { return f32v(a.F32() / b.F32()) },
	wasm.OpF32Min: func(a, b exec.Value) exec.Value { return f32v(fmin32(a.F32(), b.F32())) },
	wasm.OpF32Max: func(a, b exec.Value) exec.Value { return f32v(fmax32(a.F32(), b.F32())) },
	wasm.OpF32Copysign: func(a, b exec.Value) exec.Value { return f32v(float32(math.Copysign(float64(a.F32()), float64(b.F32())))) },

	wasm.OpF64Add: func(a, b exec.Value) exec.Value { return f64v(a.F64() + b.F64()) },
	wasm.OpF64Sub: func(a, b exec.Value) exec.Value { return f64v(a.F64() - b.F64()) },
	wasm.OpF64Mul: func(a, b exec.Value) exec.Value { return f64v(a.F64() * b.F64()) },
	wasm.OpF64Div: func(a, b exec.Value) exec.Value { return f64v(a.F64() / b.F64()) },
	wasm.OpF64Min: func(a, b exec.Value) exec.Value { return f64v(fmin64(a.F64(), b.F64())) },
	wasm.OpF64Max: func(a, b exec.Value) exec.Value { return f64v(fmax64(a.F64(), b.F64())) },
	wasm.OpF64Copysign: func(a, b exec.Value) exec.Value { return f64v(math.Copysign(a.F64(), b.F64())) },
}

// trappingBinaryOps covers integer division and remainder, the only
// binary numeric operations that can fail.
var trappingBinaryOps = map[wasm.Opcode]func(a, b exec.Value) (exec.Value, error){
	wasm.OpI32DivS: func(a, b exec.Value) (exec.Value, error) {
		x, y := a.I32(), b.I32()
		if y == 0 {
			return exec.Value{}, exec.TrapIntegerDivisionByZero
		}
		if x == math.MinInt32 && y == -1 {
			return exec.Value{}, exec.TrapIntegerOverflow
		}
		return i32v(x / y), nil
	},
	wasm.OpI32DivU: func(a, b exec.Value) (exec.Value, error) {
		x, y := uint32(a.I32()), uint32(b.I32())
		if y == 0 {
			return exec.Value{}, exec.TrapIntegerDivisionByZero
		}
		return i32v(int32(x / y)), nil
	},
	wasm.OpI32RemS: func(a, b exec.Value) (exec.Value, error) {
		x, y := a.I32(), b.I32()
		if y == 0 {
			return exec.Value{}, exec.TrapIntegerDivisionByZero
		}
		if x == math.MinInt32 && y == -1 {
			return i32v(0), nil
		}
		return i32v(x % y), nil
	},
	wasm.OpI32RemU: func(a, b exec.Value) (exec.Value, error) {
		x, y := uint32(a.I32()), uint32(b.I32())
		if y == 0 {
			return exec.Value{}, exec.TrapIntegerDivisionByZero
		}
		return i32v(int32(x % y)), nil
	},
	wasm.OpI64DivS: func(a, b exec.Value) (exec.Value, error) {
		x, y := a.I64(), b.I64()
		if y == 0 {
			return exec.Value{}, exec.TrapIntegerDivisionByZero
		}
		if x == math.MinInt64 && y == -1 {
			return exec.Value{}, exec.TrapIntegerOverflow
		}
		return i64v(x / y), nil
	},
	wasm.OpI64DivU: func(a, b exec.Value) (exec.Value, error) {
		x, y := uint64(a.I64()), uint64(b.I64())
		if y == 0 {
			return exec.Value{}, exec.TrapIntegerDivisionByZero
		}
		return i64v(int64(x / y)), nil
	},
	wasm.OpI64RemS: func(a, b exec.Value) (exec.Value, error) {
		x, y := a.I64(), b.I64()
		if y == 0 {
			return exec.Value{}, exec.TrapIntegerDivisionByZero
		}
		if x == math.MinInt64 && y == -1 {
			return i64v(0), nil
		}
		return i64v(x % y), nil
	},
	wasm.OpI64RemU: func(a, b exec.Value) (exec.Value, error) {
		x, y := uint64(a.I64()), uint64(b.I64())
		if y == 0 {
			return exec.Value{}, exec.TrapIntegerDivisionByZero
		}
		return i64v(int64(x % y)), nil
	},
}

// unaryOps covers every single-operand numeric instruction that cannot
// trap: bit-counting, float rounding, sign manipulation, conversions
// that are always in range, and bit reinterpretation.
var unaryOps = map[wasm.Opcode]func(a exec.Value) exec.Value{
	wasm.OpI32Eqz: func(a exec.Value) exec.Value { return boolv(a.I32() == 0) },
	wasm.OpI64Eqz: func(a exec.Value) exec.Value { return boolv(a.I64() == 0) },

	wasm.OpI32Clz:    func(a exec.Value) exec.Value { return i32v(int32(bits.LeadingZeros32(uint32(a.I32())))) },
	wasm.OpI32Ctz:    func(a exec.Value) exec.Value { return i32v(int32(bits.TrailingZeros32(uint32(a.I32())))) },
	wasm.OpI32Popcnt: func(a exec.Value) exec.Value { return i32v(int32(bits.OnesCount32(uint32(a.I32())))) },
	wasm.OpI64Clz:    func(a exec.Value) exec.Value { return i64v(int64(bits.LeadingZeros64(uint64(a.I64())))) },
	wasm.OpI64Ctz:    func(a exec.Value) exec.Value { return i64v(int64(bits.TrailingZeros64(uint64(a.I64())))) },
	wasm.OpI64Popcnt: func(a exec.Value) exec.Value { return i64v(int64(bits.OnesCount64(uint64(a.I64())))) },

	wasm.OpF32Abs:     func(a exec.Value) exec.Value { return f32v(float32(math.Abs(float64(a.F32())))) },
	wasm.OpF32Neg:     func(a exec.Value) exec.Value { return f32v(-a.F32()) },
	wasm.OpF32Ceil:    func(a exec.Value) exec.Value { return f32v(float32(math.Ceil(float64(a.F32())))) },
	wasm.OpF32Floor:   func(a exec.Value) exec.Value { return f32v(float32(math.Floor(float64(a.F32())))) },
	wasm.OpF32Trunc:   func(a exec.Value) exec.Value { return f32v(float32(math.Trunc(float64(a.F32())))) },
	wasm.OpF32Nearest: func(a exec.Value) exec.Value { return f32v(float32(math.RoundToEven(float64(a.F32())))) },
	wasm.OpF32Sqrt:    func(a exec.Value) exec.Value { return f32v(float32(math.Sqrt(float64(a.F32())))) },

	wasm.OpF64Abs:     func(a exec.Value) exec.Value { return f64v(math.Abs(a.F64())) },
	wasm.OpF64Neg:     func(a exec.Value) exec.Value { return f64v(-a.F64()) },
	wasm.OpF64Ceil:    func(a exec.Value) exec.Value { return f64v(math.Ceil(a.F64())) },
	wasm.OpF64Floor:   func(a exec.Value) exec.Value { return f64v(math.Floor(a.F64())) },
	wasm.OpF64Trunc:   func(a exec.Value) exec.Value { return f64v(math.Trunc(a.F64())) },
	wasm.OpF64Nearest: func(a exec.Value) exec.Value { return f64v(math.RoundToEven(a.F64())) },
	wasm.OpF64Sqrt:    func(a exec.Value) exec.Value { return f64v(math.Sqrt(a.F64())) },

	wasm.OpI32WrapI64:    func(a exec.Value) exec.Value { return i32v(int32(a.I64())) },
	wasm.OpI64ExtendI32S: func(a exec.Value) exec.Value { return i64v(int64(a.I32())) },
	wasm.OpI64ExtendI32U: func(a exec.Value) exec.Value { return i64v(int64(uint32(a.I32()))) },

	wasm.OpF32ConvertI32S: func(a exec.Value) exec.Value { return f32v(float32(a.I32())) },
	wasm.OpF32ConvertI32U: func(a exec.Value) exec.Value { return f32v(float32(uint32(a.I32()))) },
	wasm.OpF32ConvertI64S: func(a exec.Value) exec.Value { return f32v(float32(a.I64())) },
	wasm.OpF32ConvertI64U: func(a exec.Value) exec.Value { return f32v(float32(uint64(a.I64()))) },
	wasm.OpF32DemoteF64:   func(a exec.Value) exec.Value { return f32v(float32(a.F64())) },
	wasm.OpF64ConvertI32S: func(a exec.Value) exec.Value { return f64v(float64(a.I32())) },
	wasm.OpF64ConvertI32U: func(a exec.Value) exec.Value { return f64v(float64(uint32(a.I32()))) },
	wasm.OpF64ConvertI64S: func(a exec.Value) exec.Value { return f64v(float64(a.I64())) },
	wasm.OpF64ConvertI64U: func(a exec.Value) exec.Value { return f64v(float64(uint64(a.I64()))) },
	wasm.OpF64PromoteF32:  func(a exec.Value) exec.Value { return f64v(float64(a.F32())) },

	wasm.OpI32ReinterpretF32: func(a exec.Value) exec.Value { return exec.Value{Type: wasm.ValueTypeI32, Num: a.Num} },
	wasm.OpI64ReinterpretF64: func(a exec.Value) exec.Value { return exec.Value{Type: wasm.ValueTypeI64, Num: a.Num} },
	wasm.OpF32ReinterpretI32: func(a exec.Value) exec.Value { return exec.Value{Type: wasm.ValueTypeF32, Num: a.Num} },
	wasm.OpF64ReinterpretI64: func(a exec.Value) exec.Value { return exec.Value{Type: wasm.ValueTypeF64, Num: a.Num} },

	wasm.OpI32Extend8S:  func(a exec.Value) exec.Value { return i32v(int32(int8(a.I32()))) },
	wasm.OpI32Extend16S: func(a exec.Value) exec.Value { return i32v(int32(int16(a.I32()))) },
	wasm.OpI64Extend8S:  func(a exec.Value) exec.Value { return i64v(int64(int8(a.I64()))) },
	wasm.OpI64Extend16S: func(a exec.Value) exec.Value { return i64v(int64(int16(a.I64()))) },
	wasm.OpI64Extend32S: func(a exec.Value) exec.Value { return i64v(int64(int32(a.I64()))) },
}

func fmin32(a, b float32) float32 {
	if math.IsNaN(float64(a)) {
		return a
	}
	if math.IsNaN(float64(b)) {
		return b
	}
	if a == b {
		if math.Signbit(float64(a)) {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

func fmax32(a, b float32) float32 {
	if math.IsNaN(float64(a)) {
		return a
	}
	if math.IsNaN(float64(b)) {
		return b
	}
	if a == b {
		if math.Signbit(float64(a)) {
			return b
		}
		return a
	}
	if a > b {
		return a
	}
	return b
}

func fmin64(a, b float64) float64 {
	if math.IsNaN(a) {
		return a
	}
	if math.IsNaN(b) {
		return b
	}
	if a == b {
		if math.Signbit(a) {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

func fmax64(a, b float64) float64 {
	if math.IsNaN(a) {
		return a
	}
	if math.IsNaN(b) {
		return b
	}
	if a == b {
		if math.Signbit(a) {
			return b
		}
		return a
	}
	if a > b {
		return a
	}
	return b
}

// truncI32S, truncI32U, truncI64S and truncI64U bound a float-to-int
// truncation: they report false for NaN and out-of-range inputs, which
// the non-saturating trunc instructions turn into a trap rather than
// silently wrapping.
func truncI32S(v float64) (int32, bool) {
	if math.IsNaN(v) || v < -2147483648.0 || v >= 2147483648.0 {
		return 0, false
	}
	return int32(v), true
}

func truncI32U(v float64) (uint32, bool) {
	if math.IsNaN(v) || v < 0 || v >= 4294967296.0 {
		return 0, false
	}
	return uint32(v), true
}

func truncI64S(v float64) (int64, bool) {
	if math.IsNaN(v) || v < -9223372036854775808.0 || v >= 9223372036854775808.0 {
		return 0, false
	}
	return int64(v), true
}

func truncI64U(v float64) (uint64, bool) {
	if math.IsNaN(v) || v < 0 || v >= 18446744073709551616.0 {
		return 0, false
	}
	return uint64(v), true
}

// truncatingOps covers the float-to-int conversions that trap on NaN
// or out-of-range input.
var truncatingOps = map[wasm.Opcode]func(a exec.Value) (exec.Value, error){
	wasm.OpI32TruncF32S: func(a exec.Value) (exec.Value, error) {
		v, ok := truncI32S(float64(a.F32()))
		if !ok {
			return exec.Value{}, exec.TrapInvalidIntegerConversion
		}
		return i32v(v), nil
	},
	wasm.OpI32TruncF32U: func(a exec.Value) (exec.Value, error) {
		v, ok := truncI32U(float64(a.F32()))
		if !ok {
			return exec.Value{}, exec.TrapInvalidIntegerConversion
		}
		return i32v(int32(v)), nil
	},
	wasm.OpI32TruncF64S: func(a exec.Value) (exec.Value, error) {
		v, ok := truncI32S(a.F64())
		if !ok {
			return exec.Value{}, exec.TrapInvalidIntegerConversion
		}
		return i32v(v), nil
	},
	wasm.OpI32TruncF64U: func(a exec.Value) (exec.Value, error) {
		v, ok := truncI32U(a.F64())
		if !ok {
			return exec.Value{}, exec.TrapInvalidIntegerConversion
		}
		return i32v(int32(v)), nil
	},
	wasm.OpI64TruncF32S: func(a exec.Value) (exec.Value, error) {
		v, ok := truncI64S(float64(a.F32()))
		if !ok {
			return exec.Value{}, exec.TrapInvalidIntegerConversion
		}
		return i64v(v), nil
	},
	wasm.OpI64TruncF32U: func(a exec.Value) (exec.Value, error) {
		v, ok := truncI64U(float64(a.F32()))
		if !ok {
			return exec.Value{}, exec.TrapInvalidIntegerConversion
		}
		return i64v(int64(v)), nil
	},
	wasm.OpI64TruncF64S: func(a exec.Value) (exec.Value, error) {
		v, ok := truncI64S(a.F64())
		if !ok {
			return exec.Value{}, exec.TrapInvalidIntegerConversion
		}
		return i64v(v), nil
	},
	wasm.OpI64TruncF64U: func(a exec.Value) (exec.Value, error) {
		v, ok := truncI64U(a.F64())
		if !ok {
			return exec.Value{}, exec.TrapInvalidIntegerConversion
		}
		return i64v(int64(v)), nil
	},
}

func satI32S(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -2147483648.0 {
		return math.MinInt32
	}
	if v >= 2147483648.0 {
		return math.MaxInt32
	}
	return int32(v)
}

func satI32U(v float64) uint32 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= 4294967296.0 {
		return math.MaxUint32
	}
	return uint32(v)
}

func satI64S(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -9223372036854775808.0 {
		return math.MinInt64
	}
	if v >= 9223372036854775808.0 {
		return math.MaxInt64
	}
	return int64(v)
}

func satI64U(v float64) uint64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= 18446744073709551616.0 {
		return math.MaxUint64
	}
	return uint64(v)
}

// saturatingOps implements the 0xFC-prefixed non-trapping conversions.
var saturatingOps = map[wasm.PrefixOp]func(a exec.Value) exec.Value{
	wasm.OpI32TruncSatF32S: func(a exec.Value) exec.Value { return i32v(satI32S(float64(a.F32()))) },
	wasm.OpI32TruncSatF32U: func(a exec.Value) exec.Value { return i32v(int32(satI32U(float64(a.F32())))) },
	wasm.OpI32TruncSatF64S: func(a exec.Value) exec.Value { return i32v(satI32S(a.F64())) },
	wasm.OpI32TruncSatF64U: func(a exec.Value) exec.Value { return i32v(int32(satI32U(a.F64()))) },
	wasm.OpI64TruncSatF32S: func(a exec.Value) exec.Value { return i64v(satI64S(float64(a.F32()))) },
	wasm.OpI64TruncSatF32U: func(a exec.Value) exec.Value { return i64v(int64(satI64U(float64(a.F32())))) },
	wasm.OpI64TruncSatF64S: func(a exec.Value) exec.Value { return i64v(satI64S(a.F64())) },
	wasm.OpI64TruncSatF64U: func(a exec.Value) exec.Value { return i64v(int64(satI64U(a.F64()))) },
}
