package jsonwire

import (
	"math"
	"strconv"
)

// NumberKind identifies the originating width of a Number64.
type NumberKind uint8

const (
	NumberInt8 NumberKind = iota
	NumberInt16
	NumberInt32
	NumberInt64
	NumberUint32
	NumberFloat32
	NumberFloat64
)

// String returns the kind name for diagnostics.
func (k NumberKind) String() string {
	switch k {
	case NumberInt8:
		return "int8"
	case NumberInt16:
		return "int16"
	case NumberInt32:
		return "int32"
	case NumberInt64:
		return "int64"
	case NumberUint32:
		return "uint32"
	case NumberFloat32:
		return "float32"
	case NumberFloat64:
		return "float64"
	}
	return "unknown"
}

// Number64 is a numeric value tagged with its originating width, so that
// encoding never silently truncates or loses precision. Integers are stored
// sign-extended, floats as their IEEE 754 bit pattern at the declared width.
type Number64 struct {
	kind NumberKind
	bits uint64
}

func NumberFromInt8(v int8) Number64   { return Number64{NumberInt8, uint64(int64(v))} }
func NumberFromInt16(v int16) Number64 { return Number64{NumberInt16, uint64(int64(v))} }
func NumberFromInt32(v int32) Number64 { return Number64{NumberInt32, uint64(int64(v))} }
func NumberFromInt64(v int64) Number64 { return Number64{NumberInt64, uint64(v)} }
func NumberFromUint32(v uint32) Number64 {
	return Number64{NumberUint32, uint64(v)}
}
func NumberFromFloat32(v float32) Number64 {
	return Number64{NumberFloat32, uint64(math.Float32bits(v))}
}
func NumberFromFloat64(v float64) Number64 {
	return Number64{NumberFloat64, math.Float64bits(v)}
}

// Kind returns the originating width.
func (n Number64) Kind() NumberKind { return n.kind }

// IsFloat reports whether the number carries a floating-point kind.
func (n Number64) IsFloat() bool {
	return n.kind == NumberFloat32 || n.kind == NumberFloat64
}

// Int64 returns the sign-extended integer value. Valid for integer kinds.
func (n Number64) Int64() int64 { return int64(n.bits) }

// Uint32 returns the unsigned value. Valid for NumberUint32.
func (n Number64) Uint32() uint32 { return uint32(n.bits) }

// Float32 returns the value at 32-bit width. Valid for NumberFloat32.
func (n Number64) Float32() float32 { return math.Float32frombits(uint32(n.bits)) }

// Float64 returns the value at 64-bit width. Valid for NumberFloat64.
func (n Number64) Float64() float64 { return math.Float64frombits(n.bits) }

// float64At widens the stored float to float64 regardless of declared width.
func (n Number64) float64At() float64 {
	if n.kind == NumberFloat32 {
		return float64(n.Float32())
	}
	return n.Float64()
}

// finite reports whether a float kind holds a value JSON text can express.
// Integer kinds are always finite.
func (n Number64) finite() bool {
	if !n.IsFloat() {
		return true
	}
	f := n.float64At()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// AppendNumber appends the exact decimal rendering of n to the buffer.
func (b *Buffer) AppendNumber(n Number64) {
	b.grow(32)
	b.b = n.AppendText(b.b)
}

// AppendText appends the exact decimal rendering of the number. Integers of
// every width render as exact decimal literals; floats render in the
// shortest form that round-trips at their declared width.
func (n Number64) AppendText(dst []byte) []byte {
	switch n.kind {
	case NumberUint32:
		return strconv.AppendUint(dst, uint64(uint32(n.bits)), 10)
	case NumberFloat32:
		return strconv.AppendFloat(dst, float64(n.Float32()), 'g', -1, 32)
	case NumberFloat64:
		return strconv.AppendFloat(dst, n.Float64(), 'g', -1, 64)
	default:
		return strconv.AppendInt(dst, int64(n.bits), 10)
	}
}
