package jsonwire

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

var (
	// BE is the byte order of every multi-byte field in the binary encoding.
	BE = binary.BigEndian
)

// bufferAlign is the allocation granularity of Buffer growth. Rounding new
// capacities to this boundary keeps reallocation counts low for the many
// small appends an encoder performs.
const bufferAlign = 64

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// Buffer is an append-only byte store backing a writer. It grows by geometric
// reallocation and additionally supports patching a previously reserved
// 4-byte slot, which the binary encoding uses for container length prefixes.
//
// The zero value is ready to use.
type Buffer struct {
	b []byte
}

// NewBuffer creates a Buffer with an initial capacity hint.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		return &Buffer{}
	}
	return &Buffer{b: make([]byte, 0, capacity)}
}

// grow ensures capacity for n more bytes. Capacity at least doubles on every
// reallocation to amortize the copy cost.
func (b *Buffer) grow(n int) {
	need := len(b.b) + n
	if need <= cap(b.b) {
		return
	}
	newCap := Roundup(max(2*cap(b.b), need), bufferAlign)
	grown := make([]byte, len(b.b), newCap)
	copy(grown, b.b)
	b.b = grown
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) {
	b.grow(1)
	b.b = append(b.b, c)
}

// Append appends a byte slice.
func (b *Buffer) Append(p []byte) {
	b.grow(len(p))
	b.b = append(b.b, p...)
}

// AppendString appends the raw bytes of a string.
func (b *Buffer) AppendString(s string) {
	b.grow(len(s))
	b.b = append(b.b, s...)
}

// AppendUint16 appends v in the encoding's byte order.
func (b *Buffer) AppendUint16(v uint16) {
	b.grow(2)
	b.b = BE.AppendUint16(b.b, v)
}

// AppendUint32 appends v in the encoding's byte order.
func (b *Buffer) AppendUint32(v uint32) {
	b.grow(4)
	b.b = BE.AppendUint32(b.b, v)
}

// AppendUint64 appends v in the encoding's byte order.
func (b *Buffer) AppendUint64(v uint64) {
	b.grow(8)
	b.b = BE.AppendUint64(b.b, v)
}

// Reserve appends n zero bytes and returns their offset, for later patching.
func (b *Buffer) Reserve(n int) int {
	off := len(b.b)
	b.grow(n)
	for i := 0; i < n; i++ {
		b.b = append(b.b, 0)
	}
	return off
}

// PatchUint32 overwrites 4 previously reserved bytes at off with v.
func (b *Buffer) PatchUint32(off int, v uint32) {
	BE.PutUint32(b.b[off:off+4], v)
}

// Len returns the number of bytes accumulated so far.
func (b *Buffer) Len() int { return len(b.b) }

// Bytes returns a view of the accumulated bytes. The view aliases the
// buffer's storage; callers must not append afterwards.
func (b *Buffer) Bytes() []byte { return b.b }

// Reset allows the underlying storage to be reused.
func (b *Buffer) Reset() { b.b = b.b[:0] }
