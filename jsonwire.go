// Package jsonwire serializes trees of typed JSON values into one of two
// wire encodings: standard UTF-8 JSON text, or a compact tagged binary
// layout with length-prefixed containers.
//
// Both encodings share one grammar state machine, so a writer can never
// produce a structurally malformed document through its typed-value surface:
// every call is validated against the current nesting context before any
// bytes are emitted, and a call that fails poisons the writer.
//
// The package also bridges token streams. WriteAll drains any Reader into
// any Writer one token at a time, which converts a document between the two
// encodings without building an intermediate object model.
package jsonwire

import (
	"github.com/google/uuid"
)

// Encoding selects the byte-level representation a writer produces.
type Encoding uint8

const (
	EncodingText Encoding = iota
	EncodingBinary
)

// String returns the encoding name for diagnostics.
func (e Encoding) String() string {
	switch e {
	case EncodingText:
		return "text"
	case EncodingBinary:
		return "binary"
	}
	return "unknown"
}

// DefaultMaxDepth is the container nesting bound applied when no
// WithMaxDepth option is given.
const DefaultMaxDepth = 128

// Writer builds one document through grammar-checked typed-value calls.
//
// A Writer is single-use: after GetResult succeeds no further values may be
// written, and after any call fails the instance must be discarded — the
// first error is latched and every subsequent call returns it. A Writer is
// not safe for concurrent use.
//
// String arguments are borrowed for the duration of the call; the writer
// copies the bytes it retains.
type Writer interface {
	// Encoding reports which representation this writer produces.
	Encoding() Encoding

	WriteObjectStart() error
	WriteObjectEnd() error
	WriteArrayStart() error
	WriteArrayEnd() error

	// WriteFieldName writes the name of the next object member. Legal only
	// directly inside an object that is not already awaiting a value.
	WriteFieldName(name string) error

	WriteStringValue(s string) error
	WriteBoolValue(v bool) error
	WriteNullValue() error
	WriteInt8Value(v int8) error
	WriteInt16Value(v int16) error
	WriteInt32Value(v int32) error
	WriteInt64Value(v int64) error
	WriteUint32Value(v uint32) error
	WriteFloat32Value(v float32) error
	WriteFloat64Value(v float64) error

	// WriteNumberValue writes a width-tagged number. Every Write*Value
	// numeric method is shorthand for this.
	WriteNumberValue(n Number64) error

	WriteGuidValue(id uuid.UUID) error
	WriteBinaryValue(data []byte) error

	// WriteRawToken copies pre-encoded bytes for a single token verbatim.
	// The bytes must be a complete, valid encoding of one token of the given
	// kind in this writer's encoding; only the token's outer placement is
	// validated, never its interior.
	WriteRawToken(kind TokenType, raw []byte) error

	// WriteJsonFragment splices a pre-encoded, already-valid fragment into
	// the output at the current value position, bypassing per-token grammar
	// checks. The caller guarantees the fragment is one structurally
	// complete value in this writer's encoding; a false guarantee produces
	// a malformed document without the writer detecting it.
	WriteJsonFragment(fragment []byte) error

	// Length returns the number of bytes accumulated so far.
	Length() int

	// Err returns the latched error, if any.
	Err() error

	// GetResult finalizes the document and returns its bytes. It fails with
	// ErrIncompleteDocument while any container is open or before the
	// top-level value is written. Once it has succeeded it is idempotent and
	// keeps returning the same bytes.
	GetResult() ([]byte, error)
}

// options collects construction parameters shared by both encoders.
type options struct {
	capacity      int
	maxDepth      int
	uncheckedText bool
}

// Option configures a writer at construction.
type Option func(*options)

// WithCapacity sets the initial buffer capacity hint.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithMaxDepth sets the container nesting bound.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithUncheckedStrings disables the escape scan and UTF-8 validation of
// string arguments in the text encoding. The caller guarantees every string
// it writes needs no escaping; if that guarantee is false the output is
// malformed JSON, not a runtime fault.
func WithUncheckedStrings() Option {
	return func(o *options) { o.uncheckedText = true }
}

func buildOptions(opts []Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxDepth <= 0 {
		o.maxDepth = DefaultMaxDepth
	}
	return o
}

// NewWriter creates a writer for the requested encoding. The encoding set is
// closed: exactly text and binary, chosen once here.
func NewWriter(enc Encoding, opts ...Option) (Writer, error) {
	switch enc {
	case EncodingText:
		return NewTextWriter(opts...), nil
	case EncodingBinary:
		return NewBinaryWriter(opts...), nil
	}
	return nil, ErrArgumentInvalid
}

// writerBase carries the state shared by both encoders: the grammar machine,
// the output buffer, and the finalized result.
type writerBase struct {
	grammar
	buf    Buffer
	result []byte
}

func (w *writerBase) init(o options) {
	w.maxDepth = o.maxDepth
	if o.capacity > 0 {
		w.buf = *NewBuffer(o.capacity)
	}
}

// Length returns the number of bytes accumulated so far.
func (w *writerBase) Length() int { return w.buf.Len() }

// Err returns the latched error, if any.
func (w *writerBase) Err() error { return w.err }

// finish implements GetResult for both encoders.
func (w *writerBase) finish() ([]byte, error) {
	if w.result != nil {
		return w.result, nil
	}
	if w.err != nil {
		return nil, w.err
	}
	if !w.complete() {
		return nil, w.fail(ErrIncompleteDocument)
	}
	w.result = w.buf.Bytes()
	return w.result, nil
}
