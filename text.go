package jsonwire

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TextWriter renders a document as UTF-8 JSON text. Structural punctuation
// is emitted exclusively as a byproduct of grammar transitions: commas when
// an array or object gains a second member, colons after field names, braces
// and brackets at container open and close. Value writers never emit
// punctuation themselves, so the two cannot disagree.
//
// Guid and binary values have no native textual JSON form; they render as
// single-key wrapper objects {"$guid":"..."} and {"$binary":"..."} (base64),
// which a reader of the same convention maps back to guid and binary tokens.
type TextWriter struct {
	writerBase
	unchecked bool
}

var _ Writer = (*TextWriter)(nil)

// NewTextWriter creates a text writer.
func NewTextWriter(opts ...Option) *TextWriter {
	o := buildOptions(opts)
	w := &TextWriter{unchecked: o.uncheckedText}
	w.init(o)
	return w
}

// Encoding reports EncodingText.
func (w *TextWriter) Encoding() Encoding { return EncodingText }

// beginValue emits the member separator owed before a value in the current
// context. Only array members need one here; object members get their comma
// at the field name and their colon covers the value position.
func (w *TextWriter) beginValue() {
	if top := w.top(); top != nil && top.kind == contextArray && top.count > 0 {
		w.buf.AppendByte(',')
	}
}

// checkText validates a caller-supplied string. The unchecked mode is a
// caller contract: validation is skipped entirely and malformed input yields
// malformed output, not an error.
func (w *TextWriter) checkText(s string) error {
	if w.unchecked || utf8.ValidString(s) {
		return nil
	}
	return w.fail(fmt.Errorf("%w: string is not valid UTF-8", ErrArgumentInvalid))
}

func (w *TextWriter) startContainer(kind contextKind, open byte) error {
	if err := w.pushContainer(); err != nil {
		return err
	}
	w.beginValue()
	w.openContainer(kind, 0)
	w.buf.AppendByte(open)
	return nil
}

func (w *TextWriter) endContainer(kind contextKind, close byte) error {
	if _, err := w.popContainer(kind); err != nil {
		return err
	}
	w.buf.AppendByte(close)
	return nil
}

func (w *TextWriter) WriteObjectStart() error { return w.startContainer(contextObject, '{') }
func (w *TextWriter) WriteObjectEnd() error   { return w.endContainer(contextObject, '}') }
func (w *TextWriter) WriteArrayStart() error  { return w.startContainer(contextArray, '[') }
func (w *TextWriter) WriteArrayEnd() error    { return w.endContainer(contextArray, ']') }

func (w *TextWriter) WriteFieldName(name string) error {
	if err := w.checkFieldName(); err != nil {
		return err
	}
	if err := w.checkText(name); err != nil {
		return err
	}
	if w.top().count > 0 {
		w.buf.AppendByte(',')
	}
	w.buf.AppendQuoted(name, w.unchecked)
	w.buf.AppendByte(':')
	w.commitFieldName()
	return nil
}

func (w *TextWriter) WriteStringValue(s string) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	if err := w.checkText(s); err != nil {
		return err
	}
	w.beginValue()
	w.buf.AppendQuoted(s, w.unchecked)
	w.commitValue()
	return nil
}

func (w *TextWriter) WriteBoolValue(v bool) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	w.beginValue()
	if v {
		w.buf.AppendString("true")
	} else {
		w.buf.AppendString("false")
	}
	w.commitValue()
	return nil
}

func (w *TextWriter) WriteNullValue() error {
	if err := w.checkValue(); err != nil {
		return err
	}
	w.beginValue()
	w.buf.AppendString("null")
	w.commitValue()
	return nil
}

func (w *TextWriter) WriteInt8Value(v int8) error   { return w.WriteNumberValue(NumberFromInt8(v)) }
func (w *TextWriter) WriteInt16Value(v int16) error { return w.WriteNumberValue(NumberFromInt16(v)) }
func (w *TextWriter) WriteInt32Value(v int32) error { return w.WriteNumberValue(NumberFromInt32(v)) }
func (w *TextWriter) WriteInt64Value(v int64) error { return w.WriteNumberValue(NumberFromInt64(v)) }
func (w *TextWriter) WriteUint32Value(v uint32) error {
	return w.WriteNumberValue(NumberFromUint32(v))
}
func (w *TextWriter) WriteFloat32Value(v float32) error {
	return w.WriteNumberValue(NumberFromFloat32(v))
}
func (w *TextWriter) WriteFloat64Value(v float64) error {
	return w.WriteNumberValue(NumberFromFloat64(v))
}

func (w *TextWriter) WriteNumberValue(n Number64) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	// JSON text has no literal for NaN or the infinities.
	if !n.finite() {
		return w.fail(fmt.Errorf("%w: %s value is not finite", ErrArgumentInvalid, n.Kind()))
	}
	w.beginValue()
	w.buf.AppendNumber(n)
	w.commitValue()
	return nil
}

func (w *TextWriter) WriteGuidValue(id uuid.UUID) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	w.beginValue()
	w.buf.AppendString(`{"$guid":"`)
	w.buf.AppendString(id.String())
	w.buf.AppendString(`"}`)
	w.commitValue()
	return nil
}

func (w *TextWriter) WriteBinaryValue(data []byte) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	w.beginValue()
	w.buf.AppendString(`{"$binary":"`)
	w.buf.grow(base64.StdEncoding.EncodedLen(len(data)))
	w.buf.b = base64.StdEncoding.AppendEncode(w.buf.b, data)
	w.buf.AppendString(`"}`)
	w.commitValue()
	return nil
}

// WriteRawToken copies the pre-encoded text of one scalar token or field
// name verbatim, adding only the outer punctuation the position requires.
// Container tokens are not accepted; splice whole pre-encoded containers
// with WriteJsonFragment instead.
func (w *TextWriter) WriteRawToken(kind TokenType, raw []byte) error {
	if w.err != nil {
		return w.err
	}
	if len(raw) == 0 {
		return w.fail(fmt.Errorf("%w: empty raw token", ErrArgumentInvalid))
	}
	switch kind {
	case TokenFieldName:
		if err := w.checkFieldName(); err != nil {
			return err
		}
		if w.top().count > 0 {
			w.buf.AppendByte(',')
		}
		w.buf.Append(raw)
		w.buf.AppendByte(':')
		w.commitFieldName()
		return nil
	case TokenString, TokenNumber, TokenBool, TokenNull, TokenGuid, TokenBinary:
		if err := w.checkValue(); err != nil {
			return err
		}
		w.beginValue()
		w.buf.Append(raw)
		w.commitValue()
		return nil
	}
	return w.fail(fmt.Errorf("%w: raw token kind %s not supported", ErrArgumentInvalid, kind))
}

// WriteJsonFragment splices an already-encoded, structurally complete text
// value at the current position. Only the value's outer placement and member
// separator are handled; the fragment's interior is trusted.
func (w *TextWriter) WriteJsonFragment(fragment []byte) error {
	if w.err != nil {
		return w.err
	}
	if len(fragment) == 0 {
		return w.fail(fmt.Errorf("%w: empty fragment", ErrArgumentInvalid))
	}
	if err := w.checkValue(); err != nil {
		return err
	}
	w.beginValue()
	w.buf.Append(fragment)
	w.commitValue()
	return nil
}

// GetResult finalizes the document and returns its UTF-8 JSON bytes.
func (w *TextWriter) GetResult() ([]byte, error) { return w.finish() }
