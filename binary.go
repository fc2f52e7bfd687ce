package jsonwire

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Binary layout: every value is one record of a tag byte followed by its
// payload. Multi-byte fields are big-endian. Strings and binary payloads are
// length-prefixed with a uint32 byte count. Containers are length-prefixed
// with the byte length of their body, written as a placeholder at *Start and
// patched at the matching *End, so a consumer can skip a whole subtree
// without traversing it.
const (
	tagNull  byte = 0x00
	tagFalse byte = 0x01
	tagTrue  byte = 0x02

	tagInt8    byte = 0x10 // 1-byte payload
	tagInt16   byte = 0x11 // 2-byte payload
	tagInt32   byte = 0x12 // 4-byte payload
	tagInt64   byte = 0x13 // 8-byte payload
	tagUint32  byte = 0x14 // 4-byte payload
	tagFloat32 byte = 0x15 // 4-byte payload
	tagFloat64 byte = 0x16 // 8-byte payload

	tagString    byte = 0x20 // uint32 length + UTF-8 bytes
	tagSysString byte = 0x21 // 1-byte system string table index

	tagBinary byte = 0x30 // uint32 length + payload
	tagGuid   byte = 0x31 // 16-byte payload

	tagObject byte = 0x40 // uint32 body length + body
	tagArray  byte = 0x41 // uint32 body length + body
)

// systemStrings assigns one-byte IDs to field names that dominate document
// workloads, so a common name costs two bytes on the wire instead of five
// plus its text. The table is part of the wire contract: entries may be
// appended but never reordered or removed.
var systemStrings = [...]string{
	"id", "name", "type", "value", "key", "count", "data", "items",
	"status", "created", "updated", "label", "kind", "index", "offset",
	"length", "total", "error", "message", "code", "version", "owner",
	"tags", "size", "parent", "children", "path", "url", "title", "body",
	"meta", "ts",
}

var systemStringIDs = func() map[string]uint8 {
	m := make(map[string]uint8, len(systemStrings))
	for i, s := range systemStrings {
		m[s] = uint8(i)
	}
	return m
}()

// BinaryWriter renders a document in the tagged binary layout. Unlike the
// text encoding there is no punctuation; structure is carried entirely by
// container records and their patched length prefixes.
type BinaryWriter struct {
	writerBase
}

var _ Writer = (*BinaryWriter)(nil)

// NewBinaryWriter creates a binary writer.
func NewBinaryWriter(opts ...Option) *BinaryWriter {
	w := &BinaryWriter{}
	w.init(buildOptions(opts))
	return w
}

// Encoding reports EncodingBinary.
func (w *BinaryWriter) Encoding() Encoding { return EncodingBinary }

// appendStringRecord emits a string as a system-string reference when the
// table has it, or as a length-prefixed record otherwise.
func (w *BinaryWriter) appendStringRecord(s string) {
	if id, ok := systemStringIDs[s]; ok {
		w.buf.AppendByte(tagSysString)
		w.buf.AppendByte(id)
		return
	}
	w.buf.AppendByte(tagString)
	w.buf.AppendUint32(uint32(len(s)))
	w.buf.AppendString(s)
}

func (w *BinaryWriter) checkText(s string) error {
	if utf8.ValidString(s) {
		return nil
	}
	return w.fail(fmt.Errorf("%w: string is not valid UTF-8", ErrArgumentInvalid))
}

func (w *BinaryWriter) startContainer(kind contextKind, tag byte) error {
	if err := w.pushContainer(); err != nil {
		return err
	}
	w.buf.AppendByte(tag)
	start := w.buf.Reserve(4)
	w.openContainer(kind, start)
	return nil
}

func (w *BinaryWriter) endContainer(kind contextKind) error {
	ctx, err := w.popContainer(kind)
	if err != nil {
		return err
	}
	w.buf.PatchUint32(ctx.start, uint32(w.buf.Len()-(ctx.start+4)))
	return nil
}

func (w *BinaryWriter) WriteObjectStart() error { return w.startContainer(contextObject, tagObject) }
func (w *BinaryWriter) WriteObjectEnd() error   { return w.endContainer(contextObject) }
func (w *BinaryWriter) WriteArrayStart() error  { return w.startContainer(contextArray, tagArray) }
func (w *BinaryWriter) WriteArrayEnd() error    { return w.endContainer(contextArray) }

func (w *BinaryWriter) WriteFieldName(name string) error {
	if err := w.checkFieldName(); err != nil {
		return err
	}
	if err := w.checkText(name); err != nil {
		return err
	}
	w.appendStringRecord(name)
	w.commitFieldName()
	return nil
}

func (w *BinaryWriter) WriteStringValue(s string) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	if err := w.checkText(s); err != nil {
		return err
	}
	w.appendStringRecord(s)
	w.commitValue()
	return nil
}

func (w *BinaryWriter) WriteBoolValue(v bool) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	if v {
		w.buf.AppendByte(tagTrue)
	} else {
		w.buf.AppendByte(tagFalse)
	}
	w.commitValue()
	return nil
}

func (w *BinaryWriter) WriteNullValue() error {
	if err := w.checkValue(); err != nil {
		return err
	}
	w.buf.AppendByte(tagNull)
	w.commitValue()
	return nil
}

func (w *BinaryWriter) WriteInt8Value(v int8) error   { return w.WriteNumberValue(NumberFromInt8(v)) }
func (w *BinaryWriter) WriteInt16Value(v int16) error { return w.WriteNumberValue(NumberFromInt16(v)) }
func (w *BinaryWriter) WriteInt32Value(v int32) error { return w.WriteNumberValue(NumberFromInt32(v)) }
func (w *BinaryWriter) WriteInt64Value(v int64) error { return w.WriteNumberValue(NumberFromInt64(v)) }
func (w *BinaryWriter) WriteUint32Value(v uint32) error {
	return w.WriteNumberValue(NumberFromUint32(v))
}
func (w *BinaryWriter) WriteFloat32Value(v float32) error {
	return w.WriteNumberValue(NumberFromFloat32(v))
}
func (w *BinaryWriter) WriteFloat64Value(v float64) error {
	return w.WriteNumberValue(NumberFromFloat64(v))
}

// WriteNumberValue emits the number at its declared width. The width tag is
// preserved on the wire, so a round trip is bit-exact for every kind,
// including non-finite floats.
func (w *BinaryWriter) WriteNumberValue(n Number64) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	switch n.Kind() {
	case NumberInt8:
		w.buf.AppendByte(tagInt8)
		w.buf.AppendByte(byte(int8(n.Int64())))
	case NumberInt16:
		w.buf.AppendByte(tagInt16)
		w.buf.AppendUint16(uint16(int16(n.Int64())))
	case NumberInt32:
		w.buf.AppendByte(tagInt32)
		w.buf.AppendUint32(uint32(int32(n.Int64())))
	case NumberInt64:
		w.buf.AppendByte(tagInt64)
		w.buf.AppendUint64(uint64(n.Int64()))
	case NumberUint32:
		w.buf.AppendByte(tagUint32)
		w.buf.AppendUint32(n.Uint32())
	case NumberFloat32:
		w.buf.AppendByte(tagFloat32)
		w.buf.AppendUint32(uint32(n.bits))
	case NumberFloat64:
		w.buf.AppendByte(tagFloat64)
		w.buf.AppendUint64(n.bits)
	default:
		return w.fail(fmt.Errorf("%w: unknown number kind", ErrArgumentInvalid))
	}
	w.commitValue()
	return nil
}

func (w *BinaryWriter) WriteGuidValue(id uuid.UUID) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	w.buf.AppendByte(tagGuid)
	w.buf.Append(id[:])
	w.commitValue()
	return nil
}

func (w *BinaryWriter) WriteBinaryValue(data []byte) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	w.buf.AppendByte(tagBinary)
	w.buf.AppendUint32(uint32(len(data)))
	w.buf.Append(data)
	w.commitValue()
	return nil
}

// WriteRawToken copies one pre-encoded scalar record or field-name record
// verbatim. The bytes must carry their own tag and payload; only outer
// placement is validated. Container tokens are not accepted, their length
// prefixes are owned by this writer — splice whole pre-encoded containers
// with WriteJsonFragment instead.
func (w *BinaryWriter) WriteRawToken(kind TokenType, raw []byte) error {
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
		w.buf.Append(raw)
		w.commitFieldName()
		return nil
	case TokenString, TokenNumber, TokenBool, TokenNull, TokenGuid, TokenBinary:
		if err := w.checkValue(); err != nil {
			return err
		}
		w.buf.Append(raw)
		w.commitValue()
		return nil
	}
	return w.fail(fmt.Errorf("%w: raw token kind %s not supported", ErrArgumentInvalid, kind))
}

// WriteJsonFragment splices an already-encoded, structurally complete binary
// value record at the current position. The fragment's interior is trusted.
func (w *BinaryWriter) WriteJsonFragment(fragment []byte) error {
	if w.err != nil {
		return w.err
	}
	if len(fragment) == 0 {
		return w.fail(fmt.Errorf("%w: empty fragment", ErrArgumentInvalid))
	}
	if err := w.checkValue(); err != nil {
		return err
	}
	w.buf.Append(fragment)
	w.commitValue()
	return nil
}

// GetResult finalizes the document and returns its tagged binary bytes.
func (w *BinaryWriter) GetResult() ([]byte, error) { return w.finish() }
