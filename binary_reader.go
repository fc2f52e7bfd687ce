package jsonwire

import (
	"fmt"

	"github.com/google/uuid"
)

// readerContext mirrors one open container during traversal: where its body
// ends and, for objects, whether the next token is a member name.
type readerContext struct {
	kind         contextKind
	end          int
	awaitingName bool
}

// BinaryReader walks a tagged binary document as a token stream, implementing
// the Reader contract. Container length prefixes let it validate that every
// record stays inside its enclosing body.
//
// Like the writers it latches the first error: once any record is malformed,
// Next keeps returning false and the accessors return the error.
type BinaryReader struct {
	buf   []byte
	pos   int
	tok   TokenType
	err   error
	stack []readerContext

	str  string
	num  Number64
	b    bool
	bin  []byte
	guid uuid.UUID
}

var _ Reader = (*BinaryReader)(nil)

// NewBinaryReader creates a reader over one encoded document. The cursor
// starts before the first token.
func NewBinaryReader(doc []byte) *BinaryReader {
	return &BinaryReader{buf: doc}
}

func (r *BinaryReader) failf(format string, args ...any) bool {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s", ErrMalformedDocument, fmt.Sprintf(format, args...))
	}
	r.tok = TokenNone
	return false
}

// limit returns the first offset the current record must not cross: the end
// of the enclosing container body, or the end of the document.
func (r *BinaryReader) limit() int {
	if len(r.stack) > 0 {
		return r.stack[len(r.stack)-1].end
	}
	return len(r.buf)
}

// need reports whether n more payload bytes fit before the limit.
func (r *BinaryReader) need(n int) bool {
	if r.pos+n > r.limit() {
		return r.failf("record truncated at offset %d", r.pos)
	}
	return true
}

// afterValue restores the enclosing object, if any, to awaiting a name.
func (r *BinaryReader) afterValue() {
	if len(r.stack) > 0 {
		top := &r.stack[len(r.stack)-1]
		if top.kind == contextObject {
			top.awaitingName = true
		}
	}
}

// Next advances the cursor to the next token in document order.
func (r *BinaryReader) Next() bool {
	if r.err != nil {
		return false
	}

	// A container whose body is exhausted closes before anything else.
	if len(r.stack) > 0 {
		top := &r.stack[len(r.stack)-1]
		if r.pos >= top.end {
			if r.pos > top.end {
				return r.failf("record overruns container body at offset %d", r.pos)
			}
			if top.kind == contextObject {
				if !top.awaitingName {
					return r.failf("object body ends after a dangling field name")
				}
				r.tok = TokenObjectEnd
			} else {
				r.tok = TokenArrayEnd
			}
			r.stack = r.stack[:len(r.stack)-1]
			r.afterValue()
			return true
		}
	} else if r.pos >= len(r.buf) {
		r.tok = TokenNone
		return false
	} else if r.tok != TokenNone {
		return r.failf("trailing data after top-level value at offset %d", r.pos)
	}

	if len(r.stack) > 0 {
		top := &r.stack[len(r.stack)-1]
		if top.kind == contextObject && top.awaitingName {
			s, ok := r.readStringRecord()
			if !ok {
				return false
			}
			r.str = s
			r.tok = TokenFieldName
			top.awaitingName = false
			return true
		}
	}
	return r.readValueRecord()
}

// readStringRecord decodes a string or system-string record and advances
// past it.
func (r *BinaryReader) readStringRecord() (string, bool) {
	if !r.need(1) {
		return "", false
	}
	switch tag := r.buf[r.pos]; tag {
	case tagString:
		if !r.need(5) {
			return "", false
		}
		n := int(BE.Uint32(r.buf[r.pos+1:]))
		if !r.need(5 + n) {
			return "", false
		}
		s := string(r.buf[r.pos+5 : r.pos+5+n])
		r.pos += 5 + n
		return s, true
	case tagSysString:
		if !r.need(2) {
			return "", false
		}
		id := r.buf[r.pos+1]
		if int(id) >= len(systemStrings) {
			return "", r.failf("system string id 0x%02x out of range", id)
		}
		r.pos += 2
		return systemStrings[id], true
	default:
		return "", r.failf("expected string record, found tag 0x%02x", tag)
	}
}

// readValueRecord decodes the value record at the cursor.
func (r *BinaryReader) readValueRecord() bool {
	if !r.need(1) {
		return false
	}
	tag := r.buf[r.pos]
	switch tag {
	case tagNull:
		r.pos++
		r.tok = TokenNull
	case tagTrue, tagFalse:
		r.pos++
		r.b = tag == tagTrue
		r.tok = TokenBool
	case tagInt8:
		if !r.need(2) {
			return false
		}
		r.num = NumberFromInt8(int8(r.buf[r.pos+1]))
		r.pos += 2
		r.tok = TokenNumber
	case tagInt16:
		if !r.need(3) {
			return false
		}
		r.num = NumberFromInt16(int16(BE.Uint16(r.buf[r.pos+1:])))
		r.pos += 3
		r.tok = TokenNumber
	case tagInt32:
		if !r.need(5) {
			return false
		}
		r.num = NumberFromInt32(int32(BE.Uint32(r.buf[r.pos+1:])))
		r.pos += 5
		r.tok = TokenNumber
	case tagInt64:
		if !r.need(9) {
			return false
		}
		r.num = NumberFromInt64(int64(BE.Uint64(r.buf[r.pos+1:])))
		r.pos += 9
		r.tok = TokenNumber
	case tagUint32:
		if !r.need(5) {
			return false
		}
		r.num = NumberFromUint32(BE.Uint32(r.buf[r.pos+1:]))
		r.pos += 5
		r.tok = TokenNumber
	case tagFloat32:
		if !r.need(5) {
			return false
		}
		r.num = Number64{NumberFloat32, uint64(BE.Uint32(r.buf[r.pos+1:]))}
		r.pos += 5
		r.tok = TokenNumber
	case tagFloat64:
		if !r.need(9) {
			return false
		}
		r.num = Number64{NumberFloat64, BE.Uint64(r.buf[r.pos+1:])}
		r.pos += 9
		r.tok = TokenNumber
	case tagString, tagSysString:
		s, ok := r.readStringRecord()
		if !ok {
			return false
		}
		r.str = s
		r.tok = TokenString
	case tagBinary:
		if !r.need(5) {
			return false
		}
		n := int(BE.Uint32(r.buf[r.pos+1:]))
		if !r.need(5 + n) {
			return false
		}
		r.bin = r.buf[r.pos+5 : r.pos+5+n]
		r.pos += 5 + n
		r.tok = TokenBinary
	case tagGuid:
		if !r.need(17) {
			return false
		}
		copy(r.guid[:], r.buf[r.pos+1:r.pos+17])
		r.pos += 17
		r.tok = TokenGuid
	case tagObject, tagArray:
		if !r.need(5) {
			return false
		}
		body := int(BE.Uint32(r.buf[r.pos+1:]))
		end := r.pos + 5 + body
		if end > r.limit() {
			return r.failf("container body overruns its parent at offset %d", r.pos)
		}
		kind := contextArray
		r.tok = TokenArrayStart
		if tag == tagObject {
			kind = contextObject
			r.tok = TokenObjectStart
		}
		r.pos += 5
		r.stack = append(r.stack, readerContext{kind: kind, end: end, awaitingName: kind == contextObject})
		return true
	default:
		return r.failf("unknown tag 0x%02x at offset %d", tag, r.pos)
	}
	r.afterValue()
	return true
}

// TokenType reports the kind of the token under the cursor.
func (r *BinaryReader) TokenType() TokenType { return r.tok }

// Err returns the first error the reader encountered, if any.
func (r *BinaryReader) Err() error { return r.err }

// StringValue returns the text of a string or field-name token.
func (r *BinaryReader) StringValue() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.tok != TokenString && r.tok != TokenFieldName {
		return "", fmt.Errorf("%w: StringValue on %s", ErrValueOutOfContext, r.tok)
	}
	return r.str, nil
}

// NumberValue returns a number token with its declared width.
func (r *BinaryReader) NumberValue() (Number64, error) {
	if r.err != nil {
		return Number64{}, r.err
	}
	if r.tok != TokenNumber {
		return Number64{}, fmt.Errorf("%w: NumberValue on %s", ErrValueOutOfContext, r.tok)
	}
	return r.num, nil
}

// BoolValue returns the value of a bool token.
func (r *BinaryReader) BoolValue() (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if r.tok != TokenBool {
		return false, fmt.Errorf("%w: BoolValue on %s", ErrValueOutOfContext, r.tok)
	}
	return r.b, nil
}

// GuidValue returns the value of a guid token.
func (r *BinaryReader) GuidValue() (uuid.UUID, error) {
	if r.err != nil {
		return uuid.UUID{}, r.err
	}
	if r.tok != TokenGuid {
		return uuid.UUID{}, fmt.Errorf("%w: GuidValue on %s", ErrValueOutOfContext, r.tok)
	}
	return r.guid, nil
}

// BinaryValue returns the payload of a binary token. The slice is a view
// into the document bytes.
func (r *BinaryReader) BinaryValue() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.tok != TokenBinary {
		return nil, fmt.Errorf("%w: BinaryValue on %s", ErrValueOutOfContext, r.tok)
	}
	return r.bin, nil
}
