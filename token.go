package jsonwire

import (
	"fmt"

	"github.com/google/uuid"
)

// TokenType identifies one token in document order.
type TokenType uint8

const (
	// TokenNone is the cursor position before the first token and after the
	// last.
	TokenNone TokenType = iota
	TokenObjectStart
	TokenObjectEnd
	TokenArrayStart
	TokenArrayEnd
	TokenFieldName
	TokenString
	TokenNumber
	TokenBool
	TokenNull
	TokenGuid
	TokenBinary
)

// String returns the token name for diagnostics.
func (t TokenType) String() string {
	switch t {
	case TokenNone:
		return "none"
	case TokenObjectStart:
		return "object-start"
	case TokenObjectEnd:
		return "object-end"
	case TokenArrayStart:
		return "array-start"
	case TokenArrayEnd:
		return "array-end"
	case TokenFieldName:
		return "field-name"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenBool:
		return "bool"
	case TokenNull:
		return "null"
	case TokenGuid:
		return "guid"
	case TokenBinary:
		return "binary"
	}
	return "unknown"
}

// Reader produces a token stream over an encoded document. It is the
// capability the bridge consumes; this package implements it for its own
// binary layout, text lexers live with their parsers.
//
// A fresh Reader is positioned before the first token; Next advances in
// document order, descending into and out of containers, and reports false
// at the end of input or on error. Byte slices returned by accessors are
// views into the reader's input and are only valid until the next advance.
type Reader interface {
	// Next advances the cursor to the next token in document order.
	Next() bool
	// TokenType reports the kind of the token under the cursor.
	TokenType() TokenType
	// StringValue returns the text of a string or field-name token.
	StringValue() (string, error)
	// NumberValue returns a number token with its declared width.
	NumberValue() (Number64, error)
	// BoolValue returns the value of a bool token.
	BoolValue() (bool, error)
	// GuidValue returns the value of a guid token.
	GuidValue() (uuid.UUID, error)
	// BinaryValue returns the payload of a binary token.
	BinaryValue() ([]byte, error)
	// Err returns the first error the reader encountered, if any.
	Err() error
}

// WriteCurrentToken issues exactly one typed-value or structural call on w
// for the token under r's cursor, independent of r's source encoding. It is
// the conversion point between input and output encodings. The cursor is not
// advanced.
func WriteCurrentToken(w Writer, r Reader) error {
	switch t := r.TokenType(); t {
	case TokenObjectStart:
		return w.WriteObjectStart()
	case TokenObjectEnd:
		return w.WriteObjectEnd()
	case TokenArrayStart:
		return w.WriteArrayStart()
	case TokenArrayEnd:
		return w.WriteArrayEnd()
	case TokenFieldName:
		name, err := r.StringValue()
		if err != nil {
			return err
		}
		return w.WriteFieldName(name)
	case TokenString:
		s, err := r.StringValue()
		if err != nil {
			return err
		}
		return w.WriteStringValue(s)
	case TokenNumber:
		n, err := r.NumberValue()
		if err != nil {
			return err
		}
		return w.WriteNumberValue(n)
	case TokenBool:
		v, err := r.BoolValue()
		if err != nil {
			return err
		}
		return w.WriteBoolValue(v)
	case TokenNull:
		return w.WriteNullValue()
	case TokenGuid:
		id, err := r.GuidValue()
		if err != nil {
			return err
		}
		return w.WriteGuidValue(id)
	case TokenBinary:
		data, err := r.BinaryValue()
		if err != nil {
			return err
		}
		return w.WriteBinaryValue(data)
	default:
		return fmt.Errorf("%w: no token under cursor", ErrArgumentInvalid)
	}
}

// WriteAll drains r from its current cursor through the end of the current
// value, including all nested descendants, writing every token into w via
// WriteCurrentToken. When the cursor is still before the first token it
// advances once first. The traversal is iterative; nesting depth costs no
// call-stack growth.
//
// On return the cursor sits after the value that was written.
func WriteAll(w Writer, r Reader) error {
	if r.TokenType() == TokenNone {
		if !r.Next() {
			if err := r.Err(); err != nil {
				return err
			}
			return fmt.Errorf("%w: reader has no tokens", ErrArgumentInvalid)
		}
	}
	depth := 0
	for {
		t := r.TokenType()
		if err := WriteCurrentToken(w, r); err != nil {
			return err
		}
		switch t {
		case TokenObjectStart, TokenArrayStart:
			depth++
		case TokenObjectEnd, TokenArrayEnd:
			depth--
		}
		complete := depth == 0 && t != TokenFieldName &&
			t != TokenObjectStart && t != TokenArrayStart
		advanced := r.Next()
		if complete {
			return nil
		}
		if !advanced {
			if err := r.Err(); err != nil {
				return err
			}
			return fmt.Errorf("%w: token stream ended inside a value", ErrArgumentInvalid)
		}
	}
}
