package jsonwire

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// jsonTextReader adapts encoding/json's tokenizer to the Reader contract so
// the bridge can be driven from text documents in tests. It stands in for
// the external text lexer this package deliberately does not own.
type jsonTextReader struct {
	dec   *json.Decoder
	tok   TokenType
	str   string
	num   Number64
	b     bool
	err   error
	stack []jsonTextContext
}

type jsonTextContext struct {
	object       bool
	awaitingName bool
}

func newJSONTextReader(doc string) *jsonTextReader {
	dec := json.NewDecoder(strings.NewReader(doc))
	dec.UseNumber()
	return &jsonTextReader{dec: dec}
}

func (r *jsonTextReader) top() *jsonTextContext {
	if len(r.stack) == 0 {
		return nil
	}
	return &r.stack[len(r.stack)-1]
}

func (r *jsonTextReader) afterValue() {
	if top := r.top(); top != nil && top.object {
		top.awaitingName = true
	}
}

func (r *jsonTextReader) Next() bool {
	if r.err != nil {
		return false
	}
	t, err := r.dec.Token()
	if err == io.EOF {
		r.tok = TokenNone
		return false
	}
	if err != nil {
		r.err = err
		r.tok = TokenNone
		return false
	}
	switch v := t.(type) {
	case json.Delim:
		switch v {
		case '{':
			r.stack = append(r.stack, jsonTextContext{object: true, awaitingName: true})
			r.tok = TokenObjectStart
		case '[':
			r.stack = append(r.stack, jsonTextContext{})
			r.tok = TokenArrayStart
		case '}':
			r.stack = r.stack[:len(r.stack)-1]
			r.tok = TokenObjectEnd
			r.afterValue()
		case ']':
			r.stack = r.stack[:len(r.stack)-1]
			r.tok = TokenArrayEnd
			r.afterValue()
		}
	case string:
		if top := r.top(); top != nil && top.object && top.awaitingName {
			top.awaitingName = false
			r.str = v
			r.tok = TokenFieldName
			return true
		}
		r.str = v
		r.tok = TokenString
		r.afterValue()
	case json.Number:
		if i, err := v.Int64(); err == nil {
			r.num = NumberFromInt64(i)
		} else {
			f, err := v.Float64()
			if err != nil {
				r.err = err
				return false
			}
			r.num = NumberFromFloat64(f)
		}
		r.tok = TokenNumber
		r.afterValue()
	case bool:
		r.b = v
		r.tok = TokenBool
		r.afterValue()
	case nil:
		r.tok = TokenNull
		r.afterValue()
	}
	return true
}

func (r *jsonTextReader) TokenType() TokenType { return r.tok }
func (r *jsonTextReader) Err() error           { return r.err }

func (r *jsonTextReader) StringValue() (string, error) {
	if r.tok != TokenString && r.tok != TokenFieldName {
		return "", ErrValueOutOfContext
	}
	return r.str, nil
}

func (r *jsonTextReader) NumberValue() (Number64, error) {
	if r.tok != TokenNumber {
		return Number64{}, ErrValueOutOfContext
	}
	return r.num, nil
}

func (r *jsonTextReader) BoolValue() (bool, error) {
	if r.tok != TokenBool {
		return false, ErrValueOutOfContext
	}
	return r.b, nil
}

func (r *jsonTextReader) GuidValue() (uuid.UUID, error) {
	return uuid.UUID{}, ErrValueOutOfContext
}

func (r *jsonTextReader) BinaryValue() ([]byte, error) {
	return nil, ErrValueOutOfContext
}

type BridgeTestSuite struct {
	suite.Suite
}

func (s *BridgeTestSuite) TestWriteCurrentTokenIsSingleStep() {
	r := newJSONTextReader(`[1,2]`)
	s.Require().True(r.Next())

	w := NewTextWriter()
	s.Require().NoError(WriteCurrentToken(w, r))
	s.Assert().Equal(1, w.Length(), "exactly one structural token written")
	s.Assert().Equal(TokenArrayStart, r.TokenType(), "cursor must not advance")
}

func (s *BridgeTestSuite) TestTextToText() {
	const doc = `{"name":"n","list":[1,2.5,true,null],"nested":{"deep":[[]]}}`
	r := newJSONTextReader(doc)
	w := NewTextWriter()
	s.Require().NoError(WriteAll(w, r))
	out, err := w.GetResult()
	s.Require().NoError(err)
	s.Assert().Equal(doc, string(out))
}

func (s *BridgeTestSuite) TestTextToBinaryToText() {
	const doc = `{"id":"x","items":[1,-7,2.5,true,false,null,"s"],"flag":true}`

	// Text tokens into a binary writer.
	bw := NewBinaryWriter()
	s.Require().NoError(WriteAll(bw, newJSONTextReader(doc)))
	binDoc, err := bw.GetResult()
	s.Require().NoError(err)

	// Binary tokens back into a text writer.
	tw := NewTextWriter()
	s.Require().NoError(WriteAll(tw, NewBinaryReader(binDoc)))
	out, err := tw.GetResult()
	s.Require().NoError(err)
	s.Assert().Equal(doc, string(out))
}

func (s *BridgeTestSuite) TestBinaryToTextMatchesDirectCalls() {
	build := func(w Writer) {
		s.Require().NoError(w.WriteObjectStart())
		s.Require().NoError(w.WriteFieldName("count"))
		s.Require().NoError(w.WriteInt32Value(3))
		s.Require().NoError(w.WriteFieldName("data"))
		s.Require().NoError(w.WriteArrayStart())
		s.Require().NoError(w.WriteStringValue("a\"b"))
		s.Require().NoError(w.WriteFloat64Value(0.25))
		s.Require().NoError(w.WriteArrayEnd())
		s.Require().NoError(w.WriteObjectEnd())
	}

	direct := NewTextWriter()
	build(direct)
	want, err := direct.GetResult()
	s.Require().NoError(err)

	bw := NewBinaryWriter()
	build(bw)
	binDoc, err := bw.GetResult()
	s.Require().NoError(err)

	bridged := NewTextWriter()
	s.Require().NoError(WriteAll(bridged, NewBinaryReader(binDoc)))
	got, err := bridged.GetResult()
	s.Require().NoError(err)

	s.Assert().Equal(string(want), string(got))
}

func (s *BridgeTestSuite) TestGuidAndBinarySurviveConversion() {
	id := uuid.MustParse("01234567-89ab-cdef-0123-456789abcdef")
	blob := []byte{9, 8, 7}

	src := NewBinaryWriter()
	s.Require().NoError(src.WriteArrayStart())
	s.Require().NoError(src.WriteGuidValue(id))
	s.Require().NoError(src.WriteBinaryValue(blob))
	s.Require().NoError(src.WriteArrayEnd())
	srcDoc, err := src.GetResult()
	s.Require().NoError(err)

	// Binary to binary: byte-identical copy through the typed surface.
	dst := NewBinaryWriter()
	s.Require().NoError(WriteAll(dst, NewBinaryReader(srcDoc)))
	copied, err := dst.GetResult()
	s.Require().NoError(err)
	s.Assert().True(bytes.Equal(srcDoc, copied))

	// Binary to text: wrapper-object convention.
	tw := NewTextWriter()
	s.Require().NoError(WriteAll(tw, NewBinaryReader(srcDoc)))
	out, err := tw.GetResult()
	s.Require().NoError(err)
	s.Assert().Equal(
		`[{"$guid":"01234567-89ab-cdef-0123-456789abcdef"},{"$binary":"CQgH"}]`,
		string(out))
}

func (s *BridgeTestSuite) TestWriteAllSubtree() {
	// The cursor sits on a nested container; WriteAll copies only that
	// value and leaves the cursor on the next sibling.
	src := NewBinaryWriter()
	s.Require().NoError(src.WriteArrayStart())
	s.Require().NoError(src.WriteInt32Value(1))
	s.Require().NoError(src.WriteArrayStart())
	s.Require().NoError(src.WriteInt32Value(2))
	s.Require().NoError(src.WriteInt32Value(3))
	s.Require().NoError(src.WriteArrayEnd())
	s.Require().NoError(src.WriteInt32Value(4))
	s.Require().NoError(src.WriteArrayEnd())
	doc, err := src.GetResult()
	s.Require().NoError(err)

	r := NewBinaryReader(doc)
	s.Require().True(r.Next()) // outer array start
	s.Require().True(r.Next()) // 1
	s.Require().True(r.Next()) // inner array start

	w := NewTextWriter()
	s.Require().NoError(WriteAll(w, r))
	out, err := w.GetResult()
	s.Require().NoError(err)
	s.Assert().Equal(`[2,3]`, string(out))

	s.Assert().Equal(TokenNumber, r.TokenType(), "cursor advanced past the subtree")
	n, err := r.NumberValue()
	s.Require().NoError(err)
	s.Assert().EqualValues(4, n.Int64())
}

func (s *BridgeTestSuite) TestDeepNestingIterative() {
	// A document nested far deeper than any comfortable recursion budget
	// must stream through the bridge without issue.
	const depth = 100
	src := NewBinaryWriter(WithMaxDepth(depth + 1))
	for i := 0; i < depth; i++ {
		s.Require().NoError(src.WriteArrayStart())
	}
	s.Require().NoError(src.WriteInt32Value(42))
	for i := 0; i < depth; i++ {
		s.Require().NoError(src.WriteArrayEnd())
	}
	doc, err := src.GetResult()
	s.Require().NoError(err)

	w := NewTextWriter(WithMaxDepth(depth + 1))
	s.Require().NoError(WriteAll(w, NewBinaryReader(doc)))
	out, err := w.GetResult()
	s.Require().NoError(err)

	want := strings.Repeat("[", depth) + "42" + strings.Repeat("]", depth)
	s.Assert().Equal(want, string(out))
}

func (s *BridgeTestSuite) TestEmptyReader() {
	w := NewTextWriter()
	err := WriteAll(w, NewBinaryReader(nil))
	s.Require().Error(err)
	s.Assert().ErrorIs(err, ErrArgumentInvalid)
}

func (s *BridgeTestSuite) TestTruncatedStreamSurfaces() {
	// A binary document cut off mid-container must fail the bridge, not
	// produce a silently truncated output document.
	src := NewBinaryWriter()
	s.Require().NoError(src.WriteArrayStart())
	s.Require().NoError(src.WriteStringValue("abcdef"))
	s.Require().NoError(src.WriteArrayEnd())
	doc, err := src.GetResult()
	s.Require().NoError(err)

	w := NewTextWriter()
	err = WriteAll(w, NewBinaryReader(doc[:len(doc)-3]))
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, ErrMalformedDocument)
}

func TestBridge(t *testing.T) {
	suite.Run(t, new(BridgeTestSuite))
}
