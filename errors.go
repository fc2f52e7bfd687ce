package jsonwire

import "errors"

var (
	// ErrInvalidTransition indicates a value or structural call was issued in a
	// grammar context that does not expect it, e.g. a value inside an object
	// without a preceding field name. The writer is unusable afterwards.
	ErrInvalidTransition = errors.New("jsonwire: call not legal in current grammar state")

	// ErrNestingTooDeep indicates the configured maximum container nesting
	// depth was exceeded. It is raised before any bytes are emitted for the
	// offending call.
	ErrNestingTooDeep = errors.New("jsonwire: maximum nesting depth exceeded")

	// ErrIncompleteDocument indicates GetResult was called while one or more
	// containers were still open, or before any top-level value was written.
	ErrIncompleteDocument = errors.New("jsonwire: document is not complete")

	// ErrArgumentInvalid indicates malformed caller input, such as a
	// non-UTF-8 string, an empty raw token, or a non-finite float offered to
	// the text encoding.
	ErrArgumentInvalid = errors.New("jsonwire: invalid argument")

	// ErrValueOutOfContext indicates a reader accessor was called for a token
	// kind that does not carry that value, e.g. StringValue on a number token.
	ErrValueOutOfContext = errors.New("jsonwire: accessor does not match current token")

	// ErrMalformedDocument indicates the binary reader encountered bytes that
	// are not a valid tagged-record document: an unknown tag, a truncated
	// payload, or a container length pointing outside the document.
	ErrMalformedDocument = errors.New("jsonwire: malformed binary document")
)
