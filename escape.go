package jsonwire

import (
	"github.com/puzpuzpuz/xsync/v4"
)

// escapeCacheMaxLen bounds which strings are cached. Field names and enum-ish
// values repeat constantly and are short; caching arbitrary long payloads
// would grow the cache without bound.
const escapeCacheMaxLen = 64

// escapeCache remembers the escape-scan verdict for short strings. Scanning
// is cheap but field names recur on every document, and the cache is shared
// across writer instances. Using a concurrent map makes it safe even though
// each writer itself is single-threaded.
var escapeCache = xsync.NewMap[string, bool]()

const hexDigits = "0123456789abcdef"

// needsEscape reports whether s contains a quote, backslash, or control
// character. Forward slash is deliberately not considered.
func needsEscape(s string) bool {
	if len(s) <= escapeCacheMaxLen {
		if v, ok := escapeCache.Load(s); ok {
			return v
		}
	}
	v := scanNeedsEscape(s)
	if len(s) <= escapeCacheMaxLen {
		escapeCache.Store(s, v)
	}
	return v
}

func scanNeedsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == '"' || c == '\\' {
			return true
		}
	}
	return false
}

// appendQuoted appends s as a JSON string literal, escaping where required.
// When unchecked is true the scan is skipped entirely and the bytes are
// copied verbatim between quotes; the caller has guaranteed no escaping is
// needed, and a false guarantee yields malformed output, not a fault.
func appendQuoted(dst []byte, s string, unchecked bool) []byte {
	dst = append(dst, '"')
	if unchecked || !needsEscape(s) {
		dst = append(dst, s...)
		return append(dst, '"')
	}
	return append(appendEscaped(dst, s), '"')
}

// AppendQuoted appends s to the buffer as a JSON string literal.
func (b *Buffer) AppendQuoted(s string, unchecked bool) {
	b.grow(len(s) + 2)
	b.b = appendQuoted(b.b, s, unchecked)
}

// appendEscaped appends the body of s with JSON escapes applied. Common
// control characters use their two-byte forms, the rest use \u00xx. Bytes
// at or above 0x20 other than quote and backslash pass through untouched,
// so valid UTF-8 sequences are preserved as-is.
func appendEscaped(dst []byte, s string) []byte {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		}
		start = i + 1
	}
	return append(dst, s[start:]...)
}
