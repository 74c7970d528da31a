package scheme

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxMetaLen bounds the meta portion of a Gemini or Spartan response header.
const MaxMetaLen = 1024

// ParseHeader splits a raw Gemini/Spartan response into its numeric status,
// trimmed meta string and body bytes. The header is the text before the
// first LF (an optional preceding CR is absorbed by the meta trim); the
// body is everything after it, untouched.
func ParseHeader(raw []byte) (status int, meta string, body []byte, err error) {
	if len(raw) == 0 {
		return 0, "", nil, ErrEmptyResponse
	}
	lf := bytes.IndexByte(raw, '\n')
	if lf <= 0 {
		return 0, "", nil, ErrInvalidResponseHeader
	}
	if !utf8.Valid(raw[:lf]) {
		return 0, "", nil, ErrInvalidResponseHeader
	}
	header := string(raw[:lf])

	code, rest, found := strings.Cut(header, " ")
	if !found {
		return 0, "", nil, ErrInvalidResponseHeader
	}
	rest = strings.TrimSpace(rest)
	if len(rest) > MaxMetaLen {
		return 0, "", nil, ErrInvalidResponseHeader
	}
	n, perr := strconv.ParseUint(code, 10, 8)
	if perr != nil {
		return 0, "", nil, ErrInvalidResponseHeader
	}
	return int(n), rest, raw[lf+1:], nil
}
