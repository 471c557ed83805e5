// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Errors reported by an Unescaper.
var (
	ErrControl    = errors.New("unexpected control character")
	ErrEscape     = errors.New("invalid escaped character")
	ErrHexDigit   = errors.New("expected hexadecimal digit")
	ErrSurrogate  = errors.New("invalid UTF-16 surrogate")
	ErrIncomplete = errors.New("incomplete escape sequence")
)

const (
	stNone  = iota // ordinary text
	stStart        // after a backslash
	stHex          // collecting the digits of \uXXXX
)

// An Unescaper decodes the body of a JSON string one code point at a time.
// The zero value is ready for use.
type Unescaper struct {
	buf   []byte
	state int
	ndig  int  // hex digits collected in stHex
	code  rune // partial value of \uXXXX
	high  rune // pending high surrogate, or 0
}

// Reset discards the contents of u so it can decode another string.
func (u *Unescaper) Reset() {
	u.buf = u.buf[:0]
	u.state, u.ndig, u.code, u.high = stNone, 0, 0, 0
}

// Escaping reports whether u is in the middle of an escape sequence, in which
// case the next code point is part of that sequence and cannot close the
// string.
func (u *Unescaper) Escaping() bool { return u.state != stNone }

// Write adds the code point c to the string being decoded.
// A high surrogate escape must be followed immediately by a low one.
func (u *Unescaper) Write(c rune) error {
	switch u.state {
	case stNone:
		if u.high != 0 && c != '\\' {
			return ErrSurrogate
		} else if c == '\\' {
			u.state = stStart
		} else if IsControl(c) {
			return ErrControl
		} else {
			u.buf = utf8.AppendRune(u.buf, c)
		}

	case stStart:
		if u.high != 0 && c != 'u' {
			return ErrSurrogate
		} else if c == 'u' {
			u.state, u.ndig, u.code = stHex, 0, 0
			return nil
		}
		b, ok := unescapeShort(c)
		if !ok {
			return ErrEscape
		}
		u.buf = append(u.buf, b)
		u.state = stNone

	case stHex:
		v, ok := hexValue(c)
		if !ok {
			return ErrHexDigit
		}
		u.code = u.code<<4 | v
		if u.ndig++; u.ndig == 4 {
			u.state = stNone
			return u.putCode(u.code)
		}
	}
	return nil
}

func (u *Unescaper) putCode(r rune) error {
	switch {
	case u.high != 0:
		if r < 0xdc00 || r > 0xdfff {
			return ErrSurrogate
		}
		u.buf = utf8.AppendRune(u.buf, utf16.DecodeRune(u.high, r))
		u.high = 0
	case r >= 0xd800 && r < 0xdc00:
		u.high = r
	case r >= 0xdc00 && r <= 0xdfff:
		return ErrSurrogate
	default:
		u.buf = utf8.AppendRune(u.buf, r)
	}
	return nil
}

// Finish reports the decoded string. It fails if the input ended inside an
// escape sequence or after an unpaired high surrogate.
func (u *Unescaper) Finish() (string, error) {
	if u.state != stNone {
		return "", ErrIncomplete
	} else if u.high != 0 {
		return "", ErrSurrogate
	}
	return string(u.buf), nil
}

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. Unquote
// reports an error for an invalid or incomplete escape sequence, an unpaired
// surrogate, or an unescaped control character.
func Unquote(src mem.RO) ([]byte, error) {
	if mem.IndexByte(src, '\\') < 0 && !hasControl(src) {
		return mem.Append(make([]byte, 0, src.Len()), src), nil
	}
	u := Unescaper{buf: make([]byte, 0, src.Len())}
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		if err := u.Write(r); err != nil {
			return nil, err
		}
		src = src.SliceFrom(n)
	}
	if _, err := u.Finish(); err != nil {
		return nil, err
	}
	return u.buf, nil
}

// IsControl reports whether c is a control character that must be escaped
// inside a JSON string.
func IsControl(c rune) bool { return c <= 0x1f || c == 0x7f || (c >= 0x80 && c <= 0x9f) }

func hasControl(src mem.RO) bool {
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		if IsControl(r) {
			return true
		}
		src = src.SliceFrom(n)
	}
	return false
}

func unescapeShort(c rune) (byte, bool) {
	switch c {
	case '"', '\\', '/':
		return byte(c), true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	}
	return 0, false
}

func hexValue(c rune) (rune, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
