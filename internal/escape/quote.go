// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var shortEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	'"':  '"',
	'/':  '/',
	'\\': '\\',
}

var hexDigit = []byte("0123456789abcdef")

// Quote encodes src as a JSON string, with enclosing double quotation marks.
func Quote(src mem.RO) []byte {
	buf := make([]byte, 0, src.Len()+2)
	buf = append(buf, '"')
	buf = Append(buf, src)
	return append(buf, '"')
}

// Append appends the escaped form of src to dst and returns the updated
// slice. The reserved characters with short escapes are written as those
// escapes, other control characters as \u00XX, and invalid UTF-8 as \ufffd.
// Everything else is copied unescaped.
func Append(dst []byte, src mem.RO) []byte {
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		switch {
		case r < utf8.RuneSelf:
			if int(r) < len(shortEsc) && shortEsc[r] != 0 {
				dst = append(dst, '\\', shortEsc[r])
			} else if IsControl(r) {
				dst = appendHex(dst, r)
			} else {
				dst = append(dst, byte(r))
			}
		case r == utf8.RuneError && n == 1:
			dst = append(dst, `\ufffd`...)
		case IsControl(r):
			dst = appendHex(dst, r)
		default:
			dst = mem.Append(dst, src.SliceTo(n))
		}
		src = src.SliceFrom(n)
	}
	return dst
}

func appendHex(dst []byte, r rune) []byte {
	return append(dst, '\\', 'u', '0', '0', hexDigit[int(r>>4)&15], hexDigit[int(r&15)])
}
