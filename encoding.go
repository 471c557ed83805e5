// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"errors"
	"strings"

	"github.com/creachadair/jdoc/internal/decode"
	"github.com/creachadair/jdoc/internal/escape"

	"go4.org/mem"
)

// Encoding identifies the encoding of JSON input text. Multi-byte code units
// are big-endian, and byte-order marks are not interpreted.
type Encoding = decode.Encoding

// The supported input encodings.
const (
	UTF8  = decode.UTF8
	UTF16 = decode.UTF16
	UTF32 = decode.UTF32
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return string(escape.Quote(mem.S(src))) }

// Unquote decodes a JSON string value.  Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
//
// Unquote reports an error for an invalid or incomplete escape sequence, an
// unpaired UTF-16 surrogate, or an unescaped control character.
func Unquote(src string) (string, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return "", errors.New("missing quotations")
	}
	dec, err := escape.Unquote(mem.S(src[1 : len(src)-1]))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}
