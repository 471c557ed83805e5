// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package decode converts an encoded byte stream into a sequence of Unicode
// code points.
package decode

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// Encoding identifies the encoding of an input byte stream.
type Encoding byte

// Constants defining the supported encodings. Multi-byte code units are
// big-endian, and byte-order marks are not interpreted.
const (
	UTF8 Encoding = iota
	UTF16
	UTF32
)

var encName = [...]string{UTF8: "UTF-8", UTF16: "UTF-16", UTF32: "UTF-32"}

func (e Encoding) String() string {
	if int(e) < len(encName) {
		return encName[e]
	}
	return fmt.Sprintf("Encoding(%d)", byte(e))
}

// ErrInvalidSequence is reported for a byte sequence that is not valid in the
// selected encoding, including a sequence truncated by the end of input.
var ErrInvalidSequence = errors.New("invalid encoded sequence")

// A Decoder reads code points from an encoded input stream.
type Decoder struct {
	r   *bufio.Reader
	enc Encoding
	off int64 // bytes consumed by complete code points
	buf [4]byte
}

// New constructs a Decoder that consumes input from r in the given encoding.
func New(r io.Reader, enc Encoding) *Decoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br, enc: enc}
}

// Encoding reports the encoding used by d.
func (d *Decoder) Encoding() Encoding { return d.enc }

// Offset reports the number of bytes of input consumed by code points
// successfully returned by Next. After an error, Offset reports the start of
// the sequence that could not be decoded.
func (d *Decoder) Offset() int64 { return d.off }

// Next returns the next code point from the input. At the end of the input,
// Next returns io.EOF. Malformed input reports an error wrapping
// ErrInvalidSequence.
func (d *Decoder) Next() (rune, error) {
	switch d.enc {
	case UTF16:
		return d.next16()
	case UTF32:
		return d.next32()
	default:
		return d.next8()
	}
}

func (d *Decoder) next8() (rune, error) {
	r, n, err := d.r.ReadRune()
	if err != nil {
		return 0, err
	} else if r == utf8.RuneError && n == 1 {
		return 0, d.invalid("UTF-8")
	}
	d.off += int64(n)
	return r, nil
}

func (d *Decoder) next16() (rune, error) {
	u, err := d.unit16(0)
	if err != nil {
		return 0, err
	}
	r := rune(u)
	if !utf16.IsSurrogate(r) {
		d.off += 2
		return r, nil
	} else if r >= 0xdc00 {
		return 0, d.invalid("unpaired low surrogate in UTF-16")
	}
	lo, err := d.unit16(2)
	if err == io.EOF {
		return 0, d.invalid("truncated UTF-16 surrogate pair")
	} else if err != nil {
		return 0, err
	}
	c := utf16.DecodeRune(r, rune(lo))
	if c == utf8.RuneError {
		return 0, d.invalid("unpaired high surrogate in UTF-16")
	}
	d.off += 4
	return c, nil
}

// unit16 reads a single big-endian 16-bit code unit. The extra offset is used
// only for error reporting.
func (d *Decoder) unit16(extra int64) (uint16, error) {
	if _, err := io.ReadFull(d.r, d.buf[:2]); err == io.ErrUnexpectedEOF {
		return 0, d.invalidAt(extra, "truncated UTF-16 code unit")
	} else if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(d.buf[:2]), nil
}

func (d *Decoder) next32() (rune, error) {
	if _, err := io.ReadFull(d.r, d.buf[:4]); err == io.ErrUnexpectedEOF {
		return 0, d.invalid("truncated UTF-32 code unit")
	} else if err != nil {
		return 0, err
	}
	r := rune(binary.BigEndian.Uint32(d.buf[:4]))
	if !utf8.ValidRune(r) {
		return 0, d.invalid("UTF-32")
	}
	d.off += 4
	return r, nil
}

func (d *Decoder) invalid(what string) error { return d.invalidAt(0, what) }

func (d *Decoder) invalidAt(extra int64, what string) error {
	return fmt.Errorf("%w: %s (offset %d)", ErrInvalidSequence, what, d.off+extra)
}
