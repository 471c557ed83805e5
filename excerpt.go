// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"io"
	"unicode/utf8"

	"github.com/creachadair/jdoc/internal/decode"
)

// excerptWidth is the maximum number of code points shown on each side of
// the offending character in an error excerpt.
const excerptWidth = 40

// remember records the offset of the code point most recently read.
func (ps *parseState) remember() {
	ps.ring[ps.nseen%len(ps.ring)] = ps.start
	ps.nseen++
}

// excerptStart returns the offset of the code point excerptWidth positions
// before the one at ps.start, or 0 if there are not that many.
func (ps *parseState) excerptStart() int64 {
	cur := ps.nseen // index of the code point at ps.start
	if ps.nseen > 0 && ps.ring[(ps.nseen-1)%len(ps.ring)] == ps.start {
		cur-- // the offending code point was already read
	}
	if back := cur - excerptWidth; back > 0 {
		return ps.ring[back%len(ps.ring)]
	}
	return 0
}

// excerpt re-reads the input around ps.start and returns the text of the
// offending line and a caret line marking the offending column. It returns
// empty strings if the input cannot be re-read.
//
// The text begins up to excerptWidth code points before the offending one,
// restarting after any line break, and ends at the next line break or
// excerptWidth code points after it.
func (ps *parseState) excerpt() (line, caret string) {
	if ps.seeker == nil {
		return "", ""
	}
	from := ps.excerptStart()
	if _, err := ps.seeker.Seek(ps.base+from, io.SeekStart); err != nil {
		return "", ""
	}
	dec := decode.New(ps.seeker, ps.enc)
	var text, mark []byte
	var marked bool
	var after int
	for after < excerptWidth {
		off := from + dec.Offset()
		c, err := dec.Next()
		if err != nil {
			break
		}
		if c == '\r' || c == '\n' {
			if off >= ps.start {
				break
			}
			text, mark = text[:0], mark[:0]
			continue
		}

		text = utf8.AppendRune(text, c)
		switch {
		case off < ps.start:
			if c == '\t' {
				mark = append(mark, '\t')
			} else {
				mark = append(mark, ' ')
			}
		case !marked:
			mark = append(mark, '^')
			marked = true
		default:
			after++
		}
	}
	if !marked {
		mark = append(mark, '^') // the failure is at the end of the line
	}
	return string(text), string(mark)
}
