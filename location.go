// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import "fmt"

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int64 // the start offset in bytes, 0-based
	End int64 // the end offset in bytes, 0-based (noninclusive)
}

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // code point offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// advance updates lc after reading c, given the previously-read code point.
// A CR, an LF, or a CR LF pair each end one line.
func (lc *LineCol) advance(prev, c rune) {
	switch {
	case c == '\r', c == '\n' && prev != '\r':
		lc.Line++
		lc.Column = 0
	case c == '\n':
		// second half of CR LF; the line was already counted
	default:
		lc.Column++
	}
}
