// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/creachadair/jdoc/internal/escape"
	"github.com/creachadair/mds/stack"
	"go4.org/mem"
)

// Serialize returns the compact JSON encoding of d. Object members are
// written in lexicographic order by key. Unset elements and members are
// omitted. A scalar document is rendered as its JSON text, and an Unset
// document as an empty string.
//
// Numbers are written in decimal without an exponent or trailing zeros.
// JSON has no representation for infinities and NaN, so these are written
// as null.
func (d *Document) Serialize() string { return string(d.AppendJSON(nil)) }

// AppendJSON appends the JSON encoding of d to buf and returns the updated
// slice, as described for Serialize.
func (d *Document) AppendJSON(buf []byte) []byte {
	switch t := d.value().(type) {
	case nil:
		return buf
	case object, array:
		return appendTree(buf, d)
	default:
		return appendScalar(buf, t)
	}
}

// A serialFrame records the progress of writing one object or array.
type serialFrame struct {
	open    byte        // the opening delimiter, '{' or '['
	keys    []string    // member keys in output order; nil for an array
	elems   []*Document // values in output order
	pos     int         // offset of the next value to consider
	live    int         // number of values that are not Unset
	emitted int         // number of values written so far
}

func newSerialFrame(d *Document) *serialFrame {
	f := &serialFrame{open: '['}
	switch t := d.v.(type) {
	case object:
		f.open = '{'
		f.keys = slices.Sorted(maps.Keys(t))
		f.elems = make([]*Document, len(f.keys))
		for i, key := range f.keys {
			f.elems[i] = t[key]
		}
	case array:
		f.elems = t
	}
	for _, elt := range f.elems {
		if elt.Kind() != Unset {
			f.live++
		}
	}
	return f
}

func (f *serialFrame) isObject() bool { return f.open == '{' }

// end returns the closing delimiter matching f.open. In ASCII each closer
// follows its opener by two.
func (f *serialFrame) end() byte { return f.open + 2 }

// appendTree writes the container root without recursion. Each nested
// container suspends its parent frame on the stack until it is complete.
func appendTree(buf []byte, root *Document) []byte {
	stk := stack.New[*serialFrame]()
	cur := newSerialFrame(root)
	buf = append(buf, cur.open)
	for {
		if cur.pos == len(cur.elems) {
			buf = append(buf, cur.end())
			next, ok := stk.Pop()
			if !ok {
				return buf
			}
			cur = next
			continue
		}

		i := cur.pos
		cur.pos++
		elt := cur.elems[i]
		if elt.Kind() == Unset {
			continue // holes are not written
		}
		if cur.live > 1 && cur.emitted > 0 {
			buf = append(buf, ',')
		}
		cur.emitted++
		if cur.isObject() {
			buf = appendString(buf, cur.keys[i])
			buf = append(buf, ':')
		}

		switch elt.v.(type) {
		case object, array:
			stk.Push(cur)
			cur = newSerialFrame(elt)
			buf = append(buf, cur.open)
		default:
			buf = appendScalar(buf, elt.v)
		}
	}
}

func appendScalar(buf []byte, v value) []byte {
	switch t := v.(type) {
	case text:
		return appendString(buf, string(t))
	case number:
		return appendNumber(buf, t.f)
	case boolean:
		return strconv.AppendBool(buf, bool(t))
	case null:
		return append(buf, "null"...)
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	buf = escape.Append(buf, mem.S(s))
	return append(buf, '"')
}

// appendNumber writes f in fixed-point notation with the fewest digits that
// represent it exactly.
func appendNumber(buf []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(buf, "null"...)
	}
	return strconv.AppendFloat(buf, f, 'f', -1, 64)
}
