// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"math"

	"github.com/creachadair/mds/stack"
)

// Equal reports whether d and o are structurally equal: they have the same
// kind, and equal payloads. Numbers are compared with a tolerance of one
// float64 epsilon. Arrays are equal if they have the same length and equal
// elements pairwise; objects are equal if they have the same keys, with
// equal values.
func (d *Document) Equal(o *Document) bool {
	type pair struct{ a, b *Document }
	stk := stack.New[pair]()
	stk.Push(pair{d, o})
	for stk.Len() != 0 {
		p, _ := stk.Pop()
		if p.a.Kind() != p.b.Kind() {
			return false
		}
		switch a := p.a.value().(type) {
		case object:
			b := p.b.v.(object)
			if len(a) != len(b) {
				return false
			}
			for key, av := range a {
				bv, ok := b[key]
				if !ok {
					return false
				}
				stk.Push(pair{av, bv})
			}
		case array:
			b := p.b.v.(array)
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				stk.Push(pair{a[i], b[i]})
			}
		case number:
			if !floatEqual(a.f, p.b.v.(number).f, epsilon64) {
				return false
			}
		case text, boolean:
			if a != p.b.v {
				return false
			}
		}
	}
	return true
}

// Matches reports whether d is equal to the Go value v. Integer values match
// a document of kind Number; floating-point values match either numeric kind,
// with a float32 compared at float32 precision. A nil v matches null, and a
// *Document is compared using Equal. Any other type never matches.
func (d *Document) Matches(v any) bool {
	switch t := v.(type) {
	case nil:
		return d.IsNull()
	case bool:
		b, ok := d.value().(boolean)
		return ok && bool(b) == t
	case string:
		s, ok := d.value().(text)
		return ok && string(s) == t
	case *Document:
		return d.Equal(t)
	case float32:
		n, ok := d.value().(number)
		return ok && floatEqual(float64(float32(n.f)), float64(t), epsilon32)
	case float64:
		n, ok := d.value().(number)
		return ok && floatEqual(n.f, t, epsilon64)
	}
	if f, ok := toFloat(v); ok {
		return d.Kind() == Number && floatEqual(d.v.(number).f, f, epsilon64)
	}
	return false
}

func floatEqual(a, b, eps float64) bool { return a == b || math.Abs(a-b) < eps }
