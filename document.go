// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"fmt"
	"math"

	"github.com/creachadair/mds/stack"
)

// A Document is a JSON value: an object, array, string, number, Boolean, or
// null. The zero value is an empty document of kind Unset, which is ready for
// use. A container document exclusively owns its children.
//
// A Document is not safe for concurrent mutation. Concurrent reads of a
// document that is not being modified are safe.
type Document struct {
	v value // nil means Unset
}

// value is the payload of a Document. The concrete types below are the only
// implementations.
type value interface{ kind() Kind }

type (
	object  map[string]*Document
	array   []*Document
	text    string
	boolean bool
	null    struct{}

	number struct {
		f    float64
		frac bool // f has a fractional part
	}
)

func (object) kind() Kind  { return Object }
func (array) kind() Kind   { return Array }
func (text) kind() Kind    { return String }
func (boolean) kind() Kind { return Boolean }
func (null) kind() Kind    { return Null }

func (n number) kind() Kind {
	if n.frac {
		return NumberFractional
	}
	return Number
}

func newNumber(f float64) number { return number{f: f, frac: math.Floor(f) != f} }

// New constructs an empty document of the given kind: an empty object or
// array, an empty string, zero, false, or null. A number's kind follows its
// value, so New(NumberFractional) returns a zero of kind Number.
func New(k Kind) *Document {
	d := new(Document)
	switch k {
	case Object:
		d.v = object{}
	case Array:
		d.v = array{}
	case String:
		d.v = text("")
	case Number, NumberFractional:
		d.v = number{}
	case Boolean:
		d.v = boolean(false)
	case Null:
		d.v = null{}
	}
	return d
}

// ToValue converts a Go value into a Document. It panics if v does not have
// a supported type. The supported types are:
//
//	nil, bool, string, *Document
//	int, int8, int16, int32, int64
//	uint, uint8, uint16, uint32, uint64
//	float32, float64
//	[]any, map[string]any (with elements of supported types)
//
// A *Document argument is copied.
func ToValue(v any) *Document {
	d, err := fromGo(v)
	if err != nil {
		panic(err)
	}
	return d
}

// Kind reports the kind of value stored in d. A nil *Document is Unset.
func (d *Document) Kind() Kind {
	if d == nil || d.v == nil {
		return Unset
	}
	return d.v.kind()
}

// IsNull reports whether d is the null constant.
func (d *Document) IsNull() bool { return d.Kind() == Null }

// IsUnset reports whether d has no value.
func (d *Document) IsUnset() bool { return d.Kind() == Unset }

// SetObject replaces the contents of d with a copy of the object in src.
// If src is nil or not an object, d becomes an empty object.
func (d *Document) SetObject(src *Document) {
	if src.Kind() != Object {
		d.v = object{}
		return
	}
	d.v = src.Clone().v
}

// SetArray replaces the contents of d with a copy of the array in src.
// If src is nil or not an array, d becomes an empty array.
func (d *Document) SetArray(src *Document) {
	if src.Kind() != Array {
		d.v = array{}
		return
	}
	d.v = src.Clone().v
}

// SetString replaces the contents of d with the string s.
func (d *Document) SetString(s string) { d.v = text(s) }

// SetNumber replaces the contents of d with the number f. The kind of d is
// Number if f is integral, otherwise NumberFractional.
func (d *Document) SetNumber(f float64) { d.v = newNumber(f) }

// SetBool replaces the contents of d with the Boolean b.
func (d *Document) SetBool(b bool) { d.v = boolean(b) }

// SetNull replaces the contents of d with null.
func (d *Document) SetNull() { d.v = null{} }

// Reset discards the contents of d, leaving it Unset.
func (d *Document) Reset() { d.v = nil }

// Assign replaces the contents of d with the value of v, which may have any
// of the types supported by ToValue. If v is not supported, Assign reports an
// error wrapping ErrBadValue and d is unchanged.
func (d *Document) Assign(v any) error {
	w, err := fromGo(v)
	if err != nil {
		return err
	}
	d.v = w.v
	return nil
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	out := new(Document)
	if d == nil {
		return out
	}

	type frame struct{ src, dst *Document }
	stk := stack.New[frame]()
	stk.Push(frame{d, out})
	for stk.Len() != 0 {
		f, _ := stk.Pop()
		if f.src == nil {
			continue
		}
		switch t := f.src.v.(type) {
		case object:
			m := make(object, len(t))
			for key, elt := range t {
				c := new(Document)
				m[key] = c
				stk.Push(frame{elt, c})
			}
			f.dst.v = m
		case array:
			a := make(array, len(t))
			for i, elt := range t {
				a[i] = new(Document)
				stk.Push(frame{elt, a[i]})
			}
			f.dst.v = a
		default:
			f.dst.v = t // scalars are immutable
		}
	}
	return out
}

// String returns the JSON encoding of d. An Unset document is rendered as
// an empty string.
func (d *Document) String() string { return d.Serialize() }

// fromGo converts a Go value to a Document without recursion.
func fromGo(v any) (*Document, error) {
	type frame struct {
		src any
		dst *Document
	}
	out := new(Document)
	stk := stack.New[frame]()
	stk.Push(frame{v, out})
	for stk.Len() != 0 {
		f, _ := stk.Pop()
		switch t := f.src.(type) {
		case nil:
			f.dst.v = null{}
		case bool:
			f.dst.v = boolean(t)
		case string:
			f.dst.v = text(t)
		case *Document:
			f.dst.v = t.Clone().v
		case []any:
			a := make(array, len(t))
			for i, elt := range t {
				a[i] = new(Document)
				stk.Push(frame{elt, a[i]})
			}
			f.dst.v = a
		case map[string]any:
			m := make(object, len(t))
			for key, elt := range t {
				c := new(Document)
				m[key] = c
				stk.Push(frame{elt, c})
			}
			f.dst.v = m
		default:
			n, ok := toFloat(t)
			if !ok {
				return nil, fmt.Errorf("%w: unsupported type %T", ErrBadValue, f.src)
			}
			f.dst.v = newNumber(n)
		}
	}
	return out, nil
}

// toFloat converts a Go numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
