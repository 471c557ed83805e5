// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"go4.org/mem"
)

// Tolerances for numeric comparison.
const (
	epsilon64 = 0x1p-52 // float64 machine epsilon
	epsilon32 = 0x1p-23 // float32 machine epsilon
)

// numeric returns the numeric value of d, converting as follows:
//
//	object, array, unset  error (ErrBadValue)
//	string                "true" is 1, "false" and "null" are 0 (ignoring case),
//	                      otherwise the text is parsed as a number
//	number                the value
//	Boolean               1 for true, 0 for false
//	null                  0
func (d *Document) numeric(want string) (float64, error) {
	switch t := d.value().(type) {
	case number:
		return t.f, nil
	case boolean:
		if t {
			return 1, nil
		}
		return 0, nil
	case null:
		return 0, nil
	case text:
		return parseNumberText(string(t))
	}
	return 0, badValue(d.Kind(), want)
}

func parseNumberText(s string) (float64, error) {
	m := mem.S(s)
	if mem.EqualFold(m, mem.S("true")) {
		return 1, nil
	} else if mem.EqualFold(m, mem.S("false")) || mem.EqualFold(m, mem.S("null")) {
		return 0, nil
	}
	f, err := mem.ParseFloat(mem.TrimSpace(m), 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q", ErrNumericOverflow, s)
	} else if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return f, nil
}

func (d *Document) value() value {
	if d == nil {
		return nil
	}
	return d.v
}

// integer converts d to an integer in the range [lo, hi). The value is
// truncated toward zero.
func (d *Document) integer(want string, lo, hi float64) (float64, error) {
	f, err := d.numeric(want)
	if err != nil {
		return 0, err
	} else if !(f >= lo && f < hi) {
		return 0, fmt.Errorf("%w: %v out of range for %s", ErrNumericOverflow, f, want)
	}
	return math.Trunc(f), nil
}

// Int16 returns the value of d as an int16.
func (d *Document) Int16() (int16, error) {
	f, err := d.integer("int16", math.MinInt16, math.MaxInt16+1)
	return int16(f), err
}

// Int32 returns the value of d as an int32.
func (d *Document) Int32() (int32, error) {
	f, err := d.integer("int32", math.MinInt32, math.MaxInt32+1)
	return int32(f), err
}

// Int returns the value of d as an int.
func (d *Document) Int() (int, error) {
	f, err := d.integer("int", math.MinInt, -float64(math.MinInt))
	return int(f), err
}

// Int64 returns the value of d as an int64.
func (d *Document) Int64() (int64, error) {
	f, err := d.integer("int64", math.MinInt64, -math.MinInt64)
	return int64(f), err
}

// Float32 returns the value of d as a float32.
func (d *Document) Float32() (float32, error) {
	f, err := d.numeric("float32")
	if err != nil {
		return 0, err
	} else if math.Abs(f) > math.MaxFloat32 {
		return 0, fmt.Errorf("%w: %v out of range for float32", ErrNumericOverflow, f)
	}
	return float32(f), nil
}

// Float64 returns the value of d as a float64.
func (d *Document) Float64() (float64, error) {
	f, err := d.numeric("float64")
	if err != nil {
		return 0, err
	} else if math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v out of range for float64", ErrNumericOverflow, f)
	}
	return f, nil
}

// Text returns the value of d as a string, converting as follows:
//
//	object, array  the JSON encoding of the value
//	string         the value
//	number         decimal text without trailing zeros
//	Boolean        "true" or "false"
//	null           "null"
//	unset          error (ErrBadValue)
func (d *Document) Text() (string, error) {
	switch t := d.value().(type) {
	case text:
		return string(t), nil
	case number:
		return string(appendNumber(nil, t.f)), nil
	case boolean:
		return strconv.FormatBool(bool(t)), nil
	case null:
		return "null", nil
	case object, array:
		return d.Serialize(), nil
	}
	return "", badValue(Unset, "string")
}

// Bool returns the value of d as a bool, converting as follows:
//
//	object, array, unset  error (ErrBadValue)
//	string                "true" is true, "false" and "null" are false (ignoring case),
//	                      otherwise the text is parsed as a number and tested
//	number                true if nonzero
//	Boolean               the value
//	null                  false
func (d *Document) Bool() (bool, error) {
	switch t := d.value().(type) {
	case boolean:
		return bool(t), nil
	case null:
		return false, nil
	case number:
		return math.Abs(t.f) >= epsilon64, nil
	case text:
		f, err := parseNumberText(string(t))
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrBadValue, err)
		}
		return math.Abs(f) >= epsilon64, nil
	}
	return false, badValue(d.Kind(), "bool")
}

// Object returns a copy of the members of an object. Use Field to modify
// the members of d in place.
func (d *Document) Object() (map[string]*Document, error) {
	m, ok := d.objectVal()
	if !ok {
		return nil, badValue(d.Kind(), "object")
	}
	out := make(map[string]*Document, len(m))
	for key, v := range m {
		out[key] = v.Clone()
	}
	return out, nil
}

// Array returns a copy of the elements of an array. Use Slot to modify the
// elements of d in place.
func (d *Document) Array() ([]*Document, error) {
	a, ok := d.arrayVal()
	if !ok {
		return nil, badValue(d.Kind(), "array")
	}
	out := make([]*Document, len(a))
	for i, v := range a {
		out[i] = v.Clone()
	}
	return out, nil
}

// Int16Or returns the value of d as an int16, or def if that fails.
func (d *Document) Int16Or(def int16) int16 { return orDefault(d.Int16, def) }

// Int32Or returns the value of d as an int32, or def if that fails.
func (d *Document) Int32Or(def int32) int32 { return orDefault(d.Int32, def) }

// IntOr returns the value of d as an int, or def if that fails.
func (d *Document) IntOr(def int) int { return orDefault(d.Int, def) }

// Int64Or returns the value of d as an int64, or def if that fails.
func (d *Document) Int64Or(def int64) int64 { return orDefault(d.Int64, def) }

// Float32Or returns the value of d as a float32, or def if that fails.
func (d *Document) Float32Or(def float32) float32 { return orDefault(d.Float32, def) }

// Float64Or returns the value of d as a float64, or def if that fails.
func (d *Document) Float64Or(def float64) float64 { return orDefault(d.Float64, def) }

// TextOr returns the value of d as a string, or def if that fails.
func (d *Document) TextOr(def string) string { return orDefault(d.Text, def) }

// BoolOr returns the value of d as a bool, or def if that fails.
func (d *Document) BoolOr(def bool) bool { return orDefault(d.Bool, def) }

// ObjectOr returns a copy of the members of an object, or def if d is not
// an object.
func (d *Document) ObjectOr(def map[string]*Document) map[string]*Document {
	return orDefault(d.Object, def)
}

// ArrayOr returns a copy of the elements of an array, or def if d is not an
// array.
func (d *Document) ArrayOr(def []*Document) []*Document { return orDefault(d.Array, def) }

func orDefault[T any](get func() (T, error), def T) T {
	if v, err := get(); err == nil {
		return v
	}
	return def
}

// Scalar is the set of Go types a document can be converted to by As.
type Scalar interface {
	int16 | int32 | int | int64 | float32 | float64 | string | bool
}

// As returns the value of d converted to type T.
func As[T Scalar](d *Document) (T, error) {
	var zero T
	var v any
	var err error
	switch any(zero).(type) {
	case int16:
		v, err = d.Int16()
	case int32:
		v, err = d.Int32()
	case int:
		v, err = d.Int()
	case int64:
		v, err = d.Int64()
	case float32:
		v, err = d.Float32()
	case float64:
		v, err = d.Float64()
	case string:
		v, err = d.Text()
	case bool:
		v, err = d.Bool()
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// AsOr returns the value of d converted to type T, or def if that fails.
func AsOr[T Scalar](d *Document, def T) T {
	return orDefault(func() (T, error) { return As[T](d) }, def)
}

// At returns the element at offset i of the array d, converted to type T.
func At[T Scalar](d *Document, i int) (T, error) {
	elt, err := d.Elem(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](elt)
}

// AtOr returns the element at offset i of the array d converted to type T,
// or def if that fails.
func AtOr[T Scalar](d *Document, i int, def T) T {
	return orDefault(func() (T, error) { return At[T](d, i) }, def)
}

// From returns the value of the member of the object d with the given key,
// converted to type T.
func From[T Scalar](d *Document, key string) (T, error) {
	v, err := d.Lookup(key)
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](v)
}

// FromOr returns the value of the member of the object d with the given key
// converted to type T, or def if that fails.
func FromOr[T Scalar](d *Document, key string, def T) T {
	return orDefault(func() (T, error) { return From[T](d, key) }, def)
}
