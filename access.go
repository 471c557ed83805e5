// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// Len reports the number of members of an object or elements of an array,
// including Unset entries. It returns 0 for all other kinds.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	switch t := d.v.(type) {
	case object:
		return len(t)
	case array:
		return len(t)
	}
	return 0
}

// Elem returns the element at offset i of an array. It reports an error
// wrapping ErrBadValue if d is not an array, or ErrIndexRange if i is out of
// range. Elem does not modify d.
func (d *Document) Elem(i int) (*Document, error) {
	a, ok := d.arrayVal()
	if !ok {
		return nil, badValue(d.Kind(), "array")
	} else if i < 0 || i >= len(a) {
		return nil, fmt.Errorf("%w: index %d (n=%d)", ErrIndexRange, i, len(a))
	}
	return a[i], nil
}

// Lookup returns the value of the member of an object with the given key. It
// reports an error wrapping ErrBadValue if d is not an object, or
// ErrKeyNotFound if the key is not present. Lookup does not modify d.
func (d *Document) Lookup(key string) (*Document, error) {
	m, ok := d.objectVal()
	if !ok {
		return nil, badValue(d.Kind(), "object")
	}
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return v, nil
}

// Has reports whether d is an object with a member for key.
func (d *Document) Has(key string) bool {
	m, ok := d.objectVal()
	if ok {
		_, ok = m[key]
	}
	return ok
}

// Slot returns a modifiable handle to the element at offset i of an array.
// If d is Unset it first becomes an empty array. If i equals the length of
// the array, a new Unset element is appended and returned. It reports an
// error wrapping ErrBadValue if d is not an array, or ErrIndexRange if i is
// negative or greater than the length.
func (d *Document) Slot(i int) (*Document, error) {
	if d.v == nil {
		d.v = array{}
	}
	a, ok := d.v.(array)
	if !ok {
		return nil, badValue(d.Kind(), "array")
	}
	switch {
	case i == len(a):
		elt := new(Document)
		d.v = append(a, elt)
		return elt, nil
	case i < 0 || i > len(a):
		return nil, fmt.Errorf("%w: index %d (n=%d)", ErrIndexRange, i, len(a))
	}
	return a[i], nil
}

// Field returns a modifiable handle to the value of the member of an object
// with the given key. If d is Unset it first becomes an empty object. If no
// such member exists, an Unset member is added and returned. It reports an
// error wrapping ErrBadValue if d is not an object.
func (d *Document) Field(key string) (*Document, error) {
	if d.v == nil {
		d.v = object{}
	}
	m, ok := d.v.(object)
	if !ok {
		return nil, badValue(d.Kind(), "object")
	}
	v, ok := m[key]
	if !ok {
		v = new(Document)
		m[key] = v
	}
	return v, nil
}

// Remove removes the member of an object with the given key, and reports
// whether it was present.
func (d *Document) Remove(key string) bool {
	m, ok := d.objectVal()
	if ok {
		if _, ok = m[key]; ok {
			delete(m, key)
		}
	}
	return ok
}

// RemoveAt removes the element at offset i of an array, shifting later
// elements down.
func (d *Document) RemoveAt(i int) error {
	a, ok := d.arrayVal()
	if !ok {
		return badValue(d.Kind(), "array")
	} else if i < 0 || i >= len(a) {
		return fmt.Errorf("%w: index %d (n=%d)", ErrIndexRange, i, len(a))
	}
	d.v = slices.Delete(a, i, i+1)
	return nil
}

// PushBack adds the value of v to the end of an array. If the array ends
// with a run of Unset elements, the first element of that run is replaced
// instead, so holes left by Slot are reused before the array grows. If d is
// Unset it first becomes an empty array.
//
// The value v may have any of the types supported by ToValue. PushBack
// reports an error wrapping ErrBadValue if d is not an array or v is not
// supported.
func (d *Document) PushBack(v any) error {
	if d.v == nil {
		d.v = array{}
	}
	a, ok := d.v.(array)
	if !ok {
		return badValue(d.Kind(), "array")
	}
	w, err := fromGo(v)
	if err != nil {
		return err
	}
	i := len(a)
	for i > 0 && a[i-1].Kind() == Unset {
		i--
	}
	if i < len(a) {
		a[i].v = w.v
		return nil
	}
	d.v = append(a, w)
	return nil
}

// Elements returns an iterator over the offsets and elements of an array.
// It yields nothing if d is not an array. Unset elements are included.
func (d *Document) Elements() iter.Seq2[int, *Document] {
	return func(yield func(int, *Document) bool) {
		a, _ := d.arrayVal()
		for i, elt := range a {
			if !yield(i, elt) {
				return
			}
		}
	}
}

// Members returns an iterator over the keys and values of an object, in
// lexicographic order by key. It yields nothing if d is not an object.
func (d *Document) Members() iter.Seq2[string, *Document] {
	return func(yield func(string, *Document) bool) {
		m, _ := d.objectVal()
		for _, key := range slices.Sorted(maps.Keys(m)) {
			if !yield(key, m[key]) {
				return
			}
		}
	}
}

// Keys returns the keys of an object in lexicographic order, or nil if d is
// not an object.
func (d *Document) Keys() []string {
	m, ok := d.objectVal()
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(m))
}

func (d *Document) objectVal() (object, bool) {
	if d == nil {
		return nil, false
	}
	m, ok := d.v.(object)
	return m, ok
}

func (d *Document) arrayVal() (array, bool) {
	if d == nil {
		return nil, false
	}
	a, ok := d.v.(array)
	return a, ok
}
