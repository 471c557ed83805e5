// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the structure of a JSON document.
package cursor

import (
	"fmt"

	"github.com/creachadair/jdoc"
)

// Path traverses a sequential path into the structure of v where path elements
// are as documented for the Cursor.Down method.  This is a convenience wrapper
// for creating a cursor, applying path, and retrieving its value.
func Path(v *jdoc.Document, path ...any) (*jdoc.Document, error) {
	c := New(v).Down(path...)
	if err := c.Err(); err != nil {
		return nil, err
	}
	return c.Value(), nil
}

// Get traverses a path as Path does, and converts the value reached to T.
func Get[T jdoc.Scalar](v *jdoc.Document, path ...any) (T, error) {
	w, err := Path(v, path...)
	if err != nil {
		var zero T
		return zero, err
	}
	return jdoc.As[T](w)
}

// A Cursor is a pointer that navigates into the structure of a document.
type Cursor struct {
	org *jdoc.Document
	stk []*jdoc.Document
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin *jdoc.Document) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() *jdoc.Document { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() *jdoc.Document {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path reports the complete sequence of values from the origin to the current
// location in c.
func (c *Cursor) Path() []*jdoc.Document {
	return append([]*jdoc.Document{c.org}, c.stk...)
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current value, where path elements are either strings (denoting object
// keys), integers (denoting offsets into arrays), functions (see below), or
// nil.  If the path cannot be completely consumed, traversal stops and an
// error is recorded. Use Err to recover the error.
//
// If a path element is a string, the corresponding value must be an object,
// and the string resolves the value of the member with that key.
//
// If a path element is an integer, the corresponding value must be an array or
// object, and the integer resolves to an index in the array, or in the keys of
// the object in lexicographic order. Negative indices count backward from the
// end (-1 is last, -2 second last). An error is reported if the index is out
// of bounds.
//
// If a path element is a function, the function is executed and its result
// becomes the next value in the sequence. The function must have a signature
//
//	func(*jdoc.Document) (*jdoc.Document, error)
//
// If the function reports an error, traversal stops and the error is recorded.
// A nil path element is ignored.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Value()
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			if cur.Kind() != jdoc.Object {
				return c.setErrorf("cannot traverse %v with %q", cur.Kind(), t)
			}
			next, err := cur.Lookup(t)
			if err != nil {
				return c.setErrorf("key %q not found", t)
			}
			cur = c.push(next)

		case int:
			switch cur.Kind() {
			case jdoc.Array:
				i, ok := fixArrayBound(cur.Len(), t)
				if !ok {
					return c.setErrorf("array index %d out of bounds (n=%d)", t, cur.Len())
				}
				next, _ := cur.Elem(i)
				cur = c.push(next)
			case jdoc.Object:
				keys := cur.Keys()
				i, ok := fixArrayBound(len(keys), t)
				if !ok {
					return c.setErrorf("object index %d out of bounds (n=%d)", t, len(keys))
				}
				next, _ := cur.Lookup(keys[i])
				cur = c.push(next)
			default:
				return c.setErrorf("cannot traverse %v with %v", cur.Kind(), elt)
			}

		case func(*jdoc.Document) (*jdoc.Document, error):
			next, err := t(cur)
			if err != nil {
				c.err = err
				return c
			}
			cur = c.push(next)

		case nil:
			// Do nothing.

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) push(v *jdoc.Document) *jdoc.Document { c.stk = append(c.stk, v); return v }

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
