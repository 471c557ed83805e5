// Package query implements structural queries over JSON documents.
//
// A query describes a syntactic substructure of a JSON document, such as an
// object member, array element, or a path through the tree. Evaluating a query
// against a concrete document traverses the structure described by the query
// and returns the resulting value.
//
// The simplest query is for a "path", a sequence of object keys and/or array
// indices that describes a path from the root of a document. For example,
// given the JSON value:
//
//	[{"a": 1, "b": 2}, {"c": {"d": true}, "e": false}]
//
// the query
//
//	query.Path(1, "c", "d")
//
// yields the value "true".
//
// Path queries return values that are part of the input document. Queries
// that construct a new object or array fill it with copies of the values they
// select, so the result can be modified without affecting the input.
package query

import (
	"errors"
	"fmt"

	"github.com/creachadair/jdoc"
	"github.com/creachadair/mds/stack"
)

// Eval evaluates the given query beginning from root, returning the resulting
// value or an error.
func Eval(root *jdoc.Document, q Query) (*jdoc.Document, error) {
	return q.eval(root)
}

// A Query describes a traversal of a JSON document.
type Query interface {
	eval(*jdoc.Document) (*jdoc.Document, error)
}

// Path traverses a sequence of nested object keys or array indices from the
// root.  If no keys are specified, the root is returned. Each key must be a
// string, an int, or a Query.
func Path(keys ...any) Query {
	if len(keys) == 1 {
		return pathElem(keys[0])
	}
	pq := make(Seq, 0, len(keys))
	for _, key := range keys {
		q := pathElem(key)
		if sq, ok := q.(Seq); ok {
			pq = append(pq, sq...)
		} else {
			pq = append(pq, q)
		}
	}
	return pq
}

func pathElem(key any) Query {
	switch t := key.(type) {
	case string:
		return Key(t)
	case int:
		return Index(t)
	case Query:
		return t
	default:
		panic("invalid path element")
	}
}

// Key selects the value of the member of an object with the given key.
func Key(key string) Query { return objKey(key) }

type objKey string

func (o objKey) eval(v *jdoc.Document) (*jdoc.Document, error) {
	return v.Lookup(string(o))
}

// Index selects the element at offset n of an array. A negative offset
// selects from the end of the array.
func Index(n int) Query { return nthQuery(n) }

type nthQuery int

func (nq nthQuery) eval(v *jdoc.Document) (*jdoc.Document, error) {
	if err := wantArray(v); err != nil {
		return nil, err
	}
	idx := int(nq)
	if idx < 0 {
		idx += v.Len()
	}
	return v.Elem(idx)
}

// Selection constructs an array of the elements of its input array, for which
// the specified function returns true.
type Selection func(*jdoc.Document) bool

func (q Selection) eval(v *jdoc.Document) (*jdoc.Document, error) {
	if err := wantArray(v); err != nil {
		return nil, err
	}
	out := jdoc.New(jdoc.Array)
	for _, elt := range v.Elements() {
		if q(elt) {
			appendValue(out, elt)
		}
	}
	return out, nil
}

// Mapping constructs an array in which each value is replaced by the result of
// calling the specified function on the corresponding input value.
type Mapping func(*jdoc.Document) *jdoc.Document

func (q Mapping) eval(v *jdoc.Document) (*jdoc.Document, error) {
	if err := wantArray(v); err != nil {
		return nil, err
	}
	out := jdoc.New(jdoc.Array)
	for _, elt := range v.Elements() {
		appendValue(out, q(elt))
	}
	return out, nil
}

// Slice selects a slice of an array from offsets lo to hi.  The range includes
// lo but excludes hi. Negative offsets select from the end of the array.
// If hi == 0, the length of the array is used.
func Slice(lo, hi int) Query { return sliceQuery{lo, hi} }

type sliceQuery struct{ lo, hi int }

func (q sliceQuery) eval(v *jdoc.Document) (*jdoc.Document, error) {
	if err := wantArray(v); err != nil {
		return nil, err
	}
	n := v.Len()
	lox := q.lo
	if lox < 0 {
		lox += n
	}
	hix := q.hi
	if hix <= 0 {
		hix += n
	}
	if lox < 0 || lox >= n {
		return nil, fmt.Errorf("index %d out of range (0..%d)", q.lo, n)
	} else if hix < 0 || hix > n {
		return nil, fmt.Errorf("index %d out of range (0..%d)", q.hi, n)
	} else if lox > hix {
		return nil, fmt.Errorf("index start %d > end %d", q.lo, q.hi)
	}
	out := jdoc.New(jdoc.Array)
	for i := lox; i < hix; i++ {
		elt, _ := v.Elem(i)
		appendValue(out, elt)
	}
	return out, nil
}

// Pick constructs an array by picking the designated offsets from an array.
// Negative offsets select from the end of the input array.
func Pick(offsets ...int) Query { return pickQuery(offsets) }

type pickQuery []int

func (q pickQuery) eval(v *jdoc.Document) (*jdoc.Document, error) {
	if err := wantArray(v); err != nil {
		return nil, err
	}
	out := jdoc.New(jdoc.Array)
	for _, off := range q {
		elt, err := nthQuery(off).eval(v)
		if err != nil {
			return nil, err
		}
		appendValue(out, elt)
	}
	return out, nil
}

// Len returns an integer representing the length of the root.
//
// For an object, the length is the number of members.
// For an array, the length is the number of elements.
// For a string, the length is the length of the string in bytes.
// For null, the length is zero.
func Len() Query { return lenQuery{} }

type lenQuery struct{}

func (lenQuery) eval(v *jdoc.Document) (*jdoc.Document, error) {
	switch v.Kind() {
	case jdoc.Object, jdoc.Array:
		return jdoc.ToValue(v.Len()), nil
	case jdoc.String:
		s, _ := v.Text()
		return jdoc.ToValue(len(s)), nil
	case jdoc.Null:
		return jdoc.ToValue(0), nil
	}
	return nil, fmt.Errorf("cannot take length of %v", v.Kind())
}

// Seq is a sequential composition of queries. An empty sequence selects the
// root; otherwise, each query is applied to the result selected by the
// previous query in the sequence.
type Seq []Query

func (q Seq) eval(v *jdoc.Document) (*jdoc.Document, error) {
	cur := v
	for _, sq := range q {
		next, err := sq.eval(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Alt is a query that selects among a sequence of alternatives.  The result of
// the first alternative that does not report an error is returned. If there
// are no alternatives, the query fails on all inputs.
type Alt []Query

func (q Alt) eval(v *jdoc.Document) (*jdoc.Document, error) {
	for _, alt := range q {
		if w, err := alt.eval(v); err == nil {
			return w, nil
		}
	}
	return nil, errors.New("no matching alternatives")
}

// Recur applies a query to each recursive descendant of its input and returns
// an array of the resulting values. The arguments have the same constraints as
// Path.
func Recur(keys ...any) Query { return recQuery{Path(keys...)} }

type recQuery struct{ Query }

func (q recQuery) eval(v *jdoc.Document) (*jdoc.Document, error) {
	out := jdoc.New(jdoc.Array)

	stk := stack.New[*jdoc.Document]()
	stk.Push(v)
	for stk.Len() != 0 {
		next, _ := stk.Pop()

		if r, err := q.Query.eval(next); err == nil {
			appendValue(out, r)
		}

		// N.B. Push in reverse order, so we visit in lexical order.
		var kids []*jdoc.Document
		switch next.Kind() {
		case jdoc.Object:
			for _, elt := range next.Members() {
				kids = append(kids, elt)
			}
		case jdoc.Array:
			for _, elt := range next.Elements() {
				kids = append(kids, elt)
			}
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stk.Push(kids[i])
		}
	}

	if out.Len() == 0 {
		return nil, errors.New("no matches")
	}
	return out, nil
}

// Each applies a query to each element of an array and returns an array of the
// resulting values. It fails if the input is not an array.  The arguments have
// the same constraints as Path.
func Each(keys ...any) Query { return eachQuery{Path(keys...)} }

type eachQuery struct{ Query }

func (q eachQuery) eval(v *jdoc.Document) (*jdoc.Document, error) {
	if err := wantArray(v); err != nil {
		return nil, err
	}
	out := jdoc.New(jdoc.Array)
	for i, elt := range v.Elements() {
		w, err := q.Query.eval(elt)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		appendValue(out, w)
	}
	return out, nil
}

// Object constructs an object with the given keys mapped to the results of
// matching the query values against its input.
type Object map[string]Query

func (o Object) eval(v *jdoc.Document) (*jdoc.Document, error) {
	out := jdoc.New(jdoc.Object)
	for key, q := range o {
		val, err := q.eval(v)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", key, err)
		}
		f, _ := out.Field(key)
		f.Assign(val)
	}
	return out, nil
}

// Array constructs an array with the values produced by matching the given
// queries against its input.
type Array []Query

func (a Array) eval(v *jdoc.Document) (*jdoc.Document, error) {
	out := jdoc.New(jdoc.Array)
	for i, q := range a {
		val, err := q.eval(v)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		appendValue(out, val)
	}
	return out, nil
}

// A String query ignores its input and returns the given string.
func String(s string) Query { return Value(jdoc.ToValue(s)) }

// A Float query ignores its input and returns the given number.
func Float(n float64) Query { return Value(jdoc.ToValue(n)) }

// An Int query ignores its input and returns the given integer.
func Int(z int64) Query { return Value(jdoc.ToValue(z)) }

// A Bool query ignores its input and returns the given bool.
func Bool(b bool) Query { return Value(jdoc.ToValue(b)) }

// A Null query ignores its input and returns a null value.
func Null() Query { return Value(jdoc.New(jdoc.Null)) }

// A Value query ignores its input and returns a copy of the given value.
func Value(v *jdoc.Document) Query { return constQuery{v} }

type constQuery struct{ v *jdoc.Document }

func (c constQuery) eval(_ *jdoc.Document) (*jdoc.Document, error) { return c.v.Clone(), nil }

// A Glob query returns an array of all its inputs. The values of an object
// are returned in order by key.
func Glob() Query { return globQuery{} }

type globQuery struct{}

func (globQuery) eval(v *jdoc.Document) (*jdoc.Document, error) {
	switch v.Kind() {
	case jdoc.Object:
		out := jdoc.New(jdoc.Array)
		for _, elt := range v.Members() {
			appendValue(out, elt)
		}
		return out, nil
	case jdoc.Array:
		return v, nil
	default:
		return nil, errors.New("no matching values")
	}
}

func wantArray(v *jdoc.Document) error {
	if k := v.Kind(); k != jdoc.Array {
		return fmt.Errorf("got %v, want array", k)
	}
	return nil
}

// appendValue adds a copy of v to the end of the array arr. Unlike PushBack,
// it never fills an Unset element already present in arr.
func appendValue(arr, v *jdoc.Document) {
	slot, _ := arr.Slot(arr.Len())
	slot.Assign(v)
}
