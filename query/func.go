package query

import (
	"slices"

	"github.com/creachadair/jdoc"
)

// Exists returns a selection that reports true if its argument satisfies the
// specified query. The arguments have the same constraints as Path.
func Exists(keys ...any) Selection {
	q := Path(keys...)
	return func(v *jdoc.Document) bool {
		_, err := q.eval(v)
		return err == nil
	}
}

// Is returns a selection that reports true if its argument has one of the
// given kinds.
func Is(kinds ...jdoc.Kind) Selection {
	return func(v *jdoc.Document) bool { return slices.Contains(kinds, v.Kind()) }
}

// IsNot returns a selection that reports true if its argument has none of the
// given kinds.
func IsNot(kinds ...jdoc.Kind) Selection {
	return func(v *jdoc.Document) bool { return !slices.Contains(kinds, v.Kind()) }
}

// Map constructs a mapping from the given function. The resulting mapping will
// return unmodified any value whose kind does not match T.
func Map[T jdoc.Scalar](f func(T) T) Mapping {
	return func(v *jdoc.Document) *jdoc.Document {
		if w, ok := convert[T](v); ok {
			return jdoc.ToValue(f(w))
		}
		return v
	}
}

// Filter constructs a selection from the given function. The resulting
// selection will discard any value whose kind does not match T.
func Filter[T jdoc.Scalar](f func(T) bool) Selection {
	return func(v *jdoc.Document) bool { w, ok := convert[T](v); return ok && f(w) }
}

// convert reports the value of v as a T, if the kind of v matches T. Strings
// match only strings, bools only Booleans, and numeric types only numbers.
func convert[T jdoc.Scalar](v *jdoc.Document) (T, bool) {
	var zero T
	var ok bool
	switch any(zero).(type) {
	case string:
		ok = v.Kind() == jdoc.String
	case bool:
		ok = v.Kind() == jdoc.Boolean
	default:
		ok = v.Kind().IsNumber()
	}
	if !ok {
		return zero, false
	}
	w, err := jdoc.As[T](v)
	return w, err == nil
}
