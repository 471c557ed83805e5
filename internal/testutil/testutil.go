// Package testutil defines support code for unit tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/creachadair/jdoc"
	"github.com/tailscale/hujson"
)

// MustParse parses input as a JSON document, or fails t.
func MustParse(t testing.TB, input string) *jdoc.Document {
	t.Helper()
	d, err := jdoc.Parse(input)
	if err != nil {
		t.Fatalf("Parse %q: unexpected error: %v", input, err)
	}
	return d
}

// Nested returns an array nested depth levels deep, with the innermost array
// containing inner.
func Nested(depth int, inner string) string {
	return strings.Repeat("[", depth) + inner + strings.Repeat("]", depth)
}

// Variants returns the input along with reformatted and minimized copies of
// it, each of which is valid JSON encoding the same document.
func Variants(t testing.TB, input string) []string {
	t.Helper()
	pretty, err := hujson.Format([]byte(input))
	if err != nil {
		t.Fatalf("Format %q: %v", input, err)
	}
	std, err := hujson.Standardize(pretty)
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	compact, err := hujson.Minimize([]byte(input))
	if err != nil {
		t.Fatalf("Minimize %q: %v", input, err)
	}
	return []string{input, string(std), string(compact)}
}
