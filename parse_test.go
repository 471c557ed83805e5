// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc_test

import (
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf16"

	"github.com/creachadair/jdoc"
	"github.com/creachadair/jdoc/internal/decode"
	"github.com/creachadair/jdoc/internal/escape"
	"github.com/creachadair/jdoc/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{`{}`, `{}`},
		{` [ ] `, `[]`},
		{"\t[\r\n1 ,\n2.5, -3e2 ,0, -0.5\r]\n", `[1,2.5,-300,0,-0.5]`},
		{`[1E2, 1e-2, 0.0, -0, 10, 1.25e+1]`, `[100,0.01,0,-0,10,12.5]`},
		{`{"b": [true, false, null], "a": "x"}`, `{"a":"x","b":[true,false,null]}`},
		{`{"a":{"b":{"c":[]}}}`, `{"a":{"b":{"c":[]}}}`},
		{`[[],[[]],{},[{}]]`, `[[],[[]],{},[{}]]`},
		{`["a\/b", "\"q\"", "tab\there"]`, `["a\/b","\"q\"","tab\there"]`},
		{`["\u0041\u00e9"]`, "[\"Aé\"]"},
		{`{"":""}`, `{"":""}`},
		{`{"a" : 1 , "b" : [ 2 ] }`, `{"a":1,"b":[2]}`},

		// Duplicate keys: the last one wins.
		{`{"a":1,"a":2}`, `{"a":2}`},
		{`{"a":1,"b":2,"a":3}`, `{"a":3,"b":2}`},
		{`{"a":1,"a":2,"a":3,"b":4}`, `{"a":3,"b":4}`},
		{`{"x":{"k":1,"k":[]},"y":0}`, `{"x":{"k":[]},"y":0}`},
	}
	for _, tc := range tests {
		d, err := jdoc.Parse(tc.input)
		if err != nil {
			t.Errorf("Parse %q: unexpected error: %v", tc.input, err)
			continue
		}
		if got := d.Serialize(); got != tc.want {
			t.Errorf("Parse %q: got %#q, want %#q", tc.input, got, tc.want)
		}
	}
}

func TestNumberKinds(t *testing.T) {
	d := testutil.MustParse(t, `[3, 3.5, 3.0, -2e1, 2.5e-1]`)
	want := []jdoc.Kind{jdoc.Number, jdoc.NumberFractional, jdoc.Number, jdoc.Number, jdoc.NumberFractional}
	var got []jdoc.Kind
	for _, elt := range d.Elements() {
		got = append(got, elt.Kind())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Kinds (-want, +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, input string
		line, col   int
		cause       error
	}{
		{"TrailingComma", `{"a":1,}`, 1, 7, nil},
		{"MissingColon", `{"a" 1}`, 1, 5, nil},
		{"DoubleComma", `[1,,2]`, 1, 3, nil},
		{"LeadingZero", `[01]`, 1, 2, nil},
		{"ShortEscape", `["\u12"]`, 1, 6, escape.ErrHexDigit},
		{"MissingValue", "{\n  \"a\": }", 2, 7, nil},
		{"Empty", ``, 1, 0, nil},
		{"Blank", " \n ", 2, 1, nil},
		{"ScalarRoot", `"abc"`, 1, 0, nil},
		{"NumberRoot", `12`, 1, 0, nil},
		{"TrailingText", `[1] x`, 1, 4, nil},
		{"SecondRoot", `{"a":1}}`, 1, 7, nil},
		{"MissingComma", `[1 2]`, 1, 3, nil},
		{"LeadingComma", `[,1]`, 1, 1, nil},
		{"ArrayTrailingComma", `[1,]`, 1, 3, nil},
		{"BadLiteral", `[tru]`, 1, 4, nil},
		{"BadNull", `[nul]`, 1, 4, nil},
		{"LiteralCase", `[True]`, 1, 1, nil},
		{"BareSign", `[-]`, 1, 2, nil},
		{"BarePoint", `[1.]`, 1, 3, nil},
		{"BareExponent", `[1e]`, 1, 3, nil},
		{"LeadingPoint", `[.5]`, 1, 1, nil},
		{"TwoPoints", `[1.5.2]`, 1, 4, nil},
		{"TwoExponents", `[1e2e3]`, 1, 4, nil},
		{"InnerSign", `[1-2]`, 1, 2, nil},
		{"PlusSign", `[+1]`, 1, 1, nil},
		{"NegativeLeadingZero", `[-01]`, 1, 3, nil},
		{"NumberRange", `[1e400]`, 1, 6, nil},
		{"Unclosed", `["a`, 1, 3, nil},
		{"UnclosedObject", `{"a":[1]`, 1, 8, nil},
		{"MismatchObject", `{"a":1]`, 1, 6, nil},
		{"MismatchArray", `[1}`, 1, 2, nil},
		{"UnquotedKey", `{a:1}`, 1, 1, nil},
		{"ControlChar", "[\"a\tb\"]", 1, 3, escape.ErrControl},
		{"BadEscape", `["\x"]`, 1, 3, escape.ErrEscape},
		{"LoneHigh", `["\uD83D"]`, 1, 8, escape.ErrSurrogate},
		{"LoneLow", `["\uDE00"]`, 1, 7, escape.ErrSurrogate},
		{"HighThenText", `["\uD83Dx"]`, 1, 8, escape.ErrSurrogate},
		{"InvalidUTF8", "[\"\xff\"]", 1, 2, decode.ErrInvalidSequence},
		{"CRLine", "[1,\r2,\r\n3,\nx]", 4, 0, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := jdoc.Parse(tc.input)
			if err == nil {
				t.Fatalf("Parse %q: got %s, want error", tc.input, d)
			}
			if !errors.Is(err, jdoc.ErrInvalidCharacter) {
				t.Errorf("Parse %q: got %v, want %v", tc.input, err, jdoc.ErrInvalidCharacter)
			}
			if tc.cause != nil && !errors.Is(err, tc.cause) {
				t.Errorf("Parse %q: got %v, want cause %v", tc.input, err, tc.cause)
			}
			var serr *jdoc.SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("Parse %q: got %T, want *SyntaxError", tc.input, err)
			}
			if serr.Location.Line != tc.line || serr.Location.Column != tc.col {
				t.Errorf("Parse %q: got location %v, want %d:%d", tc.input, serr.Location, tc.line, tc.col)
			}
			if serr.Caret == "" {
				t.Errorf("Parse %q: missing caret", tc.input)
			}
			if tc.input != "" && strings.TrimSpace(tc.input) != "" && serr.Excerpt == "" {
				t.Errorf("Parse %q: missing excerpt", tc.input)
			}
			t.Logf("Error: %v", err)
		})
	}
}

func TestSyntaxErrorText(t *testing.T) {
	tests := []struct {
		name, input   string
		excerpt, mark string
	}{
		{"SecondLine", "{\n  \"a\": }", `  "a": }`, "       ^"},
		{"Tabs", "[\t\tx]", "[\t\tx]", " \t\t^"},
		{"ThirdLine", "[1,\n2,\nx]", "x]", "^"},
		{"AtEnd", "[1,2", "[1,2", "    ^"},
		{"Decoding", "[\"\xff\"]", `["`, "  ^"},
		{"Wide",
			"[" + strings.Repeat("1,", 50) + "x" + strings.Repeat(",1", 50) + "]",
			strings.Repeat("1,", 20) + "x" + strings.Repeat(",1", 20),
			strings.Repeat(" ", 40) + "^",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jdoc.Parse(tc.input)
			var serr *jdoc.SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("Parse %q: got %v, want *SyntaxError", tc.input, err)
			}
			if serr.Excerpt != tc.excerpt {
				t.Errorf("Excerpt: got %q, want %q", serr.Excerpt, tc.excerpt)
			}
			if serr.Caret != tc.mark {
				t.Errorf("Caret: got %q, want %q", serr.Caret, tc.mark)
			}
		})
	}

	t.Run("Format", func(t *testing.T) {
		p := jdoc.NewParser(strings.NewReader("{\n  \"a\": }"))
		p.SetFilename("test.json")
		_, err := p.Parse()
		const want = "test.json:2:7: error: unexpected number of colons (:) and values\r\n" +
			"  \"a\": }\r\n" +
			"       ^\r\n"
		if err == nil {
			t.Fatal("Parse: got nil, want error")
		} else if got := err.Error(); got != want {
			t.Errorf("Error text: got %q, want %q", got, want)
		}
	})

	t.Run("NoSeek", func(t *testing.T) {
		p := jdoc.NewParser(io.MultiReader(strings.NewReader("[1,,2]")))
		_, err := p.Parse()
		var serr *jdoc.SyntaxError
		if !errors.As(err, &serr) {
			t.Fatalf("Parse: got %v, want *SyntaxError", err)
		}
		if serr.Excerpt != "" || serr.Caret != "" {
			t.Errorf("Got excerpt %q, caret %q; want empty", serr.Excerpt, serr.Caret)
		}
		const want = ":1:3: error: invalid character to begin a value\r\n"
		if got := err.Error(); got != want {
			t.Errorf("Error text: got %q, want %q", got, want)
		}
	})
}

func TestReadError(t *testing.T) {
	bad := errors.New("read failed")
	_, err := jdoc.NewParser(iotest.ErrReader(bad)).Parse()
	if !errors.Is(err, bad) {
		t.Errorf("Parse: got %v, want %v", err, bad)
	}
	var serr *jdoc.SyntaxError
	if errors.As(err, &serr) {
		t.Errorf("Parse: got syntax error %v, want read error", serr)
	}

	// An error partway through the input is also reported as-is.
	r := io.MultiReader(strings.NewReader(`[1, 2`), iotest.ErrReader(bad))
	if _, err := jdoc.NewParser(r).Parse(); !errors.Is(err, bad) {
		t.Errorf("Parse: got %v, want %v", err, bad)
	}
}

func TestSurrogates(t *testing.T) {
	d := testutil.MustParse(t, `["\uD83D\uDE00", "\ud83d\ude00x"]`)
	want := string(rune(0x1F600))
	if got, err := jdoc.At[string](d, 0); err != nil || got != want {
		t.Errorf("At(0): got %q, %v; want %q", got, err, want)
	}
	if got, _ := jdoc.At[string](d, 1); got != want+"x" {
		t.Errorf("At(1): got %q, want %q", got, want+"x")
	}
	if got := d.Serialize(); got != `["`+want+`","`+want+`x"]` {
		t.Errorf("Serialize: got %q", got)
	}
}

func TestDeepNesting(t *testing.T) {
	const depth = 10000
	for _, inner := range []string{"", "1", `{"a":[true]}`} {
		input := testutil.Nested(depth, inner)
		d := testutil.MustParse(t, input)
		if got := d.Serialize(); got != input {
			t.Errorf("Serialize nested %q: output does not match input (%d bytes vs. %d)",
				inner, len(got), len(input))
		}
		if c := d.Clone(); !c.Equal(d) {
			t.Errorf("Clone nested %q: not equal to the original", inner)
		}
	}

	// Unclosed deep nesting reports an error rather than crashing.
	if _, err := jdoc.Parse(strings.Repeat("[", depth)); !errors.Is(err, jdoc.ErrInvalidCharacter) {
		t.Errorf("Parse unclosed: got %v, want %v", err, jdoc.ErrInvalidCharacter)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		`{}`,
		`[1, 2.5, -3, 0.001, 1e300, -4.5e-300]`,
		`{"name": "jdoc", "tags": ["json", "parser"], "ok": true, "none": null}`,
		`[{"a": {"b": [[], {}, [null]]}}, "\u263A", "line\nbreak", "\u0001"]`,
		`{"nested": {"deeper": {"deepest": [1, [2, [3, [4]]]]}}, "z": false}`,
		`["\"quoted\"", "back\\slash", "sl/ash", "\b\f\n\r\t", "\u007f \u0085 \ufeff"]`,
	}
	for _, input := range inputs {
		for _, v := range testutil.Variants(t, input) {
			d := testutil.MustParse(t, v)
			s1 := d.Serialize()
			d2, err := jdoc.Parse(s1)
			if err != nil {
				t.Errorf("Reparse %q: unexpected error: %v", s1, err)
				continue
			}
			if !d2.Equal(d) {
				t.Errorf("Round trip of %q: got %s, want %s", v, d2, d)
			}
			if s2 := d2.Serialize(); s2 != s1 {
				t.Errorf("Serialize is not stable: %q then %q", s1, s2)
			}
			if s3 := d.Serialize(); s3 != s1 {
				t.Errorf("Serialize is not idempotent: %q then %q", s1, s3)
			}
		}
	}
}

func encodeUTF16(s string) string {
	var buf []byte
	for _, u := range utf16.Encode([]rune(s)) {
		buf = binary.BigEndian.AppendUint16(buf, u)
	}
	return string(buf)
}

func encodeUTF32(s string) string {
	var buf []byte
	for _, r := range s {
		buf = binary.BigEndian.AppendUint32(buf, uint32(r))
	}
	return string(buf)
}

func TestEncodings(t *testing.T) {
	smile := string(rune(0x1F600))
	input := `{"a": ["caf` + "é" + `", 1, "` + smile + `"], "b": {"c": null}}`
	want := testutil.MustParse(t, input)

	tests := []struct {
		enc  jdoc.Encoding
		data string
	}{
		{jdoc.UTF8, input},
		{jdoc.UTF16, encodeUTF16(input)},
		{jdoc.UTF32, encodeUTF32(input)},
	}
	for _, tc := range tests {
		t.Run(tc.enc.String(), func(t *testing.T) {
			var d jdoc.Document
			if err := d.Deserialize(tc.data, tc.enc); err != nil {
				t.Fatalf("Deserialize: unexpected error: %v", err)
			}
			if !d.Equal(want) {
				t.Errorf("Deserialize: got %s, want %s", &d, want)
			}

			// Errors report code point positions and byte spans.
			bad := "{\n \"" + smile + "\": [1,,2]}"
			switch tc.enc {
			case jdoc.UTF16:
				bad = encodeUTF16(bad)
			case jdoc.UTF32:
				bad = encodeUTF32(bad)
			}
			err := d.Deserialize(bad, tc.enc)
			var serr *jdoc.SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("Deserialize: got %v, want *SyntaxError", err)
			}
			if serr.Location != (jdoc.LineCol{Line: 2, Column: 9}) {
				t.Errorf("Location: got %v, want 2:9", serr.Location)
			}
			if want := ` "` + smile + `": [1,,2]}`; serr.Excerpt != want {
				t.Errorf("Excerpt: got %q, want %q", serr.Excerpt, want)
			}
			if serr.Caret != "         ^" {
				t.Errorf("Caret: got %q", serr.Caret)
			}
			if n := serr.Span.End - serr.Span.Pos; n <= 0 {
				t.Errorf("Span: got %+v, want non-empty", serr.Span)
			}
			if !d.IsUnset() {
				t.Errorf("After error: got %v, want unset", d.Kind())
			}
		})
	}

	t.Run("Truncated", func(t *testing.T) {
		var d jdoc.Document
		err := d.Deserialize(encodeUTF16("[1]")+"\x00", jdoc.UTF16)
		if !errors.Is(err, decode.ErrInvalidSequence) {
			t.Errorf("Deserialize: got %v, want %v", err, decode.ErrInvalidSequence)
		}
	})
}

func TestDeserializeOr(t *testing.T) {
	var d jdoc.Document
	d.DeserializeOr(`[1, 2`, jdoc.Object, jdoc.UTF8)
	checkKind(t, &d, jdoc.Object, "{}")

	d.DeserializeOr(`[1, 2]`, jdoc.Object, jdoc.UTF8)
	checkKind(t, &d, jdoc.Array, "[1,2]")

	d.DeserializeOr(`nope`, jdoc.Array, jdoc.UTF8)
	checkKind(t, &d, jdoc.Array, "[]")
}

func TestParseInto(t *testing.T) {
	d := jdoc.ToValue("old")
	if err := jdoc.NewParser(strings.NewReader(`{"new":1}`)).ParseInto(d); err != nil {
		t.Fatalf("ParseInto: unexpected error: %v", err)
	}
	checkKind(t, d, jdoc.Object, `{"new":1}`)

	if err := jdoc.NewParser(strings.NewReader(`{"new":`)).ParseInto(d); err == nil {
		t.Error("ParseInto: got nil, want error")
	}
	checkKind(t, d, jdoc.Unset, "")
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	missing := filepath.Join(dir, "missing.json")
	if err := os.WriteFile(good, []byte(`{"ok": [true]}`), 0600); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := os.WriteFile(bad, []byte("[1,\n2,,3]"), 0600); err != nil {
		t.Fatalf("Write: %v", err)
	}

	t.Run("Good", func(t *testing.T) {
		d, err := jdoc.ParseFile(good)
		if err != nil {
			t.Fatalf("ParseFile: unexpected error: %v", err)
		}
		checkKind(t, d, jdoc.Object, `{"ok":[true]}`)
	})

	t.Run("Bad", func(t *testing.T) {
		var d jdoc.Document
		err := d.DeserializeFile(bad, jdoc.UTF8)
		var serr *jdoc.SyntaxError
		if !errors.As(err, &serr) {
			t.Fatalf("DeserializeFile: got %v, want *SyntaxError", err)
		}
		if serr.Filename != bad {
			t.Errorf("Filename: got %q, want %q", serr.Filename, bad)
		}
		if serr.Excerpt != "2,,3]" || serr.Caret != "  ^" {
			t.Errorf("Excerpt: got %q / %q", serr.Excerpt, serr.Caret)
		}
		if !strings.HasPrefix(err.Error(), bad+":2:2: error: ") {
			t.Errorf("Error text: got %q", err.Error())
		}
	})

	t.Run("Missing", func(t *testing.T) {
		d := jdoc.ToValue(1)
		if err := d.DeserializeFile(missing, jdoc.UTF8); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("DeserializeFile: got %v, want %v", err, fs.ErrNotExist)
		}
		checkKind(t, d, jdoc.Unset, "")
		if _, err := jdoc.ParseFile(missing); err == nil {
			t.Error("ParseFile: got nil, want error")
		}
	})

	t.Run("Or", func(t *testing.T) {
		var d jdoc.Document
		d.DeserializeFileOr(missing, jdoc.Array, jdoc.UTF8)
		checkKind(t, &d, jdoc.Array, "[]")
		d.DeserializeFileOr(bad, jdoc.Object, jdoc.UTF8)
		checkKind(t, &d, jdoc.Object, "{}")
		d.DeserializeFileOr(good, jdoc.Array, jdoc.UTF8)
		checkKind(t, &d, jdoc.Object, `{"ok":[true]}`)
	})
}
