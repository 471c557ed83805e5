// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creachadair/jdoc/internal/decode"
	"github.com/creachadair/jdoc/internal/escape"
	"github.com/creachadair/mds/stack"
	"go4.org/mem"
)

// Parser parses a complete JSON document from an input stream.
//
// The top-level value of the document must be an object or an array. Nested
// values are tracked on an explicit stack, so the depth of nesting is limited
// only by available memory.
type Parser struct {
	r        io.Reader
	enc      Encoding
	filename string
}

// NewParser constructs a new Parser that consumes UTF-8 input from r.
//
// If r implements io.Seeker, the text around a syntax error is re-read to
// populate the Excerpt of the error.
func NewParser(r io.Reader) *Parser { return &Parser{r: r} }

// SetEncoding configures the encoding of the input. The default is UTF8.
func (p *Parser) SetEncoding(enc Encoding) { p.enc = enc }

// SetFilename sets the filename reported in syntax errors.
func (p *Parser) SetFilename(name string) { p.filename = name }

// Parse parses the input and returns the resulting document. In case of a
// syntax error, the returned error has type [*SyntaxError].
func (p *Parser) Parse() (*Document, error) {
	d := new(Document)
	if err := p.ParseInto(d); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseInto parses the input into d, replacing its contents. If parsing
// fails, d is left Unset. In case of a syntax error, the returned error has
// type [*SyntaxError]; other errors are from reading the input.
func (p *Parser) ParseInto(d *Document) (err error) {
	d.Reset()
	ps := newParseState(p)
	defer func() {
		if x := recover(); x != nil {
			d.Reset()
			switch t := x.(type) {
			case *SyntaxError:
				err = t
			case readError:
				err = t.error
			default:
				panic(x)
			}
		}
	}()
	ps.run(d)
	return nil
}

// Parse parses a UTF-8 JSON document from data.
func Parse(data string) (*Document, error) {
	return NewParser(mem.NewReader(mem.S(data))).Parse()
}

// ParseFile parses a UTF-8 JSON document from the file at path.
func ParseFile(path string) (*Document, error) {
	d := new(Document)
	if err := d.DeserializeFile(path, UTF8); err != nil {
		return nil, err
	}
	return d, nil
}

// Deserialize replaces the contents of d with the document parsed from data,
// in the given encoding. On failure d is left Unset.
func (d *Document) Deserialize(data string, enc Encoding) error {
	p := NewParser(mem.NewReader(mem.S(data)))
	p.SetEncoding(enc)
	return p.ParseInto(d)
}

// DeserializeOr is as Deserialize, but if parsing fails the contents of d are
// replaced by an empty value of kind def (usually Object or Array) and the
// error is discarded.
func (d *Document) DeserializeOr(data string, def Kind, enc Encoding) {
	if d.Deserialize(data, enc) != nil {
		d.v = New(def).v
	}
}

// DeserializeFile replaces the contents of d with the document parsed from
// the file at path, in the given encoding. Syntax errors report path as the
// filename. On failure d is left Unset.
func (d *Document) DeserializeFile(path string, enc Encoding) error {
	f, err := os.Open(path)
	if err != nil {
		d.Reset()
		return err
	}
	defer f.Close()
	p := NewParser(f)
	p.SetEncoding(enc)
	p.SetFilename(path)
	return p.ParseInto(d)
}

// DeserializeFileOr is as DeserializeFile, but if parsing fails the contents
// of d are replaced by an empty value of kind def and the error is discarded.
func (d *Document) DeserializeFileOr(path string, def Kind, enc Encoding) {
	if d.DeserializeFile(path, enc) != nil {
		d.v = New(def).v
	}
}

// topState is the state of the container being parsed.
type topState byte

const (
	topUnknown      topState = iota // before the opening delimiter
	topObjectOpen                   // inside an object
	topObjectClosed                 // after the end of an object
	topArrayOpen                    // inside an array
	topArrayClosed                  // after the end of an array
)

// keyState is the state of an object member key.
type keyState byte

const (
	keyUnknown keyState = iota // expecting a key or the end of the object
	keyOpen                    // inside the quoted key
	keyClosed                  // expecting a colon
	keyValid                   // key and colon complete; expecting a value
)

// valueState is the state of a value inside a container.
type valueState byte

const (
	valueUnknown valueState = iota // expecting a value
	valueNext                      // expecting a comma or the end of the container
	valueString
	valueNumber
	valueNull
	valueBoolean
)

// numFlags records the parts of a number seen so far.
type numFlags byte

const (
	numDigit numFlags = 1 << iota // started with a digit
	numSign                       // a sign is present in the current part
	numFrac                       // a decimal point has been seen
	numExp                        // an exponent marker has been seen
)

// A parseFrame is the state of one open container.
type parseFrame struct {
	top  topState
	key  keyState
	val  valueState
	name string    // the key of the current member
	doc  *Document // the container under construction

	commas, colons, dups int
}

// readError wraps an error from the underlying reader.
type readError struct{ error }

// parseState is the state of a single parse.
type parseState struct {
	dec      *decode.Decoder
	seeker   io.ReadSeeker // for excerpts; nil if the input cannot be re-read
	base     int64         // offset of the start of input in seeker
	enc      Encoding
	filename string

	loc   LineCol
	prev  rune  // the previous code point
	start int64 // offset of the current code point

	ring  [excerptWidth + 1]int64 // offsets of recent code points
	nseen int                     // total code points read

	cur  parseFrame
	stk  *stack.Stack[parseFrame]
	str  escape.Unescaper
	num  []byte   // text of the current number
	nf   numFlags // flags of the current number
	lit  string   // the literal being matched
	nlit int      // bytes of lit matched so far
}

func newParseState(p *Parser) *parseState {
	ps := &parseState{
		enc:      p.enc,
		filename: p.filename,
		loc:      LineCol{Line: 1},
		stk:      stack.New[parseFrame](),
	}
	if s, ok := p.r.(io.ReadSeeker); ok {
		if pos, err := s.Seek(0, io.SeekCurrent); err == nil {
			ps.seeker, ps.base = s, pos
		}
	}
	ps.dec = decode.New(p.r, p.enc)
	return ps
}

func (ps *parseState) run(root *Document) {
	ps.cur = parseFrame{doc: root}
	for {
		ps.start = ps.dec.Offset()
		c, err := ps.dec.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			ps.checkRead(err)
			ps.failErr(err, "%v", err)
		}
		ps.remember()

		ps.step(c)
		ps.loc.advance(ps.prev, c)
		ps.prev = c
	}

	switch ps.cur.top {
	case topUnknown:
		ps.fail("expected an object or array")
	case topObjectOpen:
		ps.fail("expected object to be closed")
	case topArrayOpen:
		ps.fail("expected array to be closed")
	}
}

// checkRead panics with a readError if err did not come from decoding.
func (ps *parseState) checkRead(err error) {
	if !errors.Is(err, decode.ErrInvalidSequence) {
		panic(readError{err})
	}
}

func (ps *parseState) step(c rune) {
	f := &ps.cur
	switch f.top {
	case topUnknown:
		if isSpace(c) {
			return
		}
		switch c {
		case '{':
			f.top = topObjectOpen
			f.doc.v = object{}
		case '[':
			f.top = topArrayOpen
			f.doc.v = array{}
		default:
			ps.fail("JSON text should begin with an object or array")
		}

	case topObjectClosed, topArrayClosed:
		if !isSpace(c) {
			ps.fail("invalid character after the end of the document")
		}

	case topObjectOpen:
		if f.key != keyValid {
			ps.stepKey(c)
			return
		}
		ps.stepValue(c)

	case topArrayOpen:
		ps.stepValue(c)
	}
}

func (ps *parseState) stepKey(c rune) {
	f := &ps.cur
	switch f.key {
	case keyUnknown:
		if isSpace(c) {
			return
		}
		switch c {
		case '"':
			ps.str.Reset()
			f.key = keyOpen
		case '}':
			ps.closeContainer(c)
		default:
			ps.fail(`expected '"' to begin a key or '}' to end the object`)
		}

	case keyOpen:
		if c == '"' && !ps.str.Escaping() {
			s, err := ps.str.Finish()
			if err != nil {
				ps.failErr(err, "unexpected end of key: %v", err)
			}
			f.name = s
			f.key = keyClosed
		} else if err := ps.str.Write(c); err != nil {
			ps.failErr(err, "%v", err)
		}

	case keyClosed:
		if isSpace(c) {
			return
		} else if c != ':' {
			ps.fail("expected ':' before the value")
		}
		f.colons++
		f.key = keyValid
	}
}

func (ps *parseState) stepValue(c rune) {
	f := &ps.cur
	switch f.val {
	case valueUnknown:
		if isSpace(c) {
			return
		}
		switch {
		case c == '"':
			ps.str.Reset()
			f.val = valueString
		case c == '-':
			ps.num = append(ps.num[:0], '-')
			ps.nf = numSign
			f.val = valueNumber
		case isDigit(c):
			ps.num = append(ps.num[:0], byte(c))
			ps.nf = numDigit
			f.val = valueNumber
		case c == 'n':
			ps.beginLiteral("null")
			f.val = valueNull
		case c == 't':
			ps.beginLiteral("true")
			f.val = valueBoolean
		case c == 'f':
			ps.beginLiteral("false")
			f.val = valueBoolean
		case c == '{':
			ps.push(topObjectOpen, object{})
		case c == '[':
			ps.push(topArrayOpen, array{})
		case c == '}' || c == ']':
			ps.closeContainer(c)
		default:
			ps.fail("invalid character to begin a value")
		}

	case valueNext:
		if isSpace(c) {
			return
		}
		switch c {
		case ',':
			ps.comma()
		case '}', ']':
			ps.closeContainer(c)
		default:
			ps.fail("expected ',' or the end of the %s", ps.containerName())
		}

	case valueString:
		if c == '"' && !ps.str.Escaping() {
			s, err := ps.str.Finish()
			if err != nil {
				ps.failErr(err, "unexpected end of string: %v", err)
			}
			ps.add(&Document{v: text(s)})
			f.val = valueNext
		} else if err := ps.str.Write(c); err != nil {
			ps.failErr(err, "%v", err)
		}

	case valueNumber:
		ps.stepNumber(c)

	case valueNull, valueBoolean:
		ps.stepLiteral(c)
	}
}

func (ps *parseState) stepNumber(c rune) {
	// Check what may follow the previous character of the number.
	switch ps.prev {
	case '+', '-', '.':
		if !isDigit(c) {
			ps.fail("expected a digit after %q", ps.prev)
		}
	case 'e', 'E':
		if c != '+' && c != '-' && !isDigit(c) {
			ps.fail("expected a digit or sign after the exponent marker")
		}
	case '0':
		if ps.leadingZero() && c != '.' && c != 'e' && c != 'E' && !isNumberEnd(c) {
			ps.fail("expected '.', an exponent, or the end of the number after leading zero")
		}
	}

	switch {
	case isDigit(c):
		ps.num = append(ps.num, byte(c))
	case c == '+' || c == '-':
		if ps.nf&numSign != 0 {
			ps.fail("unexpected sign %q", c)
		} else if ps.prev != 'e' && ps.prev != 'E' {
			ps.fail("a sign is only allowed at the start of a number or after the exponent marker")
		}
		ps.nf |= numSign
		ps.num = append(ps.num, byte(c))
	case c == '.':
		if ps.nf&(numFrac|numExp) != 0 {
			ps.fail("unexpected '.' in number")
		}
		ps.nf |= numFrac
		ps.num = append(ps.num, '.')
	case c == 'e' || c == 'E':
		if ps.nf&numExp != 0 {
			ps.fail("unexpected exponent marker %q", c)
		}
		ps.nf |= numExp
		ps.nf &^= numSign // the exponent may have its own sign
		ps.num = append(ps.num, byte(c))
	case isSpace(c):
		ps.endNumber()
		ps.cur.val = valueNext
	case c == ',':
		ps.endNumber()
		ps.comma()
	case c == '}' || c == ']':
		ps.endNumber()
		ps.closeContainer(c)
	default:
		ps.fail("invalid character in number")
	}
}

// leadingZero reports whether the number so far is "0" or "-0".
func (ps *parseState) leadingZero() bool {
	return (len(ps.num) == 1 && ps.nf == numDigit) || (len(ps.num) == 2 && ps.nf == numSign)
}

func (ps *parseState) endNumber() {
	f, err := mem.ParseFloat(mem.B(ps.num), 64)
	if err != nil {
		ps.failErr(err, "number %s out of range", ps.num)
	}
	ps.add(&Document{v: newNumber(f)})
}

func (ps *parseState) beginLiteral(word string) { ps.lit, ps.nlit = word, 1 }

func (ps *parseState) stepLiteral(c rune) {
	if c != rune(ps.lit[ps.nlit]) {
		ps.fail("invalid character in %s value", ps.cur.val.literalName())
	}
	ps.nlit++
	if ps.nlit < len(ps.lit) {
		return
	}
	switch ps.lit {
	case "null":
		ps.add(&Document{v: null{}})
	case "true":
		ps.add(&Document{v: boolean(true)})
	default:
		ps.add(&Document{v: boolean(false)})
	}
	ps.cur.val = valueNext
}

func (v valueState) literalName() string {
	if v == valueNull {
		return "null"
	}
	return "boolean"
}

// comma handles a comma separating values in the current container.
func (ps *parseState) comma() {
	f := &ps.cur
	f.commas++
	if f.top == topObjectOpen {
		f.key = keyUnknown
	}
	f.val = valueUnknown
}

// add adds v to the current container, under the current key if it is an
// object. A duplicate key replaces the earlier value.
func (ps *parseState) add(v *Document) {
	f := &ps.cur
	switch t := f.doc.v.(type) {
	case object:
		if f.key != keyValid {
			ps.fail("missing a valid key for the value")
		}
		if _, ok := t[f.name]; ok {
			f.dups++
		}
		t[f.name] = v
	case array:
		f.doc.v = append(t, v)
	}
}

// push begins a nested container, saving the state of its parent.
func (ps *parseState) push(top topState, v value) {
	ps.stk.Push(ps.cur)
	ps.cur = parseFrame{top: top, doc: &Document{v: v}}
}

// closeContainer ends the current container at the delimiter c, checks the
// counts of separators against its contents, and adds it to its parent.
func (ps *parseState) closeContainer(c rune) {
	f := &ps.cur
	switch {
	case c == '}' && f.top == topObjectOpen:
		f.top = topObjectClosed
	case c == ']' && f.top == topArrayOpen:
		f.top = topArrayClosed
	case c == '}':
		ps.fail("expected ']' to end the array")
	default:
		ps.fail("expected '}' to end the object")
	}

	n := f.doc.Len()
	if f.commas > 0 {
		want := f.commas + 1
		if f.top == topObjectClosed {
			want = f.commas - f.dups + 1
		}
		if n != want {
			ps.fail("unexpected number of commas (,) and values")
		}
	}
	if f.top == topObjectClosed && f.colons > 0 && n != f.colons-f.dups {
		ps.fail("unexpected number of colons (:) and values")
	}

	parent, ok := ps.stk.Pop()
	if !ok {
		return // the document is complete
	}
	child := f.doc
	ps.cur = parent
	ps.add(child)
	ps.cur.val = valueNext
}

func (ps *parseState) containerName() string {
	if ps.cur.top == topObjectOpen {
		return "object"
	}
	return "array"
}

func (ps *parseState) fail(msg string, args ...any) { ps.failErr(nil, msg, args...) }

func (ps *parseState) failErr(err error, msg string, args ...any) {
	serr := &SyntaxError{
		Filename: ps.filename,
		Location: ps.loc,
		Span:     Span{Pos: ps.start, End: ps.dec.Offset()},
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	}
	serr.Excerpt, serr.Caret = ps.excerpt()
	panic(serr)
}

func isSpace(c rune) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c rune) bool { return '0' <= c && c <= '9' }

func isNumberEnd(c rune) bool { return isSpace(c) || c == ',' || c == '}' || c == ']' }
