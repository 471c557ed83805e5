// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadValue is reported when an operation is not supported by the kind
	// of a document, for example numeric conversion of an array.
	ErrBadValue = errors.New("bad value")

	// ErrNumericOverflow is reported when a number is out of the range of
	// the requested type.
	ErrNumericOverflow = errors.New("numeric overflow")

	// ErrInvalidNumber is reported when a string cannot be converted to a
	// number because its text is not a valid number.
	ErrInvalidNumber = errors.New("invalid numeric text")

	// ErrIndexRange is reported for an array index out of range.
	ErrIndexRange = errors.New("index out of range")

	// ErrKeyNotFound is reported for an object key that is not present.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidCharacter is reported for invalid JSON input. Every
	// *SyntaxError matches it with errors.Is.
	ErrInvalidCharacter = errors.New("invalid character")
)

func badValue(k Kind, want string) error {
	return fmt.Errorf("%w: cannot use %v as %s", ErrBadValue, k, want)
}

// SyntaxError is the concrete type of errors reported by the parser.
type SyntaxError struct {
	Filename string  // the input file name, or "" for in-memory input
	Location LineCol // the position of the offending character
	Span     Span    // the byte offsets of the offending character
	Message  string  // a description of the problem

	// Excerpt is the text of the line around the offending character, and
	// Caret is a line of the same width marking its column with "^". Both
	// are empty if the input could not be re-read.
	Excerpt string
	Caret   string

	err error
}

// Error satisfies the error interface. The first line has the form
//
//	<filename>:<line>:<column>: error: <message>
//
// and is followed by the excerpt and caret lines, if available.
func (s *SyntaxError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d:%d: error: %s\r\n", s.Filename, s.Location.Line, s.Location.Column, s.Message)
	if s.Excerpt != "" || s.Caret != "" {
		sb.WriteString(s.Excerpt)
		sb.WriteString("\r\n")
		sb.WriteString(s.Caret)
		sb.WriteString("\r\n")
	}
	return sb.String()
}

// Unwrap supports error wrapping. A SyntaxError always matches
// ErrInvalidCharacter, and also any underlying cause.
func (s *SyntaxError) Unwrap() []error {
	if s.err == nil {
		return []error{ErrInvalidCharacter}
	}
	return []error{ErrInvalidCharacter, s.err}
}
