// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jdoc implements a mutable JSON document model, with a parser and
// serializer that handle arbitrarily deep nesting without recursion.
//
// # Documents
//
// A Document holds one JSON value. Its Kind reports which type of value it
// holds:
//
//	Kind             | Payload
//	---------------- | ------------------------------------------
//	Object           | members, keyed by string
//	Array            | ordered elements
//	String           | text
//	Number           | an integral float64
//	NumberFractional | a float64 with a fractional part
//	Boolean          | true or false
//	Null             | none
//	Unset            | none; a hole that is skipped on output
//
// The zero Document is Unset. Setters such as SetString and SetNumber replace
// the payload; Field and Slot return modifiable handles to the members of an
// object or elements of an array, converting an Unset document into the
// appropriate container on first use:
//
//	var d jdoc.Document
//	name, _ := d.Field("name")
//	name.SetString("Fezzik")
//	d.Serialize() // {"name":"Fezzik"}
//
// The typed accessors (Int, Float64, Text, Bool, and so on) convert between
// kinds where there is a sensible conversion, and report ErrBadValue where
// there is not. Each has a variant ending in "Or" that returns a default
// instead of an error.
//
// # Parsing
//
// Use Parse or ParseFile for UTF-8 input, or construct a Parser to set the
// encoding or the filename used in diagnostics:
//
//	p := jdoc.NewParser(input)
//	p.SetEncoding(jdoc.UTF16)
//	doc, err := p.Parse()
//
// The top-level value must be an object or an array. In case of error,
// parsing stops and an error of concrete type *jdoc.SyntaxError is returned,
// giving the line and column of the offending character and, if the input
// can be re-read, an excerpt of the surrounding text:
//
//	:2:7: error: unexpected number of colons (:) and values
//	  "a": }
//	       ^
//
// # Serialization
//
// Serialize renders a document as compact JSON text. Object members are
// written in key order, and Unset holes are omitted.
package jdoc
