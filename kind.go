// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdoc

// Kind is the type of the value stored in a Document.
type Kind byte

// Constants defining the valid Kind values.
const (
	Unset            Kind = iota // no value; a hole inside a container
	Object                       // key-value members
	Array                        // ordered elements
	String                       // text
	Number                       // number with no fractional part
	NumberFractional             // number with a fractional part
	Boolean                      // true or false
	Null                         // the null constant
)

var kindStr = [...]string{
	Unset:            "unset",
	Object:           "object",
	Array:            "array",
	String:           "string",
	Number:           "number",
	NumberFractional: "fractional number",
	Boolean:          "boolean",
	Null:             "null",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return "invalid kind"
}

// IsNumber reports whether k is Number or NumberFractional.
func (k Kind) IsNumber() bool { return k == Number || k == NumberFractional }

// IsContainer reports whether k is Object or Array.
func (k Kind) IsContainer() bool { return k == Object || k == Array }
