package knolus

import (
	"strconv"

	"github.com/iancoleman/strcase"
	"src.elv.sh/pkg/persistent/vector"
)

type Kind int

const (
	KindNull Kind = iota
	KindUndefined
	KindBoolean
	KindInt
	KindLong
	KindBigInt
	KindDouble
	KindChar
	KindString
	KindLazyString
	KindArray
	KindVariableReference
	KindPropertyReference
	KindFunctionCall
	KindMemberFunctionCall
	KindExpression

	// KindAny and KindNumber never tag a Value. They describe parameter types
	// and the element type of mixed arrays.
	KindAny
	KindNumber
)

var kindNames = map[Kind]string{
	KindNull:               "null",
	KindUndefined:          "undefined",
	KindBoolean:            "boolean",
	KindInt:                "int",
	KindLong:               "long",
	KindBigInt:             "big_int",
	KindDouble:             "double",
	KindChar:               "char",
	KindString:             "string",
	KindLazyString:         "lazy_string",
	KindArray:              "array",
	KindVariableReference:  "variable_reference",
	KindPropertyReference:  "property_reference",
	KindFunctionCall:       "function_call",
	KindMemberFunctionCall: "member_function_call",
	KindExpression:         "expression",
	KindAny:                "any",
	KindNumber:             "number",
}

// Value is an immutable tagged union of every value a script can hold.
type Value struct {
	kind Kind
	data any
}

// Array is a homogeneous, persistent sequence. Element type KindAny marks a
// mixed array produced when no typed coercion applies.
type Array struct {
	elem  Kind
	items vector.Vector
}

type PropertyReference struct {
	Variable string
	Property string
}

// Expression is a starting value followed by operator applications that run
// strictly left to right.
type Expression struct {
	Start      Value
	Operations []ExpressionOperation
}

type ExpressionOperation struct {
	Operator Operator
	Value    Value
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// TypeName is the name used when mangling member and operator functions.
func (k Kind) TypeName() string {
	return strcase.ToCamel(k.String())
}

func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt, KindLong, KindBigInt, KindDouble:
		return true
	}
	return false
}

// IsRuntime reports whether values of this kind must be evaluated against a
// context before use.
func (k Kind) IsRuntime() bool {
	switch k {
	case KindVariableReference, KindPropertyReference, KindFunctionCall, KindMemberFunctionCall, KindExpression:
		return true
	}
	return false
}

// KindFromName resolves a case- and separator-insensitive kind name.
func KindFromName(name string) (Kind, bool) {
	want := Sanitize(name)
	for kind, known := range kindNames {
		if Sanitize(known) == want {
			return kind, true
		}
	}
	return KindAny, false
}
