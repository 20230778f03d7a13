package knolus

import (
	"math/big"

	"src.elv.sh/pkg/persistent/vector"
)

func NewNull() Value            { return Value{kind: KindNull} }
func NewUndefined() Value       { return Value{kind: KindUndefined} }
func NewBoolean(b bool) Value   { return Value{kind: KindBoolean, data: b} }
func NewInt(i int32) Value      { return Value{kind: KindInt, data: i} }
func NewLong(i int64) Value     { return Value{kind: KindLong, data: i} }
func NewDouble(f float64) Value { return Value{kind: KindDouble, data: f} }
func NewChar(r rune) Value      { return Value{kind: KindChar, data: r} }
func NewString(s string) Value  { return Value{kind: KindString, data: s} }
func NewVariableReference(name string) Value {
	return Value{kind: KindVariableReference, data: name}
}

// NewBigInt copies i so later mutation by the caller cannot leak into the value.
func NewBigInt(i *big.Int) Value {
	if i == nil {
		i = new(big.Int)
	}
	return Value{kind: KindBigInt, data: new(big.Int).Set(i)}
}

// NewLazyString joins its parts on evaluation; parts may be references.
func NewLazyString(parts ...Value) Value {
	return Value{kind: KindLazyString, data: append([]Value(nil), parts...)}
}

func NewPropertyReference(variable, property string) Value {
	return Value{kind: KindPropertyReference, data: &PropertyReference{Variable: variable, Property: property}}
}

func NewLazyFunctionCall(call *FunctionCall) Value {
	return Value{kind: KindFunctionCall, data: call}
}

func NewLazyMemberFunctionCall(call *MemberFunctionCall) Value {
	return Value{kind: KindMemberFunctionCall, data: call}
}

func NewExpression(start Value, ops ...ExpressionOperation) Value {
	return Value{kind: KindExpression, data: &Expression{Start: start, Operations: append([]ExpressionOperation(nil), ops...)}}
}

// NewArray builds an array of elem. Items whose kind differs from elem widen
// the array to a mixed one; runtime items are kept as they are until the
// array is flattened.
func NewArray(elem Kind, items ...Value) Value {
	for _, item := range items {
		if elem != KindAny && item.kind != elem && !item.kind.IsRuntime() && item.kind != KindLazyString {
			elem = KindAny
			break
		}
	}
	vec := vector.Empty
	for _, item := range items {
		vec = vec.Conj(item)
	}
	return newArrayValue(elem, vec)
}

// NewArrayOf infers the element kind from items.
func NewArrayOf(items ...Value) Value {
	return NewArray(commonKind(items), items...)
}

func newArrayValue(elem Kind, items vector.Vector) Value {
	return Value{kind: KindArray, data: &Array{elem: elem, items: items}}
}

func commonKind(items []Value) Kind {
	if len(items) == 0 {
		return KindAny
	}
	kind := items[0].kind
	for _, item := range items[1:] {
		if item.kind != kind {
			return KindAny
		}
	}
	return kind
}

// Op is shorthand for building expression operations.
func Op(operator Operator, value Value) ExpressionOperation {
	return ExpressionOperation{Operator: operator, Value: value}
}
