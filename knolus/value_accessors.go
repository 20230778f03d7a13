package knolus

import "math/big"

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNothing reports whether v is Null or Undefined.
func (v Value) IsNothing() bool { return v.kind == KindNull || v.kind == KindUndefined }

func (v Value) Bool() bool {
	if v.kind == KindBoolean {
		return v.data.(bool)
	}
	return false
}

func (v Value) Int() int32 {
	if v.kind == KindInt {
		return v.data.(int32)
	}
	return 0
}

func (v Value) Long() int64 {
	switch v.kind {
	case KindLong:
		return v.data.(int64)
	case KindInt:
		return int64(v.data.(int32))
	default:
		return 0
	}
}

// BigInt returns a copy of the integer held by an Int, Long or BigInt value.
func (v Value) BigInt() *big.Int {
	switch v.kind {
	case KindBigInt:
		return new(big.Int).Set(v.data.(*big.Int))
	case KindInt, KindLong:
		return big.NewInt(v.Long())
	default:
		return new(big.Int)
	}
}

func (v Value) Double() float64 {
	if v.kind == KindDouble {
		return v.data.(float64)
	}
	return 0
}

func (v Value) Char() rune {
	if v.kind == KindChar {
		return v.data.(rune)
	}
	return 0
}

// Str returns the raw contents of a String value.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.data.(string)
	}
	return ""
}

func (v Value) LazyParts() []Value {
	if v.kind != KindLazyString {
		return nil
	}
	return v.data.([]Value)
}

func (v Value) Array() *Array {
	if v.kind != KindArray {
		return nil
	}
	return v.data.(*Array)
}

func (v Value) VariableName() string {
	if v.kind == KindVariableReference {
		return v.data.(string)
	}
	return ""
}

func (v Value) PropertyReference() *PropertyReference {
	if v.kind != KindPropertyReference {
		return nil
	}
	return v.data.(*PropertyReference)
}

func (v Value) FunctionCall() *FunctionCall {
	if v.kind != KindFunctionCall {
		return nil
	}
	return v.data.(*FunctionCall)
}

func (v Value) MemberFunctionCall() *MemberFunctionCall {
	if v.kind != KindMemberFunctionCall {
		return nil
	}
	return v.data.(*MemberFunctionCall)
}

func (v Value) Expression() *Expression {
	if v.kind != KindExpression {
		return nil
	}
	return v.data.(*Expression)
}
