package knolus

import (
	"math/big"
	"strconv"
	"strings"
)

// String renders v. Concrete values render as their string conversion;
// runtime values render the way they read in source.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBoolean:
		return strconv.FormatBool(v.data.(bool))
	case KindInt:
		return strconv.FormatInt(int64(v.data.(int32)), 10)
	case KindLong:
		return strconv.FormatInt(v.data.(int64), 10)
	case KindBigInt:
		return v.data.(*big.Int).String()
	case KindDouble:
		return strconv.FormatFloat(v.data.(float64), 'g', -1, 64)
	case KindChar:
		return string(v.data.(rune))
	case KindString:
		return v.data.(string)
	case KindLazyString:
		var b strings.Builder
		for _, part := range v.data.([]Value) {
			b.WriteString(part.String())
		}
		return b.String()
	case KindArray:
		items := v.data.(*Array).Items()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindVariableReference:
		return "$" + v.data.(string)
	case KindPropertyReference:
		ref := v.data.(*PropertyReference)
		return "$" + ref.Variable + "." + ref.Property
	case KindFunctionCall:
		return v.data.(*FunctionCall).String()
	case KindMemberFunctionCall:
		return v.data.(*MemberFunctionCall).String()
	case KindExpression:
		expr := v.data.(*Expression)
		var b strings.Builder
		b.WriteString("(")
		b.WriteString(expr.Start.String())
		for _, op := range expr.Operations {
			b.WriteString(" ")
			b.WriteString(op.Operator.Symbol())
			b.WriteString(" ")
			b.WriteString(op.Value.String())
		}
		b.WriteString(")")
		return b.String()
	default:
		return v.kind.String()
	}
}

// Equal compares kind and contents. Numbers of different kinds are not
// equal here; the Equals operator compares them numerically.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull, KindUndefined:
		return true
	case KindBoolean:
		return v.data.(bool) == other.data.(bool)
	case KindInt:
		return v.data.(int32) == other.data.(int32)
	case KindLong:
		return v.data.(int64) == other.data.(int64)
	case KindBigInt:
		return v.data.(*big.Int).Cmp(other.data.(*big.Int)) == 0
	case KindDouble:
		return v.data.(float64) == other.data.(float64)
	case KindChar:
		return v.data.(rune) == other.data.(rune)
	case KindString:
		return v.data.(string) == other.data.(string)
	case KindArray:
		a, b := v.data.(*Array), other.data.(*Array)
		if a.elem != b.elem || a.Len() != b.Len() {
			return false
		}
		bi := b.Items()
		for i, item := range a.Items() {
			if !item.Equal(bi[i]) {
				return false
			}
		}
		return true
	case KindLazyString:
		a, b := v.data.([]Value), other.data.([]Value)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	default:
		return v.String() == other.String()
	}
}
