package knolus

import (
	"context"
	"math"
	"math/big"
	"strings"
)

// maxPowerBits bounds the size of integer powers.
const maxPowerBits = 1 << 16

type operatorFunc func(ctx context.Context, c *Context, self, other Value) Result[Value]

// registerStandardOperators installs the operator functions expressions need
// for numbers, text, booleans and arrays.
func registerStandardOperators(c *Context) *Failure {
	arithmetic := []Operator{OperatorPlus, OperatorMinus, OperatorMultiply, OperatorDivide, OperatorModulo, OperatorPower}
	comparisons := []Operator{OperatorLessThan, OperatorLessThanOrEqual, OperatorGreaterThan, OperatorGreaterThanOrEqual, OperatorEquals, OperatorNotEquals}

	var table []struct {
		kind Kind
		op   Operator
		fn   operatorFunc
	}
	add := func(kind Kind, op Operator, fn operatorFunc) {
		table = append(table, struct {
			kind Kind
			op   Operator
			fn   operatorFunc
		}{kind, op, fn})
	}

	for _, kind := range []Kind{KindInt, KindLong, KindBigInt, KindDouble} {
		for _, op := range arithmetic {
			add(kind, op, numericOperator(op))
		}
		for _, op := range comparisons {
			add(kind, op, compareOperator(op))
		}
	}
	for _, op := range arithmetic {
		add(KindChar, op, charOperator(op))
	}
	for _, kind := range []Kind{KindString, KindChar} {
		for _, op := range comparisons {
			add(kind, op, compareOperator(op))
		}
	}
	add(KindString, OperatorPlus, concatOperator)
	add(KindArray, OperatorPlus, func(ctx context.Context, c *Context, self, other Value) Result[Value] {
		return self.Array().Add(ctx, c, other)
	})
	add(KindArray, OperatorMinus, func(ctx context.Context, c *Context, self, other Value) Result[Value] {
		return self.Array().Drop(ctx, c, other)
	})
	add(KindAny, OperatorEquals, compareOperator(OperatorEquals))
	add(KindAny, OperatorNotEquals, compareOperator(OperatorNotEquals))
	add(KindAny, OperatorAnd, func(_ context.Context, _ *Context, self, other Value) Result[Value] {
		return Success(NewBoolean(self.AsBoolean() && other.AsBoolean()))
	})
	add(KindAny, OperatorOr, func(_ context.Context, _ *Context, self, other Value) Result[Value] {
		return Success(NewBoolean(self.AsBoolean() || other.AsBoolean()))
	})

	for _, entry := range table {
		if r := c.RegisterOperator(entry.kind, entry.op, KindAny, entry.fn); !r.IsSuccess() {
			return r.Failure()
		}
	}
	return nil
}

func isText(v Value) bool { return v.kind == KindString || v.kind == KindChar }

func concatOperator(_ context.Context, _ *Context, self, other Value) Result[Value] {
	return Success(NewString(self.AsString() + other.AsString()))
}

func charOperator(op Operator) operatorFunc {
	numeric := numericOperator(op)
	return func(ctx context.Context, c *Context, self, other Value) Result[Value] {
		if op == OperatorPlus && isText(other) {
			return concatOperator(ctx, c, self, other)
		}
		return numeric(ctx, c, self.AsNumber(), other)
	}
}

func numericOperator(op Operator) operatorFunc {
	return func(_ context.Context, _ *Context, self, other Value) Result[Value] {
		if op == OperatorPlus && other.kind == KindString {
			return Success(NewString(self.AsString() + other.Str()))
		}
		left, right := self.AsNumber(), other.AsNumber()
		if left.kind == KindDouble || right.kind == KindDouble {
			return floatArithmetic(op, left.AsDouble(), right.AsDouble())
		}
		return integerArithmetic(op, left, right)
	}
}

func floatArithmetic(op Operator, l, r float64) Result[Value] {
	switch op {
	case OperatorPlus:
		return Success(NewDouble(l + r))
	case OperatorMinus:
		return Success(NewDouble(l - r))
	case OperatorMultiply:
		return Success(NewDouble(l * r))
	case OperatorDivide:
		return Success(NewDouble(l / r))
	case OperatorModulo:
		return Success(NewDouble(math.Mod(l, r)))
	case OperatorPower:
		return Success(NewDouble(math.Pow(l, r)))
	}
	return Fail[Value](InvalidNode, "%s is not arithmetic", op)
}

func integerRank(k Kind) int {
	switch k {
	case KindLong:
		return 1
	case KindBigInt:
		return 2
	}
	return 0
}

func integerArithmetic(op Operator, left, right Value) Result[Value] {
	l, r := left.BigInt(), right.BigInt()
	out := new(big.Int)
	switch op {
	case OperatorPlus:
		out.Add(l, r)
	case OperatorMinus:
		out.Sub(l, r)
	case OperatorMultiply:
		out.Mul(l, r)
	case OperatorDivide, OperatorModulo:
		if r.Sign() == 0 {
			return Fail[Value](DivisionByZero, "%s %s %s divides by zero", left, op.Symbol(), right)
		}
		if op == OperatorDivide {
			out.Quo(l, r)
		} else {
			out.Rem(l, r)
		}
	case OperatorPower:
		if r.Sign() < 0 {
			return floatArithmetic(op, numberToFloat(left), numberToFloat(right))
		}
		if !r.IsInt64() || int64(l.BitLen())*r.Int64() > maxPowerBits {
			return Fail[Value](CoercionFailed, "%s %s %s is too large", left, op.Symbol(), right)
		}
		out.Exp(l, r, nil)
	default:
		return Fail[Value](InvalidNode, "%s is not arithmetic", op)
	}
	return Success(narrowInteger(out, max(integerRank(left.kind), integerRank(right.kind))))
}

// narrowInteger picks the narrowest kind at or above rank that holds n.
func narrowInteger(n *big.Int, rank int) Value {
	switch {
	case rank == 0 && n.IsInt64() && n.Int64() >= math.MinInt32 && n.Int64() <= math.MaxInt32:
		return NewInt(int32(n.Int64()))
	case rank <= 1 && n.IsInt64():
		return NewLong(n.Int64())
	default:
		return NewBigInt(n)
	}
}

func compareOperator(op Operator) operatorFunc {
	return func(_ context.Context, _ *Context, self, other Value) Result[Value] {
		cmp, ok := compareValues(self, other)
		switch op {
		case OperatorEquals:
			return Success(NewBoolean(ok && cmp == 0))
		case OperatorNotEquals:
			return Success(NewBoolean(!ok || cmp != 0))
		case OperatorLessThan:
			return Success(NewBoolean(ok && cmp < 0))
		case OperatorLessThanOrEqual:
			return Success(NewBoolean(ok && cmp <= 0))
		case OperatorGreaterThan:
			return Success(NewBoolean(ok && cmp > 0))
		case OperatorGreaterThanOrEqual:
			return Success(NewBoolean(ok && cmp >= 0))
		}
		return Fail[Value](InvalidNode, "%s is not a comparison", op)
	}
}

// compareValues orders two values. Numbers compare numerically and text
// compares lexically. Other pairs are only ever equal or unordered; ok is
// false when no ordering exists.
func compareValues(l, r Value) (int, bool) {
	switch {
	case l.kind.IsNumeric() && (r.kind.IsNumeric() || r.kind == KindChar || r.kind == KindBoolean):
		return compareNumbers(l, r.AsNumber())
	case isText(l) && isText(r):
		return strings.Compare(l.AsString(), r.AsString()), true
	case l.kind == KindChar && r.kind.IsNumeric():
		return compareNumbers(l.AsNumber(), r)
	case l.Equal(r):
		return 0, true
	}
	return 0, false
}

func compareNumbers(l, r Value) (int, bool) {
	if l.kind == KindDouble || r.kind == KindDouble {
		lf, rf := numberToFloat(l), numberToFloat(r)
		if math.IsNaN(lf) || math.IsNaN(rf) {
			return 0, false
		}
		if math.IsInf(lf, 0) || math.IsInf(rf, 0) {
			switch {
			case lf < rf:
				return -1, true
			case lf > rf:
				return 1, true
			}
			return 0, true
		}
		return exactFloat(l).Cmp(exactFloat(r)), true
	}
	return l.BigInt().Cmp(r.BigInt()), true
}

// exactFloat widens n to a big.Float without losing integer precision.
func exactFloat(n Value) *big.Float {
	if n.kind == KindDouble {
		return new(big.Float).SetFloat64(n.Double())
	}
	return new(big.Float).SetInt(n.BigInt())
}
