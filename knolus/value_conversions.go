package knolus

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// The As* conversions are total: every kind converts to every scalar, with
// unevaluated runtime values treated as empty.

func (v Value) AsString() string { return v.String() }

// AsNumber returns an Int, Long, BigInt or Double.
func (v Value) AsNumber() Value {
	switch v.kind {
	case KindInt, KindLong, KindBigInt, KindDouble:
		return v
	case KindBoolean:
		if v.data.(bool) {
			return NewInt(1)
		}
		return NewInt(0)
	case KindChar:
		return NewInt(int32(v.data.(rune)))
	case KindString, KindLazyString:
		if n, ok := ParseNumber(v.String()); ok {
			return n
		}
		return NewInt(0)
	case KindArray:
		return NewInt(int32(v.data.(*Array).Len()))
	default:
		return NewInt(0)
	}
}

func (v Value) AsBoolean() bool {
	switch v.kind {
	case KindBoolean:
		return v.data.(bool)
	case KindInt, KindLong:
		return v.Long() != 0
	case KindBigInt:
		return v.data.(*big.Int).Sign() != 0
	case KindDouble:
		return v.data.(float64) != 0
	case KindChar:
		return v.data.(rune) != 0
	case KindString, KindLazyString:
		s := v.String()
		switch {
		case strings.EqualFold(s, "true"):
			return true
		case strings.EqualFold(s, "false"), s == "":
			return false
		}
		if n, ok := ParseNumber(s); ok {
			return n.AsBoolean()
		}
		return true
	case KindArray:
		return v.data.(*Array).Len() > 0
	default:
		return false
	}
}

// AsChar converts numbers to the code point they round to. A one-character
// string yields that character.
func (v Value) AsChar() rune {
	switch v.kind {
	case KindChar:
		return v.data.(rune)
	case KindString, KindLazyString:
		s := v.String()
		if utf8.RuneCountInString(s) == 1 {
			r, _ := utf8.DecodeRuneInString(s)
			return r
		}
	}
	n := v.AsNumber()
	if n.kind == KindDouble {
		return rune(math.Round(n.data.(float64)))
	}
	return rune(numberToInt64(n))
}

func (v Value) AsInt() int32      { return int32(numberToInt64(v.AsNumber())) }
func (v Value) AsLong() int64     { return numberToInt64(v.AsNumber()) }
func (v Value) AsDouble() float64 { return numberToFloat(v.AsNumber()) }

func (v Value) AsBigInt() *big.Int {
	n := v.AsNumber()
	if n.kind == KindDouble {
		f := n.data.(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return new(big.Int)
		}
		b, _ := big.NewFloat(f).Int(nil)
		return b
	}
	return n.BigInt()
}

// coerceTo converts v to kind when a conversion exists. Runtime values and
// the Null/Undefined kinds only convert to themselves.
func (v Value) coerceTo(kind Kind) (Value, bool) {
	if v.kind == kind || kind == KindAny {
		return v, true
	}
	if v.kind.IsRuntime() {
		return v, false
	}
	switch kind {
	case KindString:
		return NewString(v.AsString()), true
	case KindBoolean:
		return NewBoolean(v.AsBoolean()), true
	case KindChar:
		return NewChar(v.AsChar()), true
	case KindInt:
		return NewInt(v.AsInt()), true
	case KindLong:
		return NewLong(v.AsLong()), true
	case KindBigInt:
		return NewBigInt(v.AsBigInt()), true
	case KindDouble:
		return NewDouble(v.AsDouble()), true
	case KindNumber:
		return v.AsNumber(), true
	}
	return v, false
}

// ParseNumber reads an integer or floating point literal, choosing the
// narrowest integer kind that holds it.
func ParseNumber(text string) (Value, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Value{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return NewInt(int32(i)), true
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewLong(i), true
	}
	if b, ok := new(big.Int).SetString(s, 10); ok {
		return NewBigInt(b), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NewDouble(f), true
	}
	return Value{}, false
}

func numberToInt64(n Value) int64 {
	switch n.kind {
	case KindInt, KindLong:
		return n.Long()
	case KindBigInt:
		b := n.data.(*big.Int)
		if b.IsInt64() {
			return b.Int64()
		}
		if b.Sign() < 0 {
			return math.MinInt64
		}
		return math.MaxInt64
	case KindDouble:
		return int64(n.data.(float64))
	}
	return 0
}

func numberToFloat(n Value) float64 {
	switch n.kind {
	case KindInt, KindLong:
		return float64(n.Long())
	case KindBigInt:
		f, _ := new(big.Float).SetInt(n.data.(*big.Int)).Float64()
		return f
	case KindDouble:
		return n.data.(float64)
	}
	return 0
}

// assignable reports whether a value of kind satisfies a parameter of want
// without conversion.
func assignable(want, kind Kind) bool {
	switch want {
	case KindAny:
		return true
	case KindNumber:
		return kind.IsNumeric()
	case KindLong:
		return kind == KindLong || kind == KindInt
	case KindBigInt:
		return kind == KindBigInt || kind == KindLong || kind == KindInt
	case KindDouble:
		return kind == KindDouble || kind == KindLong || kind == KindInt
	case KindString:
		return kind == KindString || kind == KindChar
	}
	return want == kind
}
