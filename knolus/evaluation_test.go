package knolus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlattenReachesFixedPoint(t *testing.T) {
	for depth := 1; depth <= 5; depth++ {
		root := NewContext(nil, nil)
		requireSuccess(t, root.Set("v0", false, NewInt(7)))
		for i := 1; i < depth; i++ {
			requireSuccess(t, root.Set(varName(i), false, ref(varName(i-1))))
		}
		expr := NewExpression(ref(varName(depth - 1)))

		before := root.Steps()
		flat := flattenValue(t, root, expr)
		// One step unwraps the expression, then one per reference.
		require.Equal(t, depth+1, root.Steps()-before, "depth %d", depth)
		require.True(t, NewInt(7).Equal(flat))

		before = root.Steps()
		again := flattenValue(t, root, flat)
		require.Equal(t, 0, root.Steps()-before)
		require.True(t, flat.Equal(again))
	}
}

func varName(i int) string { return "v" + string(rune('0'+i)) }

func TestEvaluateIsOneStep(t *testing.T) {
	root := NewContext(nil, nil)
	requireSuccess(t, root.Set("a", false, NewInt(1)))
	requireSuccess(t, root.Set("b", false, ref("a")))

	once := requireSuccess(t, ref("b").Evaluate(context.Background(), root))
	require.Equal(t, KindVariableReference, once.Kind())
	require.Equal(t, "a", once.VariableName())
}

func TestExpressionsApplyLeftToRight(t *testing.T) {
	root := newTestRoot(t)
	// 2 + 3 * 4 is (2 + 3) * 4 without precedence.
	expr := NewExpression(NewInt(2), Op(OperatorPlus, NewInt(3)), Op(OperatorMultiply, NewInt(4)))
	require.Equal(t, int32(20), flattenValue(t, root, expr).Int())
}

func TestOperatorPromotion(t *testing.T) {
	root := newTestRoot(t)
	tests := []struct {
		name string
		expr Value
		want Value
	}{
		{"int overflow widens", NewExpression(NewInt(2147483647), Op(OperatorPlus, NewInt(1))), NewLong(2147483648)},
		{"long times long", NewExpression(NewLong(4), Op(OperatorMultiply, NewInt(3))), NewLong(12)},
		{"double wins", NewExpression(NewInt(1), Op(OperatorDivide, NewDouble(4))), NewDouble(0.25)},
		{"integer division", NewExpression(NewInt(7), Op(OperatorDivide, NewInt(2))), NewInt(3)},
		{"power", NewExpression(NewInt(2), Op(OperatorPower, NewInt(10))), NewInt(1024)},
		{"negative power", NewExpression(NewInt(2), Op(OperatorPower, NewInt(-1))), NewDouble(0.5)},
		{"char arithmetic", NewExpression(NewChar('a'), Op(OperatorPlus, NewInt(1))), NewInt(98)},
		{"char concat", NewExpression(NewChar('a'), Op(OperatorPlus, NewString("b"))), NewString("ab")},
		{"string concat", NewExpression(NewString("n="), Op(OperatorPlus, NewInt(5))), NewString("n=5")},
		{"numeric equality", NewExpression(NewInt(1), Op(OperatorEquals, NewDouble(1))), NewBoolean(true)},
		{"text order", NewExpression(NewString("abc"), Op(OperatorLessThan, NewString("abd"))), NewBoolean(true)},
		{"boolean and", NewExpression(NewBoolean(true), Op(OperatorAnd, NewInt(0))), NewBoolean(false)},
		{"null equality", NewExpression(NewNull(), Op(OperatorEquals, NewNull())), NewBoolean(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flattenValue(t, root, tt.expr)
			require.True(t, tt.want.Equal(got), "got %s %v", got.Kind(), got)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	root := newTestRoot(t)
	r := Flatten(context.Background(), root, NewExpression(NewInt(1), Op(OperatorDivide, NewInt(0))))
	requireFailureCode(t, r, DivisionByZero)
}

func TestUndefinedOperator(t *testing.T) {
	root := newTestRoot(t)
	r := Flatten(context.Background(), root, NewExpression(NewBoolean(true), Op(OperatorMinus, NewInt(1))))
	f := requireFailureCode(t, r, FunctionNotFound)
	require.Contains(t, f.Message(), "operator - is not defined for boolean and int")
}

func TestLazyStringInterpolates(t *testing.T) {
	root := newTestRoot(t)
	requireSuccess(t, root.Set("name", false, NewString("Ada")))
	lazy := NewLazyString(NewString("hello "), ref("name"), NewString("!"))

	require.Equal(t, "hello Ada!", flattenValue(t, root, lazy).Str())

	r := Flatten(context.Background(), root, NewLazyString(ref("missing")))
	requireFailureCode(t, r, CoercionFailed)
	requireFailureCode(t, r, UndeclaredVariable)
}

func TestMemberFunctionsAndProperties(t *testing.T) {
	ctx := context.Background()
	root := newTestRoot(t)
	requireSuccess(t, root.Set("word", false, NewString("héllo")))
	requireSuccess(t, root.Set("list", false, NewArrayOf(NewInt(4), NewInt(5), NewInt(6))))

	upper := NewLazyMemberFunctionCall(&MemberFunctionCall{Receiver: ref("word"), Name: "uppercase"})
	require.Equal(t, "HÉLLO", flattenValue(t, root, upper).Str())

	require.Equal(t, int32(5), flattenValue(t, root, NewPropertyReference("word", "length")).Int())
	require.Equal(t, int32(3), flattenValue(t, root, NewPropertyReference("list", "size")).Int())

	second := NewLazyMemberFunctionCall(&MemberFunctionCall{Receiver: ref("list"), Name: "get", Args: Positional(NewInt(1))})
	require.Equal(t, int32(5), flattenValue(t, root, second).Int())

	out := root.InvokeMember(ctx, NewArrayOf(NewInt(1)), "get", Positional(NewInt(9)))
	requireFailureCode(t, out, InvalidParameter)

	first := requireSuccess(t, root.InvokeMember(ctx, NewArray(KindInt), "first", nil))
	require.True(t, first.IsNull())

	requireFailureCode(t, Flatten(ctx, root, NewPropertyReference("word", "colour")), PropertyNotFound)
	requireFailureCode(t, root.InvokeMember(ctx, NewInt(1), "uppercase", nil), FunctionNotFound)
}

func TestCustomMemberFallsBackToAny(t *testing.T) {
	ctx := context.Background()
	root := newTestRoot(t)
	describe := NewFunction("describe").Native(func(_ context.Context, _ *Context, args *BoundArguments) Result[Value] {
		return Success(NewString(args.Value("self").Kind().TypeName()))
	})
	requireSuccess(t, root.RegisterMemberFunction(KindAny, "describe", describe))

	require.Equal(t, "Double", requireSuccess(t, root.InvokeMember(ctx, NewDouble(1), "describe", nil)).Str())
	require.Equal(t, "String", requireSuccess(t, root.InvokeMember(ctx, NewString("x"), "describe", nil)).Str())
}

func TestArrayElementsAreEvaluated(t *testing.T) {
	root := newTestRoot(t)
	requireSuccess(t, root.Set("x", false, NewDouble(2.7)))

	arr := flattenValue(t, root, NewArray(KindInt, NewInt(1), ref("x")))
	require.Equal(t, KindInt, arr.Array().Elem())
	require.Equal(t, "[1, 2]", arr.String())
}
