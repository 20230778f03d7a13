package knolus

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var valueComparer = cmp.Comparer(func(a, b Value) bool { return a.Equal(b) })

func registerTick(t *testing.T, c *Context) *int {
	t.Helper()
	count := new(int)
	requireSuccess(t, c.Register("tick", Function0("tick", func(context.Context, *Context) Result[Value] {
		*count++
		return Success(NewInt(int32(*count)))
	}), false))
	return count
}

func tick() *FunctionCall { return &FunctionCall{Name: "tick"} }

func TestReturnStopsTheScope(t *testing.T) {
	root := newTestRoot(t)
	count := registerTick(t, root)

	out := requireSuccess(t, runTestScope(t, root,
		tick(),
		tick(),
		&ReturnStatement{Value: NewInt(42)},
		tick(),
		tick(),
	))

	require.True(t, out.Returned)
	require.Equal(t, int32(42), out.Value.Int())
	require.Len(t, out.Lines, 3)
	require.Equal(t, 2, *count, "lines after the return never run")
}

func TestScopeValueIsLastLine(t *testing.T) {
	root := newTestRoot(t)

	out := requireSuccess(t, runTestScope(t, root,
		declare("x", NewInt(1)),
		declare("y", NewExpression(ref("x"), Op(OperatorPlus, NewInt(1)))),
	))

	require.False(t, out.Returned)
	require.True(t, NewInt(2).Equal(out.Value))
	want := map[int]Value{0: NewInt(1), 1: NewInt(2)}
	if diff := cmp.Diff(want, out.LineMap(), valueComparer); diff != "" {
		t.Fatalf("line values mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyScopeIsUndefined(t *testing.T) {
	out := requireSuccess(t, runTestScope(t, newTestRoot(t)))
	require.True(t, out.Value.IsUndefined())
	require.Empty(t, out.Lines)
}

func TestDeferredDeclarationReevaluates(t *testing.T) {
	root := newTestRoot(t)
	plusOne := NewExpression(ref("x"), Op(OperatorPlus, NewInt(1)))

	out := requireSuccess(t, runTestScope(t, root,
		declare("x", NewInt(1)),
		&VariableDeclaration{Name: "later", Value: plusOne, Deferred: true},
		declare("now", plusOne),
		&VariableAssignment{Name: "x", Value: NewInt(5)},
		&ReturnStatement{Value: NewExpression(ref("later"), Op(OperatorMultiply, NewInt(10)), Op(OperatorPlus, ref("now")))},
	))

	// later reads x = 5 while now kept the value from when x was 1.
	require.Equal(t, int32(62), out.Value.Int())
	require.True(t, root.Variables()["later"].IsLazy())
}

func TestFunctionBodyReturnsLastLine(t *testing.T) {
	root := newTestRoot(t)
	double := &FunctionDeclaration{
		Name:       "double",
		Parameters: []ParameterDeclaration{{Name: "n"}},
		Body: NewScope(
			declare("r", NewExpression(ref("n"), Op(OperatorMultiply, NewInt(2)))),
		),
	}

	out := requireSuccess(t, runTestScope(t, root,
		double,
		&ReturnStatement{Value: call("double", Positional(NewInt(21))...)},
	))
	require.Equal(t, int32(42), out.Value.Int())
	require.False(t, root.Contains("r"), "body variables stay in the frame")
	require.False(t, root.Contains("n"))
}

func TestFunctionBodyEarlyReturn(t *testing.T) {
	root := newTestRoot(t)
	early := &FunctionDeclaration{
		Name: "early",
		Body: NewScope(
			&ReturnStatement{Value: NewString("done")},
			&FunctionCall{Name: "doesNotExist"},
		),
	}

	out := requireSuccess(t, runTestScope(t, root, early, &FunctionCall{Name: "early"}))
	require.Equal(t, "done", out.Value.Str())
}

func TestFunctionValueAndDefaults(t *testing.T) {
	root := newTestRoot(t)
	one := NewInt(1)
	sum := NewExpression(ref("n"), Op(OperatorPlus, ref("by")))
	inc := &FunctionDeclaration{
		Name:       "inc",
		Parameters: []ParameterDeclaration{{Name: "n"}, {Name: "by", Default: &one}},
		Value:      &sum,
	}

	out := requireSuccess(t, runTestScope(t, root,
		inc,
		declare("a", call("inc", Positional(NewInt(1))...)),
		declare("b", call("inc", Argument{Value: NewInt(1)}, Named("by", NewInt(5)))),
	))
	lines := out.LineMap()
	require.Equal(t, int32(2), lines[1].Int())
	require.Equal(t, int32(6), lines[2].Int())

	r := runTestScope(t, root, &FunctionCall{Name: "inc", Args: []Argument{Named("by", NewInt(2))}})
	requireFailureCode(t, r, MissingParameter)
}

func TestFunctionsCloseOverTheirScope(t *testing.T) {
	root := newTestRoot(t)
	body := NewExpression(ref("n"), Op(OperatorPlus, ref("base")))
	addBase := &FunctionDeclaration{
		Name:       "addBase",
		Parameters: []ParameterDeclaration{{Name: "n"}},
		Value:      &body,
	}

	out := requireSuccess(t, runTestScope(t, root,
		declare("base", NewInt(10)),
		addBase,
		&VariableAssignment{Name: "base", Value: NewInt(20)},
		&ReturnStatement{Value: call("addBase", Positional(NewInt(1))...)},
	))
	require.Equal(t, int32(21), out.Value.Int())
}

func TestGlobalFunctionDeclaration(t *testing.T) {
	root := newTestRoot(t)
	greeting := NewString("hi")
	scope := NewScope(
		&FunctionDeclaration{Name: "greet", Global: true, Value: &greeting},
		&FunctionDeclaration{Name: "local", Value: &greeting},
	)

	requireSuccess(t, RunScope(context.Background(), scope, root, nil, nil))
	require.NotEmpty(t, root.Functions("greet"))
	require.Empty(t, root.Functions("local"))
}

func TestAssignment(t *testing.T) {
	root := newTestRoot(t)

	out := requireSuccess(t, runTestScope(t, root,
		declare("x", NewInt(1)),
		&VariableAssignment{Name: "x", Value: NewExpression(ref("x"), Op(OperatorPlus, NewInt(1)))},
	))
	require.Equal(t, int32(2), out.Value.Int())

	r := runTestScope(t, root, &VariableAssignment{Name: "nope", Value: NewInt(1)})
	f := requireFailureCode(t, r, UndeclaredVariable)
	require.Equal(t, ScopeLineFailed, f.Code())
}

func TestNilScopeIsInvalid(t *testing.T) {
	root := newTestRoot(t)
	requireFailureCode(t, root.Execute(context.Background(), nil), InvalidNode)
	requireFailureCode(t, runTestScope(t, root, nil), InvalidNode)
}

func TestLineFailureNamesTheLine(t *testing.T) {
	root := newTestRoot(t)
	count := registerTick(t, root)

	r := runTestScope(t, root, tick(), &FunctionCall{Name: "missing"}, tick())
	f := requireFailureCode(t, r, FunctionNotFound)
	require.Equal(t, ScopeLineFailed, f.Code())
	require.Equal(t, "line 2 (function_call) failed", f.Message())
	require.Equal(t, 1, *count)
}

func TestStepQuota(t *testing.T) {
	root := newTestRoot(t)
	root.SetStepQuota(5)
	registerTick(t, root)

	lines := make([]Line, 10)
	for i := range lines {
		lines[i] = tick()
	}
	r := runTestScope(t, root, lines...)
	requireFailureCode(t, r, LimitStepQuota)
	require.LessOrEqual(t, root.Steps(), 6)
}

func TestCancellation(t *testing.T) {
	root := newTestRoot(t)
	registerTick(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := root.Execute(ctx, NewScope(tick()))
	f := requireFailureCode(t, r, Cancelled)
	require.True(t, f.Root().IsThrown())
	require.True(t, errors.Is(f, context.Canceled))
}

func TestRunScopeDeclaresParameters(t *testing.T) {
	root := newTestRoot(t)
	scope := NewScope(&ReturnStatement{Value: NewExpression(ref("n"), Op(OperatorMultiply, ref("n")))})

	out := requireSuccess(t, RunScope(context.Background(), scope, root, nil, map[string]Value{"n": NewInt(4)}))
	require.Equal(t, int32(16), out.Value.Int())
	require.False(t, root.Contains("n"))

	// A scope is reusable; every run gets a fresh context.
	out = requireSuccess(t, RunScope(context.Background(), scope, root, nil, map[string]Value{"n": NewInt(3)}))
	require.Equal(t, int32(9), out.Value.Int())
}

type denyScopes struct {
	Abstain
}

func (denyScopes) CanRunScope(*Context, *Scope) Verdict { return Deny("scripts are disabled") }

func TestScopeRunIsGated(t *testing.T) {
	root := newTestRoot(t, denyScopes{})
	requireFailureCode(t, runTestScope(t, root, declare("x", NewInt(1))), OperationDenied(OpRunScope))
	require.False(t, root.Contains("x"))
}
