package knolus

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestResultMapPropagatesFailure(t *testing.T) {
	doubled := Map(Success(21), func(n int) int { return n * 2 })
	require.Equal(t, 42, doubled.Value())

	failed := Map(Fail[int](TypeMismatch, "boom"), func(n int) int { return n * 2 })
	require.True(t, failed.IsError())
	require.Equal(t, TypeMismatch, failed.Failure().Code())

	empty := Map(EmptyNullResult[int](), func(n int) string { return "never" })
	require.True(t, empty.IsEmpty())
	require.Equal(t, EmptyNull, empty.Failure().Reason())
}

func TestResultFlatMapChains(t *testing.T) {
	half := func(n int) Result[int] {
		if n%2 != 0 {
			return Fail[int](InvalidParameter, "%d is odd", n)
		}
		return Success(n / 2)
	}
	require.Equal(t, 5, FlatMap(FlatMap(Success(20), half), half).Value())

	r := FlatMap(FlatMap(Success(6), half), half)
	require.True(t, r.IsError())
	require.Equal(t, "3 is odd", r.Failure().Message())
}

func TestResultFilterAndSwitchIfEmpty(t *testing.T) {
	positive := func(n int) bool { return n > 0 }
	require.True(t, Success(-1).Filter(positive).IsEmpty())
	require.Equal(t, 3, Success(3).Filter(positive).Value())

	fallback := Success(-1).Filter(positive).SwitchIfEmpty(func() Result[int] { return Success(7) })
	require.Equal(t, 7, fallback.Value())

	failed := Fail[int](TypeMismatch, "x").SwitchIfEmpty(func() Result[int] { return Success(7) })
	require.True(t, failed.IsError(), "errors are not empty")
}

func TestResultGetOrElseAndUnpack(t *testing.T) {
	require.Equal(t, 4, Empty[int]().GetOrElse(4))
	require.Equal(t, 1, Success(1).GetOrElse(4))

	_, err := Fail[int](DivisionByZero, "divide").Unpack()
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, DivisionByZero, failure.Code())
}

func TestResultDoOnFailureObservesOnce(t *testing.T) {
	var seen []Code
	observe := func(f *Failure) { seen = append(seen, f.Code()) }

	Success(1).DoOnFailure(observe)
	r := Fail[int](FormatError, "bad").DoOnFailure(observe)

	require.True(t, r.IsError())
	require.Equal(t, []Code{FormatError}, seen)
}

func TestRecoverReplacesFailure(t *testing.T) {
	r := Recover(Fail[string](FunctionNotFound, "nope"), func(f *Failure) Result[string] {
		return Success("recovered from " + f.Code().String())
	})
	require.Equal(t, "recovered from FUNCTION_NOT_FOUND", r.Value())
}

func TestHierarchyKeepsEveryCause(t *testing.T) {
	root := Fail[int](UndeclaredVariable, "undeclared variable %q", "x")
	wrapped := root.Wrap(FunctionFailed, "f failed").Wrap(ScopeLineFailed, "line 2 failed")

	var codes []Code
	for _, f := range wrapped.Hierarchy() {
		codes = append(codes, f.Code())
	}
	want := []Code{ScopeLineFailed, FunctionFailed, UndeclaredVariable}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Fatalf("hierarchy mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, UndeclaredVariable, wrapped.Failure().Root().Code())
	require.NotNil(t, wrapped.Failure().Find(FunctionFailed))
	require.True(t, errors.Is(wrapped.Failure(), root.Failure()))
}

func TestThrownKeepsHostFault(t *testing.T) {
	fault := errors.New("disk on fire")
	r := Thrown[Value](fault, nil)

	require.True(t, r.IsThrown())
	require.Equal(t, HostFault, r.Failure().Code())
	require.ErrorIs(t, r.Failure(), fault)
	require.Contains(t, r.Failure().Error(), "disk on fire")
}

func TestFromFailureNilIsEmpty(t *testing.T) {
	require.True(t, FromFailure[int](nil).IsEmpty())
}

func TestFormatFailureElidesLongChains(t *testing.T) {
	f := Errorf(UndeclaredVariable, "start")
	for i := 0; i < 30; i++ {
		f = Wrapf(f, FunctionFailed, "frame %d", i)
	}
	out := FormatFailure(f)

	require.Contains(t, out, "frame 29")
	require.Contains(t, out, "start")
	require.Contains(t, out, "causes omitted")
	require.Equal(t, 1+8+1+8, strings.Count(out, "\n")+1)
}

func TestCodeNames(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{UndeclaredVariable, "UNDECLARED_VARIABLE"},
		{LimitMaxDepth, "LIMIT_MAX_DEPTH"},
		{OperationDenied(OpGetVariable), "GET_VARIABLE_DENIED"},
		{ResultDenied(OpRunFunction), "RUN_FUNCTION_RESULT_DENIED"},
		{VisitDenied(NodeVariableDeclaration), "VARIABLE_DECLARATION_VISIT_DENIED"},
		{VisitResultDenied(NodeVariableDeclaration), "VARIABLE_DECLARATION_VISIT_RESULT_DENIED"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.code.String())
	}
	require.True(t, VisitDenied(NodeScope).IsDenial())
	require.True(t, LimitStepQuota.IsLimit())
	require.False(t, PolicyDenied.IsLimit())
}
