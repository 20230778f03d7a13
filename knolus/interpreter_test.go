package knolus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestEngineDefaults(t *testing.T) {
	engine := MustNewEngine(Config{})
	require.Equal(t, "steps=50000 recursion=64 memory=0B restrictions=0 modules=0", engine.ConfigSummary())

	_, err := NewEngine(Config{MemoryQuotaBytes: -1})
	require.Error(t, err)
	require.Panics(t, func() { MustNewEngine(Config{MemoryQuotaBytes: -1}) })
}

func TestEngineModules(t *testing.T) {
	maxOf := Function2("max", LongParameter("a", Mandatory), LongParameter("b", Mandatory),
		func(_ context.Context, _ *Context, a, b int64) Result[Value] {
			return Success(NewLong(max(a, b)))
		})
	engine := MustNewEngine(Config{Modules: []Module{Functions("math", maxOf)}})
	require.Equal(t, []string{"max"}, engine.FunctionNames())

	scope := NewScope(&ReturnStatement{Value: call("max", Positional(NewInt(3), NewLong(9))...)})
	out := requireSuccess(t, engine.Run(context.Background(), scope, RunOptions{}))
	require.Equal(t, int64(9), out.Value.Long())

	_, err := NewEngine(Config{Modules: []Module{NewModule("broken", func(*Context) error {
		return errors.New("no such host")
	})}})
	require.ErrorContains(t, err, "registering module broken: no such host")
}

func TestEngineSkipsStandardLibrary(t *testing.T) {
	engine := MustNewEngine(Config{SkipStandardLibrary: true})
	scope := NewScope(&ReturnStatement{Value: NewExpression(NewInt(1), Op(OperatorPlus, NewInt(1)))})

	requireFailureCode(t, engine.Run(context.Background(), scope, RunOptions{}), FunctionNotFound)
}

func TestEngineGlobalsAndParameters(t *testing.T) {
	engine := MustNewEngine(Config{})
	scope := NewScope(&ReturnStatement{Value: NewExpression(ref("base"), Op(OperatorPlus, ref("n")))})

	out := requireSuccess(t, engine.Run(context.Background(), scope, RunOptions{
		Globals:    map[string]Value{"Base": NewInt(100)},
		Parameters: map[string]Value{"n": NewInt(5)},
	}))
	require.Equal(t, int32(105), out.Value.Int())

	// Runs do not share state.
	requireFailureCode(t, engine.Run(context.Background(), scope, RunOptions{}), UndeclaredVariable)
}

func TestEngineRunDocument(t *testing.T) {
	engine := MustNewEngine(Config{})
	out := requireSuccess(t, engine.RunDocument(context.Background(), []byte(sampleDocument), FormatJSON, RunOptions{}))
	require.Equal(t, "HELLO! 3", out.Value.Str())

	denied := RunOptions{Restrictions: []Restriction{denyVisits{kind: NodeMemberFunctionCall}}}
	r := engine.RunDocument(context.Background(), []byte(sampleDocument), FormatJSON, denied)
	requireFailureCode(t, r, VisitDenied(NodeMemberFunctionCall))
}

func TestEngineRecursionLimit(t *testing.T) {
	recurse := Function1("recurseIf", IntParameter("n", Mandatory), func(ctx context.Context, c *Context, n int32) Result[Value] {
		if n <= 0 {
			return Success(NewInt(int32(c.Depth())))
		}
		return c.InvokeFunction(ctx, "recurseIf", Positional(NewInt(n-1)))
	})
	engine := MustNewEngine(Config{RecursionLimit: 3, Modules: []Module{Functions("recursion", recurse)}})

	ok := NewScope(&ReturnStatement{Value: call("recurseIf", Positional(NewInt(2))...)})
	out := requireSuccess(t, engine.Run(context.Background(), ok, RunOptions{}))
	require.Equal(t, int32(3), out.Value.Int())

	deep := NewScope(&ReturnStatement{Value: call("recurseIf", Positional(NewInt(10))...)})
	f := requireFailureCode(t, engine.Run(context.Background(), deep, RunOptions{}), LimitMaxDepth)
	require.Contains(t, FormatFailure(f), "recursion depth exceeded (limit 3)")
}

func TestEngineStepQuota(t *testing.T) {
	engine := MustNewEngine(Config{StepQuota: 3})
	lines := make([]Line, 10)
	for i := range lines {
		lines[i] = declare(fmt.Sprintf("v%d", i), NewInt(int32(i)))
	}

	requireFailureCode(t, engine.Run(context.Background(), NewScope(lines...), RunOptions{}), LimitStepQuota)
}

func TestEngineRestrictionOrder(t *testing.T) {
	engine := MustNewEngine(Config{Restrictions: []Restriction{ReadOnlyGlobals{}}})
	scope := NewScope(&VariableDeclaration{Name: "shared", Value: NewInt(1), Global: true})

	requireFailureCode(t, engine.Run(context.Background(), scope, RunOptions{}), OperationDenied(OpSetVariable))

	// Per-run policies come after the engine's, so they cannot lift its denials.
	opts := RunOptions{Restrictions: []Restriction{Permissive()}}
	requireFailureCode(t, engine.Run(context.Background(), scope, opts), OperationDenied(OpSetVariable))

	local := NewScope(declare("mine", NewInt(1)))
	requireSuccess(t, engine.Run(context.Background(), local, RunOptions{}))
}

func TestEngineMemoryQuota(t *testing.T) {
	engine := MustNewEngine(Config{MemoryQuotaBytes: 256})
	scope := NewScope(declare("blob", NewString(string(make([]byte, 1024)))))

	requireFailureCode(t, engine.Run(context.Background(), scope, RunOptions{}), LimitMemoryQuota)
}

func TestEngineConcurrentRuns(t *testing.T) {
	engine := MustNewEngine(Config{})
	double := NewExpression(ref("n"), Op(OperatorMultiply, NewInt(2)))
	scope := NewScope(
		&FunctionDeclaration{Name: "double", Parameters: []ParameterDeclaration{{Name: "n"}}, Value: &double, Global: true},
		&ReturnStatement{Value: call("double", Positional(ref("n"))...)},
	)

	results := make([]int32, 16)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			r := engine.Run(context.Background(), scope, RunOptions{Parameters: map[string]Value{"n": NewInt(int32(i))}})
			out, ok := r.Get()
			if !ok {
				return r.Failure()
			}
			results[i] = out.Value.Int()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for i, got := range results {
		require.Equal(t, int32(i*2), got)
	}
}

func TestEngineLogsRuns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	engine := MustNewEngine(Config{Logger: logger})

	requireSuccess(t, engine.Run(context.Background(), NewScope(declare("x", NewInt(1))), RunOptions{}))
	require.Contains(t, buf.String(), "module registered")
	require.Contains(t, buf.String(), "run finished")
}
