package knolus

import (
	"context"
	"testing"
)

// newTestRoot returns a root context with the standard library loaded and
// every operation permitted unless restrictions say otherwise.
func newTestRoot(t *testing.T, restrictions ...Restriction) *Context {
	t.Helper()
	root := NewContext(nil, Sandbox(restrictions...))
	if err := StandardLibrary.Register(root); err != nil {
		t.Fatalf("registering standard library: %v", err)
	}
	return root
}

func requireSuccess[T any](t *testing.T, r Result[T]) T {
	t.Helper()
	v, ok := r.Get()
	if !ok {
		t.Fatalf("expected success, got %s", FormatFailure(r.Failure()))
	}
	return v
}

func requireFailureCode[T any](t *testing.T, r Result[T], code Code) *Failure {
	t.Helper()
	if r.IsSuccess() {
		t.Fatalf("expected failure with %s, got success %v", code, r.Value())
	}
	if !r.Failure().HasCode(code) {
		t.Fatalf("expected %s in failure chain, got %s", code, FormatFailure(r.Failure()))
	}
	return r.Failure()
}

func runTestScope(t *testing.T, c *Context, lines ...Line) Result[ScopeResult] {
	t.Helper()
	return c.Execute(context.Background(), NewScope(lines...))
}

func flattenValue(t *testing.T, c *Context, v Value) Value {
	t.Helper()
	return requireSuccess(t, Flatten(context.Background(), c, v))
}

func call(name string, args ...Argument) Value {
	return NewLazyFunctionCall(&FunctionCall{Name: name, Args: args})
}

func declare(name string, v Value) *VariableDeclaration {
	return &VariableDeclaration{Name: name, Value: v}
}

func ref(name string) Value { return NewVariableReference(name) }
