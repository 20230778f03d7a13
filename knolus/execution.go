package knolus

import (
	"context"
	"maps"
	"slices"
)

// LineResult is what one executed line produced.
type LineResult struct {
	Index int
	Line  Line
	Value Value
}

// ScopeResult is the outcome of running a scope. When Returned is set,
// Value is the returned value and Lines stops at the return; otherwise
// Value is the value of the last line.
type ScopeResult struct {
	Returned bool
	Value    Value
	Lines    []LineResult
}

// LineMap indexes the executed lines' values by line number.
func (r ScopeResult) LineMap() map[int]Value {
	out := make(map[int]Value, len(r.Lines))
	for _, line := range r.Lines {
		out[line.Index] = line.Value
	}
	return out
}

// RunScope runs scope in a new child of parent, with params declared in it
// first. A nil parent runs the scope in a fresh root.
func RunScope(ctx context.Context, scope *Scope, parent *Context, restrictions Restriction, params map[string]Value) Result[ScopeResult] {
	c := NewContext(parent, restrictions)
	for _, name := range slices.Sorted(maps.Keys(params)) {
		if r := c.Set(name, false, params[name]); !r.IsSuccess() {
			return FailWith[ScopeResult](r.Failure(), InvalidParameter, "parameter %s", name)
		}
	}
	return c.Execute(ctx, scope)
}

// Execute runs scope directly in c, so its declarations stay visible
// afterwards.
func (c *Context) Execute(ctx context.Context, scope *Scope) Result[ScopeResult] {
	if scope == nil {
		return Fail[ScopeResult](InvalidNode, "no scope to run")
	}
	if failure := permitted(c, OpRunScope, "scope", c.restrictions.CanRunScope(c, scope)); failure != nil {
		return FromFailure[ScopeResult](failure)
	}
	result := c.runLines(ctx, scope).DoOnFailure(func(f *Failure) {
		c.logger().Debug("scope failed", "depth", c.depth, "code", f.Code().String(), "error", f.Error())
	})
	if !result.IsSuccess() {
		return result
	}
	if failure := taken(c, OpRunScope, "scope", c.restrictions.ShouldTakeScopeResult(c, scope, result.Value())); failure != nil {
		return FromFailure[ScopeResult](failure)
	}
	c.logger().Debug("scope finished", "depth", c.depth, "lines", len(result.Value().Lines), "returned", result.Value().Returned)
	return result
}

func (c *Context) runLines(ctx context.Context, scope *Scope) Result[ScopeResult] {
	out := ScopeResult{Value: NewUndefined()}
	for i, line := range scope.Lines {
		if failure := c.state.step(ctx); failure != nil {
			return FailWith[ScopeResult](failure, ScopeLineFailed, "line %d (%s) failed", i+1, lineKind(line))
		}
		r := c.runLine(ctx, line)
		if !r.IsSuccess() {
			return FailWith[ScopeResult](r.Failure(), ScopeLineFailed, "line %d (%s) failed", i+1, lineKind(line))
		}
		outcome := r.Value()
		out.Lines = append(out.Lines, LineResult{Index: i, Line: line, Value: outcome.value})
		out.Value = outcome.value
		if outcome.returned {
			out.Returned = true
			return Success(out)
		}
	}
	return Success(out)
}

func lineKind(line Line) string {
	if line == nil {
		return "nil"
	}
	return line.NodeKind().String()
}
