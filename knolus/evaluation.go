package knolus

import (
	"context"
	"strings"
)

// needsEvaluation reports whether v still refers to a context: runtime
// values, lazy strings and arrays holding either.
func needsEvaluation(v Value) bool {
	switch {
	case v.kind.IsRuntime(), v.kind == KindLazyString:
		return true
	case v.kind == KindArray:
		return v.data.(*Array).needsEvaluation()
	}
	return false
}

// NeedsEvaluation reports whether v must be evaluated against c before use.
func (v Value) NeedsEvaluation(*Context) bool { return needsEvaluation(v) }

// Evaluate performs one evaluation step of v in c. The result may itself
// need evaluation; Flatten repeats until it does not.
func (v Value) Evaluate(ctx context.Context, c *Context) Result[Value] {
	if !needsEvaluation(v) {
		return Success(v)
	}
	if failure := c.state.step(ctx); failure != nil {
		return FromFailure[Value](failure)
	}
	switch v.kind {
	case KindVariableReference:
		return c.Get(v.data.(string))
	case KindPropertyReference:
		return c.evaluateProperty(ctx, v.data.(*PropertyReference))
	case KindFunctionCall:
		call := v.data.(*FunctionCall)
		return c.InvokeFunction(ctx, call.Name, call.Args)
	case KindMemberFunctionCall:
		return c.evaluateMemberCall(ctx, v.data.(*MemberFunctionCall))
	case KindExpression:
		return c.evaluateExpression(ctx, v.data.(*Expression))
	case KindLazyString:
		return c.evaluateLazyString(ctx, v.data.([]Value))
	case KindArray:
		return c.evaluateArray(ctx, v.data.(*Array))
	}
	return Fail[Value](InvalidNode, "cannot evaluate %s", v.kind)
}

// Flatten evaluates v until it no longer needs evaluation. Flattening a
// concrete value returns it unchanged.
func Flatten(ctx context.Context, c *Context, v Value) Result[Value] {
	cur := v
	for i := 0; needsEvaluation(cur); i++ {
		if i == flattenLimit {
			return Fail[Value](LimitStepQuota, "%s did not settle after %d evaluations", v, flattenLimit)
		}
		r := cur.Evaluate(ctx, c)
		if !r.IsSuccess() {
			return r
		}
		cur = r.Value()
	}
	return Success(cur)
}

func (c *Context) evaluateLazyString(ctx context.Context, parts []Value) Result[Value] {
	var b strings.Builder
	for _, part := range parts {
		r := Flatten(ctx, c, part)
		if !r.IsSuccess() {
			return r.Wrap(CoercionFailed, "interpolating %s", part)
		}
		b.WriteString(r.Value().AsString())
	}
	return Success(NewString(b.String()))
}

// evaluateArray flattens every element and rebuilds the array through the
// add cascade, so elements are coerced to the element kind.
func (c *Context) evaluateArray(ctx context.Context, a *Array) Result[Value] {
	out := newArrayValue(a.elem, nil)
	for _, item := range a.Items() {
		r := Flatten(ctx, c, item)
		if !r.IsSuccess() {
			return r
		}
		added := out.data.(*Array).add(ctx, c, r.Value(), false)
		if !added.IsSuccess() {
			return added
		}
		out = added.Value()
	}
	return Success(out)
}
