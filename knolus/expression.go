package knolus

import "context"

// evaluateExpression applies the operations strictly left to right with no
// precedence. An expression without operations yields its start value as is.
func (c *Context) evaluateExpression(ctx context.Context, expr *Expression) Result[Value] {
	if len(expr.Operations) == 0 {
		return Success(expr.Start)
	}
	left := Flatten(ctx, c, expr.Start)
	if !left.IsSuccess() {
		return left
	}
	acc := left.Value()
	for _, op := range expr.Operations {
		right := Flatten(ctx, c, op.Value)
		if !right.IsSuccess() {
			return right
		}
		r := c.ApplyOperator(ctx, op.Operator, acc, right.Value())
		if !r.IsSuccess() {
			return r
		}
		flat := Flatten(ctx, c, r.Value())
		if !flat.IsSuccess() {
			return flat
		}
		acc = flat.Value()
	}
	return Success(acc)
}

// ApplyOperator runs the operator function registered for the left operand's
// kind, falling back to the one registered for any kind.
func (c *Context) ApplyOperator(ctx context.Context, op Operator, left, right Value) Result[Value] {
	subject := op.Name()
	if failure := permitted(c, OpRunOperator, subject, c.restrictions.CanRunOperator(c, op, left, right)); failure != nil {
		return FromFailure[Value](failure)
	}
	args := []Argument{Named("self", left), {Value: right}}
	fn := c.resolveFirst(args, OperatorFunctionName(left.kind, op), OperatorFunctionName(KindAny, op))
	if !fn.IsSuccess() {
		if fn.Failure().Code() != FunctionNotFound {
			return FromFailure[Value](fn.Failure())
		}
		return FailWith[Value](fn.Failure(), FunctionNotFound, "operator %s is not defined for %s and %s", op.Symbol(), left.kind, right.kind)
	}
	result := c.dispatch(ctx, fn.Value(), args)
	if !result.IsSuccess() {
		return result
	}
	if failure := taken(c, OpRunOperator, subject, c.restrictions.ShouldTakeOperatorResult(c, op, left, right, result.Value())); failure != nil {
		return FromFailure[Value](failure)
	}
	return result
}

func (c *Context) evaluateMemberCall(ctx context.Context, call *MemberFunctionCall) Result[Value] {
	receiver := Flatten(ctx, c, call.Receiver)
	if !receiver.IsSuccess() {
		return receiver
	}
	return c.InvokeMember(ctx, receiver.Value(), call.Name, call.Args)
}

// InvokeMember calls the member function name on receiver. The receiver is
// bound to the parameter named self.
func (c *Context) InvokeMember(ctx context.Context, receiver Value, name string, args []Argument) Result[Value] {
	if failure := permitted(c, OpRunMemberFunction, name, c.restrictions.CanRunMemberFunction(c, receiver, name, args)); failure != nil {
		return FromFailure[Value](failure)
	}
	full := make([]Argument, 0, len(args)+1)
	full = append(full, Named("self", receiver))
	for i, arg := range args {
		if arg.Name != "" {
			full = append(full, arg)
			continue
		}
		r := Flatten(ctx, c, arg.Value)
		if !r.IsSuccess() {
			return r.Wrap(FunctionFailed, "argument %d of %s.%s", i+1, receiver.kind.TypeName(), name)
		}
		full = append(full, Argument{Value: r.Value()})
	}
	fn := c.resolveFirst(full, MemberFunctionName(receiver.kind, name), MemberFunctionName(KindAny, name))
	if !fn.IsSuccess() {
		if fn.Failure().Code() != FunctionNotFound {
			return FromFailure[Value](fn.Failure())
		}
		return FailWith[Value](fn.Failure(), FunctionNotFound, "%s has no member function %s", receiver.kind, name)
	}
	result := c.dispatch(ctx, fn.Value(), full)
	if !result.IsSuccess() {
		return result
	}
	if failure := taken(c, OpRunMemberFunction, name, c.restrictions.ShouldTakeMemberFunctionResult(c, receiver, name, result.Value())); failure != nil {
		return FromFailure[Value](failure)
	}
	return result
}

func (c *Context) evaluateProperty(ctx context.Context, ref *PropertyReference) Result[Value] {
	receiver := FlatMap(c.Get(ref.Variable), func(v Value) Result[Value] { return Flatten(ctx, c, v) })
	if !receiver.IsSuccess() {
		return receiver
	}
	return c.GetProperty(ctx, receiver.Value(), ref.Property)
}

// GetProperty reads the member property name of receiver.
func (c *Context) GetProperty(ctx context.Context, receiver Value, name string) Result[Value] {
	if failure := permitted(c, OpGetMemberProperty, name, c.restrictions.CanGetMemberProperty(c, receiver, name)); failure != nil {
		return FromFailure[Value](failure)
	}
	args := []Argument{Named("self", receiver)}
	fn := c.resolveFirst(args, MemberPropertyName(receiver.kind, name), MemberPropertyName(KindAny, name))
	if !fn.IsSuccess() {
		if fn.Failure().Code() == FunctionNotFound {
			return Fail[Value](PropertyNotFound, "%s has no property %s", receiver.kind, name)
		}
		return FromFailure[Value](fn.Failure())
	}
	result := c.dispatch(ctx, fn.Value(), args)
	if !result.IsSuccess() {
		return result
	}
	if failure := taken(c, OpGetMemberProperty, name, c.restrictions.ShouldTakeMemberProperty(c, receiver, name, result.Value())); failure != nil {
		return FromFailure[Value](failure)
	}
	return result
}

// resolveFirst resolves the first of names that exists. Failures other than
// a missing function stop the search.
func (c *Context) resolveFirst(args []Argument, names ...string) Result[*Function] {
	var last Result[*Function]
	for _, name := range names {
		last = c.Resolve(name, args)
		if last.IsSuccess() || last.Failure().Code() != FunctionNotFound {
			return last
		}
	}
	return last
}
