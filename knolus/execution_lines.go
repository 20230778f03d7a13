package knolus

import "context"

type lineOutcome struct {
	value    Value
	returned bool
}

func (c *Context) runLine(ctx context.Context, line Line) Result[lineOutcome] {
	produced := func(r Result[Value]) Result[lineOutcome] {
		return Map(r, func(v Value) lineOutcome { return lineOutcome{value: v} })
	}
	switch l := line.(type) {
	case *VariableDeclaration:
		return produced(c.declareVariable(ctx, l))
	case *VariableAssignment:
		return produced(FlatMap(Flatten(ctx, c, l.Value), func(v Value) Result[Value] {
			return c.Assign(l.Name, l.Global, v)
		}))
	case *FunctionDeclaration:
		return produced(c.declareFunction(l))
	case *FunctionCall:
		return produced(FlatMap(c.InvokeFunction(ctx, l.Name, l.Args), func(v Value) Result[Value] {
			return Flatten(ctx, c, v)
		}))
	case *MemberFunctionCall:
		return produced(FlatMap(c.evaluateMemberCall(ctx, l), func(v Value) Result[Value] {
			return Flatten(ctx, c, v)
		}))
	case *ReturnStatement:
		return Map(Flatten(ctx, c, l.Value), func(v Value) lineOutcome {
			return lineOutcome{value: v, returned: true}
		})
	case nil:
		return Fail[lineOutcome](InvalidNode, "empty line")
	}
	return Fail[lineOutcome](InvalidNode, "unsupported line %T", line)
}

func (c *Context) declareVariable(ctx context.Context, decl *VariableDeclaration) Result[Value] {
	if decl.Deferred {
		return c.Set(decl.Name, decl.Global, decl.Value)
	}
	return FlatMap(Flatten(ctx, c, decl.Value), func(v Value) Result[Value] {
		return c.Set(decl.Name, decl.Global, v)
	})
}

// declareFunction registers a script function. Its body runs in a frame
// whose parent is c, so it sees the variables visible where it was declared.
func (c *Context) declareFunction(decl *FunctionDeclaration) Result[Value] {
	params := make([]*Parameter, len(decl.Parameters))
	for i, p := range decl.Parameters {
		missing := Mandatory
		if p.Default != nil {
			missing = Substitute(*p.Default)
		}
		params[i] = NewParameter(p.Name, KindAny, missing)
	}
	fn := &Function{
		Name:        decl.Name,
		Parameters:  params,
		closure:     c,
		declaration: decl,
	}
	fn.Impl = func(ctx context.Context, frame *Context, args *BoundArguments) Result[Value] {
		return frame.runFunctionBody(ctx, decl, args)
	}
	return Map(c.Register(decl.Name, fn, decl.Global), func(*Function) Value { return NewUndefined() })
}

// runFunctionBody declares the bound arguments in the frame and runs the
// body. Without a return, the body's value is the value of its last line.
func (c *Context) runFunctionBody(ctx context.Context, decl *FunctionDeclaration, args *BoundArguments) Result[Value] {
	for i, p := range decl.Parameters {
		v, ok := args.At(i).Get()
		if !ok {
			continue
		}
		if r := c.Set(p.Name, false, v); !r.IsSuccess() {
			return r
		}
	}
	switch {
	case decl.Value != nil:
		return Flatten(ctx, c, *decl.Value)
	case decl.Body != nil:
		return Map(c.Execute(ctx, decl.Body), func(r ScopeResult) Value { return r.Value })
	}
	return Success(NewUndefined())
}
