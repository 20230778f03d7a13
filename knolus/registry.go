package knolus

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Register adds fn to the overload set of name in c, or in the root when
// global is true. Declarations are validated here so a broken function never
// becomes callable.
func (c *Context) Register(name string, fn *Function, global bool) Result[*Function] {
	if fn.Name == "" {
		fn.Name = name
	}
	if failure := fn.validate(); failure != nil {
		return FromFailure[*Function](failure)
	}
	if failure := permitted(c, OpRegisterFunction, name, c.restrictions.CanRegisterFunction(c, name, fn)); failure != nil {
		return FromFailure[*Function](failure)
	}
	target := c
	if global {
		target = c.Root()
	}
	for cur := c.parent; target != c && cur != nil; cur = cur.parent {
		v := cur.restrictions.CanRegisterFunction(cur, name, fn)
		if failure := permitted(cur, OpRegisterParentFunction, name, v); failure != nil {
			return FromFailure[*Function](failure)
		}
		if cur == target {
			break
		}
	}
	if failure := taken(c, OpRegisterFunction, name, c.restrictions.ShouldTakeRegistration(c, name, fn)); failure != nil {
		return FromFailure[*Function](failure)
	}
	key := Sanitize(name)
	target.functions[key] = append(target.functions[key], fn)
	c.logger().Debug("registered function", "name", name, "signature", fn.String(), "global", global)
	return Success(fn)
}

// Functions lists the overloads registered under name in c itself.
func (c *Context) Functions(name string) []*Function {
	return append([]*Function(nil), c.functions[Sanitize(name)]...)
}

// FunctionNames lists the names of every function visible from c, skipping
// operator, member and property functions.
func (c *Context) FunctionNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for cur := c; cur != nil; cur = cur.parent {
		for _, overloads := range cur.functions {
			for _, fn := range overloads {
				if strings.Contains(fn.Name, "_") && isMangled(fn.Name) {
					continue
				}
				if _, ok := seen[fn.Name]; ok {
					continue
				}
				seen[fn.Name] = struct{}{}
				names = append(names, fn.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func isMangled(name string) bool {
	head, _, _ := strings.Cut(name, "_")
	if strings.HasPrefix(head, "Get") && (strings.HasSuffix(head, "MemberFunction") || strings.HasSuffix(head, "MemberProperty")) {
		return true
	}
	_, ok := KindFromName(head)
	return ok
}

// selectOverload picks the local overload for args. The first candidate that
// takes both the argument count and every argument name wins; failing that
// the first that takes the names, so binding can report what is missing;
// failing that the first that takes the count.
func selectOverload(candidates []*Function, args []Argument) *Function {
	for _, fn := range candidates {
		if fn.acceptsArity(len(args)) && fn.acceptsNames(args) {
			return fn
		}
	}
	for _, fn := range candidates {
		if fn.acceptsNames(args) && hasNamed(args) {
			return fn
		}
	}
	for _, fn := range candidates {
		if fn.acceptsArity(len(args)) {
			return fn
		}
	}
	return nil
}

func hasNamed(args []Argument) bool {
	for _, arg := range args {
		if arg.Name != "" {
			return true
		}
	}
	return false
}

// Resolve finds the overload of name that args bind to, searching c and then
// its ancestors.
func (c *Context) Resolve(name string, args []Argument) Result[*Function] {
	if failure := permitted(c, OpResolveFunction, name, c.restrictions.CanResolveFunction(c, name, args)); failure != nil {
		return FromFailure[*Function](failure)
	}
	key := Sanitize(name)
	var path []*Context
	for cur := c; ; cur = cur.parent {
		path = append(path, cur)
		if fn := selectOverload(cur.functions[key], args); fn != nil {
			return c.takeFunction(path, name, fn)
		}
		if cur.parent == nil {
			return Fail[*Function](FunctionNotFound, "function %s with %d arguments not found%s", name, len(args), suggest(name, c.FunctionNames()))
		}
		ask := cur.parent.restrictions.CanAskParentForFunction(cur, cur.parent, name)
		if failure := permitted(cur, OpAskParentForFunction, name, ask); failure != nil {
			return FromFailure[*Function](failure)
		}
	}
}

func (c *Context) takeFunction(path []*Context, name string, fn *Function) Result[*Function] {
	for i := len(path) - 2; i >= 0; i-- {
		child := path[i]
		v := child.restrictions.ShouldTakeParentFunction(child, child.parent, name, fn)
		if failure := taken(child, OpAskParentForFunction, name, v); failure != nil {
			return FromFailure[*Function](failure)
		}
	}
	if failure := taken(c, OpResolveFunction, name, c.restrictions.ShouldTakeFunction(c, name, fn)); failure != nil {
		return FromFailure[*Function](failure)
	}
	return Success(fn)
}

// InvokeFunction resolves name against args and calls the selected
// overload. Unnamed arguments are flattened before resolution; named ones
// only once a function has been chosen.
func (c *Context) InvokeFunction(ctx context.Context, name string, args []Argument) Result[Value] {
	flat := make([]Argument, len(args))
	for i, arg := range args {
		flat[i] = arg
		if arg.Name != "" {
			continue
		}
		r := Flatten(ctx, c, arg.Value)
		if !r.IsSuccess() {
			return r.Wrap(FunctionFailed, "argument %d of %s", i+1, name)
		}
		flat[i].Value = r.Value()
	}
	resolved := c.Resolve(name, flat)
	if !resolved.IsSuccess() {
		return FromFailure[Value](resolved.Failure())
	}
	return c.Call(ctx, resolved.Value(), flat)
}

// Call binds args to fn and runs it in a new frame.
func (c *Context) Call(ctx context.Context, fn *Function, args []Argument) Result[Value] {
	return c.call(ctx, fn, args, true)
}

// dispatch runs an operator, member or property function. Script functions
// get a frame like any call; natives run at the caller's depth and do not
// count as calls.
func (c *Context) dispatch(ctx context.Context, fn *Function, args []Argument) Result[Value] {
	return c.call(ctx, fn, args, fn.declaration != nil)
}

func (c *Context) call(ctx context.Context, fn *Function, args []Argument, framed bool) Result[Value] {
	bound := bind(fn, args)
	if !bound.IsSuccess() {
		return FromFailure[Value](bound.Failure())
	}
	b := bound.Value()
	if failure := b.settle(ctx, c, fn); failure != nil {
		return FromFailure[Value](failure)
	}

	restrictions := c.restrictions
	derived := c.restrictions.CreateSubroutineRestrictions(c, fn, b)
	switch {
	case derived.IsSuccess():
		restrictions = derived.Value()
	case !derived.IsEmpty():
		return FromFailure[Value](derived.Failure())
	}
	if framed {
		if failure := permitted(c, OpRunFunction, fn.Name, c.restrictions.CanRunFunction(c, fn, b)); failure != nil {
			return FromFailure[Value](failure)
		}
	}
	if failure := c.state.step(ctx); failure != nil {
		return FromFailure[Value](failure)
	}

	base := fn.closure
	if base == nil {
		base = c
	}
	var frame *Context
	if framed {
		c.state.calls++
		frame = newFrame(base, c, fn, restrictions)
	} else {
		frame = NewContext(base, restrictions)
		frame.depth = c.depth
		frame.recursion = c.recursion
	}
	result := invokeGuarded(ctx, frame, fn, b)
	if result.IsEmpty() {
		result = Success(emptyValue(result.Failure()))
	}
	if !result.IsSuccess() {
		if code := result.Failure().Code(); code.IsLimit() || code == Cancelled {
			return result
		}
		return result.Wrap(FunctionFailed, "%s failed", fn.Name)
	}
	if !framed {
		return result
	}
	if failure := taken(c, OpRunFunction, fn.Name, c.restrictions.ShouldTakeFunctionResult(c, fn, result.Value())); failure != nil {
		return FromFailure[Value](failure)
	}
	return result
}

// emptyValue is the script value an Empty function result stands for.
func emptyValue(f *Failure) Value {
	if f.Reason() == EmptyNull {
		return NewNull()
	}
	return NewUndefined()
}

// invokeGuarded runs fn, turning a panic in a native implementation into a
// Thrown failure.
func invokeGuarded(ctx context.Context, frame *Context, fn *Function, args *BoundArguments) (result Result[Value]) {
	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(error)
			if !ok {
				fault = fmt.Errorf("%v", r)
			}
			frame.logger().Debug("function panicked", "function", fn.Name, "panic", fault.Error(), "stack", string(debug.Stack()))
			result = Thrown[Value](pkgerrors.Wrapf(fault, "panic in %s", fn.Name), nil)
		}
	}()
	return fn.Impl(ctx, frame, args)
}
