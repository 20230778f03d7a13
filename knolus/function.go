package knolus

import (
	"context"
	"fmt"
	"strings"
)

// FunctionImpl is the body of a function. c is the frame the call runs in.
type FunctionImpl func(ctx context.Context, c *Context, args *BoundArguments) Result[Value]

// Function is an immutable callable. Several functions registered under one
// name form an overload set, tried in registration order.
type Function struct {
	Name       string
	Parameters []*Parameter
	Variadic   bool
	Impl       FunctionImpl

	// closure is the context a script function was declared in; native
	// functions run against their caller.
	closure     *Context
	declaration *FunctionDeclaration
}

// Declaration returns the AST a script function was built from, or nil for
// a native function.
func (fn *Function) Declaration() *FunctionDeclaration { return fn.declaration }

func (fn *Function) mandatoryCount() int {
	n := 0
	for _, p := range fn.Parameters {
		if p.Missing.IsMandatory() {
			n++
		}
	}
	return n
}

// acceptsArity reports whether argc arguments can bind to fn.
func (fn *Function) acceptsArity(argc int) bool {
	if fn.Variadic {
		return argc >= fn.mandatoryCount()
	}
	return argc >= fn.mandatoryCount() && argc <= len(fn.Parameters)
}

// acceptsNames reports whether every named argument names a parameter of fn.
// Variadic functions take unknown names as extra arguments.
func (fn *Function) acceptsNames(args []Argument) bool {
	for _, arg := range args {
		if arg.Name == "" {
			continue
		}
		if fn.parameter(arg.Name) == nil && !fn.Variadic {
			return false
		}
	}
	return true
}

func (fn *Function) parameter(name string) *Parameter {
	for _, p := range fn.Parameters {
		if p.Matches(name) {
			return p
		}
	}
	return nil
}

func (fn *Function) validate() *Failure {
	if fn.Impl == nil {
		return Errorf(NotInvocable, "function %s has no implementation", fn.Name)
	}
	seen := make(map[string]struct{}, len(fn.Parameters))
	for _, p := range fn.Parameters {
		if failure := p.validate(fn.Name); failure != nil {
			return failure
		}
		key := Sanitize(p.Name)
		if _, dup := seen[key]; dup {
			return Errorf(InvalidParameter, "function %s declares parameter %s twice", fn.Name, p.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (fn *Function) String() string {
	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = p.String()
	}
	if fn.Variadic {
		params = append(params, "...")
	}
	return fmt.Sprintf("%s(%s)", fn.Name, strings.Join(params, ", "))
}

// BoundArguments is the outcome of binding call arguments to a function's
// parameters. Arguments that matched no parameter are kept in Extra.
type BoundArguments struct {
	params []*Parameter
	values []Result[Value]
	Extra  []Value
}

// Lookup returns the value bound to the named parameter. Optional
// parameters the caller omitted are Empty.
func (b *BoundArguments) Lookup(name string) Result[Value] {
	for i, p := range b.params {
		if p.Matches(name) {
			return b.values[i]
		}
	}
	return Fail[Value](MissingParameter, "no parameter %s", name)
}

// Value returns the bound value of name, or Undefined when it has none.
func (b *BoundArguments) Value(name string) Value {
	return b.Lookup(name).GetOrElse(NewUndefined())
}

// At returns the value bound to the i-th declared parameter.
func (b *BoundArguments) At(i int) Result[Value] {
	if i < 0 || i >= len(b.values) {
		return Empty[Value]()
	}
	return b.values[i]
}

// Len is the number of declared parameters.
func (b *BoundArguments) Len() int { return len(b.values) }

// All lists every bound value followed by the extra arguments. Omitted
// optional parameters are skipped.
func (b *BoundArguments) All() []Value {
	out := make([]Value, 0, len(b.values)+len(b.Extra))
	for _, r := range b.values {
		if v, ok := r.Get(); ok {
			out = append(out, v)
		}
	}
	return append(out, b.Extra...)
}

// bind assigns args to the parameters of fn: named arguments first, then
// unnamed ones in declaration order. Leftovers become extra arguments.
func bind(fn *Function, args []Argument) Result[*BoundArguments] {
	bound := &BoundArguments{
		params: fn.Parameters,
		values: make([]Result[Value], len(fn.Parameters)),
	}
	filled := make([]bool, len(fn.Parameters))
	used := make([]bool, len(args))

	for i, arg := range args {
		if arg.Name == "" {
			continue
		}
		for j, p := range fn.Parameters {
			if !filled[j] && p.Matches(arg.Name) {
				bound.values[j] = Success(arg.Value)
				filled[j] = true
				used[i] = true
				break
			}
		}
	}

	next := 0
	for i, arg := range args {
		if used[i] || arg.Name != "" {
			continue
		}
		for next < len(fn.Parameters) && filled[next] {
			next++
		}
		if next == len(fn.Parameters) {
			break
		}
		bound.values[next] = Success(arg.Value)
		filled[next] = true
		used[i] = true
	}

	for i, arg := range args {
		if !used[i] {
			bound.Extra = append(bound.Extra, arg.Value)
		}
	}

	for j, p := range fn.Parameters {
		if filled[j] {
			continue
		}
		switch {
		case p.Missing.IsOptional():
			bound.values[j] = Empty[Value]()
		case p.Missing.IsSubstitute():
			def, _ := p.Missing.Default()
			bound.values[j] = Success(def)
		default:
			return Fail[*BoundArguments](MissingParameter, "missing argument %s", p.Name)
		}
	}
	if len(bound.Extra) > 0 && !fn.Variadic {
		return Fail[*BoundArguments](InvalidParameter, "%s takes %d arguments, got %d", fn.Name, len(fn.Parameters), len(args))
	}
	return Success(bound)
}

// settle flattens every bound value and checks it against its parameter.
func (b *BoundArguments) settle(ctx context.Context, c *Context, fn *Function) *Failure {
	for j, p := range b.params {
		v, ok := b.values[j].Get()
		if !ok {
			continue
		}
		flat := Flatten(ctx, c, v)
		if !flat.IsSuccess() {
			return Wrapf(flat.Failure(), InvalidParameter, "argument %s of %s", p.Name, fn.Name)
		}
		if !p.Accepts(flat.Value()) {
			kind, _ := p.kind()
			return Errorf(TypeMismatch, "argument %s of %s must be %s, got %s", p.Name, fn.Name, kind, flat.Value().kind)
		}
		b.values[j] = flat
	}
	for i, v := range b.Extra {
		flat := Flatten(ctx, c, v)
		if !flat.IsSuccess() {
			return Wrapf(flat.Failure(), InvalidParameter, "extra argument %d of %s", i+1, fn.Name)
		}
		b.Extra[i] = flat.Value()
	}
	return nil
}
