package knolus

import "context"

// FunctionBuilder assembles a native Function.
//
//	fn := knolus.NewFunction("greet").
//		Param("name", knolus.KindString).
//		Substitute("greeting", knolus.KindString, knolus.NewString("hello")).
//		Native(greet)
type FunctionBuilder struct {
	fn Function
}

func NewFunction(name string) *FunctionBuilder {
	return &FunctionBuilder{fn: Function{Name: name}}
}

// Param adds a mandatory parameter.
func (b *FunctionBuilder) Param(name string, kind Kind, aliases ...string) *FunctionBuilder {
	b.fn.Parameters = append(b.fn.Parameters, NewParameter(name, kind, Mandatory, aliases...))
	return b
}

func (b *FunctionBuilder) Optional(name string, kind Kind, aliases ...string) *FunctionBuilder {
	b.fn.Parameters = append(b.fn.Parameters, NewParameter(name, kind, Optional, aliases...))
	return b
}

func (b *FunctionBuilder) Substitute(name string, kind Kind, def Value, aliases ...string) *FunctionBuilder {
	b.fn.Parameters = append(b.fn.Parameters, NewParameter(name, kind, Substitute(def), aliases...))
	return b
}

// With adds a fully specified parameter.
func (b *FunctionBuilder) With(p *Parameter) *FunctionBuilder {
	b.fn.Parameters = append(b.fn.Parameters, p)
	return b
}

func (b *FunctionBuilder) Variadic() *FunctionBuilder {
	b.fn.Variadic = true
	return b
}

// Native finishes the function with impl.
func (b *FunctionBuilder) Native(impl FunctionImpl) *Function {
	fn := b.fn
	fn.Parameters = append([]*Parameter(nil), b.fn.Parameters...)
	fn.Impl = impl
	return &fn
}

// ParameterSpec pairs a declared parameter with the conversion of its bound
// value to a Go value.
type ParameterSpec[T any] struct {
	Parameter *Parameter
	convert   func(Value) T
}

func NewParameterSpec[T any](p *Parameter, convert func(Value) T) ParameterSpec[T] {
	return ParameterSpec[T]{Parameter: p, convert: convert}
}

// From reads the parameter's argument out of args. An omitted optional
// argument gives the zero value of T, or Null/Undefined when T is Value, so
// the function still runs.
func (s ParameterSpec[T]) From(args *BoundArguments) Result[T] {
	r := args.Lookup(s.Parameter.Name)
	if !r.IsEmpty() {
		return Map(r, s.convert)
	}
	if v, ok := any(emptyValue(r.Failure())).(T); ok {
		return Success(v)
	}
	var zero T
	return Success(zero)
}

func IntParameter(name string, missing MissingPolicy) ParameterSpec[int32] {
	return NewParameterSpec(NewParameter(name, KindInt, missing), Value.AsInt)
}

func LongParameter(name string, missing MissingPolicy) ParameterSpec[int64] {
	return NewParameterSpec(NewParameter(name, KindLong, missing), Value.AsLong)
}

func DoubleParameter(name string, missing MissingPolicy) ParameterSpec[float64] {
	return NewParameterSpec(NewParameter(name, KindDouble, missing), Value.AsDouble)
}

// NumberParameter accepts any numeric kind and hands over the number as is.
func NumberParameter(name string, missing MissingPolicy) ParameterSpec[Value] {
	return NewParameterSpec(NewParameter(name, KindNumber, missing), Value.AsNumber)
}

func StringParameter(name string, missing MissingPolicy) ParameterSpec[string] {
	return NewParameterSpec(NewParameter(name, KindString, missing), Value.AsString)
}

func BooleanParameter(name string, missing MissingPolicy) ParameterSpec[bool] {
	return NewParameterSpec(NewParameter(name, KindBoolean, missing), Value.AsBoolean)
}

func CharParameter(name string, missing MissingPolicy) ParameterSpec[rune] {
	return NewParameterSpec(NewParameter(name, KindChar, missing), Value.AsChar)
}

// ValueParameter accepts a value of kind without converting it.
func ValueParameter(name string, kind Kind, missing MissingPolicy) ParameterSpec[Value] {
	return NewParameterSpec(NewParameter(name, kind, missing), func(v Value) Value { return v })
}

// Function0 builds a native function without parameters.
func Function0(name string, fn func(ctx context.Context, c *Context) Result[Value]) *Function {
	return NewFunction(name).Native(func(ctx context.Context, c *Context, _ *BoundArguments) Result[Value] {
		return fn(ctx, c)
	})
}

// Function1 builds a native function taking one typed argument.
func Function1[A any](name string, a ParameterSpec[A], fn func(ctx context.Context, c *Context, a A) Result[Value]) *Function {
	return NewFunction(name).With(a.Parameter).Native(func(ctx context.Context, c *Context, args *BoundArguments) Result[Value] {
		return FlatMap(a.From(args), func(av A) Result[Value] { return fn(ctx, c, av) })
	})
}

// Function2 builds a native function taking two typed arguments.
func Function2[A, B any](name string, a ParameterSpec[A], b ParameterSpec[B], fn func(ctx context.Context, c *Context, a A, b B) Result[Value]) *Function {
	return NewFunction(name).With(a.Parameter).With(b.Parameter).Native(func(ctx context.Context, c *Context, args *BoundArguments) Result[Value] {
		return FlatMap(a.From(args), func(av A) Result[Value] {
			return FlatMap(b.From(args), func(bv B) Result[Value] { return fn(ctx, c, av, bv) })
		})
	})
}

// Function3 builds a native function taking three typed arguments.
func Function3[A, B, C any](name string, a ParameterSpec[A], b ParameterSpec[B], c3 ParameterSpec[C], fn func(ctx context.Context, c *Context, a A, b B, c3 C) Result[Value]) *Function {
	return NewFunction(name).With(a.Parameter).With(b.Parameter).With(c3.Parameter).Native(func(ctx context.Context, c *Context, args *BoundArguments) Result[Value] {
		return FlatMap(a.From(args), func(av A) Result[Value] {
			return FlatMap(b.From(args), func(bv B) Result[Value] {
				return FlatMap(c3.From(args), func(cv C) Result[Value] { return fn(ctx, c, av, bv, cv) })
			})
		})
	})
}

// RegisterFunction1 registers a one-argument native function in c.
func RegisterFunction1[A any](c *Context, name string, a ParameterSpec[A], fn func(ctx context.Context, c *Context, a A) Result[Value]) Result[*Function] {
	return c.Register(name, Function1(name, a, fn), false)
}

// RegisterFunction2 registers a two-argument native function in c.
func RegisterFunction2[A, B any](c *Context, name string, a ParameterSpec[A], b ParameterSpec[B], fn func(ctx context.Context, c *Context, a A, b B) Result[Value]) Result[*Function] {
	return c.Register(name, Function2(name, a, b, fn), false)
}

// RegisterFunction3 registers a three-argument native function in c.
func RegisterFunction3[A, B, C any](c *Context, name string, a ParameterSpec[A], b ParameterSpec[B], c3 ParameterSpec[C], fn func(ctx context.Context, c *Context, a A, b B, c3 C) Result[Value]) Result[*Function] {
	return c.Register(name, Function3(name, a, b, c3, fn), false)
}

// RegisterMemberFunction registers fn as the member function name of kind.
// The receiver is prepended as the parameter self.
func (c *Context) RegisterMemberFunction(kind Kind, name string, fn *Function) Result[*Function] {
	member := *fn
	member.Name = MemberFunctionName(kind, name)
	member.Parameters = append([]*Parameter{NewParameter("self", kind, Mandatory)}, fn.Parameters...)
	return c.Register(member.Name, &member, true)
}

// RegisterMemberProperty registers get as the property name of kind.
func (c *Context) RegisterMemberProperty(kind Kind, name string, get func(ctx context.Context, c *Context, self Value) Result[Value]) Result[*Function] {
	fn := NewFunction(MemberPropertyName(kind, name)).
		Param("self", kind).
		Native(func(ctx context.Context, c *Context, args *BoundArguments) Result[Value] {
			return get(ctx, c, args.Value("self"))
		})
	return c.Register(fn.Name, fn, true)
}

// RegisterOperator registers fn as op for a left operand of kind. fn receives
// the left operand as self and the right operand as other.
func (c *Context) RegisterOperator(kind Kind, op Operator, right Kind, fn func(ctx context.Context, c *Context, self, other Value) Result[Value]) Result[*Function] {
	name := OperatorFunctionName(kind, op)
	f := NewFunction(name).
		Param("self", kind).
		Param("other", right).
		Native(func(ctx context.Context, c *Context, args *BoundArguments) Result[Value] {
			return fn(ctx, c, args.Value("self"), args.Value("other"))
		})
	return c.Register(name, f, true)
}
