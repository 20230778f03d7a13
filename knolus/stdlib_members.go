package knolus

import (
	"context"
	"strings"
	"unicode/utf8"
)

func registerStandardMembers(c *Context) *Failure {
	stringLength := func(_ context.Context, _ *Context, self Value) Result[Value] {
		return Success(NewInt(int32(utf8.RuneCountInString(self.Str()))))
	}
	arraySize := func(_ context.Context, _ *Context, self Value) Result[Value] {
		return Success(NewInt(int32(self.Array().Len())))
	}
	self := func(args *BoundArguments) Value { return args.Value("self") }

	members := []struct {
		kind Kind
		name string
		fn   *Function
	}{
		{KindString, "length", NewFunction("length").Native(func(ctx context.Context, c *Context, args *BoundArguments) Result[Value] {
			return stringLength(ctx, c, self(args))
		})},
		{KindString, "uppercase", NewFunction("uppercase").Native(func(_ context.Context, _ *Context, args *BoundArguments) Result[Value] {
			return Success(NewString(strings.ToUpper(self(args).Str())))
		})},
		{KindString, "lowercase", NewFunction("lowercase").Native(func(_ context.Context, _ *Context, args *BoundArguments) Result[Value] {
			return Success(NewString(strings.ToLower(self(args).Str())))
		})},
		{KindArray, "size", NewFunction("size").Native(func(ctx context.Context, c *Context, args *BoundArguments) Result[Value] {
			return arraySize(ctx, c, self(args))
		})},
		{KindArray, "first", NewFunction("first").Native(func(_ context.Context, _ *Context, args *BoundArguments) Result[Value] {
			if first, ok := self(args).Array().Index(0); ok {
				return Success(first)
			}
			return EmptyNullResult[Value]()
		})},
		{KindArray, "get", NewFunction("get").Param("index", KindInt).Native(func(_ context.Context, _ *Context, args *BoundArguments) Result[Value] {
			arr := self(args).Array()
			index := args.Value("index").AsInt()
			if item, ok := arr.Index(int(index)); ok {
				return Success(item)
			}
			return Fail[Value](InvalidParameter, "index %d out of range [0, %d)", index, arr.Len())
		})},
	}
	for _, member := range members {
		if r := c.RegisterMemberFunction(member.kind, member.name, member.fn); !r.IsSuccess() {
			return r.Failure()
		}
	}

	if r := c.RegisterMemberProperty(KindString, "length", stringLength); !r.IsSuccess() {
		return r.Failure()
	}
	if r := c.RegisterMemberProperty(KindArray, "size", arraySize); !r.IsSuccess() {
		return r.Failure()
	}
	return nil
}
