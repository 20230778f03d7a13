package knolus

import (
	"fmt"
	"math/big"
	"strconv"
	"unicode/utf8"
)

const (
	docNull       = "null"
	docUndefined  = "undefined"
	docBoolean    = "boolean"
	docInt        = "int"
	docLong       = "long"
	docBigInt     = "bigint"
	docDouble     = "double"
	docChar       = "char"
	docString     = "string"
	docLazyString = "lazy_string"
	docArray      = "array"
	docVariable   = "variable"
	docProperty   = "property"
	docCall       = "call"
	docMemberCall = "member_call"
	docExpression = "expression"
)

var valueNodeKinds = map[string]NodeKind{
	docLazyString: NodeLazyString,
	docArray:      NodeArray,
	docVariable:   NodeVariableReference,
	docProperty:   NodePropertyReference,
	docCall:       NodeFunctionCall,
	docMemberCall: NodeMemberFunctionCall,
	docExpression: NodeExpression,
}

func (d *decoder) value(doc *documentValue) Result[Value] {
	kind, ok := valueNodeKinds[doc.Kind]
	if !ok {
		kind = NodeLiteral
	}
	return visit(d, kind, func() Result[Value] { return d.buildValue(doc) })
}

func (d *decoder) buildValue(doc *documentValue) Result[Value] {
	switch doc.Kind {
	case docNull:
		return Success(NewNull())
	case docUndefined:
		return Success(NewUndefined())
	case docBoolean:
		b, err := strconv.ParseBool(doc.Text)
		if err != nil {
			return Fail[Value](FormatError, "invalid boolean literal %q", doc.Text)
		}
		return Success(NewBoolean(b))
	case docInt:
		i, err := strconv.ParseInt(doc.Text, 10, 32)
		if err != nil {
			return Fail[Value](FormatError, "invalid int literal %q", doc.Text)
		}
		return Success(NewInt(int32(i)))
	case docLong:
		i, err := strconv.ParseInt(doc.Text, 10, 64)
		if err != nil {
			return Fail[Value](FormatError, "invalid long literal %q", doc.Text)
		}
		return Success(NewLong(i))
	case docBigInt:
		i, ok := new(big.Int).SetString(doc.Text, 10)
		if !ok {
			return Fail[Value](FormatError, "invalid bigint literal %q", doc.Text)
		}
		return Success(NewBigInt(i))
	case docDouble:
		f, err := strconv.ParseFloat(doc.Text, 64)
		if err != nil {
			return Fail[Value](FormatError, "invalid double literal %q", doc.Text)
		}
		return Success(NewDouble(f))
	case docChar:
		r, size := utf8.DecodeRuneInString(doc.Text)
		if r == utf8.RuneError || size != len(doc.Text) {
			return Fail[Value](FormatError, "invalid char literal %q", doc.Text)
		}
		return Success(NewChar(r))
	case docString:
		return Success(NewString(doc.Text))
	case docLazyString:
		return Map(d.values(doc.Items), func(parts []Value) Value { return NewLazyString(parts...) })
	case docArray:
		elem := KindAny
		if doc.Element != "" {
			kind, ok := KindFromName(doc.Element)
			if !ok {
				return Fail[Value](FormatError, "unknown array element type %q", doc.Element)
			}
			elem = kind
		}
		return Map(d.values(doc.Items), func(items []Value) Value { return NewArray(elem, items...) })
	case docVariable:
		if doc.Name == "" {
			return Fail[Value](FormatError, "variable reference without a name")
		}
		return Success(NewVariableReference(doc.Name))
	case docProperty:
		if doc.Name == "" || doc.Property == "" {
			return Fail[Value](FormatError, "property reference needs a variable and a property")
		}
		return Success(NewPropertyReference(doc.Name, doc.Property))
	case docCall:
		return Map(d.arguments(doc.Args), func(args []Argument) Value {
			return NewLazyFunctionCall(&FunctionCall{Name: doc.Name, Args: args})
		})
	case docMemberCall:
		return FlatMap(d.required(doc.Receiver, "receiver"), func(receiver Value) Result[Value] {
			return Map(d.arguments(doc.Args), func(args []Argument) Value {
				return NewLazyMemberFunctionCall(&MemberFunctionCall{Receiver: receiver, Name: doc.Name, Args: args})
			})
		})
	case docExpression:
		return d.expression(doc)
	}
	return Fail[Value](FormatError, "unknown value kind %q", doc.Kind)
}

func (d *decoder) values(docs []documentValue) Result[[]Value] {
	out := make([]Value, 0, len(docs))
	for i := range docs {
		v := d.value(&docs[i])
		if !v.IsSuccess() {
			return FailWith[[]Value](v.Failure(), FormatError, "item %d", i+1)
		}
		out = append(out, v.Value())
	}
	return Success(out)
}

func (d *decoder) expression(doc *documentValue) Result[Value] {
	start := d.required(doc.Start, "expression start")
	if !start.IsSuccess() {
		return start
	}
	ops := make([]ExpressionOperation, 0, len(doc.Operations))
	for i := range doc.Operations {
		op := &doc.Operations[i]
		operator, ok := ParseOperator(op.Operator)
		if !ok {
			return Fail[Value](FormatError, "unknown operator %q", op.Operator)
		}
		operand := d.value(&op.Value)
		if !operand.IsSuccess() {
			return FailWith[Value](operand.Failure(), FormatError, "operand %d", i+1)
		}
		ops = append(ops, Op(operator, operand.Value()))
	}
	return Success(NewExpression(start.Value(), ops...))
}

func encodeScope(scope *Scope) (*documentScope, error) {
	if scope == nil {
		return nil, fmt.Errorf("knolus: cannot encode a nil scope")
	}
	doc := &documentScope{Lines: make([]documentLine, 0, len(scope.Lines))}
	for i, line := range scope.Lines {
		encoded, err := encodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		doc.Lines = append(doc.Lines, encoded)
	}
	return doc, nil
}

func encodeLine(line Line) (documentLine, error) {
	switch l := line.(type) {
	case *VariableDeclaration:
		v, err := encodeValue(l.Value)
		return documentLine{Type: lineVariableDeclaration, Name: l.Name, Value: &v, Global: l.Global, Deferred: l.Deferred}, err
	case *VariableAssignment:
		v, err := encodeValue(l.Value)
		return documentLine{Type: lineVariableAssignment, Name: l.Name, Value: &v, Global: l.Global}, err
	case *FunctionDeclaration:
		return encodeFunctionDeclaration(l)
	case *FunctionCall:
		args, err := encodeArguments(l.Args)
		return documentLine{Type: lineFunctionCall, Name: l.Name, Args: args}, err
	case *MemberFunctionCall:
		receiver, err := encodeValue(l.Receiver)
		if err != nil {
			return documentLine{}, err
		}
		args, err := encodeArguments(l.Args)
		return documentLine{Type: lineMemberFunctionCall, Name: l.Name, Receiver: &receiver, Args: args}, err
	case *ReturnStatement:
		v, err := encodeValue(l.Value)
		return documentLine{Type: lineReturn, Value: &v}, err
	}
	return documentLine{}, fmt.Errorf("knolus: cannot encode line %T", line)
}

func encodeFunctionDeclaration(decl *FunctionDeclaration) (documentLine, error) {
	doc := documentLine{Type: lineFunctionDeclaration, Name: decl.Name, Global: decl.Global}
	for _, p := range decl.Parameters {
		param := documentParameter{Name: p.Name}
		if p.Default != nil {
			v, err := encodeValue(*p.Default)
			if err != nil {
				return doc, err
			}
			param.Default = &v
		}
		doc.Parameters = append(doc.Parameters, param)
	}
	if decl.Body != nil {
		body, err := encodeScope(decl.Body)
		if err != nil {
			return doc, fmt.Errorf("body of %s: %w", decl.Name, err)
		}
		doc.Body = body
	}
	if decl.Value != nil {
		v, err := encodeValue(*decl.Value)
		if err != nil {
			return doc, err
		}
		doc.Value = &v
	}
	return doc, nil
}

func encodeArguments(args []Argument) ([]documentArgument, error) {
	out := make([]documentArgument, 0, len(args))
	for _, arg := range args {
		v, err := encodeValue(arg.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, documentArgument{Name: arg.Name, Value: v})
	}
	return out, nil
}

func encodeValues(values []Value) ([]documentValue, error) {
	out := make([]documentValue, 0, len(values))
	for _, v := range values {
		encoded, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded)
	}
	return out, nil
}

func encodeValue(v Value) (documentValue, error) {
	switch v.kind {
	case KindNull:
		return documentValue{Kind: docNull}, nil
	case KindUndefined:
		return documentValue{Kind: docUndefined}, nil
	case KindBoolean:
		return documentValue{Kind: docBoolean, Text: strconv.FormatBool(v.Bool())}, nil
	case KindInt:
		return documentValue{Kind: docInt, Text: strconv.FormatInt(int64(v.Int()), 10)}, nil
	case KindLong:
		return documentValue{Kind: docLong, Text: strconv.FormatInt(v.Long(), 10)}, nil
	case KindBigInt:
		return documentValue{Kind: docBigInt, Text: v.BigInt().String()}, nil
	case KindDouble:
		return documentValue{Kind: docDouble, Text: strconv.FormatFloat(v.Double(), 'g', -1, 64)}, nil
	case KindChar:
		return documentValue{Kind: docChar, Text: string(v.Char())}, nil
	case KindString:
		return documentValue{Kind: docString, Text: v.Str()}, nil
	case KindLazyString:
		parts, err := encodeValues(v.LazyParts())
		return documentValue{Kind: docLazyString, Items: parts}, err
	case KindArray:
		arr := v.Array()
		items, err := encodeValues(arr.Items())
		return documentValue{Kind: docArray, Element: arr.Elem().String(), Items: items}, err
	case KindVariableReference:
		return documentValue{Kind: docVariable, Name: v.VariableName()}, nil
	case KindPropertyReference:
		ref := v.PropertyReference()
		return documentValue{Kind: docProperty, Name: ref.Variable, Property: ref.Property}, nil
	case KindFunctionCall:
		call := v.FunctionCall()
		args, err := encodeArguments(call.Args)
		return documentValue{Kind: docCall, Name: call.Name, Args: args}, err
	case KindMemberFunctionCall:
		call := v.MemberFunctionCall()
		receiver, err := encodeValue(call.Receiver)
		if err != nil {
			return documentValue{}, err
		}
		args, err := encodeArguments(call.Args)
		return documentValue{Kind: docMemberCall, Name: call.Name, Receiver: &receiver, Args: args}, err
	case KindExpression:
		expr := v.Expression()
		start, err := encodeValue(expr.Start)
		if err != nil {
			return documentValue{}, err
		}
		doc := documentValue{Kind: docExpression, Start: &start}
		for _, op := range expr.Operations {
			operand, err := encodeValue(op.Value)
			if err != nil {
				return documentValue{}, err
			}
			doc.Operations = append(doc.Operations, documentOperation{Operator: op.Operator.Symbol(), Value: operand})
		}
		return doc, nil
	}
	return documentValue{}, fmt.Errorf("knolus: cannot encode %s value", v.kind)
}
