package knolus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Format is the encoding of an AST document.
type Format int

const (
	FormatJSON Format = iota
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatCBOR:
		return "cbor"
	default:
		return "json"
	}
}

// ParseFormat accepts "json" or "cbor".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return FormatJSON, fmt.Errorf("unknown document format %q", name)
}

type documentScope struct {
	Lines []documentLine `json:"lines" cbor:"lines"`
}

type documentLine struct {
	Type       string              `json:"type" cbor:"type"`
	Name       string              `json:"name,omitempty" cbor:"name,omitempty"`
	Value      *documentValue      `json:"value,omitempty" cbor:"value,omitempty"`
	Global     bool                `json:"global,omitempty" cbor:"global,omitempty"`
	Deferred   bool                `json:"deferred,omitempty" cbor:"deferred,omitempty"`
	Parameters []documentParameter `json:"parameters,omitempty" cbor:"parameters,omitempty"`
	Body       *documentScope      `json:"body,omitempty" cbor:"body,omitempty"`
	Receiver   *documentValue      `json:"receiver,omitempty" cbor:"receiver,omitempty"`
	Args       []documentArgument  `json:"args,omitempty" cbor:"args,omitempty"`
}

type documentValue struct {
	Kind       string              `json:"kind" cbor:"kind"`
	Text       string              `json:"text,omitempty" cbor:"text,omitempty"`
	Name       string              `json:"name,omitempty" cbor:"name,omitempty"`
	Property   string              `json:"property,omitempty" cbor:"property,omitempty"`
	Element    string              `json:"element,omitempty" cbor:"element,omitempty"`
	Items      []documentValue     `json:"items,omitempty" cbor:"items,omitempty"`
	Receiver   *documentValue      `json:"receiver,omitempty" cbor:"receiver,omitempty"`
	Args       []documentArgument  `json:"args,omitempty" cbor:"args,omitempty"`
	Start      *documentValue      `json:"start,omitempty" cbor:"start,omitempty"`
	Operations []documentOperation `json:"operations,omitempty" cbor:"operations,omitempty"`
}

type documentOperation struct {
	Operator string        `json:"operator" cbor:"operator"`
	Value    documentValue `json:"value" cbor:"value"`
}

type documentArgument struct {
	Name  string        `json:"name,omitempty" cbor:"name,omitempty"`
	Value documentValue `json:"value" cbor:"value"`
}

type documentParameter struct {
	Name    string         `json:"name" cbor:"name"`
	Default *documentValue `json:"default,omitempty" cbor:"default,omitempty"`
}

const (
	lineVariableDeclaration = "variable_declaration"
	lineVariableAssignment  = "variable_assignment"
	lineFunctionDeclaration = "function_declaration"
	lineFunctionCall        = "function_call"
	lineMemberFunctionCall  = "member_function_call"
	lineReturn              = "return"
)

// DecodeDocument decodes a scope. Every node is checked against restriction
// as it is visited and again once built; a nil restriction permits all.
func DecodeDocument(data []byte, format Format, restriction Restriction) Result[*Scope] {
	var doc documentScope
	var err error
	switch format {
	case FormatCBOR:
		err = cbor.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return Fail[*Scope](FormatError, "malformed %s document: %v", format, err)
	}
	if restriction == nil {
		restriction = Permissive()
	}
	d := &decoder{restriction: restriction}
	return d.scope(&doc)
}

// EncodeDocument encodes scope. CBOR output is canonical, so equal scopes
// encode to equal bytes.
func EncodeDocument(scope *Scope, format Format) ([]byte, error) {
	doc, err := encodeScope(scope)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCBOR:
		encMode, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return nil, fmt.Errorf("creating CBOR encoder: %w", err)
		}
		data, err := encMode.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("CBOR encoding failed: %w", err)
		}
		return data, nil
	default:
		return json.MarshalIndent(doc, "", "  ")
	}
}

type decoder struct {
	restriction Restriction
}

// visit gates the decoding of one node.
func visit[T any](d *decoder, kind NodeKind, build func() Result[T]) Result[T] {
	if failure := visitFailure(d.restriction.CanVisit(kind), VisitDenied(kind), "visiting %s denied", kind); failure != nil {
		return FromFailure[T](failure)
	}
	r := build()
	if !r.IsSuccess() {
		return r
	}
	if failure := visitFailure(d.restriction.ShouldTakeVisit(kind, r.Value()), VisitResultDenied(kind), "decoded %s denied", kind); failure != nil {
		return FromFailure[T](failure)
	}
	return r
}

func visitFailure(v Verdict, code Code, format string, kind NodeKind) *Failure {
	if v.IsSuccess() {
		return nil
	}
	cause := v.Failure()
	if cause.Code().IsLimit() {
		return cause
	}
	if cause.IsEmpty() {
		cause = Errorf(NoVerdict, "no restriction gave a verdict")
	}
	return Wrapf(cause, code, format, kind)
}

func (d *decoder) scope(doc *documentScope) Result[*Scope] {
	return visit(d, NodeScope, func() Result[*Scope] {
		scope := &Scope{Lines: make([]Line, 0, len(doc.Lines))}
		for i := range doc.Lines {
			line := d.line(&doc.Lines[i])
			if !line.IsSuccess() {
				return FailWith[*Scope](line.Failure(), FormatError, "line %d", i+1)
			}
			scope.Lines = append(scope.Lines, line.Value())
		}
		return Success(scope)
	})
}

func (d *decoder) line(doc *documentLine) Result[Line] {
	switch doc.Type {
	case lineVariableDeclaration:
		return visit(d, NodeVariableDeclaration, func() Result[Line] {
			return Map(d.required(doc.Value, "value"), func(v Value) Line {
				return &VariableDeclaration{Name: doc.Name, Value: v, Global: doc.Global, Deferred: doc.Deferred}
			})
		})
	case lineVariableAssignment:
		return visit(d, NodeVariableAssignment, func() Result[Line] {
			return Map(d.required(doc.Value, "value"), func(v Value) Line {
				return &VariableAssignment{Name: doc.Name, Value: v, Global: doc.Global}
			})
		})
	case lineFunctionDeclaration:
		return visit(d, NodeFunctionDeclaration, func() Result[Line] { return d.functionDeclaration(doc) })
	case lineFunctionCall:
		return visit(d, NodeFunctionCall, func() Result[Line] {
			return Map(d.arguments(doc.Args), func(args []Argument) Line {
				return &FunctionCall{Name: doc.Name, Args: args}
			})
		})
	case lineMemberFunctionCall:
		return visit(d, NodeMemberFunctionCall, func() Result[Line] {
			return FlatMap(d.required(doc.Receiver, "receiver"), func(receiver Value) Result[Line] {
				return Map(d.arguments(doc.Args), func(args []Argument) Line {
					return &MemberFunctionCall{Receiver: receiver, Name: doc.Name, Args: args}
				})
			})
		})
	case lineReturn:
		return visit(d, NodeReturn, func() Result[Line] {
			return Map(d.required(doc.Value, "value"), func(v Value) Line {
				return &ReturnStatement{Value: v}
			})
		})
	}
	return Fail[Line](FormatError, "unknown line type %q", doc.Type)
}

func (d *decoder) functionDeclaration(doc *documentLine) Result[Line] {
	decl := &FunctionDeclaration{Name: doc.Name, Global: doc.Global}
	for _, p := range doc.Parameters {
		param := visit(d, NodeParameter, func() Result[ParameterDeclaration] {
			out := ParameterDeclaration{Name: p.Name}
			if p.Default == nil {
				return Success(out)
			}
			return Map(d.value(p.Default), func(v Value) ParameterDeclaration {
				out.Default = &v
				return out
			})
		})
		if !param.IsSuccess() {
			return FailWith[Line](param.Failure(), FormatError, "parameter %s of %s", p.Name, doc.Name)
		}
		decl.Parameters = append(decl.Parameters, param.Value())
	}
	if doc.Body != nil {
		body := d.scope(doc.Body)
		if !body.IsSuccess() {
			return FailWith[Line](body.Failure(), FormatError, "body of %s", doc.Name)
		}
		decl.Body = body.Value()
	}
	if doc.Value != nil {
		v := d.value(doc.Value)
		if !v.IsSuccess() {
			return FailWith[Line](v.Failure(), FormatError, "value of %s", doc.Name)
		}
		value := v.Value()
		decl.Value = &value
	}
	return Success[Line](decl)
}

func (d *decoder) required(doc *documentValue, field string) Result[Value] {
	if doc == nil {
		return Fail[Value](FormatError, "missing %s", field)
	}
	return d.value(doc)
}

func (d *decoder) arguments(docs []documentArgument) Result[[]Argument] {
	args := make([]Argument, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		arg := visit(d, NodeArgument, func() Result[Argument] {
			return Map(d.value(&doc.Value), func(v Value) Argument { return Argument{Name: doc.Name, Value: v} })
		})
		if !arg.IsSuccess() {
			return FailWith[[]Argument](arg.Failure(), FormatError, "argument %d", i+1)
		}
		args = append(args, arg.Value())
	}
	return Success(args)
}
