package knolus

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
)

// NodeKind identifies an AST node. The value doubles as the low byte of the
// document decoder's visit denial codes.
type NodeKind int

const (
	NodeScope NodeKind = iota + 1
	NodeVariableDeclaration
	NodeVariableAssignment
	NodeFunctionDeclaration
	NodeFunctionCall
	NodeMemberFunctionCall
	NodeReturn
	NodeLiteral
	NodeVariableReference
	NodePropertyReference
	NodeLazyString
	NodeArray
	NodeExpression
	NodeArgument
	NodeParameter
)

var nodeKindNames = map[NodeKind]string{
	NodeScope:               "scope",
	NodeVariableDeclaration: "variable_declaration",
	NodeVariableAssignment:  "variable_assignment",
	NodeFunctionDeclaration: "function_declaration",
	NodeFunctionCall:        "function_call",
	NodeMemberFunctionCall:  "member_function_call",
	NodeReturn:              "return",
	NodeLiteral:             "literal",
	NodeVariableReference:   "variable_reference",
	NodePropertyReference:   "property_reference",
	NodeLazyString:          "lazy_string",
	NodeArray:               "array",
	NodeExpression:          "expression",
	NodeArgument:            "argument",
	NodeParameter:           "parameter",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("node(%d)", int(k))
}

func (k NodeKind) constName() string { return strcase.ToScreamingSnake(k.String()) }

// Line is one statement of a scope.
type Line interface {
	NodeKind() NodeKind
	lineNode()
}

// Scope is an ordered, immutable list of lines. A scope can be run any number
// of times, each run in a fresh Context.
type Scope struct {
	Lines []Line
}

func NewScope(lines ...Line) *Scope { return &Scope{Lines: lines} }

type VariableDeclaration struct {
	Name   string
	Value  Value
	Global bool
	// Deferred stores Value unevaluated; every read evaluates it again.
	Deferred bool
}

type VariableAssignment struct {
	Name   string
	Value  Value
	Global bool
}

// ParameterDeclaration names a parameter of a script function. A parameter
// with a Default is filled with that value when the caller omits it.
type ParameterDeclaration struct {
	Name    string
	Default *Value
}

type FunctionDeclaration struct {
	Name       string
	Parameters []ParameterDeclaration
	Global     bool
	Body       *Scope
	Value      *Value
}

// Argument is a call argument. Unnamed arguments have an empty Name.
type Argument struct {
	Name  string
	Value Value
}

func Positional(values ...Value) []Argument {
	args := make([]Argument, len(values))
	for i, v := range values {
		args[i] = Argument{Value: v}
	}
	return args
}

func Named(name string, value Value) Argument { return Argument{Name: name, Value: value} }

type FunctionCall struct {
	Name string
	Args []Argument
}

type MemberFunctionCall struct {
	Receiver Value
	Name     string
	Args     []Argument
}

type ReturnStatement struct {
	Value Value
}

func (*VariableDeclaration) NodeKind() NodeKind { return NodeVariableDeclaration }
func (*VariableAssignment) NodeKind() NodeKind  { return NodeVariableAssignment }
func (*FunctionDeclaration) NodeKind() NodeKind { return NodeFunctionDeclaration }
func (*FunctionCall) NodeKind() NodeKind        { return NodeFunctionCall }
func (*MemberFunctionCall) NodeKind() NodeKind  { return NodeMemberFunctionCall }
func (*ReturnStatement) NodeKind() NodeKind     { return NodeReturn }

func (*VariableDeclaration) lineNode() {}
func (*VariableAssignment) lineNode()  {}
func (*FunctionDeclaration) lineNode() {}
func (*FunctionCall) lineNode()        {}
func (*MemberFunctionCall) lineNode()  {}
func (*ReturnStatement) lineNode()     {}

func (d *VariableDeclaration) String() string {
	prefix := "val"
	if d.Global {
		prefix = "global val"
	}
	if d.Deferred {
		return fmt.Sprintf("%s %s by %s", prefix, d.Name, d.Value)
	}
	return fmt.Sprintf("%s %s = %s", prefix, d.Name, d.Value)
}

func (a *VariableAssignment) String() string {
	if a.Global {
		return fmt.Sprintf("global %s = %s", a.Name, a.Value)
	}
	return fmt.Sprintf("%s = %s", a.Name, a.Value)
}

func (d *FunctionDeclaration) String() string {
	params := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		if p.Default != nil {
			params[i] = fmt.Sprintf("%s = %s", p.Name, *p.Default)
			continue
		}
		params[i] = p.Name
	}
	head := fmt.Sprintf("function %s(%s)", d.Name, strings.Join(params, ", "))
	if d.Global {
		head = "global " + head
	}
	switch {
	case d.Value != nil:
		return head + " = " + d.Value.String()
	case d.Body != nil:
		return fmt.Sprintf("%s { %d lines }", head, len(d.Body.Lines))
	default:
		return head
	}
}

func (c *FunctionCall) String() string {
	return fmt.Sprintf("%s(%s)", c.Name, renderArgs(c.Args))
}

func (c *MemberFunctionCall) String() string {
	return fmt.Sprintf("%s.%s(%s)", c.Receiver, c.Name, renderArgs(c.Args))
}

func (r *ReturnStatement) String() string { return "return " + r.Value.String() }

func renderArgs(args []Argument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg.Name != "" {
			parts[i] = arg.Name + " = " + arg.Value.String()
			continue
		}
		parts[i] = arg.Value.String()
	}
	return strings.Join(parts, ", ")
}
