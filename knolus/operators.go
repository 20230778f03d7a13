package knolus

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// Operator is a binary operator applied inside an expression.
type Operator int

const (
	OperatorPlus Operator = iota + 1
	OperatorMinus
	OperatorMultiply
	OperatorDivide
	OperatorModulo
	OperatorPower
	OperatorEquals
	OperatorNotEquals
	OperatorLessThan
	OperatorLessThanOrEqual
	OperatorGreaterThan
	OperatorGreaterThanOrEqual
	OperatorAnd
	OperatorOr
)

var operatorNames = []struct {
	op     Operator
	name   string
	symbol string
}{
	{OperatorPlus, "Plus", "+"},
	{OperatorMinus, "Minus", "-"},
	{OperatorMultiply, "Multiply", "*"},
	{OperatorDivide, "Divide", "/"},
	{OperatorModulo, "Modulo", "%"},
	{OperatorPower, "Power", "^"},
	{OperatorEquals, "Equals", "=="},
	{OperatorNotEquals, "NotEquals", "!="},
	{OperatorLessThan, "LessThan", "<"},
	{OperatorLessThanOrEqual, "LessThanOrEqual", "<="},
	{OperatorGreaterThan, "GreaterThan", ">"},
	{OperatorGreaterThanOrEqual, "GreaterThanOrEqual", ">="},
	{OperatorAnd, "And", "&&"},
	{OperatorOr, "Or", "||"},
}

// Name is the operator's part of a mangled operator function name.
func (o Operator) Name() string {
	for _, entry := range operatorNames {
		if entry.op == o {
			return entry.name
		}
	}
	return fmt.Sprintf("Operator%d", int(o))
}

func (o Operator) Symbol() string {
	for _, entry := range operatorNames {
		if entry.op == o {
			return entry.symbol
		}
	}
	return "?"
}

func (o Operator) String() string { return o.Symbol() }

// ParseOperator accepts either a symbol ("+") or a name ("plus").
func ParseOperator(text string) (Operator, bool) {
	want := Sanitize(text)
	for _, entry := range operatorNames {
		if entry.symbol == text || Sanitize(entry.name) == want {
			return entry.op, true
		}
	}
	return 0, false
}

// OperatorFunctionName is the registry name of the function that applies op
// to a left operand of kind.
func OperatorFunctionName(kind Kind, op Operator) string {
	return kind.TypeName() + "_" + op.Name()
}

// MemberFunctionName is the registry name of a member function on kind.
func MemberFunctionName(kind Kind, name string) string {
	return "Get" + kind.TypeName() + "MemberFunction_" + name
}

// MemberPropertyName is the registry name of a member property getter on kind.
func MemberPropertyName(kind Kind, name string) string {
	return "Get" + kind.TypeName() + "MemberProperty_" + name
}

// Operation names each gated engine operation. The value doubles as the low
// byte of the operation's denial codes.
type Operation int

const (
	OpGetVariable Operation = iota + 1
	OpAskParentForVariable
	OpSetVariable
	OpRegisterFunction
	OpResolveFunction
	OpAskParentForFunction
	OpRunFunction
	OpRunMemberFunction
	OpGetMemberProperty
	OpRunOperator
	OpRunScope
	OpSubroutine
	OpSetParentVariable
	OpRegisterParentFunction
)

var operationNames = map[Operation]string{
	OpGetVariable:            "get_variable",
	OpAskParentForVariable:   "ask_parent_for_variable",
	OpSetVariable:            "set_variable",
	OpRegisterFunction:       "register_function",
	OpResolveFunction:        "resolve_function",
	OpAskParentForFunction:   "ask_parent_for_function",
	OpRunFunction:            "run_function",
	OpRunMemberFunction:      "run_member_function",
	OpGetMemberProperty:      "get_member_property",
	OpRunOperator:            "run_operator",
	OpRunScope:               "run_scope",
	OpSubroutine:             "subroutine",
	OpSetParentVariable:      "set_parent_variable",
	OpRegisterParentFunction: "register_parent_function",
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(op))
}

func (op Operation) constName() string { return strcase.ToScreamingSnake(op.String()) }
