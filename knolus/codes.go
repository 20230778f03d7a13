package knolus

import "fmt"

// Code is a machine-readable failure code. The high byte names the subsystem
// that produced the failure so callers can branch without matching messages.
type Code int

const (
	CodeNone Code = 0

	// Resolution failures.
	UndeclaredVariable Code = 0x0100
	FunctionNotFound   Code = 0x0101
	PropertyNotFound   Code = 0x0102

	// Binding failures.
	MissingParameter  Code = 0x0200
	InvalidSubstitute Code = 0x0201
	TypeMismatch      Code = 0x0202
	NotInvocable      Code = 0x0203
	InvalidParameter  Code = 0x0204

	// Format and coercion failures.
	FormatError    Code = 0x0300
	CoercionFailed Code = 0x0301
	DivisionByZero Code = 0x0302

	// Execution failures.
	ScopeLineFailed Code = 0x0400
	HostFault       Code = 0x0401
	Cancelled       Code = 0x0402
	InvalidNode     Code = 0x0403
	FunctionFailed  Code = 0x0404
	PolicyDenied    Code = 0x0405
	NoVerdict       Code = 0x0406

	operationDeniedBase Code = 0x1D00
	visitDeniedBase     Code = 0x1E00
	resultDeniedBase    Code = 0x1F00
	visitResultFlag     Code = 0x0080

	// Restriction limits.
	LimitMaxDepth     Code = 0x2000
	LimitMaxRecursion Code = 0x2001
	LimitMaxCalls     Code = 0x2002
	LimitMemoryQuota  Code = 0x2003
	LimitStepQuota    Code = 0x2004
)

var codeNames = map[Code]string{
	CodeNone:           "NONE",
	UndeclaredVariable: "UNDECLARED_VARIABLE",
	FunctionNotFound:   "FUNCTION_NOT_FOUND",
	PropertyNotFound:   "PROPERTY_NOT_FOUND",
	MissingParameter:   "MISSING_PARAMETER",
	InvalidSubstitute:  "INVALID_SUBSTITUTE",
	TypeMismatch:       "TYPE_MISMATCH",
	NotInvocable:       "NOT_INVOCABLE",
	InvalidParameter:   "INVALID_PARAMETER",
	FormatError:        "FORMAT_ERROR",
	CoercionFailed:     "COERCION_FAILED",
	DivisionByZero:     "DIVISION_BY_ZERO",
	ScopeLineFailed:    "SCOPE_LINE_FAILED",
	HostFault:          "HOST_FAULT",
	Cancelled:          "CANCELLED",
	InvalidNode:        "INVALID_NODE",
	FunctionFailed:     "FUNCTION_FAILED",
	PolicyDenied:       "POLICY_DENIED",
	NoVerdict:          "NO_VERDICT",
	LimitMaxDepth:      "LIMIT_MAX_DEPTH",
	LimitMaxRecursion:  "LIMIT_MAX_RECURSION",
	LimitMaxCalls:      "LIMIT_MAX_CALLS",
	LimitMemoryQuota:   "LIMIT_MEMORY_QUOTA",
	LimitStepQuota:     "LIMIT_STEP_QUOTA",
}

// OperationDenied is the code reported when a can* check rejects op.
func OperationDenied(op Operation) Code { return operationDeniedBase | Code(op) }

// ResultDenied is the code reported when a shouldTake* check rejects the result of op.
func ResultDenied(op Operation) Code { return resultDeniedBase | Code(op) }

// VisitDenied is the code reported when the document decoder may not visit a node kind.
func VisitDenied(kind NodeKind) Code { return visitDeniedBase | Code(kind) }

// VisitResultDenied is the code reported when a decoded node is rejected.
func VisitResultDenied(kind NodeKind) Code {
	return resultDeniedBase | visitResultFlag | Code(kind)
}

func (c Code) IsDenial() bool {
	switch c &^ 0xFF {
	case operationDeniedBase, visitDeniedBase, resultDeniedBase:
		return true
	}
	return c == PolicyDenied || c == NoVerdict
}

func (c Code) IsLimit() bool { return c&^0xFF == 0x2000 }

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	switch c &^ 0xFF {
	case operationDeniedBase:
		return fmt.Sprintf("%s_DENIED", Operation(c&0xFF).constName())
	case visitDeniedBase:
		return fmt.Sprintf("%s_VISIT_DENIED", NodeKind(c&0xFF).constName())
	case resultDeniedBase:
		if c&visitResultFlag != 0 {
			return fmt.Sprintf("%s_VISIT_RESULT_DENIED", NodeKind(c&0x7F).constName())
		}
		return fmt.Sprintf("%s_RESULT_DENIED", Operation(c&0xFF).constName())
	}
	return fmt.Sprintf("0x%04X", int(c))
}
