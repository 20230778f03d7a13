package knolus

// Grant is the payload of a permitting verdict.
type Grant struct{}

// Verdict is a restriction's answer to one check. Success permits, Empty
// abstains and anything else denies.
type Verdict = Result[Grant]

func Permit() Verdict { return Success(Grant{}) }

// Pass abstains, leaving the decision to the next policy in a chain.
func Pass() Verdict { return Empty[Grant]() }

func Deny(format string, args ...any) Verdict {
	return Fail[Grant](PolicyDenied, format, args...)
}

// DenyCode denies with a specific code. Limit codes are surfaced to the
// caller unchanged instead of being wrapped in an operation denial.
func DenyCode(code Code, format string, args ...any) Verdict {
	return Fail[Grant](code, format, args...)
}

// Restriction gates every operation the engine performs. Each operation is
// checked twice: a Can* method before it runs and a ShouldTake* method on
// what it produced, before that result is used.
type Restriction interface {
	CanGetVariable(c *Context, name string) Verdict
	ShouldTakeVariable(c *Context, name string, value Value) Verdict
	// CanAskParentForVariable is asked of the parent's restriction.
	CanAskParentForVariable(child, parent *Context, name string) Verdict
	ShouldTakeParentVariable(child, parent *Context, name string, value Value) Verdict
	// CanSetVariable receives outer=true for writes that land outside c.
	CanSetVariable(c *Context, name string, outer bool, value Value) Verdict
	ShouldTakeAssignment(c *Context, name string, outer bool, value Value) Verdict

	CanRegisterFunction(c *Context, name string, fn *Function) Verdict
	ShouldTakeRegistration(c *Context, name string, fn *Function) Verdict
	CanResolveFunction(c *Context, name string, args []Argument) Verdict
	ShouldTakeFunction(c *Context, name string, fn *Function) Verdict
	// CanAskParentForFunction is asked of the parent's restriction.
	CanAskParentForFunction(child, parent *Context, name string) Verdict
	ShouldTakeParentFunction(child, parent *Context, name string, fn *Function) Verdict
	CanRunFunction(c *Context, fn *Function, args *BoundArguments) Verdict
	ShouldTakeFunctionResult(c *Context, fn *Function, result Value) Verdict

	CanRunMemberFunction(c *Context, receiver Value, name string, args []Argument) Verdict
	ShouldTakeMemberFunctionResult(c *Context, receiver Value, name string, result Value) Verdict
	CanGetMemberProperty(c *Context, receiver Value, name string) Verdict
	ShouldTakeMemberProperty(c *Context, receiver Value, name string, result Value) Verdict
	CanRunOperator(c *Context, op Operator, left, right Value) Verdict
	ShouldTakeOperatorResult(c *Context, op Operator, left, right, result Value) Verdict

	CanRunScope(c *Context, scope *Scope) Verdict
	ShouldTakeScopeResult(c *Context, scope *Scope, result ScopeResult) Verdict

	// CanVisit and ShouldTakeVisit gate the document decoder.
	CanVisit(node NodeKind) Verdict
	ShouldTakeVisit(node NodeKind, produced any) Verdict

	// CreateSubroutineRestrictions derives the restriction a function body
	// runs under. An Empty result keeps the caller's restriction.
	CreateSubroutineRestrictions(c *Context, fn *Function, args *BoundArguments) Result[Restriction]
}

// Uniform answers every check with one verdict.
type Uniform struct {
	verdict Verdict
}

// Permissive allows everything.
func Permissive() Uniform { return Uniform{verdict: Permit()} }

// DenyAll rejects everything.
func DenyAll() Uniform { return Uniform{verdict: Deny("denied by policy")} }

func (u Uniform) CanGetVariable(*Context, string) Verdict                 { return u.verdict }
func (u Uniform) ShouldTakeVariable(*Context, string, Value) Verdict      { return u.verdict }
func (u Uniform) CanAskParentForVariable(_, _ *Context, _ string) Verdict { return u.verdict }
func (u Uniform) CanSetVariable(*Context, string, bool, Value) Verdict    { return u.verdict }
func (u Uniform) ShouldTakeAssignment(*Context, string, bool, Value) Verdict {
	return u.verdict
}
func (u Uniform) ShouldTakeParentVariable(_, _ *Context, _ string, _ Value) Verdict {
	return u.verdict
}
func (u Uniform) CanRegisterFunction(*Context, string, *Function) Verdict    { return u.verdict }
func (u Uniform) ShouldTakeRegistration(*Context, string, *Function) Verdict { return u.verdict }
func (u Uniform) CanResolveFunction(*Context, string, []Argument) Verdict    { return u.verdict }
func (u Uniform) ShouldTakeFunction(*Context, string, *Function) Verdict     { return u.verdict }
func (u Uniform) CanAskParentForFunction(_, _ *Context, _ string) Verdict    { return u.verdict }
func (u Uniform) ShouldTakeParentFunction(_, _ *Context, _ string, _ *Function) Verdict {
	return u.verdict
}
func (u Uniform) CanRunFunction(*Context, *Function, *BoundArguments) Verdict { return u.verdict }
func (u Uniform) ShouldTakeFunctionResult(*Context, *Function, Value) Verdict { return u.verdict }
func (u Uniform) CanRunMemberFunction(*Context, Value, string, []Argument) Verdict {
	return u.verdict
}
func (u Uniform) ShouldTakeMemberFunctionResult(*Context, Value, string, Value) Verdict {
	return u.verdict
}
func (u Uniform) CanGetMemberProperty(*Context, Value, string) Verdict { return u.verdict }
func (u Uniform) ShouldTakeMemberProperty(*Context, Value, string, Value) Verdict {
	return u.verdict
}
func (u Uniform) CanRunOperator(*Context, Operator, Value, Value) Verdict { return u.verdict }
func (u Uniform) ShouldTakeOperatorResult(*Context, Operator, Value, Value, Value) Verdict {
	return u.verdict
}
func (u Uniform) CanRunScope(*Context, *Scope) Verdict                        { return u.verdict }
func (u Uniform) ShouldTakeScopeResult(*Context, *Scope, ScopeResult) Verdict { return u.verdict }
func (u Uniform) CanVisit(NodeKind) Verdict                                   { return u.verdict }
func (u Uniform) ShouldTakeVisit(NodeKind, any) Verdict                       { return u.verdict }
func (u Uniform) CreateSubroutineRestrictions(*Context, *Function, *BoundArguments) Result[Restriction] {
	return Empty[Restriction]()
}

// Abstain gives no verdict on anything. Partial policies embed it and
// override only the checks they care about.
type Abstain struct{}

func (Abstain) CanGetVariable(*Context, string) Verdict                 { return Pass() }
func (Abstain) ShouldTakeVariable(*Context, string, Value) Verdict      { return Pass() }
func (Abstain) CanAskParentForVariable(_, _ *Context, _ string) Verdict { return Pass() }
func (Abstain) ShouldTakeParentVariable(_, _ *Context, _ string, _ Value) Verdict {
	return Pass()
}
func (Abstain) CanSetVariable(*Context, string, bool, Value) Verdict       { return Pass() }
func (Abstain) ShouldTakeAssignment(*Context, string, bool, Value) Verdict { return Pass() }
func (Abstain) CanRegisterFunction(*Context, string, *Function) Verdict    { return Pass() }
func (Abstain) ShouldTakeRegistration(*Context, string, *Function) Verdict { return Pass() }
func (Abstain) CanResolveFunction(*Context, string, []Argument) Verdict    { return Pass() }
func (Abstain) ShouldTakeFunction(*Context, string, *Function) Verdict     { return Pass() }
func (Abstain) CanAskParentForFunction(_, _ *Context, _ string) Verdict    { return Pass() }
func (Abstain) ShouldTakeParentFunction(_, _ *Context, _ string, _ *Function) Verdict {
	return Pass()
}
func (Abstain) CanRunFunction(*Context, *Function, *BoundArguments) Verdict { return Pass() }
func (Abstain) ShouldTakeFunctionResult(*Context, *Function, Value) Verdict { return Pass() }
func (Abstain) CanRunMemberFunction(*Context, Value, string, []Argument) Verdict {
	return Pass()
}
func (Abstain) ShouldTakeMemberFunctionResult(*Context, Value, string, Value) Verdict {
	return Pass()
}
func (Abstain) CanGetMemberProperty(*Context, Value, string) Verdict { return Pass() }
func (Abstain) ShouldTakeMemberProperty(*Context, Value, string, Value) Verdict {
	return Pass()
}
func (Abstain) CanRunOperator(*Context, Operator, Value, Value) Verdict { return Pass() }
func (Abstain) ShouldTakeOperatorResult(*Context, Operator, Value, Value, Value) Verdict {
	return Pass()
}
func (Abstain) CanRunScope(*Context, *Scope) Verdict                        { return Pass() }
func (Abstain) ShouldTakeScopeResult(*Context, *Scope, ScopeResult) Verdict { return Pass() }
func (Abstain) CanVisit(NodeKind) Verdict                                   { return Pass() }
func (Abstain) ShouldTakeVisit(NodeKind, any) Verdict                       { return Pass() }
func (Abstain) CreateSubroutineRestrictions(*Context, *Function, *BoundArguments) Result[Restriction] {
	return Empty[Restriction]()
}

// permitted turns a verdict into the failure that aborts op, or nil when the
// operation may proceed. An abstention that reaches the engine is a denial.
func permitted(c *Context, op Operation, subject string, v Verdict) *Failure {
	return judge(c, op, OperationDenied(op), "%s %q denied", subject, v)
}

// taken is permitted for the result phase of op.
func taken(c *Context, op Operation, subject string, v Verdict) *Failure {
	return judge(c, op, ResultDenied(op), "result of %s %q denied", subject, v)
}

func judge(c *Context, op Operation, code Code, format, subject string, v Verdict) *Failure {
	if v.IsSuccess() {
		return nil
	}
	cause := v.Failure()
	if cause.Code().IsLimit() {
		c.logger().Debug("restriction limit reached", "operation", op.String(), "subject", subject, "code", cause.Code().String())
		return cause
	}
	if cause.IsEmpty() {
		cause = Errorf(NoVerdict, "no restriction gave a verdict")
	}
	c.logger().Debug("restriction denied operation", "operation", op.String(), "subject", subject, "code", code.String())
	return Wrapf(cause, code, format, op.String(), subject)
}
