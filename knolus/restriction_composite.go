package knolus

// Composite asks its policies in order. The first one that permits or denies
// decides; when every policy abstains the fallback decides.
type Composite struct {
	fallback Restriction
	policies []Restriction
}

// Chain composes policies in front of fallback.
func Chain(fallback Restriction, policies ...Restriction) *Composite {
	if fallback == nil {
		fallback = Abstain{}
	}
	return &Composite{fallback: fallback, policies: append([]Restriction(nil), policies...)}
}

// Sandbox is a chain that permits whatever none of the policies rules on.
func Sandbox(policies ...Restriction) *Composite {
	return Chain(Permissive(), policies...)
}

func (p *Composite) Policies() []Restriction { return append([]Restriction(nil), p.policies...) }

func (p *Composite) decide(ask func(Restriction) Verdict) Verdict {
	for _, policy := range p.policies {
		if v := ask(policy); !v.IsEmpty() {
			return v
		}
	}
	return ask(p.fallback)
}

func (p *Composite) CanGetVariable(c *Context, name string) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanGetVariable(c, name) })
}

func (p *Composite) ShouldTakeVariable(c *Context, name string, value Value) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.ShouldTakeVariable(c, name, value) })
}

func (p *Composite) CanAskParentForVariable(child, parent *Context, name string) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanAskParentForVariable(child, parent, name) })
}

func (p *Composite) ShouldTakeParentVariable(child, parent *Context, name string, value Value) Verdict {
	return p.decide(func(r Restriction) Verdict {
		return r.ShouldTakeParentVariable(child, parent, name, value)
	})
}

func (p *Composite) CanSetVariable(c *Context, name string, outer bool, value Value) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanSetVariable(c, name, outer, value) })
}

func (p *Composite) ShouldTakeAssignment(c *Context, name string, outer bool, value Value) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.ShouldTakeAssignment(c, name, outer, value) })
}

func (p *Composite) CanRegisterFunction(c *Context, name string, fn *Function) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanRegisterFunction(c, name, fn) })
}

func (p *Composite) ShouldTakeRegistration(c *Context, name string, fn *Function) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.ShouldTakeRegistration(c, name, fn) })
}

func (p *Composite) CanResolveFunction(c *Context, name string, args []Argument) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanResolveFunction(c, name, args) })
}

func (p *Composite) ShouldTakeFunction(c *Context, name string, fn *Function) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.ShouldTakeFunction(c, name, fn) })
}

func (p *Composite) CanAskParentForFunction(child, parent *Context, name string) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanAskParentForFunction(child, parent, name) })
}

func (p *Composite) ShouldTakeParentFunction(child, parent *Context, name string, fn *Function) Verdict {
	return p.decide(func(r Restriction) Verdict {
		return r.ShouldTakeParentFunction(child, parent, name, fn)
	})
}

func (p *Composite) CanRunFunction(c *Context, fn *Function, args *BoundArguments) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanRunFunction(c, fn, args) })
}

func (p *Composite) ShouldTakeFunctionResult(c *Context, fn *Function, result Value) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.ShouldTakeFunctionResult(c, fn, result) })
}

func (p *Composite) CanRunMemberFunction(c *Context, receiver Value, name string, args []Argument) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanRunMemberFunction(c, receiver, name, args) })
}

func (p *Composite) ShouldTakeMemberFunctionResult(c *Context, receiver Value, name string, result Value) Verdict {
	return p.decide(func(r Restriction) Verdict {
		return r.ShouldTakeMemberFunctionResult(c, receiver, name, result)
	})
}

func (p *Composite) CanGetMemberProperty(c *Context, receiver Value, name string) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanGetMemberProperty(c, receiver, name) })
}

func (p *Composite) ShouldTakeMemberProperty(c *Context, receiver Value, name string, result Value) Verdict {
	return p.decide(func(r Restriction) Verdict {
		return r.ShouldTakeMemberProperty(c, receiver, name, result)
	})
}

func (p *Composite) CanRunOperator(c *Context, op Operator, left, right Value) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanRunOperator(c, op, left, right) })
}

func (p *Composite) ShouldTakeOperatorResult(c *Context, op Operator, left, right, result Value) Verdict {
	return p.decide(func(r Restriction) Verdict {
		return r.ShouldTakeOperatorResult(c, op, left, right, result)
	})
}

func (p *Composite) CanRunScope(c *Context, scope *Scope) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanRunScope(c, scope) })
}

func (p *Composite) ShouldTakeScopeResult(c *Context, scope *Scope, result ScopeResult) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.ShouldTakeScopeResult(c, scope, result) })
}

func (p *Composite) CanVisit(node NodeKind) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.CanVisit(node) })
}

func (p *Composite) ShouldTakeVisit(node NodeKind, produced any) Verdict {
	return p.decide(func(r Restriction) Verdict { return r.ShouldTakeVisit(node, produced) })
}

// CreateSubroutineRestrictions replaces each policy that derives a
// subroutine policy of its own and keeps the rest. It is Empty when no
// policy derived anything.
func (p *Composite) CreateSubroutineRestrictions(c *Context, fn *Function, args *BoundArguments) Result[Restriction] {
	derive := func(r Restriction) (Restriction, bool, *Failure) {
		res := r.CreateSubroutineRestrictions(c, fn, args)
		switch {
		case res.IsSuccess():
			return res.Value(), true, nil
		case res.IsEmpty():
			return r, false, nil
		default:
			return nil, false, res.Failure()
		}
	}

	changed := false
	next := &Composite{policies: make([]Restriction, len(p.policies))}
	for i, policy := range p.policies {
		derived, ok, failure := derive(policy)
		if failure != nil {
			return FromFailure[Restriction](failure)
		}
		changed = changed || ok
		next.policies[i] = derived
	}
	fallback, ok, failure := derive(p.fallback)
	if failure != nil {
		return FromFailure[Restriction](failure)
	}
	next.fallback = fallback
	if !changed && !ok {
		return Empty[Restriction]()
	}
	return Success[Restriction](next)
}
