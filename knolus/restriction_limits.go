package knolus

import (
	"fmt"
	"path"
)

// RecursionLimiter bounds the depth of nested function calls and how often
// one function may appear on the call stack. Zero disables a limit.
type RecursionLimiter struct {
	Abstain
	MaxDepth     int
	MaxRecursion int
	// HideLimits keeps the configured limits out of failure messages.
	HideLimits bool
}

func (l RecursionLimiter) CanRunFunction(c *Context, fn *Function, _ *BoundArguments) Verdict {
	if l.MaxDepth > 0 && c.Depth()+1 > l.MaxDepth {
		if l.HideLimits {
			return DenyCode(LimitMaxDepth, "recursion depth exceeded")
		}
		return DenyCode(LimitMaxDepth, "recursion depth exceeded (limit %d)", l.MaxDepth)
	}
	if l.MaxRecursion > 0 && c.RecursionCount(fn)+1 > l.MaxRecursion {
		if l.HideLimits {
			return DenyCode(LimitMaxRecursion, "%s recursed too deeply", fn.Name)
		}
		return DenyCode(LimitMaxRecursion, "%s recursed too deeply (limit %d)", fn.Name, l.MaxRecursion)
	}
	return Pass()
}

// CallBudget bounds the number of function calls in one run.
type CallBudget struct {
	Abstain
	MaxCalls int
}

func (b CallBudget) CanRunFunction(c *Context, fn *Function, _ *BoundArguments) Verdict {
	if b.MaxCalls > 0 && c.Calls() >= b.MaxCalls {
		return DenyCode(LimitMaxCalls, "call budget exhausted at %s (%d calls)", fn.Name, b.MaxCalls)
	}
	return Pass()
}

// MemoryQuota rejects a write once the variables visible from the writing
// context would exceed Bytes.
type MemoryQuota struct {
	Abstain
	Bytes int
}

func (q MemoryQuota) ShouldTakeAssignment(c *Context, _ string, _ bool, value Value) Verdict {
	if q.Bytes <= 0 {
		return Pass()
	}
	if used := EstimateMemory(c, value); used > q.Bytes {
		return DenyCode(LimitMemoryQuota, "memory quota exceeded (%d bytes)", q.Bytes)
	}
	return Pass()
}

// ReadOnlyGlobals rejects writes that land outside the writing context:
// global declarations and assignments to variables of enclosing scopes.
type ReadOnlyGlobals struct {
	Abstain
}

func (ReadOnlyGlobals) CanSetVariable(_ *Context, name string, outer bool, _ Value) Verdict {
	if outer {
		return Deny("%s is read-only here", name)
	}
	return Pass()
}

// FunctionFilter allows or denies function calls by name. Patterns use
// path.Match syntax against sanitized names. Deny patterns win; with any
// allow pattern set, unmatched names are denied.
type FunctionFilter struct {
	Abstain
	Allow []string
	Deny  []string
}

func (f FunctionFilter) CanRunFunction(_ *Context, fn *Function, _ *BoundArguments) Verdict {
	if fn.declaration != nil || isMangled(fn.Name) {
		return Pass()
	}
	name := Sanitize(fn.Name)
	for _, pattern := range f.Deny {
		if functionPatternMatch(pattern, name) {
			return Deny("function %s is denied by pattern %q", fn.Name, pattern)
		}
	}
	if len(f.Allow) == 0 {
		return Pass()
	}
	for _, pattern := range f.Allow {
		if functionPatternMatch(pattern, name) {
			return Pass()
		}
	}
	return Deny("function %s is not in the allow list", fn.Name)
}

func functionPatternMatch(pattern, name string) bool {
	matched, err := path.Match(Sanitize(pattern), name)
	return err == nil && matched
}

func validateFunctionPatterns(patterns []string, label string) error {
	for _, raw := range patterns {
		pattern := Sanitize(raw)
		if pattern == "" {
			return fmt.Errorf("knolus: function %s-list pattern cannot be empty", label)
		}
		if _, err := path.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("knolus: invalid function %s-list pattern %q: %w", label, raw, err)
		}
	}
	return nil
}

// FunctionScoped abstains at the top level and applies Policy inside every
// function body.
type FunctionScoped struct {
	Abstain
	Policy Restriction
}

func (s FunctionScoped) CreateSubroutineRestrictions(*Context, *Function, *BoundArguments) Result[Restriction] {
	if s.Policy == nil {
		return Empty[Restriction]()
	}
	return Success(s.Policy)
}
