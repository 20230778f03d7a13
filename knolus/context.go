package knolus

import (
	"log/slog"
	"maps"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// VariableValue is a stored variable. A lazy variable holds an unevaluated
// value that is evaluated again on every read; a stable one holds a
// concrete value.
type VariableValue struct {
	value Value
	lazy  bool
}

func Stable(v Value) VariableValue { return VariableValue{value: v} }
func Lazy(v Value) VariableValue   { return VariableValue{value: v, lazy: true} }

func (vv VariableValue) Value() Value { return vv.value }
func (vv VariableValue) IsLazy() bool { return vv.lazy }

// Context is one scope of a run: its variables, functions, the restriction
// that gates them and a link to the enclosing scope. A Context is not safe
// for concurrent use.
type Context struct {
	parent       *Context
	variables    map[string]VariableValue
	functions    map[string][]*Function
	restrictions Restriction
	depth        int
	recursion    map[*Function]int
	state        *runState
}

// NewContext creates a child of parent, or a root when parent is nil. A nil
// restriction inherits the parent's, and a root without one is permissive.
func NewContext(parent *Context, restrictions Restriction) *Context {
	c := &Context{
		parent:    parent,
		variables: make(map[string]VariableValue),
		functions: make(map[string][]*Function),
	}
	if parent != nil {
		c.depth = parent.depth
		c.recursion = parent.recursion
		c.state = parent.state
		if restrictions == nil {
			restrictions = parent.restrictions
		}
	} else {
		c.state = newRunState(0, nil)
	}
	if restrictions == nil {
		restrictions = Permissive()
	}
	c.restrictions = restrictions
	return c
}

// newFrame creates the context a function body runs in. Lookups go through
// base while depth and recursion counts continue from the caller.
func newFrame(base, caller *Context, fn *Function, restrictions Restriction) *Context {
	frame := NewContext(base, restrictions)
	frame.depth = caller.depth + 1
	frame.recursion = maps.Clone(caller.recursion)
	if frame.recursion == nil {
		frame.recursion = make(map[*Function]int)
	}
	frame.recursion[fn]++
	frame.state = caller.state
	return frame
}

func (c *Context) Parent() *Context { return c.parent }

func (c *Context) Root() *Context {
	cur := c
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

func (c *Context) Restrictions() Restriction { return c.restrictions }

// Depth is the number of function frames between c and the run's root.
func (c *Context) Depth() int { return c.depth }

// RecursionCount is how many frames of fn are active at c.
func (c *Context) RecursionCount(fn *Function) int { return c.recursion[fn] }

// Steps is the number of steps the run has taken so far.
func (c *Context) Steps() int { return c.state.steps }

// Calls is the number of functions the run has invoked so far.
func (c *Context) Calls() int { return c.state.calls }

func (c *Context) logger() *slog.Logger { return c.state.logger }

// SetLogger replaces the logger of c's run.
func (c *Context) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = discardLogger
	}
	c.state.logger = logger
}

// SetStepQuota bounds the steps of c's run. Zero means unlimited.
func (c *Context) SetStepQuota(quota int) { c.state.quota = quota }

// Get looks name up here and then in each ancestor. The stored value is
// returned as is, so a lazy variable yields its unevaluated value.
func (c *Context) Get(name string) Result[Value] {
	key := Sanitize(name)
	var path []*Context
	for cur := c; ; cur = cur.parent {
		if failure := permitted(cur, OpGetVariable, name, cur.restrictions.CanGetVariable(cur, name)); failure != nil {
			return FromFailure[Value](failure)
		}
		path = append(path, cur)
		if stored, ok := cur.variables[key]; ok {
			return c.takeVariable(path, name, stored.value)
		}
		if cur.parent == nil {
			return Fail[Value](UndeclaredVariable, "undeclared variable %q%s", name, suggest(name, c.variableNames()))
		}
		ask := cur.parent.restrictions.CanAskParentForVariable(cur, cur.parent, name)
		if failure := permitted(cur, OpAskParentForVariable, name, ask); failure != nil {
			return FromFailure[Value](failure)
		}
	}
}

// takeVariable runs the result checks from the owning context back down the
// lookup path to where the lookup started.
func (c *Context) takeVariable(path []*Context, name string, value Value) Result[Value] {
	owner := path[len(path)-1]
	if failure := taken(owner, OpGetVariable, name, owner.restrictions.ShouldTakeVariable(owner, name, value)); failure != nil {
		return FromFailure[Value](failure)
	}
	for i := len(path) - 2; i >= 0; i-- {
		child := path[i]
		v := child.restrictions.ShouldTakeParentVariable(child, child.parent, name, value)
		if failure := taken(child, OpAskParentForVariable, name, v); failure != nil {
			return FromFailure[Value](failure)
		}
	}
	return Success(value)
}

// Contains reports whether name is declared here or in an ancestor the
// lookup may reach. A denied lookup reports false.
func (c *Context) Contains(name string) bool {
	key := Sanitize(name)
	for cur := c; ; cur = cur.parent {
		if !cur.restrictions.CanGetVariable(cur, name).IsSuccess() {
			return false
		}
		if _, ok := cur.variables[key]; ok {
			return true
		}
		if cur.parent == nil {
			return false
		}
		if !cur.parent.restrictions.CanAskParentForVariable(cur, cur.parent, name).IsSuccess() {
			return false
		}
	}
}

// ContainsLocal reports whether name is declared in c itself and c may read
// it.
func (c *Context) ContainsLocal(name string) bool {
	if !c.restrictions.CanGetVariable(c, name).IsSuccess() {
		return false
	}
	_, ok := c.variables[Sanitize(name)]
	return ok
}

func (c *Context) owner(key string) *Context {
	for cur := c; cur != nil; cur = cur.parent {
		if _, ok := cur.variables[key]; ok {
			return cur
		}
	}
	return nil
}

// Set declares name in c, or in the root when global is true. Values that
// still need evaluation are stored lazily.
func (c *Context) Set(name string, global bool, value Value) Result[Value] {
	target := c
	if global {
		target = c.Root()
	}
	return c.store(target, name, storedValue(value))
}

// Assign overwrites an existing variable where it is declared, or in the
// root when global is true.
func (c *Context) Assign(name string, global bool, value Value) Result[Value] {
	target := c.owner(Sanitize(name))
	if target == nil {
		return Fail[Value](UndeclaredVariable, "cannot assign to undeclared variable %q%s", name, suggest(name, c.variableNames()))
	}
	if global {
		target = c.Root()
	}
	return c.store(target, name, storedValue(value))
}

func storedValue(value Value) VariableValue {
	if needsEvaluation(value) {
		return Lazy(value)
	}
	return Stable(value)
}

func (c *Context) store(target *Context, name string, stored VariableValue) Result[Value] {
	outer := target != c
	if failure := permitted(c, OpSetVariable, name, c.restrictions.CanSetVariable(c, name, outer, stored.value)); failure != nil {
		return FromFailure[Value](failure)
	}
	// Every context between c and target must also allow the write.
	for cur := c.parent; outer && cur != nil; cur = cur.parent {
		v := cur.restrictions.CanSetVariable(cur, name, cur != target, stored.value)
		if failure := permitted(cur, OpSetParentVariable, name, v); failure != nil {
			return FromFailure[Value](failure)
		}
		if cur == target {
			break
		}
	}
	if failure := taken(c, OpSetVariable, name, c.restrictions.ShouldTakeAssignment(c, name, outer, stored.value)); failure != nil {
		return FromFailure[Value](failure)
	}
	target.variables[Sanitize(name)] = stored
	return Success(stored.value)
}

// Variables copies the variables declared in c itself.
func (c *Context) Variables() map[string]VariableValue {
	return maps.Clone(c.variables)
}

// variableNames lists every sanitized variable name visible from c.
func (c *Context) variableNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for cur := c; cur != nil; cur = cur.parent {
		for name := range cur.variables {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// suggest renders a "did you mean" hint for name from candidates.
func suggest(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(Sanitize(name), candidates)
	if len(ranks) == 0 {
		ranks = fuzzy.RankFindFold(name, candidates)
	}
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	best := make([]string, 0, 3)
	for _, rank := range ranks {
		if len(best) == cap(best) {
			break
		}
		best = append(best, rank.Target)
	}
	hint := "; did you mean "
	for i, target := range best {
		if i > 0 {
			hint += ", "
		}
		hint += "\"" + target + "\""
	}
	return hint + "?"
}
