package knolus

import "slices"

type missingKind int

const (
	missingMandatory missingKind = iota
	missingOptional
	missingSubstitute
)

// MissingPolicy decides what an unbound parameter receives.
type MissingPolicy struct {
	kind missingKind
	def  Value
}

var (
	// Mandatory parameters fail the call when unbound.
	Mandatory = MissingPolicy{kind: missingMandatory}
	// Optional parameters are bound to Empty when unbound.
	Optional = MissingPolicy{kind: missingOptional}
)

// Substitute binds def when the parameter is unbound.
func Substitute(def Value) MissingPolicy {
	return MissingPolicy{kind: missingSubstitute, def: def}
}

func (m MissingPolicy) IsMandatory() bool  { return m.kind == missingMandatory }
func (m MissingPolicy) IsOptional() bool   { return m.kind == missingOptional }
func (m MissingPolicy) IsSubstitute() bool { return m.kind == missingSubstitute }

// Default returns the substitute value, if any.
func (m MissingPolicy) Default() (Value, bool) {
	return m.def, m.kind == missingSubstitute
}

func (m MissingPolicy) String() string {
	switch m.kind {
	case missingOptional:
		return "optional"
	case missingSubstitute:
		return "substitute(" + m.def.String() + ")"
	default:
		return "mandatory"
	}
}

// Parameter describes one declared function parameter. Type is the required
// value kind; TypeName, when set, names the kind instead and is resolved at
// registration.
type Parameter struct {
	Name     string
	Aliases  []string
	Type     Kind
	TypeName string
	Missing  MissingPolicy
}

func NewParameter(name string, kind Kind, missing MissingPolicy, aliases ...string) *Parameter {
	return &Parameter{Name: name, Aliases: aliases, Type: kind, Missing: missing}
}

// Matches reports whether name refers to p by its name or one of its aliases.
func (p *Parameter) Matches(name string) bool {
	key := Sanitize(name)
	if Sanitize(p.Name) == key {
		return true
	}
	return slices.ContainsFunc(p.Aliases, func(alias string) bool { return Sanitize(alias) == key })
}

// kind resolves the required kind, preferring a TypeName when one is set.
func (p *Parameter) kind() (Kind, bool) {
	if p.TypeName == "" {
		return p.Type, true
	}
	return KindFromName(p.TypeName)
}

// Accepts reports whether v satisfies the parameter's type. Values still
// awaiting evaluation are accepted; they are checked again once flattened.
func (p *Parameter) Accepts(v Value) bool {
	kind, ok := p.kind()
	if !ok {
		return false
	}
	if v.kind.IsRuntime() || v.kind == KindLazyString {
		return true
	}
	return assignable(kind, v.kind)
}

// validate checks the declaration itself. A substitute must satisfy the
// declared type.
func (p *Parameter) validate(function string) *Failure {
	if Sanitize(p.Name) == "" {
		return Errorf(InvalidParameter, "function %s declares a parameter without a name", function)
	}
	kind, ok := p.kind()
	if !ok {
		return Errorf(InvalidParameter, "parameter %s of %s has unknown type %q", p.Name, function, p.TypeName)
	}
	if def, ok := p.Missing.Default(); ok && !assignable(kind, def.kind) && !def.kind.IsRuntime() {
		return Errorf(InvalidSubstitute, "default %s of parameter %s of %s is %s, expected %s", def, p.Name, function, def.kind, kind)
	}
	return nil
}

func (p *Parameter) String() string {
	kind, _ := p.kind()
	s := p.Name + ": " + kind.String()
	if !p.Missing.IsMandatory() {
		s += " (" + p.Missing.String() + ")"
	}
	return s
}
