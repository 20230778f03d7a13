package knolus

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// FailureKind tags the non-success variants of a Result.
type FailureKind int

const (
	FailureEmpty FailureKind = iota
	FailureError
	FailureThrown
)

// EmptyReason preserves why an Empty result carries no value.
type EmptyReason int

const (
	EmptyAbsent EmptyReason = iota
	EmptyNull
	EmptyUndefined
)

func (k FailureKind) String() string {
	switch k {
	case FailureEmpty:
		return "empty"
	case FailureError:
		return "error"
	case FailureThrown:
		return "thrown"
	default:
		return fmt.Sprintf("failure(%d)", int(k))
	}
}

// Failure is the payload of every non-success Result. Failures are immutable
// and link to the failure they wrap, forming a cause chain from the proximate
// failure down to the triggering condition.
type Failure struct {
	kind    FailureKind
	reason  EmptyReason
	code    Code
	message string
	fault   error
	cause   *Failure
}

const (
	failureRenderHead = 8
	failureRenderTail = 8
)

func newEmpty(reason EmptyReason) *Failure {
	return &Failure{kind: FailureEmpty, reason: reason}
}

func newError(code Code, message string, cause *Failure) *Failure {
	return &Failure{kind: FailureError, code: code, message: message, cause: cause}
}

func newThrown(code Code, fault error, cause *Failure) *Failure {
	if fault == nil {
		fault = errors.New("unknown fault")
	}
	return &Failure{kind: FailureThrown, code: code, message: fault.Error(), fault: pkgerrors.WithStack(fault), cause: cause}
}

// Errorf builds an Error failure with the given code.
func Errorf(code Code, format string, args ...any) *Failure {
	return newError(code, fmt.Sprintf(format, args...), nil)
}

// Wrapf builds an Error failure that records cause as its predecessor.
func Wrapf(cause *Failure, code Code, format string, args ...any) *Failure {
	return newError(code, fmt.Sprintf(format, args...), cause)
}

func (f *Failure) Kind() FailureKind   { return f.kind }
func (f *Failure) Reason() EmptyReason { return f.reason }
func (f *Failure) Code() Code          { return f.code }
func (f *Failure) Message() string     { return f.message }
func (f *Failure) Cause() *Failure     { return f.cause }

// Fault returns the host error captured by a Thrown failure.
func (f *Failure) Fault() error { return f.fault }

func (f *Failure) IsEmpty() bool  { return f.kind == FailureEmpty }
func (f *Failure) IsError() bool  { return f.kind == FailureError }
func (f *Failure) IsThrown() bool { return f.kind == FailureThrown }

// Hierarchy walks the cause chain, proximate failure first.
func (f *Failure) Hierarchy() []*Failure {
	var chain []*Failure
	for cur := f; cur != nil; cur = cur.cause {
		chain = append(chain, cur)
	}
	return chain
}

// Root returns the failure that started the chain.
func (f *Failure) Root() *Failure {
	cur := f
	for cur.cause != nil {
		cur = cur.cause
	}
	return cur
}

// HasCode reports whether any failure in the chain carries code.
func (f *Failure) HasCode(code Code) bool {
	for cur := f; cur != nil; cur = cur.cause {
		if cur.code == code {
			return true
		}
	}
	return false
}

// Find returns the first failure in the chain carrying code.
func (f *Failure) Find(code Code) *Failure {
	for cur := f; cur != nil; cur = cur.cause {
		if cur.code == code {
			return cur
		}
	}
	return nil
}

func (f *Failure) headline() string {
	switch f.kind {
	case FailureEmpty:
		switch f.reason {
		case EmptyNull:
			return "empty (null)"
		case EmptyUndefined:
			return "empty (undefined)"
		default:
			return "empty"
		}
	case FailureThrown:
		return fmt.Sprintf("thrown: %s", f.message)
	default:
		return fmt.Sprintf("%s [%s]", f.message, f.code)
	}
}

func (f *Failure) Error() string {
	if f.cause == nil {
		return f.headline()
	}
	return f.headline() + ": " + f.cause.Error()
}

// Unwrap exposes both the wrapped failure and any host fault to errors.Is/As.
func (f *Failure) Unwrap() []error {
	var errs []error
	if f.cause != nil {
		errs = append(errs, f.cause)
	}
	if f.fault != nil {
		errs = append(errs, f.fault)
	}
	return errs
}

// FormatFailure renders the whole cause chain, one failure per line. Long
// chains keep their head and tail and elide the middle.
func FormatFailure(f *Failure) string {
	if f == nil {
		return ""
	}
	chain := f.Hierarchy()
	var b strings.Builder
	b.WriteString(chain[0].headline())
	render := func(item *Failure) {
		fmt.Fprintf(&b, "\n  caused by: %s", item.headline())
	}
	rest := chain[1:]
	if len(rest) <= failureRenderHead+failureRenderTail {
		for _, item := range rest {
			render(item)
		}
		return b.String()
	}
	for _, item := range rest[:failureRenderHead] {
		render(item)
	}
	omitted := len(rest) - (failureRenderHead + failureRenderTail)
	fmt.Fprintf(&b, "\n  ... %d causes omitted ...", omitted)
	for _, item := range rest[len(rest)-failureRenderTail:] {
		render(item)
	}
	return b.String()
}
