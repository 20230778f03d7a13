package knolus

// Result is the outcome of every fallible engine operation. Only a successful
// Result carries a usable value; every other Result holds a *Failure.
type Result[T any] struct {
	value   T
	failure *Failure
}

func Success[T any](value T) Result[T] { return Result[T]{value: value} }

// Empty returns a Result with no value and no particular reason.
func Empty[T any]() Result[T] { return Result[T]{failure: newEmpty(EmptyAbsent)} }

func EmptyNullResult[T any]() Result[T] { return Result[T]{failure: newEmpty(EmptyNull)} }

func EmptyUndefinedResult[T any]() Result[T] {
	return Result[T]{failure: newEmpty(EmptyUndefined)}
}

// Fail returns an Error result with the given code.
func Fail[T any](code Code, format string, args ...any) Result[T] {
	return Result[T]{failure: Errorf(code, format, args...)}
}

// FailWith returns an Error result that wraps cause.
func FailWith[T any](cause *Failure, code Code, format string, args ...any) Result[T] {
	return Result[T]{failure: Wrapf(cause, code, format, args...)}
}

// Thrown captures a host fault. The fault keeps a stack trace and becomes the
// innermost cause of whatever wraps it.
func Thrown[T any](fault error, cause *Failure) Result[T] {
	return Result[T]{failure: newThrown(HostFault, fault, cause)}
}

// FromFailure re-types a failure so it can be propagated from a Result of a
// different value type. A nil failure yields an Empty result.
func FromFailure[T any](f *Failure) Result[T] {
	if f == nil {
		return Empty[T]()
	}
	return Result[T]{failure: f}
}

func (r Result[T]) IsSuccess() bool { return r.failure == nil }
func (r Result[T]) IsEmpty() bool   { return r.failure != nil && r.failure.kind == FailureEmpty }
func (r Result[T]) IsError() bool   { return r.failure != nil && r.failure.kind == FailureError }
func (r Result[T]) IsThrown() bool  { return r.failure != nil && r.failure.kind == FailureThrown }

// Failure returns nil for a successful Result.
func (r Result[T]) Failure() *Failure { return r.failure }

func (r Result[T]) Get() (T, bool) { return r.value, r.failure == nil }

// Value returns the carried value, or the zero value when r is not a success.
func (r Result[T]) Value() T { return r.value }

// Unpack bridges into plain Go error handling.
func (r Result[T]) Unpack() (T, error) {
	if r.failure != nil {
		var zero T
		return zero, r.failure
	}
	return r.value, nil
}

func (r Result[T]) GetOrElse(fallback T) T {
	if r.failure != nil {
		return fallback
	}
	return r.value
}

// Hierarchy returns the cause chain of a failed Result, or nil on success.
func (r Result[T]) Hierarchy() []*Failure {
	if r.failure == nil {
		return nil
	}
	return r.failure.Hierarchy()
}
