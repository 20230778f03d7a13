package knolus

// Map transforms a successful value and propagates any failure unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.failure != nil {
		return Result[U]{failure: r.failure}
	}
	return Success(fn(r.value))
}

// FlatMap chains a fallible step onto a successful value.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.failure != nil {
		return Result[U]{failure: r.failure}
	}
	return fn(r.value)
}

// Recover lets a failure be replaced by another Result.
func Recover[T any](r Result[T], fn func(*Failure) Result[T]) Result[T] {
	if r.failure == nil {
		return r
	}
	return fn(r.failure)
}

// Filter turns a success that fails pred into Empty.
func (r Result[T]) Filter(pred func(T) bool) Result[T] {
	if r.failure != nil || pred(r.value) {
		return r
	}
	return Empty[T]()
}

func (r Result[T]) SwitchIfEmpty(fn func() Result[T]) Result[T] {
	if r.failure != nil && r.failure.kind == FailureEmpty {
		return fn()
	}
	return r
}

// DoOnFailure runs fn for any non-success Result and returns r unchanged, so
// callers can observe a failure on its way out.
func (r Result[T]) DoOnFailure(fn func(*Failure)) Result[T] {
	if r.failure != nil {
		fn(r.failure)
	}
	return r
}

// Wrap re-reports a failure under code, keeping the original as its cause.
func (r Result[T]) Wrap(code Code, format string, args ...any) Result[T] {
	if r.failure == nil {
		return r
	}
	return FailWith[T](r.failure, code, format, args...)
}
