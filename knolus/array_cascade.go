package knolus

import "context"

// Add inserts v, reducing it to the array's element kind. In order: a
// mixed array takes anything; an exact element match is appended; an array
// of the same element kind is concatenated; a runtime value is flattened and
// retried; an array of another kind is added element by element; a scalar is
// converted; anything left widens the array to a mixed one.
func (a *Array) Add(ctx context.Context, c *Context, v Value) Result[Value] {
	return a.add(ctx, c, v, true)
}

func (a *Array) add(ctx context.Context, c *Context, v Value, merge bool) Result[Value] {
	if other := v.Array(); other != nil && merge {
		if other.elem == a.elem || a.elem == KindAny {
			return Success(a.append(other.Items()...))
		}
	}
	if a.elem == KindAny || v.kind == a.elem {
		return Success(a.append(v))
	}
	if needsEvaluation(v) {
		flat := Flatten(ctx, c, v)
		if !flat.IsSuccess() {
			return flat.Wrap(CoercionFailed, "cannot add %s to %s array", v, a.elem)
		}
		return a.add(ctx, c, flat.Value(), merge)
	}
	if other := v.Array(); other != nil && merge {
		cur := Success(newArrayValue(a.elem, a.vec()))
		for _, item := range other.Items() {
			cur = FlatMap(cur, func(acc Value) Result[Value] {
				return acc.Array().add(ctx, c, item, false)
			})
		}
		return cur
	}
	if v.kind != KindArray && !v.IsNothing() {
		if converted, ok := v.coerceTo(a.elem); ok {
			return Success(a.append(converted))
		}
	}
	return Success(a.widened(v))
}

// Drop removes v. In order: an exact element match removes its first
// occurrence; an array of the same element kind removes every element it
// contains; a runtime value is flattened and retried; anything else is read
// as a count of elements to remove from the front.
func (a *Array) Drop(ctx context.Context, c *Context, v Value) Result[Value] {
	if v.kind == a.elem || (a.elem == KindAny && !needsEvaluation(v) && a.contains(v)) {
		removed := false
		return Success(a.without(func(_ int, item Value) bool {
			if !removed && item.Equal(v) {
				removed = true
				return false
			}
			return true
		}))
	}
	if other := v.Array(); other != nil && (other.elem == a.elem || a.elem == KindAny) && !other.needsEvaluation() {
		drop := other.Items()
		return Success(a.without(func(_ int, item Value) bool {
			for _, d := range drop {
				if item.Equal(d) {
					return false
				}
			}
			return true
		}))
	}
	if needsEvaluation(v) {
		flat := Flatten(ctx, c, v)
		if !flat.IsSuccess() {
			return flat.Wrap(CoercionFailed, "cannot drop %s from %s array", v, a.elem)
		}
		return a.Drop(ctx, c, flat.Value())
	}
	if v.IsNothing() {
		return Success(a.dropFront(0))
	}
	return Success(a.dropFront(int(v.AsLong())))
}

func (a *Array) contains(v Value) bool {
	for _, item := range a.Items() {
		if item.Equal(v) {
			return true
		}
	}
	return false
}
