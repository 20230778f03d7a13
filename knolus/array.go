package knolus

import "src.elv.sh/pkg/persistent/vector"

// Elem is the element kind every item satisfies, or KindAny for a mixed array.
func (a *Array) Elem() Kind { return a.elem }

func (a *Array) Len() int {
	if a == nil || a.items == nil {
		return 0
	}
	return a.items.Len()
}

func (a *Array) Index(i int) (Value, bool) {
	if i < 0 || i >= a.Len() {
		return Value{}, false
	}
	item, ok := a.items.Index(i)
	if !ok {
		return Value{}, false
	}
	return item.(Value), true
}

// Items copies the elements out in order.
func (a *Array) Items() []Value {
	out := make([]Value, 0, a.Len())
	if a.Len() == 0 {
		return out
	}
	for it := a.items.Iterator(); it.HasElem(); it.Next() {
		out = append(out, it.Elem().(Value))
	}
	return out
}

func (a *Array) vec() vector.Vector {
	if a == nil || a.items == nil {
		return vector.Empty
	}
	return a.items
}

// needsEvaluation reports whether any element still refers to the context.
func (a *Array) needsEvaluation() bool {
	for _, item := range a.Items() {
		if needsEvaluation(item) {
			return true
		}
	}
	return false
}

func (a *Array) append(items ...Value) Value {
	vec := a.vec()
	for _, item := range items {
		vec = vec.Conj(item)
	}
	return newArrayValue(a.elem, vec)
}

// widened returns a mixed copy of a with items appended.
func (a *Array) widened(items ...Value) Value {
	vec := a.vec()
	for _, item := range items {
		vec = vec.Conj(item)
	}
	return newArrayValue(KindAny, vec)
}

// without rebuilds the array keeping only the items for which keep is true.
func (a *Array) without(keep func(i int, item Value) bool) Value {
	vec := vector.Empty
	for i, item := range a.Items() {
		if keep(i, item) {
			vec = vec.Conj(item)
		}
	}
	return newArrayValue(a.elem, vec)
}

// dropFront removes up to n leading elements.
func (a *Array) dropFront(n int) Value {
	if n <= 0 {
		return newArrayValue(a.elem, a.vec())
	}
	if n >= a.Len() {
		return newArrayValue(a.elem, vector.Empty)
	}
	return newArrayValue(a.elem, a.vec().SubVector(n, a.Len()))
}
