package knolus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddDoubleToCharArrayRoundsCodePoint(t *testing.T) {
	root := newTestRoot(t)
	chars := NewArray(KindChar, NewChar('a'), NewChar('b'))

	out := requireSuccess(t, chars.Array().Add(context.Background(), root, NewDouble(98.6)))
	arr := out.Array()
	require.Equal(t, KindChar, arr.Elem())
	require.Equal(t, 3, arr.Len())
	last, _ := arr.Index(2)
	require.True(t, NewChar('c').Equal(last))

	require.Equal(t, 2, chars.Array().Len(), "the original array is unchanged")
}

func TestAddSameElementArrayConcatenates(t *testing.T) {
	root := newTestRoot(t)
	left := NewArrayOf(NewInt(1), NewInt(2))
	right := NewArrayOf(NewInt(3), NewInt(4))

	out := requireSuccess(t, left.Array().Add(context.Background(), root, right))
	require.True(t, NewArrayOf(NewInt(1), NewInt(2), NewInt(3), NewInt(4)).Equal(out))
}

func TestAddCascade(t *testing.T) {
	ctx := context.Background()
	root := newTestRoot(t)
	requireSuccess(t, root.Set("n", false, NewInt(9)))

	tests := []struct {
		name  string
		array Value
		add   Value
		want  string
		elem  Kind
	}{
		{"exact", NewArrayOf(NewInt(1)), NewInt(2), "[1, 2]", KindInt},
		{"runtime value is flattened", NewArrayOf(NewInt(1)), ref("n"), "[1, 9]", KindInt},
		{"other element array adds each", NewArrayOf(NewString("a")), NewArrayOf(NewInt(1), NewInt(2)), "[a, 1, 2]", KindString},
		{"scalar is converted", NewArrayOf(NewString("a")), NewBoolean(true), "[a, true]", KindString},
		{"mixed takes anything", NewArray(KindAny, NewInt(1)), NewString("x"), "[1, x]", KindAny},
		{"nested array in mixed array is merged", NewArray(KindAny, NewInt(1)), NewArrayOf(NewInt(2)), "[1, 2]", KindAny},
		{"null widens", NewArrayOf(NewInt(1)), NewNull(), "[1, null]", KindAny},
		{"array element widens", NewArrayOf(NewInt(1)), NewArrayOf(NewArrayOf(NewInt(2))), "[1, [2]]", KindAny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := requireSuccess(t, tt.array.Array().Add(ctx, root, tt.add))
			require.Equal(t, tt.want, out.String())
			require.Equal(t, tt.elem, out.Array().Elem())
		})
	}
}

func TestDropCascade(t *testing.T) {
	ctx := context.Background()
	root := newTestRoot(t)
	requireSuccess(t, root.Set("two", false, NewInt(2)))
	ints := NewArrayOf(NewInt(1), NewInt(2), NewInt(3), NewInt(2))

	tests := []struct {
		name  string
		array Value
		drop  Value
		want  string
	}{
		{"exact removes first occurrence", ints, NewInt(2), "[1, 3, 2]"},
		{"array removes every contained element", ints, NewArrayOf(NewInt(2), NewInt(3)), "[1]"},
		{"runtime value is flattened first", ints, ref("two"), "[1, 3, 2]"},
		{"other kind is a count from the front", ints, NewDouble(2), "[3, 2]"},
		{"numeric string is a count", ints, NewString("3"), "[2]"},
		{"null drops nothing", ints, NewNull(), "[1, 2, 3, 2]"},
		{"count beyond length empties", ints, NewLong(10), "[]"},
		{"mixed array removes contained value", NewArray(KindAny, NewInt(1), NewString("x")), NewString("x"), "[1]"},
		{"mixed array counts otherwise", NewArray(KindAny, NewInt(1), NewString("x")), NewLong(1), "[x]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := requireSuccess(t, tt.array.Array().Drop(ctx, root, tt.drop))
			require.Equal(t, tt.want, out.String())
		})
	}
}

func TestArrayOperators(t *testing.T) {
	root := newTestRoot(t)
	plus := NewExpression(NewArrayOf(NewInt(1)), Op(OperatorPlus, NewInt(2)), Op(OperatorPlus, NewArrayOf(NewInt(3))))
	require.Equal(t, "[1, 2, 3]", flattenValue(t, root, plus).String())

	minus := NewExpression(NewArrayOf(NewInt(1), NewInt(2)), Op(OperatorMinus, NewInt(1)))
	require.Equal(t, "[2]", flattenValue(t, root, minus).String())
}
