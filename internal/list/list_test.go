package list

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// values walks l front to back and returns the stored payloads.
func values[T any](a *Arena[T], l *List[T]) []T {
	var out []T
	for i := range l.All() {
		out = append(out, *a.At(i))
	}
	return out
}

func push[T any](a *Arena[T], l *List[T], v T) Index {
	i := a.Alloc(v)
	l.PushFront(i)
	return i
}

func TestList_PushFrontOrder(t *testing.T) {
	t.Parallel()

	a := NewArena[string](4)
	l := New(a)
	require.Equal(t, 0, l.Len())

	push(a, l, "a")
	push(a, l, "b")
	push(a, l, "c")

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"c", "b", "a"}, values(a, l))

	back, ok := l.Back()
	require.True(t, ok)
	assert.Equal(t, "a", *a.At(back))
	front, ok := l.Front()
	require.True(t, ok)
	assert.Equal(t, "c", *a.At(front))
}

func TestList_RemoveMiddleAndMoveToFront(t *testing.T) {
	t.Parallel()

	a := NewArena[int](0)
	l := New(a)
	one := push(a, l, 1)
	two := push(a, l, 2)
	push(a, l, 3)

	l.Remove(two)
	assert.Equal(t, []int{3, 1}, values(a, l))

	l.MoveToFront(one)
	assert.Equal(t, []int{1, 3}, values(a, l))

	// already at front: no-op
	l.MoveToFront(one)
	assert.Equal(t, []int{1, 3}, values(a, l))
	assert.Equal(t, 2, l.Len())
}

func TestList_RemoveBack(t *testing.T) {
	t.Parallel()

	a := NewArena[int](0)
	l := New(a)

	_, ok := l.RemoveBack()
	require.False(t, ok, "empty list must report no back")

	push(a, l, 1)
	push(a, l, 2)

	i, ok := l.RemoveBack()
	require.True(t, ok)
	assert.Equal(t, 1, *a.At(i))
	assert.Equal(t, 1, l.Len())

	i, ok = l.RemoveBack()
	require.True(t, ok)
	assert.Equal(t, 2, *a.At(i))

	_, ok = l.RemoveBack()
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
}

func TestList_BackwardAllowsRemovingYielded(t *testing.T) {
	t.Parallel()

	a := NewArena[int](0)
	l := New(a)
	for v := range 6 {
		push(a, l, v)
	}

	var seen []int
	for i := range l.Backward() {
		v := *a.At(i)
		seen = append(seen, v)
		if v%2 == 0 {
			l.Remove(i)
			a.Free(i)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, seen)
	assert.Equal(t, []int{5, 3, 1}, values(a, l))
}

func TestList_SharedArenaKeepsListsApart(t *testing.T) {
	t.Parallel()

	a := NewArena[string](0)
	l1, l2 := New(a), New(a)
	x := push(a, l1, "x")
	push(a, l2, "y")

	assert.Panics(t, func() { l2.Remove(x) }, "removing a node of another list must panic")
	assert.Panics(t, func() { l2.MoveToFront(x) })
	assert.Equal(t, []string{"x"}, values(a, l1))
	assert.Equal(t, []string{"y"}, values(a, l2))
}

func TestList_PreconditionViolationsPanic(t *testing.T) {
	t.Parallel()

	a := NewArena[int](0)
	l := New(a)
	i := push(a, l, 1)

	assert.Panics(t, func() { l.PushFront(i) }, "double link")
	l.Remove(i)
	assert.Panics(t, func() { l.Remove(i) }, "double remove")
	assert.Panics(t, func() { l.Remove(l.head) }, "sentinel remove")

	a.Free(i)
	assert.Panics(t, func() { a.Free(i) }, "double free")
	assert.Panics(t, func() { a.At(i) }, "use after free")
	assert.Panics(t, func() { a.At(Index(1 << 20)) }, "out of range")
}

func TestArena_ReusesFreedSlots(t *testing.T) {
	t.Parallel()

	a := NewArena[int](0)
	l := New(a)
	i := push(a, l, 1)
	before := a.Len()

	l.Remove(i)
	a.Free(i)
	j := a.Alloc(2)

	assert.Equal(t, i, j, "freed slot must be reused")
	assert.Equal(t, before, a.Len())
	assert.Equal(t, 2, *a.At(j))
}

func TestList_Release(t *testing.T) {
	t.Parallel()

	a := NewArena[int](0)
	l := New(a)
	i := push(a, l, 1)
	assert.Panics(t, func() { l.Release() }, "release of non-empty list")

	l.Remove(i)
	a.Free(i)
	l.Release()

	// Sentinel slots go back to the free list and get reused.
	n := a.Len()
	l2 := New(a)
	push(a, l2, 7)
	assert.Equal(t, n, a.Len())
	assert.True(t, slices.Equal([]int{7}, values(a, l2)))
}
