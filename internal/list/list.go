package list

import (
	"fmt"
	"iter"
)

// List is an ordered sequence bounded by two sentinels.
// Front (next to head) is the most recent position, back (next to tail)
// the least recent one.
type List[T any] struct {
	a    *Arena[T]
	head Index
	tail Index
	n    int
}

// New allocates the sentinels of an empty list in a.
func New[T any](a *Arena[T]) *List[T] {
	var zero T
	l := &List[T]{a: a}
	l.head = a.Alloc(zero)
	l.tail = a.Alloc(zero)

	h, t := &a.slots[l.head], &a.slots[l.tail]
	h.next, h.owner = l.tail, l.head
	t.prev, t.owner = l.head, l.head
	return l
}

// Len returns the number of non-sentinel nodes.
func (l *List[T]) Len() int { return l.n }

// PushFront splices the detached slot i right after the head sentinel.
func (l *List[T]) PushFront(i Index) {
	s := l.a.slot(i)
	if s.owner != None {
		panic(fmt.Sprintf("list: PushFront of slot %d that is already linked", i))
	}
	first := l.a.slots[l.head].next
	s.prev, s.next, s.owner = l.head, first, l.head
	l.a.slots[l.head].next = i
	l.a.slots[first].prev = i
	l.n++
}

// Remove detaches slot i and clears its links. The slot stays allocated.
// Removing a slot that is not linked into l is an invariant break and panics.
func (l *List[T]) Remove(i Index) {
	s := l.linked(i)
	l.a.slots[s.prev].next = s.next
	l.a.slots[s.next].prev = s.prev
	s.prev, s.next, s.owner = None, None, None
	l.n--
}

// RemoveBack detaches and returns the node next to the tail sentinel.
// It reports false when only the sentinels remain.
func (l *List[T]) RemoveBack() (Index, bool) {
	i, ok := l.Back()
	if !ok {
		return None, false
	}
	l.Remove(i)
	return i, true
}

// MoveToFront is Remove followed by PushFront.
func (l *List[T]) MoveToFront(i Index) {
	s := l.linked(i)
	if s.prev == l.head {
		return
	}
	l.Remove(i)
	l.PushFront(i)
}

// Front returns the node next to the head sentinel.
func (l *List[T]) Front() (Index, bool) {
	if l.n == 0 {
		return None, false
	}
	return l.a.slots[l.head].next, true
}

// Back returns the node next to the tail sentinel.
func (l *List[T]) Back() (Index, bool) {
	if l.n == 0 {
		return None, false
	}
	return l.a.slots[l.tail].prev, true
}

// All yields nodes front to back. The yielded node may be removed
// (and freed) by the loop body; other mutations end in undefined order.
func (l *List[T]) All() iter.Seq[Index] {
	return func(yield func(Index) bool) {
		for i := l.a.slots[l.head].next; i != l.tail; {
			next := l.a.slots[i].next
			if !yield(i) {
				return
			}
			i = next
		}
	}
}

// Backward yields nodes back to front with the same removal guarantee as All.
func (l *List[T]) Backward() iter.Seq[Index] {
	return func(yield func(Index) bool) {
		for i := l.a.slots[l.tail].prev; i != l.head; {
			prev := l.a.slots[i].prev
			if !yield(i) {
				return
			}
			i = prev
		}
	}
}

// Release frees the sentinels of an empty list. l must not be used afterwards.
func (l *List[T]) Release() {
	if l.n != 0 {
		panic(fmt.Sprintf("list: Release of a list with %d nodes", l.n))
	}
	for _, i := range [2]Index{l.head, l.tail} {
		s := l.a.slot(i)
		s.prev, s.next, s.owner = None, None, None
		l.a.Free(i)
	}
	l.head, l.tail = None, None
}

// linked returns slot i after checking that it is a real node of l.
func (l *List[T]) linked(i Index) *slot[T] {
	if i == l.head || i == l.tail {
		panic(fmt.Sprintf("list: slot %d is a sentinel", i))
	}
	s := l.a.slot(i)
	if s.owner != l.head {
		panic(fmt.Sprintf("list: slot %d is not linked in this list", i))
	}
	return s
}
