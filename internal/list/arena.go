// Package list implements an arena-backed doubly linked list with sentinels.
//
// Nodes live in a growable slab (Arena) and are addressed by integer handles
// (Index) instead of pointers. Several lists may share one arena; each list
// owns two permanent sentinel slots (head, tail) that never carry an entry.
// A lookup index outside the list (e.g. map[K]Index) holds non-owning handles.
//
// None of the types here are safe for concurrent use.
package list

import "fmt"

// Index addresses a slot in an Arena.
type Index int

// None is the "no slot" handle.
const None Index = -1

// freed marks a slot that sits on the arena free list.
const freed Index = -2

type slot[T any] struct {
	val T

	prev Index
	next Index

	// owner is the head sentinel of the list the slot is linked into,
	// None while detached, freed while on the free list.
	owner Index
}

// Arena is a slab of slots with an intrusive free list threaded
// through the next links of released slots.
type Arena[T any] struct {
	slots []slot[T]
	free  Index
}

// NewArena returns an arena with room for capacity slots before growing.
func NewArena[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena[T]{slots: make([]slot[T], 0, capacity), free: None}
}

// Alloc stores v in a detached slot and returns its handle.
// Pointers obtained from At before Alloc may be invalidated by growth.
func (a *Arena[T]) Alloc(v T) Index {
	if i := a.free; i != None {
		s := &a.slots[i]
		a.free = s.next
		*s = slot[T]{val: v, prev: None, next: None, owner: None}
		return i
	}
	a.slots = append(a.slots, slot[T]{val: v, prev: None, next: None, owner: None})
	return Index(len(a.slots) - 1)
}

// Free returns a detached slot to the free list and drops its value.
func (a *Arena[T]) Free(i Index) {
	s := a.slot(i)
	if s.owner != None {
		panic(fmt.Sprintf("list: Free of slot %d that is still linked", i))
	}
	*s = slot[T]{prev: None, next: a.free, owner: freed}
	a.free = i
}

// At returns a pointer to the value stored in slot i.
func (a *Arena[T]) At(i Index) *T { return &a.slot(i).val }

// Len returns the number of slots ever allocated (live, sentinel or free).
func (a *Arena[T]) Len() int { return len(a.slots) }

// Reset drops every slot. Lists built on the arena must not be used afterwards.
func (a *Arena[T]) Reset() {
	clear(a.slots)
	a.slots = a.slots[:0]
	a.free = None
}

func (a *Arena[T]) slot(i Index) *slot[T] {
	if i < 0 || int(i) >= len(a.slots) {
		panic(fmt.Sprintf("list: slot %d out of range [0,%d)", i, len(a.slots)))
	}
	s := &a.slots[i]
	if s.owner == freed {
		panic(fmt.Sprintf("list: use of freed slot %d", i))
	}
	return s
}
