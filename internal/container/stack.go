// Package container holds small generic collection helpers shared by the
// grammar and automaton packages: a typed stack and a typed insertion-ordered
// set, both backed by github.com/emirpasic/gods so the bookkeeping containers
// used for item-set worklists and parsing stacks come from the same
// ecosystem library a sibling parser toolkit in this corpus reaches for.
package container

import "github.com/emirpasic/gods/stacks/arraystack"

// Stack is a LIFO stack of T. The zero value is ready to use.
type Stack[T any] struct {
	inner *arraystack.Stack
}

func (s *Stack[T]) ensure() {
	if s.inner == nil {
		s.inner = arraystack.New()
	}
}

// Push adds v to the top of the stack.
func (s *Stack[T]) Push(v T) {
	s.ensure()
	s.inner.Push(v)
}

// Pop removes and returns the top of the stack. Panics if the stack is
// empty; callers that drive a parser loop check Len/Empty first, as the
// grammar and table invariants guarantee the stack is non-empty whenever a
// pop is attempted.
func (s *Stack[T]) Pop() T {
	s.ensure()
	v, ok := s.inner.Pop()
	if !ok {
		panic("pop of empty stack")
	}
	return v.(T)
}

// Peek returns the top of the stack without removing it. Panics if empty.
func (s *Stack[T]) Peek() T {
	s.ensure()
	v, ok := s.inner.Peek()
	if !ok {
		panic("peek of empty stack")
	}
	return v.(T)
}

// Len returns the number of elements currently on the stack.
func (s *Stack[T]) Len() int {
	s.ensure()
	return s.inner.Size()
}

// Empty returns whether the stack has no elements.
func (s *Stack[T]) Empty() bool {
	return s.Len() == 0
}

// PushAll pushes each element of vs in order, so the last element of vs
// ends up on top.
func (s *Stack[T]) PushAll(vs []T) {
	for _, v := range vs {
		s.Push(v)
	}
}

// PushAllReverse pushes the elements of vs in reverse order, so the first
// element of vs ends up on top. This is the shape the LL(1) driver needs
// when pushing a production body so that the leftmost symbol is matched
// first (spec §4.5: "push its body onto the stack in reverse order").
func (s *Stack[T]) PushAllReverse(vs []T) {
	for i := len(vs) - 1; i >= 0; i-- {
		s.Push(vs[i])
	}
}

// Slice returns the stack's contents ordered from bottom to top.
func (s *Stack[T]) Slice() []T {
	s.ensure()
	vals := s.inner.Values() // gods returns top-to-bottom
	out := make([]T, len(vals))
	for i, v := range vals {
		out[len(vals)-1-i] = v.(T)
	}
	return out
}
