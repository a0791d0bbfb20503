package grammar

import "github.com/M0ST4FA/parsix/internal/container"

// LLStack is the LL(1) driver's parsing stack (spec §3 "LL stack element"):
// a stack of production elements, the same tagged union used in a
// production body, so grammar symbols, synthesized records, and action
// records can all sit on it interchangeably.
type LLStack struct {
	inner container.Stack[ProductionElement]
}

// NewLLStack builds an LLStack seeded with the given elements, bottom to
// top (the last element given ends up on top).
func NewLLStack(elems ...ProductionElement) *LLStack {
	s := &LLStack{}
	s.inner.PushAll(elems)
	return s
}

// Push adds an element to the top of the stack.
func (s *LLStack) Push(e ProductionElement) { s.inner.Push(e) }

// PushBody pushes a production's body elements so that the first element is
// on top (spec §4.5: "push its body onto the stack in reverse order").
func (s *LLStack) PushBody(body []ProductionElement) { s.inner.PushAllReverse(body) }

// Pop removes and returns the top element.
func (s *LLStack) Pop() ProductionElement { return s.inner.Pop() }

// Peek returns the top element without removing it.
func (s *LLStack) Peek() ProductionElement { return s.inner.Peek() }

// Empty reports whether the stack has no elements.
func (s *LLStack) Empty() bool { return s.inner.Empty() }

// Len returns the number of elements on the stack.
func (s *LLStack) Len() int { return s.inner.Len() }

// States renders the stack's elements bottom to top as human-readable
// frames, for diagnostics (spec §7: "the stack state").
func (s *LLStack) States() []string {
	frames := s.inner.Slice()
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.String()
	}
	return out
}

// LRStackElement is a single frame of the LR driver's stack (spec §3 "LR
// stack element"): the automaton state, caller-defined semantic data
// threaded between reductions, and the token last consumed to reach this
// frame (used by shift frames; nil on goto frames produced by a reduce).
type LRStackElement struct {
	State     int
	Data      any
	LastToken Token
}

// LRStack is the LR driver's parsing stack of LRStackElements.
type LRStack struct {
	inner container.Stack[LRStackElement]
}

// NewLRStack builds an LRStack seeded with the start state (state 0, per
// spec §3: "state 0 is the start state").
func NewLRStack() *LRStack {
	s := &LRStack{}
	s.inner.Push(LRStackElement{State: 0})
	return s
}

// Push adds a frame to the top of the stack.
func (s *LRStack) Push(e LRStackElement) { s.inner.Push(e) }

// Pop removes and returns the top frame.
func (s *LRStack) Pop() LRStackElement { return s.inner.Pop() }

// Peek returns the top frame without removing it.
func (s *LRStack) Peek() LRStackElement { return s.inner.Peek() }

// Len returns the number of frames on the stack.
func (s *LRStack) Len() int { return s.inner.Len() }

// Frames returns a bottom-to-top snapshot of the stack's elements, letting
// a reduce action read the semantic data of the production's body symbols
// (still on the stack when the action runs, spec §4.6: the driver pops
// them only after invoking the action) without itself popping anything.
func (s *LRStack) Frames() []LRStackElement { return s.inner.Slice() }

// States returns the stack of state ids, bottom to top, for diagnostics.
func (s *LRStack) States() []int {
	frames := s.inner.Slice()
	out := make([]int, len(frames))
	for i, f := range frames {
		out[i] = f.State
	}
	return out
}
