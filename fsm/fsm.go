// Package fsm implements the finite-state-machine engine the lexical
// analyzer drives: a transition table keyed by state and input byte, three
// simulation modes, and optional epsilon-closure expansion for NFAs.
// Grounded on the shape of the teacher's internal/ictiobus/automaton package
// (generic DFAState[E], table-driven transition lookup), adapted here from
// an LR-item automaton to the byte-level scanning automaton spec §4.1
// describes.
package fsm

import (
	"fmt"

	"github.com/M0ST4FA/parsix/perr"
	"github.com/google/uuid"
)

// State is a non-negative machine state id. DeadState (0) is the implicit
// target of any transition absent from the table; StartState (1) is where
// every simulation begins.
type State int

const (
	// DeadState is the implicit target of a missing transition table entry.
	DeadState State = 0
	// StartState is the state every simulation run begins in.
	StartState State = 1
)

// Kind tags whether a Machine is deterministic, nondeterministic, or
// nondeterministic with epsilon moves.
type Kind int

const (
	// KindDFA machines have at most one target state per (state, byte).
	KindDFA Kind = iota
	// KindNFA machines may have several target states per (state, byte).
	KindNFA
	// KindEpsilonNFA machines are NFAs with a separate epsilon-move table;
	// every step is followed by an epsilon-closure expansion.
	KindEpsilonNFA
)

func (k Kind) String() string {
	switch k {
	case KindDFA:
		return "dfa"
	case KindNFA:
		return "nfa"
	case KindEpsilonNFA:
		return "epsilon-nfa"
	default:
		return "unknown"
	}
}

// Machine is a table-driven finite-state machine over byte input (spec
// §4.1 "Transition table"). Construct with NewMachine; Machines are
// immutable once built and safe for concurrent Match calls.
type Machine struct {
	ID uuid.UUID

	kind        Kind
	transitions map[State]map[byte][]State
	epsilon     map[State][]State // only consulted when kind == KindEpsilonNFA
	final       map[State]bool
}

// NewMachine builds a Machine from an explicit transition table and final
// state set. transitions maps a state and input byte to the set of states
// reachable in one step; for a KindDFA machine every entry must name at
// most one target state. epsilonMoves is consulted only for
// KindEpsilonNFA and may be nil otherwise.
//
// Fails with a perr KindInvalidConstruction error if final is empty or kind
// is not one of the declared Kind values (spec §4.1 "Failure modes").
func NewMachine(kind Kind, transitions map[State]map[byte][]State, epsilonMoves map[State][]State, final map[State]bool) (*Machine, error) {
	if kind != KindDFA && kind != KindNFA && kind != KindEpsilonNFA {
		return nil, perr.Wrap(perr.KindInvalidConstruction, fmt.Sprintf("unknown machine kind %d", kind), nil)
	}
	if len(final) == 0 {
		return nil, perr.Wrap(perr.KindInvalidConstruction, "machine has empty final-state set", nil)
	}
	if kind == KindDFA {
		for s, row := range transitions {
			for b, targets := range row {
				if len(targets) > 1 {
					return nil, perr.Wrap(perr.KindInvalidConstruction,
						fmt.Sprintf("dfa state %d has %d targets on byte %q, want at most 1", s, len(targets), b), nil)
				}
			}
		}
	}

	finalCopy := make(map[State]bool, len(final))
	for s := range final {
		finalCopy[s] = true
	}

	return &Machine{
		ID:          uuid.New(),
		kind:        kind,
		transitions: transitions,
		epsilon:     epsilonMoves,
		final:       finalCopy,
	}, nil
}

// Kind returns the machine's declared kind.
func (m *Machine) Kind() Kind { return m.kind }

// IsFinal reports whether s is in the machine's final-state set.
func (m *Machine) IsFinal(s State) bool { return m.final[s] }

// config is a set of simultaneously-occupied states, used to simulate NFAs
// (and trivially DFAs, as a singleton set) uniformly.
type config map[State]bool

func newConfig(states ...State) config {
	c := make(config, len(states))
	for _, s := range states {
		c[s] = true
	}
	return c
}

func (c config) isFinal(m *Machine) bool {
	for s := range c {
		if m.final[s] {
			return true
		}
	}
	return false
}

func (c config) isDead() bool {
	if len(c) == 0 {
		return true
	}
	for s := range c {
		if s != DeadState {
			return false
		}
	}
	return true
}

// sorted returns the final states of c, in ascending order.
func (c config) sorted(m *Machine) []State {
	out := make([]State, 0, len(c))
	for s := range c {
		if m.final[s] {
			out = append(out, s)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// epsilonClosure expands c by following epsilon moves until no new state is
// added, via classical worklist expansion (spec §4.1 "NFA-specific").
func (m *Machine) epsilonClosure(c config) config {
	out := make(config, len(c))
	var worklist []State
	for s := range c {
		out[s] = true
		worklist = append(worklist, s)
	}
	for len(worklist) > 0 {
		s := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, t := range m.epsilon[s] {
			if !out[t] {
				out[t] = true
				worklist = append(worklist, t)
			}
		}
	}
	return out
}

// step advances configuration c by one input byte, yielding the next
// configuration. For KindEpsilonNFA the result is closed under epsilon
// moves before being returned.
func (m *Machine) step(c config, b byte) config {
	next := config{}
	for s := range c {
		for _, t := range m.transitions[s][b] {
			next[t] = true
		}
	}
	if len(next) == 0 {
		next[DeadState] = true
	}
	if m.kind == KindEpsilonNFA {
		next = m.epsilonClosure(next)
	}
	return next
}

func (m *Machine) start() config {
	c := newConfig(StartState)
	if m.kind == KindEpsilonNFA {
		c = m.epsilonClosure(c)
	}
	return c
}

// Mode selects one of the three simulation strategies spec §4.1 defines.
type Mode int

const (
	// ModeWholeString accepts iff the entire input is consumed into a
	// final configuration.
	ModeWholeString Mode = iota
	// ModeLongestPrefix accepts the longest prefix of the input whose
	// consumption reaches a final configuration.
	ModeLongestPrefix
	// ModeLongestSubstring accepts the longest substring, at the earliest
	// starting offset among ties, whose consumption reaches a final
	// configuration.
	ModeLongestSubstring
)

func (mo Mode) String() string {
	switch mo {
	case ModeWholeString:
		return "whole-string"
	case ModeLongestPrefix:
		return "longest-prefix"
	case ModeLongestSubstring:
		return "longest-substring"
	default:
		return "unknown"
	}
}

// Result is the outcome of a Match call (spec §4.1: "(accepted,
// reached-final-states, [start,end), original-input)").
type Result struct {
	Accepted    bool
	FinalStates []State
	Start, End  int
	Input       []byte
}

// Span returns the matched slice of the original input, or nil if the
// match did not accept.
func (r Result) Span() []byte {
	if !r.Accepted {
		return nil
	}
	return r.Input[r.Start:r.End]
}

// Match runs the machine over input under the given mode (spec §4.1
// "Three modes"). Fails with a perr KindInvalidInput error for an
// unrecognized mode.
func (m *Machine) Match(input []byte, mode Mode) (Result, error) {
	switch mode {
	case ModeWholeString:
		return m.matchWholeString(input), nil
	case ModeLongestPrefix:
		return m.matchLongestPrefix(input, 0), nil
	case ModeLongestSubstring:
		return m.matchLongestSubstring(input), nil
	default:
		return Result{}, perr.Wrap(perr.KindInvalidInput, fmt.Sprintf("unknown match mode %d", mode), nil)
	}
}

func (m *Machine) matchWholeString(input []byte) Result {
	c := m.start()
	for _, b := range input {
		c = m.step(c, b)
	}
	if c.isFinal(m) {
		return Result{Accepted: true, FinalStates: c.sorted(m), Start: 0, End: len(input), Input: input}
	}
	return Result{Accepted: false, Start: 0, End: 0, Input: input}
}

// matchLongestPrefix implements spec §4.1's "record the configuration after
// each byte; scan the record in reverse" algorithm, starting the scan at
// input offset base (so matchLongestSubstring can reuse it per start
// offset).
func (m *Machine) matchLongestPrefix(input []byte, base int) Result {
	suffix := input[base:]
	configs := make([]config, len(suffix)+1)
	c := m.start()
	configs[0] = c
	for i, b := range suffix {
		c = m.step(c, b)
		configs[i+1] = c
	}

	for i := len(configs) - 1; i >= 0; i-- {
		if configs[i].isFinal(m) {
			return Result{
				Accepted:    true,
				FinalStates: configs[i].sorted(m),
				Start:       base,
				End:         base + i,
				Input:       input,
			}
		}
	}
	return Result{Accepted: false, Start: base, End: base, Input: input}
}

// matchLongestSubstring implements spec §4.1's "for every start offset,
// compute the longest accepted prefix of the suffix; keep the maximum".
func (m *Machine) matchLongestSubstring(input []byte) Result {
	best := Result{Accepted: false, Start: 0, End: 0, Input: input}
	bestLen := -1
	for s := 0; s <= len(input); s++ {
		r := m.matchLongestPrefix(input, s)
		if !r.Accepted {
			continue
		}
		l := r.End - r.Start
		if l > bestLen {
			bestLen = l
			best = r
		}
	}
	return best
}
