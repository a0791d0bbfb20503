package automaton

import (
	"github.com/M0ST4FA/parsix/grammar"
	"github.com/M0ST4FA/parsix/internal/container"
	"github.com/google/uuid"
)

// DFA is a viable-prefix automaton: an indexed list of item-set states
// plus the GOTO transitions between them (spec §4.4 generalized from
// single-set CLOSURE/GOTO to the full canonical collection). State 0 is
// always the start state, matching the LR driver's stack convention (spec
// §4.6 "the start state is 0").
type DFA struct {
	ID uuid.UUID

	Grammar     *grammar.Grammar // the augmented grammar the states are built over
	States      []*ItemSet
	Transitions map[int]map[grammar.Symbol]int
}

// StateCount returns the number of states in the automaton.
func (d *DFA) StateCount() int { return len(d.States) }

// Goto returns the target state for (state, symbol), or -1 if undefined.
func (d *DFA) Goto(state int, sym grammar.Symbol) int {
	row, ok := d.Transitions[state]
	if !ok {
		return -1
	}
	target, ok := row[sym]
	if !ok {
		return -1
	}
	return target
}

// build runs the shared canonical-collection worklist algorithm: starting
// from the augmented grammar's start item, repeatedly computes GOTO over
// every symbol with an outgoing item, assigning new states to unseen
// identities and reusing existing ones otherwise. The identity function
// determines whether this produces a canonical-LR(1) collection (full
// item+lookahead identity) or a bare LR(0) collection (core-only
// identity, used by SLR).
func build(g *grammar.Grammar, lr1Mode bool) *DFA {
	ag := g.Augmented()
	startProd := ag.Production(0)

	la := grammar.Epsilon
	if lr1Mode {
		la = grammar.EOF
	}

	start := NewItemSet(lr1Mode)
	start.Insert(NewLR1Item(startProd, 0, la))
	start = start.Closure(ag)

	states := []*ItemSet{start}
	identity := map[string]int{start.identityKey(): 0}
	transitions := map[int]map[grammar.Symbol]int{}

	worklist := []int{0}
	for len(worklist) > 0 {
		i := worklist[0]
		worklist = worklist[1:]
		closed := states[i].Closure(ag)

		seenSym := container.NewOrderedSet[grammar.Symbol]()
		for _, it := range closed.Items() {
			next, ok := it.NextSymbol()
			if !ok {
				continue
			}
			seenSym.Add(next)
		}

		for _, x := range seenSym.Elements() {
			target := closed.Goto(ag, x)
			if target.Len() == 0 {
				continue
			}
			key := target.identityKey()
			idx, exists := identity[key]
			if !exists {
				idx = len(states)
				states = append(states, target)
				identity[key] = idx
				worklist = append(worklist, idx)
			}
			if transitions[i] == nil {
				transitions[i] = map[grammar.Symbol]int{}
			}
			transitions[i][x] = idx
		}
	}

	return &DFA{ID: uuid.New(), Grammar: ag, States: states, Transitions: transitions}
}

func (s *ItemSet) identityKey() string { return s.FullKey() }

// BuildLR0 constructs the plain LR(0) viable-prefix automaton (no
// lookaheads tracked), the collection SLR table construction consults,
// with FOLLOW sets used at reduce-conflict resolution time instead of
// per-item lookaheads.
func BuildLR0(g *grammar.Grammar) *DFA { return build(g, false) }

// BuildCLR1 constructs the canonical-LR(1) automaton: every state is
// identified by its full set of (core, lookahead) pairs, so states
// sharing a core but disagreeing on lookaheads remain distinct (spec
// §4.4; the "no merging" baseline MergeLALR below then compresses).
func BuildCLR1(g *grammar.Grammar) *DFA { return build(g, true) }

// MergeLALR builds the LALR(1) automaton from a canonical-LR(1) automaton
// clr1 by merging every group of states sharing an identical core,
// unioning their lookahead sets, and remapping transitions accordingly
// (spec.md §11 SUPPLEMENT, grounded on
// ictiobus/automaton/automaton.go's NewLALR1ViablePrefixDFA).
func MergeLALR(clr1 *DFA) *DFA {
	groups := map[string][]int{}
	var order []string
	for i, st := range clr1.States {
		key := st.CoreKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	oldToNew := make([]int, len(clr1.States))
	newStates := make([]*ItemSet, 0, len(order))
	for newIdx, key := range order {
		members := groups[key]
		merged := NewItemSet(true)
		for _, oldIdx := range members {
			merged.Merge(clr1.States[oldIdx])
			oldToNew[oldIdx] = newIdx
		}
		merged = merged.Closure(clr1.Grammar)
		newStates = append(newStates, merged)
	}

	newTransitions := map[int]map[grammar.Symbol]int{}
	for oldFrom, row := range clr1.Transitions {
		newFrom := oldToNew[oldFrom]
		for sym, oldTo := range row {
			if newTransitions[newFrom] == nil {
				newTransitions[newFrom] = map[grammar.Symbol]int{}
			}
			newTransitions[newFrom][sym] = oldToNew[oldTo]
		}
	}

	return &DFA{ID: uuid.New(), Grammar: clr1.Grammar, States: newStates, Transitions: newTransitions}
}
