// Package parse implements the LL(1) and LR(1) table-driven parser
// drivers of spec §4.5–4.7: table construction behind a shared
// LRParseTable interface (SLR, canonical LR(1), and LALR(1), spec.md §11
// SUPPLEMENT), the LL(1) and LR main loops, and panic-mode error
// recovery. Grounded on the teacher's internal/ictiobus/parse/{ll1,lr}.go
// driver loops and parse/{slr,lalr,clr1}.go table constructors.
package parse

import (
	"fmt"

	"github.com/M0ST4FA/parsix/automaton"
	"github.com/M0ST4FA/parsix/grammar"
	"github.com/M0ST4FA/parsix/perr"
)

// ActionKind tags which variant of LRAction is populated (spec §3 "LR
// table entry").
type ActionKind int

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

// LRAction is a single cell of the LR action table.
type LRAction struct {
	Kind       ActionKind
	State      int // target state, for ActionShift
	Production int // production index, for ActionReduce/ActionAccept
}

// LRGotoEntry is a single cell of the LR goto table.
type LRGotoEntry struct {
	IsError bool
	State   int
}

// LRParseTable is the table interface the LR driver consumes, implemented
// by each of the three construction strategies below (spec.md §11: "SLR,
// LALR(1), and canonical LR(1) are all provided as table-construction
// strategies behind one parse.LRParseTable interface").
type LRParseTable interface {
	Action(state int, t grammar.Terminal) LRAction
	Goto(state int, nt grammar.NonTerminal) LRGotoEntry
	Grammar() *grammar.Grammar
	StateCount() int
}

// LRTable is the concrete LRParseTable built by BuildSLRTable,
// BuildCLR1Table, and BuildLALRTable; the three differ only in how their
// underlying automaton.DFA collapses states, not in the action/goto cell
// shape.
type LRTable struct {
	dfa    *automaton.DFA
	action map[int]map[grammar.Terminal]LRAction
	gotoT  map[int]map[grammar.NonTerminal]LRGotoEntry
}

func (t *LRTable) Action(state int, term grammar.Terminal) LRAction {
	row, ok := t.action[state]
	if !ok {
		return LRAction{Kind: ActionError}
	}
	a, ok := row[term]
	if !ok {
		return LRAction{Kind: ActionError}
	}
	return a
}

func (t *LRTable) Goto(state int, nt grammar.NonTerminal) LRGotoEntry {
	row, ok := t.gotoT[state]
	if !ok {
		return LRGotoEntry{IsError: true}
	}
	e, ok := row[nt]
	if !ok {
		return LRGotoEntry{IsError: true}
	}
	return e
}

func (t *LRTable) Grammar() *grammar.Grammar { return t.dfa.Grammar }
func (t *LRTable) StateCount() int           { return t.dfa.StateCount() }

// buildFromDFA fills in the action/goto tables from dfa's states and
// transitions (spec §4.4/§4.6). useFollow, if true, makes reduce
// lookaheads come from FOLLOW(head) (the SLR strategy); when false, each
// item's own tracked lookahead is used instead (CLR1/LALR). FIRST and
// FOLLOW of the table's grammar are computed here in every case, so that
// panic-mode recovery only reads them during a parse.
func buildFromDFA(dfa *automaton.DFA, useFollow bool) (*LRTable, error) {
	ag := dfa.Grammar
	if err := ag.ComputeFirst(); err != nil {
		return nil, err
	}
	if err := ag.ComputeFollow(); err != nil {
		return nil, err
	}

	t := &LRTable{
		dfa:    dfa,
		action: map[int]map[grammar.Terminal]LRAction{},
		gotoT:  map[int]map[grammar.NonTerminal]LRGotoEntry{},
	}

	setAction := func(state int, term grammar.Terminal, a LRAction) error {
		if t.action[state] == nil {
			t.action[state] = map[grammar.Terminal]LRAction{}
		}
		if existing, ok := t.action[state][term]; ok && existing != a {
			return fmt.Errorf("%w: action conflict in state %d on %q: %v vs %v",
				perr.ErrInvalidConstruction, state, term, existing, a)
		}
		t.action[state][term] = a
		return nil
	}

	for i, state := range dfa.States {
		for _, item := range state.Items() {
			if item.AtEnd() {
				if item.Prod.Index == 0 {
					if err := setAction(i, grammar.EOF, LRAction{Kind: ActionAccept, Production: 0}); err != nil {
						return nil, err
					}
					continue
				}
				lookaheads := []grammar.Terminal{item.Lookahead}
				if useFollow {
					lookaheads = lookaheads[:0]
					for term := range ag.Follow(item.Prod.Head) {
						lookaheads = append(lookaheads, term)
					}
				}
				for _, la := range lookaheads {
					if err := setAction(i, la, LRAction{Kind: ActionReduce, Production: item.Prod.Index}); err != nil {
						return nil, err
					}
				}
				continue
			}

			next, _ := item.NextSymbol()
			target := dfa.Goto(i, next)
			if target < 0 {
				continue
			}
			if next.IsTerminal() {
				if err := setAction(i, next.Term(), LRAction{Kind: ActionShift, State: target}); err != nil {
					return nil, err
				}
			} else {
				if t.gotoT[i] == nil {
					t.gotoT[i] = map[grammar.NonTerminal]LRGotoEntry{}
				}
				t.gotoT[i][next.NonTerm()] = LRGotoEntry{State: target}
			}
		}
	}

	return t, nil
}

// BuildSLRTable builds an LR table from the plain LR(0) automaton, using
// FOLLOW(head) to decide reduce lookaheads (the SLR strategy).
func BuildSLRTable(g *grammar.Grammar) (*LRTable, error) {
	return buildFromDFA(automaton.BuildLR0(g), true)
}

// BuildCLR1Table builds an LR table from the canonical-LR(1) automaton,
// using each item's own tracked lookahead.
func BuildCLR1Table(g *grammar.Grammar) (*LRTable, error) {
	return buildFromDFA(automaton.BuildCLR1(g), false)
}

// BuildLALRTable builds an LR table from the LALR(1) automaton (canonical
// LR(1) states merged by core, spec.md §11 SUPPLEMENT).
func BuildLALRTable(g *grammar.Grammar) (*LRTable, error) {
	return buildFromDFA(automaton.MergeLALR(automaton.BuildCLR1(g)), false)
}

// NewLL1Table builds the LL(1) parsing table for g, failing fast with a
// perr.Error if g is not LL(1) (spec.md §11 SUPPLEMENT, grounded on
// ictiobus/grammar/grammar_test.go's Test_Grammar_IsLL1).
func NewLL1Table(g *grammar.Grammar) (*grammar.LL1Table, error) {
	ok, err := g.IsLL1()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: grammar is not LL(1)", perr.ErrInvalidConstruction)
	}
	return g.LLTable()
}
