package automaton

import (
	"sort"
	"strings"

	"github.com/M0ST4FA/parsix/grammar"
	"github.com/google/uuid"
)

// ItemSet is a set of LR1Items keyed by core, with a lazily-computed and
// cached CLOSURE (spec §4.4: "CLOSURE is computed by worklist expansion
// and cached on the item set"). LR0Mode item sets carry lookaheads that
// are never consulted (conventionally grammar.Epsilon); LR1Mode item sets
// track real lookaheads and union them on insert/merge (spec §4.4
// "Insert/merge").
type ItemSet struct {
	ID uuid.UUID

	LR1Mode bool

	order []string // core keys, insertion order
	items map[string]LR1Item
	las   map[string]map[grammar.Terminal]bool // core key -> lookahead set, LR1Mode only

	closure      *ItemSet
	closureValid bool
}

// NewItemSet builds an empty item set in the given mode.
func NewItemSet(lr1Mode bool) *ItemSet {
	return &ItemSet{
		ID:      uuid.New(),
		LR1Mode: lr1Mode,
		items:   map[string]LR1Item{},
		las:     map[string]map[grammar.Terminal]bool{},
	}
}

// Len returns the number of distinct cores in the set.
func (s *ItemSet) Len() int { return len(s.order) }

// Items returns the set's items in insertion order. In LR1Mode each
// distinct lookahead for a core is its own LR1Item in the result.
func (s *ItemSet) Items() []LR1Item {
	if !s.LR1Mode {
		out := make([]LR1Item, len(s.order))
		for i, k := range s.order {
			out[i] = s.items[k]
		}
		return out
	}
	var out []LR1Item
	for _, k := range s.order {
		base := s.items[k]
		las := sortedTerms(s.las[k])
		for _, la := range las {
			out = append(out, LR1Item{LR0Item: base.LR0Item, Lookahead: la})
		}
	}
	return out
}

func sortedTerms(set map[grammar.Terminal]bool) []grammar.Terminal {
	out := make([]grammar.Terminal, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Insert adds an item to the set: if an item with an identical core
// already exists, its lookahead set is unioned with item's (LR1Mode) or
// left untouched (LR0Mode); else item is appended (spec §4.4 "insert").
// Reports whether the set changed.
func (s *ItemSet) Insert(item LR1Item) bool {
	key := item.CoreKey()
	changed := false
	if _, ok := s.items[key]; !ok {
		s.items[key] = item
		s.order = append(s.order, key)
		s.las[key] = map[grammar.Terminal]bool{}
		changed = true
	}
	if s.LR1Mode {
		if !s.las[key][item.Lookahead] {
			s.las[key][item.Lookahead] = true
			changed = true
		}
	}
	if changed {
		s.closureValid = false
	}
	return changed
}

// Merge inserts every item of other into s (spec §4.4 "merge(other)
// performs the same per item of other"). Reports whether s changed.
func (s *ItemSet) Merge(other *ItemSet) bool {
	changed := false
	for _, it := range other.Items() {
		if s.Insert(it) {
			changed = true
		}
	}
	return changed
}

// Copy returns a deep copy of s (closure cache not carried over).
func (s *ItemSet) Copy() *ItemSet {
	out := NewItemSet(s.LR1Mode)
	for _, it := range s.Items() {
		out.Insert(it)
	}
	return out
}

// coreEqual reports whether s and o contain the same set of (production,
// dot) cores, ignoring lookaheads — the "identical core" subroutine spec
// §4.4 names.
func (s *ItemSet) coreEqual(o *ItemSet) bool {
	if len(s.order) != len(o.order) {
		return false
	}
	for _, k := range s.order {
		if _, ok := o.items[k]; !ok {
			return false
		}
	}
	return true
}

// CoreKey renders the set's sorted core keys as a single string, usable to
// deduplicate item sets by core across an automaton's state list (the
// identity LALR state-merging groups by).
func (s *ItemSet) CoreKey() string {
	keys := append([]string{}, s.order...)
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

// FullKey renders the set's cores together with their lookahead sets
// (LR1Mode) as a single string: the full identity two canonical-LR(1)
// states are compared by, distinct from CoreKey's core-only identity.
func (s *ItemSet) FullKey() string {
	if !s.LR1Mode {
		return s.CoreKey()
	}
	keys := append([]string{}, s.order...)
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		las := sortedTerms(s.las[k])
		lastrs := make([]string, len(las))
		for j, la := range las {
			lastrs[j] = string(la)
		}
		parts[i] = k + "{" + strings.Join(lastrs, ",") + "}"
	}
	return strings.Join(parts, "|")
}

func (s *ItemSet) String() string {
	var b strings.Builder
	for _, it := range s.Items() {
		b.WriteString(it.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Closure computes (and caches) CLOSURE(s) over grammar g (spec §4.4
// "CLOSURE(I)"). An empty item set closes to itself.
func (s *ItemSet) Closure(g *grammar.Grammar) *ItemSet {
	if s.closureValid {
		return s.closure
	}
	if s.Len() == 0 {
		s.closure = s
		s.closureValid = true
		return s
	}

	result := s.Copy()
	worklist := append([]LR1Item{}, result.Items()...)

	for len(worklist) > 0 {
		it := worklist[0]
		worklist = worklist[1:]

		next, ok := it.NextSymbol()
		if !ok || !next.IsNonTerminal() {
			continue
		}
		B := next.NonTerm()

		lookaheads := []grammar.Terminal{it.Lookahead}
		if s.LR1Mode {
			beta := it.Right()[1:]
			betaA := grammar.SymbolString{Symbols: append(append([]grammar.Symbol{}, beta...), grammar.T(it.Lookahead))}
			first := g.FirstOfString(&betaA)
			lookaheads = lookaheads[:0]
			for t := range first {
				if t != grammar.Epsilon {
					lookaheads = append(lookaheads, t)
				}
			}
		}

		for _, p := range g.ProductionsFor(B) {
			for _, la := range lookaheads {
				newItem := NewLR1Item(p, 0, la)
				if result.Insert(newItem) {
					worklist = append(worklist, newItem)
				}
			}
		}
	}

	result.closure = result
	result.closureValid = true
	s.closure = result
	s.closureValid = true
	return result
}

// Goto computes GOTO(s, X) over grammar g (spec §4.4 "GOTO(I, X)"):
// closes s if needed, advances every item whose next symbol is X, and
// closes the result.
func (s *ItemSet) Goto(g *grammar.Grammar, x grammar.Symbol) *ItemSet {
	closed := s.Closure(g)
	moved := NewItemSet(s.LR1Mode)
	for _, it := range closed.Items() {
		next, ok := it.NextSymbol()
		if !ok || !next.Equal(x) {
			continue
		}
		moved.Insert(LR1Item{LR0Item: it.Advance(), Lookahead: it.Lookahead})
	}
	return moved.Closure(g)
}
