// Package automaton implements LR items, item sets, and CLOSURE/GOTO
// construction (spec §4.4), plus the canonical-collection and LALR(1)
// state-merging machinery spec.md §11 supplements. Grounded on the
// teacher's internal/ictiobus/grammar/item.go (LR0Item/LR1Item shape,
// core-equality-by-Left/Right, string-form rendering) and
// internal/ictiobus/automaton/automaton.go (DFAState[E]-style automaton
// construction), adapted from the teacher's string-keyed symbols to this
// module's typed grammar.Symbol.
package automaton

import (
	"fmt"
	"strings"

	"github.com/M0ST4FA/parsix/grammar"
)

// LR0Item is a production paired with a dot position. Dot counts
// grammar-symbol elements only (spec §4.4's invariant: "the dot's actual
// position is kept in sync with the grammar-symbol count of the
// production body").
type LR0Item struct {
	Prod grammar.Production
	Dot  int
}

// NewLR0Item builds an item with the dot at position dot (0 <= dot <=
// number of grammar symbols in p's body).
func NewLR0Item(p grammar.Production, dot int) LR0Item {
	return LR0Item{Prod: p, Dot: dot}
}

// Left returns the grammar symbols before the dot.
func (i LR0Item) Left() []grammar.Symbol { return i.Prod.Symbols()[:i.Dot] }

// Right returns the grammar symbols from the dot onward.
func (i LR0Item) Right() []grammar.Symbol { return i.Prod.Symbols()[i.Dot:] }

// AtEnd reports whether the dot has reached the end of the body.
func (i LR0Item) AtEnd() bool { return i.Dot >= len(i.Prod.Symbols()) }

// NextSymbol returns the symbol immediately after the dot, if any.
func (i LR0Item) NextSymbol() (grammar.Symbol, bool) {
	syms := i.Prod.Symbols()
	if i.Dot >= len(syms) {
		return grammar.Symbol{}, false
	}
	return syms[i.Dot], true
}

// Advance returns the item with the dot moved one symbol to the right.
// Only meaningful when !AtEnd().
func (i LR0Item) Advance() LR0Item { return LR0Item{Prod: i.Prod, Dot: i.Dot + 1} }

// CoreKey renders the (production, dot) core as a string suitable for use
// as a map key; two items with the same core produce the same key.
func (i LR0Item) CoreKey() string {
	return fmt.Sprintf("%d:%d", i.Prod.Index, i.Dot)
}

// Equal reports whether i and o share the same (production, dot) core.
func (i LR0Item) Equal(o LR0Item) bool {
	return i.Prod.Index == o.Prod.Index && i.Dot == o.Dot
}

func (i LR0Item) String() string {
	var b strings.Builder
	b.WriteString(string(i.Prod.Head))
	b.WriteString(" -> ")
	syms := i.Prod.Symbols()
	for idx, s := range syms {
		if idx == i.Dot {
			b.WriteString(". ")
		}
		b.WriteString(s.String())
		b.WriteString(" ")
	}
	if i.Dot == len(syms) {
		b.WriteString(".")
	}
	return strings.TrimRight(b.String(), " ")
}

// LR1Item is an LR0Item annotated with a single lookahead terminal (spec
// §4.4). A canonical-LR1 item set may hold several LR1Items sharing a
// core, one per distinct lookahead, until Insert/Merge unions them; an
// SLR/LR0-mode item set holds LR1Items whose Lookahead is unused
// (grammar.Epsilon, by convention) and conflict resolution instead
// consults FOLLOW at table-construction time.
type LR1Item struct {
	LR0Item
	Lookahead grammar.Terminal
}

// NewLR1Item builds an LR1Item.
func NewLR1Item(p grammar.Production, dot int, la grammar.Terminal) LR1Item {
	return LR1Item{LR0Item: NewLR0Item(p, dot), Lookahead: la}
}

// Equal reports whether i and o share both core and lookahead.
func (i LR1Item) Equal(o LR1Item) bool {
	return i.LR0Item.Equal(o.LR0Item) && i.Lookahead == o.Lookahead
}

func (i LR1Item) String() string {
	return fmt.Sprintf("[%s, %s]", i.LR0Item.String(), symOrEOF(i.Lookahead))
}

func symOrEOF(t grammar.Terminal) string {
	if t == grammar.Epsilon {
		return "ε"
	}
	return string(t)
}
