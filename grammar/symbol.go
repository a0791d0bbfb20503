// Package grammar provides the data model for context-free grammars:
// symbols, production elements, productions, and the Grammar type itself,
// along with FIRST/FOLLOW set computation (spec §3, §4.3).
package grammar

import "fmt"

// Terminal names a token class that can appear in a grammar's input
// alphabet. The zero value is Epsilon; Epsilon and EOF are the two
// distinguished sentinels, and every other terminal is declared by the
// caller.
type Terminal string

// NonTerminal names a syntactic category defined by one or more productions.
type NonTerminal string

// Epsilon is the distinguished terminal denoting the empty string. Every
// grammar's terminal enumeration implicitly includes it.
const Epsilon Terminal = ""

// EOF is the distinguished terminal marking end of input.
const EOF Terminal = "$"

// SymbolKind tags which variant of Symbol is populated.
type SymbolKind int

const (
	// KindTerminal marks a Symbol carrying a Terminal.
	KindTerminal SymbolKind = iota
	// KindNonTerminal marks a Symbol carrying a NonTerminal.
	KindNonTerminal
)

func (k SymbolKind) String() string {
	if k == KindTerminal {
		return "terminal"
	}
	return "non-terminal"
}

// Symbol is a tagged value naming either a terminal or a non-terminal.
// Equality is structural: two Symbols are equal iff they agree on kind and
// on the named terminal/non-terminal. Terminals order before non-terminals;
// see Vocabulary.Compare for the total ordering over a grammar's alphabet.
type Symbol struct {
	kind SymbolKind
	term Terminal
	nt   NonTerminal
}

// T constructs a terminal Symbol.
func T(t Terminal) Symbol { return Symbol{kind: KindTerminal, term: t} }

// NT constructs a non-terminal Symbol.
func NT(nt NonTerminal) Symbol { return Symbol{kind: KindNonTerminal, nt: nt} }

// EpsilonSymbol is the terminal Symbol for Epsilon.
var EpsilonSymbol = T(Epsilon)

// EOFSymbol is the terminal Symbol for EOF.
var EOFSymbol = T(EOF)

// IsTerminal reports whether s is a terminal symbol.
func (s Symbol) IsTerminal() bool { return s.kind == KindTerminal }

// IsNonTerminal reports whether s is a non-terminal symbol.
func (s Symbol) IsNonTerminal() bool { return s.kind == KindNonTerminal }

// IsEpsilon reports whether s is the terminal Epsilon.
func (s Symbol) IsEpsilon() bool { return s.kind == KindTerminal && s.term == Epsilon }

// IsEOF reports whether s is the terminal EOF.
func (s Symbol) IsEOF() bool { return s.kind == KindTerminal && s.term == EOF }

// Term returns the Terminal carried by s. Only meaningful if IsTerminal.
func (s Symbol) Term() Terminal { return s.term }

// NonTerm returns the NonTerminal carried by s. Only meaningful if
// IsNonTerminal.
func (s Symbol) NonTerm() NonTerminal { return s.nt }

// Kind returns which variant s is.
func (s Symbol) Kind() SymbolKind { return s.kind }

// Equal reports structural equality between s and o.
func (s Symbol) Equal(o Symbol) bool {
	if s.kind != o.kind {
		return false
	}
	if s.kind == KindTerminal {
		return s.term == o.term
	}
	return s.nt == o.nt
}

// String renders s for diagnostics; epsilon renders as "ε".
func (s Symbol) String() string {
	if s.kind == KindTerminal {
		if s.term == Epsilon {
			return "ε"
		}
		return string(s.term)
	}
	return string(s.nt)
}

// Vocabulary fixes the finite terminal and non-terminal enumerations a
// grammar is drawn from, and provides the total ordering spec §3 requires:
// terminals precede non-terminals, and within a kind symbols order by the
// index at which they were declared.
type Vocabulary struct {
	terms   []Terminal
	termIdx map[Terminal]int
	nts     []NonTerminal
	ntIdx   map[NonTerminal]int
}

// NewVocabulary returns a Vocabulary whose terminal enumeration always
// starts with Epsilon and EOF (per spec §3), followed by extraTerms, and
// whose non-terminal enumeration is nts.
func NewVocabulary(extraTerms []Terminal, nts []NonTerminal) *Vocabulary {
	v := &Vocabulary{
		termIdx: map[Terminal]int{},
		ntIdx:   map[NonTerminal]int{},
	}
	v.terms = append(v.terms, Epsilon, EOF)
	v.terms = append(v.terms, extraTerms...)
	for i, t := range v.terms {
		v.termIdx[t] = i
	}
	v.nts = append(v.nts, nts...)
	for i, n := range v.nts {
		v.ntIdx[n] = i
	}
	return v
}

// Terminals returns the declared terminal enumeration, in declaration order.
func (v *Vocabulary) Terminals() []Terminal { return v.terms }

// NonTerminals returns the declared non-terminal enumeration, in
// declaration order.
func (v *Vocabulary) NonTerminals() []NonTerminal { return v.nts }

// Compare gives a[-1,0,1] total order over symbols drawn from v: terminals
// order before non-terminals, and symbols of the same kind order by
// declaration index.
func (v *Vocabulary) Compare(a, b Symbol) int {
	if a.kind != b.kind {
		if a.kind == KindTerminal {
			return -1
		}
		return 1
	}
	if a.kind == KindTerminal {
		ia, ib := v.termIdx[a.term], v.termIdx[b.term]
		switch {
		case ia < ib:
			return -1
		case ia > ib:
			return 1
		default:
			return 0
		}
	}
	ia, ib := v.ntIdx[a.nt], v.ntIdx[b.nt]
	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	default:
		return 0
	}
}

// indexOf reports a symbol's declaration index within its kind, or an
// error if v does not declare it (spec §7 invalid-input: "index out of
// range in a table lookup").
func (v *Vocabulary) indexOf(s Symbol) (int, error) {
	if s.kind == KindTerminal {
		i, ok := v.termIdx[s.term]
		if !ok {
			return 0, fmt.Errorf("terminal %q not declared in vocabulary", s.term)
		}
		return i, nil
	}
	i, ok := v.ntIdx[s.nt]
	if !ok {
		return 0, fmt.Errorf("non-terminal %q not declared in vocabulary", s.nt)
	}
	return i, nil
}
