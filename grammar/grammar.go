package grammar

import (
	"fmt"
	"sort"

	"github.com/M0ST4FA/parsix/perr"
	"github.com/google/uuid"
)

// Re-exported sentinel errors so callers of this package can use
// errors.Is(err, grammar.ErrInvalidConstruction) without importing perr
// directly.
var (
	ErrInvalidConstruction = perr.ErrInvalidConstruction
	ErrMissingPrecondition = perr.ErrMissingPrecondition
)

// Grammar is an ordered collection of productions over a fixed Vocabulary,
// plus the caches FIRST/FOLLOW computation fills in (spec §3 "Grammar /
// production vector"). The first production added fixes the augmented
// start symbol. Grammars are built once via AddProduction and then treated
// as read-only; concurrent parses over the same Grammar are safe (spec §5).
type Grammar struct {
	ID uuid.UUID

	vocab       *Vocabulary
	productions []Production

	firstComputed  bool
	firstCache     map[NonTerminal]map[Terminal]bool
	followComputed bool
	followCache    map[NonTerminal]map[Terminal]bool
}

// NewGrammar returns an empty Grammar over the given Vocabulary.
func NewGrammar(vocab *Vocabulary) *Grammar {
	return &Grammar{ID: uuid.New(), vocab: vocab}
}

// Vocabulary returns the grammar's fixed terminal/non-terminal enumeration.
func (g *Grammar) Vocabulary() *Vocabulary { return g.vocab }

// Terminals returns the declared terminal enumeration.
func (g *Grammar) Terminals() []Terminal { return g.vocab.Terminals() }

// NonTerminals returns the declared non-terminal enumeration.
func (g *Grammar) NonTerminals() []NonTerminal { return g.vocab.NonTerminals() }

// AddProduction appends a production to the grammar's production vector,
// assigning it the next available index, and returns that index. The first
// call fixes the augmented start symbol (spec §3: "The first production's
// head is the augmented start symbol").
func (g *Grammar) AddProduction(head NonTerminal, body ...ProductionElement) (int, error) {
	if len(body) == 0 {
		return 0, fmt.Errorf("%w: production body must be non-empty", ErrInvalidConstruction)
	}
	idx := len(g.productions)
	g.productions = append(g.productions, Production{Head: head, Body: body, Index: idx})
	g.invalidateCaches()
	return idx, nil
}

// SetPostfix attaches a reduce/accept action to the production at index i.
func (g *Grammar) SetPostfix(i int, reduce LRReduceAction, accept LRAcceptAction) {
	g.productions[i].Postfix = reduce
	g.productions[i].Accept = accept
}

// Productions returns the full production vector, in index order.
func (g *Grammar) Productions() []Production { return g.productions }

// Production returns the production at the given index.
func (g *Grammar) Production(i int) Production { return g.productions[i] }

// ProductionsFor returns every production headed by nt, in declaration
// order.
func (g *Grammar) ProductionsFor(nt NonTerminal) []Production {
	var out []Production
	for _, p := range g.productions {
		if p.Head == nt {
			out = append(out, p)
		}
	}
	return out
}

// StartSymbol returns the grammar's start non-terminal: the head of the
// first production added.
func (g *Grammar) StartSymbol() NonTerminal {
	if len(g.productions) == 0 {
		return ""
	}
	return g.productions[0].Head
}

// augmentedStartSuffix is appended to build a fresh start symbol guaranteed
// not to collide with any declared non-terminal.
const augmentedStartSuffix = "-START'"

// Augmented returns a new grammar with an added production S' -> S, where S
// is the receiver's start symbol and S' is a synthesized new start symbol,
// as required by CLOSURE/GOTO construction (spec §4.4).
func (g *Grammar) Augmented() *Grammar {
	oldStart := g.StartSymbol()
	newStart := NonTerminal(string(oldStart) + augmentedStartSuffix)

	newNTs := append([]NonTerminal{newStart}, g.vocab.NonTerminals()...)
	extraTerms := g.vocab.Terminals()[2:] // drop the implicit Epsilon, EOF
	vocab := NewVocabulary(extraTerms, newNTs)

	ag := NewGrammar(vocab)
	ag.productions = append(ag.productions, Production{
		Head: newStart,
		Body: []ProductionElement{Sym(NT(oldStart))},
	})
	for _, p := range g.productions {
		ag.productions = append(ag.productions, p)
	}
	for i := range ag.productions {
		ag.productions[i].Index = i
	}
	return ag
}

// Validate reports the invalid-construction conditions spec §7 requires be
// caught at construction time: an empty grammar, a grammar with no
// terminals, or (transitively, via AddProduction) an empty production body.
func (g *Grammar) Validate() error {
	if len(g.productions) == 0 {
		return fmt.Errorf("%w: grammar has no productions", ErrInvalidConstruction)
	}
	if len(g.vocab.Terminals()) <= 2 { // only the implicit Epsilon, EOF
		return fmt.Errorf("%w: grammar declares no terminals", ErrInvalidConstruction)
	}
	for _, p := range g.productions {
		if string(p.Head) == "" {
			return fmt.Errorf("%w: production has empty non-terminal head", ErrInvalidConstruction)
		}
	}
	return nil
}

func (g *Grammar) invalidateCaches() {
	g.firstComputed = false
	g.firstCache = nil
	g.followComputed = false
	g.followCache = nil
}

// ---- FIRST -----------------------------------------------------------

// ComputeFirst fills the FIRST cache for every non-terminal via the
// fixed-point algorithm of spec §4.3. It is idempotent: calling it twice
// produces the same cache (spec §8 monotonicity property), and it is safe
// to call eagerly at construction time or lazily before the first parse
// (spec §5).
func (g *Grammar) ComputeFirst() error {
	if g.firstComputed {
		return nil
	}

	first := make(map[NonTerminal]map[Terminal]bool)
	for _, nt := range g.vocab.NonTerminals() {
		first[nt] = map[Terminal]bool{}
	}

	changed := true
	for changed {
		changed = false
		for _, p := range g.productions {
			added := g.firstPass(first, p)
			if added {
				changed = true
			}
		}
	}

	g.firstCache = first
	g.firstComputed = true
	return nil
}

// firstPass runs one production through the spec §4.3 inductive rule and
// reports whether it added anything to FIRST(head). Every production is
// revisited on every pass until a full pass adds nothing, so the "head
// appears in its own body" branch is always safe even before EPSILON has
// stabilized into FIRST(head) (spec §9 open question, resolved this way).
func (g *Grammar) firstPass(first map[NonTerminal]map[Terminal]bool, p Production) bool {
	added := false
	add := func(nt NonTerminal, t Terminal) {
		if !first[nt][t] {
			first[nt][t] = true
			added = true
		}
	}

	syms := p.Symbols()
	for i := 0; i < len(syms); i++ {
		x := syms[i]
		last := i == len(syms)-1

		if x.IsTerminal() {
			add(p.Head, x.Term())
			return added // "stop with this production"
		}

		// x is a non-terminal.
		n := x.NonTerm()
		if n == p.Head && !first[p.Head][Epsilon] {
			// head appears in its own body as X_i and EPSILON is not
			// (yet) known to be in FIRST(head): stop, nothing further to
			// derive from this alternative this pass.
			return added
		}

		for t := range first[n] {
			if t != Epsilon {
				add(p.Head, t)
			}
		}

		hasEpsilon := first[n][Epsilon]
		if hasEpsilon && last {
			add(p.Head, Epsilon)
			return added
		}
		if hasEpsilon && !last {
			continue // proceed to X_i+1
		}
		return added // EPSILON not in FIRST(n): stop
	}

	// empty symbol body (pure record elements only) derives epsilon.
	if len(syms) == 0 {
		add(p.Head, Epsilon)
	}
	return added
}

// First returns FIRST(s) for a single symbol: {s} if s is a terminal
// (including Epsilon/EOF), or the cached FIRST(nt) set if s is a
// non-terminal.
func (g *Grammar) First(s Symbol) map[Terminal]bool {
	if s.IsTerminal() {
		return map[Terminal]bool{s.Term(): true}
	}
	if !g.firstComputed {
		g.ComputeFirst()
	}
	out := map[Terminal]bool{}
	for t := range g.firstCache[s.NonTerm()] {
		out[t] = true
	}
	return out
}

// FirstOfString computes FIRST over an arbitrary symbol string by the
// standard inductive extension (spec §4.3), caching the result on ss.
// FIRST of an empty sequence is {EPSILON} (spec §3).
func (g *Grammar) FirstOfString(ss *SymbolString) map[Terminal]bool {
	if ss.cached {
		out := map[Terminal]bool{}
		for t := range ss.firstSet {
			out[t] = true
		}
		return out
	}

	result := map[Terminal]bool{}
	if len(ss.Symbols) == 0 {
		result[Epsilon] = true
	} else {
		for i, sym := range ss.Symbols {
			last := i == len(ss.Symbols)-1
			fs := g.First(sym)
			for t := range fs {
				if t != Epsilon {
					result[t] = true
				}
			}
			if !fs[Epsilon] {
				break
			}
			if last {
				result[Epsilon] = true
			}
		}
	}

	ss.firstSet = result
	ss.cached = true
	return result
}

// ---- FOLLOW ------------------------------------------------------------

// ComputeFollow fills the FOLLOW cache for every non-terminal. Requires
// ComputeFirst to have already run; otherwise fails with a
// missing-precondition error (spec §4.3, §7).
func (g *Grammar) ComputeFollow() error {
	if g.followComputed {
		return nil
	}
	if !g.firstComputed {
		return fmt.Errorf("%w: FIRST must be computed before FOLLOW", ErrMissingPrecondition)
	}

	follow := make(map[NonTerminal]map[Terminal]bool)
	for _, nt := range g.vocab.NonTerminals() {
		follow[nt] = map[Terminal]bool{}
	}
	follow[g.StartSymbol()][EOF] = true

	changed := true
	for changed {
		changed = false
		for _, p := range g.productions {
			syms := p.Symbols()
			for i, sym := range syms {
				if !sym.IsNonTerminal() {
					continue
				}
				a := sym.NonTerm()
				beta := SymbolString{Symbols: append([]Symbol{}, syms[i+1:]...)}
				firstBeta := g.FirstOfString(&beta)

				for t := range firstBeta {
					if t == Epsilon {
						continue
					}
					if !follow[a][t] {
						follow[a][t] = true
						changed = true
					}
				}
				if firstBeta[Epsilon] {
					for t := range follow[p.Head] {
						if !follow[a][t] {
							follow[a][t] = true
							changed = true
						}
					}
				}
			}
		}
	}

	g.followCache = follow
	g.followComputed = true
	return nil
}

// Follow returns the cached FOLLOW(nt). ComputeFollow must have been called
// (directly, or via LLTable/IsLL1) first.
func (g *Grammar) Follow(nt NonTerminal) map[Terminal]bool {
	out := map[Terminal]bool{}
	for t := range g.followCache[nt] {
		out[t] = true
	}
	return out
}

// sortedTerminals is a small diagnostic helper used by String() methods
// across the package to produce deterministic output.
func sortedTerminals(set map[Terminal]bool) []Terminal {
	out := make([]Terminal, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
