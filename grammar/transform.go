package grammar

import "fmt"

// bodySymbols extracts the grammar symbols of a production body, used
// throughout the transform helpers below which operate purely on symbol
// sequences (semantic actions and synthesized/action records, if any, do
// not survive a transform — these are grammar-normalization passes meant to
// run before a parser is generated from the result, per SPEC_FULL §11).
func bodySymbols(p Production) []Symbol { return p.Symbols() }

func syms(body ...Symbol) []ProductionElement {
	out := make([]ProductionElement, len(body))
	for i, s := range body {
		out[i] = Sym(s)
	}
	return out
}

// cloneEmpty returns a new Grammar with the same vocabulary as g, no
// productions yet.
func (g *Grammar) cloneEmpty() *Grammar {
	return NewGrammar(g.vocab)
}

// derivesEpsilon reports whether some production headed by nt has an empty
// (or pure-epsilon) symbol body.
func (g *Grammar) derivesEpsilon(nt NonTerminal) bool {
	for _, p := range g.ProductionsFor(nt) {
		if p.IsEpsilon() {
			return true
		}
	}
	return false
}

// RemoveEpsilons returns a grammar equivalent to g but with every epsilon
// production removed (except possibly one at the start symbol, if the
// start symbol derives the empty string), by adding, for every production
// containing a nullable non-terminal, every alternative with that
// non-terminal omitted (spec §11 "grammar-transform helpers").
func (g *Grammar) RemoveEpsilons() *Grammar {
	nullable := map[NonTerminal]bool{}
	for _, nt := range g.vocab.NonTerminals() {
		if g.derivesEpsilon(nt) {
			nullable[nt] = true
		}
	}

	out := g.cloneEmpty()
	seen := map[string]bool{}

	var addIfNew func(head NonTerminal, body []Symbol)
	addIfNew = func(head NonTerminal, body []Symbol) {
		key := string(head) + "->"
		for _, s := range body {
			key += s.String() + " "
		}
		if seen[key] {
			return
		}
		seen[key] = true
		if len(body) == 0 {
			out.AddProduction(head, Sym(EpsilonSymbol))
			return
		}
		out.AddProduction(head, syms(body...)...)
	}

	for _, p := range g.productions {
		body := bodySymbols(p)
		if len(body) == 1 && body[0].IsEpsilon() {
			if p.Head == g.StartSymbol() {
				addIfNew(p.Head, nil)
			}
			continue
		}

		// generate every combination of included/omitted nullable
		// non-terminals in body, skipping the all-omitted case unless
		// something remains.
		var positions []int
		for i, s := range body {
			if s.IsNonTerminal() && nullable[s.NonTerm()] {
				positions = append(positions, i)
			}
		}

		combos := 1 << len(positions)
		for mask := 0; mask < combos; mask++ {
			omit := map[int]bool{}
			for bit, pos := range positions {
				if mask&(1<<bit) != 0 {
					omit[pos] = true
				}
			}
			var newBody []Symbol
			for i, s := range body {
				if omit[i] {
					continue
				}
				newBody = append(newBody, s)
			}
			if len(newBody) == 0 {
				continue // would be an epsilon production; drop unless start
			}
			addIfNew(p.Head, newBody)
		}
	}

	return out
}

// RemoveUnitProductions returns a grammar equivalent to g with every unit
// production A -> B (B a lone non-terminal) replaced by copies of B's own
// productions.
func (g *Grammar) RemoveUnitProductions() *Grammar {
	out := g.cloneEmpty()
	seen := map[string]bool{}

	addIfNew := func(head NonTerminal, body []Symbol) {
		key := string(head) + "->"
		for _, s := range body {
			key += s.String() + " "
		}
		if seen[key] {
			return
		}
		seen[key] = true
		out.AddProduction(head, syms(body...)...)
	}

	isUnit := func(body []Symbol) (NonTerminal, bool) {
		if len(body) == 1 && body[0].IsNonTerminal() {
			return body[0].NonTerm(), true
		}
		return "", false
	}

	for _, nt := range g.vocab.NonTerminals() {
		// compute the unit-closure of nt: every non-terminal reachable by
		// a chain of unit productions, nt included.
		closure := map[NonTerminal]bool{nt: true}
		worklist := []NonTerminal{nt}
		for len(worklist) > 0 {
			cur := worklist[0]
			worklist = worklist[1:]
			for _, p := range g.ProductionsFor(cur) {
				if target, ok := isUnit(bodySymbols(p)); ok {
					if !closure[target] {
						closure[target] = true
						worklist = append(worklist, target)
					}
				}
			}
		}

		for member := range closure {
			for _, p := range g.ProductionsFor(member) {
				body := bodySymbols(p)
				if _, ok := isUnit(body); ok {
					continue
				}
				addIfNew(nt, body)
			}
		}
	}

	return out
}

// RemoveLeftRecursion returns a grammar equivalent to g with all direct and
// indirect left recursion eliminated via the standard algorithm (Aho,
// Sethi, Ullman §4.3.3), after first removing epsilon productions (the
// algorithm assumes none remain).
func (g *Grammar) RemoveLeftRecursion() *Grammar {
	src := g.RemoveEpsilons()

	nts := src.vocab.NonTerminals()
	bodies := map[NonTerminal][][]Symbol{}
	for _, nt := range nts {
		for _, p := range src.ProductionsFor(nt) {
			bodies[nt] = append(bodies[nt], bodySymbols(p))
		}
	}

	primeCount := map[NonTerminal]int{}
	primeName := func(nt NonTerminal) NonTerminal {
		return NonTerminal(string(nt) + "-P")
	}

	for i, Ai := range nts {
		for j := 0; j < i; j++ {
			Aj := nts[j]
			var replaced [][]Symbol
			for _, body := range bodies[Ai] {
				if len(body) > 0 && body[0].IsNonTerminal() && body[0].NonTerm() == Aj {
					rest := body[1:]
					for _, ajBody := range bodies[Aj] {
						replaced = append(replaced, append(append([]Symbol{}, ajBody...), rest...))
					}
				} else {
					replaced = append(replaced, body)
				}
			}
			bodies[Ai] = replaced
		}

		// eliminate immediate left recursion on Ai.
		var alpha [][]Symbol // recursive: Ai -> Ai alpha
		var beta [][]Symbol  // non-recursive
		for _, body := range bodies[Ai] {
			if len(body) > 0 && body[0].IsNonTerminal() && body[0].NonTerm() == Ai {
				alpha = append(alpha, body[1:])
			} else {
				beta = append(beta, body)
			}
		}
		if len(alpha) == 0 {
			continue
		}
		primeCount[Ai]++
		aiPrime := primeName(Ai)

		var newAi [][]Symbol
		for _, b := range beta {
			newAi = append(newAi, append(append([]Symbol{}, b...), NT(aiPrime)))
		}
		bodies[Ai] = newAi

		var newPrime [][]Symbol
		for _, a := range alpha {
			newPrime = append(newPrime, append(append([]Symbol{}, a...), NT(aiPrime)))
		}
		newPrime = append(newPrime, []Symbol{EpsilonSymbol})
		bodies[aiPrime] = newPrime
	}

	outNTs := append([]NonTerminal{}, nts...)
	for _, nt := range nts {
		if primeCount[nt] > 0 {
			outNTs = append(outNTs, primeName(nt))
		}
	}
	out := NewGrammar(NewVocabulary(g.vocab.Terminals()[2:], outNTs))
	for _, nt := range nts {
		for _, body := range bodies[nt] {
			out.AddProduction(nt, syms(body...)...)
		}
		if primeCount[nt] > 0 {
			for _, body := range bodies[primeName(nt)] {
				out.AddProduction(primeName(nt), syms(body...)...)
			}
		}
	}
	return out
}

// LeftFactor returns a grammar equivalent to g with immediate
// non-determinism from shared production prefixes factored out, one
// round per non-terminal (repeated application of this pass converges for
// grammars that are left-factorable in finitely many rounds).
func (g *Grammar) LeftFactor() *Grammar {
	out := g.cloneEmpty()
	extra := map[NonTerminal][][]Symbol{}
	var primes []NonTerminal

	for _, nt := range g.vocab.NonTerminals() {
		bodies := [][]Symbol{}
		for _, p := range g.ProductionsFor(nt) {
			bodies = append(bodies, bodySymbols(p))
		}

		groups := map[string][][]Symbol{}
		var order []string
		for _, b := range bodies {
			key := ""
			if len(b) > 0 {
				key = b[0].String()
			}
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], b)
		}

		factorCount := 0
		for _, key := range order {
			group := groups[key]
			if len(group) == 1 || key == "" {
				for _, b := range group {
					out.AddProduction(nt, syms(b...)...)
				}
				continue
			}
			factorCount++
			prime := NonTerminal(fmt.Sprintf("%s-P%d", nt, factorCount))
			primes = append(primes, prime)
			out.AddProduction(nt, append(syms(group[0][0]), Sym(NT(prime)))...)
			for _, b := range group {
				rest := b[1:]
				if len(rest) == 0 {
					extra[prime] = append(extra[prime], []Symbol{EpsilonSymbol})
				} else {
					extra[prime] = append(extra[prime], rest)
				}
			}
		}
	}

	for nt, bodies := range extra {
		for _, b := range bodies {
			out.AddProduction(nt, syms(b...)...)
		}
	}

	// declare the synthesized non-terminals alongside the original ones.
	out.vocab = NewVocabulary(g.vocab.Terminals()[2:], append(append([]NonTerminal{}, g.vocab.NonTerminals()...), primes...))
	return out
}

// IsLL1 reports whether g is parseable by a predictive LL(1) driver: no
// non-terminal has two alternatives whose FIRST sets intersect, and no
// non-terminal that is nullable has a FIRST set intersecting its own
// FOLLOW set. Computes FIRST/FOLLOW as a side effect if not already cached.
func (g *Grammar) IsLL1() (bool, error) {
	if err := g.ComputeFirst(); err != nil {
		return false, err
	}
	if err := g.ComputeFollow(); err != nil {
		return false, err
	}

	for _, nt := range g.vocab.NonTerminals() {
		prods := g.ProductionsFor(nt)
		seen := map[Terminal]bool{}
		nullableCount := 0
		for _, p := range prods {
			ss := SymbolString{Symbols: p.Symbols()}
			first := g.FirstOfString(&ss)
			for t := range first {
				if t == Epsilon {
					nullableCount++
					continue
				}
				if seen[t] {
					return false, nil
				}
				seen[t] = true
			}
		}
		if nullableCount > 1 {
			return false, nil // two alternatives both derive epsilon
		}
		if nullableCount > 0 {
			for t := range g.followCache[nt] {
				if seen[t] {
					return false, nil
				}
			}
		}
	}
	return true, nil
}

// ErrorAction is the callback shape a caller may attach to an LL1Table's
// error cell to customize panic-mode recovery at that (non-terminal,
// terminal) pair (spec §4.7 step 3: "if it returns 'synchronized', consume
// and resume"). Returns whether it synchronized the parse.
type ErrorAction func(stack *LLStack, top ProductionElement, tok Token) bool

// LL1Entry is a single cell of an LL1Table: either a production reference,
// or an error cell optionally carrying a custom recovery action (spec §3
// "LL table entry": "error, or production reference, or error-action
// reference").
type LL1Entry struct {
	IsError     bool
	Production  Production
	SyncAction  ErrorAction
}

// LL1Table is the non-terminal x terminal parsing table spec §3 defines
// for LL(1) driving.
type LL1Table struct {
	cells map[NonTerminal]map[Terminal]LL1Entry
}

// Get returns the table entry for (nt, t); a zero-value error entry if
// none was set.
func (t *LL1Table) Get(nt NonTerminal, term Terminal) LL1Entry {
	row, ok := t.cells[nt]
	if !ok {
		return LL1Entry{IsError: true}
	}
	e, ok := row[term]
	if !ok {
		return LL1Entry{IsError: true}
	}
	return e
}

// SetSyncAction attaches a custom error-recovery action to the table's
// (nt, term) error cell, used by panic-mode recovery step 3 (spec §4.7).
// Has no effect on cells that already hold a production reference.
func (t *LL1Table) SetSyncAction(nt NonTerminal, term Terminal, action ErrorAction) {
	if t.cells == nil {
		t.cells = map[NonTerminal]map[Terminal]LL1Entry{}
	}
	row, ok := t.cells[nt]
	if !ok {
		row = map[Terminal]LL1Entry{}
		t.cells[nt] = row
	}
	if e, ok := row[term]; ok && !e.IsError {
		return
	}
	row[term] = LL1Entry{IsError: true, SyncAction: action}
}

func (t *LL1Table) set(nt NonTerminal, term Terminal, p Production) {
	if t.cells == nil {
		t.cells = map[NonTerminal]map[Terminal]LL1Entry{}
	}
	row, ok := t.cells[nt]
	if !ok {
		row = map[Terminal]LL1Entry{}
		t.cells[nt] = row
	}
	row[term] = LL1Entry{Production: p}
}

// NonTerminals returns the non-terminals that have at least one populated
// row in the table, for diagnostics / String rendering.
func (t *LL1Table) NonTerminals() []NonTerminal {
	out := make([]NonTerminal, 0, len(t.cells))
	for nt := range t.cells {
		out = append(out, nt)
	}
	return out
}

// LLTable builds the LL(1) parsing table for g (spec §3, §4.5). g must
// already be LL(1); this does not force it to be (no left-factoring/
// left-recursion removal is applied here — call those transforms first if
// needed).
func (g *Grammar) LLTable() (*LL1Table, error) {
	if err := g.ComputeFirst(); err != nil {
		return nil, err
	}
	if err := g.ComputeFollow(); err != nil {
		return nil, err
	}

	table := &LL1Table{}
	for _, p := range g.productions {
		ss := SymbolString{Symbols: p.Symbols()}
		first := g.FirstOfString(&ss)
		conflict := false
		for t := range first {
			if t == Epsilon {
				continue
			}
			if existing := table.Get(p.Head, t); !existing.IsError && !existing.Production.Equal(p) {
				conflict = true
			}
			table.set(p.Head, t, p)
		}
		if first[Epsilon] {
			for t := range g.followCache[p.Head] {
				if existing := table.Get(p.Head, t); !existing.IsError && !existing.Production.Equal(p) {
					conflict = true
				}
				table.set(p.Head, t, p)
			}
		}
		if conflict {
			return nil, fmt.Errorf("%w: grammar is not LL(1): conflicting entries for %s", ErrInvalidConstruction, p.Head)
		}
	}
	return table, nil
}
