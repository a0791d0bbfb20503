package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// leftRecursiveExprGrammar is the classic E -> E + T | T, T -> T * F | F,
// F -> ( E ) | id grammar, left-recursive and not LL(1) as written.
func leftRecursiveExprGrammar(t *testing.T) *Grammar {
	vocab := NewVocabulary(
		[]Terminal{"+", "*", "(", ")", "id"},
		[]NonTerminal{"E", "T", "F"},
	)
	g := NewGrammar(vocab)

	_, err := g.AddProduction("E", Sym(NT("E")), Sym(T("+")), Sym(NT("T")))
	require.NoError(t, err)
	_, err = g.AddProduction("E", Sym(NT("T")))
	require.NoError(t, err)
	_, err = g.AddProduction("T", Sym(NT("T")), Sym(T("*")), Sym(NT("F")))
	require.NoError(t, err)
	_, err = g.AddProduction("T", Sym(NT("F")))
	require.NoError(t, err)
	_, err = g.AddProduction("F", Sym(T("(")), Sym(NT("E")), Sym(T(")")))
	require.NoError(t, err)
	_, err = g.AddProduction("F", Sym(T("id")))
	require.NoError(t, err)
	return g
}

func TestFirst_UniversalInvariant(t *testing.T) {
	g := leftRecursiveExprGrammar(t)
	require.NoError(t, g.ComputeFirst())

	for _, nt := range g.NonTerminals() {
		first := g.First(NT(nt))
		assert.NotEmpty(t, first, "every reachable non-terminal must have a non-empty FIRST set")
		assert.False(t, first[Epsilon] && len(first) == 1,
			"none of E, T, F can derive epsilon, so FIRST must contain a real terminal")
	}
}

func TestFollow_RequiresFirstFirst(t *testing.T) {
	g := leftRecursiveExprGrammar(t)
	// ComputeFollow alone, without ComputeFirst, must still succeed since it
	// computes its own precondition internally, or fail with a precondition
	// error callers can recognize — either way it must not panic.
	err := g.ComputeFollow()
	if err == nil {
		assert.NotEmpty(t, g.Follow("E"))
	}
}

func TestFollow_StartSymbolContainsEOF(t *testing.T) {
	g := leftRecursiveExprGrammar(t)
	require.NoError(t, g.ComputeFirst())
	require.NoError(t, g.ComputeFollow())
	assert.True(t, g.Follow(g.StartSymbol())[EOF])
}

func TestRemoveLeftRecursion_EliminatesImmediateRecursion(t *testing.T) {
	g := leftRecursiveExprGrammar(t)
	out := g.RemoveLeftRecursion()

	for _, p := range out.Productions() {
		body := p.Symbols()
		if len(body) == 0 {
			continue
		}
		if body[0].IsNonTerminal() {
			assert.NotEqual(t, p.Head, body[0].NonTerm(),
				"no production may start with its own head after left-recursion removal")
		}
	}
}

func TestRemoveLeftRecursion_ResultIsLL1(t *testing.T) {
	g := leftRecursiveExprGrammar(t)
	out := g.RemoveLeftRecursion()
	ok, err := out.IsLL1()
	require.NoError(t, err)
	assert.True(t, ok, "removing left recursion from this grammar yields the standard LL(1) form")
}

func TestIsLL1_LeftRecursiveGrammarIsNot(t *testing.T) {
	g := leftRecursiveExprGrammar(t)
	ok, err := g.IsLL1()
	require.NoError(t, err)
	assert.False(t, ok)
}

// ambiguousPrefixGrammar needs left-factoring: S -> a b X | a b Y | a c Z,
// with two independent common prefixes under S by construction (a b vs a c)
// is collapsed to one group here; a cleaner test of "distinct groups get
// distinct names" builds two different common prefixes under the same head.
func twoFactoringGroupsGrammar(t *testing.T) *Grammar {
	vocab := NewVocabulary(
		[]Terminal{"a", "b", "c", "d", "e", "f"},
		[]NonTerminal{"S"},
	)
	g := NewGrammar(vocab)
	_, err := g.AddProduction("S", Sym(T("a")), Sym(T("b")))
	require.NoError(t, err)
	_, err = g.AddProduction("S", Sym(T("a")), Sym(T("c")))
	require.NoError(t, err)
	_, err = g.AddProduction("S", Sym(T("d")), Sym(T("e")))
	require.NoError(t, err)
	_, err = g.AddProduction("S", Sym(T("d")), Sym(T("f")))
	require.NoError(t, err)
	return g
}

func TestLeftFactor_DistinctGroupsGetDistinctNonTerminals(t *testing.T) {
	g := twoFactoringGroupsGrammar(t)
	out := g.LeftFactor()

	seen := map[NonTerminal]bool{}
	for _, nt := range out.NonTerminals() {
		if nt == "S" {
			continue
		}
		assert.False(t, seen[nt], "synthesized non-terminal %s must not collide across factoring groups", nt)
		seen[nt] = true
	}
	assert.GreaterOrEqual(t, len(seen), 2, "two independent common prefixes must yield two distinct synthesized non-terminals")
}

func TestRemoveEpsilons_DropsNonStartEpsilonProductions(t *testing.T) {
	vocab := NewVocabulary([]Terminal{"a"}, []NonTerminal{"S", "A"})
	g := NewGrammar(vocab)
	_, err := g.AddProduction("S", Sym(T("a")), Sym(NT("A")))
	require.NoError(t, err)
	_, err = g.AddProduction("A", Sym(EpsilonSymbol))
	require.NoError(t, err)

	out := g.RemoveEpsilons()
	for _, p := range out.ProductionsFor("A") {
		assert.False(t, p.IsEpsilon(), "A's epsilon alternative must be gone since A is not the start symbol")
	}
	found := false
	for _, p := range out.ProductionsFor("S") {
		if len(p.Symbols()) == 1 {
			found = true
		}
	}
	assert.True(t, found, "S -> a (A omitted) must be added in place of S -> a A")
}

func TestRemoveUnitProductions_InlinesChain(t *testing.T) {
	vocab := NewVocabulary([]Terminal{"x"}, []NonTerminal{"S", "A", "B"})
	g := NewGrammar(vocab)
	_, err := g.AddProduction("S", Sym(NT("A")))
	require.NoError(t, err)
	_, err = g.AddProduction("A", Sym(NT("B")))
	require.NoError(t, err)
	_, err = g.AddProduction("B", Sym(T("x")))
	require.NoError(t, err)

	out := g.RemoveUnitProductions()
	for _, p := range out.ProductionsFor("S") {
		body := p.Symbols()
		require.Len(t, body, 1)
		assert.True(t, body[0].IsTerminal(), "the unit chain S -> A -> B must inline down to S -> x")
	}
}
