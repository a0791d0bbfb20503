package parsix_test

import (
	"strconv"
	"testing"

	"github.com/M0ST4FA/parsix/grammar"
	"github.com/M0ST4FA/parsix/parse"
	"github.com/M0ST4FA/parsix/translation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceTokenStream is a TokenStream over a fixed, pre-lexed token list, used
// by these tests in place of driving fsm/lex: the canonical arithmetic
// grammar scenarios of spec §8 exercise the grammar/automaton/parse
// machinery, not lexing.
type sliceTokenStream struct {
	toks []grammar.Token
	pos  int
}

func newTokenStream(terms ...string) *sliceTokenStream {
	s := &sliceTokenStream{}
	for _, t := range terms {
		class := grammar.Terminal(t)
		lexeme := t
		if t != "+" && t != "*" && t != "(" && t != ")" {
			class = "id"
		}
		s.toks = append(s.toks, grammar.NewToken(class, lexeme, 1, 1, ""))
	}
	return s
}

func (s *sliceTokenStream) Next() grammar.Token {
	if s.pos >= len(s.toks) {
		return grammar.EOFToken(1, 1, "")
	}
	t := s.toks[s.pos]
	s.pos++
	return t
}

func (s *sliceTokenStream) Peek() grammar.Token {
	if s.pos >= len(s.toks) {
		return grammar.EOFToken(1, 1, "")
	}
	return s.toks[s.pos]
}

func (s *sliceTokenStream) HasNext() bool { return s.pos < len(s.toks) }

// buildArithLRGrammar builds E -> E + T | T, T -> T * F | F, F -> ( E ) |
// id, with reduce actions that compute the arithmetic value of the
// accepted input via the LR stack's semantic Data (spec §8 scenario 1-4).
func buildArithLRGrammar(t *testing.T) *grammar.Grammar {
	vocab := grammar.NewVocabulary(
		[]grammar.Terminal{"+", "*", "(", ")", "id"},
		[]grammar.NonTerminal{"E", "T", "F"},
	)
	g := grammar.NewGrammar(vocab)

	must := func(i int, err error) int {
		require.NoError(t, err)
		return i
	}

	sym := grammar.Sym
	T, NT := grammar.T, grammar.NT

	pE1 := must(g.AddProduction("E", sym(NT("E")), sym(T("+")), sym(NT("T"))))
	pE2 := must(g.AddProduction("E", sym(NT("T"))))
	pT1 := must(g.AddProduction("T", sym(NT("T")), sym(T("*")), sym(NT("F"))))
	pT2 := must(g.AddProduction("T", sym(NT("F"))))
	pF1 := must(g.AddProduction("F", sym(T("(")), sym(NT("E")), sym(T(")"))))
	pF2 := must(g.AddProduction("F", sym(T("id"))))

	// val reads a frame's integer value; a frame pushed by panic-mode
	// recovery carries no Data and counts as 0.
	val := func(f grammar.LRStackElement) int {
		v, _ := f.Data.(int)
		return v
	}

	g.SetPostfix(pE1, func(stack *grammar.LRStack, newState *grammar.LRStackElement) {
		f := stack.Frames()
		newState.Data = val(f[len(f)-3]) + val(f[len(f)-1])
	}, nil)
	g.SetPostfix(pE2, func(stack *grammar.LRStack, newState *grammar.LRStackElement) {
		f := stack.Frames()
		newState.Data = val(f[len(f)-1])
	}, nil)
	g.SetPostfix(pT1, func(stack *grammar.LRStack, newState *grammar.LRStackElement) {
		f := stack.Frames()
		newState.Data = val(f[len(f)-3]) * val(f[len(f)-1])
	}, nil)
	g.SetPostfix(pT2, func(stack *grammar.LRStack, newState *grammar.LRStackElement) {
		f := stack.Frames()
		newState.Data = val(f[len(f)-1])
	}, nil)
	g.SetPostfix(pF1, func(stack *grammar.LRStack, newState *grammar.LRStackElement) {
		f := stack.Frames()
		newState.Data = val(f[len(f)-2])
	}, nil)
	g.SetPostfix(pF2, func(stack *grammar.LRStack, newState *grammar.LRStackElement) {
		f := stack.Frames()
		last := f[len(f)-1].LastToken
		v, _ := strconv.Atoi(last.Lexeme())
		newState.Data = v
	}, nil)

	return g
}

func parseArith(t *testing.T, terms ...string) (int, error) {
	g := buildArithLRGrammar(t)
	table, err := parse.BuildCLR1Table(g)
	require.NoError(t, err)

	table.Grammar().SetPostfix(0, nil, func(stack *grammar.LRStack, newState *grammar.LRStackElement, result any) {
		out := result.(*int)
		*out = newState.Data.(int)
	})

	var result int
	_, err = parse.ParseLR(table, newTokenStream(terms...), parse.DefaultErrorLimit, &result)
	return result, err
}

func TestArithLR_SingleID(t *testing.T) {
	v, err := parseArith(t, "5")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestArithLR_Addition(t *testing.T) {
	v, err := parseArith(t, "2", "+", "3")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestArithLR_PrecedenceOfMultiplication(t *testing.T) {
	v, err := parseArith(t, "2", "*", "3", "+", "4")
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestArithLR_Parens(t *testing.T) {
	v, err := parseArith(t, "(", "2", "+", "3", ")", "*", "4")
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

// TestArithLR_TrailingPlusFails exercises spec §8 scenario 5: "id +" has
// no way to synchronize (the dangling "+" leaves no FOLLOW-admitting
// suffix), so the parse fails.
func TestArithLR_TrailingPlusFails(t *testing.T) {
	_, err := parseArith(t, "1", "+")
	assert.Error(t, err)
}

// TestArithLR_DoublePlusRecovers exercises spec §8 scenario 6: the second
// "+" triggers panic-mode recovery, which pushes the GOTO state on T (the
// "+" is in FOLLOW(T)) and resumes on that same "+", and the parse still
// accepts.
func TestArithLR_DoublePlusRecovers(t *testing.T) {
	_, err := parseArith(t, "1", "+", "+", "2")
	assert.NoError(t, err)
}

// buildArithLLGrammar builds the right-recursive LL(1) equivalent of the
// canonical arithmetic grammar (spec §8's "equivalent LL scenarios").
func buildArithLLGrammar(t *testing.T) *grammar.Grammar {
	vocab := grammar.NewVocabulary(
		[]grammar.Terminal{"+", "*", "(", ")", "id"},
		[]grammar.NonTerminal{"E", "E'", "T", "T'", "F"},
	)
	g := grammar.NewGrammar(vocab)

	must := func(_ int, err error) { require.NoError(t, err) }
	sym := grammar.Sym
	T, NT := grammar.T, grammar.NT

	must(g.AddProduction("E", sym(NT("T")), sym(NT("E'"))))
	must(g.AddProduction("E'", sym(T("+")), sym(NT("T")), sym(NT("E'"))))
	must(g.AddProduction("E'", sym(grammar.EpsilonSymbol)))
	must(g.AddProduction("T", sym(NT("F")), sym(NT("T'"))))
	must(g.AddProduction("T'", sym(T("*")), sym(NT("F")), sym(NT("T'"))))
	must(g.AddProduction("T'", sym(grammar.EpsilonSymbol)))
	must(g.AddProduction("F", sym(T("(")), sym(NT("E")), sym(T(")"))))
	must(g.AddProduction("F", sym(T("id"))))

	return g
}

func parseArithLL(t *testing.T, terms ...string) error {
	g := buildArithLLGrammar(t)
	table, err := parse.NewLL1Table(g)
	require.NoError(t, err)
	return parse.ParseLL1(g, table, newTokenStream(terms...), parse.DefaultErrorLimit)
}

func TestArithLL_AcceptsScenarios1Through4(t *testing.T) {
	cases := [][]string{
		{"5"},
		{"2", "+", "3"},
		{"2", "*", "3", "+", "4"},
		{"(", "2", "+", "3", ")", "*", "4"},
	}
	for _, terms := range cases {
		err := parseArithLL(t, terms...)
		assert.NoError(t, err, "terms=%v", terms)
	}
}

func TestArithGrammar_IsLL1(t *testing.T) {
	g := buildArithLLGrammar(t)
	ok, err := g.IsLL1()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArithLRGrammar_IsNotLL1(t *testing.T) {
	g := buildArithLRGrammar(t)
	ok, err := g.IsLL1()
	require.NoError(t, err)
	assert.False(t, ok, "left-recursive grammar must not be reported LL(1)")
}

// buildArithLRGrammarViaTranslation builds the same LR(1) arithmetic
// grammar as buildArithLRGrammar, but each reduce action computes the
// head's "value" attribute by running a translation.Binding set through
// translation.Evaluate instead of indexing stack.Frames() by hand — the
// declarative alternative the translation package (spec.md §11 SUPPLEMENT)
// exists to offer.
func buildArithLRGrammarViaTranslation(t *testing.T) *grammar.Grammar {
	vocab := grammar.NewVocabulary(
		[]grammar.Terminal{"+", "*", "(", ")", "id"},
		[]grammar.NonTerminal{"E", "T", "F"},
	)
	g := grammar.NewGrammar(vocab)

	must := func(i int, err error) int {
		require.NoError(t, err)
		return i
	}

	sym := grammar.Sym
	T, NT := grammar.T, grammar.NT

	pE1 := must(g.AddProduction("E", sym(NT("E")), sym(T("+")), sym(NT("T"))))
	pE2 := must(g.AddProduction("E", sym(NT("T"))))
	pT1 := must(g.AddProduction("T", sym(NT("T")), sym(T("*")), sym(NT("F"))))
	pT2 := must(g.AddProduction("T", sym(NT("F"))))
	pF1 := must(g.AddProduction("F", sym(T("(")), sym(NT("E")), sym(T(")"))))
	pF2 := must(g.AddProduction("F", sym(T("id"))))

	value := func(nodeIndex int) translation.AttrRef {
		return translation.AttrRef{NodeIndex: nodeIndex, Name: "value"}
	}
	headValue := translation.AttrRef{NodeIndex: translation.HeadIndex, Name: "value"}

	// attrsOf reads a body symbol's attribute bag: a non-terminal's is the
	// NodeAttrs its own reduction produced; a shifted terminal has none
	// yet, so a numeric lexeme (the "id" terminal here) is lifted into one
	// on the spot.
	attrsOf := func(f grammar.LRStackElement) translation.NodeAttrs {
		if attrs, ok := f.Data.(translation.NodeAttrs); ok {
			return attrs
		}
		if v, err := strconv.Atoi(f.LastToken.Lexeme()); err == nil {
			return translation.NodeAttrs{"value": v}
		}
		return translation.NodeAttrs{}
	}

	reduceVia := func(bodyLen int, bindings []translation.Binding) grammar.LRReduceAction {
		return func(stack *grammar.LRStack, newState *grammar.LRStackElement) {
			frames := stack.Frames()
			body := make([]translation.NodeAttrs, bodyLen)
			for i := 0; i < bodyLen; i++ {
				body[i] = attrsOf(frames[len(frames)-bodyLen+i])
			}
			head := translation.NodeAttrs{}
			require.NoError(t, translation.Evaluate(bindings, head, body))
			newState.Data = head
		}
	}

	sum := func(args []any) any { return args[0].(int) + args[1].(int) }
	product := func(args []any) any { return args[0].(int) * args[1].(int) }
	identity := func(args []any) any { return args[0] }

	g.SetPostfix(pE1, reduceVia(3, []translation.Binding{
		{Dest: headValue, Requirements: []translation.AttrRef{value(0), value(2)}, Setter: sum},
	}), nil)
	g.SetPostfix(pE2, reduceVia(1, []translation.Binding{
		{Dest: headValue, Requirements: []translation.AttrRef{value(0)}, Setter: identity},
	}), nil)
	g.SetPostfix(pT1, reduceVia(3, []translation.Binding{
		{Dest: headValue, Requirements: []translation.AttrRef{value(0), value(2)}, Setter: product},
	}), nil)
	g.SetPostfix(pT2, reduceVia(1, []translation.Binding{
		{Dest: headValue, Requirements: []translation.AttrRef{value(0)}, Setter: identity},
	}), nil)
	g.SetPostfix(pF1, reduceVia(3, []translation.Binding{
		{Dest: headValue, Requirements: []translation.AttrRef{value(1)}, Setter: identity},
	}), nil)
	g.SetPostfix(pF2, reduceVia(1, []translation.Binding{
		{Dest: headValue, Requirements: []translation.AttrRef{value(0)}, Setter: identity},
	}), nil)

	return g
}

func TestArithLR_ViaTranslationBindings(t *testing.T) {
	g := buildArithLRGrammarViaTranslation(t)
	table, err := parse.BuildCLR1Table(g)
	require.NoError(t, err)

	table.Grammar().SetPostfix(0, nil, func(stack *grammar.LRStack, newState *grammar.LRStackElement, result any) {
		attrs := newState.Data.(translation.NodeAttrs)
		*result.(*int) = attrs["value"].(int)
	})

	var result int
	_, err = parse.ParseLR(table, newTokenStream("2", "*", "3", "+", "4"), parse.DefaultErrorLimit, &result)
	require.NoError(t, err)
	assert.Equal(t, 10, result)
}
