package grammar

import "strings"

// SymbolString is an ordered sequence of symbols with a cacheable FIRST set
// (spec §3 "Symbol string"). The cache is filled by Grammar.FirstOfString
// and is safe to reuse once a grammar's FIRST sets have stabilized.
type SymbolString struct {
	Symbols []Symbol

	cached    bool
	firstSet  map[Terminal]bool
}

// NewSymbolString builds a SymbolString over the given symbols.
func NewSymbolString(syms ...Symbol) SymbolString {
	return SymbolString{Symbols: syms}
}

// Len returns the number of symbols in the string.
func (ss SymbolString) Len() int { return len(ss.Symbols) }

// String renders the symbol string space-separated.
func (ss SymbolString) String() string {
	parts := make([]string, len(ss.Symbols))
	for i, s := range ss.Symbols {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// ElementKind tags which variant of ProductionElement is populated.
type ElementKind int

const (
	// ElementSymbol marks an element that is a plain grammar symbol.
	ElementSymbol ElementKind = iota
	// ElementSynthesized marks a synthesized record: caller data plus an
	// LL action handle invoked when the record is popped from the LL
	// parsing stack (spec §3, §4.5).
	ElementSynthesized
	// ElementAction marks an action record: caller data plus an action
	// handle invoked when the record is popped from the LL parsing stack.
	// Panic-mode synchronization callbacks are attached to LL1Table error
	// cells (LL1Table.SetSyncAction), not to action records.
	ElementAction
)

// LLRecordAction is the callback shape for synthesized/action records
// popped during LL(1) parsing (spec §6: "(stack, record-data) -> void").
type LLRecordAction func(stack *LLStack, data any)

// ProductionElement is a tagged value with three variants (spec §3): a
// grammar symbol, a synthesized record, or an action record. Only
// ElementSymbol elements count toward a production's "length" for LR
// reductions.
type ProductionElement struct {
	kind   ElementKind
	symbol Symbol
	data   any
	action LLRecordAction
}

// Sym wraps a grammar Symbol as a production element.
func Sym(s Symbol) ProductionElement {
	return ProductionElement{kind: ElementSymbol, symbol: s}
}

// Synthesized builds a synthesized-record production element.
func Synthesized(data any, action LLRecordAction) ProductionElement {
	return ProductionElement{kind: ElementSynthesized, data: data, action: action}
}

// ActionRecord builds an action-record production element, whose action
// runs when the LL(1) driver pops it at that point in a production body.
func ActionRecord(data any, action LLRecordAction) ProductionElement {
	return ProductionElement{kind: ElementAction, data: data, action: action}
}

// Kind reports which variant pe is.
func (pe ProductionElement) Kind() ElementKind { return pe.kind }

// IsSymbol reports whether pe carries a grammar symbol.
func (pe ProductionElement) IsSymbol() bool { return pe.kind == ElementSymbol }

// Symbol returns the grammar symbol carried by pe. Only meaningful when
// IsSymbol is true.
func (pe ProductionElement) Symbol() Symbol { return pe.symbol }

// Data returns the opaque caller data carried by a record element.
func (pe ProductionElement) Data() any { return pe.data }

// Invoke calls a record element's action handle, if it has one.
func (pe ProductionElement) Invoke(stack *LLStack) {
	if pe.action != nil {
		pe.action(stack, pe.data)
	}
}

func (pe ProductionElement) String() string {
	switch pe.kind {
	case ElementSymbol:
		return pe.symbol.String()
	case ElementSynthesized:
		return "{synthesized}"
	default:
		return "{action}"
	}
}

// Production is a single grammar rule: a head non-terminal plus an ordered,
// non-empty body of production elements (spec §3). Index is assigned when
// the production is placed into a Grammar's production vector. Equality
// ignores Index and the postfix action.
type Production struct {
	Head  NonTerminal
	Body  []ProductionElement
	Index int

	// Postfix, if non-nil, is invoked when this production is reduced by
	// an LR driver (spec §4.6, §6: "(stack, new-state) -> void").
	Postfix LRReduceAction

	// Accept, if non-nil on production 0, is invoked in place of Postfix
	// when production 0 is the one accepted by an LR driver (spec §4.6's
	// "accept" step; spec §9 open question: the source's uniform-vs-split
	// callback ambiguity is resolved here by giving accept its own
	// explicitly-typed field rather than an unchecked cast on Postfix).
	Accept LRAcceptAction
}

// LRReduceAction is the callback shape invoked when a production is reduced
// by an LR driver (spec §6: "(stack, new-state) -> void").
type LRReduceAction func(stack *LRStack, newState *LRStackElement)

// LRAcceptAction is the callback shape invoked when the augmented start
// production is accepted (spec §6: "(stack, new-state, parser-result) ->
// void").
type LRAcceptAction func(stack *LRStack, newState *LRStackElement, result any)

// Symbols returns the grammar symbols in the body, skipping synthesized and
// action elements (spec §3: "Only grammar-symbol elements count toward the
// length used for LR reductions").
func (p Production) Symbols() []Symbol {
	var out []Symbol
	for _, e := range p.Body {
		if e.IsSymbol() {
			out = append(out, e.Symbol())
		}
	}
	return out
}

// Len returns the number of grammar-symbol elements in the body.
func (p Production) Len() int { return len(p.Symbols()) }

// IsEpsilon reports whether p is a single-epsilon production A -> ε.
func (p Production) IsEpsilon() bool {
	syms := p.Symbols()
	return len(syms) == 1 && syms[0].IsEpsilon()
}

// Equal compares head and body, ignoring Index and the postfix/accept
// actions (spec §3: "Equality ignores index and action").
func (p Production) Equal(o Production) bool {
	if p.Head != o.Head {
		return false
	}
	if len(p.Body) != len(o.Body) {
		return false
	}
	for i := range p.Body {
		a, b := p.Body[i], o.Body[i]
		if a.kind != b.kind {
			return false
		}
		if a.kind == ElementSymbol && !a.symbol.Equal(b.symbol) {
			return false
		}
	}
	return true
}

func (p Production) String() string {
	parts := make([]string, len(p.Body))
	for i, e := range p.Body {
		parts[i] = e.String()
	}
	return string(p.Head) + " -> " + strings.Join(parts, " ")
}
