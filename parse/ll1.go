package parse

import (
	"fmt"

	"github.com/M0ST4FA/parsix/grammar"
	"github.com/M0ST4FA/parsix/perr"
)

// DefaultErrorLimit is the recovered-error cap both drivers enforce unless
// overridden (spec §4.6: "a fixed limit (default 5)"). The LL driver
// applies the same cap to its own panic-mode recoveries, per spec §4.7's
// framing that panic mode is specified for both drivers under one
// recovery-counter discipline.
const DefaultErrorLimit = 5

// ParseLL1 drives the LL(1) main loop of spec §4.5 over tokens using
// table, starting from g's start symbol, with panic-mode recovery (spec
// §4.7 "LL panic") capped at errorLimit recovered errors. A non-positive
// errorLimit uses DefaultErrorLimit.
func ParseLL1(g *grammar.Grammar, table *grammar.LL1Table, tokens grammar.TokenStream, errorLimit int) error {
	if errorLimit <= 0 {
		errorLimit = DefaultErrorLimit
	}

	stack := grammar.NewLLStack(grammar.Sym(grammar.NT(g.StartSymbol())))
	tok := tokens.Next()
	recovered := 0

	for !stack.Empty() {
		top := stack.Pop()

		switch top.Kind() {
		case grammar.ElementSynthesized, grammar.ElementAction:
			top.Invoke(stack)
			continue
		}

		sym := top.Symbol()

		if sym.IsTerminal() {
			if sym.IsEpsilon() {
				continue
			}
			if sym.Term() == tok.Class() {
				if tokens.HasNext() {
					tok = tokens.Next()
				} else {
					tok = grammar.EOFToken(tok.Line(), tok.Column(), tok.FullLine())
				}
				continue
			}
			// Terminal mismatch: report, pretend matched, resume (spec
			// §4.7 "LL panic", terminal case).
			recovered++
			if recovered > errorLimit {
				return perr.Wrap(perr.KindErrorLimitExceeded,
					fmt.Sprintf("LL(1) parse exceeded %d recovered errors", errorLimit), nil).
					WithStack(stack.States()).
					WithOffense(tok.Lexeme())
			}
			continue
		}

		nt := sym.NonTerm()
		entry := table.Get(nt, tok.Class())
		if entry.IsError {
			recovered++
			if recovered > errorLimit {
				return perr.Wrap(perr.KindErrorLimitExceeded,
					fmt.Sprintf("LL(1) parse exceeded %d recovered errors", errorLimit), nil).
					WithStack(stack.States()).
					WithOffense(tok.Lexeme())
			}
			resolved, synced := recoverLL(g, nt, table, tokens, &tok, entry)
			if !synced {
				// Step 4: pop A (already popped) and move on to the next
				// stack top; if the stack is now empty this is reported
				// here as an unrecoverable failure.
				if stack.Empty() {
					return perr.Wrap(perr.KindUnrecoverable, "LL(1) panic-mode recovery could not synchronize", nil).
						WithStack(stack.States()).
						WithOffense(tok.Lexeme())
				}
				continue
			}
			stack.PushBody(resolved.Body)
			continue
		}

		if entry.Production.Len() == 0 {
			return perr.Wrap(perr.KindInvalidConstruction,
				"table references a production with an empty symbol body", nil).
				WithStack(stack.States()).
				WithOffense(tok.Lexeme())
		}
		stack.PushBody(entry.Production.Body)
	}

	if tok.Class() != grammar.EOF {
		return perr.Wrap(perr.KindUnrecoverable, "input remains after LL(1) parse stack emptied", nil).
			WithStack(stack.States()).
			WithOffense(tok.Lexeme())
	}
	return nil
}

// recoverLL implements spec §4.7's non-terminal panic-mode branch: try an
// epsilon production of A first; else scan forward through tokens for one
// the table accepts under A (or whose error cell's SyncAction reports
// synchronized); else fail by running off the end of input.
func recoverLL(g *grammar.Grammar, a grammar.NonTerminal, table *grammar.LL1Table, tokens grammar.TokenStream, tok *grammar.Token, origEntry grammar.LL1Entry) (grammar.Production, bool) {
	for _, p := range g.ProductionsFor(a) {
		if p.IsEpsilon() {
			return p, true
		}
	}

	for {
		if (*tok).Class() == grammar.EOF {
			return grammar.Production{}, false
		}

		entry := table.Get(a, (*tok).Class())
		if !entry.IsError {
			return entry.Production, true
		}
		if entry.SyncAction != nil {
			stack := grammar.NewLLStack()
			if entry.SyncAction(stack, grammar.Sym(grammar.NT(a)), *tok) {
				if tokens.HasNext() {
					*tok = tokens.Next()
				}
				return table.Get(a, (*tok).Class()).Production, true
			}
		}

		if tokens.HasNext() {
			*tok = tokens.Next()
		} else {
			*tok = grammar.EOFToken((*tok).Line(), (*tok).Column(), (*tok).FullLine())
		}
	}
}
