package parse

import (
	"fmt"

	"github.com/M0ST4FA/parsix/grammar"
	"github.com/M0ST4FA/parsix/perr"
)

// stackFrames renders an LRStack's state ids bottom to top as the
// human-readable frames perr.Error.WithStack expects.
func stackFrames(stack *grammar.LRStack) []string {
	states := stack.States()
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = fmt.Sprintf("state %d", s)
	}
	return out
}

// ParseLR drives the LR main loop of spec §4.6 over tokens using table,
// with panic-mode recovery (spec §4.7 "LR panic") capped at errorLimit
// recovered errors (a non-positive errorLimit uses DefaultErrorLimit).
// result is the caller-typed accumulator threaded into the accept action
// (spec §6 "parse result"); ParseLR returns it unchanged if no accept
// action is attached to production 0.
func ParseLR(table LRParseTable, tokens grammar.TokenStream, errorLimit int, result any) (any, error) {
	if errorLimit <= 0 {
		errorLimit = DefaultErrorLimit
	}

	stack := grammar.NewLRStack()
	tok := tokens.Next()
	recovered := 0

	for {
		top := stack.Peek()
		action := table.Action(top.State, tok.Class())

		switch action.Kind {
		case ActionShift:
			stack.Push(grammar.LRStackElement{State: action.State, LastToken: tok})
			if tokens.HasNext() {
				tok = tokens.Next()
			} else {
				tok = grammar.EOFToken(tok.Line(), tok.Column(), tok.FullLine())
			}

		case ActionReduce:
			prod := table.Grammar().Production(action.Production)
			newState := grammar.LRStackElement{}
			if prod.Postfix != nil {
				prod.Postfix(stack, &newState)
			}
			for i := 0; i < prod.Len(); i++ {
				stack.Pop()
			}
			afterPop := stack.Peek().State
			gotoEntry := table.Goto(afterPop, prod.Head)
			if gotoEntry.IsError {
				return result, perr.Wrap(perr.KindTableInvariantViolated,
					fmt.Sprintf("no goto entry for state %d on %s after reducing %s", afterPop, prod.Head, prod), nil).
					WithStack(stackFrames(stack)).
					WithOffense(tok.Lexeme())
			}
			newState.State = gotoEntry.State
			stack.Push(newState)

		case ActionAccept:
			prod := table.Grammar().Production(action.Production)
			if prod.Accept != nil {
				top := stack.Peek()
				prod.Accept(stack, &top, result)
			}
			return result, nil

		default: // ActionError
			recovered++
			if recovered > errorLimit {
				return result, perr.Wrap(perr.KindErrorLimitExceeded,
					fmt.Sprintf("LR parse exceeded %d recovered errors", errorLimit), nil).
					WithStack(stackFrames(stack)).
					WithOffense(tok.Lexeme())
			}
			synced, err := recoverLR(table, stack, tokens, &tok)
			if err != nil {
				return result, err
			}
			if !synced {
				return result, perr.Wrap(perr.KindUnrecoverable, "LR parse could not synchronize after error", nil).
					WithStack(stackFrames(stack)).
					WithOffense(tok.Lexeme())
			}
		}
	}
}

// recoverLR implements spec §4.7's "LR panic" algorithm: pop states until
// one offers a non-error GOTO on some non-terminal, then scan forward
// through input for a token in FOLLOW of one of those non-terminals,
// pushing the corresponding GOTO target and resuming there.
func recoverLR(table LRParseTable, stack *grammar.LRStack, tokens grammar.TokenStream, tok *grammar.Token) (bool, error) {
	g := table.Grammar()
	if err := g.ComputeFirst(); err != nil {
		return false, err
	}
	if err := g.ComputeFollow(); err != nil {
		return false, err
	}

	var state int
	var candidates []grammar.NonTerminal
	for {
		if stack.Len() == 0 {
			return false, nil
		}
		state = stack.Peek().State
		candidates = candidates[:0]
		for _, nt := range g.NonTerminals() {
			if e := table.Goto(state, nt); !e.IsError {
				candidates = append(candidates, nt)
			}
		}
		if len(candidates) > 0 {
			break
		}
		stack.Pop()
	}

	for {
		if (*tok).Class() == grammar.EOF {
			return false, nil
		}
		for _, nt := range candidates {
			if g.Follow(nt)[(*tok).Class()] {
				e := table.Goto(state, nt)
				stack.Push(grammar.LRStackElement{State: e.State})
				return true, nil
			}
		}
		if tokens.HasNext() {
			*tok = tokens.Next()
		} else {
			*tok = grammar.EOFToken((*tok).Line(), (*tok).Column(), (*tok).FullLine())
		}
	}
}
