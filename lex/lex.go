// Package lex implements the lexical analyzer of spec §4.2: an FSM run in
// longest-prefix mode over a remaining-input slice, a (line, column)
// cursor, and a caller-supplied token factory. Grounded on the teacher's
// internal/ictiobus/lex package, whose Lexer held the same fields (an FSM,
// a token factory, remaining input, and cursor state) though its own
// implementation in the retrieval pack was an incomplete regex-backed
// stub; this package instead drives the fsm package built alongside it,
// per spec §4.1/§4.2's actual contract.
package lex

import (
	"github.com/M0ST4FA/parsix/fsm"
	"github.com/M0ST4FA/parsix/grammar"
)

// WhitespacePolicy controls how a Lexer treats whitespace before each scan
// (spec §4.2 "Whitespace policy").
type WhitespacePolicy int

const (
	// PolicyDefault strips all leading whitespace, advancing line on '\n'
	// and column on every other whitespace byte.
	PolicyDefault WhitespacePolicy = iota
	// PolicyAllowWhitespace performs no stripping; lexemes may themselves
	// contain whitespace.
	PolicyAllowWhitespace
	// PolicyAllowNewline strips non-newline whitespace only; newlines are
	// left in the input for the caller's FSM to tokenize.
	PolicyAllowNewline
)

func isNewline(b byte) bool { return b == '\n' }
func isSpace(b byte) bool   { return b == ' ' || b == '\t' || b == '\r' || b == '\v' || b == '\f' }
func isWhitespace(b byte) bool {
	return isNewline(b) || isSpace(b)
}

// Lexer slices successive lexemes from a remaining-input buffer, driving an
// FSM in longest-prefix mode and handing accepted spans to a caller-supplied
// TokenFactory.
type Lexer struct {
	machine   *fsm.Machine
	factory   grammar.TokenFactory
	remaining []byte

	line, col int
}

// New builds a Lexer over the given input, driven by machine, producing
// tokens via factory.
func New(machine *fsm.Machine, factory grammar.TokenFactory, input []byte) *Lexer {
	return &Lexer{machine: machine, factory: factory, remaining: input, line: 1, col: 1}
}

// Result is the outcome of a Next or Peek call (spec §4.2: "{found, token,
// span, line}").
type Result struct {
	Found bool
	Token grammar.Token
	Start, End int
	Line  int
}

// stripWhitespace advances past leading whitespace in l.remaining according
// to policy, mutating the cursor and remaining buffer, and returns the
// number of bytes stripped.
func (l *Lexer) stripWhitespace(policy WhitespacePolicy) int {
	n := 0
	for n < len(l.remaining) {
		b := l.remaining[n]
		switch policy {
		case PolicyAllowWhitespace:
			return n
		case PolicyAllowNewline:
			if !isSpace(b) {
				return n
			}
		default: // PolicyDefault
			if !isWhitespace(b) {
				return n
			}
		}
		if isNewline(b) {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		n++
	}
	return n
}

// HasNext reports whether any input remains, ignoring whitespace that would
// be stripped under the default policy.
func (l *Lexer) HasNext() bool {
	for _, b := range l.remaining {
		if !isWhitespace(b) {
			return true
		}
	}
	return false
}

func (l *Lexer) fullLine() string {
	end := 0
	for end < len(l.remaining) && l.remaining[end] != '\n' {
		end++
	}
	return string(l.remaining[:end])
}

// scan strips whitespace per policy, then runs the FSM in longest-prefix
// mode over what remains, returning a Result. If consume is true and the
// match is found, the matched lexeme and any stripped whitespace are
// removed from l.remaining and the cursor advances by the lexeme length
// (spec §4.2 "Next"/"Peek").
func (l *Lexer) scan(flags WhitespacePolicy, consume bool) Result {
	if len(l.remaining) == 0 {
		return Result{Found: false, Token: grammar.EOFToken(l.line, l.col, ""), Line: l.line}
	}

	stripped := l.stripWhitespace(flags)
	rest := l.remaining[stripped:]
	if len(rest) == 0 {
		if consume {
			l.remaining = rest
		}
		return Result{Found: false, Token: grammar.EOFToken(l.line, l.col, ""), Line: l.line}
	}

	res, err := l.machine.Match(rest, fsm.ModeLongestPrefix)
	if err != nil || !res.Accepted || res.End == 0 {
		return Result{Found: false, Line: l.line}
	}

	lexeme := rest[res.Start:res.End]
	finalState := res.FinalStates[0]
	for _, s := range res.FinalStates {
		if s > finalState {
			finalState = s
		}
	}
	tok := l.factory(int(finalState), lexeme)

	startLine, startCol := l.line, l.col
	if consume {
		l.remaining = rest[res.End:]
		l.col += res.End
	}

	return Result{
		Found: true,
		Token: withPosition(tok, startLine, startCol, l.fullLineOf(rest)),
		Start: stripped,
		End:   stripped + res.End,
		Line:  startLine,
	}
}

// fullLineOf returns the full source line starting at buf, for diagnostics.
func (l *Lexer) fullLineOf(buf []byte) string {
	end := 0
	for end < len(buf) && buf[end] != '\n' {
		end++
	}
	return string(buf[:end])
}

// withPosition overrides the line/column/full-line reported by a factory-
// produced token with the position the lexer actually observed, while
// preserving its class and lexeme.
func withPosition(tok grammar.Token, line, col int, fullLine string) grammar.Token {
	return grammar.NewToken(tok.Class(), tok.Lexeme(), line, col, fullLine)
}

// Next returns the next token and advances the lexer past it (spec §4.2
// "next(flags)"). On a non-accepting FSM run it returns Result{Found:
// false} without consuming input.
func (l *Lexer) Next(flags WhitespacePolicy) Result { return l.scan(flags, true) }

// Peek behaves like Next but does not consume the matched lexeme itself;
// leading whitespace stripped per policy still advances the cursor,
// matching spec §4.2's "whitespace stripping may still advance the
// cursor".
func (l *Lexer) Peek(flags WhitespacePolicy) Result {
	if len(l.remaining) == 0 {
		return Result{Found: false, Token: grammar.EOFToken(l.line, l.col, ""), Line: l.line}
	}

	stripped := l.stripWhitespace(flags)
	l.remaining = l.remaining[stripped:]

	if len(l.remaining) == 0 {
		return Result{Found: false, Token: grammar.EOFToken(l.line, l.col, ""), Line: l.line}
	}

	res, err := l.machine.Match(l.remaining, fsm.ModeLongestPrefix)
	if err != nil || !res.Accepted || res.End == 0 {
		return Result{Found: false, Line: l.line}
	}

	lexeme := l.remaining[res.Start:res.End]
	finalState := res.FinalStates[0]
	for _, s := range res.FinalStates {
		if s > finalState {
			finalState = s
		}
	}
	tok := l.factory(int(finalState), lexeme)

	return Result{
		Found: true,
		Token: withPosition(tok, l.line, l.col, l.fullLineOf(l.remaining)),
		Start: 0,
		End:   res.End,
		Line:  l.line,
	}
}
