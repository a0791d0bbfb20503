// Package perr implements the error taxonomy of spec §7: a small set of
// error kinds shared across fsm, lex, grammar, automaton, and parse, plus a
// textual diagnostic renderer for the kinds that are meant to reach a
// caller of Parse. Grounded on the teacher's icterrors package — itself
// filtered from the retrieval pack by size, but its call convention
// (icterrors.NewSyntaxErrorFromToken(msg, token), wrapped via %w) survives
// at every call site in ictiobus/parse/{ll1,lr}.go.
package perr

import (
	"errors"
	"fmt"

	"github.com/dekarrin/rosed"
)

// Kind names one of the error-taxonomy buckets of spec §7.
type Kind int

const (
	// KindInvalidConstruction covers empty final-state sets, unknown FSM
	// kinds, empty production bodies, terminal-as-head, out-of-range dot
	// positions.
	KindInvalidConstruction Kind = iota
	// KindMissingPrecondition covers FIRST-before-FOLLOW and empty-FIRST
	// violations.
	KindMissingPrecondition
	// KindInvalidInput covers out-of-range table indices.
	KindInvalidInput
	// KindUnrecoverable covers a parse error that recovery could not fix,
	// or an error-table entry with recovery disabled.
	KindUnrecoverable
	// KindRecovered covers a parse error that panic-mode recovery
	// successfully absorbed; never surfaced to the caller of Parse.
	KindRecovered
	// KindErrorLimitExceeded covers the recovery counter reaching its cap.
	KindErrorLimitExceeded
	// KindTableInvariantViolated covers a GOTO lookup returning a
	// non-goto entry during a reduction.
	KindTableInvariantViolated
	// KindUnreachable covers default branches of exhaustive dispatches.
	KindUnreachable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidConstruction:
		return "invalid-construction"
	case KindMissingPrecondition:
		return "missing-precondition"
	case KindInvalidInput:
		return "invalid-input"
	case KindUnrecoverable:
		return "parse-error-unrecoverable"
	case KindRecovered:
		return "parse-error-recovered"
	case KindErrorLimitExceeded:
		return "error-limit-exceeded"
	case KindTableInvariantViolated:
		return "table-invariant-violated"
	default:
		return "unreachable"
	}
}

// Error is the concrete error type produced throughout this module. It
// carries enough context (the offending input slice and a snapshot of
// parser-stack state, when applicable) to render a multi-line diagnostic.
type Error struct {
	Kind    Kind
	Msg     string
	Stack   []string // human-readable stack frames, bottom to top
	Offense string   // the offending input slice / token lexeme, if any
	cause   error
}

// New builds an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, cause: cause}
}

// WithStack attaches a stack-state snapshot to e and returns e for
// chaining.
func (e *Error) WithStack(frames []string) *Error {
	e.Stack = frames
	return e
}

// WithOffense attaches the offending input slice/token text to e and
// returns e for chaining.
func (e *Error) WithOffense(offense string) *Error {
	e.Offense = offense
	return e
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is supports errors.Is against the package's sentinel Kind errors below.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// Diagnostic renders a full, multi-line, word-wrapped diagnostic for a
// user-visible failure: the message, the offending input (if any), and the
// stack snapshot (if any), built with github.com/dekarrin/rosed the same
// way the teacher builds multi-line reports (see parse/slr.go, parse/
// lalr.go, parse/clr1.go String() methods and internal/game/debug.go).
func (e *Error) Diagnostic() string {
	body := fmt.Sprintf("[%s] %s", e.Kind, e.Msg)
	if e.Offense != "" {
		body += fmt.Sprintf("\n  at: %q", e.Offense)
	}
	if len(e.Stack) > 0 {
		body += "\n  stack (bottom -> top):"
		for _, frame := range e.Stack {
			body += "\n    " + frame
		}
	}
	return rosed.Edit(body).Wrap(100).String()
}

// Sentinel kind markers usable with errors.Is/errors.As and %w-wrapping.
var (
	ErrInvalidConstruction      = New(KindInvalidConstruction, "invalid construction")
	ErrMissingPrecondition      = New(KindMissingPrecondition, "missing precondition")
	ErrInvalidInput             = New(KindInvalidInput, "invalid input")
	ErrUnrecoverable            = New(KindUnrecoverable, "unrecoverable parse error")
	ErrErrorLimitExceeded       = New(KindErrorLimitExceeded, "error-recovery limit exceeded")
	ErrTableInvariantViolated   = New(KindTableInvariantViolated, "table invariant violated")
	ErrUnreachable              = New(KindUnreachable, "unreachable")
)
