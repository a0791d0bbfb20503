package lex

import (
	"testing"

	"github.com/M0ST4FA/parsix/fsm"
	"github.com/M0ST4FA/parsix/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordMachine accepts one or more ASCII letters, final state 2.
func wordMachine(t *testing.T) *fsm.Machine {
	transitions := map[fsm.State]map[byte][]fsm.State{
		fsm.StartState: {},
		2:              {},
	}
	for b := byte('a'); b <= 'z'; b++ {
		transitions[fsm.StartState][b] = []fsm.State{2}
		transitions[2][b] = []fsm.State{2}
	}
	m, err := fsm.NewMachine(fsm.KindDFA, transitions, nil, map[fsm.State]bool{2: true})
	require.NoError(t, err)
	return m
}

func wordFactory(_ int, lexeme []byte) grammar.Token {
	return grammar.NewToken("word", string(lexeme), 0, 0, "")
}

func TestLexer_NextSkipsDefaultWhitespace(t *testing.T) {
	m := wordMachine(t)
	l := New(m, wordFactory, []byte("  hello world"))

	r := l.Next(PolicyDefault)
	require.True(t, r.Found)
	assert.Equal(t, "hello", r.Token.Lexeme())

	r = l.Next(PolicyDefault)
	require.True(t, r.Found)
	assert.Equal(t, "world", r.Token.Lexeme())

	r = l.Next(PolicyDefault)
	assert.False(t, r.Found)
}

func TestLexer_PeekDoesNotConsumeLexeme(t *testing.T) {
	m := wordMachine(t)
	l := New(m, wordFactory, []byte("hello world"))

	first := l.Peek(PolicyDefault)
	require.True(t, first.Found)
	assert.Equal(t, "hello", first.Token.Lexeme())

	second := l.Peek(PolicyDefault)
	require.True(t, second.Found)
	assert.Equal(t, "hello", second.Token.Lexeme(), "peeking twice must return the same lexeme")

	next := l.Next(PolicyDefault)
	require.True(t, next.Found)
	assert.Equal(t, "hello", next.Token.Lexeme())
}

func TestLexer_PolicyAllowWhitespaceDoesNotStrip(t *testing.T) {
	m := wordMachine(t)
	l := New(m, wordFactory, []byte("  hello"))

	r := l.Next(PolicyAllowWhitespace)
	assert.False(t, r.Found, "no leading letters means no match when whitespace is not stripped")
}

func TestLexer_PolicyAllowNewlineStripsSpacesNotNewlines(t *testing.T) {
	m := wordMachine(t)
	l := New(m, wordFactory, []byte("  \nhello"))

	r := l.Next(PolicyAllowNewline)
	assert.False(t, r.Found, "a leading newline left unstripped blocks the match")
}

func TestLexer_TracksLineAndColumn(t *testing.T) {
	m := wordMachine(t)
	l := New(m, wordFactory, []byte("foo\nbar"))

	r := l.Next(PolicyDefault)
	require.True(t, r.Found)
	assert.Equal(t, 1, r.Token.Line())

	r = l.Next(PolicyDefault)
	require.True(t, r.Found)
	assert.Equal(t, 2, r.Token.Line())
}

func TestLexer_HasNext(t *testing.T) {
	m := wordMachine(t)
	l := New(m, wordFactory, []byte("hi"))
	assert.True(t, l.HasNext())

	l.Next(PolicyDefault)
	assert.False(t, l.HasNext())
}

func TestLexer_NextOnEmptyInputReturnsEOF(t *testing.T) {
	m := wordMachine(t)
	l := New(m, wordFactory, nil)

	r := l.Next(PolicyDefault)
	assert.False(t, r.Found)
	assert.Equal(t, grammar.EOF, r.Token.Class())
}
