package lalr

import (
	"testing"

	"github.com/dekarrin/lalrgen/grammar"
	"github.com/stretchr/testify/assert"
)

func TestElement_TransitionSymbolSkipsEpsilon(t *testing.T) {
	e := &element{rhs: grammar.NewWord(grammar.Epsilon, 5), cursor: 0}
	sym, ok := e.transitionSymbol()
	assert.True(t, ok)
	assert.Equal(t, grammar.SymbolID(5), sym)
}

func TestElement_IsReducibleAtEndOfRHS(t *testing.T) {
	e := &element{rhs: grammar.NewWord(1, 2), cursor: 2}
	assert.True(t, e.isReducible())

	e2 := &element{rhs: grammar.NewWord(1, 2), cursor: 1}
	assert.False(t, e2.isReducible())
}

func TestElement_IsReducibleWithTrailingEpsilon(t *testing.T) {
	e := &element{rhs: grammar.NewWord(1, grammar.Epsilon), cursor: 1}
	assert.True(t, e.isReducible())
}

func TestElement_SameCoreIgnoresLookaheads(t *testing.T) {
	a := &element{lhs: 1, prodIndex: 0, cursor: 1, lookaheads: grammar.NewSet(10)}
	b := &element{lhs: 1, prodIndex: 0, cursor: 1, lookaheads: grammar.NewSet(20)}
	c := &element{lhs: 1, prodIndex: 1, cursor: 1}

	assert.True(t, a.sameCore(b))
	assert.False(t, a.sameCore(c))
}

func TestElement_AddLookahead(t *testing.T) {
	e := &element{}
	assert.True(t, e.addLookahead(7))
	assert.False(t, e.addLookahead(7))
	assert.True(t, e.lookaheads.Has(7))
}

func TestElement_AddAllLookaheads(t *testing.T) {
	e := &element{}
	src := grammar.NewSet(1, 2, 3)
	assert.True(t, e.addAllLookaheads(src))
	assert.False(t, e.addAllLookaheads(src))
	assert.Equal(t, 3, e.lookaheads.Len())
}

func TestElement_Advance(t *testing.T) {
	e := &element{cursor: 0}
	e.advance()
	assert.Equal(t, 1, e.cursor)
}
