package lalr

import (
	"testing"

	"github.com/dekarrin/lalrgen/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveShiftReduce_LeftAssocChainReduces(t *testing.T) {
	g, ids := buildArith(t)
	// a state reached after "E + T", looking at lookback {'+'} and
	// lookahead '+': left-associative, equal precedence -> reduce.
	lb := grammar.NewSet(ids["+"])
	d := ResolveShiftReduce(g, lb, ids["+"])
	assert.Equal(t, DecisionReduce, d)
}

func TestResolveShiftReduce_HigherPrecedenceLookaheadShifts(t *testing.T) {
	g, ids := buildArith(t)
	// lookback '+' (prec 1), lookahead '*' (prec 2) -> shift, since '*'
	// binds tighter.
	lb := grammar.NewSet(ids["+"])
	d := ResolveShiftReduce(g, lb, ids["*"])
	assert.Equal(t, DecisionShift, d)
}

func TestResolveShiftReduce_LowerPrecedenceLookaheadReduces(t *testing.T) {
	g, ids := buildArith(t)
	// lookback '*' (prec 2), lookahead '+' (prec 1) -> reduce, since '*'
	// binds tighter than the pending '+'.
	lb := grammar.NewSet(ids["*"])
	d := ResolveShiftReduce(g, lb, ids["+"])
	assert.Equal(t, DecisionReduce, d)
}

func TestResolveShiftReduce_RightAssocChainShifts(t *testing.T) {
	g := grammar.New()
	caret := g.NewTerminalWithPrecedence("^", 3, grammar.RightAssoc)
	id := g.NewTerminal("id")
	e := g.NewNonTerminal("E")
	sid := func(n int) *int { v := n; return &v }
	g.AddRule(e, grammar.NewWord(e, caret, e), sid(1))
	g.AddRule(e, grammar.NewWord(id), sid(2))
	g.SetStart(e)
	require.NoError(t, g.Validate())

	lb := grammar.NewSet(caret)
	d := ResolveShiftReduce(g, lb, caret)
	assert.Equal(t, DecisionShift, d)
}

func TestResolveShiftReduce_NoDeclaredPrecedenceIsUndecided(t *testing.T) {
	g, _ := buildDangling(t)
	ifSym, _ := g.ID("if")
	elseSym, _ := g.ID("else")
	lb := grammar.NewSet(ifSym)
	d := ResolveShiftReduce(g, lb, elseSym)
	assert.Equal(t, DecisionNone, d)
}

func TestResolveShiftReduce_EndOfInputLookaheadIsUndecided(t *testing.T) {
	g, ids := buildArith(t)
	lb := grammar.NewSet(ids["+"])
	d := ResolveShiftReduce(g, lb, grammar.EndOfInput)
	assert.Equal(t, DecisionNone, d)
}

func TestResolveReduceReduceTrySolve_KeepsLongestCursor(t *testing.T) {
	c := &Collection{
		elements: []*element{
			{cursor: 1},
			{cursor: 3},
			{cursor: 2},
		},
	}
	conflict := ReduceReduceConflict{Elements: []ElementHandle{0, 1, 2}}
	best := ResolveReduceReduceTrySolve(c, conflict)
	assert.Equal(t, ElementHandle(1), best)
}
