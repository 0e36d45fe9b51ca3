package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildArith returns a small left-recursive expression grammar:
//
//	E -> E + T | T
//	T -> T * F | F
//	F -> ( E ) | id
func buildArith() (*Grammar, map[string]SymbolID) {
	g := New()
	ids := map[string]SymbolID{}

	ids["+"] = g.NewTerminal("+")
	ids["*"] = g.NewTerminal("*")
	ids["("] = g.NewTerminal("(")
	ids[")"] = g.NewTerminal(")")
	ids["id"] = g.NewTerminal("id")

	ids["E"] = g.NewNonTerminal("E")
	ids["T"] = g.NewNonTerminal("T")
	ids["F"] = g.NewNonTerminal("F")

	sid := func(n int) *int { return &n }

	g.AddRule(ids["E"], NewWord(ids["E"], ids["+"], ids["T"]), sid(1))
	g.AddRule(ids["E"], NewWord(ids["T"]), sid(2))
	g.AddRule(ids["T"], NewWord(ids["T"], ids["*"], ids["F"]), sid(3))
	g.AddRule(ids["T"], NewWord(ids["F"]), sid(4))
	g.AddRule(ids["F"], NewWord(ids["("], ids["E"], ids[")"]), sid(5))
	g.AddRule(ids["F"], NewWord(ids["id"]), sid(6))

	g.SetStart(ids["E"])

	return g, ids
}

func TestGrammar_NewTerminalAndNonTerminal(t *testing.T) {
	g := New()
	plus := g.NewTerminal("+")
	e := g.NewNonTerminal("E")

	assert.True(t, g.IsTerminal(plus))
	assert.False(t, g.IsNonTerminal(plus))
	assert.True(t, g.IsNonTerminal(e))
	assert.Equal(t, "+", g.Name(plus))
	assert.Equal(t, "E", g.Name(e))
}

func TestGrammar_NewSymbol_DuplicateNamePanics(t *testing.T) {
	g := New()
	g.NewTerminal("a")
	assert.Panics(t, func() { g.NewTerminal("a") })
	assert.Panics(t, func() { g.NewNonTerminal("a") })
}

func TestGrammar_EndOfInputIsTerminal(t *testing.T) {
	g := New()
	assert.True(t, g.IsTerminal(EndOfInput))
	assert.Equal(t, "$", g.Name(EndOfInput))
	assert.Equal(t, "ε", g.Name(Epsilon))
}

func TestGrammar_Validate(t *testing.T) {
	t.Run("valid grammar passes", func(t *testing.T) {
		g, _ := buildArith()
		assert.NoError(t, g.Validate())
	})

	t.Run("no start symbol fails", func(t *testing.T) {
		g := New()
		g.NewTerminal("a")
		g.NewNonTerminal("S")
		assert.Error(t, g.Validate())
	})

	t.Run("no terminals fails", func(t *testing.T) {
		g := New()
		g.NewNonTerminal("S")
		assert.Error(t, g.Validate())
	})

	t.Run("dangling symbol reference fails", func(t *testing.T) {
		g := New()
		a := g.NewTerminal("a")
		s := g.NewNonTerminal("S")
		g.AddRule(s, NewWord(a, SymbolID(9999)), nil)
		g.SetStart(s)
		assert.Error(t, g.Validate())
	})
}

func TestGrammar_First(t *testing.T) {
	g, ids := buildArith()

	for _, name := range []string{"E", "T", "F"} {
		first := g.First(ids[name])
		assert.True(t, first.Has(ids["("]), "FIRST(%s) should contain (", name)
		assert.True(t, first.Has(ids["id"]), "FIRST(%s) should contain id", name)
		assert.False(t, first.Has(Epsilon), "FIRST(%s) should not be nullable", name)
		assert.Equal(t, 2, first.Len())
	}
}

func TestGrammar_Follow(t *testing.T) {
	g, ids := buildArith()

	followE := g.Follow(ids["E"])
	assert.True(t, followE.Has(EndOfInput))
	assert.True(t, followE.Has(ids["+"]))
	assert.True(t, followE.Has(ids[")"]))

	followT := g.Follow(ids["T"])
	assert.True(t, followT.Has(EndOfInput))
	assert.True(t, followT.Has(ids["+"]))
	assert.True(t, followT.Has(ids["*"]))
	assert.True(t, followT.Has(ids[")"]))

	followF := g.Follow(ids["F"])
	assert.True(t, followF.Has(EndOfInput))
	assert.True(t, followF.Has(ids["+"]))
	assert.True(t, followF.Has(ids["*"]))
	assert.True(t, followF.Has(ids[")"]))
}

func TestGrammar_Nullable(t *testing.T) {
	g := New()
	a := g.NewTerminal("a")
	s := g.NewNonTerminal("S")
	opt := g.NewNonTerminal("Opt")

	g.AddRule(s, NewWord(a, opt), nil)
	g.AddRule(opt, NewWord(a), nil)
	g.AddRule(opt, Word{}, nil)
	g.SetStart(s)

	assert.True(t, g.Nullable(opt))
	assert.False(t, g.Nullable(s))
}

func TestGrammar_FirstOfWord_TrailingSymbol(t *testing.T) {
	g, ids := buildArith()

	dollar := EndOfInput
	first := g.FirstOfWord(NewWord(ids["T"]), &dollar)
	assert.True(t, first.Has(ids["("]))
	assert.True(t, first.Has(ids["id"]))
	assert.False(t, first.Has(dollar), "T is not nullable so trailing should not leak through")

	empty := g.FirstOfWord(Word{}, &dollar)
	assert.True(t, empty.Has(dollar))
	assert.Equal(t, 1, empty.Len())
}

func TestGrammar_RemoveLeftRecursion(t *testing.T) {
	g, ids := buildArith()
	counter := 100

	assert.NoError(t, g.RemoveLeftRecursion(ids["E"], &counter))
	assert.NoError(t, g.RemoveLeftRecursion(ids["T"], &counter))

	eNT := g.NonTerminal(ids["E"])
	for _, p := range eNT.Productions() {
		if len(p.RHS) > 0 {
			assert.NotEqual(t, ids["E"], p.RHS[0], "no remaining production should start with E")
		}
	}

	// grammar should still validate and compute consistent FIRST sets after
	// the transform: FIRST(E) must be unchanged since the language is the
	// same, only the derivation shape changed.
	assert.NoError(t, g.Validate())
	first := g.First(ids["E"])
	assert.True(t, first.Has(ids["("]))
	assert.True(t, first.Has(ids["id"]))
}

func TestGrammar_RemoveLeftRecursion_NoOpWhenNotRecursive(t *testing.T) {
	g := New()
	a := g.NewTerminal("a")
	s := g.NewNonTerminal("S")
	g.AddRule(s, NewWord(a), nil)
	g.SetStart(s)

	counter := 0
	before := len(g.NonTerminal(s).Productions())
	assert.NoError(t, g.RemoveLeftRecursion(s, &counter))
	assert.Equal(t, before, len(g.NonTerminal(s).Productions()))
}
