package cache

import (
	"path/filepath"
	"testing"

	"github.com/dekarrin/lalrgen/genoptions"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/dekarrin/lalrgen/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArith(t *testing.T) *grammar.Grammar {
	t.Helper()
	g := grammar.New()
	plus := g.NewTerminalWithPrecedence("+", 1, grammar.LeftAssoc)
	id := g.NewTerminal("id")
	e := g.NewNonTerminal("E")

	sid := func(n int) *int { v := n; return &v }
	g.AddRule(e, grammar.NewWord(e, plus, e), sid(1))
	g.AddRule(e, grammar.NewWord(id), sid(2))
	g.SetStart(e)
	require.NoError(t, g.Validate())
	return g
}

func TestStore_MissEmptyThenHitAfterPut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	g := buildArith(t)

	_, hit, err := s.Get(g)
	require.NoError(t, err)
	assert.False(t, hit)

	c, err := lalr.BuildCollection(g)
	require.NoError(t, err)
	c.Simplify()
	ts, err := table.Generate(c, genoptions.Default())
	require.NoError(t, err)

	require.NoError(t, s.Put(g, ts))

	got, hit, err := s.Get(g)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, ts.StateCount, got.StateCount)
	assert.Equal(t, ts.StartState, got.StartState)
}

func TestStore_PutOverwritesPriorEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	g := buildArith(t)
	c, err := lalr.BuildCollection(g)
	require.NoError(t, err)
	c.Simplify()
	ts, err := table.Generate(c, genoptions.Default())
	require.NoError(t, err)

	require.NoError(t, s.Put(g, ts))
	require.NoError(t, s.Put(g, ts))

	_, hit, err := s.Get(g)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestFingerprint_StableAcrossEquivalentGrammars(t *testing.T) {
	g1 := buildArith(t)
	g2 := buildArith(t)
	assert.Equal(t, g1.Fingerprint(), g2.Fingerprint())
}

func TestFingerprint_DiffersOnDifferentGrammars(t *testing.T) {
	g1 := buildArith(t)

	g2 := grammar.New()
	id := g2.NewTerminal("id")
	e := g2.NewNonTerminal("E")
	sid := 1
	g2.AddRule(e, grammar.NewWord(id), &sid)
	g2.SetStart(e)

	assert.NotEqual(t, g1.Fingerprint(), g2.Fingerprint())
}
