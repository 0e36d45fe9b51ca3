package genoptions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arithTOML = `
start = "E"
nonterminals = ["E"]

[[terminals]]
name = "+"
precedence = 1
associativity = "left"

[[terminals]]
name = "id"

[[productions]]
lhs = "E"
rhs = ["E", "+", "E"]
semantic_id = 1

[[productions]]
lhs = "E"
rhs = ["id"]
semantic_id = 2
`

func TestBuildGrammar_ArithRoundTrip(t *testing.T) {
	var src GrammarSource
	_, err := toml.Decode(arithTOML, &src)
	require.NoError(t, err)

	g, err := BuildGrammar(src)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	start, ok := g.StartSymbol()
	require.True(t, ok)
	assert.Equal(t, "E", g.Name(start))
}

func TestLoadGrammarFile_RoundTripsThroughDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arith.toml")
	require.NoError(t, os.WriteFile(path, []byte(arithTOML), 0644))

	g, err := LoadGrammarFile(path)
	require.NoError(t, err)
	require.NoError(t, g.Validate())
}

func TestBuildGrammar_UnknownStartErrors(t *testing.T) {
	src := GrammarSource{Start: "NOPE"}
	_, err := BuildGrammar(src)
	assert.Error(t, err)
}

func TestBuildGrammar_ProductionReferencingUndeclaredSymbolErrors(t *testing.T) {
	src := GrammarSource{
		Start:        "E",
		NonTerminals: []string{"E"},
		Productions: []productionSource{
			{LHS: "E", RHS: []string{"ghost"}},
		},
	}
	_, err := BuildGrammar(src)
	assert.Error(t, err)
}

func TestParseAssociativity_RejectsUnknown(t *testing.T) {
	_, err := parseAssociativity("sideways")
	assert.Error(t, err)
}
