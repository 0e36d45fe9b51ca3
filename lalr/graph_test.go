package lalr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveGraph_EmitsWellFormedDot(t *testing.T) {
	g, _ := buildArith(t)
	c, err := BuildCollection(g)
	require.NoError(t, err)
	c.Simplify()

	var sb strings.Builder
	require.NoError(t, c.SaveGraph(&sb))

	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "digraph collection {"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "}"))
	assert.Contains(t, out, "->")
}

func TestItemString_PlacesCursorDot(t *testing.T) {
	g, ids := buildArith(t)
	c, err := BuildCollection(g)
	require.NoError(t, err)

	startElem := c.Element(c.Elements(c.StartClosure())[0])
	s := itemString(g, startElem)
	assert.Contains(t, s, ". "+g.Name(ids["E"]))
}
