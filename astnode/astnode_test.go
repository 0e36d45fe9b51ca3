package astnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Binary", KindBinary.String())
	assert.Equal(t, "Unknown", Kind(99).String())
}

func TestNewToken(t *testing.T) {
	n := NewToken(5, "hello")
	assert.Equal(t, KindToken, n.Kind)
	assert.True(t, n.IsTerminal)
	assert.Equal(t, "hello", n.TokenValue)
}

func TestNewBinary(t *testing.T) {
	l := NewToken(1, 2)
	r := NewToken(1, 3)
	b := NewBinary(2, "+", l, r)
	assert.Equal(t, KindBinary, b.Kind)
	assert.Same(t, l, b.BinaryLeft)
	assert.Same(t, r, b.BinaryRight)
	assert.Equal(t, "+", b.BinaryOp)
}

func TestNewList(t *testing.T) {
	items := []*Node{NewToken(1, 1), NewToken(1, 2)}
	l := NewList(3, items)
	assert.Equal(t, KindList, l.Kind)
	assert.Len(t, l.ListItems, 2)
}
