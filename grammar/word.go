package grammar

import (
	"fmt"
	"strings"
)

// Word is an ordered sequence of symbol references making up one side of a
// production. An empty Word denotes an epsilon production.
type Word []SymbolID

// NewWord builds a Word from the given symbol identifiers, in order.
func NewWord(ids ...SymbolID) Word {
	w := make(Word, len(ids))
	copy(w, ids)
	return w
}

// Copy returns an independent copy of w.
func (w Word) Copy() Word {
	cp := make(Word, len(w))
	copy(cp, w)
	return cp
}

// Equal reports whether w and o contain the same symbols in the same order.
func (w Word) Equal(o Word) bool {
	if len(w) != len(o) {
		return false
	}
	for i := range w {
		if w[i] != o[i] {
			return false
		}
	}
	return true
}

// StringIn renders the word using the given Grammar's symbol names, or as raw
// ids if g is nil.
func (w Word) StringIn(g *Grammar) string {
	if len(w) == 0 {
		return "ε"
	}
	parts := make([]string, len(w))
	for i, id := range w {
		if g != nil {
			parts[i] = g.Name(id)
		} else {
			parts[i] = fmt.Sprintf("%d", id)
		}
	}
	return strings.Join(parts, " ")
}

// String renders the word using raw identifiers; use StringIn for
// human-readable names.
func (w Word) String() string {
	return w.StringIn(nil)
}
