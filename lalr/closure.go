package lalr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/lalrgen/grammar"
)

// ClosureHandle addresses one closure (viable-prefix DFA state) within a
// Collection's arena.
type ClosureHandle int

// closure is one state of the viable-prefix automaton: a set of elements
// sharing a common set of cores, plus the shift/goto transitions computed
// for it.
type closure struct {
	elements []ElementHandle

	// coreHash is the digest Collection indexes closures by to find an
	// LALR-mergeable (same-core) closure in O(1) expected time. fullHash
	// is not set by Collection and stays empty.
	coreHash string
	fullHash string

	// transitions maps a grammar symbol to the closure reached by shifting
	// over it.
	transitions map[grammar.SymbolID]ClosureHandle
}

// newClosure returns an empty closure with no elements and no transitions.
func newClosure() *closure {
	return &closure{transitions: map[grammar.SymbolID]ClosureHandle{}}
}

// indexOfCore reports whether this closure already contains an element with
// the given core, and if so its position in the closure's element list.
func (c *closure) indexOfCore(elems []*element, core core) (int, bool) {
	for i, h := range c.elements {
		if elems[h].core() == core {
			return i, true
		}
	}
	return -1, false
}

// computeCoreHash produces a stable digest of the closure's item cores,
// ignoring lookaheads and transitions, so two closures built independently
// but with identical cores hash identically. Two closures are eligible for
// an LALR merge exactly when their core hashes match.
func computeCoreHash(elems []*element, handles []ElementHandle) string {
	cores := make([]core, len(handles))
	for i, h := range handles {
		cores[i] = elems[h].core()
	}
	sort.Slice(cores, func(i, j int) bool {
		return coreLess(cores[i], cores[j])
	})

	var sb strings.Builder
	for _, c := range cores {
		fmt.Fprintf(&sb, "%d/%d/%d;", c.lhs, c.prodIndex, c.cursor)
	}
	return sb.String()
}

// computeFullHash extends computeCoreHash with each item's sorted lookahead
// set, so that it changes whenever lookaheads change even if cores do not.
// Collection does not call it; closure merging compares core hashes only.
func computeFullHash(elems []*element, handles []ElementHandle) string {
	type keyed struct {
		c  core
		la []grammar.SymbolID
	}
	ks := make([]keyed, len(handles))
	for i, h := range handles {
		e := elems[h]
		la := append([]grammar.SymbolID(nil), e.lookaheads.Elements()...)
		sort.Slice(la, func(i, j int) bool { return la[i] < la[j] })
		ks[i] = keyed{c: e.core(), la: la}
	}
	sort.Slice(ks, func(i, j int) bool { return coreLess(ks[i].c, ks[j].c) })

	var sb strings.Builder
	for _, k := range ks {
		fmt.Fprintf(&sb, "%d/%d/%d:", k.c.lhs, k.c.prodIndex, k.c.cursor)
		for _, t := range k.la {
			fmt.Fprintf(&sb, "%d,", t)
		}
		sb.WriteString(";")
	}
	return sb.String()
}

func coreLess(a, b core) bool {
	if a.lhs != b.lhs {
		return a.lhs < b.lhs
	}
	if a.prodIndex != b.prodIndex {
		return a.prodIndex < b.prodIndex
	}
	return a.cursor < b.cursor
}
