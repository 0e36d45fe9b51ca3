// Package lalr implements the LALR(1) collection-construction core: item-set
// closure with lazy lookahead computation, LALR(1) merging of cores with
// propagated lookahead dependencies, and shift/reduce conflict resolution.
//
// Closures and elements live in arenas owned by a Collection; callers
// address them with ElementHandle/ClosureHandle, small integer indices,
// rather than pointers, since closures and elements reference each other
// cyclically (a closure owns its elements, an element's forward-dependency
// list points back into other closures). Handles from before a call to
// (*Collection).Simplify must not be retained afterward.
package lalr

import "github.com/dekarrin/lalrgen/grammar"

// ElementHandle addresses one element within a Collection's arena.
type ElementHandle int

// depMode distinguishes the two ways a lookahead dependency propagates.
type depMode int

const (
	// depCopy means the dependent element's lookahead set is the union of
	// the predecessor's lookahead set.
	depCopy depMode = iota

	// depFirst means the dependent element's lookahead set gains
	// FIRST(remainder, trailing=la) for each la in the predecessor's
	// lookahead set, where remainder is the predecessor's RHS from
	// cursor+1 onward.
	depFirst
)

// lookaheadDep is one entry of an element's lookahead-dependency list: a
// predecessor element and the mode describing how its lookaheads propagate
// to this element. remainder is only meaningful for depFirst: it is the
// predecessor item's RHS from just after the transition symbol onward, used
// to compute FIRST(remainder, trailing=la) for each la in the predecessor's
// lookahead set.
type lookaheadDep struct {
	pred      ElementHandle
	mode      depMode
	remainder grammar.Word
}

// element is one LR(1) item living in a Collection's arena: a production
// with a cursor position, plus the machinery needed to compute its
// lookahead set lazily and keep it correct as the collection grows.
type element struct {
	lhs        grammar.SymbolID
	rhs        grammar.Word
	prodIndex  int
	semanticID *int

	cursor int

	lookaheads Lookaheads
	valid      bool

	deps []lookaheadDep

	// forward holds every element (in any closure) whose lookahead set
	// depends on this one. It is recorded but not walked: resolveAll
	// re-sweeps every element until a sweep adds nothing.
	forward []ElementHandle

	parent ClosureHandle
}

// Lookaheads is the set of terminals forming an element's lookahead set.
type Lookaheads = grammar.Set

// LHS returns the element's left-hand non-terminal.
func (e *element) LHS() grammar.SymbolID { return e.lhs }

// RHS returns the element's right-hand word.
func (e *element) RHS() grammar.Word { return e.rhs }

// Cursor returns the element's cursor position, 0..len(RHS).
func (e *element) Cursor() int { return e.cursor }

// ProductionIndex returns the index of this item's production within its
// LHS non-terminal's production list.
func (e *element) ProductionIndex() int { return e.prodIndex }

// SemanticID returns the semantic identifier bound to this item's
// production, if any.
func (e *element) SemanticID() *int { return e.semanticID }

// Lookaheads returns the element's current lookahead set. It may be an
// incomplete, tentatively-empty set if resolveLookaheads has not yet been
// run to a fixed point.
func (e *element) Lookaheads() Lookaheads { return e.lookaheads }

// core is the (lhs, rhs, cursor) triple identifying an item's LALR core,
// ignoring lookaheads.
type core struct {
	lhs       grammar.SymbolID
	prodIndex int
	cursor    int
}

func (e *element) core() core {
	return core{lhs: e.lhs, prodIndex: e.prodIndex, cursor: e.cursor}
}

// sameCore reports whether e and o have the same (lhs, rhs, cursor) triple,
// i.e. whether they are "the same item" for LALR merging purposes.
func (e *element) sameCore(o *element) bool {
	return e.core() == o.core()
}

// transitionSymbol returns the first non-epsilon symbol at or after the
// cursor, or ok=false if the item is reducible.
func (e *element) transitionSymbol() (sym grammar.SymbolID, ok bool) {
	for i := e.cursor; i < len(e.rhs); i++ {
		if e.rhs[i] == grammar.Epsilon {
			continue
		}
		return e.rhs[i], true
	}
	return 0, false
}

// isReducible reports whether the cursor, after skipping any trailing
// epsilon symbols, is past the end of rhs.
func (e *element) isReducible() bool {
	_, ok := e.transitionSymbol()
	return !ok
}

// advance increments the cursor. Callers are responsible for invalidating
// any cached hashes on the owning closure, since a cursor change alters the
// item's core.
func (e *element) advance() {
	e.cursor++
}

// addLookahead inserts t into the lookahead set. Returns true if t was not
// already present. Dependent elements are not updated here; they pick up
// the new lookahead on a later resolveAll sweep.
func (e *element) addLookahead(t grammar.SymbolID) bool {
	if e.lookaheads == nil {
		e.lookaheads = grammar.NewSet()
	}
	if e.lookaheads.Has(t) {
		return false
	}
	e.lookaheads.Add(t)
	return true
}

// addAllLookaheads unions src into e's lookahead set, returning true if
// anything new was added.
func (e *element) addAllLookaheads(src Lookaheads) bool {
	added := false
	for _, t := range src.Elements() {
		if e.addLookahead(t) {
			added = true
		}
	}
	return added
}
