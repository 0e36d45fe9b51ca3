package lalr

import (
	"fmt"
	"sort"

	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/observe"
)

// augmentedLHS is a sentinel left-hand side, distinct from any symbol id a
// Grammar can mint, used only for the single synthetic top item "S' -> .S"
// seeded at BuildCollection. It never appears in a table or emitted parser;
// callers recognise the accepting item by Element.IsAugmentedStart.
const augmentedLHS grammar.SymbolID = grammar.SymbolID(-1 << 30)

// Transition records one (from, to, symbol) edge of the viable-prefix
// automaton, together with the elements of the source closure that produced
// it — preserved because unique-partial-match analysis needs to inspect
// them.
type Transition struct {
	From        ClosureHandle
	To          ClosureHandle
	Symbol      grammar.SymbolID
	Originating []ElementHandle
}

type transitionKey struct {
	from   ClosureHandle
	symbol grammar.SymbolID
}

// Collection is the complete LALR(1) viable-prefix automaton: an arena of
// elements, an arena of closures, and the transitions joining them. Build
// one with BuildCollection; once built, only Simplify mutates it further.
type Collection struct {
	grammar *grammar.Grammar

	elements []*element
	closures []*closure

	closureByCoreHash map[string]ClosureHandle
	transitions       map[transitionKey]*Transition

	start ClosureHandle

	progress observe.ProgressSink
}

// Grammar returns the grammar this collection was built from.
func (c *Collection) Grammar() *grammar.Grammar { return c.grammar }

// StartClosure returns the handle of the seed closure.
func (c *Collection) StartClosure() ClosureHandle { return c.start }

// ClosureCount returns the number of closures in the collection.
func (c *Collection) ClosureCount() int { return len(c.closures) }

// Closures returns every closure handle, in arena order.
func (c *Collection) Closures() []ClosureHandle {
	out := make([]ClosureHandle, len(c.closures))
	for i := range c.closures {
		out[i] = ClosureHandle(i)
	}
	return out
}

// Elements returns every element handle belonging to closure ch, in the
// order they were added: each item is followed by the closure items its
// expansion added, so kernel and closure items can be interleaved.
func (c *Collection) Elements(ch ClosureHandle) []ElementHandle {
	return append([]ElementHandle(nil), c.closures[ch].elements...)
}

// Element wraps the internal element type so callers outside this package
// can query an item's shape without exposing the arena representation.
type Element struct {
	h *element
}

func (c *Collection) Element(h ElementHandle) Element { return Element{c.elements[h]} }

func (e Element) LHS() grammar.SymbolID  { return e.h.lhs }
func (e Element) RHS() grammar.Word      { return e.h.rhs }
func (e Element) Cursor() int            { return e.h.cursor }
func (e Element) ProductionIndex() int   { return e.h.prodIndex }
func (e Element) SemanticID() *int       { return e.h.semanticID }
func (e Element) Lookaheads() Lookaheads { return e.h.lookaheads }
func (e Element) IsReducible() bool      { return e.h.isReducible() }
func (e Element) IsAugmentedStart() bool { return e.h.lhs == augmentedLHS }
func (e Element) HasSemanticID() bool    { return e.h.semanticID != nil }

func (e Element) TransitionSymbol() (grammar.SymbolID, bool) { return e.h.transitionSymbol() }

// Transitions returns every recorded transition out of ch, sorted by symbol
// id for reproducibility.
func (c *Collection) Transitions(ch ClosureHandle) []Transition {
	var out []Transition
	for k, t := range c.transitions {
		if k.from == ch {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// SetProgressSink installs a progress observer on c. Passing nil restores
// the no-op default. BuildCollection reports its phases to the no-op sink
// before it returns, and no method of a built Collection reports progress,
// so an installed sink receives no calls.
func (c *Collection) SetProgressSink(sink observe.ProgressSink) {
	if sink == nil {
		sink = observe.NoOpProgress{}
	}
	c.progress = sink
}

func (c *Collection) addElement(e *element) ElementHandle {
	h := ElementHandle(len(c.elements))
	c.elements = append(c.elements, e)
	return h
}

func (c *Collection) addDependency(target ElementHandle, d lookaheadDep) {
	te := c.elements[target]
	for _, existing := range te.deps {
		if existing.pred == d.pred && existing.mode == d.mode && existing.remainder.Equal(d.remainder) {
			return
		}
	}
	te.deps = append(te.deps, d)

	pe := c.elements[d.pred]
	for _, f := range pe.forward {
		if f == target {
			return
		}
	}
	pe.forward = append(pe.forward, target)
}

// addElementToClosure adds newElem to cl: if an element with the same core
// is already in cl, the incoming dependency is merged into it; otherwise a
// new element is appended and, if its cursor precedes a non-terminal, its
// closure is expanded recursively.
func (c *Collection) addElementToClosure(cl *closure, newElem *element, dep *lookaheadDep) ElementHandle {
	if idx, found := cl.indexOfCore(c.elements, newElem.core()); found {
		h := cl.elements[idx]
		if dep != nil {
			c.addDependency(h, *dep)
		}
		return h
	}

	h := c.addElement(newElem)
	cl.elements = append(cl.elements, h)
	if dep != nil {
		c.addDependency(h, *dep)
	}

	if sym, ok := newElem.transitionSymbol(); ok && c.grammar.IsNonTerminal(sym) {
		remainder := newElem.rhs[newElem.cursor+1:]
		for _, p := range c.grammar.NonTerminal(sym).Productions() {
			child := &element{lhs: sym, rhs: p.RHS, prodIndex: p.Index, semanticID: p.SemanticID}
			childDep := lookaheadDep{pred: h, mode: depFirst, remainder: remainder}
			c.addElementToClosure(cl, child, &childDep)
		}
	}

	return h
}

// doTransition gathers every element in cl whose transition symbol is sym,
// advances each into a fresh, not-yet-registered target closure, and
// returns it along with the originating elements. Returns nil if no element
// transitions on sym.
func (c *Collection) doTransition(cl *closure, sym grammar.SymbolID) (*closure, []ElementHandle) {
	target := newClosure()
	var originating []ElementHandle

	for _, h := range cl.elements {
		e := c.elements[h]
		ts, ok := e.transitionSymbol()
		if !ok || ts != sym {
			continue
		}
		originating = append(originating, h)

		shifted := &element{
			lhs:        e.lhs,
			rhs:        e.rhs,
			prodIndex:  e.prodIndex,
			semanticID: e.semanticID,
			cursor:     e.cursor + 1,
		}
		dep := lookaheadDep{pred: h, mode: depCopy}
		c.addElementToClosure(target, shifted, &dep)
	}

	if len(originating) == 0 {
		return nil, nil
	}
	return target, originating
}

// transitionSymbols returns the distinct transition symbols among cl's
// elements, sorted by id.
func (c *Collection) transitionSymbols(cl *closure) []grammar.SymbolID {
	seen := map[grammar.SymbolID]bool{}
	var out []grammar.SymbolID
	for _, h := range cl.elements {
		sym, ok := c.elements[h].transitionSymbol()
		if !ok || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// registerClosure assigns cl a handle, sets its elements' parent
// back-reference, computes its core hash, and indexes it by that hash.
func (c *Collection) registerClosure(cl *closure) ClosureHandle {
	h := ClosureHandle(len(c.closures))
	c.closures = append(c.closures, cl)
	for _, eh := range cl.elements {
		c.elements[eh].parent = h
	}
	cl.coreHash = computeCoreHash(c.elements, cl.elements)
	c.closureByCoreHash[cl.coreHash] = h
	return h
}

// mergeClosures merges tentative's per-element lookahead dependencies into
// the matching (by core) elements of the already-registered closure at
// existingHandle. tentative itself is discarded; its elements remain
// allocated in the arena but are unreferenced by any closure.
func (c *Collection) mergeClosures(existingHandle ClosureHandle, tentative *closure) {
	existing := c.closures[existingHandle]
	for _, th := range tentative.elements {
		te := c.elements[th]
		idx, found := existing.indexOfCore(c.elements, te.core())
		if !found {
			continue
		}
		eh := existing.elements[idx]
		for _, d := range te.deps {
			c.addDependency(eh, d)
		}
	}
}

// BuildCollection seeds a closure with the augmented start item and runs the
// worklist transition-closure algorithm to completion, followed by
// lookahead resolution over every element.
func BuildCollection(g *grammar.Grammar) (*Collection, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("lalr: cannot build collection: %w", err)
	}
	startSym, ok := g.StartSymbol()
	if !ok {
		return nil, fmt.Errorf("lalr: grammar has no start symbol")
	}

	c := &Collection{
		grammar:           g,
		closureByCoreHash: map[string]ClosureHandle{},
		transitions:       map[transitionKey]*Transition{},
		progress:          observe.NoOpProgress{},
	}

	c.progress.Progress("building augmented start closure", false)

	startElem := &element{
		lhs:    augmentedLHS,
		rhs:    grammar.NewWord(startSym),
		cursor: 0,
	}
	seed := newClosure()
	c.addElementToClosure(seed, startElem, nil)
	startHandle := c.registerClosure(seed)
	c.start = startHandle

	startElemHandle := seed.elements[0]
	c.elements[startElemHandle].lookaheads = grammar.NewSet(grammar.EndOfInput)
	c.elements[startElemHandle].valid = true

	queue := []ClosureHandle{startHandle}
	for len(queue) > 0 {
		ch := queue[0]
		queue = queue[1:]
		cl := c.closures[ch]

		for _, sym := range c.transitionSymbols(cl) {
			target, originating := c.doTransition(cl, sym)
			if target == nil {
				continue
			}
			coreHash := computeCoreHash(c.elements, target.elements)

			var toHandle ClosureHandle
			if existing, ok := c.closureByCoreHash[coreHash]; ok {
				c.mergeClosures(existing, target)
				toHandle = existing
			} else {
				toHandle = c.registerClosure(target)
				queue = append(queue, toHandle)
			}

			cl.transitions[sym] = toHandle
			c.transitions[transitionKey{from: ch, symbol: sym}] = &Transition{
				From: ch, To: toHandle, Symbol: sym, Originating: originating,
			}
		}
	}

	c.progress.Progress("resolving lookaheads", false)
	c.resolveAll()

	c.progress.Progress("collection built", true)
	return c, nil
}

// resolveAll repeatedly sweeps every element calling resolveLookaheads at
// depth 0 (forcing recomputation even when already marked valid, since a
// dependency elsewhere in the sweep may have grown since it was last marked)
// until a full sweep adds nothing anywhere.
func (c *Collection) resolveAll() {
	changed := true
	for changed {
		changed = false
		for h := range c.elements {
			before := 0
			if la := c.elements[h].lookaheads; la != nil {
				before = la.Len()
			}
			c.resolveLookaheads(ElementHandle(h), 0, map[ElementHandle]bool{})
			after := 0
			if la := c.elements[h].lookaheads; la != nil {
				after = la.Len()
			}
			if after != before {
				changed = true
			}
		}
	}
}

// resolveLookaheads recurses into copy-mode and first-mode predecessors,
// accumulating their contribution into e's lookahead set. depth 0 always
// recomputes, even if e
// is marked valid, since an earlier pass through a cycle may have produced
// an incomplete set; recursive calls (depth > 0) short-circuit on a valid
// element. seen guards against revisiting the same predecessor twice within
// one top-level call.
func (c *Collection) resolveLookaheads(h ElementHandle, depth int, seen map[ElementHandle]bool) {
	e := c.elements[h]
	if depth > 0 && e.valid {
		return
	}
	if seen[h] {
		return
	}
	seen[h] = true

	if len(e.deps) == 0 {
		e.valid = true
		return
	}

	for _, d := range e.deps {
		c.resolveLookaheads(d.pred, depth+1, seen)
		pred := c.elements[d.pred]
		if pred.lookaheads == nil {
			continue
		}

		switch d.mode {
		case depCopy:
			e.addAllLookaheads(pred.lookaheads)
		case depFirst:
			for _, la := range pred.lookaheads.Elements() {
				laCopy := la
				first := c.grammar.FirstOfWord(d.remainder, &laCopy)
				for _, t := range first.Elements() {
					if t == grammar.Epsilon {
						continue
					}
					e.addLookahead(t)
				}
			}
		}
	}

	e.valid = true
}

// Simplify renumbers closures contiguously starting at 0 in order of first
// appearance from the start closure (a breadth-first walk over
// transitions), dropping any closure unreachable from the start. Tentative
// closures merged away during BuildCollection are never registered, so
// they are not among the closures Simplify sees.
//
// Handles obtained before calling Simplify must not be used afterward.
func (c *Collection) Simplify() {
	order := []ClosureHandle{c.start}
	seen := map[ClosureHandle]bool{c.start: true}
	for i := 0; i < len(order); i++ {
		cl := c.closures[order[i]]
		var syms []grammar.SymbolID
		for sym := range cl.transitions {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(a, b int) bool { return syms[a] < syms[b] })
		for _, sym := range syms {
			next := cl.transitions[sym]
			if !seen[next] {
				seen[next] = true
				order = append(order, next)
			}
		}
	}

	remap := map[ClosureHandle]ClosureHandle{}
	newClosures := make([]*closure, len(order))
	for i, old := range order {
		remap[old] = ClosureHandle(i)
		newClosures[i] = c.closures[old]
	}

	for _, cl := range newClosures {
		for sym, old := range cl.transitions {
			cl.transitions[sym] = remap[old]
		}
		for _, eh := range cl.elements {
			if newParent, ok := remap[c.elements[eh].parent]; ok {
				c.elements[eh].parent = newParent
			}
		}
	}

	newTransitions := map[transitionKey]*Transition{}
	for k, t := range c.transitions {
		newFrom, ok := remap[k.from]
		if !ok {
			continue
		}
		t.From = newFrom
		t.To = remap[t.To]
		newTransitions[transitionKey{from: newFrom, symbol: k.symbol}] = t
	}

	c.closures = newClosures
	c.transitions = newTransitions
	c.closureByCoreHash = map[string]ClosureHandle{}
	for i, cl := range newClosures {
		c.closureByCoreHash[cl.coreHash] = ClosureHandle(i)
	}
	c.start = 0
}

// LookbackTerminals computes the set of terminals t such that some path in
// the transition graph ends in a transition into target on t, walking
// backwards from target. Used by the conflict resolver to find the
// precedence/associativity of the operator that led into the current
// state.
func (c *Collection) LookbackTerminals(target ClosureHandle) grammar.Set {
	result := grammar.NewSet()
	seenClosures := map[ClosureHandle]bool{}
	c.lookbackWalk(target, result, seenClosures)
	return result
}

func (c *Collection) lookbackWalk(target ClosureHandle, result grammar.Set, seen map[ClosureHandle]bool) {
	if seen[target] {
		return
	}
	seen[target] = true

	for _, t := range c.transitions {
		if t.To != target {
			continue
		}
		if c.grammar.IsTerminal(t.Symbol) {
			result.Add(t.Symbol)
		} else {
			c.lookbackWalk(t.From, result, seen)
		}
	}
}

// PartialMatch is the result of a unique-partial-match query: exactly one
// semantic id remains reachable given the originating elements of a
// transition, so its callback may be invoked early, before the full rule is
// reduced.
type PartialMatch struct {
	RuleSemanticID int
	MatchLength    int
	LHS            grammar.SymbolID
}

// UniquePartialMatch groups originating (the elements that produced a
// transition, from Transition.Originating) by semantic id, filtering out
// ineligible elements: for a transition on a non-terminal, an element's
// cursor must be ≥ 1; for a transition on a terminal, cursor ≥ 0 is allowed
// since the lookahead already disambiguates it. This asymmetry is
// intentional: a terminal shift is unambiguous the moment it's taken, while
// a non-terminal goto still needs at least one symbol already matched to
// rule out a still-open alternative. If exactly one semantic id remains,
// its match is returned with ok=true; otherwise ok is false.
func (c *Collection) UniquePartialMatch(originating []ElementHandle, transitionSymbol grammar.SymbolID) (PartialMatch, bool) {
	onTerminal := c.grammar.IsTerminal(transitionSymbol)

	type candidate struct {
		semanticID int
		length     int
		lhs        grammar.SymbolID
	}
	bySemanticID := map[int]candidate{}

	for _, h := range originating {
		e := c.elements[h]
		minCursor := 1
		if onTerminal {
			minCursor = 0
		}
		if e.cursor < minCursor {
			continue
		}
		if e.semanticID == nil {
			continue
		}
		// the originating element's cursor is pre-shift; the matched
		// prefix length after this transition is cursor+1.
		bySemanticID[*e.semanticID] = candidate{
			semanticID: *e.semanticID,
			length:     e.cursor + 1,
			lhs:        e.lhs,
		}
	}

	if len(bySemanticID) != 1 {
		return PartialMatch{}, false
	}
	for _, cand := range bySemanticID {
		return PartialMatch{RuleSemanticID: cand.semanticID, MatchLength: cand.length, LHS: cand.lhs}, true
	}
	panic("unreachable")
}

// ReduceReduceConflict describes a state with two or more reducible items
// that share a lookahead terminal.
type ReduceReduceConflict struct {
	Closure   ClosureHandle
	Lookahead grammar.SymbolID
	Elements  []ElementHandle
}

// ReduceReduceConflicts scans every closure for two reducible elements
// sharing a lookahead terminal. Rather than reporting and aborting on the
// first one found, every conflict is collected before the caller decides
// whether to abort.
func (c *Collection) ReduceReduceConflicts() []ReduceReduceConflict {
	var out []ReduceReduceConflict
	for chi, cl := range c.closures {
		byLookahead := map[grammar.SymbolID][]ElementHandle{}
		for _, h := range cl.elements {
			e := c.elements[h]
			if !e.isReducible() || e.lhs == augmentedLHS {
				continue
			}
			if e.lookaheads == nil {
				continue
			}
			for _, la := range e.lookaheads.Elements() {
				byLookahead[la] = append(byLookahead[la], h)
			}
		}
		for la, elems := range byLookahead {
			if len(elems) > 1 {
				out = append(out, ReduceReduceConflict{
					Closure: ClosureHandle(chi), Lookahead: la, Elements: elems,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Closure != out[j].Closure {
			return out[i].Closure < out[j].Closure
		}
		return out[i].Lookahead < out[j].Lookahead
	})
	return out
}
