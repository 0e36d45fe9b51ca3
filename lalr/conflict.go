package lalr

import "github.com/dekarrin/lalrgen/grammar"

// Decision is the outcome of resolving a shift/reduce conflict.
type Decision int

const (
	// DecisionNone means precedence and associativity could not resolve the
	// conflict; the caller must report it.
	DecisionNone Decision = iota
	DecisionShift
	DecisionReduce
)

// ResolveShiftReduce resolves a shift/reduce conflict by precedence and
// associativity: for each lookback terminal ℓ of the state in question,
// compare its precedence (and, failing a strict precedence difference, its
// associativity) against the current lookahead a. The first lookback that
// yields a decision wins; later ones are not consulted.
//
// The precedence comparison only produces a decision when prec(ℓ) and
// prec(a) are both defined AND unequal; equal precedence (the common case
// of a chain of same-level operators) falls through to the associativity
// check on the same lookback, which is needed to resolve both
// left-associative and right-associative operator chains at all.
func ResolveShiftReduce(g *grammar.Grammar, lookbacks grammar.Set, lookahead grammar.SymbolID) Decision {
	if !g.IsTerminal(lookahead) || lookahead == grammar.EndOfInput {
		return DecisionNone
	}
	a := g.Terminal(lookahead)
	aPrec, aHasPrec := a.Precedence()
	aAssoc := a.Associativity()

	for _, l := range lookbacks.Elements() {
		if l == grammar.EndOfInput || l == grammar.Epsilon {
			continue
		}
		lt := g.Terminal(l)
		lPrec, lHasPrec := lt.Precedence()

		if lHasPrec && aHasPrec && lPrec != aPrec {
			if lPrec < aPrec {
				return DecisionShift
			}
			return DecisionReduce
		}

		lAssoc := lt.Associativity()
		if lAssoc != grammar.NoAssoc && lAssoc == aAssoc {
			if lAssoc == grammar.RightAssoc {
				return DecisionShift
			}
			return DecisionReduce
		}
	}

	return DecisionNone
}

// ResolveReduceReduceTrySolve implements an opt-in "try-solve" fallback for
// reduce/reduce conflicts: among the conflicting elements, keep the one with
// the longest cursor (longest matched prefix) and discard the rest. Its
// correctness on general grammars is unverified and it is preserved here
// strictly as an opt-in, best-effort fallback — callers should not treat a
// returned element as a guaranteed-correct disambiguation.
func ResolveReduceReduceTrySolve(c *Collection, conflict ReduceReduceConflict) ElementHandle {
	best := conflict.Elements[0]
	bestCursor := c.elements[best].cursor
	for _, h := range conflict.Elements[1:] {
		if cur := c.elements[h].cursor; cur > bestCursor {
			best = h
			bestCursor = cur
		}
	}
	return best
}
