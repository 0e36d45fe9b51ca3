package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/lalrgen/internal/util"
)

// Set is the concrete set type used for FIRST/FOLLOW/lookahead sets
// throughout this module: a terminal identifier keyed set built on the
// teacher's generic KeySet (internal/util/set.go).
type Set = util.KeySet[SymbolID]

// NewSet returns an empty Set, optionally pre-populated with the given
// terminal identifiers.
func NewSet(ids ...SymbolID) Set {
	s := util.NewKeySet[SymbolID]()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// First computes FIRST(id): the set of terminals that can begin some string
// derivable from id. For a terminal, this is just {id}. For a non-terminal,
// it is the standard fixed-point computation.
//
// Nested recursion into mutually-recursive non-terminals uses a memoisation
// map to terminate, but the top-level call always recomputes rather than
// trusting a cached value, since an earlier partial recursion may have
// produced an incomplete set.
func (g *Grammar) First(id SymbolID) Set {
	memo := map[SymbolID]Set{}
	visiting := map[SymbolID]bool{}
	return g.firstOf(id, memo, visiting)
}

func (g *Grammar) firstOf(id SymbolID, memo map[SymbolID]Set, visiting map[SymbolID]bool) Set {
	if id == Epsilon {
		return NewSet(Epsilon)
	}
	if g.IsTerminal(id) {
		return NewSet(id)
	}

	if visiting[id] {
		// cycle: return whatever has accumulated so far for this
		// non-terminal on this pass; the caller's loop will keep iterating
		// until nothing new is added.
		if s, ok := memo[id]; ok {
			return s
		}
		return NewSet()
	}

	nt := g.NonTerminal(id)

	result := NewSet()
	if cached, ok := memo[id]; ok {
		result = cached
	}
	memo[id] = result
	visiting[id] = true

	// Fixed point: keep sweeping the productions until a pass adds nothing,
	// since a single recursive descent may undercount in the presence of
	// cycles (mutually left-recursive non-terminals).
	for {
		changed := false
		for _, prod := range nt.productions {
			sub := g.firstOfWordUncached(prod.RHS, nil, memo, visiting)
			before := result.Len()
			result.AddAll(sub)
			if result.Len() != before {
				changed = true
			}
		}
		memo[id] = result
		if !changed {
			break
		}
	}

	visiting[id] = false
	return result
}

// FirstOfWord computes FIRST(word) or, if trailing is non-nil, the FIRST set
// of word with trailing implicitly appended — used when resolving lookahead
// dependencies of "first-mode" (lalr/element.go).
//
// Walks symbols left-to-right, adding FIRST(Xi) \ {ε} and stopping at the
// first non-nullable symbol; if every symbol is nullable, includes trailing
// (or ε if trailing is nil). Results are cached keyed by (word, offset,
// trailing).
func (g *Grammar) FirstOfWord(word Word, trailing *SymbolID) Set {
	key := wordCacheKey(word, 0, trailing)
	if cached, ok := g.wordFirstCache[key]; ok {
		return cached
	}
	memo := map[SymbolID]Set{}
	visiting := map[SymbolID]bool{}
	result := g.firstOfWordUncached(word, trailing, memo, visiting)
	if g.wordFirstCache == nil {
		g.wordFirstCache = map[string]Set{}
	}
	g.wordFirstCache[key] = result
	return result
}

func wordCacheKey(word Word, offset int, trailing *SymbolID) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:", offset)
	for _, id := range word {
		fmt.Fprintf(&sb, "%d,", id)
	}
	sb.WriteString("|")
	if trailing != nil {
		fmt.Fprintf(&sb, "%d", *trailing)
	} else {
		sb.WriteString("ε")
	}
	return sb.String()
}

func (g *Grammar) firstOfWordUncached(word Word, trailing *SymbolID, memo map[SymbolID]Set, visiting map[SymbolID]bool) Set {
	result := NewSet()

	if len(word) == 0 {
		if trailing != nil {
			result.Add(*trailing)
		} else {
			result.Add(Epsilon)
		}
		return result
	}

	allNullable := true
	for _, sym := range word {
		if sym == Epsilon {
			continue
		}
		symFirst := g.firstOf(sym, memo, visiting)
		for _, t := range symFirst.Elements() {
			if t != Epsilon {
				result.Add(t)
			}
		}
		if !symFirst.Has(Epsilon) {
			allNullable = false
			break
		}
	}

	if allNullable {
		if trailing != nil {
			result.Add(*trailing)
		} else {
			result.Add(Epsilon)
		}
	}

	return result
}

// Nullable reports whether id can derive the empty string.
func (g *Grammar) Nullable(id SymbolID) bool {
	return g.First(id).Has(Epsilon)
}

// FirstSets returns the per-production FIRST sets for the non-terminal id:
// the FIRST set of each production's right-hand side, in production order.
func (g *Grammar) FirstSets(id SymbolID) []Set {
	nt := g.NonTerminal(id)
	out := make([]Set, len(nt.productions))
	for i, p := range nt.productions {
		out[i] = g.FirstOfWord(p.RHS, nil)
	}
	return out
}

// Follow computes FOLLOW(id): the set of terminals that can immediately
// follow id in some sentential form. $ is added if id is the start symbol;
// for every occurrence of id in a rule A -> αidβ, FIRST(β) \ {ε} is added,
// and if β is nullable (or empty), FOLLOW(A) is added.
func (g *Grammar) Follow(id SymbolID) Set {
	if !g.IsNonTerminal(id) {
		panic(fmt.Sprintf("grammar: FOLLOW is only defined for non-terminals, got %d", id))
	}

	all := map[SymbolID]Set{}
	for _, nt := range g.NonTerminals() {
		all[nt] = NewSet()
	}
	if start, ok := g.StartSymbol(); ok {
		all[start].Add(EndOfInput)
	}

	changed := true
	for changed {
		changed = false
		for _, ntID := range g.NonTerminals() {
			nt := g.NonTerminal(ntID)
			for _, prod := range nt.productions {
				for i, sym := range prod.RHS {
					if !g.IsNonTerminal(sym) {
						continue
					}
					beta := prod.RHS[i+1:]
					betaFirst := g.FirstOfWord(beta, nil)

					before := all[sym].Len()
					for _, t := range betaFirst.Elements() {
						if t != Epsilon {
							all[sym].Add(t)
						}
					}
					if betaFirst.Has(Epsilon) {
						all[sym].AddAll(all[ntID])
					}
					if all[sym].Len() != before {
						changed = true
					}
				}
			}
		}
	}

	return all[id]
}

// RemoveLeftRecursion eliminates immediate left recursion from non-terminal
// id by synthesising a new non-terminal carrying the right-recursive tails
// plus an epsilon production. semanticCounter is incremented for each newly
// synthesised production that needs a semantic id; existing semantic ids on
// preserved productions are left untouched.
//
// This is a utility used only if the caller asks for it — lalr.BuildCollection
// does not require a grammar free of left recursion.
func (g *Grammar) RemoveLeftRecursion(id SymbolID, semanticCounter *int) error {
	nt, ok := g.nonTerminals[id]
	if !ok {
		return fmt.Errorf("grammar: RemoveLeftRecursion on unknown non-terminal %d", id)
	}

	var recursive, nonRecursive []Production
	for _, p := range nt.productions {
		if len(p.RHS) > 0 && p.RHS[0] == id {
			recursive = append(recursive, p)
		} else {
			nonRecursive = append(nonRecursive, p)
		}
	}
	if len(recursive) == 0 {
		return nil // nothing to do
	}

	tailName := g.GenerateUniqueTerminalName(nt.name + "Tail")
	// GenerateUniqueTerminalName only checks against names in use; the
	// returned name is unused regardless of symbol kind, so it is safe to
	// mint a non-terminal with it.
	tailID := g.NewNonTerminal(tailName)
	tail := g.nonTerminals[tailID]

	newNonRecursive := make([]Production, 0, len(nonRecursive))
	for _, p := range nonRecursive {
		word := append(p.RHS.Copy(), tailID)
		sid := p.SemanticID
		if sid == nil {
			*semanticCounter++
			id := *semanticCounter
			sid = &id
		}
		newNonRecursive = append(newNonRecursive, Production{
			LHS: id, RHS: word, SemanticID: sid,
		})
	}

	for _, p := range recursive {
		word := append(p.RHS[1:].Copy(), tailID)
		sid := p.SemanticID
		if sid == nil {
			*semanticCounter++
			newID := *semanticCounter
			sid = &newID
		}
		tail.addProduction(word, sid)
	}
	*semanticCounter++
	epsID := *semanticCounter
	tail.addProduction(Word{}, &epsID)

	nt.productions = nil
	for _, p := range newNonRecursive {
		nt.addProduction(p.RHS, p.SemanticID)
	}

	return nil
}
