// Package grammar holds the symbol model for the toolkit: terminals,
// non-terminals, words (ordered symbol sequences), productions, and the
// FIRST/FOLLOW fixpoints computed over them.
//
// A Grammar owns every Symbol it creates; symbol identifiers are unique only
// within the Grammar that minted them; there is no cross-grammar sentinel
// other than Epsilon and EndOfInput, which are associated constants rather
// than shared mutable state (see SPEC_FULL.md §9).
package grammar

import (
	"fmt"
)

// SymbolID uniquely identifies a symbol within a single Grammar. Terminal
// and non-terminal identifiers share one numbering space so that a Word can
// be a plain []SymbolID without a separate discriminant.
type SymbolID int

const (
	// Epsilon is the sentinel identifier for the empty production. It never
	// appears as a transition symbol in a closure.
	Epsilon SymbolID = -1

	// EndOfInput is the sentinel identifier for the end-of-input marker,
	// conventionally printed "$".
	EndOfInput SymbolID = -2
)

// Associativity is the associativity declared for a Terminal used as an
// operator.
type Associativity int

const (
	// NoAssoc means the terminal has no declared associativity.
	NoAssoc Associativity = iota
	LeftAssoc
	RightAssoc
)

func (a Associativity) String() string {
	switch a {
	case LeftAssoc:
		return "left"
	case RightAssoc:
		return "right"
	default:
		return "none"
	}
}

// symbol holds the attributes common to Terminal and NonTerminal.
type symbol struct {
	id      SymbolID
	name    string
	epsilon bool
	end     bool
}

// ID returns the symbol's grammar-unique identifier.
func (s symbol) ID() SymbolID { return s.id }

// Name returns the symbol's human-readable name.
func (s symbol) Name() string { return s.name }

// IsEpsilon returns whether this symbol is the special epsilon symbol.
func (s symbol) IsEpsilon() bool { return s.epsilon }

// IsEnd returns whether this symbol is the special end-of-input symbol.
func (s symbol) IsEnd() bool { return s.end }

// Terminal is a leaf grammar symbol, optionally carrying the precedence and
// associativity used by the conflict resolver (lalr/conflict.go) to break
// shift/reduce ties.
type Terminal struct {
	symbol

	hasPrecedence bool
	precedence    int
	assoc         Associativity
}

// Precedence returns the terminal's declared precedence and whether one was
// set at all. Terminals without a declared precedence can never be used by
// the conflict resolver to break a tie on their own.
func (t Terminal) Precedence() (prec int, ok bool) {
	return t.precedence, t.hasPrecedence
}

// Associativity returns the terminal's declared associativity. The conflict
// resolver consults it whenever precedence gives no decision, including for
// terminals that have no declared precedence.
func (t Terminal) Associativity() Associativity {
	return t.assoc
}

func (t Terminal) String() string {
	if !t.hasPrecedence {
		return fmt.Sprintf("%s", t.name)
	}
	return fmt.Sprintf("%s(prec=%d,assoc=%s)", t.name, t.precedence, t.assoc)
}

// Production is a single alternative right-hand side of a NonTerminal: an
// ordered Word plus an optional semantic identifier naming the user callback
// invoked when the production is reduced or partially matched.
type Production struct {
	LHS        SymbolID
	Index      int
	RHS        Word
	SemanticID *int
}

// HasSemanticID reports whether a callback is bound to this production.
func (p Production) HasSemanticID() bool { return p.SemanticID != nil }

func (p Production) String() string {
	return p.RHS.String()
}

// NonTerminal owns an ordered list of Productions, added with Grammar.AddRule.
type NonTerminal struct {
	symbol

	productions []Production
}

// RuleCount returns the number of productions defined for this non-terminal.
func (nt *NonTerminal) RuleCount() int { return len(nt.productions) }

// GetProduction returns the i'th production of this non-terminal.
func (nt *NonTerminal) GetProduction(i int) Production { return nt.productions[i] }

// Productions returns every production of this non-terminal, in declaration
// order.
func (nt *NonTerminal) Productions() []Production {
	return nt.productions
}

// ProductionBySemanticID returns the production whose SemanticID matches id,
// and whether one was found. Semantic ids need not be unique across
// non-terminals in general, but are expected to be unique within one.
func (nt *NonTerminal) ProductionBySemanticID(id int) (Production, bool) {
	for _, p := range nt.productions {
		if p.SemanticID != nil && *p.SemanticID == id {
			return p, true
		}
	}
	return Production{}, false
}

func (nt *NonTerminal) addProduction(word Word, semanticID *int) int {
	idx := len(nt.productions)
	nt.productions = append(nt.productions, Production{
		LHS:        nt.id,
		Index:      idx,
		RHS:        word,
		SemanticID: semanticID,
	})
	return idx
}
