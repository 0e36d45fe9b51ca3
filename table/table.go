// Package table flattens a built lalr.Collection into a TableSet: the five
// state x symbol matrices a table-driven runtime consumes.
package table

import (
	"fmt"
	"sort"

	"github.com/dekarrin/lalrgen/genoptions"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/dekarrin/lalrgen/lalrerr"
	"github.com/dekarrin/rosed"
)

// ErrorState is the sentinel cell value for Shift and Jump, distinct from
// any valid state index.
const ErrorState = -1

// ErrorRule and AcceptRule are the sentinel cell values for Reduce, distinct
// from any valid rule index.
const (
	ErrorRule  = -1
	AcceptRule = -2
)

// TableSet is the complete, language-agnostic output of table generation:
// five matrices over indexed terminal/non-terminal/semantic spaces, plus
// the index maps and per-rule metadata needed to interpret them.
type TableSet struct {
	StateCount      int
	TerminalCount   int
	NonTerminalCount int

	// Shift[state][termIndex] -> state, or ErrorState.
	Shift [][]int
	// Reduce[state][termIndex] -> rule index, AcceptRule, or ErrorRule.
	Reduce [][]int
	// Jump[state][nonTermIndex] -> state, or ErrorState.
	Jump [][]int

	// PartialsRule[state][symIndex] -> rule index or ErrorRule. symIndex
	// spans both terminal and non-terminal index spaces, terminals first.
	PartialsRule [][]int
	// PartialsMatchLen[state][symIndex] -> matched prefix length.
	PartialsMatchLen [][]int

	// TerminalIndex / NonTerminalIndex / SemanticIndex map a grammar.SymbolID
	// (or semantic id) to its table-column index, assigned in first-sighting
	// order during the transition walk.
	TerminalIndex    map[grammar.SymbolID]int
	NonTerminalIndex map[grammar.SymbolID]int
	SemanticIndex    map[int]int

	// TerminalByIndex / NonTerminalByIndex invert the maps above.
	TerminalByIndex    []grammar.SymbolID
	NonTerminalByIndex []grammar.SymbolID

	// RuleRHSLen[ruleIndex] is the number of non-epsilon symbols in the
	// rule's right-hand side.
	RuleRHSLen []int
	// RuleLHS[ruleIndex] is the LHS non-terminal's table index.
	RuleLHS []int
	// RuleSemanticID[ruleIndex] is the semantic id bound to the rule.
	RuleSemanticID []int

	// Precedence and Associativity are keyed by terminal table index; a
	// missing entry means no precedence/associativity was declared.
	Precedence    map[int]int
	Associativity map[int]grammar.Associativity

	AcceptingRule int
	StartState    int

	g *grammar.Grammar
}

// ruleKey identifies one production uniquely across the whole grammar: its
// LHS non-terminal and its index within that non-terminal's production
// list. Rule indices in the emitted tables are assigned by first sighting
// among reducible elements during the transition walk.
type ruleKey struct {
	lhs   grammar.SymbolID
	index int
}

// Generate builds a TableSet from a fully constructed, simplified
// Collection. Unresolved conflicts are collected into a *lalrerr.ConflictSet
// rather than aborting on the first one. When opts.StopOnConflict is set,
// Generate returns at the first unresolved shift/reduce conflict;
// reduce/reduce conflicts never cause an early return.
func Generate(c *lalr.Collection, opts genoptions.Options) (*TableSet, error) {
	g := c.Grammar()

	ts := &TableSet{
		TerminalIndex:    map[grammar.SymbolID]int{},
		NonTerminalIndex: map[grammar.SymbolID]int{},
		SemanticIndex:    map[int]int{},
		Precedence:       map[int]int{},
		Associativity:    map[int]grammar.Associativity{},
		AcceptingRule:    AcceptRule,
		StartState:       int(c.StartClosure()),
		g:                g,
	}

	ruleIndex := map[ruleKey]int{}
	var ruleKeys []ruleKey

	internRule := func(e lalr.Element) int {
		key := ruleKey{lhs: e.LHS(), index: e.ProductionIndex()}
		if idx, ok := ruleIndex[key]; ok {
			return idx
		}
		idx := len(ruleKeys)
		ruleIndex[key] = idx
		ruleKeys = append(ruleKeys, key)
		return idx
	}

	internTerminal := func(sym grammar.SymbolID) int {
		if idx, ok := ts.TerminalIndex[sym]; ok {
			return idx
		}
		idx := len(ts.TerminalByIndex)
		ts.TerminalIndex[sym] = idx
		ts.TerminalByIndex = append(ts.TerminalByIndex, sym)
		return idx
	}
	internNonTerminal := func(sym grammar.SymbolID) int {
		if idx, ok := ts.NonTerminalIndex[sym]; ok {
			return idx
		}
		idx := len(ts.NonTerminalByIndex)
		ts.NonTerminalIndex[sym] = idx
		ts.NonTerminalByIndex = append(ts.NonTerminalByIndex, sym)
		return idx
	}

	// $ is always a terminal column, interned first so every table has a
	// stable column for it regardless of whether any rule's lookahead set
	// happens to omit it.
	internTerminal(grammar.EndOfInput)

	closures := c.Closures()
	ts.StateCount = len(closures)

	// First walk: intern every terminal, non-terminal, and rule reachable
	// through a transition or a reducible element, in closure-then-symbol
	// order.
	for _, ch := range closures {
		for _, t := range c.Transitions(ch) {
			if g.IsTerminal(t.Symbol) {
				internTerminal(t.Symbol)
			} else {
				internNonTerminal(t.Symbol)
			}
		}
		for _, eh := range c.Elements(ch) {
			e := c.Element(eh)
			if e.IsReducible() && !e.IsAugmentedStart() {
				internRule(e)
			}
		}
	}

	allocMatrix := func(cols int) [][]int {
		m := make([][]int, ts.StateCount)
		for i := range m {
			row := make([]int, cols)
			for j := range row {
				row[j] = ErrorState
			}
			m[i] = row
		}
		return m
	}

	ts.Shift = allocMatrix(len(ts.TerminalByIndex))
	ts.Jump = allocMatrix(len(ts.NonTerminalByIndex))
	ts.Reduce = allocMatrix(len(ts.TerminalByIndex))
	for i := range ts.Reduce {
		for j := range ts.Reduce[i] {
			ts.Reduce[i][j] = ErrorRule
		}
	}
	symCols := len(ts.TerminalByIndex) + len(ts.NonTerminalByIndex)
	ts.PartialsRule = make([][]int, ts.StateCount)
	ts.PartialsMatchLen = make([][]int, ts.StateCount)
	for i := range ts.PartialsRule {
		ts.PartialsRule[i] = make([]int, symCols)
		ts.PartialsMatchLen[i] = make([]int, symCols)
		for j := range ts.PartialsRule[i] {
			ts.PartialsRule[i][j] = ErrorRule
		}
	}

	conflicts := &lalrerr.ConflictSet{}

	// One pass over transitions populates shift/jump and partial-match
	// columns.
	for _, ch := range closures {
		for _, t := range c.Transitions(ch) {
			from := int(t.From)
			to := int(t.To)
			symCol := -1
			if g.IsTerminal(t.Symbol) {
				col := ts.TerminalIndex[t.Symbol]
				ts.Shift[from][col] = to
				symCol = col
			} else {
				col := ts.NonTerminalIndex[t.Symbol]
				ts.Jump[from][col] = to
				symCol = len(ts.TerminalByIndex) + col
			}

			if pm, ok := c.UniquePartialMatch(t.Originating, t.Symbol); ok {
				if idx, ok := ruleIndex[ruleKeyForSemantic(c, pm)]; ok {
					ts.PartialsRule[from][symCol] = idx
					ts.PartialsMatchLen[from][symCol] = pm.MatchLength
				}
			}
		}
	}

	// One pass over reducible elements populates reduce.
	type reduceEntry struct {
		state, col, rule int
	}
	var reduceEntries []reduceEntry
	for _, ch := range closures {
		for _, eh := range c.Elements(ch) {
			e := c.Element(eh)
			if !e.IsReducible() {
				continue
			}
			la := e.Lookaheads()
			if la == nil {
				continue
			}
			if e.IsAugmentedStart() {
				for _, t := range la.Elements() {
					if t != grammar.EndOfInput {
						continue
					}
					col := ts.TerminalIndex[t]
					ts.Reduce[int(ch)][col] = AcceptRule
				}
				continue
			}
			if !e.HasSemanticID() {
				return nil, lalrerr.NewGrammarError(
					"production (lhs=%s) has no semantic id but is reducible in state %d",
					g.Name(e.LHS()), int(ch),
				)
			}
			ruleIdx := ruleIndex[ruleKey{lhs: e.LHS(), index: e.ProductionIndex()}]
			ts.RuleSemanticID = ensureLen(ts.RuleSemanticID, ruleIdx+1)
			ts.RuleLHS = ensureLen(ts.RuleLHS, ruleIdx+1)
			ts.RuleRHSLen = ensureLen(ts.RuleRHSLen, ruleIdx+1)
			ts.RuleLHS[ruleIdx] = internNonTerminal(e.LHS())
			ts.RuleSemanticID[ruleIdx] = *e.SemanticID()
			ts.RuleRHSLen[ruleIdx] = nonEpsilonLen(e.RHS())

			for _, t := range la.Elements() {
				if !g.IsTerminal(t) {
					continue
				}
				col := internTerminal(t)
				reduceEntries = append(reduceEntries, reduceEntry{state: int(ch), col: col, rule: ruleIdx})
			}
		}
	}

	sort.Slice(reduceEntries, func(i, j int) bool {
		if reduceEntries[i].state != reduceEntries[j].state {
			return reduceEntries[i].state < reduceEntries[j].state
		}
		return reduceEntries[i].col < reduceEntries[j].col
	})
	for _, re := range reduceEntries {
		if cur := ts.Reduce[re.state][re.col]; cur != ErrorRule && cur != re.rule {
			conflicts.Conflicts = append(conflicts.Conflicts, lalrerr.NewReduceReduceConflict(
				re.state, g.Name(ts.TerminalByIndex[re.col]), []int{cur, re.rule},
			))
			continue
		}
		ts.Reduce[re.state][re.col] = re.rule
	}

	// Second pass: resolve state x terminal cells where both shift and
	// reduce are defined, via precedence/associativity.
	for _, ch := range closures {
		row := int(ch)
		var lookbacks grammar.Set
		if !opts.SkipLookbackGeneration {
			lookbacks = c.LookbackTerminals(ch)
		}
		for col, term := range ts.TerminalByIndex {
			if ts.Shift[row][col] == ErrorState || ts.Reduce[row][col] == ErrorRule {
				continue
			}
			if lookbacks == nil {
				conflicts.Conflicts = append(conflicts.Conflicts, lalrerr.NewShiftReduceConflict(
					row, g.Name(term), ts.Shift[row][col], ts.Reduce[row][col],
				))
				if opts.StopOnConflict {
					return nil, conflicts
				}
				continue
			}
			switch lalr.ResolveShiftReduce(g, lookbacks, term) {
			case lalr.DecisionShift:
				ts.Reduce[row][col] = ErrorRule
			case lalr.DecisionReduce:
				ts.Shift[row][col] = ErrorState
			default:
				conflicts.Conflicts = append(conflicts.Conflicts, lalrerr.NewShiftReduceConflict(
					row, g.Name(term), ts.Shift[row][col], ts.Reduce[row][col],
				))
				if opts.StopOnConflict {
					return nil, conflicts
				}
			}
		}
	}

	for col, sym := range ts.TerminalByIndex {
		if sym == grammar.EndOfInput {
			continue
		}
		t := g.Terminal(sym)
		if prec, ok := t.Precedence(); ok {
			ts.Precedence[col] = prec
			ts.Associativity[col] = t.Associativity()
		}
	}

	ts.TerminalCount = len(ts.TerminalByIndex)
	ts.NonTerminalCount = len(ts.NonTerminalByIndex)

	if !conflicts.Empty() {
		return ts, conflicts
	}
	return ts, nil
}

func ensureLen(s []int, n int) []int {
	for len(s) < n {
		s = append(s, 0)
	}
	return s
}

func nonEpsilonLen(w grammar.Word) int {
	n := 0
	for _, s := range w {
		if s != grammar.Epsilon {
			n++
		}
	}
	return n
}

// ruleKeyForSemantic finds the (lhs, prodIndex) rule key matching a
// PartialMatch's semantic id, by scanning the LHS non-terminal's
// productions. Used only to translate a PartialMatch (keyed by semantic id,
// since that's what the collection query returns) into this package's
// by-(lhs,index) rule numbering.
func ruleKeyForSemantic(c *lalr.Collection, pm lalr.PartialMatch) ruleKey {
	nt := c.Grammar().NonTerminal(pm.LHS)
	if p, ok := nt.ProductionBySemanticID(pm.RuleSemanticID); ok {
		return ruleKey{lhs: pm.LHS, index: p.Index}
	}
	return ruleKey{lhs: pm.LHS, index: -1}
}

// String renders the table as a state x symbol grid via rosed, in the style
// of a hand-inspectable parser table dump.
func (ts *TableSet) String() string {
	headers := []string{"state"}
	for _, t := range ts.TerminalByIndex {
		headers = append(headers, fmt.Sprintf("A:%s", ts.g.Name(t)))
	}
	for _, nt := range ts.NonTerminalByIndex {
		headers = append(headers, fmt.Sprintf("G:%s", ts.g.Name(nt)))
	}

	data := [][]string{headers}
	for s := 0; s < ts.StateCount; s++ {
		row := []string{fmt.Sprintf("%d", s)}
		for col := range ts.TerminalByIndex {
			cell := ""
			if ts.Reduce[s][col] == AcceptRule {
				cell = "acc"
			} else if ts.Reduce[s][col] != ErrorRule {
				cell = fmt.Sprintf("r%d", ts.Reduce[s][col])
			} else if ts.Shift[s][col] != ErrorState {
				cell = fmt.Sprintf("s%d", ts.Shift[s][col])
			}
			row = append(row, cell)
		}
		for col := range ts.NonTerminalByIndex {
			cell := ""
			if ts.Jump[s][col] != ErrorState {
				cell = fmt.Sprintf("%d", ts.Jump[s][col])
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
