package table

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/dekarrin/lalrgen/grammar"
)

// tableData mirrors TableSet's exported fields for gob encoding. TableSet
// itself carries an unexported *grammar.Grammar back-reference that is not
// part of the serialised cache entry: the grammar it was built from is
// identified separately by the cache's fingerprint key
// ((*grammar.Grammar).Fingerprint).
type tableData struct {
	StateCount       int
	TerminalCount    int
	NonTerminalCount int

	Shift            [][]int
	Reduce           [][]int
	Jump             [][]int
	PartialsRule     [][]int
	PartialsMatchLen [][]int

	TerminalIndex    map[grammar.SymbolID]int
	NonTerminalIndex map[grammar.SymbolID]int
	SemanticIndex    map[int]int

	TerminalByIndex    []grammar.SymbolID
	NonTerminalByIndex []grammar.SymbolID

	RuleRHSLen     []int
	RuleLHS        []int
	RuleSemanticID []int

	Precedence    map[int]int
	Associativity map[int]grammar.Associativity

	AcceptingRule int
	StartState    int
}

func (ts *TableSet) toData() tableData {
	return tableData{
		StateCount: ts.StateCount, TerminalCount: ts.TerminalCount, NonTerminalCount: ts.NonTerminalCount,
		Shift: ts.Shift, Reduce: ts.Reduce, Jump: ts.Jump,
		PartialsRule: ts.PartialsRule, PartialsMatchLen: ts.PartialsMatchLen,
		TerminalIndex: ts.TerminalIndex, NonTerminalIndex: ts.NonTerminalIndex, SemanticIndex: ts.SemanticIndex,
		TerminalByIndex: ts.TerminalByIndex, NonTerminalByIndex: ts.NonTerminalByIndex,
		RuleRHSLen: ts.RuleRHSLen, RuleLHS: ts.RuleLHS, RuleSemanticID: ts.RuleSemanticID,
		Precedence: ts.Precedence, Associativity: ts.Associativity,
		AcceptingRule: ts.AcceptingRule, StartState: ts.StartState,
	}
}

func (ts *TableSet) fromData(d tableData) {
	ts.StateCount, ts.TerminalCount, ts.NonTerminalCount = d.StateCount, d.TerminalCount, d.NonTerminalCount
	ts.Shift, ts.Reduce, ts.Jump = d.Shift, d.Reduce, d.Jump
	ts.PartialsRule, ts.PartialsMatchLen = d.PartialsRule, d.PartialsMatchLen
	ts.TerminalIndex, ts.NonTerminalIndex, ts.SemanticIndex = d.TerminalIndex, d.NonTerminalIndex, d.SemanticIndex
	ts.TerminalByIndex, ts.NonTerminalByIndex = d.TerminalByIndex, d.NonTerminalByIndex
	ts.RuleRHSLen, ts.RuleLHS, ts.RuleSemanticID = d.RuleRHSLen, d.RuleLHS, d.RuleSemanticID
	ts.Precedence, ts.Associativity = d.Precedence, d.Associativity
	ts.AcceptingRule, ts.StartState = d.AcceptingRule, d.StartState
}

// MarshalBinary implements encoding.BinaryMarshaler so a TableSet can be
// stored and retrieved through rezi.EncBinary/rezi.DecBinary (see the
// cache package).
func (ts *TableSet) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ts.toData()); err != nil {
		return nil, fmt.Errorf("table: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The resulting
// TableSet has no associated *grammar.Grammar; callers that need symbol
// names back (e.g. for String()) must call SetGrammar.
func (ts *TableSet) UnmarshalBinary(data []byte) error {
	var d tableData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return fmt.Errorf("table: unmarshal: %w", err)
	}
	ts.fromData(d)
	return nil
}

// SetGrammar associates g with ts so that String() can render symbol names.
// Not needed for any other operation.
func (ts *TableSet) SetGrammar(g *grammar.Grammar) { ts.g = g }
