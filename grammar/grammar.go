package grammar

import (
	"fmt"
)

// Grammar is the complete symbol table: every Terminal and NonTerminal
// created for one parser, plus the declared start symbol. Grammars are built
// up during setup and are treated as immutable afterward, so that they may
// safely be shared by reference between a Collection and the emitted code
// generators.
type Grammar struct {
	terminals    map[SymbolID]*Terminal
	nonTerminals map[SymbolID]*NonTerminal
	order        []SymbolID // first-encounter order, across both kinds
	byName       map[string]SymbolID
	nextID       SymbolID
	start        SymbolID
	hasStart     bool

	wordFirstCache map[string]Set
}

// New returns an empty Grammar ready to have terminals, non-terminals, and
// rules added to it.
func New() *Grammar {
	return &Grammar{
		terminals:    map[SymbolID]*Terminal{},
		nonTerminals: map[SymbolID]*NonTerminal{},
		byName:       map[string]SymbolID{},
		nextID:       0,
		start:        Epsilon,
	}
}

func (g *Grammar) allocID() SymbolID {
	id := g.nextID
	g.nextID++
	return id
}

// NewTerminal creates a terminal named name with no declared precedence and
// returns its identifier. Panics if the name is already in use.
func (g *Grammar) NewTerminal(name string) SymbolID {
	return g.newTerminal(name, 0, NoAssoc, false)
}

// NewTerminalWithPrecedence creates a terminal with the given precedence and
// associativity, for use by the conflict resolver (lalr/conflict.go).
func (g *Grammar) NewTerminalWithPrecedence(name string, precedence int, assoc Associativity) SymbolID {
	return g.newTerminal(name, precedence, assoc, true)
}

func (g *Grammar) newTerminal(name string, precedence int, assoc Associativity, hasPrec bool) SymbolID {
	if _, taken := g.byName[name]; taken {
		panic(fmt.Sprintf("grammar: symbol name already in use: %q", name))
	}
	id := g.allocID()
	t := &Terminal{
		symbol:        symbol{id: id, name: name},
		hasPrecedence: hasPrec,
		precedence:    precedence,
		assoc:         assoc,
	}
	g.terminals[id] = t
	g.byName[name] = id
	g.order = append(g.order, id)
	return id
}

// SetPrecedence sets the precedence of an already-created terminal.
func (g *Grammar) SetPrecedence(id SymbolID, precedence int) {
	t := g.terminals[id]
	t.hasPrecedence = true
	t.precedence = precedence
}

// SetAssociativity sets the associativity of an already-created terminal.
func (g *Grammar) SetAssociativity(id SymbolID, assoc Associativity) {
	g.terminals[id].assoc = assoc
}

// NewNonTerminal creates a non-terminal named name with no productions yet
// and returns its identifier. Panics if the name is already in use.
func (g *Grammar) NewNonTerminal(name string) SymbolID {
	if _, taken := g.byName[name]; taken {
		panic(fmt.Sprintf("grammar: symbol name already in use: %q", name))
	}
	id := g.allocID()
	g.nonTerminals[id] = &NonTerminal{symbol: symbol{id: id, name: name}}
	g.byName[name] = id
	g.order = append(g.order, id)
	return id
}

// AddRule adds a production to the given non-terminal and returns its index
// within that non-terminal's production list. semanticID may be nil for a
// production with no bound callback — table generation will reject such a
// production if it is ever reducible.
func (g *Grammar) AddRule(lhs SymbolID, word Word, semanticID *int) int {
	nt, ok := g.nonTerminals[lhs]
	if !ok {
		panic(fmt.Sprintf("grammar: AddRule on unknown non-terminal id %d", lhs))
	}
	return nt.addProduction(word, semanticID)
}

// SetStart declares id (which must be a non-terminal) as the grammar's start
// symbol.
func (g *Grammar) SetStart(id SymbolID) {
	if _, ok := g.nonTerminals[id]; !ok {
		panic(fmt.Sprintf("grammar: SetStart on unknown non-terminal id %d", id))
	}
	g.start = id
	g.hasStart = true
}

// StartSymbol returns the declared start symbol.
func (g *Grammar) StartSymbol() (SymbolID, bool) {
	return g.start, g.hasStart
}

// IsTerminal reports whether id names a terminal in this grammar.
func (g *Grammar) IsTerminal(id SymbolID) bool {
	if id == EndOfInput {
		return true
	}
	_, ok := g.terminals[id]
	return ok
}

// IsNonTerminal reports whether id names a non-terminal in this grammar.
func (g *Grammar) IsNonTerminal(id SymbolID) bool {
	_, ok := g.nonTerminals[id]
	return ok
}

// Terminal returns the terminal for id. Panics if id does not name a
// terminal.
func (g *Grammar) Terminal(id SymbolID) *Terminal {
	t, ok := g.terminals[id]
	if !ok {
		panic(fmt.Sprintf("grammar: %d is not a terminal", id))
	}
	return t
}

// NonTerminal returns the non-terminal for id. Panics if id does not name a
// non-terminal.
func (g *Grammar) NonTerminal(id SymbolID) *NonTerminal {
	nt, ok := g.nonTerminals[id]
	if !ok {
		panic(fmt.Sprintf("grammar: %d is not a non-terminal", id))
	}
	return nt
}

// Name returns the human-readable name of id, including the two sentinels.
func (g *Grammar) Name(id SymbolID) string {
	switch id {
	case Epsilon:
		return "ε"
	case EndOfInput:
		return "$"
	}
	if t, ok := g.terminals[id]; ok {
		return t.name
	}
	if nt, ok := g.nonTerminals[id]; ok {
		return nt.name
	}
	return fmt.Sprintf("<unknown:%d>", id)
}

// ID looks up a symbol by name.
func (g *Grammar) ID(name string) (SymbolID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Terminals returns every terminal id, in first-encounter order.
func (g *Grammar) Terminals() []SymbolID {
	var out []SymbolID
	for _, id := range g.order {
		if _, ok := g.terminals[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// NonTerminals returns every non-terminal id, in first-encounter order.
func (g *Grammar) NonTerminals() []SymbolID {
	var out []SymbolID
	for _, id := range g.order {
		if _, ok := g.nonTerminals[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// GenerateUniqueTerminalName returns a terminal name, built from prefix, that
// is not currently in use in this grammar. It does not create the terminal;
// callers that need it as a real symbol must still call NewTerminal with the
// returned name.
//
// Exposed for callers building an alternative LALR kernel construction (the
// classic "efficient" propagation-table algorithm) on top of this package
// that need a placeholder lookahead symbol name; lalr.BuildCollection itself
// does not need one.
func (g *Grammar) GenerateUniqueTerminalName(prefix string) string {
	candidate := prefix
	suffix := 0
	for {
		if _, taken := g.byName[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", prefix, suffix)
		suffix++
	}
}

// Validate checks the structural invariants a Grammar must hold before it is
// used to build a Collection: it must have at least one terminal, at least
// one non-terminal, a declared start symbol, and every production's Word
// must reference only known symbol ids.
func (g *Grammar) Validate() error {
	if len(g.terminals) == 0 {
		return fmt.Errorf("grammar: no terminals defined")
	}
	if len(g.nonTerminals) == 0 {
		return fmt.Errorf("grammar: no non-terminals defined")
	}
	if !g.hasStart {
		return fmt.Errorf("grammar: no start symbol declared")
	}
	for _, nt := range g.nonTerminals {
		for _, p := range nt.productions {
			for _, sym := range p.RHS {
				if sym == Epsilon {
					continue
				}
				if !g.IsTerminal(sym) && !g.IsNonTerminal(sym) {
					return fmt.Errorf("grammar: production %s -> %s references unknown symbol id %d", nt.name, p.RHS.StringIn(g), sym)
				}
			}
		}
	}
	return nil
}
