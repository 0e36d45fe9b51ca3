package genoptions

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/lalrgen/grammar"
)

// terminalSource is one [[terminals]] entry of a grammar description file.
type terminalSource struct {
	Name          string `toml:"name"`
	Precedence    *int   `toml:"precedence"`
	Associativity string `toml:"associativity"`
}

// productionSource is one [[productions]] entry: lhs -> rhs, bound to an
// optional semantic id. An empty RHS entry names the grammar's epsilon
// symbol.
type productionSource struct {
	LHS        string   `toml:"lhs"`
	RHS        []string `toml:"rhs"`
	SemanticID *int     `toml:"semantic_id"`
}

// GrammarSource is the small TOML schema this tool's CLI reads a grammar
// from: terminals (with optional precedence/associativity), non-terminals,
// productions, and a start symbol.
type GrammarSource struct {
	Start        string             `toml:"start"`
	Terminals    []terminalSource   `toml:"terminals"`
	NonTerminals []string           `toml:"nonterminals"`
	Productions  []productionSource `toml:"productions"`
}

// LoadGrammarFile reads a GrammarSource from a TOML file at path and builds
// a *grammar.Grammar from it.
func LoadGrammarFile(path string) (*grammar.Grammar, error) {
	var src GrammarSource
	if _, err := toml.DecodeFile(path, &src); err != nil {
		return nil, fmt.Errorf("genoptions: load grammar %s: %w", path, err)
	}
	return BuildGrammar(src)
}

// BuildGrammar constructs a *grammar.Grammar from a decoded GrammarSource,
// validating it before returning.
func BuildGrammar(src GrammarSource) (*grammar.Grammar, error) {
	g := grammar.New()
	ids := map[string]grammar.SymbolID{}

	for _, t := range src.Terminals {
		if t.Name == "" {
			return nil, fmt.Errorf("genoptions: terminal with empty name")
		}
		if t.Precedence == nil {
			ids[t.Name] = g.NewTerminal(t.Name)
			continue
		}
		assoc, err := parseAssociativity(t.Associativity)
		if err != nil {
			return nil, fmt.Errorf("genoptions: terminal %q: %w", t.Name, err)
		}
		ids[t.Name] = g.NewTerminalWithPrecedence(t.Name, *t.Precedence, assoc)
	}

	for _, name := range src.NonTerminals {
		if name == "" {
			return nil, fmt.Errorf("genoptions: non-terminal with empty name")
		}
		ids[name] = g.NewNonTerminal(name)
	}

	for _, p := range src.Productions {
		lhs, ok := ids[p.LHS]
		if !ok || !g.IsNonTerminal(lhs) {
			return nil, fmt.Errorf("genoptions: production lhs %q is not a declared non-terminal", p.LHS)
		}
		var symbols []grammar.SymbolID
		for _, s := range p.RHS {
			sym, ok := ids[s]
			if !ok {
				return nil, fmt.Errorf("genoptions: production for %q references undeclared symbol %q", p.LHS, s)
			}
			symbols = append(symbols, sym)
		}
		word := grammar.NewWord(symbols...)
		g.AddRule(lhs, word, p.SemanticID)
	}

	startID, ok := ids[src.Start]
	if !ok || !g.IsNonTerminal(startID) {
		return nil, fmt.Errorf("genoptions: start symbol %q is not a declared non-terminal", src.Start)
	}
	g.SetStart(startID)

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("genoptions: invalid grammar: %w", err)
	}
	return g, nil
}

func parseAssociativity(s string) (grammar.Associativity, error) {
	switch s {
	case "", "none":
		return grammar.NoAssoc, nil
	case "left":
		return grammar.LeftAssoc, nil
	case "right":
		return grammar.RightAssoc, nil
	default:
		return grammar.NoAssoc, fmt.Errorf("unknown associativity %q (want left, right, or none)", s)
	}
}
