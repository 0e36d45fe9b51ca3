package grammar

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a content digest of the grammar's symbols and
// productions: every terminal and non-terminal's name, precedence, and
// associativity, plus every production's right-hand side and semantic id.
// Symbols are visited in name-sorted order, so two Grammars that declare
// the same symbols in a different order fingerprint identically; each
// non-terminal's productions are hashed in the order they were added.
// Used by the table cache to key a built TableSet against the grammar it
// was generated from (see cache.Store).
func (g *Grammar) Fingerprint() [32]byte {
	names := make([]string, 0, len(g.byName))
	for name := range g.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		id := g.byName[name]
		if t, ok := g.terminals[id]; ok {
			prec, hasPrec := t.Precedence()
			fmt.Fprintf(&sb, "T %s prec=%v(%v) assoc=%s\n", name, prec, hasPrec, t.Associativity())
			continue
		}
		nt := g.nonTerminals[id]
		fmt.Fprintf(&sb, "N %s rules=%d\n", name, len(nt.productions))
		for _, p := range nt.productions {
			sid := "none"
			if p.SemanticID != nil {
				sid = fmt.Sprintf("%d", *p.SemanticID)
			}
			fmt.Fprintf(&sb, "  -> %s [semantic=%s]\n", p.RHS.StringIn(g), sid)
		}
	}
	if start, ok := g.StartSymbol(); ok {
		fmt.Fprintf(&sb, "start=%s\n", g.Name(start))
	}

	return blake2b.Sum256([]byte(sb.String()))
}
