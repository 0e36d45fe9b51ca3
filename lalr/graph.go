package lalr

import (
	"fmt"
	"io"
	"strings"

	"github.com/dekarrin/lalrgen/grammar"
)

// SaveGraph writes w a Graphviz DOT description of the collection's
// transition graph: one node per closure, one edge per transition labelled
// with its symbol. It is a debugging aid alongside LookbackTerminals and the
// REPL, not part of the Generator API proper — no component reads a DOT
// file back in.
func (c *Collection) SaveGraph(w io.Writer) error {
	g := c.grammar

	if _, err := fmt.Fprintln(w, "digraph collection {"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\trankdir=LR;"); err != nil {
		return err
	}

	for _, ch := range c.Closures() {
		shape := "box"
		if ch == c.start {
			shape = "box,peripheries=2"
		}
		if _, err := fmt.Fprintf(w, "\t%d [shape=%s,label=%q];\n", int(ch), shape, closureLabel(c, ch)); err != nil {
			return err
		}
	}

	for _, ch := range c.Closures() {
		for _, t := range c.Transitions(ch) {
			if _, err := fmt.Fprintf(w, "\t%d -> %d [label=%q];\n", int(t.From), int(t.To), g.Name(t.Symbol)); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

// closureLabel renders a closure's kernel items (cursor 0 items from other
// closures are generated, not kernel, so they're omitted) as a multi-line
// DOT label.
func closureLabel(c *Collection, ch ClosureHandle) string {
	label := fmt.Sprintf("state %d", int(ch))
	for _, eh := range c.Elements(ch) {
		e := c.Element(eh)
		if e.Cursor() == 0 && !e.IsAugmentedStart() {
			continue
		}
		label += "\n" + itemString(c.grammar, e)
	}
	return label
}

// itemString renders one LR(1) item as "LHS -> RHS-before . RHS-after".
func itemString(g *grammar.Grammar, e Element) string {
	var sb strings.Builder
	sb.WriteString(g.Name(e.LHS()))
	sb.WriteString(" ->")
	rhs := e.RHS()
	for i, sym := range rhs {
		if i == e.Cursor() {
			sb.WriteString(" .")
		}
		sb.WriteByte(' ')
		if sym == grammar.Epsilon {
			sb.WriteString("ε")
			continue
		}
		sb.WriteString(g.Name(sym))
	}
	if e.Cursor() >= len(rhs) {
		sb.WriteString(" .")
	}
	return sb.String()
}
