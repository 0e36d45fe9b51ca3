package emit

import (
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/unicode/norm"

	"github.com/dekarrin/lalrgen/genoptions"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/dekarrin/lalrgen/lalrerr"
)

// Options configures GenerateParser's output.
type Options struct {
	// PackageName is the package clause of the emitted file.
	PackageName string

	// RuntimeImport is the import path generated code uses for this
	// package's Runtime/Token/SemanticFunc types. Defaults to this
	// module's own emit package path if empty.
	RuntimeImport string

	Generator genoptions.Options
}

// partial captures a unique-partial-match callback invocation site, shared
// shape between shift cases (terminal transitions) and goto cases
// (non-terminal transitions).
type partial struct {
	HasMatch   bool
	SemanticID int
	RHSLen     int
}

type shiftCase struct {
	TermID  int
	Comment string
	Target  string
	Partial partial
}

type reduceCase struct {
	TermID     int
	Comment    string
	SemanticID int
	RHSLen     int
	LHS        int
	IsAccept   bool
}

type gotoCase struct {
	NonTermID int
	Comment   string
	Target    string
	Partial   partial
}

type stateData struct {
	Index       int
	FuncName    string
	GotoFunc    string
	ShiftCases  []shiftCase
	ReduceCases []reduceCase
	GotoCases   []gotoCase
}

type templateData struct {
	Package       string
	RuntimeImport string
	StartFunc     string
	States        []stateData
}

// GenerateParser walks every closure of c and emits the Go source of a
// recursive-ascent parser specialised to it: one dispatcher function per
// closure handling shift/reduce on the current lookahead, and one
// goto-dispatcher function handling the jump performed once a reduce's
// distance-to-pop reaches zero.
//
// c must already be Simplify()-ed. Unresolved shift/reduce conflicts are
// collected into a *lalrerr.ConflictSet exactly as table.Generate does,
// since a parser emitted directly from a Collection needs the same
// resolution pass table generation performs.
func GenerateParser(c *lalr.Collection, opts Options) ([]byte, error) {
	g := c.Grammar()
	conflicts := &lalrerr.ConflictSet{}

	td := templateData{
		Package:       opts.PackageName,
		RuntimeImport: opts.RuntimeImport,
		StartFunc:     stateFuncName(int(c.StartClosure())),
	}
	if td.Package == "" {
		td.Package = "parser"
	}
	td.Package = sanitizeIdent(td.Package)
	if td.RuntimeImport == "" {
		td.RuntimeImport = "github.com/dekarrin/lalrgen/emit"
	}

	for _, ch := range c.Closures() {
		sd := stateData{
			Index:    int(ch),
			FuncName: stateFuncName(int(ch)),
			GotoFunc: stateFuncName(int(ch)) + "Goto",
		}

		var lookbacks grammar.Set
		if !opts.Generator.SkipLookbackGeneration {
			lookbacks = c.LookbackTerminals(ch)
		}

		shiftTarget := map[grammar.SymbolID]string{}
		for _, tr := range c.Transitions(ch) {
			if !g.IsTerminal(tr.Symbol) {
				continue
			}
			shiftTarget[tr.Symbol] = stateFuncName(int(tr.To))
		}

		reduceByTerm := map[grammar.SymbolID]reduceCase{}
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
					if t == grammar.EndOfInput {
						reduceByTerm[t] = reduceCase{TermID: int(t), Comment: g.Name(t), IsAccept: true}
					}
				}
				continue
			}
			if !e.HasSemanticID() {
				return nil, lalrerr.NewGrammarError(
					"production (lhs=%s) has no semantic id but is reducible in state %d",
					g.Name(e.LHS()), int(ch),
				)
			}
			for _, t := range la.Elements() {
				if !g.IsTerminal(t) {
					continue
				}
				rc := reduceCase{
					TermID: int(t), Comment: g.Name(t),
					SemanticID: *e.SemanticID(), RHSLen: nonEpsilonLen(e.RHS()), LHS: int(e.LHS()),
				}
				if existing, ok := reduceByTerm[t]; ok && !sameReduce(existing, rc) {
					conflicts.Conflicts = append(conflicts.Conflicts, lalrerr.NewReduceReduceConflict(
						int(ch), g.Name(t), []int{existing.SemanticID, rc.SemanticID},
					))
					continue
				}
				reduceByTerm[t] = rc
			}
		}

		terms := map[grammar.SymbolID]bool{}
		for t := range shiftTarget {
			terms[t] = true
		}
		for t := range reduceByTerm {
			terms[t] = true
		}
		var sortedTerms []grammar.SymbolID
		for t := range terms {
			sortedTerms = append(sortedTerms, t)
		}
		sort.Slice(sortedTerms, func(i, j int) bool { return sortedTerms[i] < sortedTerms[j] })

		for _, t := range sortedTerms {
			target, hasShift := shiftTarget[t]
			rc, hasReduce := reduceByTerm[t]

			if hasShift && hasReduce {
				if lookbacks == nil {
					conflicts.Conflicts = append(conflicts.Conflicts, lalrerr.NewShiftReduceConflict(
						int(ch), g.Name(t), 0, rc.SemanticID,
					))
					if opts.Generator.StopOnConflict {
						return nil, conflicts
					}
					continue
				}
				switch lalr.ResolveShiftReduce(g, lookbacks, t) {
				case lalr.DecisionShift:
					hasReduce = false
				case lalr.DecisionReduce:
					hasShift = false
				default:
					conflicts.Conflicts = append(conflicts.Conflicts, lalrerr.NewShiftReduceConflict(
						int(ch), g.Name(t), 0, rc.SemanticID,
					))
					if opts.Generator.StopOnConflict {
						return nil, conflicts
					}
					continue
				}
			}

			switch {
			case hasShift:
				sc := shiftCase{TermID: int(t), Comment: g.Name(t), Target: target}
				if pm, ok := findPartialMatch(c, ch, t); ok {
					sc.Partial = partial{HasMatch: true, SemanticID: pm.RuleSemanticID, RHSLen: pm.MatchLength}
				}
				sd.ShiftCases = append(sd.ShiftCases, sc)
			case hasReduce:
				sd.ReduceCases = append(sd.ReduceCases, rc)
			}
		}

		for _, tr := range c.Transitions(ch) {
			if g.IsTerminal(tr.Symbol) {
				continue
			}
			gc := gotoCase{NonTermID: int(tr.Symbol), Comment: g.Name(tr.Symbol), Target: stateFuncName(int(tr.To))}
			if pm, ok := c.UniquePartialMatch(tr.Originating, tr.Symbol); ok {
				gc.Partial = partial{HasMatch: true, SemanticID: pm.RuleSemanticID, RHSLen: pm.MatchLength}
			}
			sd.GotoCases = append(sd.GotoCases, gc)
		}
		sort.Slice(sd.GotoCases, func(i, j int) bool { return sd.GotoCases[i].NonTermID < sd.GotoCases[j].NonTermID })

		td.States = append(td.States, sd)
	}

	if !conflicts.Empty() {
		return nil, conflicts
	}

	var sb strings.Builder
	if err := parserTemplate.Execute(&sb, td); err != nil {
		return nil, fmt.Errorf("emit: execute template: %w", err)
	}

	formatted, err := format.Source([]byte(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("emit: format generated source: %w\nsource:\n%s", err, sb.String())
	}
	return formatted, nil
}

func sameReduce(a, b reduceCase) bool {
	return a.SemanticID == b.SemanticID && a.RHSLen == b.RHSLen && a.LHS == b.LHS
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

func findPartialMatch(c *lalr.Collection, ch lalr.ClosureHandle, term grammar.SymbolID) (lalr.PartialMatch, bool) {
	for _, tr := range c.Transitions(ch) {
		if tr.Symbol == term {
			return c.UniquePartialMatch(tr.Originating, tr.Symbol)
		}
	}
	return lalr.PartialMatch{}, false
}

// stateFuncName names a closure's dispatcher function deterministically by
// index. Closures reached by an LALR core-merge can carry kernel items from
// more than one production, so there is no single non-terminal name that
// would always apply; emitting purely by index avoids an arbitrary pick.
func stateFuncName(index int) string {
	return fmt.Sprintf("state%d", index)
}

// sanitizeIdent normalises name to NFC and strips everything but letters,
// digits, and underscore, prefixing with "_" if the result would not start
// with a letter or underscore. GenerateParser applies it to the package
// name; state functions are named by index (see stateFuncName).
func sanitizeIdent(name string) string {
	normalized := norm.NFC.String(name)
	var sb strings.Builder
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if sb.Len() == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "_sym"
	}
	return sb.String()
}

var parserTemplate = template.Must(template.New("parser").Parse(`// Code generated by lalrgen's emit package. DO NOT EDIT.

package {{.Package}}

import (
	emitrt "{{.RuntimeImport}}"
	"github.com/dekarrin/lalrgen/grammar"
)

// Parse runs the recursive-ascent parser over tokens, invoking rules by
// semantic id as productions are reduced or partially matched. It returns
// the accepting production's result, or an error if the input was
// rejected.
func Parse(tokens []emitrt.Token, rules map[int]emitrt.SemanticFunc) (any, error) {
	rt := emitrt.NewRuntime(tokens, rules)
	_, _, err := {{.StartFunc}}(rt)
	if err != nil {
		return nil, err
	}
	if !rt.Accepted() {
		// every successful path reduces the augmented start production via
		// Accept, which is the only way a state function returns a nil
		// error without the parse being complete; reaching here means
		// input ran out before that happened.
		return nil, rt.InputUnderflow(0)
	}
	return rt.Result(), nil
}
{{range .States}}
// {{.FuncName}} dispatches on the current lookahead for closure {{.Index}}.
func {{.FuncName}}(rt *emitrt.Runtime) (int, grammar.SymbolID, error) {
	switch rt.Peek() {
{{- range .ShiftCases}}
	case {{.TermID}}: // {{.Comment}}
{{- if .Partial.HasMatch}}
		if err := rt.PartialTerminal({{$.Index}}, {{.Partial.SemanticID}}, {{.Partial.RHSLen}}); err != nil {
			return 0, 0, err
		}
{{- end}}
		rt.Shift()
		d, lhs, err := {{.Target}}(rt)
		if err != nil {
			return 0, 0, err
		}
		if d < 0 {
			return d, lhs, nil
		}
		if d > 0 {
			return d - 1, lhs, nil
		}
		return {{$.GotoFunc}}(rt, lhs)
{{- end}}
{{- range .ReduceCases}}
	case {{.TermID}}: // {{.Comment}}
{{- if .IsAccept}}
		return rt.Accept()
{{- else}}
		return rt.Reduce({{$.Index}}, {{.SemanticID}}, {{.RHSLen}}, {{.LHS}})
{{- end}}
{{- end}}
	default:
		return 0, 0, rt.UndefinedEntry({{.Index}})
	}
}

// {{.GotoFunc}} performs the jump transition for closure {{.Index}} once a
// reduce's distance-to-pop has reached zero, dispatching on the
// non-terminal just produced.
func {{.GotoFunc}}(rt *emitrt.Runtime, lhs grammar.SymbolID) (int, grammar.SymbolID, error) {
	switch lhs {
{{- range .GotoCases}}
	case {{.NonTermID}}: // {{.Comment}}
{{- if .Partial.HasMatch}}
		if err := rt.PartialNonTerminal({{$.Index}}, {{.Partial.SemanticID}}, {{.Partial.RHSLen}}); err != nil {
			return 0, 0, err
		}
{{- end}}
		return {{.Target}}(rt)
{{- end}}
	default:
		return 0, 0, rt.UndefinedEntry({{.Index}})
	}
}
{{end}}
`))
