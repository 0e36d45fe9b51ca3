/*
Lalrgen builds an LALR(1) viable-prefix automaton from a grammar description
and produces a parse table, a generated Go parser, or both.

Usage:

	lalrgen [flags] -g GRAMMAR_FILE

The flags are:

	-v, --version
		Give the current version of lalrgen and then exit.

	-g, --grammar FILE
		Read the grammar description from the given TOML file. Required
		unless -v is given.

	-o, --options FILE
		Read generator toggles (stop-on-conflict, try-solve-reduce-conflicts,
		skip-lookback-generation) from the given TOML file. If not given, the
		conservative defaults are used (abort on first conflict).

	--table FILE
		Write the generated TableSet, gob-encoded, to the given file.

	--cache FILE
		Use the given sqlite file as a table cache keyed by grammar
		fingerprint: a cache hit skips table generation entirely, and a miss
		populates the cache after generating.

	--parser FILE
		Write generated Go parser source to the given file.

	--package NAME
		Package clause for the generated parser source. Defaults to "parser".

	--dot FILE
		Write a Graphviz DOT description of the collection to the given
		file. If the "dot" binary is on PATH, also renders FILE.svg
		alongside it; missing "dot" is not a fatal error.

	--repl
		After building the collection (and any requested table/parser
		output), drop into an interactive session for inspecting closures,
		transitions, and lookback terminals by state number. Type "help" in
		the session for the list of commands.

Once a session has started in --repl mode, type "help" for the command list
and "quit" to exit.
*/
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dekarrin/lalrgen/cache"
	"github.com/dekarrin/lalrgen/emit"
	"github.com/dekarrin/lalrgen/genoptions"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/internal/input"
	"github.com/dekarrin/lalrgen/internal/version"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/dekarrin/lalrgen/table"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitBuildError indicates an unsuccessful program execution due to a
	// problem building the collection, table, or parser.
	ExitBuildError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue reading the grammar or options file.
	ExitInitError
)

var (
	returnCode int = ExitSuccess

	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of lalrgen and then exit.")
	flagGrammar = pflag.StringP("grammar", "g", "", "Read the grammar description from the given TOML file.")
	flagOptions = pflag.StringP("options", "o", "", "Read generator toggles from the given TOML file.")
	flagTable   = pflag.String("table", "", "Write the generated TableSet, gob-encoded, to the given file.")
	flagCache   = pflag.String("cache", "", "Use the given sqlite file as a table cache keyed by grammar fingerprint.")
	flagParser  = pflag.String("parser", "", "Write generated Go parser source to the given file.")
	flagPackage = pflag.String("package", "parser", "Package clause for the generated parser source.")
	flagDot     = pflag.String("dot", "", "Write a Graphviz DOT description of the collection to the given file.")
	flagREPL    = pflag.Bool("repl", false, "Drop into an interactive collection-browsing session after building.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if *flagGrammar == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -g/--grammar is required")
		returnCode = ExitInitError
		return
	}

	opts := genoptions.Default()
	if *flagOptions != "" {
		loaded, err := genoptions.Load(*flagOptions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		opts = loaded
	}

	g, err := genoptions.LoadGrammarFile(*flagGrammar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	collection, err := lalr.BuildCollection(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitBuildError
		return
	}
	collection.Simplify()

	if *flagTable != "" || *flagCache != "" {
		if err := generateTable(collection, opts, *flagTable, *flagCache); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitBuildError
			return
		}
	}

	if *flagParser != "" {
		src, err := emit.GenerateParser(collection, emit.Options{PackageName: *flagPackage, Generator: opts})
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitBuildError
			return
		}
		if err := os.WriteFile(*flagParser, src, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: write %s: %s\n", *flagParser, err.Error())
			returnCode = ExitBuildError
			return
		}
	}

	if *flagDot != "" {
		if err := saveDot(collection, *flagDot); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitBuildError
			return
		}
	}

	if *flagREPL {
		if err := runREPL(collection); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitBuildError
			return
		}
	}
}

// generateTable generates (or fetches from cachePath) a TableSet and, when
// tablePath is non-empty, writes it gob-encoded there.
func generateTable(c *lalr.Collection, opts genoptions.Options, tablePath, cachePath string) error {
	var ts *table.TableSet

	if cachePath != "" {
		store, err := cache.Open(cachePath)
		if err != nil {
			return fmt.Errorf("open table cache: %w", err)
		}
		defer store.Close()

		hit, found, err := store.Get(c.Grammar())
		if err != nil {
			return fmt.Errorf("read table cache: %w", err)
		}
		if found {
			ts = hit
		} else {
			generated, genErr := table.Generate(c, opts)
			if genErr != nil {
				return genErr
			}
			ts = generated
			if err := store.Put(c.Grammar(), ts); err != nil {
				return fmt.Errorf("write table cache: %w", err)
			}
		}
	} else {
		generated, err := table.Generate(c, opts)
		if err != nil {
			return err
		}
		ts = generated
	}

	if tablePath == "" {
		return nil
	}
	data, err := ts.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal table: %w", err)
	}
	return os.WriteFile(tablePath, data, 0644)
}

// saveDot writes path a Graphviz DOT description of c, then best-effort
// shells out to "dot" to render path+".svg" alongside it. A missing "dot"
// binary is not an error.
func saveDot(c *lalr.Collection, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := c.SaveGraph(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if _, err := exec.LookPath("dot"); err != nil {
		return nil
	}
	cmd := exec.Command("dot", "-Tsvg", "-o", path+".svg", path)
	cmd.Stderr = os.Stderr
	_ = cmd.Run() // best-effort: a failed render is not fatal
	return nil
}

// runREPL starts an interactive session for browsing c's closures,
// transitions, and lookback terminals by state number, grounded on the
// interactive command loop idiom of this tool's retrieval pack.
func runREPL(c *lalr.Collection) error {
	reader, err := input.NewInteractiveReader("lalrgen> ")
	if err != nil {
		return fmt.Errorf("create readline session: %w", err)
	}
	reader.AllowBlank(true)
	defer reader.Close()

	fmt.Println("lalrgen interactive session. Type \"help\" for commands, \"quit\" to exit.")

	for {
		line, err := reader.ReadLine()
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "help":
			printREPLHelp()
		case "state":
			printState(c, fields[1:])
		case "lookback":
			printLookback(c, fields[1:])
		default:
			fmt.Printf("unknown command %q; type \"help\" for the list\n", fields[0])
		}
	}
}

func printREPLHelp() {
	fmt.Println(`commands:
  state N      show closure N's items and transitions
  lookback N   show the lookback terminals feeding into closure N
  help         show this message
  quit         exit the session`)
}

func printState(c *lalr.Collection, args []string) {
	ch, ok := parseClosureArg(c, args)
	if !ok {
		return
	}
	g := c.Grammar()
	for _, eh := range c.Elements(ch) {
		e := c.Element(eh)
		fmt.Printf("  %s -> %s\n", g.Name(e.LHS()), wordWithCursor(g, e))
	}
	for _, t := range c.Transitions(ch) {
		fmt.Printf("  on %s -> state %d\n", g.Name(t.Symbol), int(t.To))
	}
}

func printLookback(c *lalr.Collection, args []string) {
	ch, ok := parseClosureArg(c, args)
	if !ok {
		return
	}
	g := c.Grammar()
	lookbacks := c.LookbackTerminals(ch)
	var names []string
	for _, t := range lookbacks.Elements() {
		names = append(names, g.Name(t))
	}
	fmt.Printf("  %s\n", strings.Join(names, ", "))
}

func parseClosureArg(c *lalr.Collection, args []string) (lalr.ClosureHandle, bool) {
	if len(args) != 1 {
		fmt.Println("usage: state N (or lookback N)")
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n >= c.ClosureCount() {
		fmt.Printf("no such state %q\n", args[0])
		return 0, false
	}
	return lalr.ClosureHandle(n), true
}

func wordWithCursor(g *grammar.Grammar, e lalr.Element) string {
	var sb strings.Builder
	rhs := e.RHS()
	for i, sym := range rhs {
		if i == e.Cursor() {
			sb.WriteString(". ")
		}
		sb.WriteString(g.Name(sym))
		sb.WriteByte(' ')
	}
	if e.Cursor() >= len(rhs) {
		sb.WriteString(".")
	}
	return strings.TrimSpace(sb.String())
}
