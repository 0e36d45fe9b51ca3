// Package genoptions holds the TOML-loadable toggles that steer collection
// construction, conflict handling, and table generation.
package genoptions

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Options collects every generator-wide toggle. The zero value has every
// toggle off; the conservative default returned by Default differs from it
// only in StopOnConflict being set.
type Options struct {
	// StopOnConflict makes table generation and parser emission return at
	// the first unresolved shift/reduce conflict. Reduce/reduce conflicts
	// never cause an early return; they are collected with the others.
	// When false, generation continues and returns every conflict found;
	// in the table, a cell with an unresolved shift/reduce conflict keeps
	// both the shift and the reduce entry, and a reduce/reduce cell keeps
	// the first rule seen.
	StopOnConflict bool `toml:"stop_on_conflict"`

	// TrySolveReduceConflicts is loaded and saved with the other toggles,
	// but table.Generate and emit.GenerateParser do not consult it: every
	// reduce/reduce conflict is reported. The "keep longest cursor"
	// fallback is available on its own as lalr.ResolveReduceReduceTrySolve.
	TrySolveReduceConflicts bool `toml:"try_solve_reduce_conflicts"`

	// SkipLookbackGeneration disables the lookback-terminal query used by
	// the conflict resolver. With it skipped, every shift/reduce conflict
	// is reported unresolved regardless of declared precedence, since the
	// resolver has nothing to compare the current lookahead against.
	SkipLookbackGeneration bool `toml:"skip_lookback_generation"`
}

// Default returns the conservative default Options: abort on the first
// unresolved shift/reduce conflict, lookback generation enabled.
func Default() Options {
	return Options{StopOnConflict: true}
}

// Load reads Options from a TOML file at path. Fields absent from the file
// keep their zero value.
func Load(path string) (Options, error) {
	var o Options
	if _, err := toml.DecodeFile(path, &o); err != nil {
		return Options{}, fmt.Errorf("genoptions: load %s: %w", path, err)
	}
	return o, nil
}

// Save writes o to path as TOML, creating or truncating the file.
func Save(o Options, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("genoptions: save %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("genoptions: encode %s: %w", path, err)
	}
	return nil
}
