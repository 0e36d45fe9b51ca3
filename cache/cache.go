// Package cache persists generated TableSets keyed by grammar fingerprint,
// so that re-running the generator against an unchanged grammar can skip
// collection construction and table generation entirely: the same grammar
// always produces the same table, so the fingerprint is a safe cache key.
package cache

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/table"
	"github.com/dekarrin/rezi"

	_ "modernc.org/sqlite"
)

// Store is a table cache backed by a sqlite database of fingerprint ->
// serialised TableSet entries.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS tables (
		fingerprint TEXT NOT NULL PRIMARY KEY,
		data        BLOB NOT NULL,
		created     INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("cache: init schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func fingerprintKey(g *grammar.Grammar) string {
	fp := g.Fingerprint()
	return hex.EncodeToString(fp[:])
}

// Get returns the cached TableSet for g's fingerprint, if one was
// previously stored with Put. The returned TableSet is already associated
// with g through (*table.TableSet).SetGrammar, so symbol names are
// available.
func (s *Store) Get(g *grammar.Grammar) (*table.TableSet, bool, error) {
	key := fingerprintKey(g)

	row := s.db.QueryRow(`SELECT data FROM tables WHERE fingerprint = ?`, key)
	var data []byte
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}

	ts := &table.TableSet{}
	if _, err := rezi.DecBinary(data, ts); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	ts.SetGrammar(g)
	return ts, true, nil
}

// Put stores ts under g's fingerprint, replacing any prior entry.
func (s *Store) Put(g *grammar.Grammar, ts *table.TableSet) error {
	key := fingerprintKey(g)
	data := rezi.EncBinary(ts)

	_, err := s.db.Exec(
		`INSERT INTO tables (fingerprint, data, created) VALUES (?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET data = excluded.data, created = excluded.created`,
		key, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", key, err)
	}
	return nil
}
