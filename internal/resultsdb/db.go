package resultsdb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the results database connection.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the sqlite results database at path.
// Run MigrateUp before first use.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening results db %s: %w", path, err)
	}

	// Single-writer CLI usage; WAL plus a busy timeout covers the case of
	// a report being read while a run is recorded.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}
	return &DB{db}, nil
}
