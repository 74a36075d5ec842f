// Package registry persists the last scan's results to a SQLite database so
// later commands (reports, bulk strip) can operate on the recorded file set
// without re-discovering it.
package registry

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spectag/spectag/internal/engine"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS files (
	path        TEXT PRIMARY KEY,
	language    TEXT NOT NULL,
	parse_error TEXT NOT NULL DEFAULT '',
	scanned_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tests (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	file_path      TEXT NOT NULL,
	name           TEXT NOT NULL,
	line           INTEGER NOT NULL,
	suite          TEXT NOT NULL DEFAULT '',
	spec           TEXT NOT NULL DEFAULT '',
	test_type      TEXT NOT NULL DEFAULT '',
	mock_dependent INTEGER NOT NULL DEFAULT 0,
	orphaned       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_tests_file ON tests(file_path);
CREATE INDEX IF NOT EXISTS idx_tests_spec ON tests(spec);
`

// Registry is a handle to the on-disk scan database.
type Registry struct {
	db *sql.DB
}

// Open opens (creating if needed) the registry database at path.
func Open(path string) (*Registry, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening registry %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing registry schema: %w", err)
	}
	return &Registry{db: db}, nil
}

// Close releases the database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

// SaveScan replaces the stored rows for every file in reports with the new
// scan results. Files absent from reports are left untouched.
func (r *Registry) SaveScan(reports []engine.FileReport) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning registry transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	for _, rep := range reports {
		if _, err := tx.Exec(`DELETE FROM tests WHERE file_path = ?`, rep.Path); err != nil {
			return fmt.Errorf("clearing tests for %s: %w", rep.Path, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO files (path, language, parse_error, scanned_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET language = excluded.language,
			 parse_error = excluded.parse_error, scanned_at = excluded.scanned_at`,
			rep.Path, rep.Language, rep.ParseError, now,
		); err != nil {
			return fmt.Errorf("saving file %s: %w", rep.Path, err)
		}
		for _, t := range rep.Tests {
			if _, err := tx.Exec(
				`INSERT INTO tests (file_path, name, line, suite, spec, test_type, mock_dependent, orphaned)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				rep.Path, t.Name, t.Line, strings.Join(t.Suite, " > "),
				t.Tags.Spec, string(t.Tags.TestType),
				boolInt(t.Tags.MockDependent), boolInt(t.Orphaned),
			); err != nil {
				return fmt.Errorf("saving test %s:%d: %w", rep.Path, t.Line, err)
			}
		}
	}
	return tx.Commit()
}

// Files returns every recorded file path, sorted.
func (r *Registry) Files() ([]string, error) {
	rows, err := r.db.Query(`SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing registry files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// TestRow is one recorded test.
type TestRow struct {
	FilePath      string
	Name          string
	Line          int
	Suite         string
	Spec          string
	TestType      string
	MockDependent bool
	Orphaned      bool
}

// Orphans returns every recorded test lacking the required spec tag.
func (r *Registry) Orphans() ([]TestRow, error) {
	rows, err := r.db.Query(
		`SELECT file_path, name, line, suite, spec, test_type, mock_dependent, orphaned
		 FROM tests WHERE orphaned = 1 ORDER BY file_path, line`)
	if err != nil {
		return nil, fmt.Errorf("listing orphans: %w", err)
	}
	defer rows.Close()

	var out []TestRow
	for rows.Next() {
		var t TestRow
		var mock, orphaned int
		if err := rows.Scan(&t.FilePath, &t.Name, &t.Line, &t.Suite, &t.Spec, &t.TestType, &mock, &orphaned); err != nil {
			return nil, err
		}
		t.MockDependent = mock != 0
		t.Orphaned = orphaned != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
