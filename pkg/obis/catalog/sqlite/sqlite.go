package sqlite

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
)

// Store implements catalog.Store on a single SQLite file. The file is the
// local cache artifact; Remove deletes it at teardown.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path with WAL mode enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS catalog_loads (
	kind TEXT PRIMARY KEY,
	loaded_at TEXT NOT NULL,
	count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reference_entities (
	kind TEXT NOT NULL,
	position INTEGER NOT NULL,
	id TEXT NOT NULL,
	name TEXT NOT NULL,
	extra TEXT,
	type TEXT,
	PRIMARY KEY(kind, position)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Load returns the saved set for kind in the order it was saved.
func (s *Store) Load(ctx context.Context, kind catalog.Kind) ([]catalog.Entity, bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count FROM catalog_loads WHERE kind = ?`, string(kind)).Scan(&count)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, COALESCE(extra, ''), COALESCE(type, '')
FROM reference_entities
WHERE kind = ?
ORDER BY position ASC;
`, string(kind))
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	entities := make([]catalog.Entity, 0, count)
	for rows.Next() {
		e := catalog.Entity{Kind: kind}
		if err := rows.Scan(&e.ID, &e.Name, &e.Extra, &e.Type); err != nil {
			return nil, false, err
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return entities, true, nil
}

// Save replaces the set for kind in one transaction.
func (s *Store) Save(ctx context.Context, kind catalog.Kind, entities []catalog.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reference_entities WHERE kind = ?`, string(kind)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO reference_entities (kind, position, id, name, extra, type)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, e := range entities {
		if _, err := stmt.ExecContext(ctx, string(kind), i, e.ID, e.Name, e.Extra, e.Type); err != nil {
			return err
		}
	}

	const upsert = `
INSERT INTO catalog_loads (kind, loaded_at, count)
VALUES (?, ?, ?)
ON CONFLICT(kind) DO UPDATE SET
	loaded_at=excluded.loaded_at,
	count=excluded.count;
`
	if _, err := tx.ExecContext(ctx, upsert, string(kind), time.Now().UTC().Format(time.RFC3339), len(entities)); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadedAt reports when kind was last saved.
func (s *Store) LoadedAt(ctx context.Context, kind catalog.Kind) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT loaded_at FROM catalog_loads WHERE kind = ?`, string(kind)).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Purge deletes every stored set.
func (s *Store) Purge(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"reference_entities", "catalog_loads"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Remove closes the database and deletes its files.
func (s *Store) Remove() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove %s", p)
		}
	}
	return nil
}

var (
	_ catalog.Store   = (*Store)(nil)
	_ catalog.Remover = (*Store)(nil)
)
