package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects the SQL flavour of the segment_cache table.
type Dialect int

const (
	Postgres Dialect = iota
	Sqlite
)

// Initialize the segment_cache schema.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := "TIMESTAMPTZ NOT NULL DEFAULT now()"
	if dialect == Sqlite {
		createdAt = "INTEGER NOT NULL DEFAULT (strftime('%s','now'))"
	}

	createSegmentCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS segment_cache (
        version TEXT NOT NULL,
        segment TEXT NOT NULL,
        path TEXT NOT NULL,
        created_at %s,
        PRIMARY KEY (version, segment)
    );
	`, createdAt)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_segment_cache_version
    ON segment_cache(version);
	`

	statements := []string{
		createSegmentCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Prune deletes every segment not stored under keepVersion and reports how many rows went.
// An empty keepVersion empties the table.
func Prune(ctx context.Context, db *sql.DB, dialect Dialect, keepVersion string) (int64, error) {
	if db == nil {
		return 0, errors.New("prune segment cache: DB is nil")
	}

	q := `DELETE FROM segment_cache WHERE version <> $1;`
	if dialect == Sqlite {
		q = `DELETE FROM segment_cache WHERE version <> ?;`
	}

	res, err := db.ExecContext(ctx, q, keepVersion)
	if err != nil {
		return 0, fmt.Errorf("prune segment cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune segment cache: rows affected: %w", err)
	}

	return n, nil
}
