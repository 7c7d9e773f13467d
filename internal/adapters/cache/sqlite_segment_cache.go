package cache

import (
	"context"
	"database/sql"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/obs"
	"delivery-map-client/internal/ports"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed cache for shortest-path segments, keyed by graph version.
type SqliteSegmentCache struct {
	DB *sql.DB
}

func NewSqliteSegmentCache(db *sql.DB) *SqliteSegmentCache {
	return &SqliteSegmentCache{DB: db}
}

// Fetch cached segments for one graph version.
func (s *SqliteSegmentCache) GetMany(
	ctx context.Context,
	version string,
	keys []ports.SegmentKey,
) (_ map[ports.SegmentKey][]domain.Node, err error) {
	defer obs.Time(ctx, "segment.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("segment cache: db is nil")
	}

	if strings.TrimSpace(version) == "" {
		return nil, errors.New("get segment cache: version must not be empty")
	}

	ids := uniqueIDs(keys)
	if len(ids) == 0 {
		return map[ports.SegmentKey][]domain.Node{}, nil
	}

	ph := make([]string, 0, len(ids))
	args := make([]any, 0, 1+len(ids))
	args = append(args, version)
	for _, id := range ids {
		ph = append(ph, "?")
		args = append(args, id)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        segment,
        path
    FROM segment_cache
    WHERE version = ?
        AND segment IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get segment cache: query segment_cache table: %w", err)
	}
	defer rows.Close()

	return scanSegments(rows, len(ids))
}

// Store many segments under one graph version.
func (s *SqliteSegmentCache) PutMany(
	ctx context.Context,
	version string,
	segments map[ports.SegmentKey][]domain.Node,
) (err error) {
	defer obs.Time(ctx, "segment.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("segment cache: db is nil")
	}

	if strings.TrimSpace(version) == "" {
		return errors.New("insert segment cache: version must not be empty")
	}

	if len(segments) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert segment cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO segment_cache (
        version,
        segment,
        path
    )
    VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert segment cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for k, path := range segments {
		raw, err := encodePath(path)
		if err != nil {
			return fmt.Errorf("insert segment cache %s: %w", segmentID(k), err)
		}

		if _, err := stmt.ExecContext(ctx, version, segmentID(k), raw); err != nil {
			return fmt.Errorf("insert segment cache %s: %w", segmentID(k), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert segment cache commit: %w", err)
	}

	return nil
}
