package cache

import (
	"context"
	"database/sql"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/obs"
	"delivery-map-client/internal/ports"
	"errors"
	"fmt"
	"log"
	"strings"
)

// SQLSegmentCache is a Postgres-backed cache for shortest-path segments.
// It expects the pgx database/sql driver.
type SQLSegmentCache struct {
	DB *sql.DB
}

func NewSQLSegmentCache(db *sql.DB) *SQLSegmentCache {
	return &SQLSegmentCache{DB: db}
}

// Fetch cached segments for one graph version.
func (s *SQLSegmentCache) GetMany(
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

	q := `
	SELECT segment, path
    FROM segment_cache
    WHERE version = $1
        AND segment = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, version, ids)
	if err != nil {
		return nil, fmt.Errorf("get segment cache: query segment_cache table: %w", err)
	}
	defer rows.Close()

	return scanSegments(rows, len(ids))
}

// Store many segments under one graph version.
func (s *SQLSegmentCache) PutMany(
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
	INSERT INTO segment_cache (version, segment, path)
    VALUES ($1, $2, $3)
	ON CONFLICT (version, segment) DO UPDATE
	SET path = EXCLUDED.path;
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

// scanSegments reads (segment, path) rows. A row that no longer decodes is
// logged and treated as a miss.
func scanSegments(rows *sql.Rows, capacity int) (map[ports.SegmentKey][]domain.Node, error) {
	out := make(map[ports.SegmentKey][]domain.Node, capacity)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("get segment cache: scan rows: %w", err)
		}

		k, err := parseSegmentID(id)
		if err != nil {
			log.Printf("op=segment.cache.scan segment=%q err=%v", id, err)
			continue
		}
		path, err := decodePath(raw)
		if err != nil {
			log.Printf("op=segment.cache.scan segment=%q err=%v", id, err)
			continue
		}
		out[k] = path
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get segment cache: row iteration: %w", err)
	}

	return out, nil
}
