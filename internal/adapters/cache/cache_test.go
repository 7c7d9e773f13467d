package cache

import (
	"context"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/db"
	"delivery-map-client/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var (
	segAB = ports.SegmentKey{From: domain.Node{X: 0, Y: 0}, To: domain.Node{X: 2, Y: 0}}
	segBC = ports.SegmentKey{From: domain.Node{X: 2, Y: 0}, To: domain.Node{X: 2, Y: 2}}
	segCA = ports.SegmentKey{From: domain.Node{X: 2, Y: 2}, To: domain.Node{X: 0, Y: 0}}

	pathAB = []domain.Node{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	pathBC = []domain.Node{{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}}
)

func newSqliteCache(t *testing.T) *SqliteSegmentCache {
	t.Helper()

	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn, Sqlite))
	return NewSqliteSegmentCache(conn)
}

func newRedisCache(t *testing.T) (*RedisSegmentCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSegmentCache(client, time.Minute), mr
}

// exerciseRoundTrip runs the shared GetMany/PutMany contract against any implementation.
func exerciseRoundTrip(t *testing.T, c ports.SegmentCache) {
	t.Helper()
	ctx := context.Background()

	// build test data
	err := c.PutMany(ctx, "v1", map[ports.SegmentKey][]domain.Node{
		segAB: pathAB,
		segBC: pathBC,
	})
	require.NoError(t, err)

	// verify hits and misses
	got, err := c.GetMany(ctx, "v1", []ports.SegmentKey{segAB, segBC, segCA, segAB})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, pathAB, got[segAB])
	assert.Equal(t, pathBC, got[segBC])
	_, ok := got[segCA]
	assert.False(t, ok)

	// verify another version never sees v1 entries
	got, err = c.GetMany(ctx, "v2", []ports.SegmentKey{segAB})
	require.NoError(t, err)
	assert.Empty(t, got)

	// verify overwrite
	shortcut := []domain.Node{{X: 0, Y: 0}, {X: 2, Y: 0}}
	require.NoError(t, c.PutMany(ctx, "v1", map[ports.SegmentKey][]domain.Node{segAB: shortcut}))
	got, err = c.GetMany(ctx, "v1", []ports.SegmentKey{segAB})
	require.NoError(t, err)
	assert.Equal(t, shortcut, got[segAB])
}

func TestSqliteSegmentCache_RoundTrip(t *testing.T) {
	exerciseRoundTrip(t, newSqliteCache(t))
}

func TestRedisSegmentCache_RoundTrip(t *testing.T) {
	c, _ := newRedisCache(t)
	exerciseRoundTrip(t, c)
}

func TestRedisSegmentCache_Expires(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, "v1", map[ports.SegmentKey][]domain.Node{segAB: pathAB}))
	mr.FastForward(2 * time.Minute)

	got, err := c.GetMany(ctx, "v1", []ports.SegmentKey{segAB})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSegmentCache_RejectsEmptyVersion(t *testing.T) {
	c := newSqliteCache(t)
	ctx := context.Background()

	_, err := c.GetMany(ctx, " ", []ports.SegmentKey{segAB})
	assert.Error(t, err)
	assert.Error(t, c.PutMany(ctx, "", map[ports.SegmentKey][]domain.Node{segAB: pathAB}))
}

func TestSqliteSegmentCache_SkipsCorruptRows(t *testing.T) {
	c := newSqliteCache(t)
	ctx := context.Background()

	_, err := c.DB.ExecContext(ctx, `INSERT INTO segment_cache (version, segment, path) VALUES (?, ?, ?)`,
		"v1", segmentID(segAB), "not json")
	require.NoError(t, err)

	got, err := c.GetMany(ctx, "v1", []ports.SegmentKey{segAB})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPrune_KeepsCurrentVersion(t *testing.T) {
	c := newSqliteCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, "old", map[ports.SegmentKey][]domain.Node{segAB: pathAB, segBC: pathBC}))
	require.NoError(t, c.PutMany(ctx, "new", map[ports.SegmentKey][]domain.Node{segAB: pathAB}))

	n, err := Prune(ctx, c.DB, Sqlite, "new")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := c.GetMany(ctx, "new", []ports.SegmentKey{segAB})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestParseSegmentID(t *testing.T) {
	k, err := parseSegmentID(segmentID(segBC))
	require.NoError(t, err)
	assert.Equal(t, segBC, k)

	_, err = parseSegmentID("0,0")
	assert.Error(t, err)
}
