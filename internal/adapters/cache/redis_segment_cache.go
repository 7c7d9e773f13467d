package cache

import (
	"context"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/obs"
	"delivery-map-client/internal/ports"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "segment:"

// RedisSegmentCache stores segments as string keys "segment:<version>:<segment>"
// that expire after TTL.
type RedisSegmentCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSegmentCache(client *redis.Client, ttl time.Duration) *RedisSegmentCache {
	return &RedisSegmentCache{Client: client, TTL: ttl}
}

func redisKey(version, id string) string {
	return redisKeyPrefix + version + ":" + id
}

// Fetch cached segments for one graph version with a single MGET.
func (r *RedisSegmentCache) GetMany(
	ctx context.Context,
	version string,
	keys []ports.SegmentKey,
) (_ map[ports.SegmentKey][]domain.Node, err error) {
	defer obs.Time(ctx, "segment.cache.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("segment cache: redis client is nil")
	}

	if strings.TrimSpace(version) == "" {
		return nil, errors.New("get segment cache: version must not be empty")
	}

	ids := uniqueIDs(keys)
	if len(ids) == 0 {
		return map[ports.SegmentKey][]domain.Node{}, nil
	}

	rkeys := make([]string, 0, len(ids))
	for _, id := range ids {
		rkeys = append(rkeys, redisKey(version, id))
	}

	vals, err := r.Client.MGet(ctx, rkeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get segment cache: mget: %w", err)
	}

	out := make(map[ports.SegmentKey][]domain.Node, len(ids))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}

		k, err := parseSegmentID(ids[i])
		if err != nil {
			log.Printf("op=segment.cache.mget segment=%q err=%v", ids[i], err)
			continue
		}
		path, err := decodePath(raw)
		if err != nil {
			log.Printf("op=segment.cache.mget segment=%q err=%v", ids[i], err)
			continue
		}
		out[k] = path
	}

	return out, nil
}

// Store many segments in one pipeline.
func (r *RedisSegmentCache) PutMany(
	ctx context.Context,
	version string,
	segments map[ports.SegmentKey][]domain.Node,
) (err error) {
	defer obs.Time(ctx, "segment.cache.PutMany")(&err)

	if r.Client == nil {
		return errors.New("segment cache: redis client is nil")
	}

	if strings.TrimSpace(version) == "" {
		return errors.New("insert segment cache: version must not be empty")
	}

	if len(segments) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for k, path := range segments {
		raw, err := encodePath(path)
		if err != nil {
			return fmt.Errorf("insert segment cache %s: %w", segmentID(k), err)
		}
		pipe.Set(ctx, redisKey(version, segmentID(k)), raw, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert segment cache: pipeline exec: %w", err)
	}

	return nil
}
