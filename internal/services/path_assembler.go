package services

import (
	"context"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/obs"
	"delivery-map-client/internal/ports"
	"log"

	"golang.org/x/sync/errgroup"
)

const defaultSegmentConcurrency = 4

// PathAssembler turns a waypoint list into one node-by-node route by asking
// the backend for the shortest path of every consecutive pair.
//
// A segment that fails, comes back empty or cannot be decoded is logged and
// skipped; the rest of the route is still assembled.
type PathAssembler struct {
	Paths ports.PathProvider
	// Optional. nil disables segment caching.
	Cache ports.SegmentCache
	// Maximum number of in-flight segment requests.
	Concurrency int
}

func NewPathAssembler(paths ports.PathProvider, cache ports.SegmentCache, concurrency int) *PathAssembler {
	if concurrency <= 0 {
		concurrency = defaultSegmentConcurrency
	}
	return &PathAssembler{Paths: paths, Cache: cache, Concurrency: concurrency}
}

// AssembleFullPath fetches every segment from the backend, bypassing the cache.
func (a *PathAssembler) AssembleFullPath(ctx context.Context, waypoints []domain.Node) []domain.Node {
	return a.AssembleFullPathAt(ctx, "", waypoints)
}

// AssembleFullPathAt assembles the route for the graph identified by version.
// Cached segments are used when both Cache and version are set.
// The result is empty when fewer than two waypoints are given or no segment succeeded.
func (a *PathAssembler) AssembleFullPathAt(ctx context.Context, version string, waypoints []domain.Node) []domain.Node {
	if len(waypoints) < 2 {
		return []domain.Node{}
	}

	keys := make([]ports.SegmentKey, 0, len(waypoints)-1)
	for i := 0; i+1 < len(waypoints); i++ {
		keys = append(keys, ports.SegmentKey{From: waypoints[i], To: waypoints[i+1]})
	}

	// One slot per segment so the result keeps waypoint order whatever the completion order.
	segments := make([][]domain.Node, len(keys))

	useCache := a.Cache != nil && version != ""
	if useCache {
		cached, err := a.Cache.GetMany(ctx, version, keys)
		if err != nil {
			// Cache failures should not fail the assembly.
			log.Printf("req_id=%s op=assemble.cache.get version=%s err=%v", obs.RequestID(ctx), version, err)
		}
		for i, k := range keys {
			if p, ok := cached[k]; ok && len(p) > 0 {
				segments[i] = p
			}
		}
	}

	fetched := a.fetchMissing(ctx, keys, segments)

	if useCache && len(fetched) > 0 {
		if err := a.Cache.PutMany(ctx, version, fetched); err != nil {
			log.Printf("req_id=%s op=assemble.cache.put version=%s err=%v", obs.RequestID(ctx), version, err)
		}
	}

	return stitch(segments)
}

// fetchMissing fills the empty slots of segments concurrently and returns what it fetched.
func (a *PathAssembler) fetchMissing(
	ctx context.Context,
	keys []ports.SegmentKey,
	segments [][]domain.Node,
) map[ports.SegmentKey][]domain.Node {
	limit := a.Concurrency
	if limit <= 0 {
		limit = defaultSegmentConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	pending := make([]bool, len(keys))
	for i, k := range keys {
		if segments[i] != nil {
			continue
		}
		pending[i] = true

		g.Go(func() error {
			path, err := a.Paths.ShortestPath(gctx, k.From, k.To)
			if err != nil {
				// Non-fatal: one missing segment must not cancel its siblings.
				log.Printf(
					"req_id=%s op=assemble.segment index=%d from=%s to=%s err=%v",
					obs.RequestID(ctx), i, k.From.Key(), k.To.Key(), err,
				)
				return nil
			}
			if len(path) == 0 {
				log.Printf(
					"req_id=%s op=assemble.segment index=%d from=%s to=%s err=empty path",
					obs.RequestID(ctx), i, k.From.Key(), k.To.Key(),
				)
				return nil
			}
			segments[i] = path
			return nil
		})
	}
	_ = g.Wait()

	fetched := make(map[ports.SegmentKey][]domain.Node)
	for i, k := range keys {
		if pending[i] && segments[i] != nil {
			fetched[k] = segments[i]
		}
	}
	return fetched
}

// stitch concatenates segments in order. A segment's first point is dropped
// when it repeats the last point already appended; after a skipped segment
// the next one is appended whole so no transit node is lost.
func stitch(segments [][]domain.Node) []domain.Node {
	out := []domain.Node{}
	for _, seg := range segments {
		for _, p := range seg {
			if n := len(out); n > 0 && out[n-1] == p {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
