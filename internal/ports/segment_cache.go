package ports

import (
	"context"
	"delivery-map-client/internal/domain"
)

// SegmentKey identifies the shortest path between two consecutive waypoints.
type SegmentKey struct {
	From domain.Node
	To   domain.Node
}

// Optional store for shortest-path segments. Entries are scoped by a graph
// version so a segment computed before an edge edit is never served after it.
type SegmentCache interface {
	// Return cached segments for the keys found; missing keys are absent from the map.
	GetMany(ctx context.Context, version string, keys []SegmentKey) (map[SegmentKey][]domain.Node, error)
	PutMany(ctx context.Context, version string, segments map[SegmentKey][]domain.Node) error
}
