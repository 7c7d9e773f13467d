package ports

import (
	"context"
	"delivery-map-client/internal/domain"
)

// Contract for retrieving the point-to-point shortest path between two nodes.
type PathProvider interface {
	// Return the path from → to, both endpoints included.
	ShortestPath(ctx context.Context, from, to domain.Node) ([]domain.Node, error)
}
