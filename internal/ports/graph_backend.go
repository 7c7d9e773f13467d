package ports

import (
	"context"
	"delivery-map-client/internal/domain"
)

// Port: read access to the backend's canonical graph state.
type GraphReader interface {
	ListNodes(ctx context.Context) ([]domain.Node, error)
	ListEdges(ctx context.Context) ([]domain.Edge, error)
	// Deliveries carry minute offsets relative to BaseTime.
	ListDeliveries(ctx context.Context) ([]domain.Delivery, error)
	// Return the base departure time as "HH:MM".
	BaseTime(ctx context.Context) (string, error)
}

// Port: every state-changing backend operation. Callers reload after each one.
type GraphMutator interface {
	// Window bounds are wall-clock "HH:MM" strings.
	AddDelivery(ctx context.Context, location domain.Node, earliest, latest string) error
	RemoveDelivery(ctx context.Context, location domain.Node) error
	ClearDeliveries(ctx context.Context) error
	// BlockEdge toggles the blocked flag of from→to on the backend.
	BlockEdge(ctx context.Context, from, to domain.Node) error
	// SetWeight also clears the blocked flag.
	SetWeight(ctx context.Context, from, to domain.Node, weight float64) error
	SetBaseTime(ctx context.Context, clock string) error
}

// Port: the external delivery-order and time-window solver.
type Planner interface {
	ComputePlan(ctx context.Context) (domain.PlanResult, error)
}

// GraphBackend is everything the interactive client consumes.
type GraphBackend interface {
	GraphReader
	GraphMutator
	Planner
	PathProvider
}
