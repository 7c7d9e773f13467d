package services

import (
	"context"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/obs"
	"delivery-map-client/internal/ports"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// LoadSnapshot fetches nodes, edges, deliveries and the base time concurrently.
// Any failure fails the whole load so a partial snapshot is never returned.
func LoadSnapshot(ctx context.Context, reader ports.GraphReader) (_ domain.Snapshot, err error) {
	defer obs.Time(ctx, "services.LoadSnapshot")(&err)

	var (
		nodes      []domain.Node
		edges      []domain.Edge
		deliveries []domain.Delivery
		base       string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		nodes, err = reader.ListNodes(gctx)
		return err
	})
	g.Go(func() (err error) {
		edges, err = reader.ListEdges(gctx)
		return err
	})
	g.Go(func() (err error) {
		deliveries, err = reader.ListDeliveries(gctx)
		return err
	})
	g.Go(func() (err error) {
		base, err = reader.BaseTime(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	return domain.NewSnapshot(nodes, edges, deliveries, base), nil
}

// GraphVersion is the segment cache version of a snapshot.
func GraphVersion(s domain.Snapshot) string {
	return fmt.Sprintf("%016x", s.Fingerprint())
}
