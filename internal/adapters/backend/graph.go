package backend

import (
	"context"
	"delivery-map-client/internal/api/dto"
	"delivery-map-client/internal/domain"
	"fmt"
	"strings"
)

func (c *Client) ListNodes(ctx context.Context) ([]domain.Node, error) {
	var raw []dto.Coord
	if err := c.getJSON(ctx, "ListNodes", "/map/nodes", nil, &raw); err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	nodes := make([]domain.Node, 0, len(raw))
	for _, r := range raw {
		nodes = append(nodes, toNode(r))
	}

	return nodes, nil
}

func (c *Client) ListEdges(ctx context.Context) ([]domain.Edge, error) {
	var raw []dto.EdgeResponse
	if err := c.getJSON(ctx, "ListEdges", "/map/edges", nil, &raw); err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}

	edges := make([]domain.Edge, 0, len(raw))
	for _, r := range raw {
		edges = append(edges, domain.Edge{
			From:    toNode(r.From),
			To:      toNode(r.To),
			Weight:  r.Weight,
			Blocked: r.Blocked,
		})
	}

	return edges, nil
}

func (c *Client) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	var raw []dto.DeliveryResponse
	if err := c.getJSON(ctx, "ListDeliveries", "/deliveries", nil, &raw); err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}

	deliveries := make([]domain.Delivery, 0, len(raw))
	for _, r := range raw {
		deliveries = append(deliveries, domain.Delivery{
			Location: toNode(r.Location),
			Earliest: r.Earliest,
			Latest:   r.Latest,
		})
	}

	return deliveries, nil
}

func (c *Client) BaseTime(ctx context.Context) (string, error) {
	var res dto.BaseTimeResponse
	if err := c.getJSON(ctx, "BaseTime", "/base-time", nil, &res); err != nil {
		return "", fmt.Errorf("get base time: %w", err)
	}

	base := strings.TrimSpace(res.BaseTime)
	if _, err := domain.ParseClock(base); err != nil {
		return "", domain.NewError(domain.KindDecode, "BaseTime", err)
	}

	return base, nil
}

func (c *Client) SetBaseTime(ctx context.Context, clock string) error {
	if _, err := domain.ParseClock(clock); err != nil {
		return domain.NewError(domain.KindValidation, "SetBaseTime", err)
	}

	if err := c.mutate(ctx, "SetBaseTime", "/base-time", dto.BaseTimeRequest{BaseTime: clock}); err != nil {
		return fmt.Errorf("set base time %q: %w", clock, err)
	}

	return nil
}

func toNode(c dto.Coord) domain.Node { return domain.Node{X: c[0], Y: c[1]} }

func toCoord(n domain.Node) dto.Coord { return dto.Coord{n.X, n.Y} }
