package backend

import (
	"context"
	"delivery-map-client/internal/api/dto"
	"delivery-map-client/internal/domain"
	"fmt"
	"math"
)

func (c *Client) AddDelivery(ctx context.Context, location domain.Node, earliest, latest string) error {
	req := dto.AddDeliveryRequest{
		Location:   toCoord(location),
		TimeWindow: [2]string{earliest, latest},
	}

	if err := c.mutate(ctx, "AddDelivery", "/add-delivery", req); err != nil {
		return fmt.Errorf("add delivery at %s: %w", location, err)
	}

	return nil
}

func (c *Client) RemoveDelivery(ctx context.Context, location domain.Node) error {
	req := dto.LocationRequest{Location: toCoord(location)}

	if err := c.mutate(ctx, "RemoveDelivery", "/remove-delivery", req); err != nil {
		return fmt.Errorf("remove delivery at %s: %w", location, err)
	}

	return nil
}

func (c *Client) ClearDeliveries(ctx context.Context) error {
	if err := c.mutate(ctx, "ClearDeliveries", "/clear-deliveries", nil); err != nil {
		return fmt.Errorf("clear deliveries: %w", err)
	}

	return nil
}

func (c *Client) BlockEdge(ctx context.Context, from, to domain.Node) error {
	req := dto.EdgeRequest{FromNode: toCoord(from), ToNode: toCoord(to)}

	if err := c.mutate(ctx, "BlockEdge", "/block-edge", req); err != nil {
		return fmt.Errorf("block edge %s -> %s: %w", from, to, err)
	}

	return nil
}

func (c *Client) SetWeight(ctx context.Context, from, to domain.Node, weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return domain.NewError(domain.KindValidation, "SetWeight", fmt.Errorf("weight %v must be a finite number > 0", weight))
	}

	req := dto.WeightRequest{FromNode: toCoord(from), ToNode: toCoord(to), Weight: weight}

	if err := c.mutate(ctx, "SetWeight", "/set-weight", req); err != nil {
		return fmt.Errorf("set weight %s -> %s: %w", from, to, err)
	}

	return nil
}
