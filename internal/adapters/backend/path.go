package backend

import (
	"context"
	"delivery-map-client/internal/api/dto"
	"delivery-map-client/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

var errEmptyPath = errors.New("backend returned an empty path")

// ShortestPath fetches the backend's point-to-point path. An empty path is
// reported as a KindDecode error so callers can skip the segment.
func (c *Client) ShortestPath(ctx context.Context, from, to domain.Node) ([]domain.Node, error) {
	q := url.Values{}
	q.Set("from", from.Key())
	q.Set("to", to.Key())

	var res dto.PathResponse
	if err := c.getJSON(ctx, "ShortestPath", "/shortest-path", q, &res); err != nil {
		return nil, fmt.Errorf("shortest path %s -> %s: %w", from, to, err)
	}

	if len(res.Path) == 0 {
		return nil, domain.NewError(domain.KindDecode, "ShortestPath", fmt.Errorf("%s -> %s: %w", from, to, errEmptyPath))
	}

	path := make([]domain.Node, 0, len(res.Path))
	for i, raw := range res.Path {
		var coords []int
		if err := json.Unmarshal(raw, &coords); err != nil {
			return nil, domain.NewError(domain.KindDecode, "ShortestPath", fmt.Errorf("path[%d]: %w", i, err))
		}

		n, err := domain.NodeFromList(coords)
		if err != nil {
			return nil, domain.NewError(domain.KindDecode, "ShortestPath", fmt.Errorf("path[%d]: %w", i, err))
		}
		path = append(path, n)
	}

	return path, nil
}
