package cache

import (
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/ports"
	"encoding/json"
	"fmt"
	"strings"
)

// segmentID is the storage key of a segment: "x,y>x,y".
func segmentID(k ports.SegmentKey) string {
	return k.From.Key() + ">" + k.To.Key()
}

func parseSegmentID(id string) (ports.SegmentKey, error) {
	from, to, ok := strings.Cut(id, ">")
	if !ok {
		return ports.SegmentKey{}, fmt.Errorf("segment id %q: missing separator", id)
	}

	f, err := domain.ParseNode(from)
	if err != nil {
		return ports.SegmentKey{}, fmt.Errorf("segment id %q: %w", id, err)
	}
	t, err := domain.ParseNode(to)
	if err != nil {
		return ports.SegmentKey{}, fmt.Errorf("segment id %q: %w", id, err)
	}

	return ports.SegmentKey{From: f, To: t}, nil
}

func encodePath(path []domain.Node) (string, error) {
	coords := make([][2]int, 0, len(path))
	for _, n := range path {
		coords = append(coords, [2]int{n.X, n.Y})
	}

	b, err := json.Marshal(coords)
	if err != nil {
		return "", fmt.Errorf("encode path: %w", err)
	}
	return string(b), nil
}

func decodePath(raw string) ([]domain.Node, error) {
	var coords [][2]int
	if err := json.Unmarshal([]byte(raw), &coords); err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("decode path: empty")
	}

	path := make([]domain.Node, 0, len(coords))
	for _, c := range coords {
		path = append(path, domain.Node{X: c[0], Y: c[1]})
	}
	return path, nil
}

// uniqueIDs drops duplicate keys, keeping first-seen order.
func uniqueIDs(keys []ports.SegmentKey) []string {
	seen := make(map[ports.SegmentKey]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, segmentID(k))
	}
	return out
}
