package domain

import (
	"cmp"
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Snapshot is the canonical graph state loaded by one reload.
// It is replaced wholesale, never patched.
type Snapshot struct {
	Nodes      []Node
	Edges      []Edge
	Deliveries []Delivery
	BaseTime   string
}

// NewSnapshot keeps the last delivery per location so at most one delivery
// exists for any node, and preserves first-seen order otherwise.
func NewSnapshot(nodes []Node, edges []Edge, deliveries []Delivery, baseTime string) Snapshot {
	last := make(map[Node]int, len(deliveries))
	for i, d := range deliveries {
		last[d.Location] = i
	}

	uniq := make([]Delivery, 0, len(last))
	seen := make(map[Node]struct{}, len(last))
	for _, d := range deliveries {
		if _, ok := seen[d.Location]; ok {
			continue
		}
		seen[d.Location] = struct{}{}
		uniq = append(uniq, deliveries[last[d.Location]])
	}

	return Snapshot{
		Nodes:      nodes,
		Edges:      edges,
		Deliveries: uniq,
		BaseTime:   baseTime,
	}
}

func (s Snapshot) DeliveryAt(n Node) (Delivery, bool) {
	for _, d := range s.Deliveries {
		if d.Location == n {
			return d, true
		}
	}
	return Delivery{}, false
}

func (s Snapshot) IsDelivery(n Node) bool {
	_, ok := s.DeliveryAt(n)
	return ok
}

func (s Snapshot) HasNode(n Node) bool {
	return slices.Contains(s.Nodes, n)
}

func (s Snapshot) Edge(k EdgeKey) (Edge, bool) {
	for _, e := range s.Edges {
		if e.Key() == k {
			return e, true
		}
	}
	return Edge{}, false
}

// Outgoing returns the edges leaving n in load order.
func (s Snapshot) Outgoing(n Node) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.From == n {
			out = append(out, e)
		}
	}
	return out
}

// Equal reports whether two snapshots describe the same graph state.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.BaseTime == o.BaseTime &&
		slices.Equal(s.Nodes, o.Nodes) &&
		slices.Equal(s.Edges, o.Edges) &&
		slices.Equal(s.Deliveries, o.Deliveries)
}

// Fingerprint hashes the edge set. Any weight or blocked change yields a new
// value, so it versions shortest-path segments cached for this graph.
func (s Snapshot) Fingerprint() uint64 {
	return FingerprintEdges(s.Edges)
}

// FingerprintEdges is independent of edge order.
func FingerprintEdges(edges []Edge) uint64 {
	sorted := slices.Clone(edges)
	slices.SortFunc(sorted, compareEdges)

	h := xxhash.New()
	var buf [8]byte
	for _, e := range sorted {
		for _, v := range []int{e.From.X, e.From.Y, e.To.X, e.To.Y} {
			binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
			_, _ = h.Write(buf[:])
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(e.Weight))
		_, _ = h.Write(buf[:])
		if e.Blocked {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

func compareEdges(a, b Edge) int {
	return cmp.Or(
		cmp.Compare(a.From.X, b.From.X),
		cmp.Compare(a.From.Y, b.From.Y),
		cmp.Compare(a.To.X, b.To.X),
		cmp.Compare(a.To.Y, b.To.Y),
	)
}
