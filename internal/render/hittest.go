package render

import (
	"delivery-map-client/internal/domain"
	"math"
)

type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetNode
	TargetEdge
)

// Target is what a pointer position resolves to.
type Target struct {
	Kind TargetKind
	Node domain.Node
	Edge domain.Edge
}

// HitTest resolves p to the nearest node within tolerance, falling back to the
// nearest edge within tolerance. Nodes win over edges so a click on a node is
// never read as a click on one of its edges. It does not look at the editor
// mode; gating clicks is the editor's job.
func (s Scene) HitTest(p Point, tolerance float64) Target {
	best := math.Inf(1)
	var hit Target

	for _, n := range s.Nodes {
		if d := distance(p, n.At); d <= tolerance && d < best {
			best = d
			hit = Target{Kind: TargetNode, Node: n.Node}
		}
	}
	if hit.Kind == TargetNode {
		return hit
	}

	for _, e := range s.Edges {
		if d := distanceToSegment(p, e.From, e.To); d <= tolerance && d < best {
			best = d
			hit = Target{Kind: TargetEdge, Edge: e.Edge}
		}
	}

	return hit
}
