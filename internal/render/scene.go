package render

import (
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/services"
	"log"
	"strconv"
)

type NodeKind int

const (
	NodePlain NodeKind = iota
	NodeStart
	NodeDelivery
)

type NodeShape struct {
	Node   domain.Node
	At     Point
	Kind   NodeKind
	Label  string
	Cursor bool
}

// EdgeShape is one directed edge, already shifted off the centre line.
type EdgeShape struct {
	Edge     domain.Edge
	From     Point
	To       Point
	Mid      Point
	Label    string
	Selected bool
}

// Badge annotates a planned stop with its visit order and arrival time.
type Badge struct {
	Node    domain.Node
	At      Point
	Order   int
	Arrival string
}

// Scene is a surface-independent description of one frame.
type Scene struct {
	Mapper Mapper
	Nodes  []NodeShape
	Edges  []EdgeShape
	Route  []Point
	Badges []Badge
	// Caption is a one-line status shown under the graph.
	Caption string
}

type SceneInput struct {
	Nodes      []domain.Node
	Edges      []domain.Edge
	Deliveries []domain.Delivery
	Start      domain.Node
	// Plan is nil until a compute succeeds.
	Plan     *domain.PlanResult
	FullPath []domain.Node
	Order    map[domain.Node]int
	Mode     string
	BaseTime string

	Cursor       *domain.Node
	SelectedEdge *domain.EdgeKey

	Mapper Mapper
	// EdgeOffset separates A→B from B→A on the surface.
	EdgeOffset float64
}

func BuildScene(in SceneInput) Scene {
	m := in.Mapper
	if m.Validate() != nil {
		m = DefaultSVGMapper
	}

	s := Scene{Mapper: m, Caption: caption(in)}

	// Edges are drawn once per directed edge.
	seen := make(map[domain.EdgeKey]struct{}, len(in.Edges))
	for _, e := range in.Edges {
		if _, ok := seen[e.Key()]; ok {
			continue
		}
		seen[e.Key()] = struct{}{}

		from, to := m.EdgeEndpoints(e, in.EdgeOffset)
		s.Edges = append(s.Edges, EdgeShape{
			Edge:     e,
			From:     from,
			To:       to,
			Mid:      midpoint(from, to),
			Label:    strconv.FormatFloat(e.Weight, 'f', -1, 64),
			Selected: in.SelectedEdge != nil && *in.SelectedEdge == e.Key(),
		})
	}

	for _, p := range in.FullPath {
		s.Route = append(s.Route, m.ToRender(p))
	}

	deliveries := make(map[domain.Node]struct{}, len(in.Deliveries))
	for _, d := range in.Deliveries {
		deliveries[d.Location] = struct{}{}
	}

	for _, n := range in.Nodes {
		kind := NodePlain
		if n == in.Start {
			kind = NodeStart
		} else if _, ok := deliveries[n]; ok {
			kind = NodeDelivery
		}

		s.Nodes = append(s.Nodes, NodeShape{
			Node:   n,
			At:     m.ToRender(n),
			Kind:   kind,
			Label:  n.String(),
			Cursor: in.Cursor != nil && *in.Cursor == n,
		})
	}

	s.Badges = badges(in, m)

	return s
}

func badges(in SceneInput, m Mapper) []Badge {
	if in.Plan == nil || !in.Plan.Succeeded() {
		return nil
	}

	out := make([]Badge, 0, len(in.Plan.Sequence))
	for i, n := range in.Plan.Sequence {
		arrival := ""
		if i < len(in.Plan.ArrivalTimes) && in.Plan.ArrivalTimes[i] != "" {
			arrival = in.Plan.ArrivalTimes[i]
		} else if i < len(in.Plan.ArrivalMinutes) {
			clock, err := services.ToAbsoluteTime(in.Plan.ArrivalMinutes[i], in.BaseTime)
			if err != nil {
				log.Printf("op=render.badge node=%s err=%v", n.Key(), err)
			}
			arrival = clock
		}

		order := in.Order[n]
		if order == 0 {
			order = i + 1
		}

		out = append(out, Badge{Node: n, At: m.ToRender(n), Order: order, Arrival: arrival})
	}
	return out
}

func caption(in SceneInput) string {
	c := "mode: " + in.Mode
	if in.BaseTime != "" {
		c += "  depart: " + in.BaseTime
	}
	if in.Cursor != nil {
		c += "  at: " + in.Cursor.String()
	}
	return c
}
