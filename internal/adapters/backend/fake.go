package backend

import (
	"context"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/ports"
	"fmt"
	"slices"
	"sync"
)

// Fake is an in-memory ports.GraphBackend for tests and offline demos.
// It stores state the way the real backend does (minute offsets, toggling
// block-edge) but never computes paths or plans: both are configured.
type Fake struct {
	mu sync.Mutex

	nodes      []domain.Node
	edges      []domain.Edge
	deliveries []domain.Delivery
	baseTime   string

	plan  domain.PlanResult
	paths map[ports.SegmentKey][]domain.Node

	// failures maps an operation name (e.g. "AddDelivery") to the error it returns.
	failures map[string]error
	calls    []string
}

func NewFake(nodes []domain.Node, edges []domain.Edge) *Fake {
	return &Fake{
		nodes:    slices.Clone(nodes),
		edges:    slices.Clone(edges),
		baseTime: "08:00",
		paths:    make(map[ports.SegmentKey][]domain.Node),
		failures: make(map[string]error),
	}
}

// NewFakeGrid builds a width x height grid where every node links to its
// eight neighbours: weight 5 straight, 7 diagonal.
func NewFakeGrid(width, height int) *Fake {
	var nodes []domain.Node
	var edges []domain.Edge
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			from := domain.Node{X: x, Y: y}
			nodes = append(nodes, from)
			for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				w := 5.0
				if d[0] != 0 && d[1] != 0 {
					w = 7.0
				}
				edges = append(edges, domain.Edge{From: from, To: domain.Node{X: nx, Y: ny}, Weight: w})
			}
		}
	}
	return NewFake(nodes, edges)
}

func (f *Fake) SetPlan(plan domain.PlanResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plan = plan
}

func (f *Fake) SetPath(from, to domain.Node, path []domain.Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[ports.SegmentKey{From: from, To: to}] = slices.Clone(path)
}

func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Calls returns the operations invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount counts invocations of one operation.
func (f *Fake) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

func (f *Fake) enter(op string) error {
	f.calls = append(f.calls, op)
	return f.failures[op]
}

func (f *Fake) ListNodes(ctx context.Context) ([]domain.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListNodes"); err != nil {
		return nil, err
	}
	return slices.Clone(f.nodes), nil
}

func (f *Fake) ListEdges(ctx context.Context) ([]domain.Edge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListEdges"); err != nil {
		return nil, err
	}
	return slices.Clone(f.edges), nil
}

func (f *Fake) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListDeliveries"); err != nil {
		return nil, err
	}
	return slices.Clone(f.deliveries), nil
}

func (f *Fake) BaseTime(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("BaseTime"); err != nil {
		return "", err
	}
	return f.baseTime, nil
}

func (f *Fake) SetBaseTime(ctx context.Context, clock string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SetBaseTime"); err != nil {
		return err
	}
	if _, err := domain.ParseClock(clock); err != nil {
		return domain.NewError(domain.KindValidation, "SetBaseTime", err)
	}
	f.baseTime = clock
	return nil
}

func (f *Fake) AddDelivery(ctx context.Context, location domain.Node, earliest, latest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddDelivery"); err != nil {
		return err
	}

	base, err := domain.ParseClock(f.baseTime)
	if err != nil {
		return fmt.Errorf("fake add delivery: %w", err)
	}
	e, err := domain.ParseClock(earliest)
	if err != nil {
		return domain.NewError(domain.KindBackend, "AddDelivery", err)
	}
	l, err := domain.ParseClock(latest)
	if err != nil {
		return domain.NewError(domain.KindBackend, "AddDelivery", err)
	}

	f.deliveries = append(f.deliveries, domain.Delivery{Location: location, Earliest: e - base, Latest: l - base})
	return nil
}

func (f *Fake) RemoveDelivery(ctx context.Context, location domain.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("RemoveDelivery"); err != nil {
		return err
	}
	f.deliveries = slices.DeleteFunc(f.deliveries, func(d domain.Delivery) bool { return d.Location == location })
	return nil
}

func (f *Fake) ClearDeliveries(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ClearDeliveries"); err != nil {
		return err
	}
	f.deliveries = nil
	return nil
}

func (f *Fake) BlockEdge(ctx context.Context, from, to domain.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("BlockEdge"); err != nil {
		return err
	}
	for i := range f.edges {
		if f.edges[i].From == from && f.edges[i].To == to {
			f.edges[i].Blocked = !f.edges[i].Blocked
			return nil
		}
	}
	return domain.NewError(domain.KindBackend, "BlockEdge", fmt.Errorf("edge %s -> %s does not exist", from, to))
}

func (f *Fake) SetWeight(ctx context.Context, from, to domain.Node, weight float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SetWeight"); err != nil {
		return err
	}
	for i := range f.edges {
		if f.edges[i].From == from && f.edges[i].To == to {
			f.edges[i].Weight = weight
			f.edges[i].Blocked = false
			return nil
		}
	}
	return domain.NewError(domain.KindBackend, "SetWeight", fmt.Errorf("edge %s -> %s does not exist", from, to))
}

func (f *Fake) ComputePlan(ctx context.Context) (domain.PlanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ComputePlan"); err != nil {
		return domain.PlanResult{}, err
	}
	return f.plan, nil
}

func (f *Fake) ShortestPath(ctx context.Context, from, to domain.Node) ([]domain.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ShortestPath"); err != nil {
		return nil, err
	}
	p, ok := f.paths[ports.SegmentKey{From: from, To: to}]
	if !ok {
		return nil, fmt.Errorf("missing path %s -> %s", from, to)
	}
	return slices.Clone(p), nil
}

var _ ports.GraphBackend = (*Fake)(nil)
var _ ports.GraphBackend = (*Client)(nil)
