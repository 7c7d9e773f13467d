package editor

import (
	"context"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/obs"
	"delivery-map-client/internal/ports"
	"delivery-map-client/internal/services"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
)

type resource int

const (
	resSnapshot resource = iota
	resPlan
	resMutation
)

// Editor owns the interactive state: mode, the open dialog, the loaded
// snapshot and the current plan. Dispatch must be called from a single
// goroutine; effects it returns may run anywhere and report back through
// Dispatch.
type Editor struct {
	backend ports.GraphBackend
	plans   *services.PlanService
	start   domain.Node

	mode     Mode
	dialog   Dialog
	snapshot domain.Snapshot
	loaded   bool

	plan     *domain.PlanResult
	fullPath []domain.Node
	order    map[domain.Node]int

	notice string

	// Monotonic per resource; a completion carrying an older value is stale.
	gens     map[resource]uint64
	inFlight map[resource]bool

	subscribers map[int]func(View)
	nextSub     int
}

func New(backend ports.GraphBackend, plans *services.PlanService) *Editor {
	return &Editor{
		backend:     backend,
		plans:       plans,
		start:       plans.Start,
		gens:        make(map[resource]uint64),
		inFlight:    make(map[resource]bool),
		subscribers: make(map[int]func(View)),
	}
}

// Init returns the effect loading the first snapshot.
func (e *Editor) Init() []Effect {
	return []Effect{e.reload()}
}

// Subscribe registers fn to receive a View after every dispatched event.
// The returned func unsubscribes.
func (e *Editor) Subscribe(fn func(View)) func() {
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = fn
	return func() { delete(e.subscribers, id) }
}

func (e *Editor) View() View {
	v := View{
		Mode:      e.mode,
		Dialog:    e.dialog,
		Snapshot:  copySnapshot(e.snapshot),
		Loaded:    e.loaded,
		Start:     e.start,
		FullPath:  slices.Clone(e.fullPath),
		Order:     maps.Clone(e.order),
		Notice:    e.notice,
		Loading:   e.inFlight[resSnapshot],
		Computing: e.inFlight[resPlan],
		Mutating:  e.inFlight[resMutation],
	}
	if e.plan != nil {
		p := copyPlan(*e.plan)
		v.Plan = &p
	}
	return v
}

// Dispatch applies ev and returns the effects it started.
func (e *Editor) Dispatch(ev Event) []Effect {
	effects := e.apply(ev)

	v := e.View()
	for _, id := range slices.Sorted(maps.Keys(e.subscribers)) {
		e.subscribers[id](v)
	}

	return effects
}

func (e *Editor) apply(ev Event) []Effect {
	switch ev := ev.(type) {
	case ModeSelected:
		e.mode = ev.Mode
	case NodeClicked:
		e.openDeliveryDialog(ev.Node)
	case EdgeClicked:
		e.openEdgeDialog(ev.Edge)
	case DeliverySubmitted:
		return e.submitDelivery(ev)
	case DeliveryDeleted:
		return e.deleteDelivery()
	case EdgeSubmitted:
		return e.submitEdge(ev)
	case BaseTimeRequested:
		if e.dialog == nil {
			e.dialog = BaseTimeDialog{Clock: e.snapshot.BaseTime}
		}
	case BaseTimeSubmitted:
		return e.submitBaseTime(ev)
	case PlanRequested:
		return e.computePlan()
	case ScheduleRequested:
		e.openSchedule()
	case ClearRequested:
		return e.clear()
	case ReloadRequested:
		return []Effect{e.reload()}
	case AboutRequested:
		if e.dialog == nil {
			e.dialog = AboutDialog{}
		}
	case DialogClosed:
		e.dialog = nil
	case NoticeDismissed:
		e.notice = ""
	case SnapshotLoaded:
		e.snapshotLoaded(ev)
	case MutationCompleted:
		return e.mutationCompleted(ev)
	case PlanComputed:
		e.planComputed(ev)
	default:
		log.Printf("op=editor.dispatch err=unknown event %T", ev)
	}
	return nil
}

func (e *Editor) openDeliveryDialog(n domain.Node) {
	if e.mode != ModeDelivery || e.dialog != nil {
		return
	}

	d := DeliveryDialog{Node: n, Earliest: domain.DefaultEarliest, Latest: domain.DefaultLatest}
	if existing, ok := e.snapshot.DeliveryAt(n); ok {
		d.Existing = true
		earliest, errE := services.ToAbsoluteTime(existing.Earliest, e.snapshot.BaseTime)
		latest, errL := services.ToAbsoluteTime(existing.Latest, e.snapshot.BaseTime)
		if errE == nil && errL == nil {
			d.Earliest, d.Latest = earliest, latest
		}
	}
	e.dialog = d
}

func (e *Editor) openEdgeDialog(k domain.EdgeKey) {
	if e.mode != ModeEdge || e.dialog != nil {
		return
	}

	edge, ok := e.snapshot.Edge(k)
	if !ok {
		return
	}
	e.dialog = EdgeDialog{Edge: edge, Weight: FormatWeight(edge.Weight), Blocked: edge.Blocked}
}

func (e *Editor) submitDelivery(ev DeliverySubmitted) []Effect {
	d, ok := e.dialog.(DeliveryDialog)
	if !ok || e.inFlight[resMutation] {
		return nil
	}

	d.Earliest, d.Latest = ev.Earliest, ev.Latest
	if err := services.ValidateWindow(ev.Earliest, ev.Latest); err != nil {
		d.Err = userMessage(err)
		e.dialog = d
		return nil
	}
	d.Err = ""
	e.dialog = d

	node := d.Node
	return []Effect{e.mutate(OpAddDelivery, targetOf(d), func(ctx context.Context) error {
		return e.backend.AddDelivery(ctx, node, ev.Earliest, ev.Latest)
	})}
}

func (e *Editor) deleteDelivery() []Effect {
	d, ok := e.dialog.(DeliveryDialog)
	if !ok || e.inFlight[resMutation] {
		return nil
	}

	node := d.Node
	return []Effect{e.mutate(OpRemoveDelivery, targetOf(d), func(ctx context.Context) error {
		return e.backend.RemoveDelivery(ctx, node)
	})}
}

func (e *Editor) submitEdge(ev EdgeSubmitted) []Effect {
	d, ok := e.dialog.(EdgeDialog)
	if !ok || e.inFlight[resMutation] {
		return nil
	}

	d.Weight, d.Blocked = ev.Weight, ev.Blocked
	weight, err := ParseWeight(ev.Weight)
	if err != nil {
		d.Err = userMessage(err)
		e.dialog = d
		return nil
	}
	d.Err = ""
	e.dialog = d

	from, to := d.Edge.From, d.Edge.To
	if ev.Blocked {
		// block-edge toggles on the backend; sending it again would unblock.
		if d.Edge.Blocked {
			e.dialog = nil
			return nil
		}
		return []Effect{e.mutate(OpBlockEdge, targetOf(d), func(ctx context.Context) error {
			return e.backend.BlockEdge(ctx, from, to)
		})}
	}

	return []Effect{e.mutate(OpSetWeight, targetOf(d), func(ctx context.Context) error {
		return e.backend.SetWeight(ctx, from, to, weight)
	})}
}

func (e *Editor) submitBaseTime(ev BaseTimeSubmitted) []Effect {
	d, ok := e.dialog.(BaseTimeDialog)
	if !ok || e.inFlight[resMutation] {
		return nil
	}

	d.Clock = ev.Clock
	if _, err := domain.ParseClock(ev.Clock); err != nil {
		d.Err = "departure time must be HH:MM"
		e.dialog = d
		return nil
	}
	d.Err = ""
	e.dialog = d

	clock := ev.Clock
	return []Effect{e.mutate(OpSetBaseTime, targetOf(d), func(ctx context.Context) error {
		return e.backend.SetBaseTime(ctx, clock)
	})}
}

func (e *Editor) clear() []Effect {
	if e.inFlight[resMutation] {
		return nil
	}
	return []Effect{e.mutate(OpClear, "", e.backend.ClearDeliveries)}
}

func (e *Editor) mutate(op Op, target string, call func(ctx context.Context) error) Effect {
	e.inFlight[resMutation] = true

	return func(ctx context.Context) Event {
		ctx = obs.WithRequestID(ctx)
		return MutationCompleted{Op: op, Target: target, Err: call(ctx)}
	}
}

// mutationCompleted only touches the open form when it is the one that sent
// the request; the user may have moved on while it was in flight.
func (e *Editor) mutationCompleted(ev MutationCompleted) []Effect {
	e.inFlight[resMutation] = false
	own := ev.Target != "" && targetOf(e.dialog) == ev.Target

	if ev.Err != nil {
		msg := userMessage(ev.Err)
		if !own {
			e.notice = msg
			return nil
		}
		switch d := e.dialog.(type) {
		case DeliveryDialog:
			d.Err = msg
			e.dialog = d
		case EdgeDialog:
			d.Err = msg
			e.dialog = d
		case BaseTimeDialog:
			d.Err = msg
			e.dialog = d
		}
		return nil
	}

	if own {
		e.dialog = nil
	}

	if ev.Op == OpClear {
		e.resetPlan()
	}

	return []Effect{e.reload()}
}

// targetOf names what a form edits: "delivery:x,y", "edge:x,y>x,y" or "base-time".
// Other dialogs have no target.
func targetOf(d Dialog) string {
	switch d := d.(type) {
	case DeliveryDialog:
		return "delivery:" + d.Node.Key()
	case EdgeDialog:
		return "edge:" + d.Edge.From.Key() + ">" + d.Edge.To.Key()
	case BaseTimeDialog:
		return "base-time"
	}
	return ""
}

// resetPlan drops the plan and invalidates any compute still in flight.
func (e *Editor) resetPlan() {
	e.plan = nil
	e.fullPath = nil
	e.order = nil
	e.gens[resPlan]++
	e.inFlight[resPlan] = false
	if _, ok := e.dialog.(ScheduleDialog); ok {
		e.dialog = nil
	}
}

func (e *Editor) reload() Effect {
	e.gens[resSnapshot]++
	e.inFlight[resSnapshot] = true
	gen := e.gens[resSnapshot]

	return func(ctx context.Context) Event {
		ctx = obs.WithRequestID(ctx)
		s, err := services.LoadSnapshot(ctx, e.backend)
		return SnapshotLoaded{Gen: gen, Snapshot: s, Err: err}
	}
}

func (e *Editor) snapshotLoaded(ev SnapshotLoaded) {
	if ev.Gen != e.gens[resSnapshot] {
		return
	}
	e.inFlight[resSnapshot] = false

	if ev.Err != nil {
		e.notice = userMessage(ev.Err)
		return
	}
	e.snapshot = ev.Snapshot
	e.loaded = true
}

func (e *Editor) computePlan() []Effect {
	if e.inFlight[resPlan] {
		return nil
	}

	e.gens[resPlan]++
	e.inFlight[resPlan] = true
	gen := e.gens[resPlan]

	versioned := e.plans.Assembler != nil && e.plans.Assembler.Cache != nil

	return []Effect{func(ctx context.Context) Event {
		ctx = obs.WithRequestID(ctx)

		version := ""
		if versioned {
			// Version segments by the edges the backend holds right now, not
			// by the last snapshot, which may predate a mutation.
			edges, err := e.backend.ListEdges(ctx)
			if err != nil {
				log.Printf("req_id=%s op=editor.plan.version err=%v", obs.RequestID(ctx), err)
			} else {
				version = fmt.Sprintf("%016x", domain.FingerprintEdges(edges))
			}
		}

		out, err := e.plans.ComputePlan(ctx, version)
		return PlanComputed{Gen: gen, Outcome: out, Err: err}
	}}
}

func (e *Editor) planComputed(ev PlanComputed) {
	if ev.Gen != e.gens[resPlan] {
		return
	}
	e.inFlight[resPlan] = false

	if ev.Err != nil {
		e.notice = userMessage(ev.Err)
		return
	}

	plan := ev.Outcome.Plan
	e.plan = &plan
	e.fullPath = ev.Outcome.FullPath
	e.order = ev.Outcome.Order

	switch e.dialog.(type) {
	case nil, AboutDialog:
		e.dialog = nil
		e.openSchedule()
	default:
		e.notice = "plan ready: press s to view the schedule"
	}
}

func (e *Editor) openSchedule() {
	if e.plan == nil || e.dialog != nil {
		return
	}

	s, err := services.DeriveSchedule(*e.plan, e.snapshot.Deliveries, e.snapshot.BaseTime, e.start)
	if err != nil {
		e.notice = userMessage(err)
		return
	}
	e.dialog = ScheduleDialog{Schedule: s}
}

// userMessage renders an error for a notice or an inline form error.
func userMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Err != nil {
		switch de.Kind {
		case domain.KindNetwork:
			return "backend unreachable: " + de.Err.Error()
		case domain.KindValidation, domain.KindInfeasible, domain.KindBackend:
			return de.Err.Error()
		}
	}
	return err.Error()
}

func copySnapshot(s domain.Snapshot) domain.Snapshot {
	return domain.Snapshot{
		Nodes:      slices.Clone(s.Nodes),
		Edges:      slices.Clone(s.Edges),
		Deliveries: slices.Clone(s.Deliveries),
		BaseTime:   s.BaseTime,
	}
}

func copyPlan(p domain.PlanResult) domain.PlanResult {
	p.Sequence = slices.Clone(p.Sequence)
	p.ArrivalTimes = slices.Clone(p.ArrivalTimes)
	p.ArrivalMinutes = slices.Clone(p.ArrivalMinutes)
	return p
}
