package editor

import (
	"context"
	"delivery-map-client/internal/adapters/backend"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/services"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nd(x, y int) domain.Node { return domain.Node{X: x, Y: y} }

// newTestEditor returns an editor over a 3x3 grid with the first snapshot loaded.
func newTestEditor(t *testing.T) (*Editor, *backend.Fake) {
	t.Helper()

	f := backend.NewFakeGrid(3, 3)
	f.SetPath(nd(0, 0), nd(2, 0), []domain.Node{nd(0, 0), nd(1, 0), nd(2, 0)})
	f.SetPath(nd(2, 0), nd(2, 2), []domain.Node{nd(2, 0), nd(2, 1), nd(2, 2)})
	f.SetPlan(domain.PlanResult{
		Status:       domain.StatusSuccess,
		Sequence:     []domain.Node{nd(2, 0), nd(2, 2)},
		ArrivalTimes: []string{"08:10", "08:20"},
		TotalTime:    20,
	})

	plans := services.NewPlanService(f, services.NewPathAssembler(f, nil, 2), nd(0, 0))
	ed := New(f, plans)
	run(t, ed, ed.Init())
	require.True(t, ed.View().Loaded)

	return ed, f
}

// run executes effects synchronously, feeding completions back until none remain.
func run(t *testing.T, ed *Editor, effects []Effect) {
	t.Helper()
	for len(effects) > 0 {
		eff := effects[0]
		effects = append(effects[1:], ed.Dispatch(eff(context.Background()))...)
	}
}

func dispatch(t *testing.T, ed *Editor, ev Event) {
	t.Helper()
	run(t, ed, ed.Dispatch(ev))
}

func TestModeGating(t *testing.T) {
	ed, _ := newTestEditor(t)
	edge := domain.EdgeKey{From: nd(0, 0), To: nd(1, 0)}

	// delivery mode ignores edge clicks
	dispatch(t, ed, EdgeClicked{Edge: edge})
	assert.Nil(t, ed.View().Dialog)

	// edge mode ignores node clicks
	dispatch(t, ed, ModeSelected{Mode: ModeEdge})
	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	assert.Nil(t, ed.View().Dialog)

	dispatch(t, ed, EdgeClicked{Edge: edge})
	d, ok := ed.View().Dialog.(EdgeDialog)
	require.True(t, ok)
	assert.Equal(t, "5.00", d.Weight)
	assert.False(t, d.Blocked)
}

func TestDialogExclusivity(t *testing.T) {
	ed, _ := newTestEditor(t)

	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	first, ok := ed.View().Dialog.(DeliveryDialog)
	require.True(t, ok)

	dispatch(t, ed, NodeClicked{Node: nd(2, 2)})
	dispatch(t, ed, AboutRequested{})
	dispatch(t, ed, BaseTimeRequested{})
	assert.Equal(t, first, ed.View().Dialog)

	dispatch(t, ed, DialogClosed{})
	assert.Nil(t, ed.View().Dialog)

	dispatch(t, ed, AboutRequested{})
	assert.IsType(t, AboutDialog{}, ed.View().Dialog)
}

func TestDeliveryDialog_Prefill(t *testing.T) {
	ed, f := newTestEditor(t)
	require.NoError(t, f.AddDelivery(context.Background(), nd(1, 1), "09:15", "10:00"))
	dispatch(t, ed, ReloadRequested{})

	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	d := ed.View().Dialog.(DeliveryDialog)
	assert.True(t, d.Existing)
	assert.Equal(t, "09:15", d.Earliest)
	assert.Equal(t, "10:00", d.Latest)

	dispatch(t, ed, DialogClosed{})
	dispatch(t, ed, NodeClicked{Node: nd(2, 1)})
	d = ed.View().Dialog.(DeliveryDialog)
	assert.False(t, d.Existing)
	assert.Equal(t, domain.DefaultEarliest, d.Earliest)
	assert.Equal(t, domain.DefaultLatest, d.Latest)
}

func TestDeliverySubmit_InvalidWindowMakesNoCall(t *testing.T) {
	ed, f := newTestEditor(t)

	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	effects := ed.Dispatch(DeliverySubmitted{Earliest: "10:00", Latest: "09:00"})
	assert.Empty(t, effects)

	d := ed.View().Dialog.(DeliveryDialog)
	assert.NotEmpty(t, d.Err)
	assert.Equal(t, "10:00", d.Earliest)
	assert.Zero(t, f.CallCount("AddDelivery"))
}

func TestDeliverySubmit_SuccessClosesAndReloads(t *testing.T) {
	ed, f := newTestEditor(t)
	loads := f.CallCount("ListDeliveries")

	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	dispatch(t, ed, DeliverySubmitted{Earliest: "08:30", Latest: "09:30"})

	v := ed.View()
	assert.Nil(t, v.Dialog)
	assert.Equal(t, loads+1, f.CallCount("ListDeliveries"))
	assert.True(t, v.Snapshot.IsDelivery(nd(1, 1)))
	assert.False(t, v.Mutating)
}

func TestDeliverySubmit_FailureKeepsDialog(t *testing.T) {
	ed, f := newTestEditor(t)
	f.Fail("AddDelivery", domain.NewError(domain.KindBackend, "AddDelivery", errors.New("Invalid time window")))

	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	dispatch(t, ed, DeliverySubmitted{Earliest: "08:30", Latest: "09:30"})

	d, ok := ed.View().Dialog.(DeliveryDialog)
	require.True(t, ok)
	assert.Equal(t, "Invalid time window", d.Err)
	assert.False(t, ed.View().Snapshot.IsDelivery(nd(1, 1)))
}

func TestDeliveryDelete(t *testing.T) {
	ed, f := newTestEditor(t)
	require.NoError(t, f.AddDelivery(context.Background(), nd(1, 1), "08:30", "09:30"))
	dispatch(t, ed, ReloadRequested{})

	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	dispatch(t, ed, DeliveryDeleted{})

	assert.Nil(t, ed.View().Dialog)
	assert.False(t, ed.View().Snapshot.IsDelivery(nd(1, 1)))
}

func TestEdgeSubmit_InvalidWeightMakesNoCall(t *testing.T) {
	ed, f := newTestEditor(t)
	dispatch(t, ed, ModeSelected{Mode: ModeEdge})
	dispatch(t, ed, EdgeClicked{Edge: domain.EdgeKey{From: nd(0, 0), To: nd(1, 0)}})

	for _, w := range []string{"-1", "abc", "0", "", "NaN", "Inf"} {
		effects := ed.Dispatch(EdgeSubmitted{Weight: w})
		assert.Empty(t, effects, "weight %q", w)
		assert.NotEmpty(t, ed.View().Dialog.(EdgeDialog).Err, "weight %q", w)
	}
	assert.Zero(t, f.CallCount("SetWeight"))
	assert.Zero(t, f.CallCount("BlockEdge"))
}

func TestEdgeSubmit_SetWeightAndBlock(t *testing.T) {
	ed, f := newTestEditor(t)
	key := domain.EdgeKey{From: nd(0, 0), To: nd(1, 0)}
	dispatch(t, ed, ModeSelected{Mode: ModeEdge})

	dispatch(t, ed, EdgeClicked{Edge: key})
	dispatch(t, ed, EdgeSubmitted{Weight: "12.5"})
	e, _ := ed.View().Snapshot.Edge(key)
	assert.Equal(t, 12.5, e.Weight)
	assert.Nil(t, ed.View().Dialog)

	dispatch(t, ed, EdgeClicked{Edge: key})
	dispatch(t, ed, EdgeSubmitted{Weight: "12.50", Blocked: true})
	e, _ = ed.View().Snapshot.Edge(key)
	assert.True(t, e.Blocked)
	assert.Equal(t, 1, f.CallCount("BlockEdge"))

	// already blocked: submitting blocked again must not toggle it back
	dispatch(t, ed, EdgeClicked{Edge: key})
	dispatch(t, ed, EdgeSubmitted{Weight: "12.50", Blocked: true})
	e, _ = ed.View().Snapshot.Edge(key)
	assert.True(t, e.Blocked)
	assert.Equal(t, 1, f.CallCount("BlockEdge"))
	assert.Nil(t, ed.View().Dialog)

	// unblocking goes through set-weight
	dispatch(t, ed, EdgeClicked{Edge: key})
	dispatch(t, ed, EdgeSubmitted{Weight: "3", Blocked: false})
	e, _ = ed.View().Snapshot.Edge(key)
	assert.False(t, e.Blocked)
	assert.Equal(t, 3.0, e.Weight)
}

func TestComputePlan_OpensSchedule(t *testing.T) {
	ed, _ := newTestEditor(t)

	dispatch(t, ed, PlanRequested{})

	v := ed.View()
	require.NotNil(t, v.Plan)
	assert.Equal(t, map[domain.Node]int{nd(2, 0): 1, nd(2, 2): 2}, v.Order)
	assert.Len(t, v.FullPath, 5)

	d, ok := v.Dialog.(ScheduleDialog)
	require.True(t, ok)
	assert.Len(t, d.Schedule.Rows, 2)
	assert.Equal(t, "0h 20m", d.Schedule.Total.String())
}

func TestComputePlan_ReadyWhileDialogOpen(t *testing.T) {
	ed, _ := newTestEditor(t)

	effects := ed.Dispatch(PlanRequested{})
	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	run(t, ed, effects)

	v := ed.View()
	assert.IsType(t, DeliveryDialog{}, v.Dialog)
	assert.NotNil(t, v.Plan)
	assert.NotEmpty(t, v.Notice)

	dispatch(t, ed, DialogClosed{})
	dispatch(t, ed, ScheduleRequested{})
	assert.IsType(t, ScheduleDialog{}, ed.View().Dialog)
}

func TestComputePlan_Infeasible(t *testing.T) {
	ed, f := newTestEditor(t)
	f.SetPlan(domain.PlanResult{Status: "infeasible"})

	dispatch(t, ed, PlanRequested{})

	v := ed.View()
	assert.Nil(t, v.Plan)
	assert.Nil(t, v.Dialog)
	assert.Contains(t, v.Notice, services.NoFeasiblePlan)
	assert.Zero(t, f.CallCount("ShortestPath"))
}

func TestComputePlan_DoubleRequestIgnored(t *testing.T) {
	ed, f := newTestEditor(t)

	first := ed.Dispatch(PlanRequested{})
	second := ed.Dispatch(PlanRequested{})
	assert.Len(t, first, 1)
	assert.Empty(t, second)
	assert.True(t, ed.View().Computing)

	run(t, ed, first)
	assert.Equal(t, 1, f.CallCount("ComputePlan"))
	assert.False(t, ed.View().Computing)
}

func TestClear_ResetsPlanAndDropsInFlightCompute(t *testing.T) {
	ed, f := newTestEditor(t)
	require.NoError(t, f.AddDelivery(context.Background(), nd(2, 0), "08:30", "09:30"))
	dispatch(t, ed, PlanRequested{})
	dispatch(t, ed, DialogClosed{})
	require.NotNil(t, ed.View().Plan)

	pending := ed.Dispatch(PlanRequested{})
	dispatch(t, ed, ClearRequested{})

	v := ed.View()
	assert.Nil(t, v.Plan)
	assert.Empty(t, v.FullPath)
	assert.Empty(t, v.Snapshot.Deliveries)

	// the compute started before the clear completes late and is discarded
	run(t, ed, pending)
	assert.Nil(t, ed.View().Plan)
	assert.Nil(t, ed.View().Dialog)
}

func TestStaleSnapshotDiscarded(t *testing.T) {
	ed, f := newTestEditor(t)
	ctx := context.Background()

	older := ed.Dispatch(ReloadRequested{})[0]
	staleEvent := older(ctx)

	require.NoError(t, f.AddDelivery(ctx, nd(1, 1), "08:30", "09:30"))
	newer := ed.Dispatch(ReloadRequested{})[0]

	ed.Dispatch(newer(ctx))
	ed.Dispatch(staleEvent)

	assert.True(t, ed.View().Snapshot.IsDelivery(nd(1, 1)))
	assert.False(t, ed.View().Loading)
}

func TestReloadIdempotent(t *testing.T) {
	ed, _ := newTestEditor(t)
	before := ed.View().Snapshot

	dispatch(t, ed, ReloadRequested{})
	assert.True(t, before.Equal(ed.View().Snapshot))
}

func TestReloadFailureBecomesNotice(t *testing.T) {
	ed, f := newTestEditor(t)
	before := ed.View().Snapshot
	f.Fail("ListNodes", domain.NewError(domain.KindNetwork, "ListNodes", errors.New("connection refused")))

	dispatch(t, ed, ReloadRequested{})

	v := ed.View()
	assert.Contains(t, v.Notice, "connection refused")
	assert.True(t, before.Equal(v.Snapshot))

	dispatch(t, ed, NoticeDismissed{})
	assert.Empty(t, ed.View().Notice)
}

func TestBaseTimeDialog(t *testing.T) {
	ed, f := newTestEditor(t)

	dispatch(t, ed, BaseTimeRequested{})
	assert.Equal(t, "08:00", ed.View().Dialog.(BaseTimeDialog).Clock)

	assert.Empty(t, ed.Dispatch(BaseTimeSubmitted{Clock: "7am"}))
	assert.NotEmpty(t, ed.View().Dialog.(BaseTimeDialog).Err)

	dispatch(t, ed, BaseTimeSubmitted{Clock: "07:30"})
	assert.Nil(t, ed.View().Dialog)
	assert.Equal(t, "07:30", ed.View().Snapshot.BaseTime)
	assert.Equal(t, 1, f.CallCount("SetBaseTime"))
}

func TestSubscribe(t *testing.T) {
	ed, _ := newTestEditor(t)

	var views []View
	unsubscribe := ed.Subscribe(func(v View) { views = append(views, v) })

	ed.Dispatch(ModeSelected{Mode: ModeEdge})
	require.Len(t, views, 1)
	assert.Equal(t, ModeEdge, views[0].Mode)

	unsubscribe()
	ed.Dispatch(ModeSelected{Mode: ModeDelivery})
	assert.Len(t, views, 1)
}

func TestViewIsACopy(t *testing.T) {
	ed, _ := newTestEditor(t)

	v := ed.View()
	v.Snapshot.Nodes[0] = nd(99, 99)

	assert.NotEqual(t, nd(99, 99), ed.View().Snapshot.Nodes[0])
}

func TestMutationSuccess_LeavesOtherFormOpen(t *testing.T) {
	ed, _ := newTestEditor(t)
	edge := domain.EdgeKey{From: nd(0, 0), To: nd(1, 0)}

	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	held := ed.Dispatch(DeliverySubmitted{Earliest: "08:30", Latest: "09:30"})
	require.Len(t, held, 1)

	dispatch(t, ed, DialogClosed{})
	dispatch(t, ed, ModeSelected{Mode: ModeEdge})
	dispatch(t, ed, EdgeClicked{Edge: edge})
	run(t, ed, held)

	v := ed.View()
	d, ok := v.Dialog.(EdgeDialog)
	require.True(t, ok)
	assert.Equal(t, edge, d.Edge.Key())
	assert.Empty(t, d.Err)
	assert.True(t, v.Snapshot.IsDelivery(nd(1, 1)))
	assert.False(t, v.Mutating)
}

func TestMutationFailure_GoesToNoticeWhenFormChanged(t *testing.T) {
	ed, f := newTestEditor(t)
	f.Fail("AddDelivery", domain.NewError(domain.KindBackend, "AddDelivery", errors.New("Invalid time window")))

	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	held := ed.Dispatch(DeliverySubmitted{Earliest: "08:30", Latest: "09:30"})

	dispatch(t, ed, DialogClosed{})
	dispatch(t, ed, NodeClicked{Node: nd(2, 2)})
	run(t, ed, held)

	v := ed.View()
	d, ok := v.Dialog.(DeliveryDialog)
	require.True(t, ok)
	assert.Equal(t, nd(2, 2), d.Node)
	assert.Empty(t, d.Err)
	assert.Equal(t, "Invalid time window", v.Notice)
}

func TestMutationFailure_SameFormReopened(t *testing.T) {
	ed, f := newTestEditor(t)
	f.Fail("AddDelivery", domain.NewError(domain.KindBackend, "AddDelivery", errors.New("Invalid time window")))

	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	held := ed.Dispatch(DeliverySubmitted{Earliest: "08:30", Latest: "09:30"})

	dispatch(t, ed, DialogClosed{})
	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	run(t, ed, held)

	d, ok := ed.View().Dialog.(DeliveryDialog)
	require.True(t, ok)
	assert.Equal(t, "Invalid time window", d.Err)
	assert.Empty(t, ed.View().Notice)
}

func TestEdgeMutation_CompletesAfterFormClosed(t *testing.T) {
	ed, f := newTestEditor(t)
	edge := domain.EdgeKey{From: nd(0, 0), To: nd(1, 0)}

	dispatch(t, ed, ModeSelected{Mode: ModeEdge})
	dispatch(t, ed, EdgeClicked{Edge: edge})
	held := ed.Dispatch(EdgeSubmitted{Weight: "9"})

	dispatch(t, ed, DialogClosed{})
	dispatch(t, ed, ModeSelected{Mode: ModeDelivery})
	dispatch(t, ed, NodeClicked{Node: nd(2, 1)})
	run(t, ed, held)

	v := ed.View()
	d, ok := v.Dialog.(DeliveryDialog)
	require.True(t, ok)
	assert.Equal(t, nd(2, 1), d.Node)
	e, _ := v.Snapshot.Edge(edge)
	assert.Equal(t, 9.0, e.Weight)

	// a failure for the edge does not land on the delivery form either
	f.Fail("SetWeight", domain.NewError(domain.KindBackend, "SetWeight", errors.New("edge not found")))
	dispatch(t, ed, DialogClosed{})
	dispatch(t, ed, ModeSelected{Mode: ModeEdge})
	dispatch(t, ed, EdgeClicked{Edge: edge})
	held = ed.Dispatch(EdgeSubmitted{Weight: "4"})
	dispatch(t, ed, DialogClosed{})
	dispatch(t, ed, AboutRequested{})
	run(t, ed, held)

	assert.IsType(t, AboutDialog{}, ed.View().Dialog)
	assert.Equal(t, "edge not found", ed.View().Notice)
}

func TestBaseTimeMutation_CompletesAfterFormClosed(t *testing.T) {
	ed, f := newTestEditor(t)
	f.Fail("SetBaseTime", domain.NewError(domain.KindBackend, "SetBaseTime", errors.New("read only")))

	dispatch(t, ed, BaseTimeRequested{})
	held := ed.Dispatch(BaseTimeSubmitted{Clock: "07:15"})
	dispatch(t, ed, DialogClosed{})
	run(t, ed, held)

	v := ed.View()
	assert.Nil(t, v.Dialog)
	assert.Equal(t, "read only", v.Notice)
	assert.False(t, v.Mutating)

	f.Fail("SetBaseTime", nil)
	dispatch(t, ed, BaseTimeRequested{})
	held = ed.Dispatch(BaseTimeSubmitted{Clock: "07:15"})
	dispatch(t, ed, DialogClosed{})
	dispatch(t, ed, NodeClicked{Node: nd(1, 1)})
	run(t, ed, held)

	assert.IsType(t, DeliveryDialog{}, ed.View().Dialog)
	assert.Equal(t, "07:15", ed.View().Snapshot.BaseTime)
}

func TestComputePlan_ReadyWhileEdgeFormOpen(t *testing.T) {
	ed, _ := newTestEditor(t)
	edge := domain.EdgeKey{From: nd(0, 0), To: nd(1, 0)}

	held := ed.Dispatch(PlanRequested{})
	dispatch(t, ed, ModeSelected{Mode: ModeEdge})
	dispatch(t, ed, EdgeClicked{Edge: edge})
	run(t, ed, held)

	v := ed.View()
	d, ok := v.Dialog.(EdgeDialog)
	require.True(t, ok)
	assert.Equal(t, edge, d.Edge.Key())
	assert.NotNil(t, v.Plan)
	assert.Equal(t, "plan ready: press s to view the schedule", v.Notice)
}
