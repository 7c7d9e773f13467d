package editor

import (
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/services"
)

// Mode gates which clicks open a dialog.
type Mode int

const (
	ModeDelivery Mode = iota
	ModeEdge
)

func (m Mode) String() string {
	if m == ModeEdge {
		return "edge"
	}
	return "delivery"
}

// Dialog is the single open dialog. A nil Dialog means none is open.
// Implementations are values; the editor replaces them instead of mutating.
type Dialog interface {
	dialog()
}

// DeliveryDialog edits the time window of one location.
type DeliveryDialog struct {
	Node     domain.Node
	Earliest string
	Latest   string
	// Existing is set when the location already has a delivery.
	Existing bool
	Err      string
}

// EdgeDialog edits one directed edge.
type EdgeDialog struct {
	Edge    domain.Edge
	Weight  string
	Blocked bool
	Err     string
}

// ScheduleDialog shows the schedule of the current plan.
type ScheduleDialog struct {
	Schedule services.Schedule
}

type AboutDialog struct{}

// BaseTimeDialog edits the backend departure time.
type BaseTimeDialog struct {
	Clock string
	Err   string
}

func (DeliveryDialog) dialog() {}
func (EdgeDialog) dialog()     {}
func (ScheduleDialog) dialog() {}
func (AboutDialog) dialog()    {}
func (BaseTimeDialog) dialog() {}

// View is an immutable copy of the editor state for renderers.
type View struct {
	Mode     Mode
	Dialog   Dialog
	Snapshot domain.Snapshot
	Loaded   bool
	Start    domain.Node

	// Plan is nil until a compute succeeds, and again after a clear.
	Plan     *domain.PlanResult
	FullPath []domain.Node
	Order    map[domain.Node]int

	Notice string

	// Controls with a request in flight are disabled.
	Loading   bool
	Computing bool
	Mutating  bool
}

const AboutText = `Plan delivery routes with time windows.

Press d for delivery mode and select a node to add, edit or delete a stop.
Press e for edge mode and select an edge to change its travel time or block it.
Press p to compute a plan, s to reopen its schedule, c to clear every stop.
Press b to change the departure time, r to reload, ? for this help, q to quit.`
