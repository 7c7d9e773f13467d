package editor

import (
	"context"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/services"
)

// Event is a user intent or the completion of an effect.
type Event interface {
	event()
}

// Effect performs one backend call off the event loop and reports back with
// a completion event.
type Effect func(ctx context.Context) Event

type (
	NodeClicked struct{ Node domain.Node }
	EdgeClicked struct{ Edge domain.EdgeKey }
	ModeSelected struct{ Mode Mode }

	DeliverySubmitted struct{ Earliest, Latest string }
	DeliveryDeleted   struct{}
	EdgeSubmitted     struct {
		Weight  string
		Blocked bool
	}

	PlanRequested     struct{}
	ScheduleRequested struct{}
	ClearRequested    struct{}
	ReloadRequested   struct{}
	AboutRequested    struct{}
	DialogClosed      struct{}
	NoticeDismissed   struct{}

	BaseTimeRequested struct{}
	BaseTimeSubmitted struct{ Clock string }
)

// Op names the mutation a MutationCompleted reports on.
type Op string

const (
	OpAddDelivery    Op = "add-delivery"
	OpRemoveDelivery Op = "remove-delivery"
	OpClear          Op = "clear-deliveries"
	OpBlockEdge      Op = "block-edge"
	OpSetWeight      Op = "set-weight"
	OpSetBaseTime    Op = "set-base-time"
)

type (
	SnapshotLoaded struct {
		Gen      uint64
		Snapshot domain.Snapshot
		Err      error
	}
	MutationCompleted struct {
		Op Op
		// Target identifies the form that sent the mutation; empty for clear.
		Target string
		Err    error
	}
	PlanComputed struct {
		Gen     uint64
		Outcome services.PlanOutcome
		Err     error
	}
)

func (NodeClicked) event()       {}
func (EdgeClicked) event()       {}
func (ModeSelected) event()      {}
func (DeliverySubmitted) event() {}
func (DeliveryDeleted) event()   {}
func (EdgeSubmitted) event()     {}
func (PlanRequested) event()     {}
func (ScheduleRequested) event() {}
func (ClearRequested) event()    {}
func (ReloadRequested) event()   {}
func (AboutRequested) event()    {}
func (DialogClosed) event()      {}
func (NoticeDismissed) event()   {}
func (BaseTimeRequested) event() {}
func (BaseTimeSubmitted) event() {}
func (SnapshotLoaded) event()    {}
func (MutationCompleted) event() {}
func (PlanComputed) event()      {}
