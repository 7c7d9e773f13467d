package services

import (
	"context"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/obs"
	"delivery-map-client/internal/ports"
	"errors"
	"fmt"
)

// NoFeasiblePlan is the notice shown when the solver reports a non-success status.
const NoFeasiblePlan = "no feasible plan found"

// PlanOutcome is everything the editor stores after a successful compute.
type PlanOutcome struct {
	Plan     domain.PlanResult
	FullPath []domain.Node
	// 1-based visit order per stop.
	Order map[domain.Node]int
}

// PlanService runs the compute-plan flow: ask the solver, derive the stop
// order, then assemble the node-by-node route from Start through every stop.
type PlanService struct {
	Planner   ports.Planner
	Assembler *PathAssembler
	Start     domain.Node
}

func NewPlanService(planner ports.Planner, assembler *PathAssembler, start domain.Node) *PlanService {
	return &PlanService{Planner: planner, Assembler: assembler, Start: start}
}

// ComputePlan returns a KindInfeasible error when the solver found no plan and
// a KindPartial error when no route segment could be assembled.
// version scopes cached segments; pass "" to bypass the cache.
func (s *PlanService) ComputePlan(ctx context.Context, version string) (_ PlanOutcome, err error) {
	defer obs.Time(ctx, "services.ComputePlan")(&err)

	if s.Planner == nil || s.Assembler == nil {
		return PlanOutcome{}, errors.New("compute plan: planner and assembler are required")
	}

	plan, err := s.Planner.ComputePlan(ctx)
	if err != nil {
		return PlanOutcome{}, fmt.Errorf("compute plan: %w", err)
	}

	if !plan.Succeeded() {
		reason := errors.New(NoFeasiblePlan)
		if plan.Message != "" {
			reason = fmt.Errorf("%s: %s", NoFeasiblePlan, plan.Message)
		}
		return PlanOutcome{}, domain.NewError(domain.KindInfeasible, "ComputePlan", reason)
	}

	// Order is derived only from a successful plan.
	order := plan.Order()

	fullPath := s.Assembler.AssembleFullPathAt(ctx, version, plan.Waypoints(s.Start))
	if len(fullPath) == 0 {
		return PlanOutcome{}, domain.NewError(domain.KindPartial, "ComputePlan",
			errors.New("could not assemble a route for the plan"))
	}

	return PlanOutcome{Plan: plan, FullPath: fullPath, Order: order}, nil
}
