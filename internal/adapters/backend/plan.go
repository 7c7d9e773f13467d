package backend

import (
	"context"
	"delivery-map-client/internal/api/dto"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/platform/obs"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

// ComputePlan asks the solver for a delivery order. A non-success status is
// returned as data, not as an error; the caller decides how to surface it.
func (c *Client) ComputePlan(ctx context.Context) (_ domain.PlanResult, err error) {
	defer obs.Time(ctx, "backend.ComputePlan")(&err)

	// compute-plan has no side effects, so it may be retried like a read.
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, "/compute-plan", nil, nil)
	})
	if err != nil {
		return domain.PlanResult{}, fmt.Errorf("compute plan: %w", classify("ComputePlan", err))
	}
	defer resp.Body.Close()

	var pr dto.PlanResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return domain.PlanResult{}, domain.NewError(domain.KindDecode, "ComputePlan", fmt.Errorf("decode plan response: %w", err))
	}

	plan, err := toPlanResult(pr)
	if err != nil {
		return domain.PlanResult{}, domain.NewError(domain.KindDecode, "ComputePlan", err)
	}

	return plan, nil
}

func toPlanResult(pr dto.PlanResponse) (domain.PlanResult, error) {
	plan := domain.PlanResult{
		Status:  pr.Status,
		Message: pr.Message,
	}

	if !plan.Succeeded() {
		return plan, nil
	}

	plan.Sequence = make([]domain.Node, 0, len(pr.Sequence))
	for _, c := range pr.Sequence {
		plan.Sequence = append(plan.Sequence, toNode(c))
	}

	if len(pr.ArrivalTimes) != len(plan.Sequence) {
		return domain.PlanResult{}, fmt.Errorf(
			"arrival_times has %d entries for %d stops",
			len(pr.ArrivalTimes), len(plan.Sequence),
		)
	}

	// Entries are either "HH:MM" strings or minute offsets from the base time.
	times := make([]string, len(pr.ArrivalTimes))
	var minutes []int
	for i, raw := range pr.ArrivalTimes {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			times[i] = s
			continue
		}

		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return domain.PlanResult{}, fmt.Errorf("arrival_times[%d]: neither clock string nor number", i)
		}
		if minutes == nil {
			minutes = make([]int, len(pr.ArrivalTimes))
		}
		minutes[i] = int(math.Round(f))
	}
	plan.ArrivalTimes = times

	if minutes == nil && len(pr.ArrivalMinutes) == len(plan.Sequence) && len(pr.ArrivalMinutes) > 0 {
		minutes = make([]int, len(pr.ArrivalMinutes))
		for i, f := range pr.ArrivalMinutes {
			minutes[i] = int(math.Round(f))
		}
	}
	plan.ArrivalMinutes = minutes

	// Solver totals may be fractional; round to whole minutes for display.
	if pr.TotalTime != nil {
		plan.TotalTime = int(math.Round(*pr.TotalTime))
	}

	return plan, nil
}
