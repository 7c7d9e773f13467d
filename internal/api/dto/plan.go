package dto

import "encoding/json"

// PlanResponse mirrors POST /compute-plan. ArrivalTimes is kept raw because
// some backend revisions send clock strings and others minute offsets.
type PlanResponse struct {
	Status         string            `json:"status"`
	Message        string            `json:"message"`
	Sequence       []Coord           `json:"sequence"`
	ArrivalTimes   []json.RawMessage `json:"arrival_times"`
	ArrivalMinutes []float64         `json:"arrival_minutes"`
	TotalTime      *float64          `json:"total_time"`
}

type PathResponse struct {
	Path []json.RawMessage `json:"path"`
}
