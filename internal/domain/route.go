package domain

// StatusSuccess is the compute-plan status of a feasible plan.
const StatusSuccess = "success"

// Represents the backend's answer to a compute-plan request.
// Sequence lists the delivery stops in visit order and excludes the start node.
// ArrivalTimes is aligned by index with Sequence. ArrivalMinutes is only
// populated when the backend reports relative offsets instead of clock strings.
type PlanResult struct {
	Status         string
	Message        string
	Sequence       []Node
	ArrivalTimes   []string
	ArrivalMinutes []int
	TotalTime      int
}

func (p PlanResult) Succeeded() bool { return p.Status == StatusSuccess }

// Order returns the 1-based visit order of every stop in the sequence.
// A location listed twice keeps its first position.
func (p PlanResult) Order() map[Node]int {
	out := make(map[Node]int, len(p.Sequence))
	for i, n := range p.Sequence {
		if _, ok := out[n]; ok {
			continue
		}
		out[n] = i + 1
	}
	return out
}

// Waypoints returns the route the assembled path must visit: start, then every stop.
func (p PlanResult) Waypoints(start Node) []Node {
	out := make([]Node, 0, 1+len(p.Sequence))
	out = append(out, start)
	out = append(out, p.Sequence...)
	return out
}
