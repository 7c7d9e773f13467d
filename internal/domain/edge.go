package domain

import "fmt"

// EdgeKey identifies a directed edge. A→B and B→A are different keys.
type EdgeKey struct {
	From Node
	To   Node
}

func (k EdgeKey) Reverse() EdgeKey { return EdgeKey{From: k.To, To: k.From} }

func (k EdgeKey) String() string { return fmt.Sprintf("%s → %s", k.From, k.To) }

// Edge is a directed road segment. Weight is travel time in minutes.
// A blocked edge is impassable regardless of its weight.
type Edge struct {
	From    Node
	To      Node
	Weight  float64
	Blocked bool
}

func (e Edge) Key() EdgeKey { return EdgeKey{From: e.From, To: e.To} }
