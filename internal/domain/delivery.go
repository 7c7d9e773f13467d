package domain

import "fmt"

// Delivery is a stop that must be visited inside a time window.
// Earliest and Latest are minute offsets from the backend base departure time.
type Delivery struct {
	Location Node
	Earliest int
	Latest   int
}

// Validate enforces earliest <= latest.
func (d Delivery) Validate() error {
	if d.Earliest > d.Latest {
		return fmt.Errorf("delivery %s: earliest %d is after latest %d", d.Location, d.Earliest, d.Latest)
	}
	return nil
}

// DefaultWindow is offered for a location without a delivery yet.
const (
	DefaultEarliest = "08:30"
	DefaultLatest   = "09:30"
)
