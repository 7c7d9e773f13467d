package dto

// Coord is the [x, y] wire form of a node.
type Coord [2]int

type EdgeResponse struct {
	From    Coord   `json:"from"`
	To      Coord   `json:"to"`
	Weight  float64 `json:"weight"`
	Blocked bool    `json:"blocked"`
}

type DeliveryResponse struct {
	Location Coord `json:"location"`
	Earliest int   `json:"earliest"`
	Latest   int   `json:"latest"`
}

type BaseTimeResponse struct {
	BaseTime string `json:"base_time"`
}

type BaseTimeRequest struct {
	BaseTime string `json:"base_time"`
}

type AddDeliveryRequest struct {
	Location   Coord     `json:"location"`
	TimeWindow [2]string `json:"time_window"`
}

type LocationRequest struct {
	Location Coord `json:"location"`
}

type EdgeRequest struct {
	FromNode Coord `json:"from_node"`
	ToNode   Coord `json:"to_node"`
}

type WeightRequest struct {
	FromNode Coord   `json:"from_node"`
	ToNode   Coord   `json:"to_node"`
	Weight   float64 `json:"weight"`
}

// AckResponse is the loose acknowledgement every mutation returns.
type AckResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
