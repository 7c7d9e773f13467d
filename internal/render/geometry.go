package render

import (
	"delivery-map-client/internal/domain"
	"errors"
	"math"
)

// Point is a position on a drawing surface: pixels for SVG, cells for the terminal.
type Point struct {
	X float64
	Y float64
}

// Mapper is the affine transform from graph coordinates to a surface.
type Mapper struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64
}

var (
	// DefaultSVGMapper places node (x, y) at (50x+50, 50y+50).
	DefaultSVGMapper = Mapper{ScaleX: 50, ScaleY: 50, OffsetX: 50, OffsetY: 50}
	// DefaultTerminalMapper leaves room between nodes for weight labels.
	DefaultTerminalMapper = Mapper{ScaleX: 8, ScaleY: 4, OffsetX: 2, OffsetY: 1}
)

func (m Mapper) Validate() error {
	if m.ScaleX == 0 || m.ScaleY == 0 {
		return errors.New("mapper: scale must be non-zero")
	}
	return nil
}

func (m Mapper) ToRender(n domain.Node) Point {
	return Point{
		X: float64(n.X)*m.ScaleX + m.OffsetX,
		Y: float64(n.Y)*m.ScaleY + m.OffsetY,
	}
}

// FromRender inverts ToRender. The result is fractional between grid points.
func (m Mapper) FromRender(p Point) (x, y float64) {
	return (p.X - m.OffsetX) / m.ScaleX, (p.Y - m.OffsetY) / m.ScaleY
}

// PerpendicularOffset returns the unit normal of from→to scaled by magnitude.
// Swapping from and to flips the sign, so A→B and B→A land on opposite sides.
func PerpendicularOffset(from, to Point, magnitude float64) (dx, dy float64) {
	vx := to.X - from.X
	vy := to.Y - from.Y

	length := math.Hypot(vx, vy)
	if length == 0 {
		length = 1
	}

	return -vy / length * magnitude, vx / length * magnitude
}

// EdgeEndpoints maps an edge and shifts both ends by its perpendicular offset.
func (m Mapper) EdgeEndpoints(e domain.Edge, magnitude float64) (Point, Point) {
	from := m.ToRender(e.From)
	to := m.ToRender(e.To)

	dx, dy := PerpendicularOffset(from, to, magnitude)

	return Point{X: from.X + dx, Y: from.Y + dy}, Point{X: to.X + dx, Y: to.Y + dy}
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// distanceToSegment is the distance from p to the closest point of segment ab.
func distanceToSegment(p, a, b Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	lenSq := vx*vx + vy*vy
	if lenSq == 0 {
		return distance(p, a)
	}

	t := ((p.X-a.X)*vx + (p.Y-a.Y)*vy) / lenSq
	t = math.Max(0, math.Min(1, t))

	return distance(p, Point{X: a.X + t*vx, Y: a.Y + t*vy})
}
