package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
)

const (
	nodeRadius  = 10.0
	svgPadding  = 40.0
	arrowLength = 8.0
	arrowWidth  = 4.0
)

// svgBounds tracks the extent of everything drawn.
type svgBounds struct {
	minX, maxX, minY, maxY float64
	isSet                  bool
}

func (b *svgBounds) updatePoint(p Point) {
	if !b.isSet {
		b.minX, b.maxX = p.X, p.X
		b.minY, b.maxY = p.Y, p.Y
		b.isSet = true
		return
	}
	b.minX = math.Min(b.minX, p.X)
	b.maxX = math.Max(b.maxX, p.X)
	b.minY = math.Min(b.minY, p.Y)
	b.maxY = math.Max(b.maxY, p.Y)
}

// WriteSVG writes the scene as a standalone SVG document. The scene must be
// built with a pixel Mapper such as DefaultSVGMapper.
func WriteSVG(w io.Writer, s Scene) error {
	var body bytes.Buffer
	var bounds svgBounds

	for _, e := range s.Edges {
		bounds.updatePoint(e.From)
		bounds.updatePoint(e.To)
		drawEdge(&body, e)
	}

	if len(s.Route) > 1 {
		body.WriteString(`<polyline class="route" fill="none" stroke="red" stroke-width="3" points="`)
		for i, p := range s.Route {
			if i > 0 {
				body.WriteByte(' ')
			}
			fmt.Fprintf(&body, "%s,%s", num(p.X), num(p.Y))
		}
		body.WriteString("\"/>\n")
	}

	for _, n := range s.Nodes {
		bounds.updatePoint(Point{X: n.At.X - nodeRadius, Y: n.At.Y - nodeRadius - 15})
		bounds.updatePoint(Point{X: n.At.X + nodeRadius, Y: n.At.Y + nodeRadius + 20})

		stroke := "black"
		if n.Cursor {
			stroke = "#1e90ff"
		}
		fmt.Fprintf(&body,
			`<g class="node" data-node="%s"><circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s"/>`+
				`<text x="%s" y="%s" font-size="12" text-anchor="middle" fill="black">%s</text></g>`+"\n",
			n.Node.Key(), num(n.At.X), num(n.At.Y), num(nodeRadius), nodeFill(n.Kind), stroke,
			num(n.At.X), num(n.At.Y-15), html.EscapeString(n.Label),
		)
	}

	for _, b := range s.Badges {
		fmt.Fprintf(&body,
			`<text class="badge" x="%s" y="%s" font-size="10" text-anchor="middle" fill="blue">%d · %s</text>`+"\n",
			num(b.At.X), num(b.At.Y+20), b.Order, html.EscapeString(b.Arrival),
		)
	}

	if !bounds.isSet {
		bounds.updatePoint(Point{})
	}

	minX := bounds.minX - svgPadding
	minY := bounds.minY - svgPadding
	width := bounds.maxX - bounds.minX + 2*svgPadding
	height := bounds.maxY - bounds.minY + 2*svgPadding + 20

	var doc bytes.Buffer
	fmt.Fprintf(&doc,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s" style="background:#f9f9f9">`+"\n",
		num(width), num(height), num(minX), num(minY), num(width), num(height),
	)
	doc.Write(body.Bytes())
	if s.Caption != "" {
		fmt.Fprintf(&doc, `<text class="caption" x="%s" y="%s" font-size="12" fill="gray">%s</text>`+"\n",
			num(minX+10), num(minY+height-10), html.EscapeString(s.Caption))
	}
	doc.WriteString("</svg>\n")

	if _, err := w.Write(doc.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func drawEdge(buf *bytes.Buffer, e EdgeShape) {
	color, width := "#999", 1.5
	switch {
	case e.Selected:
		color, width = "#1e90ff", 2.5
	case e.Edge.Blocked:
		color, width = "black", 3
	}

	fmt.Fprintf(buf,
		`<g class="edge" data-edge="%s>%s"><line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`,
		e.Edge.From.Key(), e.Edge.To.Key(),
		num(e.From.X), num(e.From.Y), num(e.To.X), num(e.To.Y), color, num(width),
	)

	// Arrowhead just short of the target node.
	vx, vy := e.To.X-e.From.X, e.To.Y-e.From.Y
	if l := math.Hypot(vx, vy); l > 0 {
		ux, uy := vx/l, vy/l
		tip := Point{X: e.To.X - ux*nodeRadius, Y: e.To.Y - uy*nodeRadius}
		base := Point{X: tip.X - ux*arrowLength, Y: tip.Y - uy*arrowLength}
		fmt.Fprintf(buf, `<polygon points="%s,%s %s,%s %s,%s" fill="%s"/>`,
			num(tip.X), num(tip.Y),
			num(base.X-uy*arrowWidth), num(base.Y+ux*arrowWidth),
			num(base.X+uy*arrowWidth), num(base.Y-ux*arrowWidth),
			color,
		)
	}

	fmt.Fprintf(buf, `<text x="%s" y="%s" font-size="10" text-anchor="middle" fill="gray">%s</text></g>`+"\n",
		num(e.Mid.X), num(e.Mid.Y-5), html.EscapeString(e.Label))
}

func nodeFill(k NodeKind) string {
	switch k {
	case NodeStart:
		return "green"
	case NodeDelivery:
		return "orange"
	default:
		return "#ddd"
	}
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
