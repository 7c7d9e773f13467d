package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellEdge
	cellBlocked
	cellSelected
	cellLabel
	cellRoute
	cellNode
	cellStart
	cellDelivery
	cellBadge
)

type cell struct {
	r      rune
	kind   cellKind
	cursor bool
}

// Canvas rasterizes a Scene onto terminal cells. Scene points are read as
// (column, row), so it expects a Scene built with a terminal Mapper.
type Canvas struct {
	Width  int
	Height int
	cells  [][]cell
}

func NewCanvas(width, height int) *Canvas {
	c := &Canvas{Width: width, Height: height}
	c.cells = make([][]cell, height)
	for y := range c.cells {
		c.cells[y] = make([]cell, width)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{r: ' '}
		}
	}
	return c
}

// CanvasFor sizes a canvas to fit every shape of s plus a small margin.
func CanvasFor(s Scene) *Canvas {
	maxX, maxY := 0.0, 0.0
	grow := func(p Point) {
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	for _, n := range s.Nodes {
		grow(n.At)
	}
	for _, e := range s.Edges {
		grow(e.From)
		grow(e.To)
	}
	return NewCanvas(int(math.Ceil(maxX))+8, int(math.Ceil(maxY))+3)
}

// Draw paints the scene in layers: edges, labels, route, nodes, badges.
func (c *Canvas) Draw(s Scene) {
	for _, e := range s.Edges {
		kind := cellEdge
		switch {
		case e.Selected:
			kind = cellSelected
		case e.Edge.Blocked:
			kind = cellBlocked
		}
		c.line(e.From, e.To, kind, lineGlyph(e.From, e.To))
		c.arrow(e.From, e.To, kind)
	}

	for _, e := range s.Edges {
		label := e.Label
		if e.Edge.Blocked {
			label = "x"
		}
		c.text(e.Mid, label, cellLabel)
	}

	for i := 1; i < len(s.Route); i++ {
		c.line(s.Route[i-1], s.Route[i], cellRoute, '*')
	}

	for _, n := range s.Nodes {
		r, kind := 'o', cellNode
		switch n.Kind {
		case NodeStart:
			r, kind = 'S', cellStart
		case NodeDelivery:
			r, kind = 'D', cellDelivery
		}
		x, y := cellOf(n.At)
		c.set(x, y, r, kind)
		if n.Cursor {
			c.markCursor(x, y)
		}
	}

	for _, b := range s.Badges {
		x, y := cellOf(b.At)
		c.textAt(x+1, y, strconv.Itoa(b.Order), cellBadge)
		if b.Arrival != "" {
			c.textAt(x-2, y+1, b.Arrival, cellBadge)
		}
	}
}

// String renders the canvas without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		for _, cl := range row {
			b.WriteRune(cl.r)
		}
		if y < len(c.cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Render renders the canvas with lipgloss colours, one style per run of equal cells.
func (c *Canvas) Render() string {
	var b strings.Builder
	for y, row := range c.cells {
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].kind == row[start].kind && row[x].cursor == row[start].cursor {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, cl := range row[start:x] {
				run = append(run, cl.r)
			}
			b.WriteString(styleFor(row[start]).Render(string(run)))
			start = x
		}
		if y < len(c.cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// RuneAt returns the glyph at column x, row y, or ' ' outside the canvas.
func (c *Canvas) RuneAt(x, y int) rune {
	if !c.inside(x, y) {
		return ' '
	}
	return c.cells[y][x].r
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Width && y < c.Height
}

func (c *Canvas) set(x, y int, r rune, kind cellKind) {
	if !c.inside(x, y) {
		return
	}
	c.cells[y][x].r = r
	c.cells[y][x].kind = kind
}

func (c *Canvas) markCursor(x, y int) {
	if c.inside(x, y) {
		c.cells[y][x].cursor = true
	}
}

// line draws a Bresenham line between the cells of a and b.
func (c *Canvas) line(a, b Point, kind cellKind, r rune) {
	x0, y0 := cellOf(a)
	x1, y1 := cellOf(b)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		c.set(x0, y0, r, kind)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// arrow marks the direction of an edge three quarters of the way along it.
func (c *Canvas) arrow(a, b Point, kind cellKind) {
	p := Point{X: a.X + (b.X-a.X)*0.75, Y: a.Y + (b.Y-a.Y)*0.75}
	x, y := cellOf(p)

	dx, dy := b.X-a.X, b.Y-a.Y
	var r rune
	switch {
	case math.Abs(dx) >= math.Abs(dy) && dx > 0:
		r = '>'
	case math.Abs(dx) >= math.Abs(dy):
		r = '<'
	case dy > 0:
		r = 'v'
	default:
		r = '^'
	}
	c.set(x, y, r, kind)
}

// text centres s on p.
func (c *Canvas) text(p Point, s string, kind cellKind) {
	x, y := cellOf(p)
	c.textAt(x-len([]rune(s))/2, y, s, kind)
}

func (c *Canvas) textAt(x, y int, s string, kind cellKind) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, kind)
	}
}

func lineGlyph(a, b Point) rune {
	dx, dy := b.X-a.X, b.Y-a.Y
	switch {
	case math.Abs(dy) < 0.5:
		return '-'
	case math.Abs(dx) < 0.5:
		return '|'
	case dx*dy > 0:
		return '\\'
	default:
		return '/'
	}
}

func cellOf(p Point) (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func styleFor(cl cell) lipgloss.Style {
	s, ok := cellStyles[cl.kind]
	if !ok {
		s = lipgloss.NewStyle()
	}
	if cl.cursor {
		s = s.Reverse(true)
	}
	return s
}

var cellStyles = map[cellKind]lipgloss.Style{
	cellEdge:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	cellBlocked:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
	cellSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	cellLabel:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	cellRoute:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	cellNode:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	cellStart:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	cellDelivery: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	cellBadge:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
}
