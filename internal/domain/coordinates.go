package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Node is a graph vertex. Its integer grid coordinate is its identity;
// two nodes with the same coordinate are the same node.
type Node struct {
	X int
	Y int
}

func (n Node) String() string { return fmt.Sprintf("(%d, %d)", n.X, n.Y) }

// Key returns the "x,y" form used by the shortest-path query and cache keys.
func (n Node) Key() string { return strconv.Itoa(n.X) + "," + strconv.Itoa(n.Y) }

// Return coordinates as [x, y] for backend wire compatibility.
func (n Node) CoordsToList() []int { return []int{n.X, n.Y} }

// ParseNode parses the "x,y" form. Surrounding whitespace and parentheses are ignored.
func ParseNode(s string) (Node, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Node{}, fmt.Errorf("parse node %q: expected \"x,y\"", s)
	}

	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Node{}, fmt.Errorf("parse node %q: x: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Node{}, fmt.Errorf("parse node %q: y: %w", s, err)
	}

	return Node{X: x, Y: y}, nil
}

// NodeFromList converts a wire coordinate pair into a Node.
func NodeFromList(c []int) (Node, error) {
	if len(c) != 2 {
		return Node{}, errors.New("coordinate must have exactly two components")
	}
	return Node{X: c[0], Y: c[1]}, nil
}
