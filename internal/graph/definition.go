package graph

import (
	"fmt"

	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
)

// Layout spacing used when a definition arrives without positions.
const (
	layoutColumn = 240
	layoutRow    = 160
)

// Build loads a stored definition, enforcing the same invariants as
// interactive editing: unique ids, known kinds, no dangling edges, no
// self-loops and no duplicate connections.
func Build(def *flow.WorkflowDefinition, opts ...Option) (*Graph, error) {
	g := New(opts...)
	for _, n := range def.Nodes {
		if err := g.InsertNode(n); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range def.Edges {
		if err := g.InsertEdge(e); err != nil {
			return nil, fmt.Errorf("edge %q: %w", e.ID, err)
		}
	}
	if g.unplaced() {
		g.AutoLayout()
	}
	return g, nil
}

// ExportTo replaces def's nodes and edges with the graph contents.
func (g *Graph) ExportTo(def *flow.WorkflowDefinition) {
	def.Nodes = g.Nodes()
	def.Edges = g.Edges()
}

// unplaced reports whether more than one node exists and every node sits
// at the origin, which is how hand-written definitions usually arrive.
func (g *Graph) unplaced() bool {
	if len(g.nodeOrder) < 2 {
		return false
	}
	for _, n := range g.nodes {
		if n.Position != (geometry.Point{}) {
			return false
		}
	}
	return true
}

// AutoLayout arranges nodes top to bottom by their breadth-first depth
// from the roots. Nodes only reachable through a cycle land on row 0
// after the roots.
func (g *Graph) AutoLayout() {
	depth := make(map[string]int, len(g.nodes))
	queue := g.Roots()
	for _, id := range queue {
		depth[id] = 0
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range g.Children(id) {
			if _, seen := depth[c]; seen {
				continue
			}
			depth[c] = depth[id] + 1
			queue = append(queue, c)
		}
	}

	column := make(map[int]int)
	for _, id := range g.nodeOrder {
		d, ok := depth[id]
		if !ok {
			d = 0
		}
		g.nodes[id].Position = geometry.Point{
			X: float64(column[d] * layoutColumn),
			Y: float64(d * layoutRow),
		}
		column[d]++
	}
}
