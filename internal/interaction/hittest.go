package interaction

import (
	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/graph"
)

// Screen-space hit radii. They are divided by zoom before testing so
// targets keep the same on-screen size at every zoom level.
const (
	PortHitRadius = 8
	EdgeHitRadius = 6
)

// TargetKind classifies what lies under the pointer.
type TargetKind string

const (
	TargetBackground TargetKind = "background"
	TargetPort       TargetKind = "port"
	TargetNode       TargetKind = "node"
	TargetEdge       TargetKind = "edge"
)

// Target is the result of a hit test.
type Target struct {
	Kind   TargetKind   `json:"kind"`
	NodeID string       `json:"node_id,omitempty"`
	EdgeID string       `json:"edge_id,omitempty"`
	Port   flow.PortRef `json:"port"`
}

// HitTest finds the top-most target at a world point. Ports win over node
// bodies, node bodies over edges; later nodes are drawn on top.
func HitTest(g *graph.Graph, world geometry.Point, zoom float64) Target {
	nodes := g.Nodes()
	portR := PortHitRadius / zoom
	for i := len(nodes) - 1; i >= 0; i-- {
		if ref, ok := hitPort(&nodes[i], world, portR); ok {
			return Target{Kind: TargetPort, NodeID: ref.NodeID, Port: ref}
		}
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Rect().Contains(world) {
			return Target{Kind: TargetNode, NodeID: nodes[i].ID}
		}
	}
	if id, ok := hitEdge(g, nodes, world, EdgeHitRadius/zoom); ok {
		return Target{Kind: TargetEdge, EdgeID: id}
	}
	return Target{Kind: TargetBackground}
}

func hitPort(n *flow.Node, world geometry.Point, radius float64) (flow.PortRef, bool) {
	for _, h := range n.Kind.OutputHandles() {
		if flow.ResolvePort(n, flow.DirectionOutput, h).Dist(world) <= radius {
			return flow.PortRef{NodeID: n.ID, Direction: flow.DirectionOutput, Handle: h}, true
		}
	}
	if flow.ResolvePort(n, flow.DirectionInput, "").Dist(world) <= radius {
		return flow.PortRef{NodeID: n.ID, Direction: flow.DirectionInput}, true
	}
	return flow.PortRef{}, false
}

func hitEdge(g *graph.Graph, nodes []flow.Node, world geometry.Point, radius float64) (string, bool) {
	byID := make(map[string]*flow.Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}
	edges := g.Edges()
	best, bestID := radius, ""
	for _, e := range edges {
		path, ok := EdgePath(byID[e.Source], byID[e.Target], e)
		if !ok {
			continue
		}
		if d := path.Distance(world); d <= best {
			best, bestID = d, e.ID
		}
	}
	return bestID, bestID != ""
}

// EdgePath returns the rendered curve of an edge between two nodes.
func EdgePath(src, dst *flow.Node, e flow.Edge) (geometry.Path, bool) {
	if src == nil || dst == nil {
		return geometry.Path{}, false
	}
	from := flow.ResolvePort(src, flow.DirectionOutput, e.SourceHandle)
	to := flow.ResolvePort(dst, flow.DirectionInput, e.TargetHandle)
	return geometry.SmoothPathBetween(from, to), true
}
