package canvas

import (
	"time"

	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/graph"
	"github.com/soochol/flowboard/internal/interaction"
	"github.com/soochol/flowboard/internal/minimap"
	"github.com/soochol/flowboard/internal/viewport"
)

// Snapshot is the render-ready state of a canvas.
type Snapshot struct {
	Name                 string            `json:"name"`
	Nodes                []NodeView        `json:"nodes"`
	Edges                []EdgeView        `json:"edges"`
	Viewport             viewport.Viewport `json:"viewport"`
	Interaction          interaction.State `json:"interaction"`
	SelectedConnectionID string            `json:"selected_connection_id,omitempty"`
	SelectedNodeID       string            `json:"selected_node_id,omitempty"`
	Preview              *PathView         `json:"preview,omitempty"`
	MiniMap              minimap.Layout    `json:"minimap"`
	Dirty                bool              `json:"dirty"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// NodeView is a node with its derived geometry.
type NodeView struct {
	flow.Node
	Size  geometry.Size `json:"size"`
	Ports []PortView    `json:"ports"`
}

// PortView is a resolved port position.
type PortView struct {
	flow.PortRef
	At geometry.Point `json:"at"`
}

// EdgeView is an edge with its rendered curve.
type EdgeView struct {
	flow.Edge
	Path PathView `json:"path"`
}

// PathView pairs the bezier control points with the SVG path data.
type PathView struct {
	geometry.Path
	D string `json:"d"`
}

func newPathView(p geometry.Path) PathView { return PathView{Path: p, D: p.String()} }

func buildSnapshot(name string, g *graph.Graph, v *viewport.Viewport, ctrl *interaction.Controller, mini geometry.Size) Snapshot {
	nodes := g.Nodes()
	edges := g.Edges()
	byID := make(map[string]*flow.Node, len(nodes))

	snap := Snapshot{
		Name:                 name,
		Nodes:                make([]NodeView, 0, len(nodes)),
		Edges:                make([]EdgeView, 0, len(edges)),
		Viewport:             *v,
		Interaction:          ctrl.State(),
		SelectedConnectionID: ctrl.SelectedConnection(),
		SelectedNodeID:       ctrl.SelectedNode(),
	}
	for i := range nodes {
		n := &nodes[i]
		byID[n.ID] = n
		snap.Nodes = append(snap.Nodes, NodeView{Node: *n, Size: n.Size(), Ports: portsOf(n)})
	}
	for _, e := range edges {
		p, ok := interaction.EdgePath(byID[e.Source], byID[e.Target], e)
		if !ok {
			continue
		}
		snap.Edges = append(snap.Edges, EdgeView{Edge: e, Path: newPathView(p)})
	}
	if p, ok := ctrl.Preview(); ok {
		pv := newPathView(p)
		snap.Preview = &pv
	}
	snap.MiniMap = minimap.NewProjector(nodes, mini).Layout(nodes, edges, v)
	return snap
}

func portsOf(n *flow.Node) []PortView {
	ports := []PortView{{
		PortRef: flow.PortRef{NodeID: n.ID, Direction: flow.DirectionInput},
		At:      flow.ResolvePort(n, flow.DirectionInput, ""),
	}}
	for _, h := range n.Kind.OutputHandles() {
		ports = append(ports, PortView{
			PortRef: flow.PortRef{NodeID: n.ID, Direction: flow.DirectionOutput, Handle: h},
			At:      flow.ResolvePort(n, flow.DirectionOutput, h),
		})
	}
	return ports
}
