// Package minimap projects the world-space canvas into a small overview
// and maps overview clicks back into viewport offsets.
package minimap

import (
	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/viewport"
)

const (
	// Padding is the world-space margin added around the node bounds.
	Padding = 100

	DefaultWidth  = 200
	DefaultHeight = 150
)

// ComputeBounds returns the padded bounding box of all node rectangles.
// With no nodes it returns the unit box at the origin.
func ComputeBounds(nodes []flow.Node) geometry.Bounds {
	if len(nodes) == 0 {
		return geometry.Bounds{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}
	}
	b := geometry.BoundsOf(nodes[0].Rect())
	for i := 1; i < len(nodes); i++ {
		b = b.Union(nodes[i].Rect())
	}
	return b.Expand(Padding)
}

// Projector maps between world coordinates and a fixed-size overview.
// X and Y are scaled independently, so aspect ratio is not preserved.
type Projector struct {
	Bounds geometry.Bounds
	Size   geometry.Size
	scaleX float64
	scaleY float64
}

// NewProjector builds a projector for the given nodes onto an overview of
// the given size.
func NewProjector(nodes []flow.Node, size geometry.Size) *Projector {
	b := ComputeBounds(nodes)
	return &Projector{
		Bounds: b,
		Size:   size,
		scaleX: size.Width / b.Width(),
		scaleY: size.Height / b.Height(),
	}
}

// Project maps a world point into overview coordinates.
func (p *Projector) Project(world geometry.Point) geometry.Point {
	return geometry.Point{
		X: (world.X - p.Bounds.MinX) * p.scaleX,
		Y: (world.Y - p.Bounds.MinY) * p.scaleY,
	}
}

// Unproject maps an overview point back into world coordinates.
func (p *Projector) Unproject(mini geometry.Point) geometry.Point {
	return geometry.Point{
		X: mini.X/p.scaleX + p.Bounds.MinX,
		Y: mini.Y/p.scaleY + p.Bounds.MinY,
	}
}

// ProjectRect maps a world rectangle into overview coordinates.
func (p *Projector) ProjectRect(r geometry.Rect) geometry.Rect {
	tl := p.Project(r.Min())
	return geometry.Rect{X: tl.X, Y: tl.Y, Width: r.Width * p.scaleX, Height: r.Height * p.scaleY}
}

// ClickToOffset returns the viewport offset that centers the main view on
// the world point under an overview click.
func (p *Projector) ClickToOffset(mini geometry.Point, v *viewport.Viewport) geometry.Point {
	world := p.Unproject(mini)
	return geometry.Point{
		X: -(world.X*v.Zoom - v.Width/2),
		Y: -(world.Y*v.Zoom - v.Height/2),
	}
}

// ViewportRect returns the overview rectangle covering what is on screen.
func (p *Projector) ViewportRect(v *viewport.Viewport) geometry.Rect {
	return p.ProjectRect(v.VisibleWorldRect())
}

// Layout is a render-ready overview.
type Layout struct {
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Nodes    []NodeBox       `json:"nodes"`
	Edges    []Segment       `json:"edges"`
	Viewport geometry.Rect   `json:"viewport"`
	Bounds   geometry.Bounds `json:"bounds"`
}

// NodeBox is a projected node.
type NodeBox struct {
	ID   string        `json:"id"`
	Kind flow.NodeKind `json:"kind"`
	Rect geometry.Rect `json:"rect"`
}

// Segment is a projected edge drawn as a straight line between ports.
type Segment struct {
	ID   string         `json:"id"`
	From geometry.Point `json:"from"`
	To   geometry.Point `json:"to"`
}

// Layout projects every node, edge and the visible area.
func (p *Projector) Layout(nodes []flow.Node, edges []flow.Edge, v *viewport.Viewport) Layout {
	byID := make(map[string]*flow.Node, len(nodes))
	out := Layout{
		Width:    p.Size.Width,
		Height:   p.Size.Height,
		Nodes:    make([]NodeBox, 0, len(nodes)),
		Edges:    make([]Segment, 0, len(edges)),
		Viewport: p.ViewportRect(v),
		Bounds:   p.Bounds,
	}
	for i := range nodes {
		n := &nodes[i]
		byID[n.ID] = n
		out.Nodes = append(out.Nodes, NodeBox{ID: n.ID, Kind: n.Kind, Rect: p.ProjectRect(n.Rect())})
	}
	for _, e := range edges {
		src, ok1 := byID[e.Source]
		dst, ok2 := byID[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		out.Edges = append(out.Edges, Segment{
			ID:   e.ID,
			From: p.Project(flow.ResolvePort(src, flow.DirectionOutput, e.SourceHandle)),
			To:   p.Project(flow.ResolvePort(dst, flow.DirectionInput, e.TargetHandle)),
		})
	}
	return out
}
