// Package render draws canvas snapshots as standalone SVG documents.
package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/soochol/flowboard/internal/canvas"
	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/interaction"
	"github.com/soochol/flowboard/internal/minimap"
)

const portRadius = 5

var kindColors = map[flow.NodeKind]string{
	flow.NodeKindTrigger:   "#16a34a",
	flow.NodeKindAction:    "#2563eb",
	flow.NodeKindCondition: "#d97706",
	flow.NodeKindDelay:     "#7c3aed",
}

// SVG renders the snapshot as seen through its viewport, with the minimap
// inset in the bottom-right corner.
func SVG(s canvas.Snapshot) string {
	v := s.Viewport
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(v.Width), num(v.Height), num(v.Width), num(v.Height))
	b.WriteString(`<rect width="100%" height="100%" fill="#f8fafc"/>`)
	fmt.Fprintf(&b, `<g transform="translate(%s %s) scale(%s)">`, num(v.Offset.X), num(v.Offset.Y), num(v.Zoom))
	for _, e := range s.Edges {
		stroke := "#94a3b8"
		if e.ID == s.SelectedConnectionID {
			stroke = "#ef4444"
		}
		fmt.Fprintf(&b, `<path id="%s" d="%s" fill="none" stroke="%s" stroke-width="2"/>`, attr(e.ID), e.Path.D, stroke)
		if e.SourceHandle != "" {
			mid := e.Path.Midpoint()
			fmt.Fprintf(&b, `<text class="branch" x="%s" y="%s" text-anchor="middle" font-family="sans-serif" font-size="12">%s</text>`,
				num(mid.X), num(mid.Y), attr(e.SourceHandle))
		}
	}
	if s.Preview != nil {
		fmt.Fprintf(&b, `<path class="preview" d="%s" fill="none" stroke="#64748b" stroke-width="2" stroke-dasharray="6 4"/>`, s.Preview.D)
	}
	for _, n := range s.Nodes {
		writeNode(&b, n, n.ID == s.SelectedNodeID, s.Interaction.HoveredPort)
	}
	b.WriteString(`</g>`)
	writeMiniMap(&b, s.MiniMap, v.Width, v.Height)
	b.WriteString(`</svg>`)
	return b.String()
}

func writeNode(b *strings.Builder, n canvas.NodeView, selected bool, hovered *flow.PortRef) {
	stroke, width := kindColors[n.Kind], "1.5"
	if selected {
		width = "3"
	}
	fmt.Fprintf(b, `<g class="node %s" id="%s">`, n.Kind, attr(n.ID))
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" rx="8" fill="#ffffff" stroke="%s" stroke-width="%s"/>`,
		num(n.Position.X), num(n.Position.Y), num(n.Size.Width), num(n.Size.Height), stroke, width)
	label := n.Label
	if label == "" {
		label = string(n.Kind)
	}
	center := geometry.RectAt(n.Position, n.Size).Center()
	fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="14">%s</text>`,
		num(center.X), num(center.Y), html.EscapeString(label))
	for _, p := range n.Ports {
		fill := "#ffffff"
		if hovered != nil && *hovered == p.PortRef {
			fill = stroke
		}
		fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%d" fill="%s" stroke="%s"/>`, num(p.At.X), num(p.At.Y), portRadius, fill, stroke)
	}
	b.WriteString(`</g>`)
}

func writeMiniMap(b *strings.Builder, m minimap.Layout, vw, vh float64) {
	const margin = 16
	x, y := vw-m.Width-margin, vh-m.Height-margin
	fmt.Fprintf(b, `<g class="minimap" transform="translate(%s %s)">`, num(x), num(y))
	fmt.Fprintf(b, `<rect width="%s" height="%s" fill="#ffffff" stroke="#cbd5e1"/>`, num(m.Width), num(m.Height))
	for _, e := range m.Edges {
		fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#cbd5e1"/>`, num(e.From.X), num(e.From.Y), num(e.To.X), num(e.To.Y))
	}
	for _, n := range m.Nodes {
		fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
			num(n.Rect.X), num(n.Rect.Y), num(n.Rect.Width), num(n.Rect.Height), kindColors[n.Kind])
	}
	r := m.Viewport
	fmt.Fprintf(b, `<rect class="viewport" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#0f172a"/>`,
		num(r.X), num(r.Y), num(r.Width), num(r.Height))
	b.WriteString(`</g>`)
}

// Thumbnail renders a definition fitted into a width×height banner,
// without viewport, selection or minimap.
func Thumbnail(def *flow.WorkflowDefinition, width, height float64) string {
	bounds := minimap.ComputeBounds(def.Nodes)
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s" preserveAspectRatio="xMidYMid meet">`,
		num(width), num(height), num(bounds.MinX), num(bounds.MinY), num(bounds.Width()), num(bounds.Height()))
	byID := make(map[string]*flow.Node, len(def.Nodes))
	for i := range def.Nodes {
		byID[def.Nodes[i].ID] = &def.Nodes[i]
	}
	for _, e := range def.Edges {
		if p, ok := interaction.EdgePath(byID[e.Source], byID[e.Target], e); ok {
			fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="#94a3b8" stroke-width="4"/>`, p.String())
		}
	}
	for _, n := range def.Nodes {
		r := n.Rect()
		fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" rx="12" fill="%s"/>`,
			num(r.X), num(r.Y), num(r.Width), num(r.Height), kindColors[n.Kind])
	}
	b.WriteString(`</svg>`)
	return b.String()
}

func num(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func attr(s string) string { return html.EscapeString(s) }
