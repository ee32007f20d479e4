package flow

import "github.com/soochol/flowboard/internal/geometry"

// NodeKind is the closed set of node variants the canvas can hold.
type NodeKind string

const (
	NodeKindTrigger   NodeKind = "trigger"
	NodeKindAction    NodeKind = "action"
	NodeKindCondition NodeKind = "condition"
	NodeKindDelay     NodeKind = "delay"
)

// Valid reports whether k is one of the known kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case NodeKindTrigger, NodeKindAction, NodeKindCondition, NodeKindDelay:
		return true
	}
	return false
}

// Node is a workflow step placed on the canvas.
type Node struct {
	ID         string         `json:"id" yaml:"id"`
	Kind       NodeKind       `json:"kind" yaml:"kind"`
	Position   geometry.Point `json:"position" yaml:"position"`
	Label      string         `json:"label,omitempty" yaml:"label,omitempty"`
	Configured bool           `json:"configured" yaml:"configured"`
	Config     map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Size returns the node's dimensions, derived from its kind.
func (n *Node) Size() geometry.Size { return n.Kind.Size() }

// Rect returns the node's bounding box in world coordinates.
func (n *Node) Rect() geometry.Rect { return geometry.RectAt(n.Position, n.Size()) }

// Edge connects an output port of Source to an input port of Target.
// Empty handles mean the default port.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"source_handle,omitempty" yaml:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty" yaml:"target_handle,omitempty"`
}

// Key identifies the connection tuple an edge occupies; at most one edge
// may exist per key.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, SourceHandle: e.SourceHandle, Target: e.Target, TargetHandle: e.TargetHandle}
}

// EdgeKey is the (source, sourceHandle, target, targetHandle) tuple.
type EdgeKey struct {
	Source       string
	SourceHandle string
	Target       string
	TargetHandle string
}

// WorkflowDefinition is the persisted form of a canvas.
type WorkflowDefinition struct {
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Version      int    `json:"version" yaml:"version"`
	Nodes        []Node `json:"nodes" yaml:"nodes"`
	Edges        []Edge `json:"edges" yaml:"edges"`
	ThumbnailSVG string `json:"thumbnail_svg,omitempty" yaml:"thumbnail_svg,omitempty"`
}
