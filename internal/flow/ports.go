package flow

import "github.com/soochol/flowboard/internal/geometry"

const (
	NodeWidth         = 200
	NodeHeight        = 80
	TriggerNodeHeight = 100
)

// Size returns the fixed dimensions for nodes of kind k.
func (k NodeKind) Size() geometry.Size {
	if k == NodeKindTrigger {
		return geometry.Size{Width: NodeWidth, Height: TriggerNodeHeight}
	}
	return geometry.Size{Width: NodeWidth, Height: NodeHeight}
}

// Direction tells whether a port receives or emits connections.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Well-known handle names.
const (
	HandleInput  = "input"
	HandleOutput = "output"
	HandleTrue   = "true"
	HandleFalse  = "false"
)

// PortRef names a connection port on a node.
type PortRef struct {
	NodeID    string    `json:"node_id"`
	Direction Direction `json:"direction"`
	Handle    string    `json:"handle,omitempty"`
}

// OutputHandles lists the output handles a node of kind k exposes. The
// empty string is the default output.
func (k NodeKind) OutputHandles() []string {
	if k == NodeKindCondition {
		return []string{HandleTrue, HandleFalse}
	}
	return []string{""}
}

// ResolvePort returns the world coordinate of a node's port. Input ports
// sit at the top center, outputs at the bottom center, and condition
// true/false outputs at the bottom quarter points. Any unrecognised handle
// resolves to the default point for the direction.
func ResolvePort(n *Node, dir Direction, handle string) geometry.Point {
	size := n.Size()
	x, y := n.Position.X, n.Position.Y
	if dir == DirectionInput {
		return geometry.Point{X: x + size.Width/2, Y: y}
	}
	bottom := y + size.Height
	if n.Kind == NodeKindCondition {
		switch handle {
		case HandleTrue:
			return geometry.Point{X: x + size.Width/4, Y: bottom}
		case HandleFalse:
			return geometry.Point{X: x + size.Width*3/4, Y: bottom}
		}
	}
	return geometry.Point{X: x + size.Width/2, Y: bottom}
}

// NormalizeHandle maps handle aliases onto the canonical edge form: the
// explicit "input"/"output" names and unknown values become the empty
// default, condition branches are kept.
func NormalizeHandle(kind NodeKind, dir Direction, handle string) string {
	if dir == DirectionOutput && kind == NodeKindCondition && (handle == HandleTrue || handle == HandleFalse) {
		return handle
	}
	return ""
}
