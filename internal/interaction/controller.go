// Package interaction turns pointer input into canvas edits. The
// Controller is a small state machine (idle, dragging a node, drawing a
// connection, panning) that commits into a graph.Graph and a
// viewport.Viewport and reports every commit on an EventBus.
package interaction

import (
	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/graph"
	"github.com/soochol/flowboard/internal/viewport"
)

// Mode is the controller's current gesture.
type Mode string

const (
	ModeIdle              Mode = "idle"
	ModeDraggingNode      Mode = "dragging_node"
	ModeDrawingConnection Mode = "drawing_connection"
	ModePanning           Mode = "panning"
)

// State is the transient interaction state exposed to renderers.
type State struct {
	Mode Mode `json:"mode"`
	// NodeID is the dragged node or the connection source.
	NodeID       string         `json:"node_id,omitempty"`
	SourceHandle string         `json:"source_handle,omitempty"`
	PointerWorld geometry.Point `json:"pointer_world"`
	HoveredPort  *flow.PortRef  `json:"hovered_port,omitempty"`
}

// Controller owns no data; it edits the graph and viewport it was given.
// It is not safe for concurrent use.
type Controller struct {
	graph  *graph.Graph
	view   *viewport.Viewport
	bus    *EventBus
	canvas string

	state        State
	lastScreen   geometry.Point
	grab         geometry.Point
	selectedEdge string
	selectedNode string
}

// NewController wires a controller to a graph and viewport. bus may be nil.
func NewController(name string, g *graph.Graph, v *viewport.Viewport, bus *EventBus) *Controller {
	if bus == nil {
		bus = NewEventBus()
	}
	return &Controller{
		graph:  g,
		view:   v,
		bus:    bus,
		canvas: name,
		state:  State{Mode: ModeIdle},
	}
}

func (c *Controller) State() State               { return c.state }
func (c *Controller) Bus() *EventBus             { return c.bus }
func (c *Controller) Graph() *graph.Graph        { return c.graph }
func (c *Controller) SelectedConnection() string { return c.selectedEdge }
func (c *Controller) SelectedNode() string       { return c.selectedNode }

// PointerDown hit-tests a screen point and starts the matching gesture.
func (c *Controller) PointerDown(screen geometry.Point) {
	world := c.view.ScreenToWorld(screen)
	c.PointerDownOn(HitTest(c.graph, world, c.view.Zoom), screen)
}

// PointerDownOn starts a gesture on an already resolved target. Presses
// outside idle are ignored.
func (c *Controller) PointerDownOn(t Target, screen geometry.Point) {
	if c.state.Mode != ModeIdle {
		return
	}
	world := c.view.ScreenToWorld(screen)
	c.lastScreen = screen
	c.state.PointerWorld = world

	switch t.Kind {
	case TargetPort:
		// Only output-class ports start a connection.
		if t.Port.Direction != flow.DirectionOutput {
			return
		}
		n, ok := c.graph.Node(t.Port.NodeID)
		if !ok {
			return
		}
		c.state.NodeID = n.ID
		c.state.SourceHandle = flow.NormalizeHandle(n.Kind, flow.DirectionOutput, t.Port.Handle)
		c.setMode(ModeDrawingConnection)
	case TargetNode:
		n, ok := c.graph.Node(t.NodeID)
		if !ok {
			return
		}
		c.grab = world.Sub(n.Position)
		c.selectedNode, c.selectedEdge = n.ID, ""
		c.state.NodeID = n.ID
		c.setMode(ModeDraggingNode)
	case TargetEdge:
		if _, ok := c.graph.Edge(t.EdgeID); ok {
			c.selectedEdge, c.selectedNode = t.EdgeID, ""
		}
	default:
		c.selectedEdge, c.selectedNode = "", ""
		c.setMode(ModePanning)
	}
}

// PointerMove advances the current gesture. It does nothing while idle.
func (c *Controller) PointerMove(screen geometry.Point) {
	if c.state.Mode == ModeIdle {
		return
	}
	world := c.view.ScreenToWorld(screen)
	switch c.state.Mode {
	case ModeDraggingNode:
		pos := world.Sub(c.grab)
		if c.graph.MoveNode(c.state.NodeID, pos) {
			c.publish(Event{Type: EventNodeMoved, NodeID: c.state.NodeID, Payload: map[string]any{"x": pos.X, "y": pos.Y}})
		}
	case ModeDrawingConnection:
		c.state.HoveredPort = nil
		t := HitTest(c.graph, world, c.view.Zoom)
		if c.acceptsConnection(t) {
			ref := t.Port
			c.state.HoveredPort = &ref
		}
	case ModePanning:
		delta := screen.Sub(c.lastScreen)
		c.view.Pan(delta.X, delta.Y)
		world = c.view.ScreenToWorld(screen)
	}
	c.state.PointerWorld = world
	c.lastScreen = screen
}

// PointerUp finishes the gesture. A connection is committed only when
// released over the input port of another node. The controller always
// ends up idle.
func (c *Controller) PointerUp(screen geometry.Point) {
	defer c.toIdle()
	if c.state.Mode != ModeDrawingConnection {
		return
	}
	world := c.view.ScreenToWorld(screen)
	c.state.PointerWorld = world
	t := HitTest(c.graph, world, c.view.Zoom)
	if !c.acceptsConnection(t) {
		return
	}
	c.Connect(c.state.NodeID, t.NodeID, c.state.SourceHandle, "")
}

// Cancel abandons the current gesture, as on Escape. Edits already
// committed by a drag stay in place.
func (c *Controller) Cancel() { c.toIdle() }

// Wheel zooms around the pointer.
func (c *Controller) Wheel(delta float64, screen geometry.Point) {
	c.view.ZoomAt(delta, screen)
	c.publish(Event{Type: EventViewport, Payload: map[string]any{"zoom": c.view.Zoom}})
}

// Preview returns the in-progress connection curve from the source port
// to the pointer. It is never stored in the graph.
func (c *Controller) Preview() (geometry.Path, bool) {
	if c.state.Mode != ModeDrawingConnection {
		return geometry.Path{}, false
	}
	src, ok := c.graph.Node(c.state.NodeID)
	if !ok {
		return geometry.Path{}, false
	}
	from := flow.ResolvePort(&src, flow.DirectionOutput, c.state.SourceHandle)
	return geometry.SmoothPathBetween(from, c.state.PointerWorld), true
}

func (c *Controller) acceptsConnection(t Target) bool {
	return t.Kind == TargetPort &&
		t.Port.Direction == flow.DirectionInput &&
		t.NodeID != c.state.NodeID
}

func (c *Controller) toIdle() {
	c.state.NodeID = ""
	c.state.SourceHandle = ""
	c.state.HoveredPort = nil
	c.grab = geometry.Point{}
	c.setMode(ModeIdle)
}

func (c *Controller) setMode(m Mode) {
	if c.state.Mode == m {
		return
	}
	from := c.state.Mode
	c.state.Mode = m
	c.publish(Event{Type: EventModeChanged, Payload: map[string]any{"from": string(from), "to": string(m)}})
}

func (c *Controller) publish(e Event) {
	e.Canvas = c.canvas
	c.bus.Publish(e)
}
