package interaction

import (
	"log/slog"

	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
)

// Explicit edits issued by toolbars, menus and the API rather than by
// pointer gestures. They keep selection consistent and publish events.

// AddNode places a node and returns its id.
func (c *Controller) AddNode(kind flow.NodeKind, pos geometry.Point) (string, error) {
	id, err := c.graph.AddNode(kind, pos)
	if err != nil {
		return "", err
	}
	c.publish(Event{Type: EventNodeAdded, NodeID: id, Payload: map[string]any{"kind": string(kind), "x": pos.X, "y": pos.Y}})
	return id, nil
}

// ConfigureNode updates a node's label and config.
func (c *Controller) ConfigureNode(id, label string, config map[string]any, configured bool) bool {
	if !c.graph.ConfigureNode(id, label, config, configured) {
		return false
	}
	c.publish(Event{Type: EventNodeConfigured, NodeID: id, Payload: map[string]any{"configured": configured}})
	return true
}

// RemoveNode deletes a node and its edges.
func (c *Controller) RemoveNode(id string) bool {
	removed, ok := c.graph.RemoveNode(id)
	if !ok {
		return false
	}
	for _, e := range removed {
		if c.selectedEdge == e.ID {
			c.selectedEdge = ""
		}
		c.publish(Event{Type: EventEdgeRemoved, EdgeID: e.ID})
	}
	if c.selectedNode == id {
		c.selectedNode = ""
	}
	c.publish(Event{Type: EventNodeRemoved, NodeID: id})
	return true
}

// Connect adds an edge. A rejected connection leaves the graph unchanged
// and is reported on the bus as well as returned.
func (c *Controller) Connect(source, target, sourceHandle, targetHandle string) (string, error) {
	id, err := c.graph.AddEdge(source, target, sourceHandle, targetHandle)
	if err != nil {
		slog.Debug("connection discarded", "canvas", c.canvas, "source", source, "target", target, "err", err)
		c.publish(Event{Type: EventEdgeRejected, NodeID: source, Payload: map[string]any{"target": target, "reason": err.Error()}})
		return "", err
	}
	e, _ := c.graph.Edge(id)
	c.publish(Event{Type: EventEdgeAdded, EdgeID: id, Payload: map[string]any{
		"source": source, "target": target, "source_handle": e.SourceHandle,
	}})
	return id, nil
}

// RemoveEdge deletes an edge.
func (c *Controller) RemoveEdge(id string) bool {
	if !c.graph.RemoveEdge(id) {
		return false
	}
	if c.selectedEdge == id {
		c.selectedEdge = ""
	}
	c.publish(Event{Type: EventEdgeRemoved, EdgeID: id})
	return true
}

// DeleteSelection removes the selected edge, or failing that the selected
// node.
func (c *Controller) DeleteSelection() bool {
	switch {
	case c.selectedEdge != "":
		return c.RemoveEdge(c.selectedEdge)
	case c.selectedNode != "":
		return c.RemoveNode(c.selectedNode)
	}
	return false
}
