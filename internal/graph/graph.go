// Package graph holds the editable node-and-edge model behind a canvas.
// Nodes and edges live in maps keyed by id with a side slice recording
// insertion order; edges refer to nodes by id only.
package graph

import (
	"errors"
	"fmt"

	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
)

var (
	ErrUnknownKind   = errors.New("unknown node kind")
	ErrDuplicateNode = errors.New("duplicate node ID")
	ErrUnknownNode   = errors.New("edge references unknown node")
	ErrSelfLoop      = errors.New("edge connects a node to itself")
	ErrDuplicateEdge = errors.New("edge already exists")
)

// Graph is the mutable workflow graph. It is not safe for concurrent use;
// callers serialize access (see canvas.Canvas).
type Graph struct {
	nodes     map[string]*flow.Node
	nodeOrder []string
	edges     map[string]*flow.Edge
	edgeOrder []string
	edgeKeys  map[flow.EdgeKey]string
	newID     func(prefix string) string
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDFunc overrides how node and edge ids are generated.
func WithIDFunc(fn func(prefix string) string) Option {
	return func(g *Graph) { g.newID = fn }
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:    make(map[string]*flow.Node),
		edges:    make(map[string]*flow.Edge),
		edgeKeys: make(map[flow.EdgeKey]string),
		newID:    flow.GenerateID,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode places a new node of the given kind and returns its id.
func (g *Graph) AddNode(kind flow.NodeKind, pos geometry.Point) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	id := g.newID("node")
	for g.hasNode(id) {
		id = g.newID("node")
	}
	g.insertNode(&flow.Node{ID: id, Kind: kind, Position: pos})
	return id, nil
}

// InsertNode adds a node with a caller-chosen id, as when loading a
// stored definition.
func (g *Graph) InsertNode(n flow.Node) error {
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}
	if n.ID == "" || g.hasNode(n.ID) {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
	}
	n.Config = copyConfig(n.Config)
	g.insertNode(&n)
	return nil
}

func (g *Graph) insertNode(n *flow.Node) {
	g.nodes[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)
}

func (g *Graph) hasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (flow.Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return flow.Node{}, false
	}
	return *n, true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []flow.Node {
	out := make([]flow.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, *g.nodes[id])
	}
	return out
}

func (g *Graph) NodeCount() int { return len(g.nodeOrder) }
func (g *Graph) EdgeCount() int { return len(g.edgeOrder) }

// MoveNode sets a node's position. Unknown ids are ignored.
func (g *Graph) MoveNode(id string, pos geometry.Point) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Position = pos
	return true
}

// ConfigureNode updates a node's display metadata. Unknown ids are ignored.
func (g *Graph) ConfigureNode(id, label string, config map[string]any, configured bool) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Label = label
	n.Config = copyConfig(config)
	n.Configured = configured
	return true
}

// RemoveNode deletes a node together with every edge that references it
// and returns the removed edges. Unknown ids are ignored.
func (g *Graph) RemoveNode(id string) ([]flow.Edge, bool) {
	if !g.hasNode(id) {
		return nil, false
	}
	var removed []flow.Edge
	kept := g.edgeOrder[:0]
	for _, eid := range g.edgeOrder {
		e := g.edges[eid]
		if e.Source == id || e.Target == id {
			removed = append(removed, *e)
			delete(g.edges, eid)
			delete(g.edgeKeys, e.Key())
			continue
		}
		kept = append(kept, eid)
	}
	g.edgeOrder = kept

	delete(g.nodes, id)
	g.nodeOrder = removeID(g.nodeOrder, id)
	return removed, true
}

// AddEdge connects source to target and returns the new edge id. Handles
// are stored in canonical form, so aliases of one port pair count as the
// same connection. It rejects self-loops, unknown endpoints and duplicate
// connection tuples without modifying the graph.
func (g *Graph) AddEdge(source, target, sourceHandle, targetHandle string) (string, error) {
	e := flow.Edge{Source: source, Target: target, SourceHandle: sourceHandle, TargetHandle: targetHandle}
	if err := g.checkEdge(&e); err != nil {
		return "", err
	}
	e.ID = g.newID("edge")
	for g.hasEdge(e.ID) {
		e.ID = g.newID("edge")
	}
	g.insertEdge(&e)
	return e.ID, nil
}

// InsertEdge adds an edge with a caller-chosen id, applying the same
// checks as AddEdge.
func (g *Graph) InsertEdge(e flow.Edge) error {
	if err := g.checkEdge(&e); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = g.newID("edge")
	}
	if g.hasEdge(e.ID) {
		return fmt.Errorf("%w: id %q", ErrDuplicateEdge, e.ID)
	}
	g.insertEdge(&e)
	return nil
}

// checkEdge validates e and rewrites its handles to canonical form.
func (g *Graph) checkEdge(e *flow.Edge) error {
	if e.Source == e.Target {
		return fmt.Errorf("%w: %s", ErrSelfLoop, e.Source)
	}
	src, ok := g.nodes[e.Source]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, e.Source)
	}
	tgt, ok := g.nodes[e.Target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, e.Target)
	}
	e.SourceHandle = flow.NormalizeHandle(src.Kind, flow.DirectionOutput, e.SourceHandle)
	e.TargetHandle = flow.NormalizeHandle(tgt.Kind, flow.DirectionInput, e.TargetHandle)
	if existing, ok := g.edgeKeys[e.Key()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, existing)
	}
	return nil
}

func (g *Graph) insertEdge(e *flow.Edge) {
	g.edges[e.ID] = e
	g.edgeKeys[e.Key()] = e.ID
	g.edgeOrder = append(g.edgeOrder, e.ID)
}

func (g *Graph) hasEdge(id string) bool {
	_, ok := g.edges[id]
	return ok
}

// RemoveEdge deletes an edge. Unknown ids are ignored.
func (g *Graph) RemoveEdge(id string) bool {
	e, ok := g.edges[id]
	if !ok {
		return false
	}
	delete(g.edges, id)
	delete(g.edgeKeys, e.Key())
	g.edgeOrder = removeID(g.edgeOrder, id)
	return true
}

// Edge returns a copy of the edge with the given id.
func (g *Graph) Edge(id string) (flow.Edge, bool) {
	e, ok := g.edges[id]
	if !ok {
		return flow.Edge{}, false
	}
	return *e, true
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []flow.Edge {
	out := make([]flow.Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, *g.edges[id])
	}
	return out
}

// Children returns the targets of edges leaving id, in edge order.
func (g *Graph) Children(id string) []string {
	var out []string
	for _, eid := range g.edgeOrder {
		if e := g.edges[eid]; e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Roots returns the nodes with no incoming edge, in insertion order.
func (g *Graph) Roots() []string {
	hasParent := make(map[string]bool, len(g.nodes))
	for _, e := range g.edges {
		hasParent[e.Target] = true
	}
	var roots []string
	for _, id := range g.nodeOrder {
		if !hasParent[id] {
			roots = append(roots, id)
		}
	}
	return roots
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func copyConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	cp := make(map[string]any, len(cfg))
	for k, v := range cfg {
		cp[k] = v
	}
	return cp
}
