// Package canvas binds a graph, a viewport and an interaction controller
// into one editing session per open workflow.
package canvas

import (
	"sync"
	"time"

	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/graph"
	"github.com/soochol/flowboard/internal/interaction"
	"github.com/soochol/flowboard/internal/minimap"
	"github.com/soochol/flowboard/internal/viewport"
)

// Options sizes new canvases.
type Options struct {
	ViewportWidth  float64
	ViewportHeight float64
	MiniMap        geometry.Size
}

// DefaultOptions matches a typical editor pane.
func DefaultOptions() Options {
	return Options{
		ViewportWidth:  1280,
		ViewportHeight: 800,
		MiniMap:        geometry.Size{Width: minimap.DefaultWidth, Height: minimap.DefaultHeight},
	}
}

// Canvas is one editing session. All methods are safe for concurrent
// use; they serialize on the canvas mutex so the controller underneath
// sees a single ordered event stream.
type Canvas struct {
	mu   sync.Mutex
	def  flow.WorkflowDefinition
	opts Options

	graph *graph.Graph
	view  *viewport.Viewport
	ctrl  *interaction.Controller
	bus   *interaction.EventBus

	dirty       bool
	rev         uint64
	updatedAt   time.Time
	unsubscribe func()
}

// New opens a canvas on a definition. The definition's nodes and edges
// are validated and copied; def itself is not retained.
func New(def *flow.WorkflowDefinition, opts Options, bus *interaction.EventBus) (*Canvas, error) {
	g, err := graph.Build(def)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		bus = interaction.NewEventBus()
	}
	meta := *def
	meta.Nodes, meta.Edges = nil, nil

	c := &Canvas{
		def:       meta,
		opts:      opts,
		graph:     g,
		view:      viewport.New(opts.ViewportWidth, opts.ViewportHeight),
		bus:       bus,
		updatedAt: time.Now(),
	}
	c.ctrl = interaction.NewController(def.Name, g, c.view, bus)
	c.unsubscribe = bus.Subscribe(c.markDirty)
	return c, nil
}

func (c *Canvas) markDirty(e interaction.Event) {
	if e.Canvas != c.def.Name {
		return
	}
	switch e.Type {
	case interaction.EventModeChanged, interaction.EventViewport, interaction.EventEdgeRejected:
		return
	}
	// Called from inside locked methods; the flag is only read under mu.
	c.dirty = true
	c.rev++
	c.updatedAt = e.Timestamp
}

// Detach stops the canvas from tracking events on its bus. A detached
// canvas no longer notices edits, including ones made by a newer canvas
// opened under the same name.
func (c *Canvas) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Name returns the workflow name the canvas edits.
func (c *Canvas) Name() string { return c.def.Name }

// Bus returns the event bus the canvas publishes on.
func (c *Canvas) Bus() *interaction.EventBus { return c.bus }

// Do runs fn with exclusive access to the controller.
func (c *Canvas) Do(fn func(ctrl *interaction.Controller, view *viewport.Viewport)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.ctrl, c.view)
}

// Dirty reports whether the graph changed since the last MarkSaved.
func (c *Canvas) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// UpdatedAt is the time of the last graph edit, or of opening.
func (c *Canvas) UpdatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

// Definition exports the current graph as a workflow definition together
// with the edit revision it reflects. Pass rev to MarkSaved once the
// definition is stored.
func (c *Canvas) Definition() (*flow.WorkflowDefinition, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	def := c.def
	c.graph.ExportTo(&def)
	return &def, c.rev
}

// MarkSaved clears the dirty flag unless the graph was edited after rev
// was exported.
func (c *Canvas) MarkSaved(rev uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rev == rev {
		c.dirty = false
	}
}

// SetThumbnail records the rendered thumbnail on the canvas metadata.
func (c *Canvas) SetThumbnail(svg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.def.ThumbnailSVG = svg
}

// Snapshot returns everything a presentation layer needs to draw the
// canvas.
func (c *Canvas) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := buildSnapshot(c.def.Name, c.graph, c.view, c.ctrl, c.opts.MiniMap)
	snap.Dirty, snap.UpdatedAt = c.dirty, c.updatedAt
	return snap
}

// ChangeViewport applies fn to the viewport and announces the result.
func (c *Canvas) ChangeViewport(fn func(v *viewport.Viewport)) viewport.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.view)
	v := *c.view
	c.bus.Publish(interaction.Event{
		Type:    interaction.EventViewport,
		Canvas:  c.def.Name,
		Payload: map[string]any{"zoom": v.Zoom, "x": v.Offset.X, "y": v.Offset.Y},
	})
	return v
}

// MiniMapClick centers the main view on the world point under a click at
// mini, given in overview pixels.
func (c *Canvas) MiniMapClick(mini geometry.Point) viewport.Viewport {
	return c.ChangeViewport(func(v *viewport.Viewport) {
		p := minimap.NewProjector(c.graph.Nodes(), c.opts.MiniMap)
		v.Offset = p.ClickToOffset(mini, v)
	})
}
