package canvas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/interaction"
	"github.com/soochol/flowboard/internal/viewport"
)

func sampleDef() *flow.WorkflowDefinition {
	return &flow.WorkflowDefinition{
		Name:    "onboarding",
		Version: 2,
		Nodes: []flow.Node{
			{ID: "t1", Kind: flow.NodeKindTrigger, Position: geometry.Point{X: 100, Y: 100}},
			{ID: "c1", Kind: flow.NodeKindCondition, Position: geometry.Point{X: 100, Y: 300}},
		},
		Edges: []flow.Edge{{ID: "e1", Source: "t1", Target: "c1"}},
	}
}

func TestCanvas_Snapshot(t *testing.T) {
	c, err := New(sampleDef(), DefaultOptions(), nil)
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, "onboarding", snap.Name)
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, geometry.Size{Width: 200, Height: 100}, snap.Nodes[0].Size)
	assert.Len(t, snap.Nodes[0].Ports, 2)
	assert.Len(t, snap.Nodes[1].Ports, 3, "condition has input, true and false")
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, "M 200 200 C 200 230, 200 270, 200 300", snap.Edges[0].Path.D)
	assert.Equal(t, interaction.ModeIdle, snap.Interaction.Mode)
	assert.Nil(t, snap.Preview)
	assert.Len(t, snap.MiniMap.Nodes, 2)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"d":"M 200 200 C 200 230, 200 270, 200 300"`)
}

func TestCanvas_PreviewInSnapshot(t *testing.T) {
	c, err := New(sampleDef(), DefaultOptions(), nil)
	require.NoError(t, err)
	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		ctrl.PointerDown(geometry.Point{X: 150, Y: 380}) // c1 true port
		ctrl.PointerMove(geometry.Point{X: 150, Y: 500})
	})
	snap := c.Snapshot()
	require.NotNil(t, snap.Preview)
	assert.Equal(t, interaction.ModeDrawingConnection, snap.Interaction.Mode)
	assert.Equal(t, flow.HandleTrue, snap.Interaction.SourceHandle)
	assert.Equal(t, 1, len(snap.Edges))
}

func TestCanvas_DirtyTracking(t *testing.T) {
	c, err := New(sampleDef(), DefaultOptions(), nil)
	require.NoError(t, err)
	assert.False(t, c.Dirty())

	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		ctrl.Wheel(0.5, geometry.Point{})
	})
	assert.False(t, c.Dirty(), "viewport changes are not graph edits")

	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		_, err := ctrl.AddNode(flow.NodeKindDelay, geometry.Point{X: 400, Y: 400})
		require.NoError(t, err)
	})
	assert.True(t, c.Dirty())
	assert.True(t, c.Snapshot().Dirty)

	def, rev := c.Definition()
	assert.True(t, c.Dirty(), "exporting does not mark the canvas saved")
	c.MarkSaved(rev)
	assert.False(t, c.Dirty())
	assert.Equal(t, "onboarding", def.Name)
	assert.Equal(t, 2, def.Version)
	assert.Len(t, def.Nodes, 3)
	assert.Len(t, def.Edges, 1)
}

func TestCanvas_MarkSavedKeepsLaterEdits(t *testing.T) {
	c, err := New(sampleDef(), DefaultOptions(), nil)
	require.NoError(t, err)
	opened := c.UpdatedAt()

	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) { ctrl.RemoveEdge("e1") })
	_, rev := c.Definition()
	c.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) { ctrl.RemoveNode("c1") })

	c.MarkSaved(rev)
	assert.True(t, c.Dirty(), "edit after export is still unsaved")
	assert.False(t, c.UpdatedAt().Before(opened))
}

func TestCanvas_RejectsInvalidDefinition(t *testing.T) {
	def := sampleDef()
	def.Edges = append(def.Edges, flow.Edge{ID: "e2", Source: "t1", Target: "missing"})
	_, err := New(def, DefaultOptions(), nil)
	assert.Error(t, err)
}

func TestManager(t *testing.T) {
	m := NewManager(DefaultOptions())
	a, err := m.Open(sampleDef())
	require.NoError(t, err)
	b, err := m.Open(sampleDef())
	require.NoError(t, err)
	assert.Same(t, a, b)

	var seen []string
	m.Bus().Subscribe(func(e interaction.Event) { seen = append(seen, e.Canvas) })
	a.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) { ctrl.RemoveEdge("e1") })
	assert.Equal(t, []string{"onboarding"}, seen)

	assert.Equal(t, []string{"onboarding"}, m.Names())
	assert.True(t, m.Close("onboarding"))
	_, err = m.Get("onboarding")
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.False(t, m.Close("onboarding"))
}

func TestManager_CloseDetachesCanvas(t *testing.T) {
	m := NewManager(DefaultOptions())
	old, err := m.Open(sampleDef())
	require.NoError(t, err)
	_, rev := old.Definition()
	old.MarkSaved(rev)
	require.True(t, m.Close("onboarding"))

	reopened, err := m.Open(sampleDef())
	require.NoError(t, err)
	assert.NotSame(t, old, reopened)
	reopened.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) {
		_, err := ctrl.AddNode(flow.NodeKindAction, geometry.Point{X: 500, Y: 500})
		require.NoError(t, err)
	})

	assert.True(t, reopened.Dirty())
	assert.False(t, old.Dirty(), "closed canvas must not see edits from its successor")

	_, rev = reopened.Definition()
	reopened.MarkSaved(rev)
	require.True(t, m.Close("onboarding"))
	reopened.Do(func(ctrl *interaction.Controller, _ *viewport.Viewport) { ctrl.RemoveEdge("e1") })
	assert.False(t, reopened.Dirty(), "detached canvas stops tracking")
}

func TestCanvas_MiniMapClickCentersView(t *testing.T) {
	c, err := New(sampleDef(), DefaultOptions(), nil)
	require.NoError(t, err)

	var events []interaction.Event
	c.Bus().Subscribe(func(e interaction.Event) { events = append(events, e) })

	// Bounds are (0,0)-(400,480); the 200x150 overview scales by 0.5 and
	// 0.3125, so its center is world (200,240).
	v := c.MiniMapClick(geometry.Point{X: 100, Y: 75})
	assert.Equal(t, geometry.Point{X: 440, Y: 160}, v.Offset)
	assert.Equal(t, geometry.Point{X: 640, Y: 400}, v.WorldToScreen(geometry.Point{X: 200, Y: 240}))
	require.Len(t, events, 1)
	assert.Equal(t, interaction.EventViewport, events[0].Type)
	assert.False(t, c.Dirty())
}

func TestCanvas_ChangeViewport(t *testing.T) {
	c, err := New(sampleDef(), DefaultOptions(), nil)
	require.NoError(t, err)
	v := c.ChangeViewport(func(v *viewport.Viewport) { v.ZoomIn() })
	assert.InDelta(t, 1.1, v.Zoom, 1e-9)
	assert.Equal(t, v, c.Snapshot().Viewport)
}
