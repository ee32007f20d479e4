package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soochol/flowboard/internal/flow"
	"github.com/soochol/flowboard/internal/geometry"
	"github.com/soochol/flowboard/internal/graph"
	"github.com/soochol/flowboard/internal/viewport"
)

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

type fixture struct {
	g      *graph.Graph
	v      *viewport.Viewport
	c      *Controller
	events []Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{g: graph.New(), v: viewport.New(800, 600)}
	bus := NewEventBus()
	bus.Subscribe(func(e Event) { f.events = append(f.events, e) })
	f.c = NewController("test", f.g, f.v, bus)
	return f
}

func (f *fixture) add(t *testing.T, kind flow.NodeKind, x, y float64) string {
	t.Helper()
	id, err := f.c.AddNode(kind, pt(x, y))
	require.NoError(t, err)
	return id
}

func (f *fixture) port(id string, dir flow.Direction, handle string) geometry.Point {
	n, _ := f.g.Node(id)
	return f.v.WorldToScreen(flow.ResolvePort(&n, dir, handle))
}

func (f *fixture) count(typ EventType) int {
	n := 0
	for _, e := range f.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestScenarioA_ConnectOutputToInput(t *testing.T) {
	f := newFixture(t)
	n1 := f.add(t, flow.NodeKindTrigger, 100, 100)
	n2 := f.add(t, flow.NodeKindAction, 300, 250)

	f.c.PointerDown(f.port(n1, flow.DirectionOutput, ""))
	require.Equal(t, ModeDrawingConnection, f.c.State().Mode)
	f.c.PointerMove(pt(350, 240))
	f.c.PointerMove(f.port(n2, flow.DirectionInput, ""))
	require.NotNil(t, f.c.State().HoveredPort)
	assert.Equal(t, n2, f.c.State().HoveredPort.NodeID)
	assert.Zero(t, f.g.EdgeCount(), "preview must not be committed")
	f.c.PointerUp(f.port(n2, flow.DirectionInput, ""))

	edges := f.g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, n1, edges[0].Source)
	assert.Equal(t, n2, edges[0].Target)
	assert.Empty(t, edges[0].SourceHandle)
	assert.Equal(t, ModeIdle, f.c.State().Mode)
	assert.Equal(t, 1, f.count(EventEdgeAdded))
}

func TestScenarioB_DropOnEmptyCanvasCancels(t *testing.T) {
	f := newFixture(t)
	n1 := f.add(t, flow.NodeKindTrigger, 100, 100)
	f.add(t, flow.NodeKindAction, 300, 250)

	f.c.PointerDown(f.port(n1, flow.DirectionOutput, ""))
	f.c.PointerMove(pt(500, 500))
	f.c.PointerUp(pt(500, 500))

	assert.Zero(t, f.g.EdgeCount())
	assert.Equal(t, ModeIdle, f.c.State().Mode)
}

func TestScenarioC_ConditionBranchHandle(t *testing.T) {
	f := newFixture(t)
	c1 := f.add(t, flow.NodeKindCondition, 100, 100)
	n2 := f.add(t, flow.NodeKindAction, 300, 300)

	f.c.PointerDown(f.port(c1, flow.DirectionOutput, flow.HandleTrue))
	require.Equal(t, flow.HandleTrue, f.c.State().SourceHandle)
	f.c.PointerUp(f.port(n2, flow.DirectionInput, ""))

	edges := f.g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, flow.HandleTrue, edges[0].SourceHandle)
	assert.Equal(t, n2, edges[0].Target)
}

func TestConnect_SelfAndDuplicateDiscarded(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, flow.NodeKindAction, 0, 0)
	b := f.add(t, flow.NodeKindAction, 0, 200)

	// Releasing on the source's own input port does nothing.
	f.c.PointerDown(f.port(a, flow.DirectionOutput, ""))
	f.c.PointerUp(f.port(a, flow.DirectionInput, ""))
	assert.Zero(t, f.g.EdgeCount())

	for i := 0; i < 2; i++ {
		f.c.PointerDown(f.port(a, flow.DirectionOutput, ""))
		f.c.PointerUp(f.port(b, flow.DirectionInput, ""))
	}
	assert.Equal(t, 1, f.g.EdgeCount())
	assert.Equal(t, 1, f.count(EventEdgeRejected))
	assert.Equal(t, ModeIdle, f.c.State().Mode)
}

func TestInputPortCannotStartConnection(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, flow.NodeKindAction, 0, 0)
	f.c.PointerDown(f.port(a, flow.DirectionInput, ""))
	assert.Equal(t, ModeIdle, f.c.State().Mode)
}

func TestDragNode_CommitsEveryMove(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, flow.NodeKindAction, 100, 100)

	f.c.PointerDown(pt(150, 120)) // grab 50,20 inside the node
	require.Equal(t, ModeDraggingNode, f.c.State().Mode)
	assert.Equal(t, a, f.c.SelectedNode())

	f.c.PointerMove(pt(160, 130))
	n, _ := f.g.Node(a)
	assert.Equal(t, pt(110, 110), n.Position)

	f.c.PointerMove(pt(250, 220))
	n, _ = f.g.Node(a)
	assert.Equal(t, pt(200, 200), n.Position)
	assert.Equal(t, 2, f.count(EventNodeMoved))

	f.c.PointerUp(pt(250, 220))
	assert.Equal(t, ModeIdle, f.c.State().Mode)
}

func TestDragNode_RespectsZoom(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, flow.NodeKindAction, 100, 100)
	f.v.Zoom = 2

	f.c.PointerDown(pt(220, 220)) // world 110,110
	f.c.PointerMove(pt(260, 240)) // world 130,120
	n, _ := f.g.Node(a)
	assert.Equal(t, pt(120, 110), n.Position)
}

func TestPanning_UsesRawScreenDelta(t *testing.T) {
	f := newFixture(t)
	f.v.Zoom = 2

	f.c.PointerDown(pt(10, 10))
	require.Equal(t, ModePanning, f.c.State().Mode)
	f.c.PointerMove(pt(40, 30))
	f.c.PointerMove(pt(50, 50))
	assert.Equal(t, pt(40, 40), f.v.Offset)
	// The grabbed world point stays under the pointer.
	assert.Equal(t, pt(5, 5), f.c.State().PointerWorld)
	f.c.PointerUp(pt(50, 50))
	assert.Equal(t, ModeIdle, f.c.State().Mode)
}

func TestIdleMoveIsNoop(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, flow.NodeKindAction, 0, 0)
	before := len(f.events)
	f.c.PointerMove(pt(50, 50))
	f.c.PointerMove(pt(500, 500))
	assert.Equal(t, before, len(f.events))
	assert.Equal(t, geometry.Point{}, f.v.Offset)
	n, _ := f.g.Node(a)
	assert.Equal(t, pt(0, 0), n.Position)
}

func TestPointerUpAlwaysReturnsToIdle(t *testing.T) {
	setups := map[string]func(f *fixture, a, b string){
		"idle":     func(f *fixture, a, b string) {},
		"dragging": func(f *fixture, a, b string) { f.c.PointerDown(pt(50, 40)) },
		"drawing": func(f *fixture, a, b string) {
			f.c.PointerDown(f.port(a, flow.DirectionOutput, ""))
		},
		"panning": func(f *fixture, a, b string) { f.c.PointerDown(pt(700, 20)) },
		"drawing source removed": func(f *fixture, a, b string) {
			f.c.PointerDown(f.port(a, flow.DirectionOutput, ""))
			f.c.RemoveNode(a)
		},
	}
	ups := []geometry.Point{pt(0, 0), pt(500, 500), pt(100, 200), pt(-50, 9000)}
	for name, setup := range setups {
		for _, up := range ups {
			f := newFixture(t)
			a := f.add(t, flow.NodeKindAction, 0, 0)
			b := f.add(t, flow.NodeKindAction, 0, 200)
			setup(f, a, b)
			f.c.PointerMove(pt(300, 300))
			f.c.PointerUp(up)
			st := f.c.State()
			assert.Equal(t, ModeIdle, st.Mode, "%s released at %+v", name, up)
			assert.Empty(t, st.NodeID)
			assert.Nil(t, st.HoveredPort)
		}
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, flow.NodeKindTrigger, 0, 0)
	f.c.PointerDown(f.port(a, flow.DirectionOutput, ""))
	f.c.Cancel()
	assert.Equal(t, ModeIdle, f.c.State().Mode)
	_, ok := f.c.Preview()
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, flow.NodeKindTrigger, 100, 100)

	_, ok := f.c.Preview()
	assert.False(t, ok)

	f.c.PointerDown(f.port(a, flow.DirectionOutput, ""))
	f.c.PointerMove(pt(400, 400))
	p, ok := f.c.Preview()
	require.True(t, ok)
	assert.Equal(t, geometry.SmoothPath(200, 200, 400, 400), p)
}

func TestEdgeSelectionAndDelete(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, flow.NodeKindTrigger, 0, 0)
	b := f.add(t, flow.NodeKindAction, 0, 300)
	id, err := f.c.Connect(a, b, "", "")
	require.NoError(t, err)

	// Vertical edge from (100,100) to (100,300); click its middle.
	f.c.PointerDown(pt(102, 200))
	assert.Equal(t, ModeIdle, f.c.State().Mode)
	assert.Equal(t, id, f.c.SelectedConnection())
	f.c.PointerUp(pt(102, 200))

	// Background click clears it.
	f.c.PointerDown(pt(600, 50))
	assert.Empty(t, f.c.SelectedConnection())
	f.c.PointerUp(pt(600, 50))

	f.c.PointerDown(pt(102, 200))
	f.c.PointerUp(pt(102, 200))
	require.True(t, f.c.DeleteSelection())
	assert.Zero(t, f.g.EdgeCount())
	assert.Empty(t, f.c.SelectedConnection())
}

func TestDeleteSelectedNodeCascades(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, flow.NodeKindTrigger, 0, 0)
	b := f.add(t, flow.NodeKindAction, 0, 300)
	f.c.Connect(a, b, "", "")

	f.c.PointerDown(pt(50, 340)) // body of b
	f.c.PointerUp(pt(50, 340))
	require.Equal(t, b, f.c.SelectedNode())
	require.True(t, f.c.DeleteSelection())

	assert.Equal(t, 1, f.g.NodeCount())
	assert.Zero(t, f.g.EdgeCount())
	assert.Equal(t, 1, f.count(EventNodeRemoved))
	assert.Equal(t, 1, f.count(EventEdgeRemoved))
	assert.False(t, f.c.DeleteSelection())
}

func TestWheelZoomKeepsPointerAnchored(t *testing.T) {
	f := newFixture(t)
	f.v.Offset = pt(200, 150)
	f.c.Wheel(1, pt(400, 300))
	assert.Equal(t, 2.0, f.v.Zoom)
	assert.True(t, f.v.ScreenToWorld(pt(400, 300)).ApproxEqual(pt(200, 150), 1e-9))
}

func TestHitTest_Priority(t *testing.T) {
	g := graph.New()
	a, _ := g.AddNode(flow.NodeKindCondition, pt(0, 0))

	tests := []struct {
		name string
		at   geometry.Point
		want Target
	}{
		{"true port", pt(50, 80), Target{Kind: TargetPort, NodeID: a, Port: flow.PortRef{NodeID: a, Direction: flow.DirectionOutput, Handle: flow.HandleTrue}}},
		{"false port", pt(150, 78), Target{Kind: TargetPort, NodeID: a, Port: flow.PortRef{NodeID: a, Direction: flow.DirectionOutput, Handle: flow.HandleFalse}}},
		{"input port", pt(100, 3), Target{Kind: TargetPort, NodeID: a, Port: flow.PortRef{NodeID: a, Direction: flow.DirectionInput}}},
		{"body", pt(20, 40), Target{Kind: TargetNode, NodeID: a}},
		{"background", pt(500, 500), Target{Kind: TargetBackground}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HitTest(g, tt.at, 1))
		})
	}
}
