package editor

import (
	"testing"

	"go.uber.org/zap"

	"strategymap/domain/config"
	"strategymap/domain/core/aggregates"
	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor(t *testing.T, nodes ...entities.Node) (*Editor, *Broadcaster) {
	t.Helper()
	store := aggregates.NewStrategyMap("client-1", config.DefaultDomainConfig(), nil)
	if len(nodes) > 0 {
		require.NoError(t, store.Replace(nodes))
	}
	source := NewBroadcaster()
	return NewEditor(store, source, geometry.NewViewport(800, 600), zap.NewNop()), source
}

func mainAt(t *testing.T, x, y float64) entities.Node {
	t.Helper()
	n, err := entities.NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, "m", geometry.Pt(x, y))
	require.NoError(t, err)
	return n
}

func TestDrag_DeltaIsIndependentOfSampling(t *testing.T) {
	for _, step := range []float64{1, 10} {
		node := mainAt(t, 10, 10)
		ed, source := newTestEditor(t, node)

		ed.PointerDown(PointerEvent{Screen: geometry.Pt(10, 10), Target: node.ID()})
		require.IsType(t, DraggingNodes{}, ed.DragState())
		assert.Equal(t, 1, source.Len())

		for x := 10 + step; x <= 60; x += step {
			source.Move(PointerEvent{Screen: geometry.Pt(x, 10)})
		}
		source.Up(PointerEvent{Screen: geometry.Pt(60, 10)})

		got, ok := ed.Store().Get(node.ID())
		require.True(t, ok)
		assert.Equal(t, geometry.Pt(60, 10), got.Position(), "step %v", step)
		assert.IsType(t, Idle{}, ed.DragState())
		assert.Zero(t, source.Len())
	}
}

func TestDrag_ScaledDelta(t *testing.T) {
	node := mainAt(t, 10, 10)
	ed, source := newTestEditor(t, node)
	vp := ed.Viewport()
	vp.Scale = 2
	ed.SetViewport(vp)

	ed.PointerDown(PointerEvent{Screen: geometry.Pt(20, 20), Target: node.ID()})
	source.Move(PointerEvent{Screen: geometry.Pt(120, 20)})
	source.Up(PointerEvent{Screen: geometry.Pt(120, 20)})

	got, _ := ed.Store().Get(node.ID())
	assert.Equal(t, geometry.Pt(60, 10), got.Position())
}

func TestDrag_GroupMoveFromSelectedMember(t *testing.T) {
	a := mainAt(t, 0, 0)
	b := mainAt(t, 100, 0)
	ed, source := newTestEditor(t, a, b)
	ed.Selection().Set(a.ID(), b.ID())

	ed.PointerDown(PointerEvent{Screen: geometry.Pt(100, 0), Target: b.ID()})
	source.Move(PointerEvent{Screen: geometry.Pt(110, 5)})
	source.Up(PointerEvent{Screen: geometry.Pt(110, 5)})

	gotA, _ := ed.Store().Get(a.ID())
	gotB, _ := ed.Store().Get(b.ID())
	assert.Equal(t, geometry.Pt(10, 5), gotA.Position())
	assert.Equal(t, geometry.Pt(110, 5), gotB.Position())
	assert.Equal(t, 2, ed.Selection().Len())
}

func TestDrag_PlainClickReplacesSelection(t *testing.T) {
	a := mainAt(t, 0, 0)
	b := mainAt(t, 100, 0)
	ed, source := newTestEditor(t, a, b)
	ed.Selection().Set(a.ID())

	ed.PointerDown(PointerEvent{Screen: geometry.Pt(100, 0), Target: b.ID()})
	source.Up(PointerEvent{Screen: geometry.Pt(100, 0)})

	assert.Equal(t, []valueobjects.NodeID{b.ID()}, ed.Selection().IDs())
}

func TestPanning(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		button Button
		onNode bool
	}{
		{name: "pan mode on background", mode: ModePan, button: ButtonPrimary},
		{name: "pan mode on node", mode: ModePan, button: ButtonPrimary, onNode: true},
		{name: "middle button on background", mode: ModeSelect, button: ButtonMiddle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := mainAt(t, 0, 0)
			ed, source := newTestEditor(t, node)
			ed.SetMode(tt.mode)

			ev := PointerEvent{Screen: geometry.Pt(5, 5), Button: tt.button}
			if tt.onNode {
				ev.Target = node.ID()
			}
			ed.PointerDown(ev)
			require.IsType(t, Panning{}, ed.DragState())

			source.Move(PointerEvent{Screen: geometry.Pt(35, 45)})
			source.Up(PointerEvent{Screen: geometry.Pt(35, 45)})

			assert.Equal(t, geometry.Pt(30, 40), ed.Viewport().Pan)
			got, _ := ed.Store().Get(node.ID())
			assert.Equal(t, geometry.Pt(0, 0), got.Position())
		})
	}
}

func TestRubberBand_PointOnlyStrict(t *testing.T) {
	inside := mainAt(t, 50, 50)
	outside := mainAt(t, 150, 150)
	boundary := mainAt(t, 100, 100)
	ed, source := newTestEditor(t, inside, outside, boundary)

	ed.PointerDown(PointerEvent{Screen: geometry.Pt(0, 0)})
	require.IsType(t, Selecting{}, ed.DragState())

	source.Move(PointerEvent{Screen: geometry.Pt(60, 60)})
	scene := ed.Scene()
	require.NotNil(t, scene.Band)
	assert.Equal(t, geometry.Pt(60, 60), scene.Band.Max)

	source.Move(PointerEvent{Screen: geometry.Pt(100, 100)})
	source.Up(PointerEvent{Screen: geometry.Pt(100, 100)})

	assert.Equal(t, []valueobjects.NodeID{inside.ID()}, ed.Selection().IDs())
	assert.Nil(t, ed.Scene().Band)
}

func TestRubberBand_ReversedAndPanned(t *testing.T) {
	inside := mainAt(t, 50, 50)
	ed, source := newTestEditor(t, inside)
	ed.SetViewport(geometry.Viewport{Pan: geometry.Pt(100, 100), Scale: 1, Width: 800, Height: 600})

	// Screen (200,200) is world (100,100); dragging towards the origin.
	ed.PointerDown(PointerEvent{Screen: geometry.Pt(200, 200)})
	source.Up(PointerEvent{Screen: geometry.Pt(100, 100)})

	assert.True(t, ed.Selection().Contains(inside.ID()))
}

func TestRubberBand_BackgroundClickClears(t *testing.T) {
	a := mainAt(t, 500, 500)
	ed, source := newTestEditor(t, a)

	ed.Selection().Set(a.ID())
	ed.PointerDown(PointerEvent{Screen: geometry.Pt(0, 0), Shift: true})
	source.Up(PointerEvent{Screen: geometry.Pt(1, 1)})
	assert.True(t, ed.Selection().Contains(a.ID()), "shift keeps the selection")

	ed.PointerDown(PointerEvent{Screen: geometry.Pt(0, 0)})
	source.Up(PointerEvent{Screen: geometry.Pt(1, 1)})
	assert.Zero(t, ed.Selection().Len())
}

func TestDeleteScenario(t *testing.T) {
	ed, source := newTestEditor(t)

	a, ok, err := ed.AddRoot()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ed.Viewport().Center(), a.Position())

	b, ok, err := ed.AddChild(a.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, valueobjects.NodeTypeSecondary, b.Type())

	c, ok, err := ed.AddChild(b.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, valueobjects.NodeTypePost, c.Type())

	ed.PointerDown(PointerEvent{Screen: ed.Viewport().ToScreen(a.Position()), Target: a.ID()})
	source.Up(PointerEvent{Screen: ed.Viewport().ToScreen(a.Position())})
	require.Equal(t, []valueobjects.NodeID{a.ID()}, ed.Selection().IDs())

	assert.False(t, ed.KeyDown("Delete", true), "ignored while typing")
	assert.Equal(t, 3, ed.Store().Len())

	assert.True(t, ed.KeyDown("Delete", false))
	assert.Zero(t, ed.Store().Len())
	assert.Zero(t, ed.Selection().Len())
	assert.False(t, ed.KeyDown("Backspace", false))
}

func TestEditor_CapacityIsSilent(t *testing.T) {
	ed, _ := newTestEditor(t)
	for i := 0; i < 6; i++ {
		_, ok, err := ed.AddRoot()
		require.NoError(t, err)
		require.True(t, ok)
	}

	_, ok, err := ed.AddRoot()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 6, ed.Store().Len())

	root := ed.Store().All()[0]
	sec, _, _ := ed.AddChild(root.ID())
	p, _, _ := ed.AddChild(sec.ID())
	_, ok, err = ed.AddChild(p.ID())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestEditor_HitTestAndScene(t *testing.T) {
	root := mainAt(t, 100, 100)
	ed, _ := newTestEditor(t, root)
	child, _, err := ed.AddChild(root.ID())
	require.NoError(t, err)

	id, ok := ed.HitTest(geometry.Pt(150, 120))
	require.True(t, ok)
	assert.Equal(t, root.ID(), id)

	_, ok = ed.HitTest(geometry.Pt(-500, -500))
	assert.False(t, ok)

	ev := ed.Resolve(PointerEvent{Screen: child.Position()})
	assert.Equal(t, child.ID(), ev.Target)

	ed.Selection().Set(child.ID())
	scene := ed.Scene()
	require.Len(t, scene.Nodes, 2)
	require.Len(t, scene.Edges, 1)
	assert.False(t, scene.Nodes[0].Selected)
	assert.True(t, scene.Nodes[1].Selected)
	assert.Equal(t, root.ID().String(), scene.Edges[0].ParentID)
	assert.Equal(t, geometry.Pt(200, 100), scene.Edges[0].Curve.P0)
	assert.Contains(t, scene.Edges[0].Path, "M 200 100 C")
	assert.Equal(t, "select", scene.Mode)
}

func TestEditor_SetModeCancelsGesture(t *testing.T) {
	node := mainAt(t, 0, 0)
	ed, source := newTestEditor(t, node)

	ed.PointerDown(PointerEvent{Screen: geometry.Pt(0, 0), Target: node.ID()})
	ed.SetMode(ModePan)

	assert.IsType(t, Idle{}, ed.DragState())
	assert.Zero(t, source.Len())
	assert.Equal(t, ModePan, ed.Mode())
}
