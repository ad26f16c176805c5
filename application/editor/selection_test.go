package editor

import (
	"testing"

	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"

	"github.com/stretchr/testify/assert"
)

func TestSelection_Click(t *testing.T) {
	a := valueobjects.NewNodeID()
	b := valueobjects.NewNodeID()

	tests := []struct {
		name   string
		start  []valueobjects.NodeID
		click  valueobjects.NodeID
		shift  bool
		expect []valueobjects.NodeID
	}{
		{name: "plain click replaces", start: []valueobjects.NodeID{a}, click: b, expect: []valueobjects.NodeID{b}},
		{name: "plain click on selected keeps group", start: []valueobjects.NodeID{a, b}, click: b, expect: []valueobjects.NodeID{a, b}},
		{name: "shift adds", start: []valueobjects.NodeID{a}, click: b, shift: true, expect: []valueobjects.NodeID{a, b}},
		{name: "shift removes", start: []valueobjects.NodeID{a, b}, click: a, shift: true, expect: []valueobjects.NodeID{b}},
		{name: "click on empty selection", click: a, expect: []valueobjects.NodeID{a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection()
			s.Set(tt.start...)
			s.Click(tt.click, tt.shift)
			assert.Equal(t, tt.expect, s.IDs())
		})
	}
}

func TestSelection_SelectInRectIgnoresFootprint(t *testing.T) {
	// The card of this node overlaps the band but its anchor does not.
	near, _ := entities.NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, "near", geometry.Pt(120, 50))
	in, _ := entities.NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, "in", geometry.Pt(10, 10))

	s := NewSelection()
	added := s.SelectInRect(geometry.NewRect(geometry.Pt(100, 100), geometry.Pt(0, 0)), []entities.Node{near, in})

	assert.Equal(t, 1, added)
	assert.True(t, s.Contains(in.ID()))
	assert.False(t, s.Contains(near.ID()))

	assert.Zero(t, s.SelectInRect(geometry.NewRect(geometry.Pt(0, 0), geometry.Pt(100, 100)), []entities.Node{in}))
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster()
	l := &countingListener{}
	sub := b.Subscribe(l)

	b.Move(PointerEvent{})
	b.Up(PointerEvent{})
	sub.Unsubscribe()
	sub.Unsubscribe()
	b.Move(PointerEvent{})

	assert.Equal(t, 1, l.moves)
	assert.Equal(t, 1, l.ups)
	assert.Zero(t, b.Len())
}

type countingListener struct {
	moves int
	ups   int
}

func (c *countingListener) PointerMove(PointerEvent) { c.moves++ }
func (c *countingListener) PointerUp(PointerEvent)   { c.ups++ }
