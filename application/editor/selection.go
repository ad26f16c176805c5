package editor

import (
	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
)

// Selection is the ordered set of selected node ids
type Selection struct {
	ids   map[valueobjects.NodeID]struct{}
	order []valueobjects.NodeID
}

// NewSelection creates an empty selection
func NewSelection() *Selection {
	return &Selection{ids: make(map[valueobjects.NodeID]struct{})}
}

// Click applies a click on a node. A shift-click toggles membership. A plain
// click on an unselected node replaces the selection; on a selected node it
// keeps the selection so the whole group can be dragged.
func (s *Selection) Click(id valueobjects.NodeID, shift bool) {
	if shift {
		if s.Contains(id) {
			s.Remove(id)
		} else {
			s.add(id)
		}
		return
	}
	if s.Contains(id) {
		return
	}
	s.Clear()
	s.add(id)
}

// SelectInRect adds every node whose anchor point lies strictly inside rect.
// The rendered footprint is ignored. Returns how many nodes were added.
func (s *Selection) SelectInRect(rect geometry.Rect, nodes []entities.Node) int {
	added := 0
	for _, n := range nodes {
		if !rect.ContainsStrict(n.Position()) || s.Contains(n.ID()) {
			continue
		}
		s.add(n.ID())
		added++
	}
	return added
}

// Set replaces the selection with ids
func (s *Selection) Set(ids ...valueobjects.NodeID) {
	s.Clear()
	for _, id := range ids {
		if !s.Contains(id) {
			s.add(id)
		}
	}
}

// Remove drops ids from the selection
func (s *Selection) Remove(ids ...valueobjects.NodeID) {
	drop := make(map[valueobjects.NodeID]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			drop[id] = true
			delete(s.ids, id)
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.ids = make(map[valueobjects.NodeID]struct{})
	s.order = nil
}

// Contains reports whether id is selected
func (s *Selection) Contains(id valueobjects.NodeID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected nodes
func (s *Selection) Len() int { return len(s.order) }

// IDs returns the selected ids in selection order
func (s *Selection) IDs() []valueobjects.NodeID {
	out := make([]valueobjects.NodeID, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Selection) add(id valueobjects.NodeID) {
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
}
