package editor

import (
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
	"strategymap/domain/services"
)

// NodeView is a node as a renderer draws it, in screen space
type NodeView struct {
	ID       string                `json:"id"`
	Type     valueobjects.NodeType `json:"type"`
	Label    string                `json:"label"`
	Anchor   geometry.Point        `json:"anchor"`
	Bounds   geometry.Rect         `json:"bounds"`
	Selected bool                  `json:"selected"`
}

// EdgeView is a parent→child connector in screen space
type EdgeView struct {
	ParentID string          `json:"parentId"`
	ChildID  string          `json:"childId"`
	Curve    services.Bezier `json:"curve"`
	Path     string          `json:"path"`
}

// Scene is everything a renderer needs for one frame
type Scene struct {
	Viewport geometry.Viewport `json:"viewport"`
	Mode     string            `json:"mode"`
	Nodes    []NodeView        `json:"nodes"`
	Edges    []EdgeView        `json:"edges"`
	Band     *geometry.Rect    `json:"band,omitempty"`
}

// Scene projects the current state into screen space
func (e *Editor) Scene() Scene {
	vp := *e.viewport
	cfg := e.store.Config()
	nodes := e.store.All()

	scene := Scene{
		Viewport: vp,
		Mode:     e.mode.String(),
		Nodes:    make([]NodeView, 0, len(nodes)),
	}

	// Card size scales with the viewport like everything else.
	w := cfg.NodeWidth * vp.Scale
	h := cfg.NodeHeight * vp.Scale

	anchors := make(map[valueobjects.NodeID]geometry.Point, len(nodes))
	for _, n := range nodes {
		anchor := vp.ToScreen(n.Position())
		anchors[n.ID()] = anchor
		scene.Nodes = append(scene.Nodes, NodeView{
			ID:       n.ID().String(),
			Type:     n.Type(),
			Label:    n.Label(),
			Anchor:   anchor,
			Bounds:   services.Footprint(anchor, w, h),
			Selected: e.selection.Contains(n.ID()),
		})
	}

	for _, n := range nodes {
		if !n.HasParent() {
			continue
		}
		parent, ok := anchors[n.ParentID()]
		if !ok {
			continue
		}
		from, to := services.EdgeEndpoints(parent, anchors[n.ID()], w)
		curve := services.EdgeCurve(from, to)
		scene.Edges = append(scene.Edges, EdgeView{
			ParentID: n.ParentID().String(),
			ChildID:  n.ID().String(),
			Curve:    curve,
			Path:     curve.SVGPath(),
		})
	}

	if s, ok := e.drag.State().(Selecting); ok {
		band := geometry.NewRect(vp.ToScreen(s.Start), vp.ToScreen(s.Current))
		scene.Band = &band
	}
	return scene
}
