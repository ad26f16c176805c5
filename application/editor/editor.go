package editor

import (
	"go.uber.org/zap"

	"strategymap/domain/core/aggregates"
	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
	"strategymap/domain/services"
	pkgerrors "strategymap/pkg/errors"
)

// Editor is the canvas session: the node store plus selection, viewport and
// the pointer state machine. It is driven from a single goroutine.
type Editor struct {
	store     *aggregates.StrategyMap
	selection *Selection
	viewport  *geometry.Viewport
	drag      *DragController
	mode      Mode
	logger    *zap.Logger
}

// NewEditor creates an editor over store. source supplies move and release
// events for active gestures; it may be nil when the host calls PointerMove
// and PointerUp directly.
func NewEditor(store *aggregates.StrategyMap, source PointerSource, viewport geometry.Viewport, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if viewport.Scale <= 0 {
		viewport.Scale = 1
	}
	vp := &viewport
	selection := NewSelection()

	return &Editor{
		store:     store,
		selection: selection,
		viewport:  vp,
		drag:      NewDragController(store, selection, vp, source, logger),
		mode:      ModeSelect,
		logger:    logger,
	}
}

// Store returns the underlying node store
func (e *Editor) Store() *aggregates.StrategyMap { return e.store }

// Selection returns the live selection
func (e *Editor) Selection() *Selection { return e.selection }

// Mode returns the interaction mode
func (e *Editor) Mode() Mode { return e.mode }

// SetMode switches between select and pan. An active gesture is cancelled.
func (e *Editor) SetMode(mode Mode) {
	if mode == e.mode {
		return
	}
	e.drag.Cancel()
	e.mode = mode
}

// Viewport returns a copy of the current viewport
func (e *Editor) Viewport() geometry.Viewport { return *e.viewport }

// SetViewport replaces the viewport. A non-positive scale is reset to 1.
func (e *Editor) SetViewport(v geometry.Viewport) {
	if v.Scale <= 0 {
		v.Scale = 1
	}
	*e.viewport = v
}

// DragState returns the active gesture
func (e *Editor) DragState() DragState { return e.drag.State() }

// AddRoot creates a main node near the viewport centre. The second result is
// false when the main ceiling is reached, which is not an error.
func (e *Editor) AddRoot() (entities.Node, bool, error) {
	node, err := e.store.AddRoot(e.viewport.Center())
	return e.swallowCapacity(node, err)
}

// AddChild creates a child of parentID. A full parent yields false; an unknown
// parent or a post parent is an error.
func (e *Editor) AddChild(parentID valueobjects.NodeID) (entities.Node, bool, error) {
	node, err := e.store.AddChild(parentID)
	return e.swallowCapacity(node, err)
}

func (e *Editor) swallowCapacity(node entities.Node, err error) (entities.Node, bool, error) {
	if err == nil {
		return node, true, nil
	}
	if pkgerrors.IsCapacityExceeded(err) {
		e.logger.Debug("Node ceiling reached", zap.Error(err))
		return entities.Node{}, false, nil
	}
	return entities.Node{}, false, err
}

// Update edits one field of a node
func (e *Editor) Update(id valueobjects.NodeID, field aggregates.Field, value interface{}) error {
	return e.store.Update(id, field, value)
}

// DeleteSelection cascades a delete over the selection and clears it
func (e *Editor) DeleteSelection() []valueobjects.NodeID {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return nil
	}
	removed := e.store.DeleteCascade(ids)
	e.selection.Clear()
	e.logger.Debug("Deleted selection", zap.Int("selected", len(ids)), zap.Int("removed", len(removed)))
	return removed
}

// KeyDown handles a key press. Delete and Backspace remove the selection
// unless a text input has focus. Returns whether the key was consumed.
func (e *Editor) KeyDown(key string, textInputFocused bool) bool {
	if textInputFocused {
		return false
	}
	switch key {
	case "Delete", "Backspace":
		return len(e.DeleteSelection()) > 0
	}
	return false
}

// PointerDown starts a gesture
func (e *Editor) PointerDown(ev PointerEvent) {
	e.drag.PointerDown(ev, e.mode)
}

// PointerMove feeds a move to the active gesture, for hosts without a PointerSource
func (e *Editor) PointerMove(ev PointerEvent) {
	e.drag.PointerMove(ev)
}

// PointerUp ends the active gesture, for hosts without a PointerSource
func (e *Editor) PointerUp(ev PointerEvent) {
	e.drag.PointerUp(ev)
}

// HitTest returns the topmost node whose card contains the screen point.
// Later nodes are drawn above earlier ones.
func (e *Editor) HitTest(screen geometry.Point) (valueobjects.NodeID, bool) {
	world := e.viewport.ToWorld(screen)
	cfg := e.store.Config()
	nodes := e.store.All()
	for i := len(nodes) - 1; i >= 0; i-- {
		if services.Footprint(nodes[i].Position(), cfg.NodeWidth, cfg.NodeHeight).Contains(world) {
			return nodes[i].ID(), true
		}
	}
	return valueobjects.NodeID{}, false
}

// Resolve fills in the event target by hit testing when the host left it empty
func (e *Editor) Resolve(ev PointerEvent) PointerEvent {
	if ev.OnBackground() {
		if id, ok := e.HitTest(ev.Screen); ok {
			ev.Target = id
		}
	}
	return ev
}
