package editor

import (
	"go.uber.org/zap"

	"strategymap/domain/core/aggregates"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
)

// Mode is the canvas interaction mode chosen by the user
type Mode int

const (
	ModeSelect Mode = iota
	ModePan
)

func (m Mode) String() string {
	if m == ModePan {
		return "pan"
	}
	return "select"
}

// DragState is the active gesture. Exactly one of Idle, DraggingNodes,
// Panning or Selecting; each carries only the data its gesture needs.
type DragState interface {
	dragState()
}

// Idle means no gesture is in progress
type Idle struct{}

// DraggingNodes moves every node in Snapshot by the pointer delta
type DraggingNodes struct {
	Snapshot     map[valueobjects.NodeID]geometry.Point
	StartPointer geometry.Point
}

// Panning moves the viewport by the pointer delta
type Panning struct {
	StartPointer geometry.Point
	StartPan     geometry.Point
}

// Selecting draws a rubber band between two world-space corners
type Selecting struct {
	Start   geometry.Point
	Current geometry.Point
}

func (Idle) dragState()          {}
func (DraggingNodes) dragState() {}
func (Panning) dragState()       {}
func (Selecting) dragState()     {}

// Band returns the normalized rubber-band rectangle
func (s Selecting) Band() geometry.Rect {
	return geometry.NewRect(s.Start, s.Current)
}

// DragController runs the pointer state machine. Move and release events are
// taken from the PointerSource only while a gesture is active.
type DragController struct {
	store     *aggregates.StrategyMap
	selection *Selection
	viewport  *geometry.Viewport
	source    PointerSource
	logger    *zap.Logger

	state DragState
	sub   Subscription
}

// NewDragController wires the state machine to the store, selection and the
// viewport it pans.
func NewDragController(
	store *aggregates.StrategyMap,
	selection *Selection,
	viewport *geometry.Viewport,
	source PointerSource,
	logger *zap.Logger,
) *DragController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DragController{
		store:     store,
		selection: selection,
		viewport:  viewport,
		source:    source,
		logger:    logger,
		state:     Idle{},
	}
}

// State returns the current gesture
func (d *DragController) State() DragState {
	return d.state
}

// PointerDown starts a gesture from Idle. Events arriving mid-gesture are ignored.
func (d *DragController) PointerDown(ev PointerEvent, mode Mode) {
	if _, idle := d.state.(Idle); !idle {
		return
	}

	onNode := !ev.OnBackground()
	if onNode {
		if _, ok := d.store.Get(ev.Target); !ok {
			onNode = false
		}
	}

	switch {
	case onNode && mode == ModeSelect && (ev.Button == ButtonPrimary || ev.Button == ButtonMiddle):
		d.selection.Click(ev.Target, ev.Shift)
		d.begin(DraggingNodes{
			Snapshot:     d.snapshotSelection(),
			StartPointer: ev.Screen,
		})

	case mode == ModePan || ev.Button == ButtonMiddle:
		d.begin(Panning{
			StartPointer: ev.Screen,
			StartPan:     d.viewport.Pan,
		})

	case !onNode && ev.Button == ButtonPrimary:
		if !ev.Shift {
			d.selection.Clear()
		}
		start := d.viewport.ToWorld(ev.Screen)
		d.begin(Selecting{Start: start, Current: start})
	}
}

// PointerMove implements PointerListener
func (d *DragController) PointerMove(ev PointerEvent) {
	switch s := d.state.(type) {
	case DraggingNodes:
		// Always measured from the gesture start so sampling rate cannot
		// accumulate drift.
		delta := ev.Screen.Sub(s.StartPointer).Div(d.scale())
		positions := make(map[valueobjects.NodeID]geometry.Point, len(s.Snapshot))
		for id, origin := range s.Snapshot {
			positions[id] = origin.Add(delta)
		}
		if err := d.store.Move(positions); err != nil {
			d.logger.Warn("Drag move rejected", zap.Error(err))
		}

	case Panning:
		d.viewport.Pan = s.StartPan.Add(ev.Screen.Sub(s.StartPointer))

	case Selecting:
		s.Current = d.viewport.ToWorld(ev.Screen)
		d.state = s
	}
}

// PointerUp implements PointerListener
func (d *DragController) PointerUp(ev PointerEvent) {
	switch s := d.state.(type) {
	case Idle:
		return
	case Selecting:
		s.Current = d.viewport.ToWorld(ev.Screen)
		added := d.selection.SelectInRect(s.Band(), d.store.All())
		d.logger.Debug("Rubber band committed", zap.Int("added", added))
	}
	d.end()
}

// Cancel abandons the current gesture without committing a rubber band
func (d *DragController) Cancel() {
	if _, idle := d.state.(Idle); idle {
		return
	}
	d.end()
}

func (d *DragController) begin(state DragState) {
	d.state = state
	if d.source != nil {
		d.sub = d.source.Subscribe(d)
	}
}

func (d *DragController) end() {
	if d.sub != nil {
		d.sub.Unsubscribe()
		d.sub = nil
	}
	d.state = Idle{}
}

func (d *DragController) snapshotSelection() map[valueobjects.NodeID]geometry.Point {
	snapshot := make(map[valueobjects.NodeID]geometry.Point, d.selection.Len())
	for _, id := range d.selection.IDs() {
		if n, ok := d.store.Get(id); ok {
			snapshot[id] = n.Position()
		}
	}
	return snapshot
}

func (d *DragController) scale() float64 {
	if d.viewport.Scale <= 0 {
		return 1
	}
	return d.viewport.Scale
}
