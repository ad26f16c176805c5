package editor

import (
	"sync"

	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
)

// Button identifies the pointer button of an event
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// PointerEvent is a host-independent pointer sample in screen coordinates.
// Target is the node under the pointer, zero for the canvas background.
type PointerEvent struct {
	Screen geometry.Point
	Button Button
	Shift  bool
	Target valueobjects.NodeID
}

// OnBackground reports whether the event hit empty canvas
func (e PointerEvent) OnBackground() bool {
	return e.Target.IsZero()
}

// PointerListener receives move and release events for an active gesture
type PointerListener interface {
	PointerMove(ev PointerEvent)
	PointerUp(ev PointerEvent)
}

// Subscription ends delivery to a listener
type Subscription interface {
	Unsubscribe()
}

// PointerSource delivers pointer events from the broadest input scope the
// host has, so a gesture keeps tracking after the pointer leaves the canvas.
type PointerSource interface {
	Subscribe(listener PointerListener) Subscription
}

// Broadcaster is an in-process PointerSource. Hosts feed it every move and
// release they observe; it fans them out to the active subscribers.
type Broadcaster struct {
	mu        sync.Mutex
	next      int
	listeners map[int]PointerListener
}

// NewBroadcaster creates an empty pointer broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]PointerListener)}
}

// Subscribe implements PointerSource
func (b *Broadcaster) Subscribe(listener PointerListener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.listeners[id] = listener
	return &subscription{broadcaster: b, id: id}
}

// Move dispatches a pointer move
func (b *Broadcaster) Move(ev PointerEvent) {
	for _, l := range b.snapshot() {
		l.PointerMove(ev)
	}
}

// Up dispatches a pointer release
func (b *Broadcaster) Up(ev PointerEvent) {
	for _, l := range b.snapshot() {
		l.PointerUp(ev)
	}
}

// Len returns the number of active subscribers
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *Broadcaster) snapshot() []PointerListener {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]PointerListener, 0, len(b.listeners))
	for i := 0; i < b.next; i++ {
		if l, ok := b.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}

type subscription struct {
	broadcaster *Broadcaster
	id          int
	once        sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.broadcaster.mu.Lock()
		delete(s.broadcaster.listeners, s.id)
		s.broadcaster.mu.Unlock()
	})
}
