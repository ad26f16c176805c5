package aggregates

import (
	"fmt"
	"sync"
	"time"

	"strategymap/domain/config"
	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/events"
	"strategymap/domain/geometry"
	"strategymap/domain/services"
	pkgerrors "strategymap/pkg/errors"
)

// Field names a node attribute addressed by Update
type Field string

const (
	FieldLabel       Field = "label"
	FieldDescription Field = "description"
	FieldX           Field = "x"
	FieldY           Field = "y"
	FieldType        Field = "type"
	FieldParentID    Field = "parentId"
)

// Layout suggests positions for newly created nodes
type Layout interface {
	RootPosition(index int, collectionEmpty bool, center geometry.Point) geometry.Point
	ChildPosition(parent entities.Node, siblingIndex int) geometry.Point
}

// StrategyMap is the aggregate root holding every node of one client's map.
// It is the only place where hierarchy and ceiling rules are enforced.
type StrategyMap struct {
	mu          sync.RWMutex
	id          string
	cfg         *config.DomainConfig
	layout      Layout
	nodes       map[valueobjects.NodeID]*entities.Node
	order       []valueobjects.NodeID
	version     int
	subscribers []func(events.DomainEvent)
	now         func() time.Time
}

// NewStrategyMap creates an empty map. A nil layout falls back to the radial layout.
func NewStrategyMap(id string, cfg *config.DomainConfig, layout Layout) *StrategyMap {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if layout == nil {
		layout = services.NewRadialLayout(cfg)
	}
	return &StrategyMap{
		id:     id,
		cfg:    cfg,
		layout: layout,
		nodes:  make(map[valueobjects.NodeID]*entities.Node),
		now:    time.Now,
	}
}

// ID returns the aggregate identifier, normally the client id
func (m *StrategyMap) ID() string { return m.id }

// Config returns the domain rules this map enforces
func (m *StrategyMap) Config() *config.DomainConfig { return m.cfg }

// Version returns a counter bumped on every mutation
func (m *StrategyMap) Version() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Subscribe registers fn to receive every event raised by the map. Handlers
// run synchronously after the lock is released.
func (m *StrategyMap) Subscribe(fn func(events.DomainEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// AddRoot creates a main node. center is the world-space centre of the
// current viewport, used by the layout for placement.
func (m *StrategyMap) AddRoot(center geometry.Point) (entities.Node, error) {
	m.mu.Lock()

	mains := m.countByTypeLocked(valueobjects.NodeTypeMain)
	if mains >= m.cfg.MaxMainNodes {
		m.mu.Unlock()
		return entities.Node{}, pkgerrors.NewCapacityExceededError(
			fmt.Sprintf("maximum of %d main nodes reached", m.cfg.MaxMainNodes), m.cfg.MaxMainNodes)
	}

	pos := m.layout.RootPosition(mains, len(m.nodes) == 0, center)
	node, err := entities.NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, m.cfg.DefaultMainLabel, pos)
	if err != nil {
		m.mu.Unlock()
		return entities.Node{}, err
	}

	m.insertLocked(node)
	event := events.NewNodeAdded(m.id, m.version, node.ID(), node.Type(), node.ParentID(), m.now())
	m.mu.Unlock()

	m.publish(event)
	return node, nil
}

// AddChild creates the next-level child of parentID.
func (m *StrategyMap) AddChild(parentID valueobjects.NodeID) (entities.Node, error) {
	m.mu.Lock()

	parent, ok := m.nodes[parentID]
	if !ok {
		m.mu.Unlock()
		return entities.Node{}, pkgerrors.NewInvalidParentError(fmt.Sprintf("parent %s does not exist", parentID))
	}

	childType, ok := parent.Type().ChildType()
	if !ok {
		m.mu.Unlock()
		return entities.Node{}, pkgerrors.NewInvalidParentError(fmt.Sprintf("%s nodes cannot have children", parent.Type()))
	}

	limit := m.childLimit(parent.Type())
	siblings := len(m.childrenLocked(parentID))
	if siblings >= limit {
		m.mu.Unlock()
		return entities.Node{}, pkgerrors.NewCapacityExceededError(
			fmt.Sprintf("maximum of %d %s nodes per %s reached", limit, childType, parent.Type()), limit).
			WithDetails(map[string]interface{}{
				"limit":     limit,
				"parent_id": parentID.String(),
			})
	}

	pos := m.layout.ChildPosition(*parent, siblings)
	node, err := entities.NewNode(childType, parentID, m.defaultLabel(childType), pos)
	if err != nil {
		m.mu.Unlock()
		return entities.Node{}, err
	}

	m.insertLocked(node)
	event := events.NewNodeAdded(m.id, m.version, node.ID(), node.Type(), node.ParentID(), m.now())
	m.mu.Unlock()

	m.publish(event)
	return node, nil
}

// Update sets exactly one editable field. Type and parent are immutable.
func (m *StrategyMap) Update(id valueobjects.NodeID, field Field, value interface{}) error {
	m.mu.Lock()

	node, ok := m.nodes[id]
	if !ok {
		m.mu.Unlock()
		return pkgerrors.NewNotFoundError("node " + id.String())
	}

	if err := m.applyLocked(node, field, value); err != nil {
		m.mu.Unlock()
		return err
	}

	m.version++
	event := events.NewNodeUpdated(m.id, m.version, id, string(field), m.now())
	m.mu.Unlock()

	m.publish(event)
	return nil
}

func (m *StrategyMap) applyLocked(node *entities.Node, field Field, value interface{}) error {
	switch field {
	case FieldLabel, FieldDescription:
		s, ok := value.(string)
		if !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("%s must be a string", field))
		}
		if field == FieldLabel {
			node.Rename(s)
		} else {
			node.Describe(s)
		}
		return nil
	case FieldX, FieldY:
		f, ok := toFloat(value)
		if !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("%s must be a number", field))
		}
		pos := node.Position()
		if field == FieldX {
			pos.X = f
		} else {
			pos.Y = f
		}
		return node.MoveTo(pos)
	case FieldType, FieldParentID:
		return pkgerrors.NewValidationError(fmt.Sprintf("field %s is immutable", field))
	default:
		return pkgerrors.NewValidationError(fmt.Sprintf("unknown field %q", field))
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Move writes live positions for a batch of nodes. Unknown ids are skipped,
// since a drag can outlive a concurrent delete; a non-finite position rejects
// the whole batch before any write.
func (m *StrategyMap) Move(positions map[valueobjects.NodeID]geometry.Point) error {
	for id, p := range positions {
		if !p.IsFinite() {
			return pkgerrors.NewValidationError(fmt.Sprintf("invalid coordinates for node %s", id))
		}
	}

	m.mu.Lock()
	moved := make([]valueobjects.NodeID, 0, len(positions))
	for _, id := range m.order {
		p, ok := positions[id]
		if !ok {
			continue
		}
		if err := m.nodes[id].MoveTo(p); err != nil {
			m.mu.Unlock()
			return err
		}
		moved = append(moved, id)
	}
	if len(moved) == 0 {
		m.mu.Unlock()
		return nil
	}
	m.version++
	event := events.NewNodesMoved(m.id, m.version, moved, m.now())
	m.mu.Unlock()

	m.publish(event)
	return nil
}

// DeleteCascade removes ids together with all of their descendants and
// returns the removed ids in insertion order. Ids not in the map are ignored.
func (m *StrategyMap) DeleteCascade(ids []valueobjects.NodeID) []valueobjects.NodeID {
	m.mu.Lock()

	doomed := make(map[valueobjects.NodeID]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.nodes[id]; ok {
			doomed[id] = true
		}
	}

	// Repeat full scans until a pass adds nothing, so the result does not
	// depend on the order in which ids or nodes are visited.
	for changed := len(doomed) > 0; changed; {
		changed = false
		for _, id := range m.order {
			node := m.nodes[id]
			if doomed[id] || !node.HasParent() {
				continue
			}
			if doomed[node.ParentID()] {
				doomed[id] = true
				changed = true
			}
		}
	}

	if len(doomed) == 0 {
		m.mu.Unlock()
		return nil
	}

	removed := make([]valueobjects.NodeID, 0, len(doomed))
	kept := m.order[:0]
	for _, id := range m.order {
		if doomed[id] {
			removed = append(removed, id)
			delete(m.nodes, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	m.version++
	event := events.NewNodesDeleted(m.id, m.version, removed, m.now())
	m.mu.Unlock()

	m.publish(event)
	return removed
}

// All returns a snapshot of every node in insertion order
func (m *StrategyMap) All() []entities.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodes := make([]entities.Node, 0, len(m.order))
	for _, id := range m.order {
		nodes = append(nodes, *m.nodes[id])
	}
	return nodes
}

// Get returns a copy of one node
func (m *StrategyMap) Get(id valueobjects.NodeID) (entities.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[id]
	if !ok {
		return entities.Node{}, false
	}
	return *node, true
}

// Children returns the direct children of parentID in insertion order
func (m *StrategyMap) Children(parentID valueobjects.NodeID) []entities.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.childrenLocked(parentID)
}

// Len returns the number of nodes
func (m *StrategyMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// CountByType returns how many nodes of a type exist
func (m *StrategyMap) CountByType(t valueobjects.NodeType) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countByTypeLocked(t)
}

// Replace swaps the whole collection for nodes after validating them.
// It raises a load event, which is not treated as a user edit.
func (m *StrategyMap) Replace(nodes []entities.Node) error {
	if err := ValidateNodes(nodes, m.cfg); err != nil {
		return err
	}

	m.mu.Lock()
	m.nodes = make(map[valueobjects.NodeID]*entities.Node, len(nodes))
	m.order = make([]valueobjects.NodeID, 0, len(nodes))
	for _, n := range nodes {
		m.insertLocked(n)
	}
	m.version++
	event := events.NewStrategyLoaded(m.id, m.version, len(nodes), m.now())
	m.mu.Unlock()

	m.publish(event)
	return nil
}

// Validate checks the current collection against the hierarchy rules
func (m *StrategyMap) Validate() error {
	return ValidateNodes(m.All(), m.cfg)
}

// ValidateNodes checks a node collection for unique ids, resolvable parents
// one level up, and the per-level ceilings.
func ValidateNodes(nodes []entities.Node, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	byID := make(map[valueobjects.NodeID]entities.Node, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.ID()]; dup {
			return pkgerrors.NewValidationError(fmt.Sprintf("duplicate node id %s", n.ID()))
		}
		byID[n.ID()] = n
	}

	children := make(map[valueobjects.NodeID]int)
	mains := 0
	for _, n := range nodes {
		if n.Type() == valueobjects.NodeTypeMain {
			if n.HasParent() {
				return pkgerrors.NewValidationError(fmt.Sprintf("main node %s cannot have a parent", n.ID()))
			}
			mains++
			continue
		}

		parent, ok := byID[n.ParentID()]
		if !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("node %s references missing parent %s", n.ID(), n.ParentID()))
		}
		want, _ := n.Type().ParentType()
		if parent.Type() != want {
			return pkgerrors.NewValidationError(fmt.Sprintf("%s node %s cannot be a child of %s node %s",
				n.Type(), n.ID(), parent.Type(), parent.ID()))
		}
		children[parent.ID()]++
	}

	if mains > cfg.MaxMainNodes {
		return pkgerrors.NewCapacityExceededError(fmt.Sprintf("%d main nodes exceed the maximum of %d", mains, cfg.MaxMainNodes), cfg.MaxMainNodes).
			WithDetails(map[string]interface{}{"limit": cfg.MaxMainNodes, "count": mains})
	}
	for parentID, count := range children {
		parentType := byID[parentID].Type()
		limit := childLimit(cfg, parentType)
		if count > limit {
			return pkgerrors.NewCapacityExceededError(
				fmt.Sprintf("%s node %s has %d children, maximum is %d", parentType, parentID, count, limit), limit).
				WithDetails(map[string]interface{}{
					"limit":     limit,
					"count":     count,
					"parent_id": parentID.String(),
				})
		}
	}
	return nil
}

func (m *StrategyMap) insertLocked(node entities.Node) {
	n := node
	m.nodes[n.ID()] = &n
	m.order = append(m.order, n.ID())
	m.version++
}

func (m *StrategyMap) childrenLocked(parentID valueobjects.NodeID) []entities.Node {
	var out []entities.Node
	for _, id := range m.order {
		if n := m.nodes[id]; n.ParentID().Equals(parentID) && n.HasParent() {
			out = append(out, *n)
		}
	}
	return out
}

func (m *StrategyMap) countByTypeLocked(t valueobjects.NodeType) int {
	count := 0
	for _, n := range m.nodes {
		if n.Type() == t {
			count++
		}
	}
	return count
}

func (m *StrategyMap) childLimit(parentType valueobjects.NodeType) int {
	return childLimit(m.cfg, parentType)
}

func childLimit(cfg *config.DomainConfig, parentType valueobjects.NodeType) int {
	switch parentType {
	case valueobjects.NodeTypeMain:
		return cfg.MaxSecondaryPerMain
	case valueobjects.NodeTypeSecondary:
		return cfg.MaxPostPerSecondary
	default:
		return 0
	}
}

func (m *StrategyMap) defaultLabel(t valueobjects.NodeType) string {
	switch t {
	case valueobjects.NodeTypeSecondary:
		return m.cfg.DefaultSecondaryLabel
	case valueobjects.NodeTypePost:
		return m.cfg.DefaultPostLabel
	default:
		return m.cfg.DefaultMainLabel
	}
}

func (m *StrategyMap) publish(event events.DomainEvent) {
	m.mu.RLock()
	subscribers := make([]func(events.DomainEvent), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.RUnlock()

	for _, fn := range subscribers {
		fn(event)
	}
}
