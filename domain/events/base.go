package events

import (
	"time"

	"strategymap/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Event type names
const (
	TypeNodeAdded     = "strategy.node_added"
	TypeNodeUpdated   = "strategy.node_updated"
	TypeNodesMoved    = "strategy.nodes_moved"
	TypeNodesDeleted  = "strategy.nodes_deleted"
	TypeStrategyLoad  = "strategy.loaded"
	TypeStrategySaved = "strategy.synced"
)

func newBase(aggregateID, eventType string, version int, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     version,
	}
}

// NodeAdded is raised when a root or child node is created
type NodeAdded struct {
	BaseEvent
	NodeID   valueobjects.NodeID   `json:"node_id"`
	NodeType valueobjects.NodeType `json:"node_type"`
	ParentID valueobjects.NodeID   `json:"parent_id"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(aggregateID string, version int, nodeID valueobjects.NodeID, nodeType valueobjects.NodeType, parentID valueobjects.NodeID, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(aggregateID, TypeNodeAdded, version, timestamp),
		NodeID:    nodeID,
		NodeType:  nodeType,
		ParentID:  parentID,
	}
}

// NodeUpdated is raised when a single editable field changes
type NodeUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	Field  string              `json:"field"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(aggregateID string, version int, nodeID valueobjects.NodeID, field string, timestamp time.Time) NodeUpdated {
	return NodeUpdated{
		BaseEvent: newBase(aggregateID, TypeNodeUpdated, version, timestamp),
		NodeID:    nodeID,
		Field:     field,
	}
}

// NodesMoved is raised for every live position write of a drag gesture
type NodesMoved struct {
	BaseEvent
	NodeIDs []valueobjects.NodeID `json:"node_ids"`
}

// NewNodesMoved creates a NodesMoved event
func NewNodesMoved(aggregateID string, version int, nodeIDs []valueobjects.NodeID, timestamp time.Time) NodesMoved {
	return NodesMoved{
		BaseEvent: newBase(aggregateID, TypeNodesMoved, version, timestamp),
		NodeIDs:   nodeIDs,
	}
}

// NodesDeleted is raised after a cascading delete
type NodesDeleted struct {
	BaseEvent
	NodeIDs []valueobjects.NodeID `json:"node_ids"`
}

// NewNodesDeleted creates a NodesDeleted event
func NewNodesDeleted(aggregateID string, version int, nodeIDs []valueobjects.NodeID, timestamp time.Time) NodesDeleted {
	return NodesDeleted{
		BaseEvent: newBase(aggregateID, TypeNodesDeleted, version, timestamp),
		NodeIDs:   nodeIDs,
	}
}

// StrategyLoaded is raised when the whole collection is replaced from storage.
// It is not a user edit and does not schedule a save.
type StrategyLoaded struct {
	BaseEvent
	NodeCount int `json:"node_count"`
}

// NewStrategyLoaded creates a StrategyLoaded event
func NewStrategyLoaded(aggregateID string, version int, nodeCount int, timestamp time.Time) StrategyLoaded {
	return StrategyLoaded{
		BaseEvent: newBase(aggregateID, TypeStrategyLoad, version, timestamp),
		NodeCount: nodeCount,
	}
}

// StrategySynced is raised by the service after a client's collection is stored
type StrategySynced struct {
	BaseEvent
	ClientID  string `json:"client_id"`
	NodeCount int    `json:"node_count"`
}

// NewStrategySynced creates a StrategySynced event
func NewStrategySynced(clientID string, version int, nodeCount int, timestamp time.Time) StrategySynced {
	return StrategySynced{
		BaseEvent: newBase(clientID, TypeStrategySaved, version, timestamp),
		ClientID:  clientID,
		NodeCount: nodeCount,
	}
}

// IsUserEdit reports whether an event originates from an edit that should be
// persisted.
func IsUserEdit(event DomainEvent) bool {
	switch event.GetEventType() {
	case TypeNodeAdded, TypeNodeUpdated, TypeNodesMoved, TypeNodesDeleted:
		return true
	}
	return false
}
