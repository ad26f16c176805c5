package entities

import (
	"encoding/json"
	"fmt"

	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
	pkgerrors "strategymap/pkg/errors"
)

// Node is a single card on the strategy map.
// Type and parent are fixed at creation; label, description and position are
// mutated in place.
type Node struct {
	id          valueobjects.NodeID
	nodeType    valueobjects.NodeType
	label       string
	description string
	parentID    valueobjects.NodeID
	position    geometry.Point
}

// NewNode creates a node with a fresh id after checking the parent rule for
// its type. It does not check that the parent exists; that is the store's job.
func NewNode(nodeType valueobjects.NodeType, parentID valueobjects.NodeID, label string, position geometry.Point) (Node, error) {
	return ReconstructNode(valueobjects.NewNodeID(), nodeType, label, "", parentID, position)
}

// ReconstructNode rebuilds a node from persisted data.
func ReconstructNode(
	id valueobjects.NodeID,
	nodeType valueobjects.NodeType,
	label string,
	description string,
	parentID valueobjects.NodeID,
	position geometry.Point,
) (Node, error) {
	if id.IsZero() {
		return Node{}, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if !nodeType.IsValid() {
		return Node{}, pkgerrors.NewValidationError(fmt.Sprintf("invalid node type %q", nodeType))
	}
	if nodeType == valueobjects.NodeTypeMain && !parentID.IsZero() {
		return Node{}, pkgerrors.NewValidationError("main node cannot have a parent")
	}
	if nodeType != valueobjects.NodeTypeMain && parentID.IsZero() {
		return Node{}, pkgerrors.NewValidationError(fmt.Sprintf("%s node requires a parent", nodeType))
	}
	if parentID.Equals(id) {
		return Node{}, pkgerrors.NewValidationError("node cannot be its own parent")
	}
	if !position.IsFinite() {
		return Node{}, pkgerrors.NewValidationError("invalid coordinates")
	}

	return Node{
		id:          id,
		nodeType:    nodeType,
		label:       label,
		description: description,
		parentID:    parentID,
		position:    position,
	}, nil
}

// ID returns the node's unique identifier
func (n Node) ID() valueobjects.NodeID { return n.id }

// Type returns the node's hierarchy level
func (n Node) Type() valueobjects.NodeType { return n.nodeType }

// Label returns the short display string
func (n Node) Label() string { return n.label }

// Description returns the long free text
func (n Node) Description() string { return n.description }

// ParentID returns the parent reference; zero for main nodes
func (n Node) ParentID() valueobjects.NodeID { return n.parentID }

// HasParent reports whether the node references a parent
func (n Node) HasParent() bool { return !n.parentID.IsZero() }

// Position returns the world-space anchor point
func (n Node) Position() geometry.Point { return n.position }

// X returns the world-space x coordinate
func (n Node) X() float64 { return n.position.X }

// Y returns the world-space y coordinate
func (n Node) Y() float64 { return n.position.Y }

// Rename replaces the label. Labels are free text of any length.
func (n *Node) Rename(label string) {
	n.label = label
}

// Describe replaces the description
func (n *Node) Describe(description string) {
	n.description = description
}

// MoveTo sets the world-space anchor point
func (n *Node) MoveTo(position geometry.Point) error {
	if !position.IsFinite() {
		return pkgerrors.NewValidationError("invalid coordinates")
	}
	n.position = position
	return nil
}

// NodeDTO is the wire representation shared by the HTTP API and the sync client.
type NodeDTO struct {
	ID          string  `json:"id" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=main secondary post"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId" validate:"omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// ToDTO converts the node into its wire representation
func (n Node) ToDTO() NodeDTO {
	dto := NodeDTO{
		ID:          n.id.String(),
		Type:        n.nodeType.String(),
		Label:       n.label,
		Description: n.description,
		X:           n.position.X,
		Y:           n.position.Y,
	}
	if n.HasParent() {
		parent := n.parentID.String()
		dto.ParentID = &parent
	}
	return dto
}

// NodeFromDTO converts a wire node into a validated entity
func NodeFromDTO(dto NodeDTO) (Node, error) {
	id, err := valueobjects.NewNodeIDFromString(dto.ID)
	if err != nil {
		return Node{}, pkgerrors.NewValidationError(err.Error())
	}
	nodeType, err := valueobjects.ParseNodeType(dto.Type)
	if err != nil {
		return Node{}, pkgerrors.NewValidationError(err.Error())
	}

	var parentID valueobjects.NodeID
	if dto.ParentID != nil && *dto.ParentID != "" {
		parentID, err = valueobjects.NewNodeIDFromString(*dto.ParentID)
		if err != nil {
			return Node{}, pkgerrors.NewValidationError("parentId: " + err.Error())
		}
	}

	return ReconstructNode(id, nodeType, dto.Label, dto.Description, parentID, geometry.Pt(dto.X, dto.Y))
}

// NodesToDTOs converts a slice of nodes for transport
func NodesToDTOs(nodes []Node) []NodeDTO {
	dtos := make([]NodeDTO, len(nodes))
	for i, n := range nodes {
		dtos[i] = n.ToDTO()
	}
	return dtos
}

// NodesFromDTOs converts a slice of wire nodes, failing on the first invalid one
func NodesFromDTOs(dtos []NodeDTO) ([]Node, error) {
	nodes := make([]Node, 0, len(dtos))
	for i, dto := range dtos {
		n, err := NodeFromDTO(dto)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "node %d", i)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// MarshalJSON implements json.Marshaler
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToDTO())
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Node) UnmarshalJSON(data []byte) error {
	var dto NodeDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	decoded, err := NodeFromDTO(dto)
	if err != nil {
		return err
	}
	*n = decoded
	return nil
}
