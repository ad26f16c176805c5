package valueobjects

import "fmt"

// NodeType is the level of a node in the strategy hierarchy.
type NodeType string

const (
	NodeTypeMain      NodeType = "main"
	NodeTypeSecondary NodeType = "secondary"
	NodeTypePost      NodeType = "post"
)

// ParseNodeType validates a raw type string.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown node type %q", s)
	}
	return t, nil
}

// IsValid reports whether t is one of the three hierarchy levels.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeMain, NodeTypeSecondary, NodeTypePost:
		return true
	}
	return false
}

// ChildType returns the type a child of t must have. Posts cannot own
// children, so the second result is false for them.
func (t NodeType) ChildType() (NodeType, bool) {
	switch t {
	case NodeTypeMain:
		return NodeTypeSecondary, true
	case NodeTypeSecondary:
		return NodeTypePost, true
	}
	return "", false
}

// ParentType returns the type t's parent must have. Mains are roots.
func (t NodeType) ParentType() (NodeType, bool) {
	switch t {
	case NodeTypeSecondary:
		return NodeTypeMain, true
	case NodeTypePost:
		return NodeTypeSecondary, true
	}
	return "", false
}

// String returns the string representation
func (t NodeType) String() string {
	return string(t)
}
