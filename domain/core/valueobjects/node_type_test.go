package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeType_Hierarchy(t *testing.T) {
	tests := []struct {
		name      string
		nodeType  NodeType
		child     NodeType
		hasChild  bool
		parent    NodeType
		hasParent bool
	}{
		{name: "main", nodeType: NodeTypeMain, child: NodeTypeSecondary, hasChild: true, hasParent: false},
		{name: "secondary", nodeType: NodeTypeSecondary, child: NodeTypePost, hasChild: true, parent: NodeTypeMain, hasParent: true},
		{name: "post", nodeType: NodeTypePost, hasChild: false, parent: NodeTypeSecondary, hasParent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child, ok := tt.nodeType.ChildType()
			assert.Equal(t, tt.hasChild, ok)
			assert.Equal(t, tt.child, child)

			parent, ok := tt.nodeType.ParentType()
			assert.Equal(t, tt.hasParent, ok)
			assert.Equal(t, tt.parent, parent)
		})
	}
}

func TestParseNodeType(t *testing.T) {
	nt, err := ParseNodeType("post")
	require.NoError(t, err)
	assert.Equal(t, NodeTypePost, nt)

	_, err = ParseNodeType("tertiary")
	assert.Error(t, err)
}

func TestNodeID_JSON(t *testing.T) {
	id := NewNodeID()

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(data))

	var decoded NodeID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(id))

	data, err = json.Marshal(NodeID{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	require.NoError(t, json.Unmarshal([]byte("null"), &decoded))
	assert.True(t, decoded.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`"k3j9x2m1a"`), &decoded))
	assert.Equal(t, "k3j9x2m1a", decoded.String())

	assert.Error(t, json.Unmarshal([]byte(`42`), &decoded))
	_, err = NewNodeIDFromString("  ")
	assert.Error(t, err)
}
