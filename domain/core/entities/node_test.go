package entities

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
	pkgerrors "strategymap/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	parent := valueobjects.NewNodeID()

	tests := []struct {
		name     string
		nodeType valueobjects.NodeType
		parentID valueobjects.NodeID
		position geometry.Point
		wantErr  bool
		errMsg   string
	}{
		{name: "main without parent", nodeType: valueobjects.NodeTypeMain},
		{name: "secondary with parent", nodeType: valueobjects.NodeTypeSecondary, parentID: parent},
		{name: "post with parent", nodeType: valueobjects.NodeTypePost, parentID: parent},
		{name: "main with parent", nodeType: valueobjects.NodeTypeMain, parentID: parent, wantErr: true, errMsg: "cannot have a parent"},
		{name: "secondary without parent", nodeType: valueobjects.NodeTypeSecondary, wantErr: true, errMsg: "requires a parent"},
		{name: "unknown type", nodeType: "tertiary", wantErr: true, errMsg: "invalid node type"},
		{name: "NaN position", nodeType: valueobjects.NodeTypeMain, position: geometry.Pt(math.NaN(), 0), wantErr: true, errMsg: "invalid coordinates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := NewNode(tt.nodeType, tt.parentID, "label", tt.position)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.False(t, node.ID().IsZero())
			assert.Equal(t, tt.nodeType, node.Type())
			assert.True(t, node.ParentID().Equals(tt.parentID))
			assert.Empty(t, node.Description())
		})
	}
}

func TestNode_Mutators(t *testing.T) {
	node, err := NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, "Brand", geometry.Pt(1, 2))
	require.NoError(t, err)

	node.Rename("Awareness")
	node.Describe("Top of funnel")
	require.NoError(t, node.MoveTo(geometry.Pt(10, 20)))

	assert.Equal(t, "Awareness", node.Label())
	assert.Equal(t, "Top of funnel", node.Description())
	assert.Equal(t, geometry.Pt(10, 20), node.Position())

	long := strings.Repeat("x", 5000)
	node.Rename(long)
	assert.Equal(t, long, node.Label())
	assert.Error(t, node.MoveTo(geometry.Pt(math.Inf(1), 0)))
	assert.Equal(t, geometry.Pt(10, 20), node.Position())
}

func TestNode_JSONShape(t *testing.T) {
	root, err := NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, "Root", geometry.Pt(5, 6))
	require.NoError(t, err)
	child, err := NewNode(valueobjects.NodeTypeSecondary, root.ID(), "Child", geometry.Pt(7, 8))
	require.NoError(t, err)

	data, err := json.Marshal([]Node{root, child})
	require.NoError(t, err)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Nil(t, raw[0]["parentId"])
	assert.Equal(t, "main", raw[0]["type"])
	assert.Equal(t, root.ID().String(), raw[1]["parentId"])
	assert.Equal(t, 7.0, raw[1]["x"])

	var decoded []Node
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []Node{root, child}, decoded)
}

func TestNodeFromDTO_Invalid(t *testing.T) {
	blank := "   "
	_, err := NodeFromDTO(NodeDTO{ID: valueobjects.NewNodeID().String(), Type: "post", ParentID: &blank})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parentId")

	_, err = NodesFromDTOs([]NodeDTO{{ID: "", Type: "main"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node 0")

	_, err = NodesFromDTOs([]NodeDTO{{ID: "a1", Type: "tertiary"}})
	require.Error(t, err)
}

func TestNodesFromDTOs_OpaqueIDs(t *testing.T) {
	root, mid := "k3j9x2m1a", "node-2"
	dtos := []NodeDTO{
		{ID: root, Type: "main", Label: strings.Repeat("Brand ", 100), X: 400, Y: 300},
		{ID: mid, Type: "secondary", ParentID: &root, X: 720, Y: 330},
		{ID: "7", Type: "post", ParentID: &mid, X: 980, Y: 360},
	}

	nodes, err := NodesFromDTOs(dtos)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, root, nodes[0].ID().String())
	assert.Equal(t, root, nodes[1].ParentID().String())
	assert.Equal(t, dtos, NodesToDTOs(nodes))
}
