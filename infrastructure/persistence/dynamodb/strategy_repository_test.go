package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
	pkgerrors "strategymap/pkg/errors"
)

// fakeTable keeps items keyed by PK/SK
type fakeTable struct {
	items  map[string]map[string]types.AttributeValue
	putErr error
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(item map[string]types.AttributeValue) string {
	pk := item["PK"].(*types.AttributeValueMemberS).Value
	sk := item["SK"].(*types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func (f *fakeTable) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(params.Key)]}, nil
}

func (f *fakeTable) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items[keyOf(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestStrategyRepository_RoundTrip(t *testing.T) {
	table := newFakeTable()
	repo := NewStrategyRepository(table, "strategies", zap.NewNop())
	ctx := context.Background()

	nodes, err := repo.Load(ctx, "acme")
	require.NoError(t, err)
	assert.NotNil(t, nodes)
	assert.Empty(t, nodes)

	root, _ := entities.NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, "Root", geometry.Pt(1.5, -2))
	child, _ := entities.NewNode(valueobjects.NodeTypeSecondary, root.ID(), "Child", geometry.Pt(300, 40))
	root.Describe("long text")

	require.NoError(t, repo.Save(ctx, "acme", []entities.Node{root, child}, time.Unix(100, 0)))

	stored := table.items["CLIENT#acme|STRATEGY"]
	require.NotNil(t, stored)
	assert.Equal(t, "STRATEGY", stored["EntityType"].(*types.AttributeValueMemberS).Value)

	loaded, err := repo.Load(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []entities.Node{root, child}, loaded)

	other, err := repo.Load(ctx, "globex")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStrategyRepository_SaveError(t *testing.T) {
	table := newFakeTable()
	table.putErr = errors.New("throttled")
	repo := NewStrategyRepository(table, "strategies", nil)

	err := repo.Save(context.Background(), "acme", nil, time.Now())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}

func TestStrategyRepository_CorruptItem(t *testing.T) {
	table := newFakeTable()
	table.items["CLIENT#acme|STRATEGY"] = map[string]types.AttributeValue{
		"PK":    &types.AttributeValueMemberS{Value: "CLIENT#acme"},
		"SK":    &types.AttributeValueMemberS{Value: "STRATEGY"},
		"Nodes": &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
				"id":   &types.AttributeValueMemberS{Value: "k3j9x2m1a"},
				"type": &types.AttributeValueMemberS{Value: "tertiary"},
			}},
		}},
	}
	repo := NewStrategyRepository(table, "strategies", nil)

	_, err := repo.Load(context.Background(), "acme")
	assert.Error(t, err)
}
