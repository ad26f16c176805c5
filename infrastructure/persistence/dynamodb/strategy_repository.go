package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"strategymap/application/ports"
	"strategymap/domain/core/entities"
	pkgerrors "strategymap/pkg/errors"
)

const (
	entityTypeStrategy = "STRATEGY"
	strategySortKey    = "STRATEGY"
)

// API is the subset of the DynamoDB client the repository uses
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// StrategyRepository stores each client's collection as a single item.
// Collections are small (at most a few hundred nodes) so they fit well
// within the item size limit.
type StrategyRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewStrategyRepository creates a new StrategyRepository
func NewStrategyRepository(client API, tableName string, logger *zap.Logger) *StrategyRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrategyRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.StrategyRepository = (*StrategyRepository)(nil)

// strategyItem represents the DynamoDB item structure for a collection
type strategyItem struct {
	PK         string     `dynamodbav:"PK"`
	SK         string     `dynamodbav:"SK"`
	EntityType string     `dynamodbav:"EntityType"`
	ClientID   string     `dynamodbav:"ClientID"`
	Nodes      []nodeItem `dynamodbav:"Nodes"`
	NodeCount  int        `dynamodbav:"NodeCount"`
	SavedAt    string     `dynamodbav:"SavedAt"`
}

type nodeItem struct {
	ID          string  `dynamodbav:"id"`
	Type        string  `dynamodbav:"type"`
	Label       string  `dynamodbav:"label"`
	Description string  `dynamodbav:"description"`
	ParentID    string  `dynamodbav:"parentId,omitempty"`
	X           float64 `dynamodbav:"x"`
	Y           float64 `dynamodbav:"y"`
}

func clientKey(clientID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CLIENT#%s", clientID)},
		"SK": &types.AttributeValueMemberS{Value: strategySortKey},
	}
}

// Load retrieves a client's collection
func (r *StrategyRepository) Load(ctx context.Context, clientID string) ([]entities.Node, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            clientKey(clientID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logger.Error("Failed to get strategy from DynamoDB", zap.String("client_id", clientID), zap.Error(err))
		return nil, pkgerrors.NewDatabaseError("get_strategy", err)
	}
	if len(result.Item) == 0 {
		return []entities.Node{}, nil
	}

	var item strategyItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal_strategy", err)
	}

	dtos := make([]entities.NodeDTO, len(item.Nodes))
	for i, n := range item.Nodes {
		dtos[i] = entities.NodeDTO{
			ID:          n.ID,
			Type:        n.Type,
			Label:       n.Label,
			Description: n.Description,
			X:           n.X,
			Y:           n.Y,
		}
		if n.ParentID != "" {
			parent := n.ParentID
			dtos[i].ParentID = &parent
		}
	}

	nodes, err := entities.NodesFromDTOs(dtos)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "stored strategy for client %s", clientID)
	}
	return nodes, nil
}

// Save overwrites a client's collection
func (r *StrategyRepository) Save(ctx context.Context, clientID string, nodes []entities.Node, savedAt time.Time) error {
	item := strategyItem{
		PK:         fmt.Sprintf("CLIENT#%s", clientID),
		SK:         strategySortKey,
		EntityType: entityTypeStrategy,
		ClientID:   clientID,
		Nodes:      make([]nodeItem, 0, len(nodes)),
		NodeCount:  len(nodes),
		SavedAt:    savedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, n := range nodes {
		ni := nodeItem{
			ID:          n.ID().String(),
			Type:        n.Type().String(),
			Label:       n.Label(),
			Description: n.Description(),
			X:           n.X(),
			Y:           n.Y(),
		}
		if n.HasParent() {
			ni.ParentID = n.ParentID().String()
		}
		item.Nodes = append(item.Nodes, ni)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal_strategy", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save strategy to DynamoDB", zap.String("client_id", clientID), zap.Error(err))
		return pkgerrors.NewDatabaseError("put_strategy", err)
	}

	r.logger.Debug("Saved strategy to DynamoDB",
		zap.String("client_id", clientID),
		zap.Int("nodes", len(nodes)),
	)
	return nil
}
