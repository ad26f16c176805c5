package queries

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"strategymap/application/ports"
	"strategymap/application/queries/bus"
	"strategymap/domain/core/entities"
	pkgerrors "strategymap/pkg/errors"
	"strategymap/pkg/utils"
)

// GetStrategyQuery reads a client's full node collection
type GetStrategyQuery struct {
	ClientID string `validate:"required,max=128"`
}

// Validate implements bus.Query
func (q GetStrategyQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// CacheKey implements bus.Cacheable
func (q GetStrategyQuery) CacheKey() string {
	return StrategyCacheKey(q.ClientID)
}

// StrategyCacheKey is the cache key of a client's collection
func StrategyCacheKey(clientID string) string {
	return fmt.Sprintf("strategy:%s", clientID)
}

// GetStrategyResult is the query result, always a non-nil slice
type GetStrategyResult struct {
	Nodes []entities.NodeDTO
}

// GetStrategyHandler handles GetStrategyQuery
type GetStrategyHandler struct {
	repo   ports.StrategyRepository
	logger *zap.Logger
}

// NewGetStrategyHandler creates a new handler instance
func NewGetStrategyHandler(repo ports.StrategyRepository, logger *zap.Logger) *GetStrategyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GetStrategyHandler{repo: repo, logger: logger}
}

// Handle implements bus.QueryHandler
func (h *GetStrategyHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(GetStrategyQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", query))
	}

	nodes, err := h.repo.Load(ctx, q.ClientID)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Strategy read", zap.String("client_id", q.ClientID), zap.Int("nodes", len(nodes)))
	return &GetStrategyResult{Nodes: entities.NodesToDTOs(nodes)}, nil
}
