package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"strategymap/application/commands/bus"
	"strategymap/application/ports"
	"strategymap/application/queries"
	"strategymap/domain/config"
	"strategymap/domain/core/aggregates"
	"strategymap/domain/core/entities"
	"strategymap/domain/events"
	pkgerrors "strategymap/pkg/errors"
	"strategymap/pkg/utils"
)

// SyncStrategyCommand overwrites a client's stored collection
type SyncStrategyCommand struct {
	ClientID string             `json:"clientId" validate:"required,max=128"`
	Nodes    []entities.NodeDTO `json:"nodes" validate:"dive"`
	SavedAt  time.Time          `json:"-"`
}

// Validate implements bus.Command
func (c SyncStrategyCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// SyncStrategyHandler handles SyncStrategyCommand
type SyncStrategyHandler struct {
	repo      ports.StrategyRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewSyncStrategyHandler creates a new handler instance. publisher and cache
// are optional.
func NewSyncStrategyHandler(
	repo ports.StrategyRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *SyncStrategyHandler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncStrategyHandler{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
	}
}

// Handle implements bus.CommandHandler
func (h *SyncStrategyHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(SyncStrategyCommand)
	if !ok {
		return pkgerrors.NewInternalError(fmt.Sprintf("unexpected command type %T", cmd))
	}

	nodes, err := entities.NodesFromDTOs(c.Nodes)
	if err != nil {
		return err
	}
	// The service stores only collections an editor could have produced.
	if err := aggregates.ValidateNodes(nodes, h.cfg); err != nil {
		return err
	}

	savedAt := c.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	if err := h.repo.Save(ctx, c.ClientID, nodes, savedAt); err != nil {
		return err
	}

	if h.cache != nil {
		if err := h.cache.Delete(ctx, queries.StrategyCacheKey(c.ClientID)); err != nil {
			h.logger.Warn("Failed to invalidate strategy cache", zap.String("client_id", c.ClientID), zap.Error(err))
		}
	}

	if h.publisher != nil {
		event := events.NewStrategySynced(c.ClientID, 1, len(nodes), savedAt)
		if err := h.publisher.Publish(ctx, event); err != nil {
			// Storage succeeded; a lost notification must not fail the sync.
			h.logger.Warn("Failed to publish strategy synced event", zap.String("client_id", c.ClientID), zap.Error(err))
		}
	}

	h.logger.Info("Strategy synced", zap.String("client_id", c.ClientID), zap.Int("nodes", len(nodes)))
	return nil
}
