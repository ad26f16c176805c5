package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"strategymap/application/ports"
	"strategymap/domain/core/entities"
)

// StrategyRepository keeps collections in process memory. It backs local
// development and tests.
type StrategyRepository struct {
	mu     sync.RWMutex
	items  map[string]record
	logger *zap.Logger
}

type record struct {
	nodes   []entities.Node
	savedAt time.Time
}

// NewStrategyRepository creates an empty repository
func NewStrategyRepository(logger *zap.Logger) *StrategyRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrategyRepository{
		items:  make(map[string]record),
		logger: logger,
	}
}

var _ ports.StrategyRepository = (*StrategyRepository)(nil)

// Load returns a copy of the stored collection
func (r *StrategyRepository) Load(ctx context.Context, clientID string) ([]entities.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[clientID]
	if !ok {
		return []entities.Node{}, nil
	}
	out := make([]entities.Node, len(rec.nodes))
	copy(out, rec.nodes)
	return out, nil
}

// Save replaces the stored collection
func (r *StrategyRepository) Save(ctx context.Context, clientID string, nodes []entities.Node, savedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]entities.Node, len(nodes))
	copy(stored, nodes)

	r.mu.Lock()
	r.items[clientID] = record{nodes: stored, savedAt: savedAt}
	r.mu.Unlock()

	r.logger.Debug("Saved strategy in memory", zap.String("client_id", clientID), zap.Int("nodes", len(nodes)))
	return nil
}

// SavedAt returns when a client's collection was last saved
func (r *StrategyRepository) SavedAt(clientID string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[clientID]
	return rec.savedAt, ok
}
