package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"strategymap/application/ports"
	"strategymap/domain/core/aggregates"
	"strategymap/domain/events"
	pkgerrors "strategymap/pkg/errors"
)

const (
	defaultDebounce = 2 * time.Second
	defaultTimeout  = 10 * time.Second
)

// Syncer keeps the remote copy of a strategy map eventually consistent with
// the local store. Every user edit restarts a trailing debounce; when it
// fires the whole collection is pushed.
type Syncer struct {
	clientID string
	store    *aggregates.StrategyMap
	remote   ports.StrategyStore
	clock    Clock
	delay    time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	onSaveError func(error)
	debouncer   *Debouncer

	mu        sync.Mutex
	lastSaved time.Time
	closed    bool
}

// Option configures a Syncer
type Option func(*Syncer)

// WithClock replaces the time source
func WithClock(clock Clock) Option {
	return func(s *Syncer) { s.clock = clock }
}

// WithDebounce sets the quiet period before a push
func WithDebounce(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithTimeout bounds each remote call
func WithTimeout(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSaveErrorHandler is called after a failed push, in addition to logging
func WithSaveErrorHandler(fn func(error)) Option {
	return func(s *Syncer) { s.onSaveError = fn }
}

// NewSyncer subscribes to the store's user edits
func NewSyncer(clientID string, store *aggregates.StrategyMap, remote ports.StrategyStore, opts ...Option) *Syncer {
	s := &Syncer{
		clientID: clientID,
		store:    store,
		remote:   remote,
		clock:    RealClock(),
		delay:    defaultDebounce,
		timeout:  defaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("client_id", clientID))
	s.debouncer = NewDebouncer(s.delay, s.clock, s.flushPending)

	store.Subscribe(func(e events.DomainEvent) {
		if events.IsUserEdit(e) {
			s.NotifyMutation()
		}
	})
	return s
}

// Load reads the remote collection and, when it is non-empty, replaces the
// local one. A failure is logged and leaves local state untouched; the error
// is returned for callers that want it.
func (s *Syncer) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	nodes, err := s.remote.Load(ctx, s.clientID)
	if err != nil {
		loadErr := pkgerrors.NewLoadFailureError(s.clientID, err)
		s.logger.Error("Failed to load strategy", zap.Error(err))
		return loadErr
	}
	if len(nodes) == 0 {
		s.logger.Debug("No stored strategy, keeping local state")
		return nil
	}

	if err := s.store.Replace(nodes); err != nil {
		loadErr := pkgerrors.NewLoadFailureError(s.clientID, err)
		s.logger.Error("Stored strategy is invalid", zap.Error(err))
		return loadErr
	}

	s.logger.Info("Strategy loaded", zap.Int("nodes", len(nodes)))
	return nil
}

// NotifyMutation restarts the debounce window
func (s *Syncer) NotifyMutation() {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.debouncer.Trigger()
}

// Pending reports whether a push is scheduled
func (s *Syncer) Pending() bool {
	return s.debouncer.Pending()
}

// Flush cancels the pending window and pushes immediately
func (s *Syncer) Flush(ctx context.Context) error {
	s.debouncer.Cancel()
	return s.push(ctx)
}

// Close drops any pending push. Edits after Close are not persisted.
func (s *Syncer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.debouncer.Close()
}

// LastSaved returns the server time of the last successful push
func (s *Syncer) LastSaved() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved, !s.lastSaved.IsZero()
}

func (s *Syncer) flushPending() {
	_ = s.push(context.Background())
}

func (s *Syncer) push(ctx context.Context) error {
	nodes := s.store.All()
	// An empty local map usually means the initial load has not finished;
	// pushing it would wipe the remote copy.
	if len(nodes) == 0 {
		s.logger.Debug("Skipping sync of empty strategy")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.clock.Now()
	savedAt, err := s.remote.Sync(ctx, s.clientID, nodes)
	if err != nil {
		saveErr := pkgerrors.NewSaveFailureError(s.clientID, err)
		s.logger.Warn("Failed to sync strategy", zap.Int("nodes", len(nodes)), zap.Error(err))
		if s.onSaveError != nil {
			s.onSaveError(saveErr)
		}
		return saveErr
	}

	if savedAt.IsZero() {
		savedAt = s.clock.Now()
	}
	s.mu.Lock()
	s.lastSaved = savedAt
	s.mu.Unlock()

	s.logger.Debug("Strategy synced",
		zap.Int("nodes", len(nodes)),
		zap.Duration("duration", s.clock.Now().Sub(start)),
	)
	return nil
}
