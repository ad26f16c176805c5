// Package remote talks to the strategy persistence service over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"strategymap/application/ports"
	"strategymap/domain/core/entities"
	pkgerrors "strategymap/pkg/errors"
)

// BreakerConfig holds configuration for the client circuit breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used by the editor
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "strategy-remote",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// SyncRequest is the body of POST /strategy/sync
type SyncRequest struct {
	ClientID string             `json:"clientId"`
	Nodes    []entities.NodeDTO `json:"nodes"`
}

// SyncResponse is the reply to POST /strategy/sync
type SyncResponse struct {
	Success bool      `json:"success"`
	SavedAt time.Time `json:"savedAt"`
}

// StrategyClient implements ports.StrategyStore against the HTTP API
type StrategyClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

var _ ports.StrategyStore = (*StrategyClient)(nil)

// Option configures a StrategyClient
type Option func(*StrategyClient)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(s *StrategyClient) { s.http = c }
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *StrategyClient) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStrategyClient creates a client rooted at baseURL
func NewStrategyClient(baseURL string, timeout time.Duration, breaker BreakerConfig, opts ...Option) *StrategyClient {
	c := &StrategyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breaker.Name,
		MaxRequests: breaker.MaxRequests,
		Interval:    breaker.Interval,
		Timeout:     breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breaker.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= breaker.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// Load fetches the full collection for a client. A missing collection
// yields an empty, non-nil slice.
func (c *StrategyClient) Load(ctx context.Context, clientID string) ([]entities.Node, error) {
	endpoint := fmt.Sprintf("%s/strategy/%s", c.baseURL, url.PathEscape(clientID))

	out, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusNotFound:
			return []entities.NodeDTO{}, nil
		case resp.StatusCode >= 400:
			return nil, statusError(resp)
		}

		var dtos []entities.NodeDTO
		if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode strategy: %w", err)
		}
		return dtos, nil
	})
	if err != nil {
		return nil, c.wrap("load", err)
	}

	nodes, err := entities.NodesFromDTOs(out.([]entities.NodeDTO))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Strategy loaded",
		zap.String("clientId", clientID),
		zap.Int("nodes", len(nodes)),
	)
	return nodes, nil
}

// Sync pushes the full collection and returns the server's save time
func (c *StrategyClient) Sync(ctx context.Context, clientID string, nodes []entities.Node) (time.Time, error) {
	body, err := json.Marshal(SyncRequest{ClientID: clientID, Nodes: entities.NodesToDTOs(nodes)})
	if err != nil {
		return time.Time{}, pkgerrors.NewInternalError("encode sync request").WithCause(err)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/strategy/sync", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return nil, statusError(resp)
		}

		var result SyncResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("decode sync response: %w", err)
		}
		if !result.Success {
			return nil, errors.New("server reported unsuccessful sync")
		}
		return result, nil
	})
	if err != nil {
		return time.Time{}, c.wrap("sync", err)
	}

	return out.(SyncResponse).SavedAt, nil
}

// State reports the breaker state
func (c *StrategyClient) State() gobreaker.State {
	return c.breaker.State()
}

func (c *StrategyClient) wrap(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError("strategy-remote").WithCause(err)
	}
	return pkgerrors.NewNetworkError(fmt.Sprintf("strategy %s request failed", op), err)
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
