package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"strategymap/application/commands"
	"strategymap/application/commands/bus"
	"strategymap/application/queries"
	querybus "strategymap/application/queries/bus"
	"strategymap/domain/core/entities"
	pkgerrors "strategymap/pkg/errors"
)

// maxBodyBytes bounds a sync request body
const maxBodyBytes = 4 << 20

// StrategyHandler handles strategy map HTTP requests
type StrategyHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
	now        func() time.Time
}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *StrategyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errorHandler == nil {
		errorHandler = pkgerrors.NewErrorHandler(logger, false)
	}
	return &StrategyHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
		now:        time.Now,
	}
}

// SyncStrategyRequest represents the request body for POST /strategy/sync
type SyncStrategyRequest struct {
	ClientID string             `json:"clientId"`
	Nodes    []entities.NodeDTO `json:"nodes"`
}

// SyncStrategyResponse represents the response for POST /strategy/sync
type SyncStrategyResponse struct {
	Success bool      `json:"success"`
	SavedAt time.Time `json:"savedAt"`
}

// GetStrategy handles GET /strategy/{clientId}. The body is the bare node
// array; a client with nothing stored gets [].
func (h *StrategyHandler) GetStrategy(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientId")
	if clientID == "" {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Client ID is required")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetStrategyQuery{ClientID: clientID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result.(*queries.GetStrategyResult).Nodes)
}

// SyncStrategy handles POST /strategy/sync
func (h *StrategyHandler) SyncStrategy(w http.ResponseWriter, r *http.Request) {
	var req SyncStrategyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}

	savedAt := h.now().UTC()
	cmd := commands.SyncStrategyCommand{
		ClientID: req.ClientID,
		Nodes:    req.Nodes,
		SavedAt:  savedAt,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, SyncStrategyResponse{Success: true, SavedAt: savedAt})
}

// Helper methods

func (h *StrategyHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
