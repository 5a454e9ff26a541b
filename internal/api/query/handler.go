package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/futig/bms-rag/internal/pkg/logger"
	"github.com/futig/bms-rag/internal/pkg/response"
	"github.com/futig/bms-rag/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase      RagUsecase
	stats        entity.IngestStats
	maxBodyBytes int64
}

// NewHandler creates the query handler. stats are the ingest counts reported by
// /stats; they are zero when the index was loaded from a snapshot.
func NewHandler(usecase RagUsecase, stats entity.IngestStats, maxBodyBytes int64) *Handler {
	return &Handler{
		usecase:      usecase,
		stats:        stats,
		maxBodyBytes: maxBodyBytes,
	}
}

// Query handles POST /query
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Query")

	var req entity.QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := validator.ValidateQuery(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	answer, err := h.usecase.Ask(ctx, req.Query)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toQueryResponse(answer))
}

// History handles GET /history?limit=N
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "History")

	limit, err := validator.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	entries, err := h.usecase.History(ctx, limit)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.HistoryResponse{Entries: entries})
}

// Health handles GET /health. An empty index is reported as degraded, not as an error.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	documents := h.usecase.DocumentCount()
	status := "healthy"
	if documents == 0 {
		status = "degraded"
	}
	response.Success(w, entity.HealthResponse{Status: status, Documents: documents})
}

// Stats handles GET /stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, entity.StatsResponse{
		Documents:       h.usecase.DocumentCount(),
		ItemDefinition:  h.stats.ItemDefinition,
		DamageScenarios: h.stats.DamageScenarios,
	})
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyQuery), errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, context.DeadlineExceeded):
		h.respondError(ctx, w, http.StatusGatewayTimeout, "query timed out", err)
	default:
		h.respondError(ctx, w, http.StatusBadGateway, "query pipeline failed", err)
	}
}
