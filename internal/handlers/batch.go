// internal/handlers/batch.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ammerola/stocklot-be/internal/core/ports"
)

// BatchHandler handles purchase batch HTTP requests
type BatchHandler struct {
	service ports.CostingService
	logger  *slog.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(service ports.CostingService, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "batch")),
	}
}

// AddBatch handles POST /api/v1/products/{id}/batches
func (h *BatchHandler) AddBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var params ports.AddBatchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	params.ProductID = productID

	batch, err := h.service.AddBatch(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to add batch",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "batch added",
		slog.String("product_id", idStr),
		slog.Int64("batch_id", batch.ID))

	respondJSON(w, http.StatusCreated, batch)
}

// ListBatches handles GET /api/v1/products/{id}/batches. Batches come back
// in consumption order, which doubles as the cost basis audit view.
func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	batches, err := h.service.ListBatches(ctx, productID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list batches",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"batches":    batches,
		"count":      len(batches),
	})
}

// NextBatch handles GET /api/v1/products/{id}/batches/next
func (h *BatchHandler) NextBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	batch, err := h.service.NextBatch(ctx, productID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to resolve next batch",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, batch)
}

// GetBatch handles GET /api/v1/batches/{batchId}
func (h *BatchHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	batchID, err := h.parseBatchID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	batch, err := h.service.GetBatch(ctx, batchID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get batch",
			slog.Int64("batch_id", batchID),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, batch)
}

// UpdateBatch handles PUT /api/v1/batches/{batchId}
func (h *BatchHandler) UpdateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	batchID, err := h.parseBatchID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	var params ports.UpdateBatchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	batch, err := h.service.UpdateBatch(ctx, batchID, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update batch",
			slog.Int64("batch_id", batchID),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "batch updated", slog.Int64("batch_id", batchID))

	respondJSON(w, http.StatusOK, batch)
}

// DeleteBatch handles DELETE /api/v1/batches/{batchId}
func (h *BatchHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	batchID, err := h.parseBatchID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid batch ID format")
		return
	}

	if err := h.service.DeleteBatch(ctx, batchID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete batch",
			slog.Int64("batch_id", batchID),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "batch deleted", slog.Int64("batch_id", batchID))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Batch deleted successfully",
		"batch_id": batchID,
	})
}

func (h *BatchHandler) parseBatchID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("batchId"), 10, 64)
}
