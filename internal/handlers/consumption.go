// internal/handlers/consumption.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ammerola/stocklot-be/internal/core/ports"
)

// ConsumptionHandler records sales against a product's batch ledger
type ConsumptionHandler struct {
	service ports.CostingService
	logger  *slog.Logger
}

// NewConsumptionHandler creates a new consumption handler
func NewConsumptionHandler(service ports.CostingService, logger *slog.Logger) *ConsumptionHandler {
	return &ConsumptionHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "consumption")),
	}
}

// ConsumeRequest is the body for recording a sale. OrderID doubles as the
// idempotency key so a retried request does not deplete stock twice.
type ConsumeRequest struct {
	Quantity int    `json:"quantity"`
	OrderID  string `json:"order_id,omitempty"`
}

// Consume handles POST /api/v1/products/{id}/consume
func (h *ConsumptionHandler) Consume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var req ConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	result, err := h.service.Consume(ctx, ports.ConsumeParams{
		ProductID: productID,
		Quantity:  req.Quantity,
		DedupKey:  req.OrderID,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "consumption failed",
			slog.String("product_id", idStr),
			slog.Int("quantity", req.Quantity),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	if result.AlreadyApplied {
		h.logger.InfoContext(ctx, "duplicate consumption ignored",
			slog.String("product_id", idStr),
			slog.String("order_id", req.OrderID))
		respondJSON(w, http.StatusOK, result)
		return
	}

	h.logger.InfoContext(ctx, "stock consumed",
		slog.String("product_id", idStr),
		slog.Int("quantity", req.Quantity),
		slog.Int("batches_touched", len(result.Depleted)),
		slog.String("cost_of_goods", result.CostOfGoods.String()))

	respondJSON(w, http.StatusOK, result)
}
