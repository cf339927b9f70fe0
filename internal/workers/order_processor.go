// internal/workers/order_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
)

// OrderProcessor applies incoming orders to the batch ledger
type OrderProcessor struct {
	service ports.CostingService
	logger  *slog.Logger
}

// NewOrderProcessor creates a new order processor
func NewOrderProcessor(service ports.CostingService, logger *slog.Logger) *OrderProcessor {
	return &OrderProcessor{
		service: service,
		logger:  logger.With(slog.String("processor", "order")),
	}
}

// ProcessOrder consumes stock for one order. Insufficient stock is a
// terminal outcome for the task, not a transient failure, so it skips the
// retry schedule.
func (p *OrderProcessor) ProcessOrder(ctx context.Context, t *asynq.Task) error {
	var payload OrderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if payload.OrderID == "" || payload.Quantity <= 0 {
		return fmt.Errorf("invalid order payload: %w", asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "processing order",
		slog.String("order_id", payload.OrderID),
		slog.String("product_id", payload.ProductID.String()),
		slog.Int("quantity", payload.Quantity))

	result, err := p.service.Consume(ctx, ports.ConsumeParams{
		ProductID: payload.ProductID,
		Quantity:  payload.Quantity,
		DedupKey:  payload.OrderID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotFound) {
			p.logger.WarnContext(ctx, "order cannot be fulfilled",
				slog.String("order_id", payload.OrderID),
				slog.String("error", err.Error()))
			return fmt.Errorf("order %s: %v: %w", payload.OrderID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("order %s: %w", payload.OrderID, err)
	}

	if result.AlreadyApplied {
		p.logger.InfoContext(ctx, "order already applied, skipping",
			slog.String("order_id", payload.OrderID))
		return nil
	}

	p.logger.InfoContext(ctx, "order processed",
		slog.String("order_id", payload.OrderID),
		slog.Int("quantity", result.Quantity),
		slog.Int("batches_touched", len(result.Depleted)),
		slog.String("cost_of_goods", result.CostOfGoods.String()))

	return nil
}
