// internal/core/ports/costing_service.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stocklot-be/internal/core/domain"
)

// CostingService is the application port for the FIFO batch costing engine.
// This interface is implemented by the application service and consumed by
// handlers, workers and import tooling.
type CostingService interface {
	// Batch lifecycle
	AddBatch(ctx context.Context, params AddBatchParams) (*domain.Batch, error)
	UpdateBatch(ctx context.Context, batchID int64, params UpdateBatchParams) (*domain.Batch, error)
	DeleteBatch(ctx context.Context, batchID int64) error

	// Consumption
	Consume(ctx context.Context, params ConsumeParams) (*ConsumeResult, error)

	// FIFO selection (read-only)
	NextBatch(ctx context.Context, productID uuid.UUID) (*domain.Batch, error)

	// Valuation rollup
	Recompute(ctx context.Context, productID uuid.UUID) (*domain.Product, error)

	// Bootstrap
	EnsureBatches(ctx context.Context, productID uuid.UUID) error

	// Reads for collaborators
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	GetBatch(ctx context.Context, batchID int64) (*domain.Batch, error)
	ListBatches(ctx context.Context, productID uuid.UUID) ([]domain.Batch, error)
}

// AddBatchParams holds input for creating a purchase batch.
// QuantityAvailable defaults to QuantityPurchased when nil, the common case
// for a fresh purchase entry.
type AddBatchParams struct {
	ProductID         uuid.UUID       `json:"product_id"`
	PurchaseDate      time.Time       `json:"purchase_date"`
	QuantityPurchased int             `json:"quantity_purchased"`
	QuantityAvailable *int            `json:"quantity_available,omitempty"`
	CostPerItem       decimal.Decimal `json:"cost_per_item"`
	BatchReference    string          `json:"batch_reference,omitempty"`
}

// UpdateBatchParams holds the editable fields of a batch. Nil means "leave
// unchanged". QuantityPurchased may never drop below the amount already
// consumed.
type UpdateBatchParams struct {
	PurchaseDate      *time.Time       `json:"purchase_date,omitempty"`
	QuantityPurchased *int             `json:"quantity_purchased,omitempty"`
	QuantityAvailable *int             `json:"quantity_available,omitempty"`
	CostPerItem       *decimal.Decimal `json:"cost_per_item,omitempty"`
	BatchReference    *string          `json:"batch_reference,omitempty"`
}

// ConsumeParams describes a sale to record against a product's batches.
// DedupKey is supplied by the caller (typically an order id) so retries of
// the same sale can be detected; the engine does not invent one.
type ConsumeParams struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	DedupKey  string    `json:"dedup_key,omitempty"`
}

// Depletion records how many units a single consumption drew from one batch,
// together with that batch's unit cost for COGS reporting.
type Depletion struct {
	BatchID     int64           `json:"batch_id"`
	Amount      int             `json:"amount"`
	CostPerItem decimal.Decimal `json:"cost_per_item"`
}

// ConsumeResult is the outcome of a successful consumption.
type ConsumeResult struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       int             `json:"quantity"`
	Depleted       []Depletion     `json:"depleted"`
	CostOfGoods    decimal.Decimal `json:"cost_of_goods"`
	Product        *domain.Product `json:"product"`
	AlreadyApplied bool            `json:"already_applied,omitempty"`
}
