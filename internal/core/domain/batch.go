// internal/core/domain/batch.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchState represents the consumption state of a batch
type BatchState string

// Batch state constants. Transitions are driven purely by consumption;
// a batch can only be deleted while unconsumed.
const (
	BatchUnconsumed        BatchState = "unconsumed"
	BatchPartiallyConsumed BatchState = "partially_consumed"
	BatchFullyConsumed     BatchState = "fully_consumed"
)

// InitialBatchReference labels the batch synthesized from a legacy product's
// flat fields when it is first read under batch tracking.
const InitialBatchReference = "Initial Batch"

// Batch is a discrete purchase lot. ID is a monotonically increasing
// insertion id and is the FIFO tie-breaker for batches sharing a purchase
// date. QuantityAvailable only decreases through consumption; explicit edits
// are the one exception.
type Batch struct {
	ID                int64           `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	PurchaseDate      time.Time       `json:"purchase_date"`
	QuantityPurchased int             `json:"quantity_purchased"`
	QuantityAvailable int             `json:"quantity_available"`
	CostPerItem       decimal.Decimal `json:"cost_per_item"`
	BatchReference    string          `json:"batch_reference,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Validate checks the batch's range invariants
func (b *Batch) Validate() error {
	if b.ProductID == uuid.Nil {
		return &ValidationError{Field: "product_id", Reason: "product_id is required"}
	}
	if b.QuantityPurchased < 0 {
		return &ValidationError{Field: "quantity_purchased", Reason: "quantity_purchased cannot be negative"}
	}
	if b.QuantityAvailable < 0 {
		return &ValidationError{Field: "quantity_available", Reason: "quantity_available cannot be negative"}
	}
	if b.QuantityAvailable > b.QuantityPurchased {
		return &ValidationError{Field: "quantity_available", Reason: "quantity_available cannot exceed quantity_purchased"}
	}
	if b.CostPerItem.IsNegative() {
		return &ValidationError{Field: "cost_per_item", Reason: "cost_per_item cannot be negative"}
	}
	if b.PurchaseDate.IsZero() {
		return &ValidationError{Field: "purchase_date", Reason: "purchase_date is required"}
	}
	return nil
}

// Consumed returns the number of units already drawn from this batch.
func (b *Batch) Consumed() int {
	return b.QuantityPurchased - b.QuantityAvailable
}

// State returns the batch's consumption state.
func (b *Batch) State() BatchState {
	switch {
	case b.QuantityAvailable == b.QuantityPurchased:
		return BatchUnconsumed
	case b.QuantityAvailable == 0:
		return BatchFullyConsumed
	default:
		return BatchPartiallyConsumed
	}
}

// RemainingValue is the batch's contribution to the product's stock value.
func (b *Batch) RemainingValue() decimal.Decimal {
	return b.CostPerItem.Mul(decimal.NewFromInt(int64(b.QuantityAvailable)))
}

// PrepareForStorage sets timestamps before insert
func (b *Batch) PrepareForStorage() {
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
