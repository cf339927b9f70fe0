// internal/core/domain/batch_test.go
package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stocklot-be/internal/core/domain"
)

func validBatch() *domain.Batch {
	return &domain.Batch{
		ProductID:         uuid.New(),
		PurchaseDate:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		QuantityPurchased: 10,
		QuantityAvailable: 10,
		CostPerItem:       decimal.NewFromFloat(2.50),
	}
}

func TestBatch_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*domain.Batch)
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid_batch",
			modify:    func(b *domain.Batch) {},
			wantError: false,
		},
		{
			name:      "missing_product_id",
			modify:    func(b *domain.Batch) { b.ProductID = uuid.Nil },
			wantError: true,
			errorMsg:  "product_id is required",
		},
		{
			name:      "negative_quantity_purchased",
			modify:    func(b *domain.Batch) { b.QuantityPurchased = -1 },
			wantError: true,
			errorMsg:  "quantity_purchased cannot be negative",
		},
		{
			name:      "negative_quantity_available",
			modify:    func(b *domain.Batch) { b.QuantityAvailable = -1 },
			wantError: true,
			errorMsg:  "quantity_available cannot be negative",
		},
		{
			name:      "available_exceeds_purchased",
			modify:    func(b *domain.Batch) { b.QuantityAvailable = 11 },
			wantError: true,
			errorMsg:  "quantity_available cannot exceed quantity_purchased",
		},
		{
			name:      "negative_cost",
			modify:    func(b *domain.Batch) { b.CostPerItem = decimal.NewFromFloat(-0.01) },
			wantError: true,
			errorMsg:  "cost_per_item cannot be negative",
		},
		{
			name:      "missing_purchase_date",
			modify:    func(b *domain.Batch) { b.PurchaseDate = time.Time{} },
			wantError: true,
			errorMsg:  "purchase_date is required",
		},
		{
			name: "zero_cost_is_allowed",
			modify: func(b *domain.Batch) {
				b.CostPerItem = decimal.Zero
			},
			wantError: false,
		},
		{
			name: "zero_quantities_are_allowed",
			modify: func(b *domain.Batch) {
				b.QuantityPurchased = 0
				b.QuantityAvailable = 0
			},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBatch()
			tt.modify(b)

			err := b.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.True(t, domain.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBatch_State(t *testing.T) {
	tests := []struct {
		name      string
		purchased int
		available int
		want      domain.BatchState
	}{
		{"fresh_batch", 10, 10, domain.BatchUnconsumed},
		{"partially_drawn", 10, 4, domain.BatchPartiallyConsumed},
		{"depleted", 10, 0, domain.BatchFullyConsumed},
		{"zero_size_batch", 0, 0, domain.BatchUnconsumed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBatch()
			b.QuantityPurchased = tt.purchased
			b.QuantityAvailable = tt.available
			assert.Equal(t, tt.want, b.State())
		})
	}
}

func TestBatch_Consumed(t *testing.T) {
	b := validBatch()
	b.QuantityPurchased = 10
	b.QuantityAvailable = 3
	assert.Equal(t, 7, b.Consumed())
}

func TestBatch_RemainingValue(t *testing.T) {
	b := validBatch()
	b.QuantityAvailable = 4
	b.CostPerItem = decimal.NewFromFloat(2.50)

	assert.True(t, b.RemainingValue().Equal(decimal.NewFromFloat(10.00)),
		"expected 10.00, got %s", b.RemainingValue())
}

func TestBatch_PrepareForStorage(t *testing.T) {
	b := validBatch()
	require.True(t, b.CreatedAt.IsZero())

	b.PrepareForStorage()

	assert.False(t, b.CreatedAt.IsZero())
	assert.False(t, b.UpdatedAt.IsZero())

	// A second call must not move CreatedAt.
	created := b.CreatedAt
	b.PrepareForStorage()
	assert.Equal(t, created, b.CreatedAt)
}
