// internal/core/domain/product_test.go
package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stocklot-be/internal/core/domain"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name         string
		current      domain.ProductStatus
		availableQty int
		want         domain.ProductStatus
	}{
		{"zero_is_out_of_stock", domain.StatusActive, 0, domain.StatusOutOfStock},
		{"below_threshold_is_low_stock", domain.StatusActive, 4, domain.StatusLowStock},
		{"one_unit_is_low_stock", domain.StatusActive, 1, domain.StatusLowStock},
		{"exactly_threshold_is_active", domain.StatusActive, 5, domain.StatusActive},
		{"above_threshold_is_active", domain.StatusActive, 100, domain.StatusActive},
		{"low_stock_recovers_to_active", domain.StatusLowStock, 20, domain.StatusActive},
		{"out_of_stock_recovers_to_active", domain.StatusOutOfStock, 20, domain.StatusActive},
		{"inactive_survives_restock", domain.StatusInactive, 100, domain.StatusInactive},
		{"inactive_survives_depletion", domain.StatusInactive, 0, domain.StatusInactive},
		{"discontinued_survives_restock", domain.StatusDiscontinued, 100, domain.StatusDiscontinued},
		{"discontinued_survives_depletion", domain.StatusDiscontinued, 0, domain.StatusDiscontinued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.DeriveStatus(tt.current, tt.availableQty)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductStatus_IsManualStatus(t *testing.T) {
	assert.True(t, domain.StatusInactive.IsManualStatus())
	assert.True(t, domain.StatusDiscontinued.IsManualStatus())
	assert.False(t, domain.StatusActive.IsManualStatus())
	assert.False(t, domain.StatusLowStock.IsManualStatus())
	assert.False(t, domain.StatusOutOfStock.IsManualStatus())
}

func TestProduct_Validate(t *testing.T) {
	valid := func() *domain.Product {
		return &domain.Product{
			SKU:         "WID-STL-01",
			Name:        "Steel Widget",
			Quantity:    10,
			CostPerItem: decimal.NewFromFloat(2.50),
		}
	}

	tests := []struct {
		name      string
		modify    func(*domain.Product)
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid_product",
			modify:    func(p *domain.Product) {},
			wantError: false,
		},
		{
			name:      "missing_sku",
			modify:    func(p *domain.Product) { p.SKU = "" },
			wantError: true,
			errorMsg:  "sku is required",
		},
		{
			name:      "missing_name",
			modify:    func(p *domain.Product) { p.Name = "" },
			wantError: true,
			errorMsg:  "name is required",
		},
		{
			name:      "negative_quantity",
			modify:    func(p *domain.Product) { p.Quantity = -1 },
			wantError: true,
			errorMsg:  "quantity cannot be negative",
		},
		{
			name:      "negative_cost",
			modify:    func(p *domain.Product) { p.CostPerItem = decimal.NewFromFloat(-1) },
			wantError: true,
			errorMsg:  "cost_per_item cannot be negative",
		},
		{
			name:      "zero_quantity_is_allowed",
			modify:    func(p *domain.Product) { p.Quantity = 0 },
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.modify(p)

			err := p.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProduct_PrepareForStorage(t *testing.T) {
	t.Run("assigns_id_and_timestamps", func(t *testing.T) {
		p := &domain.Product{
			SKU:  "WID-STL-01",
			Name: "Steel Widget",
		}

		p.PrepareForStorage()

		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.False(t, p.CreatedAt.IsZero())
		assert.False(t, p.UpdatedAt.IsZero())
		assert.False(t, p.PurchaseDate.IsZero())
	})

	t.Run("derives_initial_status", func(t *testing.T) {
		p := &domain.Product{SKU: "A", Name: "B", AvailableQty: 3}
		p.PrepareForStorage()
		assert.Equal(t, domain.StatusLowStock, p.Status)
	})

	t.Run("keeps_existing_id_and_status", func(t *testing.T) {
		id := uuid.New()
		p := &domain.Product{ID: id, SKU: "A", Name: "B", Status: domain.StatusInactive}
		p.PrepareForStorage()
		assert.Equal(t, id, p.ID)
		assert.Equal(t, domain.StatusInactive, p.Status)
	})
}
