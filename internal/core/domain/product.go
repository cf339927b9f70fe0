// internal/core/domain/product.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents a product's stock status
type ProductStatus string

// Status constants. Inactive and discontinued are manual overrides set by an
// operator; the remaining three are derived from available quantity.
const (
	StatusActive       ProductStatus = "active"
	StatusLowStock     ProductStatus = "low_stock"
	StatusOutOfStock   ProductStatus = "out_of_stock"
	StatusInactive     ProductStatus = "inactive"
	StatusDiscontinued ProductStatus = "discontinued"
)

// LowStockThreshold is the available quantity below which a product is
// flagged low_stock. A product with exactly this many units is still active.
const LowStockThreshold = 5

// Product represents a sellable product whose stock is held in purchase
// batches. Quantity, CostPerItem and PurchaseDate are legacy flat fields kept
// for products created before batch tracking; AvailableQty, StockValue and
// Status are derived from the batch set and owned by the valuation rollup.
type Product struct {
	ID           uuid.UUID       `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	CostPerItem  decimal.Decimal `json:"cost_per_item"`
	PurchaseDate time.Time       `json:"purchase_date"`
	AvailableQty int             `json:"available_qty"`
	StockValue   decimal.Decimal `json:"stock_value"`
	Status       ProductStatus   `json:"status"`
	SalesQty     int             `json:"sales_qty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
}

// IsManualStatus reports whether s is an operator override that must survive
// valuation recomputes.
func (s ProductStatus) IsManualStatus() bool {
	return s == StatusInactive || s == StatusDiscontinued
}

// DeriveStatus returns the status a product should carry given its current
// status and recomputed available quantity. Manual overrides always win.
func DeriveStatus(current ProductStatus, availableQty int) ProductStatus {
	if current.IsManualStatus() {
		return current
	}
	switch {
	case availableQty <= 0:
		return StatusOutOfStock
	case availableQty < LowStockThreshold:
		return StatusLowStock
	default:
		return StatusActive
	}
}

// Validate performs domain validation on the product
func (p *Product) Validate() error {
	if p.SKU == "" {
		return &ValidationError{Field: "sku", Reason: "sku is required"}
	}
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if p.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "quantity cannot be negative"}
	}
	if p.CostPerItem.IsNegative() {
		return &ValidationError{Field: "cost_per_item", Reason: "cost_per_item cannot be negative"}
	}
	return nil
}

// PrepareForStorage prepares the product for database storage
func (p *Product) PrepareForStorage() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if p.PurchaseDate.IsZero() {
		p.PurchaseDate = now
	}
	if p.Status == "" {
		p.Status = DeriveStatus(StatusActive, p.AvailableQty)
	}
}
