// internal/handlers/dashboard.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/stocklot-be/internal/adapters/db"
	redis_a "github.com/ammerola/stocklot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
)

// DashboardHandler serves the valuation overview
type DashboardHandler struct {
	db     *db.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(database *db.Database, cache ports.CacheRepository, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		db:     database,
		cache:  cache,
		logger: logger.With(slog.String("handler", "dashboard")),
	}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixDashboard, "main")
	var dashboard DashboardData

	err := h.cache.GetOrSet(ctx, cacheKey, &dashboard, func() (interface{}, error) {
		return h.loadDashboardData(ctx)
	}, 5*time.Minute)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

func (h *DashboardHandler) loadDashboardData(ctx context.Context) (*DashboardData, error) {
	dashboard := &DashboardData{
		StatusCounts: make(map[string]int64),
		Timestamp:    time.Now(),
	}

	summaryQuery := `
		SELECT
			COUNT(*)                          AS total_products,
			COALESCE(SUM(available_qty), 0)   AS total_units,
			COALESCE(SUM(stock_value), 0)     AS total_stock_value,
			COALESCE(SUM(sales_qty), 0)       AS total_units_sold
		FROM products
		WHERE deleted_at IS NULL
	`
	err := h.db.QueryRow(ctx, summaryQuery).Scan(
		&dashboard.Summary.TotalProducts,
		&dashboard.Summary.TotalUnits,
		&dashboard.Summary.TotalStockValue,
		&dashboard.Summary.TotalUnitsSold,
	)
	if err != nil {
		return nil, err
	}

	statusQuery := `
		SELECT status, COUNT(*)
		FROM products
		WHERE deleted_at IS NULL
		GROUP BY status
	`
	rows, err := h.db.Query(ctx, statusQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		dashboard.StatusCounts[status] = count
	}

	// Low-stock products together with the batch a sale would draw from next,
	// so restocking decisions can see the current cost basis.
	lowStockQuery := `
		SELECT p.id, p.sku, p.name, p.available_qty, p.stock_value,
		       nb.id, nb.quantity_available, nb.cost_per_item
		FROM products p
		LEFT JOIN LATERAL (
			SELECT b.id, b.quantity_available, b.cost_per_item
			FROM batches b
			WHERE b.product_id = p.id AND b.quantity_available > 0
			ORDER BY b.purchase_date ASC, b.id ASC
			LIMIT 1
		) nb ON TRUE
		WHERE p.deleted_at IS NULL AND p.status IN ($1, $2)
		ORDER BY p.available_qty ASC
		LIMIT 20
	`
	lowRows, err := h.db.Query(ctx, lowStockQuery,
		string(domain.StatusLowStock), string(domain.StatusOutOfStock))
	if err != nil {
		return nil, err
	}
	defer lowRows.Close()

	for lowRows.Next() {
		var entry LowStockEntry
		var nextID *int64
		var nextQty *int
		var nextCost *decimal.Decimal
		if err := lowRows.Scan(&entry.ProductID, &entry.SKU, &entry.Name,
			&entry.AvailableQty, &entry.StockValue,
			&nextID, &nextQty, &nextCost); err != nil {
			continue
		}
		if nextID != nil {
			entry.NextBatch = &NextBatchHint{
				BatchID:           *nextID,
				QuantityAvailable: *nextQty,
				CostPerItem:       *nextCost,
			}
		}
		dashboard.LowStock = append(dashboard.LowStock, entry)
	}

	return dashboard, nil
}

// DashboardData is the valuation overview payload
type DashboardData struct {
	Summary      DashboardSummary `json:"summary"`
	StatusCounts map[string]int64 `json:"status_counts"`
	LowStock     []LowStockEntry  `json:"low_stock"`
	Timestamp    time.Time        `json:"timestamp"`
}

// DashboardSummary aggregates stock across all products
type DashboardSummary struct {
	TotalProducts   int64           `json:"total_products"`
	TotalUnits      int64           `json:"total_units"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	TotalUnitsSold  int64           `json:"total_units_sold"`
}

// LowStockEntry is a product flagged for restocking
type LowStockEntry struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	AvailableQty int             `json:"available_qty"`
	StockValue   decimal.Decimal `json:"stock_value"`
	NextBatch    *NextBatchHint  `json:"next_batch,omitempty"`
}

// NextBatchHint shows which batch the next sale would consume
type NextBatchHint struct {
	BatchID           int64           `json:"batch_id"`
	QuantityAvailable int             `json:"quantity_available"`
	CostPerItem       decimal.Decimal `json:"cost_per_item"`
}
