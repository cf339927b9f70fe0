// internal/handlers/product.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
)

// ProductHandler handles product-related HTTP requests. Reads go through the
// costing service so legacy products are bootstrapped into batches on first
// touch.
type ProductHandler struct {
	service  ports.CostingService
	products ports.ProductRepository
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service ports.CostingService, products ports.ProductRepository, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		products: products,
		logger:   logger.With(slog.String("handler", "product")),
	}
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.service.GetProduct(ctx, productID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get product",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := h.parseListParams(r)

	products, total, err := h.products.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"products":  products,
		"total":     total,
		"page":      params.Page,
		"page_size": params.PageSize,
	})
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product := req.ToDomain()
	if err := product.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product.PrepareForStorage()

	if err := h.products.Save(ctx, product); err != nil {
		h.logger.ErrorContext(ctx, "failed to create product",
			slog.String("sku", product.SKU),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	// Materialize the initial batch right away so the ledger is queryable
	// without waiting for the first read or sale.
	if product.AvailableQty > 0 {
		if err := h.service.EnsureBatches(ctx, product.ID); err != nil {
			h.logger.WarnContext(ctx, "initial batch creation deferred",
				slog.String("product_id", product.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	h.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.String()),
		slog.String("sku", product.SKU))

	respondJSON(w, http.StatusCreated, product)
}

// SetStatus handles PATCH /api/v1/products/{id}/status. Setting inactive or
// discontinued overrides the derived status; setting active hands control
// back to the valuation rollup.
func (h *ProductHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status := domain.ProductStatus(req.Status)
	if !status.IsManualStatus() && status != domain.StatusActive {
		respondError(w, http.StatusBadRequest, "status must be active, inactive or discontinued")
		return
	}

	if err := h.products.SetStatus(ctx, productID, status); err != nil {
		h.logger.ErrorContext(ctx, "failed to set product status",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	// Re-derive so that clearing an override immediately reflects stock levels.
	product, err := h.service.Recompute(ctx, productID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to recompute after status change",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "product status updated",
		slog.String("product_id", idStr),
		slog.String("status", string(product.Status)))

	respondJSON(w, http.StatusOK, product)
}

// Recompute handles POST /api/v1/products/{id}/recompute
func (h *ProductHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.service.Recompute(ctx, productID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to recompute product",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) parseListParams(r *http.Request) ports.ProductListParams {
	params := ports.ProductListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				params.PageSize = 100
			} else {
				params.PageSize = l
			}
		}
	}

	params.Search = r.URL.Query().Get("search")
	params.Status = r.URL.Query().Get("status")

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// CreateProductRequest represents the request body for creating a product.
// Quantity, cost and purchase date describe initial stock; they become the
// product's first batch.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	CostPerItem  decimal.Decimal `json:"cost_per_item"`
	PurchaseDate *time.Time      `json:"purchase_date,omitempty"`
}

// ToDomain converts the request to a domain model
func (r *CreateProductRequest) ToDomain() *domain.Product {
	product := &domain.Product{
		ID:           uuid.New(),
		SKU:          r.SKU,
		Name:         r.Name,
		Quantity:     r.Quantity,
		CostPerItem:  r.CostPerItem,
		AvailableQty: r.Quantity,
		StockValue:   r.CostPerItem.Mul(decimal.NewFromInt(int64(r.Quantity))),
	}
	if r.PurchaseDate != nil {
		product.PurchaseDate = *r.PurchaseDate
	}
	return product
}
