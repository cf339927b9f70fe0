// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
)

const productColumns = `
	id, sku, name, quantity, cost_per_item, purchase_date,
	available_qty, stock_value, status, sales_qty,
	created_at, updated_at`

// productRepository implements ports.ProductRepository
type productRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *Database, logger *slog.Logger) ports.ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "product")),
	}
}

// Save creates a new product
func (r *productRepository) Save(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (
			id, sku, name, quantity, cost_per_item, purchase_date,
			available_qty, stock_value, status, sales_qty,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Quantity, p.CostPerItem, p.PurchaseDate,
		p.AvailableQty, p.StockValue, p.Status, p.SalesQty,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", translateError(err))
	}

	r.logger.DebugContext(ctx, "product saved",
		slog.String("product_id", p.ID.String()),
		slog.String("sku", p.SKU))

	return nil
}

// FindByID retrieves a product by id
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`
	return scanProductRow(r.db.QueryRow(ctx, query, id))
}

// FindBySKU retrieves a product by SKU
func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1 AND deleted_at IS NULL`
	return scanProductRow(r.db.QueryRow(ctx, query, sku))
}

// SetStatus applies a manual status override (inactive, discontinued) or
// clears one by handing the product back to automatic derivation.
func (r *productRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.ProductStatus) error {
	query := `UPDATE products SET status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set product status: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// GetForUpdate retrieves a product with its row locked. This lock is the
// per-product critical section: every mutating engine operation acquires it
// first, so operations on one product serialize while other products
// proceed in parallel.
func (r *productRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return scanProductRow(tx.QueryRow(ctx, query, id))
}

// UpdateValuation writes the three derived fields owned by the valuation
// rollup
func (r *productRepository) UpdateValuation(ctx context.Context, tx pgx.Tx, id uuid.UUID,
	availableQty int, stockValue decimal.Decimal, status domain.ProductStatus) error {

	query := `
		UPDATE products
		SET available_qty = $2, stock_value = $3, status = $4, updated_at = $5
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, availableQty, stockValue, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update valuation: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// IncrementSales advances the cumulative sales counter inside the same
// transaction that depletes batches, so the two cannot drift apart.
func (r *productRepository) IncrementSales(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error {
	query := `UPDATE products SET sales_qty = sales_qty + $2, updated_at = $3 WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, qty, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment sales: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List retrieves products with filtering and pagination
func (r *productRepository) List(ctx context.Context, params ports.ProductListParams) ([]*domain.Product, int64, error) {
	qb := squirrel.Select(
		"id", "sku", "name", "quantity", "cost_per_item", "purchase_date",
		"available_qty", "stock_value", "status", "sales_qty",
		"created_at", "updated_at",
	).From("products").
		Where("deleted_at IS NULL").
		PlaceholderFormat(squirrel.Dollar)

	if params.Search != "" {
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"name": "%" + params.Search + "%"},
			squirrel.ILike{"sku": "%" + params.Search + "%"},
		})
	}
	if params.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": params.Status})
	}

	countQb := qb.Column("COUNT(*) OVER()").Limit(1)
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	err = r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount)
	if err != nil && err != pgx.ErrNoRows {
		return nil, 0, fmt.Errorf("failed to count products: %w", translateError(err))
	}

	orderBy := "created_at DESC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}

		switch params.SortBy {
		case "sku":
			orderBy = "sku " + direction
		case "name":
			orderBy = "name " + direction
		case "available_qty":
			orderBy = "available_qty " + direction
		case "stock_value":
			orderBy = "stock_value " + direction
		default:
			orderBy = "created_at " + direction
		}
	}
	qb = qb.OrderBy(orderBy)

	if params.PageSize > 0 {
		qb = qb.Limit(uint64(params.PageSize))
		if params.Page > 1 {
			qb = qb.Offset(uint64((params.Page - 1) * params.PageSize))
		}
	}

	listSQL, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", translateError(err))
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		err := rows.Scan(
			&p.ID, &p.SKU, &p.Name, &p.Quantity, &p.CostPerItem, &p.PurchaseDate,
			&p.AvailableQty, &p.StockValue, &p.Status, &p.SalesQty,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", translateError(err))
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", translateError(err))
	}

	return products, totalCount, nil
}

func scanProductRow(row pgx.Row) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Quantity, &p.CostPerItem, &p.PurchaseDate,
		&p.AvailableQty, &p.StockValue, &p.Status, &p.SalesQty,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", translateError(err))
	}
	return p, nil
}
