// internal/core/ports/repositories.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stocklot-be/internal/core/domain"
)

// ProductRepository is the persistence port for products. Methods taking a
// pgx.Tx participate in the per-product critical section: GetForUpdate
// acquires the row lock that serializes all mutations for one product while
// leaving other products fully parallel.
type ProductRepository interface {
	Save(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, params ProductListParams) ([]*domain.Product, int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ProductStatus) error

	// Transaction-scoped operations
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Product, error)
	UpdateValuation(ctx context.Context, tx pgx.Tx, id uuid.UUID,
		availableQty int, stockValue decimal.Decimal, status domain.ProductStatus) error
	IncrementSales(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error
}

// BatchRepository is the persistence port for purchase batches. All listing
// methods return batches in FIFO order: purchase_date ascending, insertion
// id ascending.
type BatchRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Batch, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]domain.Batch, error)

	// Transaction-scoped operations
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Batch, error)
	ListByProductTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID) ([]domain.Batch, error)
	CountByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (int64, error)
	Insert(ctx context.Context, tx pgx.Tx, b *domain.Batch) error
	Update(ctx context.Context, tx pgx.Tx, b *domain.Batch) error
	Decrement(ctx context.Context, tx pgx.Tx, id int64, qty int) error
	Delete(ctx context.Context, tx pgx.Tx, id int64) error
}

// ProductListParams holds filters for listing products
type ProductListParams struct {
	Search    string
	Status    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}
