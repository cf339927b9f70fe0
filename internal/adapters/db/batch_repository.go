// internal/adapters/db/batch_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
)

// fifoOrder is the canonical batch ordering: oldest purchase first, ties
// broken by insertion id.
const fifoOrder = "purchase_date ASC, id ASC"

const batchColumns = `
	id, product_id, purchase_date, quantity_purchased, quantity_available,
	cost_per_item, batch_reference, created_at, updated_at`

// batchRepository implements ports.BatchRepository
type batchRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *Database, logger *slog.Logger) ports.BatchRepository {
	return &batchRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "batch")),
	}
}

// FindByID retrieves a batch by its insertion id
func (r *batchRepository) FindByID(ctx context.Context, id int64) (*domain.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	return scanBatchRow(r.db.QueryRow(ctx, query, id))
}

// ListByProduct retrieves a product's batches in FIFO order
func (r *batchRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]domain.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE product_id = $1 ORDER BY ` + fifoOrder

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	return scanBatchRows(rows)
}

// GetForUpdate retrieves a batch with its row locked for the transaction
func (r *batchRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1 FOR UPDATE`
	return scanBatchRow(tx.QueryRow(ctx, query, id))
}

// ListByProductTx retrieves batches in FIFO order inside a transaction.
// The caller holds the product row lock, which serializes writers; no
// batch-level lock is needed.
func (r *batchRepository) ListByProductTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID) ([]domain.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE product_id = $1 ORDER BY ` + fifoOrder

	rows, err := tx.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	return scanBatchRows(rows)
}

// CountByProduct counts a product's batches inside a transaction
func (r *batchRepository) CountByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM batches WHERE product_id = $1`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count batches: %w", translateError(err))
	}
	return count, nil
}

// Insert creates a new batch row and fills in its insertion id
func (r *batchRepository) Insert(ctx context.Context, tx pgx.Tx, b *domain.Batch) error {
	query := `
		INSERT INTO batches (
			product_id, purchase_date, quantity_purchased, quantity_available,
			cost_per_item, batch_reference, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var reference interface{}
	if b.BatchReference != "" {
		reference = b.BatchReference
	}

	err := tx.QueryRow(ctx, query,
		b.ProductID, b.PurchaseDate, b.QuantityPurchased, b.QuantityAvailable,
		b.CostPerItem, reference, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", translateError(err))
	}

	r.logger.DebugContext(ctx, "batch inserted",
		slog.Int64("batch_id", b.ID),
		slog.String("product_id", b.ProductID.String()))

	return nil
}

// Update rewrites a batch's editable fields
func (r *batchRepository) Update(ctx context.Context, tx pgx.Tx, b *domain.Batch) error {
	query := `
		UPDATE batches SET
			purchase_date = $2, quantity_purchased = $3, quantity_available = $4,
			cost_per_item = $5, batch_reference = $6, updated_at = $7
		WHERE id = $1`

	var reference interface{}
	if b.BatchReference != "" {
		reference = b.BatchReference
	}

	tag, err := tx.Exec(ctx, query,
		b.ID, b.PurchaseDate, b.QuantityPurchased, b.QuantityAvailable,
		b.CostPerItem, reference, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("batch %d: %w", b.ID, domain.ErrNotFound)
	}

	return nil
}

// Decrement deducts qty from a batch's available quantity. The guard in the
// WHERE clause keeps quantity_available from going negative even if a caller
// bypasses the service layer.
func (r *batchRepository) Decrement(ctx context.Context, tx pgx.Tx, id int64, qty int) error {
	query := `
		UPDATE batches
		SET quantity_available = quantity_available - $2, updated_at = $3
		WHERE id = $1 AND quantity_available >= $2`

	tag, err := tx.Exec(ctx, query, id, qty, time.Now())
	if err != nil {
		return fmt.Errorf("failed to decrement batch: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("batch %d cannot supply %d units: %w", id, qty, domain.ErrConcurrencyConflict)
	}

	return nil
}

// Delete removes a batch row
func (r *batchRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("batch %d: %w", id, domain.ErrNotFound)
	}

	r.logger.DebugContext(ctx, "batch deleted", slog.Int64("batch_id", id))
	return nil
}

func scanBatchRow(row pgx.Row) (*domain.Batch, error) {
	b := &domain.Batch{}
	var reference sql.NullString

	err := row.Scan(
		&b.ID, &b.ProductID, &b.PurchaseDate, &b.QuantityPurchased, &b.QuantityAvailable,
		&b.CostPerItem, &reference, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan batch: %w", translateError(err))
	}

	b.BatchReference = reference.String
	return b, nil
}

func scanBatchRows(rows pgx.Rows) ([]domain.Batch, error) {
	defer rows.Close()

	var batches []domain.Batch
	for rows.Next() {
		b := domain.Batch{}
		var reference sql.NullString

		err := rows.Scan(
			&b.ID, &b.ProductID, &b.PurchaseDate, &b.QuantityPurchased, &b.QuantityAvailable,
			&b.CostPerItem, &reference, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", translateError(err))
		}

		b.BatchReference = reference.String
		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", translateError(err))
	}

	return batches, nil
}
