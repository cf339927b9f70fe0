// internal/core/services/costing.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
)

// Cache key layout for the costing service.
const (
	productSummaryKeyPrefix = "product:summary:"
	consumeDedupKeyPrefix   = "consume:dedup:"
	dedupTTL                = 7 * 24 * time.Hour
)

// CostingService implements the FIFO batch costing engine. Every mutation
// runs inside a transaction that first locks the owning product's row, so
// all operations on one product are serialized while different products
// proceed in parallel.
type CostingService struct {
	products ports.ProductRepository
	batches  ports.BatchRepository
	db       ports.Transactor
	cache    ports.CacheRepository
	logger   *slog.Logger
}

// Statically assert that *CostingService implements the CostingService port.
var _ ports.CostingService = (*CostingService)(nil)

// NewCostingService creates a new costing service
func NewCostingService(products ports.ProductRepository, batches ports.BatchRepository,
	db ports.Transactor, cache ports.CacheRepository, logger *slog.Logger) *CostingService {
	return &CostingService{
		products: products,
		batches:  batches,
		db:       db,
		cache:    cache,
		logger:   logger.With(slog.String("service", "costing")),
	}
}

// transact runs fn inside a transaction, retrying exactly once with a fresh
// read when the persistence layer reports a transient conflict.
func (s *CostingService) transact(ctx context.Context, fn func(pgx.Tx) error) error {
	err := s.db.Transaction(ctx, fn)
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		s.logger.WarnContext(ctx, "transient conflict, retrying transaction")
		err = s.db.Transaction(ctx, fn)
	}
	return err
}

// Consume atomically deducts a sold quantity from a product's batches in
// FIFO order. Either the full quantity is removed across one or more batches
// or nothing changes.
func (s *CostingService) Consume(ctx context.Context, params ports.ConsumeParams) (*ports.ConsumeResult, error) {
	if params.Quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "quantity must be positive"}
	}

	// A caller-supplied dedup key (usually an order id) makes retries safe:
	// a sale that was already applied is returned from cache, not re-applied.
	if params.DedupKey != "" && s.cache != nil {
		var prior ports.ConsumeResult
		if err := s.cache.Get(ctx, consumeDedupKeyPrefix+params.DedupKey, &prior); err == nil {
			prior.AlreadyApplied = true
			s.logger.InfoContext(ctx, "consumption already applied",
				slog.String("dedup_key", params.DedupKey),
				slog.String("product_id", params.ProductID.String()))
			return &prior, nil
		}
	}

	var result *ports.ConsumeResult
	err := s.transact(ctx, func(tx pgx.Tx) error {
		product, err := s.products.GetForUpdate(ctx, tx, params.ProductID)
		if err != nil {
			return err
		}

		if _, err := s.ensureBatchesTx(ctx, tx, product); err != nil {
			return err
		}

		batches, err := s.batches.ListByProductTx(ctx, tx, params.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load batches: %w", err)
		}

		totalAvailable := 0
		for i := range batches {
			totalAvailable += batches[i].QuantityAvailable
		}
		if totalAvailable < params.Quantity {
			return fmt.Errorf("requested %d, available %d: %w",
				params.Quantity, totalAvailable, domain.ErrInsufficientStock)
		}

		remaining := params.Quantity
		cogs := decimal.Zero
		var depleted []ports.Depletion

		for i := range batches {
			if remaining == 0 {
				break
			}
			b := &batches[i]
			if b.QuantityAvailable == 0 {
				continue
			}

			take := b.QuantityAvailable
			if take > remaining {
				take = remaining
			}

			if err := s.batches.Decrement(ctx, tx, b.ID, take); err != nil {
				return fmt.Errorf("failed to decrement batch %d: %w", b.ID, err)
			}
			b.QuantityAvailable -= take
			remaining -= take

			cogs = cogs.Add(b.CostPerItem.Mul(decimal.NewFromInt(int64(take))))
			depleted = append(depleted, ports.Depletion{
				BatchID:     b.ID,
				Amount:      take,
				CostPerItem: b.CostPerItem,
			})
		}

		if err := s.products.IncrementSales(ctx, tx, params.ProductID, params.Quantity); err != nil {
			return fmt.Errorf("failed to increment sales counter: %w", err)
		}

		updated, err := s.recomputeTx(ctx, tx, product, batches)
		if err != nil {
			return err
		}
		updated.SalesQty += params.Quantity

		result = &ports.ConsumeResult{
			ProductID:   params.ProductID,
			Quantity:    params.Quantity,
			Depleted:    depleted,
			CostOfGoods: cogs,
			Product:     updated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, params.ProductID)
	if params.DedupKey != "" && s.cache != nil {
		if _, err := s.cache.SetNX(ctx, consumeDedupKeyPrefix+params.DedupKey, result, dedupTTL); err != nil {
			s.logger.WarnContext(ctx, "failed to store dedup marker",
				slog.String("dedup_key", params.DedupKey),
				slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "consumption applied",
		slog.String("product_id", params.ProductID.String()),
		slog.Int("quantity", params.Quantity),
		slog.Int("batches_touched", len(result.Depleted)),
		slog.String("cost_of_goods", result.CostOfGoods.String()))

	return result, nil
}

// NextBatch returns the next batch a sale would draw from: the batch with
// the smallest purchase date among those with remaining quantity, insertion
// order breaking ties. Returns nil when the product is out of stock.
func (s *CostingService) NextBatch(ctx context.Context, productID uuid.UUID) (*domain.Batch, error) {
	batches, err := s.batches.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batches: %w", err)
	}
	for i := range batches {
		if batches[i].QuantityAvailable > 0 {
			return &batches[i], nil
		}
	}
	return nil, nil
}

// AddBatch records a new purchase batch for a product and recomputes its
// valuation. QuantityAvailable defaults to QuantityPurchased when omitted.
func (s *CostingService) AddBatch(ctx context.Context, params ports.AddBatchParams) (*domain.Batch, error) {
	available := params.QuantityPurchased
	if params.QuantityAvailable != nil {
		available = *params.QuantityAvailable
	}

	batch := &domain.Batch{
		ProductID:         params.ProductID,
		PurchaseDate:      params.PurchaseDate,
		QuantityPurchased: params.QuantityPurchased,
		QuantityAvailable: available,
		CostPerItem:       params.CostPerItem,
		BatchReference:    params.BatchReference,
	}
	if batch.PurchaseDate.IsZero() {
		batch.PurchaseDate = time.Now()
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	err := s.transact(ctx, func(tx pgx.Tx) error {
		product, err := s.products.GetForUpdate(ctx, tx, params.ProductID)
		if err != nil {
			return err
		}

		batch.PrepareForStorage()
		if err := s.batches.Insert(ctx, tx, batch); err != nil {
			return fmt.Errorf("failed to insert batch: %w", err)
		}

		batches, err := s.batches.ListByProductTx(ctx, tx, params.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load batches: %w", err)
		}
		_, err = s.recomputeTx(ctx, tx, product, batches)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, params.ProductID)
	s.logger.InfoContext(ctx, "batch added",
		slog.Int64("batch_id", batch.ID),
		slog.String("product_id", params.ProductID.String()),
		slog.Int("quantity_purchased", batch.QuantityPurchased))

	return batch, nil
}

// UpdateBatch edits a batch's fields, re-validating the range invariant on
// the resulting state. Reducing quantity_purchased below the amount already
// consumed is rejected: consumed history cannot be retroactively erased.
func (s *CostingService) UpdateBatch(ctx context.Context, batchID int64, params ports.UpdateBatchParams) (*domain.Batch, error) {
	existing, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Batch
	err = s.transact(ctx, func(tx pgx.Tx) error {
		product, err := s.products.GetForUpdate(ctx, tx, existing.ProductID)
		if err != nil {
			return err
		}

		// Re-read under the lock; the pre-lock copy may be stale.
		batch, err := s.batches.GetForUpdate(ctx, tx, batchID)
		if err != nil {
			return err
		}
		consumed := batch.Consumed()

		if params.PurchaseDate != nil {
			batch.PurchaseDate = *params.PurchaseDate
		}
		if params.QuantityPurchased != nil {
			batch.QuantityPurchased = *params.QuantityPurchased
		}
		if params.QuantityAvailable != nil {
			batch.QuantityAvailable = *params.QuantityAvailable
		}
		if params.CostPerItem != nil {
			batch.CostPerItem = *params.CostPerItem
		}
		if params.BatchReference != nil {
			batch.BatchReference = *params.BatchReference
		}

		if batch.QuantityPurchased < consumed {
			return &domain.ValidationError{
				Field:  "quantity_purchased",
				Reason: fmt.Sprintf("cannot be reduced below %d units already consumed", consumed),
			}
		}
		if err := batch.Validate(); err != nil {
			return err
		}

		batch.UpdatedAt = time.Now()
		if err := s.batches.Update(ctx, tx, batch); err != nil {
			return fmt.Errorf("failed to update batch: %w", err)
		}

		batches, err := s.batches.ListByProductTx(ctx, tx, batch.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load batches: %w", err)
		}
		if _, err := s.recomputeTx(ctx, tx, product, batches); err != nil {
			return err
		}

		updated = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, existing.ProductID)
	s.logger.InfoContext(ctx, "batch updated", slog.Int64("batch_id", batchID))

	return updated, nil
}

// DeleteBatch removes a batch. A batch with any recorded consumption is
// protected by ErrBatchInUse so the cost basis of past sales survives.
func (s *CostingService) DeleteBatch(ctx context.Context, batchID int64) error {
	existing, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		return err
	}

	err = s.transact(ctx, func(tx pgx.Tx) error {
		product, err := s.products.GetForUpdate(ctx, tx, existing.ProductID)
		if err != nil {
			return err
		}

		batch, err := s.batches.GetForUpdate(ctx, tx, batchID)
		if err != nil {
			return err
		}
		if batch.QuantityAvailable < batch.QuantityPurchased {
			return fmt.Errorf("batch %d has %d units consumed: %w",
				batchID, batch.Consumed(), domain.ErrBatchInUse)
		}

		if err := s.batches.Delete(ctx, tx, batchID); err != nil {
			return fmt.Errorf("failed to delete batch: %w", err)
		}

		batches, err := s.batches.ListByProductTx(ctx, tx, batch.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load batches: %w", err)
		}
		_, err = s.recomputeTx(ctx, tx, product, batches)
		return err
	})
	if err != nil {
		return err
	}

	s.afterMutation(ctx, existing.ProductID)
	s.logger.InfoContext(ctx, "batch deleted", slog.Int64("batch_id", batchID))

	return nil
}

// Recompute re-derives a product's available quantity, stock value and
// status from its batches and writes them back. Idempotent; the single
// source of truth reconciling batch detail with the product summary.
func (s *CostingService) Recompute(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	var updated *domain.Product
	err := s.transact(ctx, func(tx pgx.Tx) error {
		product, err := s.products.GetForUpdate(ctx, tx, productID)
		if err != nil {
			return err
		}
		batches, err := s.batches.ListByProductTx(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("failed to load batches: %w", err)
		}
		updated, err = s.recomputeTx(ctx, tx, product, batches)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, productID)
	return updated, nil
}

// EnsureBatches synthesizes an initial batch from a product's legacy flat
// fields when it has no batch records. Idempotent: the count guard runs
// under the same product row lock used for consumption.
func (s *CostingService) EnsureBatches(ctx context.Context, productID uuid.UUID) error {
	err := s.transact(ctx, func(tx pgx.Tx) error {
		product, err := s.products.GetForUpdate(ctx, tx, productID)
		if err != nil {
			return err
		}
		created, err := s.ensureBatchesTx(ctx, tx, product)
		if err != nil || !created {
			return err
		}
		batches, err := s.batches.ListByProductTx(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("failed to load batches: %w", err)
		}
		_, err = s.recomputeTx(ctx, tx, product, batches)
		return err
	})
	if err != nil {
		return err
	}

	s.afterMutation(ctx, productID)
	return nil
}

// GetProduct reads a product, lazily bootstrapping its batch set on first
// read under batch tracking.
func (s *CostingService) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	batches, err := s.batches.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batches: %w", err)
	}
	if len(batches) == 0 {
		if err := s.EnsureBatches(ctx, productID); err != nil {
			return nil, err
		}
		return s.products.FindByID(ctx, productID)
	}

	return product, nil
}

// GetBatch reads a single batch by id
func (s *CostingService) GetBatch(ctx context.Context, batchID int64) (*domain.Batch, error) {
	return s.batches.FindByID(ctx, batchID)
}

// ListBatches returns a product's batches in FIFO order for cost-basis
// auditing.
func (s *CostingService) ListBatches(ctx context.Context, productID uuid.UUID) ([]domain.Batch, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.batches.ListByProduct(ctx, productID)
}

// ensureBatchesTx creates the initial batch if the product has none.
// Must run with the product row already locked.
func (s *CostingService) ensureBatchesTx(ctx context.Context, tx pgx.Tx, product *domain.Product) (bool, error) {
	count, err := s.batches.CountByProduct(ctx, tx, product.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count batches: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	// Legacy rows predate batch tracking: quantity was the purchase size and
	// available_qty the live stock. A stray available_qty above quantity
	// widens the purchase size so the range invariant holds.
	purchased := product.Quantity
	if product.AvailableQty > purchased {
		purchased = product.AvailableQty
	}

	batch := &domain.Batch{
		ProductID:         product.ID,
		PurchaseDate:      product.PurchaseDate,
		QuantityPurchased: purchased,
		QuantityAvailable: product.AvailableQty,
		CostPerItem:       product.CostPerItem,
		BatchReference:    domain.InitialBatchReference,
	}
	if batch.PurchaseDate.IsZero() {
		batch.PurchaseDate = product.CreatedAt
	}
	batch.PrepareForStorage()

	if err := s.batches.Insert(ctx, tx, batch); err != nil {
		return false, fmt.Errorf("failed to insert initial batch: %w", err)
	}

	s.logger.InfoContext(ctx, "initial batch synthesized",
		slog.String("product_id", product.ID.String()),
		slog.Int("quantity_purchased", batch.QuantityPurchased),
		slog.Int("quantity_available", batch.QuantityAvailable))

	return true, nil
}

// recomputeTx derives the valuation fields from the in-memory batch set and
// persists them on the product row. The batch slice must reflect the state
// already written in this transaction.
func (s *CostingService) recomputeTx(ctx context.Context, tx pgx.Tx,
	product *domain.Product, batches []domain.Batch) (*domain.Product, error) {

	availableQty := 0
	stockValue := decimal.Zero
	for i := range batches {
		availableQty += batches[i].QuantityAvailable
		stockValue = stockValue.Add(batches[i].RemainingValue())
	}
	status := domain.DeriveStatus(product.Status, availableQty)

	if err := s.products.UpdateValuation(ctx, tx, product.ID, availableQty, stockValue, status); err != nil {
		return nil, fmt.Errorf("failed to update valuation: %w", err)
	}

	updated := *product
	updated.AvailableQty = availableQty
	updated.StockValue = stockValue
	updated.Status = status
	updated.UpdatedAt = time.Now()
	return &updated, nil
}

// afterMutation invalidates the product's cached valuation summary.
func (s *CostingService) afterMutation(ctx context.Context, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productSummaryKeyPrefix+productID.String()); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate product summary cache",
			slog.String("product_id", productID.String()),
			slog.String("error", err.Error()))
	}
}
