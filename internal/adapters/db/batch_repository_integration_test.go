//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/stocklot-be/internal/adapters/db"
	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
	"github.com/ammerola/stocklot-be/test/helpers"
)

type BatchRepositorySuite struct {
	suite.Suite
	testDB   *helpers.TestDB
	products ports.ProductRepository
	batches  ports.BatchRepository
	ctx      context.Context
}

func (s *BatchRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.products = db.NewProductRepository(s.testDB.Database, helpers.TestLogger())
	s.batches = db.NewBatchRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *BatchRepositorySuite) createProduct(sku string) *domain.Product {
	product := helpers.CreateTestProduct(func(p *domain.Product) {
		p.ID = uuid.New()
		p.SKU = sku
	})
	s.Require().NoError(s.products.Save(s.ctx, product))
	return product
}

func (s *BatchRepositorySuite) insertBatch(b *domain.Batch) {
	s.Require().NoError(s.testDB.Database.Transaction(s.ctx, func(tx pgx.Tx) error {
		b.PrepareForStorage()
		return s.batches.Insert(s.ctx, tx, b)
	}))
}

func (s *BatchRepositorySuite) TestInsertAndFindByID() {
	product := s.createProduct("INT-BATCH-01")

	batch := helpers.CreateTestBatch(product.ID, func(b *domain.Batch) {
		b.ID = 0
		b.BatchReference = "PO-INT-001"
	})
	s.insertBatch(batch)
	s.NotZero(batch.ID, "insert fills in the insertion id")

	found, err := s.batches.FindByID(s.ctx, batch.ID)
	s.Require().NoError(err)
	s.Equal(product.ID, found.ProductID)
	s.Equal("PO-INT-001", found.BatchReference)
	s.Equal(10, found.QuantityAvailable)
	s.True(found.CostPerItem.Equal(decimal.NewFromFloat(2.50)))
}

func (s *BatchRepositorySuite) TestFindByID_NotFound() {
	_, err := s.batches.FindByID(s.ctx, 999999)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *BatchRepositorySuite) TestListByProduct_FIFOOrder() {
	product := s.createProduct("INT-BATCH-02")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Inserted newest-first on purpose; listing must reorder by date.
	newer := helpers.CreateTestBatch(product.ID, func(b *domain.Batch) {
		b.ID = 0
		b.PurchaseDate = base.AddDate(0, 1, 0)
	})
	s.insertBatch(newer)

	older := helpers.CreateTestBatch(product.ID, func(b *domain.Batch) {
		b.ID = 0
		b.PurchaseDate = base
	})
	s.insertBatch(older)

	// Same date as older; its larger insertion id breaks the tie.
	sameDay := helpers.CreateTestBatch(product.ID, func(b *domain.Batch) {
		b.ID = 0
		b.PurchaseDate = base
	})
	s.insertBatch(sameDay)

	batches, err := s.batches.ListByProduct(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Require().Len(batches, 3)
	s.Equal(older.ID, batches[0].ID)
	s.Equal(sameDay.ID, batches[1].ID)
	s.Equal(newer.ID, batches[2].ID)
}

func (s *BatchRepositorySuite) TestDecrement() {
	product := s.createProduct("INT-BATCH-03")
	batch := helpers.CreateTestBatch(product.ID, func(b *domain.Batch) { b.ID = 0 })
	s.insertBatch(batch)

	err := s.testDB.Database.Transaction(s.ctx, func(tx pgx.Tx) error {
		return s.batches.Decrement(s.ctx, tx, batch.ID, 4)
	})
	s.Require().NoError(err)

	found, err := s.batches.FindByID(s.ctx, batch.ID)
	s.Require().NoError(err)
	s.Equal(6, found.QuantityAvailable)

	// Deducting more than what remains rolls back instead of going negative.
	err = s.testDB.Database.Transaction(s.ctx, func(tx pgx.Tx) error {
		return s.batches.Decrement(s.ctx, tx, batch.ID, 7)
	})
	s.ErrorIs(err, domain.ErrConcurrencyConflict)

	found, err = s.batches.FindByID(s.ctx, batch.ID)
	s.Require().NoError(err)
	s.Equal(6, found.QuantityAvailable)
}

func (s *BatchRepositorySuite) TestCountByProduct() {
	product := s.createProduct("INT-BATCH-04")

	var count int64
	err := s.testDB.Database.Transaction(s.ctx, func(tx pgx.Tx) error {
		var err error
		count, err = s.batches.CountByProduct(s.ctx, tx, product.ID)
		return err
	})
	s.Require().NoError(err)
	s.Equal(int64(0), count)

	batch := helpers.CreateTestBatch(product.ID, func(b *domain.Batch) { b.ID = 0 })
	s.insertBatch(batch)

	err = s.testDB.Database.Transaction(s.ctx, func(tx pgx.Tx) error {
		var err error
		count, err = s.batches.CountByProduct(s.ctx, tx, product.ID)
		return err
	})
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *BatchRepositorySuite) TestDelete() {
	product := s.createProduct("INT-BATCH-05")
	batch := helpers.CreateTestBatch(product.ID, func(b *domain.Batch) { b.ID = 0 })
	s.insertBatch(batch)

	err := s.testDB.Database.Transaction(s.ctx, func(tx pgx.Tx) error {
		return s.batches.Delete(s.ctx, tx, batch.ID)
	})
	s.Require().NoError(err)

	_, err = s.batches.FindByID(s.ctx, batch.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *BatchRepositorySuite) TestProductRoundTrip() {
	product := s.createProduct("INT-PROD-01")

	bySKU, err := s.products.FindBySKU(s.ctx, "INT-PROD-01")
	s.Require().NoError(err)
	s.Equal(product.ID, bySKU.ID)

	byID, err := s.products.FindByID(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal(product.SKU, byID.SKU)

	s.Require().NoError(s.products.SetStatus(s.ctx, product.ID, domain.StatusInactive))
	byID, err = s.products.FindByID(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusInactive, byID.Status)
}

func TestBatchRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(BatchRepositorySuite))
}
