package benchmarks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/stocklot-be/internal/adapters/db"
	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
	"github.com/ammerola/stocklot-be/internal/core/services"
	"github.com/ammerola/stocklot-be/test/helpers"
)

func BenchmarkCostingOperations(b *testing.B) {
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	logger := helpers.TestLogger()
	productRepo := db.NewProductRepository(testDB.Database, logger)
	batchRepo := db.NewBatchRepository(testDB.Database, logger)
	service := services.NewCostingService(productRepo, batchRepo, testDB.Database, nil, logger)
	ctx := context.Background()

	seedProduct := func(b *testing.B, sku string) *domain.Product {
		b.Helper()
		product := helpers.CreateTestProduct(func(p *domain.Product) {
			p.SKU = sku
			p.Quantity = 0
			p.AvailableQty = 0
		})
		if err := productRepo.Save(ctx, product); err != nil {
			b.Fatalf("seed product: %v", err)
		}
		return product
	}

	b.Run("AddBatch", func(b *testing.B) {
		product := seedProduct(b, "BENCH-ADD-01")
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, err := service.AddBatch(ctx, ports.AddBatchParams{
				ProductID:         product.ID,
				PurchaseDate:      time.Now().Add(time.Duration(i) * time.Second),
				QuantityPurchased: 10,
				CostPerItem:       decimal.NewFromFloat(2.50),
				BatchReference:    fmt.Sprintf("BENCH-%d", i),
			})
			if err != nil {
				b.Fatalf("add batch: %v", err)
			}
		}
	})

	b.Run("Consume", func(b *testing.B) {
		product := seedProduct(b, "BENCH-CONSUME-01")
		_, err := service.AddBatch(ctx, ports.AddBatchParams{
			ProductID:         product.ID,
			PurchaseDate:      time.Now(),
			QuantityPurchased: b.N,
			CostPerItem:       decimal.NewFromFloat(2.00),
		})
		if err != nil {
			b.Fatalf("seed batch: %v", err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := service.Consume(ctx, ports.ConsumeParams{
				ProductID: product.ID,
				Quantity:  1,
			}); err != nil {
				b.Fatalf("consume: %v", err)
			}
		}
	})

	b.Run("Recompute", func(b *testing.B) {
		product := seedProduct(b, "BENCH-RECOMPUTE-01")
		for i := 0; i < 20; i++ {
			_, err := service.AddBatch(ctx, ports.AddBatchParams{
				ProductID:         product.ID,
				PurchaseDate:      time.Now().Add(time.Duration(i) * time.Hour),
				QuantityPurchased: 5,
				CostPerItem:       decimal.NewFromFloat(1.25),
			})
			if err != nil {
				b.Fatalf("seed batch: %v", err)
			}
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := service.Recompute(ctx, product.ID); err != nil {
				b.Fatalf("recompute: %v", err)
			}
		}
	})

	b.Run("NextBatch", func(b *testing.B) {
		product := seedProduct(b, "BENCH-NEXT-01")
		_, err := service.AddBatch(ctx, ports.AddBatchParams{
			ProductID:         product.ID,
			PurchaseDate:      time.Now(),
			QuantityPurchased: 100,
			CostPerItem:       decimal.NewFromFloat(2.00),
		})
		if err != nil {
			b.Fatalf("seed batch: %v", err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := service.NextBatch(ctx, product.ID); err != nil {
				b.Fatalf("next batch: %v", err)
			}
		}
	})
}
