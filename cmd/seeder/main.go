// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stocklot-be/internal/adapters/db"
	redis_a "github.com/ammerola/stocklot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
	"github.com/ammerola/stocklot-be/internal/core/services"
	"github.com/ammerola/stocklot-be/internal/pkg/config"
	"github.com/ammerola/stocklot-be/internal/pkg/logger"
)

// Development seed data: products with layered purchase batches at varying
// costs, plus a few recorded sales so FIFO state is non-trivial.
var sampleProducts = []struct {
	sku  string
	name string
}{
	{"WID-STL-01", "Steel Widget"},
	{"WID-ALU-02", "Aluminum Widget"},
	{"BRK-CER-01", "Ceramic Bracket"},
	{"FAS-M6-100", "M6 Fastener Pack"},
	{"GSK-RBR-12", "Rubber Gasket Set"},
	{"BRG-608-2R", "608 Ball Bearing"},
	{"SPR-CMP-30", "Compression Spring"},
	{"CBL-USB-2M", "USB Cable 2m"},
}

func main() {
	var (
		batchesPerProduct = flag.Int("batches", 3, "purchase batches to create per product")
		withSales         = flag.Bool("sales", true, "record sample sales after seeding")
		clean             = flag.Bool("clean", false, "truncate products and batches before seeding")
	)
	flag.Parse()

	appLogger := logger.SetupLogger("info", "text")
	slogger := appLogger.Logger

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConnections: 4,
		MinConnections: 1,
		ConnectTimeout: 10 * time.Second,
	}, slogger)
	if err != nil {
		slogger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	if err := migrate(ctx, cfg, slogger); err != nil {
		slogger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *clean {
		if _, err := database.Exec(ctx, `TRUNCATE products CASCADE`); err != nil {
			slogger.Error("failed to truncate tables", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slogger.Info("existing data removed")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	productRepo := db.NewProductRepository(database, slogger)
	batchRepo := db.NewBatchRepository(database, slogger)
	service := services.NewCostingService(productRepo, batchRepo, database, cache, slogger)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var seeded int
	for _, sp := range sampleProducts {
		if existing, err := productRepo.FindBySKU(ctx, sp.sku); err == nil && existing != nil {
			slogger.Info("product already seeded, skipping", slog.String("sku", sp.sku))
			continue
		}

		product := &domain.Product{
			SKU:  sp.sku,
			Name: sp.name,
		}
		product.PrepareForStorage()

		if err := productRepo.Save(ctx, product); err != nil {
			slogger.Error("failed to save product",
				slog.String("sku", sp.sku),
				slog.String("error", err.Error()))
			os.Exit(1)
		}

		// Layer batches back through time at drifting unit costs
		baseCost := decimal.NewFromFloat(1.0 + rng.Float64()*20)
		for i := 0; i < *batchesPerProduct; i++ {
			cost := baseCost.Add(decimal.NewFromFloat(rng.Float64() * 2)).Round(2)
			qty := 5 + rng.Intn(20)
			purchased := time.Now().AddDate(0, 0, -30*(*batchesPerProduct-i))

			_, err := service.AddBatch(ctx, ports.AddBatchParams{
				ProductID:         product.ID,
				PurchaseDate:      purchased,
				QuantityPurchased: qty,
				CostPerItem:       cost,
				BatchReference:    fmt.Sprintf("SEED-%s-%d", sp.sku, i+1),
			})
			if err != nil {
				slogger.Error("failed to add batch",
					slog.String("sku", sp.sku),
					slog.String("error", err.Error()))
				os.Exit(1)
			}
		}

		if *withSales && rng.Intn(2) == 0 {
			qty := 1 + rng.Intn(8)
			_, err := service.Consume(ctx, ports.ConsumeParams{
				ProductID: product.ID,
				Quantity:  qty,
				DedupKey:  fmt.Sprintf("seed-order-%s", sp.sku),
			})
			if err != nil {
				slogger.Warn("failed to record sample sale",
					slog.String("sku", sp.sku),
					slog.String("error", err.Error()))
			}
		}

		seeded++
	}

	slogger.Info("seeding complete",
		slog.Int("products", seeded),
		slog.Int("batches_per_product", *batchesPerProduct))
}

func migrate(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	migrator, err := db.NewMigrator(&db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}, slogger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up(ctx)
}
