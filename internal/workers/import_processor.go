// internal/workers/import_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/stocklot-be/internal/adapters/storage"
	"github.com/ammerola/stocklot-be/internal/core/ports"
)

// Expected spreadsheet columns, one purchase batch per row:
// A sku, B purchase_date, C quantity, D cost_per_item, E batch_reference
const (
	colSKU = iota
	colPurchaseDate
	colQuantity
	colCostPerItem
	colBatchReference
)

var importDateFormats = []string{"2006-01-02", "01/02/2006", "2006-01-02 15:04:05"}

// ImportProcessor turns uploaded spreadsheets into purchase batches
type ImportProcessor struct {
	service  ports.CostingService
	products ports.ProductRepository
	storage  storage.StorageClient
	logger   *slog.Logger
}

// NewImportProcessor creates a new import processor
func NewImportProcessor(service ports.CostingService, products ports.ProductRepository,
	store storage.StorageClient, logger *slog.Logger) *ImportProcessor {
	return &ImportProcessor{
		service:  service,
		products: products,
		storage:  store,
		logger:   logger.With(slog.String("processor", "import")),
	}
}

// ProcessBatchImport downloads the spreadsheet and adds one batch per row.
// Rows are independent: a bad row is logged and skipped, not fatal.
func (p *ImportProcessor) ProcessBatchImport(ctx context.Context, t *asynq.Task) error {
	var payload BatchImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "processing batch import",
		slog.String("job_id", payload.JobID),
		slog.String("file_key", payload.FileKey))

	data, err := p.storage.Download(ctx, payload.FileKey)
	if err != nil {
		return fmt.Errorf("failed to download import file: %w", err)
	}

	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %v: %w", err, asynq.SkipRetry)
	}

	if len(file.Sheets) == 0 {
		return fmt.Errorf("spreadsheet has no sheets: %w", asynq.SkipRetry)
	}

	var imported, skipped int
	sheet := file.Sheets[0]
	rowIdx := 0

	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		// header row
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		params, err := p.parseRow(ctx, r)
		if err != nil {
			p.logger.WarnContext(ctx, "skipping import row",
				slog.String("job_id", payload.JobID),
				slog.Int("row", rowIdx),
				slog.String("error", err.Error()))
			skipped++
			return nil
		}
		if params == nil {
			return nil
		}

		if _, err := p.service.AddBatch(ctx, *params); err != nil {
			p.logger.WarnContext(ctx, "failed to add imported batch",
				slog.String("job_id", payload.JobID),
				slog.Int("row", rowIdx),
				slog.String("error", err.Error()))
			skipped++
			return nil
		}
		imported++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to process spreadsheet rows: %w", err)
	}

	// The upload served its purpose; failures we keep for inspection.
	if skipped == 0 {
		if err := p.storage.Delete(ctx, payload.FileKey); err != nil {
			p.logger.WarnContext(ctx, "failed to delete import file",
				slog.String("file_key", payload.FileKey),
				slog.String("error", err.Error()))
		}
	}

	p.logger.InfoContext(ctx, "batch import completed",
		slog.String("job_id", payload.JobID),
		slog.Int("imported", imported),
		slog.Int("skipped", skipped))

	return nil
}

func (p *ImportProcessor) parseRow(ctx context.Context, r *xlsx.Row) (*ports.AddBatchParams, error) {
	get := func(i int) string {
		c := r.GetCell(i)
		if c == nil {
			return ""
		}
		return strings.TrimSpace(c.String())
	}

	sku := get(colSKU)
	if sku == "" {
		return nil, nil // blank row
	}

	product, err := p.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("unknown sku %q: %w", sku, err)
	}

	purchaseDate, err := parseImportDate(get(colPurchaseDate))
	if err != nil {
		return nil, err
	}

	quantity, err := strconv.Atoi(get(colQuantity))
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q", get(colQuantity))
	}

	cost, err := decimal.NewFromString(strings.TrimPrefix(get(colCostPerItem), "$"))
	if err != nil {
		return nil, fmt.Errorf("invalid cost_per_item %q", get(colCostPerItem))
	}

	return &ports.AddBatchParams{
		ProductID:         product.ID,
		PurchaseDate:      purchaseDate,
		QuantityPurchased: quantity,
		CostPerItem:       cost,
		BatchReference:    get(colBatchReference),
	}, nil
}

func parseImportDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	for _, format := range importDateFormats {
		if d, err := time.Parse(format, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid purchase_date %q", s)
}
