// internal/workers/invoice_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stocklot-be/internal/adapters/storage"
	"github.com/ammerola/stocklot-be/internal/core/ports"
)

// InvoiceProcessor parses supplier invoice PDFs into purchase batches
type InvoiceProcessor struct {
	service ports.CostingService
	storage storage.StorageClient
	logger  *slog.Logger
}

// NewInvoiceProcessor creates a new invoice processor
func NewInvoiceProcessor(service ports.CostingService, store storage.StorageClient, logger *slog.Logger) *InvoiceProcessor {
	return &InvoiceProcessor{
		service: service,
		storage: store,
		logger:  logger.With(slog.String("processor", "invoice")),
	}
}

// invoiceLine is one parsed line item
type invoiceLine struct {
	quantity  int
	unitCost  decimal.Decimal
	reference string
}

var (
	// "10 x Steel Widget ... $2.50" or "10 Steel Widget 2.50"
	lineItemRe = regexp.MustCompile(`^(\d+)\s+(?:x\s+)?(.+?)\s+\$?\s*(\d{1,3}(?:,\d{3})*\.\d{2})\s*$`)
	// "Invoice Date: 2025-03-14" or "Date: 03/14/2025"
	invoiceDateRe = regexp.MustCompile(`(?i)(?:invoice\s+)?date:?\s*(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})`)
	// "Invoice No: INV-1042"
	invoiceNumberRe = regexp.MustCompile(`(?i)invoice\s*(?:no\.?|number|#):?\s*([A-Z0-9-]+)`)
	footerRe        = regexp.MustCompile(`(?i)^(subtotal|total|tax|shipping|amount due)`)
)

// ProcessInvoice extracts line items from the PDF and records each as a
// purchase batch for the payload's product.
func (p *InvoiceProcessor) ProcessInvoice(ctx context.Context, t *asynq.Task) error {
	var payload InvoiceParsePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "processing invoice",
		slog.String("job_id", payload.JobID),
		slog.String("product_id", payload.ProductID.String()))

	data, err := p.storage.Download(ctx, payload.FileKey)
	if err != nil {
		return fmt.Errorf("failed to download invoice: %w", err)
	}

	lines, err := p.extractText(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to read invoice PDF: %v: %w", err, asynq.SkipRetry)
	}

	purchaseDate, reference := p.parseHeader(lines)
	items := p.parseLineItems(lines)
	if len(items) == 0 {
		p.logger.WarnContext(ctx, "no line items found in invoice",
			slog.String("job_id", payload.JobID))
		return fmt.Errorf("invoice has no parseable line items: %w", asynq.SkipRetry)
	}

	var created int
	for _, item := range items {
		ref := reference
		if item.reference != "" {
			ref = item.reference
		}

		_, err := p.service.AddBatch(ctx, ports.AddBatchParams{
			ProductID:         payload.ProductID,
			PurchaseDate:      purchaseDate,
			QuantityPurchased: item.quantity,
			CostPerItem:       item.unitCost,
			BatchReference:    ref,
		})
		if err != nil {
			p.logger.WarnContext(ctx, "failed to add batch from invoice line",
				slog.String("job_id", payload.JobID),
				slog.String("error", err.Error()))
			continue
		}
		created++
	}

	if created == len(items) {
		if err := p.storage.Delete(ctx, payload.FileKey); err != nil {
			p.logger.WarnContext(ctx, "failed to delete invoice file",
				slog.String("file_key", payload.FileKey),
				slog.String("error", err.Error()))
		}
	}

	p.logger.InfoContext(ctx, "invoice processed",
		slog.String("job_id", payload.JobID),
		slog.Int("line_items", len(items)),
		slog.Int("batches_created", created))

	return nil
}

func (p *InvoiceProcessor) extractText(ctx context.Context, data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var lines []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.WarnContext(ctx, "failed to extract text from page",
				slog.Int("page", pageNum),
				slog.String("error", err.Error()))
			continue
		}

		lines = append(lines, strings.Split(text, "\n")...)
	}

	return lines, nil
}

// parseHeader pulls the invoice date and number out of the leading lines.
// Date falls back to today, reference to empty.
func (p *InvoiceProcessor) parseHeader(lines []string) (time.Time, string) {
	purchaseDate := time.Now()
	reference := ""

	for _, line := range lines {
		if m := invoiceDateRe.FindStringSubmatch(line); m != nil {
			if d, err := time.Parse("2006-01-02", m[1]); err == nil {
				purchaseDate = d
			} else if d, err := time.Parse("01/02/2006", m[1]); err == nil {
				purchaseDate = d
			}
		}
		if m := invoiceNumberRe.FindStringSubmatch(line); m != nil {
			reference = m[1]
		}
	}

	return purchaseDate, reference
}

func (p *InvoiceProcessor) parseLineItems(lines []string) []invoiceLine {
	var items []invoiceLine

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if footerRe.MatchString(line) {
			break
		}

		m := lineItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		quantity, err := strconv.Atoi(m[1])
		if err != nil || quantity <= 0 {
			continue
		}

		cost, err := decimal.NewFromString(strings.ReplaceAll(m[3], ",", ""))
		if err != nil {
			continue
		}

		items = append(items, invoiceLine{
			quantity: quantity,
			unitCost: cost,
		})
	}

	return items
}
