// internal/workers/tasks.go
package workers

import (
	"github.com/google/uuid"
)

// Task type names registered with the asynq mux
const (
	TypeOrderProcess     = "order:process"
	TypeBatchImport      = "import:batches"
	TypeInvoiceParse     = "import:invoice"
	TypeCleanupProducts  = "cleanup:deleted_products"
	TypeCleanupTempFiles = "cleanup:temp_files"
	TypeCleanupImports   = "cleanup:import_files"
)

// OrderPayload is the payload for order consumption tasks. OrderID is the
// idempotency key: re-delivery of the same order never depletes stock twice.
type OrderPayload struct {
	OrderID   string    `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// BatchImportPayload points a worker at an uploaded spreadsheet
type BatchImportPayload struct {
	JobID    string `json:"job_id"`
	FileKey  string `json:"file_key"`
	FileName string `json:"file_name,omitempty"`
}

// InvoiceParsePayload points a worker at an uploaded supplier invoice
type InvoiceParsePayload struct {
	JobID     string    `json:"job_id"`
	FileKey   string    `json:"file_key"`
	ProductID uuid.UUID `json:"product_id"`
}
