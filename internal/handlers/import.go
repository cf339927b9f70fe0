// internal/handlers/import.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/stocklot-be/internal/adapters/storage"
	"github.com/ammerola/stocklot-be/internal/workers"
)

// ImportHandler accepts batch spreadsheets and supplier invoices, parks them
// in object storage and queues the parse for a worker.
type ImportHandler struct {
	asynqClient *asynq.Client
	storage     storage.StorageClient
	logger      *slog.Logger
	maxFileSize int64
}

// NewImportHandler creates a new import handler
func NewImportHandler(asynqClient *asynq.Client, store storage.StorageClient, logger *slog.Logger, maxFileSize int64) *ImportHandler {
	return &ImportHandler{
		asynqClient: asynqClient,
		storage:     store,
		logger:      logger.With(slog.String("handler", "import")),
		maxFileSize: maxFileSize,
	}
}

// ImportBatches handles POST /api/v1/import/batches. Expects an xlsx file
// with one purchase batch per row.
func (h *ImportHandler) ImportBatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" &&
		contentType != "application/vnd.ms-excel" {
		respondError(w, http.StatusBadRequest, "Only Excel files are allowed")
		return
	}

	jobID := uuid.New().String()
	fileKey := fmt.Sprintf("imports/batches/%s%s", jobID, filepath.Ext(header.Filename))

	if _, err := h.storage.Upload(ctx, fileKey, file, contentType); err != nil {
		h.logger.ErrorContext(ctx, "failed to store import file",
			slog.String("file_key", fileKey),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	payload := workers.BatchImportPayload{
		JobID:    jobID,
		FileKey:  fileKey,
		FileName: header.Filename,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	info, err := h.asynqClient.Enqueue(asynq.NewTask(workers.TypeBatchImport, b),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue import task",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "batch import queued",
		slog.String("job_id", jobID),
		slog.String("task_id", info.ID),
		slog.String("file", header.Filename))

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Batch import has been queued for processing",
	})
}

// ImportInvoice handles POST /api/v1/import/invoice. Accepts a supplier
// invoice PDF; parsed line items become purchase batches for the given
// product.
func (h *ImportHandler) ImportInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "application/pdf" {
		respondError(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	productIDStr := r.FormValue("product_id")
	productID, err := uuid.Parse(productIDStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	jobID := uuid.New().String()
	fileKey := fmt.Sprintf("imports/invoices/%s.pdf", jobID)

	if _, err := h.storage.Upload(ctx, fileKey, file, "application/pdf"); err != nil {
		h.logger.ErrorContext(ctx, "failed to store invoice file",
			slog.String("file_key", fileKey),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	payload := workers.InvoiceParsePayload{
		JobID:     jobID,
		FileKey:   fileKey,
		ProductID: productID,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	info, err := h.asynqClient.Enqueue(asynq.NewTask(workers.TypeInvoiceParse, b),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue invoice task",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "invoice import queued",
		slog.String("job_id", jobID),
		slog.String("task_id", info.ID),
		slog.String("product_id", productIDStr))

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Invoice parsing has been queued",
	})
}
