// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stocklot-be/internal/adapters/db"
	"github.com/ammerola/stocklot-be/internal/adapters/storage"
	"github.com/ammerola/stocklot-be/internal/pkg/config"
)

// CleanupProcessor handles scheduled housekeeping tasks
type CleanupProcessor struct {
	db      *db.Database
	storage storage.StorageClient
	config  *config.Config
	logger  *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(database *db.Database, store storage.StorageClient,
	cfg *config.Config, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		db:      database,
		storage: store,
		config:  cfg,
		logger:  logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupDeletedProducts hard-deletes products soft-deleted more than 90
// days ago. The batch ledger goes with them via the FK cascade.
func (p *CleanupProcessor) CleanupDeletedProducts(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "purging soft-deleted products")

	query := `DELETE FROM products WHERE deleted_at IS NOT NULL AND deleted_at < NOW() - INTERVAL '90 days'`

	result, err := p.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to purge deleted products: %w", err)
	}

	p.logger.InfoContext(ctx, "soft-deleted products purged",
		slog.Int64("rows_deleted", result.RowsAffected()))

	return nil
}

// CleanupTempFiles removes stale files from the processing temp directory
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files")

	tempDir := p.config.FileProcessing.TempDir
	maxAge := 24 * time.Hour

	var deletedCount int
	err := filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}

// CleanupImportFiles removes leftover upload objects. Successful imports
// delete their own file, so anything still under imports/ belongs to a
// failed or abandoned job.
func (p *CleanupProcessor) CleanupImportFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up import files")

	keys, err := p.storage.List(ctx, "imports/")
	if err != nil {
		return fmt.Errorf("failed to list import files: %w", err)
	}

	var deletedCount int
	for _, key := range keys {
		if err := p.storage.Delete(ctx, key); err != nil {
			p.logger.WarnContext(ctx, "failed to delete import file",
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		deletedCount++
	}

	p.logger.InfoContext(ctx, "import files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}
