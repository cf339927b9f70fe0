// internal/adapters/db/pg_errors.go
package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/stocklot-be/internal/core/domain"
)

// Postgres error codes mapped to domain errors.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// translateError maps driver-level failures onto the engine's typed errors.
// Serialization failures and deadlocks become ErrConcurrencyConflict so the
// service layer can retry once with a fresh read.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return domain.ErrConcurrencyConflict
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	return err
}
