// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ammerola/stocklot-be/internal/core/domain"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps engine errors onto HTTP statuses. Stock and
// lifecycle conflicts are client-resolvable, so they surface as 409 rather
// than 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBatchInUse):
		respondError(w, http.StatusConflict, "batch has consumed units and cannot be deleted")
	case errors.Is(err, domain.ErrConcurrencyConflict):
		respondError(w, http.StatusConflict, "concurrent update, please retry")
	case domain.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
