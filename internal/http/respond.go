package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kopilka/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain sentinels to HTTP statuses: missing entities to
// 404, validation failures to 422, everything else to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, core.ErrAccountNotFound),
		errors.Is(err, core.ErrCategoryNotFound),
		errors.Is(err, core.ErrTransactionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAccountType),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrMissingAccount),
		errors.Is(err, core.ErrMissingDate),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrSameAccount),
		errors.Is(err, core.ErrCurrencyMismatch),
		errors.Is(err, core.ErrTransferCategory),
		errors.Is(err, core.ErrTransferDestination),
		errors.Is(err, core.ErrUnexpectedToID):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
