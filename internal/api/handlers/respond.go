package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bestchoice-b3/b3-daily/internal/watchlist"
)

// maxBodySize bounds request bodies
const maxBodySize = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusFor maps watchlist errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, watchlist.ErrDuplicateSymbol):
		return http.StatusConflict
	case errors.Is(err, watchlist.ErrStockNotFound):
		return http.StatusNotFound
	case errors.Is(err, watchlist.ErrInvalidCPF),
		errors.Is(err, watchlist.ErrEmptyCPF),
		errors.Is(err, watchlist.ErrEmptySymbol),
		errors.Is(err, watchlist.ErrAnnotationIndex),
		errors.Is(err, watchlist.ErrInvalidAnnotationType),
		errors.Is(err, watchlist.ErrUnknownChecklistItem):
		return http.StatusBadRequest
	case errors.Is(err, watchlist.ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
