package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bestchoice-b3/b3-daily/internal/api/handlers"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id assigned to the request by requestIDMiddleware
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routes are declared only in this function
func NewRouter(watchlistHandler *handlers.WatchlistHandler, streamHandler *handlers.StreamHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// CPF
	api.HandleFunc("/cpf/{cpf}/validate", watchlistHandler.ValidateCPF).Methods("GET")

	// Watchlist
	wl := api.PathPrefix("/watchlists/{cpf}").Subrouter()
	wl.HandleFunc("/stocks", watchlistHandler.ListStocks).Methods("GET")
	wl.HandleFunc("/stocks", watchlistHandler.AddStock).Methods("POST")
	wl.HandleFunc("/stocks/{symbol}", watchlistHandler.EditStock).Methods("PUT")
	wl.HandleFunc("/stocks/{symbol}/checklist/{item}", watchlistHandler.ToggleChecklist).Methods("POST")
	wl.HandleFunc("/stocks/{symbol}/refresh", watchlistHandler.RefreshStock).Methods("POST")
	wl.HandleFunc("/stocks/{symbol}/observer", watchlistHandler.ToggleObserver).Methods("POST")
	wl.HandleFunc("/stocks/{symbol}/annotations", watchlistHandler.AddAnnotation).Methods("POST")
	wl.HandleFunc("/stocks/{symbol}/annotations/{index:[0-9]+}", watchlistHandler.RemoveAnnotation).Methods("DELETE")
	wl.HandleFunc("/refresh", watchlistHandler.RefreshAll).Methods("POST")
	wl.HandleFunc("/filters", watchlistHandler.SetFilters).Methods("PUT")
	wl.HandleFunc("/filters", watchlistHandler.ClearFilters).Methods("DELETE")
	wl.HandleFunc("/filters/observer", watchlistHandler.ToggleObserverFilter).Methods("POST")
	wl.HandleFunc("/sort", watchlistHandler.Sort).Methods("POST")
	wl.HandleFunc("/stream", streamHandler.Stream).Methods("GET")

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "dailyb3-api",
	})
}

// requestIDMiddleware keeps the caller's X-Request-ID or assigns a new one
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": RequestID(r.Context()),
				"duration":   time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error":      err,
						"path":       r.URL.Path,
						"request_id": RequestID(r.Context()),
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
