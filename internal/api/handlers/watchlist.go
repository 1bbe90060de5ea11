package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bestchoice-b3/b3-daily/internal/calculator"
	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/internal/cpf"
	"github.com/bestchoice-b3/b3-daily/internal/watchlist"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// WatchlistHandler handles watchlist API endpoints
// ⭐ SSOT: watchlist HTTP endpoints live only in this struct
type WatchlistHandler struct {
	manager *watchlist.Manager
	logger  *logger.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(manager *watchlist.Manager, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		manager: manager,
		logger:  log,
	}
}

// StockView is a stock plus the values the card view derives from it
type StockView struct {
	contracts.Stock
	AverageSignal bool             `json:"averageSignal"`
	UpsideSignal  bool             `json:"upsideSignal"`
	Links         calculator.Links `json:"links"`
}

// NewStockView rounds the live fields for display and adds signals and links
func NewStockView(s contracts.Stock) StockView {
	v := StockView{
		Stock:         s.Clone(),
		AverageSignal: calculator.AverageSignal(s),
		UpsideSignal:  calculator.UpsideSignal(s),
		Links:         calculator.StockLinks(s),
	}
	v.Upside = calculator.RoundPtr(s.Upside, calculator.DisplayPlaces)
	v.AveragePercent200 = calculator.RoundPtr(s.AveragePercent200, calculator.DisplayPlaces)
	v.Media200 = calculator.RoundPtr(s.Media200, calculator.DisplayPlaces)
	return v
}

// ListResponse is the filtered view of a watchlist
type ListResponse struct {
	CPF     string            `json:"cpf"`
	Filters map[string]string `json:"filters"`
	Count   int               `json:"count"`
	Stocks  []StockView       `json:"stocks"`
}

func newListResponse(c *watchlist.Controller, stocks []contracts.Stock) ListResponse {
	views := make([]StockView, 0, len(stocks))
	for _, s := range stocks {
		views = append(views, NewStockView(s))
	}
	return ListResponse{
		CPF:     c.Session().CPF,
		Filters: c.Filters(),
		Count:   len(views),
		Stocks:  views,
	}
}

// CPFValidationResponse is the result of a CPF check
type CPFValidationResponse struct {
	CPF       string `json:"cpf"`
	Valid     bool   `json:"valid"`
	Formatted string `json:"formatted,omitempty"`
}

// ValidateCPF checks a CPF number
// GET /api/cpf/{cpf}/validate
func (h *WatchlistHandler) ValidateCPF(w http.ResponseWriter, r *http.Request) {
	value := mux.Vars(r)["cpf"]

	resp := CPFValidationResponse{
		CPF:   value,
		Valid: cpf.Validate(value),
	}
	if resp.Valid {
		resp.Formatted = cpf.Format(value)
	}

	respondJSON(w, http.StatusOK, resp)
}

// pathCPF returns the digits of a valid CPF in the path
func pathCPF(r *http.Request) (string, error) {
	value := mux.Vars(r)["cpf"]
	if !cpf.Validate(value) {
		return "", fmt.Errorf("%w: %s", watchlist.ErrInvalidCPF, value)
	}
	return cpf.Digits(value), nil
}

// openSession opens the session of the CPF in the path. Invalid CPFs never open one.
func openSession(m *watchlist.Manager, r *http.Request) (*watchlist.Controller, error) {
	digits, err := pathCPF(r)
	if err != nil {
		return nil, err
	}
	return m.Open(digits)
}

// controller opens the session named in the path, writing the error response on failure
func (h *WatchlistHandler) controller(w http.ResponseWriter, r *http.Request) (*watchlist.Controller, bool) {
	c, err := openSession(h.manager, r)
	if err != nil {
		h.fail(w, err, "Failed to open watchlist")
		return nil, false
	}
	return c, true
}

func (h *WatchlistHandler) fail(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error(msg)
		respondError(w, status, msg)
		return
	}
	respondError(w, status, err.Error())
}

// respondView writes the current filtered view of c
func (h *WatchlistHandler) respondView(w http.ResponseWriter, status int, c *watchlist.Controller) {
	respondJSON(w, status, newListResponse(c, c.View()))
}

// UpdateResponse acknowledges a stored update. The new state reaches the
// list and the stream once the store confirms it.
type UpdateResponse struct {
	Symbol string `json:"symbol"`
	Status string `json:"status"`
}

func respondUpdated(w http.ResponseWriter, symbol string) {
	respondJSON(w, http.StatusOK, UpdateResponse{Symbol: symbol, Status: "updated"})
}

// ListStocks returns the filtered view
// GET /api/watchlists/{cpf}/stocks
func (h *WatchlistHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respondView(w, http.StatusOK, c)
}

// AddStockRequest is the body of AddStock
type AddStockRequest struct {
	Symbol      string   `json:"symbol"`
	TargetPrice *float64 `json:"targetPrice,omitempty"`
}

// AddStock registers a symbol
// POST /api/watchlists/{cpf}/stocks
func (h *WatchlistHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var req AddStockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stock, err := c.Add(r.Context(), req.Symbol, req.TargetPrice)
	if err != nil {
		h.fail(w, err, "Failed to add stock")
		return
	}

	respondJSON(w, http.StatusCreated, NewStockView(stock))
}

// ToggleChecklist flips one checklist item
// POST /api/watchlists/{cpf}/stocks/{symbol}/checklist/{item}
func (h *WatchlistHandler) ToggleChecklist(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	stock, err := c.ToggleChecklist(r.Context(), vars["symbol"], vars["item"])
	if err != nil {
		h.fail(w, err, "Failed to update checklist")
		return
	}

	respondJSON(w, http.StatusOK, NewStockView(stock))
}

// RefreshStock stamps the check date and re-quotes one stock
// POST /api/watchlists/{cpf}/stocks/{symbol}/refresh
func (h *WatchlistHandler) RefreshStock(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	symbol := mux.Vars(r)["symbol"]

	if err := c.Refresh(r.Context(), symbol); err != nil {
		h.fail(w, err, "Failed to refresh stock")
		return
	}

	respondUpdated(w, symbol)
}

// ToggleObserver flips the buy/sell flag
// POST /api/watchlists/{cpf}/stocks/{symbol}/observer
func (h *WatchlistHandler) ToggleObserver(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	symbol := mux.Vars(r)["symbol"]

	if err := c.ToggleObserver(r.Context(), symbol); err != nil {
		h.fail(w, err, "Failed to toggle observer")
		return
	}

	respondUpdated(w, symbol)
}

// EditStock stores the manual edit form
// PUT /api/watchlists/{cpf}/stocks/{symbol}
func (h *WatchlistHandler) EditStock(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	symbol := mux.Vars(r)["symbol"]

	var form watchlist.EditForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.Edit(r.Context(), symbol, form); err != nil {
		h.fail(w, err, "Failed to edit stock")
		return
	}

	respondUpdated(w, symbol)
}

// AnnotationRequest is the body of AddAnnotation
type AnnotationRequest struct {
	Text string                   `json:"text"`
	Type contracts.AnnotationType `json:"type"`
}

// AddAnnotation prepends a note
// POST /api/watchlists/{cpf}/stocks/{symbol}/annotations
func (h *WatchlistHandler) AddAnnotation(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	symbol := mux.Vars(r)["symbol"]

	var req AnnotationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.AddAnnotation(r.Context(), symbol, req.Text, req.Type); err != nil {
		h.fail(w, err, "Failed to add annotation")
		return
	}

	respondUpdated(w, symbol)
}

// RemoveAnnotation deletes the note at index
// DELETE /api/watchlists/{cpf}/stocks/{symbol}/annotations/{index}
func (h *WatchlistHandler) RemoveAnnotation(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "annotation index must be a number")
		return
	}

	if err := c.RemoveAnnotation(r.Context(), vars["symbol"], index); err != nil {
		h.fail(w, err, "Failed to remove annotation")
		return
	}

	respondUpdated(w, vars["symbol"])
}

// RefreshAll re-quotes every stock of the watchlist
// POST /api/watchlists/{cpf}/refresh
func (h *WatchlistHandler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	report := c.RefreshAll(r.Context())
	respondJSON(w, http.StatusOK, report)
}

// SetFilters merges field filters into the active set
// PUT /api/watchlists/{cpf}/filters
func (h *WatchlistHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var filters map[string]string
	if err := decodeJSON(r, &filters); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c.SetFilters(filters)
	h.respondView(w, http.StatusOK, c)
}

// ClearFilters removes every filter
// DELETE /api/watchlists/{cpf}/filters
func (h *WatchlistHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	c.ClearFilters()
	h.respondView(w, http.StatusOK, c)
}

// ToggleObserverFilter cycles the observerTo filter between C and V
// POST /api/watchlists/{cpf}/filters/observer
func (h *WatchlistHandler) ToggleObserverFilter(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	c.ToggleObserverFilter()
	h.respondView(w, http.StatusOK, c)
}

// Sort reorders the current view
// POST /api/watchlists/{cpf}/sort?field=score
func (h *WatchlistHandler) Sort(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	field := r.URL.Query().Get("field")
	if field == "" {
		respondError(w, http.StatusBadRequest, "sort field is required")
		return
	}

	respondJSON(w, http.StatusOK, newListResponse(c, c.Sort(field)))
}
