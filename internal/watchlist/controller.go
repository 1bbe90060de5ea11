// Package watchlist holds the per-CPF list of watched stocks, keeps it in
// sync with the store and applies every user operation to it.
package watchlist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bestchoice-b3/b3-daily/internal/calculator"
	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/internal/cpf"
	"github.com/bestchoice-b3/b3-daily/internal/store"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// Session identifies whose watchlist a controller serves
type Session struct {
	CPF string
}

// Options tunes a controller
type Options struct {
	Location *time.Location   // calendar used by the date filter, UTC when nil
	Workers  int              // bulk refresh concurrency, 0 = one goroutine per stock
	Now      func() time.Time // clock, time.Now when nil

	MaxSessions int // sessions a Manager keeps open, 0 = unbounded
}

// Controller owns the stock list of one session.
// ⭐ SSOT: every mutation of a watchlist goes through a Controller
type Controller struct {
	session Session
	store   contracts.StockStore
	quotes  contracts.QuoteSource
	logger  *logger.Logger
	loc     *time.Location
	workers int
	now     func() time.Time

	mu       sync.RWMutex
	stocks   []contracts.Stock
	filters  Filters
	filtered []contracts.Stock

	watchMu     sync.Mutex
	watchers    map[int]chan []contracts.Stock
	nextWatcher int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a controller for sess. Call Start to load the list.
func NewController(sess Session, st contracts.StockStore, quotes contracts.QuoteSource, log *logger.Logger, opts Options) *Controller {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Controller{
		session:  sess,
		store:    st,
		quotes:   quotes,
		logger:   log.WithComponent("watchlist").WithCPF(sess.CPF),
		loc:      loc,
		workers:  opts.Workers,
		now:      now,
		filters:  Filters{},
		watchers: make(map[int]chan []contracts.Stock),
		done:     make(chan struct{}),
	}
}

// Session returns the session the controller serves
func (c *Controller) Session() Session {
	return c.session
}

// Start subscribes to the store and blocks until the first snapshot is
// applied. Later snapshots are applied in the background until ctx ends
// or Stop is called.
func (c *Controller) Start(ctx context.Context) error {
	if c.session.CPF == "" {
		return ErrEmptyCPF
	}

	subCtx, cancel := context.WithCancel(ctx)
	snapshots, err := c.store.Subscribe(subCtx, c.session.CPF)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to watchlist: %w", err)
	}

	select {
	case docs, ok := <-snapshots:
		if !ok {
			cancel()
			return fmt.Errorf("subscribe to watchlist: subscription closed")
		}
		c.applySnapshot(docs)
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}

	c.cancel = cancel

	go func() {
		defer close(c.done)
		defer c.closeWatchers()
		for docs := range snapshots {
			c.applySnapshot(docs)
		}
	}()

	c.logger.Info("Watchlist session started")
	return nil
}

// Stop ends the store subscription and waits for it to finish
func (c *Controller) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.logger.Info("Watchlist session stopped")
}

// applySnapshot replaces the stock list with the documents of the session CPF
func (c *Controller) applySnapshot(docs []contracts.Document) {
	stocks := make([]contracts.Stock, 0, len(docs))
	for _, doc := range docs {
		s, err := store.Decode(doc)
		if err != nil {
			c.logger.WithError(err).WithField("symbol", doc.ID).Warn("Skipping undecodable document")
			continue
		}
		if s.CPF != c.session.CPF {
			continue
		}
		stocks = append(stocks, s)
	}

	c.mu.Lock()
	c.stocks = stocks
	c.filtered = applyFilters(c.stocks, c.filters, c.loc)
	view := cloneStocks(c.filtered)
	c.mu.Unlock()

	c.logger.WithField("count", len(stocks)).Debug("Watchlist snapshot applied")
	c.broadcast(view)
}

// Stocks returns every stock of the session
func (c *Controller) Stocks() []contracts.Stock {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneStocks(c.stocks)
}

// View returns the filtered, possibly sorted list
func (c *Controller) View() []contracts.Stock {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneStocks(c.filtered)
}

// Find returns the stock with symbol, case-insensitively
func (c *Controller) Find(symbol string) (contracts.Stock, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexLocked(symbol)
	if i < 0 {
		return contracts.Stock{}, false
	}
	return c.stocks[i].Clone(), true
}

func (c *Controller) indexLocked(symbol string) int {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for i, s := range c.stocks {
		if strings.ToUpper(s.Symbol) == symbol {
			return i
		}
	}
	return -1
}

func (c *Controller) mustFind(symbol string) (contracts.Stock, error) {
	s, ok := c.Find(symbol)
	if !ok {
		return contracts.Stock{}, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	return s, nil
}

// Add registers a new symbol with an optional target price and stores it
// with freshly quoted live fields. A failing quote leaves them zeroed.
func (c *Controller) Add(ctx context.Context, symbol string, targetPrice *float64) (contracts.Stock, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return contracts.Stock{}, ErrEmptySymbol
	}
	upper := strings.ToUpper(symbol)

	if _, exists := c.Find(upper); exists {
		return contracts.Stock{}, fmt.Errorf("%w: %s", ErrDuplicateSymbol, upper)
	}
	if !cpf.Validate(c.session.CPF) {
		return contracts.Stock{}, ErrInvalidCPF
	}

	stock := contracts.Stock{
		Symbol:     upper,
		CPF:        c.session.CPF,
		ObserverTo: contracts.ObserveBuy,
	}
	if targetPrice != nil {
		stock.TargetPrice = contracts.Float(*targetPrice)
	}

	q, err := c.quotes.Quote(ctx, upper)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", upper).Warn("Quote failed, adding without live data")
		q = contracts.Quote{}
	}
	calculator.ComputeLiveDerived(stock.TargetPrice, q).ApplyToStock(&stock)

	if err := c.store.Set(ctx, stock); err != nil {
		return contracts.Stock{}, fmt.Errorf("add %s: %w", upper, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": upper,
		"price":  stock.CurrentPrice,
	}).Info("Stock added")

	return stock, nil
}

// ToggleChecklist flips one checklist item
func (c *Controller) ToggleChecklist(ctx context.Context, symbol, item string) (contracts.Stock, error) {
	s, err := c.mustFind(symbol)
	if err != nil {
		return contracts.Stock{}, err
	}

	current, err := s.Checklist.Get(item)
	if err != nil {
		return contracts.Stock{}, err
	}
	return c.SetChecklist(ctx, symbol, item, !current)
}

// SetChecklist sets one checklist item, recomputes the score and stamps
// dateLastCheck. The quote is not refreshed.
func (c *Controller) SetChecklist(ctx context.Context, symbol, item string, value bool) (contracts.Stock, error) {
	s, err := c.mustFind(symbol)
	if err != nil {
		return contracts.Stock{}, err
	}

	checklist, err := s.Checklist.With(item, value)
	if err != nil {
		return contracts.Stock{}, err
	}

	s.Checklist = checklist
	s.Score = calculator.ComputeScore(checklist)
	s.DateLastCheck = timestamp(c.now(), c.loc)

	if err := c.store.Update(ctx, s.Symbol, s.AsUpdate().Fields()); err != nil {
		return contracts.Stock{}, fmt.Errorf("update checklist of %s: %w", s.Symbol, err)
	}

	return s, nil
}

// Update re-quotes symbol, lays the live fields over updates and stores the
// result. A failing quote is logged and updates are stored as given.
func (c *Controller) Update(ctx context.Context, symbol string, updates contracts.StockUpdate) error {
	s, err := c.mustFind(symbol)
	if err != nil {
		return err
	}

	q, err := c.quotes.Quote(ctx, s.Symbol)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", s.Symbol).Warn("Quote failed, storing update without live data")
	} else {
		calculator.ComputeLiveDerived(updates.TargetPrice, q).Apply(&updates)
	}

	if err := c.store.Update(ctx, s.Symbol, updates.Fields()); err != nil {
		return fmt.Errorf("update %s: %w", s.Symbol, err)
	}
	return nil
}

// Refresh re-quotes symbol and stamps dateLastCheck
func (c *Controller) Refresh(ctx context.Context, symbol string) error {
	s, err := c.mustFind(symbol)
	if err != nil {
		return err
	}

	s.DateLastCheck = timestamp(c.now(), c.loc)
	return c.Update(ctx, s.Symbol, s.AsUpdate())
}

// ToggleObserver flips observerTo between C and V
func (c *Controller) ToggleObserver(ctx context.Context, symbol string) error {
	s, err := c.mustFind(symbol)
	if err != nil {
		return err
	}

	s.ObserverTo = s.ObserverTo.Toggle()
	return c.Update(ctx, s.Symbol, s.AsUpdate())
}

// EditForm is the manual edit of a stock. TargetPrice nil keeps the
// stored target; RentURL blank removes the stored link.
type EditForm struct {
	CurrentPrice     float64                `json:"currentPrice"`
	DistanceNegative float64                `json:"distanceNegative"`
	DistancePositive float64                `json:"distancePositive"`
	TargetPrice      *float64               `json:"targetPrice,omitempty"`
	RentURL          string                 `json:"rentUrl"`
	Annotations      []contracts.Annotation `json:"annotations"`
}

// Edit stores a manual edit. The live quote still wins over the typed price.
func (c *Controller) Edit(ctx context.Context, symbol string, form EditForm) error {
	annotations := form.Annotations
	if annotations == nil {
		annotations = []contracts.Annotation{}
	}

	updates := contracts.StockUpdate{
		CurrentPrice:     contracts.Float(form.CurrentPrice),
		DistanceNegative: contracts.Float(form.DistanceNegative),
		DistancePositive: contracts.Float(form.DistancePositive),
		Annotations:      &annotations,
	}

	if rent := strings.TrimSpace(form.RentURL); rent != "" {
		updates.RentURL = contracts.SetString(rent)
	} else {
		updates.RentURL = contracts.NullValue()
	}

	if form.TargetPrice != nil {
		updates.TargetPrice = contracts.Float(*form.TargetPrice)
		updates.Upside = calculator.ComputeUpside(*form.TargetPrice, form.CurrentPrice)
	}

	return c.Update(ctx, symbol, updates)
}

// AddAnnotation prepends a note dated now. Blank text is ignored.
func (c *Controller) AddAnnotation(ctx context.Context, symbol, text string, typ contracts.AnnotationType) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if typ == "" {
		typ = contracts.AnnotationInfo
	}
	if !typ.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAnnotationType, typ)
	}

	s, err := c.mustFind(symbol)
	if err != nil {
		return err
	}

	entry := contracts.Annotation{
		Date: timestamp(c.now(), c.loc),
		Text: text,
		Type: typ,
	}
	s.Annotations = append([]contracts.Annotation{entry}, s.Annotations...)

	return c.Update(ctx, s.Symbol, s.AsUpdate())
}

// RemoveAnnotation deletes the note at index, newest first
func (c *Controller) RemoveAnnotation(ctx context.Context, symbol string, index int) error {
	s, err := c.mustFind(symbol)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(s.Annotations) {
		return fmt.Errorf("%w: %d", ErrAnnotationIndex, index)
	}

	remaining := make([]contracts.Annotation, 0, len(s.Annotations)-1)
	remaining = append(remaining, s.Annotations[:index]...)
	remaining = append(remaining, s.Annotations[index+1:]...)
	s.Annotations = remaining

	return c.Update(ctx, s.Symbol, s.AsUpdate())
}

// Filters returns the active filters
func (c *Controller) Filters() Filters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filters.Clone()
}

// SetFilter sets one field filter
func (c *Controller) SetFilter(key, value string) {
	c.mutateFilters(func(f Filters) { f[key] = value })
}

// RemoveFilter drops one field filter
func (c *Controller) RemoveFilter(key string) {
	c.mutateFilters(func(f Filters) { delete(f, key) })
}

// SetFilters merges filters into the active set
func (c *Controller) SetFilters(filters map[string]string) {
	c.mutateFilters(func(f Filters) {
		for k, v := range filters {
			f[k] = v
		}
	})
}

// ClearFilters removes every filter
func (c *Controller) ClearFilters() {
	c.mutateFilters(func(f Filters) {
		for k := range f {
			delete(f, k)
		}
	})
}

// ToggleObserverFilter shows only C stocks, then only V stocks, and so on
func (c *Controller) ToggleObserverFilter() contracts.ObserverTo {
	var next contracts.ObserverTo
	c.mutateFilters(func(f Filters) {
		if f[ObserverField] == string(contracts.ObserveBuy) {
			next = contracts.ObserveSell
		} else {
			next = contracts.ObserveBuy
		}
		f[ObserverField] = string(next)
	})
	return next
}

func (c *Controller) mutateFilters(fn func(Filters)) {
	c.mu.Lock()
	fn(c.filters)
	c.filtered = applyFilters(c.stocks, c.filters, c.loc)
	view := cloneStocks(c.filtered)
	c.mu.Unlock()

	c.broadcast(view)
}

// Sort reorders the current view by field. The order lasts until the
// next snapshot or filter change.
func (c *Controller) Sort(field string) []contracts.Stock {
	c.mu.Lock()
	sortStocks(c.filtered, field, c.loc)
	view := cloneStocks(c.filtered)
	c.mu.Unlock()

	c.broadcast(view)
	return cloneStocks(view)
}

// Watch streams the view after every change. Slow readers only see the
// latest view. The channel closes when ctx ends or the controller stops.
func (c *Controller) Watch(ctx context.Context) <-chan []contracts.Stock {
	ch := make(chan []contracts.Stock, 1)

	c.watchMu.Lock()
	id := c.nextWatcher
	c.nextWatcher++
	ch <- c.View()
	c.watchers[id] = ch
	c.watchMu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
		}
		c.watchMu.Lock()
		if _, ok := c.watchers[id]; ok {
			delete(c.watchers, id)
			close(ch)
		}
		c.watchMu.Unlock()
	}()

	return ch
}

// watching counts the open Watch channels
func (c *Controller) watching() int {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	return len(c.watchers)
}

func (c *Controller) broadcast(view []contracts.Stock) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	for _, ch := range c.watchers {
		select {
		case ch <- cloneStocks(view):
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cloneStocks(view):
		default:
		}
	}
}

func (c *Controller) closeWatchers() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	for id, ch := range c.watchers {
		delete(c.watchers, id)
		close(ch)
	}
}

func cloneStocks(stocks []contracts.Stock) []contracts.Stock {
	out := make([]contracts.Stock, len(stocks))
	for i, s := range stocks {
		out[i] = s.Clone()
	}
	return out
}
