package contracts

import "context"

// Document is one stored document: its key and raw fields
type Document struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// StockStore is the remote document collection holding every watched stock.
// Documents are keyed by uppercase symbol.
type StockStore interface {
	// Set creates or replaces the document keyed by stock.Symbol
	Set(ctx context.Context, stock Stock) error

	// Update merges fields into the document. DeleteField values remove keys.
	Update(ctx context.Context, symbol string, fields map[string]any) error

	// List returns the current documents belonging to cpf
	List(ctx context.Context, cpf string) ([]Document, error)

	// Subscribe emits the full document set for cpf now and after every
	// change. The channel is closed when ctx ends.
	Subscribe(ctx context.Context, cpf string) (<-chan []Document, error)
}

// QuoteSource fetches a live quote for one ticker
type QuoteSource interface {
	Name() string
	Quote(ctx context.Context, symbol string) (Quote, error)
}
