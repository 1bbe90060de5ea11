// Package quote assembles the live quote source used by the watchlist.
package quote

import (
	"context"
	"fmt"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// Chain asks each source in order. The first quote carrying a price wins.
type Chain struct {
	sources []contracts.QuoteSource
	logger  *logger.Logger
}

// NewChain creates a chain over sources
func NewChain(log *logger.Logger, sources ...contracts.QuoteSource) *Chain {
	return &Chain{
		sources: sources,
		logger:  log.WithComponent("quote_chain"),
	}
}

// Name implements contracts.QuoteSource
func (c *Chain) Name() string {
	return "chain"
}

// Quote returns the first priced quote. When no source has a price, the
// first successful empty quote is returned; when every source fails, the
// last error is.
func (c *Chain) Quote(ctx context.Context, symbol string) (contracts.Quote, error) {
	var (
		empty   *contracts.Quote
		lastErr error
	)

	for _, src := range c.sources {
		q, err := src.Quote(ctx, symbol)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", src.Name(), err)
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"source": src.Name(),
				"symbol": symbol,
			}).Warn("Quote source failed, trying next")
			if ctx.Err() != nil {
				return contracts.Quote{}, lastErr
			}
			continue
		}

		if q.Price != nil {
			return q, nil
		}
		if empty == nil {
			empty = &q
		}
	}

	if empty != nil {
		return *empty, nil
	}
	if lastErr != nil {
		return contracts.Quote{}, lastErr
	}
	return contracts.Quote{}, nil
}
