package quote

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/internal/external/statusinvest"
	"github.com/bestchoice-b3/b3-daily/internal/external/tradingview"
	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/httputil"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
	"github.com/bestchoice-b3/b3-daily/pkg/redis"
)

// NewSource builds the quote source selected by QUOTE_PROVIDER.
// rdb may be nil; with Redis enabled the rate limit is shared across processes.
func NewSource(cfg *config.Config, rdb *redis.Client, log *logger.Logger) contracts.QuoteSource {
	tv := tradingview.NewClient(cfg, newHTTPClient(cfg, rdb, "tradingview", log), log)
	si := statusinvest.NewClient(cfg, newHTTPClient(cfg, rdb, "statusinvest", log), log)

	switch cfg.Quote.Provider {
	case "tradingview":
		return tv
	case "statusinvest":
		return si
	default:
		return NewChain(log, tv, si)
	}
}

func newHTTPClient(cfg *config.Config, rdb *redis.Client, provider string, log *logger.Logger) *httputil.Client {
	client := httputil.New(cfg, log.WithField("provider", provider))

	if limiter := newLimiter(cfg, rdb, provider); limiter != nil {
		client.WithLimiter(limiter)
	}

	return client
}

func newLimiter(cfg *config.Config, rdb *redis.Client, provider string) httputil.Limiter {
	perMinute := cfg.Quote.RateLimit
	if perMinute <= 0 {
		return nil
	}

	if rdb != nil && rdb.Enabled() {
		return redis.NewRateLimiter(rdb, "dailyb3").Bind(redis.QuoteRateLimit(provider, perMinute))
	}

	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Static is a fixed quote table, used by the memory backend demo and tests
type Static map[string]contracts.Quote

// Name implements contracts.QuoteSource
func (s Static) Name() string {
	return "static"
}

// Quote returns the stored quote of symbol, empty when unknown
func (s Static) Quote(ctx context.Context, symbol string) (contracts.Quote, error) {
	if err := ctx.Err(); err != nil {
		return contracts.Quote{}, err
	}
	return s[symbol], nil
}
