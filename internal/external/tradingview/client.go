package tradingview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/httputil"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// Columns requested from the scanner, in response order
var Columns = []string{"close", "SMA200"}

// Client queries the TradingView scanner for B3 quotes
// ⭐ SSOT: TradingView scanner calls happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	market     string
	exchange   string
}

// NewClient creates a scanner client from the quote config
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("tradingview"),
		baseURL:    strings.TrimRight(cfg.Quote.TradingViewBaseURL, "/"),
		market:     cfg.Quote.TradingViewMarket,
		exchange:   cfg.Quote.TradingViewExchange,
	}
}

// Name implements contracts.QuoteSource
func (c *Client) Name() string {
	return "tradingview"
}

type scanRequest struct {
	Symbols scanSymbols `json:"symbols"`
	Columns []string    `json:"columns"`
}

type scanSymbols struct {
	Tickers []string `json:"tickers"`
}

// ScanResponse is the scanner reply
type ScanResponse struct {
	TotalCount int       `json:"totalCount"`
	Data       []ScanRow `json:"data"`
}

// ScanRow is one ticker row; D follows Columns order and may hold nulls
type ScanRow struct {
	S string     `json:"s"`
	D []*float64 `json:"d"`
}

// Ticker returns the scanner ticker for a B3 symbol, e.g. BMFBOVESPA:PETR4
func (c *Client) Ticker(symbol string) string {
	return c.exchange + ":" + strings.ToUpper(symbol)
}

// Quote fetches the last close and 200-day SMA of symbol.
// An unknown symbol yields an empty quote, not an error.
func (c *Client) Quote(ctx context.Context, symbol string) (contracts.Quote, error) {
	quotes, err := c.Quotes(ctx, []string{symbol})
	if err != nil {
		return contracts.Quote{}, err
	}
	return quotes[strings.ToUpper(symbol)], nil
}

// Quotes fetches several symbols in one scan, keyed by uppercase symbol
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]contracts.Quote, error) {
	req := scanRequest{Columns: Columns}
	for _, s := range symbols {
		req.Symbols.Tickers = append(req.Symbols.Tickers, c.Ticker(s))
	}

	url := fmt.Sprintf("%s/%s/scan", c.baseURL, c.market)
	resp, err := c.httpClient.PostJSON(ctx, url, req)
	if err != nil {
		return nil, fmt.Errorf("tradingview scan: %w", err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("tradingview scan: %w", err)
	}

	var scan ScanResponse
	if err := json.Unmarshal(body, &scan); err != nil {
		return nil, fmt.Errorf("decode tradingview response: %w", err)
	}

	quotes := make(map[string]contracts.Quote, len(scan.Data))
	for _, row := range scan.Data {
		code := row.S
		if i := strings.Index(code, ":"); i >= 0 {
			code = code[i+1:]
		}
		quotes[strings.ToUpper(code)] = row.quote()
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"returned":  len(quotes),
	}).Debug("TradingView scan completed")

	return quotes, nil
}

func (r ScanRow) quote() contracts.Quote {
	var q contracts.Quote
	if len(r.D) > 0 {
		q.Price = r.D[0]
	}
	if len(r.D) > 1 {
		q.Media200 = r.D[1]
	}
	return q
}
