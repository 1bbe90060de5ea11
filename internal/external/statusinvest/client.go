package statusinvest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/httputil"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// priceSelector matches the current price box of a stock page
const priceSelector = `div[title="Valor atual do ativo"] strong.value`

// Client scrapes current prices from StatusInvest stock pages.
// It never reports a 200-day average.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a StatusInvest client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("statusinvest"),
		baseURL:    strings.TrimRight(cfg.Quote.StatusInvestBaseURL, "/"),
	}
}

// Name implements contracts.QuoteSource
func (c *Client) Name() string {
	return "statusinvest"
}

// PageURL returns the stock page of symbol
func PageURL(baseURL, symbol string) string {
	return fmt.Sprintf("%s/acoes/%s", strings.TrimRight(baseURL, "/"), strings.ToLower(symbol))
}

// Quote scrapes the current price of symbol. A missing page or price box
// yields an empty quote.
func (c *Client) Quote(ctx context.Context, symbol string) (contracts.Quote, error) {
	resp, err := c.httpClient.Get(ctx, PageURL(c.baseURL, symbol))
	if err != nil {
		return contracts.Quote{}, fmt.Errorf("statusinvest request: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return contracts.Quote{}, nil
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return contracts.Quote{}, fmt.Errorf("statusinvest request: %w", err)
	}

	price, ok, err := parsePrice(body)
	if err != nil {
		return contracts.Quote{}, fmt.Errorf("parse statusinvest page for %s: %w", symbol, err)
	}
	if !ok {
		c.logger.WithField("symbol", symbol).Debug("Price box not found")
		return contracts.Quote{}, nil
	}

	return contracts.Quote{Price: &price}, nil
}

func parsePrice(html []byte) (float64, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse HTML: %w", err)
	}

	text := strings.TrimSpace(doc.Find(priceSelector).First().Text())
	if text == "" || text == "-" || text == "-%" {
		return 0, false, nil
	}

	price, err := ParseNumber(text)
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

// ParseNumber parses a pt-BR formatted number such as "1.234,56" or "R$ 40,10"
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}
