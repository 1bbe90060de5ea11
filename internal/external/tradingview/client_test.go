package tradingview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/httputil"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Quote: config.QuoteConfig{
		TradingViewBaseURL:  srv.URL,
		TradingViewMarket:   "brazil",
		TradingViewExchange: "BMFBOVESPA",
	}}
	return NewClient(cfg, httputil.New(cfg, logger.Nop()), logger.Nop())
}

func TestQuote(t *testing.T) {
	var got scanRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/brazil/scan", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"totalCount":1,"data":[{"s":"BMFBOVESPA:ABC3","d":[40,36.5]}]}`))
	})

	q, err := c.Quote(context.Background(), "abc3")
	require.NoError(t, err)

	assert.Equal(t, []string{"BMFBOVESPA:ABC3"}, got.Symbols.Tickers)
	assert.Equal(t, []string{"close", "SMA200"}, got.Columns)
	require.NotNil(t, q.Price)
	require.NotNil(t, q.Media200)
	assert.Equal(t, 40.0, *q.Price)
	assert.Equal(t, 36.5, *q.Media200)
}

func TestQuote_UnknownSymbol(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalCount":0,"data":[]}`))
	})

	q, err := c.Quote(context.Background(), "NOPE3")
	require.NoError(t, err)
	assert.Nil(t, q.Price)
	assert.Nil(t, q.Media200)
}

func TestQuote_NullColumns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalCount":1,"data":[{"s":"BMFBOVESPA:NEW3","d":[12.3,null]}]}`))
	})

	q, err := c.Quote(context.Background(), "NEW3")
	require.NoError(t, err)
	require.NotNil(t, q.Price)
	assert.Equal(t, 12.3, *q.Price)
	assert.Nil(t, q.Media200)
}

func TestQuote_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Quote(context.Background(), "ABC3")
	require.Error(t, err)

	var statusErr *httputil.StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestQuotes_Batch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalCount":2,"data":[{"s":"BMFBOVESPA:AAA3","d":[1,2]},{"s":"BMFBOVESPA:BBB4","d":[3]}]}`))
	})

	quotes, err := c.Quotes(context.Background(), []string{"aaa3", "bbb4"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, 3.0, *quotes["BBB4"].Price)
	assert.Nil(t, quotes["BBB4"].Media200)
}
