package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/internal/quote"
	"github.com/bestchoice-b3/b3-daily/internal/store"
	"github.com/bestchoice-b3/b3-daily/internal/watchlist"
	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

func TestRefreshPricesJob(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, contracts.Stock{Symbol: "ABC3", CPF: "11144477735", TargetPrice: contracts.Float(50)}))

	quotes := quote.Static{"ABC3": {Price: contracts.Float(40)}}
	manager := watchlist.NewManager(ctx, st, quotes, logger.Nop(), watchlist.Options{})
	defer manager.CloseAll()

	cfg := &config.Config{Refresh: config.RefreshConfig{
		Schedule: "0 30 18 * * 1-5",
		CPFs:     []string{"11144477735"},
	}}
	job := NewRefreshPricesJob(manager, cfg, logger.Nop())

	assert.Equal(t, "refresh_prices", job.Name())
	assert.Equal(t, "0 30 18 * * 1-5", job.Schedule())
	assert.Empty(t, job.InvalidCPFs())

	require.NoError(t, job.Run(ctx))
	assert.Equal(t, []string{"11144477735"}, manager.Sessions())

	doc, ok := st.Document("ABC3")
	require.True(t, ok)
	assert.Equal(t, 40.0, doc["currentPrice"])
	assert.Equal(t, 25.0, doc["upside"])
}

func TestRefreshPricesJob_InvalidCPFs(t *testing.T) {
	cfg := &config.Config{Refresh: config.RefreshConfig{CPFs: []string{"11144477735", "123"}}}
	job := NewRefreshPricesJob(nil, cfg, logger.Nop())
	assert.Equal(t, []string{"123"}, job.InvalidCPFs())
}
