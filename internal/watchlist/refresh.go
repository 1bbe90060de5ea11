package watchlist

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// RefreshResult is the outcome of refreshing one stock
type RefreshResult struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error,omitempty"`
	Err    error  `json:"-"`
}

// RefreshReport aggregates a bulk refresh
type RefreshReport struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Duration  time.Duration   `json:"duration"`
	Results   []RefreshResult `json:"results"`
}

// RefreshAll re-quotes every stock of the session concurrently. Each
// refresh is independent: a failure neither stops nor affects the others.
func (c *Controller) RefreshAll(ctx context.Context) RefreshReport {
	start := c.now()
	stocks := c.Stocks()
	results := make([]RefreshResult, len(stocks))

	var g errgroup.Group
	if c.workers > 0 {
		g.SetLimit(c.workers)
	}

	for i, s := range stocks {
		g.Go(func() error {
			err := c.Update(ctx, s.Symbol, s.AsUpdate())
			results[i] = RefreshResult{Symbol: s.Symbol, Err: err}
			if err != nil {
				results[i].Error = err.Error()
				c.logger.WithError(err).WithField("symbol", s.Symbol).Warn("Refresh failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	report := RefreshReport{
		Total:    len(stocks),
		Results:  results,
		Duration: c.now().Sub(start),
	}
	for _, r := range results {
		if r.Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"total":     report.Total,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"duration":  report.Duration,
	}).Info("Bulk refresh completed")

	return report
}

// RefreshAllAsync starts RefreshAll and returns at once
func (c *Controller) RefreshAllAsync(ctx context.Context) {
	go c.RefreshAll(context.WithoutCancel(ctx))
}
