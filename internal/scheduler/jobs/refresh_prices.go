package jobs

import (
	"context"
	"fmt"

	"github.com/bestchoice-b3/b3-daily/internal/cpf"
	"github.com/bestchoice-b3/b3-daily/internal/watchlist"
	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// RefreshPricesJob re-quotes every stock of every session after market close
// ⭐ SSOT: the scheduled bulk refresh lives only in this job
type RefreshPricesJob struct {
	manager  *watchlist.Manager
	schedule string
	cpfs     []string
	logger   *logger.Logger
}

// NewRefreshPricesJob creates the job. The CPFs from REFRESH_CPFS are
// refreshed on every run on top of the sessions already open.
func NewRefreshPricesJob(manager *watchlist.Manager, cfg *config.Config, log *logger.Logger) *RefreshPricesJob {
	return &RefreshPricesJob{
		manager:  manager,
		schedule: cfg.Refresh.Schedule,
		cpfs:     cfg.Refresh.CPFs,
		logger:   log.WithComponent("refresh_prices_job"),
	}
}

// Name returns the job name
func (j *RefreshPricesJob) Name() string {
	return "refresh_prices"
}

// Schedule returns the cron schedule (weekdays at 18:30 by default)
func (j *RefreshPricesJob) Schedule() string {
	return j.schedule
}

// Run opens the configured sessions and bulk-refreshes every open one
func (j *RefreshPricesJob) Run(ctx context.Context) error {
	var openFailures int
	for _, c := range j.cpfs {
		if _, err := j.manager.Open(c); err != nil {
			openFailures++
			j.logger.WithError(err).WithCPF(c).Error("Failed to open session for refresh")
		}
	}

	var total, failed int
	for _, c := range j.manager.Controllers() {
		if err := ctx.Err(); err != nil {
			return err
		}

		report := c.RefreshAll(ctx)
		total += report.Total
		failed += report.Failed

		j.logger.WithCPF(c.Session().CPF).WithFields(map[string]interface{}{
			"total":  report.Total,
			"failed": report.Failed,
		}).Info("Session refreshed")
	}

	j.logger.WithFields(map[string]interface{}{
		"sessions": len(j.manager.Sessions()),
		"stocks":   total,
		"failed":   failed,
	}).Info("Scheduled refresh finished")

	if openFailures > 0 || failed > 0 {
		return fmt.Errorf("refresh incomplete: %d sessions failed to open, %d of %d stocks failed", openFailures, failed, total)
	}
	return nil
}

// InvalidCPFs lists the configured CPFs that fail validation
func (j *RefreshPricesJob) InvalidCPFs() []string {
	var invalid []string
	for _, c := range j.cpfs {
		if !cpf.Validate(c) {
			invalid = append(invalid, c)
		}
	}
	return invalid
}
