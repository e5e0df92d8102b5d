package cmd

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tlevesque/meteodb/internal/app"
	"github.com/tlevesque/meteodb/internal/crawl"
	"github.com/tlevesque/meteodb/internal/notify"
)

// buildCrawler wires the crawl engine from the service container.
func buildCrawler(a *app.App) *crawl.Crawler {
	policy := &crawl.ExponentialRetryPolicy{
		MaxRetries: a.Config.HTTP.MaxRetries,
		BaseDelay:  time.Duration(a.Config.HTTP.BackoffInitialMs) * time.Millisecond,
		MaxDelay:   time.Duration(a.Config.HTTP.BackoffMaxMs) * time.Millisecond,
	}
	sequential := crawl.NewSequential(a.Client, a.Store, policy, a.Logger)
	concurrent := crawl.NewConcurrent(a.Client, a.Store, policy, a.Logger)
	return crawl.New(a.Client, a.Store, sequential, concurrent, a.Logger)
}

// finishRun logs the run report and pushes the summary to the configured
// sink. A sink failure is logged, not fatal: the crawl itself succeeded.
func finishRun(ctx context.Context, a *app.App, mode string, report *crawl.Report, started time.Time) {
	summary := notify.Summarize(uuid.NewString(), mode, report, started, time.Now())

	a.Logger.Info("run report",
		zap.String("mode", mode),
		zap.Int("inserted", report.Inserted),
		zap.Duration("duration", report.Duration),
	)
	if err := a.Notify.ReportRun(ctx, summary); err != nil {
		a.Logger.Warn("report delivery failed", zap.Error(err))
	}
}
