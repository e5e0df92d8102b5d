// Package notify delivers the end-of-run summary to interested parties.
// The crawl engine produces one RunSummary per invocation; where it goes
// (logs, a message topic) is this package's concern.
package notify

import (
	"context"
	"time"

	"github.com/tlevesque/meteodb/internal/crawl"
)

// RunSummary describes one finished crawl run.
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Mode       string        `json:"mode"`
	Inserted   int           `json:"inserted"`
	Duration   time.Duration `json:"duration"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Summarize builds a RunSummary from a run report.
func Summarize(runID, mode string, report *crawl.Report, started, finished time.Time) RunSummary {
	s := RunSummary{
		RunID:      runID,
		Mode:       mode,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if report != nil {
		s.Inserted = report.Inserted
		s.Duration = report.Duration
	}
	return s
}

// Sink receives run summaries.
type Sink interface {
	ReportRun(ctx context.Context, summary RunSummary) error
	Close() error
}

// NoOpSink discards every summary.
type NoOpSink struct{}

// ReportRun for NoOpSink does nothing and returns nil.
func (NoOpSink) ReportRun(_ context.Context, _ RunSummary) error { return nil }

// Close for NoOpSink does nothing and returns nil.
func (NoOpSink) Close() error { return nil }
