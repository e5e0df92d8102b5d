package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes run summaries to the application log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink builds a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// ReportRun logs the summary at info level.
func (s *LogSink) ReportRun(_ context.Context, summary RunSummary) error {
	s.logger.Info("run finished",
		zap.String("run_id", summary.RunID),
		zap.String("mode", summary.Mode),
		zap.Int("inserted", summary.Inserted),
		zap.Duration("duration", summary.Duration),
		zap.Time("started_at", summary.StartedAt),
		zap.Time("finished_at", summary.FinishedAt),
	)
	return nil
}

// Close is a no-op for the log sink.
func (s *LogSink) Close() error { return nil }
