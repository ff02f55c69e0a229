package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/ygrebnov/workpool/internal/machine"
)

// LogSink writes every interval as a structured log entry.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log.Named("sink")}
}

func (s *LogSink) Write(_ context.Context, iv machine.Interval) error {
	rec := NewRecord(iv)
	s.log.Info("machine interval",
		zap.String("id", rec.ID),
		zap.String("machine_id", rec.MachineID),
		zap.String("kind", rec.Kind),
		zap.Time("started_at", rec.StartedAt),
		zap.Float64("duration_seconds", rec.DurationSeconds),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
