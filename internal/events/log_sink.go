package events

import (
	"context"
	"log/slog"
)

type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Consume(ctx context.Context, e Event) error {
	s.log.DebugContext(ctx, "domain event",
		"event", e.Name,
		"thread_id", e.ThreadID,
		"provider", e.Provider.String())
	return nil
}
