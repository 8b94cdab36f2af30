// Package sinks holds the destinations audit events are written to.
package sinks

import (
	"context"
	"log/slog"

	audit "shortlink/pkg/platform/audit"
)

// LogSink writes events as structured log lines.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, ev audit.Event) error {
	s.logger.InfoContext(ctx, "audit_event",
		"log_type", "audit",
		"event_id", ev.ID,
		"action", ev.Action,
		"username", ev.Username,
		"link_id", ev.LinkID,
		"reason", ev.Reason,
		"ip_prefix", ev.IPPrefix,
		"request_id", ev.RequestID,
		"timestamp", ev.Timestamp,
	)
	return nil
}
