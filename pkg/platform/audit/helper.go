package audit

import (
	"context"
	"log/slog"

	"shortlink/pkg/platform/privacy"
	"shortlink/pkg/requestcontext"
)

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger provides structured audit logging with optional event emission.
// Services use it so every audit line has the same shape.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. Either argument may be nil.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Log writes an audit line and emits the matching event. request_id and the
// anonymized client IP are taken from ctx.
//
// Usage:
//
//	auditLogger.Log(ctx, audit.EventLinkCreated, "username", username, "link_id", id)
func (l *Logger) Log(ctx context.Context, event AuditEvent, attributes ...any) {
	if l == nil {
		return
	}
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	var ipPrefix string
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		ipPrefix = privacy.AnonymizeIP(ip)
		attributes = append(attributes, "ip_prefix", ipPrefix)
	}

	l.logToText(ctx, event, attributes)
	l.emitToAudit(ctx, Event{
		Action:    event.String(),
		Username:  extractString(attributes, "username"),
		LinkID:    extractString(attributes, "link_id"),
		Reason:    extractString(attributes, "reason"),
		IPPrefix:  ipPrefix,
		RequestID: requestID,
	})
}

func (l *Logger) logToText(ctx context.Context, event AuditEvent, attributes []any) {
	if l.textLogger == nil {
		return
	}
	args := append(attributes, "event", event.String(), "log_type", "audit")
	l.textLogger.InfoContext(ctx, event.String(), args...)
}

func (l *Logger) emitToAudit(ctx context.Context, event Event) {
	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", event.Action,
		)
	}
}

// extractString returns the string value following key in a slog-style
// key/value list.
func extractString(attributes []any, key string) string {
	for i := 0; i+1 < len(attributes); i += 2 {
		if k, ok := attributes[i].(string); ok && k == key {
			if v, ok := attributes[i+1].(string); ok {
				return v
			}
		}
	}
	return ""
}
