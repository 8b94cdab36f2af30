package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Username  string    `json:"username,omitempty"`
	LinkID    string    `json:"link_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	IPPrefix  string    `json:"ip_prefix,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventUserRegistered AuditEvent = "user_registered"
	EventLoginSucceeded AuditEvent = "login_succeeded"
	EventLoginFailed    AuditEvent = "login_failed"
	EventLogout         AuditEvent = "logout"
	EventLinkCreated    AuditEvent = "link_created"
	EventLinkDeleted    AuditEvent = "link_deleted"
)

func (e AuditEvent) String() string {
	return string(e)
}

// Sink is where published events end up.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Write(ctx context.Context, event Event) error {
	return f(ctx, event)
}
