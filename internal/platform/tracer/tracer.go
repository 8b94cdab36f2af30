// Package tracer is a small tracing facade over OpenTelemetry. Services depend
// on the Tracer interface; tests use the no-op implementation.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span and marks it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

const (
	SpanLinkCreate  = "links.create"
	SpanLinkDelete  = "links.delete"
	SpanLinkList    = "links.list"
	SpanLinkLookup  = "links.lookup"
	SpanResolve     = "redirect.resolve"
	SpanImageSave   = "links.image.save"
	SpanImageRemove = "links.image.remove"
)

const (
	AttrLinkID   = "link.id"
	AttrUsername = "user.name"
	AttrDevice   = "redirect.device"
	AttrOutcome  = "redirect.outcome"
	AttrBytes    = "upload.bytes"
	AttrCount    = "result.count"
)
