package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"shortlink/internal/platform/kafka/producer"
	audit "shortlink/pkg/platform/audit"
	"shortlink/pkg/platform/audit/metrics"
	"shortlink/pkg/platform/circuit"
)

// Producer is the subset of the Kafka producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSink publishes events to a topic keyed by event ID. While the breaker
// is open, or when a produce fails, events go to the fallback sink instead.
type KafkaSink struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	fallback audit.Sink
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type KafkaOption func(*KafkaSink)

func WithBreaker(b *circuit.Breaker) KafkaOption {
	return func(s *KafkaSink) {
		if b != nil {
			s.breaker = b
		}
	}
}

func WithFallback(sink audit.Sink) KafkaOption {
	return func(s *KafkaSink) {
		if sink != nil {
			s.fallback = sink
		}
	}
}

func WithMetrics(m *metrics.Metrics) KafkaOption {
	return func(s *KafkaSink) {
		s.metrics = m
	}
}

// NewKafkaSink falls back to a LogSink on logger unless WithFallback says otherwise.
func NewKafkaSink(p Producer, topic string, logger *slog.Logger, opts ...KafkaOption) *KafkaSink {
	s := &KafkaSink{
		producer: p,
		topic:    topic,
		breaker:  circuit.New("kafka-audit"),
		fallback: NewLogSink(logger),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *KafkaSink) Write(ctx context.Context, ev audit.Event) error {
	if !s.breaker.Allow() {
		return s.fallbackWrite(ctx, ev)
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	err = s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(ev.ID),
		Value: value,
		Headers: map[string]string{
			"action": ev.Action,
		},
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncWriteFailures("kafka")
		}
		if change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "audit kafka circuit opened", "topic", s.topic, "error", err)
		}
		return s.fallbackWrite(ctx, ev)
	}
	if change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "audit kafka circuit closed", "topic", s.topic)
	}
	return nil
}

func (s *KafkaSink) fallbackWrite(ctx context.Context, ev audit.Event) error {
	if s.metrics != nil {
		s.metrics.IncSinkFallbacks()
	}
	return s.fallback.Write(ctx, ev)
}
