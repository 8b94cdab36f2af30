package limiter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shortlink/internal/ratelimit/config"
	"shortlink/internal/ratelimit/metrics"
	"shortlink/internal/ratelimit/models"
	"shortlink/internal/ratelimit/workers/cleanup"
	platformsync "shortlink/pkg/platform/sync"
)

// UnknownKey is used for clients that cannot be identified. They share one bucket.
const UnknownKey = "unknown"

// Limiter is an in-process fixed-window admission limiter keyed by client.
// A window starts on the first check after the previous one expired, so
// windows are per-key and not aligned to the clock.
type Limiter struct {
	cfg     config.Config
	records *platformsync.ShardedMap[models.Record]
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

type Option func(*Limiter)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// New builds a limiter. Invalid configuration values fall back to the defaults.
func New(cfg config.Config, opts ...Option) *Limiter {
	defaults := config.DefaultConfig()
	if cfg.Limit < 1 {
		cfg.Limit = defaults.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}

	l := &Limiter{
		cfg:     cfg,
		records: platformsync.NewShardedMap[models.Record](),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the effective configuration.
func (l *Limiter) Config() config.Config {
	return l.cfg
}

// Check runs CheckAndRecord with the configured limit and window.
func (l *Limiter) Check(key string) models.Result {
	return l.CheckAndRecord(key, l.cfg.Limit, l.cfg.Window)
}

// CheckAndRecord counts one observation for key and decides whether it is
// admitted. It never fails: an empty key is treated as UnknownKey and
// out-of-range limit or window values fall back to the configured ones.
//
// Exactly limit observations are admitted per window. Rejected observations
// are still counted, so Count keeps growing while a client retries.
func (l *Limiter) CheckAndRecord(key string, limit int, window time.Duration) models.Result {
	if key == "" {
		key = UnknownKey
	}
	if limit < 1 {
		limit = l.cfg.Limit
	}
	if window <= 0 {
		window = l.cfg.Window
	}

	now := l.now()
	decision := models.Admitted

	rec := l.records.Update(key, func(current models.Record, ok bool) models.Record {
		if !ok {
			current = models.Record{WindowResetAt: now.Add(window)}
		}
		current.LastAccessAt = now
		current.Window = window

		switch {
		case now.After(current.WindowResetAt):
			current.Count = 1
			current.WindowResetAt = now.Add(window)
		case current.Count >= limit:
			current.Count++
			decision = models.Rejected
		default:
			current.Count++
		}
		return current
	})

	if l.metrics != nil {
		l.metrics.ObserveDecision(decision)
	}

	return models.Result{
		Decision:  decision,
		Limit:     limit,
		Count:     rec.Count,
		ResetAt:   rec.WindowResetAt,
		CheckedAt: now,
	}
}

// Sweep drops records whose last access is more than two windows old.
// It only reclaims memory; decisions are the same with or without it.
func (l *Limiter) Sweep(ctx context.Context) (removed, remaining int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, l.records.Len(), err
	}
	now := l.now()
	removed = l.records.DeleteFunc(func(_ string, rec models.Record) bool {
		return rec.StaleAt().Before(now)
	})
	return removed, l.records.Len(), nil
}

// Len reports how many client keys are tracked.
func (l *Limiter) Len() int {
	return l.records.Len()
}

// Start launches the background sweep. Calling it on a running limiter is a no-op.
func (l *Limiter) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	l.cancel = cancel
	l.stopped = stopped

	opts := []cleanup.Option{
		cleanup.WithLogger(l.logger),
		cleanup.WithInterval(l.cfg.SweepInterval),
	}
	if l.metrics != nil {
		opts = append(opts, cleanup.WithMetrics(l.metrics))
	}
	worker := cleanup.New(l, opts...)

	go func() {
		defer close(stopped)
		_ = worker.Start(ctx) //nolint:errcheck // returns ctx.Err() on shutdown
	}()
}

// Shutdown stops the background sweep and waits for it to exit or for ctx
// to expire. It is safe to call more than once or without Start.
func (l *Limiter) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	cancel, stopped := l.cancel, l.stopped
	l.cancel, l.stopped = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
