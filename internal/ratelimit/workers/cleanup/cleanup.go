package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// SweepResult contains the results of a sweep run.
type SweepResult struct {
	Removed   int           // stale records dropped
	Remaining int           // records still tracked
	Duration  time.Duration // time taken for the run
}

// Sweeper drops records that have not been touched recently.
type Sweeper interface {
	Sweep(ctx context.Context) (removed, remaining int, err error)
}

// Recorder receives per-run sweep statistics.
type Recorder interface {
	ObserveSweep(status string, removed, remaining int, seconds float64)
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithMetrics(r Recorder) Option {
	return func(w *Worker) {
		w.metrics = r
	}
}

// Worker runs a Sweeper on a fixed interval until its context ends.
type Worker struct {
	sweeper  Sweeper
	logger   *slog.Logger
	interval time.Duration
	metrics  Recorder
}

func New(sweeper Sweeper, opts ...Option) *Worker {
	w := &Worker{
		sweeper:  sweeper,
		logger:   slog.Default(),
		interval: time.Minute,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start blocks, sweeping every interval, and returns ctx.Err() once ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := w.RunOnce(ctx)
			if err != nil {
				w.logger.Error("ratelimit_sweep_failed", "error", err)
				continue
			}
			if res.Removed > 0 {
				w.logger.Info("ratelimit_sweep_completed",
					"removed", res.Removed,
					"remaining", res.Remaining,
					"duration_ms", res.Duration.Milliseconds(),
				)
			}

		case <-ctx.Done():
			w.logger.Info("ratelimit sweep worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single sweep and records metrics. Logging is left to Start.
func (w *Worker) RunOnce(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	removed, remaining, err := w.sweeper.Sweep(ctx)
	duration := time.Since(start)

	if err != nil {
		if w.metrics != nil {
			w.metrics.ObserveSweep("error", 0, remaining, duration.Seconds())
		}
		return nil, err
	}
	if w.metrics != nil {
		w.metrics.ObserveSweep("success", removed, remaining, duration.Seconds())
	}
	return &SweepResult{Removed: removed, Remaining: remaining, Duration: duration}, nil
}
