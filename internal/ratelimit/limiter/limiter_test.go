package limiter

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"shortlink/internal/ratelimit/config"
	"shortlink/internal/ratelimit/metrics"
	"shortlink/internal/ratelimit/models"
	platformtest "shortlink/pkg/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type LimiterSuite struct {
	suite.Suite
	clock   *fakeClock
	metrics *metrics.Metrics
	limiter *Limiter
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.clock = &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.limiter = New(config.Config{Limit: 3, Window: time.Minute, SweepInterval: time.Minute},
		WithClock(s.clock.Now),
		WithMetrics(s.metrics),
	)
}

func (s *LimiterSuite) decisions(key string, n int) []models.Decision {
	out := make([]models.Decision, 0, n)
	for range n {
		out = append(out, s.limiter.Check(key).Decision)
	}
	return out
}

func (s *LimiterSuite) TestAdmitsExactlyLimitPerWindow() {
	got := s.decisions("198.51.100.4", 5)

	s.Equal([]models.Decision{
		models.Admitted, models.Admitted, models.Admitted,
		models.Rejected, models.Rejected,
	}, got)
	s.Equal(3.0, testutil.ToFloat64(s.metrics.AdmissionDecisionsTotal.WithLabelValues("admitted")))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.AdmissionDecisionsTotal.WithLabelValues("rejected")))
}

func (s *LimiterSuite) TestRejectedAttemptsKeepCounting() {
	var last models.Result
	for range 8 {
		last = s.limiter.Check("198.51.100.4")
	}

	s.False(last.Admitted())
	s.Equal(8, last.Count)
	s.Equal(0, last.Remaining())
}

func (s *LimiterSuite) TestNewWindowStartsAfterReset() {
	first := s.limiter.Check("198.51.100.4")
	s.decisions("198.51.100.4", 4)

	s.Run("still rejected exactly at reset", func() {
		s.clock.Advance(first.ResetAt.Sub(s.clock.Now()))
		s.False(s.limiter.Check("198.51.100.4").Admitted())
	})

	s.Run("admitted once past reset", func() {
		s.clock.Advance(time.Millisecond)
		res := s.limiter.Check("198.51.100.4")
		s.True(res.Admitted())
		s.Equal(1, res.Count)
		s.Equal(s.clock.Now().Add(time.Minute), res.ResetAt)
	})
}

func (s *LimiterSuite) TestKeysAreIndependent() {
	s.decisions("198.51.100.4", 5)

	s.True(s.limiter.Check("198.51.100.5").Admitted())
}

func (s *LimiterSuite) TestEmptyKeySharesUnknownBucket() {
	s.decisions("", 3)

	s.False(s.limiter.Check(UnknownKey).Admitted())
	s.Equal(1, s.limiter.Len())
}

func (s *LimiterSuite) TestInvalidArgumentsFallBackToConfig() {
	res := s.limiter.CheckAndRecord("198.51.100.4", 0, -time.Second)

	s.True(res.Admitted())
	s.Equal(3, res.Limit)
	s.Equal(s.clock.Now().Add(time.Minute), res.ResetAt)
}

func (s *LimiterSuite) TestRetryAfterCountsDownWithinWindow() {
	s.decisions("198.51.100.4", 3)
	s.clock.Advance(20 * time.Second)

	res := s.limiter.Check("198.51.100.4")

	s.False(res.Admitted())
	s.Equal(40, res.RetryAfter())
}

func (s *LimiterSuite) TestSweepDropsOnlyStaleRecords() {
	s.limiter.Check("stale")
	s.clock.Advance(90 * time.Second)
	s.limiter.Check("fresh")
	s.clock.Advance(31 * time.Second)

	removed, remaining, err := s.limiter.Sweep(context.Background())

	s.Require().NoError(err)
	s.Equal(1, removed)
	s.Equal(1, remaining)
	s.True(s.limiter.Check("fresh").Admitted())
}

func (s *LimiterSuite) TestSweepDoesNotChangeDecisions() {
	s.decisions("198.51.100.4", 3)
	_, _, err := s.limiter.Sweep(context.Background())
	s.Require().NoError(err)

	s.False(s.limiter.Check("198.51.100.4").Admitted())
}

func (s *LimiterSuite) TestSweepHonoursCancelledContext() {
	s.limiter.Check("198.51.100.4")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, remaining, err := s.limiter.Sweep(ctx)

	s.ErrorIs(err, context.Canceled)
	s.Equal(1, remaining)
}

func (s *LimiterSuite) TestConcurrentChecksOnOneKey() {
	l := New(config.Config{Limit: 10, Window: time.Hour, SweepInterval: time.Minute})

	result := platformtest.RunConcurrent(100, func(int) error {
		l.Check("203.0.113.50")
		return nil
	})
	s.Equal(int32(100), result.Successes)

	res := l.Check("203.0.113.50")
	s.Equal(101, res.Count)
	s.False(res.Admitted())
}

func (s *LimiterSuite) TestConcurrentAdmissionsNeverExceedLimit() {
	l := New(config.Config{Limit: 10, Window: time.Hour, SweepInterval: time.Minute})

	var mu sync.Mutex
	admitted := 0
	platformtest.RunConcurrent(64, func(idx int) error {
		if l.Check("shared-" + strconv.Itoa(idx%2)).Admitted() {
			mu.Lock()
			admitted++
			mu.Unlock()
		}
		return nil
	})

	s.Equal(20, admitted)
}

func (s *LimiterSuite) TestStartAndShutdown() {
	l := New(config.Config{Limit: 1, Window: time.Millisecond, SweepInterval: 5 * time.Millisecond})
	l.Check("198.51.100.4")

	l.Start(context.Background())
	l.Start(context.Background())

	s.Eventually(func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Require().NoError(l.Shutdown(ctx))
	s.Require().NoError(l.Shutdown(ctx))
}

func (s *LimiterSuite) TestShutdownWithoutStart() {
	s.NoError(s.limiter.Shutdown(context.Background()))
}

func (s *LimiterSuite) TestNewAppliesDefaults() {
	l := New(config.Config{})

	s.Equal(config.DefaultConfig(), l.Config())
}
