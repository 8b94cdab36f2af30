package redis

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/internal/platform/config"
)

func TestNewWithoutURLMeansInMemory(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{}, nil)

	require.NoError(t, err)
	assert.Nil(t, client)
	assert.NoError(t, client.Close())
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "not a url"}, nil)

	assert.ErrorContains(t, err, "parse redis URL")
}

func TestPoolMetricsRecordsDeltas(t *testing.T) {
	m := NewPoolMetrics(prometheus.NewRegistry())

	last := m.record(&redis.PoolStats{Hits: 5, Misses: 2, TotalConns: 4, IdleConns: 3}, nil)
	assert.Equal(t, float64(5), testutil.ToFloat64(m.hits))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.totalConns))

	m.record(&redis.PoolStats{Hits: 9, Misses: 2, TotalConns: 2, IdleConns: 1}, last)
	assert.Equal(t, float64(9), testutil.ToFloat64(m.hits))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.misses))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.totalConns))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.idleConns))
}
