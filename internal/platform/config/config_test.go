package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"SHORTLINK_ADDR", "ENVIRONMENT", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS",
		"SESSION_TTL", "CREATE_RATE_LIMIT", "CREATE_RATE_WINDOW", "REDIRECT_DELAY",
		"MAX_UPLOAD_BYTES", "UPLOAD_DIR", "TRUSTED_PROXIES", "PUBLIC_ORIGIN",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, time.Second, cfg.Redirect.Delay)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxBytes)
	assert.Equal(t, "public/uploads", cfg.Uploads.Dir)
	assert.Nil(t, cfg.TrustedProxies)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SHORTLINK_ADDR", ":9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PUBLIC_ORIGIN", "https://sho.rt/")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")
	t.Setenv("CREATE_RATE_LIMIT", "3")
	t.Setenv("CREATE_RATE_WINDOW", "30s")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("REDIRECT_DELAY", "250ms")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://sho.rt", cfg.PublicOrigin)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, 3, cfg.RateLimit.Limit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Redirect.Delay)
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("CREATE_RATE_LIMIT", "ten")
	t.Setenv("SESSION_TTL", "-5m")
	t.Setenv("MAX_UPLOAD_BYTES", "0")

	cfg := FromEnv()

	assert.Equal(t, 10, cfg.RateLimit.Limit)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxBytes)
}
