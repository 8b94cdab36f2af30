package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "shortlink/pkg/platform/strings"
	limits "shortlink/pkg/platform/validation"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	PublicOrigin    string
	JWTSigningKey   string
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
	// TrustedProxies lists CIDRs whose X-Forwarded-For headers are believed.
	TrustedProxies []string
	// MetricsToken guards /metrics when set.
	MetricsToken string

	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Uploads   UploadConfig
	RateLimit RateLimitConfig
	Redirect  RedirectConfig
}

// DatabaseConfig selects the Postgres stores. An empty URL keeps everything in memory.
type DatabaseConfig struct {
	URL string
}

// RedisConfig selects the Redis session store. An empty URL keeps sessions in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// RateLimitConfig bounds link creation per client address.
type RateLimitConfig struct {
	Limit         int
	Window        time.Duration
	SweepInterval time.Duration
}

type RedirectConfig struct {
	Delay time.Duration
}

// IsProduction reports whether cookies should be marked Secure.
func (s Server) IsProduction() bool {
	return s.Environment == EnvProduction
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Unparseable values fall back to their defaults.
func FromEnv() Server {
	return Server{
		Addr:            envString("SHORTLINK_ADDR", ":8080"),
		Environment:     envString("ENVIRONMENT", EnvDevelopment),
		LogLevel:        envString("LOG_LEVEL", "info"),
		PublicOrigin:    strings.TrimRight(os.Getenv("PUBLIC_ORIGIN"), "/"),
		JWTSigningKey:   envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:      envDuration("SESSION_TTL", 24*time.Hour),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		TrustedProxies:  envList("TRUSTED_PROXIES"),
		MetricsToken:    os.Getenv("METRICS_TOKEN"),
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envString("KAFKA_AUDIT_TOPIC", "shortlink.audit"),
		},
		Uploads: UploadConfig{
			Dir:      envString("UPLOAD_DIR", "public/uploads"),
			MaxBytes: int64(envInt("MAX_UPLOAD_BYTES", limits.MaxImageBytes)),
		},
		RateLimit: RateLimitConfig{
			Limit:         envInt("CREATE_RATE_LIMIT", 10),
			Window:        envDuration("CREATE_RATE_WINDOW", time.Minute),
			SweepInterval: envDuration("RATE_SWEEP_INTERVAL", time.Minute),
		},
		Redirect: RedirectConfig{
			Delay: envDuration("REDIRECT_DELAY", time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envList(key string) []string {
	return platformstrings.SplitList(os.Getenv(key))
}
