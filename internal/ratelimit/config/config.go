package config

import (
	"time"

	dErrors "shortlink/pkg/domain-errors"
)

// Config holds admission limiter configuration.
type Config struct {
	// Limit is the number of admissions per client key per window.
	Limit int
	// Window is the length of a counting window. Windows start lazily on the
	// first request after the previous one expired.
	Window time.Duration
	// SweepInterval is how often stale records are removed.
	SweepInterval time.Duration
}

// DefaultConfig returns the link creation limits: 10 per minute, swept every minute.
func DefaultConfig() Config {
	return Config{
		Limit:         10,
		Window:        time.Minute,
		SweepInterval: time.Minute,
	}
}

// Validate rejects configurations the limiter cannot honour.
func (c Config) Validate() error {
	if c.Limit < 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "rate limit must be at least 1")
	}
	if c.Window <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "rate limit window must be positive")
	}
	if c.SweepInterval <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "rate limit sweep interval must be positive")
	}
	return nil
}
