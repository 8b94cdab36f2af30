package models

import "time"

// User is a registered account. Username is stored lowercased.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is a login. Tokens carry the session ID so logout takes effect
// before the token itself expires.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session ended at or before now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL is the time left before expiry, never negative.
func (s *Session) TTL(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
