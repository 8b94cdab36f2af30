package models

import (
	"math"
	"time"
)

// Decision is the outcome of a single admission check.
type Decision int

const (
	Admitted Decision = iota
	Rejected
)

func (d Decision) String() string {
	if d == Rejected {
		return "rejected"
	}
	return "admitted"
}

// Record is the per-client counter for the current window.
// Count includes rejected attempts, so it may exceed the limit.
type Record struct {
	Count         int
	WindowResetAt time.Time
	LastAccessAt  time.Time
	// Window is the length the record was last checked with; the sweep uses
	// it to decide staleness.
	Window time.Duration
}

// StaleAt is the instant after which the sweep may drop the record.
func (r Record) StaleAt() time.Time {
	return r.LastAccessAt.Add(2 * r.Window)
}

// Result describes an admission check for a key.
type Result struct {
	Decision  Decision  `json:"-"`
	Limit     int       `json:"limit"`
	Count     int       `json:"count"`
	ResetAt   time.Time `json:"reset_at"`
	CheckedAt time.Time `json:"-"`
}

func (r Result) Admitted() bool {
	return r.Decision == Admitted
}

// Remaining is how many more admissions the key has in the current window.
func (r Result) Remaining() int {
	if r.Count >= r.Limit {
		return 0
	}
	return r.Limit - r.Count
}

// RetryAfter is the whole number of seconds until the window resets, at least 1.
func (r Result) RetryAfter() int {
	secs := int(math.Ceil(r.ResetAt.Sub(r.CheckedAt).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
