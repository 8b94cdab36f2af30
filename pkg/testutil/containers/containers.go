//go:build integration

// Package containers starts Postgres, Redis and Kafka once per test binary
// for the integration-tagged store and sink tests.
package containers

import (
	"sync"
	"testing"
)

var (
	mu     sync.Mutex
	pg     *PostgresContainer
	broker *KafkaContainer
	cache  *RedisContainer
)

// Postgres returns the shared Postgres container, starting it on first use.
func Postgres(t *testing.T) *PostgresContainer {
	t.Helper()
	mu.Lock()
	defer mu.Unlock()
	if pg == nil {
		pg = NewPostgresContainer(t)
	}
	return pg
}

// Kafka returns the shared Kafka container, starting it on first use.
func Kafka(t *testing.T) *KafkaContainer {
	t.Helper()
	mu.Lock()
	defer mu.Unlock()
	if broker == nil {
		broker = NewKafkaContainer(t)
	}
	return broker
}

// Redis returns the shared Redis container, starting it on first use.
func Redis(t *testing.T) *RedisContainer {
	t.Helper()
	mu.Lock()
	defer mu.Unlock()
	if cache == nil {
		cache = NewRedisContainer(t)
	}
	return cache
}
