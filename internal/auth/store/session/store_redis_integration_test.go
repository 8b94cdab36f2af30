//go:build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"shortlink/internal/auth/models"
	"shortlink/pkg/testutil/containers"
)

type RedisSessionStoreSuite struct {
	storeContractSuite
	redis *containers.RedisContainer
}

func TestRedisSessionStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSessionStoreSuite))
}

func (s *RedisSessionStoreSuite) SetupSuite() {
	s.redis = containers.Redis(s.T())
}

func (s *RedisSessionStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
	s.store = NewRedis(s.redis.Client)
}

func (s *RedisSessionStoreSuite) TestKeyExpiresWithSession() {
	ctx := context.Background()
	session := s.newSession("ttl-check")
	session.ExpiresAt = time.Now().Add(30 * time.Second)
	s.Require().NoError(s.store.Create(ctx, session))

	ttl, err := s.redis.Client.TTL(ctx, sessionKeyPrefix+"ttl-check").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 20*time.Second)
	s.LessOrEqual(ttl, 30*time.Second)
}

func (s *RedisSessionStoreSuite) TestRejectsExpiredSession() {
	session := &models.Session{ID: "old", Username: "ada", ExpiresAt: time.Now().Add(-time.Minute)}
	s.Error(s.store.Create(context.Background(), session))
}
