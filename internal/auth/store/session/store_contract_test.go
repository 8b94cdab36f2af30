package session

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"shortlink/internal/auth/models"
	"shortlink/pkg/platform/sentinel"
)

type sessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type storeContractSuite struct {
	suite.Suite
	store sessionStore
}

func (s *storeContractSuite) newSession(id string) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		ID:        id,
		Username:  "ada",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func (s *storeContractSuite) TestCreateFindDelete() {
	ctx := context.Background()
	session := s.newSession("0d6f3c1a-0000-4000-8000-000000000001")
	s.Require().NoError(s.store.Create(ctx, session))

	found, err := s.store.FindByID(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal("ada", found.Username)
	s.True(session.ExpiresAt.Equal(found.ExpiresAt))

	s.Require().NoError(s.store.Delete(ctx, session.ID))
	_, err = s.store.FindByID(ctx, session.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestDeleteMissing() {
	err := s.store.Delete(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
