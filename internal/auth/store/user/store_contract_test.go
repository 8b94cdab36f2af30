package user

import (
	"context"

	"github.com/stretchr/testify/suite"

	"shortlink/internal/auth/models"
	"shortlink/pkg/platform/sentinel"
	"shortlink/pkg/testutil"
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// storeContractSuite is shared by the memory and Postgres suites.
type storeContractSuite struct {
	suite.Suite
	store userStore
}

func (s *storeContractSuite) newUser(username string) *models.User {
	return testutil.NewUser(username)
}

func (s *storeContractSuite) TestCreateAndFind() {
	ctx := context.Background()
	user := s.newUser("ada")
	s.Require().NoError(s.store.Create(ctx, user))

	found, err := s.store.FindByUsername(ctx, "ada")
	s.Require().NoError(err)
	s.Equal(user.PasswordHash, found.PasswordHash)
	s.True(user.CreatedAt.Equal(found.CreatedAt))
}

func (s *storeContractSuite) TestDuplicateUsername() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newUser("ada")))

	err := s.store.Create(ctx, s.newUser("ada"))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *storeContractSuite) TestFindMissing() {
	_, err := s.store.FindByUsername(context.Background(), "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestConcurrentRegisterOnlyOneWins() {
	ctx := context.Background()
	result := testutil.RunConcurrent(8, func(int) error {
		return s.store.Create(ctx, s.newUser("contested"))
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(7), result.Conflicts)
	s.Zero(result.Errors)
}
