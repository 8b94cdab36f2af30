package store

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"shortlink/internal/links/models"
	"shortlink/pkg/platform/sentinel"
	"shortlink/pkg/testutil"
)

type linkStore interface {
	Create(ctx context.Context, link *models.Link) error
	FindByID(ctx context.Context, id string) (*models.Link, error)
	ListByUsername(ctx context.Context, username string) ([]*models.Link, error)
	Delete(ctx context.Context, id string) error
}

// storeContractSuite holds the behaviour every link store must share.
// Embedding suites set store in SetupTest.
type storeContractSuite struct {
	suite.Suite
	store linkStore
	base  time.Time
}

func (s *storeContractSuite) newLink(id, username string, age time.Duration) *models.Link {
	return testutil.NewLink(id, username, s.base.Add(-age))
}

func (s *storeContractSuite) TestCreateAndFind() {
	ctx := context.Background()
	link := s.newLink("spring-sale", "ada", 0)
	link.URLDesktop = "https://a.example/d"

	s.Require().NoError(s.store.Create(ctx, link))

	found, err := s.store.FindByID(ctx, "spring-sale")
	s.Require().NoError(err)
	s.Equal(link.URLMobile, found.URLMobile)
	s.Equal("https://a.example/d", found.URLDesktop)
	s.Equal("ada", found.Username)
	s.True(link.CreatedAt.Equal(found.CreatedAt))
}

func (s *storeContractSuite) TestOptionalDesktopRoundTripsEmpty() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newLink("mobile-only", "ada", 0)))

	found, err := s.store.FindByID(ctx, "mobile-only")
	s.Require().NoError(err)
	s.Empty(found.URLDesktop)
}

func (s *storeContractSuite) TestDuplicateIDIsAlreadyUsed() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newLink("spring-sale", "ada", 0)))

	err := s.store.Create(ctx, s.newLink("spring-sale", "grace", 0))

	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *storeContractSuite) TestConcurrentCreateOnlyOneWins() {
	ctx := context.Background()

	successes, errs := testutil.RunConcurrentCollect(10, func(int) error {
		return s.store.Create(ctx, s.newLink("contested", "ada", 0))
	})

	s.Equal(int32(1), successes)
	s.Require().Len(errs, 9)
	for _, err := range errs {
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	}

	link, err := s.store.FindByID(ctx, "contested")
	s.Require().NoError(err)
	s.Equal("ada", link.Username)
}

func (s *storeContractSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestListByUsernameNewestFirst() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newLink("oldest", "ada", 3*time.Hour)))
	s.Require().NoError(s.store.Create(ctx, s.newLink("newest", "ada", 0)))
	s.Require().NoError(s.store.Create(ctx, s.newLink("middle", "ada", time.Hour)))
	s.Require().NoError(s.store.Create(ctx, s.newLink("other-user", "grace", 0)))

	links, err := s.store.ListByUsername(ctx, "ada")
	s.Require().NoError(err)

	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ID)
	}
	s.Equal([]string{"newest", "middle", "oldest"}, ids)

	none, err := s.store.ListByUsername(ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *storeContractSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newLink("spring-sale", "ada", 0)))

	s.Require().NoError(s.store.Delete(ctx, "spring-sale"))

	_, err := s.store.FindByID(ctx, "spring-sale")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, "spring-sale"), sentinel.ErrNotFound)
}
