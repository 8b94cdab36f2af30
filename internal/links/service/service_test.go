package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,ImageStorage,AuditPublisher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"shortlink/internal/links/metrics"
	"shortlink/internal/links/models"
	"shortlink/internal/links/service/mocks"
	dErrors "shortlink/pkg/domain-errors"
	"shortlink/pkg/platform/audit"
	"shortlink/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	images    *mocks.MockImageStorage
	publisher *mocks.MockAuditPublisher
	metrics   *metrics.Metrics
	now       time.Time
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.images = mocks.NewMockImageStorage(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.service = New(s.store, s.images,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.publisher),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) request() *models.CreateLinkRequest {
	return &models.CreateLinkRequest{
		ID:         " promo ",
		URLMobile:  "https://m.example.com/promo",
		URLDesktop: "https://example.com/promo",
	}
}

func (s *ServiceSuite) upload() *models.ImageUpload {
	content := []byte("\x89PNG fake image")
	return &models.ImageUpload{
		Filename:    "banner.png",
		ContentType: "image/png",
		Size:        int64(len(content)),
		Content:     bytes.NewReader(content),
	}
}

func (s *ServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("stores image then link and audits", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(nil, sentinel.ErrNotFound)
		s.images.EXPECT().Save(gomock.Any(), gomock.Any()).Return("/uploads/abc.png", nil)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, l *models.Link) error {
			s.Equal("promo", l.ID)
			s.Equal("/uploads/abc.png", l.ImagePath)
			s.Equal("ada", l.Username)
			s.Equal(s.now, l.CreatedAt)
			return nil
		})
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
			s.Equal(audit.EventLinkCreated.String(), ev.Action)
			s.Equal("promo", ev.LinkID)
			s.Equal("ada", ev.Username)
			return nil
		})

		link, err := s.service.Create(ctx, "ada", s.request(), s.upload())

		s.Require().NoError(err)
		s.Equal("promo", link.ID)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.LinksCreated))
	})

	s.Run("requires a user", func() {
		s.SetupTest()
		_, err := s.service.Create(ctx, "", s.request(), s.upload())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("validation happens before any lookup", func() {
		s.SetupTest()
		req := s.request()
		req.ID = "a!"
		_, err := s.service.Create(ctx, "ada", req, s.upload())
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.CreateFailures.WithLabelValues("validation")))
	})

	s.Run("missing image is a validation error", func() {
		s.SetupTest()
		_, err := s.service.Create(ctx, "ada", s.request(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "image is required")
	})

	s.Run("oversized image is rejected", func() {
		s.SetupTest()
		up := s.upload()
		up.Size = 6 << 20
		_, err := s.service.Create(ctx, "ada", s.request(), up)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("taken id is rejected before saving the image", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(&models.Link{ID: "promo"}, nil)

		_, err := s.service.Create(ctx, "ada", s.request(), s.upload())

		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "ID already exists")
	})

	s.Run("race on create removes the saved image", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(nil, sentinel.ErrNotFound)
		s.images.EXPECT().Save(gomock.Any(), gomock.Any()).Return("/uploads/abc.png", nil)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)
		s.images.EXPECT().Remove(gomock.Any(), "/uploads/abc.png").Return(nil)

		_, err := s.service.Create(ctx, "ada", s.request(), s.upload())

		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "ID already exists")
	})

	s.Run("store failure is internal and removes the image", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(nil, sentinel.ErrNotFound)
		s.images.EXPECT().Save(gomock.Any(), gomock.Any()).Return("/uploads/abc.png", nil)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
		s.images.EXPECT().Remove(gomock.Any(), "/uploads/abc.png").Return(errors.New("busy"))

		_, err := s.service.Create(ctx, "ada", s.request(), s.upload())

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("image write failure is internal", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(nil, sentinel.ErrNotFound)
		s.images.EXPECT().Save(gomock.Any(), gomock.Any()).Return("", errors.New("disk full"))

		_, err := s.service.Create(ctx, "ada", s.request(), s.upload())

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("image validation error from storage keeps its code", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(nil, sentinel.ErrNotFound)
		s.images.EXPECT().Save(gomock.Any(), gomock.Any()).
			Return("", models.ImageTooLarge(5<<20))

		_, err := s.service.Create(ctx, "ada", s.request(), s.upload())

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestDelete() {
	ctx := context.Background()
	owned := &models.Link{ID: "promo", Username: "ada", ImagePath: "/uploads/abc.png"}

	s.Run("owner deletes image and record", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(owned, nil)
		s.images.EXPECT().Remove(gomock.Any(), "/uploads/abc.png").Return(nil)
		s.store.EXPECT().Delete(gomock.Any(), "promo").Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		s.Require().NoError(s.service.Delete(ctx, "ada", "promo"))
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.LinksDeleted))
	})

	s.Run("image removal failure does not block delete", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(owned, nil)
		s.images.EXPECT().Remove(gomock.Any(), "/uploads/abc.png").Return(errors.New("permission denied"))
		s.store.EXPECT().Delete(gomock.Any(), "promo").Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		s.NoError(s.service.Delete(ctx, "ada", "promo"))
	})

	s.Run("other users see not found", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(owned, nil)

		err := s.service.Delete(ctx, "grace", "promo")

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown id is not found", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "nope").Return(nil, sentinel.ErrNotFound)

		err := s.service.Delete(ctx, "ada", "nope")

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("record vanishing mid-delete is not found", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(owned, nil)
		s.images.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(nil)
		s.store.EXPECT().Delete(gomock.Any(), "promo").Return(sentinel.ErrNotFound)

		err := s.service.Delete(ctx, "ada", "promo")

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestList() {
	ctx := context.Background()

	s.Run("returns store result", func() {
		s.SetupTest()
		links := []*models.Link{{ID: "b"}, {ID: "a"}}
		s.store.EXPECT().ListByUsername(gomock.Any(), "ada").Return(links, nil)

		got, err := s.service.List(ctx, "ada")

		s.Require().NoError(err)
		s.Equal(links, got)
	})

	s.Run("store error is internal", func() {
		s.SetupTest()
		s.store.EXPECT().ListByUsername(gomock.Any(), "ada").Return(nil, errors.New("timeout"))

		_, err := s.service.List(ctx, "ada")

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestFindRecord() {
	ctx := context.Background()

	s.Run("maps link to resolver record", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(&models.Link{
			ID: "promo", ImagePath: "/uploads/abc.png", URLMobile: "https://m.example.com",
		}, nil)

		rec, err := s.service.FindRecord(ctx, "promo")

		s.Require().NoError(err)
		s.Equal("promo", rec.ID)
		s.Equal("/uploads/abc.png", rec.ImageRef)
		s.Equal("https://m.example.com", rec.URLMobile)
		s.Empty(rec.URLDesktop)
	})

	s.Run("missing link is not found", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "nope").Return(nil, sentinel.ErrNotFound)

		_, err := s.service.FindRecord(ctx, "nope")

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure is internal", func() {
		s.SetupTest()
		s.store.EXPECT().FindByID(gomock.Any(), "promo").Return(nil, errors.New("closed"))

		_, err := s.service.FindRecord(ctx, "promo")

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
