// Package service implements link creation, listing, deletion and the lookup
// used by the redirect resolver.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shortlink/internal/links/metrics"
	"shortlink/internal/links/models"
	"shortlink/internal/platform/tracer"
	redirect "shortlink/internal/redirect/models"
	dErrors "shortlink/pkg/domain-errors"
	"shortlink/pkg/platform/audit"
	"shortlink/pkg/platform/sentinel"
)

// Store persists links.
// Error Contract: FindByID and Delete return sentinel.ErrNotFound for unknown
// IDs; Create returns sentinel.ErrAlreadyUsed when the ID is taken.
type Store interface {
	Create(ctx context.Context, link *models.Link) error
	FindByID(ctx context.Context, id string) (*models.Link, error)
	ListByUsername(ctx context.Context, username string) ([]*models.Link, error)
	Delete(ctx context.Context, id string) error
}

// ImageStorage stores uploaded images and returns their public path.
type ImageStorage interface {
	Save(ctx context.Context, upload *models.ImageUpload) (string, error)
	Remove(ctx context.Context, publicPath string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const defaultMaxImageBytes = 5 * 1024 * 1024

type Service struct {
	links         Store
	images        ImageStorage
	logger        *slog.Logger
	publisher     AuditPublisher
	auditLogger   *audit.Logger
	metrics       *metrics.Metrics
	tracer        tracer.Tracer
	now           func() time.Time
	maxImageBytes int64
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxImageBytes bounds accepted uploads. Defaults to 5MB.
func WithMaxImageBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxImageBytes = n
		}
	}
}

func New(links Store, images ImageStorage, opts ...Option) *Service {
	svc := &Service{
		links:         links,
		images:        images,
		logger:        slog.Default(),
		tracer:        tracer.NewNoop(),
		now:           time.Now,
		maxImageBytes: defaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.auditLogger = audit.NewLogger(svc.logger, svc.publisher)
	return svc
}

// Create validates the form, rejects taken IDs, stores the image and then the
// link. The image is removed again when the link cannot be persisted.
func (s *Service) Create(ctx context.Context, username string, req *models.CreateLinkRequest, upload *models.ImageUpload) (link *models.Link, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLinkCreate, tracer.String(tracer.AttrUsername, username))
	defer func() { span.End(err) }()

	if username == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.createFailed("validation")
		return nil, err
	}
	if err := upload.Validate(s.maxImageBytes); err != nil {
		s.createFailed("validation")
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrLinkID, req.ID))

	if err := s.ensureAvailable(ctx, req.ID); err != nil {
		return nil, err
	}

	imagePath, err := s.saveImage(ctx, upload)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	link = &models.Link{
		ID:         req.ID,
		ImagePath:  imagePath,
		URLMobile:  req.URLMobile,
		URLDesktop: req.URLDesktop,
		Username:   username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.links.Create(ctx, link); err != nil {
		s.discardImage(ctx, imagePath)
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.createFailed("duplicate")
			return nil, dErrors.New(dErrors.CodeBadRequest, "ID already exists")
		}
		s.createFailed("store")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save link")
	}

	if s.metrics != nil {
		s.metrics.IncLinksCreated()
	}
	s.auditLogger.Log(ctx, audit.EventLinkCreated, "username", username, "link_id", link.ID)
	return link, nil
}

func (s *Service) ensureAvailable(ctx context.Context, id string) error {
	_, err := s.links.FindByID(ctx, id)
	switch {
	case err == nil:
		s.createFailed("duplicate")
		return dErrors.New(dErrors.CodeBadRequest, "ID already exists")
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	default:
		s.createFailed("store")
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check link id")
	}
}

func (s *Service) saveImage(ctx context.Context, upload *models.ImageUpload) (path string, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanImageSave)
	defer func() { span.End(err) }()

	path, err = s.images.Save(ctx, upload)
	if err != nil {
		var de *dErrors.Error
		if errors.As(err, &de) {
			s.createFailed("validation")
			return "", err
		}
		s.createFailed("image")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to save image")
	}
	span.SetAttributes(tracer.Int(tracer.AttrBytes, int(upload.Size)))
	if s.metrics != nil {
		s.metrics.ObserveImageBytes(upload.Size)
	}
	return path, nil
}

func (s *Service) discardImage(ctx context.Context, path string) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanImageRemove)
	err := s.images.Remove(ctx, path)
	span.End(err)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to remove link image",
			"error", err,
			"image_path", path,
		)
	}
}

func (s *Service) createFailed(reason string) {
	if s.metrics != nil {
		s.metrics.IncCreateFailure(reason)
	}
}

// List returns the user's links, newest first.
func (s *Service) List(ctx context.Context, username string) (links []*models.Link, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLinkList, tracer.String(tracer.AttrUsername, username))
	defer func() { span.End(err) }()

	links, err = s.links.ListByUsername(ctx, username)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list links")
	}
	span.SetAttributes(tracer.Int(tracer.AttrCount, len(links)))
	return links, nil
}

// Delete removes a link owned by username. Links owned by someone else are
// reported as not found. A failure to remove the image is only logged.
func (s *Service) Delete(ctx context.Context, username, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLinkDelete,
		tracer.String(tracer.AttrUsername, username),
		tracer.String(tracer.AttrLinkID, id),
	)
	defer func() { span.End(err) }()

	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Link not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load link")
	}
	if !link.OwnedBy(username) {
		return dErrors.New(dErrors.CodeNotFound, "Link not found")
	}

	if link.ImagePath != "" {
		s.discardImage(ctx, link.ImagePath)
	}
	if err := s.links.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Link not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete link")
	}

	if s.metrics != nil {
		s.metrics.IncLinksDeleted()
	}
	s.auditLogger.Log(ctx, audit.EventLinkDeleted, "username", username, "link_id", id)
	return nil
}

// FindRecord returns the resolver view of a link.
func (s *Service) FindRecord(ctx context.Context, id string) (rec *redirect.LinkRecord, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLinkLookup, tracer.String(tracer.AttrLinkID, id))
	defer func() {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			span.End(nil)
			return
		}
		span.End(err)
	}()

	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "link not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load link")
	}
	return link.Record(), nil
}
