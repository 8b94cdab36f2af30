package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shortlink/internal/links/models"
	dErrors "shortlink/pkg/domain-errors"
	"shortlink/pkg/platform/httputil"
	limits "shortlink/pkg/platform/validation"
	"shortlink/pkg/requestcontext"
)

// Service is the link use-case surface the handler needs.
type Service interface {
	Create(ctx context.Context, username string, req *models.CreateLinkRequest, upload *models.ImageUpload) (*models.Link, error)
	List(ctx context.Context, username string) ([]*models.Link, error)
	Delete(ctx context.Context, username, id string) error
}

// Handler serves link management: create, list and delete.
type Handler struct {
	service       Service
	logger        *slog.Logger
	publicOrigin  string
	maxImageBytes int64
}

type Option func(*Handler)

// WithPublicOrigin fixes the origin used to build short URLs. Without it the
// origin is taken from the request.
func WithPublicOrigin(origin string) Option {
	return func(h *Handler) {
		h.publicOrigin = strings.TrimRight(origin, "/")
	}
}

func WithMaxImageBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxImageBytes = n
		}
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service:       service,
		logger:        logger,
		maxImageBytes: limits.MaxImageBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the authenticated list and delete endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/links", h.HandleList)
	r.Delete("/api/delete/{id}", h.HandleDelete)
}

// RegisterCreate registers POST /api/create. The router puts admission
// control in front of authentication for this route.
func (h *Handler) RegisterCreate(r chi.Router) {
	r.Post("/api/create", h.HandleCreate)
}

// HandleCreate implements POST /api/create.
//
// Input: multipart form with id, urlMobile, urlDesktop and an image file.
// Output: { "link": "https://sho.rt/promo" }
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	username := requestcontext.Username(ctx)
	if username == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+limits.MaxMultipartOverhead)
	if err := r.ParseMultipartForm(limits.MaxMultipartOverhead); err != nil {
		h.logger.WarnContext(ctx, "failed to parse create form",
			"error", err,
			"request_id", requestID,
		)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteError(w, models.ImageTooLarge(h.maxImageBytes))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup is best-effort
		}
	}()

	req := &models.CreateLinkRequest{
		ID:         r.FormValue("id"),
		URLMobile:  r.FormValue("urlMobile"),
		URLDesktop: r.FormValue("urlDesktop"),
	}

	upload, closeFile, err := imageFromForm(r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read uploaded image",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid image upload"))
		return
	}
	defer closeFile()

	link, err := h.service.Create(ctx, username, req, upload)
	if err != nil {
		h.logFailure(ctx, "failed to create link", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &models.CreateLinkResponse{
		Link: models.ShortURL(h.origin(r), link.ID),
	})
}

// imageFromForm returns a nil upload when the form has no image part.
func imageFromForm(r *http.Request) (*models.ImageUpload, func(), error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return uploadFromPart(file, header), func() { _ = file.Close() }, nil
}

func uploadFromPart(file multipart.File, header *multipart.FileHeader) *models.ImageUpload {
	return &models.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}
}

// HandleList implements GET /api/links.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := requestcontext.Username(ctx)
	if username == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized"))
		return
	}

	links, err := h.service.List(ctx, username)
	if err != nil {
		h.logFailure(ctx, "failed to list links", err)
		httputil.WriteError(w, err)
		return
	}

	origin := h.origin(r)
	resp := &models.ListLinksResponse{Links: make([]models.LinkResponse, 0, len(links))}
	for _, l := range links {
		resp.Links = append(resp.Links, models.ToResponse(l, origin))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleDelete implements DELETE /api/delete/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := requestcontext.Username(ctx)
	if username == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(ctx, username, id); err != nil {
		h.logFailure(ctx, "failed to delete link", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.DeleteLinkResponse{Message: "Link deleted"})
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	args := []any{"error", err, "request_id", requestcontext.RequestID(ctx)}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}

func (h *Handler) origin(r *http.Request) string {
	if h.publicOrigin != "" {
		return h.publicOrigin
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
