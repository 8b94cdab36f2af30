package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shortlink/internal/platform/tracer"
	"shortlink/internal/redirect/device"
	"shortlink/internal/redirect/metrics"
	"shortlink/internal/redirect/models"
	"shortlink/internal/redirect/navigation"
	"shortlink/internal/redirect/resolver"
	dErrors "shortlink/pkg/domain-errors"
	"shortlink/pkg/platform/httputil"
	"shortlink/pkg/requestcontext"
)

// LinkFinder loads the stored link for a short identifier. A missing link is
// reported as a CodeNotFound domain error.
type LinkFinder interface {
	FindRecord(ctx context.Context, id string) (*models.LinkRecord, error)
}

// Handler serves short link visits: the redirect page and its JSON twin.
type Handler struct {
	links     LinkFinder
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	scheduler navigation.Scheduler
	delay     time.Duration
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(h *Handler) {
		if t != nil {
			h.tracer = t
		}
	}
}

func WithScheduler(s navigation.Scheduler) Option {
	return func(h *Handler) {
		if s != nil {
			h.scheduler = s
		}
	}
}

// WithDelay sets how long the image is shown before navigating.
func WithDelay(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.delay = d
		}
	}
}

func New(links LinkFinder, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		links:     links,
		logger:    logger,
		tracer:    tracer.NewNoop(),
		scheduler: navigation.RealScheduler(),
		delay:     navigation.DefaultDelay,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterAPI registers the JSON resolve endpoint.
func (h *Handler) RegisterAPI(r chi.Router) {
	r.Get("/api/resolve/{id}", h.HandleResolve)
}

// RegisterPage registers the streamed redirect page. The route must not sit
// behind http.TimeoutHandler, which buffers the whole response.
func (h *Handler) RegisterPage(r chi.Router) {
	r.Get("/{id}", h.HandlePage)
}

// resolve looks up id and runs the resolver for the request's User-Agent.
// A rejected resolution is returned without error.
func (h *Handler) resolve(ctx context.Context, id, userAgent string) (_ *models.LinkRecord, _ models.Resolution, err error) {
	ctx, span := h.tracer.Start(ctx, tracer.SpanResolve, tracer.String(tracer.AttrLinkID, id))
	defer func() { span.End(err) }()

	rec, err := h.links.FindRecord(ctx, id)
	if err != nil {
		return nil, models.Resolution{}, err
	}

	res := resolver.Resolve(*rec, userAgent)
	span.SetAttributes(
		tracer.String(tracer.AttrDevice, string(res.Device)),
		tracer.String(tracer.AttrOutcome, res.Outcome()),
	)
	if h.metrics != nil {
		h.metrics.ObserveResolution(res)
	}
	return rec, res, nil
}

// HandleResolve returns the destination a visitor with this User-Agent would
// be sent to. Unknown links and rejected destinations are both 404.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "id")
	ua := userAgent(r)

	_, res, err := h.resolve(ctx, id, ua)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to resolve link",
				"error", err,
				"link_id", id,
				"request_id", requestID,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	if res.Rejected() {
		h.logger.WarnContext(ctx, "link destination rejected",
			"link_id", id,
			"reason", string(res.Reason),
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "link not found"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &models.ResolveResponse{
		ID:          id,
		Destination: res.Destination,
		Device:      res.Device,
		DeviceName:  device.Describe(ua),
	})
}

// HandlePage streams the link image, waits the redirect delay and then emits
// the navigation. If the visitor goes away first the navigation is cancelled.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "id")

	rec, res, err := h.resolve(ctx, id, userAgent(r))
	switch {
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		h.renderNotFound(w)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to load link for redirect",
			"error", err,
			"link_id", id,
			"request_id", requestID,
		)
		h.renderError(w)
		return
	}

	nav := navigation.New(res, h.scheduler)
	if nav.State() == models.Rejected {
		h.logger.WarnContext(ctx, "link destination rejected",
			"link_id", id,
			"reason", string(res.Reason),
			"request_id", requestID,
		)
		h.observeNavigation(models.Rejected)
		h.renderNotFound(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := pageHead.Execute(w, headData{Image: imageSrc(rec.ImageRef)}); err != nil {
		h.logger.WarnContext(ctx, "failed to write redirect page", "error", err, "request_id", requestID)
		nav.Cancel()
		h.observeNavigation(models.Cancelled)
		return
	}
	flush(w)

	nav.Display(h.delay, nil)
	select {
	case <-nav.Done():
	case <-ctx.Done():
		nav.Cancel()
	}

	state := nav.State()
	h.observeNavigation(state)
	if state != models.Navigating {
		h.logger.DebugContext(ctx, "redirect cancelled before navigation",
			"link_id", id,
			"request_id", requestID,
		)
		return
	}

	if err := pageNavigate.Execute(w, navigateData{Destination: nav.Destination()}); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.DebugContext(ctx, "failed to write navigation", "error", err, "request_id", requestID)
	}
	flush(w)
}

func (h *Handler) observeNavigation(state models.State) {
	if h.metrics != nil {
		h.metrics.ObserveNavigation(state)
	}
}

func (h *Handler) renderNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = pageStatus.Execute(w, statusData{Title: "Link not found", Message: "This short link does not exist."})
}

func (h *Handler) renderError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = pageStatus.Execute(w, statusData{Title: "Something went wrong", Message: "Please try again later."})
}

func userAgent(r *http.Request) string {
	if ua := requestcontext.UserAgent(r.Context()); ua != "" {
		return ua
	}
	return r.UserAgent()
}

// imageSrc makes stored image references root-relative.
func imageSrc(ref string) string {
	if strings.HasPrefix(ref, "/") {
		return ref
	}
	return "/" + ref
}

func flush(w http.ResponseWriter) {
	// Writers without flush support simply deliver at the end.
	_ = http.NewResponseController(w).Flush()
}
