// Package httptransport assembles the chi router from the feature handlers.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authhandler "shortlink/internal/auth/handler"
	linkshandler "shortlink/internal/links/handler"
	"shortlink/internal/links/images"
	"shortlink/internal/platform/health"
	redirecthandler "shortlink/internal/redirect/handler"
	"shortlink/pkg/platform/middleware/admin"
	"shortlink/pkg/platform/middleware/request"
	"shortlink/pkg/platform/middleware/security"
	limits "shortlink/pkg/platform/validation"
)

const defaultAPITimeout = 30 * time.Second

// MetricsExporter serves /metrics and observes endpoint latency.
type MetricsExporter interface {
	request.LatencyObserver
	Handler() http.Handler
}

// Deps is everything the router mounts. Auth, Links, Redirect and Health are required.
type Deps struct {
	Logger *slog.Logger

	// ClientMetadata stores the client IP and User-Agent in the context.
	ClientMetadata func(http.Handler) http.Handler
	// Admission guards link creation. It runs before authentication.
	Admission func(http.Handler) http.Handler
	// RequireAuth resolves the session for protected routes.
	RequireAuth func(http.Handler) http.Handler

	Auth     *authhandler.Handler
	Links    *linkshandler.Handler
	Redirect *redirecthandler.Handler
	Health   *health.Handler

	Metrics      MetricsExporter
	MetricsToken string
	UploadDir    string
	APITimeout   time.Duration
}

// NewRouter wires all public endpoints with middleware.
//
// The streamed redirect page at /{id} stays outside the API timeout group
// because http.TimeoutHandler buffers the whole response.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(security.Middleware)
	r.Use(request.RequestID)
	if d.ClientMetadata != nil {
		r.Use(d.ClientMetadata)
	}
	r.Use(request.Logger(d.Logger))
	r.Use(request.Recovery(d.Logger))
	if d.Metrics != nil {
		r.Use(request.LatencyMiddleware(d.Metrics))
	}

	d.Health.Register(r)
	if d.Metrics != nil {
		r.With(admin.RequireAdminToken(d.MetricsToken, d.Logger)).Handle("/metrics", d.Metrics.Handler())
	}
	if d.UploadDir != "" {
		r.Handle(images.PublicPrefix+"*", http.StripPrefix(images.PublicPrefix, http.FileServer(http.Dir(d.UploadDir))))
	}

	timeout := d.APITimeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	admission := passthrough(d.Admission)
	requireAuth := passthrough(d.RequireAuth)

	r.Group(func(api chi.Router) {
		api.Use(request.Timeout(timeout))

		api.Group(func(public chi.Router) {
			public.Use(request.BodyLimit(limits.MaxBodySize))
			public.Use(request.ContentTypeJSON)
			d.Auth.Register(public)
		})
		d.Redirect.RegisterAPI(api)

		d.Links.RegisterCreate(api.With(admission, requireAuth))

		api.Group(func(protected chi.Router) {
			protected.Use(requireAuth)
			d.Auth.RegisterProtected(protected)
			d.Links.Register(protected)
		})
	})

	d.Redirect.RegisterPage(r)

	return r
}

func passthrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw != nil {
		return mw
	}
	return func(next http.Handler) http.Handler { return next }
}
