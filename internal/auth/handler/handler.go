package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shortlink/internal/auth/models"
	dErrors "shortlink/pkg/domain-errors"
	"shortlink/pkg/platform/httputil"
	authmw "shortlink/pkg/platform/middleware/auth"
	"shortlink/pkg/requestcontext"
)

// Service defines the interface for auth operations.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error)
	Logout(ctx context.Context, username, sessionID string) error
}

type Handler struct {
	auth         Service
	logger       *slog.Logger
	secureCookie bool
	cookieMaxAge time.Duration
}

type Option func(*Handler)

// WithSecureCookie marks the session cookie Secure, for production.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}

// WithCookieMaxAge defaults to 24h.
func WithCookieMaxAge(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.cookieMaxAge = d
		}
	}
}

func New(auth Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		auth:         auth,
		logger:       logger,
		cookieMaxAge: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the public endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/register", h.HandleRegister)
	r.Post("/api/login", h.HandleLogin)
}

// RegisterProtected registers the endpoints that need RequireAuth in front.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/api/logout", h.HandleLogout)
	r.Get("/api/me", h.HandleMe)
}

// HandleRegister implements POST /api/register.
//
// Input: { "username": "ada", "password": "correct-horse" }
// Output: { "username": "ada" }
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.auth.Register(ctx, req)
	if err != nil {
		h.logFailure(ctx, "failed to register user", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &models.UserResponse{Username: user.Username})
}

// HandleLogin implements POST /api/login. The token is returned in the body
// and set as an HttpOnly cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.auth.Login(ctx, req)
	if err != nil {
		h.logFailure(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, int(h.cookieMaxAge.Seconds())))
	httputil.WriteJSON(w, http.StatusOK, &models.LoginResponse{
		Username:  result.Username,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// HandleLogout implements POST /api/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := requestcontext.Username(ctx)
	if err := h.auth.Logout(ctx, username, requestcontext.SessionID(ctx)); err != nil {
		h.logFailure(ctx, "logout failed", err)
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	httputil.WriteJSON(w, http.StatusOK, &models.MessageResponse{Message: "Logged out"})
}

// HandleMe implements GET /api/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	username := requestcontext.Username(r.Context())
	if username == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.UserResponse{Username: username})
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     authmw.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	args := []any{"error", err, "request_id", requestcontext.RequestID(ctx)}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
