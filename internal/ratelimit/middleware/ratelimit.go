package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"shortlink/internal/ratelimit/models"
	"shortlink/pkg/platform/httputil"
	"shortlink/pkg/platform/privacy"
	"shortlink/pkg/requestcontext"
)

// Limiter decides admission for a client key. It cannot fail.
type Limiter interface {
	Check(key string) models.Result
}

type Middleware struct {
	limiter Limiter
	logger  *slog.Logger
}

func New(limiter Limiter, logger *slog.Logger) *Middleware {
	return &Middleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Admission counts every request against the client IP resolved by the
// metadata middleware and answers 429 once the window is exhausted.
// Unidentified clients share the "unknown" key.
func (m *Middleware) Admission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := requestcontext.ClientIP(ctx)
		if key == "" {
			key = "unknown"
		}

		result := m.limiter.Check(key)
		addRateLimitHeaders(w, result)

		if !result.Admitted() {
			m.logger.WarnContext(ctx, "request rejected by admission limiter",
				"ip_prefix", privacy.AnonymizeIP(key),
				"path", r.URL.Path,
				"count", result.Count,
				"limit", result.Limit,
				"request_id", requestcontext.RequestID(ctx),
			)
			writeRateLimitExceeded(w, result)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining()))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter()))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:            "rate_limited",
		ErrorDescription: "Too many requests",
		RetryAfter:       result.RetryAfter(),
	})
}
