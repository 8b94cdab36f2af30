package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	dErrors "shortlink/pkg/domain-errors"
	"shortlink/pkg/requestcontext"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "username"

// Claims are the identity facts the middleware places on the request context.
type Claims struct {
	Username  string
	SessionID string
}

// SessionValidator checks a token and the session it refers to.
// Invalid, expired or revoked sessions are CodeUnauthorized domain errors;
// anything else is treated as an internal failure.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*Claims, error)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// TokenFromRequest prefers an Authorization bearer token and falls back to
// the session cookie.
func TokenFromRequest(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth rejects requests without a live session and stores the
// username and session ID in the context for the ones it lets through.
func RequireAuth(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := TokenFromRequest(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}

			claims, err := validator.ValidateSession(ctx, token)
			if err != nil {
				if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.ErrorContext(ctx, "failed to validate session",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate session")
					return
				}
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}

			ctx = requestcontext.WithSession(ctx, claims.Username, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
