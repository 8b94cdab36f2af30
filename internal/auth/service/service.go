// Package service implements registration, login, logout and session
// validation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"shortlink/internal/auth/metrics"
	"shortlink/internal/auth/models"
	"shortlink/internal/auth/token"
	dErrors "shortlink/pkg/domain-errors"
	"shortlink/pkg/platform/audit"
	authmw "shortlink/pkg/platform/middleware/auth"
	"shortlink/pkg/platform/sentinel"
	"shortlink/pkg/secrets"
)

// UserStore defines the persistence interface for user data.
// Error Contract: FindByUsername returns sentinel.ErrNotFound for unknown
// users; Create returns sentinel.ErrAlreadyUsed for taken usernames.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionStore defines the persistence interface for session data.
// Error Contract: FindByID and Delete return sentinel.ErrNotFound.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type TokenGenerator interface {
	Generate(username, sessionID string, expiresAt time.Time) (string, error)
	Validate(tokenString string) (*token.SessionClaims, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const defaultSessionTTL = 24 * time.Hour

// dummyHash keeps the cost of a login for an unknown user close to a real
// password check.
var dummyHash = sync.OnceValue(func() string {
	h, _ := secrets.Hash("shortlink-unknown-user") //nolint:errcheck // constant input
	return h
})

type Service struct {
	users       UserStore
	sessions    SessionStore
	tokens      TokenGenerator
	sessionTTL  time.Duration
	logger      *slog.Logger
	publisher   AuditPublisher
	auditLogger *audit.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
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

// WithSessionTTL configures how long a login lasts. Defaults to 24 hours.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
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

func New(users UserStore, sessions SessionStore, tokens TokenGenerator, opts ...Option) *Service {
	svc := &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: defaultSessionTTL,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.auditLogger = audit.NewLogger(svc.logger, svc.publisher)
	return svc
}

// SessionTTL is the lifetime given to new sessions.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "username already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersRegistered()
	}
	s.auditLogger.Log(ctx, audit.EventUserRegistered, "username", user.Username)
	return user, nil
}

// Login checks credentials, opens a session and signs a token for it.
// Unknown users and wrong passwords get the same error.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
		_ = secrets.Verify(req.Password, dummyHash()) //nolint:errcheck // timing equalization only
		return nil, s.authFailure(ctx, "unknown_user", req.Username)
	}
	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, s.authFailure(ctx, "invalid_password", req.Username)
		}
		return nil, err
	}

	now := s.now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}
	signed, err := s.tokens.Generate(session.Username, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	if s.metrics != nil {
		s.metrics.IncrementLogins()
	}
	s.auditLogger.Log(ctx, audit.EventLoginSucceeded, "username", user.Username)
	return &models.LoginResult{
		Username:  session.Username,
		Token:     signed,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) authFailure(ctx context.Context, reason, username string) error {
	if s.metrics != nil {
		s.metrics.IncrementAuthFailures(reason)
	}
	s.auditLogger.Log(ctx, audit.EventLoginFailed, "username", username, "reason", reason)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
}

// Logout ends the session. An already-ended session is not an error.
func (s *Service) Logout(ctx context.Context, username, sessionID string) error {
	if sessionID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "Unauthorized")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to end session")
	}
	if s.metrics != nil {
		s.metrics.IncrementLogouts()
	}
	s.auditLogger.Log(ctx, audit.EventLogout, "username", username)
	return nil
}

// ValidateSession checks the token and that its session is still live.
// It satisfies the RequireAuth middleware's SessionValidator.
func (s *Service) ValidateSession(ctx context.Context, tokenString string) (*authmw.Claims, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		s.recordValidationFailure("invalid_token")
		return nil, err
	}

	session, err := s.sessions.FindByID(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordValidationFailure("session_revoked")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session revoked")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if session.Username != claims.Username() {
		s.recordValidationFailure("session_mismatch")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	if session.IsExpired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to delete expired session", "error", err)
		}
		s.recordValidationFailure("session_expired")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired")
	}

	return &authmw.Claims{Username: session.Username, SessionID: session.ID}, nil
}

func (s *Service) recordValidationFailure(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementAuthFailures(reason)
	}
}
