package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"shortlink/pkg/requestcontext"

	"github.com/stretchr/testify/suite"
)

type recordingEmitter struct {
	events    []Event
	shouldErr bool
}

func (m *recordingEmitter) Emit(_ context.Context, event Event) error {
	if m.shouldErr {
		return errors.New("emit failed")
	}
	m.events = append(m.events, event)
	return nil
}

// LoggerSuite covers enrichment from the request context and the nil
// collaborator paths.
type LoggerSuite struct {
	suite.Suite
	emitter *recordingEmitter
	logger  *Logger
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) SetupTest() {
	s.emitter = &recordingEmitter{}
	s.logger = NewLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), s.emitter)
}

func (s *LoggerSuite) TestLogEnrichesFromContext() {
	ctx := requestcontext.WithRequestID(context.Background(), "req-12345")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.77", "curl/8.0")

	s.logger.Log(ctx, EventLinkCreated, "username", "ada", "link_id", "promo")

	s.Require().Len(s.emitter.events, 1)
	ev := s.emitter.events[0]
	s.Equal("link_created", ev.Action)
	s.Equal("ada", ev.Username)
	s.Equal("promo", ev.LinkID)
	s.Equal("req-12345", ev.RequestID)
	s.Equal("203.0.113.0", ev.IPPrefix)
}

func (s *LoggerSuite) TestLogWithoutClientIPLeavesPrefixEmpty() {
	s.logger.Log(context.Background(), EventLoginFailed, "username", "ada", "reason", "invalid_credentials")

	s.Require().Len(s.emitter.events, 1)
	s.Empty(s.emitter.events[0].IPPrefix)
	s.Equal("invalid_credentials", s.emitter.events[0].Reason)
}

func (s *LoggerSuite) TestLogIgnoresNonStringValues() {
	s.logger.Log(context.Background(), EventLogout, "username", 42)

	s.Require().Len(s.emitter.events, 1)
	s.Empty(s.emitter.events[0].Username)
}

func (s *LoggerSuite) TestLogHandlesEmitError() {
	s.emitter.shouldErr = true

	s.NotPanics(func() {
		s.logger.Log(context.Background(), EventUserRegistered, "username", "ada")
	})
	s.Empty(s.emitter.events)
}

func (s *LoggerSuite) TestNilCollaborators() {
	s.NotPanics(func() {
		NewLogger(nil, nil).Log(context.Background(), EventLogout)
	})

	var nilLogger *Logger
	s.NotPanics(func() {
		nilLogger.Log(context.Background(), EventLogout)
	})

	emitter := &recordingEmitter{}
	NewLogger(nil, emitter).Log(context.Background(), EventLogout, "username", "ada")
	s.Len(emitter.events, 1)
}
