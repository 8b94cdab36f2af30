package ratelimit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	PostMultipart(path string, fields map[string]string, image []byte, contentType string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers admission limiter step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I make (\d+) create requests$`, steps.makeNCreateRequests)
	ctx.Step(`^all of them should return (\d+)$`, steps.allShouldReturn)
	ctx.Step(`^I have exhausted the create limit$`, steps.exhaustCreateLimit)
}

type ratelimitSteps struct {
	tc       TestContext
	statuses []int
}

// makeNCreateRequests sends invalid creates: admission counts them whether
// or not they would succeed.
func (s *ratelimitSteps) makeNCreateRequests(ctx context.Context, n int) error {
	s.statuses = s.statuses[:0]
	for range n {
		if err := s.tc.PostMultipart("/api/create", map[string]string{"id": "x"}, nil, ""); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *ratelimitSteps) allShouldReturn(ctx context.Context, expected int) error {
	for i, status := range s.statuses {
		if status != expected {
			return fmt.Errorf("request %d returned %d, expected %d", i+1, status, expected)
		}
	}
	return nil
}

func (s *ratelimitSteps) exhaustCreateLimit(ctx context.Context) error {
	for range 1000 {
		if err := s.tc.PostMultipart("/api/create", map[string]string{"id": "x"}, nil, ""); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() == 429 {
			return nil
		}
	}
	return fmt.Errorf("create limit never reached")
}
