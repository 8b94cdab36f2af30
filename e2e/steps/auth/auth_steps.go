package auth

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	ClearCookies()
	GetToken() string
	SetToken(token string)
}

// RegisterSteps registers account and session step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I register with username "([^"]*)" and password "([^"]*)"$`, steps.register)
	ctx.Step(`^I log in with username "([^"]*)" and password "([^"]*)"$`, steps.login)
	ctx.Step(`^I am logged in as "([^"]*)"$`, steps.loggedInAs)
	ctx.Step(`^I log out$`, steps.logout)
	ctx.Step(`^I drop my cookies$`, steps.dropCookies)
	ctx.Step(`^I request my profile$`, steps.requestProfile)
	ctx.Step(`^I request my profile with the saved token$`, steps.requestProfileWithToken)
}

type authSteps struct {
	tc TestContext
}

func credentials(username, password string) map[string]string {
	return map[string]string{"username": username, "password": password}
}

func (s *authSteps) register(ctx context.Context, username, password string) error {
	return s.tc.POST("/api/register", credentials(username, password))
}

func (s *authSteps) login(ctx context.Context, username, password string) error {
	if err := s.tc.POST("/api/login", credentials(username, password)); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 200 {
		tok, err := s.tc.GetResponseField("token")
		if err != nil {
			return err
		}
		s.tc.SetToken(fmt.Sprint(tok))
	}
	return nil
}

func (s *authSteps) loggedInAs(ctx context.Context, username string) error {
	const password = "correct-horse"
	if err := s.register(ctx, username, password); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 && status != 409 {
		return fmt.Errorf("register %s: status %d: %s", username, status, s.tc.GetLastResponseBody())
	}
	if err := s.login(ctx, username, password); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("login %s: status %d: %s", username, status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *authSteps) logout(ctx context.Context) error {
	return s.tc.POST("/api/logout", nil)
}

func (s *authSteps) dropCookies(ctx context.Context) error {
	s.tc.ClearCookies()
	return nil
}

func (s *authSteps) requestProfile(ctx context.Context) error {
	return s.tc.GET("/api/me", nil)
}

func (s *authSteps) requestProfileWithToken(ctx context.Context) error {
	return s.tc.GET("/api/me", map[string]string{"Authorization": "Bearer " + s.tc.GetToken()})
}
