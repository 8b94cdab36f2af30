package redirect

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

var userAgents = map[string]string{
	"iPhone":  "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148",
	"Android": "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
	"desktop": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
}

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetLastResponseBody() []byte
	SetUserAgent(ua string)
}

// RegisterSteps registers redirect step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &redirectSteps{tc: tc}

	ctx.Step(`^I browse from an? "([^"]*)" device$`, steps.browseFrom)
	ctx.Step(`^I visit "([^"]*)"$`, steps.visit)
	ctx.Step(`^I resolve "([^"]*)"$`, steps.resolve)
	ctx.Step(`^the page should navigate to "([^"]*)"$`, steps.pageShouldNavigateTo)
	ctx.Step(`^the page should show the link image$`, steps.pageShouldShowImage)
}

type redirectSteps struct {
	tc TestContext
}

func (s *redirectSteps) browseFrom(ctx context.Context, device string) error {
	ua, ok := userAgents[device]
	if !ok {
		return fmt.Errorf("unknown device %q", device)
	}
	s.tc.SetUserAgent(ua)
	return nil
}

func (s *redirectSteps) visit(ctx context.Context, id string) error {
	return s.tc.GET("/"+id, nil)
}

func (s *redirectSteps) resolve(ctx context.Context, id string) error {
	return s.tc.GET("/api/resolve/"+id, nil)
}

func (s *redirectSteps) pageShouldNavigateTo(ctx context.Context, destination string) error {
	body := string(s.tc.GetLastResponseBody())
	if !strings.Contains(body, "window.location.replace(") {
		return fmt.Errorf("page has no navigation")
	}
	if !strings.Contains(body, `href="`+destination+`"`) {
		return fmt.Errorf("page does not navigate to %s", destination)
	}
	return nil
}

func (s *redirectSteps) pageShouldShowImage(ctx context.Context) error {
	if !strings.Contains(string(s.tc.GetLastResponseBody()), `<img src="/uploads/`) {
		return fmt.Errorf("page does not show the link image")
	}
	return nil
}
