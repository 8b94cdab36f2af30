package links

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// pngImage is enough of a PNG for the declared-type upload checks.
var pngImage = []byte("\x89PNG\r\n\x1a\n e2e image")

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	DELETE(path string) error
	PostMultipart(path string, fields map[string]string, image []byte, contentType string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Save(key, value string)
	Saved(key string) string
}

// RegisterSteps registers link management step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &linkSteps{tc: tc}

	ctx.Step(`^I create link "([^"]*)" to "([^"]*)"$`, steps.createLink)
	ctx.Step(`^I create link "([^"]*)" to mobile "([^"]*)" and desktop "([^"]*)"$`, steps.createLinkWithDesktop)
	ctx.Step(`^I create link "([^"]*)" to "([^"]*)" without an image$`, steps.createLinkWithoutImage)
	ctx.Step(`^I create link "([^"]*)" to "([^"]*)" with a "([^"]*)" image$`, steps.createLinkWithType)
	ctx.Step(`^I create (\d+) links$`, steps.createNLinks)
	ctx.Step(`^I list my links$`, steps.listLinks)
	ctx.Step(`^I delete link "([^"]*)"$`, steps.deleteLink)
	ctx.Step(`^my links should be "([^"]*)"$`, steps.linksShouldBe)
	ctx.Step(`^I save the image of link "([^"]*)"$`, steps.saveImage)
	ctx.Step(`^I fetch the saved image$`, steps.fetchSavedImage)
}

type linkSteps struct {
	tc TestContext
}

func (s *linkSteps) create(id, mobile, desktop string, image []byte, contentType string) error {
	fields := map[string]string{"id": id, "urlMobile": mobile}
	if desktop != "" {
		fields["urlDesktop"] = desktop
	}
	return s.tc.PostMultipart("/api/create", fields, image, contentType)
}

func (s *linkSteps) createLink(ctx context.Context, id, url string) error {
	return s.create(id, url, "", pngImage, "image/png")
}

func (s *linkSteps) createLinkWithDesktop(ctx context.Context, id, mobile, desktop string) error {
	return s.create(id, mobile, desktop, pngImage, "image/png")
}

func (s *linkSteps) createLinkWithoutImage(ctx context.Context, id, url string) error {
	return s.create(id, url, "", nil, "")
}

func (s *linkSteps) createLinkWithType(ctx context.Context, id, url, contentType string) error {
	return s.create(id, url, "", pngImage, contentType)
}

func (s *linkSteps) createNLinks(ctx context.Context, n int) error {
	for i := range n {
		if err := s.create(fmt.Sprintf("bulk-%d", i), "https://example.com/", "", pngImage, "image/png"); err != nil {
			return err
		}
		if status := s.tc.GetLastResponseStatus(); status != 201 {
			return fmt.Errorf("create %d: status %d: %s", i, status, s.tc.GetLastResponseBody())
		}
	}
	return nil
}

func (s *linkSteps) listLinks(ctx context.Context) error {
	return s.tc.GET("/api/links", nil)
}

func (s *linkSteps) deleteLink(ctx context.Context, id string) error {
	return s.tc.DELETE("/api/delete/" + id)
}

type linkEntry struct {
	ID    string `json:"id"`
	Image string `json:"image"`
}

func (s *linkSteps) currentLinks() ([]linkEntry, error) {
	if err := s.tc.GET("/api/links", nil); err != nil {
		return nil, err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return nil, fmt.Errorf("list links: status %d", status)
	}
	var body struct {
		Links []linkEntry `json:"links"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return nil, err
	}
	return body.Links, nil
}

func (s *linkSteps) linksShouldBe(ctx context.Context, expected string) error {
	links, err := s.currentLinks()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ID)
	}
	if got := strings.Join(ids, ","); got != expected {
		return fmt.Errorf("expected links %q but got %q", expected, got)
	}
	return nil
}

func (s *linkSteps) saveImage(ctx context.Context, id string) error {
	links, err := s.currentLinks()
	if err != nil {
		return err
	}
	for _, l := range links {
		if l.ID == id {
			s.tc.Save("image", l.Image)
			return nil
		}
	}
	return fmt.Errorf("link %s not listed", id)
}

func (s *linkSteps) fetchSavedImage(ctx context.Context) error {
	return s.tc.GET(s.tc.Saved("image"), nil)
}
