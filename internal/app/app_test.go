package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"shortlink/internal/platform/config"
)

type AppSuite struct {
	suite.Suite
	app    *App
	server *httptest.Server
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func testConfig(uploadDir string) config.Server {
	return config.Server{
		Environment:     config.EnvDevelopment,
		JWTSigningKey:   "test-signing-key",
		SessionTTL:      time.Hour,
		ShutdownTimeout: time.Second,
		PublicOrigin:    "https://sho.rt",
		Uploads:         config.UploadConfig{Dir: uploadDir, MaxBytes: 1024},
		RateLimit:       config.RateLimitConfig{Limit: 3, Window: time.Minute, SweepInterval: time.Minute},
		Redirect:        config.RedirectConfig{Delay: 20 * time.Millisecond},
		MetricsToken:    "ops-secret",
	}
}

func (s *AppSuite) SetupTest() {
	a, err := New(context.Background(), testConfig(s.T().TempDir()), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	s.app = a
	s.server = httptest.NewServer(a.Handler())
}

func (s *AppSuite) TearDownTest() {
	s.server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.NoError(s.app.Shutdown(ctx))
}

func (s *AppSuite) client() *http.Client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	return &http.Client{Jar: jar, CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
}

func (s *AppSuite) postJSON(c *http.Client, path, body string) *http.Response {
	resp, err := c.Post(s.server.URL+path, "application/json", strings.NewReader(body))
	s.Require().NoError(err)
	return resp
}

func (s *AppSuite) login(c *http.Client, username string) {
	resp := s.postJSON(c, "/api/register", `{"username":"`+username+`","password":"lovelace"}`)
	resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp = s.postJSON(c, "/api/login", `{"username":"`+username+`","password":"lovelace"}`)
	resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *AppSuite) create(c *http.Client, id, mobile, desktop string) *http.Response {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	s.Require().NoError(mw.WriteField("id", id))
	s.Require().NoError(mw.WriteField("urlMobile", mobile))
	if desktop != "" {
		s.Require().NoError(mw.WriteField("urlDesktop", desktop))
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="banner.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	s.Require().NoError(err)
	_, err = part.Write([]byte("\x89PNG fake image bytes"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	resp, err := c.Post(s.server.URL+"/api/create", mw.FormDataContentType(), &buf)
	s.Require().NoError(err)
	return resp
}

func decode[T any](s *AppSuite, resp *http.Response) T {
	defer resp.Body.Close()
	var out T
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *AppSuite) TestLinkLifecycle() {
	c := s.client()
	s.login(c, "ada")

	resp := s.create(c, "promo", "https://m.example.com/app", "https://example.com/app")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	created := decode[map[string]string](s, resp)
	s.Equal("https://sho.rt/promo", created["link"])

	listResp, err := c.Get(s.server.URL + "/api/links")
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, listResp.StatusCode)
	list := decode[map[string][]map[string]any](s, listResp)
	s.Require().Len(list["links"], 1)
	image := list["links"][0]["image"].(string)
	s.True(strings.HasPrefix(image, "/uploads/"))

	imgResp, err := c.Get(s.server.URL + image)
	s.Require().NoError(err)
	body, _ := io.ReadAll(imgResp.Body)
	imgResp.Body.Close()
	s.Equal(http.StatusOK, imgResp.StatusCode)
	s.Equal("\x89PNG fake image bytes", string(body))

	req, _ := http.NewRequest(http.MethodGet, s.server.URL+"/api/resolve/promo", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)")
	resolveResp, err := c.Do(req)
	s.Require().NoError(err)
	resolved := decode[map[string]string](s, resolveResp)
	s.Equal("https://m.example.com/app", resolved["destination"])
	s.Equal("mobile", resolved["device"])

	pageResp, err := c.Get(s.server.URL + "/promo")
	s.Require().NoError(err)
	page, _ := io.ReadAll(pageResp.Body)
	pageResp.Body.Close()
	s.Equal(http.StatusOK, pageResp.StatusCode)
	s.Contains(string(page), image)
	s.Contains(string(page), "window.location.replace(")
	s.Contains(string(page), `href="https://example.com/app"`)

	delReq, _ := http.NewRequest(http.MethodDelete, s.server.URL+"/api/delete/promo", nil)
	delResp, err := c.Do(delReq)
	s.Require().NoError(err)
	delResp.Body.Close()
	s.Equal(http.StatusOK, delResp.StatusCode)

	goneResp, err := c.Get(s.server.URL + "/promo")
	s.Require().NoError(err)
	goneResp.Body.Close()
	s.Equal(http.StatusNotFound, goneResp.StatusCode)

	imgResp, err = c.Get(s.server.URL + image)
	s.Require().NoError(err)
	imgResp.Body.Close()
	s.Equal(http.StatusNotFound, imgResp.StatusCode)
}

func (s *AppSuite) TestRouteNamesCannotBeLinkIDs() {
	c := s.client()
	s.login(c, "ada")

	for _, id := range []string{"health", "metrics"} {
		resp := s.create(c, id, "https://example.com", "")
		s.Equal(http.StatusBadRequest, resp.StatusCode, id)
		body := decode[map[string]string](s, resp)
		s.Equal("validation_error", body["error"], id)
		s.Equal("id is reserved", body["error_description"], id)
	}

	listResp, err := c.Get(s.server.URL + "/api/links")
	s.Require().NoError(err)
	s.Empty(decode[map[string][]map[string]any](s, listResp)["links"])
}

func (s *AppSuite) TestAdmissionRunsBeforeAuthentication() {
	anonymous := s.client()
	for range 3 {
		resp := s.create(anonymous, "nope", "https://example.com", "")
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	}

	// Same client address, now logged in: the window is already spent.
	c := s.client()
	s.login(c, "grace")
	resp := s.create(c, "late", "https://example.com", "")
	resp.Body.Close()
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.NotEmpty(resp.Header.Get("Retry-After"))
	s.Equal("0", resp.Header.Get("X-RateLimit-Remaining"))
}

func (s *AppSuite) TestLogoutRevokesSession() {
	c := s.client()
	s.login(c, "linus")

	meResp, err := c.Get(s.server.URL + "/api/me")
	s.Require().NoError(err)
	s.Equal("linus", decode[map[string]string](s, meResp)["username"])

	u, _ := http.NewRequest(http.MethodGet, s.server.URL, nil)
	stolen := c.Jar.Cookies(u.URL)
	s.Require().NotEmpty(stolen)

	resp := s.postJSON(c, "/api/logout", "")
	resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	// Replaying the old token must fail even though the JWT itself is still valid.
	replay, _ := http.NewRequest(http.MethodGet, s.server.URL+"/api/me", nil)
	replay.Header.Set("Authorization", "Bearer "+stolen[0].Value)
	replayResp, err := http.DefaultClient.Do(replay)
	s.Require().NoError(err)
	replayResp.Body.Close()
	s.Equal(http.StatusUnauthorized, replayResp.StatusCode)
}

func (s *AppSuite) TestOperationalEndpoints() {
	resp, err := http.Get(s.server.URL + "/health/ready")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, err = http.Get(s.server.URL + "/metrics")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, s.server.URL+"/metrics", nil)
	req.Header.Set("X-Admin-Token", "ops-secret")
	resp, err = http.DefaultClient.Do(req)
	s.Require().NoError(err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), "shortlink_endpoint_latency_seconds")
	s.NotEmpty(resp.Header.Get("X-Content-Type-Options"))
}

func (s *AppSuite) TestServeStopsOnCancel() {
	cfg := testConfig(s.T().TempDir())
	cfg.Addr = "127.0.0.1:0"
	a, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(5 * time.Second):
		s.Fail("Run did not return after cancel")
	}
}
