package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		remoteAddr     string
		trustedProxies []string
		expectedIP     string
	}{
		{
			name:       "ignores forwarding headers without trusted proxies",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
		},
		{
			name:           "first forwarded entry behind a trusted proxy",
			headers:        map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2"},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "203.0.113.1",
		},
		{
			name:           "x-real-ip when forwarded-for is absent",
			headers:        map[string]string{"X-Real-IP": "198.51.100.4"},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.1"},
			expectedIP:     "198.51.100.4",
		},
		{
			name:           "x-real-ip when forwarded-for is garbage",
			headers:        map[string]string{"X-Forwarded-For": "not-an-ip", "X-Real-IP": "198.51.100.4"},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "198.51.100.4",
		},
		{
			name:           "proxy address when no usable header",
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "10.0.0.1",
		},
		{
			name:       "ipv6 remote address",
			remoteAddr: "[2001:db8::5]:443",
			expectedIP: "2001:db8::5",
		},
		{
			name:       "unknown when remote address is unusable",
			remoteAddr: "pipe",
			expectedIP: UnknownClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefixes, err := ParseTrustedProxies(tt.trustedProxies)
			require.NoError(t, err)

			var gotIP, gotUA string
			handler := NewMiddleware(Config{TrustedProxies: prefixes}).Handler(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotIP = requestcontext.ClientIP(r.Context())
					gotUA = requestcontext.UserAgent(r.Context())
				}))

			req := httptest.NewRequest(http.MethodGet, "/promo", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expectedIP, gotIP)
			assert.Equal(t, "Mozilla/5.0 (iPhone)", gotUA)
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.1.2.3/8", "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "127.0.0.1/32", prefixes[1].String())

	_, err = ParseTrustedProxies([]string{"nope/99"})
	assert.Error(t, err)
}
