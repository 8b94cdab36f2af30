package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/internal/redirect/device"
	"shortlink/internal/redirect/models"
)

const (
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	mobileUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
)

func TestResolve(t *testing.T) {
	t.Run("desktop falls back to mobile url when desktop is absent", func(t *testing.T) {
		res := Resolve(models.LinkRecord{ID: "promo", URLMobile: "https://a.example/m"}, desktopUA)

		require.False(t, res.Rejected())
		assert.Equal(t, "https://a.example/m", res.Destination)
		assert.Equal(t, device.Desktop, res.Device)
	})

	t.Run("desktop gets desktop url and mobile gets mobile url", func(t *testing.T) {
		rec := models.LinkRecord{ID: "promo", URLMobile: "https://a.example/m", URLDesktop: "https://a.example/d"}

		assert.Equal(t, "https://a.example/d", Resolve(rec, desktopUA).Destination)
		assert.Equal(t, "https://a.example/m", Resolve(rec, mobileUA).Destination)
		assert.Equal(t, device.Mobile, Resolve(rec, mobileUA).Device)
	})

	t.Run("empty user agent is treated as desktop", func(t *testing.T) {
		rec := models.LinkRecord{URLMobile: "https://a.example/m", URLDesktop: "https://a.example/d"}

		assert.Equal(t, "https://a.example/d", Resolve(rec, "").Destination)
	})

	t.Run("javascript url is rejected for every device", func(t *testing.T) {
		rec := models.LinkRecord{ID: "evil", URLMobile: "javascript:alert(1)"}

		for _, ua := range []string{desktopUA, mobileUA, ""} {
			res := Resolve(rec, ua)
			assert.True(t, res.Rejected(), ua)
			assert.Equal(t, models.ReasonUnsafeOrInvalidURL, res.Reason)
			assert.Empty(t, res.Destination)
		}
	})

	t.Run("unsafe desktop url is rejected without falling back", func(t *testing.T) {
		rec := models.LinkRecord{URLMobile: "https://a.example/m", URLDesktop: "data:text/html,<script>alert(1)</script>"}

		assert.True(t, Resolve(rec, desktopUA).Rejected())
		assert.False(t, Resolve(rec, mobileUA).Rejected())
	})
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain https", "https://a.example/m", "https://a.example/m", true},
		{"adds root path", "https://a.example", "https://a.example/", true},
		{"lowercases scheme and host", "HTTPS://A.Example/Path", "https://a.example/Path", true},
		{"drops default https port", "https://a.example:443/x", "https://a.example/x", true},
		{"drops default http port", "http://a.example:80/x", "http://a.example/x", true},
		{"keeps custom port", "http://a.example:8080/x", "http://a.example:8080/x", true},
		{"keeps query and fragment", "https://a.example/p?q=1#top", "https://a.example/p?q=1#top", true},
		{"trims surrounding space", "  https://a.example/m  ", "https://a.example/m", true},
		{"ipv6 host", "http://[2001:DB8::1]:80/", "http://[2001:db8::1]/", true},
		{"javascript scheme", "javascript:alert(1)", "", false},
		{"data scheme", "data:text/html,hi", "", false},
		{"ftp scheme", "ftp://a.example/file", "", false},
		{"relative path", "/local/path", "", false},
		{"scheme without host", "https:///nohost", "", false},
		{"opaque http", "http:a.example", "", false},
		{"unparsable", "http://a.example/%zz", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Canonicalize(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
