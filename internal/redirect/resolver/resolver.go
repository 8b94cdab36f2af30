package resolver

import (
	"net/url"
	"strings"

	"shortlink/internal/redirect/device"
	"shortlink/internal/redirect/models"
)

// Resolve picks the destination for a visitor and validates it.
//
// Mobile visitors get URLMobile. Everyone else gets URLDesktop when it is set
// and URLMobile otherwise. The candidate must be an absolute http or https
// URL; anything else is rejected with ReasonUnsafeOrInvalidURL. The returned
// destination is the canonical form of the parsed URL, not the stored string.
func Resolve(rec models.LinkRecord, userAgent string) models.Resolution {
	class := device.Classify(userAgent)

	candidate := rec.URLMobile
	if class == device.Desktop && rec.URLDesktop != "" {
		candidate = rec.URLDesktop
	}

	dest, ok := Canonicalize(candidate)
	if !ok {
		return models.Resolution{Device: class, Reason: models.ReasonUnsafeOrInvalidURL}
	}
	return models.Resolution{Destination: dest, Device: class}
}

// Canonicalize parses raw as an absolute http(s) URL and returns it in
// normalized form: lowercase scheme and host, default port dropped and an
// empty path written as "/".
func Canonicalize(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Opaque != "" || u.Hostname() == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		host += ":" + port
	}
	u.Host = host

	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String(), true
}
