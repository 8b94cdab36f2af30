// Package device classifies visitors for redirect target selection.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Class is the coarse device category used to pick a destination URL.
type Class string

const (
	Mobile  Class = "mobile"
	Desktop Class = "desktop"
)

// mobileTokens is matched case-insensitively as substrings of the User-Agent.
// The list is fixed; classification parity matters more than accuracy here.
var mobileTokens = []string{
	"android",
	"webos",
	"iphone",
	"ipad",
	"ipod",
	"blackberry",
	"iemobile",
	"opera mini",
}

// Classify returns Mobile when userAgent contains any mobile token.
// Everything else, including an empty string, is Desktop.
func Classify(userAgent string) Class {
	ua := strings.ToLower(userAgent)
	for _, token := range mobileTokens {
		if strings.Contains(ua, token) {
			return Mobile
		}
	}
	return Desktop
}

// Describe returns a display name like "Chrome on Windows 10" for logs and
// API responses. It never affects which URL is chosen.
func Describe(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			os = platform
		}
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
