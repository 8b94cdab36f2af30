package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want Class
	}{
		{"iPhone Safari", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15", Mobile},
		{"lowercase iphone token", "custom-client iphone build", Mobile},
		{"uppercase IPHONE token", "SOMEAPP/1.0 (IPHONE)", Mobile},
		{"Android Chrome", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile", Mobile},
		{"iPad", "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X)", Mobile},
		{"iPod", "Mozilla/5.0 (iPod touch; CPU iPhone OS 12_0)", Mobile},
		{"webOS", "Mozilla/5.0 (webOS/1.4.0; U; en-US)", Mobile},
		{"BlackBerry", "BlackBerry9700/5.0.0.351 Profile/MIDP-2.1", Mobile},
		{"IEMobile", "Mozilla/5.0 (compatible; MSIE 10.0; Windows Phone 8.0; IEMobile/10.0)", Mobile},
		{"Opera Mini", "Opera/9.80 (J2ME/MIDP; Opera Mini/9.80 (S60; SymbOS))", Mobile},
		{"Windows desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", Desktop},
		{"macOS Safari", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15", Desktop},
		{"curl", "curl/8.4.0", Desktop},
		{"empty", "", Desktop},
		{"split token does not match", "Opera  Mini", Desktop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ua))
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Unknown Device", Describe(""))
	assert.Equal(t, "Unknown Device", Describe("   "))
	assert.Contains(t, Describe("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"), "Chrome on Windows")
	assert.NotEmpty(t, Describe("curl/8.4.0"))
}
