// Package device turns raw User-Agent strings into the short device
// descriptions embedded in login notifications.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// Describe extracts a human-readable device name from a User-Agent string,
// in the form "Browser on OS" (e.g. "Chrome on macOS", "Safari on iOS").
func Describe(userAgentString string) string {
	if strings.TrimSpace(userAgentString) == "" {
		return unknownDevice
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		platform := ua.Platform()
		if platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
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
