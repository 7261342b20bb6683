package utils

import "strings"

const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"

	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserEdge    = "edge"
	BrowserOther   = "other"

	UnknownUserAgent = "unknown"
)

// DeviceClass reports "mobile" when the user agent mentions "mobile" in any
// case, "desktop" otherwise.
func DeviceClass(userAgent string) string {
	if strings.Contains(strings.ToLower(userAgent), "mobile") {
		return DeviceMobile
	}
	return DeviceDesktop
}

// BrowserClass matches case-sensitive substrings in priority order; the
// first hit wins. Edge and most Safari builds also advertise "Chrome" or
// "Safari" and are classified by that earlier token.
func BrowserClass(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Chrome"):
		return BrowserChrome
	case strings.Contains(userAgent, "Firefox"):
		return BrowserFirefox
	case strings.Contains(userAgent, "Safari"):
		return BrowserSafari
	case strings.Contains(userAgent, "Edge"):
		return BrowserEdge
	default:
		return BrowserOther
	}
}
