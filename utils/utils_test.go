package utils

import (
	"testing"
	"time"

	"folio/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceAndBrowserClass(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		device  string
		browser string
	}{
		{
			name:    "chrome desktop",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			device:  DeviceDesktop,
			browser: BrowserChrome,
		},
		{
			name:    "firefox",
			ua:      "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			device:  DeviceDesktop,
			browser: BrowserFirefox,
		},
		{
			name:    "safari iphone",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			device:  DeviceMobile,
			browser: BrowserSafari,
		},
		{
			name:    "chromium edge reports chrome",
			ua:      "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36 Edg/120.0",
			device:  DeviceDesktop,
			browser: BrowserChrome,
		},
		{
			name:    "legacy edge reports chrome",
			ua:      "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/70.0 Safari/537.36 Edge/18.17763",
			device:  DeviceDesktop,
			browser: BrowserChrome,
		},
		{
			name:    "bare edge token",
			ua:      "Edge/18.0",
			device:  DeviceDesktop,
			browser: BrowserEdge,
		},
		{
			name:    "lowercase mobile still mobile",
			ua:      "curl/8.0 mobile",
			device:  DeviceMobile,
			browser: BrowserOther,
		},
		{
			name:    "browser match is case sensitive",
			ua:      "chrome firefox safari",
			device:  DeviceDesktop,
			browser: BrowserOther,
		},
		{
			name:    "unknown",
			ua:      UnknownUserAgent,
			device:  DeviceDesktop,
			browser: BrowserOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.device, DeviceClass(tt.ua))
			assert.Equal(t, tt.browser, BrowserClass(tt.ua))
		})
	}
}

func TestSlugs(t *testing.T) {
	assert.True(t, IsSlug("my-post"))
	assert.True(t, IsSlug("go-1-22"))
	assert.False(t, IsSlug("My-Post"))
	assert.False(t, IsSlug("my post"))
	assert.False(t, IsSlug(""))

	assert.Equal(t, "machine-learning", TagSlug("Machine  Learning"))
	assert.Equal(t, "go", TagSlug("Go"))
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: 7, Email: "admin@example.com", Role: models.RoleAdmin}

	token, err := issuer.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := issuer.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenIssuerRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: 1, Email: "a@example.com", Role: models.RoleAdmin}

	token, err := issuer.GenerateJWT(user)
	require.NoError(t, err)

	_, err = NewTokenIssuer("other-secret", time.Hour).ValidateJWT(token)
	assert.Error(t, err, "wrong secret")

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.ValidateJWT(token)
	assert.Error(t, err, "expired")

	_, err = issuer.ValidateJWT("not-a-token")
	assert.Error(t, err)
}
