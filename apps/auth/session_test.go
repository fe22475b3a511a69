package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAuthCookie(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cookie := newAuthCookie("tok123", now)

	assert.Equal(t, AuthCookieName, cookie.Name)
	assert.True(t, strings.HasPrefix(cookie.Value, "Bearer "), "cookie must parse like the Authorization header")
	assert.Equal(t, "Bearer tok123", cookie.Value)
	assert.Equal(t, now.Add(AccessTokenLifetime), cookie.Expires)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HTTPOnly)
}

func TestExpiredAuthCookie(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cookie := expiredAuthCookie(now)

	assert.Equal(t, AuthCookieName, cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(now), "logout cookie must already be expired")
}
