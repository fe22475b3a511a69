package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// AuthCookieName is the cookie FromRequest falls back to when no
// Authorization header is present.
const AuthCookieName = "Authorization"

// newAuthCookie builds the session cookie for an access token. The value
// carries the Bearer prefix so the cookie and header paths parse the same
// way.
func newAuthCookie(token string, now time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     AuthCookieName,
		Value:    "Bearer " + token,
		Path:     "/",
		Expires:  now.Add(AccessTokenLifetime),
		HTTPOnly: true,
		SameSite: "Lax",
	}
}

// expiredAuthCookie builds the cookie that clears the session on logout.
func expiredAuthCookie(now time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  now.Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	}
}
