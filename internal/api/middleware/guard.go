package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// protectedPrefixes lists the route prefixes that require an authenticated
// caller: credit purchases, profile pages, and transformation flows.
// Everything else is public by default.
var protectedPrefixes = []string{
	"/credits",
	"/profile",
	"/transformations",
}

// IsProtectedPath reports whether path falls under a protected prefix.
// A prefix matches itself and any subpath, never an unrelated sibling
// ("/profilex" is public, "/profile/images" is not).
func IsProtectedPath(path string) bool {
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Guard runs the Auth middleware only for requests to protected paths, so it
// can be mounted globally without taxing public catalog reads.
func Guard(jwtSecret string) echo.MiddlewareFunc {
	auth := Auth(jwtSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsProtectedPath(c.Request().URL.Path) {
				return next(c)
			}
			return auth(next)(c)
		}
	}
}
