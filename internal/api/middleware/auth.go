package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// signInPath is where unauthenticated callers are pointed. The redirect
// itself is a client concern; the API only advertises the location.
const signInPath = "/sign-in"

// Auth validates the identity provider's session token and injects the
// caller's external id into context. Token contents beyond the HS256
// signature and the subject claim are the provider's business.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthenticated(c, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthenticated(c, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return unauthenticated(c, "invalid token")
			}

			sub, _ := claims["sub"].(string)
			if sub == "" {
				return unauthenticated(c, "token missing subject")
			}

			c.Set("external_id", sub)
			return next(c)
		}
	}
}

func unauthenticated(c echo.Context, msg string) error {
	c.Response().Header().Set("Location", signInPath)
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
