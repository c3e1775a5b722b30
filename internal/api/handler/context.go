package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxExternalID extracts the caller identity injected by the Auth middleware.
// An empty value means the middleware never ran for this route, which is a
// wiring bug surfaced as 401 rather than a panic further down.
func ctxExternalID(c echo.Context) (string, error) {
	externalID, _ := c.Get("external_id").(string)
	if externalID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return externalID, nil
}
