package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenFromRequest reads a bearer token from the Authorization header,
// falling back to the token query parameter
func TokenFromRequest(c echo.Context) string {
	token := c.Request().Header.Get("Authorization")
	if token != "" {
		return strings.TrimPrefix(token, "Bearer ")
	}
	return c.QueryParam("token")
}

// Middleware rejects requests that do not carry the admin token. An empty
// admin token leaves the routes open.
func Middleware(adminToken string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminToken == "" {
				return next(c)
			}

			token := TokenFromRequest(c)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Unauthorized",
				})
			}

			return next(c)
		}
	}
}
