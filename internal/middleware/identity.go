package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	// IdentityKey holds the authenticated caller's identity (string) on the echo context
	IdentityKey = "identity"
	// ClaimsKey holds the verified token claims
	ClaimsKey = "user"
)

// Identity returns the caller identity set by an auth middleware, or "" if none
func Identity(c echo.Context) string {
	id, _ := c.Get(IdentityKey).(string)
	return id
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
