package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// ContextKeyUserID is the key for the authenticated user id in echo context
	ContextKeyUserID = "user_id"
	// ContextKeyToken is the key for the raw bearer token
	ContextKeyToken = "token"
)

// TokenVerifier resolves a bearer token to the user it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (uuid.UUID, error)
}

// NewAuthMiddleware rejects requests without a valid bearer token.
func NewAuthMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			}

			userID, err := verifier.VerifyToken(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			}

			c.Set(ContextKeyUserID, userID)
			c.Set(ContextKeyToken, token)
			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, bool) {
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetUserID returns uuid.Nil outside authenticated routes.
func GetUserID(c echo.Context) uuid.UUID {
	userID, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

func GetToken(c echo.Context) string {
	token, _ := c.Get(ContextKeyToken).(string)
	return token
}

// NewAdminKeyMiddleware guards operator endpoints with a static key header.
// An empty key disables the endpoints entirely.
func NewAdminKeyMiddleware(header, key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin endpoints are disabled"})
			}
			got := c.Request().Header.Get(header)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			}
			return next(c)
		}
	}
}
