package middleware

import (
	"net/http"
	"strings"

	"github.com/caitlinwade/lumen/backend/internal/models"
	"github.com/caitlinwade/lumen/backend/internal/repositories"
	"github.com/caitlinwade/lumen/backend/internal/token"
	"github.com/labstack/echo/v4"
)

const currentUserKey = "currentUser"

// Auth returns middleware that checks the Bearer token, resolves the user id
// it carries to a live user record, and stores the user in the request
// context. A token naming a user that no longer exists is treated the same
// as an invalid token: tokens are stateless and there is no revocation list,
// so the identity-resolution step is the only place a stale token for a
// deleted account gets caught.
func Auth(tokens *token.Service, userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			userID, err := tokens.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
			}

			user, err := userRepo.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user stored by Auth. It panics if
// called from a handler outside an Auth-protected group.
func CurrentUser(c echo.Context) *models.User {
	return c.Get(currentUserKey).(*models.User)
}
