package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/caitlinwade/lumen/backend/internal/apperrors"
	"github.com/caitlinwade/lumen/backend/internal/middleware"
	"github.com/caitlinwade/lumen/backend/internal/models"
	"github.com/caitlinwade/lumen/backend/internal/repositories"
	"github.com/caitlinwade/lumen/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository  repositories.UserRepository
	mediaRepository repositories.MediaRepository
	blobStore       storage.BlobStore
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, mediaRepo repositories.MediaRepository, blobStore storage.BlobStore) *UserHandler {
	return &UserHandler{
		userRepository:  userRepo,
		mediaRepository: mediaRepo,
		blobStore:       blobStore,
	}
}

// RegisterPublicRoutes registers the user routes that need no token
func (h *UserHandler) RegisterPublicRoutes(e *echo.Echo) {
	e.GET("/users/:id", h.GetUser)
	e.GET("/users/exists/:email", h.UserExists)
}

// RegisterProfileRoutes registers the authenticated profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.PUT("/users", h.UpdateProfile)
	g.DELETE("/users", h.DeleteUser)
}

// GetUser retrieves a user's public profile, including the profile picture
// if one is set.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// UserExists reports whether an email is already registered (1 or 0).
func (h *UserHandler) UserExists(c echo.Context) error {
	exists, err := h.userRepository.EmailExists(c.Request().Context(), c.Param("email"))
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	if exists {
		return c.JSON(http.StatusOK, 1)
	}
	return c.JSON(http.StatusOK, 0)
}

// UpdateProfile updates the authenticated user's display name.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user.DisplayName = req.DisplayName
	if err := h.userRepository.UpdateUser(c.Request().Context(), user); err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUser deletes the authenticated user's account. The blob keys for the
// profile picture and all media on the user's posts are collected first,
// the relational rows go in one transaction, and the blobs are cleaned up
// best-effort afterwards.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	user := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	keys, err := h.mediaRepository.ListUserMediaKeys(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	if err := h.userRepository.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	deleteBlobs(ctx, h.blobStore, keys)

	return c.NoContent(http.StatusNoContent)
}
