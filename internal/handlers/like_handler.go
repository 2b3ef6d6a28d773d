package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/caitlinwade/lumen/backend/internal/apperrors"
	"github.com/caitlinwade/lumen/backend/internal/middleware"
	"github.com/caitlinwade/lumen/backend/internal/models"
	"github.com/caitlinwade/lumen/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes", h.SetLike)
	g.GET("/likes/:post_id", h.GetLikeStatus)
}

// SetLike adds or removes a like based on the direction flag. The toggle is
// strict: liking an already-liked post is a conflict, and removing a like
// that does not exist is not found.
func (h *LikeHandler) SetLike(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req models.LikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	exists, err := h.postRepository.PostExists(ctx, req.PostID)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if req.Dir == models.LikeUp {
		like := &models.Like{PostID: req.PostID, UserID: user.ID}
		if err := h.likeRepository.CreateLike(ctx, like); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return echo.NewHTTPError(http.StatusConflict, "Post already liked by this user")
			}
			return echo.NewHTTPError(apperrors.Status(err), err.Error())
		}
		return c.JSON(http.StatusCreated, echo.Map{"message": "successfully added like"})
	}

	if err := h.likeRepository.DeleteLike(ctx, req.PostID, user.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Like does not exist")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "successfully removed like"})
}

// GetLikeStatus reports whether the authenticated user has liked a post.
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	user := middleware.CurrentUser(c)

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	ctx := c.Request().Context()

	exists, err := h.postRepository.PostExists(ctx, uint(postID))
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	hasLiked, err := h.likeRepository.HasUserLikedPost(ctx, uint(postID), user.ID)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "has_liked": hasLiked})
}
