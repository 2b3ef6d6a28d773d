package handlers

import (
	"context"
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

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository  repositories.PostRepository
	userRepository  repositories.UserRepository
	likeRepository  repositories.LikeRepository
	mediaRepository repositories.MediaRepository
	blobStore       storage.BlobStore
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, likeRepo repositories.LikeRepository, mediaRepo repositories.MediaRepository, blobStore storage.BlobStore) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		userRepository:  userRepo,
		likeRepository:  likeRepo,
		mediaRepository: mediaRepo,
		blobStore:       blobStore,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/user/:user_id", h.GetPostsByUser)
	g.GET("/posts/:id", h.GetPost)
	g.POST("/posts", h.CreatePost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// buildPostOut assembles the aggregate view of a post: author details,
// like count and attached media.
func (h *PostHandler) buildPostOut(ctx context.Context, post *models.Post) (*models.PostOut, error) {
	author, err := h.userRepository.GetUserByID(ctx, post.UserID)
	if err != nil {
		return nil, err
	}

	likeCount, err := h.likeRepository.GetLikesCountByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	mediaRows, err := h.mediaRepository.GetMediaByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	media := make([]models.MediaOut, 0, len(mediaRows))
	for _, m := range mediaRows {
		media = append(media, models.MediaOut{Filename: m.Filename, URL: m.Filepath})
	}

	out := &models.PostOut{
		ID:        post.ID,
		Content:   post.Content,
		Published: post.Published,
		UserID:    post.UserID,
		CreatedAt: post.CreatedAt,
		Author: models.Author{
			ID:          author.ID,
			Email:       author.Email,
			DisplayName: author.DisplayName,
			CreatedAt:   author.CreatedAt,
		},
		LikeCount: likeCount,
		Media:     media,
	}
	if author.ProfilePicture != nil {
		out.Author.ProfilePic = &models.MediaOut{
			Filename: author.ProfilePicture.Filename,
			URL:      author.ProfilePicture.Filepath,
		}
	}
	return out, nil
}

func (h *PostHandler) buildPostOuts(ctx context.Context, posts []models.Post) ([]*models.PostOut, error) {
	outs := make([]*models.PostOut, 0, len(posts))
	for i := range posts {
		out, err := h.buildPostOut(ctx, &posts[i])
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}

// GetPosts lists posts with author, like count and media, optionally
// filtered by a content search term.
func (h *PostHandler) GetPosts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 100
	}
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	search := c.QueryParam("search")

	posts, err := h.postRepository.GetPosts(c.Request().Context(), limit, skip, search)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	outs, err := h.buildPostOuts(c.Request().Context(), posts)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"data": outs})
}

// GetPostsByUser lists the posts of a specific user.
func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 100
	}
	skip, _ := strconv.Atoi(c.QueryParam("skip"))

	if _, err := h.userRepository.GetUserByID(c.Request().Context(), uint(userID)); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	posts, err := h.postRepository.GetPostsByUserID(c.Request().Context(), uint(userID), limit, skip)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	outs, err := h.buildPostOuts(c.Request().Context(), posts)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"data": outs})
}

// GetPost retrieves a single post with its author, like count and media.
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	out, err := h.buildPostOut(c.Request().Context(), post)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// CreatePost creates a new post owned by the authenticated user.
func (h *PostHandler) CreatePost(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		UserID:    user.ID,
		Content:   req.Content,
		Published: true,
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"data": post})
}

// UpdatePost updates a post's content. Only the owning author may update;
// existence is checked before ownership so a missing post is 404 even for a
// non-owner.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	if post.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to perform requested action")
	}

	post.Content = req.Content
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"data": post})
}

// DeletePost deletes a post owned by the authenticated user. Media blob keys
// are collected before the transactional row delete; once the rows are gone
// the blobs are removed best-effort in parallel.
func (h *PostHandler) DeletePost(c echo.Context) error {
	user := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	if post.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to perform requested action")
	}

	mediaRows, err := h.mediaRepository.GetMediaByPostID(ctx, post.ID)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	if err := h.postRepository.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	keys := make([]string, 0, len(mediaRows))
	for _, m := range mediaRows {
		keys = append(keys, m.Filename)
	}
	deleteBlobs(ctx, h.blobStore, keys)

	return c.NoContent(http.StatusNoContent)
}
