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
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/comments/:post_id", h.GetComments)
	g.GET("/comments/parent/:post_id", h.GetParentComments)
	g.POST("/comments/:post_id", h.CreateComment)
	g.POST("/comments/:post_id/:parent_id", h.CreateReply)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// buildCommentOut attaches the author's public details, including their
// profile picture, to a comment.
func (h *CommentHandler) buildCommentOut(ctx context.Context, comment *models.Comment) (*models.CommentOut, error) {
	author, err := h.userRepository.GetUserByID(ctx, comment.UserID)
	if err != nil {
		return nil, err
	}

	out := &models.CommentOut{
		ID:        comment.ID,
		PostID:    comment.PostID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		Author: models.Author{
			ID:          author.ID,
			Email:       author.Email,
			DisplayName: author.DisplayName,
			CreatedAt:   author.CreatedAt,
		},
	}
	if author.ProfilePicture != nil {
		out.Author.ProfilePic = &models.MediaOut{
			Filename: author.ProfilePicture.Filename,
			URL:      author.ProfilePicture.Filepath,
		}
	}
	return out, nil
}

func (h *CommentHandler) listComments(c echo.Context, parentsOnly bool) error {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 100
	}
	skip, _ := strconv.Atoi(c.QueryParam("skip"))

	ctx := c.Request().Context()

	exists, err := h.postRepository.PostExists(ctx, uint(postID))
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	var comments []models.Comment
	if parentsOnly {
		comments, err = h.commentRepository.GetParentCommentsByPostID(ctx, uint(postID), limit, skip)
	} else {
		comments, err = h.commentRepository.GetCommentsByPostID(ctx, uint(postID), limit, skip)
	}
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	outs := make([]*models.CommentOut, 0, len(comments))
	for i := range comments {
		out, err := h.buildCommentOut(ctx, &comments[i])
		if err != nil {
			return echo.NewHTTPError(apperrors.Status(err), err.Error())
		}
		outs = append(outs, out)
	}

	return c.JSON(http.StatusOK, echo.Map{"data": outs})
}

// GetComments lists all comments on a post, with authors.
func (h *CommentHandler) GetComments(c echo.Context) error {
	return h.listComments(c, false)
}

// GetParentComments lists only the top-level comments on a post.
func (h *CommentHandler) GetParentComments(c echo.Context) error {
	return h.listComments(c, true)
}

// CreateComment creates a top-level comment on a post.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user := middleware.CurrentUser(c)

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	exists, err := h.postRepository.PostExists(ctx, uint(postID))
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comment := &models.Comment{
		PostID:  uint(postID),
		UserID:  user.ID,
		Content: req.Content,
	}

	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"data": comment})
}

// CreateReply creates a reply to an existing comment. Comments nest one
// level deep: a reply to a comment that is itself a reply is rejected.
func (h *CommentHandler) CreateReply(c echo.Context) error {
	user := middleware.CurrentUser(c)

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}
	parentID, err := strconv.ParseUint(c.Param("parent_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid parent comment ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	parent, err := h.commentRepository.GetCommentByID(ctx, uint(parentID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Parent comment not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	if parent.PostID != uint(postID) {
		return echo.NewHTTPError(http.StatusNotFound, "Parent comment not found on this post")
	}
	if parent.ParentID != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot reply to a reply")
	}

	pid := uint(parentID)
	comment := &models.Comment{
		PostID:   uint(postID),
		UserID:   user.ID,
		ParentID: &pid,
		Content:  req.Content,
	}

	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"data": comment})
}

// UpdateComment edits a comment's content. Only the comment's author may
// edit it.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	comment, err := h.commentRepository.GetCommentByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	if comment.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to perform requested action")
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"data": comment})
}

// DeleteComment removes a comment (and its replies). Only the comment's
// author may delete it.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	ctx := c.Request().Context()

	comment, err := h.commentRepository.GetCommentByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	if comment.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to perform requested action")
	}

	if err := h.commentRepository.DeleteComment(ctx, comment.ID); err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
