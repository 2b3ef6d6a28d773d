package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/caitlinwade/lumen/backend/internal/apperrors"
	"github.com/caitlinwade/lumen/backend/internal/middleware"
	"github.com/caitlinwade/lumen/backend/internal/models"
	"github.com/caitlinwade/lumen/backend/internal/repositories"
	"github.com/caitlinwade/lumen/backend/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Only still images are accepted; video is rejected before anything is
// written to storage.
var allowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

// MediaHandler handles HTTP requests related to media uploads
type MediaHandler struct {
	mediaRepository repositories.MediaRepository
	postRepository  repositories.PostRepository
	blobStore       storage.BlobStore
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(mediaRepo repositories.MediaRepository, postRepo repositories.PostRepository, blobStore storage.BlobStore) *MediaHandler {
	return &MediaHandler{
		mediaRepository: mediaRepo,
		postRepository:  postRepo,
		blobStore:       blobStore,
	}
}

// RegisterMediaRoutes registers media-related routes
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.POST("/media/upload/:post_id", h.UploadPostMedia)
	g.POST("/media/profile", h.UploadProfilePicture)
	g.GET("/media/:post_id", h.GetPostMedia)
	g.DELETE("/media/:id", h.DeleteMedia)
}

// UploadPostMedia attaches an image to a post owned by the authenticated
// user. The content type is checked against the allow-list before any
// storage write. If the metadata row cannot be written after the blob
// upload, the blob is removed again so neither side is left orphaned.
func (h *MediaHandler) UploadPostMedia(c echo.Context) error {
	user := middleware.CurrentUser(c)

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, uint(postID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	if post.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to perform requested action")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}
	description := c.FormValue("description")

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}
	defer src.Close()

	key := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(fileHeader.Filename))
	if err := h.blobStore.Put(ctx, key, contentType, src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}

	media := &models.Media{
		PostID:      post.ID,
		Filename:    key,
		Filepath:    h.blobStore.URL(key),
		Description: description,
	}
	if err := h.mediaRepository.CreateMedia(ctx, media); err != nil {
		if delErr := h.blobStore.Delete(ctx, key); delErr != nil {
			log.Printf("Failed to clean up blob %s after metadata failure: %v", key, delErr)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save media metadata")
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": media.Filepath})
}

// UploadProfilePicture uploads or replaces the authenticated user's profile
// picture. A replaced picture's old blob is removed best-effort.
func (h *MediaHandler) UploadProfilePicture(c echo.Context) error {
	user := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file type")
	}

	var oldKey string
	if existing, err := h.mediaRepository.GetProfilePicture(ctx, user.ID); err == nil {
		oldKey = existing.Filename
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}
	defer src.Close()

	key := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(fileHeader.Filename))
	if err := h.blobStore.Put(ctx, key, contentType, src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}

	pic := &models.ProfilePicture{
		UserID:   user.ID,
		Filename: key,
		Filepath: h.blobStore.URL(key),
	}
	if err := h.mediaRepository.SaveProfilePicture(ctx, pic); err != nil {
		if delErr := h.blobStore.Delete(ctx, key); delErr != nil {
			log.Printf("Failed to clean up blob %s after metadata failure: %v", key, delErr)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save profile picture")
	}

	if oldKey != "" {
		if err := h.blobStore.Delete(ctx, oldKey); err != nil {
			log.Printf("Failed to delete replaced profile picture blob %s: %v", oldKey, err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": pic.Filepath})
}

// GetPostMedia lists the media attached to a post.
func (h *MediaHandler) GetPostMedia(c echo.Context) error {
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

	mediaRows, err := h.mediaRepository.GetMediaByPostID(ctx, uint(postID))
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	if len(mediaRows) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No media associated with this post")
	}

	files := make([]models.MediaOut, 0, len(mediaRows))
	for _, m := range mediaRows {
		files = append(files, models.MediaOut{Filename: m.Filename, URL: m.Filepath})
	}

	return c.JSON(http.StatusOK, echo.Map{"files": files})
}

// DeleteMedia removes a single media attachment. Only the owner of the post
// the media belongs to may delete it. The metadata row goes first; the blob
// delete afterwards is best-effort.
func (h *MediaHandler) DeleteMedia(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid media ID")
	}

	ctx := c.Request().Context()

	media, err := h.mediaRepository.GetMediaByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Media not found")
		}
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	post, err := h.postRepository.GetPostByID(ctx, media.PostID)
	if err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}
	if post.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to perform requested action")
	}

	if err := h.mediaRepository.DeleteMedia(ctx, media.ID); err != nil {
		return echo.NewHTTPError(apperrors.Status(err), err.Error())
	}

	if err := h.blobStore.Delete(ctx, media.Filename); err != nil {
		log.Printf("Failed to delete blob %s: %v", media.Filename, err)
	}

	return c.NoContent(http.StatusNoContent)
}
