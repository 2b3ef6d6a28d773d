package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartContext builds an echo context carrying a multipart upload with
// the given declared content type.
func (env *testEnv) multipartContext(t *testing.T, target, filename, contentType string, payload []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("description", "test upload"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func TestUploadPostMedia(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "password1", "A")
	post := env.createPost(t, user, "with picture")

	c, rec := env.multipartContext(t, "/media/upload/1", "cat.png", "image/png", []byte("pngbytes"))
	asUser(c, user)
	c.SetParamNames("post_id")
	c.SetParamValues(strconv.Itoa(int(post.ID)))
	require.NoError(t, env.mediaHandler.UploadPostMedia(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rows, err := env.media.GetMediaByPostID(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, env.blob.Has(rows[0].Filename))
	assert.Contains(t, rows[0].Filename, "cat.png")
}

// A disallowed content type is rejected before anything reaches storage.
func TestUploadPostMediaInvalidType(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "password1", "A")
	post := env.createPost(t, user, "no videos")

	c, _ := env.multipartContext(t, "/media/upload/1", "clip.mp4", "video/mp4", []byte("mp4bytes"))
	asUser(c, user)
	c.SetParamNames("post_id")
	c.SetParamValues(strconv.Itoa(int(post.ID)))
	err := env.mediaHandler.UploadPostMedia(c)
	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))

	assert.Equal(t, 0, env.blob.Len())
	rows, err2 := env.media.GetMediaByPostID(context.Background(), post.ID)
	require.NoError(t, err2)
	assert.Empty(t, rows)
}

func TestUploadPostMediaNotOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "a@x.com", "password1", "A")
	other := env.createUser(t, "b@x.com", "password1", "B")
	post := env.createPost(t, owner, "not yours")

	c, _ := env.multipartContext(t, "/media/upload/1", "cat.png", "image/png", []byte("pngbytes"))
	asUser(c, other)
	c.SetParamNames("post_id")
	c.SetParamValues(strconv.Itoa(int(post.ID)))
	err := env.mediaHandler.UploadPostMedia(c)
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))
	assert.Equal(t, 0, env.blob.Len())
}

// Replacing a profile picture removes the previous blob.
func TestUploadProfilePictureReplace(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "password1", "A")

	c, rec := env.multipartContext(t, "/media/profile", "me.png", "image/png", []byte("v1"))
	asUser(c, user)
	require.NoError(t, env.mediaHandler.UploadProfilePicture(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	first, err := env.media.GetProfilePicture(context.Background(), user.ID)
	require.NoError(t, err)

	c, _ = env.multipartContext(t, "/media/profile", "me2.png", "image/png", []byte("v2"))
	asUser(c, user)
	require.NoError(t, env.mediaHandler.UploadProfilePicture(c))

	second, err := env.media.GetProfilePicture(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Filename, second.Filename)
	assert.False(t, env.blob.Has(first.Filename), "replaced blob must be removed")
	assert.True(t, env.blob.Has(second.Filename))
	assert.Equal(t, 1, env.blob.Len())
}

func TestDeleteMedia(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "a@x.com", "password1", "A")
	other := env.createUser(t, "b@x.com", "password1", "B")
	post := env.createPost(t, owner, "with picture")
	media := env.createMedia(t, post, "pic.png")

	// not the post owner
	c, _ := env.jsonContext(t, http.MethodDelete, "/media/1", nil)
	asUser(c, other)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(media.ID)))
	err := env.mediaHandler.DeleteMedia(c)
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))
	assert.True(t, env.blob.Has("pic.png"))

	// the owner may delete; row and blob both go
	c, rec := env.jsonContext(t, http.MethodDelete, "/media/1", nil)
	asUser(c, owner)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(media.ID)))
	require.NoError(t, env.mediaHandler.DeleteMedia(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, env.blob.Has("pic.png"))
}

func TestGetPostMedia(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "password1", "A")
	post := env.createPost(t, user, "with pictures")
	env.createMedia(t, post, "one.png")

	c, rec := env.jsonContext(t, http.MethodGet, "/media/1", nil)
	c.SetParamNames("post_id")
	c.SetParamValues(strconv.Itoa(int(post.ID)))
	require.NoError(t, env.mediaHandler.GetPostMedia(c))
	assert.Contains(t, rec.Body.String(), "one.png")

	// a post with no media is a 404, matching the listing contract
	empty := env.createPost(t, user, "bare")
	c, _ = env.jsonContext(t, http.MethodGet, "/media/2", nil)
	c.SetParamNames("post_id")
	c.SetParamValues(strconv.Itoa(int(empty.ID)))
	err := env.mediaHandler.GetPostMedia(c)
	assert.Equal(t, http.StatusNotFound, httpCode(t, err))
}
