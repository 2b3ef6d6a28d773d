package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caitlinwade/lumen/backend/internal/models"
	"github.com/caitlinwade/lumen/backend/internal/repositories"
	"github.com/caitlinwade/lumen/backend/internal/storage"
	"github.com/caitlinwade/lumen/backend/internal/token"
	"github.com/caitlinwade/lumen/backend/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires handlers against an in-memory sqlite database and an
// in-memory blob store.
type testEnv struct {
	e      *echo.Echo
	tokens *token.Service
	blob   *storage.MemoryStore

	users    repositories.UserRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	likes    repositories.LikeRepository
	media    repositories.MediaRepository

	authHandler    *AuthHandler
	userHandler    *UserHandler
	postHandler    *PostHandler
	commentHandler *CommentHandler
	likeHandler    *LikeHandler
	mediaHandler   *MediaHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Media{},
		&models.ProfilePicture{},
	))

	e := echo.New()
	e.Validator = validators.NewValidator()

	env := &testEnv{
		e:        e,
		tokens:   token.NewService("test-secret", time.Hour),
		blob:     storage.NewMemoryStore(),
		users:    repositories.NewPostgresUserRepository(db),
		posts:    repositories.NewPostgresPostRepository(db),
		comments: repositories.NewPostgresCommentRepository(db),
		likes:    repositories.NewPostgresLikeRepository(db),
		media:    repositories.NewPostgresMediaRepository(db),
	}

	env.authHandler = NewAuthHandler(env.users, env.tokens)
	env.userHandler = NewUserHandler(env.users, env.media, env.blob)
	env.postHandler = NewPostHandler(env.posts, env.users, env.likes, env.media, env.blob)
	env.commentHandler = NewCommentHandler(env.comments, env.posts, env.users)
	env.likeHandler = NewLikeHandler(env.likes, env.posts)
	env.mediaHandler = NewMediaHandler(env.media, env.posts, env.blob)

	return env
}

// jsonContext builds an echo context carrying a JSON body.
func (env *testEnv) jsonContext(t *testing.T, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

// asUser marks the context as authenticated, the way the auth middleware
// would after verifying a token.
func asUser(c echo.Context, user *models.User) {
	c.Set("currentUser", user)
}

// createUser inserts a user directly with a bcrypt-hashed password.
func (env *testEnv) createUser(t *testing.T, email, password, displayName string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, Password: string(hash), DisplayName: displayName}
	require.NoError(t, env.users.CreateUser(context.Background(), user))
	return user
}

// createPost inserts a post owned by the given user.
func (env *testEnv) createPost(t *testing.T, owner *models.User, content string) *models.Post {
	t.Helper()

	post := &models.Post{UserID: owner.ID, Content: content, Published: true}
	require.NoError(t, env.posts.CreatePost(context.Background(), post))
	return post
}

// createMedia inserts a media row and a matching blob.
func (env *testEnv) createMedia(t *testing.T, post *models.Post, key string) *models.Media {
	t.Helper()

	require.NoError(t, env.blob.Put(context.Background(), key, "image/png", bytes.NewReader([]byte("img"))))
	media := &models.Media{
		PostID:   post.ID,
		Filename: key,
		Filepath: env.blob.URL(key),
	}
	require.NoError(t, env.media.CreateMedia(context.Background(), media))
	return media
}

// httpCode extracts the status code from a handler error.
func httpCode(t *testing.T, err error) int {
	t.Helper()

	httpErr := &echo.HTTPError{}
	require.ErrorAs(t, err, &httpErr)
	return httpErr.Code
}
