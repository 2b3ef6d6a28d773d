package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caitlinwade/lumen/backend/internal/models"
	"github.com/caitlinwade/lumen/backend/internal/storage"
	"github.com/caitlinwade/lumen/backend/pkg/config"
	"github.com/caitlinwade/lumen/backend/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	e := echo.New()
	e.Validator = validators.NewValidator()
	cfg := &config.Config{JWTSecret: "test-secret", TokenExpireMinutes: 60}
	require.NoError(t, SetupRoutes(e, db, storage.NewMemoryStore(), cfg))
	return e
}

func do(e *echo.Echo, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	e := newTestServer(t)

	for _, target := range []string{"/posts", "/comments/1", "/likes/1"} {
		rec := do(e, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "GET %s", target)
	}

	rec := do(e, http.MethodGet, "/posts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Full lifecycle: register, login, post, read back, like, duplicate like.
func TestEndToEndScenario(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/users", "", models.CreateUserRequest{
		Email:       "a@x.com",
		Password:    "password1",
		DisplayName: "A",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPost, "/login", "", models.LoginRequest{
		Email:    "a@x.com",
		Password: "password1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login models.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)

	rec = do(e, http.MethodPost, "/posts", login.AccessToken, models.CreatePostRequest{Content: "hi"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var createResp struct {
		Data models.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &createResp))
	postID := createResp.Data.ID

	rec = do(e, http.MethodGet, fmt.Sprintf("/posts/%d", postID), login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var getResp struct {
		Data models.PostOut `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &getResp))
	assert.Equal(t, "A", getResp.Data.Author.DisplayName)
	assert.Equal(t, int64(0), getResp.Data.LikeCount)

	rec = do(e, http.MethodPost, "/likes", login.AccessToken, models.LikeRequest{PostID: postID, Dir: models.LikeUp})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodGet, fmt.Sprintf("/posts/%d", postID), login.AccessToken, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &getResp))
	assert.Equal(t, int64(1), getResp.Data.LikeCount)

	rec = do(e, http.MethodPost, "/likes", login.AccessToken, models.LikeRequest{PostID: postID, Dir: models.LikeUp})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// Ownership is enforced through the full stack: a second account cannot
// touch the first account's post.
func TestEndToEndOwnership(t *testing.T) {
	e := newTestServer(t)

	register := func(email, name string) string {
		rec := do(e, http.MethodPost, "/users", "", models.CreateUserRequest{
			Email: email, Password: "password1", DisplayName: name,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		rec = do(e, http.MethodPost, "/login", "", models.LoginRequest{Email: email, Password: "password1"})
		require.Equal(t, http.StatusOK, rec.Code)
		var login models.TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
		return login.AccessToken
	}

	tokenA := register("a@x.com", "A")
	tokenB := register("b@x.com", "B")

	rec := do(e, http.MethodPost, "/posts", tokenA, models.CreatePostRequest{Content: "belongs to A"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var createResp struct {
		Data models.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &createResp))
	postID := createResp.Data.ID

	rec = do(e, http.MethodPut, fmt.Sprintf("/posts/%d", postID), tokenB, models.CreatePostRequest{Content: "stolen"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodDelete, fmt.Sprintf("/posts/%d", postID), tokenB, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodGet, fmt.Sprintf("/posts/%d", postID), tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var getResp struct {
		Data models.PostOut `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &getResp))
	assert.Equal(t, "belongs to A", getResp.Data.Content)
}
