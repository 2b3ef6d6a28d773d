package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/caitlinwade/lumen/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonContext(t, http.MethodPost, "/users", models.CreateUserRequest{
		Email:       "a@x.com",
		Password:    "password1",
		DisplayName: "A",
	})
	require.NoError(t, env.authHandler.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "a@x.com", created.Email)
	assert.NotContains(t, rec.Body.String(), "password1", "password must never be serialized")

	c, rec = env.jsonContext(t, http.MethodPost, "/login", models.LoginRequest{
		Email:    "a@x.com",
		Password: "password1",
	})
	require.NoError(t, env.authHandler.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, created.ID, resp.ID)

	userID, err := env.tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	req := models.CreateUserRequest{Email: "a@x.com", Password: "password1", DisplayName: "A"}

	c, _ := env.jsonContext(t, http.MethodPost, "/users", req)
	require.NoError(t, env.authHandler.Register(c))

	c, _ = env.jsonContext(t, http.MethodPost, "/users", req)
	err := env.authHandler.Register(c)
	assert.Equal(t, http.StatusConflict, httpCode(t, err))

	// Only one row survives the conflict.
	exists, err2 := env.users.EmailExists(context.Background(), "a@x.com")
	require.NoError(t, err2)
	assert.True(t, exists)
}

func TestRegisterInvalidPayload(t *testing.T) {
	env := newTestEnv(t)

	cases := []models.CreateUserRequest{
		{Email: "not-an-email", Password: "password1", DisplayName: "A"},
		{Email: "a@x.com", Password: "short", DisplayName: "A"},
		{Email: "a@x.com", Password: "password1", DisplayName: ""},
	}
	for _, req := range cases {
		c, _ := env.jsonContext(t, http.MethodPost, "/users", req)
		err := env.authHandler.Register(c)
		assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "a@x.com", "password1", "A")

	c, _ := env.jsonContext(t, http.MethodPost, "/login", models.LoginRequest{
		Email: "a@x.com", Password: "wrongpass",
	})
	errWrongPass := env.authHandler.Login(c)

	c, _ = env.jsonContext(t, http.MethodPost, "/login", models.LoginRequest{
		Email: "nobody@x.com", Password: "password1",
	})
	errNoUser := env.authHandler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, httpCode(t, errWrongPass))
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, errNoUser))
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}
