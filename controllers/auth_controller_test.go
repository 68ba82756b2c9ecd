package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":     "new@example.com",
		"password":  "secret123",
		"full_name": "New User",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	payload := decodeJSON(t, w)
	assert.Equal(t, true, payload["success"])
	assert.NotEmpty(t, payload["token"])

	w = env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "new@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	payload = decodeJSON(t, w)
	token, _ := payload["token"].(string)
	require.NotEmpty(t, token)

	// The issued token works on a protected route.
	w = env.request(t, http.MethodGet, "/api/documents", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]string{
		"email":     "dup@example.com",
		"password":  "secret123",
		"full_name": "Dup",
	}
	w := env.request(t, http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    env.user.Email,
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/documents", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/documents", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
