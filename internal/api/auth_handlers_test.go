package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "SecurePassword123!",
	})

	require.Equal(t, http.StatusOK, resp.Code)

	var body AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.NotEmpty(t, body.AccessToken)
	assert.NotEmpty(t, body.RefreshToken)
	assert.NotEmpty(t, body.SessionID)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Positive(t, body.ExpiresIn)
	assert.Equal(t, "alice", body.User.Username)
	assert.Equal(t, "admin", body.User.Role, "first registered member becomes admin")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "alice",
		"email":    "alice2@example.com",
		"password": "SecurePassword123!",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "username too short",
			body: map[string]any{"username": "ab", "email": "ab@example.com", "password": "SecurePassword123!"},
		},
		{
			name: "invalid email",
			body: map[string]any{"username": "alice", "email": "not-an-email", "password": "SecurePassword123!"},
		},
		{
			name: "password too short",
			body: map[string]any{"username": "alice", "email": "alice@example.com", "password": "short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": "alice",
		"password": "SecurePassword123!",
	})

	require.Equal(t, http.StatusOK, resp.Code)

	var body AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "alice", body.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": "alice",
		"password": "WrongPassword123!",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": "nobody",
		"password": "SecurePassword123!",
	})

	// Same response as a wrong password, to avoid leaking which usernames exist
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	registered := ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var body AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotEqual(t, registered.RefreshToken, body.RefreshToken)

	// The old token no longer works
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	registered := ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/logout", map[string]any{
		"session_id": registered.SessionID,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
