package auth

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklendapp/booklend-server/internal/domain"
)

func testKeyHex(t *testing.T) string {
	t.Helper()
	return hex.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("samepassword")
	require.NoError(t, err)
	h2, err := HashPassword("samepassword")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword("not-an-argon-hash", "whatever")
	assert.Error(t, err)
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(t), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	user := &domain.User{
		ID:       "user-abc123",
		Username: "alice",
		Role:     domain.RoleMember,
	}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-abc123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "booklend-server", claims.Issuer)
	assert.Equal(t, "booklend-client", claims.Audience)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(t), -1*time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(&domain.User{ID: "u1", Username: "bob"})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsTokenFromDifferentKey(t *testing.T) {
	svc1, err := NewTokenService(testKeyHex(t), time.Minute, time.Hour)
	require.NoError(t, err)
	svc2, err := NewTokenService(hex.EncodeToString([]byte("ffffffffffffffffffffffffffffffff")), time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc1.GenerateAccessToken(&domain.User{ID: "u1", Username: "bob"})
	require.NoError(t, err)

	_, err = svc2.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestNewTokenService_RejectsBadKey(t *testing.T) {
	_, err := NewTokenService("short", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(strings.Repeat("zz", 32), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestRefreshToken_GenerateAndHash(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(t), time.Minute, time.Hour)
	require.NoError(t, err)

	tok1, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	tok2, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok2)

	// Hashing is deterministic so lookups by hash work.
	assert.Equal(t, HashRefreshToken(tok1), HashRefreshToken(tok1))
	assert.NotEqual(t, HashRefreshToken(tok1), HashRefreshToken(tok2))
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	dir := t.TempDir()

	key1, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key1, 32)

	key2, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)
}
