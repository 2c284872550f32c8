package service

import (
	"testing"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAuth(expiry time.Duration) *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  expiry,
		BcryptCost: bcrypt.MinCost,
	}, nil)
}

func TestPasswordHashing(t *testing.T) {
	auth := testAuth(time.Hour)

	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, auth.CheckPassword(hash, "s3cret-pass"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestAdminTokenRoundTrip(t *testing.T) {
	auth := testAuth(time.Hour)

	token, err := auth.GenerateAdminToken(7, []string{"questions:read", "sessions:write"})
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAdmin, claims.TokenType)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, []string{"questions:read", "sessions:write"}, claims.Permissions)
	assert.NotEmpty(t, claims.ID)
}

func TestCandidateTokenClaims(t *testing.T) {
	auth := testAuth(time.Hour)
	sid, cid := uuid.New(), uuid.New()

	token, jti, err := auth.signCandidateToken(sid, cid, 30*time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeCandidate, claims.TokenType)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, cid.String(), claims.CandidateID)

	got, err := claims.ExamSessionID()
	require.NoError(t, err)
	assert.Equal(t, sid, got)
}

func TestValidateTokenRejects(t *testing.T) {
	expired, err := testAuth(-time.Minute).GenerateAdminToken(1, nil)
	require.NoError(t, err)
	_, err = testAuth(time.Hour).ValidateToken(expired)
	assert.Error(t, err)

	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour}, nil)
	foreign, err := other.GenerateAdminToken(1, nil)
	require.NoError(t, err)
	_, err = testAuth(time.Hour).ValidateToken(foreign)
	assert.Error(t, err)

	_, err = testAuth(time.Hour).ValidateToken("not.a.token")
	assert.Error(t, err)
}
