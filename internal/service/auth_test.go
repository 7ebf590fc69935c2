package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmnstore/mmnstore/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyToken(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour, false)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":     "uid-1",
		"name":    "Ada",
		"email":   "ada@example.com",
		"picture": "https://img.example.com/ada.png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "https://img.example.com/ada.png", claims.AvatarURL)
}

func TestVerifyTokenRejections(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour, false)

	_, err := svc.VerifyToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Wrong secret.
	token := signToken(t, "other-secret", jwt.MapClaims{"sub": "uid-1"})
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Expired.
	token = signToken(t, testSecret, jwt.MapClaims{
		"sub": "uid-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Missing sub.
	token = signToken(t, testSecret, jwt.MapClaims{"name": "Ada"})
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnsureProfileCreatesOnFirstSignIn(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour, false)

	user, err := svc.EnsureProfile(&Claims{UID: "uid-1", Name: "Ada", Email: "ada@example.com", AvatarURL: "https://img.example.com/ada.png"})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "https://img.example.com/ada.png", *user.AvatarURL)

	stored, err := users.ByID("uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)
}

func TestEnsureProfileReadsExisting(t *testing.T) {
	users := newFakeUserRepo()
	require.NoError(t, users.Create(&model.User{ID: "uid-1", Name: "Ada", Role: model.RoleAdmin}))
	svc := NewAuthService(users, testSecret, time.Hour, false)

	// A fresh token never downgrades an existing profile.
	user, err := svc.EnsureProfile(&Claims{UID: "uid-1", Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.Equal(t, "Ada", user.Name)
}

func TestEnsureProfileNameFallback(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour, false)

	user, err := svc.EnsureProfile(&Claims{UID: "uid-2"})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous User", user.Name)
	assert.Nil(t, user.AvatarURL)
}
