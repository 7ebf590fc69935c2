package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mmnstore/mmnstore/internal/model"
	"github.com/mmnstore/mmnstore/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService verifies tokens minted by the identity provider and manages
// the lazily-created local profile for each principal. Sign-in itself
// (OAuth, passwords) happens at the identity provider, not here.
type AuthService struct {
	users        repository.UserRepository
	jwtSecret    string
	jwtExpiry    time.Duration
	isProduction bool
}

func NewAuthService(users repository.UserRepository, jwtSecret string, jwtExpiry time.Duration, isProduction bool) *AuthService {
	return &AuthService{
		users:        users,
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
		isProduction: isProduction,
	}
}

// Claims are the profile claims carried by an identity-provider token.
type Claims struct {
	UID       string
	Name      string
	Email     string
	AvatarURL string
}

// VerifyToken parses and verifies a token and extracts the principal claims.
func (s *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidToken)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	uid, ok := mapClaims["sub"].(string)
	if !ok || uid == "" {
		return nil, fmt.Errorf("token missing sub claim: %w", ErrInvalidToken)
	}

	claims := &Claims{UID: uid}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if picture, ok := mapClaims["picture"].(string); ok {
		claims.AvatarURL = picture
	}

	return claims, nil
}

// EnsureProfile loads the principal's profile, creating it with the default
// role on first sign-in. Subsequent sign-ins only read.
func (s *AuthService) EnsureProfile(claims *Claims) (*model.User, error) {
	user, err := s.users.ByID(claims.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	name := claims.Name
	if name == "" {
		name = "Anonymous User"
	}

	user = &model.User{
		ID:       claims.UID,
		Name:     name,
		Email:    claims.Email,
		Role:     model.RoleUser,
		JoinedAt: time.Now(),
	}
	if claims.AvatarURL != "" {
		avatar := claims.AvatarURL
		user.AvatarURL = &avatar
	}

	err = s.users.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	slog.Info("profile created", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// UserByID loads one profile.
func (s *AuthService) UserByID(id string) (*model.User, error) {
	return s.users.ByID(id)
}

// SetSessionCookie stores the identity token as an HTTP-only cookie for
// browser clients. API clients may send it as a Bearer header instead.
func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(s.jwtExpiry),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie.
func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
