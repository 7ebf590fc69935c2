package handler

import (
	"net/http"

	"github.com/mmnstore/mmnstore/internal/ctxkeys"
	"github.com/mmnstore/mmnstore/internal/service"
)

// AuthHandler exposes the session surface. Sign-in happens at the identity
// provider; this server only verifies its tokens.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Me returns the current principal's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	respondJSON(w, http.StatusOK, user)
}

// Session exchanges a verified identity token for an HTTP-only session
// cookie, so browser clients don't have to hold the token in script.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	if token == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	claims, err := h.authService.VerifyToken(token)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		return
	}

	user, err := h.authService.EnsureProfile(claims)
	if err != nil {
		respondError(w, err)
		return
	}

	h.authService.SetSessionCookie(w, token)
	respondJSON(w, http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
