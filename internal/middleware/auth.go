package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mmnstore/mmnstore/internal/ctxkeys"
	"github.com/mmnstore/mmnstore/internal/model"
	"github.com/mmnstore/mmnstore/internal/service"
)

// AuthMiddleware verifies the identity token (cookie or Bearer header),
// lazily creates the principal's profile on first sight, and puts the
// principal on the request context. Requests without a valid token continue
// anonymously; the role gates decide what they may reach.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				cookie, err := r.Cookie("auth_token")
				if err != nil {
					// No credentials, continue anonymously
					next.ServeHTTP(w, r)
					return
				}
				token = cookie.Value
			}

			claims, err := authService.VerifyToken(token)
			if err != nil {
				// Invalid token, clear cookie and continue anonymously
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.EnsureProfile(claims)
			if err != nil {
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RequireAuth ensures the request carries an authenticated principal.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			denyJSON(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireRole ensures the principal holds one of the given roles. Admins
// pass every gate.
func RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := ctxkeys.User(r.Context())
			if user == nil {
				denyJSON(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !hasRole(user, roles) {
				denyJSON(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

func hasRole(user *model.User, roles []string) bool {
	if user.IsAdmin() {
		return true
	}
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}

func denyJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
