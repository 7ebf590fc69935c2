package routes

import (
	"net/http"

	"github.com/mmnstore/mmnstore/internal/app"
	"github.com/mmnstore/mmnstore/internal/handler"
	"github.com/mmnstore/mmnstore/internal/middleware"
	"github.com/mmnstore/mmnstore/internal/model"
	"github.com/mmnstore/mmnstore/internal/storage"
)

func SetupRoutes(app *app.App) http.Handler {
	// The download proxy only serves our own storage objects.
	publicBase := ""
	if s3, ok := app.Storage.(*storage.S3Storage); ok {
		publicBase = s3.PublicBase()
	}

	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	store := handler.NewStoreHandler(app.AppService)
	developer := handler.NewDeveloperHandler(app.AppService, app.Cfg)
	moderator := handler.NewModeratorHandler(app.LifecycleService)
	admin := handler.NewAdminHandler(app.LifecycleService)
	signedURL := handler.NewSignedURLHandler(app.Storage, app.Cfg.S3PresignUploadExpiry)
	download := handler.NewDownloadHandler(publicBase)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Storefront
	mux.HandleFunc("GET /api/apps", store.ListApps)
	mux.HandleFunc("GET /api/apps/featured", store.FeaturedApps)
	mux.HandleFunc("GET /api/apps/{id}", store.ShowApp)
	mux.HandleFunc("POST /api/apps/{id}/download", store.Download)
	mux.HandleFunc("GET /api/download", download.Proxy)

	// Session
	mux.HandleFunc("POST /api/session", auth.Session)
	mux.HandleFunc("POST /api/logout", auth.Logout)
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(auth.Me))

	// ============================================================================
	// DEVELOPER ROUTES
	// ============================================================================

	requireDeveloper := middleware.RequireRole(model.RoleDeveloper)
	uploadLimiter := middleware.RateLimitUploads()

	mux.HandleFunc("GET /api/developer/apps", requireDeveloper(developer.MyApps))
	mux.HandleFunc("POST /api/apps", uploadLimiter(requireDeveloper(developer.Upload)))
	mux.HandleFunc("PUT /api/apps/{id}", uploadLimiter(middleware.RequireAuth(developer.Update)))
	mux.HandleFunc("DELETE /api/apps/{id}", middleware.RequireAuth(developer.Delete))
	mux.HandleFunc("POST /api/uploads/signed-urls", requireDeveloper(signedURL.Create))

	// ============================================================================
	// MODERATOR ROUTES
	// ============================================================================

	requireModerator := middleware.RequireRole(model.RoleModerator)

	mux.HandleFunc("GET /api/moderator/apps", requireModerator(moderator.Apps))
	mux.HandleFunc("POST /api/moderator/apps/{id}/flag", requireModerator(moderator.Flag))
	mux.HandleFunc("DELETE /api/moderator/apps/{id}/flag", requireModerator(moderator.Unflag))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	requireAdmin := middleware.RequireRole(model.RoleAdmin)

	mux.HandleFunc("GET /api/admin/apps/pending", requireAdmin(admin.PendingApps))
	mux.HandleFunc("POST /api/admin/apps/{id}/approve", requireAdmin(admin.Approve))
	mux.HandleFunc("POST /api/admin/apps/{id}/reject", requireAdmin(admin.Reject))
	mux.HandleFunc("POST /api/admin/apps/{id}/feature", requireAdmin(admin.Feature))
	mux.HandleFunc("DELETE /api/admin/apps/{id}/feature", requireAdmin(admin.Unfeature))
	mux.HandleFunc("GET /api/admin/users", requireAdmin(admin.Users))
	mux.HandleFunc("PATCH /api/admin/users/{id}/role", requireAdmin(admin.SetRole))

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)

	return h
}
