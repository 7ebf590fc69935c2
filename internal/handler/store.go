package handler

import (
	"net/http"

	"github.com/mmnstore/mmnstore/internal/ctxkeys"
	"github.com/mmnstore/mmnstore/internal/service"
)

// StoreHandler serves the public storefront: browsing, app details and
// downloads.
type StoreHandler struct {
	appService *service.AppService
}

func NewStoreHandler(appService *service.AppService) *StoreHandler {
	return &StoreHandler{appService: appService}
}

// ListApps returns approved apps, newest first. Supports ?category= and a
// ?q= name filter.
func (h *StoreHandler) ListApps(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("q")

	apps, err := h.appService.Approved(category, search)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, apps)
}

// FeaturedApps returns the admin-curated featured carousel.
func (h *StoreHandler) FeaturedApps(w http.ResponseWriter, r *http.Request) {
	apps, err := h.appService.Featured()
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, apps)
}

// ShowApp returns one app. Unpublished apps are visible only to their
// developer, moderators and admins.
func (h *StoreHandler) ShowApp(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	app, err := h.appService.ByID(user, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"app":     app,
		"actions": service.AppActions(user, app),
	})
}

// Download counts a download and returns the APK URL for the client to
// fetch, directly or through the download proxy.
func (h *StoreHandler) Download(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	app, err := h.appService.RegisterDownload(user, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"apkUrl":        app.APKURL,
		"downloadCount": app.DownloadCount,
	})
}
