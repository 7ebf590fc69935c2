package handler

import (
	"net/http"

	"github.com/mmnstore/mmnstore/internal/ctxkeys"
	"github.com/mmnstore/mmnstore/internal/service"
)

// ModeratorHandler serves the moderation queue and flag toggling.
type ModeratorHandler struct {
	lifecycle *service.LifecycleService
}

func NewModeratorHandler(lifecycle *service.LifecycleService) *ModeratorHandler {
	return &ModeratorHandler{lifecycle: lifecycle}
}

// Apps lists every app, flagged ones first so they surface at the top of
// the queue.
func (h *ModeratorHandler) Apps(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	apps, err := h.lifecycle.AllApps(user)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, apps)
}

func (h *ModeratorHandler) Flag(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.lifecycle.Flag(user, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"isFlagged": "true"})
}

func (h *ModeratorHandler) Unflag(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.lifecycle.Unflag(user, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"isFlagged": "false"})
}
