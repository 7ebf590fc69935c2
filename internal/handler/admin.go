package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mmnstore/mmnstore/internal/ctxkeys"
	"github.com/mmnstore/mmnstore/internal/service"
)

// AdminHandler serves the admin dashboard: the review queue, featuring and
// role management.
type AdminHandler struct {
	lifecycle *service.LifecycleService
}

func NewAdminHandler(lifecycle *service.LifecycleService) *AdminHandler {
	return &AdminHandler{lifecycle: lifecycle}
}

// PendingApps lists the review queue, oldest submission first.
func (h *AdminHandler) PendingApps(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	apps, err := h.lifecycle.PendingApps(user)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, apps)
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.lifecycle.Approve(user, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.lifecycle.Reject(user, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *AdminHandler) Feature(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.lifecycle.Feature(user, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"featured": "true"})
}

func (h *AdminHandler) Unfeature(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.lifecycle.Unfeature(user, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"featured": "false"})
}

// Users lists every profile for the role-management table.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	users, err := h.lifecycle.Users(user)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// SetRole changes one user's role.
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var body struct {
		Role string `json:"role"`
	}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err = h.lifecycle.SetRole(user, r.PathValue("id"), body.Role)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"role": body.Role})
}
