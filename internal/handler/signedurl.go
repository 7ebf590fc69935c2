package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mmnstore/mmnstore/internal/ctxkeys"
	"github.com/mmnstore/mmnstore/internal/storage"
)

// SignedURLHandler issues presigned PUT URLs for the browser-upload flow:
// the client uploads APK and icon straight to storage, then submits the
// returned public URLs with its metadata.
type SignedURLHandler struct {
	storage      storage.Storage
	uploadExpiry time.Duration
}

func NewSignedURLHandler(store storage.Storage, uploadExpiry time.Duration) *SignedURLHandler {
	return &SignedURLHandler{
		storage:      store,
		uploadExpiry: uploadExpiry,
	}
}

type signedURLRequest struct {
	APKFileName  string `json:"apkFileName"`
	IconFileName string `json:"iconFileName"`
}

type signedURLResponse struct {
	APKSignedURL  string `json:"apkSignedUrl"`
	IconSignedURL string `json:"iconSignedUrl"`
	APKURL        string `json:"apkUrl"`
	IconURL       string `json:"iconUrl"`
}

// Create mints one signed PUT URL each for an APK and an icon. Paths are
// scoped to the authenticated principal, never a caller-supplied uid.
func (h *SignedURLHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req signedURLRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.APKFileName == "" || req.IconFileName == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "apkFileName and iconFileName are required"})
		return
	}

	now := time.Now()
	apkPath := storage.ObjectPath(storage.KindAPK, user.ID, req.APKFileName, now)
	iconPath := storage.ObjectPath(storage.KindIcon, user.ID, req.IconFileName, now)

	apkSigned, err := h.storage.PresignedPutURL(apkPath, h.uploadExpiry)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	iconSigned, err := h.storage.PresignedPutURL(iconPath, h.uploadExpiry)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, signedURLResponse{
		APKSignedURL:  apkSigned,
		IconSignedURL: iconSigned,
		APKURL:        h.storage.URL(apkPath),
		IconURL:       h.storage.URL(iconPath),
	})
}
