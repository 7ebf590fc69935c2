package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DownloadHandler proxies a storage object through this origin so the
// browser downloads from the store's domain instead of the storage
// provider's, with a forced attachment disposition.
type DownloadHandler struct {
	client *http.Client
	// allowedBase restricts proxying to our own storage objects.
	allowedBase string
}

func NewDownloadHandler(allowedBase string) *DownloadHandler {
	return &DownloadHandler{
		client:      &http.Client{Timeout: 60 * time.Second},
		allowedBase: allowedBase,
	}
}

// Proxy fetches ?fileUrl= and streams it back with
// Content-Disposition: attachment.
func (h *DownloadHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	fileURL := r.URL.Query().Get("fileUrl")
	if fileURL == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fileUrl parameter"})
		return
	}

	if h.allowedBase != "" && !strings.HasPrefix(fileURL, h.allowedBase) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "fileUrl is not a storage object"})
		return
	}

	resp, err := h.client.Get(fileURL)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close upstream body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to fetch file: " + resp.Status,
		})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/vnd.android.package-archive"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment")
	if length := resp.Header.Get("Content-Length"); length != "" {
		w.Header().Set("Content-Length", length)
	}

	_, err = io.Copy(w, resp.Body)
	if err != nil {
		slog.Warn("download proxy interrupted", "error", err, "url", fileURL)
	}
}
