package handler

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/mmnstore/mmnstore/internal/config"
	"github.com/mmnstore/mmnstore/internal/ctxkeys"
	"github.com/mmnstore/mmnstore/internal/service"
	"github.com/mmnstore/mmnstore/internal/validation"
)

// DeveloperHandler serves the developer dashboard: submitting, updating and
// deleting own apps.
type DeveloperHandler struct {
	appService *service.AppService
	cfg        *config.Config
}

func NewDeveloperHandler(appService *service.AppService, cfg *config.Config) *DeveloperHandler {
	return &DeveloperHandler{
		appService: appService,
		cfg:        cfg,
	}
}

// apkConstraints returns the APK validation rules with the configured
// size limit applied.
func (h *DeveloperHandler) apkConstraints() validation.FileConstraints {
	c := validation.APKConstraints
	c.MaxSize = h.cfg.MaxAPKSize
	return c
}

func (h *DeveloperHandler) imageConstraints() validation.FileConstraints {
	c := validation.ImageConstraints
	c.MaxSize = h.cfg.MaxImageSize
	return c
}

// MyApps lists the developer's own submissions, any status, newest first.
func (h *DeveloperHandler) MyApps(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	apps, err := h.appService.DeveloperApps(user)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, apps)
}

// Upload accepts a multipart submission (fields + apk + icon + optional
// screenshots) and runs the upload pipeline.
func (h *DeveloperHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := r.ParseMultipartForm(h.cfg.MultipartFormSize)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse form"})
		return
	}

	in := service.UploadInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Version:     r.FormValue("version"),
		Permissions: validation.ParsePermissions(r.FormValue("permissions")),
	}

	apk, apkClose, err := formFile(r, "apk", true, h.apkConstraints())
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer apkClose()
	in.APK = apk

	icon, iconClose, err := formFile(r, "icon", true, h.imageConstraints())
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer iconClose()
	in.Icon = icon

	shots := r.MultipartForm.File["screenshots"]
	if len(shots) > h.cfg.MaxScreenshots {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("too many screenshots (max %d)", h.cfg.MaxScreenshots),
		})
		return
	}
	for _, header := range shots {
		shot, shotClose, err := openHeader(header, h.imageConstraints())
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		defer shotClose()
		in.Screenshots = append(in.Screenshots, shot)
	}

	app, err := h.appService.Upload(user, in, progressLogger("upload"))
	if err != nil {
		slog.Warn("upload failed", "error", err, "developer_id", user.ID)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, app)
}

// Update accepts a multipart re-submission. APK and icon are optional;
// whatever is present replaces the stored binary.
func (h *DeveloperHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	appID := r.PathValue("id")

	err := r.ParseMultipartForm(h.cfg.MultipartFormSize)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse form"})
		return
	}

	in := service.UpdateInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Version:     r.FormValue("version"),
		Permissions: validation.ParsePermissions(r.FormValue("permissions")),
	}

	apk, apkClose, err := formFile(r, "apk", false, h.apkConstraints())
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if apk != nil {
		defer apkClose()
		in.APK = apk
	}

	icon, iconClose, err := formFile(r, "icon", false, h.imageConstraints())
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if icon != nil {
		defer iconClose()
		in.Icon = icon
	}

	app, err := h.appService.Update(user, appID, in, progressLogger("update"))
	if err != nil {
		slog.Warn("update failed", "error", err, "app_id", appID, "user_id", user.ID)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, app)
}

// Delete removes an app and its binaries.
func (h *DeveloperHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	appID := r.PathValue("id")

	err := h.appService.Delete(user, appID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// formFile pulls one validated upload out of the multipart form. Returns
// nil without error when the field is absent and not required.
func formFile(r *http.Request, field string, required bool, constraints validation.FileConstraints) (*service.FileInput, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if !required && err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("missing %s file", field)
	}

	err = validation.ValidateFile(header, constraints)
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("%s: %v", field, err)
	}

	closeFn := func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close upload", "error", closeErr, "field", field)
		}
	}

	return &service.FileInput{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}, closeFn, nil
}

func openHeader(header *multipart.FileHeader, constraints validation.FileConstraints) (*service.FileInput, func(), error) {
	err := validation.ValidateFile(header, constraints)
	if err != nil {
		return nil, nil, fmt.Errorf("screenshot %s: %v", header.Filename, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open screenshot %s", header.Filename)
	}

	closeFn := func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close upload", "error", closeErr, "file", header.Filename)
		}
	}

	return &service.FileInput{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}, closeFn, nil
}

// progressLogger surfaces pipeline stage messages in the server log. A
// future revision can stream these to the client instead.
func progressLogger(op string) service.ProgressFunc {
	return func(stage string) {
		slog.Debug("pipeline progress", "op", op, "stage", stage)
	}
}
