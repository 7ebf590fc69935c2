package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmnstore/mmnstore/internal/model"
	"github.com/mmnstore/mmnstore/internal/repository"
	"github.com/mmnstore/mmnstore/internal/storage"
	"github.com/mmnstore/mmnstore/internal/validation"
)

// FileInput is one binary handed to a pipeline. The reader is consumed
// exactly once, in pipeline order.
type FileInput struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// ProgressFunc receives a human-readable stage message at each pipeline
// step boundary, for the caller to render. Progress is a UX contract,
// never a correctness one.
type ProgressFunc func(stage string)

func (f ProgressFunc) report(stage string) {
	if f != nil {
		f(stage)
	}
}

// UploadInput is a new submission. APK and Icon are required, screenshots
// optional.
type UploadInput struct {
	Name        string
	Description string
	Category    string
	Version     string
	Permissions []string
	APK         *FileInput
	Icon        *FileInput
	Screenshots []*FileInput
}

// UpdateInput mutates an existing submission. Nil APK/Icon means the
// existing binary is kept.
type UpdateInput struct {
	Name        string
	Description string
	Category    string
	Version     string
	Permissions []string
	APK         *FileInput
	Icon        *FileInput
}

type AppService struct {
	apps    repository.AppRepository
	storage storage.Storage
}

func NewAppService(apps repository.AppRepository, store storage.Storage) *AppService {
	return &AppService{
		apps:    apps,
		storage: store,
	}
}

// Upload runs the submission pipeline: validate, upload APK, icon and
// screenshots in order, then create the record with status pending.
// A storage failure aborts before any record exists; a record-create failure
// triggers best-effort cleanup of the just-uploaded objects. Either way the
// caller can retry safely because every attempt gets timestamp-scoped paths.
func (s *AppService) Upload(principal *model.User, in UploadInput, progress ProgressFunc) (*model.App, error) {
	if principal == nil || !principal.CanDevelop() {
		return nil, fmt.Errorf("developer role required: %w", ErrNotAuthorized)
	}

	err := validation.ValidateAppFields(in.Name, in.Description, in.Category, in.Version)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	if in.APK == nil {
		return nil, fmt.Errorf("APK file is required: %w", ErrValidation)
	}
	if !strings.EqualFold(filepath.Ext(in.APK.Name), ".apk") {
		return nil, fmt.Errorf("APK file must have .apk extension: %w", ErrValidation)
	}
	if in.Icon == nil {
		return nil, fmt.Errorf("icon file is required: %w", ErrValidation)
	}

	now := time.Now()
	apkPath := storage.ObjectPath(storage.KindAPK, principal.ID, in.APK.Name, now)
	iconPath := storage.ObjectPath(storage.KindIcon, principal.ID, in.Icon.Name, now)

	uploaded := []string{}

	progress.report("Uploading APK…")
	err = s.storage.Save(apkPath, in.APK.Reader)
	if err != nil {
		return nil, &PartialUploadError{Stage: "apk", Err: err}
	}
	uploaded = append(uploaded, apkPath)

	progress.report("Uploading icon…")
	err = s.storage.Save(iconPath, in.Icon.Reader)
	if err != nil {
		return nil, &PartialUploadError{Stage: "icon", Err: err}
	}
	uploaded = append(uploaded, iconPath)

	screenshotURLs := make(model.StringList, 0, len(in.Screenshots))
	screenshotPaths := make(model.StringList, 0, len(in.Screenshots))
	for i, shot := range in.Screenshots {
		progress.report(fmt.Sprintf("Uploading screenshot %d/%d…", i+1, len(in.Screenshots)))
		// Index keeps paths unique when screenshot filenames repeat.
		path := storage.ObjectPath(storage.KindScreenshot, principal.ID, fmt.Sprintf("%d-%s", i, shot.Name), now)
		err = s.storage.Save(path, shot.Reader)
		if err != nil {
			return nil, &PartialUploadError{Stage: "screenshot", Err: err}
		}
		uploaded = append(uploaded, path)
		screenshotURLs = append(screenshotURLs, s.storage.URL(path))
		screenshotPaths = append(screenshotPaths, path)
	}

	progress.report("Saving details…")
	app := &model.App{
		ID:              uuid.New().String(),
		Name:            in.Name,
		Description:     in.Description,
		Category:        in.Category,
		Version:         in.Version,
		APKURL:          s.storage.URL(apkPath),
		APKPath:         apkPath,
		IconURL:         s.storage.URL(iconPath),
		IconPath:        iconPath,
		Screenshots:     screenshotURLs,
		ScreenshotPaths: screenshotPaths,
		DeveloperID:     principal.ID,
		DeveloperName:   principal.Name,
		Status:          model.StatusPending,
		Size:            in.APK.Size,
		Permissions:     model.StringList(in.Permissions),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.apps.Create(app)
	if err != nil {
		// Uploads succeeded but the record did not. Clean up what we can;
		// anything left behind is tolerated garbage for the sweep.
		for _, path := range uploaded {
			delErr := s.storage.Delete(path)
			if delErr != nil {
				slog.Warn("failed to delete object during upload cleanup", "error", delErr, "path", path)
			}
		}
		return nil, fmt.Errorf("failed to create app record: %w", err)
	}

	slog.Info("app submitted", "app_id", app.ID, "developer_id", principal.ID, "name", app.Name)
	return app, nil
}

// Update runs the re-submission pipeline. New binaries (if any) go to fresh
// paths first; the record is then updated in one statement, forcing status
// back to pending; only after that update persisted are the superseded
// objects deleted. If the record update fails nothing is deleted, so the
// record never points at a removed object.
func (s *AppService) Update(principal *model.User, appID string, in UpdateInput, progress ProgressFunc) (*model.App, error) {
	app, err := s.apps.ByID(appID)
	if err != nil {
		return nil, err
	}

	if principal == nil || (principal.ID != app.DeveloperID && !principal.IsAdmin()) {
		return nil, fmt.Errorf("only the app's developer or an admin may update it: %w", ErrNotAuthorized)
	}

	err = validation.ValidateAppFields(in.Name, in.Description, in.Category, in.Version)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	now := time.Now()
	var oldPaths []string

	if in.APK != nil {
		if !strings.EqualFold(filepath.Ext(in.APK.Name), ".apk") {
			return nil, fmt.Errorf("APK file must have .apk extension: %w", ErrValidation)
		}
		progress.report("Uploading new APK…")
		path := storage.ObjectPath(storage.KindAPK, app.DeveloperID, in.APK.Name, now)
		err = s.storage.Save(path, in.APK.Reader)
		if err != nil {
			return nil, &PartialUploadError{Stage: "apk", Err: err}
		}
		oldPaths = append(oldPaths, app.APKPath)
		app.APKPath = path
		app.APKURL = s.storage.URL(path)
		app.Size = in.APK.Size
	}

	if in.Icon != nil {
		progress.report("Uploading new icon…")
		path := storage.ObjectPath(storage.KindIcon, app.DeveloperID, in.Icon.Name, now)
		err = s.storage.Save(path, in.Icon.Reader)
		if err != nil {
			return nil, &PartialUploadError{Stage: "icon", Err: err}
		}
		oldPaths = append(oldPaths, app.IconPath)
		app.IconPath = path
		app.IconURL = s.storage.URL(path)
	}

	app.Name = in.Name
	app.Description = in.Description
	app.Category = in.Category
	app.Version = in.Version
	if in.Permissions != nil {
		app.Permissions = model.StringList(in.Permissions)
	}
	// Any change to a published app must be re-approved.
	app.Status = model.StatusPending
	app.UpdatedAt = now

	progress.report("Saving updated details…")
	err = s.apps.Update(app)
	if err != nil {
		// The record still references the old objects; leave them alone.
		// The new uploads are tolerated garbage.
		return nil, fmt.Errorf("failed to update app record: %w", err)
	}

	// The record no longer references the superseded objects; deleting them
	// is best effort and never fails the operation.
	if len(oldPaths) > 0 {
		progress.report("Cleaning up old files…")
		for _, path := range oldPaths {
			delErr := s.storage.Delete(path)
			if delErr != nil {
				slog.Warn("failed to delete superseded object", "error", delErr, "path", path, "app_id", app.ID)
			}
		}
	}

	slog.Info("app updated", "app_id", app.ID, "developer_id", app.DeveloperID, "version", app.Version)
	return app, nil
}

// Delete removes an app's binaries (best effort) and its record.
func (s *AppService) Delete(principal *model.User, appID string) error {
	app, err := s.apps.ByID(appID)
	if err != nil {
		return err
	}

	if principal == nil || (principal.ID != app.DeveloperID && !principal.IsAdmin()) {
		return fmt.Errorf("only the app's developer or an admin may delete it: %w", ErrNotAuthorized)
	}

	for _, path := range app.StoragePaths() {
		delErr := s.storage.Delete(path)
		if delErr != nil {
			slog.Warn("failed to delete object during app deletion", "error", delErr, "path", path, "app_id", app.ID)
		}
	}

	err = s.apps.Delete(appID)
	if err != nil {
		return fmt.Errorf("failed to delete app record: %w", err)
	}

	slog.Info("app deleted", "app_id", appID, "deleted_by", principal.ID)
	return nil
}

// Approved lists approved apps, optionally filtered by category and by a
// name substring, newest first.
func (s *AppService) Approved(category, search string) ([]*model.App, error) {
	return s.apps.Approved(category, search)
}

// Featured lists approved apps an admin has featured.
func (s *AppService) Featured() ([]*model.App, error) {
	return s.apps.Featured()
}

// ByID returns one app, enforcing visibility: approved apps are public,
// everything else is visible only to the owner, moderators and admins.
func (s *AppService) ByID(principal *model.User, appID string) (*model.App, error) {
	app, err := s.apps.ByID(appID)
	if err != nil {
		return nil, err
	}

	if app.Status == model.StatusApproved {
		return app, nil
	}
	if principal != nil && (principal.ID == app.DeveloperID || principal.CanModerate()) {
		return app, nil
	}

	return nil, fmt.Errorf("app is not published: %w", ErrNotAuthorized)
}

// DeveloperApps lists the principal's own submissions, newest first.
func (s *AppService) DeveloperApps(principal *model.User) ([]*model.App, error) {
	if principal == nil || !principal.CanDevelop() {
		return nil, fmt.Errorf("developer role required: %w", ErrNotAuthorized)
	}
	return s.apps.ByDeveloper(principal.ID)
}

// RegisterDownload bumps the download counter and returns the app with its
// APKURL swapped for a time-limited presigned GET URL, so handed-out links
// expire instead of living forever. Visibility follows ByID.
func (s *AppService) RegisterDownload(principal *model.User, appID string) (*model.App, error) {
	app, err := s.ByID(principal, appID)
	if err != nil {
		return nil, err
	}

	err = s.apps.IncrementDownloads(appID)
	if err != nil {
		return nil, fmt.Errorf("failed to count download: %w", err)
	}
	app.DownloadCount++

	signed, err := s.storage.PresignedURL(app.APKPath)
	if err != nil {
		// The permanent object URL still works; don't fail the download.
		slog.Warn("failed to presign download URL", "error", err, "app_id", app.ID)
		return app, nil
	}
	app.APKURL = signed

	return app, nil
}

// IsNotFound reports whether err is a missing-record error from the
// metadata store.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrAppNotFound) || errors.Is(err, repository.ErrUserNotFound)
}
