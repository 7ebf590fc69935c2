package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmnstore/mmnstore/internal/model"
	"github.com/mmnstore/mmnstore/internal/repository"
)

// LifecycleService enforces the app status state machine and the role-gated
// transitions: approve/reject (admin), feature/unfeature (admin),
// flag/unflag (moderator or admin) and role management (admin).
// Every transition is a single-document update; concurrent transitions on
// the same record resolve last-write-wins.
type LifecycleService struct {
	apps  repository.AppRepository
	users repository.UserRepository
	email *EmailService
}

func NewLifecycleService(apps repository.AppRepository, users repository.UserRepository, email *EmailService) *LifecycleService {
	return &LifecycleService{
		apps:  apps,
		users: users,
		email: email,
	}
}

// Approve moves a pending app to approved.
func (s *LifecycleService) Approve(principal *model.User, appID string) error {
	return s.review(principal, appID, model.StatusApproved)
}

// Reject moves a pending app to rejected.
func (s *LifecycleService) Reject(principal *model.User, appID string) error {
	return s.review(principal, appID, model.StatusRejected)
}

func (s *LifecycleService) review(principal *model.User, appID, newStatus string) error {
	if principal == nil || !principal.IsAdmin() {
		return fmt.Errorf("admin role required: %w", ErrNotAuthorized)
	}

	app, err := s.apps.ByID(appID)
	if err != nil {
		return err
	}
	if app.Status != model.StatusPending {
		return fmt.Errorf("app is %s, only pending apps can be reviewed: %w", app.Status, ErrInvalidTransition)
	}

	err = s.apps.UpdateStatus(appID, newStatus, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	slog.Info("app reviewed", "app_id", appID, "status", newStatus, "admin_id", principal.ID)
	s.notifyDeveloper(app, newStatus)
	return nil
}

// notifyDeveloper emails the app's developer about the review outcome.
// Best effort; a notification failure never fails the transition.
func (s *LifecycleService) notifyDeveloper(app *model.App, newStatus string) {
	if s.email == nil {
		return
	}

	developer, err := s.users.ByID(app.DeveloperID)
	if err != nil {
		slog.Warn("failed to load developer for review notification", "error", err, "app_id", app.ID)
		return
	}

	err = s.email.SendReviewResultEmail(developer.Email, app.Name, newStatus)
	if err != nil {
		slog.Warn("failed to send review notification", "error", err, "app_id", app.ID, "to", developer.Email)
	}
}

// Feature marks an approved app as featured on the storefront.
func (s *LifecycleService) Feature(principal *model.User, appID string) error {
	if principal == nil || !principal.IsAdmin() {
		return fmt.Errorf("admin role required: %w", ErrNotAuthorized)
	}

	app, err := s.apps.ByID(appID)
	if err != nil {
		return err
	}
	if app.Status != model.StatusApproved {
		return fmt.Errorf("only approved apps can be featured: %w", ErrInvalidTransition)
	}

	return s.apps.SetFeatured(appID, true, time.Now())
}

// Unfeature removes an app from the featured set.
func (s *LifecycleService) Unfeature(principal *model.User, appID string) error {
	if principal == nil || !principal.IsAdmin() {
		return fmt.Errorf("admin role required: %w", ErrNotAuthorized)
	}

	app, err := s.apps.ByID(appID)
	if err != nil {
		return err
	}
	if !app.Featured {
		return fmt.Errorf("app is not featured: %w", ErrInvalidTransition)
	}

	return s.apps.SetFeatured(appID, false, time.Now())
}

// Flag marks an app for review. Flagging is orthogonal to status and legal
// in any status; the flagging principal and time are recorded.
func (s *LifecycleService) Flag(principal *model.User, appID string) error {
	if principal == nil || !principal.CanModerate() {
		return fmt.Errorf("moderator role required: %w", ErrNotAuthorized)
	}

	_, err := s.apps.ByID(appID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.apps.SetFlag(appID, true, &principal.ID, &now)
	if err != nil {
		return fmt.Errorf("failed to flag app: %w", err)
	}

	slog.Info("app flagged", "app_id", appID, "moderator_id", principal.ID)
	return nil
}

// Unflag clears the moderation flag.
func (s *LifecycleService) Unflag(principal *model.User, appID string) error {
	if principal == nil || !principal.CanModerate() {
		return fmt.Errorf("moderator role required: %w", ErrNotAuthorized)
	}

	app, err := s.apps.ByID(appID)
	if err != nil {
		return err
	}
	if !app.IsFlagged {
		return fmt.Errorf("app is not flagged: %w", ErrInvalidTransition)
	}

	err = s.apps.SetFlag(appID, false, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to unflag app: %w", err)
	}

	slog.Info("app unflagged", "app_id", appID, "moderator_id", principal.ID)
	return nil
}

// PendingApps lists apps waiting for review, oldest first, so the queue is
// worked in submission order.
func (s *LifecycleService) PendingApps(principal *model.User) ([]*model.App, error) {
	if principal == nil || !principal.IsAdmin() {
		return nil, fmt.Errorf("admin role required: %w", ErrNotAuthorized)
	}
	return s.apps.ByStatus(model.StatusPending, true)
}

// AllApps lists every app for the moderation queue, flagged first.
func (s *LifecycleService) AllApps(principal *model.User) ([]*model.App, error) {
	if principal == nil || !principal.CanModerate() {
		return nil, fmt.Errorf("moderator role required: %w", ErrNotAuthorized)
	}
	return s.apps.All()
}

// Users lists every profile, for the admin role-management view.
func (s *LifecycleService) Users(principal *model.User) ([]*model.User, error) {
	if principal == nil || !principal.IsAdmin() {
		return nil, fmt.Errorf("admin role required: %w", ErrNotAuthorized)
	}
	return s.users.All()
}

// SetRole changes a user's role. Admin only.
func (s *LifecycleService) SetRole(principal *model.User, userID, role string) error {
	if principal == nil || !principal.IsAdmin() {
		return fmt.Errorf("admin role required: %w", ErrNotAuthorized)
	}
	if !model.ValidRole(role) {
		return fmt.Errorf("unknown role %q: %w", role, ErrValidation)
	}

	err := s.users.UpdateRole(userID, role)
	if err != nil {
		return err
	}

	slog.Info("role changed", "user_id", userID, "role", role, "admin_id", principal.ID)
	return nil
}
