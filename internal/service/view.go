package service

import (
	"github.com/mmnstore/mmnstore/internal/model"
)

// Action is a mutating operation the UI may offer on an app.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionFlag      Action = "flag"
	ActionUnflag    Action = "unflag"
	ActionFeature   Action = "feature"
	ActionUnfeature Action = "unfeature"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
)

// VisibleApps filters a record set down to what the viewer may see.
// Anonymous viewers and plain users see approved apps only; developers
// additionally see their own submissions in any status; moderators and
// admins see everything. This is a rendering filter, not a security
// boundary - the services re-verify on every mutation.
func VisibleApps(viewer *model.User, apps []*model.App) []*model.App {
	if viewer != nil && viewer.CanModerate() {
		return apps
	}

	visible := make([]*model.App, 0, len(apps))
	for _, app := range apps {
		if app.Status == model.StatusApproved {
			visible = append(visible, app)
			continue
		}
		if viewer != nil && viewer.ID == app.DeveloperID {
			visible = append(visible, app)
		}
	}
	return visible
}

// AppActions returns the actions the viewer may take on one app, mirroring
// the lifecycle transition table. Never exceeds what the services allow.
func AppActions(viewer *model.User, app *model.App) []Action {
	if viewer == nil {
		return nil
	}

	var actions []Action

	if viewer.ID == app.DeveloperID || viewer.IsAdmin() {
		actions = append(actions, ActionUpdate, ActionDelete)
	}

	if viewer.CanModerate() {
		if app.IsFlagged {
			actions = append(actions, ActionUnflag)
		} else {
			actions = append(actions, ActionFlag)
		}
	}

	if viewer.IsAdmin() {
		if app.Status == model.StatusPending {
			actions = append(actions, ActionApprove, ActionReject)
		}
		if app.Status == model.StatusApproved {
			if app.Featured {
				actions = append(actions, ActionUnfeature)
			} else {
				actions = append(actions, ActionFeature)
			}
		}
	}

	return actions
}
