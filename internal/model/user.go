package model

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleDeveloper = "developer"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one of the four known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleDeveloper, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User is one authenticated principal. The ID matches the identity
// provider's uid; the profile is created lazily on first sign-in.
type User struct {
	ID        string    `db:"id" json:"uid"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	AvatarURL *string   `db:"avatar_url" json:"avatarUrl,omitempty"`
	Role      string    `db:"role" json:"role"`
	JoinedAt  time.Time `db:"joined_at" json:"joinedAt"`
}

// CanDevelop reports whether the user may submit and update apps.
// Admins are granted developer privileges transitively.
func (u *User) CanDevelop() bool {
	return u.Role == RoleDeveloper || u.Role == RoleAdmin
}

// CanModerate reports whether the user may flag and unflag apps.
func (u *User) CanModerate() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
