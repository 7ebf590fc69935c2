package model

import (
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// App is one submitted application. Binary objects live in S3-compatible
// storage; the record keeps both the public URL and the storage path for
// each object so cleanup never has to parse a URL.
type App struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Category    string `db:"category" json:"category"`
	Version     string `db:"version" json:"version"`

	APKURL          string     `db:"apk_url" json:"apkUrl"`
	APKPath         string     `db:"apk_path" json:"-"`
	IconURL         string     `db:"icon_url" json:"iconUrl"`
	IconPath        string     `db:"icon_path" json:"-"`
	Screenshots     StringList `db:"screenshots" json:"screenshots"`
	ScreenshotPaths StringList `db:"screenshot_paths" json:"-"`

	DeveloperID string `db:"developer_id" json:"developerId"`
	// DeveloperName is denormalized at submission time and may go stale
	// if the developer later renames themselves.
	DeveloperName string `db:"developer_name" json:"developerName"`

	Status    string     `db:"status" json:"status"`
	IsFlagged bool       `db:"is_flagged" json:"isFlagged"`
	FlaggedBy *string    `db:"flagged_by" json:"-"`
	FlaggedAt *time.Time `db:"flagged_at" json:"-"`
	Featured  bool       `db:"featured" json:"featured"`

	Size        int64      `db:"size" json:"size"`
	Permissions StringList `db:"permissions" json:"permissions"`

	DownloadCount int64 `db:"download_count" json:"downloadCount"`
	// Rating and ReviewsCount are reserved for a review system that does
	// not exist yet. No write path populates them.
	Rating       float64 `db:"rating" json:"rating"`
	ReviewsCount int64   `db:"reviews_count" json:"reviewsCount"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// StoragePaths returns every storage object the app references.
func (a *App) StoragePaths() []string {
	paths := make([]string, 0, 2+len(a.ScreenshotPaths))
	if a.APKPath != "" {
		paths = append(paths, a.APKPath)
	}
	if a.IconPath != "" {
		paths = append(paths, a.IconPath)
	}
	paths = append(paths, a.ScreenshotPaths...)
	return paths
}
