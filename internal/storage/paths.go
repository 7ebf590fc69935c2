package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	KindAPK        = "apks"
	KindIcon       = "icons"
	KindScreenshot = "screenshots"
)

// ObjectPath builds a storage path of the form
// <kind>/<developerID>/<timestamp>-<filename>. The millisecond timestamp
// scopes every submission attempt, so a retry after a partial failure never
// collides with objects left behind by the failed attempt.
func ObjectPath(kind, developerID, filename string, at time.Time) string {
	return path.Join(kind, developerID, fmt.Sprintf("%d-%s", at.UnixMilli(), sanitizeFilename(filename)))
}

// sanitizeFilename strips path separators and other characters that have no
// business in an object key.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
