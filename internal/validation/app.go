package validation

import (
	"errors"
	"strings"
)

// ValidateAppFields checks the descriptive fields of a submission. All four
// are required; nothing may reach storage before this passes.
func ValidateAppFields(name, description, category, version string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("app name is required")
	}
	if len(name) > 100 {
		return errors.New("app name is too long (max 100 characters)")
	}
	if strings.TrimSpace(description) == "" {
		return errors.New("description is required")
	}
	if len(description) > 4000 {
		return errors.New("description is too long (max 4000 characters)")
	}
	if strings.TrimSpace(category) == "" {
		return errors.New("category is required")
	}
	if strings.TrimSpace(version) == "" {
		return errors.New("version is required")
	}
	if len(version) > 50 {
		return errors.New("version is too long (max 50 characters)")
	}
	return nil
}

// ParsePermissions splits a comma-separated permission list, dropping
// empty entries.
func ParsePermissions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	perms := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			perms = append(perms, p)
		}
	}
	return perms
}
