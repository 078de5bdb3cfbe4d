package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// MakeSlug generates a URL-safe slug.
// Example: "Blue Horizon No. 3" -> "blue-horizon-no-3"
func MakeSlug(s string, fallback string) string {
	base := strings.ToLower(strings.TrimSpace(s))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if base == "" {
		base = fallback
	}
	return base
}

// UniqueSlug returns base, or base-2, base-3, ... whichever is still free in
// the table of model. excludeID skips the row being renamed.
//
// Pass the transaction in; this package never touches the global DB.
func UniqueSlug(db *gorm.DB, model interface{}, base string, excludeID interface{}) (string, error) {
	if db == nil {
		return "", fmt.Errorf("db is nil")
	}

	var taken []string
	q := db.Model(model).
		Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if excludeID != nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("slug", &taken).Error; err != nil {
		return "", err
	}

	used := make(map[string]bool, len(taken))
	for _, s := range taken {
		used[s] = true
	}
	if !used[base] {
		return base, nil
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !used[candidate] {
			return candidate, nil
		}
	}
}
