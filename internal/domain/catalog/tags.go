package catalog

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// NormalizeTagNames trims, lower-cases and de-duplicates names, dropping empties.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// UpsertTags makes sure a Tag row exists for every name and returns them in
// input order.
func UpsertTags(tx *gorm.DB, names []string) ([]Tag, error) {
	names = NormalizeTagNames(names)
	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		var t Tag
		err := tx.Where("name = ?", name).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Distinct names can share a slug ("水彩" and "油彩" both fall back to "tag").
			var slug string
			slug, err = UniqueSlug(tx, &Tag{}, MakeSlug(name, "tag"), nil)
			if err == nil {
				t = Tag{Name: name, Slug: slug}
				err = tx.Create(&t).Error
			}
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}
