package taxonomy

import (
	"arvista/internal/domain/catalog"

	"gorm.io/gorm"
)

type CategoryWithCount struct {
	catalog.Category
	ArtworkCount int64 `json:"artwork_count"`
}

type CollectionWithCount struct {
	catalog.Collection
	ArtworkCount int64 `json:"artwork_count"`
}

type TagWithCount struct {
	catalog.Tag
	ArtworkCount int64 `json:"artwork_count"`
}

// Counts only include artworks visible in the public catalog.

func categoriesWithCounts(db *gorm.DB) *gorm.DB {
	return db.Model(&catalog.Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM artworks WHERE artworks.category_id = categories.id AND artworks.status <> ?) AS artwork_count", catalog.StatusDraft)
}

func collectionsWithCounts(db *gorm.DB) *gorm.DB {
	return db.Model(&catalog.Collection{}).
		Select(`collections.*, (SELECT COUNT(*) FROM artwork_collections
			JOIN artworks ON artworks.id = artwork_collections.artwork_id
			WHERE artwork_collections.collection_id = collections.id AND artworks.status <> ?) AS artwork_count`, catalog.StatusDraft)
}

func tagsWithCounts(db *gorm.DB) *gorm.DB {
	return db.Model(&catalog.Tag{}).
		Select(`tags.*, (SELECT COUNT(*) FROM artwork_tags
			JOIN artworks ON artworks.id = artwork_tags.artwork_id
			WHERE artwork_tags.tag_id = tags.id AND artworks.status <> ?) AS artwork_count`, catalog.StatusDraft)
}
