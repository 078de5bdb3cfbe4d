package artworks

import (
	"fmt"
	"strconv"
	"strings"

	"arvista/internal/domain/catalog"
	"arvista/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type listFilter struct {
	Category   string
	Collection string
	Tag        string
	ArtistID   uint
	Status     string
	Featured   *bool
	MinCents   *int64
	MaxCents   *int64
	Search     string
	Sort       string
}

// parseListFilter reads the listing query string. The error message is safe
// to show to the client.
func parseListFilter(c *gin.Context) (listFilter, error) {
	f := listFilter{
		Category:   strings.TrimSpace(c.Query("category")),
		Collection: strings.TrimSpace(c.Query("collection")),
		Tag:        strings.TrimSpace(c.Query("tag")),
		Search:     strings.TrimSpace(c.Query("search")),
		Sort:       c.DefaultQuery("sort", catalog.SortNewest),
	}

	if _, err := catalog.OrderClause(f.Sort); err != nil {
		return f, fmt.Errorf("invalid sort: %s", f.Sort)
	}

	if raw := c.Query("artist"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid artist")
		}
		f.ArtistID = uint(v)
	}

	if raw := c.Query("status"); raw != "" {
		if !catalog.ValidStatus(raw) {
			return f, fmt.Errorf("invalid status: %s", raw)
		}
		f.Status = raw
	}

	if raw := c.Query("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("invalid featured")
		}
		f.Featured = &v
	}

	for _, p := range []struct {
		key string
		dst **int64
	}{{"min_price", &f.MinCents}, {"max_price", &f.MaxCents}} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return f, fmt.Errorf("invalid %s", p.key)
		}
		cents := catalog.Cents(v)
		*p.dst = &cents
	}

	return f, nil
}

// filteredArtworks applies f to the artworks table. Drafts are only visible
// to admins.
func filteredArtworks(db *gorm.DB, f listFilter, admin bool) *gorm.DB {
	q := db.Model(&catalog.Artwork{})

	if !admin {
		q = q.Where("artworks.status <> ?", catalog.StatusDraft)
	}
	if f.Status != "" {
		q = q.Where("artworks.status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("artworks.category_id IN (?)",
			db.Model(&catalog.Category{}).Select("id").Where("slug = ?", f.Category))
	}
	if f.Collection != "" {
		q = q.Where("artworks.id IN (?)",
			db.Table("artwork_collections").
				Select("artwork_collections.artwork_id").
				Joins("JOIN collections ON collections.id = artwork_collections.collection_id").
				Where("collections.slug = ?", f.Collection))
	}
	if f.Tag != "" {
		q = q.Where("artworks.id IN (?)",
			db.Table("artwork_tags").
				Select("artwork_tags.artwork_id").
				Joins("JOIN tags ON tags.id = artwork_tags.tag_id").
				Where("tags.slug = ?", f.Tag))
	}
	if f.ArtistID != 0 {
		q = q.Where("artworks.artist_id = ?", f.ArtistID)
	}
	if f.Featured != nil {
		q = q.Where("artworks.featured = ?", *f.Featured)
	}
	if f.MinCents != nil {
		q = q.Where("artworks.price_cents >= ?", *f.MinCents)
	}
	if f.MaxCents != nil {
		q = q.Where("artworks.price_cents <= ?", *f.MaxCents)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where(
			"(LOWER(artworks.title) LIKE ? OR LOWER(artworks.description) LIKE ? OR LOWER(artworks.medium) LIKE ? OR artworks.artist_id IN (?))",
			like, like, like,
			db.Model(&users.User{}).Select("id").Where("LOWER(name) LIKE ?", like),
		)
	}
	return q.Session(&gorm.Session{})
}

func withRatingJoin(q *gorm.DB) *gorm.DB {
	return q.Joins("LEFT JOIN (SELECT artwork_id, AVG(rating) AS avg_rating FROM reviews GROUP BY artwork_id) rs ON rs.artwork_id = artworks.id")
}

func preloadDetail(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Artist").
		Preload("Category").
		Preload("Collections").
		Preload("Tags").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_index ASC") })
}
