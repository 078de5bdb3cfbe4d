package engagement

import (
	"time"

	"arvista/internal/domain/users"

	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is unique per (user, artwork).
type Review struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;uniqueIndex:idx_reviews_user_artwork,priority:1" json:"user_id"`
	User      *users.User `json:"user,omitempty"`
	ArtworkID string      `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_artwork,priority:2;index" json:"artwork_id"`
	Rating    int         `gorm:"not null" json:"rating"`
	Title     string      `json:"title,omitempty"`
	Comment   string      `json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// RatingSummary is the aggregate shown next to an artwork.
type RatingSummary struct {
	ArtworkID string  `json:"-"`
	Average   float64 `json:"average"`
	Count     int64   `json:"count"`
}

// RatingSummaries aggregates reviews for many artworks in one grouped query.
// Artworks without reviews are absent from the map.
func RatingSummaries(db *gorm.DB, artworkIDs []string) (map[string]RatingSummary, error) {
	out := make(map[string]RatingSummary, len(artworkIDs))
	if len(artworkIDs) == 0 {
		return out, nil
	}

	var rows []RatingSummary
	if err := db.Model(&Review{}).
		Select("artwork_id, AVG(rating) AS average, COUNT(*) AS count").
		Where("artwork_id IN ?", artworkIDs).
		Group("artwork_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		r.Average = roundRating(r.Average)
		out[r.ArtworkID] = r
	}
	return out, nil
}

// RatingSummaryFor is RatingSummaries for a single artwork; it never returns
// a missing entry.
func RatingSummaryFor(db *gorm.DB, artworkID string) (RatingSummary, error) {
	m, err := RatingSummaries(db, []string{artworkID})
	if err != nil {
		return RatingSummary{}, err
	}
	s := m[artworkID]
	s.ArtworkID = artworkID
	return s, nil
}

func roundRating(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
