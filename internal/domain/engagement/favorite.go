package engagement

import (
	"time"

	"arvista/internal/domain/catalog"
)

// Favorite is a user's bookmark on an artwork, unique per pair.
type Favorite struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;uniqueIndex:idx_favorites_user_artwork,priority:1" json:"user_id"`
	ArtworkID string           `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_artwork,priority:2;index" json:"artwork_id"`
	Artwork   *catalog.Artwork `json:"artwork,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
