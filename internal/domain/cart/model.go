package cart

import (
	"time"

	"arvista/internal/domain/catalog"
)

// Cart is unique per user.
type Cart struct {
	ID     uint       `gorm:"primaryKey" json:"id"`
	UserID uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CartItem struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	CartID    uint             `gorm:"not null;uniqueIndex:idx_cart_items_cart_artwork,priority:1" json:"-"`
	ArtworkID string           `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_artwork,priority:2" json:"artwork_id"`
	Artwork   *catalog.Artwork `json:"artwork,omitempty"`
	Quantity  int              `gorm:"not null;default:1" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subtotal sums price*quantity of every line whose artwork is loaded.
func (c Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.Items {
		if it.Artwork == nil {
			continue
		}
		total += it.Artwork.PriceCents * int64(it.Quantity)
	}
	return total
}

func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}
