package catalog

import (
	"time"

	"arvista/internal/domain/media"
	"arvista/internal/domain/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusAvailable = "available"
	StatusReserved  = "reserved"
	StatusSold      = "sold"
	StatusDraft     = "draft"
)

type Artwork struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"not null;uniqueIndex" json:"slug"`
	Description string `json:"description,omitempty"`

	ArtistID uint        `gorm:"not null;index" json:"artist_id"`
	Artist   *users.User `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`

	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `json:"category,omitempty"`

	Medium     string `json:"medium,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`
	Year       int    `json:"year,omitempty"`

	// PriceCents is the unit price in the smallest currency unit.
	PriceCents int64  `gorm:"not null;index" json:"price_cents"`
	Stock      int    `gorm:"not null;default:1" json:"stock"`
	Status     string `gorm:"type:varchar(16);not null;default:'available';index" json:"status"`
	Featured   bool   `gorm:"not null;default:false;index" json:"featured"`

	Images      []media.Image `gorm:"foreignKey:ArtworkID" json:"images,omitempty"`
	Collections []Collection  `gorm:"many2many:artwork_collections;" json:"collections,omitempty"`
	Tags        []Tag         `gorm:"many2many:artwork_tags;" json:"tags,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Artwork) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold, StatusDraft:
		return true
	}
	return false
}

// ValidID reports whether id can be an artwork primary key. Checking first
// keeps malformed ids from reaching a uuid column as a query error.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Purchasable reports whether the artwork can be put in a cart.
func (a Artwork) Purchasable() bool {
	return a.Status == StatusAvailable && a.Stock > 0
}
