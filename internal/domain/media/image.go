package media

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Image struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// Set once the image is attached to an artwork.
	ArtworkID *string `gorm:"type:uuid;index" json:"artwork_id,omitempty"`
	SortIndex int     `gorm:"not null;default:0" json:"sort_index"`

	Disk        string `gorm:"type:varchar(16);not null" json:"-"`
	Path        string `gorm:"not null" json:"path"`
	URL         string `gorm:"not null" json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	UploadedBy  uint   `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
