package artworks

import (
	"time"

	"arvista/config"
	"arvista/internal/api/common"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/engagement"
	"arvista/internal/domain/media"
)

type ImageRefDTO struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ArtistDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type ArtworkDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`

	Artist   *ArtistDTO        `json:"artist,omitempty"`
	Category *catalog.Category `json:"category,omitempty"`

	Medium     string `json:"medium,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`
	Year       int    `json:"year,omitempty"`

	Price      float64 `json:"price"`
	PriceCents int64   `json:"price_cents"`
	Currency   string  `json:"currency"`
	Stock      int     `json:"stock"`
	Status     string  `json:"status"`
	Featured   bool    `json:"featured"`

	Images      []ImageRefDTO        `json:"images"`
	Collections []catalog.Collection `json:"collections,omitempty"`
	Tags        []catalog.Tag        `json:"tags,omitempty"`

	Rating engagement.RatingSummary `json:"rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListResponse struct {
	Items      []ArtworkDTO `json:"items"`
	Pagination common.Page  `json:"pagination"`
}

func toImageRefs(images []media.Image) []ImageRefDTO {
	out := make([]ImageRefDTO, 0, len(images))
	for _, img := range images {
		out = append(out, ImageRefDTO{ID: img.ID, URL: img.URL})
	}
	return out
}

func toArtworkDTO(a catalog.Artwork, rating engagement.RatingSummary) ArtworkDTO {
	dto := ArtworkDTO{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Description: a.Description,
		Category:    a.Category,
		Medium:      a.Medium,
		Dimensions:  a.Dimensions,
		Year:        a.Year,
		Price:       catalog.Amount(a.PriceCents),
		PriceCents:  a.PriceCents,
		Currency:    config.CURRENCY,
		Stock:       a.Stock,
		Status:      a.Status,
		Featured:    a.Featured,
		Images:      toImageRefs(a.Images),
		Collections: a.Collections,
		Tags:        a.Tags,
		Rating:      rating,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Artist != nil {
		dto.Artist = &ArtistDTO{ID: a.Artist.ID, Name: a.Artist.Name, AvatarURL: a.Artist.AvatarURL}
	}
	return dto
}
