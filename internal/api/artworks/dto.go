package artworks

// Prices are given in currency units (12.50) and stored in cents.

type CreateArtworkRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	CategoryID  *uint  `json:"category_id"`
	Medium      string `json:"medium"`
	Dimensions  string `json:"dimensions"`
	Year        int    `json:"year" binding:"omitempty,gte=0,lte=3000"`

	Price    float64 `json:"price" binding:"required,gt=0"`
	Stock    *int    `json:"stock" binding:"omitempty,gte=0"`
	Status   string  `json:"status" binding:"omitempty,oneof=available reserved sold draft"`
	Featured bool    `json:"featured"`

	Tags          []string `json:"tags"`
	CollectionIDs []uint   `json:"collection_ids"`
	ImageIDs      []string `json:"image_ids"` // ordered

	// Admins may create on behalf of an artist.
	ArtistID *uint `json:"artist_id"`
}

type UpdateArtworkRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	CategoryID  *uint   `json:"category_id"`
	Medium      *string `json:"medium"`
	Dimensions  *string `json:"dimensions"`
	Year        *int    `json:"year" binding:"omitempty,gte=0,lte=3000"`

	Price    *float64 `json:"price" binding:"omitempty,gt=0"`
	Stock    *int     `json:"stock" binding:"omitempty,gte=0"`
	Status   *string  `json:"status" binding:"omitempty,oneof=available reserved sold draft"`
	Featured *bool    `json:"featured"`

	// nil leaves the association alone, an empty list clears it.
	Tags          []string `json:"tags"`
	CollectionIDs []uint   `json:"collection_ids"`
	ImageIDs      []string `json:"image_ids"`
}
