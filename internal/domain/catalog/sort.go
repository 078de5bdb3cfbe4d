package catalog

import "fmt"

const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortTitle     = "title"
	SortRating    = "rating"
)

// OrderClause maps a public sort key to an ORDER BY clause on artworks.
// SortRating expects the caller to join review stats as "rs".
func OrderClause(sort string) (string, error) {
	switch sort {
	case "", SortNewest:
		return "artworks.created_at DESC, artworks.id ASC", nil
	case SortOldest:
		return "artworks.created_at ASC, artworks.id ASC", nil
	case SortPriceLow:
		return "artworks.price_cents ASC, artworks.id ASC", nil
	case SortPriceHigh:
		return "artworks.price_cents DESC, artworks.id ASC", nil
	case SortTitle:
		return "artworks.title ASC, artworks.id ASC", nil
	case SortRating:
		return "COALESCE(rs.avg_rating, 0) DESC, artworks.created_at DESC, artworks.id ASC", nil
	}
	return "", fmt.Errorf("unknown sort %q", sort)
}
