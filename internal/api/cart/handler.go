package cart

import (
	"errors"
	"net/http"

	"arvista/config"
	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/cart"
	"arvista/internal/domain/catalog"
	"arvista/internal/infra/metrics"

	"github.com/gin-gonic/gin"
)

type CartLineDTO struct {
	ArtworkID string  `json:"artwork_id"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	ImageURL  string  `json:"image_url,omitempty"`
	Status    string  `json:"status"`
	Stock     int     `json:"stock"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

type CartResponse struct {
	Items         []CartLineDTO `json:"items"`
	Count         int           `json:"count"`
	Subtotal      float64       `json:"subtotal"`
	SubtotalCents int64         `json:"subtotal_cents"`
	Currency      string        `json:"currency"`
}

func toCartResponse(c *cart.Cart) CartResponse {
	out := CartResponse{
		Items:         make([]CartLineDTO, 0, len(c.Items)),
		Count:         c.Count(),
		Subtotal:      catalog.Amount(c.Subtotal()),
		SubtotalCents: c.Subtotal(),
		Currency:      config.CURRENCY,
	}
	for _, it := range c.Items {
		line := CartLineDTO{ArtworkID: it.ArtworkID, Quantity: it.Quantity}
		if a := it.Artwork; a != nil {
			line.Title = a.Title
			line.Slug = a.Slug
			line.Status = a.Status
			line.Stock = a.Stock
			line.UnitPrice = catalog.Amount(a.PriceCents)
			line.LineTotal = catalog.Amount(a.PriceCents * int64(it.Quantity))
			if len(a.Images) > 0 {
				line.ImageURL = a.Images[0].URL
			}
		}
		out.Items = append(out.Items, line)
	}
	return out
}

func respondWithCart(c *gin.Context, userID uint, status int) {
	crt, err := cart.ForUser(database.DB, userID)
	if err != nil {
		common.InternalError(c, "Failed to load cart", err)
		return
	}
	c.JSON(status, toCartResponse(crt))
}

func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrArtworkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
	case errors.Is(err, cart.ErrArtworkUnavailable),
		errors.Is(err, cart.ErrExceedsStock),
		errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		common.InternalError(c, "Failed to update cart", err)
	}
}

// GET /cart
func GetCart(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	respondWithCart(c, userID, http.StatusOK)
}

// POST /cart/add
func AddToCart(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	var input struct {
		ArtworkID string `json:"artwork_id" binding:"required"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}

	if err := cart.AddItem(database.DB, userID, input.ArtworkID, qty); err != nil {
		writeCartError(c, err)
		return
	}
	metrics.CartAdds.Inc()
	respondWithCart(c, userID, http.StatusOK)
}

// PUT /cart/items/:artworkId
func UpdateCartItem(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	var input struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := cart.SetQuantity(database.DB, userID, c.Param("artworkId"), *input.Quantity); err != nil {
		writeCartError(c, err)
		return
	}
	respondWithCart(c, userID, http.StatusOK)
}

// DELETE /cart/items/:artworkId
func RemoveCartItem(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	if err := cart.RemoveItem(database.DB, userID, c.Param("artworkId")); err != nil {
		writeCartError(c, err)
		return
	}
	respondWithCart(c, userID, http.StatusOK)
}

// DELETE /cart
func ClearCart(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	if err := cart.Clear(database.DB, userID); err != nil {
		common.InternalError(c, "Failed to clear cart", err)
		return
	}
	respondWithCart(c, userID, http.StatusOK)
}
