package cart

import (
	"errors"

	"arvista/internal/domain/catalog"

	"gorm.io/gorm"
)

var (
	ErrArtworkNotFound    = errors.New("artwork not found")
	ErrArtworkUnavailable = errors.New("artwork is not available")
	ErrExceedsStock       = errors.New("requested quantity exceeds available stock")
	ErrItemNotFound       = errors.New("item not in cart")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)

// ForUser loads the user's cart with artworks, creating an empty one on first use.
func ForUser(db *gorm.DB, userID uint) (*Cart, error) {
	var c Cart
	err := db.Where(Cart{UserID: userID}).
		Attrs(Cart{UserID: userID}).
		FirstOrCreate(&c).Error
	if err != nil {
		return nil, err
	}
	if err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC, cart_items.id ASC") }).
		Preload("Items.Artwork").
		Preload("Items.Artwork.Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_index ASC") }).
		First(&c, c.ID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func loadArtwork(tx *gorm.DB, artworkID string) (*catalog.Artwork, error) {
	if !catalog.ValidID(artworkID) {
		return nil, ErrArtworkNotFound
	}
	var a catalog.Artwork
	if err := tx.First(&a, "id = ?", artworkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtworkNotFound
		}
		return nil, err
	}
	return &a, nil
}

// AddItem adds quantity of an artwork to the cart, incrementing an existing
// line instead of duplicating it.
func AddItem(db *gorm.DB, userID uint, artworkID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return db.Transaction(func(tx *gorm.DB) error {
		a, err := loadArtwork(tx, artworkID)
		if err != nil {
			return err
		}
		if !a.Purchasable() {
			return ErrArtworkUnavailable
		}

		c := Cart{UserID: userID}
		if err := tx.Where(Cart{UserID: userID}).FirstOrCreate(&c).Error; err != nil {
			return err
		}

		var item CartItem
		err = tx.Where("cart_id = ? AND artwork_id = ?", c.ID, a.ID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity > a.Stock {
				return ErrExceedsStock
			}
			return tx.Create(&CartItem{CartID: c.ID, ArtworkID: a.ID, Quantity: quantity}).Error
		case err != nil:
			return err
		}

		if item.Quantity+quantity > a.Stock {
			return ErrExceedsStock
		}
		return tx.Model(&CartItem{}).
			Where("id = ?", item.ID).
			Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
	})
}

// SetQuantity overwrites a line's quantity. Zero or less removes the line.
func SetQuantity(db *gorm.DB, userID uint, artworkID string, quantity int) error {
	if quantity <= 0 {
		return RemoveItem(db, userID, artworkID)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx, userID, artworkID)
		if err != nil {
			return err
		}
		a, err := loadArtwork(tx, artworkID)
		if err != nil {
			return err
		}
		if quantity > a.Stock {
			return ErrExceedsStock
		}
		return tx.Model(&CartItem{}).Where("id = ?", item.ID).Update("quantity", quantity).Error
	})
}

func RemoveItem(db *gorm.DB, userID uint, artworkID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx, userID, artworkID)
		if err != nil {
			return err
		}
		return tx.Delete(&CartItem{}, item.ID).Error
	})
}

// Clear empties the user's cart. A missing cart is not an error.
func Clear(db *gorm.DB, userID uint) error {
	return db.Where("cart_id IN (?)", db.Model(&Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&CartItem{}).Error
}

func findItem(tx *gorm.DB, userID uint, artworkID string) (*CartItem, error) {
	if !catalog.ValidID(artworkID) {
		return nil, ErrItemNotFound
	}
	var item CartItem
	err := tx.Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ? AND cart_items.artwork_id = ?", userID, artworkID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
