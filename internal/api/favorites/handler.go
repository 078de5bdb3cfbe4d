package favorites

import (
	"errors"
	"net/http"

	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/engagement"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errAlreadyFavorited = errors.New("artwork already in favorites")

func ListFavorites(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	var favs []engagement.Favorite
	if err := database.DB.
		Preload("Artwork").
		Preload("Artwork.Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_index ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favs).Error; err != nil {
		common.InternalError(c, "Failed to load favorites", err)
		return
	}
	c.JSON(http.StatusOK, favs)
}

func AddFavorite(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	var input struct {
		ArtworkID string `json:"artwork_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !catalog.ValidID(input.ArtworkID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}

	fav := engagement.Favorite{UserID: userID, ArtworkID: input.ArtworkID}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var a catalog.Artwork
		if err := tx.Select("id", "status", "artist_id").First(&a, "id = ?", input.ArtworkID).Error; err != nil {
			return err
		}
		if a.Status == catalog.StatusDraft && !common.CanManageArtwork(c, a.ArtistID) {
			return gorm.ErrRecordNotFound
		}

		var n int64
		if err := tx.Model(&engagement.Favorite{}).
			Where("user_id = ? AND artwork_id = ?", userID, a.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errAlreadyFavorited
		}
		return tx.Create(&fav).Error
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, fav)
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
	case errors.Is(err, errAlreadyFavorited), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Artwork already in favorites"})
	default:
		common.InternalError(c, "Failed to add favorite", err)
	}
}

func RemoveFavorite(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	artworkID := c.Param("artworkId")
	if !catalog.ValidID(artworkID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
		return
	}

	res := database.DB.Where("user_id = ? AND artwork_id = ?", userID, artworkID).Delete(&engagement.Favorite{})
	if res.Error != nil {
		common.InternalError(c, "Failed to remove favorite", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
