package reviews

import (
	"errors"
	"net/http"
	"strings"

	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/engagement"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errAlreadyReviewed = errors.New("you have already reviewed this artwork")
	errNotAuthor       = errors.New("not the author")
)

type ReviewDTO struct {
	ID        uint   `json:"id"`
	ArtworkID string `json:"artwork_id"`
	UserID    uint   `json:"user_id"`
	Author    string `json:"author"`
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toReviewDTO(r engagement.Review) ReviewDTO {
	dto := ReviewDTO{
		ID:        r.ID,
		ArtworkID: r.ArtworkID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Title:     r.Title,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if r.User != nil {
		dto.Author = r.User.Name
	}
	return dto
}

type reviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"max=200"`
	Comment string `json:"comment" binding:"max=5000"`
}

// GET /artworks/:id/reviews
func ListReviews(c *gin.Context) {
	artworkID := c.Param("id")
	if !catalog.ValidID(artworkID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}

	var a catalog.Artwork
	if err := database.DB.Select("id", "status", "artist_id").First(&a, "id = ?", artworkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
			return
		}
		common.InternalError(c, "Failed to load artwork", err)
		return
	}
	if a.Status == catalog.StatusDraft && !common.CanManageArtwork(c, a.ArtistID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}

	var list []engagement.Review
	if err := database.DB.Preload("User").
		Where("artwork_id = ?", artworkID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		common.InternalError(c, "Failed to load reviews", err)
		return
	}

	summary, err := engagement.RatingSummaryFor(database.DB, artworkID)
	if err != nil {
		common.InternalError(c, "Failed to load ratings", err)
		return
	}

	out := make([]ReviewDTO, 0, len(list))
	for _, r := range list {
		out = append(out, toReviewDTO(r))
	}
	c.JSON(http.StatusOK, gin.H{"reviews": out, "average": summary.Average, "count": summary.Count})
}

// POST /artworks/:id/reviews
func CreateReview(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	var in reviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !catalog.ValidID(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}

	review := engagement.Review{
		UserID:  userID,
		Rating:  in.Rating,
		Title:   strings.TrimSpace(in.Title),
		Comment: strings.TrimSpace(in.Comment),
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var a catalog.Artwork
		if err := tx.Select("id", "status").First(&a, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}
		if a.Status == catalog.StatusDraft {
			return gorm.ErrRecordNotFound
		}
		review.ArtworkID = a.ID

		var n int64
		if err := tx.Model(&engagement.Review{}).
			Where("user_id = ? AND artwork_id = ?", userID, a.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errAlreadyReviewed
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return tx.Preload("User").First(&review, review.ID).Error
	})
	if err != nil {
		writeReviewError(c, "Failed to create review", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusCreated, toReviewDTO(review))
}

// PUT /reviews/:id
func UpdateReview(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var in reviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var review engagement.Review
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, id).Error; err != nil {
			return err
		}
		if review.UserID != userID && !common.IsAdmin(c) {
			return errNotAuthor
		}
		if err := tx.Model(&review).Updates(map[string]interface{}{
			"rating":  in.Rating,
			"title":   strings.TrimSpace(in.Title),
			"comment": strings.TrimSpace(in.Comment),
		}).Error; err != nil {
			return err
		}
		return tx.Preload("User").First(&review, review.ID).Error
	})
	if err != nil {
		writeReviewError(c, "Failed to update review", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusOK, toReviewDTO(review))
}

// DELETE /reviews/:id
func DeleteReview(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var review engagement.Review
		if err := tx.First(&review, id).Error; err != nil {
			return err
		}
		if review.UserID != userID && !common.IsAdmin(c) {
			return errNotAuthor
		}
		return tx.Delete(&review).Error
	})
	if err != nil {
		writeReviewError(c, "Failed to delete review", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func writeReviewError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, errAlreadyReviewed), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": errAlreadyReviewed.Error()})
	case errors.Is(err, errNotAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author or an admin can change this review"})
	default:
		common.InternalError(c, msg, err)
	}
}

