package artworks

import (
	"context"
	"errors"
	"net/http"

	"arvista/config"
	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/cart"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/engagement"
	"arvista/internal/domain/media"
	"arvista/internal/domain/users"
	"arvista/internal/infra/cache"
	"arvista/internal/infra/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	defaultLimit = 12
	maxLimit     = 100
)

var (
	errForbidden          = errors.New("forbidden")
	errInvalidCategory    = errors.New("category not found")
	errInvalidArtist      = errors.New("artist not found")
	errInvalidCollections = errors.New("one or more collections not found")
	errInvalidImages      = errors.New("one or more images not found or not yours")
)

// ------------------------------
// GET /artworks
// ------------------------------
func ListArtworks(c *gin.Context) {
	f, err := parseListFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, limit := common.ParsePage(c, defaultLimit, maxLimit)
	admin := common.IsAdmin(c)
	ctx := c.Request.Context()

	// Admin listings include drafts and are never cached.
	cacheKey := ""
	if !admin && cache.Enabled() {
		cacheKey = cache.CatalogKey(ctx, "artworks:"+c.Request.URL.Query().Encode())
		var cached ListResponse
		if cache.Get(ctx, cacheKey, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	base := filteredArtworks(database.DB, f, admin)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		common.InternalError(c, "Failed to load artworks", err)
		return
	}

	q := base
	if f.Sort == catalog.SortRating {
		q = withRatingJoin(q)
	}
	order, _ := catalog.OrderClause(f.Sort)

	var items []catalog.Artwork
	if err := preloadDetail(q).
		Select("artworks.*").
		Order(order).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&items).Error; err != nil {
		common.InternalError(c, "Failed to load artworks", err)
		return
	}

	ids := make([]string, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.ID)
	}
	ratings, err := engagement.RatingSummaries(database.DB, ids)
	if err != nil {
		common.InternalError(c, "Failed to load ratings", err)
		return
	}

	out := ListResponse{
		Items:      make([]ArtworkDTO, 0, len(items)),
		Pagination: common.NewPage(page, limit, total),
	}
	for _, a := range items {
		out.Items = append(out.Items, toArtworkDTO(a, ratings[a.ID]))
	}

	if cacheKey != "" {
		if err := cache.Set(ctx, cacheKey, out, config.CACHE_TTL); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	c.JSON(http.StatusOK, out)
}

// ------------------------------
// GET /artworks/:id (uuid or slug)
// ------------------------------
func GetArtwork(c *gin.Context) {
	a, err := loadArtwork(database.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
			return
		}
		common.InternalError(c, "Failed to load artwork", err)
		return
	}

	if a.Status == catalog.StatusDraft && !canManage(c, a) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}

	rating, err := engagement.RatingSummaryFor(database.DB, a.ID)
	if err != nil {
		common.InternalError(c, "Failed to load ratings", err)
		return
	}

	c.JSON(http.StatusOK, toArtworkDTO(*a, rating))
}

// ------------------------------
// POST /artworks (artist, admin)
// ------------------------------
func CreateArtwork(c *gin.Context) {
	var req CreateArtworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	admin := common.IsAdmin(c)

	artistID := userID
	if req.ArtistID != nil && admin {
		artistID = *req.ArtistID
	}

	a := catalog.Artwork{
		Title:       req.Title,
		Description: req.Description,
		ArtistID:    artistID,
		CategoryID:  req.CategoryID,
		Medium:      req.Medium,
		Dimensions:  req.Dimensions,
		Year:        req.Year,
		PriceCents:  catalog.Cents(req.Price),
		Stock:       1,
		Status:      catalog.StatusAvailable,
		Featured:    req.Featured,
	}
	if req.Stock != nil {
		a.Stock = *req.Stock
	}
	if req.Status != "" {
		a.Status = req.Status
	}
	if a.Stock == 0 && a.Status == catalog.StatusAvailable {
		a.Status = catalog.StatusSold
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if artistID != userID {
			var n int64
			if err := tx.Model(&users.User{}).Where("id = ?", artistID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return errInvalidArtist
			}
		}
		if err := checkCategory(tx, a.CategoryID); err != nil {
			return err
		}

		slug, err := catalog.UniqueSlug(tx, &catalog.Artwork{}, catalog.MakeSlug(req.Title, "artwork"), nil)
		if err != nil {
			return err
		}
		a.Slug = slug

		if err := tx.Create(&a).Error; err != nil {
			return err
		}

		tags := req.Tags
		if tags == nil {
			tags = []string{}
		}
		return applyAssociations(tx, &a, tags, req.CollectionIDs, req.ImageIDs, userID, admin)
	})
	if err != nil {
		writeMutationError(c, "Failed to create artwork", err)
		return
	}

	common.InvalidateCatalog(c)

	created, err := loadArtwork(database.DB, a.ID)
	if err != nil {
		common.InternalError(c, "Failed to load artwork", err)
		return
	}
	c.JSON(http.StatusCreated, toArtworkDTO(*created, engagement.RatingSummary{}))
}

// ------------------------------
// PUT /artworks/:id (owner, admin)
// ------------------------------
func UpdateArtwork(c *gin.Context) {
	var req UpdateArtworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	admin := common.IsAdmin(c)

	var a catalog.Artwork
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if !catalog.ValidID(c.Param("id")) {
			return gorm.ErrRecordNotFound
		}
		if err := tx.First(&a, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}
		if !admin && a.ArtistID != userID {
			return errForbidden
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Slug != nil {
			slug, err := catalog.UniqueSlug(tx, &catalog.Artwork{}, catalog.MakeSlug(*req.Slug, a.Slug), a.ID)
			if err != nil {
				return err
			}
			updates["slug"] = slug
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.CategoryID != nil {
			// 0 detaches the category
			if *req.CategoryID == 0 {
				updates["category_id"] = nil
			} else {
				if err := checkCategory(tx, req.CategoryID); err != nil {
					return err
				}
				updates["category_id"] = *req.CategoryID
			}
		}
		if req.Medium != nil {
			updates["medium"] = *req.Medium
		}
		if req.Dimensions != nil {
			updates["dimensions"] = *req.Dimensions
		}
		if req.Year != nil {
			updates["year"] = *req.Year
		}
		if req.Price != nil {
			updates["price_cents"] = catalog.Cents(*req.Price)
		}
		if req.Featured != nil {
			updates["featured"] = *req.Featured
		}

		stock, status := a.Stock, a.Status
		if req.Stock != nil {
			stock = *req.Stock
			updates["stock"] = stock
		}
		if req.Status != nil {
			status = *req.Status
		}
		if stock == 0 && status == catalog.StatusAvailable {
			status = catalog.StatusSold
		}
		if status != a.Status {
			updates["status"] = status
		}

		if len(updates) > 0 {
			if err := tx.Model(&a).Updates(updates).Error; err != nil {
				return err
			}
		}
		return applyAssociations(tx, &a, req.Tags, req.CollectionIDs, req.ImageIDs, userID, admin)
	})
	if err != nil {
		writeMutationError(c, "Failed to update artwork", err)
		return
	}

	common.InvalidateCatalog(c)

	updated, err := loadArtwork(database.DB, a.ID)
	if err != nil {
		common.InternalError(c, "Failed to load artwork", err)
		return
	}
	rating, err := engagement.RatingSummaryFor(database.DB, a.ID)
	if err != nil {
		common.InternalError(c, "Failed to load ratings", err)
		return
	}
	c.JSON(http.StatusOK, toArtworkDTO(*updated, rating))
}

// ------------------------------
// DELETE /artworks/:id (owner, admin)
// ------------------------------
func DeleteArtwork(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	admin := common.IsAdmin(c)

	var images []media.Image
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var a catalog.Artwork
		if !catalog.ValidID(c.Param("id")) {
			return gorm.ErrRecordNotFound
		}
		if err := tx.First(&a, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}
		if !admin && a.ArtistID != userID {
			return errForbidden
		}

		if err := tx.Where("artwork_id = ?", a.ID).Find(&images).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&media.Image{}, &engagement.Favorite{}, &engagement.Review{}, &cart.CartItem{}} {
			if err := tx.Where("artwork_id = ?", a.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&a).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&a).Association("Collections").Clear(); err != nil {
			return err
		}
		return tx.Delete(&a).Error
	})
	if err != nil {
		writeMutationError(c, "Failed to delete artwork", err)
		return
	}

	removeStoredImages(c.Request.Context(), images)
	common.InvalidateCatalog(c)

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

/* ---------------- helpers ---------------- */

func loadArtwork(db *gorm.DB, key string) (*catalog.Artwork, error) {
	q := preloadDetail(db)
	if catalog.ValidID(key) {
		q = q.Where("artworks.id = ?", key)
	} else {
		q = q.Where("artworks.slug = ?", key)
	}
	var a catalog.Artwork
	if err := q.First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func canManage(c *gin.Context, a *catalog.Artwork) bool {
	return common.CanManageArtwork(c, a.ArtistID)
}

func checkCategory(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&catalog.Category{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errInvalidCategory
	}
	return nil
}

// applyAssociations replaces tags, collections and images for each list that
// is non-nil. Images keep the order they are given in.
func applyAssociations(tx *gorm.DB, a *catalog.Artwork, tagNames []string, collectionIDs []uint, imageIDs []string, userID uint, admin bool) error {
	if tagNames != nil {
		tags, err := catalog.UpsertTags(tx, tagNames)
		if err != nil {
			return err
		}
		if err := replaceAssociation(tx, a, "Tags", tags, len(tags)); err != nil {
			return err
		}
	}

	if collectionIDs != nil {
		var cols []catalog.Collection
		if len(collectionIDs) > 0 {
			if err := tx.Where("id IN ?", collectionIDs).Find(&cols).Error; err != nil {
				return err
			}
			if len(cols) != len(uniqueUints(collectionIDs)) {
				return errInvalidCollections
			}
		}
		if err := replaceAssociation(tx, a, "Collections", cols, len(cols)); err != nil {
			return err
		}
	}

	if imageIDs != nil {
		for _, id := range imageIDs {
			if !catalog.ValidID(id) {
				return errInvalidImages
			}
		}
		detach := tx.Model(&media.Image{}).Where("artwork_id = ?", a.ID)
		if len(imageIDs) > 0 {
			detach = detach.Where("id NOT IN ?", imageIDs)
		}
		if err := detach.Update("artwork_id", nil).Error; err != nil {
			return err
		}

		for i, id := range imageIDs {
			q := tx.Model(&media.Image{}).
				Where("id = ?", id).
				Where("(artwork_id IS NULL OR artwork_id = ?)", a.ID)
			if !admin {
				q = q.Where("uploaded_by = ?", userID)
			}
			res := q.Updates(map[string]interface{}{"artwork_id": a.ID, "sort_index": i})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errInvalidImages
			}
		}
	}
	return nil
}

func replaceAssociation(tx *gorm.DB, a *catalog.Artwork, name string, values interface{}, n int) error {
	if n == 0 {
		return tx.Model(a).Association(name).Clear()
	}
	return tx.Model(a).Association(name).Replace(values)
}

func uniqueUints(in []uint) map[uint]struct{} {
	out := make(map[uint]struct{}, len(in))
	for _, v := range in {
		out[v] = struct{}{}
	}
	return out
}

func writeMutationError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
	case errors.Is(err, errForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the artist or an admin can change this artwork"})
	case errors.Is(err, errInvalidCategory), errors.Is(err, errInvalidArtist),
		errors.Is(err, errInvalidCollections), errors.Is(err, errInvalidImages):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": "Artwork slug already exists"})
	default:
		common.InternalError(c, msg, err)
	}
}


func removeStoredImages(ctx context.Context, images []media.Image) {
	if storage.Default == nil {
		return
	}
	for _, img := range images {
		if img.Disk != storage.Default.Name() {
			continue
		}
		if err := storage.Default.Delete(ctx, img.Path); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", img.Path).Msg("image file not removed")
		}
	}
}
