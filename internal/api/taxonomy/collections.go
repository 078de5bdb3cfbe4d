package taxonomy

import (
	"net/http"
	"strconv"

	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListCollections accepts ?featured=true to return only highlighted collections.
func ListCollections(c *gin.Context) {
	q := collectionsWithCounts(database.DB)
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid featured"})
			return
		}
		q = q.Where("collections.featured = ?", featured)
	}

	var rows []CollectionWithCount
	if err := q.Order("collections.featured DESC, collections.name ASC").Scan(&rows).Error; err != nil {
		common.InternalError(c, "Failed to load collections", err)
		return
	}
	if rows == nil {
		rows = []CollectionWithCount{}
	}
	c.JSON(http.StatusOK, rows)
}

func GetCollection(c *gin.Context) {
	var row CollectionWithCount
	res := collectionsWithCounts(database.DB).Where("collections.slug = ?", c.Param("slug")).Limit(1).Scan(&row)
	if res.Error != nil {
		common.InternalError(c, "Failed to load collection", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		return
	}
	c.JSON(http.StatusOK, row)
}

func CreateCollection(c *gin.Context) {
	var in TermInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col := catalog.Collection{Name: clean(in.Name), Description: clean(in.Description), Featured: in.Featured}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		slug, err := catalog.UniqueSlug(tx, &catalog.Collection{}, catalog.MakeSlug(firstNonEmpty(in.Slug, col.Name), "collection"), nil)
		if err != nil {
			return err
		}
		col.Slug = slug
		return tx.Create(&col).Error
	})
	if err != nil {
		writeError(c, "Collection", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusCreated, col)
}

func UpdateCollection(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var in TermPatch
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var col catalog.Collection
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&col, id).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = clean(*in.Name)
		}
		if in.Slug != nil {
			slug, err := catalog.UniqueSlug(tx, &catalog.Collection{}, catalog.MakeSlug(*in.Slug, col.Slug), col.ID)
			if err != nil {
				return err
			}
			updates["slug"] = slug
		}
		if in.Description != nil {
			updates["description"] = clean(*in.Description)
		}
		if in.Featured != nil {
			updates["featured"] = *in.Featured
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&col).Updates(updates).Error
	})
	if err != nil {
		writeError(c, "Collection", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusOK, col)
}

func DeleteCollection(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var col catalog.Collection
		if err := tx.First(&col, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM artwork_collections WHERE collection_id = ?", col.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&col).Error
	})
	if err != nil {
		writeError(c, "Collection", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
