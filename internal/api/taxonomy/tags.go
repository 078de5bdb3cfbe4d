package taxonomy

import (
	"net/http"
	"strings"

	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ListTags(c *gin.Context) {
	var rows []TagWithCount
	if err := tagsWithCounts(database.DB).Order("tags.name ASC").Scan(&rows).Error; err != nil {
		common.InternalError(c, "Failed to load tags", err)
		return
	}
	if rows == nil {
		rows = []TagWithCount{}
	}
	c.JSON(http.StatusOK, rows)
}

func GetTag(c *gin.Context) {
	var row TagWithCount
	res := tagsWithCounts(database.DB).Where("tags.slug = ?", c.Param("slug")).Limit(1).Scan(&row)
	if res.Error != nil {
		common.InternalError(c, "Failed to load tag", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}
	c.JSON(http.StatusOK, row)
}

func CreateTag(c *gin.Context) {
	var in TermInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag := catalog.Tag{Name: strings.ToLower(clean(in.Name))}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := nameTaken(tx, &catalog.Tag{}, tag.Name, 0); err != nil {
			return err
		}
		slug, err := catalog.UniqueSlug(tx, &catalog.Tag{}, catalog.MakeSlug(firstNonEmpty(in.Slug, tag.Name), "tag"), nil)
		if err != nil {
			return err
		}
		tag.Slug = slug
		return tx.Create(&tag).Error
	})
	if err != nil {
		writeError(c, "Tag", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusCreated, tag)
}

func UpdateTag(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var in TermPatch
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tag catalog.Tag
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tag, id).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Name != nil {
			name := strings.ToLower(clean(*in.Name))
			if err := nameTaken(tx, &catalog.Tag{}, name, tag.ID); err != nil {
				return err
			}
			updates["name"] = name
		}
		if in.Slug != nil {
			slug, err := catalog.UniqueSlug(tx, &catalog.Tag{}, catalog.MakeSlug(*in.Slug, tag.Slug), tag.ID)
			if err != nil {
				return err
			}
			updates["slug"] = slug
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&tag).Updates(updates).Error
	})
	if err != nil {
		writeError(c, "Tag", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusOK, tag)
}

func DeleteTag(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var tag catalog.Tag
		if err := tx.First(&tag, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM artwork_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	if err != nil {
		writeError(c, "Tag", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
