package taxonomy

import (
	"net/http"

	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ListCategories(c *gin.Context) {
	var rows []CategoryWithCount
	if err := categoriesWithCounts(database.DB).Order("categories.name ASC").Scan(&rows).Error; err != nil {
		common.InternalError(c, "Failed to load categories", err)
		return
	}
	if rows == nil {
		rows = []CategoryWithCount{}
	}
	c.JSON(http.StatusOK, rows)
}

func GetCategory(c *gin.Context) {
	var row CategoryWithCount
	res := categoriesWithCounts(database.DB).Where("categories.slug = ?", c.Param("slug")).Limit(1).Scan(&row)
	if res.Error != nil {
		common.InternalError(c, "Failed to load category", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, row)
}

func CreateCategory(c *gin.Context) {
	var in TermInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat := catalog.Category{Name: clean(in.Name), Description: clean(in.Description)}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := nameTaken(tx, &catalog.Category{}, cat.Name, 0); err != nil {
			return err
		}
		slug, err := catalog.UniqueSlug(tx, &catalog.Category{}, catalog.MakeSlug(firstNonEmpty(in.Slug, cat.Name), "category"), nil)
		if err != nil {
			return err
		}
		cat.Slug = slug
		return tx.Create(&cat).Error
	})
	if err != nil {
		writeError(c, "Category", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusCreated, cat)
}

func UpdateCategory(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var in TermPatch
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cat catalog.Category
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cat, id).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Name != nil {
			name := clean(*in.Name)
			if err := nameTaken(tx, &catalog.Category{}, name, cat.ID); err != nil {
				return err
			}
			updates["name"] = name
		}
		if in.Slug != nil {
			slug, err := catalog.UniqueSlug(tx, &catalog.Category{}, catalog.MakeSlug(*in.Slug, cat.Slug), cat.ID)
			if err != nil {
				return err
			}
			updates["slug"] = slug
		}
		if in.Description != nil {
			updates["description"] = clean(*in.Description)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&cat).Updates(updates).Error
	})
	if err != nil {
		writeError(c, "Category", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusOK, cat)
}

// DeleteCategory detaches artworks from the category before removing it.
func DeleteCategory(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var cat catalog.Category
		if err := tx.First(&cat, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&catalog.Artwork{}).Where("category_id = ?", cat.ID).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
	if err != nil {
		writeError(c, "Category", err)
		return
	}

	common.InvalidateCatalog(c)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if clean(v) != "" {
			return v
		}
	}
	return ""
}
