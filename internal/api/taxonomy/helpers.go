package taxonomy

import (
	"errors"
	"net/http"
	"strings"

	"arvista/internal/api/common"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errNameTaken = errors.New("name already in use")

type TermInput struct {
	Name        string `json:"name" binding:"required,max=120"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Featured    bool   `json:"featured"`
}

type TermPatch struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=120"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Featured    *bool   `json:"featured"`
}

func clean(s string) string { return strings.TrimSpace(s) }

func writeError(c *gin.Context, what string, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.Is(err, errNameTaken), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": what + " name already exists"})
	default:
		common.InternalError(c, "Failed to save "+strings.ToLower(what), err)
	}
}

// nameTaken checks a unique name column before writing.
func nameTaken(tx *gorm.DB, model interface{}, name string, excludeID uint) error {
	var n int64
	q := tx.Model(model).Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return errNameTaken
	}
	return nil
}

