// Package common holds the few request helpers every API package shares.
package common

import (
	"net/http"
	"strconv"

	"arvista/internal/domain/users"
	"arvista/internal/infra/cache"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func MustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString("role") == users.RoleAdmin
}

// InternalError logs err with the request logger and answers 500.
func InternalError(c *gin.Context, msg string, err error) {
	zerolog.Ctx(c.Request.Context()).Error().Err(err).
		Str("path", c.FullPath()).
		Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "details": err.Error()})
}

// CanManageArtwork is true for admins and for the artist owning the artwork.
// Drafts are visible to exactly these callers.
func CanManageArtwork(c *gin.Context, artistID uint) bool {
	uid := c.GetUint("user_id")
	return IsAdmin(c) || (uid != 0 && uid == artistID)
}

// InvalidateCatalog drops cached catalog listings after a write that changes
// what they show (artworks, stock, ratings, taxonomy). Failures are only logged.
func InvalidateCatalog(c *gin.Context) {
	if err := cache.InvalidateCatalog(c.Request.Context()); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

type Page struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ParsePage reads ?page=&limit= with defaults and an upper bound on limit.
func ParsePage(c *gin.Context, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func NewPage(page, limit int, total int64) Page {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Page{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ParseUintParam reads a numeric path parameter, answering 400 when malformed.
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}
