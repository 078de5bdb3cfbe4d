package admin

import (
	"net/http"

	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/inbox"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GET /admin/contact?status=
func ListContactMessages(c *gin.Context) {
	page, limit := common.ParsePage(c, defaultLimit, maxLimit)

	q := database.DB.Model(&inbox.ContactMessage{})
	if status := c.Query("status"); status != "" {
		if !inbox.ValidContactStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		common.InternalError(c, "Failed to load messages", err)
		return
	}

	var list []inbox.ContactMessage
	if err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error; err != nil {
		common.InternalError(c, "Failed to load messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list, "pagination": common.NewPage(page, limit, total)})
}

// PATCH /admin/contact/:id
func UpdateContactMessage(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !inbox.ValidContactStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var msg inbox.ContactMessage
	if err := database.DB.First(&msg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if err := database.DB.Model(&msg).Update("status", input.Status).Error; err != nil {
		common.InternalError(c, "Failed to update message", err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// DELETE /admin/contact/:id
func DeleteContactMessage(c *gin.Context) {
	id, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	res := database.DB.Delete(&inbox.ContactMessage{}, id)
	if res.Error != nil {
		common.InternalError(c, "Failed to delete message", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GET /admin/newsletter?status=
func ListSubscribers(c *gin.Context) {
	page, limit := common.ParsePage(c, defaultLimit, maxLimit)

	q := database.DB.Model(&inbox.NewsletterSubscription{})
	if status := c.Query("status"); status != "" {
		if !inbox.ValidSubscriptionStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		common.InternalError(c, "Failed to load subscribers", err)
		return
	}

	var list []inbox.NewsletterSubscription
	if err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error; err != nil {
		common.InternalError(c, "Failed to load subscribers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list, "pagination": common.NewPage(page, limit, total)})
}
