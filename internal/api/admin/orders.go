package admin

import (
	"errors"
	"net/http"

	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/orders"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GET /admin/orders?status=
func ListOrders(c *gin.Context) {
	page, limit := common.ParsePage(c, defaultLimit, maxLimit)

	q := database.DB.Model(&orders.Order{})
	if status := c.Query("status"); status != "" {
		if !orders.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		common.InternalError(c, "Failed to load orders", err)
		return
	}

	var list []orders.Order
	if err := q.Preload("Items").Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&list).Error; err != nil {
		common.InternalError(c, "Failed to load orders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": list, "pagination": common.NewPage(page, limit, total)})
}

// PATCH /admin/orders/:id/status
func UpdateOrderStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := orders.UpdateStatus(database.DB, c.Param("id"), input.Status)
	switch {
	case err == nil:
		if order.Status == orders.StatusCancelled {
			common.InvalidateCatalog(c)
		}
		c.JSON(http.StatusOK, order)
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, orders.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		common.InternalError(c, "Failed to update order", err)
	}
}
