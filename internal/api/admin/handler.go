package admin

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/inbox"
	"arvista/internal/domain/orders"
	"arvista/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultLimit = 25
	maxLimit     = 200
)

type AdminUser struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	AuthProvider string    `json:"auth_provider"`
	OrderCount   int64     `json:"order_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminPayment struct {
	ID          uint    `json:"id"`
	OrderID     string  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	Email       string  `json:"email"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	ReceiptURL  *string `json:"receipt_url,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers         int64            `json:"total_users"`
	TotalArtworks      int64            `json:"total_artworks"`
	ArtworksByStatus   map[string]int64 `json:"artworks_by_status"`
	OrdersByStatus     map[string]int64 `json:"orders_by_status"`
	TotalRevenue       float64          `json:"total_revenue"`
	RecentRevenue      float64          `json:"recent_revenue"`
	NewContactMessages int64            `json:"new_contact_messages"`
	ActiveSubscribers  int64            `json:"active_subscribers"`
	RecentOrdersPlaced int64            `json:"recent_orders"`
}

type statusCount struct {
	Status string
	Count  int64
}

// GET /admin/stats
func GetAdminStats(c *gin.Context) {
	db := database.DB
	stats := AdminStats{
		ArtworksByStatus: map[string]int64{},
		OrdersByStatus:   map[string]int64{},
	}
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)

	var totalRevenue, recentRevenue int64
	err := firstError(
		db.Model(&users.User{}).Count(&stats.TotalUsers).Error,
		db.Model(&catalog.Artwork{}).Count(&stats.TotalArtworks).Error,
		db.Model(&orders.Order{}).
			Where("status IN ?", orders.RevenueStatuses()).
			Select("COALESCE(SUM(total_cents), 0)").Scan(&totalRevenue).Error,
		db.Model(&orders.Order{}).
			Where("status IN ? AND paid_at >= ?", orders.RevenueStatuses(), thirtyDaysAgo).
			Select("COALESCE(SUM(total_cents), 0)").Scan(&recentRevenue).Error,
		db.Model(&orders.Order{}).Where("created_at >= ?", thirtyDaysAgo).Count(&stats.RecentOrdersPlaced).Error,
		db.Model(&inbox.ContactMessage{}).Where("status = ?", inbox.ContactNew).Count(&stats.NewContactMessages).Error,
		db.Model(&inbox.NewsletterSubscription{}).Where("status = ?", inbox.SubscriptionActive).Count(&stats.ActiveSubscribers).Error,
	)
	if err != nil {
		common.InternalError(c, "Failed to load stats", err)
		return
	}

	var artworkCounts, orderCounts []statusCount
	if err := db.Model(&catalog.Artwork{}).Select("status, COUNT(*) AS count").Group("status").Scan(&artworkCounts).Error; err != nil {
		common.InternalError(c, "Failed to load stats", err)
		return
	}
	if err := db.Model(&orders.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&orderCounts).Error; err != nil {
		common.InternalError(c, "Failed to load stats", err)
		return
	}
	for _, s := range artworkCounts {
		stats.ArtworksByStatus[s.Status] = s.Count
	}
	for _, s := range orderCounts {
		stats.OrdersByStatus[s.Status] = s.Count
	}

	stats.TotalRevenue = catalog.Amount(totalRevenue)
	stats.RecentRevenue = catalog.Amount(recentRevenue)

	c.JSON(http.StatusOK, stats)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// GET /admin/users?role=&search=
func ListAllUsers(c *gin.Context) {
	page, limit := common.ParsePage(c, defaultLimit, maxLimit)

	q := database.DB.Model(&users.User{})
	if role := c.Query("role"); role != "" {
		if !users.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		q = q.Where("role = ?", role)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		common.InternalError(c, "Failed to load users", err)
		return
	}

	var adminUsers []AdminUser
	if err := q.
		Select("users.id, users.name, users.email, users.role, users.auth_provider, users.created_at, " +
			"(SELECT COUNT(*) FROM orders WHERE orders.user_id = users.id) AS order_count").
		Order("users.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&adminUsers).Error; err != nil {
		common.InternalError(c, "Failed to load users", err)
		return
	}
	if adminUsers == nil {
		adminUsers = []AdminUser{}
	}

	c.JSON(http.StatusOK, gin.H{"items": adminUsers, "pagination": common.NewPage(page, limit, total)})
}

// GET /admin/users/:id
func GetUserDetails(c *gin.Context) {
	userID, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var userOrders []orders.Order
	if err := database.DB.Preload("Items").Preload("Payments").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&userOrders).Error; err != nil {
		common.InternalError(c, "Failed to fetch orders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"orders": userOrders,
	})
}

// PATCH /admin/users/:id/role
func UpdateUserRole(c *gin.Context) {
	userID, ok := common.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !users.ValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}
	if userID == c.GetUint("user_id") && input.Role != users.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot remove your own admin role"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		common.InternalError(c, "Failed to load user", err)
		return
	}
	if err := database.DB.Model(&user).Update("role", input.Role).Error; err != nil {
		common.InternalError(c, "Failed to update role", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GET /admin/payments
func ListAllPayments(c *gin.Context) {
	type row struct {
		orders.Payment
		OrderNumber string
		Email       string
	}
	var rows []row
	err := database.DB.Model(&orders.Payment{}).
		Select("payments.*, orders.number AS order_number, users.email AS email").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Joins("JOIN users ON users.id = orders.user_id").
		Order("payments.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		common.InternalError(c, "Failed to load payments", err)
		return
	}

	result := make([]AdminPayment, 0, len(rows))
	for _, p := range rows {
		result = append(result, AdminPayment{
			ID:          p.ID,
			OrderID:     p.OrderID,
			OrderNumber: p.OrderNumber,
			Email:       p.Email,
			Amount:      catalog.Amount(p.AmountCents),
			Currency:    p.Currency,
			Status:      p.Status,
			ReceiptURL:  p.ReceiptURL,
			CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, result)
}
