package users

import (
	"net/http"
	"strings"

	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/cart"
	"arvista/internal/domain/engagement"
	"arvista/internal/domain/orders"
	"arvista/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetCurrentUser(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	stats, err := loadStats(database.DB, user.ID)
	if err != nil {
		common.InternalError(c, "Failed to load profile", err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: toUserDTO(user), Stats: stats})
}

func UpdateCurrentUser(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	var input struct {
		Name      *string `json:"name"`
		Bio       *string `json:"bio"`
		AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		updates["name"] = name
	}
	if input.Bio != nil {
		updates["bio"] = strings.TrimSpace(*input.Bio)
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*input.AvatarURL)
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			common.InternalError(c, "Failed to update profile", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserDTO(user)})
}

func toUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		AuthProvider: u.AuthProvider,
		HasPassword:  u.Password != nil && *u.Password != "",
		Bio:          stringPtrIfNotEmpty(u.Bio),
		AvatarURL:    stringPtrIfNotEmpty(u.AvatarURL),
		CreatedAt:    u.CreatedAt,
	}
}

func loadStats(db *gorm.DB, userID uint) (StatsDTO, error) {
	var s StatsDTO
	if err := db.Model(&orders.Order{}).Where("user_id = ?", userID).Count(&s.Orders).Error; err != nil {
		return s, err
	}
	if err := db.Model(&engagement.Favorite{}).Where("user_id = ?", userID).Count(&s.Favorites).Error; err != nil {
		return s, err
	}
	if err := db.Model(&engagement.Review{}).Where("user_id = ?", userID).Count(&s.Reviews).Error; err != nil {
		return s, err
	}
	err := db.Model(&cart.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Scan(&s.CartItems).Error
	return s, err
}

func stringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
