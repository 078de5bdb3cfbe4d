package users

import "time"

type MeResponse struct {
	User  UserDTO  `json:"user"`
	Stats StatsDTO `json:"stats"`
}

type UserDTO struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	AuthProvider string    `json:"auth_provider"`
	HasPassword  bool      `json:"has_password"`
	Bio          *string   `json:"bio"`
	AvatarURL    *string   `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type StatsDTO struct {
	Orders    int64 `json:"orders"`
	Favorites int64 `json:"favorites"`
	Reviews   int64 `json:"reviews"`
	CartItems int64 `json:"cart_items"`
}
